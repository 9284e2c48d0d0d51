package main

import (
	"flag"
	"os"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/BullionBear/depthkeeper/internal/config"
	"github.com/BullionBear/depthkeeper/internal/exchange/binanceperp"
	"github.com/BullionBear/depthkeeper/internal/queue"
	"github.com/BullionBear/depthkeeper/internal/replicator"
	"github.com/BullionBear/depthkeeper/internal/sink"
	"github.com/BullionBear/depthkeeper/internal/sink/postgres"
	"github.com/BullionBear/depthkeeper/pkg/logger"
	"github.com/BullionBear/depthkeeper/pkg/shutdown"
)

func main() {
	configPath := flag.String("config", "config.yml", "path to YAML configuration")
	flag.Parse()

	settings, err := config.Load(*configPath)
	if err != nil {
		println("failed to load configuration: " + err.Error())
		os.Exit(1)
	}

	if err := logger.Init(logger.Config{Level: settings.Logger.Level, Format: settings.Logger.Format}); err != nil {
		println("failed to init logger: " + err.Error())
		os.Exit(1)
	}

	sd := shutdown.NewShutdown(logger.Log)

	store, err := postgres.NewStore(settings.Postgres.DSN(), settings.Postgres.Echo, settings.Env == config.EnvDev)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("failed to open postgres store")
	}

	nc, err := nats.Connect(settings.NATS.URLs)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("failed to connect to nats")
	}
	sd.HookShutdownCallback("nats connection", nc.Close, 5*time.Second)

	js, err := nc.JetStream()
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("failed to create jetstream context")
	}
	if err := queue.EnsureStream(js, settings.NATS.Stream, settings.NATS.Subject); err != nil {
		logger.Log.Fatal().Err(err).Msg("failed to ensure jetstream stream")
	}
	publisher := queue.NewPublisher(js, settings.NATS.Subject)

	dispatcher := sink.NewDispatcher(store, publisher, logger.Log)

	cfg := binanceperp.NewConfig(settings.Exchanges.BinancePerp.APIKey, settings.Exchanges.BinancePerp.SecretKey)
	client := binanceperp.NewClient(cfg)

	engine := replicator.NewEngine(settings.Loader.Symbols, settings.Loader.DepthLimit)
	supervisor := replicator.NewSupervisor(
		client, engine, dispatcher,
		settings.Loader.Symbols, settings.Loader.DepthLimit, settings.Loader.WSSpeed,
		logger.Log,
	)

	go func() {
		if err := supervisor.Run(sd.Context()); err != nil {
			logger.Log.Error().Err(err).Msg("replication supervisor exited")
			sd.ShutdownNow()
		}
	}()

	logger.Log.Info().Strs("symbols", settings.Loader.Symbols).Msg("loader started")
	sd.WaitForShutdown(syscall.SIGINT, syscall.SIGTERM)
}
