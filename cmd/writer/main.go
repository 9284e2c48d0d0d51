package main

import (
	"flag"
	"os"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/BullionBear/depthkeeper/internal/config"
	"github.com/BullionBear/depthkeeper/internal/queue"
	"github.com/BullionBear/depthkeeper/internal/sink/binarylog"
	"github.com/BullionBear/depthkeeper/pkg/logger"
	"github.com/BullionBear/depthkeeper/pkg/shutdown"
)

const durableConsumerName = "depthkeeper_writer"

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

	writer, err := binarylog.NewWriter(settings.DataDir)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("failed to open rotated log writer")
	}
	sd.HookShutdownCallback("rotated log writer", func() {
		if err := writer.Close(); err != nil {
			logger.Log.Error().Err(err).Msg("failed to close rotated log writer")
		}
	}, 5*time.Second)

	nc, err := nats.Connect(settings.NATS.URLs)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("failed to connect to nats")
	}
	sd.HookShutdownCallback("nats connection", nc.Close, 5*time.Second)

	js, err := nc.JetStream()
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("failed to create jetstream context")
	}

	consumer, err := queue.NewConsumer(js, settings.NATS.Stream, settings.NATS.Subject, durableConsumerName, writer, logger.Log)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("failed to create pull consumer")
	}

	go func() {
		if err := consumer.Run(sd.Context()); err != nil {
			logger.Log.Error().Err(err).Msg("consumer exited")
			sd.ShutdownNow()
		}
	}()

	logger.Log.Info().Str("data_dir", settings.DataDir).Msg("writer started")
	sd.WaitForShutdown(syscall.SIGINT, syscall.SIGTERM)
}
