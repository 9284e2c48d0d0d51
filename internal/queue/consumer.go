package queue

import (
	"context"
	"errors"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// RecordSink is the consumer's only outbound collaborator.
// internal/sink/binarylog.Writer implements it structurally.
type RecordSink interface {
	WriteSnapshot(DepthRecord) error
	WriteAggTrade(AggTradeRecord) error
}

const fetchWait = time.Second

// Consumer pull-subscribes to a durable JetStream consumer and decodes
// each message into the matching record before handing it to a RecordSink.
// An empty queue is tolerated by looping with a short fetch timeout rather
// than blocking forever, so shutdown signals are still observed between
// fetches.
type Consumer struct {
	sub    *nats.Subscription
	sink   RecordSink
	logger zerolog.Logger
}

// NewConsumer creates (if absent) a durable pull consumer on stream/subject
// and returns a Consumer bound to it.
func NewConsumer(js nats.JetStreamContext, stream, subject, durable string, sink RecordSink, logger zerolog.Logger) (*Consumer, error) {
	if err := EnsureStream(js, stream, subject); err != nil {
		return nil, err
	}
	sub, err := js.PullSubscribe(subject, durable)
	if err != nil {
		return nil, err
	}
	return &Consumer{sub: sub, sink: sink, logger: logger}, nil
}

// Run fetches and processes messages until ctx is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		msgs, err := c.sub.Fetch(1, nats.MaxWait(fetchWait))
		if err != nil {
			if errors.Is(err, nats.ErrTimeout) {
				continue
			}
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Error().Err(err).Msg("fetch failed")
			continue
		}

		for _, msg := range msgs {
			if err := c.handle(msg); err != nil {
				c.logger.Error().Err(err).Msg("failed to process record")
				_ = msg.Nak()
				continue
			}
			_ = msg.Ack()
		}
	}
}

func (c *Consumer) handle(msg *nats.Msg) error {
	env, err := decodeEnvelope(msg.Data)
	if err != nil {
		return err
	}

	switch env.Kind {
	case RecordKindDepth:
		var rec DepthRecord
		if err := unmarshalPayload(env.Payload, &rec); err != nil {
			return err
		}
		return c.sink.WriteSnapshot(rec)
	case RecordKindAggTrade:
		var rec AggTradeRecord
		if err := unmarshalPayload(env.Payload, &rec); err != nil {
			return err
		}
		return c.sink.WriteAggTrade(rec)
	default:
		return errors.New("queue: unknown record kind " + string(env.Kind))
	}
}
