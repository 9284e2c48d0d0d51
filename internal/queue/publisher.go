package queue

import (
	"github.com/nats-io/nats.go"

	"github.com/BullionBear/depthkeeper/internal/depth"
)

// Publisher implements internal/sink.LogPublisher over a JetStream
// subject: the loader process's only view of the writer side is this
// one subject, so the two processes share no state beyond it.
type Publisher struct {
	js      nats.JetStreamContext
	subject string
}

func NewPublisher(js nats.JetStreamContext, subject string) *Publisher {
	return &Publisher{js: js, subject: subject}
}

func (p *Publisher) PublishSnapshot(snap depth.Snapshot) error {
	data, err := encodeEnvelope(RecordKindDepth, toDepthRecord(snap))
	if err != nil {
		return err
	}
	_, err = p.js.Publish(p.subject, data)
	return err
}

func (p *Publisher) PublishAggTrade(trade depth.AggTrade) error {
	data, err := encodeEnvelope(RecordKindAggTrade, toAggTradeRecord(trade))
	if err != nil {
		return err
	}
	_, err = p.js.Publish(p.subject, data)
	return err
}

// EnsureStream creates the backing stream if it does not already exist,
// matching the teacher's AddStream-is-idempotent usage.
func EnsureStream(js nats.JetStreamContext, stream, subject string) error {
	_, err := js.StreamInfo(stream)
	if err == nil {
		return nil
	}
	_, err = js.AddStream(&nats.StreamConfig{
		Name:     stream,
		Subjects: []string{subject},
		Storage:  nats.FileStorage,
	})
	return err
}
