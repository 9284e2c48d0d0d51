// Package queue carries depth snapshots and agg trades across the
// loader/writer process boundary over NATS JetStream: the loader
// publishes, the writer pull-consumes and decodes.
package queue

import "github.com/vmihailenco/msgpack/v5"

// RecordKind discriminates the two record shapes sharing one subject.
type RecordKind string

const (
	RecordKindDepth    RecordKind = "DEPTH"
	RecordKindAggTrade RecordKind = "AGG_TRADE"
)

// Envelope is the wire shape published to JetStream: Kind lets the
// consumer pick the right payload type before decoding Payload.
type Envelope struct {
	Kind    RecordKind `msgpack:"kind"`
	Payload []byte     `msgpack:"payload"`
}

func encodeEnvelope(kind RecordKind, payload interface{}) ([]byte, error) {
	packed, err := msgpack.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return msgpack.Marshal(Envelope{Kind: kind, Payload: packed})
}

func decodeEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	err := msgpack.Unmarshal(data, &env)
	return env, err
}

func unmarshalPayload(payload []byte, v interface{}) error {
	return msgpack.Unmarshal(payload, v)
}
