package consumer

import (
	kafkago "github.com/segmentio/kafka-go"
)

// NewReader builds a consumer-group reader for one topic. Offsets are
// committed manually after the handler succeeds, so redelivery is the
// failure mode and every handler must be idempotent.
func NewReader(brokers []string, groupID, topic string) *kafkago.Reader {
	return kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  brokers,
		GroupID:  groupID,
		Topic:    topic,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
}
