package stream

import (
	"context"

	"github.com/ekdbss/onairmate-sync/internal/domain"
)

// MessageProducer exports persisted room messages to the archival pipeline.
// Export is best-effort: a producer failure never blocks or fails the chat path.
type MessageProducer interface {
	ProduceMessage(ctx context.Context, msg *domain.RoomMessage) error
	Close() error
}

// NopProducer is used when the Kafka export is disabled.
type NopProducer struct{}

func (NopProducer) ProduceMessage(ctx context.Context, msg *domain.RoomMessage) error { return nil }
func (NopProducer) Close() error                                                      { return nil }
