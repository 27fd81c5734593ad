package broker

import (
	"context"

	"herald/pkg/models"
)

// Producer publishes JSON payloads keyed for partition affinity.
type Producer interface {
	Publish(ctx context.Context, topic, key string, payload interface{}) error
	Close() error
}

// Consumer feeds normalized messages to a handler with retry and DLQ
// semantics.
type Consumer interface {
	Consume(ctx context.Context, topic string, handler HandlerFunc) error
	Close() error
	SetServiceName(name string)
}

type HandlerFunc func(ctx context.Context, msg *models.NormalizedMessage) error
