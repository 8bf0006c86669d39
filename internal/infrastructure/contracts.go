package infrastructure

import (
	"context"

	"github.com/segmentio/kafka-go"
)

type (
	// EventSource is an at-least-once stream of indexing lifecycle events.
	// An event is redelivered until CommitEvent acknowledges it.
	EventSource interface {
		ReadEvent(ctx context.Context) (kafka.Message, error)
		CommitEvent(ctx context.Context, event kafka.Message) error
		Close() error
	}
)
