package kafka

import (
	"context"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/pixvault/image-search/pkg/kafka/consumer"
)

type EventConsumer struct {
	*consumer.Consumer
}

func NewEventConsumer(consumer *consumer.Consumer) *EventConsumer {
	return &EventConsumer{consumer}
}

func (c *EventConsumer) ReadEvent(ctx context.Context) (kafka.Message, error) {
	event, err := c.Reader.FetchMessage(ctx)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("EventConsumer - ReadEvent - c.Reader.FetchMessage: %w", err)
	}

	return event, nil
}

func (c *EventConsumer) CommitEvent(ctx context.Context, event kafka.Message) error {
	err := c.Reader.CommitMessages(ctx, event)
	if err != nil {
		return fmt.Errorf("EventConsumer - CommitEvent - c.Reader.CommitMessages: %w", err)
	}

	return nil
}
