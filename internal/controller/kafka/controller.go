// Package kafka consumes indexing lifecycle events published by the external
// indexing worker and commits the matching status transitions through the
// record store's conditional write.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/pixvault/image-search/internal/dto"
	"github.com/pixvault/image-search/internal/infrastructure"
	"github.com/pixvault/image-search/internal/usecase"
	"github.com/pixvault/image-search/pkg/logger"
	"github.com/pixvault/image-search/pkg/types/errs"
)

type KafkaController struct {
	img    usecase.ImageUseCase
	es     infrastructure.EventSource
	logger logger.Interface

	commitTimeout  time.Duration
	processTimeout time.Duration
	casAttempts    int

	workers int
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	started atomic.Bool
}

func New(
	img usecase.ImageUseCase,
	es infrastructure.EventSource,
	l logger.Interface,
	commitTimeout time.Duration,
	processTimeout time.Duration,
	casAttempts int,
	workers int,
) *KafkaController {
	return &KafkaController{
		img:            img,
		es:             es,
		logger:         l,
		commitTimeout:  commitTimeout,
		processTimeout: processTimeout,
		casAttempts:    casAttempts,
		workers:        workers,
	}
}

func (c *KafkaController) Start(ctx context.Context) error {
	if !c.started.CompareAndSwap(false, true) {
		return fmt.Errorf("KafkaController - Start - controller already started")
	}

	c.ctx, c.cancel = context.WithCancel(ctx)

	tasks := make(chan kafka.Message, c.workers*2)

	for i := 0; i < c.workers; i++ {
		c.wg.Add(1)
		go c.worker(tasks)
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer close(tasks)

		for {
			select {
			case <-c.ctx.Done():
				return
			default:
				event, err := c.es.ReadEvent(c.ctx)
				if err != nil {
					if !errors.Is(err, context.Canceled) {
						c.logger.Error(err, "KafkaController - Start - c.es.ReadEvent")
					}
					continue
				}

				select {
				case tasks <- event:
				case <-c.ctx.Done():
					return
				}
			}
		}
	}()

	return nil
}

func (c *KafkaController) worker(tasks <-chan kafka.Message) {
	defer c.wg.Done()

	for event := range tasks {
		processCtx, processCancel := context.WithTimeout(c.ctx, c.processTimeout)
		err := c.applyTransition(processCtx, event)
		processCancel()

		if err != nil {
			c.logger.Error(err, "KafkaController - worker - c.applyTransition")

			// transient failure: leave the offset uncommitted so the event is redelivered
			continue
		}

		commitCtx, commitCancel := context.WithTimeout(c.ctx, c.commitTimeout)
		err = c.es.CommitEvent(commitCtx, event)
		commitCancel()

		if err != nil {
			c.logger.Error(err, "KafkaController - worker - c.es.CommitEvent")
		}
	}
}

// applyTransition decodes one lifecycle event and commits it via the record
// store's conditional write. A nil return acknowledges the event; malformed
// events are acknowledged too since redelivery cannot fix them.
func (c *KafkaController) applyTransition(ctx context.Context, event kafka.Message) error {
	var payload TransitionEventPayload
	err := json.Unmarshal(event.Value, &payload)
	if err != nil {
		c.logger.Warn("dropping malformed event, offset=%d, error=%v", event.Offset, err)

		return nil
	}

	expected, next, err := payload.Transition()
	if err != nil {
		c.logger.Warn("dropping event, offset=%d, error=%v", event.Offset, err)

		return nil
	}

	change := dto.StatusChange{
		Keywords:    payload.Keywords,
		ErrorDetail: payload.ErrorDetail,
	}

	for attempt := 1; ; attempt++ {
		err = c.img.CommitTransition(ctx, payload.ImageID, expected, next, change)
		if err == nil {
			return nil
		}

		if errors.Is(err, errs.ErrValidation) || errors.Is(err, errs.ErrRecordNotFound) {
			c.logger.Warn("dropping uncommittable event, id=%s, event=%s, error=%v",
				payload.ImageID, payload.Event, err)

			return nil
		}

		if !errors.Is(err, errs.ErrStatusConflict) || attempt >= c.casAttempts {
			return fmt.Errorf("KafkaController - applyTransition - c.img.CommitTransition: %w", err)
		}
	}
}

func (c *KafkaController) Shutdown(ctx context.Context) error {
	if !c.started.Load() {
		return nil
	}

	if c.cancel != nil {
		c.cancel()
	}

	done := make(chan struct{})

	go func() {
		c.wg.Wait()
		c.es.Close()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return nil
	}
}
