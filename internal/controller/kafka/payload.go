package kafka

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/pixvault/image-search/internal/entity"
)

// Event kinds published by the indexing worker.
const (
	EventIndexingStarted   = "indexing_started"
	EventIndexingCompleted = "indexing_completed"
	EventIndexingFailed    = "indexing_failed"
)

// TransitionEventPayload is the wire format of one lifecycle event. Keywords
// accompany indexing_completed; errorDetail accompanies indexing_failed.
type TransitionEventPayload struct {
	ImageID     uuid.UUID `json:"imageId"`
	Event       string    `json:"event"`
	Keywords    []string  `json:"keywords,omitempty"`
	ErrorDetail *string   `json:"errorDetail,omitempty"`
}

// Transition resolves the event kind to the conditional write it stands for.
func (p *TransitionEventPayload) Transition() (expected, next entity.Status, err error) {
	switch p.Event {
	case EventIndexingStarted:
		return entity.Pending, entity.Processing, nil
	case EventIndexingCompleted:
		return entity.Processing, entity.Ready, nil
	case EventIndexingFailed:
		return entity.Processing, entity.Failed, nil
	default:
		return "", "", fmt.Errorf("unknown event %q", p.Event)
	}
}
