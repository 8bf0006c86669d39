package entity

import (
	"time"

	"github.com/google/uuid"
)

// ImageRecord tracks one image's ingestion lifecycle. Keywords are populated
// atomically with the transition to READY; ErrorDetail only with FAILED.
type ImageRecord struct {
	ID uuid.UUID `json:"id"`

	ObjectKey   string `json:"object_key"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`

	Status      Status   `json:"status"`
	Keywords    []string `json:"keywords,omitempty"`
	ErrorDetail *string  `json:"error_detail,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
