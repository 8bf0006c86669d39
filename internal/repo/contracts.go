package repo

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pixvault/image-search/internal/dto"
	"github.com/pixvault/image-search/internal/entity"
)

type (
	// ImageRecordRepo is the durable record store for ingestion lifecycle
	// records. UpdateStatusIf is a conditional write: it applies the new state
	// only while the current status equals expected, so a given transition
	// commits exactly once under concurrent attempts.
	ImageRecordRepo interface {
		Create(ctx context.Context, record *entity.ImageRecord) error
		GetByID(ctx context.Context, id uuid.UUID) (*entity.ImageRecord, error)
		UpdateStatusIf(ctx context.Context, id uuid.UUID, expected, next entity.Status, change dto.StatusChange) error
		Delete(ctx context.Context, id uuid.UUID) error
		SearchReady(ctx context.Context, terms []string) ([]*entity.ImageRecord, error)
	}

	// UploadSigner issues time-limited write credentials scoped to one object
	// key; the bytes never pass through this service.
	UploadSigner interface {
		SignedPutURL(ctx context.Context, key, contentType string, ttl time.Duration) (string, error)
	}
)
