package usecase

import (
	"context"

	"github.com/google/uuid"

	"github.com/pixvault/image-search/internal/dto"
	"github.com/pixvault/image-search/internal/entity"
)

type (
	ImageUseCase interface {
		IssueUpload(ctx context.Context, desc dto.UploadDescriptor) (*entity.ImageRecord, *dto.UploadCredential, error)
		GetStatus(ctx context.Context, id uuid.UUID) (*entity.ImageRecord, error)
		Search(ctx context.Context, query string) ([]*entity.ImageRecord, error)
		CommitTransition(ctx context.Context, id uuid.UUID, expected, next entity.Status, change dto.StatusChange) error
	}
)
