package image

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pixvault/image-search/internal/dto"
	"github.com/pixvault/image-search/internal/entity"
	"github.com/pixvault/image-search/internal/repo"
	"github.com/pixvault/image-search/pkg/logger"
	"github.com/pixvault/image-search/pkg/types/errs"
)

type ImageUseCase struct {
	recordRepo repo.ImageRecordRepo
	signer     repo.UploadSigner

	uploadTTL time.Duration

	logger logger.Interface
}

func New(
	recordRepo repo.ImageRecordRepo,
	signer repo.UploadSigner,
	uploadTTL time.Duration,
	l logger.Interface,
) *ImageUseCase {
	return &ImageUseCase{
		recordRepo: recordRepo,
		signer:     signer,
		uploadTTL:  uploadTTL,
		logger:     l,
	}
}

// IssueUpload creates a PENDING record and a matching time-limited upload
// credential. If credential issuance fails the record is deleted, so a
// PENDING record never exists without a valid, not-yet-expired credential.
func (uc *ImageUseCase) IssueUpload(
	ctx context.Context,
	desc dto.UploadDescriptor,
) (*entity.ImageRecord, *dto.UploadCredential, error) {
	if err := validateDescriptor(desc); err != nil {
		return nil, nil, fmt.Errorf("ImageUseCase - IssueUpload: %w", err)
	}

	imageID := uuid.New()
	objectKey := fmt.Sprintf("uploads/%s", imageID)

	now := time.Now()
	record := &entity.ImageRecord{
		ID:          imageID,
		ObjectKey:   objectKey,
		FileName:    desc.FileName,
		ContentType: desc.ContentType,
		Status:      entity.Pending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	// 1. create the record first so the credential can never outlive it
	err := uc.recordRepo.Create(ctx, record)
	if err != nil {
		return nil, nil, fmt.Errorf("ImageUseCase - IssueUpload - uc.recordRepo.Create: %w", err)
	}

	// 2. issue the credential scoped to the object key
	expiresAt := time.Now().Add(uc.uploadTTL)
	uploadURL, err := uc.signer.SignedPutURL(ctx, objectKey, desc.ContentType, uc.uploadTTL)
	// signing failed: roll the record back
	if err != nil {
		deleteErr := uc.recordRepo.Delete(ctx, imageID)
		if deleteErr != nil {
			uc.logger.Error(deleteErr, "ImageUseCase - IssueUpload - uc.recordRepo.Delete")
		}
		return nil, nil, fmt.Errorf("ImageUseCase - IssueUpload - uc.signer.SignedPutURL: %w", err)
	}

	return record, &dto.UploadCredential{
		UploadURL: uploadURL,
		ExpiresAt: expiresAt,
	}, nil
}

// GetStatus is a snapshot read of the record; the caller may observe any
// state along the monotonic transition sequence depending on timing.
func (uc *ImageUseCase) GetStatus(ctx context.Context, id uuid.UUID) (*entity.ImageRecord, error) {
	record, err := uc.recordRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("ImageUseCase - GetStatus - uc.recordRepo.GetByID: %w", err)
	}

	return record, nil
}

// Search matches READY records whose keyword set contains every term of the
// query. Matching is case-insensitive; multi-term queries use AND semantics.
func (uc *ImageUseCase) Search(ctx context.Context, query string) ([]*entity.ImageRecord, error) {
	terms := searchTerms(query)
	if len(terms) == 0 {
		return nil, fmt.Errorf("ImageUseCase - Search: %w: empty query", errs.ErrValidation)
	}

	records, err := uc.recordRepo.SearchReady(ctx, terms)
	if err != nil {
		return nil, fmt.Errorf("ImageUseCase - Search - uc.recordRepo.SearchReady: %w", err)
	}

	return records, nil
}

// CommitTransition applies one lifecycle step through the record store's
// conditional write. A redelivered transition whose target the record has
// already reached is reported as success; a genuine lost race surfaces as
// errs.ErrStatusConflict for the caller to retry.
func (uc *ImageUseCase) CommitTransition(
	ctx context.Context,
	id uuid.UUID,
	expected, next entity.Status,
	change dto.StatusChange,
) error {
	if !expected.CanTransition(next) {
		return fmt.Errorf("ImageUseCase - CommitTransition: %w: %s -> %s", errs.ErrValidation, expected, next)
	}

	change = normalizeChange(next, change)
	if next == entity.Ready && len(change.Keywords) == 0 {
		return fmt.Errorf("ImageUseCase - CommitTransition: %w: READY requires keywords", errs.ErrValidation)
	}

	err := uc.recordRepo.UpdateStatusIf(ctx, id, expected, next, change)
	if err == nil {
		return nil
	}

	if errors.Is(err, errs.ErrStatusConflict) {
		record, getErr := uc.recordRepo.GetByID(ctx, id)
		if getErr != nil {
			return fmt.Errorf("ImageUseCase - CommitTransition - uc.recordRepo.GetByID: %w", getErr)
		}
		if record.Status == next || record.Status.Beyond(next) {
			uc.logger.Debug("transition already applied, id=%s, status=%s", id, record.Status)

			return nil
		}
	}

	return fmt.Errorf("ImageUseCase - CommitTransition - uc.recordRepo.UpdateStatusIf: %w", err)
}
