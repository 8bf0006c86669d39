package image

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixvault/image-search/internal/dto"
	"github.com/pixvault/image-search/internal/entity"
	"github.com/pixvault/image-search/pkg/types/errs"
)

type noopLogger struct{}

func (noopLogger) Debug(message interface{}, args ...interface{}) {}
func (noopLogger) Info(message string, args ...interface{})      {}
func (noopLogger) Warn(message string, args ...interface{})      {}
func (noopLogger) Error(message interface{}, args ...interface{}) {
}
func (noopLogger) Fatal(message interface{}, args ...interface{}) {}

type fakeRecordRepo struct {
	records map[uuid.UUID]*entity.ImageRecord

	createErr error
	updateErr error
	searchErr error

	lastSearchTerms []string
	lastChange      dto.StatusChange
	deleted         []uuid.UUID
}

func newFakeRecordRepo() *fakeRecordRepo {
	return &fakeRecordRepo{records: make(map[uuid.UUID]*entity.ImageRecord)}
}

func (f *fakeRecordRepo) Create(_ context.Context, record *entity.ImageRecord) error {
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.records[record.ID]; ok {
		return errs.ErrAlreadyExists
	}
	clone := *record
	f.records[record.ID] = &clone
	return nil
}

func (f *fakeRecordRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.ImageRecord, error) {
	record, ok := f.records[id]
	if !ok {
		return nil, errs.ErrRecordNotFound
	}
	clone := *record
	return &clone, nil
}

func (f *fakeRecordRepo) UpdateStatusIf(
	_ context.Context,
	id uuid.UUID,
	expected, next entity.Status,
	change dto.StatusChange,
) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	record, ok := f.records[id]
	if !ok {
		return errs.ErrRecordNotFound
	}
	if record.Status != expected {
		return errs.ErrStatusConflict
	}
	record.Status = next
	record.Keywords = change.Keywords
	record.ErrorDetail = change.ErrorDetail
	record.UpdatedAt = time.Now()
	f.lastChange = change
	return nil
}

func (f *fakeRecordRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.records[id]; !ok {
		return errs.ErrRecordNotFound
	}
	delete(f.records, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeRecordRepo) SearchReady(_ context.Context, terms []string) ([]*entity.ImageRecord, error) {
	f.lastSearchTerms = terms
	if f.searchErr != nil {
		return nil, f.searchErr
	}

	var out []*entity.ImageRecord
	for _, record := range f.records {
		if record.Status != entity.Ready {
			continue
		}
		if containsAll(record.Keywords, terms) {
			clone := *record
			out = append(out, &clone)
		}
	}
	return out, nil
}

func containsAll(keywords, terms []string) bool {
	set := make(map[string]bool, len(keywords))
	for _, kw := range keywords {
		set[kw] = true
	}
	for _, term := range terms {
		if !set[term] {
			return false
		}
	}
	return true
}

type fakeSigner struct {
	url string
	err error

	lastKey         string
	lastContentType string
	lastTTL         time.Duration
}

func (f *fakeSigner) SignedPutURL(_ context.Context, key, contentType string, ttl time.Duration) (string, error) {
	f.lastKey = key
	f.lastContentType = contentType
	f.lastTTL = ttl
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

func newUseCase(repo *fakeRecordRepo, signer *fakeSigner) *ImageUseCase {
	return New(repo, signer, 15*time.Minute, noopLogger{})
}

func TestIssueUpload(t *testing.T) {
	repo := newFakeRecordRepo()
	signer := &fakeSigner{url: "https://storage.example/uploads/signed"}
	uc := newUseCase(repo, signer)

	record, credential, err := uc.IssueUpload(context.Background(), dto.UploadDescriptor{
		FileName:    "cat.jpg",
		ContentType: "image/jpeg",
	})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, record.ID)
	assert.Equal(t, entity.Pending, record.Status)
	assert.Equal(t, "uploads/"+record.ID.String(), record.ObjectKey)
	assert.Equal(t, signer.url, credential.UploadURL)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), credential.ExpiresAt, time.Minute)

	// the durable record matches what the caller got back
	stored, err := repo.GetByID(context.Background(), record.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.Pending, stored.Status)
	assert.Empty(t, stored.Keywords)

	// the credential is scoped to the record's object key
	assert.Equal(t, record.ObjectKey, signer.lastKey)
	assert.Equal(t, "image/jpeg", signer.lastContentType)
	assert.Equal(t, 15*time.Minute, signer.lastTTL)
}

func TestIssueUploadFreshIDs(t *testing.T) {
	repo := newFakeRecordRepo()
	uc := newUseCase(repo, &fakeSigner{url: "https://storage.example/signed"})

	seen := make(map[uuid.UUID]bool)
	for i := 0; i < 50; i++ {
		record, _, err := uc.IssueUpload(context.Background(), dto.UploadDescriptor{
			FileName:    "photo.png",
			ContentType: "image/png",
		})
		require.NoError(t, err)
		assert.False(t, seen[record.ID])
		seen[record.ID] = true
	}
}

func TestIssueUploadValidation(t *testing.T) {
	cases := []struct {
		name string
		desc dto.UploadDescriptor
	}{
		{"missing file name", dto.UploadDescriptor{ContentType: "image/png"}},
		{"blank file name", dto.UploadDescriptor{FileName: "   ", ContentType: "image/png"}},
		{"missing content type", dto.UploadDescriptor{FileName: "cat.jpg"}},
		{"unsupported content type", dto.UploadDescriptor{FileName: "report.pdf", ContentType: "application/pdf"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := newFakeRecordRepo()
			uc := newUseCase(repo, &fakeSigner{url: "unused"})

			_, _, err := uc.IssueUpload(context.Background(), tc.desc)
			assert.ErrorIs(t, err, errs.ErrValidation)
			assert.Empty(t, repo.records)
		})
	}
}

func TestIssueUploadRollsBackWhenSigningFails(t *testing.T) {
	repo := newFakeRecordRepo()
	signer := &fakeSigner{err: errors.New("presign unavailable")}
	uc := newUseCase(repo, signer)

	_, _, err := uc.IssueUpload(context.Background(), dto.UploadDescriptor{
		FileName:    "cat.jpg",
		ContentType: "image/jpeg",
	})
	require.Error(t, err)

	// a PENDING record must never survive without a valid credential
	assert.Empty(t, repo.records)
	assert.Len(t, repo.deleted, 1)
}

func TestGetStatus(t *testing.T) {
	repo := newFakeRecordRepo()
	uc := newUseCase(repo, &fakeSigner{url: "unused"})

	id := uuid.New()
	repo.records[id] = &entity.ImageRecord{ID: id, Status: entity.Processing}

	record, err := uc.GetStatus(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, entity.Processing, record.Status)

	_, err = uc.GetStatus(context.Background(), uuid.New())
	assert.ErrorIs(t, err, errs.ErrRecordNotFound)
}

func TestSearch(t *testing.T) {
	repo := newFakeRecordRepo()
	uc := newUseCase(repo, &fakeSigner{url: "unused"})

	ready := uuid.New()
	pending := uuid.New()
	repo.records[ready] = &entity.ImageRecord{
		ID: ready, Status: entity.Ready, Keywords: []string{"cat", "outdoor"},
	}
	repo.records[pending] = &entity.ImageRecord{ID: pending, Status: entity.Pending}

	records, err := uc.Search(context.Background(), "  CAT  Outdoor ")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, ready, records[0].ID)

	// terms reach the store lowercased
	assert.Equal(t, []string{"cat", "outdoor"}, repo.lastSearchTerms)
}

func TestSearchEmptyQuery(t *testing.T) {
	uc := newUseCase(newFakeRecordRepo(), &fakeSigner{url: "unused"})

	for _, query := range []string{"", "   ", "\t\n"} {
		_, err := uc.Search(context.Background(), query)
		assert.ErrorIs(t, err, errs.ErrValidation)
	}
}

func TestSearchNeverReturnsNonReady(t *testing.T) {
	repo := newFakeRecordRepo()
	uc := newUseCase(repo, &fakeSigner{url: "unused"})

	for _, status := range []entity.Status{entity.Pending, entity.Processing, entity.Failed} {
		id := uuid.New()
		repo.records[id] = &entity.ImageRecord{
			ID: id, Status: status, Keywords: []string{"cat"},
		}
	}

	records, err := uc.Search(context.Background(), "cat")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestCommitTransition(t *testing.T) {
	repo := newFakeRecordRepo()
	uc := newUseCase(repo, &fakeSigner{url: "unused"})

	id := uuid.New()
	repo.records[id] = &entity.ImageRecord{ID: id, Status: entity.Pending}

	err := uc.CommitTransition(context.Background(), id, entity.Pending, entity.Processing, dto.StatusChange{})
	require.NoError(t, err)
	assert.Equal(t, entity.Processing, repo.records[id].Status)

	err = uc.CommitTransition(context.Background(), id, entity.Processing, entity.Ready, dto.StatusChange{
		Keywords: []string{"Cat", " Outdoor "},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.Ready, repo.records[id].Status)
	// keywords land lowercased and trimmed, atomically with READY
	assert.Equal(t, []string{"cat", "outdoor"}, repo.records[id].Keywords)
}

func TestCommitTransitionRejectsInvalidStep(t *testing.T) {
	uc := newUseCase(newFakeRecordRepo(), &fakeSigner{url: "unused"})

	err := uc.CommitTransition(context.Background(), uuid.New(), entity.Pending, entity.Ready, dto.StatusChange{
		Keywords: []string{"cat"},
	})
	assert.ErrorIs(t, err, errs.ErrValidation)

	err = uc.CommitTransition(context.Background(), uuid.New(), entity.Ready, entity.Failed, dto.StatusChange{})
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestCommitTransitionRequiresKeywordsForReady(t *testing.T) {
	uc := newUseCase(newFakeRecordRepo(), &fakeSigner{url: "unused"})

	err := uc.CommitTransition(context.Background(), uuid.New(), entity.Processing, entity.Ready, dto.StatusChange{})
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestCommitTransitionIdempotentRedelivery(t *testing.T) {
	repo := newFakeRecordRepo()
	uc := newUseCase(repo, &fakeSigner{url: "unused"})

	id := uuid.New()
	repo.records[id] = &entity.ImageRecord{ID: id, Status: entity.Ready, Keywords: []string{"cat"}}

	// redelivered completion against an already-READY record is success
	err := uc.CommitTransition(context.Background(), id, entity.Processing, entity.Ready, dto.StatusChange{
		Keywords: []string{"cat"},
	})
	assert.NoError(t, err)
	assert.Equal(t, entity.Ready, repo.records[id].Status)
}

func TestCommitTransitionLostRace(t *testing.T) {
	repo := newFakeRecordRepo()
	uc := newUseCase(repo, &fakeSigner{url: "unused"})

	id := uuid.New()
	repo.records[id] = &entity.ImageRecord{ID: id, Status: entity.Pending}

	// commit against a record that has not reached the expected state yet
	err := uc.CommitTransition(context.Background(), id, entity.Processing, entity.Ready, dto.StatusChange{
		Keywords: []string{"cat"},
	})
	assert.ErrorIs(t, err, errs.ErrStatusConflict)
	assert.Equal(t, entity.Pending, repo.records[id].Status)
}

func TestCommitTransitionExactlyOnce(t *testing.T) {
	repo := newFakeRecordRepo()
	uc := newUseCase(repo, &fakeSigner{url: "unused"})

	id := uuid.New()
	repo.records[id] = &entity.ImageRecord{ID: id, Status: entity.Processing}

	detail := "decode failed"
	first := uc.CommitTransition(context.Background(), id, entity.Processing, entity.Ready, dto.StatusChange{
		Keywords: []string{"cat"},
	})
	second := uc.CommitTransition(context.Background(), id, entity.Processing, entity.Failed, dto.StatusChange{
		ErrorDetail: &detail,
	})

	// the first terminal write wins; the loser surfaces the conflict
	require.NoError(t, first)
	assert.ErrorIs(t, second, errs.ErrStatusConflict)
	assert.Equal(t, entity.Ready, repo.records[id].Status)
	assert.Equal(t, []string{"cat"}, repo.records[id].Keywords)
}
