package persistent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pixvault/image-search/internal/dto"
	"github.com/pixvault/image-search/internal/entity"
	"github.com/pixvault/image-search/pkg/postgres"
	"github.com/pixvault/image-search/pkg/types/errs"
)

const (
	// Table
	imagesTable = "images"

	// Columns
	idColumn          = "id"
	objectKeyColumn   = "object_key"
	fileNameColumn    = "file_name"
	contentTypeColumn = "content_type"
	statusColumn      = "status"
	keywordsColumn    = "keywords"
	errorDetailColumn = "error_detail"
	createdAtColumn   = "created_at"
	updatedAtColumn   = "updated_at"
)

const _uniqueViolationCode = "23505"

type ImageRecordRepo struct {
	*postgres.Postgres
}

func NewImageRecordRepo(pg *postgres.Postgres) *ImageRecordRepo {
	return &ImageRecordRepo{pg}
}

func (r *ImageRecordRepo) Create(ctx context.Context, record *entity.ImageRecord) error {
	sql, args, err := r.Builder.
		Insert(imagesTable).
		Columns(
			idColumn,
			objectKeyColumn,
			fileNameColumn,
			contentTypeColumn,
			statusColumn,
			createdAtColumn,
			updatedAtColumn,
		).
		Values(
			record.ID,
			record.ObjectKey,
			record.FileName,
			record.ContentType,
			record.Status,
			record.CreatedAt,
			record.UpdatedAt,
		).ToSql()
	if err != nil {
		return fmt.Errorf("ImageRecordRepo - Create - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	_, err = executor.Exec(ctx, sql, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == _uniqueViolationCode {
			return fmt.Errorf("ImageRecordRepo - Create: %w", errs.ErrAlreadyExists)
		}
		return fmt.Errorf("ImageRecordRepo - Create - executor.Exec: %w", err)
	}

	return nil
}

func (r *ImageRecordRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.ImageRecord, error) {
	sql, args, err := r.Builder.
		Select(
			idColumn,
			objectKeyColumn,
			fileNameColumn,
			contentTypeColumn,
			statusColumn,
			keywordsColumn,
			errorDetailColumn,
			createdAtColumn,
			updatedAtColumn,
		).
		From(imagesTable).
		Where(squirrel.Eq{idColumn: id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ImageRecordRepo - GetByID - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	var record entity.ImageRecord
	err = executor.QueryRow(ctx, sql, args...).Scan(
		&record.ID,
		&record.ObjectKey,
		&record.FileName,
		&record.ContentType,
		&record.Status,
		&record.Keywords,
		&record.ErrorDetail,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("ImageRecordRepo - GetByID: %w", errs.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("ImageRecordRepo - GetByID - executor.QueryRow: %w", err)
	}

	return &record, nil
}

// UpdateStatusIf commits one status transition with a conditional write. The
// guard on the expected status makes a given transition apply exactly once;
// keywords and error detail land in the same statement as the status, so a
// reader never observes READY without its keyword set.
func (r *ImageRecordRepo) UpdateStatusIf(
	ctx context.Context,
	id uuid.UUID,
	expected, next entity.Status,
	change dto.StatusChange,
) error {
	sql, args, err := r.Builder.
		Update(imagesTable).
		Set(statusColumn, next).
		Set(keywordsColumn, change.Keywords).
		Set(errorDetailColumn, change.ErrorDetail).
		Set(updatedAtColumn, time.Now()).
		Where(squirrel.And{
			squirrel.Eq{idColumn: id},
			squirrel.Eq{statusColumn: expected},
		}).
		ToSql()
	if err != nil {
		return fmt.Errorf("ImageRecordRepo - UpdateStatusIf - r.Builder.ToSql: %w", err)
	}

	// The write and the zero-rows disambiguation probe share a transaction so
	// the probe sees the row the guard rejected.
	return r.WithinTransaction(ctx, func(ctx context.Context) error {
		executor := r.GetExecutor(ctx)

		tag, err := executor.Exec(ctx, sql, args...)
		if err != nil {
			return fmt.Errorf("ImageRecordRepo - UpdateStatusIf - executor.Exec: %w", err)
		}

		if tag.RowsAffected() == 0 {
			// Zero rows means the record is absent or the guard failed.
			if _, getErr := r.GetByID(ctx, id); getErr != nil {
				return fmt.Errorf("ImageRecordRepo - UpdateStatusIf: %w", errs.ErrRecordNotFound)
			}
			return fmt.Errorf("ImageRecordRepo - UpdateStatusIf: %w", errs.ErrStatusConflict)
		}

		return nil
	})
}

func (r *ImageRecordRepo) Delete(ctx context.Context, id uuid.UUID) error {
	sql, args, err := r.Builder.
		Delete(imagesTable).
		Where(squirrel.Eq{idColumn: id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("ImageRecordRepo - Delete - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	tag, err := executor.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("ImageRecordRepo - Delete - executor.Exec: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("ImageRecordRepo - Delete: %w", errs.ErrRecordNotFound)
	}

	return nil
}

// SearchReady returns records whose keyword set contains every term. The
// status guard lives in the SQL predicate, so rows that are not durably READY
// can never match.
func (r *ImageRecordRepo) SearchReady(ctx context.Context, terms []string) ([]*entity.ImageRecord, error) {
	sql, args, err := r.Builder.
		Select(
			idColumn,
			objectKeyColumn,
			fileNameColumn,
			contentTypeColumn,
			statusColumn,
			keywordsColumn,
			errorDetailColumn,
			createdAtColumn,
			updatedAtColumn,
		).
		From(imagesTable).
		Where(squirrel.And{
			squirrel.Eq{statusColumn: entity.Ready},
			squirrel.Expr(keywordsColumn+" @> ?", terms),
		}).
		OrderBy(createdAtColumn + " DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ImageRecordRepo - SearchReady - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	rows, err := executor.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("ImageRecordRepo - SearchReady - executor.Query: %w", err)
	}
	defer rows.Close()

	var records []*entity.ImageRecord
	for rows.Next() {
		var record entity.ImageRecord
		err = rows.Scan(
			&record.ID,
			&record.ObjectKey,
			&record.FileName,
			&record.ContentType,
			&record.Status,
			&record.Keywords,
			&record.ErrorDetail,
			&record.CreatedAt,
			&record.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("ImageRecordRepo - SearchReady - rows.Scan: %w", err)
		}
		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ImageRecordRepo - SearchReady - rows.Err: %w", err)
	}

	return records, nil
}
