package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/motoyard/motoyard-api/internal/model"
	"github.com/motoyard/motoyard-api/internal/repository"
	apperrors "github.com/motoyard/motoyard-api/pkg/errors"
)

type contentRepository struct {
	db *sqlx.DB
}

func NewContentRepository(db *sqlx.DB) repository.ContentRepository {
	return &contentRepository{db: db}
}

const contentColumns = `
	id, dealer_id, platform, body, image_url, status,
	scheduled_at, posted_at, last_error, created_at, updated_at
`

func (r *contentRepository) Create(ctx context.Context, item *model.ContentItem) error {
	query := `
		INSERT INTO content_items (
			id, dealer_id, platform, body, image_url, status,
			scheduled_at, posted_at, last_error, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		)
	`
	item.ID = uuid.New()
	item.CreatedAt = time.Now()
	item.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		item.ID,
		item.DealerID,
		item.Platform,
		item.Body,
		item.ImageURL,
		item.Status,
		item.ScheduledAt,
		item.PostedAt,
		item.LastError,
		item.CreatedAt,
		item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create content item: %w", err)
	}
	return nil
}

func (r *contentRepository) Get(ctx context.Context, id uuid.UUID) (*model.ContentItem, error) {
	query := `SELECT ` + contentColumns + ` FROM content_items WHERE id = $1`

	var item model.ContentItem
	err := r.db.GetContext(ctx, &item, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("content item", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get content item: %w", err)
	}
	return &item, nil
}

func (r *contentRepository) List(ctx context.Context, dealerID uuid.UUID, status string) ([]*model.ContentItem, error) {
	query := `
		SELECT ` + contentColumns + `
		FROM content_items
		WHERE dealer_id = $1
		AND (COALESCE($2, '') = '' OR status = $2)
		ORDER BY created_at DESC
	`
	var items []*model.ContentItem
	if err := r.db.SelectContext(ctx, &items, query, dealerID, status); err != nil {
		return nil, fmt.Errorf("failed to list content items: %w", err)
	}
	return items, nil
}

func (r *contentRepository) Update(ctx context.Context, item *model.ContentItem) error {
	query := `
		UPDATE content_items
		SET platform = $1, body = $2, image_url = $3, status = $4,
			scheduled_at = $5, updated_at = $6
		WHERE id = $7 AND dealer_id = $8
	`
	item.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		item.Platform,
		item.Body,
		item.ImageURL,
		item.Status,
		item.ScheduledAt,
		item.UpdatedAt,
		item.ID,
		item.DealerID,
	)
	if err != nil {
		return fmt.Errorf("failed to update content item: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("content item", nil)
	}
	return nil
}

func (r *contentRepository) Delete(ctx context.Context, dealerID, id uuid.UUID) error {
	query := `DELETE FROM content_items WHERE id = $1 AND dealer_id = $2`

	result, err := r.db.ExecContext(ctx, query, id, dealerID)
	if err != nil {
		return fmt.Errorf("failed to delete content item: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("content item", nil)
	}
	return nil
}

func (r *contentRepository) ClaimDue(ctx context.Context, limit int) ([]*model.ContentItem, error) {
	// FOR UPDATE SKIP LOCKED keeps concurrent dispatchers from claiming the
	// same rows; the status flip to posting happens in the same statement.
	query := `
		UPDATE content_items
		SET status = $1, updated_at = NOW()
		WHERE id IN (
			SELECT id FROM content_items
			WHERE status = $2 AND scheduled_at <= NOW()
			ORDER BY scheduled_at
			LIMIT $3
			FOR UPDATE SKIP LOCKED
		)
		RETURNING ` + contentColumns

	var items []*model.ContentItem
	err := r.db.SelectContext(ctx, &items, query,
		model.ContentStatusPosting,
		model.ContentStatusScheduled,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to claim due content items: %w", err)
	}
	return items, nil
}

func (r *contentRepository) MarkPosted(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE content_items
		SET status = $1, posted_at = NOW(), last_error = '', updated_at = NOW()
		WHERE id = $2
	`
	if _, err := r.db.ExecContext(ctx, query, model.ContentStatusPosted, id); err != nil {
		return fmt.Errorf("failed to mark content item posted: %w", err)
	}
	return nil
}

func (r *contentRepository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	query := `
		UPDATE content_items
		SET status = $1, last_error = $2, updated_at = NOW()
		WHERE id = $3
	`
	if _, err := r.db.ExecContext(ctx, query, model.ContentStatusFailed, reason, id); err != nil {
		return fmt.Errorf("failed to mark content item failed: %w", err)
	}
	return nil
}
