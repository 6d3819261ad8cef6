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

type templateRepository struct {
	db *sqlx.DB
}

func NewTemplateRepository(db *sqlx.DB) repository.TemplateRepository {
	return &templateRepository{db: db}
}

func (r *templateRepository) Create(ctx context.Context, tmpl *model.Template) error {
	query := `
		INSERT INTO templates (
			id, dealer_id, name, language, body, status, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)
	`
	tmpl.ID = uuid.New()
	tmpl.CreatedAt = time.Now()
	tmpl.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		tmpl.ID,
		tmpl.DealerID,
		tmpl.Name,
		tmpl.Language,
		tmpl.Body,
		tmpl.Status,
		tmpl.CreatedAt,
		tmpl.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create template: %w", err)
	}
	return nil
}

func (r *templateRepository) Get(ctx context.Context, id uuid.UUID) (*model.Template, error) {
	query := `
		SELECT id, dealer_id, name, language, body, status, created_at, updated_at
		FROM templates
		WHERE id = $1
	`
	var tmpl model.Template
	err := r.db.GetContext(ctx, &tmpl, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("template", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	return &tmpl, nil
}

func (r *templateRepository) List(ctx context.Context, dealerID uuid.UUID) ([]*model.Template, error) {
	query := `
		SELECT id, dealer_id, name, language, body, status, created_at, updated_at
		FROM templates
		WHERE dealer_id = $1
		ORDER BY created_at DESC
	`
	var templates []*model.Template
	if err := r.db.SelectContext(ctx, &templates, query, dealerID); err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	return templates, nil
}

func (r *templateRepository) Update(ctx context.Context, tmpl *model.Template) error {
	query := `
		UPDATE templates
		SET name = $1, language = $2, body = $3, status = $4, updated_at = $5
		WHERE id = $6 AND dealer_id = $7
	`
	tmpl.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		tmpl.Name,
		tmpl.Language,
		tmpl.Body,
		tmpl.Status,
		tmpl.UpdatedAt,
		tmpl.ID,
		tmpl.DealerID,
	)
	if err != nil {
		return fmt.Errorf("failed to update template: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("template", nil)
	}
	return nil
}

func (r *templateRepository) Delete(ctx context.Context, dealerID, id uuid.UUID) error {
	query := `DELETE FROM templates WHERE id = $1 AND dealer_id = $2`

	result, err := r.db.ExecContext(ctx, query, id, dealerID)
	if err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("template", nil)
	}
	return nil
}
