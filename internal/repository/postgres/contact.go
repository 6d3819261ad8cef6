package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/motoyard/motoyard-api/internal/model"
	"github.com/motoyard/motoyard-api/internal/repository"
	apperrors "github.com/motoyard/motoyard-api/pkg/errors"
)

type contactRepository struct {
	db *sqlx.DB
}

func NewContactRepository(db *sqlx.DB) repository.ContactRepository {
	return &contactRepository{db: db}
}

func (r *contactRepository) Create(ctx context.Context, contact *model.Contact) error {
	query := `
		INSERT INTO contacts (
			id, dealer_id, phone, name, opted_in, tags, source, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)
	`
	contact.ID = uuid.New()
	contact.CreatedAt = time.Now()
	contact.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		contact.ID,
		contact.DealerID,
		contact.Phone,
		contact.Name,
		contact.OptedIn,
		contact.Tags,
		contact.Source,
		contact.CreatedAt,
		contact.UpdatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return apperrors.Conflict("contact with this phone already exists", err)
		}
		return fmt.Errorf("failed to create contact: %w", err)
	}
	return nil
}

func (r *contactRepository) Get(ctx context.Context, id uuid.UUID) (*model.Contact, error) {
	query := `
		SELECT id, dealer_id, phone, name, opted_in, tags, source, created_at, updated_at
		FROM contacts
		WHERE id = $1
	`
	var contact model.Contact
	err := r.db.GetContext(ctx, &contact, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("contact", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}
	return &contact, nil
}

func (r *contactRepository) GetByPhone(ctx context.Context, dealerID uuid.UUID, phone string) (*model.Contact, error) {
	query := `
		SELECT id, dealer_id, phone, name, opted_in, tags, source, created_at, updated_at
		FROM contacts
		WHERE dealer_id = $1 AND phone = $2
	`
	var contact model.Contact
	err := r.db.GetContext(ctx, &contact, query, dealerID, phone)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("contact", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contact by phone: %w", err)
	}
	return &contact, nil
}

func (r *contactRepository) FindDealerByPhone(ctx context.Context, phone string) (uuid.UUID, error) {
	// Oldest contact wins when the same number was messaged to two dealers.
	query := `
		SELECT dealer_id
		FROM contacts
		WHERE phone = $1
		ORDER BY created_at
		LIMIT 1
	`
	var dealerID uuid.UUID
	err := r.db.GetContext(ctx, &dealerID, query, phone)
	if errors.Is(err, sql.ErrNoRows) {
		return uuid.Nil, apperrors.NotFound("dealer", err)
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to resolve dealer by phone: %w", err)
	}
	return dealerID, nil
}

func (r *contactRepository) List(ctx context.Context, dealerID uuid.UUID) ([]*model.Contact, error) {
	query := `
		SELECT id, dealer_id, phone, name, opted_in, tags, source, created_at, updated_at
		FROM contacts
		WHERE dealer_id = $1
		ORDER BY created_at DESC
	`
	var contacts []*model.Contact
	if err := r.db.SelectContext(ctx, &contacts, query, dealerID); err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	return contacts, nil
}

func (r *contactRepository) ListByIDs(ctx context.Context, dealerID uuid.UUID, ids []uuid.UUID) ([]*model.Contact, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `
		SELECT id, dealer_id, phone, name, opted_in, tags, source, created_at, updated_at
		FROM contacts
		WHERE dealer_id = $1 AND id = ANY($2)
	`
	var contacts []*model.Contact
	if err := r.db.SelectContext(ctx, &contacts, query, dealerID, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("failed to list contacts by ids: %w", err)
	}
	return contacts, nil
}

func (r *contactRepository) Update(ctx context.Context, contact *model.Contact) error {
	query := `
		UPDATE contacts
		SET name = $1, opted_in = $2, tags = $3, source = $4, updated_at = $5
		WHERE id = $6 AND dealer_id = $7
	`
	contact.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		contact.Name,
		contact.OptedIn,
		contact.Tags,
		contact.Source,
		contact.UpdatedAt,
		contact.ID,
		contact.DealerID,
	)
	if err != nil {
		return fmt.Errorf("failed to update contact: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("contact", nil)
	}
	return nil
}

func (r *contactRepository) Delete(ctx context.Context, dealerID, id uuid.UUID) error {
	query := `DELETE FROM contacts WHERE id = $1 AND dealer_id = $2`

	result, err := r.db.ExecContext(ctx, query, id, dealerID)
	if err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("contact", nil)
	}
	return nil
}
