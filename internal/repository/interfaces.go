package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/motoyard/motoyard-api/internal/model"
)

type DealerRepository interface {
	Create(ctx context.Context, dealer *model.Dealer) error
	Get(ctx context.Context, id uuid.UUID) (*model.Dealer, error)
	GetByEmail(ctx context.Context, email string) (*model.Dealer, error)
	GetByWhatsAppPhoneID(ctx context.Context, phoneID string) (*model.Dealer, error)
	Update(ctx context.Context, dealer *model.Dealer) error
	List(ctx context.Context) ([]*model.Dealer, error)

	// ReserveVehicleSlot atomically increments the dealer's vehicle count
	// if it is below limit. Returns false when the quota is exhausted.
	ReserveVehicleSlot(ctx context.Context, id uuid.UUID, limit int) (bool, error)
	ReleaseVehicleSlot(ctx context.Context, id uuid.UUID) error
}

type ContactRepository interface {
	Create(ctx context.Context, contact *model.Contact) error
	Get(ctx context.Context, id uuid.UUID) (*model.Contact, error)
	GetByPhone(ctx context.Context, dealerID uuid.UUID, phone string) (*model.Contact, error)
	// FindDealerByPhone resolves the owning dealer for a phone number across
	// all tenants. Used by webhook tenant resolution only.
	FindDealerByPhone(ctx context.Context, phone string) (uuid.UUID, error)
	List(ctx context.Context, dealerID uuid.UUID) ([]*model.Contact, error)
	ListByIDs(ctx context.Context, dealerID uuid.UUID, ids []uuid.UUID) ([]*model.Contact, error)
	Update(ctx context.Context, contact *model.Contact) error
	Delete(ctx context.Context, dealerID, id uuid.UUID) error
}

type TemplateRepository interface {
	Create(ctx context.Context, tmpl *model.Template) error
	Get(ctx context.Context, id uuid.UUID) (*model.Template, error)
	List(ctx context.Context, dealerID uuid.UUID) ([]*model.Template, error)
	Update(ctx context.Context, tmpl *model.Template) error
	Delete(ctx context.Context, dealerID, id uuid.UUID) error
}

type ContentRepository interface {
	Create(ctx context.Context, item *model.ContentItem) error
	Get(ctx context.Context, id uuid.UUID) (*model.ContentItem, error)
	List(ctx context.Context, dealerID uuid.UUID, status string) ([]*model.ContentItem, error)
	Update(ctx context.Context, item *model.ContentItem) error
	Delete(ctx context.Context, dealerID, id uuid.UUID) error

	// ClaimDue atomically flips up to limit due scheduled items to posting
	// and returns them. An item is returned to at most one claimer.
	ClaimDue(ctx context.Context, limit int) ([]*model.ContentItem, error)
	MarkPosted(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
}

type VehicleRepository interface {
	Create(ctx context.Context, vehicle *model.Vehicle) error
	Get(ctx context.Context, id uuid.UUID) (*model.Vehicle, error)
	List(ctx context.Context, dealerID uuid.UUID, status string) ([]*model.Vehicle, error)
	Update(ctx context.Context, vehicle *model.Vehicle) error
	Delete(ctx context.Context, dealerID, id uuid.UUID) error
}
