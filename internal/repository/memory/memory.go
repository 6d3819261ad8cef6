// Package memory provides in-memory repository implementations used by
// service tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/motoyard/motoyard-api/internal/model"
	apperrors "github.com/motoyard/motoyard-api/pkg/errors"
)

type DealerRepository struct {
	mu      sync.Mutex
	dealers map[uuid.UUID]*model.Dealer
}

func NewDealerRepository() *DealerRepository {
	return &DealerRepository{dealers: make(map[uuid.UUID]*model.Dealer)}
}

func (r *DealerRepository) Create(ctx context.Context, dealer *model.Dealer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.dealers {
		if d.Email == dealer.Email {
			return apperrors.Conflict("email already registered", nil)
		}
	}
	if dealer.ID == uuid.Nil {
		dealer.ID = uuid.New()
	}
	dealer.CreatedAt = time.Now()
	dealer.UpdatedAt = dealer.CreatedAt
	copied := *dealer
	r.dealers[dealer.ID] = &copied
	return nil
}

func (r *DealerRepository) Get(ctx context.Context, id uuid.UUID) (*model.Dealer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.dealers[id]
	if !ok {
		return nil, apperrors.NotFound("dealer", nil)
	}
	copied := *d
	return &copied, nil
}

func (r *DealerRepository) GetByEmail(ctx context.Context, email string) (*model.Dealer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.dealers {
		if d.Email == email {
			copied := *d
			return &copied, nil
		}
	}
	return nil, apperrors.NotFound("dealer", nil)
}

func (r *DealerRepository) GetByWhatsAppPhoneID(ctx context.Context, phoneID string) (*model.Dealer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.dealers {
		if d.WhatsAppPhoneID == phoneID && phoneID != "" {
			copied := *d
			return &copied, nil
		}
	}
	return nil, apperrors.NotFound("dealer", nil)
}

func (r *DealerRepository) Update(ctx context.Context, dealer *model.Dealer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.dealers[dealer.ID]; !ok {
		return apperrors.NotFound("dealer", nil)
	}
	dealer.UpdatedAt = time.Now()
	copied := *dealer
	r.dealers[dealer.ID] = &copied
	return nil
}

func (r *DealerRepository) List(ctx context.Context) ([]*model.Dealer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Dealer, 0, len(r.dealers))
	for _, d := range r.dealers {
		copied := *d
		out = append(out, &copied)
	}
	return out, nil
}

func (r *DealerRepository) ReserveVehicleSlot(ctx context.Context, id uuid.UUID, limit int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.dealers[id]
	if !ok {
		return false, apperrors.NotFound("dealer", nil)
	}
	if d.VehicleCount >= limit {
		return false, nil
	}
	d.VehicleCount++
	return true, nil
}

func (r *DealerRepository) ReleaseVehicleSlot(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.dealers[id]
	if !ok {
		return apperrors.NotFound("dealer", nil)
	}
	if d.VehicleCount > 0 {
		d.VehicleCount--
	}
	return nil
}

type ContactRepository struct {
	mu       sync.Mutex
	contacts map[uuid.UUID]*model.Contact
}

func NewContactRepository() *ContactRepository {
	return &ContactRepository{contacts: make(map[uuid.UUID]*model.Contact)}
}

func (r *ContactRepository) Create(ctx context.Context, contact *model.Contact) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.contacts {
		if c.DealerID == contact.DealerID && c.Phone == contact.Phone {
			return apperrors.Conflict("contact already exists", nil)
		}
	}
	if contact.ID == uuid.Nil {
		contact.ID = uuid.New()
	}
	contact.CreatedAt = time.Now()
	contact.UpdatedAt = contact.CreatedAt
	copied := *contact
	r.contacts[contact.ID] = &copied
	return nil
}

func (r *ContactRepository) Get(ctx context.Context, id uuid.UUID) (*model.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contacts[id]
	if !ok {
		return nil, apperrors.NotFound("contact", nil)
	}
	copied := *c
	return &copied, nil
}

func (r *ContactRepository) GetByPhone(ctx context.Context, dealerID uuid.UUID, phone string) (*model.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.contacts {
		if c.DealerID == dealerID && c.Phone == phone {
			copied := *c
			return &copied, nil
		}
	}
	return nil, apperrors.NotFound("contact", nil)
}

func (r *ContactRepository) FindDealerByPhone(ctx context.Context, phone string) (uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.contacts {
		if c.Phone == phone {
			return c.DealerID, nil
		}
	}
	return uuid.Nil, apperrors.NotFound("contact", nil)
}

func (r *ContactRepository) List(ctx context.Context, dealerID uuid.UUID) ([]*model.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Contact
	for _, c := range r.contacts {
		if c.DealerID == dealerID {
			copied := *c
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *ContactRepository) ListByIDs(ctx context.Context, dealerID uuid.UUID, ids []uuid.UUID) ([]*model.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Contact
	for _, id := range ids {
		if c, ok := r.contacts[id]; ok && c.DealerID == dealerID {
			copied := *c
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *ContactRepository) Update(ctx context.Context, contact *model.Contact) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.contacts[contact.ID]; !ok {
		return apperrors.NotFound("contact", nil)
	}
	contact.UpdatedAt = time.Now()
	copied := *contact
	r.contacts[contact.ID] = &copied
	return nil
}

func (r *ContactRepository) Delete(ctx context.Context, dealerID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contacts[id]
	if !ok || c.DealerID != dealerID {
		return apperrors.NotFound("contact", nil)
	}
	delete(r.contacts, id)
	return nil
}

type TemplateRepository struct {
	mu        sync.Mutex
	templates map[uuid.UUID]*model.Template
}

func NewTemplateRepository() *TemplateRepository {
	return &TemplateRepository{templates: make(map[uuid.UUID]*model.Template)}
}

func (r *TemplateRepository) Create(ctx context.Context, tmpl *model.Template) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if tmpl.ID == uuid.Nil {
		tmpl.ID = uuid.New()
	}
	tmpl.CreatedAt = time.Now()
	tmpl.UpdatedAt = tmpl.CreatedAt
	copied := *tmpl
	r.templates[tmpl.ID] = &copied
	return nil
}

func (r *TemplateRepository) Get(ctx context.Context, id uuid.UUID) (*model.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.templates[id]
	if !ok {
		return nil, apperrors.NotFound("template", nil)
	}
	copied := *t
	return &copied, nil
}

func (r *TemplateRepository) List(ctx context.Context, dealerID uuid.UUID) ([]*model.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Template
	for _, t := range r.templates {
		if t.DealerID == dealerID {
			copied := *t
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *TemplateRepository) Update(ctx context.Context, tmpl *model.Template) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.templates[tmpl.ID]; !ok {
		return apperrors.NotFound("template", nil)
	}
	tmpl.UpdatedAt = time.Now()
	copied := *tmpl
	r.templates[tmpl.ID] = &copied
	return nil
}

func (r *TemplateRepository) Delete(ctx context.Context, dealerID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.templates[id]
	if !ok || t.DealerID != dealerID {
		return apperrors.NotFound("template", nil)
	}
	delete(r.templates, id)
	return nil
}

type ContentRepository struct {
	mu    sync.Mutex
	items map[uuid.UUID]*model.ContentItem
}

func NewContentRepository() *ContentRepository {
	return &ContentRepository{items: make(map[uuid.UUID]*model.ContentItem)}
}

func (r *ContentRepository) Create(ctx context.Context, item *model.ContentItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	item.CreatedAt = time.Now()
	item.UpdatedAt = item.CreatedAt
	copied := *item
	r.items[item.ID] = &copied
	return nil
}

func (r *ContentRepository) Get(ctx context.Context, id uuid.UUID) (*model.ContentItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return nil, apperrors.NotFound("content item", nil)
	}
	copied := *item
	return &copied, nil
}

func (r *ContentRepository) List(ctx context.Context, dealerID uuid.UUID, status string) ([]*model.ContentItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.ContentItem
	for _, item := range r.items {
		if item.DealerID != dealerID {
			continue
		}
		if status != "" && item.Status != status {
			continue
		}
		copied := *item
		out = append(out, &copied)
	}
	return out, nil
}

func (r *ContentRepository) Update(ctx context.Context, item *model.ContentItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[item.ID]; !ok {
		return apperrors.NotFound("content item", nil)
	}
	item.UpdatedAt = time.Now()
	copied := *item
	r.items[item.ID] = &copied
	return nil
}

func (r *ContentRepository) Delete(ctx context.Context, dealerID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok || item.DealerID != dealerID {
		return apperrors.NotFound("content item", nil)
	}
	delete(r.items, id)
	return nil
}

func (r *ContentRepository) ClaimDue(ctx context.Context, limit int) ([]*model.ContentItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	var out []*model.ContentItem
	for _, item := range r.items {
		if len(out) >= limit {
			break
		}
		if item.Status != model.ContentStatusScheduled || item.ScheduledAt == nil || item.ScheduledAt.After(now) {
			continue
		}
		item.Status = model.ContentStatusPosting
		copied := *item
		out = append(out, &copied)
	}
	return out, nil
}

func (r *ContentRepository) MarkPosted(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return apperrors.NotFound("content item", nil)
	}
	now := time.Now()
	item.Status = model.ContentStatusPosted
	item.PostedAt = &now
	item.LastError = ""
	return nil
}

func (r *ContentRepository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return apperrors.NotFound("content item", nil)
	}
	item.Status = model.ContentStatusFailed
	item.LastError = reason
	return nil
}

type VehicleRepository struct {
	mu       sync.Mutex
	vehicles map[uuid.UUID]*model.Vehicle
}

func NewVehicleRepository() *VehicleRepository {
	return &VehicleRepository{vehicles: make(map[uuid.UUID]*model.Vehicle)}
}

func (r *VehicleRepository) Create(ctx context.Context, vehicle *model.Vehicle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if vehicle.ID == uuid.Nil {
		vehicle.ID = uuid.New()
	}
	vehicle.CreatedAt = time.Now()
	vehicle.UpdatedAt = vehicle.CreatedAt
	copied := *vehicle
	r.vehicles[vehicle.ID] = &copied
	return nil
}

func (r *VehicleRepository) Get(ctx context.Context, id uuid.UUID) (*model.Vehicle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.vehicles[id]
	if !ok {
		return nil, apperrors.NotFound("vehicle", nil)
	}
	copied := *v
	return &copied, nil
}

func (r *VehicleRepository) List(ctx context.Context, dealerID uuid.UUID, status string) ([]*model.Vehicle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Vehicle
	for _, v := range r.vehicles {
		if v.DealerID != dealerID {
			continue
		}
		if status != "" && v.Status != status {
			continue
		}
		copied := *v
		out = append(out, &copied)
	}
	return out, nil
}

func (r *VehicleRepository) Update(ctx context.Context, vehicle *model.Vehicle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.vehicles[vehicle.ID]; !ok {
		return apperrors.NotFound("vehicle", nil)
	}
	vehicle.UpdatedAt = time.Now()
	copied := *vehicle
	r.vehicles[vehicle.ID] = &copied
	return nil
}

func (r *VehicleRepository) Delete(ctx context.Context, dealerID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.vehicles[id]
	if !ok || v.DealerID != dealerID {
		return apperrors.NotFound("vehicle", nil)
	}
	delete(r.vehicles, id)
	return nil
}
