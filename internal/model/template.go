package model

import "github.com/google/uuid"

// Template approval statuses mirror the provider's review lifecycle.
const (
	TemplateStatusPending  = "pending"
	TemplateStatusApproved = "approved"
	TemplateStatusRejected = "rejected"
)

// Template is a dealer-owned, provider-approved message format. Bulk sends
// require both ownership and approved status.
type Template struct {
	Base
	DealerID uuid.UUID `db:"dealer_id" json:"dealer_id"`
	Name     string    `db:"name" json:"name"`
	Language string    `db:"language" json:"language"`
	Body     string    `db:"body" json:"body"`
	Status   string    `db:"status" json:"status"`
}
