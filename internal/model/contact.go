package model

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Contact is a phone number owned by exactly one dealer. Its messages must
// only ever be visible to that dealer.
type Contact struct {
	Base
	DealerID uuid.UUID      `db:"dealer_id" json:"dealer_id"`
	Phone    string         `db:"phone" json:"phone"`
	Name     string         `db:"name" json:"name"`
	OptedIn  bool           `db:"opted_in" json:"opted_in"`
	Tags     pq.StringArray `db:"tags" json:"tags"`
	Source   string         `db:"source" json:"source"`
}
