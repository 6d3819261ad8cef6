package model

import (
	"time"

	"github.com/google/uuid"
)

// Posting platforms.
const (
	PlatformFacebook  = "facebook"
	PlatformInstagram = "instagram"
	PlatformLinkedIn  = "linkedin"
)

// ContentItem statuses. A dispatcher flips scheduled items to posting before
// calling the provider, so a crash mid-call cannot cause a duplicate post on
// the next run.
const (
	ContentStatusDraft     = "draft"
	ContentStatusApproved  = "approved"
	ContentStatusScheduled = "scheduled"
	ContentStatusPosting   = "posting"
	ContentStatusPosted    = "posted"
	ContentStatusFailed    = "failed"
)

// ContentItem is a unit of marketing content with a target platform and a
// post time.
type ContentItem struct {
	Base
	DealerID    uuid.UUID  `db:"dealer_id" json:"dealer_id"`
	Platform    string     `db:"platform" json:"platform"`
	Body        string     `db:"body" json:"body"`
	ImageURL    string     `db:"image_url" json:"image_url,omitempty"`
	Status      string     `db:"status" json:"status"`
	ScheduledAt *time.Time `db:"scheduled_at" json:"scheduled_at,omitempty"`
	PostedAt    *time.Time `db:"posted_at" json:"posted_at,omitempty"`
	LastError   string     `db:"last_error" json:"last_error,omitempty"`
}

// ValidPlatform reports whether p names a supported posting platform.
func ValidPlatform(p string) bool {
	return p == PlatformFacebook || p == PlatformInstagram || p == PlatformLinkedIn
}
