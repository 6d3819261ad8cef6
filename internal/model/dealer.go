package model

// Subscription plans and their vehicle quotas.
const (
	PlanStarter    = "starter"
	PlanPro        = "pro"
	PlanEnterprise = "enterprise"
)

// PlanVehicleLimit returns the inventory quota for a plan.
func PlanVehicleLimit(plan string) int {
	switch plan {
	case PlanPro:
		return 100
	case PlanEnterprise:
		return 1000
	default:
		return 20
	}
}

// Dealer is one storefront account. Dealers are never hard-deleted.
type Dealer struct {
	Base
	Name         string `db:"name" json:"name"`
	Email        string `db:"email" json:"email"`
	PasswordHash string `db:"password_hash" json:"-"`
	Plan         string `db:"plan" json:"plan"`
	VehicleCount int    `db:"vehicle_count" json:"vehicle_count"`

	// Meta (Facebook/Instagram/WhatsApp) credentials
	FacebookPageID  string `db:"facebook_page_id" json:"facebook_page_id,omitempty"`
	InstagramID     string `db:"instagram_id" json:"instagram_id,omitempty"`
	WABAID          string `db:"waba_id" json:"waba_id,omitempty"`
	WhatsAppPhoneID string `db:"whatsapp_phone_id" json:"whatsapp_phone_id,omitempty"`
	MetaAccessToken string `db:"meta_access_token" json:"-"`

	// LinkedIn credentials
	LinkedInOrgURN      string `db:"linkedin_org_urn" json:"linkedin_org_urn,omitempty"`
	LinkedInAccessToken string `db:"linkedin_access_token" json:"-"`
}

// HasWhatsApp reports whether the dealer can send WhatsApp messages.
func (d *Dealer) HasWhatsApp() bool {
	return d.WhatsAppPhoneID != "" && d.MetaAccessToken != ""
}

// HasPlatform reports whether the dealer has credentials for a posting platform.
func (d *Dealer) HasPlatform(platform string) bool {
	switch platform {
	case PlatformFacebook:
		return d.FacebookPageID != "" && d.MetaAccessToken != ""
	case PlatformInstagram:
		return d.InstagramID != "" && d.MetaAccessToken != ""
	case PlatformLinkedIn:
		return d.LinkedInOrgURN != "" && d.LinkedInAccessToken != ""
	default:
		return false
	}
}
