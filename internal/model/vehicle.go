package model

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Vehicle statuses.
const (
	VehicleStatusAvailable = "available"
	VehicleStatusReserved  = "reserved"
	VehicleStatusSold      = "sold"
)

// Vehicle is one inventory entry on a dealer's lot.
type Vehicle struct {
	Base
	DealerID    uuid.UUID      `db:"dealer_id" json:"dealer_id"`
	Make        string         `db:"make" json:"make"`
	Model       string         `db:"model" json:"model"`
	Year        int            `db:"year" json:"year"`
	Price       int64          `db:"price" json:"price"`
	Mileage     int            `db:"mileage" json:"mileage"`
	Status      string         `db:"status" json:"status"`
	Description string         `db:"description" json:"description"`
	ImageURLs   pq.StringArray `db:"image_urls" json:"image_urls"`
}
