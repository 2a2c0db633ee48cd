package domain

import (
	"time"

	"github.com/google/uuid"
)

type BikeStatus string

const (
	StatusAvailable   BikeStatus = "available"
	StatusSold        BikeStatus = "sold"
	StatusMaintenance BikeStatus = "maintenance"
)

type BikeType string

const (
	MTB    BikeType = "mtb"
	Road   BikeType = "road"
	Gravel BikeType = "gravel"
	City   BikeType = "city"
	BMX    BikeType = "bmx"
)

// swagger:model domain.Bike
type Bike struct {
	BikeID        uuid.UUID  `json:"bike_id"`
	UserID        uuid.UUID  `json:"user_id"`
	ClientID      *uuid.UUID `json:"client_id,omitempty"`
	Brand         string     `json:"brand" validate:"required,max=100"`
	Model         string     `json:"model" validate:"required,max=100"`
	SerialNumber  string     `json:"serial_number" validate:"required,max=100"`
	Year          int        `json:"year" validate:"omitempty,min=1970,max=2100"`
	Color         string     `json:"color" validate:"max=50"`
	Type          BikeType   `json:"type" validate:"required"`
	Size          string     `json:"size" validate:"max=10"`
	Status        BikeStatus `json:"status"`
	PurchasePrice *float64   `json:"purchase_price,omitempty"`
	PurchaseDate  *time.Time `json:"purchase_date,omitempty"`
	PhotoURLs     []string   `json:"photo_urls,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// CanTransitionTo reports whether the status change is a legal lifecycle move.
// Sold is terminal: a sold bike never returns to the floor under any flow here.
func (s BikeStatus) CanTransitionTo(next BikeStatus) bool {
	switch s {
	case StatusAvailable:
		return next == StatusSold || next == StatusMaintenance
	case StatusMaintenance:
		return next == StatusAvailable
	case StatusSold:
		return false
	}
	return false
}

func (s BikeStatus) Valid() bool {
	switch s {
	case StatusAvailable, StatusSold, StatusMaintenance:
		return true
	}
	return false
}
