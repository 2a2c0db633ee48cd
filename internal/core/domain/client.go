package domain

import (
	"time"

	"github.com/google/uuid"
)

// Client is a shop customer record kept by staff. BikeSerials holds the
// serial numbers of bikes the shop has on file for this customer.
type Client struct {
	ClientID    uuid.UUID `json:"client_id"`
	Name        string    `json:"name" validate:"required,max=200"`
	Phone       string    `json:"phone" validate:"required,max=30"`
	Email       string    `json:"email,omitempty" validate:"omitempty,email"`
	BikeSerials []string  `json:"bike_serials,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
