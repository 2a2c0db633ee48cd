package domain

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string

const (
	Admin   UserRole = "admin"
	AppUser UserRole = "user"
)

type User struct {
	UserID       uuid.UUID   `json:"user_id"`
	Name         string      `json:"name" validate:"required,max=200"`
	Email        string      `json:"email" validate:"required,email"`
	Phone        string      `json:"phone,omitempty" validate:"max=30"`
	Role         UserRole    `json:"role"`
	PasswordHash string      `json:"-"`
	BikeIDs      []uuid.UUID `json:"bike_ids,omitempty"`
	JobIDs       []uuid.UUID `json:"job_ids,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

func (r UserRole) Valid() bool {
	return r == Admin || r == AppUser
}
