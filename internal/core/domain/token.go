package domain

import (
	"github.com/google/uuid"
)

// TokenPayload is the verified identity carried through a request.
// ID is the token's own identifier (jti), used for server-side revocation.
type TokenPayload struct {
	ID     uuid.UUID
	UserID uuid.UUID
	Role   UserRole
}
