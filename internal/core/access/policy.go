// Package access is the single source of truth for who may do what to a
// document. Transport middleware and services both call into it; there is no
// second copy of these checks anywhere else.
package access

import (
	"github.com/google/uuid"

	"github.com/wheelhaus/bikeshop-service/internal/core/domain"
)

// Action is the capability being requested on a document.
type Action int

const (
	ActionCreate Action = iota
	ActionRead
	ActionUpdate
	ActionDelete
)

func (a Action) String() string {
	switch a {
	case ActionCreate:
		return "create"
	case ActionRead:
		return "read"
	case ActionUpdate:
		return "update"
	case ActionDelete:
		return "delete"
	}
	return "unknown"
}

// CanAccessBike decides a bike operation for the given identity.
//
// Read is deliberately wider than ownership: every authenticated identity may
// read any bike whose status is available, so the sales floor can be browsed
// without owning anything. Sold and maintenance bikes stay owner/admin only.
func CanAccessBike(p *domain.TokenPayload, bike *domain.Bike, action Action) error {
	if p == nil {
		return domain.ErrAccessDenied
	}
	if p.Role == domain.Admin {
		return nil
	}
	switch action {
	case ActionCreate:
		// Only admins stock the floor.
		return domain.ErrAccessDenied
	case ActionRead:
		if bike.Status == domain.StatusAvailable {
			return nil
		}
		if bike.UserID == p.UserID {
			return nil
		}
		return domain.ErrAccessDenied
	case ActionUpdate, ActionDelete:
		if bike.UserID == p.UserID {
			return nil
		}
		return domain.ErrAccessDenied
	}
	return domain.ErrAccessDenied
}

// CanAccessJob decides a job operation. Any authenticated identity may open a
// job; everything after that is owner or admin.
func CanAccessJob(p *domain.TokenPayload, job *domain.Job, action Action) error {
	if p == nil {
		return domain.ErrAccessDenied
	}
	if p.Role == domain.Admin {
		return nil
	}
	switch action {
	case ActionCreate:
		return nil
	case ActionRead, ActionUpdate, ActionDelete:
		if job.UserID == p.UserID {
			return nil
		}
		return domain.ErrAccessDenied
	}
	return domain.ErrAccessDenied
}

// CanAccessUser decides a user-document operation: only the identity itself,
// except admins may read anyone and change roles.
func CanAccessUser(p *domain.TokenPayload, targetID uuid.UUID, action Action) error {
	if p == nil {
		return domain.ErrAccessDenied
	}
	if p.Role == domain.Admin {
		return nil
	}
	switch action {
	case ActionCreate, ActionRead, ActionUpdate:
		if p.UserID == targetID {
			return nil
		}
		return domain.ErrAccessDenied
	case ActionDelete:
		return domain.ErrAccessDenied
	}
	return domain.ErrAccessDenied
}

// CanAccessClient decides a client-record operation. Client records are a
// staff ledger: reads are open to any authenticated identity, writes are
// admin only.
func CanAccessClient(p *domain.TokenPayload, action Action) error {
	if p == nil {
		return domain.ErrAccessDenied
	}
	if p.Role == domain.Admin {
		return nil
	}
	switch action {
	case ActionRead:
		return nil
	case ActionCreate, ActionUpdate, ActionDelete:
		return domain.ErrAccessDenied
	}
	return domain.ErrAccessDenied
}
