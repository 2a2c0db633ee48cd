package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/wheelhaus/bikeshop-service/internal/core/domain"
)

type BikeRepository interface {
	CreateBike(ctx context.Context, bike *domain.Bike) (*domain.Bike, error)
	GetBikeByID(ctx context.Context, bikeID uuid.UUID) (*domain.Bike, error)
	GetBikesByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Bike, error)
	GetAvailableBikes(ctx context.Context) ([]*domain.Bike, error)
	UpdateBike(ctx context.Context, bike *domain.Bike) (*domain.Bike, error)
	SetBikeStatus(ctx context.Context, bikeID uuid.UUID, from, to domain.BikeStatus) error
	DeleteBike(ctx context.Context, bikeID uuid.UUID) error
}

type ClientRepository interface {
	CreateClient(ctx context.Context, client *domain.Client) (*domain.Client, error)
	GetClientByID(ctx context.Context, clientID uuid.UUID) (*domain.Client, error)
	ListClients(ctx context.Context) ([]*domain.Client, error)
	UpdateClient(ctx context.Context, client *domain.Client) (*domain.Client, error)
	// DeleteClientCascade removes the client and clears its bike associations
	// in one transaction.
	DeleteClientCascade(ctx context.Context, clientID uuid.UUID) error
}

type PurchaseRepository interface {
	// PurchaseBike atomically marks the bike sold (only if still available),
	// writes the sale record, and appends the bike to the buyer's list.
	// Returns domain.ErrBikeNotAvailable without mutating anything when the
	// bike was already sold or pulled from the floor.
	PurchaseBike(ctx context.Context, purchase *domain.Purchase) (*domain.Purchase, error)
	GetPurchaseByID(ctx context.Context, purchaseID uuid.UUID) (*domain.Purchase, error)
	GetPurchasesByBuyerID(ctx context.Context, buyerID uuid.UUID) ([]*domain.Purchase, error)
	ListPurchases(ctx context.Context) ([]*domain.Purchase, error)
}

type JobRepository interface {
	CreateJob(ctx context.Context, job *domain.Job) (*domain.Job, error)
	GetJobByID(ctx context.Context, jobID uuid.UUID) (*domain.Job, error)
	GetJobsByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Job, error)
	ListJobs(ctx context.Context) ([]*domain.Job, error)
	UpdateJob(ctx context.Context, job *domain.Job) (*domain.Job, error)
	DeleteJob(ctx context.Context, jobID uuid.UUID) error
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.User) (*domain.User, error)
	GetUserByID(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) (*domain.User, error)
	SetUserRole(ctx context.Context, userID uuid.UUID, role domain.UserRole) error
}
