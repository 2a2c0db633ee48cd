package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wheelhaus/bikeshop-service/internal/core/domain"
)

// The fakes below back the service tests with in-memory state. The purchase
// fake shares the bike map and a single mutex so the conditional-write
// semantics of the real transaction hold under concurrent calls.

var errCacheMiss = errors.New("cache miss")

type nopLogger struct{}

func (nopLogger) Info(string, map[string]interface{})  {}
func (nopLogger) Warn(string, map[string]interface{})  {}
func (nopLogger) Error(string, map[string]interface{}) {}

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{data: map[string][]byte{}}
}

func (c *memCache) Get(key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	value, ok := c.data[key]
	if !ok {
		return nil, errCacheMiss
	}
	return value, nil
}

func (c *memCache) Set(key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *memCache) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

type fakeStore struct {
	mu        sync.Mutex
	bikes     map[uuid.UUID]*domain.Bike
	users     map[uuid.UUID]*domain.User
	clients   map[uuid.UUID]*domain.Client
	jobs      map[uuid.UUID]*domain.Job
	purchases map[uuid.UUID]*domain.Purchase
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		bikes:     map[uuid.UUID]*domain.Bike{},
		users:     map[uuid.UUID]*domain.User{},
		clients:   map[uuid.UUID]*domain.Client{},
		jobs:      map[uuid.UUID]*domain.Job{},
		purchases: map[uuid.UUID]*domain.Purchase{},
	}
}

// --- BikeRepository ---

type fakeBikeRepo struct{ store *fakeStore }

func (r *fakeBikeRepo) CreateBike(_ context.Context, bike *domain.Bike) (*domain.Bike, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	copied := *bike
	r.store.bikes[bike.BikeID] = &copied
	return &copied, nil
}

func (r *fakeBikeRepo) GetBikeByID(_ context.Context, bikeID uuid.UUID) (*domain.Bike, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	bike, ok := r.store.bikes[bikeID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *bike
	return &copied, nil
}

func (r *fakeBikeRepo) GetBikesByUserID(_ context.Context, userID uuid.UUID) ([]*domain.Bike, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*domain.Bike
	for _, bike := range r.store.bikes {
		if bike.UserID == userID {
			copied := *bike
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeBikeRepo) GetAvailableBikes(_ context.Context) ([]*domain.Bike, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*domain.Bike
	for _, bike := range r.store.bikes {
		if bike.Status == domain.StatusAvailable {
			copied := *bike
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeBikeRepo) UpdateBike(_ context.Context, bike *domain.Bike) (*domain.Bike, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	existing, ok := r.store.bikes[bike.BikeID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *bike
	copied.Status = existing.Status
	r.store.bikes[bike.BikeID] = &copied
	result := copied
	return &result, nil
}

func (r *fakeBikeRepo) SetBikeStatus(_ context.Context, bikeID uuid.UUID, from, to domain.BikeStatus) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	bike, ok := r.store.bikes[bikeID]
	if !ok || bike.Status != from {
		return domain.ErrInvalidTransition
	}
	bike.Status = to
	return nil
}

func (r *fakeBikeRepo) DeleteBike(_ context.Context, bikeID uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.bikes[bikeID]; !ok {
		return domain.ErrNotFound
	}
	delete(r.store.bikes, bikeID)
	return nil
}

// --- UserRepository ---

type fakeUserRepo struct{ store *fakeStore }

func (r *fakeUserRepo) CreateUser(_ context.Context, user *domain.User) (*domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, existing := range r.store.users {
		if existing.Email == user.Email {
			return nil, domain.ErrEmailTaken
		}
	}
	copied := *user
	r.store.users[user.UserID] = &copied
	return &copied, nil
}

func (r *fakeUserRepo) GetUserByID(_ context.Context, userID uuid.UUID) (*domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	user, ok := r.store.users[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, user := range r.store.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeUserRepo) UpdateUser(_ context.Context, user *domain.User) (*domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.users[user.UserID]; !ok {
		return nil, domain.ErrNotFound
	}
	copied := *user
	r.store.users[user.UserID] = &copied
	result := copied
	return &result, nil
}

func (r *fakeUserRepo) SetUserRole(_ context.Context, userID uuid.UUID, role domain.UserRole) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	user, ok := r.store.users[userID]
	if !ok {
		return domain.ErrNotFound
	}
	user.Role = role
	return nil
}

// --- PurchaseRepository ---

type fakePurchaseRepo struct{ store *fakeStore }

func (r *fakePurchaseRepo) PurchaseBike(_ context.Context, purchase *domain.Purchase) (*domain.Purchase, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	bike, ok := r.store.bikes[purchase.BikeID]
	if !ok || bike.Status != domain.StatusAvailable {
		return nil, domain.ErrBikeNotAvailable
	}

	bike.Status = domain.StatusSold
	buyerID := purchase.BuyerID
	bike.ClientID = &buyerID

	if buyer, ok := r.store.users[purchase.BuyerID]; ok {
		buyer.BikeIDs = append(buyer.BikeIDs, purchase.BikeID)
	}

	copied := *purchase
	copied.CreatedAt = time.Now().UTC()
	r.store.purchases[purchase.PurchaseID] = &copied
	result := copied
	return &result, nil
}

func (r *fakePurchaseRepo) GetPurchaseByID(_ context.Context, purchaseID uuid.UUID) (*domain.Purchase, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	purchase, ok := r.store.purchases[purchaseID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *purchase
	return &copied, nil
}

func (r *fakePurchaseRepo) GetPurchasesByBuyerID(_ context.Context, buyerID uuid.UUID) ([]*domain.Purchase, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*domain.Purchase
	for _, purchase := range r.store.purchases {
		if purchase.BuyerID == buyerID {
			copied := *purchase
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakePurchaseRepo) ListPurchases(_ context.Context) ([]*domain.Purchase, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*domain.Purchase
	for _, purchase := range r.store.purchases {
		copied := *purchase
		out = append(out, &copied)
	}
	return out, nil
}

// --- ClientRepository ---

type fakeClientRepo struct{ store *fakeStore }

func (r *fakeClientRepo) CreateClient(_ context.Context, client *domain.Client) (*domain.Client, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	copied := *client
	r.store.clients[client.ClientID] = &copied
	return &copied, nil
}

func (r *fakeClientRepo) GetClientByID(_ context.Context, clientID uuid.UUID) (*domain.Client, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	client, ok := r.store.clients[clientID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *client
	return &copied, nil
}

func (r *fakeClientRepo) ListClients(_ context.Context) ([]*domain.Client, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*domain.Client
	for _, client := range r.store.clients {
		copied := *client
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeClientRepo) UpdateClient(_ context.Context, client *domain.Client) (*domain.Client, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.clients[client.ClientID]; !ok {
		return nil, domain.ErrNotFound
	}
	copied := *client
	r.store.clients[client.ClientID] = &copied
	result := copied
	return &result, nil
}

func (r *fakeClientRepo) DeleteClientCascade(_ context.Context, clientID uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.clients[clientID]; !ok {
		return domain.ErrNotFound
	}
	delete(r.store.clients, clientID)
	for _, bike := range r.store.bikes {
		if bike.ClientID != nil && *bike.ClientID == clientID {
			bike.ClientID = nil
		}
	}
	return nil
}

// --- JobRepository ---

type fakeJobRepo struct{ store *fakeStore }

func (r *fakeJobRepo) CreateJob(_ context.Context, job *domain.Job) (*domain.Job, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	copied := *job
	r.store.jobs[job.JobID] = &copied
	return &copied, nil
}

func (r *fakeJobRepo) GetJobByID(_ context.Context, jobID uuid.UUID) (*domain.Job, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	job, ok := r.store.jobs[jobID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *job
	return &copied, nil
}

func (r *fakeJobRepo) GetJobsByUserID(_ context.Context, userID uuid.UUID) ([]*domain.Job, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*domain.Job
	for _, job := range r.store.jobs {
		if job.UserID == userID {
			copied := *job
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeJobRepo) ListJobs(_ context.Context) ([]*domain.Job, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*domain.Job
	for _, job := range r.store.jobs {
		copied := *job
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeJobRepo) UpdateJob(_ context.Context, job *domain.Job) (*domain.Job, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.jobs[job.JobID]; !ok {
		return nil, domain.ErrNotFound
	}
	copied := *job
	r.store.jobs[job.JobID] = &copied
	result := copied
	return &result, nil
}

func (r *fakeJobRepo) DeleteJob(_ context.Context, jobID uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.jobs[jobID]; !ok {
		return domain.ErrNotFound
	}
	delete(r.store.jobs, jobID)
	return nil
}

// --- TokenService ---

type fakeTokenService struct{}

func (fakeTokenService) IssueTokens(user *domain.User) (string, string, error) {
	return "access-" + user.UserID.String(), "refresh-" + user.UserID.String(), nil
}

func (fakeTokenService) IssueResetToken(user *domain.User) (string, error) {
	return "reset-" + user.UserID.String(), nil
}

func (fakeTokenService) VerifyToken(string) (*domain.TokenPayload, error) {
	return nil, errors.New("not implemented")
}
