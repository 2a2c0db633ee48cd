package services

import (
	"context"
	"sync"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wheelhaus/bikeshop-service/internal/core/domain"
)

func newPurchaseFixture(t *testing.T) (*PurchaseService, *fakeStore, *domain.User, *domain.Bike) {
	t.Helper()
	store := newFakeStore()
	cache := newMemCache()
	svc := NewPurchaseService(
		&fakePurchaseRepo{store: store},
		&fakeBikeRepo{store: store},
		&fakeUserRepo{store: store},
		nopLogger{},
		validator.New(),
		cache,
	)

	buyer := &domain.User{
		UserID: uuid.New(),
		Name:   "Lena Brandt",
		Email:  "lena@example.com",
		Role:   domain.AppUser,
	}
	store.users[buyer.UserID] = buyer

	bike := &domain.Bike{
		BikeID:       uuid.New(),
		UserID:       uuid.New(),
		Brand:        "Canyon",
		Model:        "Grail 7",
		SerialNumber: "CN-4417",
		Type:         domain.Gravel,
		Status:       domain.StatusAvailable,
	}
	store.bikes[bike.BikeID] = bike

	return svc, store, buyer, bike
}

func TestPurchaseBike_Success(t *testing.T) {
	svc, store, buyer, bike := newPurchaseFixture(t)

	purchase, err := svc.PurchaseBike(context.Background(), buyer.UserID.String(), bike.BikeID.String(), 1499.0, domain.PaymentCard)
	require.NoError(t, err)
	require.NotNil(t, purchase)

	// Snapshot fields come from the bike and buyer at sale time.
	assert.Equal(t, bike.BikeID, purchase.BikeID)
	assert.Equal(t, buyer.UserID, purchase.BuyerID)
	assert.Equal(t, "Canyon", purchase.BikeBrand)
	assert.Equal(t, "Grail 7", purchase.BikeModel)
	assert.Equal(t, "CN-4417", purchase.BikeSerial)
	assert.Equal(t, "Lena Brandt", purchase.BuyerName)
	assert.Equal(t, 1499.0, purchase.Price)
	assert.Equal(t, domain.PaymentCard, purchase.Payment)
	assert.False(t, purchase.SaleDate.IsZero())

	// The bike left the floor and is attributed to the buyer.
	stored := store.bikes[bike.BikeID]
	assert.Equal(t, domain.StatusSold, stored.Status)
	require.NotNil(t, stored.ClientID)
	assert.Equal(t, buyer.UserID, *stored.ClientID)

	assert.Contains(t, store.users[buyer.UserID].BikeIDs, bike.BikeID)
}

func TestPurchaseBike_NotAvailable(t *testing.T) {
	svc, store, buyer, bike := newPurchaseFixture(t)
	store.bikes[bike.BikeID].Status = domain.StatusMaintenance

	_, err := svc.PurchaseBike(context.Background(), buyer.UserID.String(), bike.BikeID.String(), 1499.0, domain.PaymentCash)
	assert.ErrorIs(t, err, domain.ErrBikeNotAvailable)

	// Nothing mutated on the failure path.
	assert.Equal(t, domain.StatusMaintenance, store.bikes[bike.BikeID].Status)
	assert.Empty(t, store.purchases)
	assert.Empty(t, store.users[buyer.UserID].BikeIDs)
}

func TestPurchaseBike_UnknownBike(t *testing.T) {
	svc, _, buyer, _ := newPurchaseFixture(t)

	_, err := svc.PurchaseBike(context.Background(), buyer.UserID.String(), uuid.NewString(), 100, domain.PaymentCash)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPurchaseBike_InvalidPayment(t *testing.T) {
	svc, store, buyer, bike := newPurchaseFixture(t)

	_, err := svc.PurchaseBike(context.Background(), buyer.UserID.String(), bike.BikeID.String(), 1499.0, domain.PaymentMethod("barter"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation error")
	assert.Empty(t, store.purchases)
}

func TestPurchaseBike_InvalidPrice(t *testing.T) {
	svc, _, buyer, bike := newPurchaseFixture(t)

	_, err := svc.PurchaseBike(context.Background(), buyer.UserID.String(), bike.BikeID.String(), 0, domain.PaymentCash)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation error")
}

// Two buyers racing for the same bike: exactly one sale may land, and the
// bike must end up attributed to whoever won.
func TestPurchaseBike_ConcurrentDoubleSale(t *testing.T) {
	svc, store, _, bike := newPurchaseFixture(t)

	buyers := make([]*domain.User, 8)
	for i := range buyers {
		buyers[i] = &domain.User{
			UserID: uuid.New(),
			Name:   "Racer",
			Email:  uuid.NewString() + "@example.com",
			Role:   domain.AppUser,
		}
		store.users[buyers[i].UserID] = buyers[i]
	}

	var wg sync.WaitGroup
	results := make([]error, len(buyers))
	for i, buyer := range buyers {
		wg.Add(1)
		go func(i int, buyerID string) {
			defer wg.Done()
			_, results[i] = svc.PurchaseBike(context.Background(), buyerID, bike.BikeID.String(), 900, domain.PaymentCash)
		}(i, buyer.UserID.String())
	}
	wg.Wait()

	successes := 0
	for _, err := range results {
		if err == nil {
			successes++
		} else {
			assert.ErrorIs(t, err, domain.ErrBikeNotAvailable)
		}
	}
	assert.Equal(t, 1, successes)
	assert.Len(t, store.purchases, 1)
	assert.Equal(t, domain.StatusSold, store.bikes[bike.BikeID].Status)
}

func TestGetPurchasesByBuyerID(t *testing.T) {
	svc, store, buyer, bike := newPurchaseFixture(t)

	otherBike := &domain.Bike{
		BikeID:       uuid.New(),
		UserID:       uuid.New(),
		Brand:        "Trek",
		Model:        "FX 3",
		SerialNumber: "TK-0092",
		Type:         domain.City,
		Status:       domain.StatusAvailable,
	}
	store.bikes[otherBike.BikeID] = otherBike

	_, err := svc.PurchaseBike(context.Background(), buyer.UserID.String(), bike.BikeID.String(), 1499, domain.PaymentCard)
	require.NoError(t, err)
	_, err = svc.PurchaseBike(context.Background(), buyer.UserID.String(), otherBike.BikeID.String(), 650, domain.PaymentCash)
	require.NoError(t, err)

	purchases, err := svc.GetPurchasesByBuyerID(context.Background(), buyer.UserID.String())
	require.NoError(t, err)
	assert.Len(t, purchases, 2)

	all, err := svc.ListPurchases(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
