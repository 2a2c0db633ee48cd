package services

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wheelhaus/bikeshop-service/internal/core/domain"
)

func newBikeFixture(t *testing.T) (*BikeService, *fakeStore, *memCache) {
	t.Helper()
	store := newFakeStore()
	cache := newMemCache()
	svc := NewBikeService(&fakeBikeRepo{store: store}, nopLogger{}, validator.New(), cache)
	return svc, store, cache
}

func validBike() *domain.Bike {
	return &domain.Bike{
		UserID:       uuid.New(),
		Brand:        "Specialized",
		Model:        "Sirrus X",
		SerialNumber: "SP-1180",
		Type:         domain.City,
	}
}

func TestCreateBike_AlwaysEntersAvailable(t *testing.T) {
	svc, store, _ := newBikeFixture(t)

	bike := validBike()
	bike.Status = domain.StatusSold // callers cannot smuggle in a status

	created, err := svc.CreateBike(context.Background(), bike)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAvailable, created.Status)
	assert.NotEqual(t, uuid.Nil, created.BikeID)
	assert.Equal(t, domain.StatusAvailable, store.bikes[created.BikeID].Status)
}

func TestCreateBike_ValidationFailure(t *testing.T) {
	svc, store, _ := newBikeFixture(t)

	bike := validBike()
	bike.SerialNumber = ""

	_, err := svc.CreateBike(context.Background(), bike)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation error")
	assert.Empty(t, store.bikes)
}

func TestGetBikeByID_ReadThroughCache(t *testing.T) {
	svc, store, _ := newBikeFixture(t)

	created, err := svc.CreateBike(context.Background(), validBike())
	require.NoError(t, err)

	first, err := svc.GetBikeByID(context.Background(), created.BikeID.String())
	require.NoError(t, err)
	assert.Equal(t, "Specialized", first.Brand)

	// Mutate the store behind the cache; the cached copy should be served.
	store.mu.Lock()
	store.bikes[created.BikeID].Brand = "Changed"
	store.mu.Unlock()

	second, err := svc.GetBikeByID(context.Background(), created.BikeID.String())
	require.NoError(t, err)
	assert.Equal(t, "Specialized", second.Brand)
}

func TestChangeBikeStatus_InvalidatesCache(t *testing.T) {
	svc, _, cache := newBikeFixture(t)

	created, err := svc.CreateBike(context.Background(), validBike())
	require.NoError(t, err)

	_, err = svc.GetBikeByID(context.Background(), created.BikeID.String())
	require.NoError(t, err)

	_, err = svc.ChangeBikeStatus(context.Background(), created.BikeID.String(), domain.StatusMaintenance)
	require.NoError(t, err)

	_, err = cache.Get("bike:" + created.BikeID.String())
	assert.ErrorIs(t, err, errCacheMiss)

	fresh, err := svc.GetBikeByID(context.Background(), created.BikeID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusMaintenance, fresh.Status)
}

func TestChangeBikeStatus_Transitions(t *testing.T) {
	svc, store, _ := newBikeFixture(t)

	created, err := svc.CreateBike(context.Background(), validBike())
	require.NoError(t, err)
	id := created.BikeID.String()

	// available -> maintenance -> available is a legal round trip.
	updated, err := svc.ChangeBikeStatus(context.Background(), id, domain.StatusMaintenance)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusMaintenance, updated.Status)

	_, err = svc.ChangeBikeStatus(context.Background(), id, domain.StatusSold)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = svc.ChangeBikeStatus(context.Background(), id, domain.StatusAvailable)
	require.NoError(t, err)

	// Sold is terminal.
	_, err = svc.ChangeBikeStatus(context.Background(), id, domain.StatusSold)
	require.NoError(t, err)
	_, err = svc.ChangeBikeStatus(context.Background(), id, domain.StatusAvailable)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Equal(t, domain.StatusSold, store.bikes[created.BikeID].Status)
}

func TestChangeBikeStatus_UnknownStatus(t *testing.T) {
	svc, _, _ := newBikeFixture(t)

	created, err := svc.CreateBike(context.Background(), validBike())
	require.NoError(t, err)

	_, err = svc.ChangeBikeStatus(context.Background(), created.BikeID.String(), domain.BikeStatus("scrapped"))
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestGetAvailableBikes_FiltersByStatus(t *testing.T) {
	svc, _, _ := newBikeFixture(t)

	onFloor, err := svc.CreateBike(context.Background(), validBike())
	require.NoError(t, err)

	inShop := validBike()
	inShop.SerialNumber = "SP-1181"
	created, err := svc.CreateBike(context.Background(), inShop)
	require.NoError(t, err)
	_, err = svc.ChangeBikeStatus(context.Background(), created.BikeID.String(), domain.StatusMaintenance)
	require.NoError(t, err)

	bikes, err := svc.GetAvailableBikes(context.Background())
	require.NoError(t, err)
	require.Len(t, bikes, 1)
	assert.Equal(t, onFloor.BikeID, bikes[0].BikeID)
}

func TestDeleteBike_InvalidatesCache(t *testing.T) {
	svc, store, cache := newBikeFixture(t)

	created, err := svc.CreateBike(context.Background(), validBike())
	require.NoError(t, err)

	_, err = svc.GetBikeByID(context.Background(), created.BikeID.String())
	require.NoError(t, err)

	require.NoError(t, svc.DeleteBike(context.Background(), created.BikeID.String()))
	assert.Empty(t, store.bikes)

	_, err = cache.Get("bike:" + created.BikeID.String())
	assert.ErrorIs(t, err, errCacheMiss)
}
