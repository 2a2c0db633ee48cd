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

func newClientFixture(t *testing.T) (*ClientService, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	svc := NewClientService(&fakeClientRepo{store: store}, nopLogger{}, validator.New())
	return svc, store
}

func TestCreateClient(t *testing.T) {
	svc, store := newClientFixture(t)

	created, err := svc.CreateClient(context.Background(), &domain.Client{
		Name:        "Rita Falk",
		Phone:       "+49 89 555013",
		BikeSerials: []string{"CN-4417"},
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ClientID)
	assert.Len(t, store.clients, 1)
}

func TestCreateClient_ValidationFailure(t *testing.T) {
	svc, store := newClientFixture(t)

	_, err := svc.CreateClient(context.Background(), &domain.Client{Name: "Rita Falk"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation error")
	assert.Empty(t, store.clients)
}

// Deleting a client clears its bike associations in the same operation, so
// no bike keeps pointing at a customer record that no longer exists.
func TestDeleteClient_Cascade(t *testing.T) {
	svc, store := newClientFixture(t)

	created, err := svc.CreateClient(context.Background(), &domain.Client{
		Name:  "Rita Falk",
		Phone: "+49 89 555013",
	})
	require.NoError(t, err)

	clientID := created.ClientID
	linked := &domain.Bike{
		BikeID:       uuid.New(),
		UserID:       uuid.New(),
		ClientID:     &clientID,
		Brand:        "Canyon",
		Model:        "Grail 7",
		SerialNumber: "CN-4417",
		Type:         domain.Gravel,
		Status:       domain.StatusSold,
	}
	unrelatedOwner := uuid.New()
	unrelated := &domain.Bike{
		BikeID:       uuid.New(),
		UserID:       uuid.New(),
		ClientID:     &unrelatedOwner,
		Brand:        "Trek",
		Model:        "FX 3",
		SerialNumber: "TK-0092",
		Type:         domain.City,
		Status:       domain.StatusSold,
	}
	store.bikes[linked.BikeID] = linked
	store.bikes[unrelated.BikeID] = unrelated

	require.NoError(t, svc.DeleteClient(context.Background(), clientID.String()))

	assert.Empty(t, store.clients)
	assert.Nil(t, store.bikes[linked.BikeID].ClientID)
	require.NotNil(t, store.bikes[unrelated.BikeID].ClientID)
	assert.Equal(t, unrelatedOwner, *store.bikes[unrelated.BikeID].ClientID)
}

func TestDeleteClient_Unknown(t *testing.T) {
	svc, _ := newClientFixture(t)
	err := svc.DeleteClient(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
