package services

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/wheelhaus/bikeshop-service/internal/core/domain"
)

func newUserFixture(t *testing.T) (*UserService, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	svc := NewUserService(
		&fakeUserRepo{store: store},
		fakeTokenService{},
		nopLogger{},
		validator.New(),
		newMemCache(),
		time.Hour,
	)
	return svc, store
}

func TestRegister_RoleIsAlwaysUser(t *testing.T) {
	svc, store := newUserFixture(t)

	user := &domain.User{
		Name:  "Jonas Weber",
		Email: "jonas@example.com",
		Role:  domain.Admin, // must be ignored
	}

	created, err := svc.Register(context.Background(), user, "long-enough-password")
	require.NoError(t, err)
	assert.Equal(t, domain.AppUser, created.Role)
	assert.NotEqual(t, uuid.Nil, created.UserID)

	stored := store.users[created.UserID]
	assert.Equal(t, domain.AppUser, stored.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("long-enough-password")))
}

func TestRegister_ShortPasswordRejected(t *testing.T) {
	svc, store := newUserFixture(t)

	user := &domain.User{Name: "Jonas Weber", Email: "jonas@example.com"}
	_, err := svc.Register(context.Background(), user, "short")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 8 characters")
	assert.Empty(t, store.users)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := newUserFixture(t)

	first := &domain.User{Name: "Jonas Weber", Email: "jonas@example.com"}
	_, err := svc.Register(context.Background(), first, "long-enough-password")
	require.NoError(t, err)

	second := &domain.User{Name: "Other Jonas", Email: "jonas@example.com"}
	_, err = svc.Register(context.Background(), second, "long-enough-password")
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestLogin(t *testing.T) {
	svc, _ := newUserFixture(t)

	registered, err := svc.Register(context.Background(),
		&domain.User{Name: "Jonas Weber", Email: "jonas@example.com"},
		"long-enough-password")
	require.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		user, access, refresh, err := svc.Login(context.Background(), "jonas@example.com", "long-enough-password")
		require.NoError(t, err)
		assert.Equal(t, registered.UserID, user.UserID)
		assert.NotEmpty(t, access)
		assert.NotEmpty(t, refresh)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, _, err := svc.Login(context.Background(), "jonas@example.com", "wrong-password")
		assert.ErrorIs(t, err, domain.ErrBadCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		// Same error either way, so callers cannot tell which part was wrong.
		_, _, _, err := svc.Login(context.Background(), "nobody@example.com", "long-enough-password")
		assert.ErrorIs(t, err, domain.ErrBadCredentials)
	})
}

func TestLogoutRevokesToken(t *testing.T) {
	svc, _ := newUserFixture(t)

	payload := &domain.TokenPayload{
		ID:     uuid.New(),
		UserID: uuid.New(),
		Role:   domain.AppUser,
	}

	assert.False(t, svc.IsTokenRevoked(payload.ID))
	require.NoError(t, svc.Logout(context.Background(), payload))
	assert.True(t, svc.IsTokenRevoked(payload.ID))

	// Other tokens are unaffected.
	assert.False(t, svc.IsTokenRevoked(uuid.New()))
}

func TestRequestPasswordReset(t *testing.T) {
	svc, _ := newUserFixture(t)

	registered, err := svc.Register(context.Background(),
		&domain.User{Name: "Jonas Weber", Email: "jonas@example.com"},
		"long-enough-password")
	require.NoError(t, err)

	token, err := svc.RequestPasswordReset(context.Background(), "jonas@example.com")
	require.NoError(t, err)
	assert.Equal(t, "reset-"+registered.UserID.String(), token)

	// Unknown accounts still succeed, with an empty token.
	token, err = svc.RequestPasswordReset(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestSetUserRole(t *testing.T) {
	svc, store := newUserFixture(t)

	registered, err := svc.Register(context.Background(),
		&domain.User{Name: "Jonas Weber", Email: "jonas@example.com"},
		"long-enough-password")
	require.NoError(t, err)

	require.NoError(t, svc.SetUserRole(context.Background(), registered.UserID.String(), domain.Admin))
	assert.Equal(t, domain.Admin, store.users[registered.UserID].Role)

	err = svc.SetUserRole(context.Background(), registered.UserID.String(), domain.UserRole("owner"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid role")
}
