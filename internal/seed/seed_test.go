package seed

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/school-portal-api/internal/models"
)

type mockUserStore struct {
	count    int
	countErr error
	created  *models.AdminUser
}

func (m *mockUserStore) Count(ctx context.Context) (int, error) {
	return m.count, m.countErr
}

func (m *mockUserStore) Create(ctx context.Context, user *models.AdminUser) error {
	m.created = user
	return nil
}

func TestEnsureAdminCreatesSuperadminOnEmptyTable(t *testing.T) {
	store := &mockUserStore{count: 0}

	err := EnsureAdmin(context.Background(), store, "changeme", nil)
	require.NoError(t, err)

	require.NotNil(t, store.created)
	assert.Equal(t, "admin", store.created.Username)
	assert.Equal(t, "admin@school.edu", store.created.Email)
	assert.True(t, store.created.IsActive)
	assert.True(t, store.created.IsSuperadmin)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(store.created.PasswordHash), []byte("changeme")))
}

func TestEnsureAdminNoopWhenAccountsExist(t *testing.T) {
	store := &mockUserStore{count: 3}

	err := EnsureAdmin(context.Background(), store, "changeme", nil)
	require.NoError(t, err)
	assert.Nil(t, store.created)
}

func TestEnsureAdminPropagatesCountError(t *testing.T) {
	store := &mockUserStore{countErr: errors.New("connection refused")}

	err := EnsureAdmin(context.Background(), store, "changeme", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "count users")
}
