package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/school-portal-api/internal/models"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
	"github.com/noah-isme/school-portal-api/pkg/validation"
)

type mockUserRepo struct {
	users   map[string]models.AdminUser
	deleted []string
}

func (m *mockUserRepo) List(ctx context.Context) ([]models.AdminUser, error) {
	var out []models.AdminUser
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*models.AdminUser, error) {
	if u, ok := m.users[id]; ok {
		return &u, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	for _, u := range m.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserRepo) ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error) {
	for _, u := range m.users {
		if u.Email == email && u.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.AdminUser) error {
	if m.users == nil {
		m.users = make(map[string]models.AdminUser)
	}
	if user.ID == "" {
		user.ID = "user-new"
	}
	m.users[user.ID] = *user
	return nil
}

func (m *mockUserRepo) Update(ctx context.Context, user *models.AdminUser) error {
	m.users[user.ID] = *user
	return nil
}

func (m *mockUserRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.users[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.users, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func existingAdmin() models.AdminUser {
	return models.AdminUser{
		ID:           "user-1",
		Username:     "admin",
		Email:        "admin@school.edu",
		PasswordHash: "x",
		FullName:     "System Administrator",
		IsActive:     true,
		IsSuperadmin: true,
	}
}

func TestCreateUserHashesPassword(t *testing.T) {
	repo := &mockUserRepo{}
	svc := NewUserService(repo, validation.New(), nil)

	user, err := svc.Create(context.Background(), models.CreateUserRequest{
		Username: "Clerk",
		Email:    "Clerk@School.edu",
		Password: "secret1",
		FullName: "Front Office",
	})
	require.NoError(t, err)

	assert.Equal(t, "clerk", user.Username)
	assert.Equal(t, "clerk@school.edu", user.Email)
	assert.True(t, user.IsActive)
	assert.False(t, user.IsSuperadmin)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret1")))
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	repo := &mockUserRepo{users: map[string]models.AdminUser{"user-1": existingAdmin()}}
	svc := NewUserService(repo, validation.New(), nil)

	_, err := svc.Create(context.Background(), models.CreateUserRequest{
		Username: "admin",
		Email:    "other@school.edu",
		Password: "secret1",
		FullName: "Other",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	repo := &mockUserRepo{users: map[string]models.AdminUser{"user-1": existingAdmin()}}
	svc := NewUserService(repo, validation.New(), nil)

	_, err := svc.Create(context.Background(), models.CreateUserRequest{
		Username: "other",
		Email:    "admin@school.edu",
		Password: "secret1",
		FullName: "Other",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestUpdateUserPartialFields(t *testing.T) {
	repo := &mockUserRepo{users: map[string]models.AdminUser{"user-1": existingAdmin()}}
	svc := NewUserService(repo, validation.New(), nil)

	inactive := false
	name := "Renamed Admin"
	user, err := svc.Update(context.Background(), "user-1", models.UpdateUserRequest{
		FullName: &name,
		IsActive: &inactive,
	})
	require.NoError(t, err)

	assert.Equal(t, "Renamed Admin", user.FullName)
	assert.False(t, user.IsActive)
	assert.Equal(t, "admin@school.edu", user.Email)
}

func TestDeleteUserSelfForbidden(t *testing.T) {
	repo := &mockUserRepo{users: map[string]models.AdminUser{"user-1": existingAdmin()}}
	svc := NewUserService(repo, validation.New(), nil)

	err := svc.Delete(context.Background(), "user-1", "user-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.deleted)
}

func TestDeleteUser(t *testing.T) {
	repo := &mockUserRepo{users: map[string]models.AdminUser{"user-1": existingAdmin()}}
	svc := NewUserService(repo, validation.New(), nil)

	require.NoError(t, svc.Delete(context.Background(), "user-1", "user-2"))
	assert.Equal(t, []string{"user-1"}, repo.deleted)

	err := svc.Delete(context.Background(), "user-1", "user-2")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
