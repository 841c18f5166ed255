package seed

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/school-portal-api/internal/models"
)

// defaultAdmin is created only when the users table is empty.
const (
	defaultAdminUsername = "admin"
	defaultAdminEmail    = "admin@school.edu"
	defaultAdminName     = "System Administrator"
)

// UserStore is the account access seeding needs.
type UserStore interface {
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, user *models.AdminUser) error
}

// EnsureAdmin creates the bootstrap superadmin account when no accounts
// exist. Re-running against a populated table is a no-op.
func EnsureAdmin(ctx context.Context, store UserStore, password string, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	count, err := store.Count(ctx)
	if err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	admin := &models.AdminUser{
		Username:     defaultAdminUsername,
		Email:        defaultAdminEmail,
		PasswordHash: string(hash),
		FullName:     defaultAdminName,
		IsActive:     true,
		IsSuperadmin: true,
	}
	if err := store.Create(ctx, admin); err != nil {
		return fmt.Errorf("create admin account: %w", err)
	}

	logger.Warn("bootstrap admin account created, rotate the default password",
		zap.String("username", defaultAdminUsername))
	return nil
}
