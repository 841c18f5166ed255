package models

import "time"

// AdminUser represents a staff account stored in the users table.
type AdminUser struct {
	ID           string     `db:"id" json:"id"`
	Username     string     `db:"username" json:"username"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	FullName     string     `db:"full_name" json:"full_name"`
	IsActive     bool       `db:"is_active" json:"is_active"`
	IsSuperadmin bool       `db:"is_superadmin" json:"is_superadmin"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// CreateUserRequest is the payload for provisioning an admin account.
type CreateUserRequest struct {
	Username     string `json:"username" validate:"required,min=3"`
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=6"`
	FullName     string `json:"full_name" validate:"required"`
	IsSuperadmin bool   `json:"is_superadmin"`
}

// UpdateUserRequest carries partial admin account changes. Nil fields are
// left untouched.
type UpdateUserRequest struct {
	Email        *string `json:"email" validate:"omitempty,email"`
	FullName     *string `json:"full_name"`
	IsActive     *bool   `json:"is_active"`
	IsSuperadmin *bool   `json:"is_superadmin"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Total       int `json:"total"`
	Pages       int `json:"pages"`
	CurrentPage int `json:"current_page"`
	PerPage     int `json:"per_page"`
}

// NewPagination derives page counts from a total and the requested window.
func NewPagination(total, page, perPage int) *Pagination {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	pages := total / perPage
	if total%perPage != 0 {
		pages++
	}
	return &Pagination{Total: total, Pages: pages, CurrentPage: page, PerPage: perPage}
}
