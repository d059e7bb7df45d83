package models

import "time"

// UserRole represents the available roles for the role-based checks.
type UserRole string

const (
	RoleStandard UserRole = "standard"
	RoleSuper    UserRole = "super"
)

// User represents an application user stored in the users table.
type User struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	ProfilePhoto *string   `db:"profile_photo" json:"profile_photo,omitempty"`
	Role         UserRole  `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// UserRef is the populated creator shape embedded in document and category reads.
type UserRef struct {
	ID    string `db:"id" json:"id"`
	Name  string `db:"name" json:"name"`
	Email string `db:"email" json:"email"`
}

// UpdateUserRequest carries the self-service profile update payload.
type UpdateUserRequest struct {
	Name         *string `json:"name,omitempty"`
	Password     *string `json:"password,omitempty" validate:"omitempty,min=6"`
	ProfilePhoto *string `json:"profile_photo,omitempty" validate:"omitempty,url"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
