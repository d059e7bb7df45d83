package models

import "time"

// Category tags documents. Independent of the contributor access model;
// category endpoints are role-gated instead.
type Category struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"category_name" json:"category_name"`
	CreatedBy string    `db:"category_created_by" json:"category_created_by"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// CategoryDetail is a category with the creator populated.
type CategoryDetail struct {
	Category
	Creator UserRef `json:"created_by"`
}

// CreateCategoryRequest is the payload for creating a category.
type CreateCategoryRequest struct {
	Name     string `json:"category_name" validate:"required"`
	IsActive *bool  `json:"is_active,omitempty"`
}

// UpdateCategoryRequest carries partial category updates.
type UpdateCategoryRequest struct {
	Name     *string `json:"category_name,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}
