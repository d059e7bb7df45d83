package models

import "time"

// Document statuses. Stored as free text, these are the values the API writes.
const (
	DocumentStatusDraft  = "Draft"
	DocumentStatusPublic = "Public"
)

// Document represents a document row. Access control lives entirely on the
// contributor relation.
type Document struct {
	ID              string    `db:"id" json:"id"`
	Name            string    `db:"document_name" json:"document_name"`
	Status          string    `db:"status" json:"status"`
	Description     string    `db:"description" json:"description"`
	CategoryID      *string   `db:"category_id" json:"category_id,omitempty"`
	CreatedByUserID string    `db:"created_by_user_id" json:"created_by_user_id"`
	Favourite       bool      `db:"favourite" json:"favourite"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// DocumentDetail is a document with creator and category populated.
type DocumentDetail struct {
	Document
	Creator  UserRef   `json:"created_by"`
	Category *Category `json:"category,omitempty"`
}

// DocumentRead is the single-document read shape: the populated document
// plus its full contributor set.
type DocumentRead struct {
	DocumentDetail
	Contributors []Contributor `json:"contributors"`
}

// CreateDocumentRequest is the payload for creating a document.
type CreateDocumentRequest struct {
	Name        string  `json:"document_name" validate:"required"`
	Status      *string `json:"status,omitempty"`
	Description *string `json:"description,omitempty"`
	CategoryID  string  `json:"category" validate:"required"`
	Favourite   *bool   `json:"favourite,omitempty"`
}

// UpdateDocumentRequest carries partial document updates; unspecified
// fields are left unchanged.
type UpdateDocumentRequest struct {
	Name        *string `json:"document_name,omitempty"`
	Status      *string `json:"status,omitempty"`
	Description *string `json:"description,omitempty"`
	CategoryID  *string `json:"category,omitempty"`
	Favourite   *bool   `json:"favourite,omitempty"`
}
