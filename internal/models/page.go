package models

import (
	"encoding/json"
	"time"

	"github.com/lib/pq"
)

// Page is a single page bound to a document and optionally nested under
// parent pages. Content is an opaque structured payload.
type Page struct {
	ID            string          `db:"id" json:"id"`
	Title         string          `db:"title" json:"title"`
	Content       json.RawMessage `db:"content" json:"content,omitempty"`
	DocumentID    string          `db:"document_id" json:"document_id"`
	ContributorID string          `db:"contributor_id" json:"contributor_id"`
	NestedUnder   pq.StringArray  `db:"page_nested_under" json:"page_nested_under"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`
}

// PageEdit is one entry of the append-only edit attribution trail.
type PageEdit struct {
	ID            string    `db:"id" json:"id"`
	PageID        string    `db:"page_id" json:"page_id"`
	ContributorID string    `db:"contributor_id" json:"contributor_id"`
	EditedAt      time.Time `db:"edited_at" json:"edited_at"`
}

// PageDetail is a page with its parent chain, document, creator contributor
// and edit trail populated. Parents nest recursively up to the configured
// traversal depth.
type PageDetail struct {
	Page
	Parents     []*PageDetail `json:"nested_under,omitempty"`
	Document    *Document     `json:"document,omitempty"`
	Contributor *Contributor  `json:"contributor,omitempty"`
	Edits       []PageEdit    `json:"edits,omitempty"`
}

// CreatePageRequest is the payload for creating a page.
type CreatePageRequest struct {
	Title       string          `json:"title" validate:"required"`
	Content     json.RawMessage `json:"content,omitempty"`
	DocumentID  string          `json:"document_id" validate:"required"`
	NestedUnder []string        `json:"page_nested_under,omitempty"`
}

// UpdatePageRequest carries partial page updates.
type UpdatePageRequest struct {
	Title       *string         `json:"title,omitempty"`
	Content     json.RawMessage `json:"content,omitempty"`
	NestedUnder *[]string       `json:"page_nested_under,omitempty"`
}
