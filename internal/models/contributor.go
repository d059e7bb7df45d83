package models

import "time"

// Tier is the integer access level stored on a contributor row.
// The contributor relation is the sole source of truth for document and
// page authorization; documents and pages carry no embedded permission list.
type Tier int

const (
	TierOwner  Tier = 0
	TierEditor Tier = 1
	TierViewer Tier = 2
)

// Valid reports whether the tier is one of the known levels.
func (t Tier) Valid() bool {
	return t == TierOwner || t == TierEditor || t == TierViewer
}

// Contributor grants a user a tier on a document. UserID may be absent for
// email-only invites, in which case Email is required.
type Contributor struct {
	ID         string    `db:"id" json:"id"`
	DocumentID string    `db:"document_id" json:"document_id"`
	UserID     *string   `db:"user_id" json:"user_id,omitempty"`
	Email      *string   `db:"email" json:"email,omitempty"`
	EditAccess Tier      `db:"edit_access" json:"edit_access"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// GrantContributorRequest is the payload for granting access to a document.
// Owner rows are never granted here; they exist only via document creation.
type GrantContributorRequest struct {
	DocumentID string  `json:"document_id" validate:"required"`
	UserID     *string `json:"user_id,omitempty"`
	Email      *string `json:"email,omitempty" validate:"omitempty,email"`
	EditAccess Tier    `json:"edit_access" validate:"oneof=1 2"`
}

// UpdateContributorRequest changes the tier of an existing grant.
type UpdateContributorRequest struct {
	EditAccess Tier `json:"edit_access" validate:"oneof=1 2"`
}

// ContributorFilter narrows contributor listings.
type ContributorFilter struct {
	Email string
}
