package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/prathampatel001/KnowledgeBase-v1/internal/models"
)

// ContributorRepository provides database access for the contributor
// relation, the authoritative (document, user) -> tier mapping.
type ContributorRepository struct {
	db *sqlx.DB
}

// NewContributorRepository creates a new instance of ContributorRepository.
func NewContributorRepository(db *sqlx.DB) *ContributorRepository {
	return &ContributorRepository{db: db}
}

const contributorColumns = `id, document_id, user_id, email, edit_access, created_at, updated_at`

// FindByID returns a contributor row by identifier.
func (r *ContributorRepository) FindByID(ctx context.Context, id string) (*models.Contributor, error) {
	query := `SELECT ` + contributorColumns + ` FROM contributors WHERE id = $1 LIMIT 1`
	var contributor models.Contributor
	if err := r.db.GetContext(ctx, &contributor, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find contributor by id: %w", err)
	}
	return &contributor, nil
}

// FindByDocumentAndUser returns the contributor row binding a user to a
// document, if any.
func (r *ContributorRepository) FindByDocumentAndUser(ctx context.Context, documentID, userID string) (*models.Contributor, error) {
	query := `SELECT ` + contributorColumns + ` FROM contributors WHERE document_id = $1 AND user_id = $2 LIMIT 1`
	var contributor models.Contributor
	if err := r.db.GetContext(ctx, &contributor, query, documentID, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find contributor for document and user: %w", err)
	}
	return &contributor, nil
}

// ListByDocument returns every contributor row for a document.
func (r *ContributorRepository) ListByDocument(ctx context.Context, documentID string) ([]models.Contributor, error) {
	query := `SELECT ` + contributorColumns + ` FROM contributors WHERE document_id = $1 ORDER BY created_at ASC`
	var contributors []models.Contributor
	if err := r.db.SelectContext(ctx, &contributors, query, documentID); err != nil {
		return nil, fmt.Errorf("list contributors by document: %w", err)
	}
	return contributors, nil
}

// ListDocumentIDsByUser returns the ids of every document the user holds a
// contributor row on, at any tier.
func (r *ContributorRepository) ListDocumentIDsByUser(ctx context.Context, userID string) ([]string, error) {
	const query = `SELECT document_id FROM contributors WHERE user_id = $1`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, userID); err != nil {
		return nil, fmt.Errorf("list document ids by user: %w", err)
	}
	return ids, nil
}

// List returns contributor rows, optionally filtered by a case-insensitive
// email substring match.
func (r *ContributorRepository) List(ctx context.Context, filter models.ContributorFilter) ([]models.Contributor, error) {
	query := `SELECT ` + contributorColumns + ` FROM contributors`
	var args []interface{}
	if filter.Email != "" {
		query += ` WHERE email ILIKE $1`
		args = append(args, "%"+escapeLikePattern(strings.TrimSpace(filter.Email))+"%")
	}
	query += ` ORDER BY created_at DESC`

	var contributors []models.Contributor
	if err := r.db.SelectContext(ctx, &contributors, query, args...); err != nil {
		return nil, fmt.Errorf("list contributors: %w", err)
	}
	return contributors, nil
}

// Create inserts a contributor row.
func (r *ContributorRepository) Create(ctx context.Context, contributor *models.Contributor) error {
	if contributor.ID == "" {
		contributor.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if contributor.CreatedAt.IsZero() {
		contributor.CreatedAt = now
	}
	contributor.UpdatedAt = now

	const query = `INSERT INTO contributors (id, document_id, user_id, email, edit_access, created_at, updated_at) VALUES (:id, :document_id, :user_id, :email, :edit_access, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, contributor); err != nil {
		return fmt.Errorf("create contributor: %w", err)
	}
	return nil
}

// UpdateAccess changes the tier of an existing contributor row.
func (r *ContributorRepository) UpdateAccess(ctx context.Context, id string, access models.Tier) error {
	const query = `UPDATE contributors SET edit_access = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, access, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update contributor access: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a contributor row.
func (r *ContributorRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM contributors WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete contributor: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLikePattern neutralises LIKE metacharacters in caller-supplied
// filter text so they match literally.
func escapeLikePattern(s string) string {
	return likeEscaper.Replace(s)
}
