package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/prathampatel001/KnowledgeBase-v1/internal/models"
)

// PageRepository provides database access for pages and their append-only
// edit attribution trail.
type PageRepository struct {
	db *sqlx.DB
}

// NewPageRepository creates a new instance of PageRepository.
func NewPageRepository(db *sqlx.DB) *PageRepository {
	return &PageRepository{db: db}
}

const pageColumns = `id, title, content, document_id, contributor_id, page_nested_under, created_at, updated_at`

// FindByID returns a page by identifier.
func (r *PageRepository) FindByID(ctx context.Context, id string) (*models.Page, error) {
	query := `SELECT ` + pageColumns + ` FROM pages WHERE id = $1 LIMIT 1`
	var page models.Page
	if err := r.db.GetContext(ctx, &page, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find page by id: %w", err)
	}
	return &page, nil
}

// ListByDocumentIDs returns every page belonging to one of the given
// documents, newest first.
func (r *PageRepository) ListByDocumentIDs(ctx context.Context, documentIDs []string) ([]models.Page, error) {
	if len(documentIDs) == 0 {
		return nil, nil
	}
	query := `SELECT ` + pageColumns + ` FROM pages WHERE document_id = ANY($1) ORDER BY created_at DESC`
	var pages []models.Page
	if err := r.db.SelectContext(ctx, &pages, query, pq.Array(documentIDs)); err != nil {
		return nil, fmt.Errorf("list pages by documents: %w", err)
	}
	return pages, nil
}

// Create inserts a new page.
func (r *PageRepository) Create(ctx context.Context, page *models.Page) error {
	if page.ID == "" {
		page.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if page.CreatedAt.IsZero() {
		page.CreatedAt = now
	}
	page.UpdatedAt = now
	if page.NestedUnder == nil {
		page.NestedUnder = pq.StringArray{}
	}

	const query = `INSERT INTO pages (id, title, content, document_id, contributor_id, page_nested_under, created_at, updated_at) VALUES (:id, :title, :content, :document_id, :contributor_id, :page_nested_under, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, page); err != nil {
		return fmt.Errorf("create page: %w", err)
	}
	return nil
}

// Update updates the mutable fields of a page.
func (r *PageRepository) Update(ctx context.Context, page *models.Page) error {
	page.UpdatedAt = time.Now().UTC()
	const query = `UPDATE pages SET title = :title, content = :content, page_nested_under = :page_nested_under, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, page); err != nil {
		return fmt.Errorf("update page: %w", err)
	}
	return nil
}

// Delete hard deletes a page.
func (r *PageRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM pages WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete page: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// AppendEdit records an edit attribution entry for a page.
func (r *PageRepository) AppendEdit(ctx context.Context, edit *models.PageEdit) error {
	if edit.ID == "" {
		edit.ID = uuid.NewString()
	}
	if edit.EditedAt.IsZero() {
		edit.EditedAt = time.Now().UTC()
	}
	const query = `INSERT INTO page_edits (id, page_id, contributor_id, edited_at) VALUES (:id, :page_id, :contributor_id, :edited_at)`
	if _, err := r.db.NamedExecContext(ctx, query, edit); err != nil {
		return fmt.Errorf("append page edit: %w", err)
	}
	return nil
}

// ListEdits returns the edit trail of a page in chronological order.
func (r *PageRepository) ListEdits(ctx context.Context, pageID string) ([]models.PageEdit, error) {
	const query = `SELECT id, page_id, contributor_id, edited_at FROM page_edits WHERE page_id = $1 ORDER BY edited_at ASC`
	var edits []models.PageEdit
	if err := r.db.SelectContext(ctx, &edits, query, pageID); err != nil {
		return nil, fmt.Errorf("list page edits: %w", err)
	}
	return edits, nil
}
