package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/prathampatel001/KnowledgeBase-v1/internal/models"
)

// DocumentRepository provides database access for documents.
type DocumentRepository struct {
	db *sqlx.DB
}

// NewDocumentRepository creates a new instance of DocumentRepository.
func NewDocumentRepository(db *sqlx.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// CreateWithOwner inserts a document and its owner contributor row in a
// single transaction, so a document can never exist without a tier-0
// contributor.
func (r *DocumentRepository) CreateWithOwner(ctx context.Context, doc *models.Document, owner *models.Contributor) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if owner.ID == "" {
		owner.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	doc.CreatedAt = now
	doc.UpdatedAt = now
	owner.DocumentID = doc.ID
	owner.EditAccess = models.TierOwner
	owner.CreatedAt = now
	owner.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create document: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const docQuery = `INSERT INTO documents (id, document_name, status, description, category_id, created_by_user_id, favourite, created_at, updated_at) VALUES (:id, :document_name, :status, :description, :category_id, :created_by_user_id, :favourite, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, docQuery, doc); err != nil {
		return fmt.Errorf("create document: %w", err)
	}

	const ownerQuery = `INSERT INTO contributors (id, document_id, user_id, email, edit_access, created_at, updated_at) VALUES (:id, :document_id, :user_id, :email, :edit_access, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, ownerQuery, owner); err != nil {
		return fmt.Errorf("create owner contributor: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create document: %w", err)
	}
	return nil
}

// FindByID returns a document by identifier.
func (r *DocumentRepository) FindByID(ctx context.Context, id string) (*models.Document, error) {
	const query = `SELECT id, document_name, status, description, category_id, created_by_user_id, favourite, created_at, updated_at FROM documents WHERE id = $1 LIMIT 1`
	var doc models.Document
	if err := r.db.GetContext(ctx, &doc, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find document by id: %w", err)
	}
	return &doc, nil
}

const documentDetailColumns = `d.id, d.document_name, d.status, d.description, d.category_id, d.created_by_user_id, d.favourite, d.created_at, d.updated_at,
	u.id AS "creator.id", u.name AS "creator.name", u.email AS "creator.email",
	c.id AS cat_id, c.category_name AS cat_name, c.category_created_by AS cat_created_by, c.is_active AS cat_is_active, c.created_at AS cat_created_at, c.updated_at AS cat_updated_at`

// FindDetailByID returns a document with creator and category populated.
func (r *DocumentRepository) FindDetailByID(ctx context.Context, id string) (*models.DocumentDetail, error) {
	query := `SELECT ` + documentDetailColumns + ` FROM documents d JOIN users u ON u.id = d.created_by_user_id LEFT JOIN categories c ON c.id = d.category_id WHERE d.id = $1 LIMIT 1`
	var row documentDetailRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find document detail: %w", err)
	}
	return row.toDetail(), nil
}

// List returns all documents with creator and category populated, newest first.
func (r *DocumentRepository) List(ctx context.Context) ([]models.DocumentDetail, error) {
	query := `SELECT ` + documentDetailColumns + ` FROM documents d JOIN users u ON u.id = d.created_by_user_id LEFT JOIN categories c ON c.id = d.category_id ORDER BY d.created_at DESC`
	var rows []documentDetailRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return toDetails(rows), nil
}

// ListByCreator returns documents created by the given user, newest first.
// This is creator-only visibility; contributor-inclusive visibility is the
// page listing's concern.
func (r *DocumentRepository) ListByCreator(ctx context.Context, userID string) ([]models.DocumentDetail, error) {
	query := `SELECT ` + documentDetailColumns + ` FROM documents d JOIN users u ON u.id = d.created_by_user_id LEFT JOIN categories c ON c.id = d.category_id WHERE d.created_by_user_id = $1 ORDER BY d.created_at DESC`
	var rows []documentDetailRow
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("list documents by creator: %w", err)
	}
	return toDetails(rows), nil
}

// Update updates the mutable fields of a document.
func (r *DocumentRepository) Update(ctx context.Context, doc *models.Document) error {
	doc.UpdatedAt = time.Now().UTC()
	const query = `UPDATE documents SET document_name = :document_name, status = :status, description = :description, category_id = :category_id, favourite = :favourite, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, doc); err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	return nil
}

// Delete hard deletes a document. Pages and contributors are not cascaded;
// orphaned rows are accepted behavior.
func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM documents WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

type documentDetailRow struct {
	models.Document
	Creator models.UserRef `db:"creator"`

	CatID        *string    `db:"cat_id"`
	CatName      *string    `db:"cat_name"`
	CatCreatedBy *string    `db:"cat_created_by"`
	CatIsActive  *bool      `db:"cat_is_active"`
	CatCreatedAt *time.Time `db:"cat_created_at"`
	CatUpdatedAt *time.Time `db:"cat_updated_at"`
}

func (row documentDetailRow) toDetail() *models.DocumentDetail {
	detail := &models.DocumentDetail{Document: row.Document, Creator: row.Creator}
	if row.CatID != nil {
		detail.Category = &models.Category{
			ID:        *row.CatID,
			Name:      *row.CatName,
			CreatedBy: *row.CatCreatedBy,
			IsActive:  row.CatIsActive != nil && *row.CatIsActive,
			CreatedAt: *row.CatCreatedAt,
			UpdatedAt: *row.CatUpdatedAt,
		}
	}
	return detail
}

func toDetails(rows []documentDetailRow) []models.DocumentDetail {
	details := make([]models.DocumentDetail, 0, len(rows))
	for _, row := range rows {
		details = append(details, *row.toDetail())
	}
	return details
}
