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

// CategoryRepository provides database access for categories.
type CategoryRepository struct {
	db *sqlx.DB
}

// NewCategoryRepository creates a new instance of CategoryRepository.
func NewCategoryRepository(db *sqlx.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// FindByID returns a category by identifier.
func (r *CategoryRepository) FindByID(ctx context.Context, id string) (*models.Category, error) {
	const query = `SELECT id, category_name, category_created_by, is_active, created_at, updated_at FROM categories WHERE id = $1 LIMIT 1`
	var category models.Category
	if err := r.db.GetContext(ctx, &category, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find category by id: %w", err)
	}
	return &category, nil
}

// FindByName returns a category by its unique name.
func (r *CategoryRepository) FindByName(ctx context.Context, name string) (*models.Category, error) {
	const query = `SELECT id, category_name, category_created_by, is_active, created_at, updated_at FROM categories WHERE category_name = $1 LIMIT 1`
	var category models.Category
	if err := r.db.GetContext(ctx, &category, query, name); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find category by name: %w", err)
	}
	return &category, nil
}

// FindDetailByID returns a category with its creator populated.
func (r *CategoryRepository) FindDetailByID(ctx context.Context, id string) (*models.CategoryDetail, error) {
	const query = `SELECT c.id, c.category_name, c.category_created_by, c.is_active, c.created_at, c.updated_at,
		u.id AS "creator.id", u.name AS "creator.name", u.email AS "creator.email"
		FROM categories c JOIN users u ON u.id = c.category_created_by WHERE c.id = $1 LIMIT 1`
	var row categoryDetailRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find category detail: %w", err)
	}
	return row.toDetail(), nil
}

// List returns all categories with creators populated, newest first.
func (r *CategoryRepository) List(ctx context.Context) ([]models.CategoryDetail, error) {
	const query = `SELECT c.id, c.category_name, c.category_created_by, c.is_active, c.created_at, c.updated_at,
		u.id AS "creator.id", u.name AS "creator.name", u.email AS "creator.email"
		FROM categories c JOIN users u ON u.id = c.category_created_by ORDER BY c.created_at DESC`
	var rows []categoryDetailRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	details := make([]models.CategoryDetail, 0, len(rows))
	for _, row := range rows {
		details = append(details, *row.toDetail())
	}
	return details, nil
}

// Create inserts a new category.
func (r *CategoryRepository) Create(ctx context.Context, category *models.Category) error {
	if category.ID == "" {
		category.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if category.CreatedAt.IsZero() {
		category.CreatedAt = now
	}
	category.UpdatedAt = now

	const query = `INSERT INTO categories (id, category_name, category_created_by, is_active, created_at, updated_at) VALUES (:id, :category_name, :category_created_by, :is_active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, category); err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

// Update updates the mutable fields of a category.
func (r *CategoryRepository) Update(ctx context.Context, category *models.Category) error {
	category.UpdatedAt = time.Now().UTC()
	const query = `UPDATE categories SET category_name = :category_name, is_active = :is_active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, category); err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return nil
}

// Delete removes a category. Documents keep their reference; deletion does
// not cascade.
func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM categories WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

type categoryDetailRow struct {
	models.Category
	Creator models.UserRef `db:"creator"`
}

func (row categoryDetailRow) toDetail() *models.CategoryDetail {
	return &models.CategoryDetail{Category: row.Category, Creator: row.Creator}
}
