package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCategoryMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestCategoryRepositoryListPopulatesCreator(t *testing.T) {
	db, mock, cleanup := newCategoryMock(t)
	defer cleanup()
	repo := NewCategoryRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "category_name", "category_created_by", "is_active", "created_at", "updated_at",
		"creator.id", "creator.name", "creator.email",
	}).AddRow("cat-1", "Engineering", "admin-1", true, now, now, "admin-1", "Admin", "admin@example.com")

	mock.ExpectQuery("SELECT (.+) FROM categories c JOIN users u ON u.id = c.category_created_by").
		WillReturnRows(rows)

	categories, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, "Engineering", categories[0].Name)
	assert.Equal(t, "Admin", categories[0].Creator.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryRepositoryDeleteMissing(t *testing.T) {
	db, mock, cleanup := newCategoryMock(t)
	defer cleanup()
	repo := NewCategoryRepository(db)

	mock.ExpectExec("DELETE FROM categories").
		WithArgs("cat-missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "cat-missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
