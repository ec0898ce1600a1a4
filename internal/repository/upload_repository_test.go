package repository

import (
	"regexp"
	"testing"
	"time"

	"masterlist-web/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "mysql"), mock
}

var sessionColumns = []string{
	"id", "session_code", "entity", "filename", "total_rows", "valid_rows", "invalid_rows",
	"submitted_rows", "failed_rows", "status", "error_message", "created_at", "updated_at",
}

func TestUploadRepository_UpsertSession(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUploadRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO import_sessions")).
		WithArgs("abc", "item", "items.xlsx", 3, 2, 1, 0, 0, "validated", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.UpsertSession(models.NewImportSessionLog(models.ImportSummary{
		Code: "abc", Entity: models.EntityItem, Filename: "items.xlsx",
		Status: models.SessionValidated, TotalRows: 3, ValidRows: 2, InvalidRows: 1,
	}))

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUploadRepository_ListSessions(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUploadRepository(db)
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM import_sessions")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))
	mock.ExpectQuery(regexp.QuoteMeta("FROM import_sessions ORDER BY created_at DESC LIMIT ? OFFSET ?")).
		WithArgs(10, 10).
		WillReturnRows(sqlmock.NewRows(sessionColumns).
			AddRow(11, "abc", "bom", "bom.csv", 4, 4, 0, 4, 0, "submitted", nil, now, now))

	sessions, total, err := repo.ListSessions(10, 10)

	require.NoError(t, err)
	assert.Equal(t, int64(11), total)
	require.Len(t, sessions, 1)
	summary := sessions[0].Summary()
	assert.Equal(t, models.EntityBoM, summary.Entity)
	assert.Equal(t, models.SessionSubmitted, summary.Status)
	assert.Equal(t, "", summary.Error)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUploadRepository_GetSessionByCode(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUploadRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM import_sessions WHERE session_code = ?")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(sessionColumns))

	session, err := repo.GetSessionByCode("missing")

	require.NoError(t, err)
	assert.Nil(t, session)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUploadRepository_UpdateSessionStatus(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUploadRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE import_sessions SET status = ? WHERE session_code = ?")).
		WithArgs("canceled", "abc").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateSessionStatus("abc", models.SessionCanceled))
	assert.NoError(t, mock.ExpectationsWereMet())
}
