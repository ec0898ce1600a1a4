package repository

import (
	"database/sql"
	"errors"
	"masterlist-web/internal/models"

	"github.com/jmoiron/sqlx"
)

// UploadRepository is the durable log of import sessions.
type UploadRepository struct {
	db *sqlx.DB
}

func NewUploadRepository(db *sqlx.DB) *UploadRepository {
	return &UploadRepository{db: db}
}

// UpsertSession inserts the session or refreshes its counters and status.
func (r *UploadRepository) UpsertSession(session *models.ImportSessionLog) error {
	query := `INSERT INTO import_sessions (session_code, entity, filename, total_rows, valid_rows,
	          invalid_rows, submitted_rows, failed_rows, status, error_message)
	          VALUES (:session_code, :entity, :filename, :total_rows, :valid_rows,
	          :invalid_rows, :submitted_rows, :failed_rows, :status, :error_message)
	          ON DUPLICATE KEY UPDATE total_rows = VALUES(total_rows), valid_rows = VALUES(valid_rows),
	          invalid_rows = VALUES(invalid_rows), submitted_rows = VALUES(submitted_rows),
	          failed_rows = VALUES(failed_rows), status = VALUES(status), error_message = VALUES(error_message)`
	_, err := r.db.NamedExec(query, session)
	return err
}

func (r *UploadRepository) GetSessionByCode(code string) (*models.ImportSessionLog, error) {
	var session models.ImportSessionLog
	query := "SELECT * FROM import_sessions WHERE session_code = ? LIMIT 1"
	err := r.db.Get(&session, query, code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *UploadRepository) ListSessions(offset, limit int) ([]models.ImportSessionLog, int64, error) {
	var sessions []models.ImportSessionLog
	var total int64

	if err := r.db.Get(&total, "SELECT COUNT(*) FROM import_sessions"); err != nil {
		return nil, 0, err
	}

	query := `SELECT id, session_code, entity, filename, total_rows, valid_rows, invalid_rows,
	          submitted_rows, failed_rows, status, error_message, created_at, updated_at
	          FROM import_sessions ORDER BY created_at DESC LIMIT ? OFFSET ?`
	if err := r.db.Select(&sessions, query, limit, offset); err != nil {
		return nil, 0, err
	}

	return sessions, total, nil
}

func (r *UploadRepository) UpdateSessionStatus(code string, status models.SessionStatus) error {
	query := "UPDATE import_sessions SET status = ? WHERE session_code = ?"
	_, err := r.db.Exec(query, string(status), code)
	return err
}

func (r *UploadRepository) DeleteSession(code string) error {
	_, err := r.db.Exec("DELETE FROM import_sessions WHERE session_code = ?", code)
	return err
}
