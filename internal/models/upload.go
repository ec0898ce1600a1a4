package models

import (
	"database/sql"
	"time"
)

// ImportSessionLog is the durable row kept for every import session.
type ImportSessionLog struct {
	ID            int            `db:"id" json:"id"`
	SessionCode   string         `db:"session_code" json:"session_code"`
	Entity        string         `db:"entity" json:"entity"`
	Filename      string         `db:"filename" json:"filename"`
	TotalRows     int            `db:"total_rows" json:"total_rows"`
	ValidRows     int            `db:"valid_rows" json:"valid_rows"`
	InvalidRows   int            `db:"invalid_rows" json:"invalid_rows"`
	SubmittedRows int            `db:"submitted_rows" json:"submitted_rows"`
	FailedRows    int            `db:"failed_rows" json:"failed_rows"`
	Status        string         `db:"status" json:"status"`
	ErrorMessage  sql.NullString `db:"error_message" json:"-"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updated_at"`
}

func NewImportSessionLog(s ImportSummary) *ImportSessionLog {
	return &ImportSessionLog{
		SessionCode:   s.Code,
		Entity:        string(s.Entity),
		Filename:      s.Filename,
		TotalRows:     s.TotalRows,
		ValidRows:     s.ValidRows,
		InvalidRows:   s.InvalidRows,
		SubmittedRows: s.SubmittedRows,
		FailedRows:    s.FailedRows,
		Status:        string(s.Status),
		ErrorMessage:  sql.NullString{String: s.Error, Valid: s.Error != ""},
	}
}

func (l *ImportSessionLog) Summary() ImportSummary {
	return ImportSummary{
		Code:          l.SessionCode,
		Entity:        EntityType(l.Entity),
		Filename:      l.Filename,
		Status:        SessionStatus(l.Status),
		Error:         l.ErrorMessage.String,
		TotalRows:     l.TotalRows,
		ValidRows:     l.ValidRows,
		InvalidRows:   l.InvalidRows,
		SubmittedRows: l.SubmittedRows,
		FailedRows:    l.FailedRows,
		CreatedAt:     l.CreatedAt,
		UpdatedAt:     l.UpdatedAt,
	}
}
