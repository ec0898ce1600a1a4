package models

import "time"

// ImportSummary is what listings and status responses show for a session.
type ImportSummary struct {
	Code          string        `json:"code"`
	Entity        EntityType    `json:"entity"`
	Filename      string        `json:"filename"`
	Status        SessionStatus `json:"status"`
	Error         string        `json:"error,omitempty"`
	TotalRows     int           `json:"total_rows"`
	ValidRows     int           `json:"valid_rows"`
	InvalidRows   int           `json:"invalid_rows"`
	SubmittedRows int           `json:"submitted_rows"`
	FailedRows    int           `json:"failed_rows"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}
