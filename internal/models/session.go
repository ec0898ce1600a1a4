package models

import "time"

type SessionStatus string

const (
	SessionQueued     SessionStatus = "queued"
	SessionValidating SessionStatus = "validating"
	SessionValidated  SessionStatus = "validated"
	SessionFailed     SessionStatus = "failed"
	SessionSubmitting SessionStatus = "submitting"
	SessionSubmitted  SessionStatus = "submitted"
	SessionCanceled   SessionStatus = "canceled"
)

// Finished reports whether no further work may run for the session.
func (s SessionStatus) Finished() bool {
	return s == SessionSubmitted || s == SessionCanceled || s == SessionFailed
}

// ImportSession is the whole state of one bulk upload between requests.
type ImportSession struct {
	Code         string             `json:"code"`
	Entity       EntityType         `json:"entity"`
	Filename     string             `json:"filename"`
	SkipHeader   bool               `json:"skip_header"`
	ItemsSession string             `json:"items_session,omitempty"`
	Status       SessionStatus      `json:"status"`
	Error        string             `json:"error,omitempty"`
	Records      []CandidateRecord  `json:"records"`
	Context      *ReferenceContext  `json:"context,omitempty"`
	Submission   *SubmissionSummary `json:"submission,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// Summary is the session without its rows and context.
func (s *ImportSession) Summary() ImportSummary {
	valid, invalid := CountValid(s.Records)
	sum := ImportSummary{
		Code:        s.Code,
		Entity:      s.Entity,
		Filename:    s.Filename,
		Status:      s.Status,
		Error:       s.Error,
		TotalRows:   len(s.Records),
		ValidRows:   valid,
		InvalidRows: invalid,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
	if s.Submission != nil {
		sum.SubmittedRows = s.Submission.Succeeded
		sum.FailedRows = s.Submission.Failed
	}
	return sum
}

type SubmissionResult struct {
	RowNumber int    `json:"row_number"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
}

type SubmissionSummary struct {
	Attempted  int                `json:"attempted"`
	Succeeded  int                `json:"succeeded"`
	Failed     int                `json:"failed"`
	Results    []SubmissionResult `json:"results"`
	FinishedAt time.Time          `json:"finished_at"`
}

func NewSubmissionSummary(results []SubmissionResult) *SubmissionSummary {
	sum := &SubmissionSummary{Attempted: len(results), Results: results, FinishedAt: time.Now()}
	for _, r := range results {
		if r.Success {
			sum.Succeeded++
		} else {
			sum.Failed++
		}
	}
	return sum
}
