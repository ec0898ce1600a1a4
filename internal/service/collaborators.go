package service

import (
	"context"
	"masterlist-web/internal/models"
	"time"
)

// ReferenceSource reads the master data a batch is validated against.
type ReferenceSource interface {
	FetchItems(ctx context.Context) ([]models.Item, error)
	FetchBoMs(ctx context.Context) ([]models.BoMEntry, error)
}

// Persister creates records one at a time. It validates server side too.
type Persister interface {
	CreateItem(ctx context.Context, item models.Item) (*models.Item, error)
	CreateBoMEntry(ctx context.Context, entry models.BoMEntry) (*models.BoMEntry, error)
}

type ProcessStore interface {
	FetchProcesses(ctx context.Context) ([]models.Process, error)
	CreateProcess(ctx context.Context, p models.Process) (*models.Process, error)
	FetchProcessSteps(ctx context.Context) ([]models.ProcessStep, error)
	CreateProcessStep(ctx context.Context, step models.ProcessStep) (*models.ProcessStep, error)
}

// MasterData is implemented by both the API client and the MySQL repository.
type MasterData interface {
	ReferenceSource
	Persister
	ProcessStore
}

// SessionStore keeps the live state of import sessions. Load returns nil, nil
// for unknown codes. SaveIfExists never recreates a deleted session.
type SessionStore interface {
	Save(ctx context.Context, session *models.ImportSession) error
	SaveIfExists(ctx context.Context, session *models.ImportSession) (bool, error)
	Load(ctx context.Context, code string) (*models.ImportSession, error)
	Delete(ctx context.Context, code string) error
	Exists(ctx context.Context, code string) (bool, error)
	Lock(ctx context.Context, code string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, code string) error
	RecordProgress(ctx context.Context, code string, result models.SubmissionResult) error
	Progress(ctx context.Context, code string) (succeeded, failed int, err error)
}

// SessionLog is the durable listing of sessions.
type SessionLog interface {
	UpsertSession(log *models.ImportSessionLog) error
	UpdateSessionStatus(code string, status models.SessionStatus) error
	ListSessions(offset, limit int) ([]models.ImportSessionLog, int64, error)
}
