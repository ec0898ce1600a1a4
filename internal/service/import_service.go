package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"masterlist-web/internal/models"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrSessionNotFound    = errors.New("import session not found")
	ErrSessionBusy        = errors.New("import session is being modified")
	ErrSessionState       = errors.New("import session is not in a state that allows this operation")
	ErrInvalidRowsPresent = errors.New("import session still has invalid rows")
	ErrLinkedSession      = errors.New("linked items session is not a validated item import")
	ErrListingUnavailable = errors.New("session listing requires the session log")
)

type StartRequest struct {
	Entity       models.EntityType
	Filename     string
	Reader       io.Reader
	SkipHeader   bool
	ItemsSession string
}

type ImportService struct {
	store        SessionStore
	log          SessionLog
	refs         ReferenceSource
	dispatcher   *Dispatcher
	logger       *logrus.Logger
	lockTTL      time.Duration
	pollInterval time.Duration
	now          func() time.Time
}

// NewImportService wires the pipeline. log may be nil when the session log is disabled.
func NewImportService(store SessionStore, log SessionLog, refs ReferenceSource, dispatcher *Dispatcher, lockTTL time.Duration, logger *logrus.Logger) *ImportService {
	return &ImportService{
		store:        store,
		log:          log,
		refs:         refs,
		dispatcher:   dispatcher,
		logger:       logger,
		lockTTL:      lockTTL,
		pollInterval: 500 * time.Millisecond,
		now:          time.Now,
	}
}

func (s *ImportService) newSession(entity models.EntityType, filename string, skipHeader bool, itemsSession string, status models.SessionStatus) *models.ImportSession {
	now := s.now()
	return &models.ImportSession{
		Code:         uuid.New().String(),
		Entity:       entity,
		Filename:     filename,
		SkipHeader:   skipHeader,
		ItemsSession: itemsSession,
		Status:       status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Start decodes and validates an upload in one go. A file that cannot be
// decoded creates no session.
func (s *ImportService) Start(ctx context.Context, req StartRequest) (*models.ImportSession, error) {
	rows, err := decodeAll(req.Filename, req.Reader)
	if err != nil {
		return nil, err
	}

	session := s.newSession(req.Entity, req.Filename, req.SkipHeader, req.ItemsSession, models.SessionValidating)
	if err := s.validate(ctx, session, rows); err != nil {
		return nil, err
	}

	if err := s.persist(ctx, session); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"session": session.Code,
		"entity":  session.Entity,
		"rows":    len(session.Records),
	}).Info("Import session validated")

	return session, nil
}

// Queue registers a session whose file is validated later by RunValidation.
func (s *ImportService) Queue(ctx context.Context, entity models.EntityType, filename string, skipHeader bool, itemsSession string) (*models.ImportSession, error) {
	session := s.newSession(entity, filename, skipHeader, itemsSession, models.SessionQueued)
	if err := s.persist(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// RunValidation validates the file of a queued session. Canceled or
// finished sessions are skipped.
func (s *ImportService) RunValidation(ctx context.Context, code, path string) error {
	session, err := s.Get(ctx, code)
	if err != nil {
		return err
	}
	if session.Status != models.SessionQueued && session.Status != models.SessionValidating {
		s.logger.WithField("session", code).Infof("Skipping validation for %s session", session.Status)
		return nil
	}

	session.Status = models.SessionValidating
	if err := s.update(ctx, session); err != nil {
		return discardedIsDone(err)
	}

	f, err := os.Open(path)
	if err != nil {
		return s.fail(ctx, session, fmt.Errorf("failed to open upload: %w", err))
	}
	defer f.Close()

	rows, err := decodeAll(session.Filename, f)
	if err != nil {
		return s.fail(ctx, session, err)
	}

	if err := s.validate(ctx, session, rows); err != nil {
		return s.fail(ctx, session, err)
	}

	// The session may have been discarded while it was validating.
	return discardedIsDone(s.update(ctx, session))
}

func discardedIsDone(err error) error {
	if errors.Is(err, ErrSessionNotFound) {
		return nil
	}
	return err
}

func (s *ImportService) fail(ctx context.Context, session *models.ImportSession, cause error) error {
	session.Status = models.SessionFailed
	session.Error = cause.Error()
	if err := s.update(ctx, session); err != nil && !errors.Is(err, ErrSessionNotFound) {
		s.logger.WithError(err).WithField("session", session.Code).Error("Failed to record session failure")
	}
	return cause
}

func decodeAll(filename string, r io.Reader) ([]models.Row, error) {
	reader, err := Decode(filename, r, DecodeOptions{})
	if err != nil {
		return nil, err
	}
	return reader.ReadAll()
}

// validate coerces the rows, loads reference data and runs the batch.
func (s *ImportService) validate(ctx context.Context, session *models.ImportSession, rows []models.Row) error {
	items, err := s.refs.FetchItems(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch items: %w", err)
	}

	existing := ExistingRecords{Items: items}
	itemTypes := ItemTypesOf(items)

	if session.Entity == models.EntityBoM {
		if existing.BoMs, err = s.refs.FetchBoMs(ctx); err != nil {
			return fmt.Errorf("failed to fetch bill of materials: %w", err)
		}
		if session.ItemsSession != "" {
			linked, err := s.store.Load(ctx, session.ItemsSession)
			if err != nil {
				return fmt.Errorf("failed to load items session: %w", err)
			}
			if linked == nil || linked.Entity != models.EntityItem || linked.Status == models.SessionQueued {
				return ErrLinkedSession
			}
			for id, t := range ItemTypesFromRecords(linked.Records) {
				if _, ok := itemTypes[id]; !ok {
					itemTypes[id] = t
				}
			}
		}
	}

	ValidateSession(session, CoerceRows(rows), itemTypes, existing)
	return nil
}

// persist saves a new session and mirrors the summary into the session log.
func (s *ImportService) persist(ctx context.Context, session *models.ImportSession) error {
	session.UpdatedAt = s.now()
	if err := s.store.Save(ctx, session); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	s.mirror(session)
	return nil
}

// update saves an existing session. It returns ErrSessionNotFound when the
// session was discarded in the meantime and leaves the store untouched.
func (s *ImportService) update(ctx context.Context, session *models.ImportSession) error {
	session.UpdatedAt = s.now()
	saved, err := s.store.SaveIfExists(ctx, session)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	if !saved {
		return ErrSessionNotFound
	}
	s.mirror(session)
	return nil
}

func (s *ImportService) mirror(session *models.ImportSession) {
	if s.log != nil {
		if err := s.log.UpsertSession(models.NewImportSessionLog(session.Summary())); err != nil {
			s.logger.WithError(err).WithField("session", session.Code).Warn("Failed to write session log")
		}
	}
}

func (s *ImportService) Get(ctx context.Context, code string) (*models.ImportSession, error) {
	session, err := s.store.Load(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	if session.Status == models.SessionSubmitting {
		succeeded, failed, err := s.store.Progress(ctx, code)
		if err == nil {
			session.Submission = &models.SubmissionSummary{Succeeded: succeeded, Failed: failed, Attempted: succeeded + failed}
		}
	}
	return session, nil
}

// List returns one window of the session log, newest first.
func (s *ImportService) List(offset, limit int) ([]models.ImportSummary, int64, error) {
	if s.log == nil {
		return nil, 0, ErrListingUnavailable
	}
	logs, total, err := s.log.ListSessions(offset, limit)
	if err != nil {
		return nil, 0, err
	}
	out := make([]models.ImportSummary, len(logs))
	for i := range logs {
		out[i] = logs[i].Summary()
	}
	return out, total, nil
}

// withSession runs fn on a validated session under the per-session edit lock
// and saves the result.
func (s *ImportService) withSession(ctx context.Context, code string, fn func(*models.ImportSession) error) (*models.ImportSession, error) {
	ok, err := s.store.Lock(ctx, code, s.lockTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to lock session: %w", err)
	}
	if !ok {
		return nil, ErrSessionBusy
	}
	defer s.unlock(code)

	session, err := s.Get(ctx, code)
	if err != nil {
		return nil, err
	}
	if session.Status != models.SessionValidated {
		return nil, fmt.Errorf("%w: %s", ErrSessionState, session.Status)
	}

	if err := fn(session); err != nil {
		return nil, err
	}
	if err := s.update(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *ImportService) unlock(code string) {
	if err := s.store.Unlock(context.Background(), code); err != nil {
		s.logger.WithError(err).WithField("session", code).Warn("Failed to release session lock")
	}
}

// EditCell replaces one cell without re-validating the row.
func (s *ImportService) EditCell(ctx context.Context, code string, row, col int, value models.Cell) (*models.ImportSession, error) {
	return s.withSession(ctx, code, func(session *models.ImportSession) error {
		return editCell(session, row, col, value)
	})
}

func (s *ImportService) Revalidate(ctx context.Context, code string, row int) (*models.ImportSession, error) {
	return s.withSession(ctx, code, func(session *models.ImportSession) error {
		return revalidate(session, row)
	})
}

// EditAndRevalidate applies the edit and re-validates the row under one lock.
func (s *ImportService) EditAndRevalidate(ctx context.Context, code string, row, col int, value models.Cell) (*models.ImportSession, error) {
	return s.withSession(ctx, code, func(session *models.ImportSession) error {
		if err := editCell(session, row, col, value); err != nil {
			return err
		}
		return revalidate(session, row)
	})
}

func editCell(session *models.ImportSession, row, col int, value models.Cell) error {
	schema, err := models.SchemaFor(session.Entity)
	if err != nil {
		return err
	}
	records, err := EditCell(session.Records, row, col, schema.Width(), CoerceCell(value))
	if err != nil {
		return err
	}
	session.Records = records
	return nil
}

func revalidate(session *models.ImportSession, row int) error {
	if session.Context == nil {
		session.Context = models.NewReferenceContext(nil)
	}
	records, err := RevalidateRow(session.Entity, session.Records, row, session.Context)
	if err != nil {
		return err
	}
	session.Records = records
	return nil
}

// ErrorReport writes the xlsx report of the invalid rows and returns its file name.
func (s *ImportService) ErrorReport(ctx context.Context, code string, w io.Writer) (string, error) {
	session, err := s.Get(ctx, code)
	if err != nil {
		return "", err
	}
	schema, err := models.SchemaFor(session.Entity)
	if err != nil {
		return "", err
	}
	if err := NewExcelService().WriteErrorReport(w, session.Records, schema); err != nil {
		return "", fmt.Errorf("failed to write error report: %w", err)
	}
	return ErrorReportFilename(session.Entity, s.now()), nil
}

// CheckSubmittable reports why a session cannot be submitted yet.
func (s *ImportService) CheckSubmittable(ctx context.Context, code string, allowPartial bool) (*models.ImportSession, error) {
	session, err := s.Get(ctx, code)
	if err != nil {
		return nil, err
	}
	if session.Status != models.SessionValidated {
		return nil, fmt.Errorf("%w: %s", ErrSessionState, session.Status)
	}
	if _, invalid := models.CountValid(session.Records); invalid > 0 && !allowPartial {
		return nil, fmt.Errorf("%w: %d invalid rows", ErrInvalidRowsPresent, invalid)
	}
	return session, nil
}

// Submit sends every valid row to the persistence collaborator. Discarding
// the session while it runs stops further requests.
func (s *ImportService) Submit(ctx context.Context, code string, allowPartial bool) (*models.SubmissionSummary, error) {
	var session *models.ImportSession
	_, err := s.withSession(ctx, code, func(current *models.ImportSession) error {
		if _, invalid := models.CountValid(current.Records); invalid > 0 && !allowPartial {
			return fmt.Errorf("%w: %d invalid rows", ErrInvalidRowsPresent, invalid)
		}
		current.Status = models.SessionSubmitting
		current.Submission = nil
		session = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go s.watchDiscard(runCtx, code, cancel)

	results := s.dispatcher.DispatchWithProgress(runCtx, session.Entity, session.Records, func(r models.SubmissionResult) {
		if err := s.store.RecordProgress(ctx, code, r); err != nil {
			s.logger.WithError(err).WithField("session", code).Debug("Failed to record submission progress")
		}
	})
	summary := models.NewSubmissionSummary(results)

	s.logger.WithFields(logrus.Fields{
		"session":   code,
		"succeeded": summary.Succeeded,
		"failed":    summary.Failed,
	}).Info("Import session submitted")

	session.Status = models.SessionSubmitted
	session.Submission = summary
	return summary, discardedIsDone(s.update(ctx, session))
}

// watchDiscard cancels a running submission once its session disappears.
func (s *ImportService) watchDiscard(ctx context.Context, code string, cancel context.CancelFunc) {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if exists, err := s.store.Exists(ctx, code); err == nil && !exists {
				s.logger.WithField("session", code).Info("Session discarded, stopping submission")
				cancel()
				return
			}
		}
	}
}

// Discard drops all state of the session, including its reference context.
// It takes the edit lock so an edit in flight cannot write the session back.
func (s *ImportService) Discard(ctx context.Context, code string) error {
	ok, err := s.store.Lock(ctx, code, s.lockTTL)
	if err != nil {
		return fmt.Errorf("failed to lock session: %w", err)
	}
	if !ok {
		return ErrSessionBusy
	}
	defer s.unlock(code)

	exists, err := s.store.Exists(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to check session: %w", err)
	}
	if !exists {
		return ErrSessionNotFound
	}
	if err := s.store.Delete(ctx, code); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if s.log != nil {
		if err := s.log.UpdateSessionStatus(code, models.SessionCanceled); err != nil {
			s.logger.WithError(err).WithField("session", code).Warn("Failed to mark session canceled")
		}
	}
	return nil
}

const exportPageSize = 1000

// ExportList writes every logged session to an xlsx workbook.
func (s *ImportService) ExportList(w io.Writer) error {
	if s.log == nil {
		return ErrListingUnavailable
	}

	var all []models.ImportSummary
	for offset := 0; ; offset += exportPageSize {
		logs, total, err := s.log.ListSessions(offset, exportPageSize)
		if err != nil {
			return err
		}
		for i := range logs {
			all = append(all, logs[i].Summary())
		}
		if len(logs) == 0 || int64(offset+len(logs)) >= total {
			break
		}
	}

	return NewExcelService().ExportSessionsList(w, all)
}
