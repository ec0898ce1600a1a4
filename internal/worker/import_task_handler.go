package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"masterlist-web/internal/models"
	"masterlist-web/internal/service"
	"os"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
)

// Importer is the part of the import pipeline the background jobs drive.
type Importer interface {
	Get(ctx context.Context, code string) (*models.ImportSession, error)
	RunValidation(ctx context.Context, code, path string) error
	Submit(ctx context.Context, code string, allowPartial bool) (*models.SubmissionSummary, error)
}

type ImportTaskHandler struct {
	imports Importer
	logger  *logrus.Logger
}

func NewImportTaskHandler(imports Importer, logger *logrus.Logger) *ImportTaskHandler {
	return &ImportTaskHandler{imports: imports, logger: logger}
}

// HandleValidate decodes and validates a queued upload, then removes the file.
func (h *ImportTaskHandler) HandleValidate(ctx context.Context, task *asynq.Task) error {
	var payload ValidatePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}
	log := h.logger.WithField("session", payload.SessionCode)

	session, err := h.imports.Get(ctx, payload.SessionCode)
	if errors.Is(err, service.ErrSessionNotFound) {
		log.Info("Session discarded, skipping validation")
		h.removeUpload(payload.FilePath)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}
	if session.Status.Finished() {
		log.Infof("Session is already %s, skipping validation", session.Status)
		h.removeUpload(payload.FilePath)
		return nil
	}

	log.Info("Starting validation")
	err = h.imports.RunValidation(ctx, payload.SessionCode, payload.FilePath)
	h.removeUpload(payload.FilePath)
	if err != nil {
		// The session is marked failed, a retry would only skip it.
		return fmt.Errorf("validation failed: %v: %w", err, asynq.SkipRetry)
	}

	log.Info("Validation completed")
	return nil
}

func (h *ImportTaskHandler) HandleSubmit(ctx context.Context, task *asynq.Task) error {
	var payload SubmitPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}
	log := h.logger.WithField("session", payload.SessionCode)

	session, err := h.imports.Get(ctx, payload.SessionCode)
	if errors.Is(err, service.ErrSessionNotFound) {
		log.Info("Session discarded, skipping submission")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}
	if session.Status != models.SessionValidated {
		log.Infof("Session is %s, skipping submission", session.Status)
		return nil
	}

	summary, err := h.imports.Submit(ctx, payload.SessionCode, payload.AllowPartial)
	if err != nil {
		return fmt.Errorf("submission failed: %v: %w", err, asynq.SkipRetry)
	}

	log.WithFields(logrus.Fields{
		"attempted": summary.Attempted,
		"succeeded": summary.Succeeded,
		"failed":    summary.Failed,
	}).Info("Submission completed")
	return nil
}

func (h *ImportTaskHandler) removeUpload(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		h.logger.WithError(err).WithField("path", path).Warn("Failed to remove upload")
	}
}
