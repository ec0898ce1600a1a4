package worker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"masterlist-web/internal/models"
	"masterlist-web/internal/service"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeImporter struct {
	session      *models.ImportSession
	getErr       error
	validateErr  error
	validated    []string
	submitted    []bool
	submitResult *models.SubmissionSummary
	submitErr    error
}

func (f *fakeImporter) Get(ctx context.Context, code string) (*models.ImportSession, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.session, nil
}

func (f *fakeImporter) RunValidation(ctx context.Context, code, path string) error {
	f.validated = append(f.validated, path)
	return f.validateErr
}

func (f *fakeImporter) Submit(ctx context.Context, code string, allowPartial bool) (*models.SubmissionSummary, error) {
	f.submitted = append(f.submitted, allowPartial)
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	return f.submitResult, nil
}

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func tempUpload(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "upload.csv")
	require.NoError(t, os.WriteFile(path, []byte("id\n1\n"), 0o644))
	return path
}

func TestNewValidateTask(t *testing.T) {
	task, err := NewValidateTask("abc", "/tmp/abc.xlsx")
	require.NoError(t, err)
	assert.Equal(t, TypeImportValidate, task.Type())

	var payload ValidatePayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.Equal(t, "abc", payload.SessionCode)
	assert.Equal(t, "/tmp/abc.xlsx", payload.FilePath)
}

func TestHandleValidate_RunsAndRemovesUpload(t *testing.T) {
	path := tempUpload(t)
	importer := &fakeImporter{session: &models.ImportSession{Code: "abc", Status: models.SessionQueued}}
	h := NewImportTaskHandler(importer, testLogger())

	task, err := NewValidateTask("abc", path)
	require.NoError(t, err)

	require.NoError(t, h.HandleValidate(context.Background(), task))
	assert.Equal(t, []string{path}, importer.validated)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestHandleValidate_SkipsCanceledSession(t *testing.T) {
	path := tempUpload(t)
	importer := &fakeImporter{getErr: service.ErrSessionNotFound}
	h := NewImportTaskHandler(importer, testLogger())

	task, err := NewValidateTask("abc", path)
	require.NoError(t, err)

	require.NoError(t, h.HandleValidate(context.Background(), task))
	assert.Empty(t, importer.validated)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestHandleValidate_FailureIsNotRetried(t *testing.T) {
	importer := &fakeImporter{
		session:     &models.ImportSession{Code: "abc", Status: models.SessionQueued},
		validateErr: service.ErrDecode,
	}
	h := NewImportTaskHandler(importer, testLogger())

	task, err := NewValidateTask("abc", tempUpload(t))
	require.NoError(t, err)

	err = h.HandleValidate(context.Background(), task)
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}

func TestHandleValidate_StoreErrorIsRetried(t *testing.T) {
	path := tempUpload(t)
	importer := &fakeImporter{getErr: errors.New("redis down")}
	h := NewImportTaskHandler(importer, testLogger())

	task, err := NewValidateTask("abc", path)
	require.NoError(t, err)

	err = h.HandleValidate(context.Background(), task)
	require.Error(t, err)
	assert.False(t, errors.Is(err, asynq.SkipRetry))
	assert.FileExists(t, path)
}

func TestHandleSubmit(t *testing.T) {
	importer := &fakeImporter{
		session:      &models.ImportSession{Code: "abc", Status: models.SessionValidated},
		submitResult: &models.SubmissionSummary{Attempted: 2, Succeeded: 2},
	}
	h := NewImportTaskHandler(importer, testLogger())

	task, err := NewSubmitTask("abc", true)
	require.NoError(t, err)

	require.NoError(t, h.HandleSubmit(context.Background(), task))
	assert.Equal(t, []bool{true}, importer.submitted)
}

func TestHandleSubmit_SkipsSubmittedSession(t *testing.T) {
	importer := &fakeImporter{session: &models.ImportSession{Code: "abc", Status: models.SessionSubmitted}}
	h := NewImportTaskHandler(importer, testLogger())

	task, err := NewSubmitTask("abc", false)
	require.NoError(t, err)

	require.NoError(t, h.HandleSubmit(context.Background(), task))
	assert.Empty(t, importer.submitted)
}

func TestHandleSubmit_BadPayload(t *testing.T) {
	h := NewImportTaskHandler(&fakeImporter{}, testLogger())

	err := h.HandleSubmit(context.Background(), asynq.NewTask(TypeImportSubmit, []byte("{")))
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}
