package worker

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const (
	TypeImportValidate = "import:validate"
	TypeImportSubmit   = "import:submit"

	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

// Queues maps each queue to its asynq priority weight.
var Queues = map[string]int{
	QueueCritical: 6,
	QueueDefault:  3,
	QueueLow:      1,
}

type ValidatePayload struct {
	SessionCode string `json:"session_code"`
	FilePath    string `json:"file_path"`
}

type SubmitPayload struct {
	SessionCode  string `json:"session_code"`
	AllowPartial bool   `json:"allow_partial"`
}

func NewValidateTask(code, filePath string) (*asynq.Task, error) {
	payload, err := json.Marshal(ValidatePayload{SessionCode: code, FilePath: filePath})
	if err != nil {
		return nil, fmt.Errorf("failed to encode validate payload: %w", err)
	}
	return asynq.NewTask(TypeImportValidate, payload,
		asynq.Queue(QueueDefault),
		asynq.MaxRetry(3),
		asynq.Timeout(30*time.Minute),
	), nil
}

// NewSubmitTask runs at most once. Rows already sent must not be sent again.
func NewSubmitTask(code string, allowPartial bool) (*asynq.Task, error) {
	payload, err := json.Marshal(SubmitPayload{SessionCode: code, AllowPartial: allowPartial})
	if err != nil {
		return nil, fmt.Errorf("failed to encode submit payload: %w", err)
	}
	return asynq.NewTask(TypeImportSubmit, payload,
		asynq.Queue(QueueCritical),
		asynq.MaxRetry(0),
		asynq.Timeout(time.Hour),
	), nil
}
