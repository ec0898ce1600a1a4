package service

import (
	"context"
	"errors"
	"fmt"
	"masterlist-web/internal/models"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	processStepCreatedBy     = "user3"
	processStepLastUpdatedBy = "user4"
)

// FieldErrors maps a JSON field name to a user-facing message.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	parts := make([]string, 0, len(e))
	for field, msg := range e {
		parts = append(parts, field+": "+msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

var processMessages = map[string]string{
	"ProcessName.required": "Process name is required",
	"ProcessName.min":      "Process name must be at least 3 characters long",
	"Type.required":        "Process type is required",
	"TenantID.required":    "Tenant selection is required",
	"FactoryID.required":   "Factory ID is required",
	"ItemID.required":      "Please select an item",
	"ProcessID.required":   "Please select a process",
	"Sequence.gt":          "Please enter a valid sequence number",
	"ConversionRatio.gte":  "Please enter a valid conversion ratio",
}

var processFields = map[string]string{
	"ProcessName":     "process_name",
	"Type":            "type",
	"TenantID":        "tenant_id",
	"FactoryID":       "factory_id",
	"ItemID":          "item_id",
	"ProcessID":       "process_id",
	"Sequence":        "sequence",
	"ConversionRatio": "conversion_ratio",
}

type ProcessService struct {
	store    ProcessStore
	refs     ReferenceSource
	validate *validator.Validate
}

func NewProcessService(store ProcessStore, refs ReferenceSource) *ProcessService {
	return &ProcessService{store: store, refs: refs, validate: validator.New()}
}

func (s *ProcessService) checkStruct(v interface{}) error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fieldErrs := FieldErrors{}
	for _, fe := range verrs {
		name := processFields[fe.StructField()]
		if name == "" {
			name = fe.Field()
		}
		if _, seen := fieldErrs[name]; seen {
			continue
		}
		msg, ok := processMessages[fe.StructField()+"."+fe.Tag()]
		if !ok {
			msg = fmt.Sprintf("failed on %s", fe.Tag())
		}
		fieldErrs[name] = msg
	}
	return fieldErrs
}

func (s *ProcessService) ListProcesses(ctx context.Context) ([]models.Process, error) {
	return s.store.FetchProcesses(ctx)
}

func (s *ProcessService) CreateProcess(ctx context.Context, p models.Process) (*models.Process, error) {
	p.ProcessName = strings.TrimSpace(p.ProcessName)
	p.Type = strings.TrimSpace(p.Type)
	if err := s.checkStruct(p); err != nil {
		return nil, err
	}
	return s.store.CreateProcess(ctx, p)
}

func (s *ProcessService) ListProcessSteps(ctx context.Context) ([]models.ProcessStep, error) {
	return s.store.FetchProcessSteps(ctx)
}

// CreateProcessStep also requires the referenced item to exist.
func (s *ProcessService) CreateProcessStep(ctx context.Context, step models.ProcessStep) (*models.ProcessStep, error) {
	if err := s.checkStruct(step); err != nil {
		return nil, err
	}

	items, err := s.refs.FetchItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch items: %w", err)
	}
	found := false
	for _, it := range items {
		if it.ID == step.ItemID {
			found = true
			break
		}
	}
	if !found {
		return nil, FieldErrors{"item_id": fmt.Sprintf("Item %d does not exist", step.ItemID)}
	}

	if step.CreatedBy == "" {
		step.CreatedBy = processStepCreatedBy
	}
	if step.LastUpdatedBy == "" {
		step.LastUpdatedBy = processStepLastUpdatedBy
	}
	return s.store.CreateProcessStep(ctx, step)
}
