package service

import (
	"context"
	"fmt"
	"masterlist-web/internal/models"
	"math"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const customerItemPlaceholder = "Just to upload"

// Dispatcher submits valid records one request per row.
type Dispatcher struct {
	persister   Persister
	concurrency int
	logger      *logrus.Logger
}

func NewDispatcher(persister Persister, concurrency int, logger *logrus.Logger) *Dispatcher {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Dispatcher{persister: persister, concurrency: concurrency, logger: logger}
}

func (d *Dispatcher) Dispatch(ctx context.Context, entity models.EntityType, records []models.CandidateRecord) []models.SubmissionResult {
	return d.DispatchWithProgress(ctx, entity, records, nil)
}

// DispatchWithProgress submits every valid record. Requests run concurrently
// and complete in any order; a failed row never stops the others. Once ctx
// is done no new request starts. Results follow the order of the valid records.
func (d *Dispatcher) DispatchWithProgress(ctx context.Context, entity models.EntityType, records []models.CandidateRecord, onResult func(models.SubmissionResult)) []models.SubmissionResult {
	valid := ValidRecords(records)
	results := make([]models.SubmissionResult, len(valid))

	var g errgroup.Group
	g.SetLimit(d.concurrency)

	for i, rec := range valid {
		i, rec := i, rec
		if ctx.Err() != nil {
			results[i] = canceledResult(rec)
			continue
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				results[i] = canceledResult(rec)
				return nil
			}
			results[i] = d.submit(ctx, entity, rec)
			if onResult != nil {
				onResult(results[i])
			}
			return nil
		})
	}
	g.Wait()

	return results
}

func canceledResult(rec models.CandidateRecord) models.SubmissionResult {
	return models.SubmissionResult{RowNumber: rec.RowNumber, Error: "submission canceled"}
}

func (d *Dispatcher) submit(ctx context.Context, entity models.EntityType, rec models.CandidateRecord) models.SubmissionResult {
	result := models.SubmissionResult{RowNumber: rec.RowNumber}

	var err error
	switch entity {
	case models.EntityBoM:
		var entry models.BoMEntry
		if entry, err = BoMFromRow(rec.Row); err == nil {
			_, err = d.persister.CreateBoMEntry(ctx, entry)
		}
	default:
		var item models.Item
		if item, err = ItemFromRow(rec.Row); err == nil {
			_, err = d.persister.CreateItem(ctx, item)
		}
	}

	if err != nil {
		result.Error = err.Error()
		if d.logger != nil {
			d.logger.WithError(err).WithFields(logrus.Fields{
				"entity": entity,
				"row":    rec.RowNumber,
			}).Warn("Row submission failed")
		}
		return result
	}

	result.Success = true
	return result
}

// ItemFromRow maps a valid item row onto the item payload. The audit
// timestamps are left to the server.
func ItemFromRow(row models.Row) (models.Item, error) {
	fields := models.ItemSchema.Map(row)

	id, err := intField(fields, "id")
	if err != nil {
		return models.Item{}, err
	}
	tenantID, err := intField(fields, "tenant_id")
	if err != nil {
		return models.Item{}, err
	}

	itemType, _ := models.ParseItemType(textField(fields, "type"))
	isDeleted, _ := fields["is_deleted"].(bool)

	item := models.Item{
		ID:               id,
		InternalItemName: strings.TrimSpace(textField(fields, "internal_item_name")),
		TenantID:         tenantID,
		ItemDescription:  textField(fields, "item_description"),
		Type:             itemType,
		UoM:              strings.ToLower(strings.TrimSpace(textField(fields, "uom"))),
		MinBuffer:        floatField(fields, "min_buffer"),
		MaxBuffer:        floatField(fields, "max_buffer"),
		CustomerItemName: customerItemPlaceholder,
		CreatedBy:        textField(fields, "created_by"),
		LastUpdatedBy:    textField(fields, "last_updated_by"),
		IsDeleted:        isDeleted,
		AdditionalAttributes: models.ItemAttributes{
			AvgWeightNeeded: strings.ToUpper(textField(fields, "additional_attributes.avg_weight_needed")),
			ScrapType:       textField(fields, "additional_attributes.scrap_type"),
		},
	}
	return item, nil
}

func BoMFromRow(row models.Row) (models.BoMEntry, error) {
	fields := models.BoMSchema.Map(row)

	var entry models.BoMEntry
	var err error
	if entry.ID, err = intField(fields, "id"); err != nil {
		return entry, err
	}
	if entry.ItemID, err = intField(fields, "item_id"); err != nil {
		return entry, err
	}
	if entry.ComponentID, err = intField(fields, "component_id"); err != nil {
		return entry, err
	}
	if q := floatField(fields, "quantity"); q != nil {
		entry.Quantity = *q
	}
	entry.CreatedBy = textField(fields, "created_by")
	entry.LastUpdatedBy = textField(fields, "last_updated_by")
	return entry, nil
}

func textField(fields map[string]interface{}, name string) string {
	v := fields[name]
	if v == nil {
		return ""
	}
	c, err := models.CellFromValue(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return c.Text()
}

func floatField(fields map[string]interface{}, name string) *float64 {
	c, err := models.CellFromValue(fields[name])
	if err != nil {
		return nil
	}
	f, ok := c.Number()
	if !ok {
		return nil
	}
	return &f
}

// intField requires a whole number, since ids are integers on the wire.
func intField(fields map[string]interface{}, name string) (int64, error) {
	f := floatField(fields, name)
	if f == nil {
		return 0, fmt.Errorf("%s must be numeric", name)
	}
	if *f != math.Trunc(*f) || math.Abs(*f) > 1<<53 {
		return 0, fmt.Errorf("%s must be a whole number, got %v", name, *f)
	}
	return int64(*f), nil
}
