package service

import (
	"fmt"
	"masterlist-web/internal/models"
	"strings"
)

const (
	msgItemInsufficientColumns = "Insufficient data columns"
	msgItemNameMandatory       = "Internal item name is mandatory"
	msgAvgWeightNotBoolean     = "Avg weight needed must be a boolean"
	msgScrapTypeMandatory      = "Scrap type is mandatory for sell type items"
	msgMinBufferInvalid        = "Minimum buffer is mandatory for sell and purchase types and cannot be negative"
	msgMaxBufferInvalid        = "Maximum buffer must be greater than or equal to minimum buffer and cannot be negative"

	itemReasonSeparator = ". "
)

var (
	msgInvalidItemType = "Invalid type. Must be one of: " + joinItemTypes(", ")
	msgInvalidUoM      = "Invalid UoM. Must be one of: " + strings.Join(models.UoMTypes, ", ")
)

func joinItemTypes(sep string) string {
	names := make([]string, len(models.ItemTypes))
	for i, t := range models.ItemTypes {
		names[i] = string(t)
	}
	return strings.Join(names, sep)
}

// ValidateItem checks one item row against the running context.
//
// rc is mutated: a unique id and a unique (name, tenant) pair are claimed
// for owner so later rows in the batch see them.
func ValidateItem(row models.Row, rc *models.ReferenceContext, owner int) models.Verdict {
	if len(row) < models.ItemSchema.MinColumns {
		return models.NewVerdict([]string{msgItemInsufficientColumns}, itemReasonSeparator)
	}

	item := models.NewItemRow(row)
	var errs []string

	var missing []string
	if item.ID().IsBlank() {
		missing = append(missing, "id")
	}
	if item.TenantID().IsBlank() {
		missing = append(missing, "tenant_id")
	}
	if item.UoM().IsBlank() {
		missing = append(missing, "uom")
	}
	if item.AvgWeightNeeded().IsEmpty() {
		missing = append(missing, "avg_weight_needed")
	}
	if len(missing) > 0 {
		errs = append(errs, "Missing mandatory fields: "+strings.Join(missing, ", "))
	}

	if !item.ID().IsBlank() {
		id := item.ID().Key()
		if !rc.ClaimID(id, owner) {
			errs = append(errs, fmt.Sprintf("Item ID %s already exists", id))
		}
	}

	name := item.Name()
	if name == "" {
		errs = append(errs, msgItemNameMandatory)
	} else if !rc.ClaimKey(item.IdentityKey(), owner) {
		errs = append(errs, fmt.Sprintf("Item with internal item name '%s' already exists for tenant %s",
			name, item.TenantID().Key()))
	}

	itemType, ok := models.ParseItemType(item.Type().Text())
	if !ok {
		errs = append(errs, msgInvalidItemType)
	}

	if !isUoM(item.UoM().Text()) {
		errs = append(errs, msgInvalidUoM)
	}

	if _, ok := item.AvgWeightNeeded().Bool(); !ok {
		errs = append(errs, msgAvgWeightNotBoolean)
	}

	if itemType == models.ItemTypeSell && strings.TrimSpace(item.ScrapType().Text()) == "" {
		errs = append(errs, msgScrapTypeMandatory)
	}

	if itemType == models.ItemTypeSell || itemType == models.ItemTypePurchase {
		errs = append(errs, validateBuffers(item.MinBuffer(), item.MaxBuffer())...)
	}

	return models.NewVerdict(errs, itemReasonSeparator)
}

func isUoM(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, u := range models.UoMTypes {
		if s == u {
			return true
		}
	}
	return false
}

// validateBuffers treats an empty max as 0. Max is only compared against a usable min.
func validateBuffers(minCell, maxCell models.Cell) []string {
	var errs []string

	minVal, minOK := minCell.Number()
	if !minOK || minVal < 0 {
		errs = append(errs, msgMinBufferInvalid)
	}

	maxVal, maxOK := 0.0, true
	if !maxCell.IsEmpty() {
		maxVal, maxOK = maxCell.Number()
	}
	if !maxOK || maxVal < 0 || (minOK && maxVal < minVal) {
		errs = append(errs, msgMaxBufferInvalid)
	}

	return errs
}
