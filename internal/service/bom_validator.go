package service

import (
	"fmt"
	"masterlist-web/internal/models"
)

const (
	MinQuantity = 1
	MaxQuantity = 100

	msgBoMInsufficientColumns = "Insufficient data columns for Bill of Materials"
	msgBoMDuplicateID         = "Duplicate ID found"
	msgBoMIDsRequired         = "Both Item ID and Component ID are required"
	msgBoMDuplicatePair       = "Duplicate combination of item_id and component_id"
	msgBoMUnknownItems        = "BoM cannot be created for items not created yet"
	msgBoMSellComponent       = "Sell item cannot be a component in BoM"
	msgBoMPurchaseParent      = "Purchase item cannot be item_id in BoM"

	bomReasonSeparator = ", "
)

var msgBoMQuantityRange = fmt.Sprintf("Quantity must be a number between %d and %d", MinQuantity, MaxQuantity)

// ValidateBoM checks one BoM row against the running context.
//
// rc is mutated: a unique id and a unique (item_id, component_id) pair are
// claimed for owner. rc.ItemTypes must already hold every item the BoM may
// reference.
func ValidateBoM(row models.Row, rc *models.ReferenceContext, owner int) models.Verdict {
	if len(row) < models.BoMSchema.MinColumns {
		return models.NewVerdict([]string{msgBoMInsufficientColumns}, bomReasonSeparator)
	}

	bom := models.NewBoMRow(row)
	var errs []string

	if !bom.ID().IsBlank() && !rc.ClaimID(bom.ID().Key(), owner) {
		errs = append(errs, msgBoMDuplicateID)
	}

	bothPresent := !bom.ItemID().IsBlank() && !bom.ComponentID().IsBlank()
	if !bothPresent {
		errs = append(errs, msgBoMIDsRequired)
	}

	qty, ok := bom.Quantity().Number()
	if !ok || qty < MinQuantity || qty > MaxQuantity {
		errs = append(errs, msgBoMQuantityRange)
	}

	if bothPresent && !rc.ClaimKey(bom.CombinationKey(), owner) {
		errs = append(errs, msgBoMDuplicatePair)
	}

	itemType, itemKnown := rc.TypeOf(bom.ItemID().Key())
	componentType, componentKnown := rc.TypeOf(bom.ComponentID().Key())
	if !itemKnown || !componentKnown {
		errs = append(errs, msgBoMUnknownItems)
	}

	switch itemType {
	case models.ItemTypeSell:
		if componentType == models.ItemTypeSell {
			errs = append(errs, msgBoMSellComponent)
		}
	case models.ItemTypePurchase:
		errs = append(errs, msgBoMPurchaseParent)
	}

	return models.NewVerdict(errs, bomReasonSeparator)
}

// ValidateRow dispatches to the validator of the entity.
func ValidateRow(entity models.EntityType, row models.Row, rc *models.ReferenceContext, owner int) models.Verdict {
	if entity == models.EntityBoM {
		return ValidateBoM(row, rc, owner)
	}
	return ValidateItem(row, rc, owner)
}
