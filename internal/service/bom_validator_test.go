package service

import (
	"testing"

	"masterlist-web/internal/models"

	"github.com/stretchr/testify/assert"
)

func bomContext(types map[string]models.ItemType) *models.ReferenceContext {
	return NewBatchContext(models.EntityBoM, types, ExistingRecords{})
}

func TestValidateBoM_SellComponentRejected(t *testing.T) {
	rc := bomContext(map[string]models.ItemType{"A": models.ItemTypeSell, "B": models.ItemTypeSell})

	v := ValidateBoM(bomRow(10, "A", "B", 5), rc, 0)

	assert.False(t, v.Valid)
	assert.Contains(t, v.Reason, "Sell item cannot be a component in BoM")
}

func TestValidateBoM_QuantityRange(t *testing.T) {
	types := map[string]models.ItemType{"A": models.ItemTypeSell, "B": models.ItemTypeComponent}

	v := ValidateBoM(bomRow(11, "A", "B", 150), bomContext(types), 0)
	assert.Equal(t, []string{"Quantity must be a number between 1 and 100"}, v.Errors)

	for _, qty := range []interface{}{1, 100, "50"} {
		v := ValidateBoM(bomRow(12, "A", "B", qty), bomContext(types), 0)
		assert.True(t, v.Valid, "quantity %v: %s", qty, v.Reason)
	}

	for _, qty := range []interface{}{0, 100.5, "many", nil} {
		v := ValidateBoM(bomRow(12, "A", "B", qty), bomContext(types), 0)
		assert.False(t, v.Valid, "quantity %v", qty)
	}
}

func TestValidateBoM_PurchaseParentAlwaysInvalid(t *testing.T) {
	rc := bomContext(map[string]models.ItemType{"1": models.ItemTypePurchase, "2": models.ItemTypeComponent})

	v := ValidateBoM(bomRow(1, 1, 2, 3), rc, 0)

	assert.Equal(t, []string{"Purchase item cannot be item_id in BoM"}, v.Errors)
}

func TestValidateBoM_UnknownItems(t *testing.T) {
	v := ValidateBoM(bomRow(1, 5, 6, 3), bomContext(nil), 0)

	assert.False(t, v.Valid)
	assert.Contains(t, v.Reason, "BoM cannot be created for items not created yet")
}

func TestValidateBoM_MissingIDsAndShortRow(t *testing.T) {
	rc := bomContext(map[string]models.ItemType{"1": models.ItemTypeSell})

	v := ValidateBoM(bomRow(1, 1, "", 3), rc, 0)
	assert.Equal(t, "Both Item ID and Component ID are required, BoM cannot be created for items not created yet", v.Reason)

	v = ValidateBoM(models.Row{models.NumberCell(1), models.NumberCell(2)}, rc, 0)
	assert.Equal(t, []string{"Insufficient data columns for Bill of Materials"}, v.Errors)
}

func TestValidateBoM_DuplicatesAgainstPersistedAndBatch(t *testing.T) {
	types := map[string]models.ItemType{"1": models.ItemTypeSell, "2": models.ItemTypeComponent, "3": models.ItemTypeComponent}
	rc := NewBatchContext(models.EntityBoM, types, ExistingRecords{
		BoMs: []models.BoMEntry{{ID: 50, ItemID: 1, ComponentID: 3}},
	})

	persistedPair := ValidateBoM(bomRow(1, 1, 3, 2), rc, 0)
	first := ValidateBoM(bomRow(2, 1, 2, 2), rc, 1)
	repeated := ValidateBoM(bomRow(3, "1", "2", 4), rc, 2)
	persistedID := ValidateBoM(bomRow(50, 2, 3, 4), rc, 3)

	assert.Equal(t, []string{msgBoMDuplicatePair}, persistedPair.Errors)
	assert.True(t, first.Valid)
	assert.Equal(t, []string{msgBoMDuplicatePair}, repeated.Errors)
	assert.Equal(t, []string{msgBoMDuplicateID}, persistedID.Errors)
}
