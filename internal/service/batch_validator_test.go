package service

import (
	"testing"

	"masterlist-web/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateBatch_OrderDependentUniqueness(t *testing.T) {
	rows := []models.Row{
		itemRow(1, "Bolt", 2, "component", "nos", nil, nil, true, ""),
		itemRow(2, "Bolt", 2, "component", "nos", nil, nil, true, ""),
	}

	records, _ := ValidateBatch(models.EntityItem, rows, false, nil, ExistingRecords{})

	require.Len(t, records, 2)
	assert.True(t, records[0].Valid)
	assert.False(t, records[1].Valid)
	assert.Contains(t, records[1].Reason, "already exists for tenant 2")
}

func TestValidateBatch_RowNumbersAndHeader(t *testing.T) {
	header := models.Row{models.StringCell("id"), models.StringCell("item_id"), models.StringCell("component_id"), models.StringCell("quantity")}
	rows := []models.Row{header, bomRow(1, 1, 2, 5), bomRow(2, 1, 3, 5)}
	types := map[string]models.ItemType{"1": models.ItemTypeSell, "2": models.ItemTypeComponent, "3": models.ItemTypePurchase}

	records, rc := ValidateBatch(models.EntityBoM, rows, true, types, ExistingRecords{})
	require.Len(t, records, 2)
	assert.Equal(t, 2, records[0].RowNumber)
	assert.Equal(t, 3, records[1].RowNumber)
	assert.Equal(t, rows[1], records[0].Row)
	assert.True(t, records[0].Valid)
	assert.True(t, records[1].Valid)
	assert.Equal(t, 0, rc.Keys[models.BoMCombinationKey("1", "2")])

	records, _ = ValidateBatch(models.EntityBoM, rows[1:], false, types, ExistingRecords{})
	assert.Equal(t, 1, records[0].RowNumber)
}

func TestValidateBatch_PersistedItems(t *testing.T) {
	existing := ExistingRecords{Items: []models.Item{
		{ID: 5, InternalItemName: "Bolt", TenantID: 2, Type: models.ItemTypeSell},
	}}
	rows := []models.Row{
		itemRow(6, "BOLT", 2, "component", "nos", nil, nil, true, ""),
		itemRow(5, "Nut", 2, "component", "nos", nil, nil, true, ""),
	}

	records, rc := ValidateBatch(models.EntityItem, rows, false, ItemTypesOf(existing.Items), existing)

	assert.Contains(t, records[0].Reason, "Item with internal item name 'BOLT' already exists for tenant 2")
	assert.Equal(t, "Item ID 5 already exists", records[1].Reason)
	assert.Equal(t, models.PersistedOwner, rc.IDs["5"])
}

func TestValidateBatch_EmptyInput(t *testing.T) {
	records, rc := ValidateBatch(models.EntityItem, nil, true, nil, ExistingRecords{})
	assert.Empty(t, records)
	assert.NotNil(t, rc)
}

func TestItemTypesFromRecords(t *testing.T) {
	records := []models.CandidateRecord{
		{Row: itemRow(1, "A", 1, "Sell", "nos", 1, 1, true, "x"), Valid: true},
		{Row: itemRow(2, "B", 1, "purchase", "nos", 1, 1, true, ""), Valid: false},
	}

	types := ItemTypesFromRecords(records)

	assert.Equal(t, map[string]models.ItemType{"1": models.ItemTypeSell}, types)
}
