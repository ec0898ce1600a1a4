package service

import (
	"masterlist-web/internal/models"
	"strconv"
)

// ExistingRecords is previously persisted data the batch is checked against.
type ExistingRecords struct {
	Items []models.Item
	BoMs  []models.BoMEntry
}

// ItemTypesOf maps persisted item ids to their type.
func ItemTypesOf(items []models.Item) map[string]models.ItemType {
	types := make(map[string]models.ItemType, len(items))
	for _, it := range items {
		if t, ok := models.ParseItemType(string(it.Type)); ok {
			types[formatID(it.ID)] = t
		}
	}
	return types
}

// ItemTypesFromRecords maps the ids of valid item rows to their type.
func ItemTypesFromRecords(records []models.CandidateRecord) map[string]models.ItemType {
	types := map[string]models.ItemType{}
	for _, r := range records {
		if !r.Valid {
			continue
		}
		item := models.NewItemRow(r.Row)
		if t, ok := models.ParseItemType(item.Type().Text()); ok {
			types[item.ID().Key()] = t
		}
	}
	return types
}

// NewBatchContext builds the reference context of a batch once, before any row is validated.
func NewBatchContext(entity models.EntityType, itemTypes map[string]models.ItemType, existing ExistingRecords) *models.ReferenceContext {
	rc := models.NewReferenceContext(itemTypes)

	switch entity {
	case models.EntityItem:
		for id := range itemTypes {
			rc.IDs[id] = models.PersistedOwner
		}
		for _, it := range existing.Items {
			rc.IDs[formatID(it.ID)] = models.PersistedOwner
			rc.Keys[models.ItemIdentityKey(it.InternalItemName, formatID(it.TenantID))] = models.PersistedOwner
		}
	case models.EntityBoM:
		for _, b := range existing.BoMs {
			rc.IDs[formatID(b.ID)] = models.PersistedOwner
			rc.Keys[models.BoMCombinationKey(formatID(b.ItemID), formatID(b.ComponentID))] = models.PersistedOwner
		}
	}

	return rc
}

// ValidateBatch validates rows strictly in order against one running context.
// Row numbers are 1-based and account for a skipped header.
func ValidateBatch(entity models.EntityType, rows []models.Row, skipHeader bool, itemTypes map[string]models.ItemType, existing ExistingRecords) ([]models.CandidateRecord, *models.ReferenceContext) {
	rc := NewBatchContext(entity, itemTypes, existing)

	offset := 1
	if skipHeader && len(rows) > 0 {
		rows = rows[1:]
		offset = 2
	}

	records := make([]models.CandidateRecord, len(rows))
	for i, row := range rows {
		verdict := ValidateRow(entity, row, rc, i)
		records[i] = models.CandidateRecord{
			RowNumber: i + offset,
			Row:       row,
			Valid:     verdict.Valid,
			Reason:    verdict.Reason,
		}
	}

	return records, rc
}

// ValidateSession fills the session's records and context from its rows.
func ValidateSession(session *models.ImportSession, rows []models.Row, itemTypes map[string]models.ItemType, existing ExistingRecords) {
	session.Records, session.Context = ValidateBatch(session.Entity, rows, session.SkipHeader, itemTypes, existing)
	session.Status = models.SessionValidated
	session.Error = ""
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
