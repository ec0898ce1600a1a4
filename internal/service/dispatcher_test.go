package service

import (
	"context"
	"sort"
	"sync"
	"testing"

	"masterlist-web/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemFromRow(t *testing.T) {
	row := itemRow(1, " Bolt ", 2, "Sell", "KGS", 5, 10, true, "metal")

	item, err := ItemFromRow(row)
	require.NoError(t, err)

	assert.Equal(t, int64(1), item.ID)
	assert.Equal(t, "Bolt", item.InternalItemName)
	assert.Equal(t, int64(2), item.TenantID)
	assert.Equal(t, models.ItemTypeSell, item.Type)
	assert.Equal(t, "kgs", item.UoM)
	require.NotNil(t, item.MinBuffer)
	assert.Equal(t, 5.0, *item.MinBuffer)
	assert.Equal(t, "Just to upload", item.CustomerItemName)
	assert.Equal(t, "user1", item.CreatedBy)
	assert.Equal(t, "user2", item.LastUpdatedBy)
	assert.Equal(t, "TRUE", item.AdditionalAttributes.AvgWeightNeeded)
	assert.Equal(t, "metal", item.AdditionalAttributes.ScrapType)
	assert.Nil(t, item.CreatedAt)
}

func TestItemFromRow_RejectsFractionalID(t *testing.T) {
	_, err := ItemFromRow(itemRow(1.5, "Bolt", 2, "sell", "kgs", 5, 10, true, "metal"))
	assert.Error(t, err)
}

func TestBoMFromRow(t *testing.T) {
	entry, err := BoMFromRow(bomRow(10, 1, 2, 5))
	require.NoError(t, err)
	assert.Equal(t, models.BoMEntry{ID: 10, ItemID: 1, ComponentID: 2, Quantity: 5, CreatedBy: "user2", LastUpdatedBy: "user2"}, entry)
}

func TestDispatch_FailuresAreIndependent(t *testing.T) {
	md := &fakeMasterData{failIDs: map[int64]bool{2: true}}
	d := NewDispatcher(md, 3, testLogger())
	records := []models.CandidateRecord{
		{RowNumber: 1, Row: itemRow(1, "A", 1, "component", "nos", nil, nil, true, ""), Valid: true},
		{RowNumber: 2, Row: itemRow(2, "B", 1, "component", "nos", nil, nil, true, ""), Valid: true},
		{RowNumber: 3, Row: itemRow(3, "C", 1, "component", "nos", nil, nil, true, ""), Valid: false},
		{RowNumber: 4, Row: itemRow(4, "D", 1, "component", "nos", nil, nil, true, ""), Valid: true},
	}

	var mu sync.Mutex
	var progress []models.SubmissionResult
	results := d.DispatchWithProgress(context.Background(), models.EntityItem, records, func(r models.SubmissionResult) {
		mu.Lock()
		defer mu.Unlock()
		progress = append(progress, r)
	})

	require.Len(t, results, 3, "invalid rows are never sent")
	assert.Equal(t, 1, results[0].RowNumber)
	assert.True(t, results[0].Success)
	assert.False(t, results[1].Success)
	assert.Equal(t, "server rejected item", results[1].Error)
	assert.True(t, results[2].Success)

	created := md.createdIDs()
	sort.Slice(created, func(i, j int) bool { return created[i] < created[j] })
	assert.Equal(t, []int64{1, 4}, created)
	assert.Len(t, progress, 3)
}

func TestDispatch_CanceledContextSendsNothing(t *testing.T) {
	md := &fakeMasterData{}
	d := NewDispatcher(md, 2, testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := d.Dispatch(ctx, models.EntityBoM, []models.CandidateRecord{
		{RowNumber: 1, Row: bomRow(1, 1, 2, 3), Valid: true},
	})

	require.Len(t, results, 1)
	assert.False(t, results[0].Success)
	assert.Empty(t, md.createdIDs())
}
