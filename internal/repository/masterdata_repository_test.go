package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"masterlist-web/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMasterDataRepository_FetchItems(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMasterDataRepository(db)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM items")).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "internal_item_name", "tenant_id", "item_description", "type", "uom",
			"min_buffer", "max_buffer", "customer_item_name", "avg_weight_needed", "scrap_type",
			"created_by", "last_updated_by", "is_deleted", "created_at", "updated_at",
		}).AddRow(1, "Bolt", 2, "", "sell", "kgs", 5.0, nil, "Just to upload", "TRUE", "metal",
			"user1", "user2", false, now, now))

	items, err := repo.FetchItems(context.Background())

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, models.ItemTypeSell, items[0].Type)
	require.NotNil(t, items[0].MinBuffer)
	assert.Equal(t, 5.0, *items[0].MinBuffer)
	assert.Nil(t, items[0].MaxBuffer)
	assert.Equal(t, "metal", items[0].AdditionalAttributes.ScrapType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMasterDataRepository_CreateItemDuplicate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMasterDataRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO items")).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	_, err := repo.CreateItem(context.Background(), models.Item{ID: 1, InternalItemName: "Bolt"})

	assert.True(t, errors.Is(err, ErrDuplicate))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMasterDataRepository_CreateBoMEntry(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMasterDataRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO boms")).
		WithArgs(int64(10), int64(1), int64(2), 5.0, "user2", "user2").
		WillReturnResult(sqlmock.NewResult(10, 1))

	entry, err := repo.CreateBoMEntry(context.Background(), models.BoMEntry{
		ID: 10, ItemID: 1, ComponentID: 2, Quantity: 5, CreatedBy: "user2", LastUpdatedBy: "user2",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(10), entry.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMasterDataRepository_CreateProcess(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMasterDataRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO processes")).
		WithArgs("Cutting", "machining", int64(1), int64(4)).
		WillReturnResult(sqlmock.NewResult(7, 1))

	p, err := repo.CreateProcess(context.Background(), models.Process{ProcessName: "Cutting", Type: "machining", TenantID: 1, FactoryID: 4})

	require.NoError(t, err)
	assert.Equal(t, int64(7), p.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMasterDataRepository_FetchProcessSteps(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMasterDataRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM process_steps")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "item_id", "process_id", "sequence", "conversion_ratio", "created_by", "last_updated_by"}).
			AddRow(1, 7, 2, 1, 0.5, "user3", "user4"))

	steps, err := repo.FetchProcessSteps(context.Background())

	require.NoError(t, err)
	require.Len(t, steps, 1)
	assert.Equal(t, 0.5, steps[0].ConversionRatio)
	assert.NoError(t, mock.ExpectationsWereMet())
}
