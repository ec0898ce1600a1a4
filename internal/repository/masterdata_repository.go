package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"masterlist-web/internal/models"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

const mysqlDuplicateEntry = 1062

// ErrDuplicate is returned when a record with the same key already exists.
var ErrDuplicate = errors.New("record already exists")

// MasterDataRepository keeps items, BoM entries and processes in MySQL.
type MasterDataRepository struct {
	db *sqlx.DB
}

func NewMasterDataRepository(db *sqlx.DB) *MasterDataRepository {
	return &MasterDataRepository{db: db}
}

type itemRecord struct {
	ID               int64           `db:"id"`
	InternalItemName string          `db:"internal_item_name"`
	TenantID         int64           `db:"tenant_id"`
	ItemDescription  string          `db:"item_description"`
	Type             string          `db:"type"`
	UoM              string          `db:"uom"`
	MinBuffer        sql.NullFloat64 `db:"min_buffer"`
	MaxBuffer        sql.NullFloat64 `db:"max_buffer"`
	CustomerItemName string          `db:"customer_item_name"`
	AvgWeightNeeded  string          `db:"avg_weight_needed"`
	ScrapType        string          `db:"scrap_type"`
	CreatedBy        string          `db:"created_by"`
	LastUpdatedBy    string          `db:"last_updated_by"`
	IsDeleted        bool            `db:"is_deleted"`
	CreatedAt        time.Time       `db:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at"`
}

func (r itemRecord) toModel() models.Item {
	item := models.Item{
		ID:               r.ID,
		InternalItemName: r.InternalItemName,
		TenantID:         r.TenantID,
		ItemDescription:  r.ItemDescription,
		Type:             models.ItemType(r.Type),
		UoM:              r.UoM,
		CustomerItemName: r.CustomerItemName,
		CreatedBy:        r.CreatedBy,
		LastUpdatedBy:    r.LastUpdatedBy,
		IsDeleted:        r.IsDeleted,
		AdditionalAttributes: models.ItemAttributes{
			AvgWeightNeeded: r.AvgWeightNeeded,
			ScrapType:       r.ScrapType,
		},
	}
	if r.MinBuffer.Valid {
		item.MinBuffer = &r.MinBuffer.Float64
	}
	if r.MaxBuffer.Valid {
		item.MaxBuffer = &r.MaxBuffer.Float64
	}
	if !r.CreatedAt.IsZero() {
		created, updated := r.CreatedAt, r.UpdatedAt
		item.CreatedAt, item.UpdatedAt = &created, &updated
	}
	return item
}

func newItemRecord(item models.Item) itemRecord {
	rec := itemRecord{
		ID:               item.ID,
		InternalItemName: item.InternalItemName,
		TenantID:         item.TenantID,
		ItemDescription:  item.ItemDescription,
		Type:             string(item.Type),
		UoM:              item.UoM,
		CustomerItemName: item.CustomerItemName,
		AvgWeightNeeded:  item.AdditionalAttributes.AvgWeightNeeded,
		ScrapType:        item.AdditionalAttributes.ScrapType,
		CreatedBy:        item.CreatedBy,
		LastUpdatedBy:    item.LastUpdatedBy,
		IsDeleted:        item.IsDeleted,
	}
	if item.MinBuffer != nil {
		rec.MinBuffer = sql.NullFloat64{Float64: *item.MinBuffer, Valid: true}
	}
	if item.MaxBuffer != nil {
		rec.MaxBuffer = sql.NullFloat64{Float64: *item.MaxBuffer, Valid: true}
	}
	return rec
}

func (r *MasterDataRepository) FetchItems(ctx context.Context) ([]models.Item, error) {
	var records []itemRecord
	query := `
		SELECT id,
		       internal_item_name,
		       tenant_id,
		       COALESCE(item_description, '') as item_description,
		       type,
		       uom,
		       min_buffer,
		       max_buffer,
		       COALESCE(customer_item_name, '') as customer_item_name,
		       COALESCE(avg_weight_needed, '') as avg_weight_needed,
		       COALESCE(scrap_type, '') as scrap_type,
		       created_by,
		       last_updated_by,
		       is_deleted,
		       created_at,
		       updated_at
		FROM items
		WHERE is_deleted = FALSE
		ORDER BY id`
	if err := r.db.SelectContext(ctx, &records, query); err != nil {
		return nil, fmt.Errorf("failed to fetch items: %w", err)
	}

	items := make([]models.Item, len(records))
	for i, rec := range records {
		items[i] = rec.toModel()
	}
	return items, nil
}

func (r *MasterDataRepository) CreateItem(ctx context.Context, item models.Item) (*models.Item, error) {
	query := `INSERT INTO items (id, internal_item_name, tenant_id, item_description, type, uom,
	          min_buffer, max_buffer, customer_item_name, avg_weight_needed, scrap_type,
	          created_by, last_updated_by, is_deleted)
	          VALUES (:id, :internal_item_name, :tenant_id, :item_description, :type, :uom,
	          :min_buffer, :max_buffer, :customer_item_name, :avg_weight_needed, :scrap_type,
	          :created_by, :last_updated_by, :is_deleted)`
	if _, err := r.db.NamedExecContext(ctx, query, newItemRecord(item)); err != nil {
		return nil, translateError("item", item.ID, err)
	}
	return &item, nil
}

type bomRecord struct {
	ID            int64     `db:"id"`
	ItemID        int64     `db:"item_id"`
	ComponentID   int64     `db:"component_id"`
	Quantity      float64   `db:"quantity"`
	CreatedBy     string    `db:"created_by"`
	LastUpdatedBy string    `db:"last_updated_by"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

func (r *MasterDataRepository) FetchBoMs(ctx context.Context) ([]models.BoMEntry, error) {
	var records []bomRecord
	query := `SELECT id, item_id, component_id, quantity, created_by, last_updated_by, created_at, updated_at
	          FROM boms ORDER BY id`
	if err := r.db.SelectContext(ctx, &records, query); err != nil {
		return nil, fmt.Errorf("failed to fetch bill of materials: %w", err)
	}

	entries := make([]models.BoMEntry, len(records))
	for i, rec := range records {
		created, updated := rec.CreatedAt, rec.UpdatedAt
		entries[i] = models.BoMEntry{
			ID:            rec.ID,
			ItemID:        rec.ItemID,
			ComponentID:   rec.ComponentID,
			Quantity:      rec.Quantity,
			CreatedBy:     rec.CreatedBy,
			LastUpdatedBy: rec.LastUpdatedBy,
			CreatedAt:     &created,
			UpdatedAt:     &updated,
		}
	}
	return entries, nil
}

func (r *MasterDataRepository) CreateBoMEntry(ctx context.Context, entry models.BoMEntry) (*models.BoMEntry, error) {
	query := `INSERT INTO boms (id, item_id, component_id, quantity, created_by, last_updated_by)
	          VALUES (:id, :item_id, :component_id, :quantity, :created_by, :last_updated_by)`
	rec := bomRecord{
		ID:            entry.ID,
		ItemID:        entry.ItemID,
		ComponentID:   entry.ComponentID,
		Quantity:      entry.Quantity,
		CreatedBy:     entry.CreatedBy,
		LastUpdatedBy: entry.LastUpdatedBy,
	}
	if _, err := r.db.NamedExecContext(ctx, query, rec); err != nil {
		return nil, translateError("bom", entry.ID, err)
	}
	return &entry, nil
}

func (r *MasterDataRepository) FetchProcesses(ctx context.Context) ([]models.Process, error) {
	var processes []models.Process
	query := "SELECT id, process_name, type, tenant_id, factory_id FROM processes ORDER BY id"
	if err := r.db.SelectContext(ctx, &processes, query); err != nil {
		return nil, fmt.Errorf("failed to fetch processes: %w", err)
	}
	return processes, nil
}

func (r *MasterDataRepository) CreateProcess(ctx context.Context, p models.Process) (*models.Process, error) {
	query := `INSERT INTO processes (process_name, type, tenant_id, factory_id)
	          VALUES (:process_name, :type, :tenant_id, :factory_id)`
	result, err := r.db.NamedExecContext(ctx, query, p)
	if err != nil {
		return nil, fmt.Errorf("failed to create process: %w", err)
	}
	id, _ := result.LastInsertId()
	p.ID = id
	return &p, nil
}

func (r *MasterDataRepository) FetchProcessSteps(ctx context.Context) ([]models.ProcessStep, error) {
	var steps []models.ProcessStep
	query := `SELECT id, item_id, process_id, sequence, conversion_ratio, created_by, last_updated_by
	          FROM process_steps ORDER BY process_id, sequence`
	if err := r.db.SelectContext(ctx, &steps, query); err != nil {
		return nil, fmt.Errorf("failed to fetch process steps: %w", err)
	}
	return steps, nil
}

func (r *MasterDataRepository) CreateProcessStep(ctx context.Context, step models.ProcessStep) (*models.ProcessStep, error) {
	query := `INSERT INTO process_steps (item_id, process_id, sequence, conversion_ratio, created_by, last_updated_by)
	          VALUES (:item_id, :process_id, :sequence, :conversion_ratio, :created_by, :last_updated_by)`
	result, err := r.db.NamedExecContext(ctx, query, step)
	if err != nil {
		return nil, fmt.Errorf("failed to create process step: %w", err)
	}
	id, _ := result.LastInsertId()
	step.ID = id
	return &step, nil
}

func translateError(kind string, id int64, err error) error {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
		return fmt.Errorf("%s %d: %w", kind, id, ErrDuplicate)
	}
	return fmt.Errorf("failed to create %s %d: %w", kind, id, err)
}
