package models

import "time"

type ItemAttributes struct {
	AvgWeightNeeded         string `json:"avg_weight_needed,omitempty"`
	ScrapType               string `json:"scrap_type,omitempty"`
	DrawingRevisionNumber   string `json:"drawing_revision_number,omitempty"`
	DrawingRevisionDate     string `json:"drawing_revision_date,omitempty"`
	ShelfFloorAlternateName string `json:"shelf_floor_alternate_name,omitempty"`
}

type Item struct {
	ID                   int64          `json:"id"`
	InternalItemName     string         `json:"internal_item_name"`
	TenantID             int64          `json:"tenant_id"`
	ItemDescription      string         `json:"item_description"`
	Type                 ItemType       `json:"type"`
	UoM                  string         `json:"uom"`
	MinBuffer            *float64       `json:"min_buffer"`
	MaxBuffer            *float64       `json:"max_buffer"`
	CustomerItemName     string         `json:"customer_item_name,omitempty"`
	CreatedBy            string         `json:"created_by"`
	LastUpdatedBy        string         `json:"last_updated_by"`
	IsDeleted            bool           `json:"is_deleted"`
	AdditionalAttributes ItemAttributes `json:"additional_attributes"`
	CreatedAt            *time.Time     `json:"createdAt,omitempty"`
	UpdatedAt            *time.Time     `json:"updatedAt,omitempty"`
}

type BoMEntry struct {
	ID            int64      `json:"id"`
	ItemID        int64      `json:"item_id"`
	ComponentID   int64      `json:"component_id"`
	Quantity      float64    `json:"quantity"`
	CreatedBy     string     `json:"created_by"`
	LastUpdatedBy string     `json:"last_updated_by"`
	CreatedAt     *time.Time `json:"createdAt,omitempty"`
	UpdatedAt     *time.Time `json:"updatedAt,omitempty"`
}

type Process struct {
	ID          int64  `json:"id,omitempty" db:"id"`
	ProcessName string `json:"process_name" db:"process_name" validate:"required,min=3"`
	Type        string `json:"type" db:"type" validate:"required"`
	TenantID    int64  `json:"tenant_id" db:"tenant_id" validate:"required"`
	FactoryID   int64  `json:"factory_id" db:"factory_id" validate:"required"`
}

type ProcessStep struct {
	ID              int64   `json:"id,omitempty" db:"id"`
	ItemID          int64   `json:"item_id" db:"item_id" validate:"required"`
	ProcessID       int64   `json:"process_id" db:"process_id" validate:"required"`
	Sequence        int     `json:"sequence" db:"sequence" validate:"gt=0"`
	ConversionRatio float64 `json:"conversion_ratio" db:"conversion_ratio" validate:"gte=0"`
	CreatedBy       string  `json:"created_by" db:"created_by"`
	LastUpdatedBy   string  `json:"last_updated_by" db:"last_updated_by"`
}

type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
)

// PendingJob is one outstanding setup task found in the master data.
type PendingJob struct {
	Type        string   `json:"type"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
	RefID       int64    `json:"ref_id,omitempty"`
}
