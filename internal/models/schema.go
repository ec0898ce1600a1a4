package models

import (
	"fmt"
	"strings"
)

type EntityType string

const (
	EntityItem EntityType = "item"
	EntityBoM  EntityType = "bom"
)

// ParseEntity accepts the singular and plural route names.
func ParseEntity(s string) (EntityType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "item", "items":
		return EntityItem, nil
	case "bom", "boms":
		return EntityBoM, nil
	}
	return "", fmt.Errorf("unknown entity %q", s)
}

type ItemType string

const (
	ItemTypeSell      ItemType = "sell"
	ItemTypePurchase  ItemType = "purchase"
	ItemTypeComponent ItemType = "component"
)

var ItemTypes = []ItemType{ItemTypeSell, ItemTypePurchase, ItemTypeComponent}

var UoMTypes = []string{"kgs", "nos"}

// ParseItemType is case-insensitive.
func ParseItemType(s string) (ItemType, bool) {
	t := ItemType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range ItemTypes {
		if t == known {
			return t, true
		}
	}
	return "", false
}

// Field is one named column of an entity schema.
type Field struct {
	Name     string
	Position int
	Default  interface{}
}

type Schema struct {
	Entity     EntityType
	MinColumns int
	Fields     []Field
}

const (
	attrPrefix = "additional_attributes."

	FieldCreatedAt = "createdAt"
	FieldUpdatedAt = "updatedAt"
)

var ItemSchema = Schema{
	Entity:     EntityItem,
	MinColumns: 6,
	Fields: []Field{
		{Name: "id", Position: 0},
		{Name: "internal_item_name", Position: 1, Default: ""},
		{Name: "tenant_id", Position: 2},
		{Name: "item_description", Position: 3, Default: ""},
		{Name: "type", Position: 4, Default: ""},
		{Name: "uom", Position: 5, Default: ""},
		{Name: "min_buffer", Position: 6},
		{Name: "max_buffer", Position: 7},
		{Name: "created_by", Position: 8, Default: "user1"},
		{Name: "last_updated_by", Position: 9, Default: "user2"},
		{Name: "is_deleted", Position: 10, Default: false},
		{Name: FieldCreatedAt, Position: 11},
		{Name: FieldUpdatedAt, Position: 12},
		// avg_weight_needed and scrap_type sit at 13 and 14, where the item rules read them.
		{Name: attrPrefix + "avg_weight_needed", Position: 13},
		{Name: attrPrefix + "scrap_type", Position: 14, Default: ""},
		{Name: attrPrefix + "drawing_revision_number", Position: 15},
		{Name: attrPrefix + "drawing_revision_date", Position: 16},
		{Name: attrPrefix + "shelf_floor_alternate_name", Position: 17, Default: ""},
	},
}

var BoMSchema = Schema{
	Entity:     EntityBoM,
	MinColumns: 3,
	Fields: []Field{
		{Name: "id", Position: 0},
		{Name: "item_id", Position: 1},
		{Name: "component_id", Position: 2},
		{Name: "quantity", Position: 3},
		{Name: "created_by", Position: 4, Default: "user2"},
		{Name: "last_updated_by", Position: 5, Default: "user2"},
		{Name: FieldCreatedAt, Position: 6},
		{Name: FieldUpdatedAt, Position: 7},
	},
}

func SchemaFor(entity EntityType) (Schema, error) {
	switch entity {
	case EntityItem:
		return ItemSchema, nil
	case EntityBoM:
		return BoMSchema, nil
	}
	return Schema{}, fmt.Errorf("no schema for entity %q", entity)
}

// Headers returns the field names in column order.
func (s Schema) Headers() []string {
	headers := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		headers[i] = f.Name
	}
	return headers
}

// Width is the number of positional columns the schema spans.
func (s Schema) Width() int {
	w := 0
	for _, f := range s.Fields {
		if f.Position+1 > w {
			w = f.Position + 1
		}
	}
	return w
}

// Map projects a row onto named fields. Blank cells take the field default.
func (s Schema) Map(row Row) map[string]interface{} {
	out := make(map[string]interface{}, len(s.Fields))
	for _, f := range s.Fields {
		c := row.At(f.Position)
		if c.IsEmpty() || (c.IsString() && strings.TrimSpace(c.Str) == "") {
			out[f.Name] = f.Default
			continue
		}
		out[f.Name] = c.Value()
	}
	return out
}

// IsAttribute reports whether the field lives under additional_attributes.
func (f Field) IsAttribute() bool {
	return strings.HasPrefix(f.Name, attrPrefix)
}

func (f Field) AttributeName() string {
	return strings.TrimPrefix(f.Name, attrPrefix)
}
