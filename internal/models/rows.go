package models

import "strings"

// ItemRow gives named access to the positional item layout.
type ItemRow struct {
	Row Row
}

func NewItemRow(r Row) ItemRow { return ItemRow{Row: r} }

func (r ItemRow) ID() Cell              { return r.Row.At(0) }
func (r ItemRow) InternalName() Cell    { return r.Row.At(1) }
func (r ItemRow) TenantID() Cell        { return r.Row.At(2) }
func (r ItemRow) Description() Cell     { return r.Row.At(3) }
func (r ItemRow) Type() Cell            { return r.Row.At(4) }
func (r ItemRow) UoM() Cell             { return r.Row.At(5) }
func (r ItemRow) MinBuffer() Cell       { return r.Row.At(6) }
func (r ItemRow) MaxBuffer() Cell       { return r.Row.At(7) }
func (r ItemRow) AvgWeightNeeded() Cell { return r.Row.At(13) }
func (r ItemRow) ScrapType() Cell       { return r.Row.At(14) }

// Name is the trimmed internal item name.
func (r ItemRow) Name() string {
	return strings.TrimSpace(r.InternalName().Text())
}

// IdentityKey is the tenant-scoped uniqueness key of the item.
func (r ItemRow) IdentityKey() string {
	return ItemIdentityKey(r.Name(), r.TenantID().Key())
}

// BoMRow gives named access to the positional BoM layout.
type BoMRow struct {
	Row Row
}

func NewBoMRow(r Row) BoMRow { return BoMRow{Row: r} }

func (r BoMRow) ID() Cell          { return r.Row.At(0) }
func (r BoMRow) ItemID() Cell      { return r.Row.At(1) }
func (r BoMRow) ComponentID() Cell { return r.Row.At(2) }
func (r BoMRow) Quantity() Cell    { return r.Row.At(3) }

func (r BoMRow) CombinationKey() string {
	return BoMCombinationKey(r.ItemID().Key(), r.ComponentID().Key())
}

const keySeparator = "\x1f"

func ItemIdentityKey(name, tenant string) string {
	return strings.ToLower(strings.TrimSpace(name)) + keySeparator + tenant
}

func BoMCombinationKey(itemID, componentID string) string {
	return itemID + keySeparator + componentID
}
