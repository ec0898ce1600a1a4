package service

import (
	"masterlist-web/internal/models"
	"strings"
)

// CoerceCell turns numeric strings into numbers and "TRUE"/"FALSE" into booleans.
// Anything else is returned unchanged, so applying it twice is a no-op.
func CoerceCell(c models.Cell) models.Cell {
	if !c.IsString() {
		return c
	}
	switch c.Str {
	case "TRUE":
		return models.BoolCell(true)
	case "FALSE":
		return models.BoolCell(false)
	}
	if strings.TrimSpace(c.Str) == "" {
		return c
	}
	if f, ok := c.Number(); ok {
		return models.NumberCell(f)
	}
	return c
}

func CoerceRow(row models.Row) models.Row {
	out := make(models.Row, len(row))
	for i, c := range row {
		out[i] = CoerceCell(c)
	}
	return out
}

func CoerceRows(rows []models.Row) []models.Row {
	out := make([]models.Row, len(rows))
	for i, r := range rows {
		out[i] = CoerceRow(r)
	}
	return out
}
