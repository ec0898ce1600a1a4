package service

import (
	"errors"
	"masterlist-web/internal/models"
)

var (
	ErrRowOutOfRange    = errors.New("row index out of range")
	ErrColumnOutOfRange = errors.New("column index out of range")
)

// EditCell replaces one cell. Only the edited row is copied; the row grows
// with empty cells when col is past its end. col must stay below width.
func EditCell(records []models.CandidateRecord, rowIndex, col, width int, value models.Cell) ([]models.CandidateRecord, error) {
	if rowIndex < 0 || rowIndex >= len(records) {
		return nil, ErrRowOutOfRange
	}
	if col < 0 || col >= width {
		return nil, ErrColumnOutOfRange
	}

	out := make([]models.CandidateRecord, len(records))
	copy(out, records)

	row := records[rowIndex].Row.Clone(col + 1)
	row[col] = value
	out[rowIndex].Row = row

	return out, nil
}

// RevalidateRow re-runs the single-row validator against the running context.
// The row's own claims are released first so it never collides with itself.
// No other record is touched.
func RevalidateRow(entity models.EntityType, records []models.CandidateRecord, rowIndex int, rc *models.ReferenceContext) ([]models.CandidateRecord, error) {
	if rowIndex < 0 || rowIndex >= len(records) {
		return nil, ErrRowOutOfRange
	}

	rc.Release(rowIndex)
	verdict := ValidateRow(entity, records[rowIndex].Row, rc, rowIndex)

	out := make([]models.CandidateRecord, len(records))
	copy(out, records)
	out[rowIndex] = out[rowIndex].WithVerdict(verdict)

	return out, nil
}
