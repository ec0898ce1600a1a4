package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

type CellKind uint8

const (
	CellEmpty CellKind = iota
	CellString
	CellNumber
	CellBool
)

// Cell is one spreadsheet value. The zero value is the empty cell.
type Cell struct {
	Kind CellKind
	Str  string
	Num  float64
	Flag bool
}

func EmptyCell() Cell           { return Cell{} }
func StringCell(s string) Cell  { return Cell{Kind: CellString, Str: s} }
func NumberCell(f float64) Cell { return Cell{Kind: CellNumber, Num: f} }
func BoolCell(b bool) Cell      { return Cell{Kind: CellBool, Flag: b} }
func (c Cell) IsEmpty() bool    { return c.Kind == CellEmpty }
func (c Cell) IsNumber() bool   { return c.Kind == CellNumber }
func (c Cell) IsBool() bool     { return c.Kind == CellBool }
func (c Cell) IsString() bool   { return c.Kind == CellString }

// IsBlank reports whether the cell carries no usable value: empty, "", 0 or false.
func (c Cell) IsBlank() bool {
	switch c.Kind {
	case CellString:
		return c.Str == ""
	case CellNumber:
		return c.Num == 0
	case CellBool:
		return !c.Flag
	default:
		return true
	}
}

// Text renders the cell the way a user typed it.
func (c Cell) Text() string {
	switch c.Kind {
	case CellString:
		return c.Str
	case CellNumber:
		return strconv.FormatFloat(c.Num, 'f', -1, 64)
	case CellBool:
		return strconv.FormatBool(c.Flag)
	default:
		return ""
	}
}

// Key is the canonical identity of the cell, so "7", " 7 " and 7 compare equal.
func (c Cell) Key() string {
	if c.Kind == CellString {
		s := strings.TrimSpace(c.Str)
		if f, ok := parseFinite(s); ok {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
		return s
	}
	return c.Text()
}

// Number returns the numeric value of a number cell or a numeric string.
func (c Cell) Number() (float64, bool) {
	switch c.Kind {
	case CellNumber:
		return c.Num, true
	case CellString:
		return parseFinite(strings.TrimSpace(c.Str))
	default:
		return 0, false
	}
}

// Bool accepts literal booleans and the strings "true"/"false" in any case.
func (c Cell) Bool() (bool, bool) {
	switch c.Kind {
	case CellBool:
		return c.Flag, true
	case CellString:
		switch strings.ToLower(strings.TrimSpace(c.Str)) {
		case "true":
			return true, true
		case "false":
			return false, true
		}
	}
	return false, false
}

// Value returns the native Go value for JSON payloads and spreadsheet cells.
func (c Cell) Value() interface{} {
	switch c.Kind {
	case CellString:
		return c.Str
	case CellNumber:
		return c.Num
	case CellBool:
		return c.Flag
	default:
		return nil
	}
}

func (c Cell) String() string {
	if c.Kind == CellEmpty {
		return "<empty>"
	}
	return c.Text()
}

func (c Cell) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Value())
}

func (c *Cell) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*c = Cell{}
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = StringCell(s)
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*c = BoolCell(b)
	case '{', '[':
		return fmt.Errorf("cell value must be a scalar, got %s", data)
	default:
		var f float64
		if err := json.Unmarshal(data, &f); err != nil {
			return err
		}
		*c = NumberCell(f)
	}
	return nil
}

// CellFromValue converts a decoded JSON scalar into a Cell.
func CellFromValue(v interface{}) (Cell, error) {
	switch val := v.(type) {
	case nil:
		return EmptyCell(), nil
	case string:
		return StringCell(val), nil
	case bool:
		return BoolCell(val), nil
	case float64:
		return NumberCell(val), nil
	case int:
		return NumberCell(float64(val)), nil
	case int64:
		return NumberCell(float64(val)), nil
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return Cell{}, err
		}
		return NumberCell(f), nil
	default:
		return Cell{}, fmt.Errorf("unsupported cell value type %T", v)
	}
}

func parseFinite(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Row is a positional record. Positions past the end read as empty cells.
type Row []Cell

func (r Row) At(i int) Cell {
	if i < 0 || i >= len(r) {
		return Cell{}
	}
	return r[i]
}

// IsBlank reports whether every cell is empty or whitespace.
func (r Row) IsBlank() bool {
	for _, c := range r {
		if c.Kind == CellString && strings.TrimSpace(c.Str) == "" {
			continue
		}
		if c.Kind != CellEmpty {
			return false
		}
	}
	return true
}

// Clone copies the row, growing it to at least n cells.
func (r Row) Clone(n int) Row {
	if n < len(r) {
		n = len(r)
	}
	out := make(Row, n)
	copy(out, r)
	return out
}

func (r Row) Values() []interface{} {
	out := make([]interface{}, len(r))
	for i, c := range r {
		out[i] = c.Value()
	}
	return out
}
