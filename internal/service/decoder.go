package service

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"masterlist-web/internal/models"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrDecode marks files that could not be opened or read as a spreadsheet.
var ErrDecode = errors.New("unable to decode spreadsheet")

type DecodeOptions struct {
	SheetName  string
	SkipHeader bool
}

type rowSource interface {
	next() (models.Row, error)
	close() error
}

// RowReader yields the non-blank rows of one sheet in order. It cannot be rewound.
type RowReader struct {
	src        rowSource
	skipHeader bool
	seenFirst  bool
	row        models.Row
	err        error
	done       bool
}

func newRowReader(src rowSource, opts DecodeOptions) *RowReader {
	return &RowReader{src: src, skipHeader: opts.SkipHeader}
}

// Next advances to the next row and reports whether one is available.
func (r *RowReader) Next() bool {
	if r.done {
		return false
	}
	for {
		row, err := r.src.next()
		if err == io.EOF {
			r.done = true
			return false
		}
		if err != nil {
			r.err = fmt.Errorf("%w: %v", ErrDecode, err)
			r.done = true
			return false
		}

		if row.IsBlank() {
			continue
		}
		if r.skipHeader && !r.seenFirst {
			r.seenFirst = true
			continue
		}
		r.seenFirst = true
		r.row = row
		return true
	}
}

func (r *RowReader) Row() models.Row { return r.row }
func (r *RowReader) Err() error      { return r.err }

func (r *RowReader) Close() error {
	r.done = true
	return r.src.close()
}

// ReadAll drains the reader and closes it.
func (r *RowReader) ReadAll() ([]models.Row, error) {
	defer r.Close()

	var rows []models.Row
	for r.Next() {
		rows = append(rows, r.Row())
	}
	return rows, r.Err()
}

// toRow keeps cells as strings, maps blanks to empty cells and drops trailing blanks.
func toRow(values []string) models.Row {
	end := len(values)
	for end > 0 && values[end-1] == "" {
		end--
	}
	row := make(models.Row, end)
	for i := 0; i < end; i++ {
		if values[i] == "" {
			continue
		}
		row[i] = models.StringCell(values[i])
	}
	return row
}

// Decode picks the format from the file extension.
func Decode(filename string, r io.Reader, opts DecodeOptions) (*RowReader, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return OpenXLSX(r, opts)
	case ".csv":
		return OpenCSV(r, opts)
	}
	return nil, fmt.Errorf("%w: unsupported file type %q", ErrDecode, filepath.Ext(filename))
}

type xlsxSource struct {
	file   *excelize.File
	sheet  string
	rows   *excelize.Rows
	rowNum int
}

// next reads raw cell values so number formats never leak into the data.
// Numeric cells become numbers and boolean cells booleans.
func (s *xlsxSource) next() (models.Row, error) {
	if !s.rows.Next() {
		if err := s.rows.Error(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}
	s.rowNum++

	values, err := s.rows.Columns(excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}

	row := toRow(values)
	for i, c := range row {
		if c.IsEmpty() {
			continue
		}
		f, ok := c.Number()
		if !ok {
			continue
		}
		// Booleans are stored as 0/1 and only the cell type tells them apart.
		if c.Str == "0" || c.Str == "1" {
			typ, err := s.cellType(i, s.rowNum)
			if err != nil {
				return nil, err
			}
			if typ == excelize.CellTypeBool {
				row[i] = models.BoolCell(c.Str == "1")
				continue
			}
		}
		row[i] = models.NumberCell(f)
	}
	return row, nil
}

func (s *xlsxSource) cellType(col, row int) (excelize.CellType, error) {
	name, err := excelize.CoordinatesToCellName(col+1, row)
	if err != nil {
		return excelize.CellTypeUnset, err
	}
	return s.file.GetCellType(s.sheet, name)
}

func (s *xlsxSource) close() error {
	if err := s.rows.Close(); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}

// OpenXLSX streams the first sheet, or opts.SheetName when set.
func OpenXLSX(r io.Reader, opts DecodeOptions) (*RowReader, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open Excel file: %v", ErrDecode, err)
	}

	sheetName := opts.SheetName
	if sheetName == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			f.Close()
			return nil, fmt.Errorf("%w: no sheets found in Excel file", ErrDecode)
		}
		sheetName = sheets[0]
	}

	rows, err := f.Rows(sheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: failed to read sheet %q: %v", ErrDecode, sheetName, err)
	}

	return newRowReader(&xlsxSource{file: f, sheet: sheetName, rows: rows}, opts), nil
}

type csvSource struct {
	reader *csv.Reader
}

func (s *csvSource) next() (models.Row, error) {
	values, err := s.reader.Read()
	if err != nil {
		return nil, err
	}
	return toRow(values), nil
}

func (s *csvSource) close() error { return nil }

func OpenCSV(r io.Reader, opts DecodeOptions) (*RowReader, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	return newRowReader(&csvSource{reader: reader}, opts), nil
}
