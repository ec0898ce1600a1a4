package service

import (
	"fmt"
	"io"
	"masterlist-web/internal/models"

	"github.com/xuri/excelize/v2"
)

const (
	errorReportSheet = "Error Report"
	summarySheet     = "Summary"
)

type ExcelService struct{}

func NewExcelService() *ExcelService {
	return &ExcelService{}
}

// WriteErrorReport writes the invalid records as an xlsx workbook. The
// first sheet holds exactly one data row per invalid record.
func (s *ExcelService) WriteErrorReport(w io.Writer, records []models.CandidateRecord, schema models.Schema) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(errorReportSheet)
	if err != nil {
		return err
	}

	headers := ErrorReportHeaders(schema)
	if err := writeHeaderRow(f, errorReportSheet, headers, "#FFE6E6"); err != nil {
		return err
	}

	rows := ErrorReportRows(records, schema)
	for rowIdx, values := range rows {
		row := rowIdx + 2
		for colIdx, value := range values {
			if value == nil {
				continue
			}
			cell := fmt.Sprintf("%s%d", getColumnName(colIdx), row)
			if err := f.SetCellValue(errorReportSheet, cell, value); err != nil {
				return fmt.Errorf("failed to write report cell %s: %w", cell, err)
			}
		}
	}

	if len(rows) > 0 {
		errorStyle, _ := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{"#FFFFCC"}, Pattern: 1},
		})
		last := getColumnName(len(headers) - 1)
		f.SetCellStyle(errorReportSheet, fmt.Sprintf("%s%d", last, 2), fmt.Sprintf("%s%d", last, len(rows)+1), errorStyle)
	}

	f.SetColWidth(errorReportSheet, "A", "A", 12)
	f.SetColWidth(errorReportSheet, "B", getColumnName(len(headers)-2), 18)
	f.SetColWidth(errorReportSheet, getColumnName(len(headers)-1), getColumnName(len(headers)-1), 60)

	if err := writeSummary(f, records); err != nil {
		return err
	}

	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	_, err = f.WriteTo(w)
	return err
}

func writeSummary(f *excelize.File, records []models.CandidateRecord) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return err
	}

	valid, invalid := models.CountValid(records)
	successRate := 0.0
	if len(records) > 0 {
		successRate = float64(valid) / float64(len(records)) * 100
	}

	lines := [][]interface{}{
		{"Import Summary"},
		{"Total Rows Processed:", len(records)},
		{"Valid Rows:", valid},
		{"Errors Found:", invalid},
		{"Success Rate:", fmt.Sprintf("%.1f%%", successRate)},
	}
	for i, line := range lines {
		for j, v := range line {
			f.SetCellValue(summarySheet, fmt.Sprintf("%s%d", getColumnName(j), i+1), v)
		}
	}

	summaryStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	f.SetCellStyle(summarySheet, "A1", "A1", summaryStyle)
	f.SetColWidth(summarySheet, "A", "A", 24)
	return nil
}

// WriteTemplate writes an empty workbook carrying the schema header row.
func (s *ExcelService) WriteTemplate(w io.Writer, schema models.Schema) error {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := templateSheetName(schema.Entity)
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return err
	}

	headers := schema.Headers()
	if err := writeHeaderRow(f, sheetName, headers, "#E0E0E0"); err != nil {
		return err
	}
	f.SetColWidth(sheetName, "A", getColumnName(len(headers)-1), 18)

	instructionsStartRow := 4
	instructions := []string{
		"Instructions:",
		"Fill data starting from row 2 and keep the column order of the header row.",
		"Upload with skip_header=true so the header row is not validated.",
	}
	if schema.Entity == models.EntityBoM {
		instructions = append(instructions,
			fmt.Sprintf("quantity must be between %d and %d; item_id and component_id must reference existing items.", MinQuantity, MaxQuantity))
	} else {
		instructions = append(instructions,
			"type: sell, purchase or component. uom: kgs or nos. avg_weight_needed: TRUE or FALSE.")
	}
	for i, instruction := range instructions {
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", instructionsStartRow+i), instruction)
	}

	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	_, err = f.WriteTo(w)
	return err
}

// WriteRows writes a header row and data rows, used for sample workbooks.
func (s *ExcelService) WriteRows(outputPath string, sheetName string, headers []string, rows [][]interface{}) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return err
	}
	if err := writeHeaderRow(f, sheetName, headers, "#E0E0E0"); err != nil {
		return err
	}
	for rowIdx, values := range rows {
		for colIdx, value := range values {
			if value == nil {
				continue
			}
			f.SetCellValue(sheetName, fmt.Sprintf("%s%d", getColumnName(colIdx), rowIdx+2), value)
		}
	}

	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	return f.SaveAs(outputPath)
}

func writeHeaderRow(f *excelize.File, sheetName string, headers []string, color string) error {
	for i, header := range headers {
		cell := fmt.Sprintf("%s1", getColumnName(i))
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return fmt.Errorf("failed to write header %s: %w", header, err)
		}
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
	})
	return f.SetCellStyle(sheetName, "A1", fmt.Sprintf("%s1", getColumnName(len(headers)-1)), headerStyle)
}

func templateSheetName(entity models.EntityType) string {
	if entity == models.EntityBoM {
		return "Bill of Materials"
	}
	return "Items"
}

func getColumnName(index int) string {
	result := ""
	for index >= 0 {
		result = string(rune('A'+(index%26))) + result
		index = index/26 - 1
	}
	return result
}
