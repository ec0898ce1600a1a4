package service

import (
	"fmt"
	"io"
	"masterlist-web/internal/models"

	"github.com/xuri/excelize/v2"
)

var sessionStatusColors = map[models.SessionStatus]string{
	models.SessionSubmitted:  "#D4EDDA",
	models.SessionFailed:     "#F8D7DA",
	models.SessionValidating: "#FFF3CD",
	models.SessionSubmitting: "#FFF3CD",
}

// ExportSessionsList writes the import session listing as a workbook.
func (s *ExcelService) ExportSessionsList(w io.Writer, sessions []models.ImportSummary) error {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Import Sessions"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return err
	}
	f.SetActiveSheet(index)

	headers := []string{
		"Session Code", "Entity", "Filename", "Total Rows", "Valid", "Invalid",
		"Submitted", "Failed", "Status", "Error Message", "Created At", "Updated At",
	}

	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true, Size: 12},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: border,
	})
	dataStyle, _ := f.NewStyle(&excelize.Style{
		Border:    border,
		Alignment: &excelize.Alignment{Vertical: "center"},
	})

	for i, header := range headers {
		cell := fmt.Sprintf("%s1", getColumnName(i))
		f.SetCellValue(sheetName, cell, header)
	}
	last := getColumnName(len(headers) - 1)
	f.SetCellStyle(sheetName, "A1", last+"1", headerStyle)

	statusCounts := make(map[models.SessionStatus]int)
	for i, session := range sessions {
		row := i + 2
		values := []interface{}{
			session.Code, string(session.Entity), session.Filename, session.TotalRows,
			session.ValidRows, session.InvalidRows, session.SubmittedRows, session.FailedRows,
			string(session.Status), session.Error,
			session.CreatedAt.Format("2006-01-02 15:04:05"), session.UpdatedAt.Format("2006-01-02 15:04:05"),
		}
		for j, v := range values {
			f.SetCellValue(sheetName, fmt.Sprintf("%s%d", getColumnName(j), row), v)
		}
		f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("%s%d", last, row), dataStyle)

		if color, ok := sessionStatusColors[session.Status]; ok {
			statusStyle, _ := f.NewStyle(&excelize.Style{
				Fill:   excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
				Border: border,
			})
			statusCell := fmt.Sprintf("I%d", row)
			f.SetCellStyle(sheetName, statusCell, statusCell, statusStyle)
		}
		statusCounts[session.Status]++
	}

	f.SetColWidth(sheetName, "A", last, 15)
	f.SetColWidth(sheetName, "A", "A", 38)
	f.SetColWidth(sheetName, "C", "C", 25)
	f.SetColWidth(sheetName, "J", "J", 30)

	if len(sessions) > 0 {
		summaryRow := len(sessions) + 3
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", summaryRow), "Summary:")
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", summaryRow), fmt.Sprintf("Total Sessions: %d", len(sessions)))

		row := summaryRow + 1
		for _, status := range []models.SessionStatus{
			models.SessionQueued, models.SessionValidating, models.SessionValidated, models.SessionFailed,
			models.SessionSubmitting, models.SessionSubmitted, models.SessionCanceled,
		} {
			if statusCounts[status] == 0 {
				continue
			}
			f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), fmt.Sprintf("%s: %d", status, statusCounts[status]))
			row++
		}

		summaryStyle, _ := f.NewStyle(&excelize.Style{
			Font: &excelize.Font{Bold: true},
			Fill: excelize.Fill{Type: "pattern", Color: []string{"#F0F0F0"}, Pattern: 1},
		})
		f.SetCellStyle(sheetName, fmt.Sprintf("A%d", summaryRow), fmt.Sprintf("A%d", summaryRow), summaryStyle)
	}

	f.DeleteSheet("Sheet1")

	_, err = f.WriteTo(w)
	return err
}
