package service

import (
	"fmt"
	"masterlist-web/internal/models"
	"time"
)

const (
	ReportRowNumberColumn = "Row Number"
	ReportReasonColumn    = "Error Reason"
)

// InvalidRecords keeps the invalid records in batch order.
func InvalidRecords(records []models.CandidateRecord) []models.CandidateRecord {
	var out []models.CandidateRecord
	for _, r := range records {
		if !r.Valid {
			out = append(out, r)
		}
	}
	return out
}

func ValidRecords(records []models.CandidateRecord) []models.CandidateRecord {
	var out []models.CandidateRecord
	for _, r := range records {
		if r.Valid {
			out = append(out, r)
		}
	}
	return out
}

// ErrorReportHeaders is Row Number, the schema fields in order, then Error Reason.
func ErrorReportHeaders(schema models.Schema) []string {
	headers := make([]string, 0, len(schema.Fields)+2)
	headers = append(headers, ReportRowNumberColumn)
	headers = append(headers, schema.Headers()...)
	return append(headers, ReportReasonColumn)
}

// ErrorReportRows lays out one row per invalid record. Positions missing from
// the row are nil.
func ErrorReportRows(records []models.CandidateRecord, schema models.Schema) [][]interface{} {
	invalid := InvalidRecords(records)
	out := make([][]interface{}, 0, len(invalid))
	for _, r := range invalid {
		line := make([]interface{}, 0, len(schema.Fields)+2)
		line = append(line, r.RowNumber)
		for _, f := range schema.Fields {
			line = append(line, r.Row.At(f.Position).Value())
		}
		line = append(line, r.Reason)
		out = append(out, line)
	}
	return out
}

// ErrorReportFilename names the download, e.g. Error_Report_item_20240115_103000.xlsx.
func ErrorReportFilename(entity models.EntityType, at time.Time) string {
	return fmt.Sprintf("Error_Report_%s_%s.xlsx", entity, at.Format("20060102_150405"))
}

func TemplateFilename(entity models.EntityType) string {
	return fmt.Sprintf("%s_template.xlsx", entity)
}
