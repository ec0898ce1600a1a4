package models

import "strings"

// Verdict is the outcome of validating one row. Errors keeps every violated rule.
type Verdict struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
	Reason string   `json:"reason"`
}

func NewVerdict(errs []string, sep string) Verdict {
	return Verdict{
		Valid:  len(errs) == 0,
		Errors: errs,
		Reason: strings.Join(errs, sep),
	}
}

type CandidateRecord struct {
	RowNumber int    `json:"row_number"`
	Row       Row    `json:"row"`
	Valid     bool   `json:"valid"`
	Reason    string `json:"reason"`
}

func (r CandidateRecord) WithVerdict(v Verdict) CandidateRecord {
	r.Valid = v.Valid
	r.Reason = v.Reason
	return r
}

// CountValid returns the number of valid and invalid records.
func CountValid(records []CandidateRecord) (valid, invalid int) {
	for _, r := range records {
		if r.Valid {
			valid++
		} else {
			invalid++
		}
	}
	return valid, invalid
}
