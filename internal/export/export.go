// Package export renders prospect rows as downloadable files.
package export

import (
	"strconv"

	"github.com/octobees/decisionfindr/api/internal/entity"
)

// Columns is the fixed header of every export format.
var Columns = []string{"Name", "Job Title", "Company", "Match(%)", "Email", "Phone", "LinkedIn"}

// Format names an export encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatText Format = "txt"
)

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/plain; charset=utf-8"
	}
}

// ParseFormat maps a query value to a Format, defaulting to CSV.
func ParseFormat(value string) (Format, bool) {
	switch Format(value) {
	case "", FormatCSV:
		return FormatCSV, true
	case FormatXLSX:
		return FormatXLSX, true
	case FormatText, "text", "table":
		return FormatText, true
	}
	return "", false
}

// Render encodes results in the given format.
func Render(format Format, results []entity.SearchResult) ([]byte, error) {
	switch format {
	case FormatXLSX:
		return XLSX(results)
	case FormatText:
		return Table(results), nil
	default:
		return CSV(results)
	}
}

func row(r entity.SearchResult) []string {
	return []string{
		r.Name,
		r.JobTitle,
		r.Company,
		strconv.FormatFloat(r.Confidence, 'f', -1, 64),
		r.Email,
		r.Phone,
		r.LinkedInURL,
	}
}
