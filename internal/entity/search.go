package entity

import (
	"strings"
)

// SearchParams captures the free-text filters of a prospect search.
type SearchParams struct {
	JobTitles []string `json:"jobTitles"`
	Companies []string `json:"companies"`
	JobLevels []string `json:"jobLevels"`
	Locations []string `json:"locations"`
	Keywords  []string `json:"keywords"`
}

// Normalized returns a copy with every entry trimmed and blank entries removed.
// Lists are never nil so the JSON form is stable.
func (p SearchParams) Normalized() SearchParams {
	return SearchParams{
		JobTitles: compact(p.JobTitles),
		Companies: compact(p.Companies),
		JobLevels: compact(p.JobLevels),
		Locations: compact(p.Locations),
		Keywords:  compact(p.Keywords),
	}
}

// IsEmpty reports whether there is nothing to search for: no job titles and no companies.
func (p SearchParams) IsEmpty() bool {
	n := p.Normalized()
	return len(n.JobTitles) == 0 && len(n.Companies) == 0
}

func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}

// StoredSearch is a single entry of the per-user search history.
type StoredSearch struct {
	ID          string       `json:"id"`
	Params      SearchParams `json:"params"`
	Timestamp   int64        `json:"timestamp"`
	ResultCount int          `json:"resultCount"`
}

// SearchTemplate is a named, reusable bundle of search parameters.
type SearchTemplate struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Params      SearchParams `json:"params"`
	CreatedAt   int64        `json:"createdAt"`
	LastUsed    int64        `json:"lastUsed,omitempty"`
}
