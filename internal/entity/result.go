package entity

import "strings"

// NullSentinel is the placeholder the search webhook emits for missing values.
const NullSentinel = "[null]"

// SearchResult is the canonical prospect record.
type SearchResult struct {
	ID           string         `json:"id,omitempty"`
	Name         string         `json:"name"`
	JobTitle     string         `json:"jobTitle"`
	Company      string         `json:"company"`
	Email        string         `json:"email"`
	Phone        string         `json:"phone"`
	LinkedInURL  string         `json:"linkedInUrl"`
	Confidence   float64        `json:"confidence"`
	Snippet      string         `json:"snippet"`
	SearchSource *ProvenanceTag `json:"searchSource,omitempty"`
}

// ProvenanceTag records which search first produced an accumulated result.
type ProvenanceTag struct {
	JobTitles []string `json:"jobTitles"`
	Companies []string `json:"companies"`
	Timestamp int64    `json:"timestamp"`
}

// IdentityKey decides whether two records describe the same person.
func (r SearchResult) IdentityKey() string {
	if id := strings.TrimSpace(r.ID); id != "" {
		return id
	}
	return r.Name + "_" + r.Email
}

// Valid reports whether the record carries a usable name.
func (r SearchResult) Valid() bool {
	name := strings.TrimSpace(r.Name)
	return name != "" && name != NullSentinel
}

// IsZero reports whether the record has no content at all.
func (r SearchResult) IsZero() bool {
	return r.ID == "" && r.Name == "" && r.JobTitle == "" && r.Company == "" &&
		r.Email == "" && r.Phone == "" && r.LinkedInURL == "" && r.Snippet == "" &&
		r.Confidence == 0 && r.SearchSource == nil
}
