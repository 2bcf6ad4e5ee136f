package webhook

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/nyaruka/phonenumbers"
	"golang.org/x/net/idna"
	"golang.org/x/text/unicode/norm"

	"github.com/octobees/decisionfindr/api/internal/entity"
)

const (
	defaultConfidence  = 85
	defaultPhoneRegion = "US"
	combinedKey        = "Name - Title - Company"
	combinedSeparator  = " - "
)

var idnaProfile = idna.Lookup

var (
	nameKeys       = []string{"name", "Name", "fullName", "full_name", "FullName"}
	titleKeys      = []string{"jobTitle", "JobTitle", "job_title", "title", "Title"}
	companyKeys    = []string{"company", "Company", "companyName", "company_name", "CompanyName"}
	emailKeys      = []string{"email", "Email", "emailAddress", "email_address"}
	phoneKeys      = []string{"phone", "Phone", "phoneNumber", "phone_number"}
	linkedInKeys   = []string{"linkedInUrl", "linkedinUrl", "LinkedInUrl", "linkedin_url", "linkedin", "LinkedIn", "linkedIn"}
	idKeys         = []string{"id", "ID", "Id", "_id"}
	confidenceKeys = []string{"confidence", "Confidence", "match", "Match", "score", "Score"}
	snippetKeys    = []string{"snippet", "Snippet", "summary", "description"}
)

// partial is the output of one extraction strategy. Empty fields are unknown.
type partial struct {
	ID          string
	Name        string
	JobTitle    string
	Company     string
	Email       string
	Phone       string
	LinkedInURL string
	Snippet     string
	Confidence  *float64
}

// strategy extracts what it can from one raw item.
type strategy func(raw map[string]any) partial

// Transformer maps raw webhook items to canonical results.
type Transformer struct {
	region     string
	strategies []strategy
}

// NewTransformer builds a transformer that formats phones for region.
func NewTransformer(region string) *Transformer {
	region = strings.ToUpper(strings.TrimSpace(region))
	if region == "" {
		region = defaultPhoneRegion
	}
	return &Transformer{
		region:     region,
		strategies: []strategy{combinedStrategy, discreteStrategy},
	}
}

// Parse decodes a webhook body. An array is used as is, a single object becomes a
// one-element list and any other JSON value yields no results.
func (t *Transformer) Parse(body []byte) ([]entity.SearchResult, error) {
	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode webhook payload: %w", err)
	}

	var items []map[string]any
	switch v := payload.(type) {
	case []any:
		for _, el := range v {
			if obj, ok := el.(map[string]any); ok {
				items = append(items, obj)
			}
		}
	case map[string]any:
		items = append(items, v)
	}
	return t.Transform(items), nil
}

// Transform runs the extraction strategies over each item, normalises the merged
// fields and filters out items that do not describe a person.
func (t *Transformer) Transform(items []map[string]any) []entity.SearchResult {
	out := make([]entity.SearchResult, 0, len(items))
	for _, raw := range items {
		if raw == nil {
			continue
		}
		if sentinelName(raw) {
			continue
		}

		var merged partial
		for _, s := range t.strategies {
			merged = mergePartial(merged, s(raw))
		}

		result := t.finish(merged)
		if result.Name == "" && result.JobTitle == "" && result.Company == "" {
			continue
		}
		out = append(out, result)
	}
	return out
}

func (t *Transformer) finish(p partial) entity.SearchResult {
	r := entity.SearchResult{
		ID:          p.ID,
		Name:        p.Name,
		JobTitle:    p.JobTitle,
		Company:     p.Company,
		Email:       normalizeEmail(p.Email),
		Phone:       normalizePhone(p.Phone, t.region),
		LinkedInURL: p.LinkedInURL,
		Snippet:     p.Snippet,
		Confidence:  defaultConfidence,
	}
	if p.Confidence != nil {
		r.Confidence = math.Max(0, math.Min(100, *p.Confidence))
	}
	if r.Snippet == "" && r.Name != "" && r.JobTitle != "" && r.Company != "" {
		r.Snippet = fmt.Sprintf("%s is a %s at %s", r.Name, r.JobTitle, r.Company)
	}
	return r
}

// combinedStrategy reads the "Name - Title - Company" form, either under its own
// key or packed into a name field.
func combinedStrategy(raw map[string]any) partial {
	combined := clean(raw[combinedKey])
	if combined == "" {
		if name := clean(first(raw, nameKeys)); strings.Contains(name, combinedSeparator) {
			combined = name
		}
	}
	if combined == "" {
		return partial{}
	}

	parts := strings.Split(combined, combinedSeparator)
	var p partial
	p.Name = clean(parts[0])
	if len(parts) > 1 {
		p.JobTitle = clean(parts[1])
	}
	if len(parts) > 2 {
		p.Company = clean(strings.Join(parts[2:], combinedSeparator))
	}
	return p
}

func discreteStrategy(raw map[string]any) partial {
	return partial{
		ID:          clean(first(raw, idKeys)),
		Name:        clean(first(raw, nameKeys)),
		JobTitle:    clean(first(raw, titleKeys)),
		Company:     clean(first(raw, companyKeys)),
		Email:       clean(first(raw, emailKeys)),
		Phone:       clean(first(raw, phoneKeys)),
		LinkedInURL: clean(first(raw, linkedInKeys)),
		Snippet:     clean(first(raw, snippetKeys)),
		Confidence:  number(first(raw, confidenceKeys)),
	}
}

func mergePartial(dst, src partial) partial {
	pick := func(a, b string) string {
		if a != "" {
			return a
		}
		return b
	}
	dst.ID = pick(dst.ID, src.ID)
	dst.Name = pick(dst.Name, src.Name)
	dst.JobTitle = pick(dst.JobTitle, src.JobTitle)
	dst.Company = pick(dst.Company, src.Company)
	dst.Email = pick(dst.Email, src.Email)
	dst.Phone = pick(dst.Phone, src.Phone)
	dst.LinkedInURL = pick(dst.LinkedInURL, src.LinkedInURL)
	dst.Snippet = pick(dst.Snippet, src.Snippet)
	if dst.Confidence == nil {
		dst.Confidence = src.Confidence
	}
	return dst
}

// first returns the value of the first key present with a non-null, non-sentinel value.
func first(raw map[string]any, keys []string) any {
	for _, k := range keys {
		v, ok := raw[k]
		if !ok || v == nil {
			continue
		}
		if s, isString := v.(string); isString && (strings.TrimSpace(s) == "" || strings.TrimSpace(s) == entity.NullSentinel) {
			continue
		}
		return v
	}
	return nil
}

// sentinelName reports whether the first name field the item carries is the null sentinel.
func sentinelName(raw map[string]any) bool {
	for _, k := range nameKeys {
		v, ok := raw[k]
		if !ok || v == nil {
			continue
		}
		s, _ := v.(string)
		return strings.TrimSpace(s) == entity.NullSentinel
	}
	return false
}

// clean renders a scalar as trimmed NFC text. null and the sentinel become "".
func clean(v any) string {
	var s string
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		s = val
	case float64:
		s = strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		s = strconv.FormatBool(val)
	default:
		return ""
	}
	s = strings.TrimSpace(norm.NFC.String(s))
	if s == entity.NullSentinel {
		return ""
	}
	return s
}

func number(v any) *float64 {
	var f float64
	switch val := v.(type) {
	case float64:
		f = val
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(val), "%"), 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func normalizeEmail(raw string) string {
	email := strings.ToLower(strings.TrimSpace(raw))
	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" || domain == "" {
		return email
	}
	ascii, err := idnaProfile.ToASCII(domain)
	if err != nil || ascii == "" {
		return email
	}
	return local + "@" + ascii
}

func normalizePhone(raw, region string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	parsed, err := phonenumbers.Parse(raw, region)
	if err != nil || !phonenumbers.IsValidNumber(parsed) {
		return raw
	}
	return phonenumbers.Format(parsed, phonenumbers.E164)
}
