package service

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/octobees/decisionfindr/api/internal/entity"
)

var (
	fillerExpr      = regexp.MustCompile(`(?i)^\s*(?:please|pls|can you|could you|help me|i need|i want|i'm looking for|im looking for|looking for|look for|find me|find|search for|search|show me|show|get me|get|give me|list)\b[\s,:]*`)
	companyPattern  = regexp.MustCompile(`(?i)\s+(?:at|from|in)\s+`)
	locationPattern = regexp.MustCompile(`(?i)\s+(?:in|based in|located in)\s+([^,]+(?:,\s*[A-Z]{2})?)\s*$`)
	keywordPattern  = regexp.MustCompile(`(?i)\s+(?:with|skilled in|experienced in|who know|knowing)\s+(.+)$`)
	listSeparator   = regexp.MustCompile(`(?i)\s*(?:,|;|&|\band\b|\bor\b)\s*`)
	acronymPlural   = regexp.MustCompile(`^([A-Z]{2,})s$`)
)

var uncountable = map[string]bool{
	"sales": true, "operations": true, "analytics": true, "business": true,
	"logistics": true, "communications": true, "relations": true, "news": true,
	"services": true, "systems": true, "products": true,
}

// PromptService turns chat-style search text into structured parameters.
type PromptService struct{}

// NewPromptService creates a prompt parser.
func NewPromptService() *PromptService {
	return &PromptService{}
}

// Parse converts text such as "find CTOs and VPs of Sales at Tesla, SpaceX in Austin"
// into search parameters.
func (s *PromptService) Parse(prompt string) (entity.SearchParams, error) {
	prompt = strings.TrimSpace(strings.TrimRight(strings.TrimSpace(prompt), ".?!"))
	if prompt == "" {
		return entity.SearchParams{}, ValidationError{Message: "prompt is required"}
	}

	for {
		stripped := fillerExpr.ReplaceAllString(prompt, "")
		if stripped == prompt {
			break
		}
		prompt = stripped
	}

	var params entity.SearchParams
	if m := keywordPattern.FindStringSubmatchIndex(prompt); m != nil {
		params.Keywords = splitList(prompt[m[2]:m[3]])
		prompt = prompt[:m[0]]
	}

	roles, companies := prompt, ""
	if loc := companyPattern.FindStringIndex(prompt); loc != nil {
		roles, companies = prompt[:loc[0]], prompt[loc[1]:]
		marker := strings.ToLower(strings.TrimSpace(prompt[loc[0]:loc[1]]))
		if marker != "in" {
			if m := locationPattern.FindStringSubmatchIndex(" " + companies); m != nil {
				padded := " " + companies
				params.Locations = []string{titleCase(padded[m[2]:m[3]])}
				companies = padded[:m[0]]
			}
		}
	}

	for _, role := range splitList(roles) {
		params.JobTitles = append(params.JobTitles, singularizeRole(role))
	}
	params.Companies = splitList(companies)

	params = params.Normalized()
	if params.IsEmpty() {
		return entity.SearchParams{}, ValidationError{Message: "prompt must mention a job title or a company"}
	}
	return params, nil
}

func splitList(value string) []string {
	parts := listSeparator.Split(strings.TrimSpace(value), -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(strings.TrimSpace(p), `"'`)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// singularizeRole singularises the head noun: the word before " of ", or the last word.
func singularizeRole(role string) string {
	words := strings.Fields(role)
	if len(words) == 0 {
		return ""
	}
	head := len(words) - 1
	for i, w := range words {
		if strings.EqualFold(w, "of") && i > 0 {
			head = i - 1
			break
		}
	}
	words[head] = singularize(words[head])
	return strings.Join(words, " ")
}

func singularize(word string) string {
	if m := acronymPlural.FindStringSubmatch(word); m != nil {
		return m[1]
	}
	lower := strings.ToLower(word)
	switch {
	case uncountable[lower], len(word) <= 3:
		return word
	case strings.HasSuffix(lower, "ies"):
		return word[:len(word)-3] + "y"
	case strings.HasSuffix(lower, "ss"), strings.HasSuffix(lower, "us"), strings.HasSuffix(lower, "is"):
		return word
	case strings.HasSuffix(lower, "s"):
		return word[:len(word)-1]
	}
	return word
}

func titleCase(value string) string {
	parts := strings.Fields(value)
	for i, p := range parts {
		if p == strings.ToUpper(p) && len(p) <= 3 {
			continue
		}
		runes := []rune(strings.ToLower(p))
		runes[0] = unicode.ToUpper(runes[0])
		parts[i] = string(runes)
	}
	return strings.Join(parts, " ")
}
