package service

import (
	"errors"
	"reflect"
	"testing"
)

func TestPromptService_Parse(t *testing.T) {
	svc := NewPromptService()
	tests := map[string]struct {
		prompt    string
		titles    []string
		companies []string
		locations []string
		keywords  []string
	}{
		"full sentence": {
			prompt:    "find CTOs and VPs of Sales at Tesla, SpaceX in Austin",
			titles:    []string{"CTO", "VP of Sales"},
			companies: []string{"Tesla", "SpaceX"},
			locations: []string{"Austin"},
		},
		"in as company marker": {
			prompt:    "show me Software Engineers in Stripe",
			titles:    []string{"Software Engineer"},
			companies: []string{"Stripe"},
		},
		"role only": {
			prompt: "Please search for Heads of Growth.",
			titles: []string{"Head of Growth"},
		},
		"keywords": {
			prompt:    "Data Scientists from Nubank with Python and Spark",
			titles:    []string{"Data Scientist"},
			companies: []string{"Nubank"},
			keywords:  []string{"Python", "Spark"},
		},
		"uncountable head": {
			prompt:    "VP Sales at Acme",
			titles:    []string{"VP Sales"},
			companies: []string{"Acme"},
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			params, err := svc.Parse(tt.prompt)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			check := func(field string, got, want []string) {
				if want == nil {
					want = []string{}
				}
				if !reflect.DeepEqual(got, want) {
					t.Fatalf("%s: expected %v, got %v", field, want, got)
				}
			}
			check("titles", params.JobTitles, tt.titles)
			check("companies", params.Companies, tt.companies)
			check("locations", params.Locations, tt.locations)
			check("keywords", params.Keywords, tt.keywords)
		})
	}
}

func TestPromptService_ParseErrors(t *testing.T) {
	svc := NewPromptService()
	for _, prompt := range []string{"", "   ", "find", "please show me"} {
		_, err := svc.Parse(prompt)
		var verr ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected validation error for %q, got %v", prompt, err)
		}
	}
}
