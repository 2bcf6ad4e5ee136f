package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/octobees/decisionfindr/api/internal/entity"
	"github.com/octobees/decisionfindr/api/internal/storage"
)

// ListInput carries the editable attributes of a prospect list.
type ListInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

// ListUpdate patches a list; nil fields are left unchanged.
type ListUpdate struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
}

// ImportSummary reports how many CSV rows landed on a list.
type ImportSummary struct {
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
	Total   int `json:"total"`
}

// ListService manages user-curated prospect lists.
type ListService struct {
	base
	store *storage.Adapter
	locks *userLocks
}

// NewListService builds a list service.
func NewListService(store *storage.Adapter, opts ...Option) *ListService {
	return &ListService{base: newBase(opts), store: store, locks: newUserLocks()}
}

// Create adds an empty list.
func (s *ListService) Create(ctx context.Context, userID string, in ListInput) (entity.ProspectList, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return entity.ProspectList{}, ValidationError{Message: "list name is required"}
	}

	unlock := s.locks.lock(userID)
	defer unlock()

	lists, err := s.load(ctx, userID)
	if err != nil {
		return entity.ProspectList{}, err
	}
	now := s.nowMillis()
	list := entity.ProspectList{
		ID:          s.newID(),
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Color:       strings.TrimSpace(in.Color),
		CreatedAt:   now,
		UpdatedAt:   now,
		Prospects:   []entity.SearchResult{},
	}
	lists = append(lists, list)
	if err := s.save(ctx, userID, lists); err != nil {
		return entity.ProspectList{}, err
	}
	return list, nil
}

// List returns every list of the user in creation order.
func (s *ListService) List(ctx context.Context, userID string) ([]entity.ProspectList, error) {
	return s.load(ctx, userID)
}

// Get returns one list.
func (s *ListService) Get(ctx context.Context, userID, id string) (entity.ProspectList, error) {
	lists, err := s.load(ctx, userID)
	if err != nil {
		return entity.ProspectList{}, err
	}
	idx := indexList(lists, id)
	if idx < 0 {
		return entity.ProspectList{}, ErrListNotFound
	}
	return lists[idx], nil
}

// Update renames or recolours a list.
func (s *ListService) Update(ctx context.Context, userID, id string, in ListUpdate) (entity.ProspectList, error) {
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return entity.ProspectList{}, ValidationError{Message: "list name must not be empty"}
	}
	return s.mutate(ctx, userID, id, func(l *entity.ProspectList) error {
		if in.Name != nil {
			l.Name = strings.TrimSpace(*in.Name)
		}
		if in.Description != nil {
			l.Description = strings.TrimSpace(*in.Description)
		}
		if in.Color != nil {
			l.Color = strings.TrimSpace(*in.Color)
		}
		return nil
	})
}

// Delete removes a list.
func (s *ListService) Delete(ctx context.Context, userID, id string) error {
	unlock := s.locks.lock(userID)
	defer unlock()

	lists, err := s.load(ctx, userID)
	if err != nil {
		return err
	}
	idx := indexList(lists, id)
	if idx < 0 {
		return ErrListNotFound
	}
	lists = append(lists[:idx], lists[idx+1:]...)
	return s.save(ctx, userID, lists)
}

// AddProspects appends prospects not already on the list and returns how many were added.
func (s *ListService) AddProspects(ctx context.Context, userID, id string, prospects []entity.SearchResult) (entity.ProspectList, int, error) {
	added := 0
	list, err := s.mutate(ctx, userID, id, func(l *entity.ProspectList) error {
		added = appendProspects(l, prospects)
		return nil
	})
	return list, added, err
}

// RemoveProspect drops the prospect with the given identity key.
func (s *ListService) RemoveProspect(ctx context.Context, userID, id, key string) (entity.ProspectList, error) {
	return s.mutate(ctx, userID, id, func(l *entity.ProspectList) error {
		for i, p := range l.Prospects {
			if p.IdentityKey() == key {
				l.Prospects = append(l.Prospects[:i], l.Prospects[i+1:]...)
				return nil
			}
		}
		return ErrProspectNotFound
	})
}

// ImportCSV reads prospects from CSV and adds them to a list. The header must
// name a "name" column and at least one of "company" or "job title".
func (s *ListService) ImportCSV(ctx context.Context, userID, id string, r io.Reader) (ImportSummary, error) {
	prospects, skipped, err := parseProspectsCSV(r)
	if err != nil {
		return ImportSummary{}, err
	}

	var summary ImportSummary
	_, err = s.mutate(ctx, userID, id, func(l *entity.ProspectList) error {
		summary.Added = appendProspects(l, prospects)
		return nil
	})
	if err != nil {
		return ImportSummary{}, err
	}
	summary.Total = len(prospects) + skipped
	summary.Skipped = summary.Total - summary.Added
	return summary, nil
}

func (s *ListService) mutate(ctx context.Context, userID, id string, fn func(*entity.ProspectList) error) (entity.ProspectList, error) {
	unlock := s.locks.lock(userID)
	defer unlock()

	lists, err := s.load(ctx, userID)
	if err != nil {
		return entity.ProspectList{}, err
	}
	idx := indexList(lists, id)
	if idx < 0 {
		return entity.ProspectList{}, ErrListNotFound
	}
	if err := fn(&lists[idx]); err != nil {
		return entity.ProspectList{}, err
	}
	lists[idx].UpdatedAt = s.nowMillis()
	if err := s.save(ctx, userID, lists); err != nil {
		return entity.ProspectList{}, err
	}
	return lists[idx], nil
}

func (s *ListService) load(ctx context.Context, userID string) ([]entity.ProspectList, error) {
	var lists []entity.ProspectList
	if _, err := s.store.Load(ctx, storage.KeyFor(storage.FeatureLists, userID), &lists); err != nil {
		return nil, fmt.Errorf("load prospect lists: %w", err)
	}
	if lists == nil {
		lists = []entity.ProspectList{}
	}
	return lists, nil
}

func (s *ListService) save(ctx context.Context, userID string, lists []entity.ProspectList) error {
	if err := s.store.Save(ctx, storage.KeyFor(storage.FeatureLists, userID), lists); err != nil {
		return fmt.Errorf("save prospect lists: %w", err)
	}
	return nil
}

func indexList(lists []entity.ProspectList, id string) int {
	for i, l := range lists {
		if l.ID == id {
			return i
		}
	}
	return -1
}

func appendProspects(l *entity.ProspectList, prospects []entity.SearchResult) int {
	seen := make(map[string]struct{}, len(l.Prospects)+len(prospects))
	for _, p := range l.Prospects {
		seen[p.IdentityKey()] = struct{}{}
	}
	added := 0
	for _, p := range prospects {
		if !p.Valid() {
			continue
		}
		key := p.IdentityKey()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		p.SearchSource = nil
		l.Prospects = append(l.Prospects, p)
		added++
	}
	return added
}

// prospectColumns maps accepted header spellings to canonical columns. The export
// header names are included so an exported file imports back unchanged.
var prospectColumns = map[string]string{
	"name":         "name",
	"full name":    "name",
	"job title":    "title",
	"job_title":    "title",
	"jobtitle":     "title",
	"title":        "title",
	"company":      "company",
	"company name": "company",
	"email":        "email",
	"phone":        "phone",
	"linkedin":     "linkedin",
	"linkedin url": "linkedin",
	"match(%)":     "match",
	"match":        "match",
	"confidence":   "match",
	"id":           "id",
}

func buildProspectHeaderIndex(header []string) (map[string]int, error) {
	index := make(map[string]int)
	for i, col := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(col, "\ufeff")))
		if canonical, ok := prospectColumns[name]; ok {
			if _, exists := index[canonical]; !exists {
				index[canonical] = i
			}
		}
	}

	if _, ok := index["name"]; !ok {
		return nil, ValidationError{Message: "missing required columns: name"}
	}
	_, hasCompany := index["company"]
	_, hasTitle := index["title"]
	if !hasCompany && !hasTitle {
		return nil, ValidationError{Message: "missing required columns: company or job title"}
	}
	return index, nil
}

func parseProspectsCSV(r io.Reader) ([]entity.SearchResult, int, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, 0, ValidationError{Message: "csv file is empty"}
		}
		return nil, 0, ValidationError{Message: fmt.Sprintf("read csv header: %v", err)}
	}
	index, err := buildProspectHeaderIndex(header)
	if err != nil {
		return nil, 0, err
	}

	var (
		prospects []entity.SearchResult
		skipped   int
		rowNum    = 1
	)
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		rowNum++
		if err != nil {
			return nil, 0, ValidationError{Message: fmt.Sprintf("invalid csv row %d: %v", rowNum, err)}
		}

		cell := func(col string) string {
			if i, ok := index[col]; ok && i < len(row) {
				return strings.TrimSpace(row[i])
			}
			return ""
		}

		p := entity.SearchResult{
			ID:          cell("id"),
			Name:        cell("name"),
			JobTitle:    cell("title"),
			Company:     cell("company"),
			Email:       strings.ToLower(cell("email")),
			Phone:       cell("phone"),
			LinkedInURL: cell("linkedin"),
			Confidence:  85,
		}
		if !p.Valid() {
			skipped++
			continue
		}
		if raw := strings.TrimSuffix(cell("match"), "%"); raw != "" {
			f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
			if err != nil || math.IsNaN(f) {
				return nil, 0, ValidationError{Message: fmt.Sprintf("invalid match value on row %d", rowNum)}
			}
			p.Confidence = min(100, max(0, f))
		}
		prospects = append(prospects, p)
	}
	return prospects, skipped, nil
}
