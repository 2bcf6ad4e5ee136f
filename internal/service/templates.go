package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/octobees/decisionfindr/api/internal/entity"
	"github.com/octobees/decisionfindr/api/internal/storage"
)

// TemplateService manages named, reusable search parameter bundles.
type TemplateService struct {
	base
	store *storage.Adapter
	locks *userLocks
}

// NewTemplateService builds a template service.
func NewTemplateService(store *storage.Adapter, opts ...Option) *TemplateService {
	return &TemplateService{base: newBase(opts), store: store, locks: newUserLocks()}
}

// Create stores a new template ahead of the existing ones.
func (s *TemplateService) Create(ctx context.Context, userID, name, description string, params entity.SearchParams) (entity.SearchTemplate, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return entity.SearchTemplate{}, ValidationError{Message: "template name is required"}
	}

	unlock := s.locks.lock(userID)
	defer unlock()

	templates, err := s.load(ctx, userID)
	if err != nil {
		return entity.SearchTemplate{}, err
	}
	tpl := entity.SearchTemplate{
		ID:          s.newID(),
		Name:        name,
		Description: strings.TrimSpace(description),
		Params:      params.Normalized(),
		CreatedAt:   s.nowMillis(),
	}
	templates = append([]entity.SearchTemplate{tpl}, templates...)
	if err := s.save(ctx, userID, templates); err != nil {
		return entity.SearchTemplate{}, err
	}
	return tpl, nil
}

// List returns the templates, most recently created first.
func (s *TemplateService) List(ctx context.Context, userID string) ([]entity.SearchTemplate, error) {
	return s.load(ctx, userID)
}

// Delete removes a template by id.
func (s *TemplateService) Delete(ctx context.Context, userID, id string) error {
	unlock := s.locks.lock(userID)
	defer unlock()

	templates, err := s.load(ctx, userID)
	if err != nil {
		return err
	}
	idx := indexTemplate(templates, id)
	if idx < 0 {
		return ErrTemplateNotFound
	}
	templates = append(templates[:idx], templates[idx+1:]...)
	return s.save(ctx, userID, templates)
}

// Use stamps LastUsed on a template and returns it.
func (s *TemplateService) Use(ctx context.Context, userID, id string) (entity.SearchTemplate, error) {
	unlock := s.locks.lock(userID)
	defer unlock()

	templates, err := s.load(ctx, userID)
	if err != nil {
		return entity.SearchTemplate{}, err
	}
	idx := indexTemplate(templates, id)
	if idx < 0 {
		return entity.SearchTemplate{}, ErrTemplateNotFound
	}
	templates[idx].LastUsed = s.nowMillis()
	if err := s.save(ctx, userID, templates); err != nil {
		return entity.SearchTemplate{}, err
	}
	return templates[idx], nil
}

func (s *TemplateService) load(ctx context.Context, userID string) ([]entity.SearchTemplate, error) {
	var templates []entity.SearchTemplate
	if _, err := s.store.Load(ctx, storage.KeyFor(storage.FeatureTemplates, userID), &templates); err != nil {
		return nil, fmt.Errorf("load search templates: %w", err)
	}
	if templates == nil {
		templates = []entity.SearchTemplate{}
	}
	return templates, nil
}

func (s *TemplateService) save(ctx context.Context, userID string, templates []entity.SearchTemplate) error {
	if err := s.store.Save(ctx, storage.KeyFor(storage.FeatureTemplates, userID), templates); err != nil {
		return fmt.Errorf("save search templates: %w", err)
	}
	return nil
}

func indexTemplate(templates []entity.SearchTemplate, id string) int {
	for i, t := range templates {
		if t.ID == id {
			return i
		}
	}
	return -1
}
