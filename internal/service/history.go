package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/octobees/decisionfindr/api/internal/entity"
	"github.com/octobees/decisionfindr/api/internal/storage"
)

// DefaultHistoryLimit caps how many searches are kept per user.
const DefaultHistoryLimit = 50

// HistoryService keeps the most-recent-first list of searches a user ran.
type HistoryService struct {
	base
	store *storage.Adapter
	locks *userLocks
	limit int
}

// NewHistoryService builds a history service keeping at most limit entries.
func NewHistoryService(store *storage.Adapter, limit int, opts ...Option) *HistoryService {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &HistoryService{base: newBase(opts), store: store, locks: newUserLocks(), limit: limit}
}

// Record prepends a search and truncates the list to the limit.
func (s *HistoryService) Record(ctx context.Context, userID string, params entity.SearchParams, resultCount int) (entity.StoredSearch, error) {
	unlock := s.locks.lock(userID)
	defer unlock()

	entry := entity.StoredSearch{
		ID:          s.newID(),
		Params:      params.Normalized(),
		Timestamp:   s.nowMillis(),
		ResultCount: resultCount,
	}

	history, err := s.load(ctx, userID)
	if err != nil {
		return entity.StoredSearch{}, err
	}
	history = append([]entity.StoredSearch{entry}, history...)
	if len(history) > s.limit {
		history = history[:s.limit]
	}
	if err := s.store.Save(ctx, s.key(userID), history); err != nil {
		return entity.StoredSearch{}, fmt.Errorf("save search history: %w", err)
	}
	return entry, nil
}

// List returns the history, most recent first.
func (s *HistoryService) List(ctx context.Context, userID string) ([]entity.StoredSearch, error) {
	return s.load(ctx, userID)
}

// Latest returns the most recent search, used to rebuild a view whose query was lost.
func (s *HistoryService) Latest(ctx context.Context, userID string) (entity.StoredSearch, bool, error) {
	history, err := s.load(ctx, userID)
	if err != nil || len(history) == 0 {
		return entity.StoredSearch{}, false, err
	}
	return history[0], true, nil
}

// Find fuzzy-matches query against the titles and companies of past searches,
// best match first. A blank query returns the full list.
func (s *HistoryService) Find(ctx context.Context, userID, query string) ([]entity.StoredSearch, error) {
	history, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return history, nil
	}

	matches := fuzzy.FindFrom(query, historySource(history))
	out := make([]entity.StoredSearch, 0, len(matches))
	for _, m := range matches {
		out = append(out, history[m.Index])
	}
	return out, nil
}

// Clear deletes the user's history.
func (s *HistoryService) Clear(ctx context.Context, userID string) error {
	unlock := s.locks.lock(userID)
	defer unlock()
	if err := s.store.Remove(ctx, s.key(userID)); err != nil {
		return fmt.Errorf("clear search history: %w", err)
	}
	return nil
}

func (s *HistoryService) load(ctx context.Context, userID string) ([]entity.StoredSearch, error) {
	var history []entity.StoredSearch
	if _, err := s.store.Load(ctx, s.key(userID), &history); err != nil {
		return nil, fmt.Errorf("load search history: %w", err)
	}
	if history == nil {
		history = []entity.StoredSearch{}
	}
	return history, nil
}

func (s *HistoryService) key(userID string) storage.Key {
	return storage.KeyFor(storage.FeatureHistory, userID)
}

type historySource []entity.StoredSearch

func (h historySource) String(i int) string {
	p := h[i].Params
	return strings.Join(append(append([]string{}, p.JobTitles...), p.Companies...), " ")
}

func (h historySource) Len() int { return len(h) }
