package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/octobees/decisionfindr/api/internal/entity"
	"github.com/octobees/decisionfindr/api/internal/storage"
)

// CacheVersion is the schema version stamped on cache entries and the accumulated collection.
const CacheVersion = "1"

// MergeResult reports the collection after a merge and how many records were new.
type MergeResult struct {
	Combined []entity.SearchResult `json:"combined"`
	Added    int                   `json:"added"`
}

// Accumulator owns the per-user collection of every result seen across searches.
type Accumulator struct {
	base
	store *storage.Adapter
	locks *userLocks

	genMu       sync.Mutex
	generations map[string]uint64
}

// NewAccumulator builds an accumulator on top of the storage adapter.
func NewAccumulator(store *storage.Adapter, opts ...Option) *Accumulator {
	return &Accumulator{
		base:        newBase(opts),
		store:       store,
		locks:       newUserLocks(),
		generations: make(map[string]uint64),
	}
}

// Generation returns the user's clear counter. A search captures it when it starts;
// results are only committed while it is unchanged.
func (a *Accumulator) Generation(userID string) uint64 {
	a.genMu.Lock()
	defer a.genMu.Unlock()
	return a.generations[userID]
}

// MergeIn adds results not yet in the collection, tagging each with the search
// that produced it. Existing entries keep their original provenance.
func (a *Accumulator) MergeIn(ctx context.Context, userID string, results []entity.SearchResult, source entity.SearchParams) (MergeResult, error) {
	unlock := a.locks.lock(userID)
	defer unlock()
	return a.merge(ctx, userID, results, source)
}

// mergeIfCurrent runs before and then merges, both under the user's lock, only if
// no clear happened since gen was captured. It reports whether the commit ran.
func (a *Accumulator) mergeIfCurrent(ctx context.Context, userID string, gen uint64, results []entity.SearchResult, source entity.SearchParams, before func() error) (MergeResult, bool, error) {
	unlock := a.locks.lock(userID)
	defer unlock()

	if a.Generation(userID) != gen {
		return MergeResult{}, false, nil
	}
	if before != nil {
		if err := before(); err != nil {
			return MergeResult{}, true, err
		}
	}
	res, err := a.merge(ctx, userID, results, source)
	return res, true, err
}

func (a *Accumulator) merge(ctx context.Context, userID string, results []entity.SearchResult, source entity.SearchParams) (MergeResult, error) {
	key := storage.KeyFor(storage.FeatureAccumulated, userID)

	var collection entity.AccumulatedCollection
	if _, err := a.store.Load(ctx, key, &collection); err != nil {
		return MergeResult{}, fmt.Errorf("load accumulated results: %w", err)
	}

	seen := make(map[string]struct{}, len(collection.Results)+len(results))
	for _, r := range collection.Results {
		seen[r.IdentityKey()] = struct{}{}
	}

	now := a.nowMillis()
	source = source.Normalized()
	added := 0
	for _, r := range results {
		if !r.Valid() {
			continue
		}
		id := r.IdentityKey()
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		r.SearchSource = &entity.ProvenanceTag{
			JobTitles: append([]string{}, source.JobTitles...),
			Companies: append([]string{}, source.Companies...),
			Timestamp: now,
		}
		collection.Results = append(collection.Results, r)
		added++
	}

	if collection.Results == nil {
		collection.Results = []entity.SearchResult{}
	}
	collection.Timestamp = now
	collection.Version = CacheVersion
	if err := a.store.Save(ctx, key, collection); err != nil {
		return MergeResult{}, fmt.Errorf("save accumulated results: %w", err)
	}
	return MergeResult{Combined: collection.Results, Added: added}, nil
}

// Clear deletes the durable collection and bumps the generation so that searches
// already in flight cannot repopulate it.
func (a *Accumulator) Clear(ctx context.Context, userID string) error {
	unlock := a.locks.lock(userID)
	defer unlock()

	a.genMu.Lock()
	a.generations[userID]++
	a.genMu.Unlock()

	if err := a.store.Remove(ctx, storage.KeyFor(storage.FeatureAccumulated, userID)); err != nil {
		return fmt.Errorf("clear accumulated results: %w", err)
	}
	a.logger.Info("accumulated results cleared", "user_id", userID)
	return nil
}

// Results returns the full accumulated collection, oldest first.
func (a *Accumulator) Results(ctx context.Context, userID string) ([]entity.SearchResult, error) {
	var collection entity.AccumulatedCollection
	if _, err := a.store.Load(ctx, storage.KeyFor(storage.FeatureAccumulated, userID), &collection); err != nil {
		return nil, fmt.Errorf("load accumulated results: %w", err)
	}
	if collection.Results == nil {
		return []entity.SearchResult{}, nil
	}
	return collection.Results, nil
}
