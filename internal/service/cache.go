package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"

	"github.com/octobees/decisionfindr/api/internal/entity"
	"github.com/octobees/decisionfindr/api/internal/storage"
	"github.com/octobees/decisionfindr/api/internal/webhook"
)

// Cache defaults.
const (
	DefaultCacheMaxAge   = 24 * time.Hour
	DefaultMemoryEntries = 1024
)

// CacheConfig tunes the result cache.
type CacheConfig struct {
	MaxAge        time.Duration
	Retry         RetryPolicy
	MemoryEntries int
}

// SearchOutcome is what a search returns to its caller.
type SearchOutcome struct {
	Params    entity.SearchParams   `json:"params"`
	Results   []entity.SearchResult `json:"results"`
	Cached    bool                  `json:"cached"`
	Added     int                   `json:"added"`
	Total     int                   `json:"total"`
	Discarded bool                  `json:"discarded"`
}

// PopulateResult reports what a populate cycle committed.
type PopulateResult struct {
	Results   []entity.SearchResult
	Added     int
	Total     int
	Discarded bool
}

// PurgeSummary counts a PurgeExpired sweep.
type PurgeSummary struct {
	Scanned int `json:"scanned"`
	Removed int `json:"removed"`
}

// ResultCache serves per-search result snapshots and drives the
// fetch, populate and accumulate cycle.
type ResultCache struct {
	base
	store   *storage.Adapter
	fetcher webhook.Fetcher
	acc     *Accumulator
	history *HistoryService
	cfg     CacheConfig
	memory  *memoryLayer
	group   singleflight.Group
}

// NewResultCache wires the cache to its collaborators.
func NewResultCache(store *storage.Adapter, fetcher webhook.Fetcher, acc *Accumulator, history *HistoryService, cfg CacheConfig, opts ...Option) *ResultCache {
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = DefaultCacheMaxAge
	}
	if cfg.MemoryEntries <= 0 {
		cfg.MemoryEntries = DefaultMemoryEntries
	}
	return &ResultCache{
		base:    newBase(opts),
		store:   store,
		fetcher: fetcher,
		acc:     acc,
		history: history,
		cfg:     cfg,
		memory:  newMemoryLayer(cfg.MemoryEntries, cfg.MaxAge),
	}
}

// ComputeKey renders params as an order-insensitive identity, e.g.
// "jt=A,B|co=Acme|jl=|loc=|kw=".
func ComputeKey(params entity.SearchParams) string {
	n := params.Normalized()
	field := func(values []string) string {
		sorted := append([]string(nil), values...)
		sort.Strings(sorted)
		return strings.Join(sorted, ",")
	}
	return "jt=" + field(n.JobTitles) +
		"|co=" + field(n.Companies) +
		"|jl=" + field(n.JobLevels) +
		"|loc=" + field(n.Locations) +
		"|kw=" + field(n.Keywords)
}

func storageKey(userID string, params entity.SearchParams) storage.Key {
	sum := sha256.Sum256([]byte(ComputeKey(params)))
	return storage.KeyFor(storage.FeatureResultsCache, userID).With(hex.EncodeToString(sum[:16]))
}

// Lookup returns a fresh cached snapshot. Params with neither titles nor companies
// produce an empty hit. Stale, malformed or unreadable entries are misses.
func (c *ResultCache) Lookup(ctx context.Context, userID string, params entity.SearchParams) ([]entity.SearchResult, bool) {
	if params.IsEmpty() {
		return []entity.SearchResult{}, true
	}
	key := storageKey(userID, params)
	k := key.String()
	if k == "" {
		return nil, false
	}

	if entry, ok := c.memory.get(k); ok {
		if c.fresh(entry) {
			return entry.Results, true
		}
		c.memory.remove(k)
	}

	var entry entity.CacheEntry
	ok, err := c.store.Load(ctx, key, &entry)
	if err != nil {
		c.logger.Warn("result cache lookup failed", "user_id", userID, "error", err)
		return nil, false
	}
	if !ok || !c.fresh(entry) {
		return nil, false
	}
	c.memory.put(k, entry)
	return entry.Results, true
}

func (c *ResultCache) fresh(entry entity.CacheEntry) bool {
	if entry.Version != CacheVersion || entry.Results == nil || entry.Timestamp <= 0 {
		return false
	}
	age := c.now().Sub(time.UnixMilli(entry.Timestamp))
	return age < c.cfg.MaxAge
}

// Populate commits fetched results: it writes the cache entry, records the search
// in history and merges into the accumulated collection. A set containing an
// invalid record is stored as empty. If the user cleared since gen was captured,
// nothing is written and the cycle yields no results.
func (c *ResultCache) Populate(ctx context.Context, userID string, params entity.SearchParams, results []entity.SearchResult, gen uint64) (PopulateResult, error) {
	params = params.Normalized()
	valid := validateResults(results)

	key := storageKey(userID, params)
	merged, committed, err := c.acc.mergeIfCurrent(ctx, userID, gen, valid, params, func() error {
		entry := entity.CacheEntry{
			Timestamp:   c.nowMillis(),
			Version:     CacheVersion,
			QueryParams: params,
			Results:     valid,
		}
		if err := c.store.Save(ctx, key, entry); err != nil {
			return fmt.Errorf("save cache entry: %w", err)
		}
		if k := key.String(); k != "" {
			c.memory.put(k, entry)
		}
		if _, err := c.history.Record(ctx, userID, params, len(valid)); err != nil {
			c.logger.Warn("recording search history failed", "user_id", userID, "error", err)
		}
		return nil
	})
	if err != nil {
		return PopulateResult{}, err
	}
	if !committed {
		c.logger.Info("discarding results of a search started before a clear", "user_id", userID)
		return PopulateResult{Results: []entity.SearchResult{}, Discarded: true}, nil
	}
	return PopulateResult{Results: valid, Added: merged.Added, Total: len(merged.Combined)}, nil
}

// validateResults drops zero-value records; any remaining record without a usable
// name makes the whole set empty.
func validateResults(results []entity.SearchResult) []entity.SearchResult {
	out := make([]entity.SearchResult, 0, len(results))
	for _, r := range results {
		if r.IsZero() {
			continue
		}
		if !r.Valid() {
			return []entity.SearchResult{}
		}
		r.SearchSource = nil
		out = append(out, r)
	}
	return out
}

// Search serves params from cache or runs fetch, retry and populate. The cycle
// outlives the caller's cancellation so an abandoned search still lands its entry.
// Identical searches in flight for the same user share one fetch.
func (c *ResultCache) Search(ctx context.Context, userID string, params entity.SearchParams) (SearchOutcome, error) {
	params = params.Normalized()
	if results, ok := c.Lookup(ctx, userID, params); ok {
		return SearchOutcome{Params: params, Results: results, Cached: true}, nil
	}

	gen := c.acc.Generation(userID)
	flightKey := fmt.Sprintf("%s\x00%d\x00%s", userID, gen, ComputeKey(params))
	v, err, _ := c.group.Do(flightKey, func() (any, error) {
		ctx := context.WithoutCancel(ctx)

		var fetched []entity.SearchResult
		err := c.cfg.Retry.Do(ctx, func(ctx context.Context) error {
			var ferr error
			fetched, ferr = c.fetcher.FetchProfiles(ctx, params.JobTitles, params.Companies)
			if ferr != nil {
				c.logger.Warn("webhook fetch failed", "user_id", userID, "error", ferr)
			}
			return ferr
		})
		if err != nil {
			return nil, fmt.Errorf("fetch profiles: %w", err)
		}
		return c.Populate(ctx, userID, params, fetched, gen)
	})
	if err != nil {
		return SearchOutcome{}, err
	}

	pr := v.(PopulateResult)
	return SearchOutcome{
		Params:    params,
		Results:   pr.Results,
		Added:     pr.Added,
		Total:     pr.Total,
		Discarded: pr.Discarded,
	}, nil
}

// PurgeExpired deletes every stale or malformed cache entry for all users.
func (c *ResultCache) PurgeExpired(ctx context.Context) (PurgeSummary, error) {
	keys, err := c.store.Keys(ctx, storage.FeatureResultsCache)
	if err != nil {
		return PurgeSummary{}, err
	}

	var summary PurgeSummary
	for _, key := range keys {
		summary.Scanned++
		var entry entity.CacheEntry
		ok, err := c.store.Load(ctx, key, &entry)
		if err != nil {
			return summary, err
		}
		if ok && c.fresh(entry) {
			continue
		}
		if err := c.store.Remove(ctx, key); err != nil {
			return summary, err
		}
		c.memory.remove(key.String())
		summary.Removed++
	}
	c.memory.purge(c.fresh)
	return summary, nil
}

// memoryLayer is the write-through in-process view of recent cache entries,
// bounded in size and age.
type memoryLayer struct {
	entries *expirable.LRU[string, entity.CacheEntry]
}

func newMemoryLayer(limit int, ttl time.Duration) *memoryLayer {
	return &memoryLayer{entries: expirable.NewLRU[string, entity.CacheEntry](limit, nil, ttl)}
}

func (m *memoryLayer) get(key string) (entity.CacheEntry, bool) {
	return m.entries.Get(key)
}

func (m *memoryLayer) put(key string, entry entity.CacheEntry) {
	m.entries.Add(key, entry)
}

func (m *memoryLayer) remove(key string) {
	m.entries.Remove(key)
}

func (m *memoryLayer) purge(keep func(entity.CacheEntry) bool) {
	for _, k := range m.entries.Keys() {
		if e, ok := m.entries.Peek(k); ok && !keep(e) {
			m.entries.Remove(k)
		}
	}
}
