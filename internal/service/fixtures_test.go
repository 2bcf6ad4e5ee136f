package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/octobees/decisionfindr/api/internal/entity"
	"github.com/octobees/decisionfindr/api/internal/storage"
)

type stubFetcher struct {
	mu    sync.Mutex
	calls int
	fn    func(call int, titles, companies []string) ([]entity.SearchResult, error)
}

func (s *stubFetcher) FetchProfiles(ctx context.Context, titles, companies []string) ([]entity.SearchResult, error) {
	s.mu.Lock()
	s.calls++
	call := s.calls
	s.mu.Unlock()
	if s.fn == nil {
		return []entity.SearchResult{}, nil
	}
	return s.fn(call, titles, companies)
}

func (s *stubFetcher) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type retryableErr struct{ retry bool }

func (e retryableErr) Error() string   { return fmt.Sprintf("fetch failed (retryable=%v)", e.retry) }
func (e retryableErr) Retryable() bool { return e.retry }

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type testEnv struct {
	mem     *storage.MemoryStore
	store   *storage.Adapter
	clock   *testClock
	acc     *Accumulator
	history *HistoryService
	cache   *ResultCache
	fetcher *stubFetcher
}

func newTestEnv() *testEnv {
	mem := storage.NewMemoryStore()
	store := storage.NewAdapter(mem)
	clock := &testClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	ids := 0
	var idMu sync.Mutex
	opts := []Option{
		WithClock(clock.Now),
		WithIDGenerator(func() string {
			idMu.Lock()
			defer idMu.Unlock()
			ids++
			return fmt.Sprintf("id-%d", ids)
		}),
	}
	acc := NewAccumulator(store, opts...)
	history := NewHistoryService(store, DefaultHistoryLimit, opts...)
	fetcher := &stubFetcher{}
	cache := NewResultCache(store, fetcher, acc, history, CacheConfig{
		Retry: RetryPolicy{MaxRetries: 2, Base: time.Millisecond, Cap: 5 * time.Millisecond},
	}, opts...)
	return &testEnv{mem: mem, store: store, clock: clock, acc: acc, history: history, cache: cache, fetcher: fetcher}
}

func person(id, name, email string) entity.SearchResult {
	return entity.SearchResult{ID: id, Name: name, Email: email, JobTitle: "CTO", Company: "Tesla", Confidence: 85}
}
