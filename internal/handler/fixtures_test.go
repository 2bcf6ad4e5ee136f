package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/octobees/decisionfindr/api/internal/entity"
	middlewarepkg "github.com/octobees/decisionfindr/api/internal/middleware"
	"github.com/octobees/decisionfindr/api/internal/service"
	"github.com/octobees/decisionfindr/api/internal/storage"
)

const testUser = "user-1"

type stubFetcher struct {
	mu        sync.Mutex
	calls     int
	titles    []string
	companies []string
	results   []entity.SearchResult
	err       error
}

func (s *stubFetcher) FetchProfiles(ctx context.Context, titles, companies []string) ([]entity.SearchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.titles, s.companies = titles, companies
	if s.err != nil {
		return nil, s.err
	}
	return s.results, nil
}

type testServices struct {
	store       *storage.Adapter
	fetcher     *stubFetcher
	accumulator *service.Accumulator
	history     *service.HistoryService
	templates   *service.TemplateService
	lists       *service.ListService
	cache       *service.ResultCache
}

func newTestServices() *testServices {
	store := storage.NewAdapter(storage.NewMemoryStore())
	fetcher := &stubFetcher{}
	acc := service.NewAccumulator(store)
	history := service.NewHistoryService(store, service.DefaultHistoryLimit)
	cache := service.NewResultCache(store, fetcher, acc, history, service.CacheConfig{
		Retry: service.RetryPolicy{MaxRetries: 1, Base: time.Millisecond, Cap: 2 * time.Millisecond},
	})
	return &testServices{
		store:       store,
		fetcher:     fetcher,
		accumulator: acc,
		history:     history,
		templates:   service.NewTemplateService(store),
		lists:       service.NewListService(store),
		cache:       cache,
	}
}

// newContext builds an authenticated echo context for req.
func newContext(e *echo.Echo, method, target string, body io.Reader) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middlewarepkg.ContextKeyUserID, testUser)
	return c, rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out any) APIResponse {
	t.Helper()
	var envelope struct {
		APIResponse
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			t.Fatalf("failed to decode data: %v", err)
		}
	}
	return envelope.APIResponse
}

func prospect(id, name string) entity.SearchResult {
	return entity.SearchResult{ID: id, Name: name, JobTitle: "CTO", Company: "Tesla", Confidence: 85}
}
