package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	middlewarepkg "github.com/octobees/decisionfindr/api/internal/middleware"
	"github.com/octobees/decisionfindr/api/internal/service"
)

type stubPurger struct {
	summary service.PurgeSummary
	err     error
	runs    int
}

func (s *stubPurger) RunOnce(ctx context.Context) (service.PurgeSummary, error) {
	s.runs++
	return s.summary, s.err
}

func TestAdminHandler_PurgeCache(t *testing.T) {
	purger := &stubPurger{summary: service.PurgeSummary{Scanned: 4, Removed: 1}}
	h := NewAdminHandler(purger)

	c, rec := newContext(echo.New(), http.MethodPost, "/admin/cache/purge", nil)
	if err := h.PurgeCache(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var summary service.PurgeSummary
	decodeData(t, rec, &summary)
	if rec.Code != http.StatusOK || summary.Removed != 1 || purger.runs != 1 {
		t.Fatalf("unexpected purge response: %d %+v", rec.Code, summary)
	}

	purger.err = errors.New("store offline")
	c, rec = newContext(echo.New(), http.MethodPost, "/admin/cache/purge", nil)
	if err := h.PurgeCache(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestMe(t *testing.T) {
	c, rec := newContext(echo.New(), http.MethodGet, "/me", nil)
	c.Set(middlewarepkg.ContextKeyUserEmail, "jane@tesla.com")
	c.Set(middlewarepkg.ContextKeyUserRole, "authenticated")
	if err := Me(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var me meResponse
	decodeData(t, rec, &me)
	if me.UserID != testUser || me.Email != "jane@tesla.com" || me.Role != "authenticated" {
		t.Fatalf("unexpected profile: %+v", me)
	}
}
