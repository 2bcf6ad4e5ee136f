package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/octobees/decisionfindr/api/internal/entity"
)

func TestHistoryHandler_ListAndSearch(t *testing.T) {
	svc := newTestServices()
	ctx := context.Background()
	for _, p := range []entity.SearchParams{
		{JobTitles: []string{"CTO"}, Companies: []string{"Tesla"}},
		{JobTitles: []string{"Head of Marketing"}, Companies: []string{"Spotify"}},
	} {
		if _, err := svc.history.Record(ctx, testUser, p, 1); err != nil {
			t.Fatalf("seed history: %v", err)
		}
	}
	h := NewHistoryHandler(svc.history)
	e := echo.New()

	c, rec := newContext(e, http.MethodGet, "/history", nil)
	if err := h.List(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var all []entity.StoredSearch
	decodeData(t, rec, &all)
	if len(all) != 2 || all[0].Params.Companies[0] != "Spotify" {
		t.Fatalf("expected newest first, got %+v", all)
	}

	c, rec = newContext(e, http.MethodGet, "/history?q=spotfy", nil)
	if err := h.List(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var matched []entity.StoredSearch
	decodeData(t, rec, &matched)
	if len(matched) != 1 || matched[0].Params.Companies[0] != "Spotify" {
		t.Fatalf("expected fuzzy match on Spotify, got %+v", matched)
	}
}

func TestHistoryHandler_Clear(t *testing.T) {
	svc := newTestServices()
	if _, err := svc.history.Record(context.Background(), testUser, entity.SearchParams{JobTitles: []string{"CTO"}}, 0); err != nil {
		t.Fatalf("seed history: %v", err)
	}
	h := NewHistoryHandler(svc.history)

	c, rec := newContext(echo.New(), http.MethodDelete, "/history", nil)
	if err := h.Clear(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if entries, _ := svc.history.List(context.Background(), testUser); len(entries) != 0 {
		t.Fatalf("expected empty history, got %+v", entries)
	}
}
