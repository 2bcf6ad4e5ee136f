package handler

import (
	"net/http"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/octobees/decisionfindr/api/internal/entity"
)

func TestTemplateHandler_Lifecycle(t *testing.T) {
	svc := newTestServices()
	h := NewTemplateHandler(svc.templates)
	e := echo.New()

	c, rec := newContext(e, http.MethodPost, "/templates", strings.NewReader(`{"name":"Tesla execs","params":{"jobTitles":["CTO"],"companies":["Tesla"]}}`))
	if err := h.Create(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created entity.SearchTemplate
	decodeData(t, rec, &created)
	if created.ID == "" || created.Name != "Tesla execs" {
		t.Fatalf("unexpected template: %+v", created)
	}

	c, rec = newContext(e, http.MethodPost, "/templates/"+created.ID+"/use", nil)
	c.SetParamNames("id")
	c.SetParamValues(created.ID)
	if err := h.Use(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var used entity.SearchTemplate
	decodeData(t, rec, &used)
	if used.LastUsed == 0 {
		t.Fatalf("expected last used to be set, got %+v", used)
	}

	c, rec = newContext(e, http.MethodGet, "/templates", nil)
	if err := h.List(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var listed []entity.SearchTemplate
	decodeData(t, rec, &listed)
	if len(listed) != 1 {
		t.Fatalf("expected one template, got %+v", listed)
	}

	c, rec = newContext(e, http.MethodDelete, "/templates/"+created.ID, nil)
	c.SetParamNames("id")
	c.SetParamValues(created.ID)
	if err := h.Delete(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestTemplateHandler_Errors(t *testing.T) {
	h := NewTemplateHandler(newTestServices().templates)
	e := echo.New()

	c, rec := newContext(e, http.MethodPost, "/templates", strings.NewReader(`{"name":"  "}`))
	if err := h.Create(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank name, got %d", rec.Code)
	}

	c, rec = newContext(e, http.MethodDelete, "/templates/missing", nil)
	c.SetParamNames("id")
	c.SetParamValues("missing")
	if err := h.Delete(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown template, got %d", rec.Code)
	}
}
