package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/octobees/decisionfindr/api/internal/entity"
	middlewarepkg "github.com/octobees/decisionfindr/api/internal/middleware"
	"github.com/octobees/decisionfindr/api/internal/service"
	"github.com/octobees/decisionfindr/api/internal/webhook"
)

// SearchHandler runs prospect searches through the result cache.
type SearchHandler struct {
	cache   *service.ResultCache
	history *service.HistoryService
	prompt  *service.PromptService
}

// NewSearchHandler wires the handler.
func NewSearchHandler(cache *service.ResultCache, history *service.HistoryService, prompt *service.PromptService) *SearchHandler {
	return &SearchHandler{cache: cache, history: history, prompt: prompt}
}

type promptRequest struct {
	Prompt string `json:"prompt"`
}

type promptResponse struct {
	Prompt string                `json:"prompt"`
	Search service.SearchOutcome `json:"search"`
}

// Search handles POST /search.
func (h *SearchHandler) Search(c echo.Context) error {
	var params entity.SearchParams
	if err := c.Bind(&params); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}
	if params.IsEmpty() {
		return Error(c, http.StatusBadRequest, "at least one job title or company is required")
	}

	outcome, err := h.cache.Search(searchContext(c), middlewarepkg.UserIDFromContext(c), params)
	if err != nil {
		return Fail(c, err, "search failed")
	}
	return Success(c, http.StatusOK, searchMessage(outcome), outcome)
}

// Prompt handles POST /search/prompt: the prompt is parsed into filters, then searched.
func (h *SearchHandler) Prompt(c echo.Context) error {
	var req promptRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}
	req.Prompt = strings.TrimSpace(req.Prompt)
	if req.Prompt == "" {
		return Error(c, http.StatusBadRequest, "prompt is required")
	}

	params, err := h.prompt.Parse(req.Prompt)
	if err != nil {
		return Fail(c, err, "unable to parse prompt")
	}

	outcome, err := h.cache.Search(searchContext(c), middlewarepkg.UserIDFromContext(c), params)
	if err != nil {
		return Fail(c, err, "search failed")
	}
	return Success(c, http.StatusOK, searchMessage(outcome), promptResponse{Prompt: req.Prompt, Search: outcome})
}

// Current handles GET /search/current. Filters come from the query string; when
// none are given the user's latest search is resumed.
func (h *SearchHandler) Current(c echo.Context) error {
	userID := middlewarepkg.UserIDFromContext(c)
	params, ok, err := currentParams(c, h.history, userID)
	if err != nil {
		return Fail(c, err, "failed to load search history")
	}
	if !ok {
		return Success(c, http.StatusOK, "no current search", service.SearchOutcome{
			Params:  entity.SearchParams{}.Normalized(),
			Results: []entity.SearchResult{},
		})
	}

	outcome, err := h.cache.Search(searchContext(c), userID, params)
	if err != nil {
		return Fail(c, err, "search failed")
	}
	return Success(c, http.StatusOK, searchMessage(outcome), outcome)
}

// currentParams reads the CSV query filters, falling back to the latest history entry.
func currentParams(c echo.Context, history *service.HistoryService, userID string) (entity.SearchParams, bool, error) {
	params := entity.SearchParams{
		JobTitles: splitCSV(c.QueryParam("job_titles")),
		Companies: splitCSV(c.QueryParam("companies")),
		JobLevels: splitCSV(c.QueryParam("job_levels")),
		Locations: splitCSV(c.QueryParam("locations")),
		Keywords:  splitCSV(c.QueryParam("keywords")),
	}
	if !params.IsEmpty() {
		return params, true, nil
	}

	latest, ok, err := history.Latest(c.Request().Context(), userID)
	if err != nil || !ok {
		return entity.SearchParams{}, false, err
	}
	return latest.Params, true, nil
}

func searchContext(c echo.Context) context.Context {
	return webhook.WithRequestID(c.Request().Context(), middlewarepkg.RequestIDFromContext(c))
}

func searchMessage(outcome service.SearchOutcome) string {
	switch {
	case outcome.Discarded:
		return "search discarded after results were cleared"
	case outcome.Cached:
		return "results served from cache"
	default:
		return "search completed"
	}
}
