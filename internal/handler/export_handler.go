package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/octobees/decisionfindr/api/internal/entity"
	"github.com/octobees/decisionfindr/api/internal/export"
	middlewarepkg "github.com/octobees/decisionfindr/api/internal/middleware"
	"github.com/octobees/decisionfindr/api/internal/service"
)

// Export sources.
const (
	sourceAll     = "all"
	sourceList    = "list"
	sourceCurrent = "current"
)

// ExportHandler renders prospects as a downloadable file.
type ExportHandler struct {
	accumulator *service.Accumulator
	lists       *service.ListService
	cache       *service.ResultCache
	history     *service.HistoryService
	now         func() time.Time
}

// NewExportHandler wires the handler.
func NewExportHandler(accumulator *service.Accumulator, lists *service.ListService, cache *service.ResultCache, history *service.HistoryService) *ExportHandler {
	return &ExportHandler{accumulator: accumulator, lists: lists, cache: cache, history: history, now: time.Now}
}

// Export handles GET /export?format=csv|xlsx|txt&source=all|list|current.
// source=list needs list_id; source=current reads the same filters as
// /search/current and never triggers a fetch.
func (h *ExportHandler) Export(c echo.Context) error {
	format, ok := export.ParseFormat(strings.ToLower(c.QueryParam("format")))
	if !ok {
		return Error(c, http.StatusBadRequest, "unsupported export format")
	}

	ctx := c.Request().Context()
	userID := middlewarepkg.UserIDFromContext(c)

	var (
		results []entity.SearchResult
		name    = "prospects"
		err     error
	)
	switch source := strings.ToLower(c.QueryParam("source")); source {
	case "", sourceAll:
		results, err = h.accumulator.Results(ctx, userID)
	case sourceList:
		listID := c.QueryParam("list_id")
		if listID == "" {
			return Error(c, http.StatusBadRequest, "list_id is required")
		}
		var list entity.ProspectList
		list, err = h.lists.Get(ctx, userID, listID)
		results, name = list.Prospects, "list"
	case sourceCurrent:
		var (
			params entity.SearchParams
			found  bool
		)
		params, found, err = currentParams(c, h.history, userID)
		if err == nil && found {
			results, _ = h.cache.Lookup(ctx, userID, params)
		}
		name = "search"
	default:
		return Error(c, http.StatusBadRequest, "unsupported export source")
	}
	if err != nil {
		return Fail(c, err, "failed to load prospects")
	}

	body, err := export.Render(format, results)
	if err != nil {
		return Error(c, http.StatusInternalServerError, "failed to render export")
	}

	filename := fmt.Sprintf("%s-%s.%s", name, h.now().UTC().Format("20060102-150405"), format)
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, format.ContentType(), body)
}
