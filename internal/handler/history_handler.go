package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/octobees/decisionfindr/api/internal/entity"
	middlewarepkg "github.com/octobees/decisionfindr/api/internal/middleware"
	"github.com/octobees/decisionfindr/api/internal/service"
)

// HistoryHandler exposes the per-user search history.
type HistoryHandler struct {
	history *service.HistoryService
}

// NewHistoryHandler wires the handler.
func NewHistoryHandler(history *service.HistoryService) *HistoryHandler {
	return &HistoryHandler{history: history}
}

// List handles GET /history. A q parameter fuzzy-matches titles and companies.
func (h *HistoryHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	userID := middlewarepkg.UserIDFromContext(c)

	var (
		entries []entity.StoredSearch
		err     error
	)
	if q := strings.TrimSpace(c.QueryParam("q")); q != "" {
		entries, err = h.history.Find(ctx, userID, q)
	} else {
		entries, err = h.history.List(ctx, userID)
	}
	if err != nil {
		return Fail(c, err, "failed to load history")
	}
	return Success(c, http.StatusOK, "history retrieved", entries)
}

// Clear handles DELETE /history.
func (h *HistoryHandler) Clear(c echo.Context) error {
	if err := h.history.Clear(c.Request().Context(), middlewarepkg.UserIDFromContext(c)); err != nil {
		return Fail(c, err, "failed to clear history")
	}
	return Success(c, http.StatusOK, "history cleared", nil)
}
