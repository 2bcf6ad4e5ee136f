package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	middlewarepkg "github.com/octobees/decisionfindr/api/internal/middleware"
	"github.com/octobees/decisionfindr/api/internal/service"
)

// ResultsHandler exposes the accumulated result collection.
type ResultsHandler struct {
	accumulator *service.Accumulator
}

// NewResultsHandler wires the handler.
func NewResultsHandler(accumulator *service.Accumulator) *ResultsHandler {
	return &ResultsHandler{accumulator: accumulator}
}

// List handles GET /results with page/per_page pagination.
func (h *ResultsHandler) List(c echo.Context) error {
	results, err := h.accumulator.Results(c.Request().Context(), middlewarepkg.UserIDFromContext(c))
	if err != nil {
		return Fail(c, err, "failed to load results")
	}

	page := parseIntDefault(c.QueryParam("page"), 1)
	perPage := parseIntDefault(c.QueryParam("per_page"), defaultPerPage)
	return Success(c, http.StatusOK, "results retrieved", paginate(results, page, perPage))
}

// Clear handles DELETE /results. Searches still in flight are discarded.
func (h *ResultsHandler) Clear(c echo.Context) error {
	if err := h.accumulator.Clear(c.Request().Context(), middlewarepkg.UserIDFromContext(c)); err != nil {
		return Fail(c, err, "failed to clear results")
	}
	return Success(c, http.StatusOK, "results cleared", nil)
}
