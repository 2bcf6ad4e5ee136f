package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/decisionfindr/api/internal/entity"
	middlewarepkg "github.com/octobees/decisionfindr/api/internal/middleware"
	"github.com/octobees/decisionfindr/api/internal/service"
)

// TemplateHandler manages saved search templates.
type TemplateHandler struct {
	templates *service.TemplateService
}

// NewTemplateHandler wires the handler.
func NewTemplateHandler(templates *service.TemplateService) *TemplateHandler {
	return &TemplateHandler{templates: templates}
}

type templateRequest struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Params      entity.SearchParams `json:"params"`
}

// List handles GET /templates.
func (h *TemplateHandler) List(c echo.Context) error {
	templates, err := h.templates.List(c.Request().Context(), middlewarepkg.UserIDFromContext(c))
	if err != nil {
		return Fail(c, err, "failed to load templates")
	}
	return Success(c, http.StatusOK, "templates retrieved", templates)
}

// Create handles POST /templates.
func (h *TemplateHandler) Create(c echo.Context) error {
	var req templateRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	tmpl, err := h.templates.Create(c.Request().Context(), middlewarepkg.UserIDFromContext(c), req.Name, req.Description, req.Params)
	if err != nil {
		return Fail(c, err, "failed to save template")
	}
	return Success(c, http.StatusCreated, "template saved", tmpl)
}

// Delete handles DELETE /templates/:id.
func (h *TemplateHandler) Delete(c echo.Context) error {
	if err := h.templates.Delete(c.Request().Context(), middlewarepkg.UserIDFromContext(c), c.Param("id")); err != nil {
		return Fail(c, err, "failed to delete template")
	}
	return Success(c, http.StatusOK, "template deleted", nil)
}

// Use handles POST /templates/:id/use and returns the template with its
// last-used time refreshed.
func (h *TemplateHandler) Use(c echo.Context) error {
	tmpl, err := h.templates.Use(c.Request().Context(), middlewarepkg.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		return Fail(c, err, "failed to use template")
	}
	return Success(c, http.StatusOK, "template applied", tmpl)
}
