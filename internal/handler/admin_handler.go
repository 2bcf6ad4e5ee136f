package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	middlewarepkg "github.com/octobees/decisionfindr/api/internal/middleware"
	"github.com/octobees/decisionfindr/api/internal/service"
)

// CachePurger runs one expired-entry sweep.
type CachePurger interface {
	RunOnce(ctx context.Context) (service.PurgeSummary, error)
}

// AdminHandler exposes operational endpoints.
type AdminHandler struct {
	purger CachePurger
}

// NewAdminHandler wires the handler.
func NewAdminHandler(purger CachePurger) *AdminHandler {
	return &AdminHandler{purger: purger}
}

// PurgeCache handles POST /admin/cache/purge.
func (h *AdminHandler) PurgeCache(c echo.Context) error {
	summary, err := h.purger.RunOnce(c.Request().Context())
	if err != nil {
		return Error(c, http.StatusInternalServerError, "cache purge failed")
	}
	return Success(c, http.StatusOK, "cache purged", summary)
}

type meResponse struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role,omitempty"`
}

// Me handles GET /me with the identity carried by the bearer token.
func Me(c echo.Context) error {
	email, _ := c.Get(middlewarepkg.ContextKeyUserEmail).(string)
	role, _ := c.Get(middlewarepkg.ContextKeyUserRole).(string)
	return Success(c, http.StatusOK, "profile retrieved", meResponse{
		UserID: middlewarepkg.UserIDFromContext(c),
		Email:  email,
		Role:   role,
	})
}
