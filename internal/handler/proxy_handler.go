package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	middlewarepkg "github.com/octobees/decisionfindr/api/internal/middleware"
	"github.com/octobees/decisionfindr/api/internal/webhook"
)

// Forwarder relays raw webhook calls.
type Forwarder interface {
	Forward(ctx context.Context, path, rawQuery string) (*webhook.ForwardResponse, error)
}

// ProxyHandler passes GET /webhook/:path through to the search webhook.
type ProxyHandler struct {
	forwarder Forwarder
}

// NewProxyHandler wires the handler.
func NewProxyHandler(forwarder Forwarder) *ProxyHandler {
	return &ProxyHandler{forwarder: forwarder}
}

// Forward relays the query string and returns the webhook's reply verbatim.
func (h *ProxyHandler) Forward(c echo.Context) error {
	path := c.Param("path")
	if path == "" {
		return Error(c, http.StatusBadRequest, "webhook path is required")
	}

	ctx := webhook.WithRequestID(c.Request().Context(), middlewarepkg.RequestIDFromContext(c))
	resp, err := h.forwarder.Forward(ctx, path, c.Request().URL.RawQuery)
	if err != nil {
		if _, ok := webhook.IsFetchError(err); ok {
			return Error(c, http.StatusBadGateway, err.Error())
		}
		return Error(c, http.StatusBadRequest, err.Error())
	}

	contentType := resp.ContentType
	if contentType == "" {
		contentType = echo.MIMEApplicationJSON
	}
	return c.Blob(resp.StatusCode, contentType, resp.Body)
}
