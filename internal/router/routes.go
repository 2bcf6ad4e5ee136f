package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/decisionfindr/api/internal/auth"
	"github.com/octobees/decisionfindr/api/internal/config"
	"github.com/octobees/decisionfindr/api/internal/handler"
	middlewarepkg "github.com/octobees/decisionfindr/api/internal/middleware"
)

// Routes subject to the per-user search rate limit.
var rateLimitedPaths = []string{"/search", "/search/prompt", "/webhook/:path"}

// Handlers aggregates HTTP handlers used by the router.
type Handlers struct {
	Search    *handler.SearchHandler
	Results   *handler.ResultsHandler
	History   *handler.HistoryHandler
	Templates *handler.TemplateHandler
	Lists     *handler.ListHandler
	Export    *handler.ExportHandler
	Proxy     *handler.ProxyHandler
	Admin     *handler.AdminHandler
}

// Register wires all HTTP routes for the API.
func Register(e *echo.Echo, cfg *config.Config, jwtManager *auth.JWTManager, handlers Handlers) {
	e.GET("/healthz", func(c echo.Context) error {
		return handler.Success(c, http.StatusOK, "service healthy", map[string]any{"status": "ok"})
	})

	secured := e.Group("")
	secured.Use(middlewarepkg.JWT(jwtManager))
	secured.Use(middlewarepkg.RateLimiter(cfg.RateLimitSearch, rateLimitedPaths...))

	secured.GET("/me", handler.Me)

	secured.POST("/search", handlers.Search.Search)
	secured.POST("/search/prompt", handlers.Search.Prompt)
	secured.GET("/search/current", handlers.Search.Current)

	secured.GET("/results", handlers.Results.List)
	secured.DELETE("/results", handlers.Results.Clear)

	secured.GET("/history", handlers.History.List)
	secured.DELETE("/history", handlers.History.Clear)

	secured.GET("/templates", handlers.Templates.List)
	secured.POST("/templates", handlers.Templates.Create)
	secured.DELETE("/templates/:id", handlers.Templates.Delete)
	secured.POST("/templates/:id/use", handlers.Templates.Use)

	secured.GET("/lists", handlers.Lists.List)
	secured.POST("/lists", handlers.Lists.Create)
	secured.GET("/lists/:id", handlers.Lists.Get)
	secured.PATCH("/lists/:id", handlers.Lists.Update)
	secured.DELETE("/lists/:id", handlers.Lists.Delete)
	secured.POST("/lists/:id/prospects", handlers.Lists.AddProspects)
	secured.DELETE("/lists/:id/prospects/:key", handlers.Lists.RemoveProspect)
	secured.POST("/lists/:id/import", handlers.Lists.Import)

	secured.GET("/export", handlers.Export.Export)

	if handlers.Proxy != nil {
		secured.GET("/webhook/:path", handlers.Proxy.Forward)
	}

	if handlers.Admin != nil {
		admin := secured.Group("/admin", middlewarepkg.RequireRole("service_role"))
		admin.POST("/cache/purge", handlers.Admin.PurgeCache)
	}
}
