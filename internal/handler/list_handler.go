package handler

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/octobees/decisionfindr/api/internal/entity"
	middlewarepkg "github.com/octobees/decisionfindr/api/internal/middleware"
	"github.com/octobees/decisionfindr/api/internal/service"
)

// ListHandler manages prospect lists and their membership.
type ListHandler struct {
	lists *service.ListService
}

// NewListHandler wires the handler.
func NewListHandler(lists *service.ListService) *ListHandler {
	return &ListHandler{lists: lists}
}

type addProspectsRequest struct {
	Prospects []entity.SearchResult `json:"prospects"`
}

type addProspectsResponse struct {
	List  entity.ProspectList `json:"list"`
	Added int                 `json:"added"`
}

// List handles GET /lists.
func (h *ListHandler) List(c echo.Context) error {
	lists, err := h.lists.List(c.Request().Context(), middlewarepkg.UserIDFromContext(c))
	if err != nil {
		return Fail(c, err, "failed to load lists")
	}
	return Success(c, http.StatusOK, "lists retrieved", lists)
}

// Create handles POST /lists.
func (h *ListHandler) Create(c echo.Context) error {
	var req service.ListInput
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}
	list, err := h.lists.Create(c.Request().Context(), middlewarepkg.UserIDFromContext(c), req)
	if err != nil {
		return Fail(c, err, "failed to create list")
	}
	return Success(c, http.StatusCreated, "list created", list)
}

// Get handles GET /lists/:id.
func (h *ListHandler) Get(c echo.Context) error {
	list, err := h.lists.Get(c.Request().Context(), middlewarepkg.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		return Fail(c, err, "failed to load list")
	}
	return Success(c, http.StatusOK, "list retrieved", list)
}

// Update handles PATCH /lists/:id. Omitted fields are left unchanged.
func (h *ListHandler) Update(c echo.Context) error {
	var req service.ListUpdate
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}
	list, err := h.lists.Update(c.Request().Context(), middlewarepkg.UserIDFromContext(c), c.Param("id"), req)
	if err != nil {
		return Fail(c, err, "failed to update list")
	}
	return Success(c, http.StatusOK, "list updated", list)
}

// Delete handles DELETE /lists/:id.
func (h *ListHandler) Delete(c echo.Context) error {
	if err := h.lists.Delete(c.Request().Context(), middlewarepkg.UserIDFromContext(c), c.Param("id")); err != nil {
		return Fail(c, err, "failed to delete list")
	}
	return Success(c, http.StatusOK, "list deleted", nil)
}

// AddProspects handles POST /lists/:id/prospects.
func (h *ListHandler) AddProspects(c echo.Context) error {
	var req addProspectsRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}
	if len(req.Prospects) == 0 {
		return Error(c, http.StatusBadRequest, "prospects are required")
	}

	list, added, err := h.lists.AddProspects(c.Request().Context(), middlewarepkg.UserIDFromContext(c), c.Param("id"), req.Prospects)
	if err != nil {
		return Fail(c, err, "failed to add prospects")
	}
	return Success(c, http.StatusOK, "prospects added", addProspectsResponse{List: list, Added: added})
}

// RemoveProspect handles DELETE /lists/:id/prospects/:key, key being the
// prospect's identity key.
func (h *ListHandler) RemoveProspect(c echo.Context) error {
	key, err := url.PathUnescape(c.Param("key"))
	if err != nil || key == "" {
		return Error(c, http.StatusBadRequest, "invalid prospect key")
	}

	list, err := h.lists.RemoveProspect(c.Request().Context(), middlewarepkg.UserIDFromContext(c), c.Param("id"), key)
	if err != nil {
		return Fail(c, err, "failed to remove prospect")
	}
	return Success(c, http.StatusOK, "prospect removed", list)
}

// Import handles POST /lists/:id/import with a multipart "file" field.
func (h *ListHandler) Import(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return Error(c, http.StatusBadRequest, "missing csv file")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return Error(c, http.StatusBadRequest, "unable to open file")
	}
	defer file.Close()

	summary, err := h.lists.ImportCSV(c.Request().Context(), middlewarepkg.UserIDFromContext(c), c.Param("id"), file)
	if err != nil {
		return Fail(c, err, "failed to process csv")
	}
	return Success(c, http.StatusOK, "prospects CSV processed", summary)
}
