package content

import (
	"errors"
	"net/http"
	"regexp"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinic/clinic/internal/platform/auth"
	"github.com/clinic/clinic/pkg/pagination"
)

var categoryPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{0,63}$`)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/content-types", h.ListTypes)
	api.GET("/content/:category", h.List)
	api.GET("/content/:category/:id", h.Get)
	api.POST("/content/:category/:id/views", h.RecordView)
}

func (h *Handler) ListTypes(c echo.Context) error {
	return c.JSON(http.StatusOK, Types())
}

func (h *Handler) List(c echo.Context) error {
	category := c.Param("category")
	if !categoryPattern.MatchString(category) {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid category")
	}

	q := Query{Search: c.QueryParam("search"), Tag: c.QueryParam("tag")}
	if raw := c.QueryParam("type"); raw != "" {
		t, err := ParseContentType(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		q.Type = &t
	}
	s, err := ParseSort(c.QueryParam("sort"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	q.Sort = s

	pg := pagination.FromContext(c)
	items := h.svc.List(c.Request().Context(), category, q)
	resp := pagination.Page(items, pg)
	resp.Links = pg.Links(c.Request().URL.Path, c.QueryParams(), len(items))
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	it, err := h.svc.Get(c.Request().Context(), c.Param("category"), id)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "content not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "content unavailable").SetInternal(err)
	}
	return c.JSON(http.StatusOK, it)
}

type viewRequest struct {
	Type string `json:"type"`
}

// RecordView always answers 202: view tracking is best effort and a bad id
// or body is not the visitor's problem.
func (h *Handler) RecordView(c echo.Context) error {
	accepted := map[string]string{"status": "accepted"}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusAccepted, accepted)
	}
	var req viewRequest
	_ = c.Bind(&req)
	if req.Type != "" {
		if _, err := ParseContentType(req.Type); err != nil {
			req.Type = ""
		}
	}

	uid := auth.UserIDFromContext(c.Request().Context())
	h.svc.RecordView(c.Request().Context(), req.Type, id, uid)
	return c.JSON(http.StatusAccepted, accepted)
}
