package settings

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clinic/clinic/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the handlers on me, which must already require an
// authenticated user.
func (h *Handler) RegisterRoutes(me *echo.Group) {
	me.GET("/settings/water-reminder", h.GetWaterReminder)
	me.PUT("/settings/water-reminder", h.PutWaterReminder)
	me.DELETE("/settings/water-reminder", h.ResetWaterReminder)
	me.GET("/saved-resources", h.ListSavedResources)
	me.POST("/saved-resources/:id/toggle", h.ToggleSavedResource)
	me.DELETE("/saved-resources/:id", h.RemoveSavedResource)
}

func userID(c echo.Context) (string, error) {
	uid := auth.UserIDFromContext(c.Request().Context())
	if uid == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return uid, nil
}

func storeError(err error) error {
	if errors.Is(err, ErrInvalid) {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return echo.NewHTTPError(http.StatusServiceUnavailable, "settings unavailable").SetInternal(err)
}

func (h *Handler) GetWaterReminder(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	w, err := h.svc.WaterReminder(c.Request().Context(), uid)
	if err != nil {
		return storeError(err)
	}
	return c.JSON(http.StatusOK, w)
}

func (h *Handler) PutWaterReminder(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	// Fields missing from the body keep their current values.
	w, err := h.svc.WaterReminder(c.Request().Context(), uid)
	if err != nil {
		return storeError(err)
	}
	if err := c.Bind(&w); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.svc.SetWaterReminder(c.Request().Context(), uid, w); err != nil {
		return storeError(err)
	}
	return c.JSON(http.StatusOK, w)
}

func (h *Handler) ResetWaterReminder(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	w, err := h.svc.ResetWaterReminder(c.Request().Context(), uid)
	if err != nil {
		return storeError(err)
	}
	return c.JSON(http.StatusOK, w)
}

func (h *Handler) ListSavedResources(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	saved, err := h.svc.SavedResources(c.Request().Context(), uid)
	if err != nil {
		return storeError(err)
	}
	return c.JSON(http.StatusOK, saved)
}

func (h *Handler) ToggleSavedResource(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	on, saved, err := h.svc.ToggleSavedResource(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		return storeError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"saved": on,
		"items": saved.Items,
	})
}

func (h *Handler) RemoveSavedResource(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	saved, err := h.svc.RemoveSavedResource(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		return storeError(err)
	}
	return c.JSON(http.StatusOK, saved)
}
