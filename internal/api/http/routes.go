package httpapi

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/sunshine/internal/app"
	"github.com/i474232898/sunshine/internal/binding"
	"github.com/i474232898/sunshine/internal/config"
	"github.com/i474232898/sunshine/internal/render"
)

var validate = validator.New()

// Caller runs fn on the control thread and waits for it.
type Caller interface {
	Call(ctx context.Context, fn func()) error
}

// Settings reads and updates the user's preferences.
type Settings interface {
	Snapshot() config.Settings
	Set(s config.Settings) error
}

// Deps is what the handlers drive.
type Deps struct {
	Loop     Caller
	Screen   *app.Main
	Settings Settings
	// Timeout bounds how long a handler waits for the control thread.
	Timeout time.Duration
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(fa *fiber.App, d Deps) {
	if d.Timeout <= 0 {
		d.Timeout = 5 * time.Second
	}
	h := &handlers{Deps: d}
	v1 := fa.Group("/api/v1")

	v1.Get("/forecast", h.forecast)
	v1.Post("/forecast/scroll", h.scroll)
	v1.Post("/forecast/select", h.selectRow)
	v1.Post("/forecast/refresh", h.refresh)
	v1.Get("/detail", h.detail)
	v1.Delete("/detail", h.closeDetail)
	v1.Get("/share", h.share)
	v1.Get("/selection", h.selection)
	v1.Get("/settings", h.getSettings)
	v1.Put("/settings", h.putSettings)
	v1.Post("/resume", h.resume)
	v1.Post("/recreate", h.recreate)
}

type handlers struct {
	Deps
}

// onLoop runs fn on the control thread for the request.
func (h *handlers) onLoop(c *fiber.Ctx, fn func()) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), h.Timeout)
	defer cancel()
	if err := h.Loop.Call(ctx, fn); err != nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "screen is not available")
	}
	return nil
}

// forecastView is the list as the client sees it.
type forecastView struct {
	Mode      string              `json:"mode"`
	State     string              `json:"state"`
	Forecast  render.ListSnapshot `json:"forecast"`
	LastError string              `json:"lastError,omitempty"`
}

func (h *handlers) view(m *app.Main) forecastView {
	v := forecastView{
		Mode:     m.Mode().String(),
		State:    m.State().String(),
		Forecast: m.Forecast(),
	}
	if err := m.LastError(); err != nil {
		v.LastError = err.Error()
	}
	return v
}

func (h *handlers) forecast(c *fiber.Ctx) error {
	var v forecastView
	if err := h.onLoop(c, func() { v = h.view(h.Screen) }); err != nil {
		return err
	}
	return c.JSON(v)
}

// scrollQuery holds query parameters for moving the list window.
type scrollQuery struct {
	First int `validate:"gte=0"`
	Count int `validate:"gte=0,lte=100"`
}

func (h *handlers) scroll(c *fiber.Ctx) error {
	var q scrollQuery
	var err error
	if q.First, err = intQuery(c, "first", true); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if q.Count, err = intQuery(c, "count", false); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := validate.Struct(q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	var snap render.ListSnapshot
	if err := h.onLoop(c, func() { snap = h.Screen.Scroll(q.First, q.Count) }); err != nil {
		return err
	}
	return c.JSON(snap)
}

// selectQuery holds the query parameter for activating a row.
type selectQuery struct {
	Position int `validate:"gte=0"`
}

func (h *handlers) selectRow(c *fiber.Ctx) error {
	var q selectQuery
	var err error
	if q.Position, err = intQuery(c, "position", true); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := validate.Struct(q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	var sel binding.SelectionState
	if err := h.onLoop(c, func() {
		h.Screen.Select(q.Position)
		sel = h.Screen.Selection()
	}); err != nil {
		return err
	}
	return c.Status(fiber.StatusAccepted).JSON(sel)
}

func (h *handlers) refresh(c *fiber.Ctx) error {
	if err := h.onLoop(c, h.Screen.Refresh); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusAccepted)
}

func (h *handlers) detail(c *fiber.Ctx) error {
	var (
		snap app.DetailSnapshot
		err  error
	)
	if lerr := h.onLoop(c, func() { snap, err = h.Screen.Detail() }); lerr != nil {
		return lerr
	}
	if err != nil {
		return detailError(err)
	}
	return c.JSON(snap)
}

func (h *handlers) closeDetail(c *fiber.Ctx) error {
	var err error
	if lerr := h.onLoop(c, func() { err = h.Screen.CloseDetail() }); lerr != nil {
		return lerr
	}
	if err != nil {
		return detailError(err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *handlers) share(c *fiber.Ctx) error {
	var (
		intent binding.ShareIntent
		err    error
	)
	if lerr := h.onLoop(c, func() { intent, err = h.Screen.Share() }); lerr != nil {
		return lerr
	}
	if err != nil {
		return detailError(err)
	}
	if intent == (binding.ShareIntent{}) {
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.JSON(intent)
}

func (h *handlers) selection(c *fiber.Ctx) error {
	var sel binding.SelectionState
	if err := h.onLoop(c, func() { sel = h.Screen.Selection() }); err != nil {
		return err
	}
	return c.JSON(sel)
}

func (h *handlers) getSettings(c *fiber.Ctx) error {
	return c.JSON(h.Settings.Snapshot())
}

// putSettings applies new preferences and resumes the screen so a changed
// location is picked up right away.
func (h *handlers) putSettings(c *fiber.Ctx) error {
	var s config.Settings
	if err := c.BodyParser(&s); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid settings body")
	}
	if err := h.Settings.Set(s); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := h.onLoop(c, h.Screen.Resume); err != nil {
		return err
	}
	return c.JSON(h.Settings.Snapshot())
}

func (h *handlers) resume(c *fiber.Ctx) error {
	if err := h.onLoop(c, h.Screen.Resume); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusAccepted)
}

func (h *handlers) recreate(c *fiber.Ctx) error {
	var (
		saved binding.SelectionState
		err   error
	)
	if lerr := h.onLoop(c, func() { saved, err = h.Screen.Recreate() }); lerr != nil {
		return lerr
	}
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to recreate screen")
	}
	return c.JSON(saved)
}

func detailError(err error) error {
	if errors.Is(err, app.ErrNoDetail) {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	return fiber.NewError(fiber.StatusInternalServerError, "failed to read detail")
}

// intQuery parses an integer query parameter.
func intQuery(c *fiber.Ctx, name string, required bool) (int, error) {
	s := c.Query(name)
	if s == "" {
		if required {
			return 0, errors.New(name + " query parameter is required")
		}
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.New(name + " must be an integer")
	}
	return n, nil
}
