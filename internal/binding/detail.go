package binding

import (
	"fmt"
	"log/slog"

	"github.com/i474232898/sunshine/internal/loader"
	"github.com/i474232898/sunshine/internal/query"
	"github.com/i474232898/sunshine/internal/weather"
)

const (
	shareHashtag  = " #SunshineApp"
	shareMIMEType = "text/plain"
)

// DetailController binds one forecast day to the detail view and keeps the
// share payload in step with it.
type DetailController struct {
	env    Env
	logger *slog.Logger
	loader *loader.Loader
	view   DetailView
	share  ShareProvider

	state    LoadState
	locator  weather.Locator
	forecast string
}

// NewDetailController returns an idle controller rendering into view.
func NewDetailController(env Env, view DetailView) *DetailController {
	c := &DetailController{
		env:    env,
		logger: env.logger().With(slog.String("controller", "detail")),
		view:   view,
	}
	c.loader = env.newLoader("detail", c)
	return c
}

// State returns the current load state.
func (c *DetailController) State() LoadState {
	return c.state
}

// Locator returns the row being shown.
func (c *DetailController) Locator() weather.Locator {
	return c.locator
}

// Attach loads the current locator, if any.
func (c *DetailController) Attach() {
	if c.locator == "" || c.state == LoadStateLoading || c.state == LoadStateLoaded {
		return
	}
	c.load()
}

// SetLocator switches to another row. The previous share payload is
// withdrawn until the new row has loaded.
func (c *DetailController) SetLocator(locator weather.Locator) {
	c.locator = locator
	c.forecast = ""
	if c.share != nil {
		c.share.SetShareIntent(ShareIntent{})
	}
	if locator == "" {
		c.loader.Reset()
		return
	}
	c.load()
}

// Detach tears the controller down.
func (c *DetailController) Detach() {
	c.loader.Reset()
}

// CreateShareAction registers the share surface and hands it the current
// payload, if a row has loaded.
func (c *DetailController) CreateShareAction(p ShareProvider) {
	c.share = p
	c.pushShare()
}

// SharePayload returns the text that would be shared, or "" before any row
// has loaded.
func (c *DetailController) SharePayload() string {
	if c.forecast == "" {
		return ""
	}
	return c.forecast + shareHashtag
}

// LoadFinished implements loader.Callbacks.
func (c *DetailController) LoadFinished(rs query.ResultSet) {
	row, ok := rs.Row(0)
	if !ok {
		c.LoadEmpty()
		return
	}

	metric := c.env.Preferences == nil || c.env.Preferences.IsMetric()
	f := c.env.Formatter

	vm := Project(row, detailSlots, 0, true, metric, f)
	vm.Day = f.DayName(vm.DateMillis)
	c.state = LoadStateLoaded
	c.view.Show(vm)

	c.forecast = fmt.Sprintf("%s - %s - %s/%s",
		f.MonthDay(vm.DateMillis),
		vm.Description,
		f.PlainTemperature(row.Float64(detailSlots.High), metric),
		f.PlainTemperature(row.Float64(detailSlots.Low), metric),
	)
	c.pushShare()
}

// LoadEmpty implements loader.Callbacks.
func (c *DetailController) LoadEmpty() {
	c.state = LoadStateIdle
	c.forecast = ""
	c.view.Clear()
	if c.share != nil {
		c.share.SetShareIntent(ShareIntent{})
	}
}

// LoadFailed implements loader.Callbacks.
func (c *DetailController) LoadFailed(err error) {
	c.state = LoadStateIdle
	c.env.reportError(err)
}

// LoaderReset implements loader.Callbacks. The detail view keeps no reference
// to the result set, so there is nothing to release here.
func (c *DetailController) LoaderReset() {
	c.state = LoadStateIdle
}

// ContentChanged implements loader.Callbacks.
func (c *DetailController) ContentChanged() {
	if c.locator == "" || c.state == LoadStateIdle {
		return
	}
	c.load()
}

func (c *DetailController) load() {
	c.loader.Load(query.NewDescriptor(c.locator, detailColumns[:]))
	c.state = LoadStateLoading
}

func (c *DetailController) pushShare() {
	if c.share == nil || c.forecast == "" {
		return
	}
	c.share.SetShareIntent(ShareIntent{
		MIMEType: shareMIMEType,
		Text:     c.forecast + shareHashtag,
	})
}
