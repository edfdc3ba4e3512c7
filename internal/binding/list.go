package binding

import (
	"log/slog"

	"github.com/i474232898/sunshine/internal/loader"
	"github.com/i474232898/sunshine/internal/query"
	"github.com/i474232898/sunshine/internal/weather"
)

const noPosition = -1

// FilterInputs are the values the forecast query is filtered by.
type FilterInputs struct {
	// Location is the location setting; empty means the preferred location.
	Location string
	// StartDate is in epoch millis; zero means the start of today.
	StartDate int64
}

// ListController binds the forecast list to the store.
type ListController struct {
	env      Env
	logger   *slog.Logger
	loader   *loader.Loader
	view     ListView
	callback Callback

	useTodayLayout bool
	state          LoadState
	filter         FilterInputs
	data           query.ResultSet

	position      int
	selected      weather.Locator
	pendingScroll int
}

// NewListController returns an idle controller rendering into view.
func NewListController(env Env, view ListView) *ListController {
	c := &ListController{
		env:           env,
		logger:        env.logger().With(slog.String("controller", "list")),
		view:          view,
		position:      noPosition,
		pendingScroll: noPosition,
	}
	c.loader = env.newLoader("forecast", c)
	return c
}

// SetUseTodayLayout selects whether row 0 uses the primary kind.
func (c *ListController) SetUseTodayLayout(useTodayLayout bool) {
	c.useTodayLayout = useTodayLayout
}

// SetCallback sets who is told about row activations.
func (c *ListController) SetCallback(cb Callback) {
	c.callback = cb
}

// State returns the current load state.
func (c *ListController) State() LoadState {
	return c.state
}

// Attach starts loading the forecast for the preferred location. A saved
// scroll position is restored once, after the next successful delivery.
func (c *ListController) Attach(initial *SelectionState) {
	if c.state == LoadStateLoading || c.state == LoadStateLoaded {
		c.logger.Debug("attach ignored, already attached", slog.String("state", c.state.String()))
		return
	}
	if initial != nil {
		if p := initial.ScrollPosition; p != nil && *p >= 0 {
			c.position = *p
			c.pendingScroll = *p
		}
		c.selected = initial.SelectedRowLocator
	}
	c.filter = FilterInputs{}
	c.load()
}

// Refresh rebuilds the query from new filter inputs and reloads. Any load
// still in flight is superseded.
func (c *ListController) Refresh(in FilterInputs) {
	c.filter = in
	c.load()
}

// Detach tears the controller down.
func (c *ListController) Detach() {
	c.loader.Reset()
}

// OnRowActivated selects the row at position. Positions the current data
// cannot seek to are ignored.
func (c *ListController) OnRowActivated(position int) {
	if c.data == nil {
		c.logger.Debug("activation without data", slog.Int("position", position))
		return
	}
	row, ok := c.data.Row(position)
	if !ok {
		c.logger.Debug("activation position not resolvable", slog.Int("position", position))
		return
	}

	setting := row.String(forecastColLocationSetting)
	if setting == "" {
		setting = c.location()
	}
	locator := weather.BuildWeatherLocationWithDate(setting, row.Int64(forecastColDate))

	c.position = position
	c.selected = locator
	if c.callback != nil {
		c.callback.OnItemSelected(locator)
	}
}

// SaveSelection snapshots the selection. The scroll position is left out when
// nothing was ever selected.
func (c *ListController) SaveSelection() SelectionState {
	s := SelectionState{SelectedRowLocator: c.selected}
	if c.position != noPosition {
		p := c.position
		s.ScrollPosition = &p
	}
	return s
}

// Len implements RowSource.
func (c *ListController) Len() int {
	if c.data == nil {
		return 0
	}
	return c.data.Len()
}

// Kind implements RowSource.
func (c *ListController) Kind(position int) ViewKind {
	return KindFor(position, c.useTodayLayout)
}

// Bind implements RowSource.
func (c *ListController) Bind(position int) (RowViewModel, bool) {
	if c.data == nil {
		return RowViewModel{}, false
	}
	row, ok := c.data.Row(position)
	if !ok {
		return RowViewModel{}, false
	}
	return Project(row, forecastSlots, position, c.useTodayLayout, c.metric(), c.env.Formatter), true
}

// LoadFinished implements loader.Callbacks.
func (c *ListController) LoadFinished(rs query.ResultSet) {
	c.data = rs
	c.state = LoadStateLoaded
	c.checkFirstRow()

	c.view.SwapData(c)
	if c.pendingScroll != noPosition {
		p := c.pendingScroll
		c.pendingScroll = noPosition
		c.view.ScrollTo(p)
	}
}

// LoadEmpty implements loader.Callbacks.
func (c *ListController) LoadEmpty() {
	c.data = nil
	c.state = LoadStateIdle
	c.view.SwapData(nil)
}

// LoadFailed implements loader.Callbacks. Whatever was on screen stays.
func (c *ListController) LoadFailed(err error) {
	if c.data != nil {
		c.state = LoadStateLoaded
	} else {
		c.state = LoadStateIdle
	}
	c.env.reportError(err)
}

// LoaderReset implements loader.Callbacks.
func (c *ListController) LoaderReset() {
	c.data = nil
	c.state = LoadStateReset
	c.view.SwapData(nil)
	c.state = LoadStateIdle
}

// ContentChanged implements loader.Callbacks.
func (c *ListController) ContentChanged() {
	if c.state == LoadStateIdle {
		return
	}
	c.logger.Debug("store changed, reloading")
	c.load()
}

func (c *ListController) load() {
	c.loader.Load(c.descriptor())
	c.state = LoadStateLoading
}

func (c *ListController) descriptor() query.Descriptor {
	setting := c.filter.Location
	if setting == "" {
		setting = c.location()
	}
	start := c.filter.StartDate
	if start == 0 {
		start = weather.DayStart(c.env.timeSource().Now())
	}
	return query.NewDescriptor(
		weather.BuildWeatherLocationWithStartDate(setting, start),
		forecastColumns[:],
		query.WithSort(query.Order{Column: weather.ColumnDate}),
	)
}

// checkFirstRow flags results whose first row is not today. Row 0 is still
// rendered with the primary kind; only the position decides that.
func (c *ListController) checkFirstRow() {
	if !c.useTodayLayout || c.env.Formatter == nil {
		return
	}
	row, ok := c.data.Row(0)
	if !ok {
		return
	}
	if date := row.Int64(forecastColDate); !c.env.Formatter.IsToday(date) {
		c.logger.Warn("first forecast row is not today", slog.String("date", weather.DateOf(date).Format("2006-01-02")))
	}
}

func (c *ListController) location() string {
	if c.env.Preferences == nil {
		return ""
	}
	return c.env.Preferences.Location()
}

func (c *ListController) metric() bool {
	return c.env.Preferences == nil || c.env.Preferences.IsMetric()
}
