// Package app composes the forecast screen: the list and detail renderers,
// their controllers and the coordinator between them. Main plays the part of
// the hosting screen, including being torn down and rebuilt on a
// configuration change.
//
// Every Main method must run on the looper; see package looper.
package app

import (
	"errors"
	"log/slog"
	"time"

	"github.com/juju/clock"

	"github.com/i474232898/sunshine/internal/binding"
	"github.com/i474232898/sunshine/internal/loader"
	"github.com/i474232898/sunshine/internal/render"
	"github.com/i474232898/sunshine/internal/weather"
)

// ErrNoDetail is returned by detail operations when no detail is on screen.
var ErrNoDetail = errors.New("no detail on screen")

// Config wires a Main.
type Config struct {
	Mode         binding.Mode
	Querier      loader.Querier
	Poster       loader.Poster
	Preferences  binding.Preferences
	Sync         binding.SyncTrigger
	Formatter    binding.Formatter
	Clock        clock.Clock
	QueryTimeout time.Duration
	// Go overrides how queries are started; nil starts goroutines.
	Go         func(fn func())
	ListWindow int
	Logger     *slog.Logger
}

// detailScreen is one detail surface with its own controller.
type detailScreen struct {
	pane  *render.DetailPane
	share *render.ShareSurface
	ctl   *binding.DetailController
}

func newDetailScreen(env binding.Env) *detailScreen {
	s := &detailScreen{pane: &render.DetailPane{}, share: &render.ShareSurface{}}
	s.ctl = binding.NewDetailController(env, s.pane)
	s.ctl.CreateShareAction(s.share)
	return s
}

// DetailSnapshot is what a detail surface shows.
type DetailSnapshot struct {
	Locator weather.Locator       `json:"locator,omitempty"`
	State   string                `json:"state"`
	Row     *binding.RowViewModel `json:"row,omitempty"`
	Share   binding.ShareIntent   `json:"share"`
}

func (s *detailScreen) snapshot() DetailSnapshot {
	out := DetailSnapshot{
		Locator: s.ctl.Locator(),
		State:   s.ctl.State().String(),
		Share:   s.share.Current(),
	}
	if vm, ok := s.pane.Snapshot(); ok {
		out.Row = &vm
	}
	return out
}

// Main is the forecast screen.
type Main struct {
	cfg    Config
	env    binding.Env
	logger *slog.Logger

	list        *render.List
	listCtl     *binding.ListController
	inline      *detailScreen
	coordinator *binding.Coordinator

	// pushed is the detail screen opened in split mode.
	pushed *detailScreen

	started bool
	lastErr error
}

// New builds the screen. Call Start to attach it.
func New(cfg Config) (*Main, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	m := &Main{
		cfg:    cfg,
		logger: cfg.Logger.With(slog.String("screen", "main"), slog.String("mode", cfg.Mode.String())),
	}
	m.env = binding.Env{
		Querier:      cfg.Querier,
		Poster:       cfg.Poster,
		QueryTimeout: cfg.QueryTimeout,
		Go:           cfg.Go,
		Preferences:  cfg.Preferences,
		Formatter:    cfg.Formatter,
		Clock:        cfg.Clock,
		Errors:       m,
		Logger:       cfg.Logger,
	}
	if err := m.build(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Main) build() error {
	m.list = render.NewList(m.cfg.ListWindow, m.cfg.Logger)
	m.listCtl = binding.NewListController(m.env, m.list)

	cc := binding.CoordinatorConfig{
		Mode:        m.cfg.Mode,
		List:        m.listCtl,
		Preferences: m.cfg.Preferences,
		Sync:        m.cfg.Sync,
		Logger:      m.cfg.Logger,
	}
	m.inline = nil
	if m.cfg.Mode == binding.ModeCombined {
		m.inline = newDetailScreen(m.env)
		cc.Detail = m.inline.ctl
	} else {
		cc.Navigator = m
	}

	c, err := binding.NewCoordinator(cc)
	if err != nil {
		return err
	}
	m.coordinator = c
	return nil
}

// Mode returns the presentation mode.
func (m *Main) Mode() binding.Mode {
	return m.cfg.Mode
}

// Start attaches the screen, restoring saved if given.
func (m *Main) Start(saved *binding.SelectionState) {
	m.coordinator.Start(saved)
	if m.pushed != nil {
		m.pushed.ctl.Attach()
	}
	m.started = true
}

// Stop detaches everything.
func (m *Main) Stop() {
	if !m.started {
		return
	}
	m.coordinator.Stop()
	if m.pushed != nil {
		m.pushed.ctl.Detach()
	}
	m.started = false
}

// Resume is called when the screen comes back to the foreground.
func (m *Main) Resume() {
	m.coordinator.Resume()
}

// Recreate tears the screen down and builds it again, carrying the selection
// state across the way a configuration change would.
func (m *Main) Recreate() (binding.SelectionState, error) {
	saved := m.listCtl.SaveSelection()
	var pushed weather.Locator
	if m.pushed != nil {
		pushed = m.pushed.ctl.Locator()
	}

	m.Stop()
	m.pushed = nil
	if err := m.build(); err != nil {
		return saved, err
	}
	if pushed != "" {
		m.ShowDetail(pushed)
	}
	m.Start(&saved)
	m.logger.Info("screen recreated")
	return saved, nil
}

// ShowDetail implements binding.Navigator by opening a detail screen with
// its own controller.
func (m *Main) ShowDetail(locator weather.Locator) {
	if m.pushed != nil {
		m.pushed.ctl.Detach()
	}
	m.pushed = newDetailScreen(m.env)
	m.pushed.ctl.SetLocator(locator)
}

// CloseDetail closes the split-mode detail screen.
func (m *Main) CloseDetail() error {
	if m.pushed == nil {
		return ErrNoDetail
	}
	m.pushed.ctl.Detach()
	m.pushed = nil
	return nil
}

// ReportError implements binding.ErrorReporter.
func (m *Main) ReportError(err error) {
	m.lastErr = err
	m.logger.Warn("load failed", slog.Any("error", err))
}

// LastError returns the most recent load failure.
func (m *Main) LastError() error {
	return m.lastErr
}

// Forecast returns what the list shows.
func (m *Main) Forecast() render.ListSnapshot {
	return m.list.Snapshot()
}

// Scroll moves the list window.
func (m *Main) Scroll(first, count int) render.ListSnapshot {
	m.list.SetWindow(first, count)
	return m.list.Snapshot()
}

// Select activates the row at position, as a tap would.
func (m *Main) Select(position int) {
	m.listCtl.OnRowActivated(position)
}

// Refresh reloads the list for the preferred location.
func (m *Main) Refresh() {
	m.listCtl.Refresh(binding.FilterInputs{})
}

// Detail returns the detail surface on screen: the inline pane in combined
// mode, the pushed screen in split mode.
func (m *Main) Detail() (DetailSnapshot, error) {
	if s := m.detail(); s != nil {
		return s.snapshot(), nil
	}
	return DetailSnapshot{}, ErrNoDetail
}

// Share returns the share payload of the detail on screen.
func (m *Main) Share() (binding.ShareIntent, error) {
	if s := m.detail(); s != nil {
		return s.share.Current(), nil
	}
	return binding.ShareIntent{}, ErrNoDetail
}

// Selection returns the state a recreate would carry over.
func (m *Main) Selection() binding.SelectionState {
	return m.listCtl.SaveSelection()
}

// State returns the list controller's load state.
func (m *Main) State() binding.LoadState {
	return m.listCtl.State()
}

func (m *Main) detail() *detailScreen {
	if m.inline != nil {
		return m.inline
	}
	return m.pushed
}
