package binding

import (
	"errors"
	"log/slog"

	"github.com/i474232898/sunshine/internal/weather"
)

// Mode is the master/detail presentation, fixed when the coordinator is built.
type Mode int

const (
	// ModeSplit shows the detail as a separate screen.
	ModeSplit Mode = iota
	// ModeCombined shows the detail inline next to the list.
	ModeCombined
)

func (m Mode) String() string {
	if m == ModeCombined {
		return "combined"
	}
	return "split"
}

// ModeFor derives the mode from whether the layout has room for two panes.
func ModeFor(twoPane bool) Mode {
	if twoPane {
		return ModeCombined
	}
	return ModeSplit
}

var (
	ErrNoList      = errors.New("coordinator needs a list controller")
	ErrNoDetail    = errors.New("combined mode needs a detail controller")
	ErrNoNavigator = errors.New("split mode needs a navigator")
)

// CoordinatorConfig wires a Coordinator.
type CoordinatorConfig struct {
	Mode        Mode
	List        *ListController
	Detail      *DetailController
	Navigator   Navigator
	Preferences Preferences
	Sync        SyncTrigger
	Logger      *slog.Logger
}

// Coordinator routes list selections to the detail pane or to a new screen
// and reacts to preference changes on resume.
type Coordinator struct {
	cfg      CoordinatorConfig
	logger   *slog.Logger
	location string
}

// NewCoordinator validates cfg and configures the list for the mode.
func NewCoordinator(cfg CoordinatorConfig) (*Coordinator, error) {
	if cfg.List == nil {
		return nil, ErrNoList
	}
	switch cfg.Mode {
	case ModeCombined:
		if cfg.Detail == nil {
			return nil, ErrNoDetail
		}
	default:
		if cfg.Navigator == nil {
			return nil, ErrNoNavigator
		}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	c := &Coordinator{
		cfg:    cfg,
		logger: cfg.Logger.With(slog.String("mode", cfg.Mode.String())),
	}
	// The expanded today row only makes sense when the list has the screen to itself.
	cfg.List.SetUseTodayLayout(cfg.Mode == ModeSplit)
	cfg.List.SetCallback(c)
	return c, nil
}

// Mode returns the presentation mode.
func (c *Coordinator) Mode() Mode {
	return c.cfg.Mode
}

// Start attaches the controllers, restoring saved selection state.
func (c *Coordinator) Start(saved *SelectionState) {
	c.location = c.preferredLocation()
	c.cfg.List.Attach(saved)

	if c.cfg.Mode != ModeCombined {
		return
	}
	if saved != nil && saved.SelectedRowLocator != "" {
		c.cfg.Detail.SetLocator(saved.SelectedRowLocator)
		return
	}
	c.cfg.Detail.Attach()
}

// Resume checks whether the preferred location changed while the screen was
// away. If so it asks for a sync and reloads the list; the detail pane keeps
// its row until the user picks another one.
func (c *Coordinator) Resume() {
	location := c.preferredLocation()
	if location == "" || location == c.location {
		return
	}
	c.logger.Info("preferred location changed", slog.String("from", c.location), slog.String("to", location))
	c.location = location

	if c.cfg.Sync != nil {
		c.cfg.Sync.SyncNow(location)
	}
	c.cfg.List.Refresh(FilterInputs{Location: location})
}

// Stop detaches every controller.
func (c *Coordinator) Stop() {
	c.cfg.List.Detach()
	if c.cfg.Detail != nil {
		c.cfg.Detail.Detach()
	}
}

// OnItemSelected implements Callback.
func (c *Coordinator) OnItemSelected(locator weather.Locator) {
	if c.cfg.Mode == ModeCombined {
		c.cfg.Detail.SetLocator(locator)
		return
	}
	c.cfg.Navigator.ShowDetail(locator)
}

func (c *Coordinator) preferredLocation() string {
	if c.cfg.Preferences == nil {
		return ""
	}
	return c.cfg.Preferences.Location()
}
