// Package binding holds the controllers that bind forecast query results to
// the list and detail views, and the coordinator that routes selections
// between them.
//
// Every exported method of the controllers and the coordinator must be called
// on the control thread (see package looper). Query work happens elsewhere and
// only comes back through the loader callbacks.
package binding

import (
	"log/slog"
	"time"

	"github.com/juju/clock"

	"github.com/i474232898/sunshine/internal/loader"
	"github.com/i474232898/sunshine/internal/weather"
)

// LoadState is the load lifecycle of one controller.
type LoadState int

const (
	LoadStateIdle LoadState = iota
	LoadStateLoading
	LoadStateLoaded
	LoadStateReset
)

func (s LoadState) String() string {
	switch s {
	case LoadStateIdle:
		return "idle"
	case LoadStateLoading:
		return "loading"
	case LoadStateLoaded:
		return "loaded"
	case LoadStateReset:
		return "reset"
	default:
		return "unknown"
	}
}

// SelectionState is what survives a view being destroyed and recreated.
type SelectionState struct {
	ScrollPosition     *int            `json:"scrollPosition,omitempty"`
	SelectedRowLocator weather.Locator `json:"selectedRowLocator,omitempty"`
}

// Preferences reads the user's settings.
type Preferences interface {
	Location() string
	IsMetric() bool
}

// RowSource is what a list renderer binds visible rows from.
type RowSource interface {
	Len() int
	Kind(position int) ViewKind
	Bind(position int) (RowViewModel, bool)
}

// ListView renders forecast rows.
type ListView interface {
	// SwapData replaces the rows being rendered. A nil source renders nothing.
	SwapData(src RowSource)
	ScrollTo(position int)
}

// DetailView renders a single forecast day.
type DetailView interface {
	Show(vm RowViewModel)
	Clear()
}

// ShareIntent is a plain payload handed to the platform share surface.
// The zero value means there is nothing to share.
type ShareIntent struct {
	MIMEType string `json:"mimeType,omitempty"`
	Text     string `json:"text,omitempty"`
}

// ShareProvider accepts share payload updates at any time.
type ShareProvider interface {
	SetShareIntent(intent ShareIntent)
}

// Navigator presents a detail screen for a row.
type Navigator interface {
	ShowDetail(locator weather.Locator)
}

// SyncTrigger asks for the store to be refreshed. It must not block.
type SyncTrigger interface {
	SyncNow(location string)
}

// Callback is notified when a list row is activated.
type Callback interface {
	OnItemSelected(locator weather.Locator)
}

// ErrorReporter receives query failures worth surfacing to the user.
type ErrorReporter interface {
	ReportError(err error)
}

// Env bundles what every controller needs to load and project data.
type Env struct {
	Querier      loader.Querier
	Poster       loader.Poster
	QueryTimeout time.Duration
	// Go overrides how background queries are started; nil starts goroutines.
	Go          func(fn func())
	Preferences Preferences
	Formatter   Formatter
	Clock       clock.Clock
	Errors      ErrorReporter
	Logger      *slog.Logger
}

func (e Env) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.Default()
	}
	return e.Logger
}

func (e Env) timeSource() clock.Clock {
	if e.Clock == nil {
		return clock.WallClock
	}
	return e.Clock
}

func (e Env) newLoader(name string, cb loader.Callbacks) *loader.Loader {
	return loader.New(loader.Config{
		Name:    name,
		Querier: e.Querier,
		Poster:  e.Poster,
		Logger:  e.logger(),
		Timeout: e.QueryTimeout,
		Go:      e.Go,
	}, cb)
}

func (e Env) reportError(err error) {
	if e.Errors != nil {
		e.Errors.ReportError(err)
	}
}
