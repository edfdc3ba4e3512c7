// Package loader runs asynchronous queries on behalf of a single controller
// and delivers their results back on the control thread.
//
// A Loader keeps at most one request outstanding. Issuing a new load cancels
// the previous request and any completion that arrives for it is discarded,
// so results are applied in issuance order no matter how the queries finish.
package loader

import (
	"context"
	"log/slog"
	"time"

	"github.com/i474232898/sunshine/internal/query"
)

// Querier executes a query against the forecast store.
type Querier interface {
	Query(ctx context.Context, d query.Descriptor) (query.ResultSet, error)
}

// Observable is implemented by stores that announce content changes.
type Observable interface {
	Subscribe(fn func()) (unsubscribe func())
}

// Poster hands a func to the control thread.
type Poster interface {
	Post(fn func()) bool
}

// Callbacks receives load outcomes. Every method runs on the control thread.
type Callbacks interface {
	// LoadFinished delivers a non-empty result set. The loader owns it and
	// closes it once a newer result supersedes it or the loader is reset.
	LoadFinished(rs query.ResultSet)
	// LoadEmpty reports that the store returned no rows.
	LoadEmpty()
	// LoadFailed reports a failed query. It is not retried.
	LoadFailed(err error)
	// LoaderReset reports that the current result set is about to be closed.
	LoaderReset()
	// ContentChanged reports that the store's content changed since the last load.
	ContentChanged()
}

// Handle identifies one issued load.
type Handle struct {
	seq uint64
}

// Valid reports whether h refers to an issued load.
func (h Handle) Valid() bool { return h.seq != 0 }

// Config configures a Loader.
type Config struct {
	Name    string
	Querier Querier
	Poster  Poster
	Logger  *slog.Logger
	// Timeout bounds each query. Zero means no timeout.
	Timeout time.Duration
	// Go runs background work. Defaults to starting a goroutine.
	Go func(fn func())
}

type request struct {
	handle Handle
	cancel context.CancelFunc
}

// Loader is not safe for concurrent use; call it from the control thread only.
type Loader struct {
	cfg Config
	cb  Callbacks

	seq         uint64
	pending     *request
	current     query.ResultSet
	unsubscribe func()
}

// New creates a loader that reports to cb.
func New(cfg Config, cb Callbacks) *Loader {
	if cfg.Go == nil {
		cfg.Go = func(fn func()) { go fn() }
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	cfg.Logger = cfg.Logger.With(slog.String("loader", cfg.Name))
	return &Loader{cfg: cfg, cb: cb}
}

// Load issues d, superseding any outstanding load.
func (l *Loader) Load(d query.Descriptor) Handle {
	if l.pending != nil {
		l.cfg.Logger.Debug("superseding outstanding load", slog.Uint64("seq", l.pending.handle.seq))
		l.pending.cancel()
	}

	l.seq++
	h := Handle{seq: l.seq}

	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if l.cfg.Timeout > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), l.cfg.Timeout)
	} else {
		ctx, cancel = context.WithCancel(context.Background())
	}
	l.pending = &request{handle: h, cancel: cancel}
	l.subscribe()

	l.cfg.Logger.Debug("issuing load", slog.Uint64("seq", h.seq), slog.String("query", d.String()))

	querier, poster := l.cfg.Querier, l.cfg.Poster
	l.cfg.Go(func() {
		rs, err := querier.Query(ctx, d)
		cancel()
		if !poster.Post(func() { l.deliver(h, rs, err) }) && rs != nil {
			rs.Close()
		}
	})
	return h
}

// Cancel abandons h if it is still outstanding. Cancellation is advisory: the
// query may still run to completion, but its result is never delivered.
func (l *Loader) Cancel(h Handle) {
	if l.pending == nil || l.pending.handle != h {
		return
	}
	l.pending.cancel()
	l.pending = nil
}

// Pending reports whether a load is outstanding.
func (l *Loader) Pending() bool {
	return l.pending != nil
}

// Reset cancels any outstanding load, stops observing the store and releases
// the current result set.
func (l *Loader) Reset() {
	if l.pending != nil {
		l.pending.cancel()
		l.pending = nil
	}
	if l.unsubscribe != nil {
		l.unsubscribe()
		l.unsubscribe = nil
	}

	prev := l.current
	l.current = nil
	l.cb.LoaderReset()
	if prev != nil {
		prev.Close()
	}
}

func (l *Loader) deliver(h Handle, rs query.ResultSet, err error) {
	if l.pending == nil || l.pending.handle != h {
		l.cfg.Logger.Debug("dropping stale delivery", slog.Uint64("seq", h.seq))
		if rs != nil {
			rs.Close()
		}
		return
	}
	l.pending = nil

	if err != nil {
		l.cfg.Logger.Warn("query failed", slog.Uint64("seq", h.seq), slog.Any("error", err))
		if rs != nil {
			rs.Close()
		}
		l.cb.LoadFailed(err)
		return
	}

	prev := l.current
	if rs == nil || rs.Len() == 0 {
		l.cfg.Logger.Debug("query returned no rows", slog.Uint64("seq", h.seq))
		if rs != nil {
			rs.Close()
		}
		l.current = nil
		l.cb.LoadEmpty()
	} else {
		l.current = rs
		l.cb.LoadFinished(rs)
	}
	if prev != nil && prev != l.current {
		prev.Close()
	}
}

func (l *Loader) subscribe() {
	if l.unsubscribe != nil {
		return
	}
	obs, ok := l.cfg.Querier.(Observable)
	if !ok {
		return
	}
	poster := l.cfg.Poster
	l.unsubscribe = obs.Subscribe(func() {
		poster.Post(l.contentChanged)
	})
}

func (l *Loader) contentChanged() {
	if l.unsubscribe == nil {
		// Reset raced the notification.
		return
	}
	l.cb.ContentChanged()
}
