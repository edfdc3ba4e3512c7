// Package looper provides the single control thread every controller runs on.
// Background work never touches controller state directly; it posts a func
// and the looper runs posted funcs one at a time in FIFO order.
package looper

import (
	"context"
	"errors"
	"log/slog"

	"gopkg.in/tomb.v2"
)

// ErrStopped is returned by Call once the looper is dying.
var ErrStopped = errors.New("looper stopped")

// Looper runs posted funcs sequentially on one goroutine.
type Looper struct {
	tasks  chan func()
	tomb   tomb.Tomb
	logger *slog.Logger
}

// New starts a looper with the given queue depth.
func New(logger *slog.Logger, queue int) *Looper {
	if queue <= 0 {
		queue = 64
	}
	l := &Looper{
		tasks:  make(chan func(), queue),
		logger: logger,
	}
	l.tomb.Go(l.loop)
	return l
}

func (l *Looper) loop() error {
	for {
		select {
		case <-l.tomb.Dying():
			return tomb.ErrDying
		case fn := <-l.tasks:
			l.run(fn)
		}
	}
}

func (l *Looper) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("looper: task panicked", slog.Any("panic", r))
		}
	}()
	fn()
}

// Post queues fn. It blocks while the queue is full and returns false if the
// looper is stopping.
func (l *Looper) Post(fn func()) bool {
	select {
	case <-l.tomb.Dying():
		return false
	default:
	}
	select {
	case l.tasks <- fn:
		return true
	case <-l.tomb.Dying():
		return false
	}
}

// Call runs fn on the looper and waits for it to finish.
// It must not be called from the looper goroutine itself.
func (l *Looper) Call(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	if !l.Post(func() {
		defer close(done)
		fn()
	}) {
		return ErrStopped
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.tomb.Dying():
		return ErrStopped
	}
}

// Kill asks the looper to stop. Queued funcs that have not started are dropped.
func (l *Looper) Kill() {
	l.tomb.Kill(nil)
}

// Wait blocks until the looper goroutine has exited.
func (l *Looper) Wait() error {
	return l.tomb.Wait()
}
