// Package render is the in-process stand-in for the on-screen widgets: a
// recycling list, a detail pane and a share surface. It keeps what would be
// drawn so the host surface can serve it.
//
// Like the controllers, everything here runs on the control thread.
package render

import (
	"fmt"
	"log/slog"

	"github.com/i474232898/sunshine/internal/binding"
)

// DefaultWindow is the number of rows laid out at once.
const DefaultWindow = 10

// rowView is one recyclable row widget. Its kind is fixed at creation.
type rowView struct {
	id   int
	kind binding.ViewKind
	vm   binding.RowViewModel
}

func (v *rowView) bind(vm binding.RowViewModel) error {
	if vm.Kind != v.kind {
		return fmt.Errorf("row %d of kind %s cannot show a %s row", v.id, v.kind, vm.Kind)
	}
	v.vm = vm
	return nil
}

// PoolStats counts row widgets per view kind.
type PoolStats struct {
	Created map[string]int `json:"created"`
	Idle    map[string]int `json:"idle"`
}

// ListSnapshot is what the list currently shows.
type ListSnapshot struct {
	First int                    `json:"first"`
	Count int                    `json:"count"`
	Total int                    `json:"total"`
	Rows  []binding.RowViewModel `json:"rows"`
	Pools PoolStats              `json:"pools"`
}

// List lays out a window of rows from a binding.RowSource, reusing row
// widgets from one pool per view kind.
type List struct {
	logger *slog.Logger
	src    binding.RowSource

	first, count int
	visible      []*rowView

	pools   [binding.ViewKindCount][]*rowView
	created [binding.ViewKindCount]int
	nextID  int
}

// NewList returns an empty list showing window rows at a time.
func NewList(window int, logger *slog.Logger) *List {
	if window <= 0 {
		window = DefaultWindow
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &List{count: window, logger: logger.With(slog.String("view", "list"))}
}

// SwapData implements binding.ListView.
func (l *List) SwapData(src binding.RowSource) {
	l.src = src
	l.layout()
}

// ScrollTo implements binding.ListView.
func (l *List) ScrollTo(position int) {
	l.SetWindow(position, l.count)
}

// SetWindow moves the visible window and lays it out again.
func (l *List) SetWindow(first, count int) {
	if first < 0 {
		first = 0
	}
	if count > 0 {
		l.count = count
	}
	l.first = first
	l.layout()
}

// Len returns the number of rows the source offers.
func (l *List) Len() int {
	if l.src == nil {
		return 0
	}
	return l.src.Len()
}

// Snapshot returns the rows currently laid out.
func (l *List) Snapshot() ListSnapshot {
	s := ListSnapshot{
		First: l.first,
		Count: l.count,
		Total: l.Len(),
		Rows:  make([]binding.RowViewModel, 0, len(l.visible)),
		Pools: l.Stats(),
	}
	for _, v := range l.visible {
		s.Rows = append(s.Rows, v.vm)
	}
	return s
}

// Stats reports the pools.
func (l *List) Stats() PoolStats {
	st := PoolStats{
		Created: make(map[string]int, binding.ViewKindCount),
		Idle:    make(map[string]int, binding.ViewKindCount),
	}
	for k := binding.ViewKind(0); k < binding.ViewKindCount; k++ {
		st.Created[k.String()] = l.created[k]
		st.Idle[k.String()] = len(l.pools[k])
	}
	return st
}

func (l *List) layout() {
	for _, v := range l.visible {
		l.recycle(v)
	}
	l.visible = l.visible[:0]

	total := l.Len()
	if l.first >= total && total > 0 {
		l.first = total - 1
	}
	for pos := l.first; pos < total && pos < l.first+l.count; pos++ {
		vm, ok := l.src.Bind(pos)
		if !ok {
			// The source went away under us; show what was bound so far.
			l.logger.Debug("row not bindable", slog.Int("position", pos))
			break
		}
		v := l.obtain(l.src.Kind(pos))
		if err := v.bind(vm); err != nil {
			l.logger.Error("row kind mismatch", slog.Any("error", err))
			l.recycle(v)
			continue
		}
		l.visible = append(l.visible, v)
	}
}

func (l *List) obtain(kind binding.ViewKind) *rowView {
	pool := l.pools[kind]
	if n := len(pool); n > 0 {
		v := pool[n-1]
		l.pools[kind] = pool[:n-1]
		return v
	}
	l.nextID++
	l.created[kind]++
	return &rowView{id: l.nextID, kind: kind}
}

func (l *List) recycle(v *rowView) {
	v.vm = binding.RowViewModel{}
	l.pools[v.kind] = append(l.pools[v.kind], v)
}
