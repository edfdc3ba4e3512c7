package render

import (
	"github.com/i474232898/sunshine/internal/binding"
)

// DetailPane shows a single forecast day.
type DetailPane struct {
	vm    binding.RowViewModel
	shown bool
}

// Show implements binding.DetailView.
func (p *DetailPane) Show(vm binding.RowViewModel) {
	p.vm = vm
	p.shown = true
}

// Clear implements binding.DetailView.
func (p *DetailPane) Clear() {
	p.vm = binding.RowViewModel{}
	p.shown = false
}

// Snapshot returns the day on display, if any.
func (p *DetailPane) Snapshot() (binding.RowViewModel, bool) {
	return p.vm, p.shown
}

// ShareSurface holds the payload the share action would send.
type ShareSurface struct {
	intent binding.ShareIntent
}

// SetShareIntent implements binding.ShareProvider.
func (s *ShareSurface) SetShareIntent(intent binding.ShareIntent) {
	s.intent = intent
}

// Current returns the payload, or the zero intent when nothing is shareable.
func (s *ShareSurface) Current() binding.ShareIntent {
	return s.intent
}
