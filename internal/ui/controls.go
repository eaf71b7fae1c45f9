package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/storefront/internal/render"
)

// controlRegistry binds persistent page controls to their handlers. A
// fragment lists its controls on every render; a control that is already
// bound keeps its handler instead of gaining a second one.
type controlRegistry struct {
	handlers map[render.Control]tea.Cmd
	binds    int
}

func newControlRegistry() *controlRegistry {
	return &controlRegistry{handlers: make(map[render.Control]tea.Cmd)}
}

// sync binds the controls in want that are not bound yet and releases the
// ones no longer rendered.
func (r *controlRegistry) sync(want []render.Control, handler func(render.Control) tea.Cmd) {
	keep := make(map[render.Control]struct{}, len(want))
	for _, c := range want {
		keep[c] = struct{}{}
		if _, bound := r.handlers[c]; bound {
			continue
		}
		cmd := handler(c)
		if cmd == nil {
			continue
		}
		r.handlers[c] = cmd
		r.binds++
	}
	for c := range r.handlers {
		if _, ok := keep[c]; !ok {
			delete(r.handlers, c)
		}
	}
}

func (r *controlRegistry) handler(c render.Control) (tea.Cmd, bool) {
	cmd, ok := r.handlers[c]
	return cmd, ok
}

func (r *controlRegistry) bound(c render.Control) bool {
	_, ok := r.handlers[c]
	return ok
}
