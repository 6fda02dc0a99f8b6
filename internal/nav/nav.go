// Package nav resolves navigation paths to dashboard views.
package nav

import (
	"strings"

	"github.com/tinytelemetry/logdash/internal/model"
)

// Root is the entry path; it always lands on the default view.
const Root = "/"

// Resolve maps a path such as "/logs" or "logs" to a view. The root path,
// the empty path and unknown paths all resolve to defaultView. An invalid
// defaultView falls back to the dashboard.
func Resolve(path string, defaultView model.View) model.View {
	if !defaultView.Valid() {
		defaultView = model.ViewDashboard
	}
	trimmed := strings.Trim(strings.TrimSpace(path), "/")
	if trimmed == "" {
		return defaultView
	}
	v, err := model.ParseView(trimmed)
	if err != nil {
		return defaultView
	}
	return v
}

// PathOf returns the canonical path of a view.
func PathOf(v model.View) string {
	return Root + string(v)
}

// Transition describes a view change.
type Transition struct {
	From model.View
	To   model.View
}

// Router tracks the current view and fires hooks when it changes.
// It is not safe for concurrent use; the TUI drives it from Update.
type Router struct {
	current     model.View
	defaultView model.View
	onLeave     []func(model.View)
	onEnter     []func(model.View)
}

// NewRouter starts at the root state; call Go to land on a view.
func NewRouter(defaultView model.View) *Router {
	return &Router{defaultView: Resolve(string(defaultView), model.ViewDashboard)}
}

// Current returns the active view, empty while still at the root.
func (r *Router) Current() model.View { return r.current }

// Default returns the view that root and unknown paths resolve to.
func (r *Router) Default() model.View { return r.defaultView }

// SetDefault changes the redirect target. The current view is unaffected.
func (r *Router) SetDefault(v model.View) {
	if v.Valid() {
		r.defaultView = v
	}
}

// OnLeave registers fn to run with the view being left.
func (r *Router) OnLeave(fn func(model.View)) { r.onLeave = append(r.onLeave, fn) }

// OnEnter registers fn to run with the view being entered.
func (r *Router) OnEnter(fn func(model.View)) { r.onEnter = append(r.onEnter, fn) }

// Go resolves path and switches to it. It reports false when the view did
// not change; hooks only fire on a change.
func (r *Router) Go(path string) (Transition, bool) {
	return r.switchTo(Resolve(path, r.defaultView))
}

// Next moves to the following view in navigation order, wrapping around.
func (r *Router) Next() (Transition, bool) { return r.step(1) }

// Prev moves to the preceding view, wrapping around.
func (r *Router) Prev() (Transition, bool) { return r.step(-1) }

func (r *Router) step(delta int) (Transition, bool) {
	idx := 0
	for i, v := range model.Views {
		if v == r.current {
			idx = i
			break
		}
	}
	n := len(model.Views)
	return r.switchTo(model.Views[((idx+delta)%n+n)%n])
}

func (r *Router) switchTo(to model.View) (Transition, bool) {
	t := Transition{From: r.current, To: to}
	if to == r.current {
		return t, false
	}
	if r.current != "" {
		for _, fn := range r.onLeave {
			fn(r.current)
		}
	}
	r.current = to
	for _, fn := range r.onEnter {
		fn(to)
	}
	return t, true
}
