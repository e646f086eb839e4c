// SPDX-License-Identifier: Apache-2.0
// Package mobile translates golang.org/x/mobile events into the launcher's
// start/destroy notifications and visible-frame updates.
package mobile

import (
	"sync"

	"github.com/hashicorp/go-hclog"
	"github.com/provide-io/gamegate/internal/surface"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/size"
)

// Adapter consumes app events on the UI goroutine.
type Adapter struct {
	layout *surface.Stream
	logger hclog.Logger

	mu        sync.Mutex
	frame     surface.Frame
	known     bool
	onStart   func()
	onDestroy func()
}

// NewAdapter publishes layout changes on layout.
func NewAdapter(layout *surface.Stream, logger hclog.Logger) *Adapter {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Adapter{layout: layout, logger: logger.Named("mobile")}
}

// OnStart registers the callback run each time the app becomes visible.
func (a *Adapter) OnStart(fn func()) {
	a.mu.Lock()
	a.onStart = fn
	a.mu.Unlock()
}

// OnDestroy registers the callback run when the app dies.
func (a *Adapter) OnDestroy(fn func()) {
	a.mu.Lock()
	a.onDestroy = fn
	a.mu.Unlock()
}

// VisibleFrame returns the window area from the latest size event. The
// window is resized by the host when the soft keyboard opens, so this is
// the area not covered by it.
func (a *Adapter) VisibleFrame() (surface.Frame, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.frame, a.known
}

// Handle dispatches one event. Unknown events are ignored.
func (a *Adapter) Handle(e interface{}) {
	switch e := e.(type) {
	case size.Event:
		a.mu.Lock()
		a.frame = surface.Frame{Width: e.WidthPx, Height: e.HeightPx}
		a.known = true
		a.mu.Unlock()
		a.layout.Publish()

	case lifecycle.Event:
		a.mu.Lock()
		start, destroy := a.onStart, a.onDestroy
		a.mu.Unlock()

		if e.Crosses(lifecycle.StageVisible) == lifecycle.CrossOn {
			a.logger.Debug("▶️ App visible", "from", e.From, "to", e.To)
			if start != nil {
				start()
			}
		}
		if e.To == lifecycle.StageDead {
			a.logger.Debug("⏹️ App dead")
			if destroy != nil {
				destroy()
			}
		}
	}
}
