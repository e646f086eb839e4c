// SPDX-License-Identifier: Apache-2.0
// Package surface keeps the engine's drawing surface sized to the part of
// the screen the soft keyboard does not cover.
package surface

import (
	"fmt"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"
)

// DefaultMinHostVersion is the first host version that shows the keyboard
// overlap problem.
const DefaultMinHostVersion = 25

// Workaround modes accepted by Decide.
const (
	ModeAuto = "auto"
	ModeOn   = "on"
	ModeOff  = "off"
)

// Frame is the visible display area in pixels.
type Frame struct {
	Width  int
	Height int
}

func (f Frame) String() string {
	return fmt.Sprintf("%dx%d", f.Width, f.Height)
}

// FrameSource reports the currently visible frame; false when unknown.
type FrameSource interface {
	VisibleFrame() (Frame, bool)
}

// FrameSourceFunc adapts a func to FrameSource.
type FrameSourceFunc func() (Frame, bool)

func (f FrameSourceFunc) VisibleFrame() (Frame, bool) { return f() }

// Surface is the rendering surface whose pixel size can be pinned.
type Surface interface {
	SetFixedSize(width, height int)
}

// SurfaceProvider returns the surface, or nil while it is not constructed yet.
type SurfaceProvider func() Surface

// NeedsWorkaround reports whether hostVersion is affected.
func NeedsWorkaround(hostVersion, minVersion int) bool {
	if minVersion <= 0 {
		minVersion = DefaultMinHostVersion
	}
	return hostVersion >= minVersion
}

// Decide applies a configured mode on top of NeedsWorkaround.
func Decide(mode string, hostVersion, minVersion int) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", ModeAuto:
		return NeedsWorkaround(hostVersion, minVersion), nil
	case ModeOn:
		return true, nil
	case ModeOff:
		return false, nil
	default:
		return false, fmt.Errorf("unknown surface workaround mode: %s", mode)
	}
}

// State of a Tracker.
type State int

const (
	Unarmed State = iota
	Armed
)

func (s State) String() string {
	if s == Armed {
		return "armed"
	}
	return "unarmed"
}

// Tracker pins the surface size to the visible frame on every layout change.
type Tracker struct {
	frames  FrameSource
	surface SurfaceProvider
	logger  hclog.Logger

	mu          sync.Mutex
	state       State
	unsubscribe func()
	applied     Frame
}

// NewTracker returns an unarmed Tracker. A nil frames or surface behaves as
// if nothing is available yet.
func NewTracker(frames FrameSource, surface SurfaceProvider, logger hclog.Logger) *Tracker {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if frames == nil {
		frames = FrameSourceFunc(func() (Frame, bool) { return Frame{}, false })
	}
	if surface == nil {
		surface = func() Surface { return nil }
	}
	return &Tracker{frames: frames, surface: surface, logger: logger.Named("surface")}
}

// Arm subscribes the tracker to events. Only the first call with a
// non-nil stream has an effect; there is no way back to Unarmed.
func (t *Tracker) Arm(events *Stream) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == Armed || events == nil {
		return false
	}
	t.state = Armed
	t.unsubscribe = events.Subscribe(t.OnLayout)
	t.logger.Debug("📐 Surface tracking armed")
	return true
}

// State returns the current state.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Applied returns the last frame pushed to the surface.
func (t *Tracker) Applied() Frame {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.applied
}

// OnLayout queries the visible frame and pins the surface to it. It does no
// I/O and is a no-op while the surface or the frame is unavailable.
func (t *Tracker) OnLayout() {
	s := t.surface()
	if s == nil {
		return
	}
	frame, ok := t.frames.VisibleFrame()
	if !ok || frame.Width <= 0 || frame.Height <= 0 {
		return
	}
	s.SetFixedSize(frame.Width, frame.Height)

	t.mu.Lock()
	changed := t.applied != frame
	t.applied = frame
	t.mu.Unlock()
	if changed {
		t.logger.Trace("Surface resized", "frame", frame.String())
	}
}

// Release unsubscribes from layout events. Call it when the surface is destroyed.
func (t *Tracker) Release() {
	t.mu.Lock()
	unsubscribe := t.unsubscribe
	t.unsubscribe = nil
	t.mu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}
}
