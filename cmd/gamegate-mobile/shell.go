// SPDX-License-Identifier: Apache-2.0
package main

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/hashicorp/go-hclog"
	"github.com/provide-io/gamegate/internal/acquire"
	"github.com/provide-io/gamegate/internal/bootstrap"
	"github.com/provide-io/gamegate/internal/gate"
	"github.com/provide-io/gamegate/internal/host/mobile"
	"github.com/provide-io/gamegate/internal/roots"
	"github.com/provide-io/gamegate/internal/surface"
	"golang.org/x/mobile/event/lifecycle"
)

// shell connects the app event loop to the gate session and the surface
// tracker.
type shell struct {
	ctx      context.Context
	adapter  *mobile.Adapter
	layout   *surface.Stream
	tracker  *surface.Tracker
	viewport *mobile.Viewport
	session  *gate.Session
	logger   hclog.Logger

	mu       sync.Mutex
	attached bool
	starting bool
	done     chan struct{}
}

// setup builds a shell from the default configuration.
func setup(ctx context.Context, exit func(int)) (*shell, error) {
	cfg, err := bootstrap.LoadConfig("")
	if err != nil {
		return nil, err
	}
	logger := bootstrap.NewLogger("gamegate-mobile", cfg, "")
	c, err := bootstrap.Build(cfg, roots.OSEnv(), logger)
	if err != nil {
		return nil, err
	}
	acq, err := c.Acquirer(os.Stderr)
	if err != nil {
		return nil, err
	}
	eng, err := c.Launcher()
	if err != nil {
		return nil, err
	}

	hostVersion := cfg.Surface.HostVersion
	if hostVersion == 0 {
		hostVersion = mobile.SDKVersion()
	}
	workaround, err := surface.Decide(cfg.Surface.Workaround, hostVersion, cfg.Surface.MinHostVersion)
	if err != nil {
		return nil, err
	}
	logger.Debug("📐 Surface workaround", "enabled", workaround, "host_version", hostVersion)

	return newShell(ctx, c.Gate(), acq, eng, workaround, exit, logger), nil
}

func newShell(ctx context.Context, g *gate.Gate, acq acquire.Acquirer, eng gate.Launcher, workaround bool, exit func(int), logger hclog.Logger) *shell {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	s := &shell{
		ctx:      ctx,
		layout:   surface.NewStream(),
		viewport: &mobile.Viewport{},
		logger:   logger,
	}
	s.adapter = mobile.NewAdapter(s.layout, logger)
	s.tracker = surface.NewTracker(s.adapter, s.surface, logger)
	s.session = gate.NewSession(g, acq, eng, exit, logger)

	s.adapter.OnStart(s.start)
	s.adapter.OnDestroy(s.destroy)
	if workaround {
		s.tracker.Arm(s.layout)
	}
	return s
}

// Handle feeds one app event through the shell. It never blocks on the
// engine.
func (s *shell) Handle(e interface{}) {
	if le, ok := e.(lifecycle.Event); ok {
		switch le.Crosses(lifecycle.StageVisible) {
		case lifecycle.CrossOn:
			s.setAttached(true)
		case lifecycle.CrossOff:
			s.setAttached(false)
		}
	}
	s.adapter.Handle(e)
}

func (s *shell) setAttached(v bool) {
	s.mu.Lock()
	s.attached = v
	s.mu.Unlock()
	if v {
		s.layout.Publish()
	}
}

func (s *shell) surface() surface.Surface {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.attached {
		return nil
	}
	return s.viewport
}

// start runs the session off the UI goroutine. A start while one is still
// running is dropped.
func (s *shell) start() {
	s.mu.Lock()
	if s.starting {
		s.mu.Unlock()
		return
	}
	s.starting = true
	done := make(chan struct{})
	s.done = done
	s.mu.Unlock()

	go func() {
		defer close(done)
		defer func() {
			s.mu.Lock()
			s.starting = false
			s.mu.Unlock()
		}()
		if err := s.session.OnStart(s.ctx); err != nil {
			s.logger.Error("❌ Start failed", "error", err)
		}
	}()
}

// wait blocks until the current start, if any, has returned.
func (s *shell) wait() {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done != nil {
		<-done
	}
}

func (s *shell) destroy() {
	s.tracker.Release()
	s.session.OnDestroy()
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "gamegate-mobile: %v\n", err)
	os.Exit(1)
}
