// SPDX-License-Identifier: Apache-2.0
package gate

import (
	"context"
	"sync"

	"github.com/hashicorp/go-hclog"
	"github.com/provide-io/gamegate/internal/acquire"
)

// Session drives a Gate from host start/destroy notifications. A normal
// close ends the process so no in-process state leaks into the next
// launch; a run that handed off to acquisition is left alive.
type Session struct {
	gate     *Gate
	acquirer acquire.Acquirer
	launcher Launcher
	exit     func(code int)
	logger   hclog.Logger

	mu        sync.Mutex
	handedOff bool
	exitCode  int
}

// NewSession returns a Session. exit is called from OnDestroy.
func NewSession(g *Gate, acq acquire.Acquirer, eng Launcher, exit func(int), logger hclog.Logger) *Session {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Session{gate: g, acquirer: acq, launcher: eng, exit: exit, logger: logger.Named("session")}
}

// OnStart evaluates the gate, then starts either acquisition or the engine.
func (s *Session) OnStart(ctx context.Context) error {
	out := s.gate.Evaluate()

	s.mu.Lock()
	s.handedOff = !out.Ready
	s.mu.Unlock()

	if !out.Ready {
		s.logger.Info("📥 Handing off to acquisition", "missing", out.Report.Files())
		return s.acquirer.Acquire(ctx, acquire.Request{
			Root:    out.Root,
			Locale:  out.Report.Locale,
			Missing: out.Report.Files(),
		})
	}

	code, err := s.launcher.Launch(ctx, out.Args)
	s.mu.Lock()
	s.exitCode = code
	s.mu.Unlock()
	return err
}

// HandedOff reports whether the last OnStart went to acquisition.
func (s *Session) HandedOff() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handedOff
}

// OnDestroy ends the process unless the run was handed off.
func (s *Session) OnDestroy() {
	s.mu.Lock()
	handedOff, code := s.handedOff, s.exitCode
	s.mu.Unlock()

	if handedOff {
		s.logger.Debug("Handed off, keeping process alive")
		return
	}
	s.logger.Debug("⏹️ Closing, ending process", "code", code)
	s.exit(code)
}
