// Package session defines the explicit value threaded through every
// cobra command instead of a module-global context, so commands stay
// testable without mutating package state.
package session

import (
	"context"

	"go.uber.org/zap"

	"github.com/benjaminabbitt/hostcli/internal/hostversion"
	"github.com/benjaminabbitt/hostcli/internal/platform"
	"github.com/benjaminabbitt/hostcli/internal/repository"
)

// Session carries the resolved, per-invocation state every command
// operates against: the selected repository, the detected (or
// overridden) platform and host version, whether prompts are allowed, and
// the logger sink.
type Session struct {
	Repository  repository.Repository
	Platform    platform.Tag
	HostVersion hostversion.Version
	Interactive bool
	Logger      *zap.SugaredLogger
	HostUserDir string
	CacheDir    string
	PluginsDir  string

	// Ctx is canceled when the process receives an interrupt signal. Nil
	// only in tests that construct a Session directly; Context falls back
	// to context.Background() in that case.
	Ctx context.Context
}

// Context returns the session's cancellable context, or a background
// context carrying no cancellation if none was set. Commands derive any
// further deadline/cancellation from this at the point they start a
// long-running operation, so an interrupt during that operation surfaces
// as ctx.Err() rather than killing the process mid-write.
func (s *Session) Context() context.Context {
	if s.Ctx != nil {
		return s.Ctx
	}
	return context.Background()
}
