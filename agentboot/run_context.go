package agentboot

import (
	"context"
	"maps"
	"sync"
)

type runContextKey struct{}

// runContext travels with the context of one Execute call so that tools,
// in particular delegate tools, can reach the caller's session.
type runContext struct {
	sessionID string
	reporter  ProgressReporter

	mu    sync.Mutex
	state map[string]string
}

func withRunContext(ctx context.Context, rc *runContext) context.Context {
	return context.WithValue(ctx, runContextKey{}, rc)
}

func runFromContext(ctx context.Context) *runContext {
	rc, _ := ctx.Value(runContextKey{}).(*runContext)
	return rc
}

func (rc *runContext) setState(key, value string) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.state[key] = value
}

func (rc *runContext) snapshot() map[string]string {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return maps.Clone(rc.state)
}

// SessionState returns a copy of the session state of the agent run carried
// by ctx, or nil outside of a run.
func SessionState(ctx context.Context) map[string]string {
	if rc := runFromContext(ctx); rc != nil {
		return rc.snapshot()
	}
	return nil
}
