package clip

import "context"

// headlessBackend is used when no display server is reachable. It never holds
// text and never signals a change.
type headlessBackend struct{}

func (headlessBackend) Name() string                            { return "headless (no-op)" }
func (headlessBackend) ContainsText() bool                      { return false }
func (headlessBackend) Text() (string, error)                   { return "", nil }
func (headlessBackend) Watch(_ context.Context) <-chan struct{} { return make(chan struct{}) }
