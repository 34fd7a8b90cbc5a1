package memchain

import (
	"io"
	"log/slog"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.klb.dev/clipview/internal/chain"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

type participant struct {
	h     chain.Handle
	m     *chain.Monitor
	calls int
}

// walk follows next links from h and fails on cycles or links to windows
// that are no longer in the chain.
func walk(t *testing.T, bus *Bus, byHandle map[chain.Handle]*participant, from chain.Handle) []chain.Handle {
	t.Helper()
	var path []chain.Handle
	seen := map[chain.Handle]bool{}
	for h := from; h != 0; {
		require.False(t, seen[h], "cycle at %d in %v", h, path)
		seen[h] = true
		p, ok := byHandle[h]
		require.True(t, ok, "link to unknown window %d", h)
		require.True(t, p.m.IsRegistered(), "link to deregistered window %d", h)
		require.True(t, bus.Hooked(h), "link to unhooked window %d", h)
		path = append(path, h)
		h = p.m.Handle().Next
	}
	return path
}

func TestChainIntegrityUnderRandomChurn(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	bus := New(WithErrorHandler(func(h chain.Handle, err error) {
		t.Fatalf("unexpected failure in %d: %v", h, err)
	}))
	byHandle := map[chain.Handle]*participant{}
	var live []*participant

	for step := 0; step < 500; step++ {
		if len(live) == 0 || rng.Intn(3) > 0 && len(live) < 12 {
			p := &participant{h: bus.NewWindow()}
			p.m = chain.NewMonitor(bus, chain.WithLogger(quiet))
			_, err := p.m.Register(p.h, func() error { p.calls++; return nil })
			require.NoError(t, err)
			byHandle[p.h] = p
			live = append(live, p)
		} else {
			i := rng.Intn(len(live))
			require.NoError(t, live[i].m.Deregister())
			live = append(live[:i], live[i+1:]...)
		}

		path := walk(t, bus, byHandle, bus.Head())
		assert.Len(t, path, len(live), "step %d: every live viewer must be reachable from the head", step)
		for _, p := range live {
			walk(t, bus, byHandle, p.h)
		}

		// Every live viewer sees exactly one notification per write.
		before := make(map[chain.Handle]int, len(live))
		for _, p := range live {
			before[p.h] = p.calls
		}
		require.NoError(t, bus.Write())
		for _, p := range live {
			assert.Equal(t, before[p.h]+1, p.calls, "step %d: viewer %d", step, p.h)
		}
	}

	for _, p := range live {
		require.NoError(t, p.m.Deregister())
	}
	assert.Equal(t, chain.Handle(0), bus.Head())
	assert.Empty(t, bus.hooks)
}

func TestInsertReturnsPreviousHead(t *testing.T) {
	bus := New()
	var got []chain.Message
	a := bus.NewWindow()
	require.NoError(t, bus.Hook(a, func(m chain.Message) error { got = append(got, m); return nil }))

	prev, err := bus.Insert(a)
	require.NoError(t, err)
	assert.Equal(t, chain.Handle(0), prev)
	assert.Equal(t, []chain.Message{{Kind: chain.ContentChanged}}, got)

	b := bus.NewWindow()
	require.NoError(t, bus.Hook(b, func(chain.Message) error { return nil }))
	prev, err = bus.Insert(b)
	require.NoError(t, err)
	assert.Equal(t, a, prev)
	assert.Equal(t, b, bus.Head())
}

func TestSendToDanglingWindow(t *testing.T) {
	bus := New()
	err := bus.Send(42, chain.Message{Kind: chain.ContentChanged})
	assert.ErrorIs(t, err, ErrNoWindow)

	_, err = bus.Insert(7)
	assert.ErrorIs(t, err, ErrNoWindow)
}

func TestHookValidation(t *testing.T) {
	bus := New()
	assert.Error(t, bus.Hook(0, func(chain.Message) error { return nil }))

	h := bus.NewWindow()
	require.NoError(t, bus.Hook(h, func(chain.Message) error { return nil }))
	assert.Error(t, bus.Hook(h, func(chain.Message) error { return nil }))

	bus.Unhook(h)
	assert.False(t, bus.Hooked(h))
}

func TestWriteOnEmptyChain(t *testing.T) {
	assert.NoError(t, New().Write())
}
