package chain_test

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.klb.dev/clipview/internal/chain"
	"go.klb.dev/clipview/internal/chain/memchain"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

// recorder wraps a transport and records every Send.
type recorder struct {
	chain.Transport
	sent []sent
}

type sent struct {
	to  chain.Handle
	msg chain.Message
}

func (r *recorder) Send(to chain.Handle, msg chain.Message) error {
	r.sent = append(r.sent, sent{to, msg})
	return r.Transport.Send(to, msg)
}

// viewer is a participant with a counting callback.
type viewer struct {
	h     chain.Handle
	m     *chain.Monitor
	calls int
	fail  error
}

func newViewer(t *testing.T, tr chain.Transport, h chain.Handle) *viewer {
	t.Helper()
	v := &viewer{h: h, m: chain.NewMonitor(tr, chain.WithLogger(quiet))}
	_, err := v.m.Register(h, func() error {
		v.calls++
		return v.fail
	})
	require.NoError(t, err)
	return v
}

func TestRegisterDeliversInitialChange(t *testing.T) {
	bus := memchain.New()
	a := newViewer(t, bus, bus.NewWindow())

	assert.True(t, a.m.IsRegistered())
	assert.Equal(t, 1, a.calls, "insert must trigger the initial draw")
	assert.Equal(t, chain.ChainHandle{Self: a.h, Next: 0}, a.m.Handle())
	assert.Equal(t, a.h, bus.Head())
}

func TestRegisterTwice(t *testing.T) {
	bus := memchain.New()
	a := newViewer(t, bus, bus.NewWindow())

	_, err := a.m.Register(a.h, func() error { return nil })
	assert.ErrorIs(t, err, chain.ErrAlreadyRegistered)
	assert.True(t, a.m.IsRegistered(), "rejected call must not disturb the registration")
}

func TestRegisterNilCallback(t *testing.T) {
	bus := memchain.New()
	m := chain.NewMonitor(bus, chain.WithLogger(quiet))
	_, err := m.Register(bus.NewWindow(), nil)
	assert.Error(t, err)
	assert.False(t, m.IsRegistered())
}

func TestDeregisterIdempotent(t *testing.T) {
	bus := memchain.New()
	m := chain.NewMonitor(bus, chain.WithLogger(quiet))
	assert.NoError(t, m.Deregister())

	a := newViewer(t, bus, bus.NewWindow())
	require.NoError(t, a.m.Deregister())
	assert.NoError(t, a.m.Deregister())
	assert.False(t, a.m.IsRegistered())
	assert.Equal(t, chain.ChainHandle{}, a.m.Handle())
	assert.False(t, bus.Hooked(a.h))
	assert.Equal(t, chain.Handle(0), bus.Head())
}

func TestContentChangedForwardsToNext(t *testing.T) {
	bus := memchain.New()
	rec := &recorder{Transport: bus}
	a := newViewer(t, rec, bus.NewWindow())
	b := newViewer(t, rec, bus.NewWindow())
	require.Equal(t, a.h, b.m.Handle().Next)

	rec.sent = nil
	require.NoError(t, bus.Write())

	assert.Equal(t, 2, b.calls)
	assert.Equal(t, 2, a.calls)
	require.Len(t, rec.sent, 1)
	assert.Equal(t, a.h, rec.sent[0].to)
	assert.Equal(t, chain.ContentChanged, rec.sent[0].msg.Kind)
}

func TestChainChangedRelinksOrForwards(t *testing.T) {
	bus := memchain.New()
	rec := &recorder{Transport: bus}
	a := newViewer(t, rec, bus.NewWindow())
	b := newViewer(t, rec, bus.NewWindow())
	c := newViewer(t, rec, bus.NewWindow())
	// chain: c -> b -> a

	rec.sent = nil
	require.NoError(t, a.m.Deregister())

	// c is not a's predecessor, so it forwards unchanged; b relinks.
	require.Len(t, rec.sent, 1)
	assert.Equal(t, b.h, rec.sent[0].to)
	assert.Equal(t, chain.Message{Kind: chain.ChainChanged, Removed: a.h, Replacement: 0}, rec.sent[0].msg)
	assert.Equal(t, chain.Handle(0), b.m.Handle().Next)
	assert.Equal(t, b.h, c.m.Handle().Next)
}

func TestChainChangedAtEndIsNotForwarded(t *testing.T) {
	bus := memchain.New()
	rec := &recorder{Transport: bus}
	a := newViewer(t, rec, bus.NewWindow())

	rec.sent = nil
	require.NoError(t, a.m.HandleMessage(chain.Message{Kind: chain.ChainChanged, Removed: 99, Replacement: 98}))
	assert.Empty(t, rec.sent)
	assert.Equal(t, chain.Handle(0), a.m.Handle().Next)
}

func TestCallbackFailureDeregistersThenPropagates(t *testing.T) {
	bus := memchain.New()
	a := newViewer(t, bus, bus.NewWindow())
	b := newViewer(t, bus, bus.NewWindow())

	boom := errors.New("boom")
	b.fail = boom
	err := bus.Write()

	var cbErr *chain.CallbackError
	require.ErrorAs(t, err, &cbErr)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, b.h, cbErr.Self)

	assert.False(t, b.m.IsRegistered())
	assert.False(t, bus.Hooked(b.h))
	assert.Equal(t, a.h, bus.Head(), "the chain must skip the failed viewer")

	// The failed viewer does not forward, and is not re-registered.
	assert.Equal(t, 1, a.calls)
	require.NoError(t, bus.Write())
	assert.Equal(t, 2, a.calls)
	assert.Equal(t, 2, b.calls)
}

func TestCallbackFailureInMiddleKeepsChainLinked(t *testing.T) {
	var failures []chain.Handle
	bus := memchain.New(memchain.WithErrorHandler(func(h chain.Handle, _ error) {
		failures = append(failures, h)
	}))
	a := newViewer(t, bus, bus.NewWindow())
	b := newViewer(t, bus, bus.NewWindow())
	c := newViewer(t, bus, bus.NewWindow())
	// chain: c -> b -> a

	b.fail = errors.New("b broke")
	require.NoError(t, bus.Write())

	assert.Equal(t, []chain.Handle{b.h}, failures)
	assert.False(t, b.m.IsRegistered())
	assert.Equal(t, a.h, c.m.Handle().Next, "c must be relinked past b")

	before := a.calls
	require.NoError(t, bus.Write())
	assert.Equal(t, before+1, a.calls)
}

func TestInitialCallbackFailureDoesNotOrphanChain(t *testing.T) {
	bus := memchain.New(memchain.WithErrorHandler(func(chain.Handle, error) {}))
	a := newViewer(t, bus, bus.NewWindow())

	h := bus.NewWindow()
	m := chain.NewMonitor(bus, chain.WithLogger(quiet))
	_, err := m.Register(h, func() error { return errors.New("no display") })

	var cbErr *chain.CallbackError
	require.ErrorAs(t, err, &cbErr)
	assert.False(t, m.IsRegistered())
	assert.Equal(t, a.h, bus.Head(), "the previous head must be restored")
}

func TestCallbackPanicDeregistersThenRepanics(t *testing.T) {
	bus := memchain.New()
	a := newViewer(t, bus, bus.NewWindow())

	h := bus.NewWindow()
	m := chain.NewMonitor(bus, chain.WithLogger(quiet))
	first := true
	_, err := m.Register(h, func() error {
		if first {
			first = false
			return nil
		}
		panic("kaboom")
	})
	require.NoError(t, err)

	assert.PanicsWithValue(t, "kaboom", func() { _ = bus.Write() })
	assert.False(t, m.IsRegistered())
	assert.Equal(t, a.h, bus.Head())
}

func TestUnregisteredMonitorIgnoresMessages(t *testing.T) {
	bus := memchain.New()
	m := chain.NewMonitor(bus, chain.WithLogger(quiet))
	assert.NoError(t, m.HandleMessage(chain.Message{Kind: chain.ContentChanged}))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "content-changed", chain.ContentChanged.String())
	assert.Equal(t, "chain-changed", chain.ChainChanged.String())
	assert.Equal(t, "kind(7)", chain.Kind(7).String())
}
