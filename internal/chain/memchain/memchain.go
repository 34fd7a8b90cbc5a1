// Package memchain is an in-process clipboard-viewer chain. It reproduces the
// observable behaviour of the Win32 chain (SetClipboardViewer,
// ChangeClipboardChain, SendMessage) closely enough to drive chain.Monitor on
// platforms without a native chain and to simulate many participants in
// tests.
//
// Like the OS chain, the Bus only knows the head; each participant's link to
// the next one lives in its own chain.Monitor.
package memchain

import (
	"errors"
	"fmt"
	"log/slog"

	"go.klb.dev/clipview/internal/chain"
)

// ErrNoWindow is returned when a message is addressed to a window that has no
// interceptor installed, i.e. a dangling link.
var ErrNoWindow = errors.New("memchain: no such window")

// Bus is the shared chain. It is not safe for concurrent use; like a window
// message loop it expects every call on one goroutine.
type Bus struct {
	head    chain.Handle
	hooks   map[chain.Handle]chain.Interceptor
	lastID  chain.Handle
	onError func(chain.Handle, error)
}

// Option configures a Bus.
type Option func(*Bus)

// WithErrorHandler sets the function called when a participant's interceptor
// fails while handling a message sent by another participant. Such failures
// never reach the sender, matching SendMessage across processes.
func WithErrorHandler(fn func(chain.Handle, error)) Option {
	return func(b *Bus) { b.onError = fn }
}

// New returns an empty chain.
func New(opts ...Option) *Bus {
	b := &Bus{
		hooks: make(map[chain.Handle]chain.Interceptor),
		onError: func(h chain.Handle, err error) {
			slog.Warn("clipboard viewer failed", "window", h, "err", err)
		},
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// NewWindow allocates a fresh participant identity.
func (b *Bus) NewWindow() chain.Handle {
	b.lastID++
	return b.lastID
}

// Head returns the first participant, or zero if the chain is empty.
func (b *Bus) Head() chain.Handle { return b.head }

// Hooked reports whether h currently has an interceptor installed.
func (b *Bus) Hooked(h chain.Handle) bool {
	_, ok := b.hooks[h]
	return ok
}

// Hook implements chain.Transport.
func (b *Bus) Hook(self chain.Handle, fn chain.Interceptor) error {
	if self == 0 {
		return fmt.Errorf("memchain: hook: zero window")
	}
	if _, ok := b.hooks[self]; ok {
		return fmt.Errorf("memchain: window %d already hooked", self)
	}
	b.hooks[self] = fn
	return nil
}

// Unhook implements chain.Transport.
func (b *Bus) Unhook(self chain.Handle) { delete(b.hooks, self) }

// Insert implements chain.Transport. As with SetClipboardViewer the new head
// receives a ContentChanged before Insert returns.
func (b *Bus) Insert(self chain.Handle) (chain.Handle, error) {
	if _, ok := b.hooks[self]; !ok {
		return 0, fmt.Errorf("memchain: insert %d: %w", self, ErrNoWindow)
	}
	prev := b.head
	b.head = self
	b.deliver(self, chain.Message{Kind: chain.ContentChanged})
	return prev, nil
}

// Remove implements chain.Transport. Removing the head relinks the head
// directly; otherwise a ChainChanged travels from the head until the
// predecessor of self relinks itself.
func (b *Bus) Remove(self, next chain.Handle) error {
	if b.head == self {
		b.head = next
		return nil
	}
	if b.head == 0 {
		return nil
	}
	return b.Send(b.head, chain.Message{Kind: chain.ChainChanged, Removed: self, Replacement: next})
}

// Send implements chain.Transport.
func (b *Bus) Send(to chain.Handle, msg chain.Message) error {
	if _, ok := b.hooks[to]; !ok {
		return fmt.Errorf("memchain: send %s to %d: %w", msg.Kind, to, ErrNoWindow)
	}
	b.deliver(to, msg)
	return nil
}

func (b *Bus) deliver(to chain.Handle, msg chain.Message) {
	if err := b.hooks[to](msg); err != nil && b.onError != nil {
		b.onError(to, err)
	}
}

// Write simulates a clipboard write: the head receives a ContentChanged and
// is responsible for passing it on. The head's interceptor error is returned
// to the caller, which plays the part of the head's message loop.
func (b *Bus) Write() error {
	if b.head == 0 {
		return nil
	}
	fn, ok := b.hooks[b.head]
	if !ok {
		return fmt.Errorf("memchain: write: head %d: %w", b.head, ErrNoWindow)
	}
	return fn(chain.Message{Kind: chain.ContentChanged})
}
