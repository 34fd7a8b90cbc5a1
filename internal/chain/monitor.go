package chain

import (
	"fmt"
	"log/slog"
)

// ChainHandle is the registration slot of a monitor: its own identity and
// the participant it forwards to. Next is only meaningful while registered.
type ChainHandle struct {
	Self Handle
	Next Handle
}

// Monitor is one window's membership in the clipboard-viewer chain.
//
// Monitor is not safe for concurrent use. Every method, and every broadcast
// delivered through the Transport, must run on the goroutine that owns the
// window's message loop.
type Monitor struct {
	t   Transport
	log *slog.Logger

	registered bool
	self       Handle
	next       Handle
	onChanged  func() error

	// inserting is set while Insert runs. A callback failure in that window
	// is parked in pending: leaving the chain before the previous head is
	// known would orphan everything behind us.
	inserting bool
	pending   error
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithLogger sets the logger used for chain events. The default is
// slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(m *Monitor) { m.log = l }
}

// NewMonitor returns an unregistered monitor that talks to the chain
// through t.
func NewMonitor(t Transport, opts ...Option) *Monitor {
	m := &Monitor{t: t, log: slog.Default()}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Register inserts self at the head of the chain and arranges for onChanged
// to run on every clipboard change. The first call to onChanged may happen
// before Register returns.
func (m *Monitor) Register(self Handle, onChanged func() error) (ChainHandle, error) {
	if m.registered {
		return ChainHandle{}, ErrAlreadyRegistered
	}
	if onChanged == nil {
		return ChainHandle{}, fmt.Errorf("chain: nil change callback")
	}

	m.registered = true
	m.self = self
	m.next = 0
	m.onChanged = onChanged

	if err := m.t.Hook(self, m.HandleMessage); err != nil {
		m.reset()
		return ChainHandle{}, fmt.Errorf("chain: hook %#x: %w", uintptr(self), err)
	}

	m.inserting = true
	next, err := m.t.Insert(self)
	m.inserting = false
	if err != nil {
		m.t.Unhook(self)
		m.reset()
		return ChainHandle{}, fmt.Errorf("chain: insert %#x: %w", uintptr(self), err)
	}
	m.next = next

	if cbErr := m.pending; cbErr != nil {
		m.pending = nil
		m.log.Error("initial change callback failed, leaving clipboard chain", "self", self, "err", cbErr)
		if derr := m.Deregister(); derr != nil {
			m.log.Warn("deregistration after callback failure failed", "self", self, "err", derr)
		}
		return ChainHandle{}, &CallbackError{Self: self, Err: cbErr}
	}

	m.log.Info("clipboard viewer registered", "self", self, "next", m.next)
	return m.Handle(), nil
}

// Deregister removes the monitor from the chain, relinking its predecessor to
// its successor, and removes the interceptor. It is a no-op when the monitor
// is not registered.
func (m *Monitor) Deregister() error {
	if !m.registered {
		return nil
	}
	self, next := m.self, m.next
	m.reset()

	err := m.t.Remove(self, next)
	m.t.Unhook(self)
	if err != nil {
		m.log.Warn("clipboard viewer removal failed", "self", self, "next", next, "err", err)
		return fmt.Errorf("chain: remove %#x: %w", uintptr(self), err)
	}
	m.log.Info("clipboard viewer deregistered", "self", self, "next", next)
	return nil
}

// IsRegistered reports whether the monitor is currently in the chain.
func (m *Monitor) IsRegistered() bool { return m.registered }

// Handle returns the current registration slot. It is the zero value when
// the monitor is not registered.
func (m *Monitor) Handle() ChainHandle {
	if !m.registered {
		return ChainHandle{}
	}
	return ChainHandle{Self: m.self, Next: m.next}
}

// HandleMessage is the interceptor installed on the window. It runs the
// change callback and keeps the chain linked.
func (m *Monitor) HandleMessage(msg Message) error {
	if !m.registered {
		return nil
	}
	switch msg.Kind {
	case ContentChanged:
		if err := m.notify(); err != nil {
			return err
		}
		m.forward(msg)

	case ChainChanged:
		if msg.Removed == m.next {
			m.log.Info("clipboard chain relinked", "self", m.self, "removed", msg.Removed, "next", msg.Replacement)
			m.next = msg.Replacement
		} else {
			m.forward(msg)
		}
	}
	return nil
}

// notify runs the callback. On failure or panic the monitor deregisters
// before the failure propagates.
func (m *Monitor) notify() (err error) {
	self := m.self
	defer func() {
		p := recover()
		if p == nil {
			return
		}
		if m.inserting {
			m.pending = fmt.Errorf("change callback panicked: %v", p)
			err = nil
			return
		}
		m.log.Error("change callback panicked, leaving clipboard chain", "self", self, "panic", p)
		_ = m.Deregister()
		panic(p)
	}()

	cbErr := m.onChanged()
	if cbErr == nil {
		return nil
	}
	if m.inserting {
		m.pending = cbErr
		return nil
	}
	m.log.Error("change callback failed, leaving clipboard chain", "self", self, "err", cbErr)
	if derr := m.Deregister(); derr != nil {
		m.log.Warn("deregistration after callback failure failed", "self", self, "err", derr)
	}
	return &CallbackError{Self: self, Err: cbErr}
}

func (m *Monitor) forward(msg Message) {
	// The callback may have deregistered the monitor re-entrantly.
	if !m.registered || m.next == 0 {
		return
	}
	m.log.Debug("forwarding clipboard broadcast", "self", m.self, "to", m.next, "kind", msg.Kind)
	if err := m.t.Send(m.next, msg); err != nil {
		m.log.Warn("clipboard broadcast forward failed", "self", m.self, "to", m.next, "kind", msg.Kind, "err", err)
	}
}

func (m *Monitor) reset() {
	m.registered = false
	m.self = 0
	m.next = 0
	m.onChanged = nil
	m.inserting = false
	m.pending = nil
}
