// Package chain keeps one window registered in the operating system's
// clipboard-viewer chain: a system-wide singly linked list in which every
// viewer must forward change notifications to the viewer after it and relink
// itself when a neighbour leaves. A viewer that crashes or forgets to forward
// breaks notification delivery for every application downstream of it.
//
// The OS side is abstracted behind Transport so the same Monitor runs against
// the Win32 chain (internal/winhost) and the in-memory chain
// (internal/chain/memchain).
package chain

import (
	"errors"
	"fmt"
)

// Handle identifies one chain participant (a window). Zero means end of
// chain.
type Handle uintptr

// Kind is the type of a broadcast message.
type Kind int

const (
	// ContentChanged is delivered once per clipboard write (WM_DRAWCLIPBOARD).
	ContentChanged Kind = iota + 1
	// ChainChanged announces that Removed is leaving the chain and that
	// Replacement is the participant that followed it (WM_CHANGECBCHAIN).
	ChainChanged
)

func (k Kind) String() string {
	switch k {
	case ContentChanged:
		return "content-changed"
	case ChainChanged:
		return "chain-changed"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Message is one broadcast delivered to, or forwarded by, a participant.
// Removed and Replacement are only meaningful for ChainChanged.
type Message struct {
	Kind        Kind
	Removed     Handle
	Replacement Handle
}

// Interceptor receives every broadcast addressed to a hooked window.
type Interceptor func(Message) error

// Transport is the OS clipboard-viewer chain as seen by one window.
type Transport interface {
	// Insert puts self at the head of the chain and returns the previous
	// head (zero if the chain was empty). The OS may deliver a
	// ContentChanged to self before Insert returns.
	Insert(self Handle) (Handle, error)

	// Remove splices self out of the chain, linking its predecessor to next.
	Remove(self, next Handle) error

	// Send synchronously delivers msg to the participant to.
	Send(to Handle, msg Message) error

	// Hook installs the interceptor that receives broadcasts for self.
	Hook(self Handle, fn Interceptor) error

	// Unhook removes the interceptor for self.
	Unhook(self Handle)
}

// ErrAlreadyRegistered is returned by Register when the monitor is already
// part of the chain.
var ErrAlreadyRegistered = errors.New("chain: handler is already registered")

// CallbackError reports that the change callback failed during a
// ContentChanged broadcast. By the time it is returned the monitor has
// already left the chain.
type CallbackError struct {
	Self Handle
	Err  error
}

func (e *CallbackError) Error() string {
	return fmt.Sprintf("chain: change callback for %#x failed: %v", uintptr(e.Self), e.Err)
}

func (e *CallbackError) Unwrap() error { return e.Err }
