// Package winhost runs a hidden Win32 window that takes part in the
// clipboard viewer chain. The window procedure translates chain messages
// into chain.Message values for a chain.Monitor, and the Host implements
// chain.Transport on top of SetClipboardViewer, ChangeClipboardChain and
// SendMessageW.
//
// Only message translation is available on other platforms.
package winhost

import "go.klb.dev/clipview/internal/chain"

// Window messages handled by the host.
const (
	WMDestroy       = 0x0002
	WMClose         = 0x0010
	WMDrawClipboard = 0x0308
	WMChangeCBChain = 0x030D
)

// Translate converts a window message into a chain message. ok is false for
// messages that are not part of the clipboard viewer protocol.
func Translate(msg uint32, wParam, lParam uintptr) (m chain.Message, ok bool) {
	switch msg {
	case WMDrawClipboard:
		return chain.Message{Kind: chain.ContentChanged}, true
	case WMChangeCBChain:
		return chain.Message{
			Kind:        chain.ChainChanged,
			Removed:     chain.Handle(wParam),
			Replacement: chain.Handle(lParam),
		}, true
	}
	return chain.Message{}, false
}

// Encode is the inverse of Translate: it returns the window message and
// parameters used to send m to another viewer.
func Encode(m chain.Message) (msg uint32, wParam, lParam uintptr) {
	if m.Kind == chain.ChainChanged {
		return WMChangeCBChain, uintptr(m.Removed), uintptr(m.Replacement)
	}
	return WMDrawClipboard, 0, 0
}
