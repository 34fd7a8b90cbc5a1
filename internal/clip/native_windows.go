//go:build windows

package clip

import (
	"fmt"
	"time"
	"unicode/utf16"
	"unsafe"

	"golang.org/x/sys/windows"
)

const (
	cfUnicodeText = 13

	openAttempts = 5
	openBackoff  = 20 * time.Millisecond
)

var (
	user32   = windows.NewLazySystemDLL("user32.dll")
	kernel32 = windows.NewLazySystemDLL("kernel32.dll")

	procOpenClipboard              = user32.NewProc("OpenClipboard")
	procCloseClipboard             = user32.NewProc("CloseClipboard")
	procGetClipboardData           = user32.NewProc("GetClipboardData")
	procIsClipboardFormatAvailable = user32.NewProc("IsClipboardFormatAvailable")

	procGlobalLock   = kernel32.NewProc("GlobalLock")
	procGlobalUnlock = kernel32.NewProc("GlobalUnlock")
	procGlobalSize   = kernel32.NewProc("GlobalSize")
)

// nativeBackend reads CF_UNICODETEXT directly so that the raw code units,
// lone surrogates included, reach the classifier unchanged.
type nativeBackend struct{}

// New returns the user32 backend. Change notification comes from the
// clipboard viewer chain, so the backend does not implement Watcher.
func New() Reader { return nativeBackend{} }

func (nativeBackend) Name() string { return "win32 user32 (CF_UNICODETEXT)" }

func (nativeBackend) ContainsText() bool {
	r, _, _ := procIsClipboardFormatAvailable.Call(cfUnicodeText)
	return r != 0
}

func (b nativeBackend) Text() (string, error) {
	u, err := b.TextUTF16()
	if err != nil {
		return "", err
	}
	return string(utf16.Decode(u)), nil
}

func (nativeBackend) TextUTF16() ([]uint16, error) {
	if err := openClipboard(); err != nil {
		return nil, err
	}
	defer procCloseClipboard.Call()

	h, _, err := procGetClipboardData.Call(cfUnicodeText)
	if h == 0 {
		return nil, fmt.Errorf("%w: GetClipboardData: %v", ErrUnavailable, err)
	}
	p, _, err := procGlobalLock.Call(h)
	if p == 0 {
		return nil, fmt.Errorf("%w: GlobalLock: %v", ErrUnavailable, err)
	}
	defer procGlobalUnlock.Call(h)

	size, _, _ := procGlobalSize.Call(h)
	src := unsafe.Slice((*uint16)(unsafe.Pointer(p)), size/2)
	n := 0
	for n < len(src) && src[n] != 0 {
		n++
	}
	out := make([]uint16, n)
	copy(out, src[:n])
	return out, nil
}

// openClipboard retries because the owner of a fresh write often still holds
// the clipboard open when WM_DRAWCLIPBOARD arrives.
func openClipboard() error {
	var err error
	for i := range openAttempts {
		r, _, e := procOpenClipboard.Call(0)
		if r != 0 {
			return nil
		}
		err = e
		if i < openAttempts-1 {
			time.Sleep(openBackoff)
		}
	}
	return fmt.Errorf("%w: OpenClipboard: %v", ErrUnavailable, err)
}
