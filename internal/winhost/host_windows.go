//go:build windows

package winhost

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"

	"go.klb.dev/clipview/internal/chain"
)

var (
	user32   = windows.NewLazySystemDLL("user32.dll")
	kernel32 = windows.NewLazySystemDLL("kernel32.dll")

	procSetClipboardViewer   = user32.NewProc("SetClipboardViewer")
	procChangeClipboardChain = user32.NewProc("ChangeClipboardChain")
	procSendMessageW         = user32.NewProc("SendMessageW")
	procPostMessageW         = user32.NewProc("PostMessageW")
	procRegisterClassExW     = user32.NewProc("RegisterClassExW")
	procCreateWindowExW      = user32.NewProc("CreateWindowExW")
	procDestroyWindow        = user32.NewProc("DestroyWindow")
	procDefWindowProcW       = user32.NewProc("DefWindowProcW")
	procGetMessageW          = user32.NewProc("GetMessageW")
	procTranslateMessage     = user32.NewProc("TranslateMessage")
	procDispatchMessageW     = user32.NewProc("DispatchMessageW")
	procPostQuitMessage      = user32.NewProc("PostQuitMessage")

	procSetLastError = kernel32.NewProc("SetLastError")
)

const className = "ClipviewChainHost"

type wndClassEx struct {
	size       uint32
	style      uint32
	wndProc    uintptr
	clsExtra   int32
	wndExtra   int32
	instance   windows.Handle
	icon       windows.Handle
	cursor     windows.Handle
	background windows.Handle
	menuName   *uint16
	className  *uint16
	iconSm     windows.Handle
}

type point struct{ x, y int32 }

type winMsg struct {
	hwnd    uintptr
	message uint32
	wParam  uintptr
	lParam  uintptr
	time    uint32
	pt      point
	private uint32
}

var (
	registerOnce sync.Once
	registerErr  error

	// hosts maps live windows to their Host. The window procedure is shared
	// by every host because callbacks created by windows.NewCallback are
	// never released.
	hostsMu sync.Mutex
	hosts   = map[uintptr]*Host{}
)

func registerClass() error {
	registerOnce.Do(func() {
		var mod windows.Handle
		if err := windows.GetModuleHandleEx(0, nil, &mod); err != nil {
			registerErr = fmt.Errorf("winhost: module handle: %w", err)
			return
		}
		name, err := windows.UTF16PtrFromString(className)
		if err != nil {
			registerErr = err
			return
		}
		wc := wndClassEx{
			wndProc:   windows.NewCallback(wndProc),
			instance:  mod,
			className: name,
		}
		wc.size = uint32(unsafe.Sizeof(wc))
		if r, _, err := procRegisterClassExW.Call(uintptr(unsafe.Pointer(&wc))); r == 0 {
			registerErr = fmt.Errorf("winhost: RegisterClassExW: %w", err)
		}
	})
	return registerErr
}

// Host owns one hidden window and its message loop. It implements
// chain.Transport; all of its methods must be called from the goroutine
// running Run, which is the case for calls made by a chain.Monitor from
// within the window procedure or from the open and close hooks.
type Host struct {
	log     *slog.Logger
	hwnd    uintptr
	hook    chain.Interceptor
	onClose func() error
	err     error
}

// Option configures a Host.
type Option func(*Host)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option { return func(h *Host) { h.log = l } }

// New returns a Host. Run creates the window.
func New(opts ...Option) *Host {
	h := &Host{log: slog.Default()}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Run creates the window on a locked OS thread, calls open with its handle
// and pumps messages until the window is destroyed. Cancelling ctx or
// receiving WM_CLOSE calls shutdown before the window is destroyed. Run returns
// the first error from open, shutdown or a chain.Interceptor.
func (h *Host) Run(ctx context.Context, open func(chain.Handle) error, shutdown func() error) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := registerClass(); err != nil {
		return err
	}
	hwnd, err := createWindow()
	if err != nil {
		return err
	}
	h.hwnd = hwnd
	h.onClose = shutdown

	hostsMu.Lock()
	hosts[hwnd] = h
	hostsMu.Unlock()
	defer func() {
		hostsMu.Lock()
		delete(hosts, hwnd)
		hostsMu.Unlock()
	}()

	stop := context.AfterFunc(ctx, func() {
		procPostMessageW.Call(hwnd, WMClose, 0, 0)
	})
	defer stop()

	h.log.Debug("host window created", "hwnd", fmt.Sprintf("%#x", hwnd))
	if err := open(chain.Handle(hwnd)); err != nil {
		h.err = err
		h.onClose = nil
		procDestroyWindow.Call(hwnd)
	}

	var m winMsg
	for {
		r, _, err := procGetMessageW.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
		switch int32(r) {
		case -1:
			return errors.Join(h.err, fmt.Errorf("winhost: GetMessageW: %w", err))
		case 0:
			return h.err
		}
		procTranslateMessage.Call(uintptr(unsafe.Pointer(&m)))
		procDispatchMessageW.Call(uintptr(unsafe.Pointer(&m)))
	}
}

func createWindow() (uintptr, error) {
	name, err := windows.UTF16PtrFromString(className)
	if err != nil {
		return 0, err
	}
	title, err := windows.UTF16PtrFromString("clipview")
	if err != nil {
		return 0, err
	}
	hwnd, _, err := procCreateWindowExW.Call(
		0,
		uintptr(unsafe.Pointer(name)),
		uintptr(unsafe.Pointer(title)),
		0, // not WS_VISIBLE
		0, 0, 0, 0,
		0, 0, 0, 0,
	)
	if hwnd == 0 {
		return 0, fmt.Errorf("winhost: CreateWindowExW: %w", err)
	}
	return hwnd, nil
}

func wndProc(hwnd uintptr, msg uint32, wParam, lParam uintptr) uintptr {
	hostsMu.Lock()
	h := hosts[hwnd]
	hostsMu.Unlock()
	if h == nil {
		r, _, _ := procDefWindowProcW.Call(hwnd, uintptr(msg), wParam, lParam)
		return r
	}

	if m, ok := Translate(msg, wParam, lParam); ok {
		if h.hook != nil {
			if err := h.hook(m); err != nil {
				h.fail(err)
			}
		}
		return 0
	}

	switch msg {
	case WMClose:
		if h.onClose != nil {
			if err := h.onClose(); err != nil {
				h.fail(err)
			}
			h.onClose = nil
		}
		procDestroyWindow.Call(hwnd)
		return 0
	case WMDestroy:
		procPostQuitMessage.Call(0)
		return 0
	}
	r, _, _ := procDefWindowProcW.Call(hwnd, uintptr(msg), wParam, lParam)
	return r
}

// fail records the first error and asks the window to close.
func (h *Host) fail(err error) {
	if h.err == nil {
		h.err = err
	}
	h.log.Error("clipboard viewer failed", "err", err)
	procPostMessageW.Call(h.hwnd, WMClose, 0, 0)
}

// Hook implements chain.Transport.
func (h *Host) Hook(self chain.Handle, fn chain.Interceptor) error {
	if uintptr(self) != h.hwnd || h.hwnd == 0 {
		return fmt.Errorf("winhost: hook %#x: not this host's window", uintptr(self))
	}
	if h.hook != nil {
		return fmt.Errorf("winhost: hook %#x: already hooked", uintptr(self))
	}
	h.hook = fn
	return nil
}

// Unhook implements chain.Transport.
func (h *Host) Unhook(self chain.Handle) {
	if uintptr(self) == h.hwnd {
		h.hook = nil
	}
}

// Insert implements chain.Transport. The system sends WM_DRAWCLIPBOARD to
// the new viewer before SetClipboardViewer returns.
func (h *Host) Insert(self chain.Handle) (chain.Handle, error) {
	procSetLastError.Call(0)
	next, _, err := procSetClipboardViewer.Call(uintptr(self))
	if next == 0 && !errors.Is(err, windows.ERROR_SUCCESS) {
		return 0, fmt.Errorf("winhost: SetClipboardViewer: %w", err)
	}
	return chain.Handle(next), nil
}

// Remove implements chain.Transport.
func (h *Host) Remove(self, next chain.Handle) error {
	procChangeClipboardChain.Call(uintptr(self), uintptr(next))
	return nil
}

// Send implements chain.Transport.
func (h *Host) Send(to chain.Handle, m chain.Message) error {
	msg, wParam, lParam := Encode(m)
	procSendMessageW.Call(uintptr(to), uintptr(msg), wParam, lParam)
	return nil
}

var _ chain.Transport = (*Host)(nil)
