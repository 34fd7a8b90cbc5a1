//go:build !windows

package clip

import (
	"context"
	"fmt"
	"time"

	"github.com/atotto/clipboard"
)

const atottoPollInterval = 500 * time.Millisecond

// atottoBackend shells out to xclip, xsel, wl-paste or pbpaste. It cannot tell
// "no text" from a failed read, so both surface as ReadError.
type atottoBackend struct{}

func (atottoBackend) Name() string { return "atotto clipboard (exec, poll)" }

func (atottoBackend) ContainsText() bool { return !clipboard.Unsupported }

func (atottoBackend) Text() (string, error) {
	text, err := clipboard.ReadAll()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return text, nil
}

func (atottoBackend) Watch(ctx context.Context) <-chan struct{} {
	ch := make(chan struct{}, 1)
	go func() {
		t := time.NewTicker(atottoPollInterval)
		defer t.Stop()
		last, lastErr := clipboard.ReadAll()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				text, err := clipboard.ReadAll()
				if text == last && (err == nil) == (lastErr == nil) {
					continue
				}
				last, lastErr = text, err
				select {
				case ch <- struct{}{}:
				default:
				}
			}
		}
	}()
	return ch
}
