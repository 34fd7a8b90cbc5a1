//go:build !windows

package clip

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"golang.design/x/clipboard"
)

const designPollInterval = 250 * time.Millisecond

type designBackend struct{}

func (designBackend) Name() string { return "golang.design clipboard (poll)" }

func (designBackend) ContainsText() bool {
	return clipboard.Read(clipboard.FmtText) != nil
}

func (designBackend) Text() (string, error) {
	text := clipboard.Read(clipboard.FmtText)
	if text == nil {
		return "", fmt.Errorf("%w: text disappeared before it could be read", ErrUnavailable)
	}
	return string(text), nil
}

// Watch polls text and image formats so that a switch to non-text content is
// reported as a change too.
func (designBackend) Watch(ctx context.Context) <-chan struct{} {
	ch := make(chan struct{}, 1)
	go func() {
		t := time.NewTicker(designPollInterval)
		defer t.Stop()
		lastText := clipboard.Read(clipboard.FmtText)
		lastImg := clipboard.Read(clipboard.FmtImage)
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				text := clipboard.Read(clipboard.FmtText)
				img := clipboard.Read(clipboard.FmtImage)
				if bytes.Equal(text, lastText) && bytes.Equal(img, lastImg) {
					continue
				}
				lastText, lastImg = text, img
				select {
				case ch <- struct{}{}:
				default:
				}
			}
		}
	}()
	return ch
}
