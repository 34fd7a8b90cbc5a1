package viewer

import (
	"context"

	"go.klb.dev/clipview/internal/chain/memchain"
)

// pump turns change signals into chain writes until ctx is done or a write
// fails. A nil changes channel waits for ctx only.
func pump(ctx context.Context, bus *memchain.Bus, changes <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changes:
			if err := bus.Write(); err != nil {
				return err
			}
		}
	}
}
