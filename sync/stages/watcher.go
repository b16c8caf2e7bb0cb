package stages

import (
	"context"
	"time"

	"github.com/katana-go/katana/katanalib/log"
)

// TipSource reports the feeder gateway's current chain tip (spec §4.6
// "a background task polls the gateway for the chain tip").
type TipSource interface {
	ChainTip(ctx context.Context) (uint64, error)
}

// TipSourceFunc adapts a plain function to TipSource.
type TipSourceFunc func(ctx context.Context) (uint64, error)

func (f TipSourceFunc) ChainTip(ctx context.Context) (uint64, error) { return f(ctx) }

// pollInterval is how often the watcher asks the gateway for its tip.
const pollInterval = 5 * time.Second

// WatchChainTip polls source every pollInterval and publishes every new,
// strictly increasing tip onto the returned channel, which Pipeline.Run
// consumes directly. The channel has a one-slot buffer that each send
// drains first: a slow
// consumer only ever sees the most recently observed tip, since a later
// poll's send simply supersedes one still queued — matching a Rust watch
// channel's "always latest value" semantics (spec §4.6).
func WatchChainTip(ctx context.Context, source TipSource) <-chan uint64 {
	out := make(chan uint64, 1)
	go func() {
		defer close(out)
		var lastTip uint64
		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()

		publish := func(tip uint64) {
			select {
			case <-out:
			default:
			}
			select {
			case out <- tip:
			case <-ctx.Done():
			}
		}

		for {
			tip, err := source.ChainTip(ctx)
			if err != nil {
				log.New(ctx).Warn("chain tip poll failed", "err", err)
			} else if tip > lastTip {
				lastTip = tip
				publish(tip)
			}

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
	return out
}
