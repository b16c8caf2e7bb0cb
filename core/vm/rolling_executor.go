package vm

import (
	"context"

	"github.com/katana-go/katana/core/state"
	"github.com/katana-go/katana/core/types"
	"github.com/katana-go/katana/eth/producer"
	"github.com/katana-go/katana/katanalib/common"
	"github.com/katana-go/katana/katanalib/log"
)

// RollingExecutor adapts Processor's per-block construction (see its doc
// comment: "one Processor is built per in-flight block and discarded once
// sealed") into the single long-lived producer.Executor the block Producer
// holds for its whole life. Each TakeExecutionOutput discards the
// just-sealed Processor and builds a fresh one over the next block number
// against a freshly fetched state snapshot, so the bouncer's resource cap
// and the cached-state diff never leak across block boundaries.
type RollingExecutor struct {
	factory state.ProviderFactory
	chainID common.Felt
	limits  producer.BlockLimits

	blockNumber uint64
	current     *Processor
	rebuildErr  error
}

// NewRollingExecutor builds the Processor for startBlockNumber, reading its
// initial state snapshot from the block immediately before it.
func NewRollingExecutor(ctx context.Context, factory state.ProviderFactory, chainID common.Felt, limits producer.BlockLimits, startBlockNumber uint64) (*RollingExecutor, error) {
	r := &RollingExecutor{factory: factory, chainID: chainID, limits: limits, blockNumber: startBlockNumber}
	if err := r.rebuild(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *RollingExecutor) rebuild(ctx context.Context) error {
	var base uint64
	if r.blockNumber > 0 {
		base = r.blockNumber - 1
	}
	provider, err := r.factory.AtBlock(ctx, base)
	if err != nil {
		return err
	}
	r.current = NewProcessor(provider, r.blockNumber, r.chainID, r.limits)
	return nil
}

func (r *RollingExecutor) ExecuteTransactions(txs []types.Transaction) (int, *producer.ExecutorError) {
	if r.rebuildErr != nil {
		return 0, &producer.ExecutorError{Err: r.rebuildErr}
	}
	return r.current.ExecuteTransactions(txs)
}

// TakeExecutionOutput drains the sealed block's output, then rebuilds the
// next block's Processor. A rebuild failure is held and surfaced on the
// next ExecuteTransactions call rather than panicking here, since this
// method's signature has no error return.
func (r *RollingExecutor) TakeExecutionOutput() producer.ExecutionOutput {
	out := r.current.TakeExecutionOutput()
	r.blockNumber++
	if err := r.rebuild(context.Background()); err != nil {
		r.rebuildErr = err
		log.New(context.Background()).Error("vm: rebuilding executor for next block failed", "err", err, "block_number", r.blockNumber)
	} else {
		r.rebuildErr = nil
	}
	return out
}

func (r *RollingExecutor) BlockNumber() uint64 { return r.current.BlockNumber() }
