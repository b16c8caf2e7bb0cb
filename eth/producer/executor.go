// Package producer implements the block-building state machine (spec §4.5):
// an Instant or Interval(t) mode pulling valid transactions from the pool,
// executing them against a CachedState snapshot via an injected Executor,
// enforcing the bouncer's resource cap, and sealing a block through
// core/state's BlockWriter.
//
// Grounded on original_source's BlockProducer (crates/core/src/backend,
// not retained in this pack's original_source copy beyond gas_oracle.rs)
// and on spec §4.5's own description of the Executor contract; the
// concurrency shape — one RwLock around a two-variant mode enum, a
// short-lived lock around the in-flight executor — follows the teacher's
// staged-sync driver idiom (turbo/snapshotsync's polling/locking style)
// generalized from a linear pipeline to a block-sealing loop.
package producer

import (
	"github.com/katana-go/katana/core/types"
)

// ExecutorError is a non-fatal signal returned from ExecuteTransactions:
// either the bouncer tripped (LimitsExhausted) or the VM itself rejected a
// batch outright (spec §4.5 "returned as a non-fatal signal to seal").
type ExecutorError struct {
	LimitsExhausted bool
	Err             error
}

func (e *ExecutorError) Error() string {
	if e.LimitsExhausted {
		return "producer: block resource limits exhausted"
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "producer: executor error"
}

// ExecutedTx pairs one transaction with the outcome executing it against
// the in-flight state produced (spec §4.5 "each transaction is either a
// success ... or a failure (reverted, traced)").
type ExecutedTx struct {
	Tx      types.Transaction
	Receipt types.Receipt
	Reverted bool
}

// ExecutionOutput is everything a sealing pass needs once execution stops:
// accumulated state diff, the executed transactions with their receipts,
// and aggregate resource stats (spec §4.5 "take_execution_output").
type ExecutionOutput struct {
	Diff      *types.StateDiff
	Executed  []ExecutedTx
	Resources types.ExecutionResources
}

// Executor is the seam into the VM layer: it owns a mutable copy of pending
// state over a StateProvider snapshot and a cloneable BlockContext, and
// executes transactions against them in order (spec §4.5 "Executor
// contract"). The concrete opcode/Cairo-VM semantics are out of scope here
// — core/vm supplies them — this package only needs the three operations the
// sealing sequence drives.
type Executor interface {
	// ExecuteTransactions runs txs in order against the in-flight state,
	// stopping early (with a LimitsExhausted ExecutorError) once the
	// bouncer's cap would be exceeded. Returns how many of txs were
	// actually consumed.
	ExecuteTransactions(txs []types.Transaction) (executed int, err *ExecutorError)
	// TakeExecutionOutput drains and resets the accumulated output,
	// readying the executor for the next block.
	TakeExecutionOutput() ExecutionOutput
	// BlockNumber reports the block number the in-flight state is building.
	BlockNumber() uint64
}
