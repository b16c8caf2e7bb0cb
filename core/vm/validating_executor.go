package vm

import (
	"context"

	"github.com/katana-go/katana/core/state"
	"github.com/katana-go/katana/core/types"
	"github.com/katana-go/katana/eth/producer"
	"github.com/katana-go/katana/katanalib/common"
)

// ValidatingExecutor is the txpool.Executor a Validator holds: unlike the
// sealing path's RollingExecutor, a validation check is cheap enough to
// build a throwaway Processor against the current state on every call, so
// it never goes stale the way a single long-lived Processor would once
// Validator.Update swaps the underlying provider out after each sealed
// block.
type ValidatingExecutor struct {
	factory     state.ProviderFactory
	chainID     common.Felt
	limits      producer.BlockLimits
	blockNumber func() uint64
}

// NewValidatingExecutor builds a ValidatingExecutor; blockNumber reports
// the block currently being built, matching what a Processor constructed
// for that in-flight block would report.
func NewValidatingExecutor(factory state.ProviderFactory, chainID common.Felt, limits producer.BlockLimits, blockNumber func() uint64) *ValidatingExecutor {
	return &ValidatingExecutor{factory: factory, chainID: chainID, limits: limits, blockNumber: blockNumber}
}

func (e *ValidatingExecutor) ValidateTransaction(tx types.Transaction, skipAccountValidation, skipFeeCheck bool) error {
	if skipAccountValidation {
		return nil
	}
	provider, err := e.factory.Latest(context.Background())
	if err != nil {
		return err
	}
	return NewProcessor(provider, e.blockNumber(), e.chainID, e.limits).ValidateTransaction(tx, skipAccountValidation, skipFeeCheck)
}
