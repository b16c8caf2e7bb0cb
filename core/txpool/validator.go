package txpool

import (
	"fmt"
	"sync"

	"github.com/katana-go/katana/core/state"
	"github.com/katana-go/katana/core/types"
	"github.com/katana-go/katana/katanalib/common"
)

// Outcome is the three-way result a Validator can reach for one transaction
// (original_source's ValidationOutcome: Valid, Invalid{tx,error},
// Dependent{current_nonce,tx_nonce,tx}).
type Outcome uint8

const (
	OutcomeValid Outcome = iota
	OutcomeInvalid
	OutcomeDependent
)

// InvalidReason names why OutcomeInvalid was reached.
type InvalidReason uint8

const (
	InvalidReasonNone InvalidReason = iota
	InvalidReasonClassAlreadyDeclared
	InvalidReasonExecutionRejected
	InvalidReasonNonceTooLow
)

// ValidationResult is the full outcome of validating one transaction.
type ValidationResult struct {
	Outcome       Outcome
	CurrentNonce  common.Felt // set when Outcome == OutcomeDependent or InvalidReason == InvalidReasonNonceTooLow
	TxNonce       common.Felt
	InvalidReason InvalidReason
	Err           error // the underlying execution error when InvalidReasonExecutionRejected
}

// Executor is the narrow seam into core/vm this package needs: run a
// transaction's __validate__ entrypoint (and optionally its fee check),
// reporting whether it passed. The trace/state-diff/receipt-producing
// execution path lives entirely in core/vm; the pool only needs a
// pass/fail signal (spec §4.4, §4.5 "validation is a distinct, cheaper step
// than full execution").
type Executor interface {
	ValidateTransaction(tx types.Transaction, skipAccountValidation, skipFeeCheck bool) error
}

// Validator is the stateful per-sender nonce tracker and skip_validate rule
// original_source's TxValidator implements. A permit mutex serializes
// Validate calls the same way `permit: Arc<Mutex<()>>` does — validation
// must run against a single consistent view of the block-in-progress state.
type Validator struct {
	permit sync.Mutex

	mu         sync.Mutex
	provider   state.StateProvider
	executor   Executor
	poolNonces map[common.Address]common.Felt
	skipFee    bool
}

func NewValidator(provider state.StateProvider, executor Executor, skipFee bool) *Validator {
	return &Validator{
		provider:   provider,
		executor:   executor,
		poolNonces: make(map[common.Address]common.Felt),
		skipFee:    skipFee,
	}
}

// Update resets the validator against a new state (called after a block is
// sealed, spec §4.4), discarding every pool-tracked nonce — the next
// validation for each sender falls back to reading the fresh state.
func (v *Validator) Update(provider state.StateProvider) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.provider = provider
	v.poolNonces = make(map[common.Address]common.Felt)
}

// PoolNonce returns the sender's next expected nonce: the pool-tracked
// value if a transaction from them has already been validated this epoch,
// else the on-chain nonce.
func (v *Validator) PoolNonce(addr common.Address) (common.Felt, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.poolNonceLocked(addr)
}

func (v *Validator) poolNonceLocked(addr common.Address) (common.Felt, error) {
	if n, ok := v.poolNonces[addr]; ok {
		return n, nil
	}
	return v.provider.Nonce(addr)
}

// Validate runs the full pool-admission pipeline for one transaction:
// reject re-declaration of an already-known class, tag nonce-gapped
// transactions as Dependent rather than running validation against them,
// apply the deploy_account+invoke(nonce=1) skip_validate carve-out, then
// hand off to the executor.
func (v *Validator) Validate(tx types.Transaction) (ValidationResult, error) {
	v.permit.Lock()
	defer v.permit.Unlock()

	v.mu.Lock()
	defer v.mu.Unlock()

	addr := tx.SenderAddress()
	txNonce := tx.Nonce()

	if declare, ok := tx.(declareTx); ok {
		classHash := declare.DeclaredClassHash()
		existing, err := v.provider.Class(classHash)
		if err != nil {
			return ValidationResult{}, fmt.Errorf("txpool: check existing class: %w", err)
		}
		if existing != nil {
			return ValidationResult{Outcome: OutcomeInvalid, InvalidReason: InvalidReasonClassAlreadyDeclared}, nil
		}
	}

	currentNonce, err := v.poolNonceLocked(addr)
	if err != nil {
		return ValidationResult{}, fmt.Errorf("txpool: read nonce: %w", err)
	}

	if txNonce.Cmp(currentNonce) > 0 {
		return ValidationResult{Outcome: OutcomeDependent, CurrentNonce: currentNonce, TxNonce: txNonce}, nil
	}

	// A resubmission below the pool's tracked nonce is stale regardless of
	// what the executor's on-chain check would say: the pool has already
	// admitted a transaction at currentNonce, so this one can never execute
	// next. Caught here rather than left to the executor so a burst of
	// stale resubmissions doesn't pay for __validate__ re-execution.
	if txNonce.Cmp(currentNonce) < 0 {
		return ValidationResult{Outcome: OutcomeInvalid, InvalidReason: InvalidReasonNonceTooLow, CurrentNonce: currentNonce, TxNonce: txNonce}, nil
	}

	skipValidate := skipValidateRule(tx, currentNonce)

	if err := v.executor.ValidateTransaction(tx, skipValidate, v.skipFee); err != nil {
		return ValidationResult{Outcome: OutcomeInvalid, InvalidReason: InvalidReasonExecutionRejected, Err: err}, nil
	}

	v.poolNonces[addr] = currentNonce.Add(common.FeltOne)
	return ValidationResult{Outcome: OutcomeValid}, nil
}

// skipValidateRule reproduces original_source's skip_validate carve-out:
// DeployAccount and Declare always run full validation; an Invoke is
// exempted only when its nonce is exactly 1 and the account's current
// nonce is still 0 — the first invoke immediately following a
// not-yet-processed deploy_account in the same batch.
func skipValidateRule(tx types.Transaction, currentNonce common.Felt) bool {
	switch tx.Kind() {
	case types.TxDeployAccountV1, types.TxDeployAccountV3,
		types.TxDeclareV0, types.TxDeclareV1, types.TxDeclareV2, types.TxDeclareV3:
		return false
	default:
		return tx.Nonce() == common.FeltOne && currentNonce.IsZero()
	}
}

// declareTx is implemented by every Declare variant to expose the class
// hash being declared, without txpool needing to switch on TxKind itself.
type declareTx interface {
	DeclaredClassHash() common.ClassHash
}
