package producer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/katana-go/katana/core/state"
	"github.com/katana-go/katana/core/txpool"
	"github.com/katana-go/katana/core/types"
	"github.com/katana-go/katana/eth/gasprice"
	"github.com/katana-go/katana/katanalib/common"
)

// NewHeadNotifier receives the hash of every newly sealed block. The rpc
// package's Server implements this to push starknet_subscriptionNewHeads
// events to websocket subscribers; a nil notifier is a valid no-op.
type NewHeadNotifier interface {
	NotifyNewHead(blockNumber uint64, blockHash common.Hash)
}

// Mode is the block producer's two-variant state (spec §4.5).
type Mode uint8

const (
	// ModeInstant mines a one-transaction block per accepted transaction.
	ModeInstant Mode = iota
	// ModeInterval accumulates transactions and seals once per
	// Config.Interval tick. A tripped bouncer does not seal the block early;
	// it only caps how many transactions the tick's seal includes.
	ModeInterval
)

// Config holds everything a Producer needs besides its collaborators.
type Config struct {
	Mode             Mode
	Interval         time.Duration
	Limits           BlockLimits
	SequencerAddress common.Address
	ProtocolVersion  string
	L1DAMode         types.L1DataAvailabilityMode
	// MaxTxnsPerBlock caps how many pool transactions one sealing pass
	// pulls before handing them to the executor; the bouncer may still
	// stop short of this count.
	MaxTxnsPerBlock int
}

// Producer is the block-building state machine. A single RwLock guards the
// two-variant mode plus the chain-tip bookkeeping (block number, parent
// hash); the in-flight Executor holds its own short-lived lock so RPC reads
// of pending transactions don't block on a full seal (spec §5 "Block
// producer state: a single RwLock over the BlockProducerMode; the executor
// inside holds its own lock").
type Producer struct {
	mu sync.RWMutex

	cfg       Config
	executor  Executor
	bouncer   *Bouncer
	pool      *txpool.Pool
	validator *txpool.Validator
	writer    *state.BlockWriter
	factory   state.ProviderFactory
	oracle    gasprice.Oracle
	notifier  NewHeadNotifier

	blockNumber uint64
	parentHash  common.Hash
}

// SetNewHeadNotifier wires a notifier invoked after every sealed block
// (genesis included). Call before Run; nil disables notification.
func (p *Producer) SetNewHeadNotifier(notifier NewHeadNotifier) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.notifier = notifier
}

// SetExecutor (re)binds the Executor used by sealBlock. Callers that need
// SealGenesis to run before the first Executor can be constructed (a
// RollingExecutor needs a sealed block 0 to read its initial snapshot
// from) pass a nil executor to New and call this once genesis is sealed.
func (p *Producer) SetExecutor(executor Executor) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.executor = executor
}

// BlockNumber reports the block number the producer will seal next.
func (p *Producer) BlockNumber() uint64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.blockNumber
}

// New builds a Producer positioned to seal blockNumber next, with
// parentHash as the most recently sealed block's hash (common.FeltZero for
// a still-empty chain, i.e. the next seal produces the genesis block).
func New(
	cfg Config,
	executor Executor,
	pool *txpool.Pool,
	validator *txpool.Validator,
	writer *state.BlockWriter,
	factory state.ProviderFactory,
	oracle gasprice.Oracle,
	blockNumber uint64,
	parentHash common.Hash,
) *Producer {
	return &Producer{
		cfg:         cfg,
		executor:    executor,
		bouncer:     NewBouncer(cfg.Limits),
		pool:        pool,
		validator:   validator,
		writer:      writer,
		factory:     factory,
		oracle:      oracle,
		blockNumber: blockNumber,
		parentHash:  parentHash,
	}
}

// Mode returns the producer's current mode.
func (p *Producer) Mode() Mode {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cfg.Mode
}

// SetMode switches modes at runtime (e.g. devnet RPC toggling
// instant-mining on and off).
func (p *Producer) SetMode(mode Mode) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cfg.Mode = mode
}

// Run drives the producer until ctx is cancelled: in ModeInstant it seals a
// block for every non-empty pool drain; in ModeInterval it seals on a fixed
// tick (spec §4.5 "Accumulate transactions ... for up to t milliseconds").
func (p *Producer) Run(ctx context.Context) error {
	mode := p.Mode()
	if mode == ModeInstant {
		return p.runInstant(ctx)
	}
	return p.runInterval(ctx)
}

func (p *Producer) runInstant(ctx context.Context) error {
	// Instant mode has no natural wakeup signal of its own here (the pool
	// would normally notify on AddTransaction); polling on a short tick
	// keeps this loop simple and correct without adding a channel API to
	// core/txpool that nothing else in this pass needs.
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if p.pool.Size() == 0 {
				continue
			}
			if _, err := p.sealBlock(ctx, 1); err != nil {
				return fmt.Errorf("producer: instant seal: %w", err)
			}
		}
	}
}

func (p *Producer) runInterval(ctx context.Context) error {
	interval := p.cfg.Interval
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if p.pool.Size() == 0 {
				continue
			}
			if _, err := p.sealBlock(ctx, p.cfg.MaxTxnsPerBlock); err != nil {
				return fmt.Errorf("producer: interval seal: %w", err)
			}
		}
	}
}

// SealGenesis seals block 0 from an already-prepared genesis state diff,
// with no transactions. ComputeHeaderCommitments runs on the genesis diff
// before the insert (it does not read StateRoot);
// BlockWriter.InsertBlockWithStatesAndReceipts then runs the state tables
// and the trie writer inside the same transaction as the header put, and
// the root it returns is set on the in-memory header before the returned
// block hash is computed.
func (p *Producer) SealGenesis(ctx context.Context, diff *types.StateDiff, timestamp uint64) (common.Hash, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	header := types.Header{
		Number:           0,
		ParentHash:       common.FeltZero,
		Timestamp:        timestamp,
		SequencerAddress: p.cfg.SequencerAddress,
		ProtocolVersion:  p.cfg.ProtocolVersion,
		L1DAMode:         p.cfg.L1DAMode,
	}
	p.oracle.CurrentPrices().ApplyTo(&header)
	types.ComputeHeaderCommitments(&header, nil, nil, diff)

	block := &types.Block{Header: header, Transactions: nil, Status: types.FinalityAcceptedOnL2}
	root, err := p.writer.InsertBlockWithStatesAndReceipts(ctx, state.SealedBlock{
		Block:    block,
		Receipts: nil,
		Diff:     diff,
	})
	if err != nil {
		return common.Hash{}, fmt.Errorf("producer: seal genesis: %w", err)
	}
	block.Header.StateRoot = root

	p.blockNumber = 1
	p.parentHash = block.Hash()
	if p.notifier != nil {
		p.notifier.NotifyNewHead(block.Header.Number, p.parentHash)
	}
	return p.parentHash, nil
}

// sealBlock drains up to maxTxns pending transactions, executes them,
// builds and persists the resulting block, and refreshes the validator
// against the newly sealed state (spec §4.5 steps 1-6).
func (p *Producer) sealBlock(ctx context.Context, maxTxns int) (common.Hash, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if maxTxns <= 0 {
		maxTxns = 1
	}
	txs := p.pool.TakeTransactions(maxTxns)
	if len(txs) == 0 {
		return common.Hash{}, nil
	}

	executed, execErr := p.executor.ExecuteTransactions(txs)
	if execErr != nil && !execErr.LimitsExhausted {
		return common.Hash{}, fmt.Errorf("producer: execute transactions: %w", execErr)
	}
	output := p.executor.TakeExecutionOutput()

	header := types.Header{
		Number:           p.blockNumber,
		ParentHash:       p.parentHash,
		Timestamp:        uint64(time.Now().Unix()),
		SequencerAddress: p.cfg.SequencerAddress,
		ProtocolVersion:  p.cfg.ProtocolVersion,
		L1DAMode:         p.cfg.L1DAMode,
	}
	p.oracle.CurrentPrices().ApplyTo(&header)

	sealedTxs := txs[:executed]
	receipts := make([]types.Receipt, len(output.Executed))
	for i, e := range output.Executed {
		receipts[i] = e.Receipt
	}
	types.ComputeHeaderCommitments(&header, sealedTxs, receipts, output.Diff)

	block := &types.Block{Header: header, Transactions: sealedTxs, Status: types.FinalityAcceptedOnL2}
	root, err := p.writer.InsertBlockWithStatesAndReceipts(ctx, state.SealedBlock{
		Block:    block,
		Receipts: receipts,
		Diff:     output.Diff,
	})
	if err != nil {
		return common.Hash{}, fmt.Errorf("producer: insert block: %w", err)
	}
	block.Header.StateRoot = root

	p.bouncer.Reset()
	p.blockNumber++
	p.parentHash = block.Hash()

	newProvider, err := p.factory.AtBlock(ctx, p.blockNumber-1)
	if err != nil {
		return common.Hash{}, fmt.Errorf("producer: refresh state provider: %w", err)
	}
	p.validator.Update(newProvider)

	if p.notifier != nil {
		p.notifier.NotifyNewHead(block.Header.Number, p.parentHash)
	}
	return p.parentHash, nil
}
