package gasprice

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/katana-go/katana/core/types"
	"github.com/katana-go/katana/katanalib/common"
)

// L1PriceSample is one L1 base-fee observation: the execution gas price and
// the blob (data) gas price for a single L1 block, as surfaced by an
// Ethereum fee-history endpoint.
type L1PriceSample struct {
	GasPrice  uint64
	BlobPrice uint64
}

// L1FeeSource samples the L1 base fee and blob base fee, the seam an
// Ethereum JSON-RPC client (eth_feeHistory) sits behind. Grounded on
// original_source's EthereumSampledGasOracle's `provider: Url` field —
// here named for what it does rather than carrying a concrete client type.
type L1FeeSource interface {
	SampleL1Fees(ctx context.Context) (L1PriceSample, error)
}

// GasPrice is one resource family's price, quoted in both fee units. Wei is
// the ETH-denominated amount, Fri the STRK-denominated amount (spec §4.5's
// FeeUnit).
type GasPrice struct {
	Wei uint64
	Fri uint64
}

// HeaderGasPrices is the full six-field triple Header carries (spec §3).
type HeaderGasPrices struct {
	L1Gas     GasPrice
	L1DataGas GasPrice
	L2Gas     GasPrice
}

// ApplyTo fills h's six gas-price fields from p.
func (p HeaderGasPrices) ApplyTo(h *types.Header) {
	h.L1GasPriceWei = common.FeltFromUint64(p.L1Gas.Wei)
	h.L1GasPriceFri = common.FeltFromUint64(p.L1Gas.Fri)
	h.L1DataGasPriceWei = common.FeltFromUint64(p.L1DataGas.Wei)
	h.L1DataGasPriceFri = common.FeltFromUint64(p.L1DataGas.Fri)
	h.L2GasPriceWei = common.FeltFromUint64(p.L2Gas.Wei)
	h.L2GasPriceFri = common.FeltFromUint64(p.L2Gas.Fri)
}

// Oracle is the gas-price source a producer consults when sealing a block
// (original_source's GasOracle enum, collapsed to an interface since Go has
// no tagged-union match ergonomics).
type Oracle interface {
	// CurrentPrices returns the triple to stamp on the next header.
	CurrentPrices() HeaderGasPrices
}

// minPrice is the floor every published price is coerced through — §9.5
// decides a literal zero gas price must never reach a header, since a
// zero L1 gas price makes the fee market unenforceable for L1-priced
// transactions still in the mempool.
const minPrice uint64 = 1

func clamp(v uint64) uint64 {
	if v < minPrice {
		return minPrice
	}
	return v
}

// FixedOracle publishes a constant triple forever (original_source's
// FixedGasOracle — used for devnets and tests where there is no L1 to
// sample from).
type FixedOracle struct {
	prices HeaderGasPrices
}

// NewFixedOracle builds a FixedOracle, clamping every field through
// minPrice the same way the sampled oracle does.
func NewFixedOracle(prices HeaderGasPrices) *FixedOracle {
	prices.L1Gas.Wei = clamp(prices.L1Gas.Wei)
	prices.L1Gas.Fri = clamp(prices.L1Gas.Fri)
	prices.L1DataGas.Wei = clamp(prices.L1DataGas.Wei)
	prices.L1DataGas.Fri = clamp(prices.L1DataGas.Fri)
	prices.L2Gas.Wei = clamp(prices.L2Gas.Wei)
	prices.L2Gas.Fri = clamp(prices.L2Gas.Fri)
	return &FixedOracle{prices: prices}
}

// NewStarknetFixedOracle mirrors original_source's sampled_starknet(): L2
// gas has no native StarkNet price signal to sample yet, so it is pinned at
// the floor rather than derived (the Rust side documents this as a
// placeholder too, not something this port invented).
func NewStarknetFixedOracle() *FixedOracle {
	return NewFixedOracle(HeaderGasPrices{
		L1Gas:     GasPrice{Wei: minPrice, Fri: minPrice},
		L1DataGas: GasPrice{Wei: minPrice, Fri: minPrice},
		L2Gas:     GasPrice{Wei: minPrice, Fri: minPrice},
	})
}

func (o *FixedOracle) CurrentPrices() HeaderGasPrices { return o.prices }

// SampledOracle samples an L1FeeSource on a fixed interval and publishes a
// rolling average, the Go analogue of original_source's
// EthereumSampledGasOracle + GasOracleWorker pair. L2 gas is held fixed at
// the floor (sampled_starknet's rationale applies equally here: StarkNet
// has no native L2 gas-price signal).
type SampledOracle struct {
	source L1FeeSource

	mu     sync.RWMutex
	prices HeaderGasPrices

	gasBuf  *Buffer
	blobBuf *Buffer
}

// NewSampledOracle builds a SampledOracle that has not sampled yet; until
// its worker's first tick, CurrentPrices returns the floor on every field.
func NewSampledOracle(source L1FeeSource) *SampledOracle {
	return &SampledOracle{
		source: source,
		prices: HeaderGasPrices{
			L1Gas:     GasPrice{Wei: minPrice, Fri: minPrice},
			L1DataGas: GasPrice{Wei: minPrice, Fri: minPrice},
			L2Gas:     GasPrice{Wei: minPrice, Fri: minPrice},
		},
		gasBuf:  NewBuffer(),
		blobBuf: NewBuffer(),
	}
}

func (o *SampledOracle) CurrentPrices() HeaderGasPrices {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.prices
}

// sampleInterval is how often the worker pulls a fresh L1 sample
// (original_source's GasOracleWorker runs on a 60 second tick).
const sampleInterval = 60 * time.Second

// Run samples the L1 fee source every sampleInterval until ctx is
// cancelled, updating the published price on each tick (original_source's
// GasOracleWorker::run). The first sample is taken immediately rather than
// waiting out the first interval, so a freshly started node does not seal
// its genesis/first blocks against the floor price unnecessarily.
func (o *SampledOracle) Run(ctx context.Context) error {
	if err := o.updateOnce(ctx); err != nil {
		return fmt.Errorf("gasprice: initial sample: %w", err)
	}

	ticker := time.NewTicker(sampleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			// A sampling failure is not fatal to the worker loop — the
			// oracle keeps publishing its last-known average until the
			// next tick succeeds (original_source logs and continues
			// rather than tearing down the worker on one bad poll).
			_ = o.updateOnce(ctx)
		}
	}
}

// updateOnce pulls one sample, folds it into both ring buffers, and
// republishes the averaged price — original_source's update_gas_price:
// avg_gas_price = gas_price_buffer.average() + ONE_GWEI (both wei and fri
// fields set equal, since there is no separate STRK-denominated L1 signal
// to sample independently); avg_blob_price = data_gas_price_buffer.average()
// with no added offset.
func (o *SampledOracle) updateOnce(ctx context.Context) error {
	sample, err := o.source.SampleL1Fees(ctx)
	if err != nil {
		return err
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	o.gasBuf.AddSample(sample.GasPrice)
	o.blobBuf.AddSample(sample.BlobPrice)

	avgGasPrice := clamp(o.gasBuf.Average() + OneGwei)
	avgBlobPrice := clamp(o.blobBuf.Average())

	o.prices.L1Gas = GasPrice{Wei: avgGasPrice, Fri: avgGasPrice}
	o.prices.L1DataGas = GasPrice{Wei: avgBlobPrice, Fri: avgBlobPrice}
	// L2 gas stays pinned at the floor — see sampled_starknet's rationale.
	o.prices.L2Gas = GasPrice{Wei: minPrice, Fri: minPrice}
	return nil
}
