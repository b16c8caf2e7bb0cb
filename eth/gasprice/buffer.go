// Package gasprice implements the L1 gas-price oracle spec §4.6 describes:
// a fixed-price mode for fully-offline development and a sampled mode that
// rolls a 60-sample ring buffer of L1 base fees forward on a fixed
// interval.
//
// Grounded directly on original_source's crates/core/src/backend/gas_oracle.rs:
// GasOracle::{Fixed,Sampled}, GasPriceBuffer's 60-entry ring buffer,
// update_gas_price's "average of the last 60 samples plus 1 gwei" formula,
// and the minimum-price coercion §9.5 decides every sampled price is
// clamped through (never publishing a literal zero gas price).
package gasprice

// BufferSize is the number of trailing L1 base-fee samples averaged into
// the published gas price (original_source's BUFFER_SIZE = 60).
const BufferSize = 60

// OneGwei is the constant Starknet adds on top of the sampled L1 gas-price
// average (original_source's ONE_GWEI).
const OneGwei uint64 = 1_000_000_000

// Buffer is a fixed-capacity ring buffer of uint64 samples, the Go
// analogue of GasPriceBuffer's VecDeque<u128> (downsized to uint64 — no
// sampled L1 base fee Katana handles approaches u128 range).
type Buffer struct {
	samples []uint64
}

func NewBuffer() *Buffer {
	return &Buffer{samples: make([]uint64, 0, BufferSize)}
}

// AddSample appends sample, evicting the oldest entry once the buffer is
// at capacity.
func (b *Buffer) AddSample(sample uint64) {
	if len(b.samples) == BufferSize {
		b.samples = b.samples[1:]
	}
	b.samples = append(b.samples, sample)
}

// Average returns the mean of every sample currently buffered, 0 if empty.
func (b *Buffer) Average() uint64 {
	if len(b.samples) == 0 {
		return 0
	}
	var sum uint64
	for _, s := range b.samples {
		sum += s
	}
	return sum / uint64(len(b.samples))
}

// Len reports how many samples are currently buffered.
func (b *Buffer) Len() int { return len(b.samples) }
