package producer

import (
	"github.com/katana-go/katana/core/types"
)

// BlockLimits is the per-block resource cap the bouncer enforces (spec
// §4.5/§8 "Bouncer at exactly block_max_capacity.sierra_gas").
type BlockLimits struct {
	CairoSteps uint64
	SierraGas  uint64
}

// DefaultBlockLimits matches the devnet-sized cap original_source ships by
// default — generous enough that ordinary test batches never trip it, but
// finite so a seal's LimitsExhausted path is exercisable.
var DefaultBlockLimits = BlockLimits{
	CairoSteps: 4_000_000,
	SierraGas:  4_000_000_000,
}

// Bouncer tracks cumulative resource usage across a block-in-progress and
// decides when the next transaction would overflow BlockLimits.
type Bouncer struct {
	limits BlockLimits
	used   types.ExecutionResources
}

func NewBouncer(limits BlockLimits) *Bouncer {
	return &Bouncer{limits: limits}
}

// WouldExceed reports whether adding res on top of the bouncer's current
// tally would overflow either cap, without committing the addition.
func (b *Bouncer) WouldExceed(res types.ExecutionResources) bool {
	steps := b.used.Steps + res.Steps
	gas := b.used.SierraGas + res.SierraGas
	return steps > b.limits.CairoSteps || gas > b.limits.SierraGas
}

// Add commits res into the running tally; callers must have already
// checked WouldExceed.
func (b *Bouncer) Add(res types.ExecutionResources) {
	b.used.Steps += res.Steps
	b.used.MemoryHoles += res.MemoryHoles
	b.used.SierraGas += res.SierraGas
	b.used.Pedersen += res.Pedersen
	b.used.RangeCheck += res.RangeCheck
	b.used.Bitwise += res.Bitwise
	b.used.ECOP += res.ECOP
	b.used.Poseidon += res.Poseidon
	b.used.Keccak += res.Keccak
	b.used.SegmentArena += res.SegmentArena
}

// Used returns the resources consumed so far this block.
func (b *Bouncer) Used() types.ExecutionResources { return b.used }

// Reset clears the tally, called once a block has been sealed.
func (b *Bouncer) Reset() { b.used = types.ExecutionResources{} }
