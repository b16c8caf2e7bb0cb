package producer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katana-go/katana/core/types"
)

func TestBouncerTripsAtCairoStepCap(t *testing.T) {
	b := NewBouncer(BlockLimits{CairoSteps: 1000, SierraGas: 1_000_000_000})

	require.False(t, b.WouldExceed(types.ExecutionResources{Steps: 999}))
	b.Add(types.ExecutionResources{Steps: 999})

	require.True(t, b.WouldExceed(types.ExecutionResources{Steps: 2}))
	require.False(t, b.WouldExceed(types.ExecutionResources{Steps: 1}))
}

func TestBouncerTripsAtSierraGasCap(t *testing.T) {
	b := NewBouncer(BlockLimits{CairoSteps: 1_000_000, SierraGas: 500})

	require.True(t, b.WouldExceed(types.ExecutionResources{SierraGas: 600}))
	require.False(t, b.WouldExceed(types.ExecutionResources{SierraGas: 400}))
}

func TestBouncerDoesNotDoubleCountSierraGasFromSteps(t *testing.T) {
	// res.SierraGas is already the step-derived gas cost by construction
	// (steps * 100); WouldExceed must not add that conversion a second time
	// on top of the already-gas-denominated total.
	b := NewBouncer(BlockLimits{CairoSteps: 1_000_000, SierraGas: 1000})

	require.False(t, b.WouldExceed(types.ExecutionResources{Steps: 5, SierraGas: 500}))
}

func TestBouncerResetClearsTally(t *testing.T) {
	b := NewBouncer(BlockLimits{CairoSteps: 10, SierraGas: 10})
	b.Add(types.ExecutionResources{Steps: 10})
	require.True(t, b.WouldExceed(types.ExecutionResources{Steps: 1}))

	b.Reset()
	require.False(t, b.WouldExceed(types.ExecutionResources{Steps: 1}))
}
