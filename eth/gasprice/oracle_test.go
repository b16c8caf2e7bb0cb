package gasprice

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBufferAveragesAndEvicts(t *testing.T) {
	b := NewBuffer()
	require.Equal(t, uint64(0), b.Average())

	for i := uint64(1); i <= BufferSize; i++ {
		b.AddSample(i * 10)
	}
	require.Equal(t, BufferSize, b.Len())

	// average of 10,20,...,600 is 305
	require.Equal(t, uint64(305), b.Average())

	// one more sample evicts the oldest (10), keeping the buffer at capacity.
	b.AddSample(610)
	require.Equal(t, BufferSize, b.Len())
}

func TestFixedOracleClampsToFloor(t *testing.T) {
	o := NewFixedOracle(HeaderGasPrices{})
	prices := o.CurrentPrices()
	require.Equal(t, uint64(minPrice), prices.L1Gas.Wei)
	require.Equal(t, uint64(minPrice), prices.L2Gas.Fri)
}

func TestStarknetFixedOracleIsPinnedAtFloor(t *testing.T) {
	o := NewStarknetFixedOracle()
	prices := o.CurrentPrices()
	require.Equal(t, uint64(minPrice), prices.L2Gas.Wei)
	require.Equal(t, uint64(minPrice), prices.L2Gas.Fri)
}

type fixedSource struct {
	sample L1PriceSample
}

func (s fixedSource) SampleL1Fees(ctx context.Context) (L1PriceSample, error) {
	return s.sample, nil
}

func TestSampledOracleUpdateOnceAppliesGweiOffset(t *testing.T) {
	src := fixedSource{sample: L1PriceSample{GasPrice: 5_000_000_000, BlobPrice: 2_000_000_000}}
	o := NewSampledOracle(src)

	require.NoError(t, o.updateOnce(context.Background()))

	prices := o.CurrentPrices()
	require.Equal(t, uint64(5_000_000_000+OneGwei), prices.L1Gas.Wei)
	require.Equal(t, uint64(5_000_000_000+OneGwei), prices.L1Gas.Fri)
	require.Equal(t, uint64(2_000_000_000), prices.L1DataGas.Wei)
	require.Equal(t, uint64(minPrice), prices.L2Gas.Wei)
}

func TestSampledOracleNeverPublishesZero(t *testing.T) {
	src := fixedSource{sample: L1PriceSample{GasPrice: 0, BlobPrice: 0}}
	o := NewSampledOracle(src)

	require.NoError(t, o.updateOnce(context.Background()))

	prices := o.CurrentPrices()
	// 0 + OneGwei is already above the floor, so only the blob price needs
	// clamping here.
	require.Equal(t, uint64(OneGwei), prices.L1Gas.Wei)
	require.Equal(t, uint64(minPrice), prices.L1DataGas.Wei)
}
