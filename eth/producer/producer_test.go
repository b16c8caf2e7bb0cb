package producer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/katana-go/katana/core/txpool"
)

func TestProducerModeDefaultsAndSwitches(t *testing.T) {
	p := New(Config{Mode: ModeInstant}, nil, txpool.NewPool(), nil, nil, nil, nil, 0, [32]byte{})
	require.Equal(t, ModeInstant, p.Mode())

	p.SetMode(ModeInterval)
	require.Equal(t, ModeInterval, p.Mode())
}

func TestProducerSealBlockNoopsOnEmptyPool(t *testing.T) {
	p := New(Config{Mode: ModeInstant, Interval: 10 * time.Millisecond}, nil, txpool.NewPool(), nil, nil, nil, nil, 5, [32]byte{})
	hash, err := p.sealBlock(nil, 1)
	require.NoError(t, err)
	require.Zero(t, hash)
	require.Equal(t, uint64(5), p.blockNumber)
}
