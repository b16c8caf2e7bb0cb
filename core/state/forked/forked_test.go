package forked

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katana-go/katana/core/types"
	"github.com/katana-go/katana/katanalib/common"
)

type countingUpstream struct {
	nonceCalls int
	nonce      common.Felt
}

func (u *countingUpstream) GetNonce(ctx context.Context, blockNumber uint64, addr common.Address) (common.Felt, error) {
	u.nonceCalls++
	return u.nonce, nil
}
func (u *countingUpstream) GetClassHashAt(ctx context.Context, blockNumber uint64, addr common.Address) (common.ClassHash, error) {
	return common.FeltZero, nil
}
func (u *countingUpstream) GetStorageAt(ctx context.Context, blockNumber uint64, addr common.Address, slot common.Felt) (common.Felt, error) {
	return common.FeltZero, nil
}
func (u *countingUpstream) GetClass(ctx context.Context, blockNumber uint64, classHash common.ClassHash) (*types.ContractClass, error) {
	return &types.ContractClass{}, nil
}
func (u *countingUpstream) GetCompiledClassHash(ctx context.Context, blockNumber uint64, classHash common.ClassHash) (common.Felt, error) {
	return common.FeltZero, nil
}

func TestProviderCachesAfterFirstFetch(t *testing.T) {
	up := &countingUpstream{nonce: common.FeltFromUint64(42)}
	p := New(context.Background(), up, 100)

	addr := common.FeltFromUint64(1)
	v1, err := p.Nonce(addr)
	require.NoError(t, err)
	require.Equal(t, common.FeltFromUint64(42), v1)

	v2, err := p.Nonce(addr)
	require.NoError(t, err)
	require.Equal(t, v1, v2)
	require.Equal(t, 1, up.nonceCalls)
}
