package state

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katana-go/katana/core/types"
	"github.com/katana-go/katana/katanalib/common"
)

func TestContractInfoCodecRoundTrip(t *testing.T) {
	ci := contractInfo{Nonce: common.FeltFromUint64(3), ClassHash: common.FeltFromUint64(77)}
	decoded, err := decodeContractInfo(encodeContractInfo(ci))
	require.NoError(t, err)
	require.Equal(t, ci, decoded)
}

func TestStorageValueCodecRoundTrip(t *testing.T) {
	slot, value := common.FeltFromUint64(5), common.FeltFromUint64(500)
	s, v, err := decodeStorageValue(encodeStorageValue(slot, value))
	require.NoError(t, err)
	require.Equal(t, slot, s)
	require.Equal(t, value, v)
}

func TestContractClassCodecRoundTrip(t *testing.T) {
	c := &types.ContractClass{
		SierraProgram:        []common.Felt{common.FeltFromUint64(1), common.FeltFromUint64(2)},
		ContractClassVersion: "0.1.0",
		ABI:                  `[{"type":"function"}]`,
		SierraEntryPoints: types.SierraEntryPoints{
			External: []types.SierraEntryPoint{{Selector: common.FeltFromUint64(9), FunctionIndex: 1}},
		},
	}
	encoded, err := encodeContractClass(c)
	require.NoError(t, err)

	decoded, err := decodeContractClass(encoded)
	require.NoError(t, err)
	require.Equal(t, c.SierraProgram, decoded.SierraProgram)
	require.Equal(t, c.ContractClassVersion, decoded.ContractClassVersion)
	require.Equal(t, c.ABI, decoded.ABI)
	require.Equal(t, c.SierraEntryPoints, decoded.SierraEntryPoints)
}
