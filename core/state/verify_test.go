package state

import (
	"testing"

	"github.com/stretchr/testify/require"

	statetrie "github.com/katana-go/katana/core/state/trie"
	"github.com/katana-go/katana/core/types"
	"github.com/katana-go/katana/katanalib/common"
	"github.com/katana-go/katana/katanalib/kv"
)

// memTx is a minimal in-memory kv.RwTx — enough Put/GetOne support for
// trie.Writer, nothing more. Mirrors sync/stages' memDB test helper.
type memTx struct {
	tables map[string]map[string][]byte
}

func newMemTx() *memTx {
	return &memTx{tables: make(map[string]map[string][]byte)}
}

func (t *memTx) table(name string) map[string][]byte {
	m, ok := t.tables[name]
	if !ok {
		m = make(map[string][]byte)
		t.tables[name] = m
	}
	return m
}

func (t *memTx) GetOne(table string, key []byte) ([]byte, error) {
	v, ok := t.table(table)[string(key)]
	if !ok {
		return nil, nil
	}
	return v, nil
}
func (t *memTx) Put(table string, key, value []byte) error {
	t.table(table)[string(key)] = append([]byte(nil), value...)
	return nil
}
func (t *memTx) Delete(table string, key []byte) error {
	delete(t.table(table), string(key))
	return nil
}
func (t *memTx) Cursor(table string) (kv.Cursor, error)               { panic("not implemented in verify_test") }
func (t *memTx) CursorDupSort(table string) (kv.CursorDupSort, error) { panic("not implemented in verify_test") }
func (t *memTx) RwCursor(table string) (kv.RwCursor, error)           { panic("not implemented in verify_test") }
func (t *memTx) RwCursorDupSort(table string) (kv.RwCursorDupSort, error) {
	panic("not implemented in verify_test")
}
func (t *memTx) ClearTable(table string) error        { delete(t.tables, table); return nil }
func (t *memTx) Stats(table string) (kv.Stats, error) { return kv.Stats{}, nil }
func (t *memTx) Commit() error                        { return nil }
func (t *memTx) Rollback()                            {}

func sampleDiff() *types.StateDiff {
	addr := common.FeltFromUint64(1)
	return &types.StateDiff{
		DeployedContracts: []types.DeployedContract{{Address: addr, ClassHash: common.FeltFromUint64(7)}},
		Nonces:            []types.NonceUpdate{{Address: addr, Nonce: common.FeltFromUint64(1)}},
		StorageDiffs: []types.ContractStorageDiff{{
			ContractAddress: addr,
			Entries:         []types.StorageDiffEntry{{Key: common.FeltFromUint64(5), Value: common.FeltFromUint64(500)}},
		}},
	}
}

func TestVerifyStateUpdateAcceptsMatchingRoot(t *testing.T) {
	diff := sampleDiff()

	tw := statetrie.NewWriter(newMemTx())
	_, err := tw.InsertContractUpdates(1, diff)
	require.NoError(t, err)
	root := tw.ComputeStateRoot()

	ok, err := VerifyStateUpdate(newMemTx(), 1, diff, root)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestVerifyStateUpdateRejectsWrongRoot(t *testing.T) {
	diff := sampleDiff()
	ok, err := VerifyStateUpdate(newMemTx(), 1, diff, common.FeltFromUint64(999))
	require.NoError(t, err)
	require.False(t, ok)
}
