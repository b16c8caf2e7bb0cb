package rpc

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katana-go/katana/core/state"
	"github.com/katana-go/katana/core/types"
	"github.com/katana-go/katana/core/txpool"
	"github.com/katana-go/katana/katanalib/common"
	"github.com/katana-go/katana/katanalib/kv"
)

type fakeProvider struct {
	nonces map[common.Address]common.Felt
}

func (f *fakeProvider) Nonce(addr common.Address) (common.Felt, error) { return f.nonces[addr], nil }
func (f *fakeProvider) ClassHashAt(addr common.Address) (common.ClassHash, error) {
	return common.FeltZero, nil
}
func (f *fakeProvider) StorageAt(addr common.Address, slot common.Felt) (common.Felt, error) {
	return common.FeltFromUint64(7), nil
}
func (f *fakeProvider) Class(classHash common.ClassHash) (*types.ContractClass, error) {
	return nil, nil
}
func (f *fakeProvider) CompiledClassHash(classHash common.ClassHash) (common.Felt, error) {
	return common.FeltZero, nil
}

type fakeFactory struct{ provider *fakeProvider }

func (f *fakeFactory) Latest(ctx context.Context) (state.StateProvider, error) { return f.provider, nil }
func (f *fakeFactory) AtBlock(ctx context.Context, blockNumber uint64) (state.StateProvider, error) {
	return f.provider, nil
}

// memDB is a minimal in-memory kv.RwDB, enough for ChainReader's GetOne/
// Cursor-over-Headers usage in these tests.
type memDB struct {
	mu     sync.Mutex
	tables map[string]map[string][]byte
}

func newMemDB() *memDB { return &memDB{tables: make(map[string]map[string][]byte)} }

func (d *memDB) table(name string) map[string][]byte {
	t, ok := d.tables[name]
	if !ok {
		t = make(map[string][]byte)
		d.tables[name] = t
	}
	return t
}

func (d *memDB) View(ctx context.Context, f func(kv.Tx) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return f(&memTx{db: d})
}
func (d *memDB) BeginRo(ctx context.Context) (kv.Tx, error)   { return &memTx{db: d}, nil }
func (d *memDB) Update(ctx context.Context, f func(kv.RwTx) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return f(&memTx{db: d})
}
func (d *memDB) BeginRw(ctx context.Context) (kv.RwTx, error) { return &memTx{db: d}, nil }
func (d *memDB) Close()                                       {}

type memTx struct{ db *memDB }

func (t *memTx) GetOne(table string, key []byte) ([]byte, error) {
	return t.db.table(table)[string(key)], nil
}
func (t *memTx) Put(table string, key, value []byte) error {
	t.db.table(table)[string(key)] = append([]byte(nil), value...)
	return nil
}
func (t *memTx) Delete(table string, key []byte) error {
	delete(t.db.table(table), string(key))
	return nil
}
func (t *memTx) Cursor(table string) (kv.Cursor, error) {
	return &memCursor{entries: t.sortedEntries(table)}, nil
}
func (t *memTx) sortedEntries(table string) [][2][]byte {
	m := t.db.table(table)
	out := make([][2][]byte, 0, len(m))
	for k, v := range m {
		out = append(out, [2][]byte{[]byte(k), v})
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && string(out[j][0]) < string(out[j-1][0]); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}
func (t *memTx) CursorDupSort(table string) (kv.CursorDupSort, error) { panic("unused") }
func (t *memTx) RwCursor(table string) (kv.RwCursor, error)           { panic("unused") }
func (t *memTx) RwCursorDupSort(table string) (kv.RwCursorDupSort, error) { panic("unused") }
func (t *memTx) ClearTable(table string) error                        { delete(t.db.tables, table); return nil }
func (t *memTx) Stats(table string) (kv.Stats, error)                 { return kv.Stats{}, nil }
func (t *memTx) Commit() error                                        { return nil }
func (t *memTx) Rollback()                                            {}

type memCursor struct {
	entries [][2][]byte
	pos     int
}

func (c *memCursor) First() ([]byte, []byte, error) {
	if len(c.entries) == 0 {
		return nil, nil, nil
	}
	c.pos = 0
	return c.entries[0][0], c.entries[0][1], nil
}
func (c *memCursor) Next() ([]byte, []byte, error) {
	c.pos++
	if c.pos >= len(c.entries) {
		return nil, nil, nil
	}
	return c.entries[c.pos][0], c.entries[c.pos][1], nil
}
func (c *memCursor) Seek(seek []byte) ([]byte, []byte, error) { panic("unused") }
func (c *memCursor) Last() ([]byte, []byte, error) {
	if len(c.entries) == 0 {
		return nil, nil, nil
	}
	c.pos = len(c.entries) - 1
	return c.entries[c.pos][0], c.entries[c.pos][1], nil
}
func (c *memCursor) Close() {}

func newTestServer() (*Server, *memDB) {
	db := newMemDB()
	provider := &fakeProvider{nonces: make(map[common.Address]common.Felt)}
	s := New(Config{
		ChainID: common.FeltFromUint64(1),
		Factory: &fakeFactory{provider: provider},
		Chain:   state.NewChainReader(db),
	})
	return s, db
}

func TestDispatchChainID(t *testing.T) {
	s, _ := newTestServer()
	resp := s.dispatch(Request{JSONRPC: "2.0", Method: "chain_id"})
	require.Nil(t, resp.Error)
	require.Equal(t, common.FeltFromUint64(1), resp.Result)
}

func TestDispatchMethodNotFound(t *testing.T) {
	s, _ := newTestServer()
	resp := s.dispatch(Request{JSONRPC: "2.0", Method: "nonexistent"})
	require.NotNil(t, resp.Error)
	require.Equal(t, codeMethodNotFound, resp.Error.Code)
}

func TestGetNonceReadsThroughProvider(t *testing.T) {
	s, _ := newTestServer()
	addr := common.FeltFromUint64(42)
	s.cfg.Factory.(*fakeFactory).provider.nonces[addr] = common.FeltFromUint64(5)

	params, _ := json.Marshal(map[string]interface{}{
		"block_id":         "latest",
		"contract_address": addr.Hex(),
	})
	resp := s.dispatch(Request{JSONRPC: "2.0", Method: "get_nonce", Params: params})
	require.Nil(t, resp.Error)
	require.Equal(t, common.FeltFromUint64(5), resp.Result)
}

func TestBlockNumberNotFoundOnEmptyChain(t *testing.T) {
	s, _ := newTestServer()
	resp := s.dispatch(Request{JSONRPC: "2.0", Method: "block_number"})
	require.NotNil(t, resp.Error)
	require.Equal(t, ErrBlockNotFound, resp.Error.Code)
}

func TestBlockNumberReturnsLatestHeader(t *testing.T) {
	s, db := newTestServer()
	db.table(kv.Headers)[string(kv.EncodeBlockNumber(3))] = []byte{0}

	resp := s.dispatch(Request{JSONRPC: "2.0", Method: "block_number"})
	require.Nil(t, resp.Error)
	require.EqualValues(t, 3, resp.Result)
}

var _ = txpool.OutcomeValid
