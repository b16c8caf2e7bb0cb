package mdbx

import (
	"github.com/erigontech/mdbx-go/mdbx"
)

// cursor implements kv.Cursor / kv.RwCursor / kv.CursorDupSort /
// kv.RwCursorDupSort — mdbx-go's *mdbx.Cursor already exposes every
// operation those interfaces need, this type just adapts its return/error
// shape (notFound -> nil,nil instead of an error) to the engine-agnostic
// contract in katanalib/kv.
type cursor struct {
	c *mdbx.Cursor
}

func (c *cursor) First() ([]byte, []byte, error)        { return notFoundAsNil(c.c.Get(nil, nil, mdbx.First)) }
func (c *cursor) Last() ([]byte, []byte, error)          { return notFoundAsNil(c.c.Get(nil, nil, mdbx.Last)) }
func (c *cursor) Next() ([]byte, []byte, error)          { return notFoundAsNil(c.c.Get(nil, nil, mdbx.Next)) }
func (c *cursor) Seek(seek []byte) ([]byte, []byte, error) {
	return notFoundAsNil(c.c.Get(seek, nil, mdbx.SetRange))
}
func (c *cursor) Close() { c.c.Close() }

func (c *cursor) Put(k, v []byte) error    { return c.c.Put(k, v, 0) }
func (c *cursor) Delete(_ []byte) error    { return c.c.Del(0) }
func (c *cursor) PutNoDupData(k, v []byte) error { return c.c.Put(k, v, mdbx.NoDupData) }
func (c *cursor) AppendDup(k, v []byte) error    { return c.c.Put(k, v, mdbx.AppendDup) }

func (c *cursor) SeekExact(k []byte) ([]byte, error) {
	_, v, err := notFoundAsNil(c.c.Get(k, nil, mdbx.Set))
	return v, err
}

func (c *cursor) FirstDup() ([]byte, error) {
	_, v, err := notFoundAsNil(c.c.Get(nil, nil, mdbx.FirstDup))
	return v, err
}

func (c *cursor) LastDup() ([]byte, error) {
	_, v, err := notFoundAsNil(c.c.Get(nil, nil, mdbx.LastDup))
	return v, err
}

func (c *cursor) NextDup() ([]byte, []byte, error) {
	return notFoundAsNil(c.c.Get(nil, nil, mdbx.NextDup))
}

func (c *cursor) CountDuplicates() (uint64, error) {
	n, err := c.c.Count()
	return n, err
}

// DeleteCurrentDuplicates removes every value at the cursor's current key in
// O(1), the primitive spec §4.1 requires and the pruner's Latest/KeepLastN
// modes rely on (see core/state/trie/pruner.go).
func (c *cursor) DeleteCurrentDuplicates() error {
	return c.c.Del(mdbx.AllDups)
}

func notFoundAsNil(k, v []byte, err error) ([]byte, []byte, error) {
	if mdbx.IsNotFound(err) {
		return nil, nil, nil
	}
	return k, v, err
}
