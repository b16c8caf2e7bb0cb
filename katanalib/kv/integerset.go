package kv

import "github.com/RoaringBitmap/roaring/v2"

// IntegerSet is the compact set of block numbers spec §3 stores as the value
// of every <Trie>ChangeSet entry. Grounded on original_source's pruning
// tests (block_list.remove_range, block_list.is_empty()) — those are the
// operations this type needs to expose for the pruner (see
// core/state/trie/pruner.go).
type IntegerSet struct {
	bm *roaring.Bitmap
}

// NewIntegerSet builds a set from the given block numbers.
func NewIntegerSet(blocks ...uint64) *IntegerSet {
	bm := roaring.New()
	for _, b := range blocks {
		bm.Add(uint32(b))
	}
	return &IntegerSet{bm: bm}
}

// DecodeIntegerSet parses a changeset value as written by EncodeIntegerSet.
func DecodeIntegerSet(buf []byte) (*IntegerSet, error) {
	bm := roaring.New()
	if len(buf) > 0 {
		if _, err := bm.FromBuffer(buf); err != nil {
			return nil, err
		}
	}
	return &IntegerSet{bm: bm}, nil
}

// Encode serializes the set for storage as a ChangeSet value.
func (s *IntegerSet) Encode() ([]byte, error) {
	return s.bm.ToBytes()
}

// Add records that block touched this key.
func (s *IntegerSet) Add(block uint64) { s.bm.Add(uint32(block)) }

// Contains reports whether block is a member, backing invariant 4
// (b ∈ ChangeSet[k] ⇔ History[b] contains k).
func (s *IntegerSet) Contains(block uint64) bool { return s.bm.Contains(uint32(block)) }

// IsEmpty reports whether the set has no members, the condition under which
// the pruner deletes the ChangeSet key entirely (spec §4.2).
func (s *IntegerSet) IsEmpty() bool { return s.bm.IsEmpty() }

// RemoveRange clears every member <= cutoff (inclusive), the exact operation
// KeepLastN(k) pruning performs per original_source's pruning_tests.rs
// (`block_list.remove_range(0..=cutoff)`).
func (s *IntegerSet) RemoveRange(cutoff uint64) {
	if cutoff == roaringMaxUint32 {
		s.bm.Clear()
		return
	}
	s.bm.RemoveRange(0, uint64(cutoff)+1)
}

// Min returns the smallest member and true, or (0, false) if empty. Used by
// Scenario 5's assertion that every surviving ChangeSet has min() >= 8.
func (s *IntegerSet) Min() (uint64, bool) {
	if s.bm.IsEmpty() {
		return 0, false
	}
	return uint64(s.bm.Minimum()), true
}

// Slice returns the members in ascending order.
func (s *IntegerSet) Slice() []uint64 {
	arr := s.bm.ToArray()
	out := make([]uint64, len(arr))
	for i, v := range arr {
		out[i] = uint64(v)
	}
	return out
}

const roaringMaxUint32 = uint64(^uint32(0))
