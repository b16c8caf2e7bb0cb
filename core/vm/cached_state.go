// Package vm supplies the Executor implementation core/txpool's Validator
// and eth/producer's Producer both consume through their Executor seams.
// Spec §2 names block execution itself as running "via an external VM" —
// the same boundary original_source draws: its
// crates/executor/src/implementation/blockifier/mod.rs is a thin adapter
// around the separate `blockifier` crate (a full Cairo-VM/Starknet
// execution engine), not something this repository implements itself.
// There is no Go equivalent of blockifier in this pack or the wider
// ecosystem, so this package is deliberately a documented placeholder: it
// implements the effects of a transaction that are defined by the
// protocol's bookkeeping rules alone (nonce increments, class
// declarations, account deployments) and stops short of interpreting
// Cairo bytecode or running a contract's arbitrary storage writes —
// exactly the part original_source delegates to blockifier.
package vm

import (
	"github.com/katana-go/katana/core/state"
	"github.com/katana-go/katana/core/types"
	"github.com/katana-go/katana/katanalib/common"
)

// CachedState is a mutable overlay over a StateProvider snapshot, the Go
// analogue of original_source's blockifier CachedState: reads fall through
// to the underlying provider until a key has been written this block, at
// which point the overlay answers instead (spec §4.5 "Executor ... owns a
// mutable copy of the pending state").
type CachedState struct {
	provider state.StateProvider

	nonces    map[common.Address]common.Felt
	classHash map[common.Address]common.ClassHash
	storage   map[common.Address]map[common.Felt]common.Felt
	classes   map[common.ClassHash]*types.ContractClass
	compiled  map[common.ClassHash]common.Felt

	// diff accumulates the edits made this block, in the exact shape
	// ApplyStateDiff / the trie writer expect.
	diff types.StateDiff
}

func NewCachedState(provider state.StateProvider) *CachedState {
	return &CachedState{
		provider:  provider,
		nonces:    make(map[common.Address]common.Felt),
		classHash: make(map[common.Address]common.ClassHash),
		storage:   make(map[common.Address]map[common.Felt]common.Felt),
		classes:   make(map[common.ClassHash]*types.ContractClass),
		compiled:  make(map[common.ClassHash]common.Felt),
	}
}

func (s *CachedState) Nonce(addr common.Address) (common.Felt, error) {
	if n, ok := s.nonces[addr]; ok {
		return n, nil
	}
	return s.provider.Nonce(addr)
}

func (s *CachedState) ClassHashAt(addr common.Address) (common.ClassHash, error) {
	if h, ok := s.classHash[addr]; ok {
		return h, nil
	}
	return s.provider.ClassHashAt(addr)
}

func (s *CachedState) StorageAt(addr common.Address, slot common.Felt) (common.Felt, error) {
	if m, ok := s.storage[addr]; ok {
		if v, ok := m[slot]; ok {
			return v, nil
		}
	}
	return s.provider.StorageAt(addr, slot)
}

func (s *CachedState) Class(classHash common.ClassHash) (*types.ContractClass, error) {
	if c, ok := s.classes[classHash]; ok {
		return c, nil
	}
	return s.provider.Class(classHash)
}

func (s *CachedState) CompiledClassHash(classHash common.ClassHash) (common.Felt, error) {
	if h, ok := s.compiled[classHash]; ok {
		return h, nil
	}
	return s.provider.CompiledClassHash(classHash)
}

// bumpNonce advances addr's nonce by one, recording the new value both in
// the overlay (so the next transaction from the same sender in this block
// sees it) and in the accumulated diff.
func (s *CachedState) bumpNonce(addr common.Address) common.Felt {
	current, _ := s.Nonce(addr)
	next := current.Add(common.FeltOne)
	s.nonces[addr] = next
	s.setNonceDiff(addr, next)
	return next
}

func (s *CachedState) setNonceDiff(addr common.Address, nonce common.Felt) {
	for i, n := range s.diff.Nonces {
		if n.Address == addr {
			s.diff.Nonces[i].Nonce = nonce
			return
		}
	}
	s.diff.Nonces = append(s.diff.Nonces, types.NonceUpdate{Address: addr, Nonce: nonce})
}

// declareClass records a class declaration: V2+ classes carry a compiled
// class hash (Sierra), V0/V1 classes (Cairo 0, legacy) are recorded in
// DeprecatedClasses instead (spec §3 "Contract class").
func (s *CachedState) declareClass(classHash common.ClassHash, compiledClassHash *common.Felt) {
	if compiledClassHash != nil {
		s.compiled[classHash] = *compiledClassHash
		s.diff.DeclaredClasses = append(s.diff.DeclaredClasses, types.DeclaredClass{
			ClassHash:         classHash,
			CompiledClassHash: *compiledClassHash,
		})
		return
	}
	s.diff.DeprecatedClasses = append(s.diff.DeprecatedClasses, classHash)
}

// deployContract records a new contract's address->class_hash binding.
func (s *CachedState) deployContract(addr common.Address, classHash common.ClassHash) {
	s.classHash[addr] = classHash
	s.diff.DeployedContracts = append(s.diff.DeployedContracts, types.DeployedContract{
		Address: addr, ClassHash: classHash,
	})
}

// takeDiff returns the accumulated diff and resets the overlay's dirty
// sets, called once per sealed block (mirrors take_execution_output
// draining the executor, spec §4.5).
func (s *CachedState) takeDiff() *types.StateDiff {
	diff := s.diff
	s.diff = types.StateDiff{}
	return &diff
}
