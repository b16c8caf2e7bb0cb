// Package txpool implements the mempool spec §4.4 describes: a
// priority-ordered pending set plus a stateful validator that tracks each
// sender's pool-local nonce independently of the last-sealed block's state.
//
// Grounded directly on original_source's crates/pool/pool-api/src/tx.rs
// (TxId{sender,nonce}, PendingTx<T,O> ordered by sender+nonce when two txs
// share a sender, else by priority) and
// crates/pool/src/validation/stateful.rs (TxValidator: pool_nonces map,
// Mutex-guarded Inner, the skip_validate rule for a first
// deploy_account+invoke(nonce=1) pair).
package txpool

import (
	"math/big"

	"github.com/katana-go/katana/katanalib/common"
)

// TxID identifies a pooled transaction by its sender and nonce — two
// transactions from the same sender are always ordered by nonce regardless
// of priority (original_source's TxId/PendingTx::cmp).
type TxID struct {
	Sender common.Address
	Nonce  common.Felt
}

// Parent returns the TxID one nonce below id, or false if id.Nonce is zero.
func (id TxID) Parent() (TxID, bool) {
	if id.Nonce.IsZero() {
		return TxID{}, false
	}
	prev := new(big.Int).Sub(id.Nonce.Big(), big.NewInt(1))
	return TxID{Sender: id.Sender, Nonce: common.FeltFromBigInt(prev)}, true
}

// Descendent returns the TxID one nonce above id.
func (id TxID) Descendent() TxID {
	return TxID{Sender: id.Sender, Nonce: id.Nonce.Add(common.FeltOne)}
}
