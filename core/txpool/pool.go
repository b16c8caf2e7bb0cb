package txpool

import (
	"sync"
	"time"

	"github.com/google/btree"

	"github.com/katana-go/katana/core/types"
)

// Priority is the ordering value assigned to a pooled transaction —
// currently just its tip (spec §4.4 "ordering: tip descending, then
// insertion order"); a zero-tip tx is valid and lowest-priority, never an
// error.
type Priority uint64

// pendingTx wraps one pooled transaction with its priority and arrival
// time, mirroring original_source's PendingTx<T,O>.
type pendingTx struct {
	id       TxID
	tx       types.Transaction
	priority Priority
	addedAt  time.Time
	seq      uint64 // monotonic tie-breaker, since time.Now() can collide
}

// Less implements btree.Item's ordering: same-sender transactions always
// order by nonce (ignoring priority), exactly mirroring
// PendingTx::cmp's "if self.id.sender == other.id.sender" branch; otherwise
// higher priority sorts first, ties broken by arrival order.
func (a *pendingTx) Less(than btree.Item) bool {
	b := than.(*pendingTx)
	if a.id.Sender == b.id.Sender {
		return a.id.Nonce.Cmp(b.id.Nonce) < 0
	}
	if a.priority != b.priority {
		return a.priority > b.priority // higher tip sorts first
	}
	return a.seq < b.seq
}

// Pool is the priority-ordered pending transaction set (spec §4.4). It does
// not itself validate transactions — AddTransaction assumes the caller has
// already run the transaction through a Validator and obtained
// ValidationOutcome.Valid.
type Pool struct {
	mu      sync.Mutex
	byID    map[TxID]*pendingTx
	ordered *btree.BTree
	seq     uint64
}

func NewPool() *Pool {
	return &Pool{byID: make(map[TxID]*pendingTx), ordered: btree.New(32)}
}

// AddTransaction inserts tx at the given priority. Re-adding an existing
// TxID replaces it (used when a higher-tip replacement transaction arrives
// for the same sender+nonce).
func (p *Pool) AddTransaction(tx types.Transaction, priority Priority) {
	id := TxID{Sender: tx.SenderAddress(), Nonce: tx.Nonce()}

	p.mu.Lock()
	defer p.mu.Unlock()

	if existing, ok := p.byID[id]; ok {
		p.ordered.Delete(existing)
	}
	p.seq++
	pt := &pendingTx{id: id, tx: tx, priority: priority, addedAt: timeNow(), seq: p.seq}
	p.byID[id] = pt
	p.ordered.ReplaceOrInsert(pt)
}

// Contains reports whether sender+nonce is currently pooled.
func (p *Pool) Contains(id TxID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.byID[id]
	return ok
}

// Size returns the number of pooled transactions.
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.byID)
}

// Remove drops id from the pool, if present.
func (p *Pool) Remove(id TxID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if existing, ok := p.byID[id]; ok {
		p.ordered.Delete(existing)
		delete(p.byID, id)
	}
}

// TakeTransactions removes and returns up to n transactions in priority
// order, the primitive the block producer calls each time it seals a block
// (spec §4.6 "pull up to the bouncer's remaining capacity from the pool in
// priority order").
func (p *Pool) TakeTransactions(n int) []types.Transaction {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]types.Transaction, 0, n)
	var taken []*pendingTx
	p.ordered.Ascend(func(item btree.Item) bool {
		if len(taken) >= n {
			return false
		}
		taken = append(taken, item.(*pendingTx))
		return true
	})
	for _, pt := range taken {
		p.ordered.Delete(pt)
		delete(p.byID, pt.id)
		out = append(out, pt.tx)
	}
	return out
}

// timeNow exists so the one non-deterministic call in this package is
// isolated to a single line (arrival order is only a tie-breaker, never
// load-bearing for correctness).
func timeNow() time.Time { return time.Now() }
