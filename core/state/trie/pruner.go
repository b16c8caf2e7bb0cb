package trie

import (
	"context"

	"github.com/katana-go/katana/katanalib/kv"
)

// Mode selects a Pruner's retention policy (spec §4.2 "Pruner").
type Mode uint8

const (
	// Latest keeps only the current trie state, discarding all history.
	Latest Mode = iota
	// KeepLastN keeps history for the last N blocks up to the tip (blocks
	// above the cutoff tip-N), discarding everything at or below the cutoff.
	KeepLastN
)

// Pruner walks the three <Trie>History/<Trie>ChangeSet table pairs and
// deletes history entries older than its retention window, using
// IntegerSet.RemoveRange to update each touched key's changeset and
// DeleteCurrentDuplicates to drop the corresponding History duplicates in
// O(1) (spec §4.2, invariant 4: "b ∈ ChangeSet[k] ⇔ History[b] contains k"
// must hold after pruning too).
type Pruner struct {
	tx   kv.RwTx
	mode Mode
	keep uint64 // only meaningful when mode == KeepLastN
}

func NewPruner(tx kv.RwTx, mode Mode, keep uint64) *Pruner {
	return &Pruner{tx: tx, mode: mode, keep: keep}
}

var trieTablePairs = [][2]string{
	{kv.ClassesTrieHistory, kv.ClassesTrieChangeSet},
	{kv.ContractsTrieHistory, kv.ContractsTrieChangeSet},
	{kv.StoragesTrieHistory, kv.StoragesTrieChangeSet},
}

// Prune applies the pruner's retention policy as of tip (the current chain
// tip block number), returning the number of History entries deleted.
func (p *Pruner) Prune(ctx context.Context, tip uint64) (int, error) {
	cutoff := p.cutoff(tip)
	// KeepLastN's cutoff is 0 whenever tip <= keep (spec §8: "KeepLastN(k)
	// with k >= latest: no-op"). Unlike Latest mode — where cutoff == 0 at
	// tip == 0 legitimately means "discard everything, including block 0's
	// history" — a short-chain KeepLastN cutoff of 0 must not touch any
	// table: pruneTable treats cutoff as an inclusive upper bound, so
	// walking it here would strip block 0 (genesis) out of every touched
	// key's changeset instead of leaving history alone.
	if p.mode == KeepLastN && cutoff == 0 {
		return 0, nil
	}
	total := 0
	for _, pair := range trieTablePairs {
		n, err := p.pruneTable(pair[0], pair[1], cutoff)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (p *Pruner) cutoff(tip uint64) uint64 {
	if p.mode == Latest {
		return tip
	}
	if tip <= p.keep {
		return 0
	}
	return tip - p.keep
}

func (p *Pruner) pruneTable(historyTable, changeSetTable string, cutoff uint64) (int, error) {
	deleted := 0

	// Delete every History duplicate set at a block number <= cutoff.
	hc, err := p.tx.RwCursorDupSort(historyTable)
	if err != nil {
		return 0, err
	}
	defer hc.Close()

	k, _, err := hc.First()
	if err != nil {
		return 0, err
	}
	for k != nil {
		blockNumber := kv.DecodeBlockNumber(k)
		if blockNumber > cutoff {
			break
		}
		n, err := hc.CountDuplicates()
		if err != nil {
			return deleted, err
		}
		if err := hc.DeleteCurrentDuplicates(); err != nil {
			return deleted, err
		}
		deleted += int(n)
		k, _, err = hc.Next()
		if err != nil {
			return deleted, err
		}
	}

	// Walk the ChangeSet table and clear every member <= cutoff, dropping
	// the key entirely once its set is empty (spec §4.2).
	cc, err := p.tx.RwCursor(changeSetTable)
	if err != nil {
		return deleted, err
	}
	defer cc.Close()

	ck, cv, err := cc.First()
	if err != nil {
		return deleted, err
	}
	for ck != nil {
		set, err := kv.DecodeIntegerSet(cv)
		if err != nil {
			return deleted, err
		}
		set.RemoveRange(cutoff)
		if set.IsEmpty() {
			if err := p.tx.Delete(changeSetTable, ck); err != nil {
				return deleted, err
			}
		} else {
			buf, err := set.Encode()
			if err != nil {
				return deleted, err
			}
			if err := p.tx.Put(changeSetTable, ck, buf); err != nil {
				return deleted, err
			}
		}
		ck, cv, err = cc.Next()
		if err != nil {
			return deleted, err
		}
	}

	return deleted, nil
}
