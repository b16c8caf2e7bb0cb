package state

import (
	"context"
	"fmt"

	statetrie "github.com/katana-go/katana/core/state/trie"
	"github.com/katana-go/katana/core/types"
	"github.com/katana-go/katana/katanalib/common"
	"github.com/katana-go/katana/katanalib/kv"
)

// Writer implements ProviderMut: it applies one block's StateDiff to the
// current-state tables (ContractInfo, ContractStorage, Classes,
// CompiledClassHashes) and to the trie layer, returning the new state root.
type Writer struct {
	db kv.RwDB
}

func NewWriter(db kv.RwDB) *Writer {
	return &Writer{db: db}
}

func (w *Writer) ApplyStateDiff(ctx context.Context, blockNumber uint64, diff *types.StateDiff) (common.Felt, error) {
	var root common.Felt
	err := w.db.Update(ctx, func(tx kv.RwTx) error {
		if err := applyContractInfo(tx, diff); err != nil {
			return err
		}
		if err := applyStorage(tx, diff); err != nil {
			return err
		}
		if err := applyClasses(tx, diff); err != nil {
			return err
		}

		tw := statetrie.NewWriter(tx)
		if _, err := tw.InsertDeclaredClasses(blockNumber, diff); err != nil {
			return fmt.Errorf("state: insert declared classes: %w", err)
		}
		if _, err := tw.InsertContractUpdates(blockNumber, diff); err != nil {
			return fmt.Errorf("state: insert contract updates: %w", err)
		}
		root = tw.ComputeStateRoot()
		return nil
	})
	return root, err
}

func applyContractInfo(tx kv.RwTx, diff *types.StateDiff) error {
	updates := make(map[common.Address]contractInfo)
	load := func(addr common.Address) (contractInfo, error) {
		if ci, ok := updates[addr]; ok {
			return ci, nil
		}
		buf, err := tx.GetOne(kv.ContractInfo, addr.Bytes())
		if err != nil {
			return contractInfo{}, err
		}
		if buf == nil {
			return contractInfo{}, nil
		}
		return decodeContractInfo(buf)
	}

	for _, n := range diff.Nonces {
		ci, err := load(n.Address)
		if err != nil {
			return err
		}
		ci.Nonce = n.Nonce
		updates[n.Address] = ci
	}
	for _, d := range diff.DeployedContracts {
		ci, err := load(d.Address)
		if err != nil {
			return err
		}
		ci.ClassHash = d.ClassHash
		updates[d.Address] = ci
	}
	for _, r := range diff.ReplacedClasses {
		ci, err := load(r.Address)
		if err != nil {
			return err
		}
		ci.ClassHash = r.ClassHash
		updates[r.Address] = ci
	}

	for addr, ci := range updates {
		if err := tx.Put(kv.ContractInfo, addr.Bytes(), encodeContractInfo(ci)); err != nil {
			return err
		}
	}
	return nil
}

func applyStorage(tx kv.RwTx, diff *types.StateDiff) error {
	c, err := tx.RwCursorDupSort(kv.ContractStorage)
	if err != nil {
		return err
	}
	defer c.Close()

	for _, sd := range diff.StorageDiffs {
		for _, e := range sd.Entries {
			// Remove any existing (slot, *) duplicate before writing the new
			// value: ContractStorage's DupSort value is slot++value, so the
			// slot isn't the sort key alone and a plain Put would append a
			// second duplicate rather than overwrite.
			if err := removeExistingSlot(c, sd.ContractAddress, e.Key); err != nil {
				return err
			}
			if err := c.PutNoDupData(sd.ContractAddress.Bytes(), encodeStorageValue(e.Key, e.Value)); err != nil {
				return err
			}
		}
	}
	return nil
}

func removeExistingSlot(c kv.RwCursorDupSort, addr common.Address, slot common.Felt) error {
	k, v, err := c.Seek(addr.Bytes())
	for k != nil && err == nil {
		var addrKey common.Address
		copy(addrKey[:], k)
		if addrKey != addr {
			return nil
		}
		s, _, derr := decodeStorageValue(v)
		if derr != nil {
			return derr
		}
		if s == slot {
			return c.Delete(k)
		}
		k, v, err = c.NextDup()
		if k == nil {
			k, v, err = c.Next()
		}
	}
	return err
}

// applyClasses records the class_hash -> compiled_class_hash binding; the
// Classes table itself (class_hash -> zstd-compressed program) is populated
// by whichever RPC path accepted the declare transaction's program payload,
// since StateDiff carries only hashes, never program bytes.
func applyClasses(tx kv.RwTx, diff *types.StateDiff) error {
	for _, dc := range diff.DeclaredClasses {
		if err := tx.Put(kv.CompiledClassHashes, dc.ClassHash.Bytes(), dc.CompiledClassHash.Bytes()); err != nil {
			return err
		}
	}
	return nil
}
