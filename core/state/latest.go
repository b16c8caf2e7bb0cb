package state

import (
	"github.com/katana-go/katana/core/types"
	"github.com/katana-go/katana/katanalib/common"
	"github.com/katana-go/katana/katanalib/kv"
)

// latestProvider answers StateProvider reads directly against the current
// ContractInfo/ContractStorage/Classes/CompiledClassHashes tables — no
// history lookup needed since it always serves the most recent write.
type latestProvider struct {
	tx kv.Tx
}

func (p *latestProvider) contractInfo(addr common.Address) (contractInfo, bool, error) {
	buf, err := p.tx.GetOne(kv.ContractInfo, addr.Bytes())
	if err != nil || buf == nil {
		return contractInfo{}, false, err
	}
	ci, err := decodeContractInfo(buf)
	return ci, true, err
}

func (p *latestProvider) Nonce(addr common.Address) (common.Felt, error) {
	ci, ok, err := p.contractInfo(addr)
	if err != nil || !ok {
		return common.FeltZero, err
	}
	return ci.Nonce, nil
}

func (p *latestProvider) ClassHashAt(addr common.Address) (common.ClassHash, error) {
	ci, ok, err := p.contractInfo(addr)
	if err != nil || !ok {
		return common.FeltZero, err
	}
	return ci.ClassHash, nil
}

func (p *latestProvider) StorageAt(addr common.Address, slot common.Felt) (common.Felt, error) {
	c, err := p.tx.CursorDupSort(kv.ContractStorage)
	if err != nil {
		return common.FeltZero, err
	}
	defer c.Close()

	k, v, err := c.Seek(addr.Bytes())
	for k != nil && err == nil {
		var addrKey common.Address
		copy(addrKey[:], k)
		if addrKey != addr {
			break
		}
		s, value, derr := decodeStorageValue(v)
		if derr != nil {
			return common.FeltZero, derr
		}
		if s == slot {
			return value, nil
		}
		k, v, err = c.Next()
	}
	return common.FeltZero, err
}

func (p *latestProvider) Class(classHash common.ClassHash) (*types.ContractClass, error) {
	buf, err := p.tx.GetOne(kv.Classes, classHash.Bytes())
	if err != nil || buf == nil {
		return nil, err
	}
	return decodeContractClass(buf)
}

func (p *latestProvider) CompiledClassHash(classHash common.ClassHash) (common.Felt, error) {
	buf, err := p.tx.GetOne(kv.CompiledClassHashes, classHash.Bytes())
	if err != nil || buf == nil {
		return common.FeltZero, err
	}
	var f common.Felt
	copy(f[:], buf)
	return f, nil
}
