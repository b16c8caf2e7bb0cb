package rpc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/katana-go/katana/core/state"
	"github.com/katana-go/katana/katanalib/common"
)

// BlockID is the tagged union every block-scoped method accepts: a tag
// ("latest" or "pending"), a block number, or a block hash (spec §6
// "block_id").
type BlockID struct {
	Tag    string
	Number *uint64
	Hash   *common.Hash
}

func (b BlockID) isLatest() bool {
	return b.Tag == "latest" || b.Tag == "pending" || (b.Tag == "" && b.Number == nil && b.Hash == nil)
}

// UnmarshalJSON accepts the three wire shapes: the bare string "latest"/
// "pending", {"block_number": N}, or {"block_hash": "0x.."}.
func (b *BlockID) UnmarshalJSON(data []byte) error {
	var tag string
	if err := json.Unmarshal(data, &tag); err == nil {
		b.Tag = tag
		return nil
	}

	var obj struct {
		BlockNumber *uint64 `json:"block_number"`
		BlockHash   *string `json:"block_hash"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("rpc: invalid block_id: %w", err)
	}
	if obj.BlockNumber != nil {
		b.Number = obj.BlockNumber
		return nil
	}
	if obj.BlockHash != nil {
		h, err := common.FeltFromHex(*obj.BlockHash)
		if err != nil {
			return fmt.Errorf("rpc: invalid block_hash: %w", err)
		}
		b.Hash = &h
		return nil
	}
	return fmt.Errorf("rpc: block_id must be latest/pending, block_number, or block_hash")
}

// resolveBlockNumber turns a BlockID into a concrete block number, using the
// chain reader for hash and "latest"/"pending" lookups. "pending" resolves
// like "latest", since sealed blocks are the only state this node keeps.
func (s *Server) resolveBlockNumber(ctx context.Context, id BlockID) (uint64, *Error) {
	switch {
	case id.Hash != nil:
		number, found, err := s.chain.BlockNumberByHash(ctx, *id.Hash)
		if err != nil {
			return 0, newError(codeInternalError, err.Error())
		}
		if !found {
			return 0, newError(ErrBlockNotFound, "block not found")
		}
		return number, nil
	case id.Number != nil:
		return *id.Number, nil
	case id.isLatest():
		number, found, err := s.chain.LatestBlockNumber(ctx)
		if err != nil {
			return 0, newError(codeInternalError, err.Error())
		}
		if !found {
			return 0, newError(ErrBlockNotFound, "chain has no blocks yet")
		}
		return number, nil
	default:
		return 0, newError(codeInvalidParams, "unrecognized block_id")
	}
}

// providerAt answers "latest"/"pending" from the provider factory's Latest
// snapshot and every other BlockID from AtBlock.
func (s *Server) providerAt(ctx context.Context, id BlockID) (state.StateProvider, *Error) {
	if id.Hash == nil && id.Number == nil && id.isLatest() {
		provider, err := s.factory.Latest(ctx)
		if err != nil {
			return nil, newError(codeInternalError, err.Error())
		}
		return provider, nil
	}
	number, rpcErr := s.resolveBlockNumber(ctx, id)
	if rpcErr != nil {
		return nil, rpcErr
	}
	provider, err := s.factory.AtBlock(ctx, number)
	if err != nil {
		return nil, newError(codeInternalError, err.Error())
	}
	return provider, nil
}
