package rpc

import (
	"encoding/json"

	"github.com/katana-go/katana/core/types"
	"github.com/katana-go/katana/katanalib/common"
)

func (s *Server) registerMethods() {
	s.methods = map[string]methodHandler{
		"chain_id":                      s.chainID,
		"block_number":                  s.blockNumber,
		"block_hash_and_number":         s.blockHashAndNumber,
		"get_nonce":                     s.getNonce,
		"get_storage_at":                s.getStorageAt,
		"get_class_hash_at":             s.getClassHashAt,
		"get_transaction_by_hash":       s.getTransactionByHash,
		"get_transaction_receipt":       s.getTransactionReceipt,
		"get_transaction_status":        s.getTransactionStatus,
		"add_invoke_transaction":        s.addInvokeTransaction,
		"add_declare_transaction":       s.addDeclareTransaction,
		"add_deploy_account_transaction": s.addDeployAccountTransaction,
	}
}

func (s *Server) chainID(_ json.RawMessage) (interface{}, *Error) {
	return s.chainIDFelt, nil
}

func (s *Server) blockNumber(_ json.RawMessage) (interface{}, *Error) {
	number, found, err := s.chain.LatestBlockNumber(s.ctx())
	if err != nil {
		return nil, newError(codeInternalError, err.Error())
	}
	if !found {
		return nil, newError(ErrBlockNotFound, "chain has no blocks yet")
	}
	return number, nil
}

func (s *Server) blockHashAndNumber(_ json.RawMessage) (interface{}, *Error) {
	number, found, err := s.chain.LatestBlockNumber(s.ctx())
	if err != nil {
		return nil, newError(codeInternalError, err.Error())
	}
	if !found {
		return nil, newError(ErrBlockNotFound, "chain has no blocks yet")
	}
	hash, _, err := s.chain.BlockHashByNumber(s.ctx(), number)
	if err != nil {
		return nil, newError(codeInternalError, err.Error())
	}
	return struct {
		BlockHash   common.Hash `json:"block_hash"`
		BlockNumber uint64      `json:"block_number"`
	}{hash, number}, nil
}

type addressAtBlockParams struct {
	BlockID BlockID        `json:"block_id"`
	Address common.Address `json:"contract_address"`
}

func (s *Server) getNonce(params json.RawMessage) (interface{}, *Error) {
	var p addressAtBlockParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, newError(codeInvalidParams, err.Error())
	}
	provider, rpcErr := s.providerAt(s.ctx(), p.BlockID)
	if rpcErr != nil {
		return nil, rpcErr
	}
	nonce, err := provider.Nonce(p.Address)
	if err != nil {
		return nil, newError(codeInternalError, err.Error())
	}
	return nonce, nil
}

func (s *Server) getClassHashAt(params json.RawMessage) (interface{}, *Error) {
	var p addressAtBlockParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, newError(codeInvalidParams, err.Error())
	}
	provider, rpcErr := s.providerAt(s.ctx(), p.BlockID)
	if rpcErr != nil {
		return nil, rpcErr
	}
	classHash, err := provider.ClassHashAt(p.Address)
	if err != nil {
		return nil, newError(codeInternalError, err.Error())
	}
	if classHash.IsZero() {
		return nil, newError(ErrContractNotFound, "contract not found")
	}
	return classHash, nil
}

type storageAtParams struct {
	BlockID BlockID        `json:"block_id"`
	Address common.Address `json:"contract_address"`
	Key     common.Felt    `json:"key"`
}

func (s *Server) getStorageAt(params json.RawMessage) (interface{}, *Error) {
	var p storageAtParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, newError(codeInvalidParams, err.Error())
	}
	provider, rpcErr := s.providerAt(s.ctx(), p.BlockID)
	if rpcErr != nil {
		return nil, rpcErr
	}
	value, err := provider.StorageAt(p.Address, p.Key)
	if err != nil {
		return nil, newError(codeInternalError, err.Error())
	}
	return value, nil
}

type txHashParams struct {
	TransactionHash common.Hash `json:"transaction_hash"`
}

func (s *Server) getTransactionByHash(params json.RawMessage) (interface{}, *Error) {
	var p txHashParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, newError(codeInvalidParams, err.Error())
	}
	tx, _, found, err := s.chain.TransactionByHash(s.ctx(), p.TransactionHash)
	if err != nil {
		return nil, newError(codeInternalError, err.Error())
	}
	if !found {
		return nil, newError(ErrTxnHashNotFound, "transaction hash not found")
	}
	return tx, nil
}

func (s *Server) getTransactionReceipt(params json.RawMessage) (interface{}, *Error) {
	var p txHashParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, newError(codeInvalidParams, err.Error())
	}
	receipt, found, err := s.chain.ReceiptByHash(s.ctx(), p.TransactionHash)
	if err != nil {
		return nil, newError(codeInternalError, err.Error())
	}
	if !found {
		return nil, newError(ErrTxnHashNotFound, "transaction hash not found")
	}
	return receipt, nil
}

// TransactionStatus mirrors spec §6's {Received, PreConfirmed(..),
// AcceptedOnL2(..), AcceptedOnL1(..)} union, collapsed to a tagged string
// since this port has no separate pre-confirmed mempool/staging area.
type TransactionStatus struct {
	FinalityStatus  string `json:"finality_status"`
	ExecutionStatus string `json:"execution_status,omitempty"`
}

func (s *Server) getTransactionStatus(params json.RawMessage) (interface{}, *Error) {
	var p txHashParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, newError(codeInvalidParams, err.Error())
	}

	receipt, found, err := s.chain.ReceiptByHash(s.ctx(), p.TransactionHash)
	if err != nil {
		return nil, newError(codeInternalError, err.Error())
	}
	if !found {
		return nil, newError(ErrTxnHashNotFound, "transaction hash not found")
	}

	execution := "SUCCEEDED"
	if receipt.Status == types.ExecutionReverted {
		execution = "REVERTED"
	}
	return TransactionStatus{FinalityStatus: "ACCEPTED_ON_L2", ExecutionStatus: execution}, nil
}
