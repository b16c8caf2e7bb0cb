package rpc

import (
	"encoding/json"

	"github.com/katana-go/katana/core/txpool"
	"github.com/katana-go/katana/core/types"
	"github.com/katana-go/katana/katanalib/common"
)

// Write methods only accept the V3 transaction variants — the current
// StarkNet wire format's default and the only kind this port's JSON
// binding covers (spec §6 names the method table as "a representative
// subset"). None of these methods compute a transaction hash from its
// contents: that requires the SNIP-9 Poseidon-based hash algorithm, which
// sits on the same side of the core/vm scope boundary as Cairo execution
// itself (see core/vm's package doc) — callers supply transaction_hash
// directly, the way an already-hashed, already-signed payload from a real
// wallet would arrive over the wire in a full implementation.

type resourceBoundsJSON struct {
	MaxAmount       uint64 `json:"max_amount"`
	MaxPricePerUnit uint64 `json:"max_price_per_unit"`
}

type resourceBoundsMappingJSON struct {
	L1Gas     resourceBoundsJSON `json:"l1_gas"`
	L2Gas     resourceBoundsJSON `json:"l2_gas"`
	L1DataGas resourceBoundsJSON `json:"l1_data_gas"`
}

func (m resourceBoundsMappingJSON) toDomain() types.ResourceBoundsMapping {
	return types.ResourceBoundsMapping{
		L1Gas:     types.ResourceBounds{MaxAmount: m.L1Gas.MaxAmount, MaxPricePerUnit: m.L1Gas.MaxPricePerUnit},
		L2Gas:     types.ResourceBounds{MaxAmount: m.L2Gas.MaxAmount, MaxPricePerUnit: m.L2Gas.MaxPricePerUnit},
		L1DataGas: types.ResourceBounds{MaxAmount: m.L1DataGas.MaxAmount, MaxPricePerUnit: m.L1DataGas.MaxPricePerUnit},
	}
}

type addTransactionResult struct {
	TransactionHash common.Hash `json:"transaction_hash"`
}

type invokeV3Params struct {
	SenderAddress         common.Address            `json:"sender_address"`
	Calldata              []common.Felt             `json:"calldata"`
	Signature             []common.Felt             `json:"signature"`
	Nonce                 common.Felt               `json:"nonce"`
	ResourceBounds        resourceBoundsMappingJSON `json:"resource_bounds"`
	Tip                   uint64                    `json:"tip"`
	PaymasterData         []common.Felt             `json:"paymaster_data"`
	AccountDeploymentData []common.Felt             `json:"account_deployment_data"`
	TransactionHash       common.Hash               `json:"transaction_hash"`
}

func (s *Server) addInvokeTransaction(params json.RawMessage) (interface{}, *Error) {
	var p invokeV3Params
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, newError(codeInvalidParams, err.Error())
	}
	tx := &types.InvokeTxV3{
		ChainID:               s.chainIDFelt,
		SenderAddr:            p.SenderAddress,
		TxNonce:               p.Nonce,
		Calldata:              p.Calldata,
		Sig:                   p.Signature,
		ResourceBounds:        p.ResourceBounds.toDomain(),
		Tip:                   p.Tip,
		PaymasterData:         p.PaymasterData,
		AccountDeploymentData: p.AccountDeploymentData,
		TxHash:                p.TransactionHash,
	}
	return s.submit(tx)
}

type declareV3Params struct {
	SenderAddress         common.Address            `json:"sender_address"`
	Signature             []common.Felt             `json:"signature"`
	Nonce                 common.Felt               `json:"nonce"`
	ClassHash             common.ClassHash          `json:"class_hash"`
	CompiledClassHash     common.Felt               `json:"compiled_class_hash"`
	ResourceBounds        resourceBoundsMappingJSON `json:"resource_bounds"`
	Tip                   uint64                    `json:"tip"`
	PaymasterData         []common.Felt             `json:"paymaster_data"`
	AccountDeploymentData []common.Felt             `json:"account_deployment_data"`
	TransactionHash       common.Hash               `json:"transaction_hash"`
}

func (s *Server) addDeclareTransaction(params json.RawMessage) (interface{}, *Error) {
	var p declareV3Params
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, newError(codeInvalidParams, err.Error())
	}
	tx := &types.DeclareTxV3{
		ChainID:               s.chainIDFelt,
		SenderAddr:            p.SenderAddress,
		TxNonce:               p.Nonce,
		Sig:                   p.Signature,
		TxClassHash:           p.ClassHash,
		CompiledClassHash:     p.CompiledClassHash,
		ResourceBounds:        p.ResourceBounds.toDomain(),
		Tip:                   p.Tip,
		PaymasterData:         p.PaymasterData,
		AccountDeploymentData: p.AccountDeploymentData,
		TxHash:                p.TransactionHash,
	}
	return s.submit(tx)
}

type deployAccountV3Params struct {
	Signature           []common.Felt             `json:"signature"`
	Nonce               common.Felt               `json:"nonce"`
	ClassHash           common.ClassHash          `json:"class_hash"`
	ContractAddress     common.Address            `json:"contract_address"`
	ContractAddressSalt common.Felt               `json:"contract_address_salt"`
	ConstructorCalldata []common.Felt             `json:"constructor_calldata"`
	ResourceBounds      resourceBoundsMappingJSON `json:"resource_bounds"`
	Tip                 uint64                    `json:"tip"`
	PaymasterData       []common.Felt             `json:"paymaster_data"`
	TransactionHash      common.Hash               `json:"transaction_hash"`
}

func (s *Server) addDeployAccountTransaction(params json.RawMessage) (interface{}, *Error) {
	var p deployAccountV3Params
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, newError(codeInvalidParams, err.Error())
	}
	tx := &types.DeployAccountTxV3{
		ChainID:             s.chainIDFelt,
		TxNonce:             p.Nonce,
		Sig:                 p.Signature,
		TxClassHash:         p.ClassHash,
		ContractAddr:        p.ContractAddress,
		ContractAddressSalt: p.ContractAddressSalt,
		ConstructorCalldata: p.ConstructorCalldata,
		ResourceBounds:      p.ResourceBounds.toDomain(),
		Tip:                 p.Tip,
		PaymasterData:       p.PaymasterData,
		TxHash:              p.TransactionHash,
	}
	return s.submit(tx)
}

// submit runs tx through the validator and, if accepted, admits it to the
// pool — the JSON-RPC write path's whole job (spec §4.4/§6 "each returns
// {transaction_hash} after the pool validator accepts").
func (s *Server) submit(tx types.Transaction) (interface{}, *Error) {
	result, err := s.validator.Validate(tx)
	if err != nil {
		return nil, newError(codeInternalError, err.Error())
	}
	switch result.Outcome {
	case txpool.OutcomeInvalid:
		switch result.InvalidReason {
		case txpool.InvalidReasonClassAlreadyDeclared:
			return nil, newError(ErrClassAlreadyDeclared, "class already declared")
		default:
			msg := "transaction rejected"
			if result.Err != nil {
				msg = result.Err.Error()
			}
			return nil, newError(ErrFailedToReceive, msg)
		}
	case txpool.OutcomeDependent:
		// Nonce-gapped: still admitted, to be promoted once the gap fills,
		// matching original_source's pool accepting Dependent transactions.
	}

	s.pool.AddTransaction(tx, txpool.Priority(tipOf(tx)))
	return addTransactionResult{TransactionHash: tx.Hash()}, nil
}

// tipOf extracts the V3 tip field submit's pool ordering uses as priority
// (spec §4.4 "ordering: tip descending"); every transaction this package
// constructs is one of these three V3 variants.
func tipOf(tx types.Transaction) uint64 {
	switch t := tx.(type) {
	case *types.InvokeTxV3:
		return t.Tip
	case *types.DeclareTxV3:
		return t.Tip
	case *types.DeployAccountTxV3:
		return t.Tip
	default:
		return 0
	}
}
