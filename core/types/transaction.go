// Package types holds the Felt-based domain model: blocks, transactions,
// receipts, state updates and contract classes (spec §3).
//
// The transaction variant design is grounded on Juno's core/transaction.go
// (other_examples): a Transaction interface implemented by one struct per
// version, each yielding its own hash via a chain-specific Pedersen/Poseidon
// scheme, generalized here to the Invoke/Declare/DeployAccount/L1Handler/
// Deploy sum described in spec §3. Here Hash() returns the hash stored in
// each variant's TxHash field; no variant computes its own hash.
package types

import "github.com/katana-go/katana/katanalib/common"

// DataAvailabilityMode tags which layer (L1 or L2) a V3 transaction's nonce
// or fee data is posted to.
type DataAvailabilityMode uint8

const (
	DAModeL1 DataAvailabilityMode = iota
	DAModeL2
)

// ResourceKind names one of the three resource families V3 transactions
// bound (spec §3).
type ResourceKind uint8

const (
	ResourceL1Gas ResourceKind = iota
	ResourceL2Gas
	ResourceL1DataGas
)

// ResourceBounds is one (max_amount, max_price_per_unit) pair.
type ResourceBounds struct {
	MaxAmount       uint64
	MaxPricePerUnit uint64
}

// ResourceBoundsMapping carries a bound for every resource family a V3
// transaction pays for.
type ResourceBoundsMapping struct {
	L1Gas     ResourceBounds
	L2Gas     ResourceBounds
	L1DataGas ResourceBounds
}

// Transaction is the tagged-sum interface every variant implements,
// mirroring Juno's Transaction interface (Hash/Signature) generalized with
// a Nonce accessor the pool validator needs (spec §4.4).
type Transaction interface {
	Hash() common.Hash
	Signature() []common.Felt
	SenderAddress() common.Address
	Nonce() common.Felt
	Kind() TxKind
}

// TxKind discriminates the sum type for storage codec tagging (spec §9
// "the storage codec tags each record with its variant discriminant").
type TxKind uint8

const (
	TxInvokeV0 TxKind = iota
	TxInvokeV1
	TxInvokeV3
	TxDeclareV0
	TxDeclareV1
	TxDeclareV2
	TxDeclareV3
	TxDeployAccountV1
	TxDeployAccountV3
	TxL1Handler
	TxDeploy
)

// InvokeTxV0 is the legacy invoke variant: no sender-side nonce, fee flat.
type InvokeTxV0 struct {
	ContractAddress    common.Address
	EntryPointSelector common.Felt
	Calldata           []common.Felt
	MaxFee             common.Felt
	Sig                []common.Felt
	TxHash             common.Hash
}

func (t *InvokeTxV0) Hash() common.Hash          { return t.TxHash }
func (t *InvokeTxV0) Signature() []common.Felt   { return t.Sig }
func (t *InvokeTxV0) SenderAddress() common.Address { return t.ContractAddress }
func (t *InvokeTxV0) Nonce() common.Felt         { return common.FeltZero }
func (t *InvokeTxV0) Kind() TxKind               { return TxInvokeV0 }

// InvokeTxV1 adds a sender address + nonce, still a flat max_fee.
type InvokeTxV1 struct {
	SenderAddr common.Address
	TxNonce    common.Felt
	Calldata   []common.Felt
	MaxFee     common.Felt
	Sig        []common.Felt
	ChainID    common.Felt
	TxHash     common.Hash
}

func (t *InvokeTxV1) Hash() common.Hash            { return t.TxHash }
func (t *InvokeTxV1) Signature() []common.Felt     { return t.Sig }
func (t *InvokeTxV1) SenderAddress() common.Address { return t.SenderAddr }
func (t *InvokeTxV1) Nonce() common.Felt           { return t.TxNonce }
func (t *InvokeTxV1) Kind() TxKind                 { return TxInvokeV1 }

// InvokeTxV3 carries resource bounds instead of a flat fee (spec §3).
type InvokeTxV3 struct {
	ChainID                   common.Felt
	SenderAddr                common.Address
	TxNonce                   common.Felt
	Calldata                  []common.Felt
	Sig                       []common.Felt
	ResourceBounds            ResourceBoundsMapping
	Tip                       uint64
	PaymasterData             []common.Felt
	AccountDeploymentData     []common.Felt
	NonceDAMode               DataAvailabilityMode
	FeeDAMode                 DataAvailabilityMode
	TxHash                    common.Hash
}

func (t *InvokeTxV3) Hash() common.Hash            { return t.TxHash }
func (t *InvokeTxV3) Signature() []common.Felt     { return t.Sig }
func (t *InvokeTxV3) SenderAddress() common.Address { return t.SenderAddr }
func (t *InvokeTxV3) Nonce() common.Felt           { return t.TxNonce }
func (t *InvokeTxV3) Kind() TxKind                 { return TxInvokeV3 }

// DeclareTxV0/V1/V2/V3 declare a contract class; V2+ additionally carry a
// compiled_class_hash (spec §3 "Contract class").
type DeclareTxV0 struct {
	SenderAddr common.Address
	MaxFee     common.Felt
	Sig        []common.Felt
	TxClassHash common.ClassHash
	TxHash     common.Hash
}

func (t *DeclareTxV0) Hash() common.Hash            { return t.TxHash }
func (t *DeclareTxV0) Signature() []common.Felt     { return t.Sig }
func (t *DeclareTxV0) SenderAddress() common.Address { return t.SenderAddr }
func (t *DeclareTxV0) Nonce() common.Felt           { return common.FeltZero }
func (t *DeclareTxV0) Kind() TxKind                 { return TxDeclareV0 }
func (t *DeclareTxV0) DeclaredClassHash() common.ClassHash { return t.TxClassHash }

type DeclareTxV1 struct {
	SenderAddr  common.Address
	TxNonce     common.Felt
	MaxFee      common.Felt
	Sig         []common.Felt
	TxClassHash common.ClassHash
	TxHash      common.Hash
}

func (t *DeclareTxV1) Hash() common.Hash            { return t.TxHash }
func (t *DeclareTxV1) Signature() []common.Felt     { return t.Sig }
func (t *DeclareTxV1) SenderAddress() common.Address { return t.SenderAddr }
func (t *DeclareTxV1) Nonce() common.Felt           { return t.TxNonce }
func (t *DeclareTxV1) Kind() TxKind                 { return TxDeclareV1 }
func (t *DeclareTxV1) DeclaredClassHash() common.ClassHash { return t.TxClassHash }

type DeclareTxV2 struct {
	SenderAddr        common.Address
	TxNonce           common.Felt
	MaxFee            common.Felt
	Sig               []common.Felt
	TxClassHash       common.ClassHash
	CompiledClassHash common.Felt
	TxHash            common.Hash
}

func (t *DeclareTxV2) Hash() common.Hash            { return t.TxHash }
func (t *DeclareTxV2) Signature() []common.Felt     { return t.Sig }
func (t *DeclareTxV2) SenderAddress() common.Address { return t.SenderAddr }
func (t *DeclareTxV2) Nonce() common.Felt           { return t.TxNonce }
func (t *DeclareTxV2) Kind() TxKind                 { return TxDeclareV2 }
func (t *DeclareTxV2) DeclaredClassHash() common.ClassHash { return t.TxClassHash }

type DeclareTxV3 struct {
	ChainID               common.Felt
	SenderAddr            common.Address
	TxNonce               common.Felt
	Sig                   []common.Felt
	TxClassHash           common.ClassHash
	CompiledClassHash     common.Felt
	ResourceBounds        ResourceBoundsMapping
	Tip                   uint64
	PaymasterData         []common.Felt
	AccountDeploymentData []common.Felt
	NonceDAMode           DataAvailabilityMode
	FeeDAMode             DataAvailabilityMode
	TxHash                common.Hash
}

func (t *DeclareTxV3) Hash() common.Hash            { return t.TxHash }
func (t *DeclareTxV3) Signature() []common.Felt     { return t.Sig }
func (t *DeclareTxV3) SenderAddress() common.Address { return t.SenderAddr }
func (t *DeclareTxV3) Nonce() common.Felt           { return t.TxNonce }
func (t *DeclareTxV3) Kind() TxKind                 { return TxDeclareV3 }
func (t *DeclareTxV3) DeclaredClassHash() common.ClassHash { return t.TxClassHash }

// DeployAccountTxV1/V3 deploy a new account contract; the sender address is
// the deterministically derived contract address itself.
type DeployAccountTxV1 struct {
	TxNonce             common.Felt
	MaxFee              common.Felt
	Sig                 []common.Felt
	TxClassHash         common.ClassHash
	ContractAddressSalt common.Felt
	ConstructorCalldata []common.Felt
	ContractAddr        common.Address
	TxHash              common.Hash
}

func (t *DeployAccountTxV1) Hash() common.Hash            { return t.TxHash }
func (t *DeployAccountTxV1) Signature() []common.Felt     { return t.Sig }
func (t *DeployAccountTxV1) SenderAddress() common.Address { return t.ContractAddr }
func (t *DeployAccountTxV1) Nonce() common.Felt           { return t.TxNonce }
func (t *DeployAccountTxV1) Kind() TxKind                 { return TxDeployAccountV1 }

type DeployAccountTxV3 struct {
	ChainID             common.Felt
	TxNonce             common.Felt
	Sig                 []common.Felt
	TxClassHash         common.ClassHash
	ContractAddr        common.Address
	ContractAddressSalt common.Felt
	ConstructorCalldata []common.Felt
	ResourceBounds      ResourceBoundsMapping
	Tip                 uint64
	PaymasterData       []common.Felt
	NonceDAMode         DataAvailabilityMode
	FeeDAMode           DataAvailabilityMode
	TxHash              common.Hash
}

func (t *DeployAccountTxV3) Hash() common.Hash            { return t.TxHash }
func (t *DeployAccountTxV3) Signature() []common.Felt     { return t.Sig }
func (t *DeployAccountTxV3) SenderAddress() common.Address { return t.ContractAddr }
func (t *DeployAccountTxV3) Nonce() common.Felt           { return t.TxNonce }
func (t *DeployAccountTxV3) Kind() TxKind                 { return TxDeployAccountV3 }

// L1HandlerTx is a transaction triggered by an L1-to-L2 message.
type L1HandlerTx struct {
	ContractAddr       common.Address
	EntryPointSelector common.Felt
	Calldata            []common.Felt
	TxNonce             common.Felt
	PaidFeeOnL1         common.Felt
	TxHash              common.Hash
}

func (t *L1HandlerTx) Hash() common.Hash            { return t.TxHash }
func (t *L1HandlerTx) Signature() []common.Felt     { return nil }
func (t *L1HandlerTx) SenderAddress() common.Address { return t.ContractAddr }
func (t *L1HandlerTx) Nonce() common.Felt           { return t.TxNonce }
func (t *L1HandlerTx) Kind() TxKind                 { return TxL1Handler }

// DeployTx is the legacy (pre-account-abstraction) deploy variant.
type DeployTx struct {
	ContractAddressSalt common.Felt
	TxClassHash         common.ClassHash
	ConstructorCalldata []common.Felt
	ContractAddr        common.Address
	TxHash              common.Hash
}

func (t *DeployTx) Hash() common.Hash            { return t.TxHash }
func (t *DeployTx) Signature() []common.Felt     { return nil }
func (t *DeployTx) SenderAddress() common.Address { return t.ContractAddr }
func (t *DeployTx) Nonce() common.Felt           { return common.FeltZero }
func (t *DeployTx) Kind() TxKind                 { return TxDeploy }

// IsV3 reports whether tx carries resource bounds rather than a flat
// max_fee, used to pick the FeeInfo unit (spec §4.5 "unit is Fri if
// tx.version >= 3 else Wei").
func IsV3(tx Transaction) bool {
	switch tx.Kind() {
	case TxInvokeV3, TxDeclareV3, TxDeployAccountV3:
		return true
	default:
		return false
	}
}
