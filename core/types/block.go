package types

import "github.com/katana-go/katana/katanalib/common"

// FinalityStatus distinguishes a pre-confirmed block still subject to
// reorg from one sealed into the canonical chain (spec §3 "Block").
type FinalityStatus uint8

const (
	FinalityPreConfirmed FinalityStatus = iota
	FinalityAcceptedOnL2
	FinalityAcceptedOnL1
)

// Header is the Felt-indexed block header. L1GasPrice/L1DataGasPrice and the
// Fri-denominated counterparts are the three gas-price pairs the gas oracle
// rolls forward each block (spec §4.6).
type Header struct {
	Number           uint64
	ParentHash       common.Hash
	Timestamp        uint64
	SequencerAddress common.Address
	ProtocolVersion  string

	StateRoot           common.Felt
	TransactionCommitment common.Felt
	ReceiptCommitment     common.Felt
	EventCommitment       common.Felt
	StateDiffCommitment   common.Felt
	StateDiffLength       uint64

	L1GasPriceWei     common.Felt
	L1GasPriceFri     common.Felt
	L1DataGasPriceWei common.Felt
	L1DataGasPriceFri common.Felt
	L2GasPriceWei     common.Felt
	L2GasPriceFri     common.Felt

	L1DAMode L1DataAvailabilityMode
}

// L1DataAvailabilityMode names how a block's state diff is published to L1
// (calldata vs blob), spec §3.
type L1DataAvailabilityMode uint8

const (
	L1DACalldata L1DataAvailabilityMode = iota
	L1DABlob
)

// Block pairs a header with its ordered transaction list; receipts live
// separately (keyed by transaction, spec §3 "Receipt") since a
// pre-confirmed block's receipts may still be recomputed before sealing.
type Block struct {
	Header       Header
	Transactions []Transaction
	Status       FinalityStatus
}

// Hash returns the block hash, which spec §9.1 treats as derived from the
// header commitment fields via the same placeholder scheme as the trie
// roots (see commitment.go).
func (b *Block) Hash() common.Hash {
	return BlockHash(&b.Header)
}
