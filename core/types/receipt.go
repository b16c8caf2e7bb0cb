package types

import "github.com/katana-go/katana/katanalib/common"

// ExecutionStatus is the Cairo-VM-reported outcome of a transaction
// (spec §3 "Receipt"): Succeeded or Reverted (with a reason string), never
// an error — a failing transaction is still included and charged fee.
type ExecutionStatus uint8

const (
	ExecutionSucceeded ExecutionStatus = iota
	ExecutionReverted
)

// FeeUnit is Wei for pre-V3 transactions, Fri (STRK's smallest unit) for V3
// (spec §4.5).
type FeeUnit uint8

const (
	FeeUnitWei FeeUnit = iota
	FeeUnitFri
)

// FeeInfo is the actual fee charged plus the unit it was charged in.
type FeeInfo struct {
	Amount common.Felt
	Unit   FeeUnit
}

// Event is a single emitted Cairo event, keyed by the emitting contract's
// address.
type Event struct {
	FromAddress common.Address
	Keys        []common.Felt
	Data        []common.Felt
}

// L2ToL1Message is an outgoing message queued for L1 consumption.
type L2ToL1Message struct {
	FromAddress common.Address
	ToAddress   common.Felt
	Payload     []common.Felt
}

// ExecutionResources tallies the Cairo VM resources a transaction consumed,
// the basis for the bouncer's sierra_gas cap (spec §4.6 "Bouncer").
type ExecutionResources struct {
	Steps        uint64
	MemoryHoles  uint64
	SierraGas    uint64
	Pedersen     uint64
	RangeCheck   uint64
	Bitwise      uint64
	ECOP         uint64
	Poseidon     uint64
	Keccak       uint64
	SegmentArena uint64
}

// Receipt is the per-transaction execution record.
type Receipt struct {
	TransactionHash common.Hash
	Status          ExecutionStatus
	RevertReason    string
	Fee             FeeInfo
	MessagesSent    []L2ToL1Message
	Events          []Event
	ExecutionResources ExecutionResources
	ExecutionResult    []common.Felt // call return data, empty for non-invoke kinds
}
