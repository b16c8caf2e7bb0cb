// Package chain holds chain-spec constants threaded by pointer into the
// storage, trie, pool and producer packages, the way erigon-lib/chain.Config
// is threaded into consensus/misc's gas helpers. CLI-driven loading of this
// struct from flags/env/file is out of scope (spec §1); this package is just
// the struct and sane dev-mode defaults.
package chain

import "github.com/katana-go/katana/katanalib/common"

// ProtocolVersion is the starknet-protocol-version tag carried on every
// block header.
type ProtocolVersion string

// Config is the chain specification a node runs with.
type Config struct {
	ChainID         common.Felt
	ProtocolVersion ProtocolVersion
	FeeTokenETH     common.Address
	FeeTokenSTRK    common.Address
	GenesisTimestamp uint64
	SequencerAddress common.Address
}

// Dev returns the chain spec used by the standalone developer sequencer
// mode (spec §1's "standalone developer sequencer").
func Dev() *Config {
	chainID, _ := common.FeltFromHex("0x4b4154414e41") // "KATANA"
	return &Config{
		ChainID:          chainID,
		ProtocolVersion:  "0.13.0",
		GenesisTimestamp: 0,
	}
}
