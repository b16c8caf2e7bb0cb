// Package common holds the field-element and address types shared across the
// whole tree, the way erigon-lib/common holds Hash/Address for an Ethereum
// client.
package common

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// FeltBytes is the fixed-width byte length of a Felt (32 bytes, holding a
// 252-bit value left-padded with zero).
const FeltBytes = 32

// feltModulus is the StarkNet field prime 2^251 + 17*2^192 + 1.
var feltModulus = func() *big.Int {
	m, ok := new(big.Int).SetString("800000000000011000000000000000000000000000000000000000000000001", 16)
	if !ok {
		panic("common: invalid felt modulus")
	}
	return m
}()

// Felt is a 252-bit StarkNet field element, the universal identifier/value
// type: hashes, addresses, storage keys and storage values are all Felts.
type Felt [FeltBytes]byte

// Zero and One are the distinguished field elements referenced throughout
// the data model (e.g. a nil nonce reads as Zero, DeployAccount validation
// compares tx nonce against One).
var (
	FeltZero = Felt{}
	FeltOne  = FeltFromUint64(1)
)

// FeltFromUint64 embeds a uint64 into a Felt.
func FeltFromUint64(v uint64) Felt {
	var f Felt
	for i := 0; i < 8; i++ {
		f[FeltBytes-1-i] = byte(v >> (8 * i))
	}
	return f
}

// FeltFromBigInt reduces b modulo the field prime and returns the Felt
// encoding of the result. A negative or out-of-range b is normalized first.
func FeltFromBigInt(b *big.Int) Felt {
	r := new(big.Int).Mod(b, feltModulus)
	var f Felt
	r.FillBytes(f[:])
	return f
}

// FeltFromHex parses a "0x..."-prefixed (or bare) hex string into a Felt.
func FeltFromHex(s string) (Felt, error) {
	s = strings.TrimPrefix(s, "0x")
	s = strings.TrimPrefix(s, "0X")
	if len(s)%2 == 1 {
		s = "0" + s
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return Felt{}, fmt.Errorf("common: invalid felt hex %q: %w", s, err)
	}
	if len(b) > FeltBytes {
		return Felt{}, errors.New("common: felt hex value overflows 32 bytes")
	}
	var f Felt
	copy(f[FeltBytes-len(b):], b)
	return f, nil
}

// Big returns the Felt's value as a big.Int.
func (f Felt) Big() *big.Int {
	return new(big.Int).SetBytes(f[:])
}

// IsZero reports whether f is the additive identity.
func (f Felt) IsZero() bool {
	return f == Felt{}
}

// Bytes returns the 32-byte big-endian encoding.
func (f Felt) Bytes() []byte {
	out := make([]byte, FeltBytes)
	copy(out, f[:])
	return out
}

// Hex renders f as a "0x"-prefixed, non-zero-padded hex string, matching the
// StarkNet RPC wire format for Felt values.
func (f Felt) Hex() string {
	return "0x" + strings.TrimLeft(hex.EncodeToString(f[:]), "0")
}

func (f Felt) String() string {
	s := f.Hex()
	if s == "0x" {
		return "0x0"
	}
	return s
}

// Add returns f+g mod p.
func (f Felt) Add(g Felt) Felt {
	return FeltFromBigInt(new(big.Int).Add(f.Big(), g.Big()))
}

// Cmp orders two Felts as unsigned 252-bit integers.
func (f Felt) Cmp(g Felt) int {
	for i := 0; i < FeltBytes; i++ {
		if f[i] != g[i] {
			if f[i] < g[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

func (f Felt) MarshalText() ([]byte, error) {
	return []byte(f.Hex()), nil
}

func (f *Felt) UnmarshalText(text []byte) error {
	v, err := FeltFromHex(string(text))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// Address is a contract address: a Felt interpreted as the identity of a
// contract account, used as the contracts-trie key and storage-trie
// namespace.
type Address = Felt

// AddressFromHex parses a contract address.
func AddressFromHex(s string) (Address, error) { return FeltFromHex(s) }

// ClassHash is the content hash of a contract class (Cairo0 program hash or
// Sierra program hash).
type ClassHash = Felt

// Hash is a generic 252-bit hash value (block hash, tx hash, ...).
type Hash = Felt
