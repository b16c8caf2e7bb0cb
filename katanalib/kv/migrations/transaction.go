// Package migrations holds the versioned record shapes needed to read a
// database written by an older schema version and re-encode it at the
// current one (spec §4.1 "stored transaction/record types are explicitly
// versioned ... each old version defines a lossless conversion").
//
// Grounded directly on original_source's
// crates/storage/db/src/models/versioned/transaction/{v6,v7}.rs: v6's
// ResourceBoundsMapping only ever carried an (L1 gas, L2 gas) pair — the
// three-resource-family (L1 gas, L2 gas, L1 data gas) bound didn't exist
// yet. v7 widened it to a sum type: the legacy two-resource shape
// (ResourceBoundsL1Gas) or the current three-resource shape
// (ResourceBoundsAll). The v6->v7 conversion is lossless by construction:
// every v6 record becomes the legacy variant of the v7 sum.
package migrations

// ResourceBoundsV6 is the flat (L1 gas, L2 gas) bound pair every V3
// transaction carried under schema v6.
type ResourceBoundsV6 struct {
	L1Gas ResourceBound
	L2Gas ResourceBound
}

type ResourceBound struct {
	MaxAmount        uint64
	MaxPricePerUnit  uint64
}

// ResourceBoundsKind discriminates the v7 sum type.
type ResourceBoundsKind uint8

const (
	ResourceBoundsL1Gas ResourceBoundsKind = iota // legacy two-resource shape
	ResourceBoundsAll                             // current three-resource shape
)

// ResourceBoundsV7 is the current (v7) resource-bounds sum type: either the
// legacy two-resource mapping or the full three-resource mapping including
// L1 data gas (spec §3's "resource bounds (max_amount x max_price_per_unit
// per resource family: L1 gas, L2 gas, L1 data gas)").
type ResourceBoundsV7 struct {
	Kind    ResourceBoundsKind
	L1Gas   ResourceBound
	L2Gas   ResourceBound
	L1DataGas ResourceBound // zero value when Kind == ResourceBoundsL1Gas
}

// UpcastResourceBounds losslessly converts a v6 bound pair into the v7 sum
// type's legacy variant — the exact `From<v6::ResourceBoundsMapping> for
// v7::ResourceBoundsMapping` conversion in original_source.
func UpcastResourceBounds(v6 ResourceBoundsV6) ResourceBoundsV7 {
	return ResourceBoundsV7{
		Kind:  ResourceBoundsL1Gas,
		L1Gas: v6.L1Gas,
		L2Gas: v6.L2Gas,
	}
}

// TxRecordV6 is the on-disk shape of a V3 transaction's resource bounds
// under schema v6; all other fields are unaffected by the v6->v7 change and
// are read directly by the current codec (core/types/codec.go).
type TxRecordV6 struct {
	ResourceBounds ResourceBoundsV6
}

// UpcastTxRecord re-encodes a v6 transaction record's resource-bounds field
// at the current (v7) shape. Reads transparently upcast (spec §4.1); writes
// always use the current version.
func UpcastTxRecord(v6 TxRecordV6) ResourceBoundsV7 {
	return UpcastResourceBounds(v6.ResourceBounds)
}
