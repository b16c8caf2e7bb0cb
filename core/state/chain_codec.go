package state

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/katana-go/katana/core/types"
	"github.com/katana-go/katana/katanalib/common"
	"github.com/katana-go/katana/katanalib/kv/migrations"
)

// encodeHeader/decodeHeader serialize a Header record for the Headers
// table (spec §4.1 "Headers: block_num -> Header").
func encodeHeader(h *types.Header) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, h.Number)
	buf.Write(h.ParentHash[:])
	binary.Write(&buf, binary.BigEndian, h.Timestamp)
	buf.Write(h.SequencerAddress[:])
	writeString(&buf, h.ProtocolVersion)
	buf.Write(h.StateRoot[:])
	buf.Write(h.TransactionCommitment[:])
	buf.Write(h.ReceiptCommitment[:])
	buf.Write(h.EventCommitment[:])
	buf.Write(h.StateDiffCommitment[:])
	binary.Write(&buf, binary.BigEndian, h.StateDiffLength)
	buf.Write(h.L1GasPriceWei[:])
	buf.Write(h.L1GasPriceFri[:])
	buf.Write(h.L1DataGasPriceWei[:])
	buf.Write(h.L1DataGasPriceFri[:])
	buf.Write(h.L2GasPriceWei[:])
	buf.Write(h.L2GasPriceFri[:])
	binary.Write(&buf, binary.BigEndian, h.L1DAMode)
	return buf.Bytes()
}

func decodeHeader(raw []byte) (*types.Header, error) {
	r := bytes.NewReader(raw)
	h := &types.Header{}
	var err error
	if err = binary.Read(r, binary.BigEndian, &h.Number); err != nil {
		return nil, err
	}
	if _, err = r.Read(h.ParentHash[:]); err != nil {
		return nil, err
	}
	if err = binary.Read(r, binary.BigEndian, &h.Timestamp); err != nil {
		return nil, err
	}
	if _, err = r.Read(h.SequencerAddress[:]); err != nil {
		return nil, err
	}
	if h.ProtocolVersion, err = readString(r); err != nil {
		return nil, err
	}
	for _, f := range []*common.Felt{
		&h.StateRoot, &h.TransactionCommitment, &h.ReceiptCommitment,
		&h.EventCommitment, &h.StateDiffCommitment,
	} {
		if _, err = r.Read(f[:]); err != nil {
			return nil, err
		}
	}
	if err = binary.Read(r, binary.BigEndian, &h.StateDiffLength); err != nil {
		return nil, err
	}
	for _, f := range []*common.Felt{
		&h.L1GasPriceWei, &h.L1GasPriceFri, &h.L1DataGasPriceWei,
		&h.L1DataGasPriceFri, &h.L2GasPriceWei, &h.L2GasPriceFri,
	} {
		if _, err = r.Read(f[:]); err != nil {
			return nil, err
		}
	}
	if err = binary.Read(r, binary.BigEndian, &h.L1DAMode); err != nil {
		return nil, err
	}
	return h, nil
}

// encodeTransaction/decodeTransaction tag every Transaction variant with its
// TxKind discriminant, per spec §9 "the storage codec tags each record with
// its variant discriminant".
func encodeTransaction(tx types.Transaction) ([]byte, error) {
	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, tx.Kind())

	switch t := tx.(type) {
	case *types.InvokeTxV0:
		buf.Write(t.ContractAddress[:])
		buf.Write(t.EntryPointSelector[:])
		writeFelts(&buf, t.Calldata)
		buf.Write(t.MaxFee[:])
		writeFelts(&buf, t.Sig)
		buf.Write(t.TxHash[:])
	case *types.InvokeTxV1:
		buf.Write(t.SenderAddr[:])
		buf.Write(t.TxNonce[:])
		writeFelts(&buf, t.Calldata)
		buf.Write(t.MaxFee[:])
		writeFelts(&buf, t.Sig)
		buf.Write(t.ChainID[:])
		buf.Write(t.TxHash[:])
	case *types.InvokeTxV3:
		buf.Write(t.ChainID[:])
		buf.Write(t.SenderAddr[:])
		buf.Write(t.TxNonce[:])
		writeFelts(&buf, t.Calldata)
		writeFelts(&buf, t.Sig)
		writeResourceBounds(&buf, t.ResourceBounds)
		binary.Write(&buf, binary.BigEndian, t.Tip)
		writeFelts(&buf, t.PaymasterData)
		writeFelts(&buf, t.AccountDeploymentData)
		binary.Write(&buf, binary.BigEndian, t.NonceDAMode)
		binary.Write(&buf, binary.BigEndian, t.FeeDAMode)
		buf.Write(t.TxHash[:])
	case *types.DeclareTxV0:
		buf.Write(t.SenderAddr[:])
		buf.Write(t.MaxFee[:])
		writeFelts(&buf, t.Sig)
		buf.Write(t.TxClassHash[:])
		buf.Write(t.TxHash[:])
	case *types.DeclareTxV1:
		buf.Write(t.SenderAddr[:])
		buf.Write(t.TxNonce[:])
		buf.Write(t.MaxFee[:])
		writeFelts(&buf, t.Sig)
		buf.Write(t.TxClassHash[:])
		buf.Write(t.TxHash[:])
	case *types.DeclareTxV2:
		buf.Write(t.SenderAddr[:])
		buf.Write(t.TxNonce[:])
		buf.Write(t.MaxFee[:])
		writeFelts(&buf, t.Sig)
		buf.Write(t.TxClassHash[:])
		buf.Write(t.CompiledClassHash[:])
		buf.Write(t.TxHash[:])
	case *types.DeclareTxV3:
		buf.Write(t.ChainID[:])
		buf.Write(t.SenderAddr[:])
		buf.Write(t.TxNonce[:])
		writeFelts(&buf, t.Sig)
		buf.Write(t.TxClassHash[:])
		buf.Write(t.CompiledClassHash[:])
		writeResourceBounds(&buf, t.ResourceBounds)
		binary.Write(&buf, binary.BigEndian, t.Tip)
		writeFelts(&buf, t.PaymasterData)
		writeFelts(&buf, t.AccountDeploymentData)
		binary.Write(&buf, binary.BigEndian, t.NonceDAMode)
		binary.Write(&buf, binary.BigEndian, t.FeeDAMode)
		buf.Write(t.TxHash[:])
	case *types.DeployAccountTxV1:
		buf.Write(t.TxNonce[:])
		buf.Write(t.MaxFee[:])
		writeFelts(&buf, t.Sig)
		buf.Write(t.TxClassHash[:])
		buf.Write(t.ContractAddressSalt[:])
		writeFelts(&buf, t.ConstructorCalldata)
		buf.Write(t.ContractAddr[:])
		buf.Write(t.TxHash[:])
	case *types.DeployAccountTxV3:
		buf.Write(t.ChainID[:])
		buf.Write(t.TxNonce[:])
		writeFelts(&buf, t.Sig)
		buf.Write(t.TxClassHash[:])
		buf.Write(t.ContractAddr[:])
		buf.Write(t.ContractAddressSalt[:])
		writeFelts(&buf, t.ConstructorCalldata)
		writeResourceBounds(&buf, t.ResourceBounds)
		binary.Write(&buf, binary.BigEndian, t.Tip)
		writeFelts(&buf, t.PaymasterData)
		binary.Write(&buf, binary.BigEndian, t.NonceDAMode)
		binary.Write(&buf, binary.BigEndian, t.FeeDAMode)
		buf.Write(t.TxHash[:])
	case *types.L1HandlerTx:
		buf.Write(t.ContractAddr[:])
		buf.Write(t.EntryPointSelector[:])
		writeFelts(&buf, t.Calldata)
		buf.Write(t.TxNonce[:])
		buf.Write(t.PaidFeeOnL1[:])
		buf.Write(t.TxHash[:])
	case *types.DeployTx:
		buf.Write(t.ContractAddressSalt[:])
		buf.Write(t.TxClassHash[:])
		writeFelts(&buf, t.ConstructorCalldata)
		buf.Write(t.ContractAddr[:])
		buf.Write(t.TxHash[:])
	default:
		return nil, fmt.Errorf("state: unknown transaction variant %T", tx)
	}
	return buf.Bytes(), nil
}

// decodeTransaction decodes a record written at the current (v7) schema,
// where every V3 transaction's resource bounds carry all three resource
// families (L1 gas, L2 gas, L1 data gas). Records written at schema v6
// (no L1 data gas bound) must go through MigrateTransactionRecord first —
// see decodeTransactionLegacyV6 below.
func decodeTransaction(raw []byte) (types.Transaction, error) {
	return decodeTransactionVersioned(raw, false)
}

// decodeTransactionLegacyV6 decodes a record written at schema v6, where a
// V3 transaction's resource bounds were the flat (L1 gas, L2 gas) pair
// original_source's v6 ResourceBoundsMapping carried (no L1 data gas
// family yet). Used only by MigrateTransactionRecord.
func decodeTransactionLegacyV6(raw []byte) (types.Transaction, error) {
	return decodeTransactionVersioned(raw, true)
}

func decodeTransactionVersioned(raw []byte, legacyResourceBounds bool) (types.Transaction, error) {
	r := bytes.NewReader(raw)
	var kind types.TxKind
	if err := binary.Read(r, binary.BigEndian, &kind); err != nil {
		return nil, err
	}

	readFelt := func(f *common.Felt) error { _, err := r.Read(f[:]); return err }

	switch kind {
	case types.TxInvokeV0:
		t := &types.InvokeTxV0{}
		if err := readFelt(&t.ContractAddress); err != nil {
			return nil, err
		}
		if err := readFelt(&t.EntryPointSelector); err != nil {
			return nil, err
		}
		var err error
		if t.Calldata, err = readFelts(r); err != nil {
			return nil, err
		}
		if err := readFelt(&t.MaxFee); err != nil {
			return nil, err
		}
		if t.Sig, err = readFelts(r); err != nil {
			return nil, err
		}
		if err := readFelt(&t.TxHash); err != nil {
			return nil, err
		}
		return t, nil
	case types.TxInvokeV1:
		t := &types.InvokeTxV1{}
		if err := readFelt(&t.SenderAddr); err != nil {
			return nil, err
		}
		if err := readFelt(&t.TxNonce); err != nil {
			return nil, err
		}
		var err error
		if t.Calldata, err = readFelts(r); err != nil {
			return nil, err
		}
		if err := readFelt(&t.MaxFee); err != nil {
			return nil, err
		}
		if t.Sig, err = readFelts(r); err != nil {
			return nil, err
		}
		if err := readFelt(&t.ChainID); err != nil {
			return nil, err
		}
		if err := readFelt(&t.TxHash); err != nil {
			return nil, err
		}
		return t, nil
	case types.TxInvokeV3:
		t := &types.InvokeTxV3{}
		if err := readFelt(&t.ChainID); err != nil {
			return nil, err
		}
		if err := readFelt(&t.SenderAddr); err != nil {
			return nil, err
		}
		if err := readFelt(&t.TxNonce); err != nil {
			return nil, err
		}
		var err error
		if t.Calldata, err = readFelts(r); err != nil {
			return nil, err
		}
		if t.Sig, err = readFelts(r); err != nil {
			return nil, err
		}
		if t.ResourceBounds, err = readResourceBounds(r, legacyResourceBounds); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.BigEndian, &t.Tip); err != nil {
			return nil, err
		}
		if t.PaymasterData, err = readFelts(r); err != nil {
			return nil, err
		}
		if t.AccountDeploymentData, err = readFelts(r); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.BigEndian, &t.NonceDAMode); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.BigEndian, &t.FeeDAMode); err != nil {
			return nil, err
		}
		if err := readFelt(&t.TxHash); err != nil {
			return nil, err
		}
		return t, nil
	case types.TxDeclareV0:
		t := &types.DeclareTxV0{}
		if err := readFelt(&t.SenderAddr); err != nil {
			return nil, err
		}
		if err := readFelt(&t.MaxFee); err != nil {
			return nil, err
		}
		var err error
		if t.Sig, err = readFelts(r); err != nil {
			return nil, err
		}
		if err := readFelt(&t.TxClassHash); err != nil {
			return nil, err
		}
		if err := readFelt(&t.TxHash); err != nil {
			return nil, err
		}
		return t, nil
	case types.TxDeclareV1:
		t := &types.DeclareTxV1{}
		if err := readFelt(&t.SenderAddr); err != nil {
			return nil, err
		}
		if err := readFelt(&t.TxNonce); err != nil {
			return nil, err
		}
		if err := readFelt(&t.MaxFee); err != nil {
			return nil, err
		}
		var err error
		if t.Sig, err = readFelts(r); err != nil {
			return nil, err
		}
		if err := readFelt(&t.TxClassHash); err != nil {
			return nil, err
		}
		if err := readFelt(&t.TxHash); err != nil {
			return nil, err
		}
		return t, nil
	case types.TxDeclareV2:
		t := &types.DeclareTxV2{}
		if err := readFelt(&t.SenderAddr); err != nil {
			return nil, err
		}
		if err := readFelt(&t.TxNonce); err != nil {
			return nil, err
		}
		if err := readFelt(&t.MaxFee); err != nil {
			return nil, err
		}
		var err error
		if t.Sig, err = readFelts(r); err != nil {
			return nil, err
		}
		if err := readFelt(&t.TxClassHash); err != nil {
			return nil, err
		}
		if err := readFelt(&t.CompiledClassHash); err != nil {
			return nil, err
		}
		if err := readFelt(&t.TxHash); err != nil {
			return nil, err
		}
		return t, nil
	case types.TxDeclareV3:
		t := &types.DeclareTxV3{}
		if err := readFelt(&t.ChainID); err != nil {
			return nil, err
		}
		if err := readFelt(&t.SenderAddr); err != nil {
			return nil, err
		}
		if err := readFelt(&t.TxNonce); err != nil {
			return nil, err
		}
		var err error
		if t.Sig, err = readFelts(r); err != nil {
			return nil, err
		}
		if err := readFelt(&t.TxClassHash); err != nil {
			return nil, err
		}
		if err := readFelt(&t.CompiledClassHash); err != nil {
			return nil, err
		}
		if t.ResourceBounds, err = readResourceBounds(r, legacyResourceBounds); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.BigEndian, &t.Tip); err != nil {
			return nil, err
		}
		if t.PaymasterData, err = readFelts(r); err != nil {
			return nil, err
		}
		if t.AccountDeploymentData, err = readFelts(r); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.BigEndian, &t.NonceDAMode); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.BigEndian, &t.FeeDAMode); err != nil {
			return nil, err
		}
		if err := readFelt(&t.TxHash); err != nil {
			return nil, err
		}
		return t, nil
	case types.TxDeployAccountV1:
		t := &types.DeployAccountTxV1{}
		if err := readFelt(&t.TxNonce); err != nil {
			return nil, err
		}
		if err := readFelt(&t.MaxFee); err != nil {
			return nil, err
		}
		var err error
		if t.Sig, err = readFelts(r); err != nil {
			return nil, err
		}
		if err := readFelt(&t.TxClassHash); err != nil {
			return nil, err
		}
		if err := readFelt(&t.ContractAddressSalt); err != nil {
			return nil, err
		}
		if t.ConstructorCalldata, err = readFelts(r); err != nil {
			return nil, err
		}
		if err := readFelt(&t.ContractAddr); err != nil {
			return nil, err
		}
		if err := readFelt(&t.TxHash); err != nil {
			return nil, err
		}
		return t, nil
	case types.TxDeployAccountV3:
		t := &types.DeployAccountTxV3{}
		if err := readFelt(&t.ChainID); err != nil {
			return nil, err
		}
		if err := readFelt(&t.TxNonce); err != nil {
			return nil, err
		}
		var err error
		if t.Sig, err = readFelts(r); err != nil {
			return nil, err
		}
		if err := readFelt(&t.TxClassHash); err != nil {
			return nil, err
		}
		if err := readFelt(&t.ContractAddr); err != nil {
			return nil, err
		}
		if err := readFelt(&t.ContractAddressSalt); err != nil {
			return nil, err
		}
		if t.ConstructorCalldata, err = readFelts(r); err != nil {
			return nil, err
		}
		if t.ResourceBounds, err = readResourceBounds(r, legacyResourceBounds); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.BigEndian, &t.Tip); err != nil {
			return nil, err
		}
		if t.PaymasterData, err = readFelts(r); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.BigEndian, &t.NonceDAMode); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.BigEndian, &t.FeeDAMode); err != nil {
			return nil, err
		}
		if err := readFelt(&t.TxHash); err != nil {
			return nil, err
		}
		return t, nil
	case types.TxL1Handler:
		t := &types.L1HandlerTx{}
		if err := readFelt(&t.ContractAddr); err != nil {
			return nil, err
		}
		if err := readFelt(&t.EntryPointSelector); err != nil {
			return nil, err
		}
		var err error
		if t.Calldata, err = readFelts(r); err != nil {
			return nil, err
		}
		if err := readFelt(&t.TxNonce); err != nil {
			return nil, err
		}
		if err := readFelt(&t.PaidFeeOnL1); err != nil {
			return nil, err
		}
		if err := readFelt(&t.TxHash); err != nil {
			return nil, err
		}
		return t, nil
	case types.TxDeploy:
		t := &types.DeployTx{}
		if err := readFelt(&t.ContractAddressSalt); err != nil {
			return nil, err
		}
		if err := readFelt(&t.TxClassHash); err != nil {
			return nil, err
		}
		var err error
		if t.ConstructorCalldata, err = readFelts(r); err != nil {
			return nil, err
		}
		if err := readFelt(&t.ContractAddr); err != nil {
			return nil, err
		}
		if err := readFelt(&t.TxHash); err != nil {
			return nil, err
		}
		return t, nil
	default:
		return nil, fmt.Errorf("state: unknown transaction kind %d", kind)
	}
}

func writeResourceBounds(buf *bytes.Buffer, rb types.ResourceBoundsMapping) {
	for _, b := range []types.ResourceBounds{rb.L1Gas, rb.L2Gas, rb.L1DataGas} {
		binary.Write(buf, binary.BigEndian, b.MaxAmount)
		binary.Write(buf, binary.BigEndian, b.MaxPricePerUnit)
	}
}

// readResourceBounds reads a V3 transaction's resource bounds. Records
// written at the current (v7) schema carry all three resource families;
// records written at schema v6 only ever carried the (L1 gas, L2 gas) pair,
// so legacy callers read just those two and upcast via
// migrations.UpcastResourceBounds (spec §4.1 "reads transparently upcast").
func readResourceBounds(r *bytes.Reader, legacy bool) (types.ResourceBoundsMapping, error) {
	if !legacy {
		var rb types.ResourceBoundsMapping
		for _, b := range []*types.ResourceBounds{&rb.L1Gas, &rb.L2Gas, &rb.L1DataGas} {
			if err := binary.Read(r, binary.BigEndian, &b.MaxAmount); err != nil {
				return rb, err
			}
			if err := binary.Read(r, binary.BigEndian, &b.MaxPricePerUnit); err != nil {
				return rb, err
			}
		}
		return rb, nil
	}

	var v6 migrations.ResourceBoundsV6
	for _, b := range []*migrations.ResourceBound{&v6.L1Gas, &v6.L2Gas} {
		if err := binary.Read(r, binary.BigEndian, &b.MaxAmount); err != nil {
			return types.ResourceBoundsMapping{}, err
		}
		if err := binary.Read(r, binary.BigEndian, &b.MaxPricePerUnit); err != nil {
			return types.ResourceBoundsMapping{}, err
		}
	}
	v7 := migrations.UpcastResourceBounds(v6)
	return types.ResourceBoundsMapping{
		L1Gas:     types.ResourceBounds{MaxAmount: v7.L1Gas.MaxAmount, MaxPricePerUnit: v7.L1Gas.MaxPricePerUnit},
		L2Gas:     types.ResourceBounds{MaxAmount: v7.L2Gas.MaxAmount, MaxPricePerUnit: v7.L2Gas.MaxPricePerUnit},
		L1DataGas: types.ResourceBounds{MaxAmount: v7.L1DataGas.MaxAmount, MaxPricePerUnit: v7.L1DataGas.MaxPricePerUnit},
	}, nil
}

// MigrateTransactionRecord re-decodes a transaction record written at schema
// v6 and re-encodes it at the current (v7) schema, upcasting its resource
// bounds. Used by the `katana db migrate` command to rewrite the
// Transactions table in place (katanalib/kv/migrations).
func MigrateTransactionRecord(raw []byte) ([]byte, error) {
	tx, err := decodeTransactionLegacyV6(raw)
	if err != nil {
		return nil, fmt.Errorf("state: decode legacy v6 transaction record: %w", err)
	}
	out, err := encodeTransaction(tx)
	if err != nil {
		return nil, fmt.Errorf("state: re-encode transaction record at current schema: %w", err)
	}
	return out, nil
}

// encodeReceipt/decodeReceipt serialize a Receipt for the Receipts table.
func encodeReceipt(rec *types.Receipt) []byte {
	var buf bytes.Buffer
	buf.Write(rec.TransactionHash[:])
	binary.Write(&buf, binary.BigEndian, rec.Status)
	writeString(&buf, rec.RevertReason)
	binary.Write(&buf, binary.BigEndian, rec.Fee.Unit)
	buf.Write(rec.Fee.Amount[:])

	binary.Write(&buf, binary.BigEndian, uint32(len(rec.MessagesSent)))
	for _, m := range rec.MessagesSent {
		buf.Write(m.FromAddress[:])
		buf.Write(m.ToAddress[:])
		writeFelts(&buf, m.Payload)
	}

	binary.Write(&buf, binary.BigEndian, uint32(len(rec.Events)))
	for _, ev := range rec.Events {
		buf.Write(ev.FromAddress[:])
		writeFelts(&buf, ev.Keys)
		writeFelts(&buf, ev.Data)
	}

	res := rec.ExecutionResources
	for _, v := range []uint64{
		res.Steps, res.MemoryHoles, res.SierraGas, res.Pedersen,
		res.RangeCheck, res.Bitwise, res.ECOP, res.Poseidon,
		res.Keccak, res.SegmentArena,
	} {
		binary.Write(&buf, binary.BigEndian, v)
	}
	writeFelts(&buf, rec.ExecutionResult)
	return buf.Bytes()
}

func decodeReceipt(raw []byte) (*types.Receipt, error) {
	r := bytes.NewReader(raw)
	rec := &types.Receipt{}
	if _, err := r.Read(rec.TransactionHash[:]); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.BigEndian, &rec.Status); err != nil {
		return nil, err
	}
	var err error
	if rec.RevertReason, err = readString(r); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.BigEndian, &rec.Fee.Unit); err != nil {
		return nil, err
	}
	if _, err := r.Read(rec.Fee.Amount[:]); err != nil {
		return nil, err
	}

	var nMsgs uint32
	if err := binary.Read(r, binary.BigEndian, &nMsgs); err != nil {
		return nil, err
	}
	rec.MessagesSent = make([]types.L2ToL1Message, nMsgs)
	for i := range rec.MessagesSent {
		m := &rec.MessagesSent[i]
		if _, err := r.Read(m.FromAddress[:]); err != nil {
			return nil, err
		}
		if _, err := r.Read(m.ToAddress[:]); err != nil {
			return nil, err
		}
		var err error
		if m.Payload, err = readFelts(r); err != nil {
			return nil, err
		}
	}

	var nEvents uint32
	if err := binary.Read(r, binary.BigEndian, &nEvents); err != nil {
		return nil, err
	}
	rec.Events = make([]types.Event, nEvents)
	for i := range rec.Events {
		ev := &rec.Events[i]
		if _, err := r.Read(ev.FromAddress[:]); err != nil {
			return nil, err
		}
		if ev.Keys, err = readFelts(r); err != nil {
			return nil, err
		}
		if ev.Data, err = readFelts(r); err != nil {
			return nil, err
		}
	}

	res := &rec.ExecutionResources
	for _, v := range []*uint64{
		&res.Steps, &res.MemoryHoles, &res.SierraGas, &res.Pedersen,
		&res.RangeCheck, &res.Bitwise, &res.ECOP, &res.Poseidon,
		&res.Keccak, &res.SegmentArena,
	} {
		if err := binary.Read(r, binary.BigEndian, v); err != nil {
			return nil, err
		}
	}
	if rec.ExecutionResult, err = readFelts(r); err != nil {
		return nil, err
	}
	return rec, nil
}
