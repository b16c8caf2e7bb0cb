package state

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/klauspost/compress/zstd"

	"github.com/katana-go/katana/core/types"
	"github.com/katana-go/katana/katanalib/common"
)

// contractInfo is ContractInfo's on-disk record: a contract's current nonce
// and class hash, two fixed-width Felts.
type contractInfo struct {
	Nonce     common.Felt
	ClassHash common.ClassHash
}

func encodeContractInfo(c contractInfo) []byte {
	out := make([]byte, common.FeltBytes*2)
	copy(out[:common.FeltBytes], c.Nonce[:])
	copy(out[common.FeltBytes:], c.ClassHash[:])
	return out
}

func decodeContractInfo(buf []byte) (contractInfo, error) {
	if len(buf) != common.FeltBytes*2 {
		return contractInfo{}, fmt.Errorf("state: malformed ContractInfo record (%d bytes)", len(buf))
	}
	var c contractInfo
	copy(c.Nonce[:], buf[:common.FeltBytes])
	copy(c.ClassHash[:], buf[common.FeltBytes:])
	return c, nil
}

// encodeStorageValue/decodeStorageValue encode a single storage Felt for
// ContractStorage's DupSort value (slot ++ value, so cursoring the table
// sorts by slot and DeleteCurrentDuplicates still scopes to one contract).
func encodeStorageValue(slot, value common.Felt) []byte {
	out := make([]byte, common.FeltBytes*2)
	copy(out[:common.FeltBytes], slot[:])
	copy(out[common.FeltBytes:], value[:])
	return out
}

func decodeStorageValue(buf []byte) (slot, value common.Felt, err error) {
	if len(buf) != common.FeltBytes*2 {
		return slot, value, fmt.Errorf("state: malformed ContractStorage record (%d bytes)", len(buf))
	}
	copy(slot[:], buf[:common.FeltBytes])
	copy(value[:], buf[common.FeltBytes:])
	return slot, value, nil
}

// zstdEncoder/zstdDecoder are the zstd pair the Classes table uses to
// compress Sierra programs, matching spec §4.1's "Classes: class_hash ->
// ContractClass (zstd-compressed Sierra program)" and the teacher's
// widespread use of klauspost/compress for on-disk blobs.
var (
	zstdEncoder, _ = zstd.NewWriter(nil)
	zstdDecoder, _ = zstd.NewReader(nil)
)

func encodeContractClass(c *types.ContractClass) ([]byte, error) {
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.BigEndian, c.IsLegacy); err != nil {
		return nil, err
	}
	writeBytes(&buf, c.LegacyProgram)
	writeFelts(&buf, c.SierraProgram)
	writeString(&buf, c.ContractClassVersion)
	writeString(&buf, c.ABI)
	writeEntryPoints(&buf, c.LegacyEntryPoints)
	writeEntryPoints(&buf, c.SierraEntryPoints)
	return zstdEncoder.EncodeAll(buf.Bytes(), nil), nil
}

func decodeContractClass(compressed []byte) (*types.ContractClass, error) {
	raw, err := zstdDecoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("state: decompress class: %w", err)
	}
	r := bytes.NewReader(raw)
	c := &types.ContractClass{}
	if err := binary.Read(r, binary.BigEndian, &c.IsLegacy); err != nil {
		return nil, err
	}
	var err2 error
	if c.LegacyProgram, err2 = readBytes(r); err2 != nil {
		return nil, err2
	}
	if c.SierraProgram, err2 = readFelts(r); err2 != nil {
		return nil, err2
	}
	if c.ContractClassVersion, err2 = readString(r); err2 != nil {
		return nil, err2
	}
	if c.ABI, err2 = readString(r); err2 != nil {
		return nil, err2
	}
	if c.LegacyEntryPoints, err2 = readEntryPoints(r); err2 != nil {
		return nil, err2
	}
	if c.SierraEntryPoints, err2 = readEntryPoints(r); err2 != nil {
		return nil, err2
	}
	return c, nil
}

func writeBytes(buf *bytes.Buffer, b []byte) {
	binary.Write(buf, binary.BigEndian, uint32(len(b)))
	buf.Write(b)
}

func readBytes(r *bytes.Reader) ([]byte, error) {
	var n uint32
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return nil, err
	}
	b := make([]byte, n)
	if _, err := r.Read(b); err != nil && n > 0 {
		return nil, err
	}
	return b, nil
}

func writeString(buf *bytes.Buffer, s string) { writeBytes(buf, []byte(s)) }

func readString(r *bytes.Reader) (string, error) {
	b, err := readBytes(r)
	return string(b), err
}

func writeFelts(buf *bytes.Buffer, fs []common.Felt) {
	binary.Write(buf, binary.BigEndian, uint32(len(fs)))
	for _, f := range fs {
		buf.Write(f[:])
	}
}

func readFelts(r *bytes.Reader) ([]common.Felt, error) {
	var n uint32
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	out := make([]common.Felt, n)
	for i := range out {
		if _, err := r.Read(out[i][:]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func writeEntryPointList(buf *bytes.Buffer, eps []types.SierraEntryPoint) {
	binary.Write(buf, binary.BigEndian, uint32(len(eps)))
	for _, ep := range eps {
		buf.Write(ep.Selector[:])
		binary.Write(buf, binary.BigEndian, ep.FunctionIndex)
	}
}

func readEntryPointList(r *bytes.Reader) ([]types.SierraEntryPoint, error) {
	var n uint32
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	out := make([]types.SierraEntryPoint, n)
	for i := range out {
		if _, err := r.Read(out[i].Selector[:]); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.BigEndian, &out[i].FunctionIndex); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func writeEntryPoints(buf *bytes.Buffer, eps types.SierraEntryPoints) {
	writeEntryPointList(buf, eps.External)
	writeEntryPointList(buf, eps.L1Handler)
	writeEntryPointList(buf, eps.Constructor)
}

func readEntryPoints(r *bytes.Reader) (types.SierraEntryPoints, error) {
	var eps types.SierraEntryPoints
	var err error
	if eps.External, err = readEntryPointList(r); err != nil {
		return eps, err
	}
	if eps.L1Handler, err = readEntryPointList(r); err != nil {
		return eps, err
	}
	if eps.Constructor, err = readEntryPointList(r); err != nil {
		return eps, err
	}
	return eps, nil
}
