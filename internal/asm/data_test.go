package asm

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/xyproto/vc4c/internal/ir"
)

func TestToBinaryLiteralEncodesLittleEndian(t *testing.T) {
	v := ir.LiteralValue(ir.IntLiteral(0x01020304), ir.Int32)
	b, err := toBinary(v, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []byte{0x04, 0x03, 0x02, 0x01}
	if !bytes.Equal(b, want) {
		t.Errorf("got %x, want %x", b, want)
	}
}

func TestToBinaryContainerFlattensLaneByLane(t *testing.T) {
	elems := []ir.Value{
		ir.LiteralValue(ir.IntLiteral(1), ir.Int32),
		ir.LiteralValue(ir.IntLiteral(2), ir.Int32),
	}
	v := ir.ContainerValue(elems, ir.VectorOf(ir.Int32, 2))
	b, err := toBinary(v, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(b) != 8 {
		t.Fatalf("expected 8 bytes for 2 lanes of 4 bytes, got %d", len(b))
	}
	if binary.LittleEndian.Uint32(b[0:4]) != 1 || binary.LittleEndian.Uint32(b[4:8]) != 2 {
		t.Errorf("unexpected lane values: %x", b)
	}
}

func TestToBinaryUndefinedZeroFills(t *testing.T) {
	v := ir.Undefined(ir.Int32)
	b, err := toBinary(v, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(b) != 4 || !bytes.Equal(b, make([]byte, 4)) {
		t.Errorf("expected 4 zero bytes, got %x", b)
	}
}

func TestToBinaryNonConstantValueIsError(t *testing.T) {
	local := ir.LocalValue(ir.NewLocal("x", ir.Int32))
	if _, err := toBinary(local, 4); err == nil {
		t.Fatal("expected an error for a non-constant initializer")
	}
}

func TestPadToAppendsZerosToBoundary(t *testing.T) {
	got := padTo([]byte{1, 2, 3}, 8)
	if len(got) != 8 {
		t.Fatalf("expected 8 bytes, got %d", len(got))
	}
	for _, b := range got[3:] {
		if b != 0 {
			t.Error("expected the padding bytes to be zero")
		}
	}
}

func TestPadToIsNoOpWhenAlreadyAligned(t *testing.T) {
	got := padTo([]byte{1, 2, 3, 4}, 4)
	if len(got) != 4 {
		t.Errorf("expected no padding to be added, got %d bytes", len(got))
	}
}

func TestGenerateDataSegmentRecordsOffsetsAndAlignsGlobals(t *testing.T) {
	a := &ir.Global{
		Local:     ir.NewLocal("a", ir.UInt8),
		Initial:   ir.LiteralValue(ir.IntLiteral(0xAB), ir.UInt8),
		Alignment: 1,
	}
	b := &ir.Global{
		Local:     ir.NewLocal("b", ir.UInt32),
		Initial:   ir.LiteralValue(ir.IntLiteral(0x11223344), ir.UInt32),
		Alignment: 4,
	}
	data, offsets, err := generateDataSegment([]*ir.Global{a, b})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if offsets["a"] != 0 {
		t.Errorf("expected a at offset 0, got %d", offsets["a"])
	}
	if offsets["b"] != 4 {
		t.Errorf("expected b aligned up to offset 4, got %d", offsets["b"])
	}
	if len(data)%8 != 0 {
		t.Errorf("expected the whole segment padded to a multiple of 8, got %d bytes", len(data))
	}
}

func TestWriteDataSegmentBinaryWritesRawBytes(t *testing.T) {
	var buf bytes.Buffer
	w := newWriter(&buf, ModeBinary)
	data := []byte{1, 2, 3, 4, 5, 6, 7, 8}

	if err := writeDataSegment(w, data); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(buf.Bytes(), data) {
		t.Errorf("expected the raw bytes to be written verbatim, got %x", buf.Bytes())
	}
}

func TestWriteDataSegmentHexChunksIntoWords(t *testing.T) {
	var buf bytes.Buffer
	w := newWriter(&buf, ModeHex)
	data := []byte{1, 0, 0, 0, 0, 0, 0, 0}

	if err := writeDataSegment(w, data); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buf.Len() == 0 {
		t.Error("expected some hex output")
	}
}
