package clrfile

import (
	"testing"

	mmap "github.com/edsrzf/mmap-go"
)

func newTestImage(buf []byte) *image {
	return &image{data: mmap.MMap(buf)}
}

func TestStringAt(t *testing.T) {
	// #Strings heap: index 0 reserved, then "Foo\0Bar\0".
	buf := append([]byte{0x00}, []byte("Foo\x00Bar\x00")...)
	h := &heaps{im: newTestImage(buf), strings: streamHeader{offset: 0}, haveStrings: true}

	got, err := h.stringAt(0, 1)
	if err != nil || got != "Foo" {
		t.Fatalf("stringAt(1) = %q, %v, want %q, nil", got, err, "Foo")
	}
	got, err = h.stringAt(0, 5)
	if err != nil || got != "Bar" {
		t.Fatalf("stringAt(5) = %q, %v, want %q, nil", got, err, "Bar")
	}
}

func TestStringAtZeroIndexIsEmpty(t *testing.T) {
	h := &heaps{im: newTestImage([]byte{0x00}), haveStrings: true}
	got, err := h.stringAt(0, 0)
	if err != nil || got != "" {
		t.Errorf("stringAt(0) = %q, %v, want empty string, nil", got, err)
	}
}

func TestBlobAtOneByteLength(t *testing.T) {
	// index 0 reserved, then a 3-byte blob "abc" with a one-byte length prefix.
	buf := []byte{0x00, 0x03, 'a', 'b', 'c'}
	h := &heaps{im: newTestImage(buf), blob: streamHeader{offset: 0}, haveBlob: true}

	got, err := h.blobAt(0, 1)
	if err != nil {
		t.Fatalf("blobAt: %v", err)
	}
	if string(got) != "abc" {
		t.Errorf("blobAt = %q, want %q", got, "abc")
	}
}

func TestBlobAtTwoByteLength(t *testing.T) {
	// Any length above 0x7F needs the two-byte form; use 200.
	payload := make([]byte, 200)
	for i := range payload {
		payload[i] = byte(i)
	}
	lenHi := byte(0x80 | (200 >> 8))
	lenLo := byte(200 & 0xFF)
	buf := append([]byte{0x00, lenHi, lenLo}, payload...)
	h := &heaps{im: newTestImage(buf), blob: streamHeader{offset: 0}, haveBlob: true}

	got, err := h.blobAt(0, 1)
	if err != nil {
		t.Fatalf("blobAt: %v", err)
	}
	if len(got) != 200 {
		t.Fatalf("len(blobAt) = %d, want 200", len(got))
	}
	for i, b := range got {
		if b != byte(i) {
			t.Fatalf("blobAt[%d] = %d, want %d", i, b, byte(i))
		}
	}
}

func TestBlobAtZeroIndexIsNil(t *testing.T) {
	h := &heaps{im: newTestImage([]byte{0x00}), haveBlob: true}
	got, err := h.blobAt(0, 0)
	if err != nil || got != nil {
		t.Errorf("blobAt(0) = %v, %v, want nil, nil", got, err)
	}
}

func TestGuidAt(t *testing.T) {
	guid1 := make([]byte, 16)
	for i := range guid1 {
		guid1[i] = byte(i + 1)
	}
	h := &heaps{im: newTestImage(guid1), guid: streamHeader{offset: 0}, haveGUID: true}

	got, err := h.guidAt(0, 1) // 1-based index
	if err != nil {
		t.Fatalf("guidAt: %v", err)
	}
	if len(got) != 16 || got[0] != 1 {
		t.Errorf("guidAt(1) = %v, want first GUID record", got)
	}
}

func TestTableIndexSizeWidensPastSixteenBits(t *testing.T) {
	h := &heaps{}
	h.rowCounts[tblTypeDef] = 1 << 14 // with 2 tag bits, 1<<14 == 1<<(16-2): must widen
	if got := h.tableIndexSize(2, tblTypeDef, tblTypeRef); got != 4 {
		t.Errorf("tableIndexSize = %d, want 4", got)
	}
	h.rowCounts[tblTypeDef] = 10
	if got := h.tableIndexSize(2, tblTypeDef, tblTypeRef); got != 2 {
		t.Errorf("tableIndexSize = %d, want 2", got)
	}
}

func TestSimpleIndexSizeWidensAtSixtyFourK(t *testing.T) {
	h := &heaps{}
	h.rowCounts[tblField] = 1 << 16
	if got := h.simpleIndexSize(tblField); got != 4 {
		t.Errorf("simpleIndexSize = %d, want 4", got)
	}
	h.rowCounts[tblField] = 5
	if got := h.simpleIndexSize(tblField); got != 2 {
		t.Errorf("simpleIndexSize = %d, want 2", got)
	}
}
