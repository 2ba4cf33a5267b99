package clrfile

import (
	"testing"

	"cildisasm"
)

func TestDecodeConstantBlobIntegers(t *testing.T) {
	tests := []struct {
		name     string
		typ      byte
		blob     []byte
		wantKind cil.DefaultValueKind
		wantI64  int64
		wantU64  uint64
	}{
		{"bool true", elBoolean, []byte{0x01}, cil.DefaultBool, 1, 0},
		{"bool false", elBoolean, []byte{0x00}, cil.DefaultBool, 0, 0},
		{"i1 negative", elI1, []byte{0xFF}, cil.DefaultInt8, -1, 0},
		{"u1", elU1, []byte{0x2A}, cil.DefaultUInt8, 0, 42},
		{"i2 negative", elI2, []byte{0xFF, 0xFF}, cil.DefaultInt16, -1, 0},
		{"u2", elU2, []byte{0x39, 0x05}, cil.DefaultUInt16, 0, 0x0539},
		{"i4 negative", elI4, []byte{0xFF, 0xFF, 0xFF, 0xFF}, cil.DefaultInt32, -1, 0},
		{"u4", elU4, []byte{0x78, 0x56, 0x34, 0x12}, cil.DefaultUInt32, 0, 0x12345678},
		{"i8 negative", elI8, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}, cil.DefaultInt64, -1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := decodeConstantBlob(tt.typ, tt.blob)
			if got.Kind != tt.wantKind {
				t.Fatalf("Kind = %v, want %v", got.Kind, tt.wantKind)
			}
			if got.Int64 != tt.wantI64 {
				t.Errorf("Int64 = %d, want %d", got.Int64, tt.wantI64)
			}
			if got.Uint64 != tt.wantU64 {
				t.Errorf("Uint64 = %d, want %d", got.Uint64, tt.wantU64)
			}
		})
	}
}

func TestDecodeConstantBlobFloats(t *testing.T) {
	// 1.5f as IEEE-754 single precision, little-endian.
	r4 := decodeConstantBlob(elR4, []byte{0x00, 0x00, 0xC0, 0x3F})
	if r4.Kind != cil.DefaultFloat32 || r4.Float64 != 1.5 {
		t.Errorf("R4 = %+v, want Float32 1.5", r4)
	}

	// 1.5 as IEEE-754 double precision, little-endian.
	r8 := decodeConstantBlob(elR8, []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0xF8, 0x3F})
	if r8.Kind != cil.DefaultFloat64 || r8.Float64 != 1.5 {
		t.Errorf("R8 = %+v, want Float64 1.5", r8)
	}
}

func TestDecodeConstantBlobString(t *testing.T) {
	// "Hi" as UTF-16LE.
	blob := []byte{'H', 0x00, 'i', 0x00}
	got := decodeConstantBlob(elString, blob)
	if got.Kind != cil.DefaultString || got.String != "Hi" {
		t.Errorf("String = %+v, want %q", got, "Hi")
	}
}

func TestDecodeConstantBlobClassIsNullRef(t *testing.T) {
	got := decodeConstantBlob(elClass, nil)
	if got.Kind != cil.DefaultNullRef {
		t.Errorf("Kind = %v, want DefaultNullRef", got.Kind)
	}
}

func TestDecodeConstantBlobUnknownIsOther(t *testing.T) {
	got := decodeConstantBlob(elObject, nil)
	if got.Kind != cil.DefaultOther {
		t.Errorf("Kind = %v, want DefaultOther", got.Kind)
	}
}
