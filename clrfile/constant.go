package clrfile

import (
	"encoding/binary"
	"math"

	"golang.org/x/text/encoding/unicode"

	"cildisasm"
)

// decodeConstantBlob interprets a Constant table row's Value blob
// according to its declared ELEMENT_TYPE tag, per ECMA-335 §II.22.9.
func decodeConstantBlob(typ byte, blob []byte) *cil.DefaultValue {
	switch typ {
	case elBoolean:
		v := len(blob) > 0 && blob[0] != 0
		return &cil.DefaultValue{Kind: cil.DefaultBool, Int64: boolToInt64(v)}
	case elChar:
		return &cil.DefaultValue{Kind: cil.DefaultChar, Int64: int64(le16(blob))}
	case elI1:
		return &cil.DefaultValue{Kind: cil.DefaultInt8, Int64: int64(int8(blob0(blob)))}
	case elU1:
		return &cil.DefaultValue{Kind: cil.DefaultUInt8, Uint64: uint64(blob0(blob))}
	case elI2:
		return &cil.DefaultValue{Kind: cil.DefaultInt16, Int64: int64(int16(le16(blob)))}
	case elU2:
		return &cil.DefaultValue{Kind: cil.DefaultUInt16, Uint64: uint64(le16(blob))}
	case elI4:
		return &cil.DefaultValue{Kind: cil.DefaultInt32, Int64: int64(int32(le32(blob)))}
	case elU4:
		return &cil.DefaultValue{Kind: cil.DefaultUInt32, Uint64: uint64(le32(blob))}
	case elI8:
		return &cil.DefaultValue{Kind: cil.DefaultInt64, Int64: int64(le64(blob))}
	case elU8:
		return &cil.DefaultValue{Kind: cil.DefaultUInt64, Uint64: le64(blob)}
	case elR4:
		return &cil.DefaultValue{Kind: cil.DefaultFloat32, Float64: float64(math.Float32frombits(le32(blob)))}
	case elR8:
		return &cil.DefaultValue{Kind: cil.DefaultFloat64, Float64: math.Float64frombits(le64(blob))}
	case elString:
		return &cil.DefaultValue{Kind: cil.DefaultString, String: decodeUTF16LE(blob)}
	case elClass:
		return &cil.DefaultValue{Kind: cil.DefaultNullRef}
	default:
		return &cil.DefaultValue{Kind: cil.DefaultOther}
	}
}

func boolToInt64(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func blob0(b []byte) byte {
	if len(b) == 0 {
		return 0
	}
	return b[0]
}

func le16(b []byte) uint16 {
	if len(b) < 2 {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func le32(b []byte) uint32 {
	if len(b) < 4 {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func le64(b []byte) uint64 {
	if len(b) < 8 {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

func decodeUTF16LE(b []byte) string {
	dec := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
	decoded, err := dec.Bytes(b)
	if err != nil {
		return ""
	}
	return string(decoded)
}
