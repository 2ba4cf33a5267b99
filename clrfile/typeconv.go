package clrfile

// primitiveInfo maps an ELEMENT_TYPE tag to the mscorlib type it
// denotes, per ECMA-335 §II.23.1.16.
var primitiveInfo = map[byte]struct {
	name  string
	value bool
}{
	elVoid:    {"Void", false},
	elBoolean: {"Boolean", true},
	elChar:    {"Char", true},
	elI1:      {"SByte", true},
	elU1:      {"Byte", true},
	elI2:      {"Int16", true},
	elU2:      {"UInt16", true},
	elI4:      {"Int32", true},
	elU4:      {"UInt32", true},
	elI8:      {"Int64", true},
	elU8:      {"UInt64", true},
	elR4:      {"Single", true},
	elR8:      {"Double", true},
	elString:  {"String", false},
	elObject:  {"Object", false},
	elI:       {"IntPtr", true},
	elU:       {"UIntPtr", true},
	elTypedByRef: {"TypedReference", true},
}

// sigTypeToRef converts a decoded signature element into the TypeRef
// the rest of the package works with.
func (a *Assembly) sigTypeToRef(s *sigType) *typeRefImpl {
	if s == nil {
		return nil
	}
	switch s.elem {
	case elValueType, elClass:
		return a.resolveTypeDefOrRef(s.table, s.row)
	case elSZArray:
		return &typeRefImpl{asm: a, kind: tkArray, rank: 1, inner: a.sigTypeToRef(s.inner)}
	case elArray:
		return &typeRefImpl{asm: a, kind: tkArray, rank: s.rank, inner: a.sigTypeToRef(s.inner)}
	case elByRef:
		return &typeRefImpl{asm: a, kind: tkByRef, inner: a.sigTypeToRef(s.inner)}
	case elPtr:
		return &typeRefImpl{asm: a, kind: tkPtr, inner: a.sigTypeToRef(s.inner)}
	case elVar:
		return &typeRefImpl{asm: a, kind: tkVar, genericIdx: s.genericIdx}
	case elMVar:
		return &typeRefImpl{asm: a, kind: tkMVar, genericIdx: s.genericIdx}
	case elGenericInst:
		args := make([]*typeRefImpl, len(s.genArgs))
		for i, g := range s.genArgs {
			args[i] = a.sigTypeToRef(g)
		}
		return &typeRefImpl{asm: a, kind: tkGenericInst, table: s.table, row: s.row, genArgs: args}
	default:
		if info, ok := primitiveInfo[s.elem]; ok {
			return &typeRefImpl{asm: a, kind: tkPrimitive, primName: info.name, primNS: "System", primVal: info.value}
		}
		// Unrecognized/unsupported element (e.g. FNPTR): render as object
		// rather than fail the whole disassembly over one exotic operand.
		return &typeRefImpl{asm: a, kind: tkPrimitive, primName: "Object", primNS: "System", primVal: false}
	}
}

func (a *Assembly) resolveFieldSig(blob []byte) *typeRefImpl {
	return a.sigTypeToRef(decodeFieldSig(blob))
}

// resolveTypeToken resolves a plain ECMA-335 metadata token (table
// index in the top byte, 1-based row in the low 24 bits) to a type,
// as opposed to the compressed coded indices used inside table rows.
func (a *Assembly) resolveTypeToken(token uint32) *typeRefImpl {
	table := int(token >> 24)
	row := token & 0x00FFFFFF
	if row == 0 {
		return nil
	}
	return a.resolveTypeDefOrRef(table, row)
}
