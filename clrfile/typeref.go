package clrfile

import (
	"strconv"

	"cildisasm"
)

// TypeDef flags, per ECMA-335 §II.23.1.15.
const (
	tdVisibilityMask   = 0x00000007
	tdPublic           = 0x00000001
	tdInterface        = 0x00000020
	tdAbstract         = 0x00000080
	tdSealed           = 0x00000100
	tdLayoutMask       = 0x00000018
	tdStringFormatMask = 0x00030000
	tdBeforeFieldInit  = 0x00100000
)

var mscorlibRef = cil.AssemblyRef{FullName: "mscorlib"}

type typeKind int

const (
	tkTypeDef typeKind = iota
	tkTypeRefRow
	tkPrimitive
	tkArray
	tkByRef
	tkPtr
	tkVar
	tkMVar
	tkGenericInst
)

// typeRefImpl is the one implementation of cil.TypeRef this package
// needs: a tagged union over every shape a decoded signature or table
// row can produce. Most methods are meaningful for only one or two
// kinds; the rest answer with their natural zero value.
type typeRefImpl struct {
	asm  *Assembly
	kind typeKind

	// tkTypeDef / tkTypeRefRow / tkGenericInst's underlying definition.
	table int
	row   uint32

	// tkPrimitive.
	primName string
	primNS   string
	primVal  bool // value type (numeric/bool/char) vs reference (string/object/void)

	// tkArray / tkByRef / tkPtr.
	inner *typeRefImpl
	rank  int

	// tkVar / tkMVar.
	genericIdx uint32

	// tkGenericInst.
	genArgs []*typeRefImpl
}

func (t *typeRefImpl) Namespace() string {
	switch t.kind {
	case tkTypeDef:
		ns, _ := t.asm.heaps.stringAt(t.asm.heapBase(), t.asm.tables.rows[tblTypeDef][t.row-1][2])
		return ns
	case tkTypeRefRow:
		ns, _ := t.asm.heaps.stringAt(t.asm.heapBase(), t.asm.tables.rows[tblTypeRef][t.row-1][2])
		return ns
	case tkPrimitive:
		return t.primNS
	case tkGenericInst:
		return t.definition().Namespace()
	default:
		return ""
	}
}

func (t *typeRefImpl) Name() string {
	switch t.kind {
	case tkTypeDef:
		n, _ := t.asm.heaps.stringAt(t.asm.heapBase(), t.asm.tables.rows[tblTypeDef][t.row-1][1])
		return n
	case tkTypeRefRow:
		n, _ := t.asm.heaps.stringAt(t.asm.heapBase(), t.asm.tables.rows[tblTypeRef][t.row-1][1])
		return n
	case tkPrimitive:
		return t.primName
	case tkGenericInst:
		return t.definition().Name()
	case tkVar:
		return "!" + strconv.Itoa(int(t.genericIdx))
	case tkMVar:
		return "!!" + strconv.Itoa(int(t.genericIdx))
	default:
		return ""
	}
}

func (t *typeRefImpl) FullName() string {
	switch t.kind {
	case tkArray:
		return t.inner.FullName()
	case tkByRef, tkPtr:
		return t.inner.FullName()
	case tkVar, tkMVar:
		return t.Name()
	}
	ns, n := t.Namespace(), t.Name()
	if ns == "" {
		return n
	}
	return ns + "." + n
}

func (t *typeRefImpl) Assembly() cil.AssemblyRef {
	switch t.kind {
	case tkTypeDef:
		return t.asm.CurrentAssembly()
	case tkTypeRefRow:
		return t.asm.resolutionScopeAssembly(t.row)
	case tkPrimitive:
		return mscorlibRef
	case tkArray, tkByRef, tkPtr:
		return t.inner.Assembly()
	case tkGenericInst:
		return t.definition().Assembly()
	default:
		return t.asm.CurrentAssembly()
	}
}

func (t *typeRefImpl) flags() uint32 {
	if t.kind == tkTypeDef {
		return t.asm.tables.rows[tblTypeDef][t.row-1][0]
	}
	return 0
}

func (t *typeRefImpl) IsClass() bool {
	switch t.kind {
	case tkTypeDef:
		return t.flags()&tdInterface == 0 && !t.IsValueType()
	case tkTypeRefRow:
		return !t.IsValueType()
	case tkPrimitive:
		return !t.primVal
	case tkGenericInst:
		return t.definition().IsClass()
	default:
		return false
	}
}

func (t *typeRefImpl) IsInterface() bool {
	if t.kind == tkTypeDef {
		return t.flags()&tdInterface != 0
	}
	if t.kind == tkGenericInst {
		return t.definition().IsInterface()
	}
	return false
}

// IsValueType reports whether the type's direct base is System.ValueType
// or System.Enum — the only reliable signal
// available without a full type-closure walk across assemblies.
func (t *typeRefImpl) IsValueType() bool {
	switch t.kind {
	case tkPrimitive:
		return t.primVal
	case tkTypeDef:
		base := t.BaseType()
		if base == nil {
			return false
		}
		return base.FullName() == "System.ValueType" || base.FullName() == "System.Enum"
	case tkGenericInst:
		return t.definition().IsValueType()
	default:
		return false
	}
}

func (t *typeRefImpl) IsEnum() bool {
	if t.kind == tkTypeDef {
		base := t.BaseType()
		return base != nil && base.FullName() == "System.Enum"
	}
	if t.kind == tkGenericInst {
		return t.definition().IsEnum()
	}
	return false
}

func (t *typeRefImpl) IsArray() bool { return t.kind == tkArray }
func (t *typeRefImpl) ArrayRank() int {
	if t.kind == tkArray {
		return t.rank
	}
	return 0
}
func (t *typeRefImpl) IsByRef() bool { return t.kind == tkByRef }
func (t *typeRefImpl) ElementType() cil.TypeRef {
	if t.inner == nil {
		return nil
	}
	return t.inner
}

func (t *typeRefImpl) IsGenericType() bool {
	if t.kind == tkGenericInst {
		return true
	}
	if t.kind == tkTypeDef {
		return len(t.GenericParameters()) > 0
	}
	return false
}

func (t *typeRefImpl) GenericArguments() []cil.TypeRef {
	if t.kind != tkGenericInst {
		return nil
	}
	out := make([]cil.TypeRef, len(t.genArgs))
	for i, a := range t.genArgs {
		out[i] = a
	}
	return out
}

func (t *typeRefImpl) IsGenericParameter() bool { return t.kind == tkVar || t.kind == tkMVar }

func (t *typeRefImpl) definition() *typeRefImpl {
	return &typeRefImpl{asm: t.asm, kind: typeKindFor(t.table), table: t.table, row: t.row}
}

func typeKindFor(table int) typeKind {
	if table == tblTypeRef {
		return tkTypeRefRow
	}
	return tkTypeDef
}

func (t *typeRefImpl) BaseType() cil.TypeRef {
	if t.kind == tkGenericInst {
		return t.definition().BaseType()
	}
	if t.kind != tkTypeDef {
		return nil
	}
	extends := t.asm.tables.rows[tblTypeDef][t.row-1][3]
	if extends == 0 {
		return nil
	}
	table, row := decodeCoded(extends, 2, []int{tblTypeDef, tblTypeRef, tblTypeSpec})
	if row == 0 {
		return nil
	}
	ref := t.asm.resolveTypeDefOrRef(table, row)
	if ref == nil {
		return nil
	}
	return ref
}

func (t *typeRefImpl) Interfaces() []cil.TypeRef {
	if t.kind == tkGenericInst {
		return t.definition().Interfaces()
	}
	if t.kind != tkTypeDef {
		return nil
	}
	var out []cil.TypeRef
	for _, r := range t.asm.tables.rows[tblInterfaceImpl] {
		if r[0] != t.row {
			continue
		}
		table, row := decodeCoded(r[1], 2, []int{tblTypeDef, tblTypeRef, tblTypeSpec})
		if row == 0 {
			continue
		}
		if ref := t.asm.resolveTypeDefOrRef(table, row); ref != nil {
			out = append(out, ref)
		}
	}
	return out
}

func (t *typeRefImpl) GenericParameters() []cil.GenericParam {
	if t.kind != tkTypeDef {
		return nil
	}
	return t.asm.genericParamsOwnedBy(tblTypeDef, t.row)
}

func (t *typeRefImpl) Visibility() cil.Visibility {
	if t.kind != tkTypeDef {
		return cil.VisibilityPublic
	}
	if t.flags()&tdVisibilityMask == tdPublic {
		return cil.VisibilityPublic
	}
	return cil.VisibilityPrivate
}

func (t *typeRefImpl) IsAbstract() bool {
	return t.kind == tkTypeDef && t.flags()&tdAbstract != 0
}

func (t *typeRefImpl) IsSealed() bool {
	return t.kind == tkTypeDef && t.flags()&tdSealed != 0
}

func (t *typeRefImpl) Layout() cil.Layout {
	if t.kind != tkTypeDef {
		return cil.LayoutAuto
	}
	switch (t.flags() & tdLayoutMask) >> 3 {
	case 1:
		return cil.LayoutSequential
	case 2:
		return cil.LayoutExplicit
	default:
		return cil.LayoutAuto
	}
}

func (t *typeRefImpl) StringFormat() cil.StringFormat {
	if t.kind != tkTypeDef {
		return cil.StringFormatAnsi
	}
	switch (t.flags() & tdStringFormatMask) >> 16 {
	case 1:
		return cil.StringFormatUnicode
	case 2:
		return cil.StringFormatAuto
	default:
		return cil.StringFormatAnsi
	}
}

func (t *typeRefImpl) IsBeforeFieldInit() bool {
	return t.kind == tkTypeDef && t.flags()&tdBeforeFieldInit != 0
}
