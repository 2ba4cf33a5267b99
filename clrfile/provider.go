package clrfile

import "cildisasm"

// Token table-index bytes, per ECMA-335 §II.22.
const (
	tokTypeRef   = tblTypeRef
	tokTypeDef   = tblTypeDef
	tokField     = tblField
	tokMethodDef = tblMethodDef
	tokMemberRef = tblMemberRef
	tokTypeSpec  = tblTypeSpec
	tokString    = 0x70
)

func (a *Assembly) fieldRange(typeDefRow uint32) (uint32, uint32) {
	rows := a.tables.rows[tblTypeDef]
	start := rows[typeDefRow-1][4]
	end := uint32(len(a.tables.rows[tblField])) + 1
	if int(typeDefRow) < len(rows) {
		end = rows[typeDefRow][4]
	}
	return start, end
}

func (a *Assembly) methodRange(typeDefRow uint32) (uint32, uint32) {
	rows := a.tables.rows[tblTypeDef]
	start := rows[typeDefRow-1][5]
	end := uint32(len(a.tables.rows[tblMethodDef])) + 1
	if int(typeDefRow) < len(rows) {
		end = rows[typeDefRow][5]
	}
	return start, end
}

func (a *Assembly) Fields(t cil.TypeRef) []cil.Field {
	td, ok := t.(*typeRefImpl)
	if !ok || td.kind != tkTypeDef {
		return nil
	}
	start, end := a.fieldRange(td.row)
	var out []cil.Field
	for r := start; r < end; r++ {
		if r == 0 {
			continue
		}
		out = append(out, &fieldImpl{asm: a, row: r, declaring: td})
	}
	return out
}

func (a *Assembly) Methods(t cil.TypeRef) []cil.Method {
	td, ok := t.(*typeRefImpl)
	if !ok || td.kind != tkTypeDef {
		return nil
	}
	start, end := a.methodRange(td.row)
	var out []cil.Method
	for r := start; r < end; r++ {
		if r == 0 {
			continue
		}
		out = append(out, &methodImpl{asm: a, row: r, declaring: td})
	}
	return out
}

func (a *Assembly) Properties(t cil.TypeRef) []cil.Property {
	td, ok := t.(*typeRefImpl)
	if !ok || td.kind != tkTypeDef {
		return nil
	}
	var listStart, nextStart uint32
	found := false
	for i, r := range a.tables.rows[tblPropertyMap] {
		if r[0] != td.row {
			continue
		}
		listStart = r[1]
		found = true
		if i+1 < len(a.tables.rows[tblPropertyMap]) {
			nextStart = a.tables.rows[tblPropertyMap][i+1][1]
		} else {
			nextStart = uint32(len(a.tables.rows[tblProperty])) + 1
		}
		break
	}
	if !found {
		return nil
	}
	var out []cil.Property
	for r := listStart; r < nextStart; r++ {
		if r == 0 {
			continue
		}
		out = append(out, &propertyImpl{asm: a, row: r, declaring: td})
	}
	return out
}

func (a *Assembly) Events(t cil.TypeRef) []cil.Event {
	td, ok := t.(*typeRefImpl)
	if !ok || td.kind != tkTypeDef {
		return nil
	}
	var listStart, nextStart uint32
	found := false
	for i, r := range a.tables.rows[tblEventMap] {
		if r[0] != td.row {
			continue
		}
		listStart = r[1]
		found = true
		if i+1 < len(a.tables.rows[tblEventMap]) {
			nextStart = a.tables.rows[tblEventMap][i+1][1]
		} else {
			nextStart = uint32(len(a.tables.rows[tblEvent])) + 1
		}
		break
	}
	if !found {
		return nil
	}
	var out []cil.Event
	for r := listStart; r < nextStart; r++ {
		if r == 0 {
			continue
		}
		out = append(out, &eventImpl{asm: a, row: r, declaring: td})
	}
	return out
}

func (a *Assembly) ResolveString(token uint32) (string, error) {
	return a.heaps.userStringAt(a.heapBase(), token)
}

func (a *Assembly) ResolveSignature(token uint32) (cil.SignatureHandle, error) {
	row := token & 0x00FFFFFF
	if row == 0 || int(row) > len(a.tables.rows[tblStandAloneSig]) {
		return nil, errOutsideBoundary
	}
	blobIdx := a.tables.rows[tblStandAloneSig][row-1][0]
	blob, err := a.heaps.blobAt(a.heapBase(), blobIdx)
	if err != nil {
		return nil, err
	}
	return &rawSignature{blob: blob}, nil
}

type rawSignature struct{ blob []byte }

func (s *rawSignature) String() string {
	sig := decodeMethodSig(s.blob)
	out := "method "
	for i, p := range sig.params {
		if i > 0 {
			out += ", "
		}
		out += elementTypeName(p)
	}
	return out + " (" + elementTypeName(sig.ret) + ")"
}

func elementTypeName(s *sigType) string {
	if s == nil {
		return "?"
	}
	if info, ok := primitiveInfo[s.elem]; ok {
		return info.name
	}
	return "object"
}

func (a *Assembly) ResolveMember(token uint32, typeGenerics, methodGenerics []cil.TypeRef) (cil.Member, error) {
	table := int(token >> 24)
	row := token & 0x00FFFFFF
	if row == 0 {
		return nil, errOutsideBoundary
	}

	switch table {
	case tokTypeRef, tokTypeDef, tokTypeSpec:
		ref := a.resolveTypeDefOrRef(table, row)
		if ref == nil {
			return nil, errOutsideBoundary
		}
		return &cil.TypeMember{Type: ref}, nil

	case tokField:
		if int(row) > len(a.tables.rows[tblField]) {
			return nil, errOutsideBoundary
		}
		declaring := a.typeDefOwningField(row)
		f := &fieldImpl{asm: a, row: row, declaring: declaring}
		return &cil.FieldMember{
			DeclaringType:       f.declaring,
			Name:                f.Name(),
			FieldType:           f.FieldType(),
			IsCompilerGenerated: f.IsCompilerGenerated(),
		}, nil

	case tokMethodDef:
		if int(row) > len(a.tables.rows[tblMethodDef]) {
			return nil, errOutsideBoundary
		}
		declaring := a.typeDefOwningMethod(row)
		m := &methodImpl{asm: a, row: row, declaring: declaring}
		return methodMemberOf(m), nil

	case tokMemberRef:
		return a.resolveMemberRef(row)

	default:
		return nil, errOutsideBoundary
	}
}

func methodMemberOf(m *methodImpl) *cil.MethodMember {
	sig := m.sig()
	params := make([]cil.TypeRef, len(sig.params))
	for i, p := range sig.params {
		params[i] = m.asm.sigTypeToRef(p)
	}
	return &cil.MethodMember{
		DeclaringType: m.declaring,
		Name:          m.Name(),
		ReturnType:    m.ReturnType(),
		ParamTypes:    params,
		IsStatic:      m.IsStatic(),
	}
}

func (a *Assembly) resolveMemberRef(row uint32) (cil.Member, error) {
	if int(row) > len(a.tables.rows[tblMemberRef]) {
		return nil, errOutsideBoundary
	}
	r := a.tables.rows[tblMemberRef][row-1]
	classCoded, nameIdx, sigIdx := r[0], r[1], r[2]

	table, crow := decodeCoded(classCoded, 3, []int{tblTypeDef, tblTypeRef, tblModuleRef, tblMethodDef, tblTypeSpec})
	var declaring cil.TypeRef
	if ref := a.resolveTypeDefOrRef(table, crow); ref != nil {
		declaring = ref
	}
	name, _ := a.heaps.stringAt(a.heapBase(), nameIdx)
	blob, _ := a.heaps.blobAt(a.heapBase(), sigIdx)

	if len(blob) > 0 && blob[0] == 0x06 { // FIELD calling convention
		return &cil.FieldMember{DeclaringType: declaring, Name: name, FieldType: a.resolveFieldSig(blob)}, nil
	}

	sig := decodeMethodSig(blob)
	params := make([]cil.TypeRef, len(sig.params))
	for i, p := range sig.params {
		params[i] = a.sigTypeToRef(p)
	}
	return &cil.MethodMember{
		DeclaringType: declaring,
		Name:          name,
		ReturnType:    a.sigTypeToRef(sig.ret),
		ParamTypes:    params,
	}, nil
}

func (a *Assembly) typeDefOwningField(fieldRow uint32) *typeRefImpl {
	rows := a.tables.rows[tblTypeDef]
	for i := len(rows) - 1; i >= 0; i-- {
		if rows[i][4] != 0 && rows[i][4] <= fieldRow {
			return &typeRefImpl{asm: a, kind: tkTypeDef, table: tblTypeDef, row: uint32(i + 1)}
		}
	}
	return nil
}

func (a *Assembly) typeDefOwningMethod(methodRow uint32) *typeRefImpl {
	rows := a.tables.rows[tblTypeDef]
	for i := len(rows) - 1; i >= 0; i-- {
		if rows[i][5] != 0 && rows[i][5] <= methodRow {
			return &typeRefImpl{asm: a, kind: tkTypeDef, table: tblTypeDef, row: uint32(i + 1)}
		}
	}
	return nil
}

// TypeByName looks up a declared TypeDef by its "Namespace.Name" full
// name, the entry point the CLI uses to pick a type to disassemble.
func (a *Assembly) TypeByName(fullName string) (cil.TypeRef, bool) {
	for i := range a.tables.rows[tblTypeDef] {
		row := uint32(i + 1)
		t := &typeRefImpl{asm: a, kind: tkTypeDef, table: tblTypeDef, row: row}
		if t.FullName() == fullName {
			return t, true
		}
	}
	return nil, false
}

func (a *Assembly) decodeConstant(typ byte, blobIdx uint32) *cil.DefaultValue {
	blob, _ := a.heaps.blobAt(a.heapBase(), blobIdx)
	return decodeConstantBlob(typ, blob)
}

func (a *Assembly) paramConstant(paramRow uint32) *cil.DefaultValue {
	for _, r := range a.tables.rows[tblConstant] {
		table, prow := decodeCoded(r[1], 2, []int{tblField, tblParam, tblProperty})
		if table != tblParam || prow != paramRow {
			continue
		}
		return a.decodeConstant(byte(r[0]&0xFF), r[2])
	}
	return nil
}

func (a *Assembly) customAttributesOf(parentTable int, parentRow uint32) []cil.CustomAttributeData {
	haTables := []int{tblMethodDef, tblField, tblTypeRef, tblTypeDef, tblParam, tblInterfaceImpl, tblMemberRef, tblModule,
		tblDeclSecurity, tblProperty, tblEvent, tblStandAloneSig, tblModuleRef, tblTypeSpec, tblAssembly, tblAssemblyRef,
		tblFileMD, tblExportedType, tblManifestResource, tblGenericParam, tblGenericParamConstraint, tblMethodSpec}
	var out []cil.CustomAttributeData
	for _, r := range a.tables.rows[tblCustomAttribute] {
		table, row := decodeCoded(r[0], 5, haTables)
		if table != parentTable || row != parentRow {
			continue
		}
		// CustomAttributeType tags 0, 1 and 4 are unused; 2 is MethodDef, 3 MemberRef.
		ctorTable, ctorRow := decodeCoded(r[1], 3, []int{-1, -1, tblMethodDef, tblMemberRef, -1})
		var ctor *cil.MethodMember
		if ctorTable == tblMethodDef && ctorRow != 0 && int(ctorRow) <= len(a.tables.rows[tblMethodDef]) {
			declaring := a.typeDefOwningMethod(ctorRow)
			ctor = methodMemberOf(&methodImpl{asm: a, row: ctorRow, declaring: declaring})
		} else if ctorTable == tblMemberRef {
			if mem, err := a.resolveMemberRef(ctorRow); err == nil {
				if mm, ok := mem.(*cil.MethodMember); ok {
					ctor = mm
				}
			}
		}
		blob, _ := a.heaps.blobAt(a.heapBase(), r[2])
		out = append(out, cil.CustomAttributeData{Constructor: ctor, HasArgBytes: len(blob) > 2})
	}
	return out
}
