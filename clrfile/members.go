package clrfile

import "cildisasm"

// FieldAttributes / MethodAttributes access-level words, shared by the
// low 3 bits of both flag sets, per ECMA-335 §II.23.1.5/§II.23.1.10.
var accessWords = [...]string{"privatescope", "private", "famandassem", "assembly", "family", "famorassem", "public"}

const (
	faStatic        = 0x0010
	faInitOnly      = 0x0020
	faLiteral       = 0x0040
	faSpecialName   = 0x0200
	faRTSpecialName = 0x0400

	maStatic        = 0x0010
	maFinal         = 0x0020
	maVirtual       = 0x0040
	maHideBySig     = 0x0080
	maAbstract      = 0x0400
	maSpecialName   = 0x0800
	maPInvokeImpl   = 0x2000
	maRTSpecialName = 0x1000

	miCodeTypeMask = 0x0003
	miUnmanaged    = 0x0004
)

func accessWord(flags uint32) string {
	idx := flags & 0x7
	if int(idx) < len(accessWords) {
		return accessWords[idx]
	}
	return "private"
}

// fieldImpl wraps one Field table row plus the TypeDef row that owns
// it (recovered by the caller from the TypeDef's FieldList range,
// since the Field table itself carries no back-pointer).
type fieldImpl struct {
	asm       *Assembly
	row       uint32
	declaring *typeRefImpl
}

func (f *fieldImpl) cols() row { return f.asm.tables.rows[tblField][f.row-1] }

func (f *fieldImpl) Name() string {
	n, _ := f.asm.heaps.stringAt(f.asm.heapBase(), f.cols()[1])
	return n
}
func (f *fieldImpl) DeclaringType() cil.TypeRef { return f.declaring }
func (f *fieldImpl) FieldType() cil.TypeRef {
	blob, _ := f.asm.heaps.blobAt(f.asm.heapBase(), f.cols()[2])
	return f.asm.resolveFieldSig(blob)
}
func (f *fieldImpl) AttributeTokens() []string {
	flags := f.cols()[0]
	toks := []string{accessWord(flags)}
	if flags&faStatic != 0 {
		toks = append(toks, "static")
	}
	if flags&faInitOnly != 0 {
		toks = append(toks, "initonly")
	}
	if flags&faLiteral != 0 {
		toks = append(toks, "literal")
	}
	if flags&faSpecialName != 0 {
		toks = append(toks, "specialname")
	}
	if flags&faRTSpecialName != 0 {
		toks = append(toks, "rtspecialname")
	}
	return toks
}
func (f *fieldImpl) IsStatic() bool  { return f.cols()[0]&faStatic != 0 }
func (f *fieldImpl) IsLiteral() bool { return f.cols()[0]&faLiteral != 0 }
func (f *fieldImpl) IsCompilerGenerated() bool {
	n := f.Name()
	return len(n) > 0 && n[0] == '<'
}
func (f *fieldImpl) ConstantValue() (*cil.DefaultValue, bool) {
	if !f.IsLiteral() {
		return nil, false
	}
	for _, r := range f.asm.tables.rows[tblConstant] {
		table, prow := decodeCoded(r[1], 2, []int{tblField, tblParam, tblProperty})
		if table != tblField || prow != f.row {
			continue
		}
		return f.asm.decodeConstant(byte(r[0]&0xFF), r[2]), true
	}
	return nil, false
}
func (f *fieldImpl) CustomAttributes() []cil.CustomAttributeData {
	return f.asm.customAttributesOf(tblField, f.row)
}

// methodImpl wraps one MethodDef table row.
type methodImpl struct {
	asm       *Assembly
	row       uint32
	declaring *typeRefImpl
}

func (m *methodImpl) cols() row { return m.asm.tables.rows[tblMethodDef][m.row-1] }

func (m *methodImpl) Name() string {
	n, _ := m.asm.heaps.stringAt(m.asm.heapBase(), m.cols()[3])
	return n
}
func (m *methodImpl) DeclaringType() cil.TypeRef { return m.declaring }

func (m *methodImpl) sig() *methodSig {
	blob, _ := m.asm.heaps.blobAt(m.asm.heapBase(), m.cols()[4])
	return decodeMethodSig(blob)
}

func (m *methodImpl) ReturnType() cil.TypeRef {
	if m.IsConstructor() {
		return nil
	}
	return m.asm.sigTypeToRef(m.sig().ret)
}
func (m *methodImpl) IsConstructor() bool { n := m.Name(); return n == ".ctor" || n == ".cctor" }
func (m *methodImpl) IsStatic() bool      { return m.cols()[2]&maStatic != 0 }
func (m *methodImpl) IsVirtual() bool     { return m.cols()[2]&maVirtual != 0 }
func (m *methodImpl) IsAbstract() bool    { return m.cols()[2]&maAbstract != 0 }
func (m *methodImpl) AttributeTokens() []string {
	flags := m.cols()[2]
	toks := []string{accessWord(flags)}
	if flags&maStatic != 0 {
		toks = append(toks, "static")
	}
	if flags&maFinal != 0 {
		toks = append(toks, "final")
	}
	if flags&maHideBySig != 0 {
		toks = append(toks, "hidebysig")
	}
	if flags&maAbstract != 0 {
		toks = append(toks, "abstract")
	}
	if flags&maSpecialName != 0 {
		toks = append(toks, "specialname")
	}
	if flags&maRTSpecialName != 0 {
		toks = append(toks, "rtspecialname")
	}
	if flags&maPInvokeImpl != 0 {
		toks = append(toks, "pinvokeimpl")
	}
	return toks
}
func (m *methodImpl) Implementation() cil.ImplFlags {
	implFlags := m.cols()[1]
	ct := cil.CodeType(implFlags & miCodeTypeMask)
	return cil.ImplFlags{CodeType: ct, Managed: implFlags&miUnmanaged == 0}
}
func (m *methodImpl) GenericParameters() []cil.GenericParam {
	return m.asm.genericParamsOwnedBy(tblMethodDef, m.row)
}
func (m *methodImpl) paramRange() (uint32, uint32) {
	start := m.cols()[5]
	end := uint32(len(m.asm.tables.rows[tblParam])) + 1
	if int(m.row) < len(m.asm.tables.rows[tblMethodDef]) {
		end = m.asm.tables.rows[tblMethodDef][m.row][5]
	}
	return start, end
}
func (m *methodImpl) Params() []*cil.Param {
	start, end := m.paramRange()
	sig := m.sig()
	var out []*cil.Param
	seq := 0
	for r := start; r < end; r++ {
		if r == 0 || int(r) > len(m.asm.tables.rows[tblParam]) {
			continue
		}
		prow := m.asm.tables.rows[tblParam][r-1]
		flags, sequence, nameIdx := prow[0], prow[1], prow[2]
		if sequence == 0 {
			continue // sequence 0 is the return-value's own Param row, if present
		}
		name, _ := m.asm.heaps.stringAt(m.asm.heapBase(), nameIdx)
		var typ cil.TypeRef
		if seq < len(sig.params) {
			typ = m.asm.sigTypeToRef(sig.params[seq])
		}
		p := &cil.Param{Index: seq, Name: name, Type: typ, Out: flags&0x0002 != 0}
		if flags&0x1000 != 0 { // HasDefault
			p.Default = m.asm.paramConstant(r)
		}
		out = append(out, p)
		seq++
	}
	return out
}
func (m *methodImpl) Locals() []*cil.Local {
	rva := m.cols()[0]
	if rva == 0 {
		return nil
	}
	body, err := m.asm.methodBodyHeader(rva)
	if err != nil || body.localVarSigTok == 0 {
		return nil
	}
	row := body.localVarSigTok & 0x00FFFFFF
	if row == 0 || int(row) > len(m.asm.tables.rows[tblStandAloneSig]) {
		return nil
	}
	blobIdx := m.asm.tables.rows[tblStandAloneSig][row-1][0]
	blob, _ := m.asm.heaps.blobAt(m.asm.heapBase(), blobIdx)
	sigs := decodeLocalsSig(blob)
	out := make([]*cil.Local, len(sigs))
	for i, s := range sigs {
		out[i] = &cil.Local{Index: i, Type: m.asm.sigTypeToRef(s)}
	}
	return out
}
func (m *methodImpl) CustomAttributes() []cil.CustomAttributeData {
	return m.asm.customAttributesOf(tblMethodDef, m.row)
}
func (m *methodImpl) HasBody() bool { return m.cols()[0] != 0 && m.Implementation().CodeType == cil.CodeTypeIL }
func (m *methodImpl) ILBytes() ([]byte, error) {
	rva := m.cols()[0]
	if rva == 0 {
		return nil, nil
	}
	body, err := m.asm.methodBodyHeader(rva)
	if err != nil {
		return nil, err
	}
	return body.code, nil
}
func (m *methodImpl) MaxStack() int {
	rva := m.cols()[0]
	if rva == 0 {
		return 0
	}
	body, err := m.asm.methodBodyHeader(rva)
	if err != nil {
		return 0
	}
	return body.maxStack
}
func (m *methodImpl) ExceptionClauses() []cil.ExceptionClause {
	rva := m.cols()[0]
	if rva == 0 {
		return nil
	}
	body, err := m.asm.methodBodyHeader(rva)
	if err != nil {
		return nil
	}
	return body.clauses
}
func (m *methodImpl) TypeGenericArgs() []cil.TypeRef   { return nil }
func (m *methodImpl) MethodGenericArgs() []cil.TypeRef { return nil }

// propertyImpl wraps one Property table row.
type propertyImpl struct {
	asm       *Assembly
	row       uint32
	declaring *typeRefImpl
}

func (p *propertyImpl) cols() row { return p.asm.tables.rows[tblProperty][p.row-1] }
func (p *propertyImpl) Name() string {
	n, _ := p.asm.heaps.stringAt(p.asm.heapBase(), p.cols()[1])
	return n
}
func (p *propertyImpl) DeclaringType() cil.TypeRef { return p.declaring }
func (p *propertyImpl) PropertyType() cil.TypeRef {
	blob, _ := p.asm.heaps.blobAt(p.asm.heapBase(), p.cols()[2])
	r := &sigReader{b: blob}
	r.u8() // PROPERTY calling-convention byte
	r.compressedUint() // param count (always 0 for the property type itself)
	return p.asm.sigTypeToRef(r.readType())
}
func (p *propertyImpl) IsStatic() bool {
	if g := p.Getter(); g != nil {
		return g.IsStatic()
	}
	if s := p.Setter(); s != nil {
		return s.IsStatic()
	}
	return false
}
func (p *propertyImpl) accessor(semantics uint32) cil.Method {
	for _, r := range p.asm.tables.rows[tblMethodSemantics] {
		table, arow := decodeCoded(r[2], 1, []int{tblEvent, tblProperty})
		if table != tblProperty || arow != p.row || r[0]&semantics == 0 {
			continue
		}
		return &methodImpl{asm: p.asm, row: r[1], declaring: p.declaring}
	}
	return nil
}
func (p *propertyImpl) Getter() cil.Method { return p.accessor(0x0002) }
func (p *propertyImpl) Setter() cil.Method { return p.accessor(0x0001) }
func (p *propertyImpl) CustomAttributes() []cil.CustomAttributeData {
	return p.asm.customAttributesOf(tblProperty, p.row)
}

// eventImpl wraps one Event table row.
type eventImpl struct {
	asm       *Assembly
	row       uint32
	declaring *typeRefImpl
}

func (e *eventImpl) cols() row { return e.asm.tables.rows[tblEvent][e.row-1] }
func (e *eventImpl) Name() string {
	n, _ := e.asm.heaps.stringAt(e.asm.heapBase(), e.cols()[1])
	return n
}
func (e *eventImpl) DeclaringType() cil.TypeRef { return e.declaring }
func (e *eventImpl) HandlerType() cil.TypeRef {
	table, row := decodeCoded(e.cols()[2], 2, []int{tblTypeDef, tblTypeRef, tblTypeSpec})
	if row == 0 {
		return nil
	}
	ref := e.asm.resolveTypeDefOrRef(table, row)
	if ref == nil {
		return nil
	}
	return ref
}
func (e *eventImpl) accessor(semantics uint32) cil.Method {
	for _, r := range e.asm.tables.rows[tblMethodSemantics] {
		table, arow := decodeCoded(r[2], 1, []int{tblEvent, tblProperty})
		if table != tblEvent || arow != e.row || r[0]&semantics == 0 {
			continue
		}
		return &methodImpl{asm: e.asm, row: r[1], declaring: e.declaring}
	}
	return nil
}
func (e *eventImpl) AddOn() cil.Method    { return e.accessor(0x0008) }
func (e *eventImpl) RemoveOn() cil.Method { return e.accessor(0x0010) }
func (e *eventImpl) CustomAttributes() []cil.CustomAttributeData {
	return e.asm.customAttributesOf(tblEvent, e.row)
}
