package clrfile

import "cildisasm"

// Assembly is the opened, parsed form of one .NET assembly image: the
// mmap'd bytes, the decoded PE/CLR/metadata headers, and the decoded
// table rows every lookup in typeref.go and members.go reads from.
type Assembly struct {
	im     *image
	layout *peLayout
	cor20  *cor20Header
	root   *metadataRoot
	tsh    *tableStreamHeader
	tables *tableSet
	heaps  *heaps

	current cil.AssemblyRef
}

// Open memory-maps path, walks its PE/COFF and ECMA-335 metadata
// structures, and returns the resulting Assembly, which serves as the
// metadata provider and also looks the module's own types up by name.
func Open(path string) (*Assembly, error) {
	im, err := openImage(path)
	if err != nil {
		return nil, err
	}

	layout, err := im.parsePEHeader()
	if err != nil {
		im.close()
		return nil, err
	}
	cor20, err := im.parseCOR20Header(layout)
	if err != nil {
		im.close()
		return nil, err
	}
	root, err := im.parseMetadataRoot(layout, cor20)
	if err != nil {
		im.close()
		return nil, err
	}
	streamBase := root.baseOffset + tableStreamBase(root)
	tsh, err := im.parseTableStreamHeader(streamBase)
	if err != nil {
		im.close()
		return nil, err
	}
	tables, hp, err := im.decodeTables(root, tsh)
	if err != nil {
		im.close()
		return nil, err
	}

	a := &Assembly{im: im, layout: layout, cor20: cor20, root: root, tsh: tsh, tables: tables, heaps: hp}
	a.current = a.deriveCurrentAssembly()
	return a, nil
}

// Close releases the memory mapping. Callers should defer it.
func (a *Assembly) Close() error { return a.im.close() }

func (a *Assembly) heapBase() uint32 { return a.root.baseOffset }

func (a *Assembly) deriveCurrentAssembly() cil.AssemblyRef {
	if len(a.tables.rows[tblAssembly]) > 0 {
		row := a.tables.rows[tblAssembly][0]
		name, _ := a.heaps.stringAt(a.heapBase(), row[7])
		if name != "" {
			return cil.AssemblyRef{FullName: name}
		}
	}
	if len(a.tables.rows[tblModule]) > 0 {
		row := a.tables.rows[tblModule][0]
		name, _ := a.heaps.stringAt(a.heapBase(), row[1])
		return cil.AssemblyRef{FullName: name}
	}
	return cil.AssemblyRef{}
}

func (a *Assembly) CurrentAssembly() cil.AssemblyRef { return a.current }

// TypeNames returns every declared TypeDef's "Namespace.Name" full
// name, in table order, for a caller that wants to list an assembly's
// contents before picking one to disassemble.
func (a *Assembly) TypeNames() []string {
	rows := a.tables.rows[tblTypeDef]
	names := make([]string, 0, len(rows))
	for i := range rows {
		t := &typeRefImpl{asm: a, kind: tkTypeDef, table: tblTypeDef, row: uint32(i + 1)}
		names = append(names, t.FullName())
	}
	return names
}

// resolutionScopeAssembly answers a TypeRef row's owning assembly by
// decoding its ResolutionScope coded index.
func (a *Assembly) resolutionScopeAssembly(typeRefRow uint32) cil.AssemblyRef {
	row := a.tables.rows[tblTypeRef][typeRefRow-1]
	table, scopeRow := decodeCoded(row[0], 2, []int{tblModule, tblModuleRef, tblAssemblyRef, tblTypeRef})
	switch table {
	case tblAssemblyRef:
		if scopeRow == 0 || int(scopeRow) > len(a.tables.rows[tblAssemblyRef]) {
			return a.current
		}
		arow := a.tables.rows[tblAssemblyRef][scopeRow-1]
		name, _ := a.heaps.stringAt(a.heapBase(), arow[6])
		return cil.AssemblyRef{FullName: name}
	case tblTypeRef:
		if scopeRow == 0 {
			return a.current
		}
		return a.resolutionScopeAssembly(scopeRow)
	default:
		return a.current
	}
}

// resolveTypeDefOrRef turns a decoded TypeDefOrRef coded index into a
// TypeRef, dispatching on which table it points into.
func (a *Assembly) resolveTypeDefOrRef(table int, row uint32) *typeRefImpl {
	switch table {
	case tblTypeDef:
		return &typeRefImpl{asm: a, kind: tkTypeDef, table: tblTypeDef, row: row}
	case tblTypeRef:
		return &typeRefImpl{asm: a, kind: tkTypeRefRow, table: tblTypeRef, row: row}
	case tblTypeSpec:
		if int(row) > len(a.tables.rows[tblTypeSpec]) || row == 0 {
			return nil
		}
		blobIdx := a.tables.rows[tblTypeSpec][row-1][0]
		blob, _ := a.heaps.blobAt(a.heapBase(), blobIdx)
		r := &sigReader{b: blob}
		return a.sigTypeToRef(r.readType())
	default:
		return nil
	}
}

func (a *Assembly) genericParamsOwnedBy(ownerTable int, ownerRow uint32) []cil.GenericParam {
	var out []cil.GenericParam
	for i, r := range a.tables.rows[tblGenericParam] {
		table, row := decodeCoded(r[2], 1, []int{tblTypeDef, tblMethodDef})
		if table != ownerTable || row != ownerRow {
			continue
		}
		name, _ := a.heaps.stringAt(a.heapBase(), r[3])
		gp := cil.GenericParam{Name: name, Position: int(r[0])}
		const (
			gpVariance       = 0x0003
			gpCovariant      = 0x0001
			gpContravariant  = 0x0002
			gpRefConstraint  = 0x0004
			gpValConstraint  = 0x0008
			gpCtorConstraint = 0x0010
		)
		switch r[1] & gpVariance {
		case gpCovariant:
			gp.Covariant = true
		case gpContravariant:
			gp.Contravariant = true
		}
		gp.ReferenceTypeOnly = r[1]&gpRefConstraint != 0
		gp.ValueTypeOnly = r[1]&gpValConstraint != 0
		gp.DefaultConstructor = r[1]&gpCtorConstraint != 0

		gpRow := uint32(i + 1)
		for _, cr := range a.tables.rows[tblGenericParamConstraint] {
			if cr[0] != gpRow {
				continue
			}
			ctable, crow := decodeCoded(cr[1], 2, []int{tblTypeDef, tblTypeRef, tblTypeSpec})
			if crow == 0 {
				continue
			}
			if ref := a.resolveTypeDefOrRef(ctable, crow); ref != nil {
				gp.Constraints = append(gp.Constraints, ref)
			}
		}
		out = append(out, gp)
	}
	return out
}
