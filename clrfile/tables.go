package clrfile

// colSpec reports the on-disk width of one table column; several kinds
// of column (heap index, simple table index, coded index) are only
// known once the table stream's Heaps byte and row counts are in hand.
type colSpec func(h *heaps) uint32

func fixed16() colSpec { return func(h *heaps) uint32 { return 2 } }
func fixed32() colSpec { return func(h *heaps) uint32 { return 4 } }
func strCol() colSpec  { return func(h *heaps) uint32 { return h.stringIndexSize() } }
func blobCol() colSpec { return func(h *heaps) uint32 { return h.blobIndexSize() } }
func guidCol() colSpec { return func(h *heaps) uint32 { return h.guidIndexSize() } }

func simpleCol(table int) colSpec {
	return func(h *heaps) uint32 { return h.simpleIndexSize(table) }
}

func codedCol(tagBits uint, tables ...int) colSpec {
	return func(h *heaps) uint32 { return h.tableIndexSize(tagBits, tables...) }
}

// tableSchemas mirrors ECMA-335 §II.22's table layouts column-for-column;
// index i holds table i's schema, or nil for indices the format reserves
// but never populates (the Ptr tables and the two ENC tables, which this
// reader only needs to skip over, not decode).
var tableSchemas = [64][]colSpec{
	tblModule:          {fixed16(), strCol(), guidCol(), guidCol(), guidCol()},
	tblTypeRef:         {codedCol(2, tblModule, tblModuleRef, tblAssemblyRef, tblTypeRef), strCol(), strCol()},
	tblTypeDef:         {fixed32(), strCol(), strCol(), codedCol(2, tblTypeDef, tblTypeRef, tblTypeSpec), simpleCol(tblField), simpleCol(tblMethodDef)},
	tblField:           {fixed16(), strCol(), blobCol()},
	tblMethodDef:       {fixed32(), fixed16(), fixed16(), strCol(), blobCol(), simpleCol(tblParam)},
	tblParam:           {fixed16(), fixed16(), strCol()},
	tblInterfaceImpl:   {simpleCol(tblTypeDef), codedCol(2, tblTypeDef, tblTypeRef, tblTypeSpec)},
	tblMemberRef:       {codedCol(3, tblTypeDef, tblTypeRef, tblModuleRef, tblMethodDef, tblTypeSpec), strCol(), blobCol()},
	tblConstant:        {fixed16(), codedCol(2, tblField, tblParam, tblProperty), blobCol()},
	tblCustomAttribute: {codedCol(5, tblMethodDef, tblField, tblTypeRef, tblTypeDef, tblParam, tblInterfaceImpl, tblMemberRef, tblModule, tblDeclSecurity, tblProperty, tblEvent, tblStandAloneSig, tblModuleRef, tblTypeSpec, tblAssembly, tblAssemblyRef, tblFileMD, tblExportedType, tblManifestResource, tblGenericParam, tblGenericParamConstraint, tblMethodSpec), codedCol(3, tblMethodDef, tblMemberRef), blobCol()},
	tblFieldMarshal:    {codedCol(1, tblField, tblParam), blobCol()},
	tblDeclSecurity:    {fixed16(), codedCol(2, tblTypeDef, tblMethodDef, tblAssembly), blobCol()},
	tblClassLayout:     {fixed16(), fixed32(), simpleCol(tblTypeDef)},
	tblFieldLayout:     {fixed32(), simpleCol(tblField)},
	tblStandAloneSig:   {blobCol()},
	tblEventMap:        {simpleCol(tblTypeDef), simpleCol(tblEvent)},
	tblEvent:           {fixed16(), strCol(), codedCol(2, tblTypeDef, tblTypeRef, tblTypeSpec)},
	tblPropertyMap:     {simpleCol(tblTypeDef), simpleCol(tblProperty)},
	tblProperty:        {fixed16(), strCol(), blobCol()},
	tblMethodSemantics: {fixed16(), simpleCol(tblMethodDef), codedCol(1, tblEvent, tblProperty)},
	tblMethodImpl:      {simpleCol(tblTypeDef), codedCol(1, tblMethodDef, tblMemberRef), codedCol(1, tblMethodDef, tblMemberRef)},
	tblModuleRef:       {strCol()},
	tblTypeSpec:        {blobCol()},
	tblImplMap:         {fixed16(), codedCol(1, tblField, tblMethodDef), strCol(), simpleCol(tblModuleRef)},
	tblFieldRVA:        {fixed32(), simpleCol(tblField)},
	tblAssembly:        {fixed32(), fixed16(), fixed16(), fixed16(), fixed16(), fixed32(), blobCol(), strCol(), strCol()},
	tblAssemblyProcessor: {fixed32()},
	tblAssemblyOS:        {fixed32(), fixed32(), fixed32()},
	tblAssemblyRef:       {fixed16(), fixed16(), fixed16(), fixed16(), fixed32(), blobCol(), strCol(), strCol(), blobCol()},
	tblAssemblyRefProcessor: {fixed32(), simpleCol(tblAssemblyRef)},
	tblAssemblyRefOS:        {fixed32(), fixed32(), fixed32(), simpleCol(tblAssemblyRef)},
	tblFileMD:               {fixed32(), strCol(), blobCol()},
	tblExportedType:         {fixed32(), fixed32(), strCol(), strCol(), codedCol(2, tblFileMD, tblAssemblyRef, tblExportedType)},
	tblManifestResource:     {fixed32(), fixed32(), strCol(), codedCol(2, tblFileMD, tblAssemblyRef)},
	tblNestedClass:             {simpleCol(tblTypeDef), simpleCol(tblTypeDef)},
	tblGenericParam:            {fixed16(), fixed16(), codedCol(1, tblTypeDef, tblMethodDef), strCol()},
	tblMethodSpec:              {codedCol(1, tblMethodDef, tblMemberRef), blobCol()},
	tblGenericParamConstraint:  {simpleCol(tblGenericParam), codedCol(2, tblTypeDef, tblTypeRef, tblTypeSpec)},
}

// row is a decoded table row: one uint32 per schema column, in schema
// order. Heap indices and simple table indices are stored as-is; coded
// indices retain their tag bits, unpacked by the typed accessors in
// provider.go via decodeCoded.
type row []uint32

type tableSet struct {
	rows      [64][]row
	rowCounts [64]uint32
}

func (im *image) decodeTables(root *metadataRoot, tsh *tableStreamHeader) (*tableSet, *heaps, error) {
	h := newHeaps(im, root, tsh)
	ts := &tableSet{rowCounts: tsh.rowCounts}

	// tsh.rowsOffset was computed by parseTableStreamHeader from the
	// absolute file offset of the #~ stream, so it already points past
	// the fixed header and the row-count array.
	off := tsh.rowsOffset
	for t := 0; t < 64; t++ {
		count := tsh.rowCounts[t]
		if count == 0 {
			continue
		}
		schema := tableSchemas[t]
		if schema == nil {
			// Unknown/reserved table with a nonzero row count: we
			// cannot know its column widths, so stop rather than
			// silently misreading every table after it.
			return nil, nil, errBadMetadataRoot
		}
		rows := make([]row, count)
		for i := uint32(0); i < count; i++ {
			r := make(row, len(schema))
			for c, spec := range schema {
				width := spec(h)
				var v uint32
				var err error
				switch width {
				case 2:
					var v16 uint16
					v16, err = im.u16(off)
					v = uint32(v16)
				default:
					v, err = im.u32(off)
				}
				if err != nil {
					return nil, nil, err
				}
				off += width
				r[c] = v
			}
			rows[i] = r
		}
		ts.rows[t] = rows
	}
	return ts, h, nil
}

// tableStreamBase locates the #~/#- stream's own offset within the
// metadata root, since row data follows immediately after its header.
func tableStreamBase(root *metadataRoot) uint32 {
	if s, ok := root.streams["#~"]; ok {
		return s.offset
	}
	if s, ok := root.streams["#-"]; ok {
		return s.offset
	}
	return 0
}

// decodeCoded splits a coded-index value into its target table and
// 1-based row index, per ECMA-335 §II.24.2.6.
func decodeCoded(v uint32, tagBits uint, tables []int) (table int, rowIndex uint32) {
	mask := uint32(1)<<tagBits - 1
	tag := v & mask
	rowIndex = v >> tagBits
	if int(tag) >= len(tables) {
		return -1, 0
	}
	return tables[tag], rowIndex
}
