package clrfile

import "testing"

func TestDecodeCoded(t *testing.T) {
	tables := []int{tblTypeDef, tblTypeRef, tblTypeSpec}
	tests := []struct {
		name      string
		v         uint32
		tagBits   uint
		wantTable int
		wantRow   uint32
	}{
		{"tag 0 -> first table", 0<<2 | 0, 2, tblTypeDef, 0},
		{"tag 1 -> second table, row 7", 7<<2 | 1, 2, tblTypeRef, 7},
		{"tag out of range", 0<<2 | 3, 2, -1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, row := decodeCoded(tt.v, tt.tagBits, tables)
			if table != tt.wantTable || row != tt.wantRow {
				t.Errorf("decodeCoded(%#x) = (%d, %d), want (%d, %d)", tt.v, table, row, tt.wantTable, tt.wantRow)
			}
		})
	}
}

func TestTableStreamBaseLocatesEitherStreamName(t *testing.T) {
	root := &metadataRoot{streams: map[string]streamHeader{
		"#~": {offset: 100},
	}}
	if got := tableStreamBase(root); got != 100 {
		t.Errorf("tableStreamBase = %d, want 100", got)
	}

	root2 := &metadataRoot{streams: map[string]streamHeader{
		"#-": {offset: 200},
	}}
	if got := tableStreamBase(root2); got != 200 {
		t.Errorf("tableStreamBase = %d, want 200", got)
	}
}

// TestDecodeTablesModuleOnly builds a minimal #~ stream with only the
// Module table populated (one row, all narrow heap indices) and checks
// decodeTables reads it back correctly.
func TestDecodeTablesModuleOnly(t *testing.T) {
	tsh := &tableStreamHeader{
		heapSizes: 0, // narrow everything
	}
	tsh.maskValid = 1 << tblModule
	tsh.rowCounts[tblModule] = 1

	// Module row: Generation(u16)=0, Name(strIdx u16)=1, Mvid(guidIdx u16)=1,
	// EncId(guidIdx u16)=0, EncBaseId(guidIdx u16)=0.
	rowBytes := []byte{0x00, 0x00, 0x01, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00}
	tsh.rowsOffset = 0

	im := newTestImage(rowBytes)
	root := &metadataRoot{baseOffset: 0, streams: map[string]streamHeader{}}

	ts, h, err := im.decodeTables(root, tsh)
	if err != nil {
		t.Fatalf("decodeTables: %v", err)
	}
	if len(ts.rows[tblModule]) != 1 {
		t.Fatalf("rows[Module] = %d rows, want 1", len(ts.rows[tblModule]))
	}
	got := ts.rows[tblModule][0]
	want := row{0, 1, 1, 0, 0}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("rows[Module][0][%d] = %d, want %d", i, got[i], want[i])
		}
	}
	if h.rowCounts[tblModule] != 1 {
		t.Errorf("heaps row count not carried through")
	}
}

func TestDecodeTablesRejectsUnknownPopulatedTable(t *testing.T) {
	tsh := &tableStreamHeader{}
	tsh.maskValid = 1 << tblFieldPtr // reserved/unpopulated table slot
	tsh.rowCounts[tblFieldPtr] = 1

	im := newTestImage([]byte{0, 0, 0, 0})
	root := &metadataRoot{streams: map[string]streamHeader{}}

	_, _, err := im.decodeTables(root, tsh)
	if err == nil {
		t.Fatal("decodeTables: want error for unschema'd populated table, got nil")
	}
}
