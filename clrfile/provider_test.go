package clrfile

import (
	"testing"

	"cildisasm"
)

// testAssembly builds a minimal Assembly by hand, bypassing Open/mmap
// entirely: a #Strings heap and a TypeDef+Field table pair, enough to
// exercise the TypeRef/Field accessors against real decoded rows.
func testAssembly(t *testing.T) *Assembly {
	t.Helper()

	// #Strings heap: index 0 reserved, then "MyNamespace\0MyType\0MyField\0".
	strBuf := append([]byte{0x00}, []byte("MyNamespace\x00MyType\x00MyField\x00")...)
	nsIdx := uint32(1)
	nameIdx := nsIdx + uint32(len("MyNamespace\x00"))
	fieldNameIdx := nameIdx + uint32(len("MyType\x00"))

	h := &heaps{
		im:          newTestImage(strBuf),
		strings:     streamHeader{offset: 0},
		haveStrings: true,
	}

	ts := &tableSet{}
	// TypeDef row: Flags, TypeName, TypeNamespace, Extends, FieldList, MethodList.
	ts.rows[tblTypeDef] = []row{
		{tdPublic, nameIdx, nsIdx, 0, 1, 1},
	}
	// Field row: Flags, Name, Signature (blob index 0 == none decoded here).
	ts.rows[tblField] = []row{
		{faStatic | faLiteral, fieldNameIdx, 0},
	}

	return &Assembly{
		root:   &metadataRoot{baseOffset: 0},
		tables: ts,
		heaps:  h,
	}
}

func TestTypeRefImplNamespaceAndName(t *testing.T) {
	a := testAssembly(t)
	td := &typeRefImpl{asm: a, kind: tkTypeDef, table: tblTypeDef, row: 1}

	if got := td.Namespace(); got != "MyNamespace" {
		t.Errorf("Namespace() = %q, want %q", got, "MyNamespace")
	}
	if got := td.Name(); got != "MyType" {
		t.Errorf("Name() = %q, want %q", got, "MyType")
	}
	if got := td.FullName(); got != "MyNamespace.MyType" {
		t.Errorf("FullName() = %q, want %q", got, "MyNamespace.MyType")
	}
}

func TestTypeRefImplVisibilityFromFlags(t *testing.T) {
	a := testAssembly(t)
	td := &typeRefImpl{asm: a, kind: tkTypeDef, table: tblTypeDef, row: 1}
	if got := td.Visibility(); got != cil.VisibilityPublic {
		t.Errorf("Visibility() = %v, want VisibilityPublic", got)
	}
}

func TestTypeRefImplBaseTypeNilWhenExtendsZero(t *testing.T) {
	a := testAssembly(t)
	td := &typeRefImpl{asm: a, kind: tkTypeDef, table: tblTypeDef, row: 1}
	if base := td.BaseType(); base != nil {
		t.Errorf("BaseType() = %v, want nil for Extends == 0", base)
	}
}

func TestFieldsEnumeratesOwnedRange(t *testing.T) {
	a := testAssembly(t)
	td := &typeRefImpl{asm: a, kind: tkTypeDef, table: tblTypeDef, row: 1}

	fields := a.Fields(td)
	if len(fields) != 1 {
		t.Fatalf("Fields() = %d fields, want 1", len(fields))
	}
	if got := fields[0].Name(); got != "MyField" {
		t.Errorf("Fields()[0].Name() = %q, want %q", got, "MyField")
	}
	if !fields[0].IsStatic() || !fields[0].IsLiteral() {
		t.Errorf("Fields()[0] flags = static:%v literal:%v, want both true", fields[0].IsStatic(), fields[0].IsLiteral())
	}
}

func TestTypeByNameFindsDeclaredType(t *testing.T) {
	a := testAssembly(t)
	got, ok := a.TypeByName("MyNamespace.MyType")
	if !ok {
		t.Fatal("TypeByName: not found")
	}
	if got.Name() != "MyType" {
		t.Errorf("TypeByName() resolved to %q, want MyType", got.Name())
	}

	if _, ok := a.TypeByName("Nonexistent.Type"); ok {
		t.Error("TypeByName: want false for an undeclared type")
	}
}

func TestTypeNamesListsEveryTypeDef(t *testing.T) {
	a := testAssembly(t)
	names := a.TypeNames()
	if len(names) != 1 || names[0] != "MyNamespace.MyType" {
		t.Errorf("TypeNames() = %v, want [MyNamespace.MyType]", names)
	}
}
