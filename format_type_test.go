package cil

import "testing"

func TestRenderTypeNameAliases(t *testing.T) {
	tests := []struct {
		name string
		typ  TypeRef
		want string
	}{
		{"int32 alias", fakeInt32Type, "int32"},
		{"string alias", fakeStringType, "string"},
		{"object alias", fakeObjectType, "object"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := renderTypeName(fakeTestAsm, tt.typ, true, true); got != tt.want {
				t.Errorf("renderTypeName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderTypeNameNoAliasesQualifiesForeignAssembly(t *testing.T) {
	got := renderTypeName(fakeTestAsm, fakeObjectType, false, false)
	want := "[mscorlib]System.Object"
	if got != want {
		t.Errorf("renderTypeName() = %q, want %q", got, want)
	}
}

func TestRenderTypeNameSameAssemblyNoQualification(t *testing.T) {
	local := &fakeType{full: "ILDisassembler.Test.Foo", asm: fakeTestAsm, class: true}
	got := renderTypeName(fakeTestAsm, local, false, false)
	if got != "ILDisassembler.Test.Foo" {
		t.Errorf("renderTypeName() = %q, want unqualified name", got)
	}
}

func TestRenderTypeNameArray(t *testing.T) {
	arr1 := &fakeType{array: 1, elem: fakeInt32Type}
	if got, want := renderTypeName(fakeTestAsm, arr1, true, true), "int32[]"; got != want {
		t.Errorf("rank-1 array = %q, want %q", got, want)
	}

	arr2 := &fakeType{array: 2, elem: fakeInt32Type}
	if got, want := renderTypeName(fakeTestAsm, arr2, true, true), "int32[0...,0...]"; got != want {
		t.Errorf("rank-2 array = %q, want %q", got, want)
	}
}

func TestRenderTypeNameByRef(t *testing.T) {
	byref := &fakeType{byref: true, elem: fakeInt32Type}
	if got, want := renderTypeName(fakeTestAsm, byref, true, true), "int32&"; got != want {
		t.Errorf("byref = %q, want %q", got, want)
	}
}

func TestRenderTypeNameGeneric(t *testing.T) {
	listType := &fakeType{full: "System.Collections.Generic.List", asm: fakeMscorlib, class: true, generic: true, args: []TypeRef{fakeInt32Type}}
	got := renderTypeName(fakeTestAsm, listType, true, true)
	want := "[mscorlib]System.Collections.Generic.List<int32>"
	if got != want {
		t.Errorf("renderTypeName() = %q, want %q", got, want)
	}
}

func TestTypeIdentifier(t *testing.T) {
	tests := []struct {
		name     string
		typ      TypeRef
		memberPos bool
		want     string
	}{
		{"object excluded", fakeObjectType, true, ""},
		{"value type excluded", fakeInt32Type, true, ""},
		{"foreign class included", &fakeType{full: "System.Exception", asm: fakeMscorlib, class: true}, true, "class "},
		{"local class excluded in member position", &fakeType{full: "ILDisassembler.Test.Foo", asm: fakeTestAsm, class: true}, true, ""},
		{"local class included outside member position", &fakeType{full: "ILDisassembler.Test.Foo", asm: fakeTestAsm, class: true}, false, "class "},
		{"generic parameter excluded", &fakeType{class: true, genparam: true}, true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := typeIdentifier(fakeTestAsm, tt.typ, tt.memberPos); got != tt.want {
				t.Errorf("typeIdentifier() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderGenericParamList(t *testing.T) {
	params := []GenericParam{
		{Name: "T", Covariant: true},
		{Name: "U", ReferenceTypeOnly: true, DefaultConstructor: true},
	}
	got := renderGenericParamList(fakeTestAsm, params)
	want := "<+ T, .ctor class U>"
	if got != want {
		t.Errorf("renderGenericParamList() = %q, want %q", got, want)
	}
}

func TestRenderGenericParamListEmpty(t *testing.T) {
	if got := renderGenericParamList(fakeTestAsm, nil); got != "" {
		t.Errorf("renderGenericParamList() = %q, want empty", got)
	}
}
