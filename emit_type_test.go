package cil

import (
	"sort"
	"strings"
	"testing"
)

func TestDisassembleTypeHeaderPlainClass(t *testing.T) {
	objType := fakeObjectType
	typ := &fakeType{
		full: "ILDisassembler.Test.HelloWorldProgram", asm: fakeTestAsm, class: true,
		vis: VisibilityPublic, layout: LayoutAuto, strfmt: StringFormatAnsi, bfi: true,
		base: objType,
	}
	got, err := DisassembleTypeHeader(fakeTestAsm, typ)
	if err != nil {
		t.Fatalf("DisassembleTypeHeader() error = %v", err)
	}
	lines := strings.Split(got, "\n")

	wantWords := map[string]bool{"public": true, "auto": true, "ansi": true, "beforefieldinit": true}
	gotTokens := strings.Fields(strings.TrimPrefix(lines[0], ".class "))
	gotTokens = gotTokens[:len(gotTokens)-1] // drop the trailing type name
	if len(gotTokens) != len(wantWords) {
		t.Fatalf("first line tokens = %v, want a word-order-irrelevant match to %v", gotTokens, wantWords)
	}
	for _, tok := range gotTokens {
		if !wantWords[tok] {
			t.Errorf("unexpected token %q in first line %q", tok, lines[0])
		}
	}
	if !strings.HasSuffix(lines[0], "ILDisassembler.Test.HelloWorldProgram") {
		t.Errorf("first line = %q, want it to end in the type's full name", lines[0])
	}
	if lines[1] != "extends [mscorlib]System.Object" {
		t.Errorf("lines[1] = %q, want the extends line", lines[1])
	}
	if lines[2] != "{" || lines[3] != "}" {
		t.Errorf("got = %q, want an empty brace body", got)
	}
}

func TestDisassembleTypeHeaderBareInterface(t *testing.T) {
	typ := &fakeType{
		full: "ILDisassembler.Test.ITalkable", asm: fakeTestAsm, class: true, iface: true, abstract: true,
		vis: VisibilityPublic, layout: LayoutAuto, strfmt: StringFormatAnsi,
	}
	got, err := DisassembleTypeHeader(fakeTestAsm, typ)
	if err != nil {
		t.Fatalf("DisassembleTypeHeader() error = %v", err)
	}
	if strings.Contains(got, "extends") {
		t.Errorf("got = %q, want no extends line for an interface", got)
	}
	if strings.Contains(got, "implements") {
		t.Errorf("got = %q, want no implements line when there are no interfaces", got)
	}
	lines := strings.Split(got, "\n")
	wantWords := map[string]bool{"interface": true, "public": true, "abstract": true, "auto": true, "ansi": true}
	gotTokens := strings.Fields(strings.TrimPrefix(lines[0], ".class "))
	gotTokens = gotTokens[:len(gotTokens)-1]
	if len(gotTokens) != len(wantWords) {
		t.Fatalf("first line tokens = %v, want a word-order-irrelevant match to %v", gotTokens, wantWords)
	}
	for _, tok := range gotTokens {
		if !wantWords[tok] {
			t.Errorf("unexpected token %q in first line %q", tok, lines[0])
		}
	}
}

func TestDisassembleTypeHeaderInterfaceWithBases(t *testing.T) {
	ilist := &fakeType{full: "System.Collections.IList", asm: fakeMscorlib, iface: true}
	icollection := &fakeType{full: "System.Collections.ICollection", asm: fakeMscorlib, iface: true}
	ienumerable := &fakeType{full: "System.Collections.IEnumerable", asm: fakeMscorlib, iface: true}
	typ := &fakeType{
		full: "ILDisassembler.Test.ICustomList", asm: fakeTestAsm, class: true, iface: true, abstract: true,
		vis: VisibilityPublic, layout: LayoutAuto, strfmt: StringFormatAnsi,
		ifaces: []TypeRef{ilist, icollection, ienumerable},
	}
	got, err := DisassembleTypeHeader(fakeTestAsm, typ)
	if err != nil {
		t.Fatalf("DisassembleTypeHeader() error = %v", err)
	}
	var implementsLine string
	for _, l := range strings.Split(got, "\n") {
		if strings.HasPrefix(l, "implements ") {
			implementsLine = l
		}
	}
	if implementsLine == "" {
		t.Fatalf("got = %q, want an implements line", got)
	}
	gotNames := strings.Split(strings.TrimPrefix(implementsLine, "implements "), ", ")
	sort.Strings(gotNames)
	want := []string{
		"[mscorlib]System.Collections.ICollection",
		"[mscorlib]System.Collections.IEnumerable",
		"[mscorlib]System.Collections.IList",
	}
	sort.Strings(want)
	if len(gotNames) != len(want) {
		t.Fatalf("implements names = %v, want %v", gotNames, want)
	}
	for i := range want {
		if gotNames[i] != want[i] {
			t.Errorf("implements names = %v, want %v", gotNames, want)
		}
	}
}

func TestDisassembleFiltersInheritedAndNonILMethods(t *testing.T) {
	typ := &fakeType{full: "ILDisassembler.Test.Foo", asm: fakeTestAsm, class: true, vis: VisibilityPublic, layout: LayoutAuto, strfmt: StringFormatAnsi}
	other := &fakeType{full: "ILDisassembler.Test.Base", asm: fakeTestAsm, class: true}

	declared := &fakeMethod{
		name: "DoWork", declaring: typ, ret: fakeVoidType, static: true, hasBody: true,
		il: []byte{0x2A}, impl: ImplFlags{CodeType: CodeTypeIL, Managed: true},
	}
	inherited := &fakeMethod{
		name: "Inherited", declaring: other, ret: fakeVoidType, static: true, hasBody: true,
		il: []byte{0x2A}, impl: ImplFlags{CodeType: CodeTypeIL, Managed: true},
	}
	native := &fakeMethod{
		name: "PInvoked", declaring: typ, ret: fakeVoidType, static: true,
		impl: ImplFlags{CodeType: CodeTypeNative},
	}

	provider := &fakeProvider{current: fakeTestAsm, methods: []Method{declared, inherited, native}}
	result, err := Disassemble(fakeTestAsm, provider, typ)
	if err != nil {
		t.Fatalf("Disassemble() error = %v", err)
	}
	if len(result.Methods) != 1 {
		t.Fatalf("got %d methods, want 1 (only the declared IL method)", len(result.Methods))
	}
	if !strings.Contains(result.Methods[0], "DoWork") {
		t.Errorf("result.Methods[0] = %q, want it to be DoWork", result.Methods[0])
	}
}

func TestInstructionLabelsScenario(t *testing.T) {
	offsets := []int{0, 1, 6}
	want := []string{"IL_0000", "IL_0001", "IL_0006"}
	for i, off := range offsets {
		if got := instrLabel(off); got != want[i] {
			t.Errorf("instrLabel(%d) = %q, want %q", off, got, want[i])
		}
	}
}
