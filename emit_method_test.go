package cil

import (
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFilterMethodAttrTokensDropsPrivateScopeAndVtableLayoutMask(t *testing.T) {
	got := filterMethodAttrTokens([]string{"Public", "PrivateScope", "HideBySig", "VtableLayoutMask"})
	want := []string{"public", "hidebysig"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestImplFlagsText(t *testing.T) {
	tests := []struct {
		f    ImplFlags
		want string
	}{
		{ImplFlags{CodeType: CodeTypeIL, Managed: true}, "cil managed"},
		{ImplFlags{CodeType: CodeTypeNative, Managed: false}, "native"},
		{ImplFlags{CodeType: CodeTypeRuntime, Managed: true}, "runtime managed"},
	}
	for _, tt := range tests {
		if got := implFlagsText(tt.f); got != tt.want {
			t.Errorf("implFlagsText(%+v) = %q, want %q", tt.f, got, tt.want)
		}
	}
}

func TestFormatDefaultValue(t *testing.T) {
	tests := []struct {
		name string
		dv   *DefaultValue
		want string
	}{
		{"string", &DefaultValue{Kind: DefaultString, String: "hi"}, `"hi"`},
		{"int32", &DefaultValue{Kind: DefaultInt32, Int64: 5}, "int32(0x00000005)"},
		{"int8 negative", &DefaultValue{Kind: DefaultInt8, Int64: -1}, "int8(0xFF)"},
		{"float64", &DefaultValue{Kind: DefaultFloat64, Float64: 1.5}, "float64(1.5)"},
		{"bool true", &DefaultValue{Kind: DefaultBool, Int64: 1}, "bool(0x01)"},
		{"nullref", &DefaultValue{Kind: DefaultNullRef}, "nullref"},
		{"other", &DefaultValue{Kind: DefaultOther, TypeName: "valuetype Foo", OtherText: "01 00"}, "valuetype Foo(01 00)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatDefaultValue(tt.dv); got != tt.want {
				t.Errorf("formatDefaultValue() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatCustomAttributeUnresolvedConstructor(t *testing.T) {
	got := formatCustomAttribute(fakeTestAsm, CustomAttributeData{})
	if got != ".custom <unresolved attribute constructor>" {
		t.Errorf("formatCustomAttribute() = %q", got)
	}
}

func TestFormatCustomAttributePlaceholderBytes(t *testing.T) {
	ca := CustomAttributeData{
		Constructor: &MethodMember{
			DeclaringType: &fakeType{full: "System.ObsoleteAttribute", asm: fakeMscorlib, class: true},
			Name:          ".ctor",
		},
	}
	got := formatCustomAttribute(fakeTestAsm, ca)
	if !strings.HasSuffix(got, "= ( 01 00 00 00 )") {
		t.Errorf("formatCustomAttribute() = %q, want the empty-prologue placeholder bytes", got)
	}
}

func TestFormatCustomAttributeNoArgBytesLogsDebug(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))
	defer SetLogger(zap.NewNop())

	ca := CustomAttributeData{
		Constructor: &MethodMember{
			DeclaringType: &fakeType{full: "System.ObsoleteAttribute", asm: fakeMscorlib, class: true},
			Name:          ".ctor",
		},
		HasArgBytes: false,
	}
	formatCustomAttribute(fakeTestAsm, ca)

	if logs.Len() != 1 {
		t.Fatalf("got %d log entries, want 1", logs.Len())
	}
	if got := logs.All()[0].ContextMap()["constructor"]; got != "System.ObsoleteAttribute::.ctor" {
		t.Errorf("constructor = %v, want System.ObsoleteAttribute::.ctor", got)
	}
}

func TestFormatCustomAttributeWithArgBytesDoesNotLog(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))
	defer SetLogger(zap.NewNop())

	ca := CustomAttributeData{
		Constructor: &MethodMember{
			DeclaringType: &fakeType{full: "System.ObsoleteAttribute", asm: fakeMscorlib, class: true},
			Name:          ".ctor",
		},
		HasArgBytes: true,
	}
	formatCustomAttribute(fakeTestAsm, ca)

	if logs.Len() != 0 {
		t.Errorf("got %d log entries, want 0 when HasArgBytes is true", logs.Len())
	}
}

func TestRenderParamReservedLexemeIsQuoted(t *testing.T) {
	p := &Param{Index: 0, Name: "value", Type: fakeInt32Type}
	got := renderParam(fakeTestAsm, p)
	if !strings.Contains(got, "'value'") {
		t.Errorf("renderParam() = %q, want quoted reserved lexeme", got)
	}
}

func TestRenderParamOptAndOutFlags(t *testing.T) {
	p := &Param{Index: 0, Name: "x", Type: fakeInt32Type, Out: true, Default: &DefaultValue{Kind: DefaultInt32, Int64: 0}}
	got := renderParam(fakeTestAsm, p)
	if !strings.HasPrefix(got, "[opt] [out] ") {
		t.Errorf("renderParam() = %q, want [opt] [out] prefix", got)
	}
}

func TestDisassembleMethodFaultClauseEmitsFaultKeyword(t *testing.T) {
	declaring := &fakeType{full: "ILDisassembler.Test.Foo", asm: fakeTestAsm, class: true}
	m := &fakeMethod{
		name:      "Cleanup",
		declaring: declaring,
		ret:       fakeVoidType,
		static:    true,
		hasBody:   true,
		// nop, nop (try, offsets 0-1), nop (fault handler, offset 2), endfinally (offset 3).
		il:       []byte{0x00, 0x00, 0x00, 0xDC},
		maxStack: 0,
		impl:     ImplFlags{CodeType: CodeTypeIL, Managed: true},
		clauses: []ExceptionClause{
			{Kind: ClauseFault, TryOffset: 0, TryLength: 2, HandlerOffset: 2, HandlerLength: 2},
		},
	}
	got, err := DisassembleMethod(fakeTestAsm, &fakeProvider{}, m)
	if err != nil {
		t.Fatalf("DisassembleMethod() error = %v", err)
	}
	var sawFault, sawFinally bool
	for _, line := range strings.Split(got, "\n") {
		switch strings.TrimSpace(line) {
		case "fault":
			sawFault = true
		case "finally":
			sawFinally = true
		}
	}
	if !sawFault {
		t.Errorf("output missing fault keyword:\n%s", got)
	}
	if sawFinally {
		t.Errorf("output wrongly renders Fault clause as finally:\n%s", got)
	}
}

func TestDisassembleMethodStaticNoBodyLocals(t *testing.T) {
	declaring := &fakeType{full: "ILDisassembler.Test.Foo", asm: fakeTestAsm, class: true}
	m := &fakeMethod{
		name:      "DoWork",
		declaring: declaring,
		ret:       fakeVoidType,
		static:    true,
		hasBody:   true,
		il:        []byte{0x2A}, // ret
		maxStack:  1,
		impl:      ImplFlags{CodeType: CodeTypeIL, Managed: true},
	}
	got, err := DisassembleMethod(fakeTestAsm, &fakeProvider{}, m)
	if err != nil {
		t.Fatalf("DisassembleMethod() error = %v", err)
	}
	if !strings.Contains(got, ".method void DoWork() cil managed") {
		t.Errorf("output missing expected signature line:\n%s", got)
	}
	if !strings.Contains(got, ".maxstack 1") {
		t.Errorf("output missing .maxstack line:\n%s", got)
	}
	if !strings.Contains(got, "IL_0000: ret") {
		t.Errorf("output missing instruction line:\n%s", got)
	}
	if strings.Contains(got, ".locals init") {
		t.Errorf("output should omit .locals init when there are no locals:\n%s", got)
	}
}

func TestDisassembleMethodInstanceAttrAndLocals(t *testing.T) {
	declaring := &fakeType{full: "ILDisassembler.Test.Foo", asm: fakeTestAsm, class: true}
	locals := []*Local{{Index: 0, Type: fakeInt32Type}}
	m := &fakeMethod{
		name:      "Compute",
		declaring: declaring,
		ret:       fakeInt32Type,
		static:    false,
		virtual:   true,
		attrs:     []string{"Public", "PrivateScope"},
		hasBody:   true,
		il:        []byte{0x16, 0x2A}, // ldc.i4.0, ret
		locals:    locals,
		maxStack:  1,
		impl:      ImplFlags{CodeType: CodeTypeIL, Managed: true},
	}
	got, err := DisassembleMethod(fakeTestAsm, &fakeProvider{}, m)
	if err != nil {
		t.Fatalf("DisassembleMethod() error = %v", err)
	}
	if !strings.Contains(got, "instance") || !strings.Contains(got, "newslot") {
		t.Errorf("output missing instance/newslot attrs:\n%s", got)
	}
	if strings.Contains(got, "privatescope") {
		t.Errorf("output should drop privatescope:\n%s", got)
	}
	if !strings.Contains(got, ".locals init (int32 V_0)") {
		t.Errorf("output missing .locals init line:\n%s", got)
	}
}

func TestDisassembleMethodWithExceptionRegion(t *testing.T) {
	declaring := &fakeType{full: "ILDisassembler.Test.Foo", asm: fakeTestAsm, class: true}
	// nop (try, offset 0), nop (catch, offset 1), ret (offset 2)
	il := []byte{0x00, 0x00, 0x2A}
	m := &fakeMethod{
		name:      "Guarded",
		declaring: declaring,
		ret:       fakeVoidType,
		static:    true,
		hasBody:   true,
		il:        il,
		maxStack:  1,
		impl:      ImplFlags{CodeType: CodeTypeIL, Managed: true},
		clauses: []ExceptionClause{
			{Kind: ClauseCatch, TryOffset: 0, TryLength: 1, HandlerOffset: 1, HandlerLength: 1, CatchType: fakeObjectType},
		},
	}
	got, err := DisassembleMethod(fakeTestAsm, &fakeProvider{}, m)
	if err != nil {
		t.Fatalf("DisassembleMethod() error = %v", err)
	}
	if !strings.Contains(got, ".try") {
		t.Errorf("output missing .try marker:\n%s", got)
	}
	if !strings.Contains(got, "catch ") {
		t.Errorf("output missing catch marker:\n%s", got)
	}
}
