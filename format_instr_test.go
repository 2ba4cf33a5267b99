package cil

import (
	"math"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInstrLabel(t *testing.T) {
	tests := []struct {
		offset int
		want   string
	}{
		{0, "IL_0000"},
		{1, "IL_0001"},
		{10, "IL_000a"},
		{0x1234, "IL_1234"},
	}
	for _, tt := range tests {
		if got := instrLabel(tt.offset); got != tt.want {
			t.Errorf("instrLabel(%d) = %q, want %q", tt.offset, got, tt.want)
		}
	}
}

func TestBranchLabelNilTarget(t *testing.T) {
	if got := branchLabel(5, nil); got != "IL_????" {
		t.Errorf("branchLabel(5, nil) = %q, want IL_????", got)
	}
}

func TestBranchLabelNilTargetLogsDebug(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))
	defer SetLogger(zap.NewNop())

	branchLabel(5, nil)

	if logs.Len() != 1 {
		t.Fatalf("got %d log entries, want 1", logs.Len())
	}
	entry := logs.All()[0]
	if entry.Level != zapcore.DebugLevel {
		t.Errorf("log level = %v, want Debug", entry.Level)
	}
	if got := entry.ContextMap()["from_offset"]; got != int64(5) {
		t.Errorf("from_offset = %v, want 5", got)
	}
}

func TestSwitchOperandFormatting(t *testing.T) {
	a := &Instruction{Offset: 20, Opcode: lookupOneByte(0x00)}
	b := &Instruction{Offset: 30, Opcode: lookupOneByte(0x00)}
	c := &Instruction{Offset: 40, Opcode: lookupOneByte(0x00)}
	sw := &Instruction{Offset: 10, Opcode: opcodesByName["switch"], Operand: Operand{Switch: []*Instruction{a, b, c}}}

	line, err := formatInstructionLine(AssemblyRef{}, sw, computeMaxSpacing([]*Instruction{sw, a, b, c}))
	if err != nil {
		t.Fatalf("formatInstructionLine() error = %v", err)
	}
	want := "IL_000a: switch    (IL_0014,IL_001e,IL_0028)"
	if line != want {
		t.Errorf("formatInstructionLine() = %q, want %q", line, want)
	}
}

func TestSwitchOperandZeroTargets(t *testing.T) {
	if got := switchOperandText(0, nil); got != "()" {
		t.Errorf("switchOperandText(0, nil) = %q, want ()", got)
	}
}

func TestFloatOperandFormattingG17(t *testing.T) {
	ins := &Instruction{Offset: 0, Opcode: opcodesByName["ldc.r8"], Operand: Operand{Float64: math.Pi}}
	text, err := operandText(AssemblyRef{}, ins)
	if err != nil {
		t.Fatalf("operandText() error = %v", err)
	}
	want := "3.1415926535897931"
	if text != want {
		t.Errorf("operandText() = %q, want %q", text, want)
	}
}

func TestInlineStringOperandIsQuotedUnescaped(t *testing.T) {
	ins := &Instruction{Offset: 0, Opcode: opcodesByName["ldstr"], Operand: Operand{String: `hello "world"`}}
	text, err := operandText(AssemblyRef{}, ins)
	if err != nil {
		t.Fatalf("operandText() error = %v", err)
	}
	want := `"hello "world""`
	if text != want {
		t.Errorf("operandText() = %q, want %q", text, want)
	}
}

func TestLocalOperandRendering(t *testing.T) {
	ins := &Instruction{Offset: 0, Opcode: opcodesByName["ldloc"], Operand: Operand{Local: &Local{Index: 3, Type: fakeInt32Type}}}
	text, err := operandText(AssemblyRef{}, ins)
	if err != nil {
		t.Fatalf("operandText() error = %v", err)
	}
	if text != "V_3" {
		t.Errorf("operandText() = %q, want V_3", text)
	}
}

func TestMethodOperandCallLikeInstancePrefix(t *testing.T) {
	mm := &MethodMember{
		DeclaringType: &fakeType{full: "ILDisassembler.Test.Foo", asm: fakeTestAsm, class: true},
		Name:          "Bar",
		ReturnType:    fakeVoidType,
		IsStatic:      false,
	}
	ins := &Instruction{Offset: 0, Opcode: opcodesByName["callvirt"], Operand: Operand{Member: mm}}
	text, err := operandText(fakeTestAsm, ins)
	if err != nil {
		t.Fatalf("operandText() error = %v", err)
	}
	want := "instance void ILDisassembler.Test.Foo::Bar()"
	if text != want {
		t.Errorf("operandText() = %q, want %q", text, want)
	}
}

func TestMethodOperandStaticNoInstancePrefix(t *testing.T) {
	mm := &MethodMember{
		DeclaringType: &fakeType{full: "ILDisassembler.Test.Foo", asm: fakeTestAsm, class: true},
		Name:          "Bar",
		ReturnType:    fakeVoidType,
		IsStatic:      true,
	}
	ins := &Instruction{Offset: 0, Opcode: opcodesByName["call"], Operand: Operand{Member: mm}}
	text, err := operandText(fakeTestAsm, ins)
	if err != nil {
		t.Fatalf("operandText() error = %v", err)
	}
	want := "void ILDisassembler.Test.Foo::Bar()"
	if text != want {
		t.Errorf("operandText() = %q, want %q", text, want)
	}
}

func TestCompilerGeneratedFieldNameIsQuoted(t *testing.T) {
	fm := &FieldMember{
		DeclaringType:       &fakeType{full: "ILDisassembler.Test.Foo", asm: fakeTestAsm, class: true},
		Name:                "<Value>k__BackingField",
		FieldType:           fakeInt32Type,
		IsCompilerGenerated: true,
	}
	ins := &Instruction{Offset: 0, Opcode: opcodesByName["ldfld"], Operand: Operand{Member: fm}}
	text, err := operandText(fakeTestAsm, ins)
	if err != nil {
		t.Fatalf("operandText() error = %v", err)
	}
	want := "int32 ILDisassembler.Test.Foo::'<Value>k__BackingField'"
	if text != want {
		t.Errorf("operandText() = %q, want %q", text, want)
	}
}
