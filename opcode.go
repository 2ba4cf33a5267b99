package cil

import "strings"

// OperandKind classifies the static schema for an opcode's inline
// argument, per spec.md §3.
type OperandKind int

const (
	OperandNone OperandKind = iota
	OperandShortBrTarget
	OperandBrTarget
	OperandShortInlineI
	OperandInlineI
	OperandInlineI8
	OperandShortInlineR
	OperandInlineR
	OperandInlineVar
	OperandShortInlineVar
	OperandInlineString
	OperandInlineSwitch
	OperandInlineSig
	OperandInlineTok
	OperandInlineType
	OperandInlineMethod
	OperandInlineField
)

// category tags the small set of opcodes whose identity the decoder and
// formatter need to special-case (call/calli/callvirt/newobj for the
// "instance " prefix, branches/switch for target resolution).
type category int

const (
	catNone category = iota
	catCall
	catCalli
	catCallvirt
	catNewobj
	catBranch
	catSwitch
)

// opcode is an immutable descriptor for one CIL instruction encoding.
type opcode struct {
	Name     string
	Value1   byte // first encoded byte; 0xFE for two-byte opcodes
	Value2   byte // second encoded byte for two-byte opcodes, else unused
	TwoByte  bool
	Operand  OperandKind
	Size     int // total encoded size: opcode bytes + operand bytes
	Category category
}

const (
	oneByteTableSize = 0xe1
	twoByteTableSize = 0x1f
)

var (
	oneByteOpcodes [oneByteTableSize]*opcode
	twoByteOpcodes [twoByteTableSize]*opcode
	opcodesByName  map[string]*opcode
)

func operandSize(k OperandKind) int {
	switch k {
	case OperandNone:
		return 0
	case OperandShortBrTarget, OperandShortInlineI, OperandShortInlineVar:
		return 1
	case OperandInlineVar:
		return 2
	case OperandBrTarget, OperandInlineI, OperandShortInlineR, OperandInlineString,
		OperandInlineSig, OperandInlineTok, OperandInlineType, OperandInlineMethod,
		OperandInlineField:
		return 4
	case OperandInlineI8, OperandInlineR:
		return 8
	case OperandInlineSwitch:
		// Variable width; the 4-byte count plus n*4-byte targets is
		// computed by the decoder itself, not looked up here.
		return 4
	}
	return 0
}

// one-byte opcode descriptors, 0x00-0xE0.
var oneByteDescriptors = []struct {
	name     string
	value    byte
	operand  OperandKind
	category category
}{
	{"nop", 0x00, OperandNone, catNone},
	{"break", 0x01, OperandNone, catNone},
	{"ldarg.0", 0x02, OperandNone, catNone},
	{"ldarg.1", 0x03, OperandNone, catNone},
	{"ldarg.2", 0x04, OperandNone, catNone},
	{"ldarg.3", 0x05, OperandNone, catNone},
	{"ldloc.0", 0x06, OperandNone, catNone},
	{"ldloc.1", 0x07, OperandNone, catNone},
	{"ldloc.2", 0x08, OperandNone, catNone},
	{"ldloc.3", 0x09, OperandNone, catNone},
	{"stloc.0", 0x0A, OperandNone, catNone},
	{"stloc.1", 0x0B, OperandNone, catNone},
	{"stloc.2", 0x0C, OperandNone, catNone},
	{"stloc.3", 0x0D, OperandNone, catNone},
	{"ldarg.s", 0x0E, OperandShortInlineVar, catNone},
	{"ldarga.s", 0x0F, OperandShortInlineVar, catNone},
	{"starg.s", 0x10, OperandShortInlineVar, catNone},
	{"ldloc.s", 0x11, OperandShortInlineVar, catNone},
	{"ldloca.s", 0x12, OperandShortInlineVar, catNone},
	{"stloc.s", 0x13, OperandShortInlineVar, catNone},
	{"ldnull", 0x14, OperandNone, catNone},
	{"ldc.i4.m1", 0x15, OperandNone, catNone},
	{"ldc.i4.0", 0x16, OperandNone, catNone},
	{"ldc.i4.1", 0x17, OperandNone, catNone},
	{"ldc.i4.2", 0x18, OperandNone, catNone},
	{"ldc.i4.3", 0x19, OperandNone, catNone},
	{"ldc.i4.4", 0x1A, OperandNone, catNone},
	{"ldc.i4.5", 0x1B, OperandNone, catNone},
	{"ldc.i4.6", 0x1C, OperandNone, catNone},
	{"ldc.i4.7", 0x1D, OperandNone, catNone},
	{"ldc.i4.8", 0x1E, OperandNone, catNone},
	{"ldc.i4.s", 0x1F, OperandShortInlineI, catNone},
	{"ldc.i4", 0x20, OperandInlineI, catNone},
	{"ldc.i8", 0x21, OperandInlineI8, catNone},
	{"ldc.r4", 0x22, OperandShortInlineR, catNone},
	{"ldc.r8", 0x23, OperandInlineR, catNone},
	{"dup", 0x25, OperandNone, catNone},
	{"pop", 0x26, OperandNone, catNone},
	{"jmp", 0x27, OperandInlineMethod, catNone},
	{"call", 0x28, OperandInlineMethod, catCall},
	{"calli", 0x29, OperandInlineSig, catCalli},
	{"ret", 0x2A, OperandNone, catNone},
	{"br.s", 0x2B, OperandShortBrTarget, catBranch},
	{"brfalse.s", 0x2C, OperandShortBrTarget, catBranch},
	{"brtrue.s", 0x2D, OperandShortBrTarget, catBranch},
	{"beq.s", 0x2E, OperandShortBrTarget, catBranch},
	{"bge.s", 0x2F, OperandShortBrTarget, catBranch},
	{"bgt.s", 0x30, OperandShortBrTarget, catBranch},
	{"ble.s", 0x31, OperandShortBrTarget, catBranch},
	{"blt.s", 0x32, OperandShortBrTarget, catBranch},
	{"bne.un.s", 0x33, OperandShortBrTarget, catBranch},
	{"bge.un.s", 0x34, OperandShortBrTarget, catBranch},
	{"bgt.un.s", 0x35, OperandShortBrTarget, catBranch},
	{"ble.un.s", 0x36, OperandShortBrTarget, catBranch},
	{"blt.un.s", 0x37, OperandShortBrTarget, catBranch},
	{"br", 0x38, OperandBrTarget, catBranch},
	{"brfalse", 0x39, OperandBrTarget, catBranch},
	{"brtrue", 0x3A, OperandBrTarget, catBranch},
	{"beq", 0x3B, OperandBrTarget, catBranch},
	{"bge", 0x3C, OperandBrTarget, catBranch},
	{"bgt", 0x3D, OperandBrTarget, catBranch},
	{"ble", 0x3E, OperandBrTarget, catBranch},
	{"blt", 0x3F, OperandBrTarget, catBranch},
	{"bne.un", 0x40, OperandBrTarget, catBranch},
	{"bge.un", 0x41, OperandBrTarget, catBranch},
	{"bgt.un", 0x42, OperandBrTarget, catBranch},
	{"ble.un", 0x43, OperandBrTarget, catBranch},
	{"blt.un", 0x44, OperandBrTarget, catBranch},
	{"switch", 0x45, OperandInlineSwitch, catSwitch},
	{"ldind.i1", 0x46, OperandNone, catNone},
	{"ldind.u1", 0x47, OperandNone, catNone},
	{"ldind.i2", 0x48, OperandNone, catNone},
	{"ldind.u2", 0x49, OperandNone, catNone},
	{"ldind.i4", 0x4A, OperandNone, catNone},
	{"ldind.u4", 0x4B, OperandNone, catNone},
	{"ldind.i8", 0x4C, OperandNone, catNone},
	{"ldind.i", 0x4D, OperandNone, catNone},
	{"ldind.r4", 0x4E, OperandNone, catNone},
	{"ldind.r8", 0x4F, OperandNone, catNone},
	{"ldind.ref", 0x50, OperandNone, catNone},
	{"stind.ref", 0x51, OperandNone, catNone},
	{"stind.i1", 0x52, OperandNone, catNone},
	{"stind.i2", 0x53, OperandNone, catNone},
	{"stind.i4", 0x54, OperandNone, catNone},
	{"stind.i8", 0x55, OperandNone, catNone},
	{"stind.r4", 0x56, OperandNone, catNone},
	{"stind.r8", 0x57, OperandNone, catNone},
	{"add", 0x58, OperandNone, catNone},
	{"sub", 0x59, OperandNone, catNone},
	{"mul", 0x5A, OperandNone, catNone},
	{"div", 0x5B, OperandNone, catNone},
	{"div.un", 0x5C, OperandNone, catNone},
	{"rem", 0x5D, OperandNone, catNone},
	{"rem.un", 0x5E, OperandNone, catNone},
	{"and", 0x5F, OperandNone, catNone},
	{"or", 0x60, OperandNone, catNone},
	{"xor", 0x61, OperandNone, catNone},
	{"shl", 0x62, OperandNone, catNone},
	{"shr", 0x63, OperandNone, catNone},
	{"shr.un", 0x64, OperandNone, catNone},
	{"neg", 0x65, OperandNone, catNone},
	{"not", 0x66, OperandNone, catNone},
	{"conv.i1", 0x67, OperandNone, catNone},
	{"conv.i2", 0x68, OperandNone, catNone},
	{"conv.i4", 0x69, OperandNone, catNone},
	{"conv.i8", 0x6A, OperandNone, catNone},
	{"conv.r4", 0x6B, OperandNone, catNone},
	{"conv.r8", 0x6C, OperandNone, catNone},
	{"conv.u4", 0x6D, OperandNone, catNone},
	{"conv.u8", 0x6E, OperandNone, catNone},
	{"callvirt", 0x6F, OperandInlineMethod, catCallvirt},
	{"cpobj", 0x70, OperandInlineType, catNone},
	{"ldobj", 0x71, OperandInlineType, catNone},
	{"ldstr", 0x72, OperandInlineString, catNone},
	{"newobj", 0x73, OperandInlineMethod, catNewobj},
	{"castclass", 0x74, OperandInlineType, catNone},
	{"isinst", 0x75, OperandInlineType, catNone},
	{"conv.r.un", 0x76, OperandNone, catNone},
	{"unbox", 0x79, OperandInlineType, catNone},
	{"throw", 0x7A, OperandNone, catNone},
	{"ldfld", 0x7B, OperandInlineField, catNone},
	{"ldflda", 0x7C, OperandInlineField, catNone},
	{"stfld", 0x7D, OperandInlineField, catNone},
	{"ldsfld", 0x7E, OperandInlineField, catNone},
	{"ldsflda", 0x7F, OperandInlineField, catNone},
	{"stsfld", 0x80, OperandInlineField, catNone},
	{"stobj", 0x81, OperandInlineType, catNone},
	{"conv.ovf.i1.un", 0x82, OperandNone, catNone},
	{"conv.ovf.i2.un", 0x83, OperandNone, catNone},
	{"conv.ovf.i4.un", 0x84, OperandNone, catNone},
	{"conv.ovf.i8.un", 0x85, OperandNone, catNone},
	{"conv.ovf.u1.un", 0x86, OperandNone, catNone},
	{"conv.ovf.u2.un", 0x87, OperandNone, catNone},
	{"conv.ovf.u4.un", 0x88, OperandNone, catNone},
	{"conv.ovf.u8.un", 0x89, OperandNone, catNone},
	{"conv.ovf.i.un", 0x8A, OperandNone, catNone},
	{"conv.ovf.u.un", 0x8B, OperandNone, catNone},
	{"box", 0x8C, OperandInlineType, catNone},
	{"newarr", 0x8D, OperandInlineType, catNone},
	{"ldlen", 0x8E, OperandNone, catNone},
	{"ldelema", 0x8F, OperandInlineType, catNone},
	{"ldelem.i1", 0x90, OperandNone, catNone},
	{"ldelem.u1", 0x91, OperandNone, catNone},
	{"ldelem.i2", 0x92, OperandNone, catNone},
	{"ldelem.u2", 0x93, OperandNone, catNone},
	{"ldelem.i4", 0x94, OperandNone, catNone},
	{"ldelem.u4", 0x95, OperandNone, catNone},
	{"ldelem.i8", 0x96, OperandNone, catNone},
	{"ldelem.i", 0x97, OperandNone, catNone},
	{"ldelem.r4", 0x98, OperandNone, catNone},
	{"ldelem.r8", 0x99, OperandNone, catNone},
	{"ldelem.ref", 0x9A, OperandNone, catNone},
	{"stelem.i", 0x9B, OperandNone, catNone},
	{"stelem.i1", 0x9C, OperandNone, catNone},
	{"stelem.i2", 0x9D, OperandNone, catNone},
	{"stelem.i4", 0x9E, OperandNone, catNone},
	{"stelem.i8", 0x9F, OperandNone, catNone},
	{"stelem.r4", 0xA0, OperandNone, catNone},
	{"stelem.r8", 0xA1, OperandNone, catNone},
	{"stelem.ref", 0xA2, OperandNone, catNone},
	{"ldelem", 0xA3, OperandInlineType, catNone},
	{"stelem", 0xA4, OperandInlineType, catNone},
	{"unbox.any", 0xA5, OperandInlineType, catNone},
	{"conv.ovf.i1", 0xB3, OperandNone, catNone},
	{"conv.ovf.u1", 0xB4, OperandNone, catNone},
	{"conv.ovf.i2", 0xB5, OperandNone, catNone},
	{"conv.ovf.u2", 0xB6, OperandNone, catNone},
	{"conv.ovf.i4", 0xB7, OperandNone, catNone},
	{"conv.ovf.u4", 0xB8, OperandNone, catNone},
	{"conv.ovf.i8", 0xB9, OperandNone, catNone},
	{"conv.ovf.u8", 0xBA, OperandNone, catNone},
	{"refanyval", 0xC2, OperandInlineType, catNone},
	{"ckfinite", 0xC3, OperandNone, catNone},
	{"mkrefany", 0xC6, OperandInlineType, catNone},
	{"ldtoken", 0xD0, OperandInlineTok, catNone},
	{"conv.u2", 0xD1, OperandNone, catNone},
	{"conv.u1", 0xD2, OperandNone, catNone},
	{"conv.i", 0xD3, OperandNone, catNone},
	{"conv.ovf.i", 0xD4, OperandNone, catNone},
	{"conv.ovf.u", 0xD5, OperandNone, catNone},
	{"add.ovf", 0xD6, OperandNone, catNone},
	{"add.ovf.un", 0xD7, OperandNone, catNone},
	{"mul.ovf", 0xD8, OperandNone, catNone},
	{"mul.ovf.un", 0xD9, OperandNone, catNone},
	{"sub.ovf", 0xDA, OperandNone, catNone},
	{"sub.ovf.un", 0xDB, OperandNone, catNone},
	{"endfinally", 0xDC, OperandNone, catNone},
	{"leave", 0xDD, OperandBrTarget, catBranch},
	{"leave.s", 0xDE, OperandShortBrTarget, catBranch},
	{"stind.i", 0xDF, OperandNone, catNone},
	{"conv.u", 0xE0, OperandNone, catNone},
}

// two-byte (0xFE-prefixed) opcode descriptors.
var twoByteDescriptors = []struct {
	name     string
	value    byte
	operand  OperandKind
	category category
}{
	{"arglist", 0x00, OperandNone, catNone},
	{"ceq", 0x01, OperandNone, catNone},
	{"cgt", 0x02, OperandNone, catNone},
	{"cgt.un", 0x03, OperandNone, catNone},
	{"clt", 0x04, OperandNone, catNone},
	{"clt.un", 0x05, OperandNone, catNone},
	{"ldftn", 0x06, OperandInlineMethod, catNone},
	{"ldvirtftn", 0x07, OperandInlineMethod, catNone},
	{"ldarg", 0x09, OperandInlineVar, catNone},
	{"ldarga", 0x0A, OperandInlineVar, catNone},
	{"starg", 0x0B, OperandInlineVar, catNone},
	{"ldloc", 0x0C, OperandInlineVar, catNone},
	{"ldloca", 0x0D, OperandInlineVar, catNone},
	{"stloc", 0x0E, OperandInlineVar, catNone},
	{"localloc", 0x0F, OperandNone, catNone},
	{"endfilter", 0x11, OperandNone, catNone},
	{"unaligned.", 0x12, OperandShortInlineI, catNone},
	{"volatile.", 0x13, OperandNone, catNone},
	{"tail.", 0x14, OperandNone, catNone},
	{"initobj", 0x15, OperandInlineType, catNone},
	{"constrained.", 0x16, OperandInlineType, catNone},
	{"cpblk", 0x17, OperandNone, catNone},
	{"initblk", 0x18, OperandNone, catNone},
	{"no.", 0x19, OperandShortInlineI, catNone},
	{"rethrow", 0x1A, OperandNone, catNone},
	{"sizeof", 0x1C, OperandInlineType, catNone},
	{"refanytype", 0x1D, OperandNone, catNone},
	{"readonly.", 0x1E, OperandNone, catNone},
}

func init() {
	opcodesByName = make(map[string]*opcode)

	for _, d := range oneByteDescriptors {
		op := &opcode{
			Name:     d.name,
			Value1:   d.value,
			Operand:  d.operand,
			Size:     1 + operandSize(d.operand),
			Category: d.category,
		}
		if oneByteOpcodes[op.Value1] != nil {
			panic("cil: duplicate one-byte opcode " + op.Name)
		}
		oneByteOpcodes[op.Value1] = op
		opcodesByName[op.Name] = op
	}

	for _, d := range twoByteDescriptors {
		op := &opcode{
			Name:     d.name,
			Value1:   0xFE,
			Value2:   d.value,
			TwoByte:  true,
			Operand:  d.operand,
			Size:     2 + operandSize(d.operand),
			Category: d.category,
		}
		if twoByteOpcodes[op.Value2] != nil {
			panic("cil: duplicate two-byte opcode " + op.Name)
		}
		twoByteOpcodes[op.Value2] = op
		opcodesByName[op.Name] = op
	}
}

func lookupOneByte(b byte) *opcode {
	if int(b) >= oneByteTableSize {
		return nil
	}
	return oneByteOpcodes[b]
}

func lookupTwoByte(b byte) *opcode {
	if int(b) >= twoByteTableSize {
		return nil
	}
	return twoByteOpcodes[b]
}

// isLocalVarOpcode reports whether the opcode's mnemonic addresses a
// local variable (vs. a parameter), per spec.md §4.3's "contains the
// substring loc" rule.
func (o *opcode) isLocalVarOpcode() bool {
	return strings.Contains(o.Name, "loc")
}
