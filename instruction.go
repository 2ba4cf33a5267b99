package cil

// Operand is a tagged value whose active field is determined by the
// owning Instruction's opcode's OperandKind, per spec.md §3.
type Operand struct {
	Branch       *Instruction   // BrTarget / ShortBrTarget (nil = out of range)
	Switch       []*Instruction // InlineSwitch, in table order (nil entry = out of range)
	Int64        int64          // InlineI / InlineI8 / ShortInlineI
	Float64      float64        // ShortInlineR / InlineR
	String       string         // InlineString
	Member       Member         // InlineTok / InlineType / InlineMethod / InlineField
	Signature    SignatureHandle
	Local        *Local // InlineVar / ShortInlineVar when the opcode addresses a local
	Param        *Param // InlineVar / ShortInlineVar when the opcode addresses a parameter
	rawBranch    int32  // pre-resolution absolute offset
	rawSwitch    []int32
	hasRawBranch bool
}

// Instruction is one decoded CIL instruction. Instructions live inside
// a single owned slice (the decode arena) and are logically immutable
// once branch resolution has run.
type Instruction struct {
	Offset  int
	Opcode  *opcode
	Operand Operand

	Prev *Instruction
	Next *Instruction
}

// link wires Prev/Next across an offset-ordered slice of instructions.
func link(instrs []*Instruction) {
	for i, ins := range instrs {
		if i > 0 {
			ins.Prev = instrs[i-1]
		}
		if i+1 < len(instrs) {
			ins.Next = instrs[i+1]
		}
	}
}

// isCallLike reports whether this instruction's opcode is one of
// call/calli/callvirt/newobj, the set whose method-operand rendering is
// prefixed with "instance " for non-static targets.
func (i *Instruction) isCallLike() bool {
	switch i.Opcode.Category {
	case catCall, catCalli, catCallvirt, catNewobj:
		return true
	}
	return false
}
