package cil

import "errors"

var errUnknownOpcode = errors.New("byte sequence does not match any known opcode")

// DecodeMethodBody drives the byte cursor and opcode table to produce a
// method's instruction sequence, resolving embedded tokens through
// provider and branch/switch targets against the decoded stream
// itself, per spec.md §4.3.
func DecodeMethodBody(provider Provider, method Method) ([]*Instruction, error) {
	if !method.HasBody() {
		return nil, newError(KindNoBody, "DecodeMethodBody", nil)
	}
	data, err := method.ILBytes()
	if err != nil {
		return nil, newError(KindCannotReadIL, "DecodeMethodBody", err)
	}

	cur := newCursor(data)
	var instrs []*Instruction

	for !cur.atEnd() {
		offset := cur.pos

		b, err := cur.readU8()
		if err != nil {
			return nil, newError(KindMalformedIL, "read opcode", err)
		}
		var op *opcode
		if b == 0xFE {
			b2, err := cur.readU8()
			if err != nil {
				return nil, newError(KindMalformedIL, "read two-byte opcode", err)
			}
			op = lookupTwoByte(b2)
		} else {
			op = lookupOneByte(b)
		}
		if op == nil {
			return nil, newError(KindMalformedIL, "lookup opcode", errUnknownOpcode)
		}

		ins := &Instruction{Offset: offset, Opcode: op}
		if err := decodeOperand(cur, provider, method, op, ins); err != nil {
			return nil, err
		}
		instrs = append(instrs, ins)
	}

	link(instrs)
	resolveBranches(instrs)
	return instrs, nil
}

func decodeOperand(cur *cursor, provider Provider, method Method, op *opcode, ins *Instruction) error {
	switch op.Operand {
	case OperandNone:
		return nil

	case OperandShortBrTarget:
		v, err := cur.readI8()
		if err != nil {
			return newError(KindMalformedIL, "decode ShortBrTarget", err)
		}
		ins.Operand.rawBranch = int32(cur.pos) + int32(v)
		ins.Operand.hasRawBranch = true
		return nil

	case OperandBrTarget:
		v, err := cur.readI32()
		if err != nil {
			return newError(KindMalformedIL, "decode BrTarget", err)
		}
		ins.Operand.rawBranch = int32(cur.pos) + v
		ins.Operand.hasRawBranch = true
		return nil

	case OperandInlineSwitch:
		n, err := cur.readU32()
		if err != nil {
			return newError(KindMalformedIL, "decode InlineSwitch count", err)
		}
		base := int32(cur.pos) + int32(n)*4
		raw := make([]int32, n)
		for i := range raw {
			d, err := cur.readI32()
			if err != nil {
				return newError(KindMalformedIL, "decode InlineSwitch target", err)
			}
			raw[i] = base + d
		}
		ins.Operand.rawSwitch = raw
		return nil

	case OperandShortInlineI:
		if op.Name == "ldc.i4.s" {
			v, err := cur.readI8()
			if err != nil {
				return newError(KindMalformedIL, "decode ShortInlineI", err)
			}
			ins.Operand.Int64 = int64(v)
			return nil
		}
		v, err := cur.readU8()
		if err != nil {
			return newError(KindMalformedIL, "decode ShortInlineI", err)
		}
		ins.Operand.Int64 = int64(v)
		return nil

	case OperandInlineI:
		v, err := cur.readI32()
		if err != nil {
			return newError(KindMalformedIL, "decode InlineI", err)
		}
		ins.Operand.Int64 = int64(v)
		return nil

	case OperandInlineI8:
		v, err := cur.readI64()
		if err != nil {
			return newError(KindMalformedIL, "decode InlineI8", err)
		}
		ins.Operand.Int64 = v
		return nil

	case OperandShortInlineR:
		v, err := cur.readF32()
		if err != nil {
			return newError(KindMalformedIL, "decode ShortInlineR", err)
		}
		ins.Operand.Float64 = float64(v)
		return nil

	case OperandInlineR:
		v, err := cur.readF64()
		if err != nil {
			return newError(KindMalformedIL, "decode InlineR", err)
		}
		ins.Operand.Float64 = v
		return nil

	case OperandInlineSig:
		tok, err := cur.readU32()
		if err != nil {
			return newError(KindMalformedIL, "decode InlineSig", err)
		}
		sig, err := provider.ResolveSignature(tok)
		if err != nil {
			return newError(KindTokenResolution, "resolve signature", err)
		}
		ins.Operand.Signature = sig
		return nil

	case OperandInlineString:
		tok, err := cur.readU32()
		if err != nil {
			return newError(KindMalformedIL, "decode InlineString", err)
		}
		s, err := provider.ResolveString(tok)
		if err != nil {
			return newError(KindTokenResolution, "resolve string", err)
		}
		ins.Operand.String = s
		return nil

	case OperandInlineTok, OperandInlineType, OperandInlineMethod, OperandInlineField:
		tok, err := cur.readU32()
		if err != nil {
			return newError(KindMalformedIL, "decode member token", err)
		}
		member, err := provider.ResolveMember(tok, method.TypeGenericArgs(), method.MethodGenericArgs())
		if err != nil {
			return newError(KindTokenResolution, "resolve member", err)
		}
		ins.Operand.Member = member
		return nil

	case OperandInlineVar:
		idx, err := cur.readI16()
		if err != nil {
			return newError(KindMalformedIL, "decode InlineVar", err)
		}
		return resolveVarOperand(method, op, int(idx), ins)

	case OperandShortInlineVar:
		idx, err := cur.readU8()
		if err != nil {
			return newError(KindMalformedIL, "decode ShortInlineVar", err)
		}
		return resolveVarOperand(method, op, int(idx), ins)
	}

	return newError(KindMalformedIL, "decode operand", errors.New("unsupported operand kind"))
}

// resolveVarOperand dispatches an InlineVar/ShortInlineVar index to a
// local or a parameter, per spec.md §4.3's "mnemonic contains loc" rule.
// Index 0 on an instance method's parameter path denotes the implicit
// receiver, which carries no declared Param entry.
func resolveVarOperand(method Method, op *opcode, idx int, ins *Instruction) error {
	if op.isLocalVarOpcode() {
		locals := method.Locals()
		if idx < 0 || idx >= len(locals) {
			return newError(KindMalformedIL, "resolve local operand", errShortRead)
		}
		ins.Operand.Local = locals[idx]
		return nil
	}

	pidx := idx
	if !method.IsStatic() {
		pidx--
	}
	if pidx == -1 {
		ins.Operand.Param = &Param{Index: -1, Name: "this"}
		return nil
	}
	params := method.Params()
	if pidx < 0 || pidx >= len(params) {
		return newError(KindMalformedIL, "resolve parameter operand", errShortRead)
	}
	ins.Operand.Param = params[pidx]
	return nil
}

// resolveBranches replaces every raw pre-resolution offset recorded
// during decodeOperand with the instruction occupying that offset,
// found by binary search over the offset-ordered stream, per
// spec.md §4.3's post-decode resolution pass.
func resolveBranches(instrs []*Instruction) {
	find := func(off int32) *Instruction {
		if off < 0 {
			return nil
		}
		lo, hi := 0, len(instrs)
		for lo < hi {
			mid := (lo + hi) / 2
			if int32(instrs[mid].Offset) < off {
				lo = mid + 1
			} else {
				hi = mid
			}
		}
		if lo < len(instrs) && int32(instrs[lo].Offset) == off {
			return instrs[lo]
		}
		return nil
	}

	for _, ins := range instrs {
		if ins.Operand.hasRawBranch {
			ins.Operand.Branch = find(ins.Operand.rawBranch)
			ins.Operand.hasRawBranch = false
		}
		if ins.Operand.rawSwitch != nil {
			targets := make([]*Instruction, len(ins.Operand.rawSwitch))
			for i, raw := range ins.Operand.rawSwitch {
				targets[i] = find(raw)
			}
			ins.Operand.Switch = targets
			ins.Operand.rawSwitch = nil
		}
	}
}
