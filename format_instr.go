package cil

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

var (
	errUnresolvedMember  = errors.New("operand member has no known rendering")
	errUnsupportedOperand = errors.New("operand kind has no rendering rule")
)

// instrLabel renders an instruction's byte offset as its IL_xxxx label.
func instrLabel(offset int) string {
	return fmt.Sprintf("IL_%04x", offset)
}

func branchLabel(from int, target *Instruction) string {
	if target == nil {
		// spec.md §9: the reference tool's null-target rendering is
		// treated as a bug; IL_???? is the chosen explicit placeholder.
		Logger().Debug("branch target resolved to null", zap.Int("from_offset", from))
		return "IL_????"
	}
	return instrLabel(target.Offset)
}

func switchOperandText(from int, targets []*Instruction) string {
	labels := make([]string, len(targets))
	for i, t := range targets {
		labels[i] = branchLabel(from, t)
	}
	return "(" + strings.Join(labels, ",") + ")"
}

func paramTypeList(current AssemblyRef, types []TypeRef) string {
	rendered := make([]string, len(types))
	for i, t := range types {
		rendered[i] = renderTypeName(current, t, true, true)
	}
	return strings.Join(rendered, ",")
}

func fieldOperandText(current AssemblyRef, fm *FieldMember) string {
	ident := typeIdentifier(current, fm.FieldType, true)
	typeName := renderTypeName(current, fm.FieldType, true, true)
	declName := renderTypeName(current, fm.DeclaringType, false, false)
	name := quoteName(fm.Name, fm.IsCompilerGenerated)
	return ident + typeName + " " + declName + "::" + name
}

func ctorOperandText(current AssemblyRef, mm *MethodMember, callLike bool) string {
	prefix := ""
	if callLike && !mm.IsStatic {
		prefix = "instance "
	}
	declIdent := typeIdentifier(current, mm.DeclaringType, true)
	declName := renderTypeName(current, mm.DeclaringType, false, false)
	params := paramTypeList(current, mm.ParamTypes)
	return prefix + "void " + declIdent + declName + "::" + mm.Name + "(" + params + ")"
}

func methodOperandText(current AssemblyRef, mm *MethodMember, callLike bool) string {
	prefix := ""
	if callLike && !mm.IsStatic {
		prefix = "instance "
	}
	retIdent, retName := "", "void"
	if mm.ReturnType != nil {
		retIdent = typeIdentifier(current, mm.ReturnType, true)
		retName = renderTypeName(current, mm.ReturnType, true, true)
	}
	declName := renderTypeName(current, mm.DeclaringType, false, false)
	name := quoteName(mm.Name, mm.IsCompilerGenerated)
	params := paramTypeList(current, mm.ParamTypes)
	return prefix + retIdent + retName + " " + declName + "::" + name + "(" + params + ")"
}

func memberOperandText(current AssemblyRef, ins *Instruction) (string, error) {
	switch v := ins.Operand.Member.(type) {
	case *FieldMember:
		return fieldOperandText(current, v), nil
	case *MethodMember:
		if v.IsConstructor() {
			return ctorOperandText(current, v, ins.isCallLike()), nil
		}
		return methodOperandText(current, v, ins.isCallLike()), nil
	case *TypeMember:
		return renderTypeName(current, v.Type, false, false), nil
	}
	return "", newError(KindMalformedIL, "operandText", errUnresolvedMember)
}

func localOrParamOperandText(ins *Instruction) string {
	if ins.Operand.Local != nil {
		return fmt.Sprintf("V_%d", ins.Operand.Local.Index)
	}
	if p := ins.Operand.Param; p != nil {
		if p.Name != "" {
			return p.Name
		}
		return fmt.Sprintf("A_%d", p.Index)
	}
	return ""
}

// operandText renders an instruction's operand per spec.md §4.5's
// per-operand-kind rules.
func operandText(current AssemblyRef, ins *Instruction) (string, error) {
	switch ins.Opcode.Operand {
	case OperandNone:
		return "", nil
	case OperandShortBrTarget, OperandBrTarget:
		return branchLabel(ins.Offset, ins.Operand.Branch), nil
	case OperandInlineSwitch:
		return switchOperandText(ins.Offset, ins.Operand.Switch), nil
	case OperandInlineString:
		return "\"" + ins.Operand.String + "\"", nil
	case OperandInlineTok, OperandInlineType, OperandInlineMethod, OperandInlineField:
		return memberOperandText(current, ins)
	case OperandInlineSig:
		if ins.Operand.Signature != nil {
			return ins.Operand.Signature.String(), nil
		}
		return "", nil
	case OperandInlineVar, OperandShortInlineVar:
		return localOrParamOperandText(ins), nil
	case OperandShortInlineI, OperandInlineI, OperandInlineI8:
		return strconv.FormatInt(ins.Operand.Int64, 10), nil
	case OperandShortInlineR:
		return formatG9(float32(ins.Operand.Float64)), nil
	case OperandInlineR:
		return formatG17(ins.Operand.Float64), nil
	}
	return "", newError(KindMalformedIL, "operandText", errUnsupportedOperand)
}

// computeMaxSpacing is the whole-body padding basis of spec.md §4.5:
// the longest "label: mnemonic" prefix among all of a method's
// instructions.
func computeMaxSpacing(instrs []*Instruction) int {
	max := 0
	for _, ins := range instrs {
		l := len(instrLabel(ins.Offset)) + len(": ") + len(ins.Opcode.Name)
		if l > max {
			max = l
		}
	}
	return max
}

// formatInstructionLine renders one instruction's full text (label,
// mnemonic, aligned operand), without a trailing newline.
func formatInstructionLine(current AssemblyRef, ins *Instruction, maxSpacing int) (string, error) {
	head := instrLabel(ins.Offset) + ": " + ins.Opcode.Name
	if ins.Opcode.Operand == OperandNone {
		return head, nil
	}
	operand, err := operandText(current, ins)
	if err != nil {
		return "", err
	}
	pad := maxSpacing + 4 - len(head)
	if pad < 1 {
		pad = 1
	}
	return head + strings.Repeat(" ", pad) + operand, nil
}
