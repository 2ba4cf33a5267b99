package cil

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
)

func filterMethodAttrTokens(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		lt := strings.ToLower(t)
		if lt == "privatescope" || lt == "vtablelayoutmask" {
			continue
		}
		out = append(out, lt)
	}
	return out
}

func implFlagsText(f ImplFlags) string {
	var tok string
	switch f.CodeType {
	case CodeTypeIL:
		tok = "cil"
	case CodeTypeNative:
		tok = "native"
	case CodeTypeOPTIL:
		tok = "optil"
	case CodeTypeRuntime:
		tok = "runtime"
	}
	if f.Managed {
		tok += " managed"
	}
	return tok
}

// formatDefaultValue renders a parameter or field default/constant
// value per spec.md §4.7's width-appropriate rules.
func formatDefaultValue(dv *DefaultValue) string {
	switch dv.Kind {
	case DefaultString:
		return "\"" + dv.String + "\""
	case DefaultInt8:
		return "int8(" + formatHexWidth(uint64(uint8(dv.Int64)), 2) + ")"
	case DefaultInt16:
		return "int16(" + formatHexWidth(uint64(uint16(dv.Int64)), 4) + ")"
	case DefaultInt32:
		return "int32(" + formatHexWidth(uint64(uint32(dv.Int64)), 8) + ")"
	case DefaultInt64:
		return "int64(" + formatHexWidth(uint64(dv.Int64), 16) + ")"
	case DefaultUInt8:
		return "uint8(" + formatHexWidth(dv.Uint64, 2) + ")"
	case DefaultUInt16:
		return "uint16(" + formatHexWidth(dv.Uint64, 4) + ")"
	case DefaultUInt32:
		return "uint32(" + formatHexWidth(dv.Uint64, 8) + ")"
	case DefaultUInt64:
		return "uint64(" + formatHexWidth(dv.Uint64, 16) + ")"
	case DefaultFloat32:
		return "float32(" + formatG9(float32(dv.Float64)) + ")"
	case DefaultFloat64:
		return "float64(" + formatG17(dv.Float64) + ")"
	case DefaultBool:
		return "bool(" + formatHexWidth(uint64(dv.Int64&1), 2) + ")"
	case DefaultChar:
		return "char(" + formatHexWidth(dv.Uint64, 4) + ")"
	case DefaultNullRef:
		return "nullref"
	case DefaultOther:
		return dv.TypeName + "(" + dv.OtherText + ")"
	}
	return ""
}

// formatCustomAttribute renders a .custom pseudo-directive. Decoding
// the real constructor-argument blob is out of scope; per spec.md §9's
// resolved open question, the documented empty-prologue bytes stand in
// for every attribute's argument blob.
func formatCustomAttribute(current AssemblyRef, ca CustomAttributeData) string {
	if ca.Constructor == nil {
		return ".custom <unresolved attribute constructor>"
	}
	if !ca.HasArgBytes {
		Logger().Debug("custom attribute has no constructor argument bytes",
			zap.String("constructor", ca.Constructor.DeclaringType.FullName()+"::"+ca.Constructor.Name))
	}
	return ".custom " + ctorOperandText(current, ca.Constructor, true) + " = ( 01 00 00 00 )"
}

func renderParam(current AssemblyRef, p *Param) string {
	var flags []string
	if p.Default != nil {
		flags = append(flags, "[opt]")
	}
	if p.Out {
		flags = append(flags, "[out]")
	}
	s := ""
	if len(flags) > 0 {
		s = strings.Join(flags, " ") + " "
	}
	ident := typeIdentifier(current, p.Type, true)
	typeName := renderTypeName(current, p.Type, true, true)
	name := quoteName(p.Name, reservedParamLexemes[p.Name])
	return s + ident + typeName + " " + name
}

func renderParamList(current AssemblyRef, params []*Param) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = renderParam(current, p)
	}
	return strings.Join(parts, ", ")
}

// DisassembleMethod renders one method or constructor's full .method
// block: signature, custom attributes, default-value directives, code
// size, maxstack, locals, and the body interleaved with exception
// regions, per spec.md §4.7.
func DisassembleMethod(current AssemblyRef, provider Provider, m Method) (string, error) {
	w := newWriter(4)

	attrs := filterMethodAttrTokens(m.AttributeTokens())
	if !m.IsStatic() {
		attrs = append(attrs, "instance")
	}
	if m.IsVirtual() {
		attrs = append(attrs, "newslot")
	}

	var ret string
	if m.IsConstructor() {
		ret = "void"
	} else {
		ret = typeIdentifier(current, m.ReturnType(), true) + renderTypeName(current, m.ReturnType(), true, true)
	}

	sig := ".method "
	if len(attrs) > 0 {
		sig += strings.Join(attrs, " ") + " "
	}
	sig += ret + " " + m.Name() + renderGenericParamList(current, m.GenericParameters())
	sig += "(" + renderParamList(current, m.Params()) + ") "
	sig += implFlagsText(m.Implementation())

	w.appendLine(sig)
	w.appendLine("{")
	w.indent()

	for _, ca := range m.CustomAttributes() {
		w.appendLine(formatCustomAttribute(current, ca))
	}
	for i, p := range m.Params() {
		if p.Default != nil {
			w.appendLine(fmt.Sprintf(".param [%d] = %s", i+1, formatDefaultValue(p.Default)))
		}
	}

	instrs, err := DecodeMethodBody(provider, m)
	if err != nil {
		return "", err
	}

	codeSize := 0
	if len(instrs) > 0 {
		last := instrs[len(instrs)-1]
		codeSize = last.Offset + last.Opcode.Size
	}
	w.appendLine(fmt.Sprintf("// Code size  %d (0x%x)", codeSize, codeSize))
	w.appendLine(fmt.Sprintf(".maxstack %d", m.MaxStack()))

	if locals := m.Locals(); len(locals) > 0 {
		parts := make([]string, len(locals))
		for i, l := range locals {
			parts[i] = fmt.Sprintf("%s V_%d", renderTypeName(current, l.Type, true, true), i)
		}
		w.appendLine(".locals init (" + strings.Join(parts, ", ") + ")")
	}

	if err := emitMethodBody(w, current, instrs, m.ExceptionClauses()); err != nil {
		return "", err
	}

	w.unindent()
	w.appendLine("}")
	return w.String(), nil
}

func emitMethodBody(w *writer, current AssemblyRef, instrs []*Instruction, clauses []ExceptionClause) error {
	markers := ReconstructRegions(clauses)

	offsets := make(map[int]bool, len(markers)+len(instrs))
	for o := range markers {
		offsets[o] = true
	}
	byOffset := make(map[int]*Instruction, len(instrs))
	for _, ins := range instrs {
		offsets[ins.Offset] = true
		byOffset[ins.Offset] = ins
	}
	sorted := make([]int, 0, len(offsets))
	for o := range offsets {
		sorted = append(sorted, o)
	}
	sort.Ints(sorted)

	maxSpacing := computeMaxSpacing(instrs)

	for _, off := range sorted {
		for _, mk := range markers[off] {
			emitRegionMarker(w, current, mk)
		}
		if ins, ok := byOffset[off]; ok {
			line, err := formatInstructionLine(current, ins, maxSpacing)
			if err != nil {
				return err
			}
			w.appendLine(line)
		}
	}
	return nil
}

func emitRegionMarker(w *writer, current AssemblyRef, mk RegionMarker) {
	if mk.Side == RegionEnd {
		w.unindent()
		w.appendLine("}")
		return
	}
	switch mk.Kind {
	case RegionTry:
		w.appendLine(".try")
	case RegionCatch:
		w.appendLine("catch " + renderTypeName(current, mk.CatchType, false, false))
	case RegionFilter:
		w.appendLine("filter")
	case RegionFinally:
		w.appendLine("finally")
	case RegionFault:
		w.appendLine("fault")
	case RegionFilterCatch:
		// spec.md §4.7: FilterCatch's Begin marker has no header text.
	}
	w.appendLine("{")
	w.indent()
}
