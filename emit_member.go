package cil

import (
	"fmt"
	"strings"
)

// methodRefText renders a method/accessor reference the way an
// operand's method resolution would, for use in .get/.set/.addon/
// .removeon lines.
func methodRefText(current AssemblyRef, m Method) string {
	params := m.Params()
	paramTypes := make([]TypeRef, len(params))
	for i, p := range params {
		paramTypes[i] = p.Type
	}
	mm := &MethodMember{
		DeclaringType: m.DeclaringType(),
		Name:          m.Name(),
		ReturnType:    m.ReturnType(),
		ParamTypes:    paramTypes,
		IsStatic:      m.IsStatic(),
	}
	if mm.IsConstructor() {
		return ctorOperandText(current, mm, true)
	}
	return methodOperandText(current, mm, true)
}

// DisassembleField renders one .field directive, per spec.md §4.8.
func DisassembleField(current AssemblyRef, f Field) (string, error) {
	w := newWriter(4)

	attrs := make([]string, len(f.AttributeTokens()))
	for i, t := range f.AttributeTokens() {
		attrs[i] = strings.ToLower(t)
	}
	if f.DeclaringType().IsValueType() {
		attrs = append(attrs, "valuetype")
	}

	typeName := renderTypeName(current, f.FieldType(), true, true)
	name := quoteName(f.Name(), f.IsCompilerGenerated())

	line := ".field"
	if len(attrs) > 0 {
		line += " " + strings.Join(attrs, " ")
	}
	line += " " + typeName + " " + name

	if f.IsLiteral() {
		if cv, ok := f.ConstantValue(); ok {
			line += " = " + formatDefaultValue(cv)
		}
	}
	w.appendLine(line)

	for _, ca := range f.CustomAttributes() {
		w.appendLine(formatCustomAttribute(current, ca))
	}
	return w.String(), nil
}

// DisassembleProperty renders one .property block, per spec.md §4.8.
func DisassembleProperty(current AssemblyRef, p Property) (string, error) {
	w := newWriter(4)

	instanceTok := ""
	if !p.IsStatic() {
		instanceTok = "instance "
	}
	ident := typeIdentifier(current, p.PropertyType(), true)
	typeName := renderTypeName(current, p.PropertyType(), true, true)

	w.appendLine(fmt.Sprintf(".property %s%s%s %s()", instanceTok, ident, typeName, p.Name()))
	w.appendLine("{")
	w.indent()

	for _, ca := range p.CustomAttributes() {
		w.appendLine(formatCustomAttribute(current, ca))
	}
	if g := p.Getter(); g != nil {
		w.appendLine(".get " + methodRefText(current, g))
	}
	if s := p.Setter(); s != nil {
		w.appendLine(".set " + methodRefText(current, s))
	}

	w.unindent()
	w.appendLine("}")
	return w.String(), nil
}

// DisassembleEvent renders one .event block, per spec.md §4.8.
func DisassembleEvent(current AssemblyRef, e Event) (string, error) {
	w := newWriter(4)

	typeName := renderTypeName(current, e.HandlerType(), false, false)
	w.appendLine(fmt.Sprintf(".event %s %s", typeName, e.Name()))
	w.appendLine("{")
	w.indent()

	for _, ca := range e.CustomAttributes() {
		w.appendLine(formatCustomAttribute(current, ca))
	}
	if a := e.AddOn(); a != nil {
		w.appendLine(".addon " + methodRefText(current, a))
	}
	if r := e.RemoveOn(); r != nil {
		w.appendLine(".removeon " + methodRefText(current, r))
	}

	w.unindent()
	w.appendLine("}")
	return w.String(), nil
}
