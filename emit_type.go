package cil

import "strings"

// DisassembledType is the aggregate result of disassembling a type:
// its header plus four ordered sequences of rendered member text, in
// the order the metadata provider enumerated them. Immutable once
// constructed, per spec.md §3.
type DisassembledType struct {
	Type       TypeRef
	Header     string
	Fields     []string
	Properties []string
	Events     []string
	Methods    []string
}

func buildClassAttrTokens(t TypeRef) []string {
	var tokens []string
	if t.IsEnum() {
		tokens = append(tokens, "enum")
	} else if t.IsValueType() {
		tokens = append(tokens, "value")
	}
	if t.IsInterface() {
		tokens = append(tokens, "interface")
	}
	if t.Visibility() == VisibilityPublic {
		tokens = append(tokens, "public")
	} else {
		tokens = append(tokens, "private")
	}
	switch t.Layout() {
	case LayoutAuto:
		tokens = append(tokens, "auto")
	case LayoutSequential:
		tokens = append(tokens, "sequential")
	case LayoutExplicit:
		tokens = append(tokens, "explicit")
	}
	if t.StringFormat() == StringFormatAnsi {
		tokens = append(tokens, "ansi")
	}
	if t.IsAbstract() {
		tokens = append(tokens, "abstract")
	}
	if t.IsSealed() {
		tokens = append(tokens, "sealed")
	}
	if t.IsBeforeFieldInit() {
		tokens = append(tokens, "beforefieldinit")
	}
	return tokens
}

func classSignatureLines(current AssemblyRef, t TypeRef) []string {
	tokens := buildClassAttrTokens(t)
	lines := []string{".class " + strings.Join(tokens, " ") + " " + t.FullName() + renderGenericParamList(current, t.GenericParameters())}

	if !t.IsInterface() {
		if base := t.BaseType(); base != nil {
			lines = append(lines, "extends "+renderTypeName(current, base, false, false))
		}
	}
	if ifaces := t.Interfaces(); len(ifaces) > 0 {
		parts := make([]string, len(ifaces))
		for i, iface := range ifaces {
			parts[i] = renderTypeName(current, iface, false, false)
		}
		lines = append(lines, "implements "+strings.Join(parts, ", "))
	}
	return lines
}

// DisassembleTypeHeader renders the .class header block in isolation:
// the attribute/name line, the optional extends and implements lines,
// and an empty brace body, per spec.md §4.9.
func DisassembleTypeHeader(current AssemblyRef, t TypeRef) (string, error) {
	w := newWriter(0)
	for _, l := range classSignatureLines(current, t) {
		w.appendLine(l)
	}
	w.appendLine("{")
	w.appendLine("}")
	return w.String(), nil
}

func declaredOnType(m Method, t TypeRef) bool {
	return m.DeclaringType().FullName() == t.FullName()
}

// Disassemble renders a complete type: its header plus every field,
// property, event, and method declared directly on it, per spec.md §6.
// Inherited methods are excluded; only IL- or Runtime-implemented
// methods are emitted.
func Disassemble(current AssemblyRef, provider Provider, t TypeRef) (*DisassembledType, error) {
	header, err := DisassembleTypeHeader(current, t)
	if err != nil {
		return nil, err
	}

	var fields []string
	for _, f := range provider.Fields(t) {
		s, err := DisassembleField(current, f)
		if err != nil {
			return nil, err
		}
		fields = append(fields, s)
	}

	var properties []string
	for _, p := range provider.Properties(t) {
		s, err := DisassembleProperty(current, p)
		if err != nil {
			return nil, err
		}
		properties = append(properties, s)
	}

	var events []string
	for _, e := range provider.Events(t) {
		s, err := DisassembleEvent(current, e)
		if err != nil {
			return nil, err
		}
		events = append(events, s)
	}

	var methods []string
	for _, m := range provider.Methods(t) {
		if !declaredOnType(m, t) {
			continue
		}
		impl := m.Implementation().CodeType
		if impl != CodeTypeIL && impl != CodeTypeRuntime {
			continue
		}
		s, err := DisassembleMethod(current, provider, m)
		if err != nil {
			return nil, err
		}
		methods = append(methods, s)
	}

	return &DisassembledType{
		Type:       t,
		Header:     header,
		Fields:     fields,
		Properties: properties,
		Events:     events,
		Methods:    methods,
	}, nil
}
