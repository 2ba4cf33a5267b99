package cil

import "strings"

// aliasMap is the fully-qualified-name to keyword-alias table of
// spec.md §4.4.
var aliasMap = map[string]string{
	"System.SByte":   "int8",
	"System.Int16":   "int16",
	"System.Int32":   "int32",
	"System.Int64":   "int64",
	"System.Byte":    "uint8",
	"System.UInt16":  "uint16",
	"System.UInt32":  "uint32",
	"System.UInt64":  "uint64",
	"System.Single":  "float32",
	"System.Double":  "float64",
	"System.String":  "string",
	"System.Char":    "char",
	"System.Boolean": "bool",
	"System.Void":    "void",
	"System.Object":  "object",
}

var reservedParamLexemes = map[string]bool{
	"object": true,
	"value":  true,
	"method": true,
}

// quoteName single-quotes name when required, per spec.md §4.5/§4.7/§4.8:
// compiler-generated member names, and reserved-lexeme parameter names.
func quoteName(name string, mustQuote bool) string {
	if mustQuote {
		return "'" + name + "'"
	}
	return name
}

func arraySuffix(rank int) string {
	if rank <= 1 {
		return "[]"
	}
	return "[" + strings.Repeat("0...,", rank-1) + "0...]"
}

// renderTypeName implements the type-name rendering rules of
// spec.md §4.4, in order: byref, array, alias, assembly-qualification,
// generic instantiation, fully-qualified name.
func renderTypeName(current AssemblyRef, t TypeRef, useAliases, useAliasOnParams bool) string {
	if t.IsByRef() {
		return renderTypeName(current, t.ElementType(), useAliases, useAliasOnParams) + "&"
	}
	if t.IsArray() {
		elem := renderTypeName(current, t.ElementType(), useAliases || useAliasOnParams, useAliasOnParams)
		return elem + arraySuffix(t.ArrayRank())
	}
	if useAliases {
		if alias, ok := aliasMap[t.FullName()]; ok {
			return alias
		}
	}
	prefix := ""
	if t.Assembly().FullName != current.FullName {
		prefix = "[" + t.Assembly().ShortName() + "]"
	}
	if t.IsGenericType() {
		args := t.GenericArguments()
		rendered := make([]string, len(args))
		for i, a := range args {
			rendered[i] = renderTypeName(current, a, useAliases, useAliasOnParams)
		}
		return prefix + t.FullName() + "<" + strings.Join(rendered, ",") + ">"
	}
	return prefix + t.FullName()
}

// typeIdentifier renders the leading "class " marker of spec.md §4.4's
// "Type identifier" rule. For array types the rule applies to the
// element type.
func typeIdentifier(current AssemblyRef, t TypeRef, inMemberPosition bool) string {
	target := t
	if target.IsArray() {
		target = target.ElementType()
	}
	if target.IsGenericParameter() {
		return ""
	}
	if !target.IsClass() && !target.IsInterface() {
		return ""
	}
	switch target.FullName() {
	case "System.Object", "System.String", "System.Void", "System.ValueType":
		return ""
	}
	if inMemberPosition && target.Assembly().FullName == current.FullName {
		return ""
	}
	return "class "
}

// formatGenericParam renders one generic parameter per spec.md §4.4's
// "Generic-parameter list" rule.
func formatGenericParam(current AssemblyRef, gp GenericParam) string {
	var tokens []string
	if gp.DefaultConstructor {
		tokens = append(tokens, ".ctor")
	}
	if gp.ValueTypeOnly {
		tokens = append(tokens, "valuetype")
	}
	if gp.ReferenceTypeOnly {
		tokens = append(tokens, "class")
	}
	if gp.Covariant {
		tokens = append(tokens, "+")
	}
	if gp.Contravariant {
		tokens = append(tokens, "-")
	}
	if len(gp.Constraints) > 0 {
		constraints := make([]string, len(gp.Constraints))
		for i, c := range gp.Constraints {
			constraints[i] = typeIdentifier(current, c, false) + renderTypeName(current, c, true, true)
		}
		tokens = append(tokens, "("+strings.Join(constraints, ", ")+")")
	}
	tokens = append(tokens, gp.Name)
	return strings.Join(tokens, " ")
}

// renderGenericParamList renders a type or method's generic-parameter
// clause, or "" when there are none.
func renderGenericParamList(current AssemblyRef, params []GenericParam) string {
	if len(params) == 0 {
		return ""
	}
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = formatGenericParam(current, p)
	}
	return "<" + strings.Join(parts, ", ") + ">"
}
