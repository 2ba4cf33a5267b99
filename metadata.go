package cil

import "strings"

// AssemblyRef identifies the assembly a type belongs to.
type AssemblyRef struct {
	FullName string
}

// ShortName returns the first comma-separated field of the assembly's
// full name, e.g. "mscorlib" from "mscorlib, Version=4.0.0.0, ...".
func (a AssemblyRef) ShortName() string {
	if i := strings.IndexByte(a.FullName, ','); i >= 0 {
		return a.FullName[:i]
	}
	return a.FullName
}

// Layout enumerates the class-layout kinds a TypeDef can declare.
type Layout int

const (
	LayoutAuto Layout = iota
	LayoutSequential
	LayoutExplicit
)

// StringFormat enumerates the character-set marshaling kinds a TypeDef
// can declare.
type StringFormat int

const (
	StringFormatAnsi StringFormat = iota
	StringFormatUnicode
	StringFormatAuto
)

// Visibility enumerates type visibility (only public/private matter to
// the header emitter; nested visibilities collapse to private for
// rendering purposes, matching the reference tool's "public or
// private" rule in spec.md §4.9).
type Visibility int

const (
	VisibilityPrivate Visibility = iota
	VisibilityPublic
)

// TypeRef is a reference to a type: a class, interface, value type,
// array, byref, or open generic parameter. The metadata provider
// resolves tokens into these.
type TypeRef interface {
	FullName() string
	Namespace() string
	Name() string
	Assembly() AssemblyRef

	IsClass() bool
	IsInterface() bool
	IsValueType() bool
	IsEnum() bool

	IsArray() bool
	ArrayRank() int
	IsByRef() bool
	// ElementType returns the array element type or byref referent.
	// Valid only when IsArray() or IsByRef() is true.
	ElementType() TypeRef

	IsGenericType() bool
	GenericArguments() []TypeRef
	IsGenericParameter() bool

	BaseType() TypeRef
	Interfaces() []TypeRef
	GenericParameters() []GenericParam

	Visibility() Visibility
	IsAbstract() bool
	IsSealed() bool
	Layout() Layout
	StringFormat() StringFormat
	IsBeforeFieldInit() bool
}

// GenericParam describes one generic type or method parameter.
type GenericParam struct {
	Name                string
	Position            int
	Covariant           bool
	Contravariant       bool
	DefaultConstructor  bool // ".ctor" constraint
	ReferenceTypeOnly   bool // "class" constraint
	ValueTypeOnly       bool // "valuetype" constraint
	Constraints         []TypeRef
}

// Member is the closed sum of things a token can resolve to: a field,
// a method (including constructors), or a type.
type Member interface{ isMember() }

// FieldMember is a resolved field token.
type FieldMember struct {
	DeclaringType       TypeRef
	Name                string
	FieldType           TypeRef
	IsCompilerGenerated bool
}

func (*FieldMember) isMember() {}

// MethodMember is a resolved method or constructor token.
type MethodMember struct {
	DeclaringType       TypeRef
	Name                string
	ReturnType          TypeRef // nil for constructors (rendered "void")
	ParamTypes          []TypeRef
	IsStatic            bool
	IsCompilerGenerated bool
}

func (*MethodMember) isMember() {}

func (m *MethodMember) IsConstructor() bool { return m.Name == ".ctor" || m.Name == ".cctor" }

// TypeMember is a resolved type token (InlineType / some InlineTok).
type TypeMember struct {
	Type TypeRef
}

func (*TypeMember) isMember() {}

// SignatureHandle is an opaque, resolved standalone-signature (used by
// calli). Rendering falls back to its String() form, per spec.md §4.5's
// "any other kind" rule.
type SignatureHandle interface {
	String() string
}

// DefaultValueKind tags the active field of a DefaultValue.
type DefaultValueKind int

const (
	DefaultNone DefaultValueKind = iota
	DefaultString
	DefaultInt8
	DefaultInt16
	DefaultInt32
	DefaultInt64
	DefaultUInt8
	DefaultUInt16
	DefaultUInt32
	DefaultUInt64
	DefaultFloat32
	DefaultFloat64
	DefaultBool
	DefaultChar
	DefaultNullRef
	DefaultOther
)

// DefaultValue is a parameter or field's declared default/constant
// value, per spec.md §4.7 and §4.8.
type DefaultValue struct {
	Kind      DefaultValueKind
	String    string
	Int64     int64
	Uint64    uint64
	Float64   float64
	TypeName  string // the aliased type name, for DefaultOther rendering
	OtherText string
}

// Param is one declared method parameter.
type Param struct {
	Index    int // 0-based declared position, independent of receiver
	Name     string
	Type     TypeRef
	Out      bool
	Default  *DefaultValue
}

// Local is one declared method local variable.
type Local struct {
	Index int
	Type  TypeRef
}

// CodeType enumerates a method's implementation kind.
type CodeType int

const (
	CodeTypeIL CodeType = iota
	CodeTypeNative
	CodeTypeOPTIL
	CodeTypeRuntime
)

// ImplFlags is a method's implementation-flags pair, per spec.md §4.7.
type ImplFlags struct {
	CodeType CodeType
	Managed  bool
}

// ClauseKind enumerates the exception-handling clause kinds of
// spec.md §3.
type ClauseKind int

const (
	ClauseCatch ClauseKind = iota
	ClauseFilter
	ClauseFinally
	ClauseFault
)

// ExceptionClause is one flat row of a method's exception-handling
// table, as input to the region reconstructor (C8).
type ExceptionClause struct {
	Kind          ClauseKind
	TryOffset     int
	TryLength     int
	HandlerOffset int
	HandlerLength int
	FilterOffset  int      // valid only when Kind == ClauseFilter
	CatchType     TypeRef  // valid only when Kind == ClauseCatch
}

// CustomAttributeData describes one applied custom attribute. Decoding
// the constructor-argument blob into typed values is out of scope
// (spec.md §1's non-goals); only whether the blob carries any argument
// bytes is tracked, to resolve the "constructor-less attribute" open
// question (spec.md §9).
type CustomAttributeData struct {
	Constructor *MethodMember
	HasArgBytes bool
}

// Method is a method or constructor declared on a type, as consumed by
// the decoder (C7) and the method emitter (C9).
type Method interface {
	Name() string
	DeclaringType() TypeRef
	ReturnType() TypeRef // nil for constructors
	IsConstructor() bool
	IsStatic() bool
	IsVirtual() bool
	IsAbstract() bool
	AttributeTokens() []string // lower-case, e.g. "public", "hidebysig"
	Implementation() ImplFlags

	GenericParameters() []GenericParam
	Params() []*Param
	Locals() []*Local
	CustomAttributes() []CustomAttributeData

	HasBody() bool
	ILBytes() ([]byte, error)
	MaxStack() int
	ExceptionClauses() []ExceptionClause

	TypeGenericArgs() []TypeRef
	MethodGenericArgs() []TypeRef
}

// Field is a field declared on a type, as consumed by the field
// emitter (C10).
type Field interface {
	Name() string
	DeclaringType() TypeRef
	FieldType() TypeRef
	AttributeTokens() []string
	IsStatic() bool
	IsLiteral() bool
	IsCompilerGenerated() bool
	ConstantValue() (*DefaultValue, bool)
	CustomAttributes() []CustomAttributeData
}

// Property is a property declared on a type.
type Property interface {
	Name() string
	DeclaringType() TypeRef
	PropertyType() TypeRef
	IsStatic() bool
	Getter() Method // nil if absent
	Setter() Method // nil if absent
	CustomAttributes() []CustomAttributeData
}

// Event is an event declared on a type.
type Event interface {
	Name() string
	DeclaringType() TypeRef
	HandlerType() TypeRef
	AddOn() Method
	RemoveOn() Method
	CustomAttributes() []CustomAttributeData
}

// Provider is the metadata service contract: everything the core
// decoder and emitters need, and nothing about where it comes from.
// spec.md §6 names this the external collaborator; clrfile implements
// it by reading a real PE/CLR image.
type Provider interface {
	ResolveMember(token uint32, typeGenerics, methodGenerics []TypeRef) (Member, error)
	ResolveString(token uint32) (string, error)
	ResolveSignature(token uint32) (SignatureHandle, error)

	Fields(t TypeRef) []Field
	Properties(t TypeRef) []Property
	Events(t TypeRef) []Event
	Methods(t TypeRef) []Method

	// CurrentAssembly is the assembly the metadata provider was opened
	// against — the "referring assembly" type-name rendering compares
	// every other type's assembly to.
	CurrentAssembly() AssemblyRef
}
