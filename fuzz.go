package cil

// Fuzz is a legacy go-fuzz entry point exercising the decoder directly
// against arbitrary byte input, bypassing any real metadata provider.
func Fuzz(data []byte) int {
	instrs, err := DecodeMethodBody(fuzzProvider{}, fuzzMethod{il: data})
	if err != nil {
		return 0
	}
	_ = instrs
	return 1
}

type fuzzMethod struct {
	il []byte
}

func (fuzzMethod) Name() string                        { return "Fuzz" }
func (fuzzMethod) DeclaringType() TypeRef               { return fuzzType{} }
func (fuzzMethod) ReturnType() TypeRef                  { return fuzzType{} }
func (fuzzMethod) IsConstructor() bool                  { return false }
func (fuzzMethod) IsStatic() bool                       { return true }
func (fuzzMethod) IsVirtual() bool                      { return false }
func (fuzzMethod) IsAbstract() bool                     { return false }
func (fuzzMethod) AttributeTokens() []string            { return nil }
func (fuzzMethod) Implementation() ImplFlags            { return ImplFlags{CodeType: CodeTypeIL, Managed: true} }
func (fuzzMethod) GenericParameters() []GenericParam    { return nil }
func (fuzzMethod) Params() []*Param                     { return nil }
func (fuzzMethod) Locals() []*Local                     { return nil }
func (fuzzMethod) CustomAttributes() []CustomAttributeData { return nil }
func (fuzzMethod) HasBody() bool                        { return true }
func (f fuzzMethod) ILBytes() ([]byte, error)           { return f.il, nil }
func (fuzzMethod) MaxStack() int                        { return 8 }
func (fuzzMethod) ExceptionClauses() []ExceptionClause  { return nil }
func (fuzzMethod) TypeGenericArgs() []TypeRef           { return nil }
func (fuzzMethod) MethodGenericArgs() []TypeRef         { return nil }

type fuzzProvider struct{}

func (fuzzProvider) ResolveMember(uint32, []TypeRef, []TypeRef) (Member, error) {
	return &TypeMember{Type: fuzzType{}}, nil
}
func (fuzzProvider) ResolveString(uint32) (string, error)          { return "", nil }
func (fuzzProvider) ResolveSignature(uint32) (SignatureHandle, error) { return fuzzSignature{}, nil }
func (fuzzProvider) Fields(TypeRef) []Field                        { return nil }
func (fuzzProvider) Properties(TypeRef) []Property                 { return nil }
func (fuzzProvider) Events(TypeRef) []Event                        { return nil }
func (fuzzProvider) Methods(TypeRef) []Method                      { return nil }
func (fuzzProvider) CurrentAssembly() AssemblyRef                  { return AssemblyRef{FullName: "fuzz"} }

type fuzzSignature struct{}

func (fuzzSignature) String() string { return "<signature>" }

type fuzzType struct{}

func (fuzzType) FullName() string             { return "Fuzz.Type" }
func (fuzzType) Namespace() string            { return "Fuzz" }
func (fuzzType) Name() string                 { return "Type" }
func (fuzzType) Assembly() AssemblyRef        { return AssemblyRef{FullName: "fuzz"} }
func (fuzzType) IsClass() bool                { return true }
func (fuzzType) IsInterface() bool            { return false }
func (fuzzType) IsValueType() bool            { return false }
func (fuzzType) IsEnum() bool                 { return false }
func (fuzzType) IsArray() bool                { return false }
func (fuzzType) ArrayRank() int               { return 0 }
func (fuzzType) IsByRef() bool                { return false }
func (fuzzType) ElementType() TypeRef         { return nil }
func (fuzzType) IsGenericType() bool          { return false }
func (fuzzType) GenericArguments() []TypeRef  { return nil }
func (fuzzType) IsGenericParameter() bool     { return false }
func (fuzzType) BaseType() TypeRef            { return nil }
func (fuzzType) Interfaces() []TypeRef        { return nil }
func (fuzzType) GenericParameters() []GenericParam { return nil }
func (fuzzType) Visibility() Visibility       { return VisibilityPublic }
func (fuzzType) IsAbstract() bool             { return false }
func (fuzzType) IsSealed() bool               { return false }
func (fuzzType) Layout() Layout               { return LayoutAuto }
func (fuzzType) StringFormat() StringFormat   { return StringFormatAnsi }
func (fuzzType) IsBeforeFieldInit() bool      { return false }
