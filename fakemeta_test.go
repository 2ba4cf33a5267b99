package cil

// fakeType is a minimal, fully-settable TypeRef used across this
// package's tests in place of a real metadata provider.
type fakeType struct {
	full   string
	ns     string
	name   string
	asm    AssemblyRef
	class  bool
	iface  bool
	value  bool
	enum   bool
	array  int // rank; 0 = not an array
	elem   TypeRef
	byref  bool
	generic bool
	args   []TypeRef
	genparam bool
	base   TypeRef
	ifaces []TypeRef
	gparams []GenericParam
	vis    Visibility
	abstract bool
	sealed bool
	layout Layout
	strfmt StringFormat
	bfi    bool
}

func (t *fakeType) FullName() string             { return t.full }
func (t *fakeType) Namespace() string            { return t.ns }
func (t *fakeType) Name() string                 { return t.name }
func (t *fakeType) Assembly() AssemblyRef        { return t.asm }
func (t *fakeType) IsClass() bool                { return t.class }
func (t *fakeType) IsInterface() bool            { return t.iface }
func (t *fakeType) IsValueType() bool            { return t.value }
func (t *fakeType) IsEnum() bool                 { return t.enum }
func (t *fakeType) IsArray() bool                { return t.array > 0 }
func (t *fakeType) ArrayRank() int               { return t.array }
func (t *fakeType) IsByRef() bool                { return t.byref }
func (t *fakeType) ElementType() TypeRef         { return t.elem }
func (t *fakeType) IsGenericType() bool          { return t.generic }
func (t *fakeType) GenericArguments() []TypeRef  { return t.args }
func (t *fakeType) IsGenericParameter() bool     { return t.genparam }
func (t *fakeType) BaseType() TypeRef            { return t.base }
func (t *fakeType) Interfaces() []TypeRef        { return t.ifaces }
func (t *fakeType) GenericParameters() []GenericParam { return t.gparams }
func (t *fakeType) Visibility() Visibility       { return t.vis }
func (t *fakeType) IsAbstract() bool             { return t.abstract }
func (t *fakeType) IsSealed() bool               { return t.sealed }
func (t *fakeType) Layout() Layout               { return t.layout }
func (t *fakeType) StringFormat() StringFormat   { return t.strfmt }
func (t *fakeType) IsBeforeFieldInit() bool      { return t.bfi }

var (
	fakeMscorlib = AssemblyRef{FullName: "mscorlib, Version=4.0.0.0, Culture=neutral, PublicKeyToken=b77a5c561934e089"}
	fakeTestAsm  = AssemblyRef{FullName: "ILDisassembler.Test, Version=1.0.0.0, Culture=neutral, PublicKeyToken=null"}

	fakeObjectType = &fakeType{full: "System.Object", ns: "System", name: "Object", asm: fakeMscorlib, class: true, layout: LayoutAuto, strfmt: StringFormatAnsi}
	fakeStringType = &fakeType{full: "System.String", ns: "System", name: "String", asm: fakeMscorlib, class: true, layout: LayoutAuto, strfmt: StringFormatAnsi}
	fakeInt32Type  = &fakeType{full: "System.Int32", ns: "System", name: "Int32", asm: fakeMscorlib, value: true, layout: LayoutSequential, strfmt: StringFormatAnsi}
	fakeVoidType   = &fakeType{full: "System.Void", ns: "System", name: "Void", asm: fakeMscorlib, value: true, layout: LayoutSequential, strfmt: StringFormatAnsi}
)

type fakeMethod struct {
	name        string
	declaring   TypeRef
	ret         TypeRef
	ctor        bool
	static      bool
	virtual     bool
	abstractM   bool
	attrs       []string
	impl        ImplFlags
	genparams   []GenericParam
	params      []*Param
	locals      []*Local
	customAttrs []CustomAttributeData
	hasBody     bool
	il          []byte
	ilErr       error
	maxStack    int
	clauses     []ExceptionClause
	typeGenArgs []TypeRef
	methGenArgs []TypeRef
}

func (m *fakeMethod) Name() string                           { return m.name }
func (m *fakeMethod) DeclaringType() TypeRef                 { return m.declaring }
func (m *fakeMethod) ReturnType() TypeRef                    { return m.ret }
func (m *fakeMethod) IsConstructor() bool                    { return m.ctor }
func (m *fakeMethod) IsStatic() bool                         { return m.static }
func (m *fakeMethod) IsVirtual() bool                        { return m.virtual }
func (m *fakeMethod) IsAbstract() bool                       { return m.abstractM }
func (m *fakeMethod) AttributeTokens() []string               { return m.attrs }
func (m *fakeMethod) Implementation() ImplFlags               { return m.impl }
func (m *fakeMethod) GenericParameters() []GenericParam       { return m.genparams }
func (m *fakeMethod) Params() []*Param                         { return m.params }
func (m *fakeMethod) Locals() []*Local                         { return m.locals }
func (m *fakeMethod) CustomAttributes() []CustomAttributeData  { return m.customAttrs }
func (m *fakeMethod) HasBody() bool                            { return m.hasBody }
func (m *fakeMethod) ILBytes() ([]byte, error)                 { return m.il, m.ilErr }
func (m *fakeMethod) MaxStack() int                             { return m.maxStack }
func (m *fakeMethod) ExceptionClauses() []ExceptionClause       { return m.clauses }
func (m *fakeMethod) TypeGenericArgs() []TypeRef                { return m.typeGenArgs }
func (m *fakeMethod) MethodGenericArgs() []TypeRef              { return m.methGenArgs }

type fakeField struct {
	name        string
	declaring   TypeRef
	fieldType   TypeRef
	attrs       []string
	static      bool
	literal     bool
	compGen     bool
	constant    *DefaultValue
	customAttrs []CustomAttributeData
}

func (f *fakeField) Name() string                          { return f.name }
func (f *fakeField) DeclaringType() TypeRef                 { return f.declaring }
func (f *fakeField) FieldType() TypeRef                      { return f.fieldType }
func (f *fakeField) AttributeTokens() []string                { return f.attrs }
func (f *fakeField) IsStatic() bool                           { return f.static }
func (f *fakeField) IsLiteral() bool                          { return f.literal }
func (f *fakeField) IsCompilerGenerated() bool                 { return f.compGen }
func (f *fakeField) ConstantValue() (*DefaultValue, bool)      { return f.constant, f.constant != nil }
func (f *fakeField) CustomAttributes() []CustomAttributeData   { return f.customAttrs }

type fakeProperty struct {
	name        string
	declaring   TypeRef
	propType    TypeRef
	static      bool
	getter      Method
	setter      Method
	customAttrs []CustomAttributeData
}

func (p *fakeProperty) Name() string                         { return p.name }
func (p *fakeProperty) DeclaringType() TypeRef                { return p.declaring }
func (p *fakeProperty) PropertyType() TypeRef                  { return p.propType }
func (p *fakeProperty) IsStatic() bool                         { return p.static }
func (p *fakeProperty) Getter() Method                         { return p.getter }
func (p *fakeProperty) Setter() Method                         { return p.setter }
func (p *fakeProperty) CustomAttributes() []CustomAttributeData { return p.customAttrs }

type fakeEvent struct {
	name        string
	declaring   TypeRef
	handlerType TypeRef
	addOn       Method
	removeOn    Method
	customAttrs []CustomAttributeData
}

func (e *fakeEvent) Name() string                          { return e.name }
func (e *fakeEvent) DeclaringType() TypeRef                 { return e.declaring }
func (e *fakeEvent) HandlerType() TypeRef                    { return e.handlerType }
func (e *fakeEvent) AddOn() Method                           { return e.addOn }
func (e *fakeEvent) RemoveOn() Method                        { return e.removeOn }
func (e *fakeEvent) CustomAttributes() []CustomAttributeData { return e.customAttrs }

type fakeSignature struct{ text string }

func (s fakeSignature) String() string { return s.text }

type fakeProvider struct {
	members    map[uint32]Member
	strings    map[uint32]string
	sigs       map[uint32]SignatureHandle
	fields     []Field
	properties []Property
	events     []Event
	methods    []Method
	current    AssemblyRef
}

func (p *fakeProvider) ResolveMember(token uint32, _, _ []TypeRef) (Member, error) {
	if m, ok := p.members[token]; ok {
		return m, nil
	}
	return nil, errUnresolvedMember
}
func (p *fakeProvider) ResolveString(token uint32) (string, error) {
	return p.strings[token], nil
}
func (p *fakeProvider) ResolveSignature(token uint32) (SignatureHandle, error) {
	return p.sigs[token], nil
}
func (p *fakeProvider) Fields(TypeRef) []Field         { return p.fields }
func (p *fakeProvider) Properties(TypeRef) []Property  { return p.properties }
func (p *fakeProvider) Events(TypeRef) []Event         { return p.events }
func (p *fakeProvider) Methods(TypeRef) []Method       { return p.methods }
func (p *fakeProvider) CurrentAssembly() AssemblyRef   { return p.current }
