// # internal/engine/model/module.go
package model

// Module is the projection of one source file. It is rebuilt from the tree on
// every query and never mutated afterwards.
type Module struct {
	Name         string
	Imports      []Import
	Declarations []Declaration
}

// Import binds an alias to a module name.
type Import struct {
	ModuleName string
	Alias      string
	Usages     []string
}

// SourceLocation is 1-based, matching the parse-tree ranges.
type SourceLocation struct {
	Line   int
	Column int
}

type DeclarationKind int

const (
	DeclarationAlias DeclarationKind = iota
	DeclarationEnum
	DeclarationFunction
	DeclarationFunctionConstructor
	DeclarationGlobalVariable
	DeclarationStruct
	DeclarationTypeConstructor
	DeclarationUnion
)

var declarationKindNames = [...]string{
	"Alias",
	"Enum",
	"Function",
	"Function_constructor",
	"Global_variable",
	"Struct",
	"Type_constructor",
	"Union",
}

func (k DeclarationKind) String() string {
	if int(k) < len(declarationKindNames) {
		return declarationKindNames[k]
	}
	return "Unknown"
}

// Declaration is a named top-level construct.
type Declaration struct {
	Name     string
	IsExport bool
	Value    DeclarationValue
}

func (d Declaration) Kind() DeclarationKind {
	return d.Value.DeclarationKind()
}

// DeclarationValue is implemented by the eight declaration payloads.
type DeclarationValue interface {
	DeclarationKind() DeclarationKind
	sealedDeclaration()
}

type Alias struct {
	Name string
	Type []TypeReference
}

type EnumValue struct {
	Name  string
	Value *Statement
}

type Enum struct {
	Name   string
	Values []EnumValue
}

type Linkage int

const (
	LinkageExternal Linkage = iota
	LinkagePrivate
)

type FunctionCondition struct {
	Description string
	Condition   Statement
}

type FunctionDeclaration struct {
	Name                 string
	Type                 FunctionType
	InputParameterNames  []string
	OutputParameterNames []string
	Linkage              Linkage
	Preconditions        []FunctionCondition
	Postconditions       []FunctionCondition
	SourceLocation       *SourceLocation
}

type FunctionDefinition struct {
	Name       string
	Statements []Statement
}

// Function pairs a declaration with an optional body. A nil Definition marks
// a forward declaration.
type Function struct {
	Declaration FunctionDeclaration
	Definition  *FunctionDefinition
}

type GlobalVariable struct {
	Name         string
	Type         []TypeReference
	InitialValue Statement
	IsMutable    bool
}

type Struct struct {
	Name                string
	MemberTypes         []TypeReference
	MemberNames         []string
	MemberDefaultValues []Statement
	IsPacked            bool
	IsLiteral           bool
}

type Union struct {
	Name        string
	MemberTypes []TypeReference
	MemberNames []string
}

type TypeConstructorParameter struct {
	Name string
	Type []TypeReference
}

type TypeConstructor struct {
	Name       string
	Parameters []TypeConstructorParameter
	Statements []Statement
}

type FunctionConstructor struct {
	Name       string
	Parameters []TypeConstructorParameter
	Statements []Statement
}

func (*Alias) DeclarationKind() DeclarationKind               { return DeclarationAlias }
func (*Enum) DeclarationKind() DeclarationKind                { return DeclarationEnum }
func (*Function) DeclarationKind() DeclarationKind            { return DeclarationFunction }
func (*FunctionConstructor) DeclarationKind() DeclarationKind { return DeclarationFunctionConstructor }
func (*GlobalVariable) DeclarationKind() DeclarationKind      { return DeclarationGlobalVariable }
func (*Struct) DeclarationKind() DeclarationKind              { return DeclarationStruct }
func (*TypeConstructor) DeclarationKind() DeclarationKind     { return DeclarationTypeConstructor }
func (*Union) DeclarationKind() DeclarationKind               { return DeclarationUnion }

func (*Alias) sealedDeclaration()               {}
func (*Enum) sealedDeclaration()                {}
func (*Function) sealedDeclaration()            {}
func (*FunctionConstructor) sealedDeclaration() {}
func (*GlobalVariable) sealedDeclaration()      {}
func (*Struct) sealedDeclaration()              {}
func (*TypeConstructor) sealedDeclaration()     {}
func (*Union) sealedDeclaration()               {}

// FindDeclaration returns the first declaration named name.
func (m *Module) FindDeclaration(name string) (Declaration, bool) {
	for _, d := range m.Declarations {
		if d.Name == name {
			return d, true
		}
	}
	return Declaration{}, false
}

// FindImportByAlias returns the import bound to alias.
func (m *Module) FindImportByAlias(alias string) (Import, bool) {
	for _, imp := range m.Imports {
		if imp.Alias == alias {
			return imp, true
		}
	}
	return Import{}, false
}

// FindImportByModule returns the import of moduleName.
func (m *Module) FindImportByModule(moduleName string) (Import, bool) {
	for _, imp := range m.Imports {
		if imp.ModuleName == moduleName {
			return imp, true
		}
	}
	return Import{}, false
}
