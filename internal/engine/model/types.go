// # internal/engine/model/types.go
package model

import (
	"strconv"
	"strings"
)

type TypeKind int

const (
	TypeBuiltin TypeKind = iota
	TypeConstantArray
	TypeCustom
	TypeFundamental
	TypeFunctionPointer
	TypeInteger
	TypeNullPointer
	TypeParameter
	TypePointer
	TypeInstanceKind
)

// TypeReference is one of the type variants below. Most APIs pass
// []TypeReference where an empty slice means void or "not yet known".
type TypeReference interface {
	TypeKind() TypeKind
	sealedType()
}

type FundamentalKind string

const (
	Bool        FundamentalKind = "Bool"
	Byte        FundamentalKind = "Byte"
	Float16     FundamentalKind = "Float16"
	Float32     FundamentalKind = "Float32"
	Float64     FundamentalKind = "Float64"
	String      FundamentalKind = "String"
	AnyType     FundamentalKind = "Any_type"
	CBool       FundamentalKind = "C_bool"
	CChar       FundamentalKind = "C_char"
	CSchar      FundamentalKind = "C_schar"
	CUchar      FundamentalKind = "C_uchar"
	CShort      FundamentalKind = "C_short"
	CUshort     FundamentalKind = "C_ushort"
	CInt        FundamentalKind = "C_int"
	CUint       FundamentalKind = "C_uint"
	CLong       FundamentalKind = "C_long"
	CUlong      FundamentalKind = "C_ulong"
	CLonglong   FundamentalKind = "C_longlong"
	CUlonglong  FundamentalKind = "C_ulonglong"
	CLongdouble FundamentalKind = "C_longdouble"
)

var fundamentalKinds = map[string]FundamentalKind{}

func init() {
	for _, k := range []FundamentalKind{
		Bool, Byte, Float16, Float32, Float64, String, AnyType,
		CBool, CChar, CSchar, CUchar, CShort, CUshort, CInt, CUint,
		CLong, CUlong, CLonglong, CUlonglong, CLongdouble,
	} {
		fundamentalKinds[string(k)] = k
	}
}

type BuiltinType struct {
	Value string
}

type ConstantArrayType struct {
	ValueType []TypeReference
	Size      int
}

// CustomTypeReference names a declaration. ModuleName may be empty (current
// module), an import alias, or a full module name.
type CustomTypeReference struct {
	ModuleName string
	Name       string
}

type FundamentalType struct {
	Kind FundamentalKind
}

type FunctionType struct {
	InputParameterTypes  []TypeReference
	OutputParameterTypes []TypeReference
	IsVariadic           bool
}

type FunctionPointerType struct {
	Type                 FunctionType
	InputParameterNames  []string
	OutputParameterNames []string
}

type IntegerType struct {
	NumberOfBits int
	IsSigned     bool
}

type NullPointerType struct{}

type ParameterType struct {
	Name string
}

type PointerType struct {
	ElementType []TypeReference
	IsMutable   bool
}

type TypeInstance struct {
	TypeConstructor CustomTypeReference
	Arguments       []Statement
}

func (BuiltinType) TypeKind() TypeKind         { return TypeBuiltin }
func (ConstantArrayType) TypeKind() TypeKind   { return TypeConstantArray }
func (CustomTypeReference) TypeKind() TypeKind { return TypeCustom }
func (FundamentalType) TypeKind() TypeKind     { return TypeFundamental }
func (FunctionPointerType) TypeKind() TypeKind { return TypeFunctionPointer }
func (IntegerType) TypeKind() TypeKind         { return TypeInteger }
func (NullPointerType) TypeKind() TypeKind     { return TypeNullPointer }
func (ParameterType) TypeKind() TypeKind       { return TypeParameter }
func (PointerType) TypeKind() TypeKind         { return TypePointer }
func (TypeInstance) TypeKind() TypeKind        { return TypeInstanceKind }

func (BuiltinType) sealedType()         {}
func (ConstantArrayType) sealedType()   {}
func (CustomTypeReference) sealedType() {}
func (FundamentalType) sealedType()     {}
func (FunctionPointerType) sealedType() {}
func (IntegerType) sealedType()         {}
func (NullPointerType) sealedType()     {}
func (ParameterType) sealedType()       {}
func (PointerType) sealedType()         {}
func (TypeInstance) sealedType()        {}

func NewBool() TypeReference { return FundamentalType{Kind: Bool} }

func NewFundamental(kind FundamentalKind) TypeReference { return FundamentalType{Kind: kind} }

func NewInteger(bits int, signed bool) TypeReference {
	return IntegerType{NumberOfBits: bits, IsSigned: signed}
}

func NewCustom(moduleName, name string) TypeReference {
	return CustomTypeReference{ModuleName: moduleName, Name: name}
}

func NewPointer(element []TypeReference, mutable bool) TypeReference {
	return PointerType{ElementType: element, IsMutable: mutable}
}

func NewNullPointer() TypeReference { return NullPointerType{} }

// NewFunctionPointer builds the value type of a function declaration.
func NewFunctionPointer(decl FunctionDeclaration) TypeReference {
	return FunctionPointerType{
		Type:                 decl.Type,
		InputParameterNames:  decl.InputParameterNames,
		OutputParameterNames: decl.OutputParameterNames,
	}
}

// AsCustom returns the custom reference held by the first element of refs.
func AsCustom(refs []TypeReference) (CustomTypeReference, bool) {
	if len(refs) == 0 {
		return CustomTypeReference{}, false
	}
	custom, ok := refs[0].(CustomTypeReference)
	return custom, ok
}

func isIntegerTypeName(name string) bool {
	switch name {
	case "Int8", "Int16", "Int32", "Int64", "Uint8", "Uint16", "Uint32", "Uint64":
		return true
	}
	return false
}

// ParseTypeName maps an identifier written in type position to a type.
// "void" yields no type; unknown identifiers become custom references with an
// empty module name.
func ParseTypeName(name string) []TypeReference {
	if isIntegerTypeName(name) {
		signed := strings.HasPrefix(name, "I")
		digits := strings.TrimPrefix(strings.TrimPrefix(name, "Int"), "Uint")
		bits, _ := strconv.Atoi(digits)
		return []TypeReference{NewInteger(bits, signed)}
	}
	if kind, ok := fundamentalKinds[name]; ok {
		return []TypeReference{NewFundamental(kind)}
	}
	if name == "void" {
		return nil
	}
	if name == "Type" {
		return []TypeReference{BuiltinType{Value: "Type"}}
	}
	return []TypeReference{NewCustom("", name)}
}

// IsFundamentalName reports whether name is one of the fundamental kinds.
func IsFundamentalName(name string) bool {
	_, ok := fundamentalKinds[name]
	return ok
}
