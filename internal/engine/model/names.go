// # internal/engine/model/names.go
package model

import (
	"fmt"
	"strings"
)

// TypeName formats refs for display. When module is non-nil, references into
// module are printed unqualified and references into imported modules use the
// import alias.
func TypeName(refs []TypeReference, module *Module) string {
	if len(refs) == 0 {
		return "void"
	}

	switch v := refs[0].(type) {
	case nil:
		return "void"
	case BuiltinType:
		return v.Value
	case ConstantArrayType:
		return fmt.Sprintf("%s[%d]", TypeName(v.ValueType, module), v.Size)
	case CustomTypeReference:
		if module != nil {
			if v.ModuleName == module.Name {
				return v.Name
			}
			if imp, ok := module.FindImportByModule(v.ModuleName); ok {
				return imp.Alias + "." + v.Name
			}
		}
		if v.ModuleName != "" {
			return v.ModuleName + "." + v.Name
		}
		return v.Name
	case FundamentalType:
		return string(v.Kind)
	case FunctionPointerType:
		return functionTypeName(v.Type, module)
	case IntegerType:
		prefix := "Uint"
		if v.IsSigned {
			prefix = "Int"
		}
		return fmt.Sprintf("%s%d", prefix, v.NumberOfBits)
	case NullPointerType:
		return "Null_pointer_type"
	case ParameterType:
		return v.Name
	case PointerType:
		mutable := ""
		if v.IsMutable {
			mutable = "mutable "
		}
		return "*" + mutable + TypeName(v.ElementType, module)
	case TypeInstance:
		return TypeName([]TypeReference{v.TypeConstructor}, module) + "<...>"
	}

	panic(fmt.Sprintf("model.TypeName: unhandled type reference %T", refs[0]))
}

func functionTypeName(t FunctionType, module *Module) string {
	inputs := make([]string, 0, len(t.InputParameterTypes)+1)
	for _, ref := range t.InputParameterTypes {
		inputs = append(inputs, TypeName([]TypeReference{ref}, module))
	}
	if t.IsVariadic {
		inputs = append(inputs, "...")
	}
	outputs := make([]string, 0, len(t.OutputParameterTypes))
	for _, ref := range t.OutputParameterTypes {
		outputs = append(outputs, TypeName([]TypeReference{ref}, module))
	}
	return "(" + strings.Join(inputs, ", ") + ") -> (" + strings.Join(outputs, ", ") + ")"
}

// FunctionSignature renders a declaration the way it is written in source.
func FunctionSignature(decl FunctionDeclaration, module *Module) string {
	format := func(names []string, types []TypeReference) string {
		parts := make([]string, 0, len(names))
		for i, name := range names {
			typeName := "void"
			if i < len(types) {
				typeName = TypeName([]TypeReference{types[i]}, module)
			}
			parts = append(parts, name+": "+typeName)
		}
		return strings.Join(parts, ", ")
	}

	inputs := format(decl.InputParameterNames, decl.Type.InputParameterTypes)
	if decl.Type.IsVariadic {
		if inputs != "" {
			inputs += ", "
		}
		inputs += "..."
	}
	return fmt.Sprintf("function %s(%s) -> (%s)", decl.Name, inputs,
		format(decl.OutputParameterNames, decl.Type.OutputParameterTypes))
}
