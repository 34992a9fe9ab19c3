// # internal/engine/projection/types.go
package projection

import (
	"strconv"

	"hlsense/internal/core/errors"
	"hlsense/internal/engine/grammar"
	"hlsense/internal/engine/model"
	"hlsense/internal/engine/parsetree"
)

func (p *projector) typeReference(n *parsetree.Node) ([]model.TypeReference, error) {
	if n == nil {
		return nil, errors.Invariant("", "missing %s", grammar.Type)
	}
	if n.Label == grammar.Type {
		inner, err := requireIndex(n, 0)
		if err != nil {
			return nil, err
		}
		n = inner
	}

	switch n.Label {
	case grammar.TypeName:
		name := parsetree.Text(n)
		return model.ParseTypeName(name), nil

	case grammar.ModuleType:
		alias := parsetree.Text(childWithLabel(n, grammar.ModuleTypeModuleName))
		moduleName := alias
		for _, imp := range p.imports {
			if imp.Alias == alias {
				moduleName = imp.ModuleName
				break
			}
		}
		name := parsetree.Text(childWithLabel(n, grammar.ModuleTypeTypeName))
		return []model.TypeReference{model.NewCustom(moduleName, name)}, nil

	case grammar.PointerType:
		element, err := p.typeReference(childWithLabel(n, grammar.Type))
		if err != nil {
			return nil, err
		}
		return []model.TypeReference{model.NewPointer(element, hasTerminal(n, "mutable"))}, nil

	case grammar.ConstantArrayType:
		element, err := p.typeReference(childWithLabel(n, grammar.Type))
		if err != nil {
			return nil, err
		}
		size, err := strconv.Atoi(parsetree.Text(childWithLabel(n, grammar.ConstantArrayLength)))
		if err != nil {
			return nil, errors.Invariant(n.Label, "invalid array length: %v", err)
		}
		return []model.TypeReference{model.ConstantArrayType{ValueType: element, Size: size}}, nil

	case grammar.FunctionPointerType:
		inputNames, inputTypes, variadic, err := p.parameters(childWithLabel(n, grammar.FunctionPointerTypeInputParameters))
		if err != nil {
			return nil, err
		}
		outputNames, outputTypes, _, err := p.parameters(childWithLabel(n, grammar.FunctionPointerTypeOutputParameters))
		if err != nil {
			return nil, err
		}
		return []model.TypeReference{model.FunctionPointerType{
			Type: model.FunctionType{
				InputParameterTypes:  inputTypes,
				OutputParameterTypes: outputTypes,
				IsVariadic:           variadic,
			},
			InputParameterNames:  inputNames,
			OutputParameterNames: outputNames,
		}}, nil

	case grammar.TypeInstanceType:
		constructor, err := p.typeReference(childWithLabel(n, grammar.Type))
		if err != nil {
			return nil, err
		}
		custom, ok := model.AsCustom(constructor)
		if !ok {
			return nil, errors.Invariant(n.Label, "type constructor is not a custom type")
		}
		arguments, err := p.expressionStatements(separated(childWithLabel(n, grammar.TypeInstanceTypeParameters)))
		if err != nil {
			return nil, err
		}
		return []model.TypeReference{model.TypeInstance{TypeConstructor: custom, Arguments: arguments}}, nil
	}

	return nil, errors.Invariant(n.Label, "unhandled type node")
}
