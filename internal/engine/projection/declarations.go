// # internal/engine/projection/declarations.go
package projection

import (
	"hlsense/internal/core/errors"
	"hlsense/internal/engine/grammar"
	"hlsense/internal/engine/model"
	"hlsense/internal/engine/parsetree"
)

// IsExport reports whether a Declaration node carries the export keyword.
func IsExport(n *parsetree.Node) bool {
	export := childWithLabel(n, grammar.Export)
	return export != nil && hasTerminal(export, "export")
}

func (p *projector) declaration(n *parsetree.Node) (model.Declaration, error) {
	if len(n.Children) == 0 {
		return model.Declaration{}, errors.Invariant(n.Label, "declaration has no payload")
	}
	isExport := IsExport(n)
	payload := n.Children[len(n.Children)-1]

	var (
		name  string
		value model.DeclarationValue
		err   error
	)
	switch payload.Label {
	case grammar.Alias:
		var v *model.Alias
		v, err = p.alias(payload)
		if v != nil {
			name, value = v.Name, v
		}
	case grammar.Enum:
		var v *model.Enum
		v, err = p.enum(payload)
		if v != nil {
			name, value = v.Name, v
		}
	case grammar.Function:
		linkage := model.LinkagePrivate
		if isExport {
			linkage = model.LinkageExternal
		}
		var v *model.Function
		v, err = p.function(payload, linkage)
		if v != nil {
			name, value = v.Declaration.Name, v
		}
	case grammar.FunctionConstructor:
		var params []model.TypeConstructorParameter
		var statements []model.Statement
		name, params, statements, err = p.constructor(payload, grammar.FunctionConstructorName, grammar.FunctionConstructorParameters)
		value = &model.FunctionConstructor{Name: name, Parameters: params, Statements: statements}
	case grammar.GlobalVariable:
		var v *model.GlobalVariable
		v, err = p.globalVariable(payload)
		if v != nil {
			name, value = v.Name, v
		}
	case grammar.Struct:
		var v *model.Struct
		v, err = p.structDeclaration(payload)
		if v != nil {
			name, value = v.Name, v
		}
	case grammar.TypeConstructor:
		var params []model.TypeConstructorParameter
		var statements []model.Statement
		name, params, statements, err = p.constructor(payload, grammar.TypeConstructorName, grammar.TypeConstructorParameters)
		value = &model.TypeConstructor{Name: name, Parameters: params, Statements: statements}
	case grammar.Union:
		var v *model.Union
		v, err = p.union(payload)
		if v != nil {
			name, value = v.Name, v
		}
	default:
		return model.Declaration{}, errors.Invariant(payload.Label, "unknown declaration kind")
	}
	if err != nil {
		return model.Declaration{}, err
	}
	return model.Declaration{Name: name, IsExport: isExport, Value: value}, nil
}

func (p *projector) alias(n *parsetree.Node) (*model.Alias, error) {
	typeNode, err := requireChild(n, grammar.AliasType)
	if err != nil {
		return nil, err
	}
	refs, err := p.typeReference(typeNode.Child(0))
	if err != nil {
		return nil, err
	}
	return &model.Alias{Name: parsetree.Text(childWithLabel(n, grammar.AliasName)), Type: refs}, nil
}

func (p *projector) enum(n *parsetree.Node) (*model.Enum, error) {
	e := &model.Enum{Name: parsetree.Text(childWithLabel(n, grammar.EnumName))}
	for _, v := range separated(childWithLabel(n, grammar.EnumValues)) {
		if v.Label != grammar.EnumValue {
			continue
		}
		value := model.EnumValue{Name: parsetree.Text(childWithLabel(v, grammar.EnumValueName))}
		if valueNode := childAfter(v, "="); valueNode != nil {
			expression, err := p.expression(valueNode)
			if err != nil {
				return nil, err
			}
			value.Value = &model.Statement{Expression: expression}
		}
		e.Values = append(e.Values, value)
	}
	return e, nil
}

func (p *projector) globalVariable(n *parsetree.Node) (*model.GlobalVariable, error) {
	v := &model.GlobalVariable{
		Name:      parsetree.Text(childWithLabel(n, grammar.GlobalVariableName)),
		IsMutable: parsetree.Text(childWithLabel(n, grammar.GlobalVariableMutability)) != "var",
	}
	if typeNode := childWithLabel(n, grammar.GlobalVariableType); typeNode != nil {
		refs, err := p.typeReference(typeNode.Child(0))
		if err != nil {
			return nil, err
		}
		v.Type = refs
	}
	if valueNode := childAfter(n, "="); valueNode != nil {
		expression, err := p.expression(valueNode)
		if err != nil {
			return nil, err
		}
		v.InitialValue = model.Statement{Expression: expression}
	}
	return v, nil
}

func (p *projector) structDeclaration(n *parsetree.Node) (*model.Struct, error) {
	s := &model.Struct{Name: parsetree.Text(childWithLabel(n, grammar.StructName))}
	members := childWithLabel(n, grammar.StructMembers)
	if members == nil {
		return s, nil
	}
	for _, member := range members.Children {
		if member.Label != grammar.StructMember {
			continue
		}
		memberType, err := p.singleType(member, grammar.StructMemberType)
		if err != nil {
			return nil, err
		}
		var defaultValue model.Statement
		if valueNode := childAfter(member, "="); valueNode != nil {
			expression, err := p.expression(valueNode)
			if err != nil {
				return nil, err
			}
			defaultValue.Expression = expression
		}
		s.MemberNames = append(s.MemberNames, parsetree.Text(childWithLabel(member, grammar.StructMemberName)))
		s.MemberTypes = append(s.MemberTypes, memberType)
		s.MemberDefaultValues = append(s.MemberDefaultValues, defaultValue)
	}
	return s, nil
}

func (p *projector) union(n *parsetree.Node) (*model.Union, error) {
	u := &model.Union{Name: parsetree.Text(childWithLabel(n, grammar.UnionName))}
	members := childWithLabel(n, grammar.UnionMembers)
	if members == nil {
		return u, nil
	}
	for _, member := range members.Children {
		if member.Label != grammar.UnionMember {
			continue
		}
		memberType, err := p.singleType(member, grammar.UnionMemberType)
		if err != nil {
			return nil, err
		}
		u.MemberNames = append(u.MemberNames, parsetree.Text(childWithLabel(member, grammar.UnionMemberName)))
		u.MemberTypes = append(u.MemberTypes, memberType)
	}
	return u, nil
}

// singleType reads the one type held by the child of n labeled label. Void
// yields nil.
func (p *projector) singleType(n *parsetree.Node, label string) (model.TypeReference, error) {
	typeNode, err := requireChild(n, label)
	if err != nil {
		return nil, err
	}
	refs, err := p.typeReference(typeNode.Child(0))
	if err != nil || len(refs) == 0 {
		return nil, err
	}
	return refs[0], nil
}

func (p *projector) function(n *parsetree.Node, linkage model.Linkage) (*model.Function, error) {
	declarationNode, err := requireChild(n, grammar.FunctionDeclaration)
	if err != nil {
		return nil, err
	}
	declaration, err := p.functionDeclaration(declarationNode, linkage)
	if err != nil {
		return nil, err
	}
	f := &model.Function{Declaration: declaration}
	if definitionNode := childWithLabel(n, grammar.FunctionDefinition); definitionNode != nil {
		definition, err := p.functionDefinition(definitionNode, declaration.Name)
		if err != nil {
			return nil, err
		}
		f.Definition = &definition
	}
	return f, nil
}

func (p *projector) functionDeclaration(n *parsetree.Node, linkage model.Linkage) (model.FunctionDeclaration, error) {
	d := model.FunctionDeclaration{
		Name:           parsetree.Text(childWithLabel(n, grammar.FunctionName)),
		Linkage:        linkage,
		SourceLocation: sourceLocation(n),
	}

	inputNames, inputTypes, variadic, err := p.parameters(childWithLabel(n, grammar.FunctionInputParameters))
	if err != nil {
		return d, err
	}
	outputNames, outputTypes, _, err := p.parameters(childWithLabel(n, grammar.FunctionOutputParameters))
	if err != nil {
		return d, err
	}
	d.InputParameterNames, d.OutputParameterNames = inputNames, outputNames
	d.Type = model.FunctionType{
		InputParameterTypes:  inputTypes,
		OutputParameterTypes: outputTypes,
		IsVariadic:           variadic,
	}

	if d.Preconditions, err = p.conditions(childWithLabel(n, grammar.FunctionPreconditions)); err != nil {
		return d, err
	}
	if d.Postconditions, err = p.conditions(childWithLabel(n, grammar.FunctionPostconditions)); err != nil {
		return d, err
	}
	return d, nil
}

// parameters reads a comma separated Function_parameter list. A trailing
// "..." parameter marks the list variadic.
func (p *projector) parameters(n *parsetree.Node) ([]string, []model.TypeReference, bool, error) {
	var (
		names    []string
		types    []model.TypeReference
		variadic bool
	)
	for _, parameter := range separated(n) {
		if parameter.Label != grammar.FunctionParameter {
			continue
		}
		if first := parameter.Child(0); first != nil && first.IsTerminal() && first.Label == "..." {
			variadic = true
			continue
		}
		parameterType, err := p.singleType(parameter, grammar.FunctionParameterType)
		if err != nil {
			return nil, nil, false, err
		}
		names = append(names, parsetree.Text(childWithLabel(parameter, grammar.FunctionParameterName)))
		types = append(types, parameterType)
	}
	return names, types, variadic, nil
}

func (p *projector) conditions(n *parsetree.Node) ([]model.FunctionCondition, error) {
	if n == nil {
		return nil, nil
	}
	var out []model.FunctionCondition
	for _, c := range n.Children {
		if c.Label != grammar.FunctionPrecondition && c.Label != grammar.FunctionPostcondition {
			continue
		}
		condition := model.FunctionCondition{Description: parsetree.Text(childWithLabel(c, grammar.FunctionConditionName))}
		if expressionNode := childAfter(c, "{"); expressionNode != nil {
			expression, err := p.expression(expressionNode)
			if err != nil {
				return nil, err
			}
			condition.Condition = model.Statement{Expression: expression}
		}
		out = append(out, condition)
	}
	return out, nil
}

func (p *projector) functionDefinition(n *parsetree.Node, name string) (model.FunctionDefinition, error) {
	block, err := requireChild(n, grammar.Block)
	if err != nil {
		return model.FunctionDefinition{}, err
	}
	statements, err := p.statements(block)
	if err != nil {
		return model.FunctionDefinition{}, err
	}
	return model.FunctionDefinition{Name: name, Statements: statements}, nil
}

func (p *projector) constructor(n *parsetree.Node, nameLabel, parametersLabel string) (string, []model.TypeConstructorParameter, []model.Statement, error) {
	name := parsetree.Text(childWithLabel(n, nameLabel))
	var parameters []model.TypeConstructorParameter
	for _, parameter := range separated(childWithLabel(n, parametersLabel)) {
		if parameter.Label != grammar.FunctionParameter {
			continue
		}
		typeNode, err := requireChild(parameter, grammar.FunctionParameterType)
		if err != nil {
			return "", nil, nil, err
		}
		refs, err := p.typeReference(typeNode.Child(0))
		if err != nil {
			return "", nil, nil, err
		}
		parameters = append(parameters, model.TypeConstructorParameter{
			Name: parsetree.Text(childWithLabel(parameter, grammar.FunctionParameterName)),
			Type: refs,
		})
	}
	var statements []model.Statement
	if block := childWithLabel(n, grammar.Block); block != nil {
		var err error
		if statements, err = p.statements(block); err != nil {
			return "", nil, nil, err
		}
	}
	return name, parameters, statements, nil
}
