// # internal/engine/projection/expressions.go
package projection

import (
	"strconv"
	"strings"

	"hlsense/internal/core/errors"
	"hlsense/internal/engine/grammar"
	"hlsense/internal/engine/model"
	"hlsense/internal/engine/parsetree"
)

var binaryOperations = map[string]model.BinaryOperation{
	"+":   model.BinaryAdd,
	"-":   model.BinarySubtract,
	"*":   model.BinaryMultiply,
	"/":   model.BinaryDivide,
	"%":   model.BinaryModulus,
	"==":  model.BinaryEqual,
	"!=":  model.BinaryNotEqual,
	"<":   model.BinaryLessThan,
	"<=":  model.BinaryLessThanOrEqualTo,
	">":   model.BinaryGreaterThan,
	">=":  model.BinaryGreaterThanOrEqualTo,
	"&&":  model.BinaryLogicalAnd,
	"||":  model.BinaryLogicalOr,
	"&":   model.BinaryBitwiseAnd,
	"|":   model.BinaryBitwiseOr,
	"^":   model.BinaryBitwiseXor,
	"<<":  model.BinaryBitShiftLeft,
	">>":  model.BinaryBitShiftRight,
	"has": model.BinaryHas,
}

var prefixOperations = map[string]model.UnaryOperation{
	"!":  model.UnaryNot,
	"~":  model.UnaryBitwiseNot,
	"-":  model.UnaryMinus,
	"++": model.UnaryPreIncrement,
	"--": model.UnaryPreDecrement,
	"*":  model.UnaryIndirection,
	"&":  model.UnaryAddressOf,
}

var postfixOperations = map[string]model.UnaryOperation{
	"++": model.UnaryPostIncrement,
	"--": model.UnaryPostDecrement,
}

func (p *projector) statement(n *parsetree.Node) (model.Statement, error) {
	if n == nil || n.Label != grammar.Statement {
		label := ""
		if n != nil {
			label = n.Label
		}
		return model.Statement{}, errors.Invariant(label, "expected %s", grammar.Statement)
	}
	expressionNode, err := requireIndex(n, 0)
	if err != nil {
		return model.Statement{}, err
	}
	expression, err := p.expression(expressionNode)
	if err != nil {
		return model.Statement{}, err
	}
	return model.Statement{Expression: expression, SourceLocation: sourceLocation(n)}, nil
}

// statements projects every Statement child of a statement list.
func (p *projector) statements(n *parsetree.Node) ([]model.Statement, error) {
	if n == nil {
		return nil, nil
	}
	var out []model.Statement
	for _, child := range n.Children {
		if child.Label != grammar.Statement {
			continue
		}
		s, err := p.statement(child)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func (p *projector) expressionStatements(nodes []*parsetree.Node) ([]model.Statement, error) {
	var out []model.Statement
	for _, n := range nodes {
		e, err := p.expression(n)
		if err != nil {
			return nil, err
		}
		out = append(out, model.Statement{Expression: e})
	}
	return out, nil
}

func (p *projector) expressionList(nodes []*parsetree.Node) ([]model.Expression, error) {
	var out []model.Expression
	for _, n := range nodes {
		e, err := p.expression(n)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (p *projector) requiredExpression(n *parsetree.Node, i int) (model.Expression, error) {
	child, err := requireIndex(n, i)
	if err != nil {
		return nil, err
	}
	return p.expression(child)
}

func (p *projector) optionalExpression(n *parsetree.Node) (model.Expression, error) {
	if n == nil {
		return nil, nil
	}
	return p.expression(n)
}

func (p *projector) expression(node *parsetree.Node) (model.Expression, error) {
	n := Unwrap(node)
	if n == nil {
		return nil, errors.Invariant("", "missing expression")
	}
	if grammar.IsBinaryExpression(n.Label) {
		return p.binary(n)
	}

	switch n.Label {
	case grammar.ExpressionAccess:
		inner, err := p.requiredExpression(n, 0)
		if err != nil {
			return nil, err
		}
		return &model.AccessExpression{
			Expression: inner,
			MemberName: parsetree.Text(childWithLabel(n, grammar.ExpressionAccessMemberName)),
		}, nil

	case grammar.ExpressionAccessArray:
		inner, err := p.requiredExpression(n, 0)
		if err != nil {
			return nil, err
		}
		index, err := p.requiredExpression(n, 2)
		if err != nil {
			return nil, err
		}
		return &model.AccessArrayExpression{Expression: inner, Index: index}, nil

	case grammar.ExpressionAssert:
		inner, err := p.requiredExpression(n, 1)
		if err != nil {
			return nil, err
		}
		return &model.AssertExpression{
			Message:   parsetree.Text(childWithLabel(n, grammar.ExpressionAssertMessage)),
			Statement: model.Statement{Expression: inner},
		}, nil

	case grammar.ExpressionAssignment:
		return p.assignment(n)

	case grammar.ExpressionBlock:
		statements, err := p.statements(childWithLabel(n, grammar.ExpressionBlockStatements))
		if err != nil {
			return nil, err
		}
		return &model.BlockExpression{Statements: statements}, nil

	case grammar.ExpressionBreak:
		loopCount := 0
		if countNode := childWithLabel(n, grammar.ExpressionBreakLoopCount); countNode != nil {
			count, err := strconv.Atoi(parsetree.Text(countNode))
			if err != nil {
				return nil, errors.Invariant(n.Label, "invalid loop count: %v", err)
			}
			loopCount = count
		}
		return &model.BreakExpression{LoopCount: loopCount}, nil

	case grammar.ExpressionCall:
		callee, err := p.requiredExpression(n, 0)
		if err != nil {
			return nil, err
		}
		arguments, err := p.expressionList(separated(childWithLabel(n, grammar.ExpressionCallArguments)))
		if err != nil {
			return nil, err
		}
		return &model.CallExpression{Expression: callee, Arguments: arguments}, nil

	case grammar.ExpressionCast:
		source, err := p.requiredExpression(n, 0)
		if err != nil {
			return nil, err
		}
		destination, err := requireChild(n, grammar.ExpressionCastDestination)
		if err != nil {
			return nil, err
		}
		refs, err := p.typeReference(destination.Child(0))
		if err != nil {
			return nil, err
		}
		return &model.CastExpression{Source: source, DestinationType: refs, CastType: model.CastNumeric}, nil

	case grammar.ExpressionComment:
		return &model.CommentExpression{Comment: parsetree.Text(n)}, nil

	case grammar.ExpressionCompileTime:
		inner, err := p.requiredExpression(n, 1)
		if err != nil {
			return nil, err
		}
		return &model.CompileTimeExpression{Expression: inner}, nil

	case grammar.ExpressionConstant:
		token := parsetree.Text(n)
		t, data, ok := ConstantType(token)
		if !ok {
			return nil, errors.Invariant(n.Label, "cannot type constant %q", token)
		}
		return &model.ConstantExpression{Type: t, Data: data}, nil

	case grammar.ExpressionCreateArray:
		elements, err := p.expressionStatements(separated(childWithLabel(n, grammar.ExpressionCreateArrayItems)))
		if err != nil {
			return nil, err
		}
		return &model.ConstantArrayExpression{ArrayData: elements}, nil

	case grammar.ExpressionContinue:
		return &model.ContinueExpression{}, nil

	case grammar.ExpressionDefer:
		inner, err := p.requiredExpression(n, 1)
		if err != nil {
			return nil, err
		}
		return &model.DeferExpression{Expression: inner}, nil

	case grammar.ExpressionDereferenceAccess:
		inner, err := p.requiredExpression(n, 0)
		if err != nil {
			return nil, err
		}
		return &model.DereferenceAndAccessExpression{
			Expression: inner,
			MemberName: parsetree.Text(childWithLabel(n, grammar.ExpressionAccessMemberName)),
		}, nil

	case grammar.ExpressionForLoop:
		return p.forLoop(n)

	case grammar.ExpressionFunction:
		declarationNode, err := requireChild(n, grammar.FunctionDeclaration)
		if err != nil {
			return nil, err
		}
		declaration, err := p.functionDeclaration(declarationNode, model.LinkagePrivate)
		if err != nil {
			return nil, err
		}
		f := &model.FunctionExpression{Declaration: declaration}
		if definitionNode := childWithLabel(n, grammar.FunctionDefinition); definitionNode != nil {
			if f.Definition, err = p.functionDefinition(definitionNode, ""); err != nil {
				return nil, err
			}
		}
		return f, nil

	case grammar.ExpressionIf:
		return p.ifExpression(n)

	case grammar.ExpressionInstanceCall:
		lhs, err := p.requiredExpression(n, 0)
		if err != nil {
			return nil, err
		}
		arguments, err := p.expressionStatements(separated(childWithLabel(n, grammar.ExpressionInstanceCallParameters)))
		if err != nil {
			return nil, err
		}
		return &model.InstanceCallExpression{LeftHandSide: lhs, Arguments: arguments}, nil

	case grammar.ExpressionInstantiate:
		return p.instantiate(n)

	case grammar.ExpressionInvalid, grammar.Error:
		return &model.InvalidExpression{Value: parsetree.Text(n)}, nil

	case grammar.ExpressionNullPointer:
		return &model.NullPointerExpression{}, nil

	case grammar.ExpressionParenthesis:
		inner, err := p.requiredExpression(n, 1)
		if err != nil {
			return nil, err
		}
		return &model.ParenthesisExpression{Expression: inner}, nil

	case grammar.ExpressionReflection:
		arguments, err := p.expressionList(separated(childWithLabel(n, grammar.ExpressionReflectionArguments)))
		if err != nil {
			return nil, err
		}
		return &model.ReflectionExpression{
			Name:      strings.TrimPrefix(parsetree.Text(n.Child(0)), "@"),
			Arguments: arguments,
		}, nil

	case grammar.ExpressionReturn:
		inner, err := p.optionalExpression(n.Child(1))
		if err != nil {
			return nil, err
		}
		return &model.ReturnExpression{Expression: inner}, nil

	case grammar.ExpressionStruct:
		s, err := p.structDeclaration(childWithLabel(n, grammar.Struct))
		if err != nil {
			return nil, err
		}
		return &model.StructExpression{Declaration: *s}, nil

	case grammar.ExpressionSwitch:
		return p.switchExpression(n)

	case grammar.ExpressionTernaryCondition:
		condition, err := p.requiredExpression(n, 0)
		if err != nil {
			return nil, err
		}
		then, err := p.requiredExpression(n, 2)
		if err != nil {
			return nil, err
		}
		otherwise, err := p.requiredExpression(n, 4)
		if err != nil {
			return nil, err
		}
		return &model.TernaryConditionExpression{
			Condition:     condition,
			ThenStatement: model.Statement{Expression: then},
			ElseStatement: model.Statement{Expression: otherwise},
		}, nil

	case grammar.ExpressionType:
		refs, err := p.typeReference(n.Child(0))
		if err != nil {
			return nil, err
		}
		return &model.TypeExpression{Type: refs}, nil

	case grammar.ExpressionUnaryPrefix:
		inner, err := p.requiredExpression(n, 1)
		if err != nil {
			return nil, err
		}
		symbol := parsetree.Text(n.Child(0))
		operation, ok := prefixOperations[symbol]
		if !ok {
			return nil, errors.Invariant(n.Label, "unknown prefix operator %q", symbol)
		}
		if operation == model.UnaryPreIncrement || operation == model.UnaryPreDecrement {
			setAccessType(inner, model.AccessReadWrite)
		}
		return &model.UnaryExpression{Expression: inner, Operation: operation}, nil

	case grammar.ExpressionUnaryPostfix:
		inner, err := p.requiredExpression(n, 0)
		if err != nil {
			return nil, err
		}
		symbol := parsetree.Text(n.Child(1))
		operation, ok := postfixOperations[symbol]
		if !ok {
			return nil, errors.Invariant(n.Label, "unknown postfix operator %q", symbol)
		}
		setAccessType(inner, model.AccessReadWrite)
		return &model.UnaryExpression{Expression: inner, Operation: operation}, nil

	case grammar.ExpressionUnion:
		u, err := p.union(childWithLabel(n, grammar.Union))
		if err != nil {
			return nil, err
		}
		return &model.UnionExpression{Declaration: *u}, nil

	case grammar.ExpressionVariable:
		return &model.VariableExpression{Name: parsetree.Text(n)}, nil

	case grammar.ExpressionVariableDeclaration:
		rhs, err := p.expression(childAfter(n, "="))
		if err != nil {
			return nil, err
		}
		return &model.VariableDeclarationExpression{
			Name:          parsetree.Text(childWithLabel(n, grammar.VariableName)),
			IsMutable:     parsetree.Text(childWithLabel(n, grammar.ExpressionVariableMutability)) != "var",
			RightHandSide: rhs,
		}, nil

	case grammar.ExpressionVariableDeclarationWithType:
		typeNode, err := requireChild(n, grammar.ExpressionVariableDeclarationType)
		if err != nil {
			return nil, err
		}
		refs, err := p.typeReference(typeNode.Child(0))
		if err != nil {
			return nil, err
		}
		rhs, err := p.expression(childAfter(n, "="))
		if err != nil {
			return nil, err
		}
		return &model.VariableDeclarationWithTypeExpression{
			Name:          parsetree.Text(childWithLabel(n, grammar.VariableName)),
			IsMutable:     parsetree.Text(childWithLabel(n, grammar.ExpressionVariableMutability)) != "var",
			Type:          refs,
			RightHandSide: model.Statement{Expression: rhs},
		}, nil

	case grammar.ExpressionWhileLoop:
		condition, err := p.requiredExpression(n, 1)
		if err != nil {
			return nil, err
		}
		statements, err := p.statements(childWithLabel(n, grammar.ExpressionWhileLoopStatements))
		if err != nil {
			return nil, err
		}
		return &model.WhileLoopExpression{
			Condition:      model.Statement{Expression: condition},
			ThenStatements: statements,
		}, nil
	}

	return nil, errors.Invariant(n.Label, "unhandled expression node")
}

func (p *projector) binary(n *parsetree.Node) (model.Expression, error) {
	lhs, err := p.requiredExpression(n, 0)
	if err != nil {
		return nil, err
	}
	rhs, err := p.requiredExpression(n, 2)
	if err != nil {
		return nil, err
	}
	symbol := parsetree.Text(n.Child(1))
	operation, ok := binaryOperations[symbol]
	if !ok {
		return nil, errors.Invariant(n.Label, "unknown binary operator %q", symbol)
	}
	return &model.BinaryExpression{LeftHandSide: lhs, RightHandSide: rhs, Operation: operation}, nil
}

func (p *projector) assignment(n *parsetree.Node) (model.Expression, error) {
	lhs, err := p.requiredExpression(n, 0)
	if err != nil {
		return nil, err
	}
	rhs, err := p.requiredExpression(n, 2)
	if err != nil {
		return nil, err
	}

	a := &model.AssignmentExpression{LeftHandSide: lhs, RightHandSide: rhs}
	symbol := parsetree.Text(n.Child(1))
	accessType := model.AccessWrite
	if symbol != "=" {
		operation, ok := binaryOperations[strings.TrimSuffix(symbol, "=")]
		if !ok {
			return nil, errors.Invariant(n.Label, "unknown assignment operator %q", symbol)
		}
		a.AdditionalOperation = &operation
		accessType = model.AccessReadWrite
	}
	setAccessType(lhs, accessType)
	return a, nil
}

func setAccessType(e model.Expression, accessType model.AccessType) {
	switch v := e.(type) {
	case *model.AccessExpression:
		v.AccessType = accessType
	case *model.VariableExpression:
		v.AccessType = accessType
	}
}

func (p *projector) forLoop(n *parsetree.Node) (model.Expression, error) {
	head, err := requireChild(n, grammar.ExpressionForLoopHead)
	if err != nil {
		return nil, err
	}
	begin, err := requireChild(head, grammar.ExpressionForLoopRangeBegin)
	if err != nil {
		return nil, err
	}
	end, err := requireChild(head, grammar.ExpressionForLoopRangeEnd)
	if err != nil {
		return nil, err
	}
	rangeBegin, err := p.requiredExpression(begin, 0)
	if err != nil {
		return nil, err
	}
	rangeEnd, err := p.requiredExpression(end, 0)
	if err != nil {
		return nil, err
	}

	loop := &model.ForLoopExpression{
		VariableName:             parsetree.Text(childWithLabel(head, grammar.ExpressionForLoopVariable)),
		RangeBegin:               rangeBegin,
		RangeEnd:                 model.Statement{Expression: rangeEnd},
		RangeComparisonOperation: model.BinaryLessThan,
	}
	if step := childWithLabel(head, grammar.ExpressionForLoopStep); step != nil {
		if loop.StepBy, err = p.requiredExpression(step, 1); err != nil {
			return nil, err
		}
	}
	if childWithLabel(head, grammar.ExpressionForLoopReverse) != nil {
		loop.RangeComparisonOperation = model.BinaryGreaterThan
	}
	if loop.ThenStatements, err = p.statements(childWithLabel(n, grammar.ExpressionForLoopStatements)); err != nil {
		return nil, err
	}
	return loop, nil
}

// ifExpression flattens an if / else if / else chain into one series.
func (p *projector) ifExpression(n *parsetree.Node) (model.Expression, error) {
	e := &model.IfExpression{}
	current := n
	for current != nil {
		pair := model.ConditionStatementPair{}
		if current.Label == grammar.ExpressionIf {
			condition, err := p.requiredExpression(current, 1)
			if err != nil {
				return nil, err
			}
			pair.Condition = &model.Statement{Expression: condition}
		}
		statements, err := p.statements(childWithLabel(current, grammar.ExpressionIfStatements))
		if err != nil {
			return nil, err
		}
		pair.ThenStatements = statements
		e.Series = append(e.Series, pair)

		if current.Label != grammar.ExpressionIf {
			break
		}
		elseNode := childWithLabel(current, grammar.ExpressionIfElse)
		if elseNode == nil {
			break
		}
		if nested := childWithLabel(elseNode, grammar.ExpressionIf); nested != nil {
			current = nested
		} else {
			current = elseNode
		}
	}
	return e, nil
}

func (p *projector) instantiate(n *parsetree.Node) (model.Expression, error) {
	e := &model.InstantiateExpression{Type: model.InstantiateDefault}
	if parsetree.Text(childWithLabel(n, grammar.ExpressionInstantiateType)) == "explicit" {
		e.Type = model.InstantiateExplicit
	}
	for _, member := range separated(childWithLabel(n, grammar.ExpressionInstantiateMembers)) {
		if member.Label != grammar.ExpressionInstantiateMember {
			continue
		}
		value, err := p.expression(childAfter(member, ":"))
		if err != nil {
			return nil, err
		}
		e.Members = append(e.Members, model.InstantiateMember{
			MemberName: parsetree.Text(childWithLabel(member, grammar.ExpressionInstantiateMemberName)),
			Value:      model.Statement{Expression: value},
		})
	}
	return e, nil
}

func (p *projector) switchExpression(n *parsetree.Node) (model.Expression, error) {
	value, err := p.requiredExpression(n, 1)
	if err != nil {
		return nil, err
	}
	e := &model.SwitchExpression{Value: value}
	cases := childWithLabel(n, grammar.ExpressionSwitchCases)
	if cases == nil {
		return e, nil
	}
	for _, c := range cases.Children {
		if c.Label != grammar.ExpressionSwitchCase {
			continue
		}
		sc := model.SwitchCase{}
		if caseValue := childWithLabel(c, grammar.ExpressionSwitchCaseValue); caseValue != nil {
			if sc.CaseValue, err = p.requiredExpression(caseValue, 0); err != nil {
				return nil, err
			}
		}
		if sc.Statements, err = p.statements(childWithLabel(c, grammar.ExpressionSwitchCaseStatements)); err != nil {
			return nil, err
		}
		e.Cases = append(e.Cases, sc)
	}
	return e, nil
}
