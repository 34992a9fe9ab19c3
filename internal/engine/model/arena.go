// # internal/engine/model/arena.go
package model

import (
	"fmt"

	"hlsense/internal/core/errors"
)

// ExpressionIndex addresses an expression inside one ExpressionArena.
type ExpressionIndex int

// NoExpression marks an optional sub-expression slot that is empty.
const NoExpression ExpressionIndex = -1

// FlatExpression is an expression whose sub-expression slots are cleared and
// replaced by Children, one index per slot in declaration order.
type FlatExpression struct {
	Value    Expression
	Children []ExpressionIndex
}

// ExpressionArena is the flat form of a statement. Index 0 is the root and
// every child index is greater than the index of its parent. Nested
// statements (block bodies, branch bodies, member values) keep their nested
// form and are flattened separately.
type ExpressionArena struct {
	Expressions    []FlatExpression
	SourceLocation *SourceLocation
}

// Flatten appends statement's expressions in pre-order.
func Flatten(statement Statement) ExpressionArena {
	arena := ExpressionArena{SourceLocation: statement.SourceLocation}
	if statement.Expression != nil {
		arena.push(statement.Expression)
	}
	return arena
}

func (a *ExpressionArena) push(e Expression) ExpressionIndex {
	index := ExpressionIndex(len(a.Expressions))
	subs := subExpressions(e)
	a.Expressions = append(a.Expressions, FlatExpression{
		Value: withSubExpressions(e, make([]Expression, len(subs))),
	})

	children := make([]ExpressionIndex, len(subs))
	for i, sub := range subs {
		if sub == nil {
			children[i] = NoExpression
			continue
		}
		children[i] = a.push(sub)
	}
	a.Expressions[index].Children = children
	return index
}

// Len returns the number of expressions in the arena.
func (a ExpressionArena) Len() int {
	return len(a.Expressions)
}

// Validate checks the ordering invariant.
func (a ExpressionArena) Validate() error {
	for i, flat := range a.Expressions {
		if flat.Value == nil {
			return errors.New(errors.CodeInvariantViolation, fmt.Sprintf("expression %d is empty", i))
		}
		for _, child := range flat.Children {
			if child == NoExpression {
				continue
			}
			if int(child) <= i || int(child) >= len(a.Expressions) {
				return errors.New(errors.CodeInvariantViolation,
					fmt.Sprintf("expression %d references child %d out of order", i, child))
			}
		}
	}
	return nil
}

// Hydrate rebuilds the nested statement.
func (a ExpressionArena) Hydrate() (Statement, error) {
	if len(a.Expressions) == 0 {
		return Statement{SourceLocation: a.SourceLocation}, nil
	}
	if err := a.Validate(); err != nil {
		return Statement{}, err
	}
	return Statement{Expression: a.hydrate(0), SourceLocation: a.SourceLocation}, nil
}

func (a ExpressionArena) hydrate(index ExpressionIndex) Expression {
	flat := a.Expressions[index]
	subs := make([]Expression, len(flat.Children))
	for i, child := range flat.Children {
		if child != NoExpression {
			subs[i] = a.hydrate(child)
		}
	}
	return withSubExpressions(flat.Value, subs)
}

// subExpressions lists the expression-typed slots of e in a fixed order.
func subExpressions(e Expression) []Expression {
	switch v := e.(type) {
	case *AccessExpression:
		return []Expression{v.Expression}
	case *AccessArrayExpression:
		return []Expression{v.Expression, v.Index}
	case *AssignmentExpression:
		return []Expression{v.LeftHandSide, v.RightHandSide}
	case *BinaryExpression:
		return []Expression{v.LeftHandSide, v.RightHandSide}
	case *CallExpression:
		return append([]Expression{v.Expression}, v.Arguments...)
	case *CastExpression:
		return []Expression{v.Source}
	case *CompileTimeExpression:
		return []Expression{v.Expression}
	case *DeferExpression:
		return []Expression{v.Expression}
	case *DereferenceAndAccessExpression:
		return []Expression{v.Expression}
	case *ForLoopExpression:
		return []Expression{v.RangeBegin, v.StepBy}
	case *InstanceCallExpression:
		return []Expression{v.LeftHandSide}
	case *ParenthesisExpression:
		return []Expression{v.Expression}
	case *ReflectionExpression:
		return append([]Expression(nil), v.Arguments...)
	case *ReturnExpression:
		return []Expression{v.Expression}
	case *SwitchExpression:
		subs := []Expression{v.Value}
		for _, c := range v.Cases {
			subs = append(subs, c.CaseValue)
		}
		return subs
	case *TernaryConditionExpression:
		return []Expression{v.Condition}
	case *UnaryExpression:
		return []Expression{v.Expression}
	case *VariableDeclarationExpression:
		return []Expression{v.RightHandSide}
	}
	return nil
}

// withSubExpressions returns a shallow copy of e with its slots set to subs.
func withSubExpressions(e Expression, subs []Expression) Expression {
	switch v := e.(type) {
	case *AccessExpression:
		c := *v
		c.Expression = subs[0]
		return &c
	case *AccessArrayExpression:
		c := *v
		c.Expression, c.Index = subs[0], subs[1]
		return &c
	case *AssignmentExpression:
		c := *v
		c.LeftHandSide, c.RightHandSide = subs[0], subs[1]
		return &c
	case *BinaryExpression:
		c := *v
		c.LeftHandSide, c.RightHandSide = subs[0], subs[1]
		return &c
	case *CallExpression:
		c := *v
		c.Expression = subs[0]
		c.Arguments = nil
		if len(subs) > 1 {
			c.Arguments = append([]Expression(nil), subs[1:]...)
		}
		return &c
	case *CastExpression:
		c := *v
		c.Source = subs[0]
		return &c
	case *CompileTimeExpression:
		c := *v
		c.Expression = subs[0]
		return &c
	case *DeferExpression:
		c := *v
		c.Expression = subs[0]
		return &c
	case *DereferenceAndAccessExpression:
		c := *v
		c.Expression = subs[0]
		return &c
	case *ForLoopExpression:
		c := *v
		c.RangeBegin, c.StepBy = subs[0], subs[1]
		return &c
	case *InstanceCallExpression:
		c := *v
		c.LeftHandSide = subs[0]
		return &c
	case *ParenthesisExpression:
		c := *v
		c.Expression = subs[0]
		return &c
	case *ReflectionExpression:
		c := *v
		c.Arguments = nil
		if len(subs) > 0 {
			c.Arguments = append([]Expression(nil), subs...)
		}
		return &c
	case *ReturnExpression:
		c := *v
		c.Expression = subs[0]
		return &c
	case *SwitchExpression:
		c := *v
		c.Value = subs[0]
		c.Cases = make([]SwitchCase, len(v.Cases))
		for i, sc := range v.Cases {
			c.Cases[i] = SwitchCase{CaseValue: subs[i+1], Statements: sc.Statements}
		}
		return &c
	case *TernaryConditionExpression:
		c := *v
		c.Condition = subs[0]
		return &c
	case *UnaryExpression:
		c := *v
		c.Expression = subs[0]
		return &c
	case *VariableDeclarationExpression:
		c := *v
		c.RightHandSide = subs[0]
		return &c
	}
	return e
}
