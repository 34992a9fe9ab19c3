// # internal/engine/analysis/scope.go
package analysis

import (
	"hlsense/internal/engine/grammar"
	"hlsense/internal/engine/model"
	"hlsense/internal/engine/parsetree"
	"hlsense/internal/engine/projection"
)

type bindingKind int

const (
	bindingParameter bindingKind = iota
	bindingVariable
	bindingTypedVariable
	bindingLoopVariable
)

// binding is a function-local name. anchor addresses the Statement or the
// Function_parameter that introduces it.
type binding struct {
	name   string
	kind   bindingKind
	anchor parsetree.Position
	types  []model.TypeReference
}

// functionBindings lists the names a function makes visible at scope, in
// declaration order: input parameters, output parameters inside
// postconditions, then body locals along the cursor path.
func (q *query) functionBindings(scope parsetree.Position) ([]binding, error) {
	if len(scope) == 0 {
		return nil, nil
	}
	root := q.root()
	declNode := root.Child(scope[0])
	if declNode == nil || declNode.Label != grammar.Declaration {
		return nil, nil
	}
	i, ok := q.current.indexAt(scope[0])
	if !ok {
		return nil, nil
	}
	fn, ok := q.module().Declarations[i].Value.(*model.Function)
	if !ok {
		return nil, nil
	}
	declPos := parsetree.Position{scope[0]}
	module := q.module()

	var bindings []binding
	if _, inputsPos, ok := parsetree.FindDescendant(declNode, declPos, parsetree.HasLabel(grammar.FunctionInputParameters)); ok {
		types := fn.Declaration.Type.InputParameterTypes
		for k, name := range fn.Declaration.InputParameterNames {
			bindings = append(bindings, binding{
				name:   name,
				kind:   bindingParameter,
				anchor: inputsPos.Append(2 * k),
				types:  fixTypes(module, single(types, k)),
			})
		}
	}
	if _, _, inPostcondition := parsetree.AncestorWithName(root, scope, grammar.FunctionPostcondition); inPostcondition {
		if _, outputsPos, ok := parsetree.FindDescendant(declNode, declPos, parsetree.HasLabel(grammar.FunctionOutputParameters)); ok {
			types := fn.Declaration.Type.OutputParameterTypes
			for k, name := range fn.Declaration.OutputParameterNames {
				bindings = append(bindings, binding{
					name:   name,
					kind:   bindingParameter,
					anchor: outputsPos.Append(2 * k),
					types:  fixTypes(module, single(types, k)),
				})
			}
		}
	}

	definition, definitionPos, ok := parsetree.FindDescendant(declNode, declPos, parsetree.HasLabel(grammar.FunctionDefinition))
	if !ok || !definitionPos.IsAncestorOf(scope) {
		return bindings, nil
	}
	blockIndex, ok := parsetree.FirstChildMatching(definition, parsetree.HasLabel(grammar.Block))
	if !ok {
		return bindings, nil
	}
	return q.walkStatementLists(definitionPos.Append(blockIndex), scope, bindings)
}

// walkStatementLists collects the bindings of the statements that precede
// the cursor in listPos, then descends into the statement list on the
// cursor path and repeats.
func (q *query) walkStatementLists(listPos, scope parsetree.Position, bindings []binding) ([]binding, error) {
	root := q.root()
	for listPos != nil && len(scope) > len(listPos) {
		list, err := parsetree.NodeAt(root, listPos)
		if err != nil {
			return nil, err
		}
		cursor := scope[len(listPos)]
		for k := 0; k < cursor && k < len(list.Children); k++ {
			if b, ok := statementBinding(list.Children[k], listPos.Append(k)); ok {
				bindings = append(bindings, b)
			}
		}
		if cursor >= len(list.Children) {
			break
		}

		var next parsetree.Position
		for end := len(listPos) + 2; end <= len(scope); end++ {
			n, err := parsetree.NodeAt(root, scope[:end])
			if err != nil {
				return nil, err
			}
			if !grammar.IsStatementList(n.Label) {
				continue
			}
			if n.Label == grammar.ExpressionForLoopStatements {
				forLoop := parsetree.MustNodeAt(root, scope[:end-1])
				if b, ok := loopBinding(forLoop, listPos.Append(cursor)); ok {
					bindings = append(bindings, b)
				}
			}
			next = scope[:end].Clone()
			break
		}
		listPos = next
	}
	return bindings, nil
}

// statementBinding reports the name a statement declares, if any.
func statementBinding(statement *parsetree.Node, pos parsetree.Position) (binding, bool) {
	if statement.Label != grammar.Statement {
		return binding{}, false
	}
	expr := projection.Unwrap(statement.Child(0))
	if expr == nil {
		return binding{}, false
	}
	switch expr.Label {
	case grammar.ExpressionVariableDeclaration:
		return variableBinding(expr, pos, bindingVariable)
	case grammar.ExpressionVariableDeclarationWithType:
		return variableBinding(expr, pos, bindingTypedVariable)
	case grammar.ExpressionForLoop:
		return loopBinding(expr, pos)
	}
	return binding{}, false
}

func variableBinding(expr *parsetree.Node, pos parsetree.Position, kind bindingKind) (binding, bool) {
	index, ok := parsetree.FirstChildMatching(expr, parsetree.HasLabel(grammar.VariableName))
	if !ok {
		return binding{}, false
	}
	return binding{name: parsetree.Text(expr.Children[index]), kind: kind, anchor: pos}, true
}

func loopBinding(forLoop *parsetree.Node, pos parsetree.Position) (binding, bool) {
	head := forLoop.Child(0)
	if head == nil || head.Label != grammar.ExpressionForLoopHead {
		return binding{}, false
	}
	index, ok := parsetree.FirstChildMatching(head, parsetree.HasLabel(grammar.ExpressionForLoopVariable))
	if !ok {
		return binding{}, false
	}
	return binding{name: parsetree.Text(head.Children[index]), kind: bindingLoopVariable, anchor: pos}, true
}

// bindingTypes computes the type of a local. Parameters carry theirs from
// the declaration.
func (q *query) bindingTypes(b binding) ([]model.TypeReference, error) {
	if b.kind == bindingParameter {
		return b.types, nil
	}
	root := q.root()
	statement, err := parsetree.NodeAt(root, b.anchor)
	if err != nil {
		return nil, err
	}
	expr := projection.Unwrap(statement.Child(0))

	switch b.kind {
	case bindingTypedVariable:
		typeNode := expr.Child(3).Child(0)
		if typeNode == nil {
			return nil, nil
		}
		refs, err := projection.NodeToTypeReference(root, typeNode)
		if err != nil {
			return nil, err
		}
		return fixTypes(q.module(), refs), nil

	case bindingVariable:
		rhs := childAfter(expr, "=")
		if rhs == nil {
			return nil, nil
		}
		return q.inferNode(b.anchor, rhs)

	case bindingLoopVariable:
		begin, _, ok := parsetree.FindDescendant(expr, nil, parsetree.HasLabel(grammar.ExpressionForLoopRangeBegin))
		if !ok || begin.Child(0) == nil {
			return nil, nil
		}
		return q.inferNode(b.anchor, begin.Child(0))
	}
	return nil, nil
}

// inferNode projects n and infers its value type at scope.
func (q *query) inferNode(scope parsetree.Position, n *parsetree.Node) ([]model.TypeReference, error) {
	e, err := projection.NodeToExpression(q.root(), n)
	if err != nil {
		return nil, err
	}
	et, err := q.expressionType(scope, e)
	if err != nil || et == nil {
		return nil, err
	}
	return et.Types, nil
}

func childAfter(n *parsetree.Node, token string) *parsetree.Node {
	for i, child := range n.Children {
		if child.IsTerminal() && child.Label == token {
			return n.Child(i + 1)
		}
	}
	return nil
}

func single(types []model.TypeReference, i int) []model.TypeReference {
	if i < len(types) && types[i] != nil {
		return []model.TypeReference{types[i]}
	}
	return nil
}
