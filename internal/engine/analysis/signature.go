// # internal/engine/analysis/signature.go
package analysis

import (
	"context"

	"hlsense/internal/engine/grammar"
	"hlsense/internal/engine/model"
	"hlsense/internal/engine/parsetree"
	"hlsense/internal/engine/projection"
)

// FunctionParameterIndex locates the parameter slot a cursor sits in.
// CallPosition addresses the Expression_call or Function_declaration node.
type FunctionParameterIndex struct {
	Function       *model.Function
	Module         *model.Module
	ParameterIndex int
	IsInput        bool
	CallPosition   parsetree.Position
}

// GetCursorParameterIndexAtExpression returns the argument index of pos
// inside the Expression_call at callPos: 0 on the opening parenthesis, the
// argument number inside the argument list, -1 anywhere else.
func GetCursorParameterIndexAtExpression(pos, callPos parsetree.Position) int {
	depth := len(callPos)
	if len(pos) <= depth || !callPos.IsAncestorOf(pos) {
		return -1
	}
	switch pos[depth] {
	case 1:
		return 0
	case 2:
		if len(pos) > depth+1 {
			return (pos[depth+1] + 1) / 2
		}
		return 0
	}
	return -1
}

// GetFunctionValueAndParameterIndexFromExpressionCall finds the call around
// before and the function it calls. Callees are resolved when they name a
// function of this module or, through an import alias, of another one.
func (a *Analyzer) GetFunctionValueAndParameterIndexFromExpressionCall(ctx context.Context, root *parsetree.Node, before parsetree.Position) (result *FunctionParameterIndex, err error) {
	q, err := a.begin(ctx, "GetFunctionValueAndParameterIndexFromExpressionCall", root)
	if err != nil {
		return nil, err
	}
	defer q.end(&err)

	call, callPos, ok := parsetree.AncestorWithName(root, before, grammar.ExpressionCall)
	if !ok {
		return nil, nil
	}
	index := GetCursorParameterIndexAtExpression(before, callPos)
	if index < 0 {
		return nil, nil
	}
	callee := projection.Unwrap(call.Child(0))
	if callee == nil {
		return nil, nil
	}

	var decl *DeclarationResult
	switch callee.Label {
	case grammar.ExpressionVariable:
		if i, ok := q.current.find(parsetree.Text(callee)); ok {
			decl = q.current.result(i)
		}
	case grammar.ExpressionAccess:
		left := projection.Unwrap(callee.Child(0))
		if left == nil || left.Label != grammar.ExpressionVariable {
			return nil, nil
		}
		imp, ok := q.module().FindImportByAlias(parsetree.Text(left))
		if !ok {
			return nil, nil
		}
		decl, err = q.customDeclaration(model.CustomTypeReference{ModuleName: imp.ModuleName, Name: parsetree.Text(callee.Child(2))})
		if err != nil {
			return nil, err
		}
	}
	if decl == nil {
		return nil, nil
	}
	fn, ok := decl.Declaration.Value.(*model.Function)
	if !ok {
		return nil, nil
	}
	return &FunctionParameterIndex{
		Function:       fn,
		Module:         decl.Module,
		ParameterIndex: index,
		IsInput:        true,
		CallPosition:   callPos,
	}, nil
}

// GetFunctionValueAndParameterIndexAtDeclaration finds the parameter slot of
// a function declaration the cursor is in. The first parenthesised list is
// the input list, the second the output list.
func (a *Analyzer) GetFunctionValueAndParameterIndexAtDeclaration(ctx context.Context, root *parsetree.Node, before parsetree.Position) (result *FunctionParameterIndex, err error) {
	q, err := a.begin(ctx, "GetFunctionValueAndParameterIndexAtDeclaration", root)
	if err != nil {
		return nil, err
	}
	defer q.end(&err)

	decl, declPos, ok := parsetree.AncestorWithName(root, before, grammar.FunctionDeclaration)
	if !ok {
		return nil, nil
	}
	depth := len(declPos)
	child := before[depth]

	var parens []int
	for i, c := range decl.Children {
		if c.IsTerminal() && (c.Label == "(" || c.Label == ")") {
			parens = append(parens, i)
		}
	}
	index, isInput := -1, false
	for pair := 0; pair+1 < len(parens) && pair < 4; pair += 2 {
		open, closing := parens[pair], parens[pair+1]
		if child < open || child >= closing {
			continue
		}
		isInput = pair == 0
		index = 0
		if child > open && len(before) > depth+1 {
			index = (before[depth+1] + 1) / 2
		}
		break
	}
	if index < 0 {
		return nil, nil
	}

	fn, err := q.declaredFunction(decl, declPos)
	if err != nil || fn == nil {
		return nil, err
	}
	return &FunctionParameterIndex{
		Function:       fn,
		Module:         q.module(),
		ParameterIndex: index,
		IsInput:        isInput,
		CallPosition:   declPos,
	}, nil
}

// declaredFunction returns the function a Function_declaration node belongs
// to: a module function or a lambda.
func (q *query) declaredFunction(decl *parsetree.Node, declPos parsetree.Position) (*model.Function, error) {
	root := q.root()
	parent, err := parsetree.NodeAt(root, declPos.Parent())
	if err != nil {
		return nil, err
	}
	switch parent.Label {
	case grammar.Function:
		name, _, ok := parsetree.FindDescendant(decl, nil, parsetree.HasLabel(grammar.FunctionName))
		if !ok {
			return nil, nil
		}
		i, ok := q.current.find(parsetree.Text(name))
		if !ok {
			return nil, nil
		}
		fn, _ := q.module().Declarations[i].Value.(*model.Function)
		return fn, nil
	case grammar.ExpressionFunction:
		e, err := projection.NodeToExpression(root, parent)
		if err != nil {
			return nil, err
		}
		if lambda, ok := e.(*model.FunctionExpression); ok {
			definition := lambda.Definition
			return &model.Function{Declaration: lambda.Declaration, Definition: &definition}, nil
		}
	}
	return nil, nil
}
