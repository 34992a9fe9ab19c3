// # internal/engine/analysis/inference.go
package analysis

import (
	"context"

	"hlsense/internal/engine/model"
	"hlsense/internal/engine/parsetree"
	"hlsense/internal/engine/projection"
)

// ExpressionType is an inferred type. IsValue is false when the expression
// names a type rather than producing a value of it.
type ExpressionType struct {
	Types   []model.TypeReference
	IsValue bool
}

func value(types ...model.TypeReference) *ExpressionType {
	return &ExpressionType{Types: types, IsValue: true}
}

// expressionType infers e as seen from scope. nil means the type cannot be
// determined.
func (q *query) expressionType(scope parsetree.Position, e model.Expression) (*ExpressionType, error) {
	switch v := e.(type) {
	case *model.VariableExpression:
		s, err := q.symbol(scope, v.Name)
		if err != nil || s == nil {
			return nil, err
		}
		if s.Kind == SymbolModuleAlias || len(s.Types) == 0 {
			return nil, nil
		}
		return &ExpressionType{Types: s.Types, IsValue: s.Kind == SymbolValue}, nil

	case *model.AccessExpression:
		return q.accessType(scope, v.Expression, v.MemberName)

	case *model.DereferenceAndAccessExpression:
		left, err := q.expressionType(scope, v.Expression)
		if err != nil || left == nil || len(left.Types) == 0 {
			return nil, err
		}
		pointer, ok := left.Types[0].(model.PointerType)
		if !ok {
			return nil, nil
		}
		return q.memberType(pointer.ElementType, v.MemberName)

	case *model.BinaryExpression:
		if v.Operation.YieldsBool() {
			return value(model.NewBool()), nil
		}
		return q.expressionType(scope, v.LeftHandSide)

	case *model.CallExpression:
		callee, err := q.expressionType(scope, v.Expression)
		if err != nil || callee == nil {
			return nil, err
		}
		fn, err := q.functionType(callee.Types)
		if err != nil || fn == nil {
			return nil, err
		}
		if len(fn.OutputParameterTypes) == 0 {
			return value(), nil
		}
		return value(fn.OutputParameterTypes[0]), nil

	case *model.CastExpression:
		return value(fixTypes(q.module(), v.DestinationType)...), nil

	case *model.ConstantArrayExpression:
		if len(v.ArrayData) == 0 {
			return value(model.ConstantArrayType{}), nil
		}
		first, err := q.expressionType(scope, v.ArrayData[0].Expression)
		if err != nil || first == nil || !first.IsValue {
			return nil, err
		}
		return value(model.ConstantArrayType{ValueType: first.Types, Size: len(v.ArrayData)}), nil

	case *model.ConstantExpression:
		return value(v.Type), nil

	case *model.InstantiateExpression:
		ref, err := q.instantiateCustomType(scope)
		if err != nil || ref == nil {
			return nil, err
		}
		return value(*ref), nil

	case *model.NullPointerExpression:
		return value(model.NewNullPointer()), nil

	case *model.ParenthesisExpression:
		return q.expressionType(scope, v.Expression)

	case *model.TernaryConditionExpression:
		return q.expressionType(scope, v.ThenStatement.Expression)

	case *model.UnaryExpression:
		inner, err := q.expressionType(scope, v.Expression)
		if err != nil || inner == nil {
			return nil, err
		}
		switch v.Operation {
		case model.UnaryAddressOf:
			return value(model.NewPointer(inner.Types, false)), nil
		case model.UnaryIndirection:
			if len(inner.Types) == 0 {
				return nil, nil
			}
			pointer, ok := inner.Types[0].(model.PointerType)
			if !ok {
				return nil, nil
			}
			return value(pointer.ElementType...), nil
		}
		return inner, nil
	}
	return nil, nil
}

// accessType infers left.member. A bare import alias on the left selects a
// declaration of the imported module.
func (q *query) accessType(scope parsetree.Position, left model.Expression, member string) (*ExpressionType, error) {
	if variable, ok := left.(*model.VariableExpression); ok {
		s, err := q.symbol(scope, variable.Name)
		if err != nil {
			return nil, err
		}
		if s != nil && s.Kind == SymbolModuleAlias {
			return q.importedDeclarationType(*s.ModuleAlias, member)
		}
	}
	lt, err := q.expressionType(scope, left)
	if err != nil || lt == nil {
		return nil, err
	}
	return q.memberType(lt.Types, member)
}

func (q *query) importedDeclarationType(imp model.Import, name string) (*ExpressionType, error) {
	decl, err := q.customDeclaration(model.CustomTypeReference{ModuleName: imp.ModuleName, Name: name})
	if err != nil || decl == nil {
		return nil, err
	}
	switch v := decl.Declaration.Value.(type) {
	case *model.Function:
		return value(functionPointer(decl.Module, v.Declaration)), nil
	case *model.GlobalVariable:
		types, err := q.globalType(decl)
		if err != nil || len(types) == 0 {
			return nil, err
		}
		return value(types...), nil
	}
	return &ExpressionType{Types: []model.TypeReference{model.NewCustom(imp.ModuleName, name)}}, nil
}

// memberType infers member of a value whose type is types.
func (q *query) memberType(types []model.TypeReference, member string) (*ExpressionType, error) {
	custom, ok := model.AsCustom(types)
	if !ok {
		return nil, nil
	}
	decl, err := q.customDeclaration(custom)
	if err != nil || decl == nil {
		return nil, err
	}
	u, err := q.underlying(decl)
	if err != nil || u == nil {
		return nil, err
	}
	self := model.NewCustom(u.Module.Name, u.Declaration.Name)

	switch v := u.Declaration.Value.(type) {
	case *model.Enum:
		_, _, exists := model.FindMember(u.Declaration, member)
		return &ExpressionType{Types: []model.TypeReference{self}, IsValue: exists}, nil
	case *model.Struct, *model.Union:
		if m, _, ok := model.FindMember(u.Declaration, member); ok {
			return value(fixTypes(u.Module, m.Type)...), nil
		}
		return &ExpressionType{Types: []model.TypeReference{self}}, nil
	case *model.Function:
		return value(functionPointer(u.Module, v.Declaration)), nil
	}
	return nil, nil
}

// functionType returns the signature behind a callee type: a function
// pointer, or a custom reference to a Function declaration.
func (q *query) functionType(types []model.TypeReference) (*model.FunctionType, error) {
	if len(types) == 0 {
		return nil, nil
	}
	switch t := types[0].(type) {
	case model.FunctionPointerType:
		return &t.Type, nil
	case model.CustomTypeReference:
		decl, err := q.customDeclaration(t)
		if err != nil || decl == nil {
			return nil, err
		}
		if fn, ok := decl.Declaration.Value.(*model.Function); ok {
			ft := fixFunctionType(decl.Module, fn.Declaration.Type)
			return &ft, nil
		}
	}
	return nil, nil
}

// GetExpressionType infers expression as seen from scopePosition. An
// expression whose type cannot be determined returns (nil, nil).
func (a *Analyzer) GetExpressionType(ctx context.Context, root *parsetree.Node, scopePosition parsetree.Position, expression model.Expression) (result *ExpressionType, err error) {
	q, err := a.begin(ctx, "GetExpressionType", root)
	if err != nil {
		return nil, err
	}
	defer q.end(&err)

	return q.expressionType(scopePosition, expression)
}

// GetExpressionTypeAt projects the expression node at pos and infers it with
// pos as the scope.
func (a *Analyzer) GetExpressionTypeAt(ctx context.Context, root *parsetree.Node, pos parsetree.Position) (result *ExpressionType, err error) {
	q, err := a.begin(ctx, "GetExpressionTypeAt", root)
	if err != nil {
		return nil, err
	}
	defer q.end(&err)

	n, err := parsetree.NodeAt(root, pos)
	if err != nil {
		return nil, err
	}
	e, err := projection.NodeToExpression(root, n)
	if err != nil {
		return nil, err
	}
	return q.expressionType(pos, e)
}
