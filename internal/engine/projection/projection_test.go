package projection

import (
	"testing"

	"hlsense/internal/core/errors"
	"hlsense/internal/engine/grammar"
	"hlsense/internal/engine/model"
	"hlsense/internal/engine/parsetree"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func variable(name string) *model.VariableExpression {
	return &model.VariableExpression{Name: name}
}

func constant(token string) *model.ConstantExpression {
	t, data, ok := ConstantType(token)
	if !ok {
		panic("bad constant " + token)
	}
	return &model.ConstantExpression{Type: t, Data: data}
}

func stmt(e model.Expression) model.Statement {
	return model.Statement{Expression: e}
}

func sampleModule() *model.Module {
	add := model.BinaryAdd
	return &model.Module{
		Name:    "app.main",
		Imports: []model.Import{{ModuleName: "core.math", Alias: "math"}},
		Declarations: []model.Declaration{
			{Name: "Id", IsExport: true, Value: &model.Alias{Name: "Id", Type: []model.TypeReference{model.NewInteger(64, false)}}},
			{Name: "Color", Value: &model.Enum{Name: "Color", Values: []model.EnumValue{
				{Name: "Red"},
				{Name: "Green", Value: &model.Statement{Expression: constant("2")}},
			}}},
			{Name: "Point", IsExport: true, Value: &model.Struct{
				Name:        "Point",
				MemberNames: []string{"x", "y", "origin"},
				MemberTypes: []model.TypeReference{
					model.NewFundamental(model.Float32),
					model.NewFundamental(model.Float32),
					model.NewCustom("core.math", "Vector"),
				},
				MemberDefaultValues: []model.Statement{stmt(constant("0.0f32")), {}, {}},
			}},
			{Name: "Value", Value: &model.Union{
				Name:        "Value",
				MemberNames: []string{"number", "text"},
				MemberTypes: []model.TypeReference{model.NewInteger(32, true), model.NewPointer([]model.TypeReference{model.NewFundamental(model.CChar)}, false)},
			}},
			{Name: "counter", Value: &model.GlobalVariable{
				Name:         "counter",
				IsMutable:    true,
				Type:         []model.TypeReference{model.NewInteger(32, true)},
				InitialValue: stmt(constant("0")),
			}},
			{Name: "distance", IsExport: true, Value: &model.Function{
				Declaration: model.FunctionDeclaration{
					Name:                 "distance",
					InputParameterNames:  []string{"a", "b"},
					OutputParameterNames: []string{"result"},
					Type: model.FunctionType{
						InputParameterTypes:  []model.TypeReference{model.NewCustom("", "Point"), model.NewCustom("", "Point")},
						OutputParameterTypes: []model.TypeReference{model.NewFundamental(model.Float32)},
					},
					Linkage: model.LinkageExternal,
					Preconditions: []model.FunctionCondition{{
						Description: "non_null",
						Condition:   stmt(&model.BinaryExpression{LeftHandSide: variable("a"), RightHandSide: variable("b"), Operation: model.BinaryNotEqual}),
					}},
				},
				Definition: &model.FunctionDefinition{Name: "distance", Statements: []model.Statement{
					stmt(&model.VariableDeclarationExpression{
						Name:      "dx",
						IsMutable: true,
						RightHandSide: &model.BinaryExpression{
							LeftHandSide:  &model.AccessExpression{Expression: variable("a"), MemberName: "x"},
							RightHandSide: &model.AccessExpression{Expression: variable("b"), MemberName: "x"},
							Operation:     model.BinarySubtract,
						},
					}),
					stmt(&model.AssignmentExpression{
						LeftHandSide:        &model.VariableExpression{Name: "dx", AccessType: model.AccessReadWrite},
						RightHandSide:       constant("1.0f32"),
						AdditionalOperation: &add,
					}),
					stmt(&model.IfExpression{Series: []model.ConditionStatementPair{
						{
							Condition:      &model.Statement{Expression: &model.BinaryExpression{LeftHandSide: variable("dx"), RightHandSide: constant("0.0f32"), Operation: model.BinaryLessThan}},
							ThenStatements: []model.Statement{stmt(&model.AssignmentExpression{LeftHandSide: &model.VariableExpression{Name: "dx", AccessType: model.AccessWrite}, RightHandSide: &model.UnaryExpression{Expression: variable("dx"), Operation: model.UnaryMinus}})},
						},
						{
							ThenStatements: []model.Statement{stmt(&model.CallExpression{Expression: variable("log"), Arguments: []model.Expression{constant(`"positive"`)}})},
						},
					}}),
					stmt(&model.ForLoopExpression{
						VariableName:             "i",
						RangeBegin:               constant("0"),
						RangeEnd:                 stmt(constant("10")),
						RangeComparisonOperation: model.BinaryLessThan,
						ThenStatements:           []model.Statement{stmt(&model.UnaryExpression{Expression: &model.VariableExpression{Name: "i", AccessType: model.AccessReadWrite}, Operation: model.UnaryPostIncrement})},
					}),
					stmt(&model.VariableDeclarationWithTypeExpression{
						Name:          "origin",
						Type:          []model.TypeReference{model.NewCustom("core.math", "Vector")},
						RightHandSide: stmt(&model.InstantiateExpression{Type: model.InstantiateExplicit, Members: []model.InstantiateMember{{MemberName: "x", Value: stmt(constant("1.0f32"))}}}),
					}),
					stmt(&model.ReturnExpression{Expression: &model.CastExpression{
						Source:          variable("dx"),
						DestinationType: []model.TypeReference{model.NewFundamental(model.Float32)},
						CastType:        model.CastNumeric,
					}}),
				}},
			}},
			{Name: "helper", Value: &model.Function{Declaration: model.FunctionDeclaration{
				Name:    "helper",
				Linkage: model.LinkagePrivate,
				Type:    model.FunctionType{IsVariadic: true},
			}}},
		},
	}
}

func TestModuleRoundTrip(t *testing.T) {
	m := sampleModule()

	root, err := ModuleToNode(m)
	require.NoError(t, err)
	assert.Equal(t, grammar.Module, root.Label)
	assert.Len(t, root.Children, len(m.Declarations)+1)

	projected, err := NodeToModule(root)
	require.NoError(t, err)
	assert.Equal(t, m, projected)
}

func TestNodeToModuleRejectsOtherRoots(t *testing.T) {
	_, err := NodeToModule(parsetree.NewNode(grammar.Statement))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeInvariantViolation))
}

func TestNodeToModuleSkipsErrorNodes(t *testing.T) {
	root, err := ModuleToNode(sampleModule())
	require.NoError(t, err)
	root.Children = append(root.Children, parsetree.NewNode(grammar.Error, parsetree.Leaf("???")))

	projected, err := NodeToModule(root)
	require.NoError(t, err)
	assert.Len(t, projected.Declarations, len(sampleModule().Declarations))
}

func TestNodeToDeclarationLinkageFollowsExport(t *testing.T) {
	root, err := ModuleToNode(sampleModule())
	require.NoError(t, err)

	for i, want := range []model.Linkage{model.LinkageExternal, model.LinkagePrivate} {
		pos := parsetree.Position{6 + i}
		d, err := NodeToDeclaration(root, pos)
		require.NoError(t, err)
		f, ok := d.Value.(*model.Function)
		require.True(t, ok)
		assert.Equal(t, want, f.Declaration.Linkage)
		assert.Equal(t, d.IsExport, want == model.LinkageExternal)
	}

	_, err = NodeToDeclaration(root, parsetree.Position{0})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeInvariantViolation))
}

func TestAssignmentSetsAccessType(t *testing.T) {
	root := parsetree.NewNode(grammar.Module)

	plain, err := ExpressionToNode(&model.AssignmentExpression{
		LeftHandSide:  &model.AccessExpression{Expression: variable("p"), MemberName: "x"},
		RightHandSide: constant("1"),
	}, nil)
	require.NoError(t, err)
	e, err := NodeToExpression(root, plain)
	require.NoError(t, err)
	lhs := e.(*model.AssignmentExpression).LeftHandSide.(*model.AccessExpression)
	assert.Equal(t, model.AccessWrite, lhs.AccessType)
	assert.Equal(t, model.AccessRead, lhs.Expression.(*model.VariableExpression).AccessType)

	mul := model.BinaryMultiply
	compound, err := ExpressionToNode(&model.AssignmentExpression{
		LeftHandSide:        variable("n"),
		RightHandSide:       constant("2"),
		AdditionalOperation: &mul,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "*=", parsetree.Text(compound.Child(1)))
	e, err = NodeToExpression(root, compound)
	require.NoError(t, err)
	assert.Equal(t, model.AccessReadWrite, e.(*model.AssignmentExpression).LeftHandSide.(*model.VariableExpression).AccessType)
}

func TestExpressionRoundTrip(t *testing.T) {
	root := parsetree.NewNode(grammar.Module)
	cases := map[string]model.Expression{
		"ternary": &model.TernaryConditionExpression{
			Condition:     variable("ok"),
			ThenStatement: stmt(constant("1")),
			ElseStatement: stmt(constant("2")),
		},
		"switch": &model.SwitchExpression{Value: variable("c"), Cases: []model.SwitchCase{
			{CaseValue: constant("1"), Statements: []model.Statement{stmt(&model.BreakExpression{})}},
			{Statements: []model.Statement{stmt(&model.ContinueExpression{})}},
		}},
		"while": &model.WhileLoopExpression{
			Condition:      stmt(constant("true")),
			ThenStatements: []model.Statement{stmt(&model.BreakExpression{LoopCount: 2})},
		},
		"reflection": &model.ReflectionExpression{Name: "size_of", Arguments: []model.Expression{
			&model.TypeExpression{Type: []model.TypeReference{model.NewCustom("", "Point")}},
		}},
		"dereference": &model.DereferenceAndAccessExpression{Expression: variable("p"), MemberName: "x"},
		"array": &model.AccessArrayExpression{
			Expression: &model.ConstantArrayExpression{ArrayData: []model.Statement{stmt(constant("1")), stmt(constant("2"))}},
			Index:      constant("0"),
		},
		"defer":  &model.DeferExpression{Expression: &model.CallExpression{Expression: variable("close"), Arguments: []model.Expression{variable("f")}}},
		"assert": &model.AssertExpression{Message: "positive", Statement: stmt(constant("true"))},
		"reverse_for": &model.ForLoopExpression{
			VariableName:             "i",
			RangeBegin:               constant("10"),
			RangeEnd:                 stmt(constant("0")),
			RangeComparisonOperation: model.BinaryGreaterThan,
			StepBy:                   constant("2"),
			ThenStatements:           []model.Statement{stmt(&model.CommentExpression{Comment: "// step"})},
		},
		"else_if": &model.IfExpression{Series: []model.ConditionStatementPair{
			{Condition: &model.Statement{Expression: variable("a")}, ThenStatements: []model.Statement{stmt(constant("1"))}},
			{Condition: &model.Statement{Expression: variable("b")}, ThenStatements: []model.Statement{stmt(constant("2"))}},
		}},
		"null":       &model.NullPointerExpression{},
		"comptime":   &model.CompileTimeExpression{Expression: &model.ParenthesisExpression{Expression: constant("3u8")}},
		"address_of": &model.UnaryExpression{Expression: variable("x"), Operation: model.UnaryAddressOf},
	}

	for name, want := range cases {
		t.Run(name, func(t *testing.T) {
			n, err := ExpressionToNode(want, nil)
			require.NoError(t, err)
			got, err := NodeToExpression(root, n)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestExpressionToNodeText(t *testing.T) {
	tests := []struct {
		name string
		e    model.Expression
		want string
	}{
		{name: "call without arguments", e: &model.CallExpression{Expression: &model.AccessExpression{Expression: variable("n"), MemberName: "f"}}, want: "n.f()"},
		{name: "call", e: &model.CallExpression{Expression: variable("add"), Arguments: []model.Expression{constant("1"), constant("2")}}, want: "add(1,2)"},
		{name: "implicit instantiate", e: &model.InstantiateExpression{Members: []model.InstantiateMember{
			{MemberName: "x", Value: stmt(constant("1"))},
			{MemberName: "y", Value: stmt(constant("2"))},
		}}, want: "{x:1,y:2}"},
		{name: "explicit instantiate", e: &model.InstantiateExpression{Type: model.InstantiateExplicit, Members: []model.InstantiateMember{
			{MemberName: "x", Value: stmt(constant("1"))},
		}}, want: "explicit{x:1}"},
		{name: "empty instantiate", e: &model.InstantiateExpression{}, want: "{}"},
		{name: "empty block", e: &model.BlockExpression{}, want: "{}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := ExpressionToNode(tt.e, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, parsetree.Text(n))

			for _, terminal := range parsetree.Terminals(n, parsetree.Position{}) {
				assert.NotContains(t, terminal.Node.Label, "Expression_")
			}
		})
	}
}

func TestStatementToNodeIsFlatBackedAndStable(t *testing.T) {
	s := stmt(&model.CallExpression{
		Expression: &model.AccessExpression{Expression: variable("math"), MemberName: "sqrt"},
		Arguments:  []model.Expression{&model.BinaryExpression{LeftHandSide: variable("x"), RightHandSide: variable("x"), Operation: model.BinaryMultiply}},
	})

	n, err := StatementToNode(s, nil)
	require.NoError(t, err)
	assert.Equal(t, grammar.Statement, n.Label)
	assert.Equal(t, ";", n.Children[len(n.Children)-1].Label)

	fromArena, err := ArenaToNode(model.Flatten(s), nil)
	require.NoError(t, err)
	assert.Equal(t, n.Child(0), fromArena)

	got, err := NodeToStatement(parsetree.NewNode(grammar.Module), n)
	require.NoError(t, err)
	assert.Equal(t, s, got)
}

func TestArenaToNodeRejectsBrokenArena(t *testing.T) {
	arena := model.Flatten(stmt(&model.ParenthesisExpression{Expression: constant("1")}))
	arena.Expressions[0].Children[0] = 0

	_, err := ArenaToNode(arena, nil)
	require.Error(t, err)

	_, err = ArenaToNode(model.ExpressionArena{}, nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeInvariantViolation))
}

func TestTypeReferenceToNode(t *testing.T) {
	m := sampleModule()

	n, err := TypeReferenceToNode([]model.TypeReference{model.NewCustom("core.math", "Vector")}, m)
	require.NoError(t, err)
	inner := n.Child(0)
	assert.Equal(t, grammar.ModuleType, inner.Label)
	assert.Equal(t, "math", parsetree.Text(inner.Child(0)))

	n, err = TypeReferenceToNode([]model.TypeReference{model.NewCustom("app.main", "Point")}, m)
	require.NoError(t, err)
	assert.Equal(t, grammar.TypeName, n.Child(0).Label)

	n, err = TypeReferenceToNode([]model.TypeReference{model.NewCustom("other", "Thing")}, m)
	require.NoError(t, err)
	assert.Equal(t, "other", parsetree.Text(n.Child(0).Child(0)))

	n, err = TypeReferenceToNode(nil, m)
	require.NoError(t, err)
	assert.Equal(t, "void", parsetree.Text(n))

	refs := []model.TypeReference{model.NewPointer([]model.TypeReference{model.ConstantArrayType{
		ValueType: []model.TypeReference{model.NewInteger(8, false)},
		Size:      4,
	}}, true)}
	n, err = TypeReferenceToNode(refs, m)
	require.NoError(t, err)
	got, err := NodeToTypeReference(parsetree.NewNode(grammar.Module), n)
	require.NoError(t, err)
	assert.Equal(t, refs, got)
}

func TestConstantType(t *testing.T) {
	cases := []struct {
		token string
		want  model.TypeReference
		data  string
	}{
		{"true", model.NewBool(), "true"},
		{"42", model.NewInteger(32, true), "42"},
		{"-7i64", model.NewInteger(64, true), "-7"},
		{"255u8", model.NewInteger(8, false), "255"},
		{"0xFFu32", model.NewInteger(32, false), "0xFF"},
		{"1.5f64", model.NewFundamental(model.Float64), "1.5"},
		{"3cl", model.NewFundamental(model.CLong), "3"},
		{`"hi"`, model.NewFundamental(model.String), "hi"},
		{`"hi"c`, model.NewPointer([]model.TypeReference{model.NewFundamental(model.CChar)}, false), "hi"},
	}
	for _, c := range cases {
		got, data, ok := ConstantType(c.token)
		require.True(t, ok, c.token)
		assert.Equal(t, c.want, got, c.token)
		assert.Equal(t, c.data, data, c.token)
		assert.Equal(t, c.token, ConstantToken(got, data), c.token)
	}

	for _, bad := range []string{"", "abc", "1q"} {
		_, _, ok := ConstantType(bad)
		assert.False(t, ok, bad)
	}
}
