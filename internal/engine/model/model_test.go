package model

import (
	"testing"

	"hlsense/internal/core/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTypeName(t *testing.T) {
	tests := []struct {
		name string
		want []TypeReference
	}{
		{"Int32", []TypeReference{IntegerType{NumberOfBits: 32, IsSigned: true}}},
		{"Uint8", []TypeReference{IntegerType{NumberOfBits: 8, IsSigned: false}}},
		{"Float64", []TypeReference{FundamentalType{Kind: Float64}}},
		{"C_int", []TypeReference{FundamentalType{Kind: CInt}}},
		{"void", nil},
		{"Type", []TypeReference{BuiltinType{Value: "Type"}}},
		{"Point", []TypeReference{CustomTypeReference{Name: "Point"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseTypeName(tt.name))
		})
	}
}

func TestTypeName(t *testing.T) {
	module := &Module{
		Name:    "app",
		Imports: []Import{{ModuleName: "std.math", Alias: "math"}},
	}

	tests := []struct {
		name string
		refs []TypeReference
		want string
	}{
		{"void", nil, "void"},
		{"integer", []TypeReference{NewInteger(64, false)}, "Uint64"},
		{"local custom", []TypeReference{NewCustom("app", "Point")}, "Point"},
		{"imported custom", []TypeReference{NewCustom("std.math", "Vector")}, "math.Vector"},
		{"foreign custom", []TypeReference{NewCustom("other", "Thing")}, "other.Thing"},
		{"pointer", []TypeReference{NewPointer([]TypeReference{NewInteger(8, true)}, true)}, "*mutable Int8"},
		{"array", []TypeReference{ConstantArrayType{ValueType: []TypeReference{NewBool()}, Size: 4}}, "Bool[4]"},
		{"function", []TypeReference{FunctionPointerType{Type: FunctionType{
			InputParameterTypes:  []TypeReference{NewInteger(32, true)},
			OutputParameterTypes: []TypeReference{NewBool()},
			IsVariadic:           true,
		}}}, "(Int32, ...) -> (Bool)"},
		{"null", []TypeReference{NewNullPointer()}, "Null_pointer_type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TypeName(tt.refs, module); got != tt.want {
				t.Errorf("TypeName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFunctionSignature(t *testing.T) {
	decl := FunctionDeclaration{
		Name: "add",
		Type: FunctionType{
			InputParameterTypes:  []TypeReference{NewInteger(32, true), NewInteger(32, true)},
			OutputParameterTypes: []TypeReference{NewInteger(32, true)},
		},
		InputParameterNames:  []string{"lhs", "rhs"},
		OutputParameterNames: []string{"result"},
	}
	assert.Equal(t, "function add(lhs: Int32, rhs: Int32) -> (result: Int32)", FunctionSignature(decl, nil))
}

func TestExpressionArena_RoundTrip(t *testing.T) {
	statement := Statement{
		Expression: &VariableDeclarationExpression{
			Name: "total",
			RightHandSide: &BinaryExpression{
				LeftHandSide: &CallExpression{
					Expression: &VariableExpression{Name: "add"},
					Arguments: []Expression{
						&ConstantExpression{Type: NewInteger(32, true), Data: "1"},
						&ConstantExpression{Type: NewInteger(32, true), Data: "2"},
					},
				},
				RightHandSide: &VariableExpression{Name: "offset"},
				Operation:     BinaryAdd,
			},
		},
		SourceLocation: &SourceLocation{Line: 3, Column: 5},
	}

	arena := Flatten(statement)
	require.NoError(t, arena.Validate())
	require.Equal(t, 7, arena.Len())

	root, ok := arena.Expressions[0].Value.(*VariableDeclarationExpression)
	require.True(t, ok, "root must be the statement expression")
	assert.Nil(t, root.RightHandSide, "flat values carry no nested children")

	for i, flat := range arena.Expressions {
		for _, child := range flat.Children {
			if child != NoExpression {
				assert.Greater(t, int(child), i)
			}
		}
	}

	hydrated, err := arena.Hydrate()
	require.NoError(t, err)
	assert.Equal(t, statement, hydrated)
}

func TestExpressionArena_OptionalSlots(t *testing.T) {
	statement := Statement{Expression: &SwitchExpression{
		Value: &VariableExpression{Name: "mode"},
		Cases: []SwitchCase{
			{CaseValue: &ConstantExpression{Type: NewInteger(32, true), Data: "0"}},
			{CaseValue: nil, Statements: []Statement{{Expression: &BreakExpression{LoopCount: 1}}}},
		},
	}}

	arena := Flatten(statement)
	assert.Equal(t, []ExpressionIndex{1, 2, NoExpression}, arena.Expressions[0].Children)

	hydrated, err := arena.Hydrate()
	require.NoError(t, err)
	assert.Equal(t, statement, hydrated)
}

func TestExpressionArena_RejectsOutOfOrderChildren(t *testing.T) {
	arena := ExpressionArena{Expressions: []FlatExpression{
		{Value: &ParenthesisExpression{}, Children: []ExpressionIndex{0}},
	}}

	err := arena.Validate()
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeInvariantViolation))

	_, err = arena.Hydrate()
	assert.Error(t, err)
}

func TestMembers(t *testing.T) {
	point := Declaration{Name: "Point", Value: &Struct{
		Name:        "Point",
		MemberNames: []string{"x", "y"},
		MemberTypes: []TypeReference{NewInteger(32, true), NewFundamental(Float32)},
	}}

	members := Members(point)
	require.Len(t, members, 2)
	assert.Equal(t, "y", members[1].Name)
	assert.Equal(t, []TypeReference{NewFundamental(Float32)}, members[1].Type)

	_, index, ok := FindMember(point, "y")
	assert.True(t, ok)
	assert.Equal(t, 1, index)

	color := Declaration{Name: "Color", Value: &Enum{Name: "Color", Values: []EnumValue{{Name: "Red"}, {Name: "Green"}}}}
	assert.Equal(t, []TypeReference{NewInteger(32, true), NewInteger(32, true)}, MemberTypes(color))

	assert.Nil(t, Members(Declaration{Name: "f", Value: &Function{}}))
}
