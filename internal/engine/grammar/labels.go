// # internal/engine/grammar/labels.go
package grammar

import "strings"

// Node labels produced by the hlang grammar. Every dispatch point in
// projection and analysis compares against these constants.
const (
	Module            = "Module"
	ModuleHead        = "Module_head"
	ModuleDeclaration = "Module_declaration"
	ModuleName        = "Module_name"
	Imports           = "Imports"
	Import            = "Import"
	ImportName        = "Import_name"
	ImportAlias       = "Import_alias"

	Declaration = "Declaration"
	Export      = "Export"

	Alias     = "Alias"
	AliasName = "Alias_name"
	AliasType = "Alias_type"

	Enum          = "Enum"
	EnumName      = "Enum_name"
	EnumValues    = "Enum_values"
	EnumValue     = "Enum_value"
	EnumValueName = "Enum_value_name"

	GlobalVariable           = "Global_variable"
	GlobalVariableName       = "Global_variable_name"
	GlobalVariableType       = "Global_variable_type"
	GlobalVariableMutability = "Global_variable_mutability"

	Struct           = "Struct"
	StructName       = "Struct_name"
	StructMembers    = "Struct_members"
	StructMember     = "Struct_member"
	StructMemberName = "Struct_member_name"
	StructMemberType = "Struct_member_type"

	Union           = "Union"
	UnionName       = "Union_name"
	UnionMembers    = "Union_members"
	UnionMember     = "Union_member"
	UnionMemberName = "Union_member_name"
	UnionMemberType = "Union_member_type"

	Function                 = "Function"
	FunctionDeclaration      = "Function_declaration"
	FunctionName             = "Function_name"
	FunctionInputParameters  = "Function_input_parameters"
	FunctionOutputParameters = "Function_output_parameters"
	FunctionParameter        = "Function_parameter"
	FunctionParameterName    = "Function_parameter_name"
	FunctionParameterType    = "Function_parameter_type"
	FunctionPreconditions    = "Function_preconditions"
	FunctionPrecondition     = "Function_precondition"
	FunctionPostconditions   = "Function_postconditions"
	FunctionPostcondition    = "Function_postcondition"
	FunctionConditionName    = "Function_condition_name"
	FunctionDefinition       = "Function_definition"

	Block     = "Block"
	Statement = "Statement"

	Type                                = "Type"
	TypeName                            = "Type_name"
	ModuleType                          = "Module_type"
	ModuleTypeModuleName                = "Module_type_module_name"
	ModuleTypeTypeName                  = "Module_type_type_name"
	PointerType                         = "Pointer_type"
	ConstantArrayType                   = "Constant_array_type"
	ConstantArrayLength                 = "Constant_array_length"
	FunctionPointerType                 = "Function_pointer_type"
	FunctionPointerTypeInputParameters  = "Function_pointer_type_input_parameters"
	FunctionPointerTypeOutputParameters = "Function_pointer_type_output_parameters"

	GenericExpression              = "Generic_expression"
	GenericExpressionOrInstantiate = "Generic_expression_or_instantiate"
	ExpressionLevelPrefix          = "Expression_level_"

	ExpressionAccess            = "Expression_access"
	ExpressionAccessMemberName  = "Expression_access_member_name"
	ExpressionAccessArray       = "Expression_access_array"
	ExpressionAssert            = "Expression_assert"
	ExpressionAssignment        = "Expression_assignment"
	ExpressionAssignmentSymbol  = "Expression_assignment_symbol"
	ExpressionBinaryPrefix      = "Expression_binary_"
	ExpressionBinarySymbol      = "Expression_binary_symbol"
	ExpressionBlock             = "Expression_block"
	ExpressionBlockStatements   = "Expression_block_statements"
	ExpressionBreak             = "Expression_break"
	ExpressionBreakLoopCount    = "Expression_break_loop_count"
	ExpressionCall              = "Expression_call"
	ExpressionCallArguments     = "Expression_call_arguments"
	ExpressionCast              = "Expression_cast"
	ExpressionCastDestination   = "Expression_cast_destination_type"
	ExpressionComment           = "Expression_comment"
	ExpressionCompileTime       = "Expression_compile_time"
	ExpressionConstant          = "Expression_constant"
	ExpressionContinue          = "Expression_continue"
	ExpressionCreateArray       = "Expression_create_array"
	ExpressionCreateArrayItems  = "Expression_create_array_elements"
	ExpressionDefer             = "Expression_defer"
	ExpressionDereferenceAccess = "Expression_dereference_and_access"
	ExpressionFunction          = "Expression_function"
	ExpressionInstanceCall      = "Expression_instance_call"
	ExpressionReflection        = "Expression_reflection"
	ExpressionStruct            = "Expression_struct"
	ExpressionUnion             = "Expression_union"
	ExpressionType              = "Expression_type"
	ExpressionInvalid           = "Expression_invalid"

	ExpressionForLoop           = "Expression_for_loop"
	ExpressionForLoopHead       = "Expression_for_loop_head"
	ExpressionForLoopVariable   = "Expression_for_loop_variable"
	ExpressionForLoopRangeBegin = "Expression_for_loop_range_begin"
	ExpressionForLoopRangeEnd   = "Expression_for_loop_range_end"
	ExpressionForLoopStep       = "Expression_for_loop_step"
	ExpressionForLoopReverse    = "Expression_for_loop_reverse"
	ExpressionForLoopStatements = "Expression_for_loop_statements"

	ExpressionIf           = "Expression_if"
	ExpressionIfElse       = "Expression_if_else"
	ExpressionIfStatements = "Expression_if_statements"

	ExpressionInstantiate           = "Expression_instantiate"
	ExpressionInstantiateType       = "Expression_instantiate_expression_type"
	ExpressionInstantiateMembers    = "Expression_instantiate_members"
	ExpressionInstantiateMember     = "Expression_instantiate_member"
	ExpressionInstantiateMemberName = "Expression_instantiate_member_name"

	ExpressionNullPointer = "Expression_null_pointer"
	ExpressionParenthesis = "Expression_parenthesis"
	ExpressionReturn      = "Expression_return"

	ExpressionSwitch               = "Expression_switch"
	ExpressionSwitchCases          = "Expression_switch_cases"
	ExpressionSwitchCase           = "Expression_switch_case"
	ExpressionSwitchCaseValue      = "Expression_switch_case_value"
	ExpressionSwitchCaseStatements = "Expression_switch_case_statements"

	ExpressionTernaryCondition = "Expression_ternary_condition"

	ExpressionUnaryPostfix       = "Expression_unary_0"
	ExpressionUnaryPostfixSymbol = "Expression_unary_0_symbol"
	ExpressionUnaryPrefix        = "Expression_unary_1"
	ExpressionUnaryPrefixSymbol  = "Expression_unary_1_symbol"

	ExpressionVariable                    = "Expression_variable"
	ExpressionVariableDeclaration         = "Expression_variable_declaration"
	ExpressionVariableDeclarationWithType = "Expression_variable_declaration_with_type"
	ExpressionVariableDeclarationType     = "Expression_variable_declaration_type"
	ExpressionVariableMutability          = "Expression_variable_mutability"
	VariableName                          = "Variable_name"

	ExpressionWhileLoop           = "Expression_while_loop"
	ExpressionWhileLoopStatements = "Expression_while_loop_statements"

	Error = "ERROR"
)

// Labels for constructs that only appear in some declarations.
const (
	TypeConstructor               = "Type_constructor"
	TypeConstructorName           = "Type_constructor_name"
	TypeConstructorParameters     = "Type_constructor_parameters"
	FunctionConstructor           = "Function_constructor"
	FunctionConstructorName       = "Function_constructor_name"
	FunctionConstructorParameters = "Function_constructor_parameters"

	TypeInstanceType           = "Type_instance_type"
	TypeInstanceTypeParameters = "Type_instance_type_parameters"

	ExpressionAssertMessage          = "Expression_assert_message"
	ExpressionInstanceCallParameters = "Expression_instance_call_parameters"
	ExpressionReflectionArguments    = "Expression_reflection_arguments"
)

// Binary expression labels, one per precedence level.
const (
	ExpressionBinaryMultiplication = "Expression_binary_multiplication"
	ExpressionBinaryAddition       = "Expression_binary_addition"
	ExpressionBinaryBitwiseShift   = "Expression_binary_bitwise_shift"
	ExpressionBinaryRelational     = "Expression_binary_relational"
	ExpressionBinaryEquality       = "Expression_binary_equality"
	ExpressionBinaryBitwiseAnd     = "Expression_binary_bitwise_and"
	ExpressionBinaryBitwiseXor     = "Expression_binary_bitwise_xor"
	ExpressionBinaryBitwiseOr      = "Expression_binary_bitwise_or"
	ExpressionBinaryLogicalAnd     = "Expression_binary_logical_and"
	ExpressionBinaryLogicalOr      = "Expression_binary_logical_or"
	ExpressionBinaryHas            = "Expression_binary_has"
)

// StatementLists are the labels whose children are all Statement nodes.
var StatementLists = []string{
	Block,
	ExpressionBlockStatements,
	ExpressionForLoopStatements,
	ExpressionIfStatements,
	ExpressionSwitchCaseStatements,
	ExpressionWhileLoopStatements,
}

// NestedStatementLists are the statement lists that open a scope inside a
// function body.
var NestedStatementLists = StatementLists[1:]

// IsBinaryExpression reports whether label names a binary expression node.
func IsBinaryExpression(label string) bool {
	return strings.HasPrefix(label, ExpressionBinaryPrefix) && label != ExpressionBinarySymbol
}

// IsTransparent reports whether label is a single-child wrapper that carries
// no meaning of its own.
func IsTransparent(label string) bool {
	return label == GenericExpression ||
		label == GenericExpressionOrInstantiate ||
		strings.HasPrefix(label, ExpressionLevelPrefix)
}

// IsStatementList reports whether label is one of StatementLists.
func IsStatementList(label string) bool {
	for _, l := range StatementLists {
		if l == label {
			return true
		}
	}
	return false
}
