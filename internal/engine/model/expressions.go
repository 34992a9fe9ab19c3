// # internal/engine/model/expressions.go
package model

type ExpressionKind int

const (
	ExpressionAccess ExpressionKind = iota
	ExpressionAccessArray
	ExpressionAssert
	ExpressionAssignment
	ExpressionBinary
	ExpressionBlock
	ExpressionBreak
	ExpressionCall
	ExpressionCast
	ExpressionComment
	ExpressionCompileTime
	ExpressionConstant
	ExpressionConstantArray
	ExpressionContinue
	ExpressionDefer
	ExpressionDereferenceAndAccess
	ExpressionForLoop
	ExpressionFunction
	ExpressionIf
	ExpressionInstanceCall
	ExpressionInstantiate
	ExpressionInvalid
	ExpressionNullPointer
	ExpressionParenthesis
	ExpressionReflection
	ExpressionReturn
	ExpressionStruct
	ExpressionSwitch
	ExpressionTernaryCondition
	ExpressionType
	ExpressionUnary
	ExpressionUnion
	ExpressionVariable
	ExpressionVariableDeclaration
	ExpressionVariableDeclarationWithType
	ExpressionWhileLoop
)

// Expression is one of the expression variants below.
type Expression interface {
	ExpressionKind() ExpressionKind
	sealedExpression()
}

// Statement is a root expression plus its optional source location.
type Statement struct {
	Expression     Expression
	SourceLocation *SourceLocation
}

type AccessType int

const (
	AccessRead AccessType = iota
	AccessWrite
	AccessReadWrite
)

type BinaryOperation int

const (
	BinaryAdd BinaryOperation = iota
	BinarySubtract
	BinaryMultiply
	BinaryDivide
	BinaryModulus
	BinaryEqual
	BinaryNotEqual
	BinaryLessThan
	BinaryLessThanOrEqualTo
	BinaryGreaterThan
	BinaryGreaterThanOrEqualTo
	BinaryLogicalAnd
	BinaryLogicalOr
	BinaryBitwiseAnd
	BinaryBitwiseOr
	BinaryBitwiseXor
	BinaryBitShiftLeft
	BinaryBitShiftRight
	BinaryHas
)

// YieldsBool reports whether the operation is a comparison, logical or has
// operation.
func (op BinaryOperation) YieldsBool() bool {
	switch op {
	case BinaryEqual, BinaryNotEqual,
		BinaryLessThan, BinaryLessThanOrEqualTo,
		BinaryGreaterThan, BinaryGreaterThanOrEqualTo,
		BinaryLogicalAnd, BinaryLogicalOr, BinaryHas:
		return true
	}
	return false
}

type UnaryOperation int

const (
	UnaryNot UnaryOperation = iota
	UnaryBitwiseNot
	UnaryMinus
	UnaryPreIncrement
	UnaryPostIncrement
	UnaryPreDecrement
	UnaryPostDecrement
	UnaryIndirection
	UnaryAddressOf
)

type CastType int

const (
	CastNumeric CastType = iota
	CastBitCast
)

type InstantiateType int

const (
	InstantiateDefault InstantiateType = iota
	InstantiateExplicit
)

type AccessExpression struct {
	Expression Expression
	MemberName string
	AccessType AccessType
}

type AccessArrayExpression struct {
	Expression Expression
	Index      Expression
}

type AssertExpression struct {
	Message   string
	Statement Statement
}

type AssignmentExpression struct {
	LeftHandSide        Expression
	RightHandSide       Expression
	AdditionalOperation *BinaryOperation
}

type BinaryExpression struct {
	LeftHandSide  Expression
	RightHandSide Expression
	Operation     BinaryOperation
}

type BlockExpression struct {
	Statements []Statement
}

type BreakExpression struct {
	LoopCount int
}

type CallExpression struct {
	Expression Expression
	Arguments  []Expression
}

type CastExpression struct {
	Source          Expression
	DestinationType []TypeReference
	CastType        CastType
}

type CommentExpression struct {
	Comment string
}

type CompileTimeExpression struct {
	Expression Expression
}

type ConstantExpression struct {
	Type TypeReference
	Data string
}

type ConstantArrayExpression struct {
	ArrayData []Statement
}

type ContinueExpression struct{}

type DeferExpression struct {
	Expression Expression
}

type DereferenceAndAccessExpression struct {
	Expression Expression
	MemberName string
}

// ForLoopExpression iterates VariableName from RangeBegin while
// RangeComparisonOperation holds against RangeEnd. StepBy may be nil.
type ForLoopExpression struct {
	VariableName             string
	RangeBegin               Expression
	RangeEnd                 Statement
	RangeComparisonOperation BinaryOperation
	StepBy                   Expression
	ThenStatements           []Statement
}

type FunctionExpression struct {
	Declaration FunctionDeclaration
	Definition  FunctionDefinition
}

// ConditionStatementPair is one if/else-if/else branch. The final else has a
// nil Condition.
type ConditionStatementPair struct {
	Condition      *Statement
	ThenStatements []Statement
}

type IfExpression struct {
	Series []ConditionStatementPair
}

type InstanceCallExpression struct {
	LeftHandSide Expression
	Arguments    []Statement
}

type InstantiateMember struct {
	MemberName string
	Value      Statement
}

type InstantiateExpression struct {
	Type    InstantiateType
	Members []InstantiateMember
}

type InvalidExpression struct {
	Value string
}

type NullPointerExpression struct{}

type ParenthesisExpression struct {
	Expression Expression
}

type ReflectionExpression struct {
	Name      string
	Arguments []Expression
}

type ReturnExpression struct {
	Expression Expression
}

type StructExpression struct {
	Declaration Struct
}

// SwitchCase with a nil CaseValue is the default case.
type SwitchCase struct {
	CaseValue  Expression
	Statements []Statement
}

type SwitchExpression struct {
	Value Expression
	Cases []SwitchCase
}

type TernaryConditionExpression struct {
	Condition     Expression
	ThenStatement Statement
	ElseStatement Statement
}

type TypeExpression struct {
	Type []TypeReference
}

type UnaryExpression struct {
	Expression Expression
	Operation  UnaryOperation
}

type UnionExpression struct {
	Declaration Union
}

type VariableExpression struct {
	Name       string
	AccessType AccessType
}

type VariableDeclarationExpression struct {
	Name          string
	IsMutable     bool
	RightHandSide Expression
}

type VariableDeclarationWithTypeExpression struct {
	Name          string
	IsMutable     bool
	Type          []TypeReference
	RightHandSide Statement
}

type WhileLoopExpression struct {
	Condition      Statement
	ThenStatements []Statement
}

func (*AccessExpression) ExpressionKind() ExpressionKind      { return ExpressionAccess }
func (*AccessArrayExpression) ExpressionKind() ExpressionKind { return ExpressionAccessArray }
func (*AssertExpression) ExpressionKind() ExpressionKind      { return ExpressionAssert }
func (*AssignmentExpression) ExpressionKind() ExpressionKind  { return ExpressionAssignment }
func (*BinaryExpression) ExpressionKind() ExpressionKind      { return ExpressionBinary }
func (*BlockExpression) ExpressionKind() ExpressionKind       { return ExpressionBlock }
func (*BreakExpression) ExpressionKind() ExpressionKind       { return ExpressionBreak }
func (*CallExpression) ExpressionKind() ExpressionKind        { return ExpressionCall }
func (*CastExpression) ExpressionKind() ExpressionKind        { return ExpressionCast }
func (*CommentExpression) ExpressionKind() ExpressionKind     { return ExpressionComment }
func (*CompileTimeExpression) ExpressionKind() ExpressionKind { return ExpressionCompileTime }
func (*ConstantExpression) ExpressionKind() ExpressionKind    { return ExpressionConstant }
func (*ConstantArrayExpression) ExpressionKind() ExpressionKind {
	return ExpressionConstantArray
}
func (*ContinueExpression) ExpressionKind() ExpressionKind { return ExpressionContinue }
func (*DeferExpression) ExpressionKind() ExpressionKind    { return ExpressionDefer }
func (*DereferenceAndAccessExpression) ExpressionKind() ExpressionKind {
	return ExpressionDereferenceAndAccess
}
func (*ForLoopExpression) ExpressionKind() ExpressionKind      { return ExpressionForLoop }
func (*FunctionExpression) ExpressionKind() ExpressionKind     { return ExpressionFunction }
func (*IfExpression) ExpressionKind() ExpressionKind           { return ExpressionIf }
func (*InstanceCallExpression) ExpressionKind() ExpressionKind { return ExpressionInstanceCall }
func (*InstantiateExpression) ExpressionKind() ExpressionKind  { return ExpressionInstantiate }
func (*InvalidExpression) ExpressionKind() ExpressionKind      { return ExpressionInvalid }
func (*NullPointerExpression) ExpressionKind() ExpressionKind  { return ExpressionNullPointer }
func (*ParenthesisExpression) ExpressionKind() ExpressionKind  { return ExpressionParenthesis }
func (*ReflectionExpression) ExpressionKind() ExpressionKind   { return ExpressionReflection }
func (*ReturnExpression) ExpressionKind() ExpressionKind       { return ExpressionReturn }
func (*StructExpression) ExpressionKind() ExpressionKind       { return ExpressionStruct }
func (*SwitchExpression) ExpressionKind() ExpressionKind       { return ExpressionSwitch }
func (*TernaryConditionExpression) ExpressionKind() ExpressionKind {
	return ExpressionTernaryCondition
}
func (*TypeExpression) ExpressionKind() ExpressionKind     { return ExpressionType }
func (*UnaryExpression) ExpressionKind() ExpressionKind    { return ExpressionUnary }
func (*UnionExpression) ExpressionKind() ExpressionKind    { return ExpressionUnion }
func (*VariableExpression) ExpressionKind() ExpressionKind { return ExpressionVariable }
func (*VariableDeclarationExpression) ExpressionKind() ExpressionKind {
	return ExpressionVariableDeclaration
}
func (*VariableDeclarationWithTypeExpression) ExpressionKind() ExpressionKind {
	return ExpressionVariableDeclarationWithType
}
func (*WhileLoopExpression) ExpressionKind() ExpressionKind { return ExpressionWhileLoop }

func (*AccessExpression) sealedExpression()                      {}
func (*AccessArrayExpression) sealedExpression()                 {}
func (*AssertExpression) sealedExpression()                      {}
func (*AssignmentExpression) sealedExpression()                  {}
func (*BinaryExpression) sealedExpression()                      {}
func (*BlockExpression) sealedExpression()                       {}
func (*BreakExpression) sealedExpression()                       {}
func (*CallExpression) sealedExpression()                        {}
func (*CastExpression) sealedExpression()                        {}
func (*CommentExpression) sealedExpression()                     {}
func (*CompileTimeExpression) sealedExpression()                 {}
func (*ConstantExpression) sealedExpression()                    {}
func (*ConstantArrayExpression) sealedExpression()               {}
func (*ContinueExpression) sealedExpression()                    {}
func (*DeferExpression) sealedExpression()                       {}
func (*DereferenceAndAccessExpression) sealedExpression()        {}
func (*ForLoopExpression) sealedExpression()                     {}
func (*FunctionExpression) sealedExpression()                    {}
func (*IfExpression) sealedExpression()                          {}
func (*InstanceCallExpression) sealedExpression()                {}
func (*InstantiateExpression) sealedExpression()                 {}
func (*InvalidExpression) sealedExpression()                     {}
func (*NullPointerExpression) sealedExpression()                 {}
func (*ParenthesisExpression) sealedExpression()                 {}
func (*ReflectionExpression) sealedExpression()                  {}
func (*ReturnExpression) sealedExpression()                      {}
func (*StructExpression) sealedExpression()                      {}
func (*SwitchExpression) sealedExpression()                      {}
func (*TernaryConditionExpression) sealedExpression()            {}
func (*TypeExpression) sealedExpression()                        {}
func (*UnaryExpression) sealedExpression()                       {}
func (*UnionExpression) sealedExpression()                       {}
func (*VariableExpression) sealedExpression()                    {}
func (*VariableDeclarationExpression) sealedExpression()         {}
func (*VariableDeclarationWithTypeExpression) sealedExpression() {}
func (*WhileLoopExpression) sealedExpression()                   {}
