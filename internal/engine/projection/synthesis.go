// # internal/engine/projection/synthesis.go
package projection

import (
	"strconv"

	"hlsense/internal/core/errors"
	"hlsense/internal/engine/grammar"
	"hlsense/internal/engine/model"
	"hlsense/internal/engine/parsetree"
)

var (
	binarySymbols  = map[model.BinaryOperation]string{}
	prefixSymbols  = map[model.UnaryOperation]string{}
	postfixSymbols = map[model.UnaryOperation]string{}
)

func init() {
	for symbol, op := range binaryOperations {
		binarySymbols[op] = symbol
	}
	for symbol, op := range prefixOperations {
		prefixSymbols[op] = symbol
	}
	for symbol, op := range postfixOperations {
		postfixSymbols[op] = symbol
	}
}

var binaryLevels = map[model.BinaryOperation]string{
	model.BinaryMultiply:             grammar.ExpressionBinaryMultiplication,
	model.BinaryDivide:               grammar.ExpressionBinaryMultiplication,
	model.BinaryModulus:              grammar.ExpressionBinaryMultiplication,
	model.BinaryAdd:                  grammar.ExpressionBinaryAddition,
	model.BinarySubtract:             grammar.ExpressionBinaryAddition,
	model.BinaryBitShiftLeft:         grammar.ExpressionBinaryBitwiseShift,
	model.BinaryBitShiftRight:        grammar.ExpressionBinaryBitwiseShift,
	model.BinaryLessThan:             grammar.ExpressionBinaryRelational,
	model.BinaryLessThanOrEqualTo:    grammar.ExpressionBinaryRelational,
	model.BinaryGreaterThan:          grammar.ExpressionBinaryRelational,
	model.BinaryGreaterThanOrEqualTo: grammar.ExpressionBinaryRelational,
	model.BinaryEqual:                grammar.ExpressionBinaryEquality,
	model.BinaryNotEqual:             grammar.ExpressionBinaryEquality,
	model.BinaryBitwiseAnd:           grammar.ExpressionBinaryBitwiseAnd,
	model.BinaryBitwiseXor:           grammar.ExpressionBinaryBitwiseXor,
	model.BinaryBitwiseOr:            grammar.ExpressionBinaryBitwiseOr,
	model.BinaryLogicalAnd:           grammar.ExpressionBinaryLogicalAnd,
	model.BinaryLogicalOr:            grammar.ExpressionBinaryLogicalOr,
	model.BinaryHas:                  grammar.ExpressionBinaryHas,
}

// synthesizer builds tree fragments in the shape the projection reads. The
// first failure sticks in err and later output is discarded by the caller.
type synthesizer struct {
	module *model.Module
	err    error
}

func (s *synthesizer) fail(err error) {
	if s.err == nil {
		s.err = err
	}
}

func node(label string, children ...*parsetree.Node) *parsetree.Node {
	return parsetree.NewNode(label, children...)
}

func leaf(text string) *parsetree.Node {
	return parsetree.Leaf(text)
}

func named(label, text string) *parsetree.Node {
	return node(label, leaf(text))
}

// commaSeparated interleaves items with "," terminals so item k sits at
// child 2k.
func commaSeparated(label string, items []*parsetree.Node) *parsetree.Node {
	n := node(label)
	for i, item := range items {
		if i > 0 {
			n.Children = append(n.Children, leaf(","))
		}
		n.Children = append(n.Children, item)
	}
	return n
}

// ModuleToNode synthesizes the tree of a whole module.
func ModuleToNode(m *model.Module) (*parsetree.Node, error) {
	s := &synthesizer{module: m}
	imports := node(grammar.Imports)
	for _, imp := range m.Imports {
		imports.Children = append(imports.Children, node(grammar.Import,
			leaf("import"), named(grammar.ImportName, imp.ModuleName), leaf("as"), named(grammar.ImportAlias, imp.Alias), leaf(";")))
	}
	root := node(grammar.Module, node(grammar.ModuleHead,
		node(grammar.ModuleDeclaration, leaf("module"), named(grammar.ModuleName, m.Name), leaf(";")),
		imports,
	))
	for _, d := range m.Declarations {
		root.Children = append(root.Children, s.declaration(d))
	}
	if s.err != nil {
		return nil, s.err
	}
	return root, nil
}

// DeclarationToNode synthesizes one Declaration node. m resolves custom type
// references to import aliases and may be nil.
func DeclarationToNode(d model.Declaration, m *model.Module) (*parsetree.Node, error) {
	s := &synthesizer{module: m}
	n := s.declaration(d)
	if s.err != nil {
		return nil, s.err
	}
	return n, nil
}

// StatementToNode flattens statement into its arena and synthesizes the
// Statement node from it.
func StatementToNode(statement model.Statement, m *model.Module) (*parsetree.Node, error) {
	s := &synthesizer{module: m}
	n := s.statement(statement)
	if s.err != nil {
		return nil, s.err
	}
	return n, nil
}

// ExpressionToNode synthesizes the expression node of e.
func ExpressionToNode(e model.Expression, m *model.Module) (*parsetree.Node, error) {
	s := &synthesizer{module: m}
	n := s.expression(e)
	if s.err != nil {
		return nil, s.err
	}
	return n, nil
}

// ArenaToNode synthesizes the root expression of arena. Expressions are built
// from the highest index down, so every child exists before its parent.
func ArenaToNode(arena model.ExpressionArena, m *model.Module) (*parsetree.Node, error) {
	s := &synthesizer{module: m}
	n := s.arena(arena)
	if s.err != nil {
		return nil, s.err
	}
	return n, nil
}

// TypeReferenceToNode synthesizes a Type node. An empty refs yields void.
func TypeReferenceToNode(refs []model.TypeReference, m *model.Module) (*parsetree.Node, error) {
	s := &synthesizer{module: m}
	n := s.typeReference(refs)
	if s.err != nil {
		return nil, s.err
	}
	return n, nil
}

func (s *synthesizer) arena(arena model.ExpressionArena) *parsetree.Node {
	if err := arena.Validate(); err != nil {
		s.fail(err)
		return nil
	}
	if arena.Len() == 0 {
		s.fail(errors.Invariant(grammar.Statement, "empty expression arena"))
		return nil
	}
	nodes := make([]*parsetree.Node, arena.Len())
	for i := arena.Len() - 1; i >= 0; i-- {
		flat := arena.Expressions[i]
		subs := make([]*parsetree.Node, len(flat.Children))
		for j, child := range flat.Children {
			if child != model.NoExpression {
				subs[j] = nodes[child]
			}
		}
		nodes[i] = s.flatExpression(flat.Value, subs)
	}
	return nodes[0]
}

func (s *synthesizer) expression(e model.Expression) *parsetree.Node {
	return s.arena(model.Flatten(model.Statement{Expression: e}))
}

func (s *synthesizer) statement(statement model.Statement) *parsetree.Node {
	if statement.Expression == nil {
		s.fail(errors.Invariant(grammar.Statement, "statement has no expression"))
		return nil
	}
	expression := s.arena(model.Flatten(statement))
	n := node(grammar.Statement, expression)
	switch statement.Expression.(type) {
	case *model.BlockExpression, *model.ForLoopExpression, *model.IfExpression,
		*model.SwitchExpression, *model.WhileLoopExpression:
	default:
		n.Children = append(n.Children, leaf(";"))
	}
	return n
}

func (s *synthesizer) statementList(label string, statements []model.Statement) *parsetree.Node {
	n := node(label)
	for _, statement := range statements {
		n.Children = append(n.Children, s.statement(statement))
	}
	return n
}

// flatExpression builds the node of a flat expression value whose
// sub-expression slots have already been synthesized into subs.
func (s *synthesizer) flatExpression(value model.Expression, subs []*parsetree.Node) *parsetree.Node {
	switch v := value.(type) {
	case *model.AccessExpression:
		return node(grammar.ExpressionAccess, subs[0], leaf("."), named(grammar.ExpressionAccessMemberName, v.MemberName))

	case *model.AccessArrayExpression:
		return node(grammar.ExpressionAccessArray, subs[0], leaf("["), subs[1], leaf("]"))

	case *model.AssertExpression:
		n := node(grammar.ExpressionAssert, leaf("assert"), s.expression(v.Statement.Expression))
		if v.Message != "" {
			n.Children = append(n.Children, named(grammar.ExpressionAssertMessage, v.Message))
		}
		return n

	case *model.AssignmentExpression:
		symbol := "="
		if v.AdditionalOperation != nil {
			symbol = binarySymbols[*v.AdditionalOperation] + "="
		}
		return node(grammar.ExpressionAssignment, subs[0], named(grammar.ExpressionAssignmentSymbol, symbol), subs[1])

	case *model.BinaryExpression:
		return node(binaryLevels[v.Operation], subs[0], named(grammar.ExpressionBinarySymbol, binarySymbols[v.Operation]), subs[1])

	case *model.BlockExpression:
		return node(grammar.ExpressionBlock, leaf("{"), s.statementList(grammar.ExpressionBlockStatements, v.Statements), leaf("}"))

	case *model.BreakExpression:
		n := node(grammar.ExpressionBreak, leaf("break"))
		if v.LoopCount != 0 {
			n.Children = append(n.Children, named(grammar.ExpressionBreakLoopCount, strconv.Itoa(v.LoopCount)))
		}
		return n

	case *model.CallExpression:
		return node(grammar.ExpressionCall, subs[0], leaf("("), commaSeparated(grammar.ExpressionCallArguments, subs[1:]), leaf(")"))

	case *model.CastExpression:
		return node(grammar.ExpressionCast, subs[0], leaf("as"), node(grammar.ExpressionCastDestination, s.typeReference(v.DestinationType)))

	case *model.CommentExpression:
		return named(grammar.ExpressionComment, v.Comment)

	case *model.CompileTimeExpression:
		return node(grammar.ExpressionCompileTime, leaf("comptime"), subs[0])

	case *model.ConstantExpression:
		return named(grammar.ExpressionConstant, ConstantToken(v.Type, v.Data))

	case *model.ConstantArrayExpression:
		items := make([]*parsetree.Node, 0, len(v.ArrayData))
		for _, item := range v.ArrayData {
			items = append(items, s.expression(item.Expression))
		}
		return node(grammar.ExpressionCreateArray, leaf("["), commaSeparated(grammar.ExpressionCreateArrayItems, items), leaf("]"))

	case *model.ContinueExpression:
		return node(grammar.ExpressionContinue, leaf("continue"))

	case *model.DeferExpression:
		return node(grammar.ExpressionDefer, leaf("defer"), subs[0])

	case *model.DereferenceAndAccessExpression:
		return node(grammar.ExpressionDereferenceAccess, subs[0], leaf("->"), named(grammar.ExpressionAccessMemberName, v.MemberName))

	case *model.ForLoopExpression:
		head := node(grammar.ExpressionForLoopHead,
			leaf("for"), named(grammar.ExpressionForLoopVariable, v.VariableName), leaf("in"),
			node(grammar.ExpressionForLoopRangeBegin, subs[0]), leaf("to"),
			node(grammar.ExpressionForLoopRangeEnd, s.expression(v.RangeEnd.Expression)))
		if subs[1] != nil {
			head.Children = append(head.Children, node(grammar.ExpressionForLoopStep, leaf("step_by"), subs[1]))
		}
		if v.RangeComparisonOperation == model.BinaryGreaterThan {
			head.Children = append(head.Children, named(grammar.ExpressionForLoopReverse, "reverse"))
		}
		return node(grammar.ExpressionForLoop, head, leaf("{"), s.statementList(grammar.ExpressionForLoopStatements, v.ThenStatements), leaf("}"))

	case *model.FunctionExpression:
		return node(grammar.ExpressionFunction, s.functionDeclaration(v.Declaration), s.functionDefinition(v.Definition.Statements))

	case *model.IfExpression:
		return s.ifSeries(v.Series)

	case *model.InstanceCallExpression:
		arguments := make([]*parsetree.Node, 0, len(v.Arguments))
		for _, argument := range v.Arguments {
			arguments = append(arguments, s.expression(argument.Expression))
		}
		return node(grammar.ExpressionInstanceCall, subs[0], leaf("<"), commaSeparated(grammar.ExpressionInstanceCallParameters, arguments), leaf(">"))

	case *model.InstantiateExpression:
		kind := node(grammar.ExpressionInstantiateType)
		if v.Type == model.InstantiateExplicit {
			kind.Children = append(kind.Children, leaf("explicit"))
		}
		members := make([]*parsetree.Node, 0, len(v.Members))
		for _, member := range v.Members {
			members = append(members, node(grammar.ExpressionInstantiateMember,
				named(grammar.ExpressionInstantiateMemberName, member.MemberName), leaf(":"), s.expression(member.Value.Expression)))
		}
		return node(grammar.ExpressionInstantiate, kind, leaf("{"), commaSeparated(grammar.ExpressionInstantiateMembers, members), leaf("}"))

	case *model.InvalidExpression:
		return named(grammar.ExpressionInvalid, v.Value)

	case *model.NullPointerExpression:
		return node(grammar.ExpressionNullPointer, leaf("null"))

	case *model.ParenthesisExpression:
		return node(grammar.ExpressionParenthesis, leaf("("), subs[0], leaf(")"))

	case *model.ReflectionExpression:
		return node(grammar.ExpressionReflection, leaf("@"+v.Name), leaf("("), commaSeparated(grammar.ExpressionReflectionArguments, subs), leaf(")"))

	case *model.ReturnExpression:
		n := node(grammar.ExpressionReturn, leaf("return"))
		if subs[0] != nil {
			n.Children = append(n.Children, subs[0])
		}
		return n

	case *model.StructExpression:
		return node(grammar.ExpressionStruct, s.structNode(v.Declaration))

	case *model.SwitchExpression:
		cases := node(grammar.ExpressionSwitchCases)
		for i, c := range v.Cases {
			statements := s.statementList(grammar.ExpressionSwitchCaseStatements, c.Statements)
			if subs[i+1] == nil {
				cases.Children = append(cases.Children, node(grammar.ExpressionSwitchCase, leaf("default"), leaf(":"), statements))
				continue
			}
			cases.Children = append(cases.Children, node(grammar.ExpressionSwitchCase,
				leaf("case"), node(grammar.ExpressionSwitchCaseValue, subs[i+1]), leaf(":"), statements))
		}
		return node(grammar.ExpressionSwitch, leaf("switch"), subs[0], leaf("{"), cases, leaf("}"))

	case *model.TernaryConditionExpression:
		return node(grammar.ExpressionTernaryCondition, subs[0], leaf("?"),
			s.expression(v.ThenStatement.Expression), leaf(":"), s.expression(v.ElseStatement.Expression))

	case *model.TypeExpression:
		return node(grammar.ExpressionType, s.typeReference(v.Type))

	case *model.UnaryExpression:
		if symbol, ok := postfixSymbols[v.Operation]; ok {
			return node(grammar.ExpressionUnaryPostfix, subs[0], named(grammar.ExpressionUnaryPostfixSymbol, symbol))
		}
		return node(grammar.ExpressionUnaryPrefix, named(grammar.ExpressionUnaryPrefixSymbol, prefixSymbols[v.Operation]), subs[0])

	case *model.UnionExpression:
		return node(grammar.ExpressionUnion, s.unionNode(v.Declaration))

	case *model.VariableExpression:
		return named(grammar.ExpressionVariable, v.Name)

	case *model.VariableDeclarationExpression:
		return node(grammar.ExpressionVariableDeclaration,
			named(grammar.ExpressionVariableMutability, mutability(v.IsMutable)), named(grammar.VariableName, v.Name), leaf("="), subs[0])

	case *model.VariableDeclarationWithTypeExpression:
		return node(grammar.ExpressionVariableDeclarationWithType,
			named(grammar.ExpressionVariableMutability, mutability(v.IsMutable)), named(grammar.VariableName, v.Name), leaf(":"),
			node(grammar.ExpressionVariableDeclarationType, s.typeReference(v.Type)), leaf("="), s.expression(v.RightHandSide.Expression))

	case *model.WhileLoopExpression:
		return node(grammar.ExpressionWhileLoop, leaf("while"), s.expression(v.Condition.Expression),
			leaf("{"), s.statementList(grammar.ExpressionWhileLoopStatements, v.ThenStatements), leaf("}"))
	}

	s.fail(errors.Invariant("", "cannot synthesize expression %T", value))
	return nil
}

// ifSeries nests each following branch inside the else of the previous one.
func (s *synthesizer) ifSeries(series []model.ConditionStatementPair) *parsetree.Node {
	if len(series) == 0 || series[0].Condition == nil {
		s.fail(errors.Invariant(grammar.ExpressionIf, "if series must start with a condition"))
		return nil
	}
	first := series[0]
	n := node(grammar.ExpressionIf, leaf("if"), s.expression(first.Condition.Expression),
		leaf("{"), s.statementList(grammar.ExpressionIfStatements, first.ThenStatements), leaf("}"))
	if len(series) == 1 {
		return n
	}
	next := series[1]
	if next.Condition == nil {
		n.Children = append(n.Children, node(grammar.ExpressionIfElse,
			leaf("else"), leaf("{"), s.statementList(grammar.ExpressionIfStatements, next.ThenStatements), leaf("}")))
		return n
	}
	n.Children = append(n.Children, node(grammar.ExpressionIfElse, leaf("else"), s.ifSeries(series[1:])))
	return n
}

func mutability(isMutable bool) string {
	if isMutable {
		return "mutable"
	}
	return "var"
}

func (s *synthesizer) declaration(d model.Declaration) *parsetree.Node {
	export := node(grammar.Export)
	if d.IsExport {
		export.Children = append(export.Children, leaf("export"))
	}

	var payload *parsetree.Node
	switch v := d.Value.(type) {
	case *model.Alias:
		payload = node(grammar.Alias, leaf("using"), named(grammar.AliasName, v.Name), leaf("="),
			node(grammar.AliasType, s.typeReference(v.Type)), leaf(";"))
	case *model.Enum:
		values := make([]*parsetree.Node, 0, len(v.Values))
		for _, value := range v.Values {
			n := node(grammar.EnumValue, named(grammar.EnumValueName, value.Name))
			if value.Value != nil {
				n.Children = append(n.Children, leaf("="), s.expression(value.Value.Expression))
			}
			values = append(values, n)
		}
		payload = node(grammar.Enum, leaf("enum"), named(grammar.EnumName, v.Name), leaf("{"), commaSeparated(grammar.EnumValues, values), leaf("}"))
	case *model.Function:
		payload = node(grammar.Function, s.functionDeclaration(v.Declaration))
		if v.Definition != nil {
			payload.Children = append(payload.Children, s.functionDefinition(v.Definition.Statements))
		}
	case *model.FunctionConstructor:
		payload = s.constructor(grammar.FunctionConstructor, "function_constructor", grammar.FunctionConstructorName,
			grammar.FunctionConstructorParameters, v.Name, v.Parameters, v.Statements)
	case *model.GlobalVariable:
		payload = node(grammar.GlobalVariable,
			named(grammar.GlobalVariableMutability, mutability(v.IsMutable)), named(grammar.GlobalVariableName, v.Name))
		if len(v.Type) > 0 {
			payload.Children = append(payload.Children, leaf(":"), node(grammar.GlobalVariableType, s.typeReference(v.Type)))
		}
		if v.InitialValue.Expression != nil {
			payload.Children = append(payload.Children, leaf("="), s.expression(v.InitialValue.Expression))
		}
		payload.Children = append(payload.Children, leaf(";"))
	case *model.Struct:
		payload = s.structNode(*v)
	case *model.TypeConstructor:
		payload = s.constructor(grammar.TypeConstructor, "type_constructor", grammar.TypeConstructorName,
			grammar.TypeConstructorParameters, v.Name, v.Parameters, v.Statements)
	case *model.Union:
		payload = s.unionNode(*v)
	default:
		s.fail(errors.Invariant(grammar.Declaration, "cannot synthesize declaration %T", d.Value))
		return nil
	}
	return node(grammar.Declaration, export, payload)
}

func (s *synthesizer) structNode(v model.Struct) *parsetree.Node {
	members := node(grammar.StructMembers)
	for i, name := range v.MemberNames {
		member := node(grammar.StructMember, named(grammar.StructMemberName, name), leaf(":"),
			node(grammar.StructMemberType, s.typeReference(single(v.MemberTypes, i))))
		if i < len(v.MemberDefaultValues) && v.MemberDefaultValues[i].Expression != nil {
			member.Children = append(member.Children, leaf("="), s.expression(v.MemberDefaultValues[i].Expression))
		}
		member.Children = append(member.Children, leaf(";"))
		members.Children = append(members.Children, member)
	}
	return node(grammar.Struct, leaf("struct"), named(grammar.StructName, v.Name), leaf("{"), members, leaf("}"))
}

func (s *synthesizer) unionNode(v model.Union) *parsetree.Node {
	members := node(grammar.UnionMembers)
	for i, name := range v.MemberNames {
		members.Children = append(members.Children, node(grammar.UnionMember, named(grammar.UnionMemberName, name), leaf(":"),
			node(grammar.UnionMemberType, s.typeReference(single(v.MemberTypes, i))), leaf(";")))
	}
	return node(grammar.Union, leaf("union"), named(grammar.UnionName, v.Name), leaf("{"), members, leaf("}"))
}

func single(types []model.TypeReference, i int) []model.TypeReference {
	if i < len(types) && types[i] != nil {
		return []model.TypeReference{types[i]}
	}
	return nil
}

func (s *synthesizer) parameters(label string, names []string, types []model.TypeReference, variadic bool) *parsetree.Node {
	items := make([]*parsetree.Node, 0, len(names)+1)
	for i, name := range names {
		items = append(items, s.parameter(name, single(types, i)))
	}
	if variadic {
		items = append(items, node(grammar.FunctionParameter, leaf("...")))
	}
	return commaSeparated(label, items)
}

func (s *synthesizer) parameter(name string, refs []model.TypeReference) *parsetree.Node {
	return node(grammar.FunctionParameter, named(grammar.FunctionParameterName, name), leaf(":"),
		node(grammar.FunctionParameterType, s.typeReference(refs)))
}

func (s *synthesizer) functionDeclaration(d model.FunctionDeclaration) *parsetree.Node {
	pre := node(grammar.FunctionPreconditions)
	for _, c := range d.Preconditions {
		pre.Children = append(pre.Children, s.condition(grammar.FunctionPrecondition, "precondition", c))
	}
	post := node(grammar.FunctionPostconditions)
	for _, c := range d.Postconditions {
		post.Children = append(post.Children, s.condition(grammar.FunctionPostcondition, "postcondition", c))
	}
	return node(grammar.FunctionDeclaration,
		leaf("function"), named(grammar.FunctionName, d.Name),
		leaf("("), s.parameters(grammar.FunctionInputParameters, d.InputParameterNames, d.Type.InputParameterTypes, d.Type.IsVariadic), leaf(")"),
		leaf("->"),
		leaf("("), s.parameters(grammar.FunctionOutputParameters, d.OutputParameterNames, d.Type.OutputParameterTypes, false), leaf(")"),
		pre, post,
	)
}

func (s *synthesizer) condition(label, keyword string, c model.FunctionCondition) *parsetree.Node {
	return node(label, leaf(keyword), named(grammar.FunctionConditionName, c.Description),
		leaf("{"), s.expression(c.Condition.Expression), leaf("}"))
}

func (s *synthesizer) functionDefinition(statements []model.Statement) *parsetree.Node {
	return node(grammar.FunctionDefinition, leaf("{"), s.statementList(grammar.Block, statements), leaf("}"))
}

func (s *synthesizer) constructor(label, keyword, nameLabel, parametersLabel, name string, parameters []model.TypeConstructorParameter, statements []model.Statement) *parsetree.Node {
	items := make([]*parsetree.Node, 0, len(parameters))
	for _, parameter := range parameters {
		items = append(items, s.parameter(parameter.Name, parameter.Type))
	}
	return node(label, leaf(keyword), named(nameLabel, name),
		leaf("("), commaSeparated(parametersLabel, items), leaf(")"),
		leaf("{"), s.statementList(grammar.Block, statements), leaf("}"))
}

func (s *synthesizer) typeReference(refs []model.TypeReference) *parsetree.Node {
	if len(refs) == 0 {
		return node(grammar.Type, named(grammar.TypeName, "void"))
	}
	return node(grammar.Type, s.typeVariant(refs[0]))
}

func (s *synthesizer) typeVariant(ref model.TypeReference) *parsetree.Node {
	switch v := ref.(type) {
	case model.ConstantArrayType:
		return node(grammar.ConstantArrayType, leaf("Constant_array"), leaf("<"), s.typeReference(v.ValueType), leaf(","),
			named(grammar.ConstantArrayLength, strconv.Itoa(v.Size)), leaf(">"))

	case model.CustomTypeReference:
		if v.ModuleName == "" || (s.module != nil && v.ModuleName == s.module.Name) {
			return named(grammar.TypeName, v.Name)
		}
		alias := v.ModuleName
		if s.module != nil {
			if imp, ok := s.module.FindImportByModule(v.ModuleName); ok {
				alias = imp.Alias
			}
		}
		return node(grammar.ModuleType, named(grammar.ModuleTypeModuleName, alias), leaf("."), named(grammar.ModuleTypeTypeName, v.Name))

	case model.FunctionPointerType:
		return node(grammar.FunctionPointerType, leaf("function"), leaf("<"),
			leaf("("), s.parameters(grammar.FunctionPointerTypeInputParameters, v.InputParameterNames, v.Type.InputParameterTypes, v.Type.IsVariadic), leaf(")"),
			leaf("->"),
			leaf("("), s.parameters(grammar.FunctionPointerTypeOutputParameters, v.OutputParameterNames, v.Type.OutputParameterTypes, false), leaf(")"),
			leaf(">"))

	case model.PointerType:
		n := node(grammar.PointerType, leaf("*"))
		if v.IsMutable {
			n.Children = append(n.Children, leaf("mutable"))
		}
		n.Children = append(n.Children, s.typeReference(v.ElementType))
		return n

	case model.TypeInstance:
		arguments := make([]*parsetree.Node, 0, len(v.Arguments))
		for _, argument := range v.Arguments {
			arguments = append(arguments, s.expression(argument.Expression))
		}
		return node(grammar.TypeInstanceType, s.typeReference([]model.TypeReference{v.TypeConstructor}), leaf("<"),
			commaSeparated(grammar.TypeInstanceTypeParameters, arguments), leaf(">"))
	}

	return named(grammar.TypeName, model.TypeName([]model.TypeReference{ref}, s.module))
}
