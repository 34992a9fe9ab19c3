// # internal/engine/analysis/instantiate.go
package analysis

import (
	"context"

	"hlsense/internal/engine/grammar"
	"hlsense/internal/engine/model"
	"hlsense/internal/engine/parsetree"
	"hlsense/internal/engine/projection"
)

// InstantiateMemberResult is the struct member a cursor inside an
// instantiate expression refers to.
type InstantiateMemberResult struct {
	Declaration *DeclarationResult
	MemberIndex int
	MemberName  string
	MemberType  []model.TypeReference
}

// valueContext returns the nearest ancestor of pos that is not a
// transparent wrapper, and the index of the child leading back to pos.
func valueContext(root *parsetree.Node, pos parsetree.Position) (*parsetree.Node, parsetree.Position, int, bool) {
	child := pos
	for parent := pos.Parent(); parent != nil; parent = parent.Parent() {
		n, err := parsetree.NodeAt(root, parent)
		if err != nil {
			return nil, nil, 0, false
		}
		if !grammar.IsTransparent(n.Label) {
			return n, parent.Clone(), child[len(parent)], true
		}
		child = parent
	}
	return nil, nil, 0, false
}

// instantiateCustomType finds the type an instantiate expression at pos
// builds. The expression carries no type of its own, so it is taken from
// whatever the expression is the value of: an enclosing instantiate member,
// a typed variable, a struct member default, a return, an assignment or a
// call argument.
func (q *query) instantiateCustomType(pos parsetree.Position) (*model.CustomTypeReference, error) {
	root := q.root()
	holder, holderPos, childIndex, ok := valueContext(root, pos)
	if !ok {
		return nil, nil
	}
	module := q.module()

	var refs []model.TypeReference
	switch holder.Label {
	case grammar.ExpressionInstantiateMember:
		if childIndex != 2 {
			return nil, nil
		}
		instPos := holderPos.Parent().Parent()
		outer, err := q.instantiateCustomType(instPos)
		if err != nil || outer == nil {
			return nil, err
		}
		decl, err := q.instantiateDeclaration(*outer)
		if err != nil || decl == nil {
			return nil, err
		}
		m, _, found := model.FindMember(decl.Declaration, parsetree.Text(holder.Child(0)))
		if !found {
			return nil, nil
		}
		refs = fixTypes(decl.Module, m.Type)

	case grammar.ExpressionVariableDeclarationWithType:
		typed, err := q.typeChild(holder.Child(3))
		if err != nil {
			return nil, err
		}
		refs = typed

	case grammar.GlobalVariable:
		typeIndex, ok := parsetree.FirstChildMatching(holder, parsetree.HasLabel(grammar.GlobalVariableType))
		if !ok {
			return nil, nil
		}
		typed, err := q.typeChild(holder.Children[typeIndex])
		if err != nil {
			return nil, err
		}
		refs = typed

	case grammar.StructMember:
		typeIndex, ok := parsetree.FirstChildMatching(holder, parsetree.HasLabel(grammar.StructMemberType))
		if !ok || childIndex <= typeIndex {
			return nil, nil
		}
		typed, err := q.typeChild(holder.Children[typeIndex])
		if err != nil {
			return nil, err
		}
		refs = typed

	case grammar.ExpressionReturn:
		fn, err := q.enclosingFunction(pos)
		if err != nil || fn == nil {
			return nil, err
		}
		refs = fixTypes(module, single(fn.Type.OutputParameterTypes, 0))

	case grammar.ExpressionAssignment:
		if childIndex != 2 {
			return nil, nil
		}
		et, err := q.inferNode(pos, holder.Child(0))
		if err != nil {
			return nil, err
		}
		refs = et

	case grammar.ExpressionCallArguments:
		call := parsetree.MustNodeAt(root, holderPos.Parent())
		callee, err := q.inferNode(pos, call.Child(0))
		if err != nil || callee == nil {
			return nil, err
		}
		fn, err := q.functionType(callee)
		if err != nil || fn == nil {
			return nil, err
		}
		refs = single(fn.InputParameterTypes, childIndex/2)
	}

	custom, ok := model.AsCustom(refs)
	if !ok {
		return nil, nil
	}
	custom = fixCustom(module, custom)
	return &custom, nil
}

// typeChild projects the Type node held by a type wrapper.
func (q *query) typeChild(wrapper *parsetree.Node) ([]model.TypeReference, error) {
	typeNode := wrapper.Child(0)
	if typeNode == nil {
		return nil, nil
	}
	refs, err := projection.NodeToTypeReference(q.root(), typeNode)
	if err != nil {
		return nil, err
	}
	return fixTypes(q.module(), refs), nil
}

// enclosingFunction returns the declaration of the lambda or top-level
// function containing pos.
func (q *query) enclosingFunction(pos parsetree.Position) (*model.FunctionDeclaration, error) {
	root := q.root()
	if lambda, _, ok := parsetree.AncestorWithName(root, pos, grammar.ExpressionFunction); ok {
		e, err := projection.NodeToExpression(root, lambda)
		if err != nil {
			return nil, err
		}
		if fn, ok := e.(*model.FunctionExpression); ok {
			return &fn.Declaration, nil
		}
		return nil, nil
	}
	if len(pos) == 0 {
		return nil, nil
	}
	i, ok := q.current.indexAt(pos[0])
	if !ok {
		return nil, nil
	}
	if fn, ok := q.module().Declarations[i].Value.(*model.Function); ok {
		return &fn.Declaration, nil
	}
	return nil, nil
}

// instantiateDeclaration resolves ref to the declaration whose members an
// instantiate expression fills.
func (q *query) instantiateDeclaration(ref model.CustomTypeReference) (*DeclarationResult, error) {
	decl, err := q.customDeclaration(ref)
	if err != nil || decl == nil {
		return nil, err
	}
	return q.underlying(decl)
}

// FindInstantiateCustomTypeReferenceFromNode returns the type built by the
// Expression_instantiate node at pos, or nil when nothing around it names
// one.
func (a *Analyzer) FindInstantiateCustomTypeReferenceFromNode(ctx context.Context, root *parsetree.Node, pos parsetree.Position) (ref *model.CustomTypeReference, err error) {
	q, err := a.begin(ctx, "FindInstantiateCustomTypeReferenceFromNode", root)
	if err != nil {
		return nil, err
	}
	defer q.end(&err)

	return q.instantiateCustomType(pos)
}

// FindInstantiateDeclarationFromNode returns the declaration, aliases
// removed, built by the Expression_instantiate node at pos.
func (a *Analyzer) FindInstantiateDeclarationFromNode(ctx context.Context, root *parsetree.Node, pos parsetree.Position) (result *DeclarationResult, err error) {
	q, err := a.begin(ctx, "FindInstantiateDeclarationFromNode", root)
	if err != nil {
		return nil, err
	}
	defer q.end(&err)

	ref, err := q.instantiateCustomType(pos)
	if err != nil || ref == nil {
		return nil, err
	}
	return q.instantiateDeclaration(*ref)
}

// FindInstantiateMemberFromNode finds the member a cursor inside an
// instantiate expression stands on. before is the terminal preceding the
// cursor. An exact name match wins. With findBestMatch a misspelt name is
// matched to the closest member not written yet. Otherwise the member after
// the previous one is returned.
func (a *Analyzer) FindInstantiateMemberFromNode(ctx context.Context, root *parsetree.Node, before parsetree.Position, findBestMatch bool) (result *InstantiateMemberResult, err error) {
	q, err := a.begin(ctx, "FindInstantiateMemberFromNode", root)
	if err != nil {
		return nil, err
	}
	defer q.end(&err)

	inst, instPos, ok := parsetree.AncestorWithName(root, before, grammar.ExpressionInstantiate)
	if !ok {
		return nil, nil
	}
	ref, err := q.instantiateCustomType(instPos)
	if err != nil || ref == nil {
		return nil, err
	}
	decl, err := q.instantiateDeclaration(*ref)
	if err != nil || decl == nil {
		return nil, err
	}
	members := model.Members(decl.Declaration)
	if len(members) == 0 {
		return nil, nil
	}

	depth := len(instPos)
	if len(before) <= depth {
		return nil, nil
	}
	membersNode := inst.Child(2)

	previous, current := -1, 0
	if before[depth] == 2 && len(before) > depth+1 {
		index := before[depth+1]
		if index%2 == 1 {
			previous, current = index-1, index+1
		} else {
			previous, current = index-2, index
		}
	}

	memberName := func(index int) string {
		if index < 0 {
			return ""
		}
		return parsetree.Text(membersNode.Child(index).Child(0))
	}
	found := func(i int) *InstantiateMemberResult {
		return &InstantiateMemberResult{
			Declaration: decl,
			MemberIndex: i,
			MemberName:  members[i].Name,
			MemberType:  fixTypes(decl.Module, members[i].Type),
		}
	}

	currentName := memberName(current)
	if currentName != "" {
		if _, i, ok := model.FindMember(decl.Declaration, currentName); ok {
			return found(i), nil
		}
		if findBestMatch {
			written := make(map[string]bool)
			for _, located := range parsetree.FindDescendants(membersNode, nil, parsetree.HasLabel(grammar.ExpressionInstantiateMemberName)) {
				written[parsetree.Text(located.Node)] = true
			}
			best, bestDistance := -1, 0
			for i, m := range members {
				if written[m.Name] {
					continue
				}
				distance := levenshteinDistance(currentName, m.Name)
				if best < 0 || distance < bestDistance {
					best, bestDistance = i, distance
				}
			}
			if best >= 0 {
				return found(best), nil
			}
		}
	}

	next := 0
	if previousName := memberName(previous); previousName != "" {
		if _, i, ok := model.FindMember(decl.Declaration, previousName); ok {
			next = i + 1
		}
	}
	if next >= len(members) {
		return nil, nil
	}
	return found(next), nil
}

// levenshteinDistance counts the single-rune edits turning a into b.
func levenshteinDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	matrix := make([][]int, len(ra)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(rb)+1)
		matrix[i][0] = i
	}
	for j := 0; j <= len(rb); j++ {
		matrix[0][j] = j
	}

	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			cost := 0
			if ra[i-1] != rb[j-1] {
				cost = 1
			}
			matrix[i][j] = min(
				matrix[i-1][j]+1,      // deletion
				matrix[i][j-1]+1,      // insertion
				matrix[i-1][j-1]+cost, // substitution
			)
		}
	}
	return matrix[len(ra)][len(rb)]
}
