// # internal/engine/analysis/access.go
package analysis

import (
	"context"

	"hlsense/internal/core/errors"
	"hlsense/internal/engine/grammar"
	"hlsense/internal/engine/model"
	"hlsense/internal/engine/parsetree"
)

type ComponentKind int

const (
	ComponentImportModule ComponentKind = iota
	ComponentDeclaration
	ComponentMemberName
	ComponentInvalid
)

func (k ComponentKind) String() string {
	switch k {
	case ComponentImportModule:
		return "import_module"
	case ComponentDeclaration:
		return "declaration"
	case ComponentMemberName:
		return "member_name"
	case ComponentInvalid:
		return "invalid"
	}
	return "unknown"
}

// AccessExpressionComponent is one classified segment of a dotted chain.
// Import is set on import-module components. Declaration is the declaration
// a Declaration component names, or the owner of a MemberName component.
type AccessExpressionComponent struct {
	Kind        ComponentKind
	Value       string
	Position    parsetree.Position
	Import      *model.Import
	Declaration *DeclarationResult
}

// splitAccess separates the node at pos into the expression left of the dot
// and the member after it. Incomplete chains show up as ERROR nodes holding
// a stray "."; the member is then empty when nothing follows the dot.
func splitAccess(root, n *parsetree.Node, pos parsetree.Position) (lhs *parsetree.Node, lhsPos parsetree.Position, member string, memberPos parsetree.Position, ok bool) {
	switch n.Label {
	case grammar.ExpressionAccess:
		if len(n.Children) < 3 {
			return nil, nil, "", nil, false
		}
		return n.Children[0], pos.Append(0), parsetree.Text(n.Children[2]), pos.Append(2), true

	case grammar.Error:
		dot, found := parsetree.FirstChildMatching(n, func(c *parsetree.Node) bool { return c.IsTerminal() && c.Label == "." })
		if !found {
			return nil, nil, "", nil, false
		}
		if dot > 0 {
			lhs, lhsPos = n.Children[dot-1], pos.Append(dot-1)
		} else {
			if len(pos) == 0 || pos[len(pos)-1] == 0 {
				return nil, nil, "", nil, false
			}
			parentPos := pos.Parent()
			index := pos[len(pos)-1] - 1
			lhs, lhsPos = parsetree.MustNodeAt(root, parentPos).Children[index], parentPos.Append(index)
		}
		if next := n.Child(dot + 1); next != nil {
			return lhs, lhsPos, parsetree.Text(next), pos.Append(dot + 1), true
		}
		return lhs, lhsPos, "", pos.Clone(), true
	}
	return nil, nil, "", nil, false
}

func isAccessNode(n *parsetree.Node) bool {
	if n.Label == grammar.ExpressionAccess {
		return true
	}
	if n.Label != grammar.Error {
		return false
	}
	_, found := parsetree.FirstChildMatching(n, func(c *parsetree.Node) bool { return c.IsTerminal() && c.Label == "." })
	return found
}

// accessComponents decomposes the chain at pos left to right.
func (q *query) accessComponents(pos parsetree.Position) ([]AccessExpressionComponent, error) {
	root := q.root()
	n, err := parsetree.NodeAt(root, pos)
	if err != nil {
		return nil, err
	}
	lhs, lhsPos, member, memberPos, ok := splitAccess(root, n, pos)
	if !ok {
		return nil, nil
	}
	for grammar.IsTransparent(lhs.Label) && len(lhs.Children) == 1 {
		lhs, lhsPos = lhs.Children[0], lhsPos.Append(0)
	}

	components, err := q.leftComponents(lhs, lhsPos)
	if err != nil || len(components) == 0 {
		return nil, err
	}
	if err := q.ctx.Err(); err != nil {
		return nil, errors.Cancelled(err, q.operation)
	}

	next := AccessExpressionComponent{Kind: ComponentInvalid, Value: member, Position: memberPos}
	last := components[len(components)-1]
	switch last.Kind {
	case ComponentImportModule:
		decl, err := q.customDeclaration(model.CustomTypeReference{ModuleName: last.Import.ModuleName, Name: member})
		if err != nil {
			return nil, err
		}
		if decl != nil {
			next.Kind, next.Declaration = ComponentDeclaration, decl
		}

	case ComponentDeclaration:
		owner, err := q.ownerOf(last.Declaration)
		if err != nil {
			return nil, err
		}
		if owner != nil {
			if _, _, found := model.FindMember(owner.Declaration, member); found {
				next.Kind, next.Declaration = ComponentMemberName, owner
			}
		}

	case ComponentMemberName:
		m, _, found := model.FindMember(last.Declaration.Declaration, last.Value)
		if !found {
			break
		}
		owner, err := q.typeOwner(fixTypes(last.Declaration.Module, m.Type))
		if err != nil {
			return nil, err
		}
		if owner != nil {
			if _, _, found := model.FindMember(owner.Declaration, member); found {
				next.Kind, next.Declaration = ComponentMemberName, owner
			}
		}
	}
	return append(components, next), nil
}

// leftComponents classifies the leftmost part of a chain: a nested chain, a
// variable naming an import alias, or any expression of custom type.
func (q *query) leftComponents(lhs *parsetree.Node, lhsPos parsetree.Position) ([]AccessExpressionComponent, error) {
	if isAccessNode(lhs) {
		return q.accessComponents(lhsPos)
	}
	if lhs.Label == grammar.Error {
		return nil, nil
	}

	var types []model.TypeReference
	if lhs.Label == grammar.ExpressionVariable {
		s, err := q.symbol(lhsPos, parsetree.Text(lhs))
		if err != nil || s == nil {
			return nil, err
		}
		if s.Kind == SymbolModuleAlias {
			return []AccessExpressionComponent{{
				Kind:     ComponentImportModule,
				Value:    s.ModuleAlias.ModuleName,
				Position: lhsPos.Clone(),
				Import:   s.ModuleAlias,
			}}, nil
		}
		types = s.Types
	} else {
		inferred, err := q.inferNode(lhsPos, lhs)
		if err != nil {
			return nil, err
		}
		types = inferred
	}

	custom, ok := model.AsCustom(types)
	if !ok {
		return nil, nil
	}
	decl, err := q.customDeclaration(custom)
	if err != nil || decl == nil {
		return nil, err
	}
	return []AccessExpressionComponent{{
		Kind:        ComponentDeclaration,
		Value:       decl.Declaration.Name,
		Position:    lhsPos.Clone(),
		Declaration: decl,
	}}, nil
}

// ownerOf returns the declaration whose members follow a Declaration
// component. Globals contribute the declaration of their type.
func (q *query) ownerOf(decl *DeclarationResult) (*DeclarationResult, error) {
	if _, ok := decl.Declaration.Value.(*model.GlobalVariable); ok {
		types, err := q.globalType(decl)
		if err != nil {
			return nil, err
		}
		return q.typeOwner(types)
	}
	return q.underlying(decl)
}

func (q *query) typeOwner(types []model.TypeReference) (*DeclarationResult, error) {
	custom, ok := model.AsCustom(types)
	if !ok {
		return nil, nil
	}
	decl, err := q.customDeclaration(custom)
	if err != nil || decl == nil {
		return nil, err
	}
	return q.underlying(decl)
}

// GetAccessExpressionComponents decomposes the Expression_access (or ERROR
// node holding a dot) at pos. An unresolvable leftmost segment yields an
// empty list.
func (a *Analyzer) GetAccessExpressionComponents(ctx context.Context, root *parsetree.Node, pos parsetree.Position) (components []AccessExpressionComponent, err error) {
	q, err := a.begin(ctx, "GetAccessExpressionComponents", root)
	if err != nil {
		return nil, err
	}
	defer q.end(&err)

	return q.accessComponents(pos)
}

// SelectAccessExpressionComponent picks the component closest to the
// cursor: the one whose position shares the longest prefix with it. When
// the terminal before the cursor is the dot itself the position after the
// cursor is used. Ties go to the leftmost component.
func SelectAccessExpressionComponent(components []AccessExpressionComponent, beforeNode *parsetree.Node, before, after parsetree.Position) (AccessExpressionComponent, bool) {
	cursor := before
	if beforeNode != nil && beforeNode.Label == "." && after != nil {
		cursor = after
	}
	best, bestLength := -1, -1
	for i, c := range components {
		if length := parsetree.CommonPrefixLength(c.Position, cursor); length > bestLength {
			best, bestLength = i, length
		}
	}
	if best < 0 {
		return AccessExpressionComponent{}, false
	}
	return components[best], true
}
