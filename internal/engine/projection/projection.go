// # internal/engine/projection/projection.go
package projection

import (
	"hlsense/internal/core/errors"
	"hlsense/internal/engine/grammar"
	"hlsense/internal/engine/model"
	"hlsense/internal/engine/parsetree"
)

// projector carries the module context a projection needs to resolve
// Module_type aliases. It is rebuilt for every call.
type projector struct {
	moduleName string
	imports    []model.Import
}

func newProjector(root *parsetree.Node) *projector {
	return &projector{moduleName: ModuleName(root), imports: Imports(root)}
}

// ModuleName reads the name declared in the module head, or "" when the head
// is missing.
func ModuleName(root *parsetree.Node) string {
	head := childWithLabel(root, grammar.ModuleHead)
	if head == nil {
		return ""
	}
	name, _, ok := parsetree.FindDescendant(head, nil, parsetree.HasLabel(grammar.ModuleName))
	if !ok {
		return ""
	}
	return parsetree.Text(name)
}

// Imports lists the module imports in source order.
func Imports(root *parsetree.Node) []model.Import {
	head := childWithLabel(root, grammar.ModuleHead)
	imports := childWithLabel(head, grammar.Imports)
	if imports == nil {
		return nil
	}
	var out []model.Import
	for _, n := range imports.Children {
		if n.Label != grammar.Import {
			continue
		}
		out = append(out, model.Import{
			ModuleName: parsetree.Text(childWithLabel(n, grammar.ImportName)),
			Alias:      parsetree.Text(childWithLabel(n, grammar.ImportAlias)),
		})
	}
	return out
}

// NodeToModule projects a whole file. Root children that are not
// declarations (error recovery nodes) are skipped.
func NodeToModule(root *parsetree.Node) (*model.Module, error) {
	if root == nil || root.Label != grammar.Module {
		label := ""
		if root != nil {
			label = root.Label
		}
		return nil, errors.Invariant(label, "root is not a %s node", grammar.Module)
	}

	p := newProjector(root)
	module := &model.Module{Name: p.moduleName, Imports: p.imports}
	for _, child := range root.Children {
		if child.Label != grammar.Declaration {
			continue
		}
		d, err := p.declaration(child)
		if err != nil {
			return nil, err
		}
		module.Declarations = append(module.Declarations, d)
	}
	return module, nil
}

// NodeToDeclaration projects the Declaration node at pos.
func NodeToDeclaration(root *parsetree.Node, pos parsetree.Position) (model.Declaration, error) {
	n, err := parsetree.NodeAt(root, pos)
	if err != nil {
		return model.Declaration{}, err
	}
	if n.Label != grammar.Declaration {
		return model.Declaration{}, errors.AddContext(
			errors.Invariant(n.Label, "expected %s", grammar.Declaration), errors.CtxPosition, pos.String())
	}
	return newProjector(root).declaration(n)
}

// NodeToStatement projects a Statement node.
func NodeToStatement(root, node *parsetree.Node) (model.Statement, error) {
	return newProjector(root).statement(node)
}

// NodeToExpression projects any expression node, including the transparent
// wrappers around it.
func NodeToExpression(root, node *parsetree.Node) (model.Expression, error) {
	return newProjector(root).expression(node)
}

// NodeToTypeReference projects a Type node. An empty result means void.
func NodeToTypeReference(root, node *parsetree.Node) ([]model.TypeReference, error) {
	return newProjector(root).typeReference(node)
}

// Unwrap skips single-child wrapper nodes.
func Unwrap(n *parsetree.Node) *parsetree.Node {
	for n != nil && grammar.IsTransparent(n.Label) && len(n.Children) == 1 {
		n = n.Children[0]
	}
	return n
}

func childWithLabel(n *parsetree.Node, label string) *parsetree.Node {
	if n == nil {
		return nil
	}
	for _, child := range n.Children {
		if child.Label == label {
			return child
		}
	}
	return nil
}

func requireChild(n *parsetree.Node, label string) (*parsetree.Node, error) {
	if child := childWithLabel(n, label); child != nil {
		return child, nil
	}
	return nil, errors.Invariant(n.Label, "missing %s", label)
}

func requireIndex(n *parsetree.Node, i int) (*parsetree.Node, error) {
	if child := n.Child(i); child != nil {
		return child, nil
	}
	return nil, errors.Invariant(n.Label, "missing child %d", i)
}

// childAfter returns the sibling following the first terminal equal to token.
func childAfter(n *parsetree.Node, token string) *parsetree.Node {
	for i, child := range n.Children {
		if child.IsTerminal() && child.Label == token {
			return n.Child(i + 1)
		}
	}
	return nil
}

func hasTerminal(n *parsetree.Node, token string) bool {
	for _, child := range n.Children {
		if child.IsTerminal() && child.Label == token {
			return true
		}
	}
	return false
}

// separated returns the non-separator children of a comma separated list.
func separated(n *parsetree.Node) []*parsetree.Node {
	if n == nil {
		return nil
	}
	out := make([]*parsetree.Node, 0, (len(n.Children)+1)/2)
	for _, child := range n.Children {
		if child.IsTerminal() && child.Label == "," {
			continue
		}
		out = append(out, child)
	}
	return out
}

func sourceLocation(n *parsetree.Node) *model.SourceLocation {
	if n == nil || n.Range == nil {
		return nil
	}
	return &model.SourceLocation{Line: n.Range.Start.Line, Column: n.Range.Start.Column}
}
