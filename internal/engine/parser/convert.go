// # internal/engine/parser/convert.go
package parser

import (
	"hlsense/internal/engine/parsetree"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// Convert copies a tree-sitter tree into a parse tree. Inner nodes are
// labelled by their grammar name and terminals by their text. Nodes the
// parser inserted during error recovery have no text and are labelled by
// their kind. Ranges are 1-based.
func Convert(node *sitter.Node, source []byte) *parsetree.Node {
	if node == nil {
		return nil
	}

	count := node.ChildCount()
	if count == 0 {
		label := node.Utf8Text(source)
		if node.IsMissing() {
			label = node.Kind()
		}
		n := parsetree.Leaf(label)
		n.Range = sourceRange(node)
		return n
	}

	n := parsetree.NewNode(node.GrammarName())
	n.Range = sourceRange(node)
	n.Children = make([]*parsetree.Node, 0, count)
	for i := uint(0); i < count; i++ {
		if child := Convert(node.Child(i), source); child != nil {
			n.Children = append(n.Children, child)
		}
	}
	return n
}

func sourceRange(node *sitter.Node) *parsetree.SourceRange {
	start, end := node.StartPosition(), node.EndPosition()
	return &parsetree.SourceRange{
		Start: parsetree.SourcePosition{Line: int(start.Row) + 1, Column: int(start.Column) + 1},
		End:   parsetree.SourcePosition{Line: int(end.Row) + 1, Column: int(end.Column) + 1},
	}
}
