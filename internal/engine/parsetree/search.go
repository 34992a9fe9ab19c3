// # internal/engine/parsetree/search.go
package parsetree

import (
	"fmt"
	"strings"

	"hlsense/internal/core/errors"
)

// Located pairs a node with its position.
type Located struct {
	Node     *Node
	Position Position
}

// Predicate selects nodes during searches.
type Predicate func(*Node) bool

// HasLabel matches nodes carrying any of labels.
func HasLabel(labels ...string) Predicate {
	return func(n *Node) bool {
		for _, label := range labels {
			if n.Label == label {
				return true
			}
		}
		return false
	}
}

// NodeAt follows pos from root.
func NodeAt(root *Node, pos Position) (*Node, error) {
	current := root
	for depth, index := range pos {
		if current == nil || index < 0 || index >= len(current.Children) {
			de := &errors.DomainError{
				Code:    errors.CodeNotFound,
				Message: fmt.Sprintf("no child %d at depth %d", index, depth),
			}
			return nil, de.WithContext(errors.CtxPosition, pos.String())
		}
		current = current.Children[index]
	}
	if current == nil {
		return nil, errors.New(errors.CodeNotFound, "empty tree")
	}
	return current, nil
}

// MustNodeAt is NodeAt for positions already known to be valid.
func MustNodeAt(root *Node, pos Position) *Node {
	n, err := NodeAt(root, pos)
	if err != nil {
		panic(err)
	}
	return n
}

// AncestorWithName walks strictly upward from pos and returns the first
// ancestor whose label is one of names.
func AncestorWithName(root *Node, pos Position, names ...string) (*Node, Position, bool) {
	match := HasLabel(names...)
	for current := pos.Parent(); current != nil; current = current.Parent() {
		n, err := NodeAt(root, current)
		if err != nil {
			return nil, nil, false
		}
		if match(n) {
			return n, current.Clone(), true
		}
		if len(current) == 0 {
			break
		}
	}
	return nil, nil, false
}

// AncestorsWithName counts the ancestors of pos labeled name, stopping at
// the first ancestor labeled stop.
func AncestorsWithName(root *Node, pos Position, name, stop string) int {
	count := 0
	for current := pos.Parent(); current != nil; current = current.Parent() {
		n, err := NodeAt(root, current)
		if err != nil || n.Label == stop {
			break
		}
		if n.Label == name {
			count++
		}
		if len(current) == 0 {
			break
		}
	}
	return count
}

// FirstAncestorWithNameAtCursor resolves the ancestor for a cursor sitting
// between two terminals. The deeper of the two candidates wins, and the one
// before the cursor wins ties.
func FirstAncestorWithNameAtCursor(root *Node, before, after Position, names ...string) (*Node, Position, bool) {
	beforeNode, beforePos, beforeOK := AncestorWithName(root, before, names...)
	afterNode, afterPos, afterOK := AncestorWithName(root, after, names...)
	switch {
	case !beforeOK:
		return afterNode, afterPos, afterOK
	case !afterOK:
		return beforeNode, beforePos, true
	case len(beforePos) >= len(afterPos):
		return beforeNode, beforePos, true
	default:
		return afterNode, afterPos, true
	}
}

// ChildrenMatching returns the indices of matching children.
func ChildrenMatching(n *Node, match Predicate) []int {
	var indices []int
	for i, child := range n.Children {
		if match(child) {
			indices = append(indices, i)
		}
	}
	return indices
}

// FirstChildMatching returns the index of the first matching child.
func FirstChildMatching(n *Node, match Predicate) (int, bool) {
	for i, child := range n.Children {
		if match(child) {
			return i, true
		}
	}
	return -1, false
}

// FindDescendant returns the first match in pre-order, n included. pos is
// the position of n and prefixes the returned position.
func FindDescendant(n *Node, pos Position, match Predicate) (*Node, Position, bool) {
	if match(n) {
		return n, pos.Clone(), true
	}
	for i, child := range n.Children {
		if found, foundPos, ok := FindDescendant(child, pos.Append(i), match); ok {
			return found, foundPos, true
		}
	}
	return nil, nil, false
}

// FindDescendants returns every match in pre-order, n included.
func FindDescendants(n *Node, pos Position, match Predicate) []Located {
	var out []Located
	var walk func(*Node, Position)
	walk = func(current *Node, currentPos Position) {
		if match(current) {
			out = append(out, Located{Node: current, Position: currentPos})
		}
		for i, child := range current.Children {
			walk(child, currentPos.Append(i))
		}
	}
	walk(n, pos.Clone())
	return out
}

// FindChildDescendant searches only below the child of n labeled label.
func FindChildDescendant(n *Node, pos Position, label string, match Predicate) (*Node, Position, bool) {
	index, ok := FirstChildMatching(n, HasLabel(label))
	if !ok {
		return nil, nil, false
	}
	return FindDescendant(n.Children[index], pos.Append(index), match)
}

// LeftmostDescendant follows first children down to a terminal.
func LeftmostDescendant(n *Node, pos Position) Located {
	current, currentPos := n, pos.Clone()
	for len(current.Children) > 0 {
		current = current.Children[0]
		currentPos = append(currentPos, 0)
	}
	return Located{Node: current, Position: currentPos}
}

// RightmostTerminal follows last children down to a terminal.
func RightmostTerminal(n *Node, pos Position) Located {
	current, currentPos := n, pos.Clone()
	for len(current.Children) > 0 {
		last := len(current.Children) - 1
		current = current.Children[last]
		currentPos = append(currentPos, last)
	}
	return Located{Node: current, Position: currentPos}
}

// Terminals lists the terminals below n in source order.
func Terminals(n *Node, pos Position) []Located {
	return FindDescendants(n, pos, func(c *Node) bool { return c.IsTerminal() })
}

// Text concatenates the terminal labels below n.
func Text(n *Node) string {
	if n == nil {
		return ""
	}
	if n.IsTerminal() {
		return n.Label
	}
	parts := make([]string, 0, len(n.Children))
	for _, child := range n.Children {
		if t := Text(child); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "")
}

// Span returns the source range covering the node at pos, or nil when the
// tree carries no ranges.
func Span(root *Node, pos Position) *SourceRange {
	n, err := NodeAt(root, pos)
	if err != nil {
		return nil
	}
	first := LeftmostDescendant(n, pos).Node
	last := RightmostTerminal(n, pos).Node
	if first.Range == nil || last.Range == nil {
		return n.Range
	}
	return &SourceRange{Start: first.Range.Start, End: last.Range.End}
}

// TerminalAt returns the terminal whose range contains the 1-based location,
// together with the terminal before it. It is how callers holding a text
// cursor find the positions the analyzer takes.
func TerminalAt(root *Node, line, column int) (before, after Located, ok bool) {
	terminals := Terminals(root, Position{})
	var previous Located
	for _, t := range terminals {
		if t.Node.Range == nil {
			continue
		}
		start, end := t.Node.Range.Start, t.Node.Range.End
		if !positionLess(SourcePosition{Line: line, Column: column}, start) &&
			positionLess(SourcePosition{Line: line, Column: column}, end) {
			if previous.Node == nil {
				previous = t
			}
			return previous, t, true
		}
		previous = t
	}
	return Located{}, Located{}, false
}

func positionLess(a, b SourcePosition) bool {
	if a.Line != b.Line {
		return a.Line < b.Line
	}
	return a.Column < b.Column
}

// PreviousTerminal returns the terminal that precedes pos in source order.
func PreviousTerminal(root *Node, pos Position) (Located, bool) {
	terminals := Terminals(root, Position{})
	for i, t := range terminals {
		if t.Position.Equal(pos) || pos.IsAncestorOf(t.Position) {
			if i == 0 {
				return Located{}, false
			}
			return terminals[i-1], true
		}
	}
	return Located{}, false
}

// NextTerminal returns the terminal that follows pos in source order.
func NextTerminal(root *Node, pos Position) (Located, bool) {
	terminals := Terminals(root, Position{})
	for i := len(terminals) - 1; i >= 0; i-- {
		t := terminals[i]
		if t.Position.Equal(pos) || pos.IsAncestorOf(t.Position) {
			if i == len(terminals)-1 {
				return Located{}, false
			}
			return terminals[i+1], true
		}
	}
	return Located{}, false
}
