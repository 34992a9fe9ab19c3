// # internal/engine/parsetree/node.go
package parsetree

import (
	"fmt"
	"strconv"
	"strings"

	"hlsense/internal/core/errors"
)

// SourcePosition is 1-based.
type SourcePosition struct {
	Line   int `yaml:"line"`
	Column int `yaml:"column"`
}

type SourceRange struct {
	Start SourcePosition `yaml:"start"`
	End   SourcePosition `yaml:"end"`
}

// Node is a labeled parse-tree node. Inner nodes carry a grammar label,
// terminals carry their token text. An inner node may be empty when its
// production matched nothing, as in a call without arguments.
type Node struct {
	Label    string
	Children []*Node
	Range    *SourceRange

	inner bool
}

// NewNode builds an inner node.
func NewNode(label string, children ...*Node) *Node {
	return &Node{Label: label, Children: children, inner: true}
}

// Leaf builds a terminal node.
func Leaf(text string) *Node {
	return &Node{Label: text}
}

// IsTerminal reports whether n is a token. Empty inner nodes are not.
func (n *Node) IsTerminal() bool {
	return len(n.Children) == 0 && !n.inner
}

// Clone returns a deep copy of n.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := &Node{Label: n.Label, Range: n.Range, inner: n.inner}
	if n.Children != nil {
		c.Children = make([]*Node, len(n.Children))
		for i, child := range n.Children {
			c.Children[i] = child.Clone()
		}
	}
	return c
}

// Child returns the i-th child or nil.
func (n *Node) Child(i int) *Node {
	if n == nil || i < 0 || i >= len(n.Children) {
		return nil
	}
	return n.Children[i]
}

// Position is the path of child indices from the root.
type Position []int

// Parent returns the position of the parent. The root has no parent and
// returns nil.
func (p Position) Parent() Position {
	if len(p) == 0 {
		return nil
	}
	return p[:len(p)-1:len(p)-1]
}

// Append returns a new position extended by indices.
func (p Position) Append(indices ...int) Position {
	out := make(Position, 0, len(p)+len(indices))
	out = append(out, p...)
	return append(out, indices...)
}

// Clone returns an independent copy of p.
func (p Position) Clone() Position {
	if p == nil {
		return nil
	}
	return append(Position{}, p...)
}

// IsAncestorOf reports whether p is a strict prefix of other.
func (p Position) IsAncestorOf(other Position) bool {
	return len(p) < len(other) && CommonPrefixLength(p, other) == len(p)
}

// Equal reports whether both positions address the same node.
func (p Position) Equal(other Position) bool {
	return len(p) == len(other) && CommonPrefixLength(p, other) == len(p)
}

func (p Position) String() string {
	parts := make([]string, len(p))
	for i, index := range p {
		parts[i] = strconv.Itoa(index)
	}
	return strings.Join(parts, ".")
}

// ParsePosition reads the dotted form produced by Position.String.
func ParsePosition(s string) (Position, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Position{}, nil
	}
	parts := strings.Split(s, ".")
	pos := make(Position, 0, len(parts))
	for _, part := range parts {
		index, err := strconv.Atoi(part)
		if err != nil || index < 0 {
			return nil, errors.New(errors.CodeValidationError, fmt.Sprintf("invalid position segment %q", part))
		}
		pos = append(pos, index)
	}
	return pos, nil
}

// CommonPrefixLength returns how many leading indices a and b share.
func CommonPrefixLength(a, b []int) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}
