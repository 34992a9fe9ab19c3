// # internal/engine/parsetree/snapshot.go
package parsetree

import (
	"bytes"
	"io"
	"os"

	"hlsense/internal/core/errors"

	"github.com/goccy/go-yaml"
)

// snapshotNode is the YAML form of Node. Empty inner nodes are flagged so
// they do not come back as terminals.
type snapshotNode struct {
	Label    string       `yaml:"label"`
	Empty    bool         `yaml:"empty,omitempty"`
	Children []*Node      `yaml:"children,omitempty"`
	Range    *SourceRange `yaml:"range,omitempty"`
}

func (n *Node) MarshalYAML() (interface{}, error) {
	return snapshotNode{
		Label:    n.Label,
		Empty:    n.inner && len(n.Children) == 0,
		Children: n.Children,
		Range:    n.Range,
	}, nil
}

func (n *Node) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s snapshotNode
	if err := unmarshal(&s); err != nil {
		return err
	}
	*n = Node{Label: s.Label, Children: s.Children, Range: s.Range, inner: s.Empty || len(s.Children) > 0}
	return nil
}

// Decode reads a tree snapshot written by Encode or by an external parser.
func Decode(r io.Reader) (*Node, error) {
	var root Node
	if err := yaml.NewDecoder(r).Decode(&root); err != nil {
		return nil, errors.Wrap(err, errors.CodeValidationError, "decode parse tree snapshot")
	}
	if root.Label == "" {
		return nil, errors.New(errors.CodeValidationError, "parse tree snapshot has no root label")
	}
	return &root, nil
}

// DecodeFile reads the snapshot stored at path.
func DecodeFile(path string) (*Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeInternal, "read parse tree snapshot"), errors.CtxPath, path)
	}
	root, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.AddContext(err, errors.CtxPath, path)
	}
	return root, nil
}

// Encode writes root as YAML.
func Encode(w io.Writer, root *Node) error {
	if err := yaml.NewEncoder(w).Encode(root); err != nil {
		return errors.Wrap(err, errors.CodeInternal, "encode parse tree snapshot")
	}
	return nil
}
