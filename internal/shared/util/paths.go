// # internal/shared/util/paths.go
package util

import (
	"maps"
	"path"
	"slices"
	"strings"
)

// SlashPath cleans p and uses forward slashes. "." becomes "" so that a
// file at a workspace root has an empty directory part.
func SlashPath(p string) string {
	clean := path.Clean(strings.TrimSpace(strings.ReplaceAll(p, `\`, "/")))
	if clean == "." {
		return ""
	}
	return strings.TrimPrefix(clean, "./")
}

// WithinRoot reports whether p is root or lies below it. Both are compared
// in SlashPath form, so "src/geo.hl" is within "./src" but "srcgen" is not.
func WithinRoot(p, root string) bool {
	p, root = SlashPath(p), SlashPath(root)
	if p == "" || root == "" {
		return p == root
	}
	return p == root || strings.HasPrefix(p, root+"/")
}

// IsPathPattern reports whether an exclude glob names a path rather than a
// base name. Path patterns are matched against the root-relative path.
func IsPathPattern(pattern string) bool {
	return strings.ContainsAny(pattern, `/\`)
}

// SortedKeys returns the keys of m in ascending order.
func SortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
