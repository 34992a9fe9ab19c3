package util

import (
	"slices"
	"testing"
)

func TestSlashPath(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "Empty", input: "", expected: ""},
		{name: "Dot", input: ".", expected: ""},
		{name: "Trim", input: "  ./src/geo.hl  ", expected: "src/geo.hl"},
		{name: "Relative", input: "src/../lib/core.hl", expected: "lib/core.hl"},
		{name: "Backslashes", input: `gen\api\types.hl`, expected: "gen/api/types.hl"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := SlashPath(tc.input); got != tc.expected {
				t.Fatalf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestWithinRoot(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		path     string
		root     string
		expected bool
	}{
		{name: "Root", path: "/ws/src", root: "/ws/src", expected: true},
		{name: "Nested", path: "/ws/src/geo/point.hl", root: "/ws/src", expected: true},
		{name: "SharedPrefix", path: "/ws/srcgen/point.hl", root: "/ws/src", expected: false},
		{name: "Parent", path: "/ws", root: "/ws/src", expected: false},
		{name: "MixedSeparators", path: `ws\src\geo.hl`, root: "ws/src", expected: true},
		{name: "DotRoot", path: "./src/geo.hl", root: "src", expected: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := WithinRoot(tc.path, tc.root); got != tc.expected {
				t.Fatalf("expected %v, got %v", tc.expected, got)
			}
		})
	}
}

func TestIsPathPattern(t *testing.T) {
	t.Parallel()

	cases := map[string]bool{
		"gen/*.hl":        true,
		`gen\*.hl`:        true,
		"*.tmp.hl":        false,
		"geo.hltree.yaml": false,
	}
	for pattern, expected := range cases {
		if got := IsPathPattern(pattern); got != expected {
			t.Errorf("IsPathPattern(%q) = %v, expected %v", pattern, got, expected)
		}
	}
}

func TestSortedKeys(t *testing.T) {
	t.Parallel()

	modules := map[string]string{"geo": "geo.hl", "app.main": "main.hl", "core.math": "math.hl"}
	got := SortedKeys(modules)
	expected := []string{"app.main", "core.math", "geo"}
	if !slices.Equal(got, expected) {
		t.Fatalf("expected %v, got %v", expected, got)
	}
	if keys := SortedKeys(map[string]int{}); len(keys) != 0 {
		t.Fatalf("expected no keys, got %v", keys)
	}
}
