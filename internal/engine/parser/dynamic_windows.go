//go:build windows

package parser

import (
	"hlsense/internal/core/errors"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

func loadDynamic(path, name string) (*sitter.Language, error) {
	err := errors.New(errors.CodeNotSupported, "dynamic grammar loading is not supported on Windows")
	return nil, errors.AddContext(err, errors.CtxPath, path)
}
