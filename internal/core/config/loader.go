package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"hlsense/internal/core/errors"

	"github.com/BurntSushi/toml"
)

// Load reads, defaults, normalizes and validates the config at path.
// Relative workspace roots and grammar paths resolve against the directory
// holding the file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeNotFound, "read config"), errors.CtxPath, path)
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeValidationError, "decode config"), errors.CtxPath, path)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}
	if err := finish(&cfg, filepath.Dir(absPath)); err != nil {
		return nil, errors.AddContext(err, errors.CtxPath, path)
	}
	return &cfg, nil
}

// LoadOrDefault loads path, or returns the defaults resolved against the
// working directory when path is empty.
func LoadOrDefault(path string) (*Config, error) {
	if strings.TrimSpace(path) != "" {
		return Load(path)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "working directory")
	}
	var cfg Config
	if err := finish(&cfg, cwd); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func finish(cfg *Config, baseDir string) error {
	applyDefaults(cfg)
	ApplyEnvOverrides(cfg)
	normalizeWorkspace(cfg, baseDir)
	normalizeGrammar(cfg, baseDir)

	if errs := Validate(cfg); len(errs) > 0 {
		return errors.Wrap(errs[0], errors.CodeValidationError, "invalid config")
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}

	if len(cfg.Workspace.Roots) == 0 {
		cfg.Workspace.Roots = []string{"."}
	}
	if len(cfg.Workspace.Extensions) == 0 {
		cfg.Workspace.Extensions = []string{".hl"}
	}
	if len(cfg.Workspace.SnapshotExtensions) == 0 {
		cfg.Workspace.SnapshotExtensions = []string{".hltree.yaml"}
	}

	if len(cfg.Exclude.Dirs) == 0 {
		cfg.Exclude.Dirs = []string{".git", "build", "node_modules"}
	}

	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 250 * time.Millisecond
	}
	if cfg.Watch.ReloadRate == 0 {
		cfg.Watch.ReloadRate = 20
	}
	if cfg.Watch.ReloadBurst == 0 {
		cfg.Watch.ReloadBurst = 10
	}

	if cfg.Cache.Capacity == 0 {
		cfg.Cache.Capacity = 256
	}

	if strings.TrimSpace(cfg.Grammar.Language) == "" {
		cfg.Grammar.Language = "hlang"
	}

	if cfg.Analysis.MaxAliasDepth == 0 {
		cfg.Analysis.MaxAliasDepth = 64
	}

	if strings.TrimSpace(cfg.Observability.ServiceName) == "" {
		cfg.Observability.ServiceName = "hlsense"
	}

	if strings.TrimSpace(cfg.Log.Level) == "" {
		cfg.Log.Level = "info"
	}
}

func normalizeWorkspace(cfg *Config, baseDir string) {
	roots := make([]string, 0, len(cfg.Workspace.Roots))
	seen := make(map[string]bool, len(cfg.Workspace.Roots))
	for _, root := range cfg.Workspace.Roots {
		root = strings.TrimSpace(root)
		if root == "" {
			continue
		}
		resolved := ResolveRelative(baseDir, root)
		if seen[resolved] {
			continue
		}
		seen[resolved] = true
		roots = append(roots, resolved)
	}
	cfg.Workspace.Roots = roots
	cfg.Workspace.Extensions = normalizeExtensions(cfg.Workspace.Extensions)
	cfg.Workspace.SnapshotExtensions = normalizeExtensions(cfg.Workspace.SnapshotExtensions)
}

func normalizeExtensions(extensions []string) []string {
	out := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		out = append(out, ext)
	}
	return out
}

func normalizeGrammar(cfg *Config, baseDir string) {
	so := strings.TrimSpace(cfg.Grammar.SharedObject)
	if so != "" {
		so = ResolveRelative(baseDir, so)
	}
	cfg.Grammar.SharedObject = so
	cfg.Grammar.Language = strings.TrimSpace(cfg.Grammar.Language)
	cfg.Grammar.SHA256 = strings.ToLower(strings.TrimSpace(cfg.Grammar.SHA256))
}
