package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/gobwas/glob"
)

var grammarNamePattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Validate reports every problem in cfg, in section order.
func Validate(cfg *Config) []error {
	var errs []error
	for _, check := range []func(*Config) []error{
		validateVersion,
		validateWorkspace,
		validateExclude,
		validateWatch,
		validateCache,
		validateGrammar,
		validateAnalysis,
		validateLog,
	} {
		errs = append(errs, check(cfg)...)
	}
	return errs
}

func validateVersion(cfg *Config) []error {
	if cfg.Version != 1 {
		return []error{fmt.Errorf("unsupported config version %d; supported version is 1", cfg.Version)}
	}
	return nil
}

func validateWorkspace(cfg *Config) []error {
	var errs []error
	if len(cfg.Workspace.Roots) == 0 {
		errs = append(errs, fmt.Errorf("workspace.roots must not be empty"))
	}
	for i, root := range cfg.Workspace.Roots {
		info, err := os.Stat(root)
		if err != nil {
			errs = append(errs, fmt.Errorf("workspace.roots[%d] %q does not exist", i, root))
			continue
		}
		if !info.IsDir() {
			errs = append(errs, fmt.Errorf("workspace.roots[%d] %q is not a directory", i, root))
		}
	}

	seen := make(map[string]string)
	for _, ext := range cfg.Workspace.Extensions {
		seen[ext] = "workspace.extensions"
	}
	for _, ext := range cfg.Workspace.SnapshotExtensions {
		if owner, ok := seen[ext]; ok {
			errs = append(errs, fmt.Errorf("extension %q is listed in both %s and workspace.snapshot_extensions", ext, owner))
		}
	}
	return errs
}

func validateExclude(cfg *Config) []error {
	var errs []error
	for i, pattern := range cfg.Exclude.Dirs {
		if _, err := glob.Compile(pattern); err != nil {
			errs = append(errs, fmt.Errorf("exclude.dirs[%d] %q is not a valid glob: %v", i, pattern, err))
		}
	}
	for i, pattern := range cfg.Exclude.Files {
		if _, err := glob.Compile(pattern); err != nil {
			errs = append(errs, fmt.Errorf("exclude.files[%d] %q is not a valid glob: %v", i, pattern, err))
		}
	}
	return errs
}

func validateWatch(cfg *Config) []error {
	var errs []error
	if cfg.Watch.Debounce < 0 || cfg.Watch.Debounce > 10*time.Second {
		errs = append(errs, fmt.Errorf("watch.debounce must be between 0s and 10s"))
	}
	if cfg.Watch.ReloadRate <= 0 {
		errs = append(errs, fmt.Errorf("watch.reload_rate must be > 0"))
	}
	if cfg.Watch.ReloadBurst < 1 {
		errs = append(errs, fmt.Errorf("watch.reload_burst must be >= 1"))
	}
	return errs
}

func validateCache(cfg *Config) []error {
	if cfg.Cache.Capacity < 1 || cfg.Cache.Capacity > 1_000_000 {
		return []error{fmt.Errorf("cache.capacity must be between 1 and 1000000")}
	}
	return nil
}

func validateGrammar(cfg *Config) []error {
	var errs []error
	if !grammarNamePattern.MatchString(cfg.Grammar.Language) {
		errs = append(errs, fmt.Errorf("grammar.language %q must be a C identifier", cfg.Grammar.Language))
	}
	if so := cfg.Grammar.SharedObject; so != "" {
		info, err := os.Stat(so)
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("grammar.shared_object %q does not exist", so))
		case info.IsDir():
			errs = append(errs, fmt.Errorf("grammar.shared_object %q is a directory", so))
		}
	}
	if h := cfg.Grammar.SHA256; h != "" && len(h) != 64 {
		errs = append(errs, fmt.Errorf("grammar.sha256 must be 64 hex characters"))
	}
	return errs
}

func validateAnalysis(cfg *Config) []error {
	if cfg.Analysis.MaxAliasDepth < 1 || cfg.Analysis.MaxAliasDepth > 4096 {
		return []error{fmt.Errorf("analysis.max_alias_depth must be between 1 and 4096")}
	}
	return nil
}

func validateLog(cfg *Config) []error {
	switch strings.ToLower(strings.TrimSpace(cfg.Log.Level)) {
	case "debug", "info", "warn", "warning", "error":
		return nil
	}
	return []error{fmt.Errorf("log.level must be one of: debug, info, warn, error")}
}
