package config

import (
	"log/slog"
	"strings"
	"time"
)

type Config struct {
	Version       int           `toml:"version"`
	Workspace     Workspace     `toml:"workspace"`
	Exclude       Exclude       `toml:"exclude"`
	Watch         Watch         `toml:"watch"`
	Cache         Cache         `toml:"cache"`
	Grammar       Grammar       `toml:"grammar"`
	Analysis      Analysis      `toml:"analysis"`
	Observability Observability `toml:"observability"`
	Log           Log           `toml:"log"`
}

// Workspace lists the directories scanned for modules. Files with one of
// Extensions are parsed with the hlang grammar; files with one of
// SnapshotExtensions are YAML parse-tree snapshots.
type Workspace struct {
	Roots              []string `toml:"roots"`
	Extensions         []string `toml:"extensions"`
	SnapshotExtensions []string `toml:"snapshot_extensions"`
}

// Exclude holds glob patterns. Dirs match directory base names, Files match
// file base names.
type Exclude struct {
	Dirs  []string `toml:"dirs"`
	Files []string `toml:"files"`
}

type Watch struct {
	Enabled     *bool         `toml:"enabled"`
	Debounce    time.Duration `toml:"debounce"`
	ReloadRate  float64       `toml:"reload_rate"`
	ReloadBurst int           `toml:"reload_burst"`
}

type Cache struct {
	Capacity int `toml:"capacity"`
}

// Grammar locates the compiled hlang tree-sitter grammar. Without a shared
// object only snapshot files can be loaded.
type Grammar struct {
	SharedObject string `toml:"shared_object"`
	Language     string `toml:"language"`
	SHA256       string `toml:"sha256"`
}

type Analysis struct {
	MaxAliasDepth int `toml:"max_alias_depth"`
}

type Observability struct {
	MetricsAddress string `toml:"metrics_address"`
	OTLPEndpoint   string `toml:"otlp_endpoint"`
	OTLPInsecure   bool   `toml:"otlp_insecure"`
	ServiceName    string `toml:"service_name"`
}

type Log struct {
	Level string `toml:"level"`
}

// WatchEnabled reports whether file watching is on. It defaults to true.
func (c *Config) WatchEnabled() bool {
	return c.Watch.Enabled == nil || *c.Watch.Enabled
}

// SlogLevel maps log.level to a slog level. Unknown values map to Info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.Log.Level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}
