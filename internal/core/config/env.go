package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides applies environment variable overrides to the configuration.
// Pattern: HLSENSE_[SECTION]_[KEY] (e.g., HLSENSE_CACHE_CAPACITY).
func ApplyEnvOverrides(cfg *Config) {
	// Workspace
	setEnvList(&cfg.Workspace.Roots, "HLSENSE_WORKSPACE_ROOTS")

	// Watch
	setEnvBool(&cfg.Watch.Enabled, "HLSENSE_WATCH_ENABLED")
	setEnvDuration(&cfg.Watch.Debounce, "HLSENSE_WATCH_DEBOUNCE")

	// Cache
	setEnvInt(&cfg.Cache.Capacity, "HLSENSE_CACHE_CAPACITY")

	// Grammar
	setEnvString(&cfg.Grammar.SharedObject, "HLSENSE_GRAMMAR_SHARED_OBJECT")
	setEnvString(&cfg.Grammar.SHA256, "HLSENSE_GRAMMAR_SHA256")

	// Analysis
	setEnvInt(&cfg.Analysis.MaxAliasDepth, "HLSENSE_ANALYSIS_MAX_ALIAS_DEPTH")

	// Observability
	setEnvString(&cfg.Observability.MetricsAddress, "HLSENSE_OBSERVABILITY_METRICS_ADDRESS")
	setEnvString(&cfg.Observability.OTLPEndpoint, "HLSENSE_OBSERVABILITY_OTLP_ENDPOINT")

	// Log
	setEnvString(&cfg.Log.Level, "HLSENSE_LOG_LEVEL")
}

func setEnvString(target *string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		slog.Debug("applying env override", "key", key, "value", val)
		*target = val
	}
}

func setEnvList(target *[]string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		slog.Debug("applying env override", "key", key, "value", val)
		*target = strings.Split(val, string(os.PathListSeparator))
	}
}

func setEnvInt(target *int, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = i
		}
	}
}

func setEnvBool(target **bool, key string) {
	if val, ok := os.LookupEnv(key); ok {
		b, err := strconv.ParseBool(strings.ToLower(val))
		if err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = &b
		}
	}
}

func setEnvDuration(target *time.Duration, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = d
		}
	}
}
