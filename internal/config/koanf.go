// ReelMatch - Conversational Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists where a config file is searched, in order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/reelmatch/config.yaml",
	"/etc/reelmatch/config.yml",
}

// ConfigPathEnvVar overrides the config file search path.
const ConfigPathEnvVar = "CONFIG_PATH"

// Load builds the configuration in three layers with clear precedence:
// built-in defaults, then an optional YAML file, then environment
// variables on top.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("load environment variables: %w", err)
	}

	// cors origins arrive as a comma-separated string from env vars
	if v, ok := k.Get("server.cors_origins").(string); ok {
		parts := strings.Split(v, ",")
		origins := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				origins = append(origins, p)
			}
		}
		if err := k.Set("server.cors_origins", origins); err != nil {
			return nil, fmt.Errorf("normalize cors origins: %w", err)
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envTransformFunc maps environment variable names to config paths.
// Unmapped variables are skipped so arbitrary environment noise never
// pollutes the configuration.
func envTransformFunc(key string) string {
	mappings := map[string]string{
		// Server
		"http_host":           "server.host",
		"http_port":           "server.port",
		"http_read_timeout":   "server.read_timeout",
		"http_write_timeout":  "server.write_timeout",
		"shutdown_timeout":    "server.shutdown_timeout",
		"cors_origins":        "server.cors_origins",
		"rate_limit_requests": "server.rate_limit_requests",
		"rate_limit_window":   "server.rate_limit_window",

		// Logging
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",

		// Catalog
		"catalog_path":      "catalog.path",
		"catalog_dimension": "catalog.dimension",

		// Taste store
		"taste_backend":       "taste.backend",
		"taste_path":          "taste.path",
		"taste_alpha":         "taste.fusion.alpha",
		"taste_history_limit": "taste.fusion.history_limit",

		// Embedding backend
		"embedding_base_url":   "embedding.base_url",
		"embedding_api_key":    "embedding.api_key",
		"embedding_model":      "embedding.model",
		"embedding_dimension":  "embedding.dimension",
		"embedding_timeout":    "embedding.timeout",
		"embedding_rate_limit": "embedding.rate_limit",
		"embedding_rate_burst": "embedding.rate_burst",

		// Explanation backend
		"explain_enabled":     "explain.enabled",
		"explain_base_url":    "explain.base_url",
		"explain_api_key":     "explain.api_key",
		"explain_model":       "explain.model",
		"explain_temperature": "explain.temperature",
		"explain_timeout":     "explain.timeout",

		// Engine
		"recommend_top_k":           "recommend.top_k",
		"recommend_default_k":       "recommend.default_k",
		"recommend_max_k":           "recommend.max_k",
		"recommend_embed_timeout":   "recommend.embed_timeout",
		"recommend_explain_timeout": "recommend.explain_timeout",
	}

	if mapped, ok := mappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
