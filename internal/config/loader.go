package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigPaths defines the config file search paths in priority order
var ConfigPaths = []string{
	"./.mclogsum.yaml",               // Project-specific config (highest priority)
	"~/.config/mclogsum/config.yaml", // User config
	"/etc/mclogsum/config.yaml",      // System config (lowest priority)
}

// Loader handles configuration loading with priority merging
type Loader struct {
	configPaths []string
	warn        func(format string, args ...interface{})
}

// NewLoader creates a new config loader
func NewLoader() *Loader {
	return NewLoaderWithPaths(ConfigPaths)
}

// NewLoaderWithPaths creates a loader over a custom search list
func NewLoaderWithPaths(paths []string) *Loader {
	return &Loader{
		configPaths: paths,
		warn: func(format string, args ...interface{}) {
			fmt.Fprintf(os.Stderr, "Warning: "+format+"\n", args...)
		},
	}
}

// LoadConfig loads configuration from multiple sources with priority order:
// 1. Command line flags (handled by caller)
// 2. MCLOGSUM_* environment variables
// 3. Legacy GEMINI_PROXY_TARGET, GEMINI_API_KEY and CUSTOM_KEYWORDS
// 4. ./.mclogsum.yaml
// 5. ~/.config/mclogsum/config.yaml
// 6. /etc/mclogsum/config.yaml
// 7. Built-in defaults
func (l *Loader) LoadConfig(customPath string) (*Config, error) {
	config := DefaultConfig()

	// If custom path is provided, use only that path
	if customPath != "" {
		if err := validateConfigPath(customPath); err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		if err := l.loadFromFile(config, customPath); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", customPath, err)
		}
	} else {
		// Load lowest priority first so later files win
		for i := len(l.configPaths) - 1; i >= 0; i-- {
			expandedPath := expandPath(l.configPaths[i])
			if fileExists(expandedPath) {
				if err := l.loadFromFile(config, expandedPath); err != nil {
					l.warn("failed to load config from %s: %v", expandedPath, err)
				}
			}
		}
	}

	if err := l.applyEnvOverrides(config); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// loadFromFile decodes a YAML file on top of config. Keys absent from the
// file keep their current value, so booleans can be set to false explicitly.
func (l *Loader) loadFromFile(config *Config, path string) error {
	// #nosec G304 - path is validated by validateConfigPath() or comes from ConfigPaths
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	// Decode into a copy so a parse error leaves config untouched
	merged := *config
	merged.Rules.Files = append([]string(nil), config.Rules.Files...)
	if err := yaml.Unmarshal(data, &merged); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	*config = merged

	return nil
}

// legacyEnv are the variable names the original web service read
var legacyEnv = map[string]func(c *Config, v string){
	"GEMINI_PROXY_TARGET": func(c *Config, v string) { c.AI.ProxyTarget = v },
	"GEMINI_API_KEY":      func(c *Config, v string) { c.AI.APIKey = v },
	"CUSTOM_KEYWORDS":     func(c *Config, v string) { c.Keywords.Custom = v },
}

// applyEnvOverrides applies environment variable overrides to the config
func (l *Loader) applyEnvOverrides(config *Config) error {
	for envVar, set := range legacyEnv {
		if value := os.Getenv(envVar); value != "" {
			set(config, value)
		}
	}

	envMappings := map[string]func(string) error{
		// Keywords and rules
		"MCLOGSUM_KEYWORDS_CUSTOM": func(v string) error { config.Keywords.Custom = v; return nil },
		"MCLOGSUM_RULES_FILES":     func(v string) error { config.Rules.Files = splitList(v); return nil },

		// AI Config
		"MCLOGSUM_AI_PROVIDER":      func(v string) error { config.AI.Provider = v; return nil },
		"MCLOGSUM_AI_MODEL":         func(v string) error { config.AI.Model = v; return nil },
		"MCLOGSUM_AI_PROXY_TARGET":  func(v string) error { config.AI.ProxyTarget = v; return nil },
		"MCLOGSUM_AI_API_KEY":       func(v string) error { config.AI.APIKey = v; return nil },
		"MCLOGSUM_AI_TIMEOUT":       func(v string) error { return parseDuration(v, &config.AI.Timeout) },
		"MCLOGSUM_AI_MAX_RETRIES":   func(v string) error { return parseInt(v, &config.AI.MaxRetries) },
		"MCLOGSUM_AI_MAX_LOG_CHARS": func(v string) error { return parseInt(v, &config.AI.MaxLogChars) },

		// Server Config
		"MCLOGSUM_SERVER_ADDRESS":          func(v string) error { config.Server.Address = v; return nil },
		"MCLOGSUM_SERVER_BODY_LIMIT":       func(v string) error { config.Server.BodyLimit = v; return nil },
		"MCLOGSUM_SERVER_STATIC_DIR":       func(v string) error { config.Server.StaticDir = v; return nil },
		"MCLOGSUM_SERVER_CORS_ORIGINS":     func(v string) error { config.Server.CORSOrigins = splitList(v); return nil },
		"MCLOGSUM_SERVER_SHUTDOWN_TIMEOUT": func(v string) error { return parseDuration(v, &config.Server.ShutdownTimeout) },

		// Storage Config
		"MCLOGSUM_STORAGE_TEMP_DIR": func(v string) error { config.Storage.TempDir = v; return nil },

		// Output Config
		"MCLOGSUM_OUTPUT_DEFAULT_FORMAT": func(v string) error { config.Output.DefaultFormat = v; return nil },
		"MCLOGSUM_OUTPUT_COLOR_MODE":     func(v string) error { config.Output.ColorMode = v; return nil },
		"MCLOGSUM_OUTPUT_VERBOSE":        func(v string) error { return parseBool(v, &config.Output.Verbose) },
		"MCLOGSUM_OUTPUT_LOG_FORMAT":     func(v string) error { config.Output.LogFormat = v; return nil },

		// Analysis Config
		"MCLOGSUM_ANALYSIS_TIMEOUT":       func(v string) error { return parseDuration(v, &config.Analysis.Timeout) },
		"MCLOGSUM_ANALYSIS_JOBS":          func(v string) error { return parseInt(v, &config.Analysis.Jobs) },
		"MCLOGSUM_ANALYSIS_MAX_FILE_SIZE": func(v string) error { return parseInt64(v, &config.Analysis.MaxFileSize) },

		// Watch Config
		"MCLOGSUM_WATCH_EXTENSIONS": func(v string) error { config.Watch.Extensions = splitList(v); return nil },
		"MCLOGSUM_WATCH_DEBOUNCE":   func(v string) error { return parseDuration(v, &config.Watch.Debounce) },
	}

	for envVar, setter := range envMappings {
		if value := os.Getenv(envVar); value != "" {
			if err := setter(value); err != nil {
				return fmt.Errorf("invalid value for %s: %w", envVar, err)
			}
		}
	}

	return nil
}

// Save writes config as YAML, creating parent directories
func Save(config *Config, path string) error {
	if err := validateConfigPath(path); err != nil {
		return fmt.Errorf("invalid config path: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// GetConfigPaths returns the list of configuration file paths that will be searched
func GetConfigPaths() []string {
	paths := make([]string, 0, len(ConfigPaths))
	for _, path := range ConfigPaths {
		paths = append(paths, expandPath(path))
	}
	return paths
}

// FindConfigFile finds the first existing config file in the search paths
func FindConfigFile() (string, bool) {
	for _, path := range ConfigPaths {
		expandedPath := expandPath(path)
		if fileExists(expandedPath) {
			return expandedPath, true
		}
	}
	return "", false
}

// Helper functions

// validateConfigPath validates that a config path is safe to read
func validateConfigPath(path string) error {
	cleanPath := filepath.Clean(path)

	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path traversal not allowed")
	}

	ext := strings.ToLower(filepath.Ext(cleanPath))
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("config file must have .yaml or .yml extension")
	}

	absPath, err := filepath.Abs(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	if strings.HasPrefix(absPath, "/proc/") ||
		strings.HasPrefix(absPath, "/sys/") {
		return fmt.Errorf("access to system files not allowed")
	}

	return nil
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

// fileExists checks if a file exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// splitList splits a comma-separated list, trimming entries and dropping empties
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Type conversion helpers

func parseInt(s string, dst *int) error {
	val, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}

func parseInt64(s string, dst *int64) error {
	val, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}

func parseBool(s string, dst *bool) error {
	val, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}

func parseDuration(s string, dst *time.Duration) error {
	val, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}
