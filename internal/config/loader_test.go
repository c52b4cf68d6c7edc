package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}

func TestNewLoader(t *testing.T) {
	loader := NewLoader()
	if loader == nil {
		t.Fatal("NewLoader returned nil")
	}
	if len(loader.configPaths) != 3 {
		t.Errorf("Expected 3 config paths, got %d", len(loader.configPaths))
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	loader := NewLoaderWithPaths([]string{filepath.Join(t.TempDir(), "missing.yaml")})

	cfg, err := loader.LoadConfig("")
	if err != nil {
		t.Fatalf("Failed to load default config: %v", err)
	}

	if cfg.AI.Provider != "gemini" {
		t.Errorf("Expected default AI provider gemini, got %s", cfg.AI.Provider)
	}
	if cfg.Output.DefaultFormat != "text" {
		t.Errorf("Expected default output format text, got %s", cfg.Output.DefaultFormat)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "test-config.yaml")
	writeFile(t, configPath, `version: "1.0"
keywords:
  custom: "Sodium|Iris"
rules:
  files: ["rules/extra.yaml"]
ai:
  model: "gemini-2.0-flash"
  timeout: 45s
server:
  address: ":8080"
  body_limit: "20M"
output:
  default_format: "json"
  verbose: true
analysis:
  jobs: 8
`)

	cfg, err := NewLoader().LoadConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config from file: %v", err)
	}

	if cfg.Keywords.Custom != "Sodium|Iris" {
		t.Errorf("Expected custom keywords, got %q", cfg.Keywords.Custom)
	}
	if len(cfg.Rules.Files) != 1 || cfg.Rules.Files[0] != "rules/extra.yaml" {
		t.Errorf("unexpected rule files %v", cfg.Rules.Files)
	}
	if cfg.AI.Model != "gemini-2.0-flash" {
		t.Errorf("Expected AI model gemini-2.0-flash, got %s", cfg.AI.Model)
	}
	if cfg.AI.Timeout != 45*time.Second {
		t.Errorf("Expected AI timeout 45s, got %v", cfg.AI.Timeout)
	}
	if cfg.AI.ProxyTarget != "https://gemini-proxy.keyikai.me/" {
		t.Errorf("keys absent from the file should keep defaults, got %s", cfg.AI.ProxyTarget)
	}
	if cfg.Server.Address != ":8080" || cfg.BodyLimitBytes() != 20*1024*1024 {
		t.Errorf("unexpected server config %+v", cfg.Server)
	}
	if cfg.Output.DefaultFormat != "json" {
		t.Errorf("Expected output format json, got %s", cfg.Output.DefaultFormat)
	}
	if !cfg.Output.Verbose {
		t.Errorf("Expected verbose to be true")
	}
	if cfg.Analysis.Jobs != 8 {
		t.Errorf("Expected 8 jobs, got %d", cfg.Analysis.Jobs)
	}
}

func TestLoadConfigPriority(t *testing.T) {
	dir := t.TempDir()
	project := filepath.Join(dir, "project.yaml")
	system := filepath.Join(dir, "system.yaml")

	writeFile(t, system, "output:\n  verbose: true\n  default_format: markdown\nanalysis:\n  jobs: 2\n")
	writeFile(t, project, "output:\n  verbose: false\n")

	cfg, err := NewLoaderWithPaths([]string{project, system}).LoadConfig("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Output.Verbose {
		t.Error("project config should be able to turn verbose off")
	}
	if cfg.Output.DefaultFormat != "markdown" {
		t.Errorf("system value should survive, got %s", cfg.Output.DefaultFormat)
	}
	if cfg.Analysis.Jobs != 2 {
		t.Errorf("Expected jobs 2, got %d", cfg.Analysis.Jobs)
	}
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "invalid-config.yaml")
	writeFile(t, configPath, `version: "1.0"
output:
  default_format: "json
  verbose: true
`)

	if _, err := NewLoader().LoadConfig(configPath); err == nil {
		t.Error("Expected error loading invalid YAML config, but got none")
	}
}

func TestLoadConfigInvalidSearchFileIsSkipped(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "bad.yaml")
	writeFile(t, bad, "output: [unterminated\n")

	loader := NewLoaderWithPaths([]string{bad})
	var warned bool
	loader.warn = func(string, ...interface{}) { warned = true }

	cfg, err := loader.LoadConfig("")
	if err != nil {
		t.Fatalf("search path errors should not be fatal: %v", err)
	}
	if !warned {
		t.Error("Expected a warning for the unreadable file")
	}
	if cfg.Output.DefaultFormat != "text" {
		t.Errorf("defaults should be intact, got %s", cfg.Output.DefaultFormat)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("MCLOGSUM_AI_MODEL", "gemini-2.0-flash")
	t.Setenv("MCLOGSUM_OUTPUT_VERBOSE", "true")
	t.Setenv("MCLOGSUM_ANALYSIS_JOBS", "12")
	t.Setenv("MCLOGSUM_RULES_FILES", "a.yaml, b.yaml ,")
	t.Setenv("MCLOGSUM_SERVER_BODY_LIMIT", "5M")

	cfg := DefaultConfig()
	if err := NewLoader().applyEnvOverrides(cfg); err != nil {
		t.Fatalf("Failed to apply env overrides: %v", err)
	}

	if cfg.AI.Model != "gemini-2.0-flash" {
		t.Errorf("Expected AI model override, got %s", cfg.AI.Model)
	}
	if !cfg.Output.Verbose {
		t.Errorf("Expected verbose to be true")
	}
	if cfg.Analysis.Jobs != 12 {
		t.Errorf("Expected 12 jobs, got %d", cfg.Analysis.Jobs)
	}
	if len(cfg.Rules.Files) != 2 || cfg.Rules.Files[1] != "b.yaml" {
		t.Errorf("unexpected rule files %v", cfg.Rules.Files)
	}
	if cfg.Server.BodyLimit != "5M" {
		t.Errorf("Expected body limit 5M, got %s", cfg.Server.BodyLimit)
	}
}

func TestLegacyEnvOverrides(t *testing.T) {
	t.Setenv("GEMINI_PROXY_TARGET", "https://legacy.example/")
	t.Setenv("GEMINI_API_KEY", "legacy-key")
	t.Setenv("CUSTOM_KEYWORDS", "OptiFine|Sodium")

	cfg := DefaultConfig()
	if err := NewLoader().applyEnvOverrides(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.AI.ProxyTarget != "https://legacy.example/" || cfg.AI.APIKey != "legacy-key" {
		t.Errorf("legacy AI variables not applied: %+v", cfg.AI)
	}
	if cfg.Keywords.Custom != "OptiFine|Sodium" {
		t.Errorf("legacy keywords not applied: %q", cfg.Keywords.Custom)
	}

	// Prefixed variables win over legacy ones
	t.Setenv("MCLOGSUM_AI_API_KEY", "new-key")
	cfg = DefaultConfig()
	if err := NewLoader().applyEnvOverrides(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.AI.APIKey != "new-key" {
		t.Errorf("Expected prefixed variable to win, got %s", cfg.AI.APIKey)
	}
}

func TestApplyEnvOverridesInvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		envVar string
		value  string
	}{
		{"invalid int", "MCLOGSUM_ANALYSIS_JOBS", "not-a-number"},
		{"invalid int64", "MCLOGSUM_ANALYSIS_MAX_FILE_SIZE", "big"},
		{"invalid bool", "MCLOGSUM_OUTPUT_VERBOSE", "not-a-bool"},
		{"invalid duration", "MCLOGSUM_AI_TIMEOUT", "not-a-duration"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.envVar, tt.value)

			if err := NewLoader().applyEnvOverrides(DefaultConfig()); err == nil {
				t.Error("Expected error for invalid env var value, but got none")
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.Keywords.Custom = "Sodium"

	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := NewLoader().LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if loaded.Keywords.Custom != "Sodium" {
		t.Errorf("Expected saved keywords, got %q", loaded.Keywords.Custom)
	}
}

func TestParseHelpers(t *testing.T) {
	var d time.Duration
	if err := parseDuration("30s", &d); err != nil || d != 30*time.Second {
		t.Errorf("parseDuration: got %v, %v", d, err)
	}
	if err := parseDuration("invalid", &d); err == nil {
		t.Error("Expected error for invalid duration")
	}

	var i int
	if err := parseInt("42", &i); err != nil || i != 42 {
		t.Errorf("parseInt: got %d, %v", i, err)
	}

	var b bool
	if err := parseBool("false", &b); err != nil || b {
		t.Errorf("parseBool: got %v, %v", b, err)
	}
	if err := parseBool("not-a-bool", &b); err == nil {
		t.Error("Expected error for invalid bool")
	}
}

func TestFileExists(t *testing.T) {
	if fileExists("/path/that/does/not/exist") {
		t.Error("Expected file to not exist, but fileExists returned true")
	}

	tempFile := filepath.Join(t.TempDir(), "test-file")
	writeFile(t, tempFile, "test")

	if !fileExists(tempFile) {
		t.Error("Expected file to exist, but fileExists returned false")
	}
}

func TestValidateConfigPath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"valid yaml file", "config.yaml", false},
		{"valid yml file", "config.yml", false},
		{"path traversal attempt", "../../../etc/passwd", true},
		{"non-yaml file", "config.txt", true},
		{"proc file", "/proc/self/environ.yaml", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateConfigPath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateConfigPath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
		})
	}
}
