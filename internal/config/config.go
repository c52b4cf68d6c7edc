package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/labstack/gommon/bytes"
)

// Config holds the complete application configuration
type Config struct {
	Version  string         `yaml:"version" json:"version"`
	Keywords KeywordsConfig `yaml:"keywords" json:"keywords"`
	Rules    RulesConfig    `yaml:"rules" json:"rules"`
	AI       AIConfig       `yaml:"ai" json:"ai"`
	Server   ServerConfig   `yaml:"server" json:"server"`
	Storage  StorageConfig  `yaml:"storage" json:"storage"`
	Output   OutputConfig   `yaml:"output" json:"output"`
	Analysis AnalysisConfig `yaml:"analysis" json:"analysis"`
	Watch    WatchConfig    `yaml:"watch" json:"watch"`
}

// KeywordsConfig configures keyword detection
type KeywordsConfig struct {
	Custom string `yaml:"custom" json:"custom"` // pipe-delimited literals, e.g. "Sodium|Iris"
}

// RulesConfig configures additional diagnostic rules
type RulesConfig struct {
	Files []string `yaml:"files" json:"files"` // YAML rule files appended after the built-in catalogue
}

// AIConfig configures the AI summarizer
type AIConfig struct {
	Provider    string        `yaml:"provider" json:"provider"`         // gemini
	Model       string        `yaml:"model" json:"model"`               // model name/identifier
	ProxyTarget string        `yaml:"proxy_target" json:"proxy_target"` // base URL of the Gemini API or a proxy in front of it
	APIKey      string        `yaml:"api_key" json:"api_key"`           // API key
	Timeout     time.Duration `yaml:"timeout" json:"timeout"`           // request timeout
	MaxRetries  int           `yaml:"max_retries" json:"max_retries"`   // retry count
	MaxLogChars int           `yaml:"max_log_chars" json:"max_log_chars"`
}

// Enabled reports whether the summarizer can be used
func (a AIConfig) Enabled() bool {
	return a.APIKey != ""
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Address         string        `yaml:"address" json:"address"`
	BodyLimit       string        `yaml:"body_limit" json:"body_limit"` // echo size notation, e.g. 10M
	StaticDir       string        `yaml:"static_dir" json:"static_dir"`
	CORSOrigins     []string      `yaml:"cors_origins" json:"cors_origins"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout"`
}

// StorageConfig configures temporary storage
type StorageConfig struct {
	TempDir string `yaml:"temp_dir" json:"temp_dir"` // upload staging directory
}

// OutputConfig configures output formatting and display
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format" json:"default_format"` // json|text|markdown
	ColorMode     string `yaml:"color_mode" json:"color_mode"`         // auto|always|never
	Verbose       bool   `yaml:"verbose" json:"verbose"`               // default verbosity
	LogFormat     string `yaml:"log_format" json:"log_format"`         // console|json
}

// AnalysisConfig configures analysis behavior
type AnalysisConfig struct {
	Timeout     time.Duration `yaml:"timeout" json:"timeout"`             // budget for one log, including AI calls
	Jobs        int           `yaml:"jobs" json:"jobs"`                   // parallel files in diagnose
	MaxFileSize int64         `yaml:"max_file_size" json:"max_file_size"` // bytes read per log file
}

// WatchConfig configures the watch command
type WatchConfig struct {
	Extensions []string      `yaml:"extensions" json:"extensions"`
	Debounce   time.Duration `yaml:"debounce" json:"debounce"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Version: "1.0",
		Rules: RulesConfig{
			Files: []string{},
		},
		AI: AIConfig{
			Provider:    "gemini",
			Model:       "gemini-2.5-flash",
			ProxyTarget: "https://gemini-proxy.keyikai.me/",
			Timeout:     60 * time.Second,
			MaxRetries:  2,
		},
		Server: ServerConfig{
			Address:         ":3000",
			BodyLimit:       "10M",
			CORSOrigins:     []string{"*"},
			ShutdownTimeout: 10 * time.Second,
		},
		Storage: StorageConfig{
			TempDir: filepath.Join(os.TempDir(), "mclogsum"),
		},
		Output: OutputConfig{
			DefaultFormat: "text",
			ColorMode:     "auto",
			LogFormat:     "console",
		},
		Analysis: AnalysisConfig{
			Timeout:     90 * time.Second,
			Jobs:        4,
			MaxFileSize: 10 * 1024 * 1024,
		},
		Watch: WatchConfig{
			Extensions: []string{".log", ".txt"},
			Debounce:   500 * time.Millisecond,
		},
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.validateAIConfig(); err != nil {
		return err
	}
	if err := c.validateServerConfig(); err != nil {
		return err
	}
	if err := c.validateOutputConfig(); err != nil {
		return err
	}
	if err := c.validateAnalysisConfig(); err != nil {
		return err
	}
	return nil
}

// validateAIConfig validates AI-related configuration
func (c *Config) validateAIConfig() error {
	if c.AI.Provider != "" && c.AI.Provider != "gemini" {
		return fmt.Errorf("invalid AI provider: %s (must be gemini)", c.AI.Provider)
	}
	if c.AI.MaxRetries < 0 {
		return fmt.Errorf("max_retries must be non-negative")
	}
	if c.AI.Timeout < 0 {
		return fmt.Errorf("ai timeout must be non-negative")
	}
	if c.AI.MaxLogChars < 0 {
		return fmt.Errorf("max_log_chars must be non-negative")
	}
	return nil
}

// validateServerConfig validates HTTP server configuration
func (c *Config) validateServerConfig() error {
	if c.Server.Address == "" {
		return fmt.Errorf("server address cannot be empty")
	}
	if c.Server.BodyLimit != "" {
		if _, err := bytes.Parse(c.Server.BodyLimit); err != nil {
			return fmt.Errorf("invalid body_limit %q: %w", c.Server.BodyLimit, err)
		}
	}
	if c.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("shutdown_timeout must be non-negative")
	}
	return nil
}

// validateOutputConfig validates output-related configuration
func (c *Config) validateOutputConfig() error {
	if c.Output.DefaultFormat != "" {
		validFormats := map[string]bool{
			"json":     true,
			"text":     true,
			"markdown": true,
		}
		if !validFormats[c.Output.DefaultFormat] {
			return fmt.Errorf("invalid output format: %s (must be one of: json, text, markdown)", c.Output.DefaultFormat)
		}
	}
	if c.Output.ColorMode != "" {
		validColorModes := map[string]bool{
			"auto":   true,
			"always": true,
			"never":  true,
		}
		if !validColorModes[c.Output.ColorMode] {
			return fmt.Errorf("invalid color mode: %s (must be one of: auto, always, never)", c.Output.ColorMode)
		}
	}
	if c.Output.LogFormat != "" && c.Output.LogFormat != "console" && c.Output.LogFormat != "json" {
		return fmt.Errorf("invalid log format: %s (must be one of: console, json)", c.Output.LogFormat)
	}
	return nil
}

// validateAnalysisConfig validates analysis-related configuration
func (c *Config) validateAnalysisConfig() error {
	if c.Analysis.Timeout < 0 {
		return fmt.Errorf("analysis timeout must be non-negative")
	}
	if c.Analysis.Jobs < 1 {
		return fmt.Errorf("jobs must be greater than 0")
	}
	if c.Analysis.MaxFileSize < 1 {
		return fmt.Errorf("max_file_size must be greater than 0")
	}
	return nil
}

// BodyLimitBytes returns the configured request body limit in bytes
func (c *Config) BodyLimitBytes() int64 {
	n, err := bytes.Parse(c.Server.BodyLimit)
	if err != nil {
		return 0
	}
	return n
}
