package gemini

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/yildizm/mclogsum/internal/ai"
)

const (
	ProviderName       = "gemini"
	DefaultProxyTarget = "https://gemini-proxy.keyikai.me/"
	DefaultModel       = "gemini-2.5-flash"
	DefaultAPIVersion  = "v1beta"
	DefaultTimeout     = 60 * time.Second
)

type Config struct {
	APIKey      string         `json:"api_key"`
	ProxyTarget string         `json:"proxy_target"`
	Model       string         `json:"model"`
	Timeout     time.Duration  `json:"timeout"`
	MaxLogChars int            `json:"max_log_chars"`
	Retry       ai.RetryConfig `json:"retry"`
}

func DefaultConfig() *Config {
	return &Config{
		ProxyTarget: DefaultProxyTarget,
		Model:       DefaultModel,
		Timeout:     DefaultTimeout,
		Retry: ai.RetryConfig{
			MaxRetries:   2,
			InitialDelay: time.Second,
			MaxDelay:     8 * time.Second,
		},
	}
}

func (c *Config) Validate() error {
	if c.APIKey == "" {
		return configError("api_key", "API key is required")
	}
	if err := validateTarget(c.ProxyTarget); err != nil {
		return err
	}
	if c.Model == "" {
		return configError("model", "model is required")
	}
	if c.Timeout <= 0 {
		return configError("timeout", "timeout must be positive")
	}
	if c.MaxLogChars < 0 {
		return configError("max_log_chars", "max log chars cannot be negative")
	}
	if c.Retry.MaxRetries < 0 {
		return configError("retry.max_retries", "max retries cannot be negative")
	}
	return nil
}

func validateTarget(target string) error {
	if target == "" {
		return configError("proxy_target", "proxy target is required")
	}
	u, err := url.Parse(target)
	if err != nil {
		return configError("proxy_target", fmt.Sprintf("invalid proxy target: %v", err))
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return configError("proxy_target", "proxy target must be an http or https URL")
	}
	return nil
}

// normalizeTarget ensures the target ends with a slash so paths append cleanly
func normalizeTarget(target string) string {
	if !strings.HasSuffix(target, "/") {
		return target + "/"
	}
	return target
}

func configError(field, message string) error {
	return ai.NewProviderError(ai.ErrTypeConfiguration, fmt.Sprintf("%s: %s", field, message), ProviderName)
}
