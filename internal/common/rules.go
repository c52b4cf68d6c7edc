package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	yaml "gopkg.in/yaml.v3"
)

// Rule logic names accepted in rule files
const (
	LogicOneOf = "one_of"
	LogicAllOf = "all_of"
)

// RuleSpec is a static diagnostic rule declared in a YAML rule file
type RuleSpec struct {
	ID       string   `yaml:"id" json:"id"`
	Keywords []string `yaml:"keywords" json:"keywords"`
	Logic    string   `yaml:"logic,omitempty" json:"logic,omitempty"`
	Reason   string   `yaml:"reason" json:"reason"`
	Source   string   `yaml:"-" json:"-"`
}

// Validate checks that the rule can be turned into a catalogue entry
func (r *RuleSpec) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("rule id cannot be empty")
	}
	if len(r.Keywords) == 0 {
		return fmt.Errorf("rule %s: at least one keyword is required", r.ID)
	}
	for i, kw := range r.Keywords {
		if kw == "" {
			return fmt.Errorf("rule %s: keyword %d is empty", r.ID, i)
		}
	}
	switch r.Logic {
	case "", LogicOneOf, LogicAllOf:
	default:
		return fmt.Errorf("rule %s: invalid logic %q (must be %s or %s)", r.ID, r.Logic, LogicOneOf, LogicAllOf)
	}
	if strings.TrimSpace(r.Reason) == "" {
		return fmt.Errorf("rule %s: reason cannot be empty", r.ID)
	}
	return nil
}

// LoadRulesFromFile loads rules from a single YAML file. The file holds
// either one rule or a list of rules; every rule is validated.
func LoadRulesFromFile(filename string) ([]*RuleSpec, error) {
	if err := validateRuleFilePath(filename); err != nil {
		return nil, fmt.Errorf("invalid file path: %w", err)
	}

	// #nosec G304 - path is validated above
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	rules, err := parseRules(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}

	seen := make(map[string]bool, len(rules))
	for i, r := range rules {
		if r == nil {
			return nil, fmt.Errorf("%s: rule %d is empty", filename, i)
		}
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", filename, err)
		}
		if seen[r.ID] {
			return nil, fmt.Errorf("%s: duplicate rule id %s", filename, r.ID)
		}
		seen[r.ID] = true
		r.Source = filename
	}

	return rules, nil
}

// LoadRuleFiles loads every file in order, keeping file order and the
// declaration order inside each file.
func LoadRuleFiles(filenames []string) ([]*RuleSpec, error) {
	var all []*RuleSpec
	for _, f := range filenames {
		rules, err := LoadRulesFromFile(f)
		if err != nil {
			return nil, err
		}
		all = append(all, rules...)
	}
	return all, nil
}

func parseRules(data []byte) ([]*RuleSpec, error) {
	// Try to parse as single rule first
	var rule RuleSpec
	if err := yaml.Unmarshal(data, &rule); err == nil && rule.ID != "" {
		return []*RuleSpec{&rule}, nil
	}

	var rules []*RuleSpec
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if len(rules) == 0 {
		return nil, fmt.Errorf("no rules found")
	}
	return rules, nil
}

// validateRuleFilePath validates that a rule file path is safe to read
func validateRuleFilePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("empty file path")
	}

	cleanPath := filepath.Clean(path)

	ext := strings.ToLower(filepath.Ext(cleanPath))
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("rule files must have .yaml or .yml extension")
	}

	return nil
}
