package cli

import (
	"fmt"

	"github.com/yildizm/mclogsum/internal/ai/providers/gemini"
	"github.com/yildizm/mclogsum/internal/analyzer"
	"github.com/yildizm/mclogsum/internal/common"
	"github.com/yildizm/mclogsum/internal/config"
	"github.com/yildizm/mclogsum/internal/extractor"
)

// buildEngine appends rule file entries after the built-in catalogue
func buildEngine(ruleFiles []string) (*analyzer.Engine, error) {
	engine := analyzer.NewEngine(analyzer.DefaultRules()...)
	if len(ruleFiles) == 0 {
		return engine, nil
	}

	specs, err := common.LoadRuleFiles(ruleFiles)
	if err != nil {
		return nil, fmt.Errorf("failed to load rule files: %w", err)
	}

	rules, err := analyzer.RulesFromSpecs(specs)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	for _, r := range engine.Rules() {
		seen[r.ID] = true
	}
	for _, r := range rules {
		if seen[r.ID] {
			return nil, fmt.Errorf("rule %s is already defined", r.ID)
		}
		seen[r.ID] = true
	}

	return engine.WithRules(rules...), nil
}

// buildPipeline wires the extractor and classifier from configuration.
// Non-empty arguments override the configured keywords; extra rule files
// are loaded after the configured ones.
func buildPipeline(cfg *config.Config, keywords string, extraRules []string) (*analyzer.Pipeline, error) {
	if keywords == "" {
		keywords = cfg.Keywords.Custom
	}

	files := make([]string, 0, len(cfg.Rules.Files)+len(extraRules))
	files = append(files, cfg.Rules.Files...)
	files = append(files, extraRules...)

	engine, err := buildEngine(files)
	if err != nil {
		return nil, err
	}

	x := extractor.New(extractor.Options{CustomKeywords: keywords})
	return analyzer.NewPipeline(x, engine), nil
}

// newGemini creates the Gemini provider described by the ai section
func newGemini(cfg *config.Config) (*gemini.Provider, error) {
	gc := gemini.DefaultConfig()
	gc.APIKey = cfg.AI.APIKey
	if cfg.AI.ProxyTarget != "" {
		gc.ProxyTarget = cfg.AI.ProxyTarget
	}
	if cfg.AI.Model != "" {
		gc.Model = cfg.AI.Model
	}
	if cfg.AI.Timeout > 0 {
		gc.Timeout = cfg.AI.Timeout
	}
	gc.MaxLogChars = cfg.AI.MaxLogChars
	gc.Retry.MaxRetries = cfg.AI.MaxRetries

	return gemini.New(gc)
}
