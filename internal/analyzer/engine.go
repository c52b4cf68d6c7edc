package analyzer

import (
	"fmt"

	"github.com/yildizm/mclogsum/internal/common"
)

// Engine evaluates an ordered rule catalogue against log text. The
// catalogue is fixed at construction so an Engine is safe for concurrent use.
type Engine struct {
	rules []Rule
}

// NewEngine creates an engine over rules in ranking order
func NewEngine(rules ...Rule) *Engine {
	r := make([]Rule, len(rules))
	copy(r, rules)
	return &Engine{rules: r}
}

// WithRules returns a new engine with rules appended after the current ones
func (e *Engine) WithRules(rules ...Rule) *Engine {
	combined := make([]Rule, 0, len(e.rules)+len(rules))
	combined = append(combined, e.rules...)
	combined = append(combined, rules...)
	return &Engine{rules: combined}
}

// Rules returns the catalogue in ranking order
func (e *Engine) Rules() []Rule {
	out := make([]Rule, len(e.rules))
	copy(out, e.rules)
	return out
}

// Findings evaluates every rule in catalogue order and returns those that
// produced a non-empty reason
func (e *Engine) Findings(log string) []Finding {
	var findings []Finding
	for _, rule := range e.rules {
		if !rule.Matches(log) || rule.Reason == nil {
			continue
		}
		text, ok := rule.Reason.Explain(log)
		if !ok {
			continue
		}
		findings = append(findings, Finding{RuleID: rule.ID, Reason: text})
	}
	return findings
}

// Classify ranks the reasons produced for the log. An empty result means
// no rule applied.
func (e *Engine) Classify(log string) Result {
	findings := e.Findings(log)
	if len(findings) == 0 {
		return Result{}
	}

	result := Result{
		MainProblem:        findings[0].Reason,
		AdditionalProblems: make([]string, 0, len(findings)-1),
	}
	for _, f := range findings[1:] {
		result.AdditionalProblems = append(result.AdditionalProblems, f.Reason)
	}
	return result
}

// RulesFromSpecs converts rule file entries into static catalogue rules
func RulesFromSpecs(specs []*common.RuleSpec) ([]Rule, error) {
	rules := make([]Rule, 0, len(specs))
	for _, s := range specs {
		if err := s.Validate(); err != nil {
			return nil, err
		}
		logic, ok := ParseLogic(s.Logic)
		if !ok {
			return nil, fmt.Errorf("rule %s: invalid logic %q", s.ID, s.Logic)
		}
		keywords := make([]string, len(s.Keywords))
		copy(keywords, s.Keywords)
		rules = append(rules, Rule{
			ID:       s.ID,
			Keywords: keywords,
			Logic:    logic,
			Reason:   Static(s.Reason),
		})
	}
	return rules, nil
}
