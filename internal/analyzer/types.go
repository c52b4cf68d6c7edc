package analyzer

import (
	"strings"

	"github.com/yildizm/mclogsum/internal/common"
)

// Result is the ranked outcome of classifying one log
type Result = common.Diagnosis

// NoIssueDetected is the diagnosis shown when no rule produced a reason
const NoIssueDetected = common.NoIssueDetected

// Logic decides how a rule's keywords combine
type Logic int

const (
	// OneOf matches when any keyword is present
	OneOf Logic = iota
	// AllOf matches when every keyword is present
	AllOf
)

func (l Logic) String() string {
	if l == AllOf {
		return common.LogicAllOf
	}
	return common.LogicOneOf
}

// ParseLogic converts a rule file logic name. An empty name is OneOf.
func ParseLogic(name string) (Logic, bool) {
	switch name {
	case "", common.LogicOneOf:
		return OneOf, true
	case common.LogicAllOf:
		return AllOf, true
	default:
		return OneOf, false
	}
}

// ReasonKind tags the variant of a Reason
type ReasonKind string

const (
	ReasonStatic  ReasonKind = "static"
	ReasonDynamic ReasonKind = "dynamic"
)

// Reason produces the explanation for a matched rule. ok is false when
// the reason does not apply to this log.
type Reason interface {
	Kind() ReasonKind
	Explain(log string) (text string, ok bool)
}

// Static is a fixed explanation
type Static string

func (s Static) Kind() ReasonKind { return ReasonStatic }

func (s Static) Explain(string) (string, bool) {
	return string(s), s != ""
}

// Dynamic computes an explanation from the full log text
type Dynamic func(log string) (string, bool)

func (d Dynamic) Kind() ReasonKind { return ReasonDynamic }

func (d Dynamic) Explain(log string) (string, bool) {
	if d == nil {
		return "", false
	}
	text, ok := d(log)
	if !ok || strings.TrimSpace(text) == "" {
		return "", false
	}
	return text, true
}

// Rule is one entry of the diagnostic catalogue
type Rule struct {
	ID       string
	Keywords []string
	Logic    Logic
	Reason   Reason
}

// Matches reports whether the rule's keyword predicate holds for the log
func (r Rule) Matches(log string) bool {
	if len(r.Keywords) == 0 {
		return false
	}
	if r.Logic == AllOf {
		for _, kw := range r.Keywords {
			if !strings.Contains(log, kw) {
				return false
			}
		}
		return true
	}
	for _, kw := range r.Keywords {
		if strings.Contains(log, kw) {
			return true
		}
	}
	return false
}

// Finding is a rule that matched and produced a reason
type Finding struct {
	RuleID string `json:"rule_id"`
	Reason string `json:"reason"`
}
