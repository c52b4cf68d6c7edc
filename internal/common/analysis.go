package common

import (
	"encoding/json"
)

// NoIssueDetected is reported when no diagnostic rule produced a reason
const NoIssueDetected = "No rule-based issue detected; deeper analysis of the log is recommended."

// Diagnosis is the ranked result of rule classification
type Diagnosis struct {
	MainProblem        string   `json:"mainProblem"`
	AdditionalProblems []string `json:"additionalProblems"`
}

// Found reports whether any rule produced a reason
func (d Diagnosis) Found() bool {
	return d.MainProblem != ""
}

// Problems returns the main problem followed by the additional ones
func (d Diagnosis) Problems() []string {
	if !d.Found() {
		return nil
	}
	problems := make([]string, 0, 1+len(d.AdditionalProblems))
	problems = append(problems, d.MainProblem)
	return append(problems, d.AdditionalProblems...)
}

// String returns the main problem or the fallback text
func (d Diagnosis) String() string {
	if !d.Found() {
		return NoIssueDetected
	}
	return d.MainProblem
}

// MarshalJSON renders an empty diagnosis as the fallback string
func (d Diagnosis) MarshalJSON() ([]byte, error) {
	if !d.Found() {
		return json.Marshal(NoIssueDetected)
	}

	additional := d.AdditionalProblems
	if additional == nil {
		additional = []string{}
	}

	type diagnosis struct {
		MainProblem        string   `json:"mainProblem"`
		AdditionalProblems []string `json:"additionalProblems"`
	}
	return json.Marshal(diagnosis{MainProblem: d.MainProblem, AdditionalProblems: additional})
}

// Report groups everything produced for one log
type Report struct {
	Fields    Fields    `json:"fields"`
	RawLog    string    `json:"rawLog"`
	Diagnosis Diagnosis `json:"diagnosis"`
}

// NewReport assembles a report without transforming its parts
func NewReport(fields Fields, log string, diagnosis Diagnosis) *Report {
	if fields == nil {
		fields = Fields{}
	}
	return &Report{
		Fields:    fields,
		RawLog:    log,
		Diagnosis: diagnosis,
	}
}
