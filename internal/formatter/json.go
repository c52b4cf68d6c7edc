package formatter

import (
	"encoding/json"

	"github.com/yildizm/mclogsum/internal/analyzer"
	"github.com/yildizm/mclogsum/internal/common"
)

// jsonFormatter formats output as JSON
type jsonFormatter struct{}

// NewJSON creates a new JSON formatter
func NewJSON() Formatter {
	return &jsonFormatter{}
}

// jsonDocument keeps the report keys at the top level so the output is
// a superset of the HTTP analyze response
type jsonDocument struct {
	Source string `json:"source,omitempty"`
	*common.Report
	Findings []analyzer.Finding `json:"findings,omitempty"`
	AI       *jsonSummary       `json:"ai,omitempty"`
}

type jsonSummary struct {
	Model string `json:"model,omitempty"`
	Text  string `json:"text"`
}

func (f *jsonFormatter) Format(doc *Document) ([]byte, error) {
	out := jsonDocument{
		Source:   doc.Source,
		Report:   reportOf(doc),
		Findings: doc.Findings,
	}
	if doc.Summary != "" {
		out.AI = &jsonSummary{Model: doc.Model, Text: doc.Summary}
	}

	return json.MarshalIndent(out, "", "  ")
}
