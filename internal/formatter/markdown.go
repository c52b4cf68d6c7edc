package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/yildizm/mclogsum/internal/common"
)

// markdownFormatter formats output as Markdown
type markdownFormatter struct{}

// NewMarkdown creates a new Markdown formatter
func NewMarkdown() Formatter {
	return &markdownFormatter{}
}

func (f *markdownFormatter) Format(doc *Document) ([]byte, error) {
	var b strings.Builder
	report := reportOf(doc)

	b.WriteString("# Minecraft Log Diagnosis\n\n")
	if doc.Source != "" {
		fmt.Fprintf(&b, "Source: `%s`\n\n", doc.Source)
	}
	fmt.Fprintf(&b, "Generated: %s\n\n", time.Now().Format("2006-01-02 15:04:05"))

	f.writeTableOfContents(&b, doc)
	f.writeEnvironment(&b, report)
	f.writeDiagnosis(&b, report.Diagnosis)

	if len(doc.Findings) > 0 {
		f.writeMatchedRules(&b, doc)
	}

	if doc.Summary != "" {
		f.writeAISummary(&b, doc)
	}

	b.WriteString("---\n")
	b.WriteString("*Report generated by mclogsum*\n")

	return []byte(b.String()), nil
}

func (f *markdownFormatter) writeTableOfContents(b *strings.Builder, doc *Document) {
	b.WriteString("## Table of Contents\n")
	b.WriteString("- [Environment](#environment)\n")
	b.WriteString("- [Diagnosis](#diagnosis)\n")

	if len(doc.Findings) > 0 {
		b.WriteString("- [Matched Rules](#matched-rules)\n")
	}

	if doc.Summary != "" {
		b.WriteString("- [AI Analysis](#ai-analysis)\n")
	}

	b.WriteString("\n")
}

// writeEnvironment writes the extracted fields as a table
func (f *markdownFormatter) writeEnvironment(b *strings.Builder, report *common.Report) {
	b.WriteString("## Environment\n\n")

	keys := report.Fields.Ordered()
	if len(keys) == 0 {
		b.WriteString("No environment fields were found in the log.\n\n")
		return
	}

	b.WriteString("| Field | Value |\n")
	b.WriteString("|-------|-------|\n")
	for _, k := range keys {
		fmt.Fprintf(b, "| %s | %s |\n", common.FieldLabel(k), escapeCell(report.Fields[k]))
	}
	fmt.Fprintf(b, "| Log Lines | %s |\n\n", formatNumber(countLines(report.RawLog)))
}

func (f *markdownFormatter) writeDiagnosis(b *strings.Builder, diagnosis common.Diagnosis) {
	b.WriteString("## Diagnosis\n\n")

	if !diagnosis.Found() {
		fmt.Fprintf(b, "> %s\n\n", common.NoIssueDetected)
		return
	}

	fmt.Fprintf(b, "**Main problem**: %s\n\n", indent(diagnosis.MainProblem, "  "))

	if len(diagnosis.AdditionalProblems) > 0 {
		b.WriteString("### Additional problems\n\n")
		for i, p := range diagnosis.AdditionalProblems {
			fmt.Fprintf(b, "%d. %s\n", i+1, indent(p, "   "))
		}
		b.WriteString("\n")
	}
}

func (f *markdownFormatter) writeMatchedRules(b *strings.Builder, doc *Document) {
	b.WriteString("## Matched Rules\n\n")
	for _, id := range ruleIDs(doc.Findings) {
		fmt.Fprintf(b, "- `%s`\n", id)
	}
	b.WriteString("\n")
}

func (f *markdownFormatter) writeAISummary(b *strings.Builder, doc *Document) {
	b.WriteString("## AI Analysis\n\n")
	if doc.Model != "" {
		fmt.Fprintf(b, "*Model: %s*\n\n", doc.Model)
	}
	b.WriteString(strings.TrimSpace(doc.Summary) + "\n\n")
}

// escapeCell keeps table cells on one row
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
