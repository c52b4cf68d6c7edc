package formatter

import (
	"fmt"
	"strings"

	"github.com/yildizm/mclogsum/internal/analyzer"
	"github.com/yildizm/mclogsum/internal/common"
)

// reportOf never returns nil
func reportOf(doc *Document) *common.Report {
	if doc.Report == nil {
		return common.NewReport(nil, "", common.Diagnosis{})
	}
	return doc.Report
}

// formatNumber formats numbers with commas for readability
func formatNumber(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	return addCommas(fmt.Sprintf("%d", n))
}

// addCommas adds commas to number strings
func addCommas(s string) string {
	if len(s) <= 3 {
		return s
	}
	return addCommas(s[:len(s)-3]) + "," + s[len(s)-3:]
}

// countLines counts lines, treating a trailing newline as a terminator
func countLines(log string) int {
	if log == "" {
		return 0
	}
	n := strings.Count(log, "\n")
	if !strings.HasSuffix(log, "\n") {
		n++
	}
	return n
}

// formatSize renders a byte count with a binary unit
func formatSize(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

// ruleIDs lists the ids of the matched rules
func ruleIDs(findings []analyzer.Finding) []string {
	ids := make([]string, 0, len(findings))
	for _, f := range findings {
		ids = append(ids, f.RuleID)
	}
	return ids
}

// indent prefixes every line after the first
func indent(text, prefix string) string {
	return strings.ReplaceAll(strings.TrimRight(text, "\n"), "\n", "\n"+prefix)
}
