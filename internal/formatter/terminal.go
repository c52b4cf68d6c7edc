package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/yildizm/go-termfmt"
	"github.com/yildizm/mclogsum/internal/common"
	"github.com/yildizm/mclogsum/internal/emoji"
)

var (
	errorColor = lipgloss.AdaptiveColor{Light: "#DC2626", Dark: "#EF4444"}
	okColor    = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#10B981"}
	mutedColor = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}
)

// terminalFormatter formats output as plain text for terminal display using go-termfmt
type terminalFormatter struct {
	opts *termfmt.TerminalOptions

	problemStyle lipgloss.Style
	okStyle      lipgloss.Style
	mutedStyle   lipgloss.Style
}

// NewTerminal creates a new terminal formatter
func NewTerminal(o Options) Formatter {
	opts := termfmt.DefaultOptions()
	opts.Color = o.Color
	opts.Emoji = o.Emoji
	return &terminalFormatter{
		opts:         opts,
		problemStyle: lipgloss.NewStyle().Bold(true).Foreground(errorColor),
		okStyle:      lipgloss.NewStyle().Foreground(okColor),
		mutedStyle:   lipgloss.NewStyle().Foreground(mutedColor),
	}
}

func (f *terminalFormatter) Format(doc *Document) ([]byte, error) {
	var b strings.Builder
	report := reportOf(doc)

	f.writeHeader(&b, doc.Source)
	f.writeEnvironment(&b, report.Fields)
	f.writeStatistics(&b, doc, report)
	f.writeDiagnosis(&b, report.Diagnosis)

	if len(doc.Findings) > 0 {
		f.writeMatchedRules(&b, doc)
	}

	if doc.Summary != "" {
		f.writeAIAnalysis(&b, doc)
	}

	return []byte(b.String()), nil
}

// writeHeader writes a header with box drawing
func (f *terminalFormatter) writeHeader(b *strings.Builder, source string) {
	header := "Minecraft Log Diagnosis"
	headerLen := len(header)

	b.WriteString("╔" + strings.Repeat("═", headerLen+2) + "╗\n")
	b.WriteString("║ " + header + " ║\n")
	b.WriteString("╚" + strings.Repeat("═", headerLen+2) + "╝\n")
	if source != "" {
		b.WriteString(f.style(f.mutedStyle, f.symbol("file")+" "+source) + "\n")
	}
	b.WriteString("\n")
}

// writeEnvironment writes the extracted fields as a tree
func (f *terminalFormatter) writeEnvironment(b *strings.Builder, fields common.Fields) {
	b.WriteString(f.symbol("launcher") + " Environment\n")

	keys := fields.Ordered()
	if len(keys) == 0 {
		b.WriteString("└─ " + f.style(f.mutedStyle, "no fields found") + "\n\n")
		return
	}

	items := make([]termfmt.TreeItem, 0, len(keys))
	for i, k := range keys {
		items = append(items, termfmt.TreeItem{
			Label: common.FieldLabel(k),
			Value: fields[k],
			Last:  i == len(keys)-1,
		})
	}

	b.WriteString(termfmt.TreeViewWithOptions(items, f.opts) + "\n\n")
}

// writeStatistics writes log size and match counts
func (f *terminalFormatter) writeStatistics(b *strings.Builder, doc *Document, report *common.Report) {
	symbol := termfmt.GetEmoji("statistics", f.opts)
	b.WriteString(symbol + " Statistics\n")

	items := []termfmt.TreeItem{
		{Label: "Lines", Value: formatNumber(countLines(report.RawLog))},
		{Label: "Size", Value: formatSize(len(report.RawLog))},
		{Label: "Problems", Value: fmt.Sprintf("%d", len(report.Diagnosis.Problems())), Last: true},
	}
	if len(doc.Findings) > 0 {
		items[2].Last = false
		items = append(items, termfmt.TreeItem{Label: "Rules Matched", Value: fmt.Sprintf("%d", len(doc.Findings)), Last: true})
	}

	b.WriteString(termfmt.TreeViewWithOptions(items, f.opts) + "\n\n")
}

// writeDiagnosis writes the main problem and the additional ones. Reasons
// may span several lines so they are indented by hand.
func (f *terminalFormatter) writeDiagnosis(b *strings.Builder, diagnosis common.Diagnosis) {
	b.WriteString(f.symbol("diagnosis") + " Diagnosis\n")

	if !diagnosis.Found() {
		b.WriteString("└─ " + f.style(f.okStyle, common.NoIssueDetected) + "\n\n")
		return
	}

	connector := "└─ "
	if len(diagnosis.AdditionalProblems) > 0 {
		connector = "├─ "
	}
	b.WriteString(connector + f.style(f.problemStyle, indent(diagnosis.MainProblem, "│  ")) + "\n")

	for i, p := range diagnosis.AdditionalProblems {
		if i == len(diagnosis.AdditionalProblems)-1 {
			b.WriteString("└─ " + indent(p, "   ") + "\n")
		} else {
			b.WriteString("├─ " + indent(p, "│  ") + "\n")
		}
	}
	b.WriteString("\n")
}

func (f *terminalFormatter) writeMatchedRules(b *strings.Builder, doc *Document) {
	b.WriteString(f.symbol("rule") + " Matched Rules\n")
	b.WriteString("└─ " + f.style(f.mutedStyle, strings.Join(ruleIDs(doc.Findings), ", ")) + "\n\n")
}

// writeAIAnalysis writes the AI summary section
func (f *terminalFormatter) writeAIAnalysis(b *strings.Builder, doc *Document) {
	aiSymbol := termfmt.GetEmoji("ai", f.opts)
	if aiSymbol == "" {
		aiSymbol = f.symbol("brain")
	}
	title := "AI Analysis"
	if doc.Model != "" {
		title += " (" + doc.Model + ")"
	}
	fmt.Fprintf(b, "%s %s\n", aiSymbol, title)
	b.WriteString(strings.Repeat("─", 50) + "\n")
	b.WriteString(strings.TrimSpace(doc.Summary) + "\n\n")
}

func (f *terminalFormatter) symbol(key string) string {
	return emoji.Lookup(key, !f.opts.Emoji)
}

func (f *terminalFormatter) style(s lipgloss.Style, text string) string {
	if !f.opts.Color {
		return text
	}
	return s.Render(text)
}
