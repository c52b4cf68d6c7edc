package ai

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/yildizm/go-promptfmt"

	"github.com/yildizm/mclogsum/internal/common"
)

const systemInstruction = "You are an expert in Minecraft modding and mobile Minecraft launchers " +
	"(PojavLauncher, Amethyst, Zalith, Fold Craft Launcher, HMCL-PE, MojoLauncher). " +
	"Read crash and launch logs and explain the root cause in plain language."

const userRequest = "Analyze the following Minecraft log, give the main error cause and suggestions:\n%s"

// CrashAnalysisPattern builds the prompt sent to the summarizer
type CrashAnalysisPattern struct {
	promptfmt.BasePattern
	Log         string
	Fields      common.Fields
	Diagnosis   *common.Diagnosis
	MaxLogChars int
}

// NewCrashAnalysisPattern creates a crash analysis prompt pattern
func NewCrashAnalysisPattern() *CrashAnalysisPattern {
	return &CrashAnalysisPattern{
		BasePattern: promptfmt.BasePattern{
			Description: "Explains a Minecraft launcher crash log",
			Tags:        []string{"minecraft", "crash-log", "mobile-launcher"},
		},
	}
}

func (p *CrashAnalysisPattern) WithLog(log string) *CrashAnalysisPattern {
	p.Log = log
	return p
}

func (p *CrashAnalysisPattern) WithFields(fields common.Fields) *CrashAnalysisPattern {
	p.Fields = fields
	return p
}

func (p *CrashAnalysisPattern) WithDiagnosis(d *common.Diagnosis) *CrashAnalysisPattern {
	p.Diagnosis = d
	return p
}

// WithMaxLogChars keeps only the tail of longer logs; 0 sends the whole log
func (p *CrashAnalysisPattern) WithMaxLogChars(n int) *CrashAnalysisPattern {
	p.MaxLogChars = n
	return p
}

func (p *CrashAnalysisPattern) Build() *promptfmt.Prompt {
	pb := promptfmt.New().
		System(systemInstruction).
		User(userRequest, tailText(p.Log, p.MaxLogChars))

	if len(p.Fields) > 0 {
		p.addEnvironmentContext(pb)
	}
	if p.Diagnosis != nil && p.Diagnosis.Found() {
		p.addDiagnosisContext(pb)
	}

	return pb.Build()
}

// BuildPrompt is a shortcut for a request's crash analysis prompt
func BuildPrompt(req *SummaryRequest, maxLogChars int) *promptfmt.Prompt {
	return NewCrashAnalysisPattern().
		WithLog(req.Log).
		WithFields(req.Fields).
		WithDiagnosis(req.Diagnosis).
		WithMaxLogChars(maxLogChars).
		Build()
}

func (p *CrashAnalysisPattern) addEnvironmentContext(pb *promptfmt.PromptBuilder) {
	var b strings.Builder
	b.WriteString("Environment:\n")
	for _, key := range p.Fields.Ordered() {
		b.WriteString(fmt.Sprintf("- %s: %s\n", common.FieldLabel(key), p.Fields[key]))
	}
	pb.AddContext("environment", b.String())
}

func (p *CrashAnalysisPattern) addDiagnosisContext(pb *promptfmt.PromptBuilder) {
	var b strings.Builder
	b.WriteString("Rule-based findings (most likely first):\n")
	for _, problem := range p.Diagnosis.Problems() {
		b.WriteString(fmt.Sprintf("- %s\n", problem))
	}
	pb.AddContext("rule_findings", b.String())
}

// tailText keeps the last limit characters, where crash causes usually are
func tailText(text string, limit int) string {
	if limit <= 0 || len(text) <= limit {
		return text
	}
	cut := len(text) - limit
	// Avoid splitting a multi-byte rune
	for cut < len(text) && !utf8.RuneStart(text[cut]) {
		cut++
	}
	return "...\n" + text[cut:]
}
