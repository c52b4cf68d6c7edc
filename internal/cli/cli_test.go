package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yildizm/mclogsum/internal/ai"
	"github.com/yildizm/mclogsum/internal/analyzer"
	"github.com/yildizm/mclogsum/internal/common"
	"github.com/yildizm/mclogsum/internal/config"
	"github.com/yildizm/mclogsum/internal/extractor"
)

const oomLog = `[Pre-Init] Version: 1.4.0.1
[Pre-Init] Device: Xiaomi 23049RAD8C
com.movtery.zalithlauncher started
Launching Minecraft 1.20.1-fabric
java.lang.OutOfMemoryError: Java heap space
`

type diagnoseOutput struct {
	Source    string             `json:"source"`
	Fields    map[string]string  `json:"fields"`
	Diagnosis json.RawMessage    `json:"diagnosis"`
	Findings  []analyzer.Finding `json:"findings"`
}

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
	return path
}

// execute runs the root command against an isolated config file
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("MCLOGSUM_AI_API_KEY", "")

	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	if !hasFlag(args, "--config") {
		writeTestFile(t, filepath.Dir(cfgPath), "config.yaml", "version: \"1.0\"\n")
		args = append([]string{"--config", cfgPath}, args...)
	}

	cmd := NewRootCommand("1.2.3", "abc1234", "2026-01-01")
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--no-color", "--no-emoji"}, args...))

	err := cmd.Execute()
	return out.String(), err
}

func hasFlag(args []string, flag string) bool {
	for _, a := range args {
		if a == flag {
			return true
		}
	}
	return false
}

func mainProblem(t *testing.T, raw json.RawMessage) string {
	t.Helper()
	var d struct {
		MainProblem string `json:"mainProblem"`
	}
	if err := json.Unmarshal(raw, &d); err != nil {
		t.Fatalf("diagnosis is not an object: %s", raw)
	}
	return d.MainProblem
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "", "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(out, "mclogsum 1.2.3 (abc1234) built on 2026-01-01") {
		t.Errorf("unexpected version output %q", out)
	}
}

func TestDiagnoseFileJSON(t *testing.T) {
	path := writeTestFile(t, t.TempDir(), "latestlog.txt", oomLog)

	out, err := execute(t, "", "diagnose", "--format", "json", path)
	if err != nil {
		t.Fatalf("diagnose failed: %v", err)
	}

	var got diagnoseOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}

	if got.Source != "latestlog.txt" {
		t.Errorf("Expected source latestlog.txt, got %q", got.Source)
	}
	if got.Fields[common.FieldLauncher] != extractor.LauncherZalith {
		t.Errorf("Expected Zalith launcher, got %q", got.Fields[common.FieldLauncher])
	}
	if got.Fields[common.FieldMinecraftVersion] != "1.20.1" {
		t.Errorf("Expected Minecraft 1.20.1, got %q", got.Fields[common.FieldMinecraftVersion])
	}
	if p := mainProblem(t, got.Diagnosis); !strings.Contains(p, "ran out of memory") {
		t.Errorf("Expected out-of-memory diagnosis, got %q", p)
	}
	if len(got.Findings) != 1 || got.Findings[0].RuleID != "out-of-memory" {
		t.Errorf("unexpected findings %+v", got.Findings)
	}
}

func TestDiagnoseFallbackIsString(t *testing.T) {
	out, err := execute(t, "Everything is fine\n", "diagnose", "-f", "json")
	if err != nil {
		t.Fatalf("diagnose failed: %v", err)
	}

	var got diagnoseOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	var text string
	if err := json.Unmarshal(got.Diagnosis, &text); err != nil || text != common.NoIssueDetected {
		t.Errorf("Expected fallback string, got %s", got.Diagnosis)
	}
	if got.Source != stdinSource {
		t.Errorf("Expected stdin source, got %q", got.Source)
	}
}

func TestDiagnoseTextOutput(t *testing.T) {
	out, err := execute(t, oomLog, "diagnose", "--format", "text", "-")
	if err != nil {
		t.Fatalf("diagnose failed: %v", err)
	}
	for _, want := range []string{"Minecraft Log Diagnosis", "ran out of memory", "Xiaomi 23049RAD8C"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output:\n%s", want, out)
		}
	}
}

func TestDiagnoseMultipleFilesKeepOrder(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for _, name := range []string{"c.log", "a.log", "b.log"} {
		paths = append(paths, writeTestFile(t, dir, name, "Open J9 is not supported\n"))
	}

	args := append([]string{"diagnose", "--format", "json", "--jobs", "2"}, paths...)
	out, err := execute(t, "", args...)
	if err != nil {
		t.Fatalf("diagnose failed: %v", err)
	}

	var got []diagnoseOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output is not a JSON array: %v\n%s", err, out)
	}
	if len(got) != 3 {
		t.Fatalf("Expected 3 documents, got %d", len(got))
	}
	for i, want := range []string{"c.log", "a.log", "b.log"} {
		if got[i].Source != want {
			t.Errorf("document %d: expected %s, got %s", i, want, got[i].Source)
		}
	}
}

func TestDiagnoseKeywordsAndRules(t *testing.T) {
	dir := t.TempDir()
	rules := writeTestFile(t, dir, "rules.yaml", `- id: sodium-crash
  keywords: ["me.jellysquid.mods.sodium"]
  reason: "Sodium crashed."
`)
	path := writeTestFile(t, dir, "latestlog.txt", "Sodium loaded\nat me.jellysquid.mods.sodium.Foo\n")

	out, err := execute(t, "", "diagnose", "-f", "json", "--keywords", "Sodium|Iris", "--rules", rules, path)
	if err != nil {
		t.Fatalf("diagnose failed: %v", err)
	}

	var got diagnoseOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if got.Fields[common.FieldKeyword] != "Sodium" {
		t.Errorf("Expected Sodium keyword, got %q", got.Fields[common.FieldKeyword])
	}
	if p := mainProblem(t, got.Diagnosis); p != "Sodium crashed." {
		t.Errorf("Expected custom rule reason, got %q", p)
	}
}

func TestDiagnoseOutputFile(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "latestlog.txt", oomLog)
	dest := filepath.Join(dir, "report.md")

	out, err := execute(t, "", "diagnose", "--format", "markdown", "--output-file", dest, path)
	if err != nil {
		t.Fatalf("diagnose failed: %v", err)
	}
	if out != "" {
		t.Errorf("stdout should be empty, got %q", out)
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("report not written: %v", err)
	}
	if !strings.HasPrefix(string(data), "# Minecraft Log Diagnosis") {
		t.Errorf("unexpected report:\n%s", data)
	}
}

func TestDiagnoseRejectsLargeAndBinaryInput(t *testing.T) {
	dir := t.TempDir()
	cfg := writeTestFile(t, dir, "small.yaml", "analysis:\n  max_file_size: 16\n")
	large := writeTestFile(t, dir, "large.log", strings.Repeat("x", 17))
	binary := writeTestFile(t, dir, "binary.log", "\xff\xfe\x00")

	if _, err := execute(t, "", "--config", cfg, "diagnose", large); err == nil || !strings.Contains(err.Error(), "max_file_size") {
		t.Errorf("Expected size error, got %v", err)
	}
	if _, err := execute(t, "", "--config", cfg, "diagnose", binary); err == nil || !strings.Contains(err.Error(), "not a text log") {
		t.Errorf("Expected text error, got %v", err)
	}
}

func TestDiagnoseStdinOnlyOnce(t *testing.T) {
	_, err := execute(t, oomLog, "diagnose", "-f", "json", "-", "-")
	if err == nil || !strings.Contains(err.Error(), "only be given once") {
		t.Errorf("Expected error for repeated stdin, got %v", err)
	}
}

func TestDiagnoseAIRequiresKey(t *testing.T) {
	_, err := execute(t, oomLog, "diagnose", "--ai")
	if !errors.Is(err, ai.ErrNotConfigured) {
		t.Errorf("Expected ErrNotConfigured, got %v", err)
	}
}

func TestRulesListJSON(t *testing.T) {
	out, err := execute(t, "", "rules", "list", "--format", "json")
	if err != nil {
		t.Fatalf("rules list failed: %v", err)
	}

	var rules []ruleInfo
	if err := json.Unmarshal([]byte(out), &rules); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if len(rules) != len(analyzer.DefaultRules()) {
		t.Fatalf("Expected %d rules, got %d", len(analyzer.DefaultRules()), len(rules))
	}
	if rules[0].ID != "fabric-solution" || rules[0].Kind != "dynamic" {
		t.Errorf("unexpected first rule %+v", rules[0])
	}
}

func TestRulesListText(t *testing.T) {
	out, err := execute(t, "", "rules", "list")
	if err != nil {
		t.Fatalf("rules list failed: %v", err)
	}
	for _, want := range []string{"out-of-memory", "all_of", "java.lang.OutOfMemoryError"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in:\n%s", want, out)
		}
	}
}

func TestRulesValidate(t *testing.T) {
	dir := t.TempDir()
	good := writeTestFile(t, dir, "good.yaml", "id: extra\nkeywords: [foo]\nlogic: all_of\nreason: Foo.\n")
	clash := writeTestFile(t, dir, "clash.yaml", "id: out-of-memory\nkeywords: [foo]\nreason: Foo.\n")
	badLogic := writeTestFile(t, dir, "bad.yaml", "id: extra\nkeywords: [foo]\nlogic: some_of\nreason: Foo.\n")

	out, err := execute(t, "", "rules", "validate", good)
	if err != nil {
		t.Fatalf("valid file rejected: %v", err)
	}
	if !strings.Contains(out, "1 rule(s) valid") {
		t.Errorf("unexpected output %q", out)
	}

	if _, err := execute(t, "", "rules", "validate", clash); err == nil {
		t.Error("Expected error for a rule id already in the catalogue")
	}
	if _, err := execute(t, "", "rules", "validate", badLogic); err == nil {
		t.Error("Expected error for invalid logic")
	}
}

func TestConfigInitThenValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "mclogsum.yaml")

	if _, err := execute(t, "", "config", "init", "--path", path); err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	if _, err := execute(t, "", "config", "init", "--path", path); err == nil {
		t.Error("Expected error when the file exists without --force")
	}

	out, err := execute(t, "", "--config", path, "config", "validate")
	if err != nil {
		t.Fatalf("generated config should validate: %v", err)
	}
	if !strings.Contains(out, "Configuration is valid") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestConfigShowMasksKey(t *testing.T) {
	cfg := writeTestFile(t, t.TempDir(), "key.yaml", "ai:\n  api_key: secret-value\n")

	out, err := execute(t, "", "--config", cfg, "config", "show", "--format", "json")
	if err != nil {
		t.Fatalf("config show failed: %v", err)
	}
	if strings.Contains(out, "secret-value") {
		t.Error("API key should be masked")
	}
}

func TestOutputFormatPriority(t *testing.T) {
	cmd := NewRootCommand("dev", "none", "unknown")
	diagnose, _, err := cmd.Find([]string{"diagnose"})
	if err != nil {
		t.Fatalf("diagnose command missing: %v", err)
	}
	conf := config.DefaultConfig()
	if got := outputFormat(diagnose, "format", "", conf); got != "text" {
		t.Errorf("Expected config default, got %s", got)
	}

	outputFmt = "markdown"
	t.Cleanup(func() { outputFmt = "" })
	if got := outputFormat(diagnose, "format", "", conf); got != "markdown" {
		t.Errorf("Expected global flag, got %s", got)
	}

	if err := diagnose.Flags().Set("format", "json"); err != nil {
		t.Fatal(err)
	}
	if got := outputFormat(diagnose, "format", "json", conf); got != "json" {
		t.Errorf("Expected command flag, got %s", got)
	}
}
