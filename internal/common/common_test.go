package common

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDiagnosisJSONFallback(t *testing.T) {
	data, err := json.Marshal(Diagnosis{})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		t.Fatalf("empty diagnosis should marshal to a string, got %s", data)
	}
	if s != NoIssueDetected {
		t.Errorf("Expected fallback text, got %q", s)
	}
}

func TestDiagnosisJSONFound(t *testing.T) {
	data, err := json.Marshal(Diagnosis{MainProblem: "out of memory"})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	got := string(data)
	if !strings.Contains(got, `"mainProblem":"out of memory"`) {
		t.Errorf("missing main problem in %s", got)
	}
	if !strings.Contains(got, `"additionalProblems":[]`) {
		t.Errorf("additional problems should be an empty array, got %s", got)
	}
}

func TestNewReportPassesPartsThrough(t *testing.T) {
	fields := Fields{FieldLauncher: "Zalith"}
	diag := Diagnosis{MainProblem: "a", AdditionalProblems: []string{"b"}}

	report := NewReport(fields, "raw text", diag)

	if report.RawLog != "raw text" {
		t.Errorf("raw log changed: %q", report.RawLog)
	}
	if report.Fields[FieldLauncher] != "Zalith" {
		t.Errorf("fields changed: %v", report.Fields)
	}
	if got := report.Diagnosis.Problems(); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("unexpected problems %v", got)
	}

	data, err := json.Marshal(report)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	for _, key := range []string{`"fields"`, `"rawLog"`, `"diagnosis"`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("report JSON missing %s: %s", key, data)
		}
	}
}

func TestNewReportNilFields(t *testing.T) {
	report := NewReport(nil, "", Diagnosis{})
	data, err := json.Marshal(report)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if !strings.Contains(string(data), `"fields":{}`) {
		t.Errorf("nil fields should marshal as an empty object, got %s", data)
	}
}

func TestFieldsOrderedAndKeywords(t *testing.T) {
	f := Fields{
		FieldKeyword:          "Sodium, Iris",
		FieldMinecraftVersion: "1.20.1",
		FieldLauncher:         "Zalith",
		"zz_custom":           "x",
	}

	ordered := f.Ordered()
	want := []string{FieldLauncher, FieldMinecraftVersion, FieldKeyword, "zz_custom"}
	if len(ordered) != len(want) {
		t.Fatalf("Expected %v, got %v", want, ordered)
	}
	for i := range want {
		if ordered[i] != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], ordered[i])
		}
	}

	kws := f.Keywords()
	if len(kws) != 2 || kws[0] != "Sodium" || kws[1] != "Iris" {
		t.Errorf("unexpected keywords %v", kws)
	}
}

func TestLoadRulesFromFile(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
		wantIDs []string
		wantErr string
	}{
		{
			name: "single rule",
			content: `id: sodium
keywords: ["sodium"]
reason: Sodium crashed.
`,
			wantIDs: []string{"sodium"},
		},
		{
			name: "list keeps order",
			content: `- id: second
  keywords: ["b"]
  reason: B
- id: first
  keywords: ["a", "c"]
  logic: all_of
  reason: A
`,
			wantIDs: []string{"second", "first"},
		},
		{
			name: "invalid logic",
			content: `- id: bad
  keywords: ["x"]
  logic: any
  reason: X
`,
			wantErr: "invalid logic",
		},
		{
			name: "missing reason",
			content: `- id: bad
  keywords: ["x"]
`,
			wantErr: "reason cannot be empty",
		},
		{
			name: "duplicate id",
			content: `- id: a
  keywords: ["x"]
  reason: X
- id: a
  keywords: ["y"]
  reason: Y
`,
			wantErr: "duplicate rule id",
		},
		{
			name: "empty list entry",
			content: `- id: a
  keywords: [x]
  reason: r
-
`,
			wantErr: "rule 1 is empty",
		},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, "rules"+string(rune('a'+i))+".yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0o600); err != nil {
				t.Fatalf("write failed: %v", err)
			}

			rules, err := LoadRulesFromFile(path)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("Expected error containing %q, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(rules) != len(tt.wantIDs) {
				t.Fatalf("Expected %d rules, got %d", len(tt.wantIDs), len(rules))
			}
			for j, id := range tt.wantIDs {
				if rules[j].ID != id {
					t.Errorf("rule %d: expected %s, got %s", j, id, rules[j].ID)
				}
				if rules[j].Source != path {
					t.Errorf("rule %d: source not recorded", j)
				}
			}
		})
	}
}

func TestLoadRulesRejectsExtension(t *testing.T) {
	if _, err := LoadRulesFromFile("rules.json"); err == nil {
		t.Error("Expected error for non-YAML extension")
	}
}
