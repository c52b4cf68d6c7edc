package extractor

import (
	"strings"

	"github.com/yildizm/mclogsum/internal/common"
)

// Options configures an Extractor. Zero values select the built-in tables.
type Options struct {
	// CustomKeywords is a pipe-delimited list of literal substrings
	CustomKeywords string
	Signatures     []Signature
	Table          FieldTable
}

// Extractor pulls environment fields out of a launcher log. It holds no
// mutable state and is safe for concurrent use.
type Extractor struct {
	signatures []Signature
	table      FieldTable
	keywords   []string
}

// New creates an extractor
func New(opts Options) *Extractor {
	e := &Extractor{
		signatures: opts.Signatures,
		table:      opts.Table,
		keywords:   ParseKeywords(opts.CustomKeywords),
	}
	if e.signatures == nil {
		e.signatures = defaultSignatures
	}
	if e.table == nil {
		e.table = defaultTable
	}
	return e
}

// ParseKeywords splits a pipe-delimited keyword list, dropping empty entries
func ParseKeywords(list string) []string {
	var out []string
	for _, kw := range strings.Split(list, "|") {
		if kw = strings.TrimSpace(kw); kw != "" {
			out = append(out, kw)
		}
	}
	return out
}

// CustomKeywords returns the configured custom keywords
func (e *Extractor) CustomKeywords() []string {
	out := make([]string, len(e.keywords))
	copy(out, e.keywords)
	return out
}

// Identify returns the first launcher whose signature matches the log
func (e *Extractor) Identify(log string) (string, bool) {
	for _, sig := range e.signatures {
		if sig.Pattern.MatchString(log) {
			return sig.Launcher, true
		}
	}
	return "", false
}

// Extract returns every field found in the log. Categories without a
// non-empty match are omitted.
func (e *Extractor) Extract(log string) common.Fields {
	fields := make(common.Fields)

	launcher, identified := e.Identify(log)
	if identified {
		fields[common.FieldLauncher] = launcher
	}

	for _, cat := range e.table {
		if cat.Name == common.FieldLauncher || cat.Name == common.FieldKeyword {
			continue
		}
		if value, ok := e.extractCategory(log, cat, launcher); ok {
			fields[cat.Name] = value
		}
	}

	set := newKeywordSet()
	if m := failedToLoad.FindStringSubmatch(log); m != nil {
		set.add(strings.TrimSpace(m[1]))
	}
	for _, kw := range e.keywords {
		if strings.Contains(log, kw) {
			set.add(kw)
		}
	}
	if !set.empty() {
		fields[common.FieldKeyword] = set.join(", ")
	}

	return fields
}

func (e *Extractor) extractCategory(log string, cat Category, launcher string) (string, bool) {
	for _, c := range cat.Candidates {
		if c.Launcher != "" && launcher != "" && c.Launcher != launcher {
			continue
		}
		m := c.Pattern.FindStringSubmatch(log)
		if len(m) < 2 {
			continue
		}
		// An empty capture is no extraction; the next candidate gets a turn
		if value := strings.TrimSpace(m[1]); value != "" {
			return value, true
		}
	}
	return "", false
}

// keywordSet keeps first-insertion order and collapses duplicates
type keywordSet struct {
	seen  map[string]bool
	items []string
}

func newKeywordSet() *keywordSet {
	return &keywordSet{seen: make(map[string]bool)}
}

func (s *keywordSet) add(kw string) {
	if kw == "" || s.seen[kw] {
		return
	}
	s.seen[kw] = true
	s.items = append(s.items, kw)
}

func (s *keywordSet) empty() bool {
	return len(s.items) == 0
}

func (s *keywordSet) join(sep string) string {
	return strings.Join(s.items, sep)
}
