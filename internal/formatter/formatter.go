package formatter

import (
	"fmt"
	"strings"

	"github.com/yildizm/mclogsum/internal/analyzer"
	"github.com/yildizm/mclogsum/internal/common"
)

// Document is everything rendered for one log
type Document struct {
	Source   string             // file name, "stdin" or empty
	Report   *common.Report     // extracted fields and diagnosis
	Findings []analyzer.Finding // matched rules, in catalogue order
	Summary  string             // AI summary, empty when not requested
	Model    string             // model that produced Summary
}

// Formatter defines the interface for output formatting
type Formatter interface {
	Format(doc *Document) ([]byte, error)
}

// Options controls terminal decoration
type Options struct {
	Color bool
	Emoji bool
}

// New returns the formatter for a format name
func New(format string, opts Options) (Formatter, error) {
	switch strings.ToLower(format) {
	case "json":
		return NewJSON(), nil
	case "markdown", "md":
		return NewMarkdown(), nil
	case "text", "":
		return NewTerminal(opts), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}
