package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"
	"github.com/yildizm/mclogsum/internal/ai"
	"github.com/yildizm/mclogsum/internal/analyzer"
	"github.com/yildizm/mclogsum/internal/config"
	"github.com/yildizm/mclogsum/internal/emoji"
	"github.com/yildizm/mclogsum/internal/formatter"
	"github.com/yildizm/mclogsum/internal/logger"
	"golang.org/x/sync/errgroup"
)

const stdinSource = "stdin"

var (
	diagnoseFormat   string
	diagnoseKeywords string
	diagnoseRules    []string
	diagnoseJobs     int
	diagnoseAI       bool
	diagnoseOutFile  string
)

func newDiagnoseCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diagnose [file...]",
		Short: "Diagnose Minecraft launcher logs",
		Long: `Extract the launcher and device environment from one or more logs and
explain the most likely cause of a crash.

Reads from stdin when no file is given or the file is "-".

Examples:
  mclogsum diagnose latestlog.txt
  mclogsum diagnose --format json crash-1.log crash-2.log
  mclogsum diagnose --keywords "Sodium|Iris" --ai latestlog.txt
  adb logcat -d | mclogsum diagnose`,
		Aliases: []string{"analyze"},
		RunE:    runDiagnose,
	}

	cmd.Flags().StringVarP(&diagnoseFormat, "format", "f", "", "output format (text, json, markdown)")
	cmd.Flags().StringVar(&diagnoseKeywords, "keywords", "", `extra keywords to detect, pipe-delimited (e.g. "Sodium|Iris")`)
	cmd.Flags().StringSliceVar(&diagnoseRules, "rules", nil, "additional rule files")
	cmd.Flags().IntVarP(&diagnoseJobs, "jobs", "j", 0, "files diagnosed in parallel (default analysis.jobs)")
	cmd.Flags().BoolVar(&diagnoseAI, "ai", false, "append a Gemini summary")
	cmd.Flags().StringVar(&diagnoseOutFile, "output-file", "", "write the result to a file instead of stdout")

	return cmd
}

func runDiagnose(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger("diagnose")

	format := outputFormat(cmd, "format", diagnoseFormat, cfg)
	var out io.Writer = cmd.OutOrStdout()
	if diagnoseOutFile != "" {
		f, err := os.Create(diagnoseOutFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() {
			if err := f.Close(); err != nil {
				log.Warn("failed to close output file: %v", err)
			}
		}()
		out = f
	}

	fmtr, err := formatter.New(format, formatter.Options{
		Color: diagnoseOutFile == "" && useColor(cfg, out),
		Emoji: !emoji.IsEmojiDisabled(),
	})
	if err != nil {
		return err
	}

	pipeline, err := buildPipeline(cfg, diagnoseKeywords, diagnoseRules)
	if err != nil {
		return err
	}

	var summarizer ai.Summarizer
	if diagnoseAI {
		provider, err := newSummarizer(cfg)
		if err != nil {
			return err
		}
		defer func() {
			if err := provider.Close(); err != nil {
				log.Warn("failed to close AI provider: %v", err)
			}
		}()
		summarizer = provider
	}

	if len(args) == 0 {
		args = []string{"-"}
	}
	if err := checkSources(args); err != nil {
		return err
	}

	jobs := diagnoseJobs
	if jobs <= 0 {
		jobs = cfg.Analysis.Jobs
	}

	d := &diagnoser{
		cfg:        cfg,
		pipeline:   pipeline,
		summarizer: summarizer,
		stdin:      cmd.InOrStdin(),
		log:        log,
	}
	docs, err := d.run(cmd.Context(), args, jobs)
	if err != nil {
		return err
	}

	rendered, err := render(fmtr, format, docs)
	if err != nil {
		return err
	}
	if _, err := out.Write(rendered); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// newSummarizer returns the configured AI provider or ai.ErrNotConfigured
func newSummarizer(cfg *config.Config) (ai.Summarizer, error) {
	if !cfg.AI.Enabled() {
		return nil, fmt.Errorf("%w: set ai.api_key or MCLOGSUM_AI_API_KEY", ai.ErrNotConfigured)
	}
	provider, err := newGemini(cfg)
	if err != nil {
		return nil, err
	}
	return provider, nil
}

// checkSources rejects reading stdin more than once
func checkSources(sources []string) error {
	stdin := 0
	for _, s := range sources {
		if s == "-" {
			stdin++
		}
	}
	if stdin > 1 {
		return fmt.Errorf("stdin (-) can only be given once")
	}
	return nil
}

// diagnoser turns inputs into documents
type diagnoser struct {
	cfg        *config.Config
	pipeline   *analyzer.Pipeline
	summarizer ai.Summarizer
	stdin      io.Reader
	log        *logger.Logger
}

// run diagnoses every source with at most jobs in flight. Documents keep
// the order of sources.
func (d *diagnoser) run(ctx context.Context, sources []string, jobs int) ([]*formatter.Document, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	docs := make([]*formatter.Document, len(sources))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, source := range sources {
		g.Go(func() error {
			doc, err := d.diagnose(ctx, source)
			if err != nil {
				return err
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}

func (d *diagnoser) diagnose(ctx context.Context, source string) (*formatter.Document, error) {
	text, name, err := d.read(source)
	if err != nil {
		return nil, err
	}

	report := d.pipeline.Diagnose(text)
	doc := &formatter.Document{
		Source:   name,
		Report:   report,
		Findings: d.pipeline.Engine().Findings(text),
	}

	d.log.DebugWithFields("diagnosed log", []logger.Field{
		logger.F("source", name),
		logger.F("fields", len(report.Fields)),
		logger.Count(len(doc.Findings)),
	})

	if d.summarizer != nil {
		d.summarize(ctx, doc)
	}
	return doc, nil
}

// summarize attaches the AI answer. Failures are logged and leave the
// rule-based result in place.
func (d *diagnoser) summarize(ctx context.Context, doc *formatter.Document) {
	if d.cfg.Analysis.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.cfg.Analysis.Timeout)
		defer cancel()
	}

	resp, err := d.summarizer.Summarize(ctx, &ai.SummaryRequest{
		Log:       doc.Report.RawLog,
		Fields:    doc.Report.Fields,
		Diagnosis: &doc.Report.Diagnosis,
	})
	if err != nil {
		d.log.WarnWithFields("AI summary failed", []logger.Field{
			logger.F("source", doc.Source),
			logger.Error(err),
		})
		return
	}
	doc.Summary = resp.Text
	doc.Model = resp.Model
}

// read loads one source as text, bounded by analysis.max_file_size
func (d *diagnoser) read(source string) (string, string, error) {
	var (
		r    io.Reader
		name string
	)
	if source == "-" {
		r, name = d.stdin, stdinSource
	} else {
		// #nosec G304 - reading user-specified log files is the purpose of this command
		f, err := os.Open(source)
		if err != nil {
			return "", "", fmt.Errorf("failed to open %s: %w", source, err)
		}
		defer func() {
			if err := f.Close(); err != nil {
				d.log.Warn("failed to close %s: %v", source, err)
			}
		}()
		r, name = f, filepath.Base(source)
	}

	limit := d.cfg.Analysis.MaxFileSize
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return "", "", fmt.Errorf("failed to read %s: %w", name, err)
	}
	if int64(len(data)) > limit {
		return "", "", fmt.Errorf("%s exceeds max_file_size (%d bytes)", name, limit)
	}

	text := strings.TrimPrefix(string(data), "\ufeff")
	if !utf8.ValidString(text) {
		return "", "", fmt.Errorf("%s is not a text log", name)
	}
	return text, name, nil
}

// render formats documents in order. Several JSON documents become an array.
func render(f formatter.Formatter, format string, docs []*formatter.Document) ([]byte, error) {
	if len(docs) == 1 {
		return f.Format(docs[0])
	}

	parts := make([][]byte, 0, len(docs))
	for _, doc := range docs {
		b, err := f.Format(doc)
		if err != nil {
			return nil, fmt.Errorf("failed to format %s: %w", doc.Source, err)
		}
		parts = append(parts, b)
	}

	if strings.EqualFold(format, "json") {
		raw := make([]json.RawMessage, len(parts))
		for i, p := range parts {
			raw[i] = json.RawMessage(p)
		}
		b, err := json.MarshalIndent(raw, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(b, '\n'), nil
	}

	var sb strings.Builder
	for i, p := range parts {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.Write(p)
	}
	return []byte(sb.String()), nil
}
