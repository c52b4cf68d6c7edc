package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/yildizm/mclogsum/internal/emoji"
	"github.com/yildizm/mclogsum/internal/formatter"
	"github.com/yildizm/mclogsum/internal/logger"
)

var (
	watchExtensions []string
	watchDebounce   time.Duration
	watchKeywords   string
	watchRules      []string
)

func newWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <dir|file>",
		Short: "Re-diagnose logs as launchers write them",
		Long: `Monitor a log file, or a directory of logs, and print a new diagnosis
whenever a log is written.

A file target is diagnosed once at start. Bursts of writes to the same file
are coalesced by --debounce. Press Ctrl+C to stop watching.

Examples:
  mclogsum watch latestlog.txt
  mclogsum watch --ext .log,.txt ~/games/PojavLauncher`,
		Args: cobra.ExactArgs(1),
		RunE: runWatch,
	}

	cmd.Flags().StringSliceVar(&watchExtensions, "ext", nil, "file extensions to watch in a directory (default watch.extensions)")
	cmd.Flags().DurationVar(&watchDebounce, "debounce", 0, "quiet period before re-diagnosing (default watch.debounce)")
	cmd.Flags().StringVar(&watchKeywords, "keywords", "", "extra keywords to detect, pipe-delimited")
	cmd.Flags().StringSliceVar(&watchRules, "rules", nil, "additional rule files")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger("watch")

	target, err := validateWatchPath(args[0])
	if err != nil {
		return fmt.Errorf("invalid watch path: %w", err)
	}
	info, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("cannot access %s: %w", target, err)
	}

	pipeline, err := buildPipeline(cfg, watchKeywords, watchRules)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	format := outputFormat(cmd, "", "", cfg)
	fmtr, err := formatter.New(format, formatter.Options{
		Color: useColor(cfg, out),
		Emoji: !emoji.IsEmojiDisabled(),
	})
	if err != nil {
		return err
	}

	extensions := watchExtensions
	if len(extensions) == 0 {
		extensions = cfg.Watch.Extensions
	}
	debounce := watchDebounce
	if debounce <= 0 {
		debounce = cfg.Watch.Debounce
	}

	dir, only := target, ""
	if !info.IsDir() {
		dir, only = filepath.Dir(target), filepath.Base(target)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			log.Warn("failed to close watcher: %v", err)
		}
	}()

	// Directories are watched so editors and launchers that replace the
	// file on rotation keep being followed.
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	d := &diagnoser{cfg: cfg, pipeline: pipeline, log: log}
	handle := func(path string) {
		if err := diagnoseChanged(cmd.Context(), d, fmtr, out, path); err != nil {
			log.WarnWithFields("diagnosis failed", []logger.Field{
				logger.F("path", path),
				logger.Error(err),
			})
		}
	}

	if only != "" {
		handle(target)
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "%s Watching %s (Ctrl+C to stop)\n", emoji.GetEmoji("watch"), target)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runWatchLoop(ctx, watcher.Events, watcher.Errors, watchFilter(only, extensions), debounce, handle, log)
}

// diagnoseChanged renders one log under a change banner
func diagnoseChanged(ctx context.Context, d *diagnoser, f formatter.Formatter, out io.Writer, path string) error {
	doc, err := d.diagnose(ctx, path)
	if err != nil {
		return err
	}
	rendered, err := f.Format(doc)
	if err != nil {
		return err
	}

	banner := fmt.Sprintf("%s %s changed at %s\n", emoji.GetEmoji("file"), path, time.Now().Format("15:04:05"))
	if _, err := io.WriteString(out, banner); err != nil {
		return err
	}
	_, err = out.Write(rendered)
	return err
}

// watchFilter accepts a single base name, or any file with one of the
// extensions. No extensions accepts everything.
func watchFilter(only string, extensions []string) func(string) bool {
	return func(path string) bool {
		base := filepath.Base(path)
		if only != "" {
			return base == only
		}
		if len(extensions) == 0 {
			return true
		}
		ext := strings.ToLower(filepath.Ext(base))
		for _, e := range extensions {
			if !strings.HasPrefix(e, ".") {
				e = "." + e
			}
			if ext == strings.ToLower(e) {
				return true
			}
		}
		return false
	}
}

// runWatchLoop calls handle for every accepted file that was written or
// created, once it has been quiet for debounce. It returns when ctx is done.
func runWatchLoop(
	ctx context.Context,
	events <-chan fsnotify.Event,
	errs <-chan error,
	accept func(string) bool,
	debounce time.Duration,
	handle func(string),
	log *logger.Logger,
) error {
	pending := make(map[string]time.Time)
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Debug("stopping watch")
			return nil

		case event, ok := <-events:
			if !ok {
				return errors.New("watcher events channel closed")
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !accept(event.Name) {
				continue
			}
			if debounce <= 0 {
				handle(event.Name)
				continue
			}
			pending[event.Name] = time.Now().Add(debounce)
			timer.Reset(debounce)

		case err, ok := <-errs:
			if !ok {
				return errors.New("watcher errors channel closed")
			}
			log.Warn("watcher error: %v", err)

		case now := <-timer.C:
			if next := flushDue(pending, now, handle); next > 0 {
				timer.Reset(next)
			}
		}
	}
}

// flushDue handles every path whose quiet period has passed, in name
// order, and returns the wait until the next one is due
func flushDue(pending map[string]time.Time, now time.Time, handle func(string)) time.Duration {
	var due []string
	var next time.Duration
	for path, at := range pending {
		if !at.After(now) {
			due = append(due, path)
			continue
		}
		if wait := at.Sub(now); next == 0 || wait < next {
			next = wait
		}
	}

	sort.Strings(due)
	for _, path := range due {
		delete(pending, path)
		handle(path)
	}
	return next
}

// validateWatchPath cleans a user path and resolves it to an absolute one
func validateWatchPath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", errors.New("empty path")
	}
	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}
	return abs, nil
}
