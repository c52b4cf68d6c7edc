package cli

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/yildizm/mclogsum/internal/config"
	"github.com/yildizm/mclogsum/internal/emoji"
	"github.com/yildizm/mclogsum/internal/logger"
)

var (
	cfgFile   string
	verbose   bool
	noColor   bool
	noEmoji   bool
	outputFmt string

	// appConfig is loaded on first use so config subcommands can report
	// load errors themselves
	appConfig *config.Config
)

// NewRootCommand creates the root command
func NewRootCommand(version, commit, date string) *cobra.Command {
	appConfig = nil

	rootCmd := &cobra.Command{
		Use:   "mclogsum",
		Short: "Minecraft launcher crash log analyzer",
		Long: `mclogsum reads crash and launch logs from mobile Minecraft launchers
(Amethyst, PojavLauncher, Zalith, Fold Craft Launcher, HMCL-PE, MojoLauncher),
extracts the device and game environment, and explains the most likely cause
of a crash using a catalogue of known problems.

Optionally the log can be sent to Gemini for a free-form explanation.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Auto-disable emojis on Windows if not explicitly set
			if runtime.GOOS == "windows" && !cmd.Flag("no-emoji").Changed {
				noEmoji = true
			}
			emoji.SetEmojiDisabled(noEmoji)
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVar(&noEmoji, "no-emoji", false, "disable emoji output (useful for Windows terminals)")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "", "output format (text, json, markdown); defaults to output.default_format")

	rootCmd.AddCommand(newDiagnoseCommand())
	rootCmd.AddCommand(newWatchCommand())
	rootCmd.AddCommand(newServeCommand(version))
	rootCmd.AddCommand(newRulesCommand())
	rootCmd.AddCommand(newConfigCommand())
	rootCmd.AddCommand(newVersionCommand(version, commit, date))

	return rootCmd
}

func newVersionCommand(version, commit, date string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display version number, build commit, date, and runtime information",
		Run: func(cmd *cobra.Command, args []string) {
			displayVersion := version
			displayCommit := commit
			displayDate := date

			if version == "dev" || version == "" {
				displayVersion = "development"
			}
			if commit == "none" || commit == "" {
				displayCommit = "local-build"
			}
			if date == "unknown" || date == "" {
				displayDate = "local-build"
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "mclogsum %s (%s) built on %s\n", displayVersion, displayCommit, displayDate)
			fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
			fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}

// loadConfig loads the configuration once and installs the logger it
// describes
func loadConfig() (*config.Config, error) {
	if appConfig != nil {
		return appConfig, nil
	}

	cfg, err := config.NewLoader().LoadConfig(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if cfg.Output.Verbose {
		verbose = true
	}

	logger.SetBase(logger.NewZap(logger.Options{
		Format: cfg.Output.LogFormat,
		Writer: os.Stderr,
		Color:  useColor(cfg, os.Stderr),
	}))

	appConfig = cfg
	return cfg, nil
}

// Global helpers
func isVerbose() bool {
	return verbose
}

func newLogger(component string) *logger.Logger {
	return logger.NewWithCallback(component, isVerbose)
}

// outputFormat resolves the format from a command flag, the global
// --output flag and the configuration, in that order
func outputFormat(cmd *cobra.Command, flagName, flagValue string, cfg *config.Config) string {
	if flagName != "" && cmd.Flags().Changed(flagName) {
		return flagValue
	}
	if outputFmt != "" {
		return outputFmt
	}
	return cfg.Output.DefaultFormat
}

// useColor applies output.color_mode, --no-color and NO_COLOR
func useColor(cfg *config.Config, w io.Writer) bool {
	if noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	switch cfg.Output.ColorMode {
	case "always":
		return true
	case "never":
		return false
	}
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}
