package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/yildizm/go-termfmt"
	"github.com/yildizm/mclogsum/internal/analyzer"
	"github.com/yildizm/mclogsum/internal/emoji"
)

func newRulesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect the diagnostic rule catalogue",
		Long: `Show and validate diagnostic rules.

Rules are evaluated in catalogue order. The first rule that produces a reason
becomes the main problem, later ones are reported as additional problems.
Rules from rule files run after the built-in catalogue.`,
	}

	cmd.AddCommand(newRulesListCommand())
	cmd.AddCommand(newRulesValidateCommand())

	return cmd
}

// ruleInfo is the JSON shape of a catalogue entry
type ruleInfo struct {
	ID       string   `json:"id"`
	Logic    string   `json:"logic"`
	Kind     string   `json:"kind"`
	Keywords []string `json:"keywords"`
}

func newRulesListCommand() *cobra.Command {
	var (
		format string
		files  []string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List rules in evaluation order",
		Example: `  mclogsum rules list
  mclogsum rules list --rules extra.yaml --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			all := append(append([]string{}, cfg.Rules.Files...), files...)
			engine, err := buildEngine(all)
			if err != nil {
				return err
			}

			rules := engine.Rules()
			out := cmd.OutOrStdout()

			f := format
			if f == "" && outputFmt == "json" {
				f = "json"
			}
			switch f {
			case "json":
				infos := make([]ruleInfo, 0, len(rules))
				for _, r := range rules {
					infos = append(infos, describeRule(r))
				}
				data, err := json.MarshalIndent(infos, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal rules: %w", err)
				}
				fmt.Fprintln(out, string(data))
			case "text", "":
				fmt.Fprint(out, renderRuleTree(rules, useColor(cfg, out)))
			default:
				return fmt.Errorf("unsupported format: %s (use text or json)", f)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "output format (text, json)")
	cmd.Flags().StringSliceVar(&files, "rules", nil, "additional rule files")

	return cmd
}

func newRulesValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>...",
		Short: "Validate rule files",
		Long: `Check that rule files parse, that every rule has an id, keywords and a
reason, that logic is one_of or all_of, and that ids do not collide with the
built-in catalogue.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			engine, err := buildEngine(args)
			if err != nil {
				fmt.Fprintf(out, "%s Rule validation failed:\n", emoji.GetEmoji("error"))
				fmt.Fprintf(out, "   %v\n", err)
				return err
			}

			added := len(engine.Rules()) - len(analyzer.DefaultRules())
			fmt.Fprintf(out, "%s %d rule(s) valid in %d file(s)\n", emoji.GetEmoji("success"), added, len(args))
			return nil
		},
	}
}

func describeRule(r analyzer.Rule) ruleInfo {
	kind := "none"
	if r.Reason != nil {
		kind = string(r.Reason.Kind())
	}
	return ruleInfo{
		ID:       r.ID,
		Logic:    r.Logic.String(),
		Kind:     kind,
		Keywords: r.Keywords,
	}
}

// renderRuleTree draws one branch per rule with its predicate underneath
func renderRuleTree(rules []analyzer.Rule, color bool) string {
	opts := termfmt.DefaultOptions()
	opts.Color = color
	opts.Emoji = !emoji.IsEmojiDisabled()

	items := make([]termfmt.TreeItem, 0, len(rules))
	for i, r := range rules {
		info := describeRule(r)
		items = append(items, termfmt.TreeItem{
			Label: fmt.Sprintf("%2d. %s", i+1, info.ID),
			Children: []termfmt.TreeItem{
				{Label: "Logic", Value: info.Logic},
				{Label: "Reason", Value: info.Kind},
				{Label: "Keywords", Value: quoteAll(info.Keywords), Last: true},
			},
			Last: i == len(rules)-1,
		})
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s Diagnostic rules (%d)\n", emoji.GetEmoji("rule"), len(rules))
	b.WriteString(termfmt.TreeViewWithOptions(items, opts))
	b.WriteString("\n")
	return b.String()
}

func quoteAll(keywords []string) string {
	quoted := make([]string, len(keywords))
	for i, kw := range keywords {
		quoted[i] = fmt.Sprintf("%q", kw)
	}
	return strings.Join(quoted, ", ")
}
