package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/TurboCoder13/py-lintro-sub001/src/config"
	"github.com/TurboCoder13/py-lintro-sub001/src/output"
	"github.com/TurboCoder13/py-lintro-sub001/src/plan"
	"github.com/TurboCoder13/py-lintro-sub001/src/resolve"
	"github.com/TurboCoder13/py-lintro-sub001/src/tools"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and validate the lintro configuration",
}

var (
	configShowFormat string
	configShowTools  string
)

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the resolved configuration for each tool",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration and check it against native tool configs",
	Args:  cobra.NoArgs,
	RunE:  runConfigValidate,
}

func init() {
	configShowCmd.Flags().StringVar(&configShowFormat, "output-format", output.FormatPlain, "output format: plain, json or yaml")
	configShowCmd.Flags().StringVarP(&configShowTools, "tools", "t", "", "comma-separated tools to show (default: all)")

	configCmd.AddCommand(configShowCmd, configValidateCmd)
	rootCmd.AddCommand(configCmd)
}

func shownTools() []string {
	names := tools.All()
	if configShowTools != "" {
		names = strings.Split(strings.ToLower(configShowTools), ",")
		for i := range names {
			names[i] = strings.TrimSpace(names[i])
		}
	}
	return names
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	resolver := resolve.New(cfg, resolve.WithLogger(logger))
	names := shownTools()
	summary := resolver.Summary(names)
	w := cmd.OutOrStdout()

	switch configShowFormat {
	case output.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(configView(summary))
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(configView(summary)); err != nil {
			return err
		}
		return enc.Close()
	case output.FormatPlain:
	default:
		return fmt.Errorf("unknown output format %q (want plain, json or yaml)", configShowFormat)
	}

	color := newPrinter().Color
	source := cfg.SourcePath
	if source == "" {
		source = "(built-in defaults)"
	}
	output.ContextBlock(w, []output.KV{
		{Key: "source", Value: source},
		{Key: "order", Value: string(cfg.Execution.ToolOrder)},
		{Key: "fail-fast", Value: fmt.Sprint(cfg.Execution.FailFast)},
		{Key: "isolated", Value: fmt.Sprint(cfg.Isolated)},
	})

	sec := output.NewSection(w, "Global", 0, color)
	g := cfg.Global
	sec.Row("%-16s %s", "line_length", optional(g.LineLength))
	sec.Row("%-16s %s", "target_python", optional(g.TargetVersion))
	sec.Row("%-16s %s", "indent_size", optional(g.IndentSize))
	sec.Row("%-16s %s", "quote_style", optional(g.QuoteStyle))
	sec.Close()

	planner := plan.New(logger)
	ordered := planner.Order(names, string(cfg.Execution.ToolOrder), cfg.Execution.CustomOrder, cfg.Execution.PriorityOverrides)
	for _, name := range ordered {
		info := summary[name]
		sec := output.NewSection(w, name, 0, color)
		status := output.StatusSuccess
		if !cfg.IsToolEnabled(name) {
			status = output.StatusSkipped
		}
		sec.Row("%s enabled=%v injectable=%v priority=%d", output.StatusIcon(status, color),
			cfg.IsToolEnabled(name), info.IsInjectable, plan.ToolPriority(name, cfg.Execution.PriorityOverrides))
		writeSettings(sec, "effective", info.EffectiveConfig, color)
		writeSettings(sec, "native", info.NativeConfig, color)
		for _, warn := range info.Warnings {
			sec.Row("%s %s", output.StatusIcon(output.StatusFailed, color), warn)
		}
		sec.Close()
	}
	return nil
}

type configSummary struct {
	Source     string                            `json:"source" yaml:"source"`
	Isolated   bool                              `json:"isolated" yaml:"isolated"`
	Global     map[string]any                    `json:"global" yaml:"global"`
	ToolOrder  string                            `json:"tool_order" yaml:"tool_order"`
	FailFast   bool                              `json:"fail_fast" yaml:"fail_fast"`
	PostChecks []string                          `json:"post_checks,omitempty" yaml:"post_checks,omitempty"`
	Tools      map[string]resolve.ToolConfigInfo `json:"tools" yaml:"tools"`
}

func configView(summary map[string]resolve.ToolConfigInfo) configSummary {
	global := map[string]any{}
	if g := cfg.Global; g.LineLength != nil {
		global["line_length"] = *g.LineLength
	}
	if g := cfg.Global; g.TargetVersion != nil {
		global["target_python"] = *g.TargetVersion
	}
	if g := cfg.Global; g.IndentSize != nil {
		global["indent_size"] = *g.IndentSize
	}
	if g := cfg.Global; g.QuoteStyle != nil {
		global["quote_style"] = *g.QuoteStyle
	}
	view := configSummary{
		Source:    cfg.SourcePath,
		Isolated:  cfg.Isolated,
		Global:    global,
		ToolOrder: string(cfg.Execution.ToolOrder),
		FailFast:  cfg.Execution.FailFast,
		Tools:     summary,
	}
	if cfg.PostChecks.Enabled {
		view.PostChecks = cfg.PostChecks.Tools
	}
	return view
}

func writeSettings(sec *output.Section, label string, m map[string]any, color bool) {
	if len(m) == 0 {
		return
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	sec.Row("%s", output.Dimmed(label+":", color))
	for _, k := range keys {
		sec.Row("  %-24s %v", k, compact(m[k]))
	}
}

// compact renders nested values on one line.
func compact(v any) string {
	switch v.(type) {
	case map[string]any, []any:
		if b, err := json.Marshal(v); err == nil {
			return string(b)
		}
	}
	return fmt.Sprint(v)
}

func optional[T any](p *T) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprint(*p)
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()
	warnings, err := config.Validate(cfg, tools.All())
	warnings = append(warnings, resolve.New(cfg, resolve.WithLogger(logger)).ValidateConsistency()...)
	return reportValidation(w, cfg.SourcePath, warnings, err, newPrinter().Color)
}

func reportValidation(w io.Writer, source string, warnings []string, err error, color bool) error {
	if source == "" {
		source = "built-in defaults"
	}
	sec := output.NewSection(w, "Config", 0, color)
	sec.Row("%s", source)
	for _, warn := range warnings {
		sec.Row("%s %s", output.StatusIcon(output.StatusSkipped, color), warn)
	}
	if err != nil {
		for _, msg := range strings.Split(err.Error(), "; ") {
			sec.Row("%s %s", output.StatusIcon(output.StatusFailed, color), msg)
		}
		sec.Close()
		return &exitError{code: 1}
	}
	sec.Row("%s valid (%d warnings)", output.StatusIcon(output.StatusSuccess, color), len(warnings))
	sec.Close()
	return nil
}
