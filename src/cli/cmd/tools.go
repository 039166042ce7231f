package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/TurboCoder13/py-lintro-sub001/src/discover"
	"github.com/TurboCoder13/py-lintro-sub001/src/output"
	"github.com/TurboCoder13/py-lintro-sub001/src/plan"
	"github.com/TurboCoder13/py-lintro-sub001/src/tools"
)

var listToolsCmd = &cobra.Command{
	Use:     "list-tools",
	Aliases: []string{"tools"},
	Short:   "List the supported tools in execution order",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		color := newPrinter().Color
		w := cmd.OutOrStdout()

		names := plan.New(logger).Order(tools.All(), string(cfg.Execution.ToolOrder), cfg.Execution.CustomOrder, cfg.Execution.PriorityOverrides)
		sec := output.NewSection(w, "Tools", 0, color)
		sec.Row("%-14s %4s  %-3s  %-6s  %-14s %s", "tool", "prio", "fix", "inject", "files", "description")
		for _, name := range names {
			spec, ok := tools.Lookup(name)
			if !ok {
				continue
			}
			line := fmt.Sprintf("%-14s %4d  %-3s  %-6s  %-14s %s",
				name,
				plan.ToolPriority(name, cfg.Execution.PriorityOverrides),
				yesNo(spec.CanFix),
				yesNo(spec.Injectable()),
				discover.ExtensionLabel(spec.FilePatterns),
				spec.Description,
			)
			if !cfg.IsToolEnabled(name) {
				line = output.Dimmed(line, color)
			}
			sec.Row("%s", line)
		}
		sec.Close()
		return nil
	},
}

var versionsCmd = &cobra.Command{
	Use:   "versions",
	Short: "Check installed tool versions against the minimum supported versions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		color := newPrinter().Color
		w := cmd.OutOrStdout()
		checker := tools.NewVersionChecker(tools.NewExecRunner(tools.WithRunnerLogger(logger)))
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		missing := 0
		sec := output.NewSection(w, "Versions", 0, color)
		for _, spec := range tools.Specs() {
			st := checker.CheckVersion(ctx, spec)
			status := output.StatusSuccess
			if !st.Satisfied {
				status = output.StatusFailed
				missing++
			}
			installed := st.Version
			if installed == "" {
				installed = "-"
			}
			minimum := spec.MinVersion
			if minimum == "" {
				minimum = "any"
			}
			sec.Row("%s %-14s %-12s >= %-10s %s", output.StatusIcon(status, color), spec.Name, installed, minimum, output.Dimmed(st.Reason, color))
		}
		sec.Separator()
		sec.Row("%d of %d tools usable", len(tools.Specs())-missing, len(tools.Specs()))
		sec.Close()
		return nil
	},
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "-"
}

func init() {
	rootCmd.AddCommand(listToolsCmd, versionsCmd)
}
