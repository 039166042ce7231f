package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/TurboCoder13/py-lintro-sub001/src/artifact"
	"github.com/TurboCoder13/py-lintro-sub001/src/discover"
	"github.com/TurboCoder13/py-lintro-sub001/src/execute"
	"github.com/TurboCoder13/py-lintro-sub001/src/output"
	"github.com/TurboCoder13/py-lintro-sub001/src/resolve"
	"github.com/TurboCoder13/py-lintro-sub001/src/tools"
)

// runFlags are shared by check and format; each command binds its own copy.
type runFlags struct {
	tools        string
	toolOptions  string
	excludes     []string
	includeVenv  bool
	outputFormat string
	failFast     bool
	changed      bool
	timeout      time.Duration
	junitDir     string
}

func (f *runFlags) bind(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVarP(&f.tools, "tools", "t", "", "comma-separated tools to run (default: all enabled)")
	fl.StringVar(&f.toolOptions, "tool-options", "", "per-tool options, e.g. ruff:select=E|F,black:line_length=100")
	fl.StringSliceVar(&f.excludes, "exclude", nil, "additional exclude patterns")
	fl.BoolVar(&f.includeVenv, "include-venv", false, "descend into virtual environment directories")
	fl.StringVar(&f.outputFormat, "output-format", output.FormatPlain, "output format: plain or json")
	fl.BoolVar(&f.failFast, "fail-fast", false, "stop after the first tool that fails (overrides config)")
	fl.BoolVar(&f.changed, "changed", false, "only run on files changed against the target branch")
	fl.DurationVar(&f.timeout, "timeout", 0, "per-tool timeout (default: tool option, then tool default)")
	fl.StringVar(&f.junitDir, "junit-dir", "", "also write a JUnit XML report into this directory")
}

var (
	checkFlags  runFlags
	formatFlags runFlags
)

var checkCmd = &cobra.Command{
	Use:   "check [paths...]",
	Short: "Run linters and report issues",
	Long: `Run every enabled tool over the given paths (default: current directory).

Tools run one at a time in the configured order. Tools whose binary is
missing or too old are skipped, not failed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTools(cmd, execute.ModeCheck, &checkFlags, args)
	},
}

var formatCmd = &cobra.Command{
	Use:     "format [paths...]",
	Aliases: []string{"fmt"},
	Short:   "Apply automatic fixes",
	Long: `Run every enabled tool that can fix files over the given paths.

Exits non-zero when issues remain after fixing.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTools(cmd, execute.ModeFix, &formatFlags, args)
	},
}

func init() {
	checkFlags.bind(checkCmd)
	formatFlags.bind(formatCmd)
	rootCmd.AddCommand(checkCmd, formatCmd)
}

func runTools(cmd *cobra.Command, mode execute.Mode, flags *runFlags, args []string) error {
	switch flags.outputFormat {
	case output.FormatPlain, output.FormatJSON:
	default:
		return fmt.Errorf("unknown output format %q (want plain or json)", flags.outputFormat)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}

	paths := args
	if len(paths) == 0 {
		paths = []string{"."}
	}

	toolOptions, err := execute.ParseToolOptions(flags.toolOptions)
	if err != nil {
		return err
	}

	runCfg := cfg
	if cmd.Flags().Changed("fail-fast") {
		exec := runCfg.Execution
		exec.FailFast = flags.failFast
		runCfg = runCfg.WithExecution(exec)
	}

	excludes := flags.excludes
	if patterns, path := discover.LoadIgnoreFile(rootDir); len(patterns) > 0 {
		logger.Debug("loaded ignore file", zap.String("path", path), zap.Int("patterns", len(patterns)))
		excludes = append(excludes, patterns...)
	}

	var changed map[string]bool
	if flags.changed {
		delta := &discover.Delta{RootDir: rootDir, Logger: logger}
		changed, err = delta.ChangedFiles(ctx)
		if err != nil {
			logger.Warn("change detection failed, running on all files", zap.Error(err))
		} else {
			logger.Debug("change detection", zap.Int("changed", len(changed)))
		}
	}

	runner := tools.NewExecRunner(tools.WithRunnerLogger(logger))
	resolver := resolve.New(runCfg,
		resolve.WithLogger(logger),
		resolve.WithNativeSource(resolve.FileNativeSource{Dir: rootDir}),
	)
	for _, w := range resolver.ValidateConsistency() {
		logger.Warn(w)
	}

	generator := artifact.NewGenerator(artifact.WithLogger(logger), artifact.WithWorkDir(rootDir))
	defer generator.CleanupAll()

	orch := execute.New(runCfg,
		execute.WithLogger(logger),
		execute.WithResolver(resolver),
		execute.WithGenerator(generator),
		execute.WithVersionChecker(tools.NewVersionChecker(runner)),
	)

	report, runErr := orch.Run(ctx, execute.Request{
		Mode:        mode,
		Paths:       paths,
		Tools:       execute.ParseToolList(flags.tools),
		ToolOptions: toolOptions,
		Excludes:    excludes,
		IncludeVenv: flags.includeVenv,
		Timeout:     flags.timeout,
		Changed:     changed,
	})
	if runErr != nil && !errors.Is(runErr, execute.ErrFailFast) {
		return runErr
	}

	w := cmd.OutOrStdout()
	if flags.outputFormat == output.FormatJSON {
		if err := output.WriteJSON(w, report); err != nil {
			return err
		}
	} else {
		p := newPrinter()
		p.Writer = w
		p.Report(report)
	}

	if flags.junitDir != "" {
		if path, err := output.WriteJUnit(flags.junitDir, report); err != nil {
			logger.Warn("writing junit report failed", zap.Error(err))
		} else {
			logger.Debug("wrote junit report", zap.String("path", path))
		}
	}

	if runErr != nil {
		logger.Info(runErr.Error())
	}
	if code := report.ExitCode(); code != 0 {
		return &exitError{code: code}
	}
	return nil
}
