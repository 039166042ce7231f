package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/TurboCoder13/py-lintro-sub001/src/config"
	"github.com/TurboCoder13/py-lintro-sub001/src/logging"
	"github.com/TurboCoder13/py-lintro-sub001/src/output"
)

var (
	cfgFile string
	verbose bool
	noColor bool
	cfg     *config.Config
	logger  = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "lintro",
	Short: "Unified runner for linters and formatters",
	Long: `lintro runs ruff, black, prettier, yamllint and friends from one
configuration file, resolving each tool's effective settings and handing
them to the tool without touching its native config.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = logging.New(verbose)
		// Skip config loading for commands that don't need it.
		if cmd.Name() == "version" {
			return nil
		}
		loader := config.NewLoader(config.WithLogger(logger))
		provider := config.NewProvider(loader, cfgFile)
		config.SetDefaultProvider(provider)
		cfg = provider.Get()
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: discovered .lintro-config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

// exitError carries a process exit code without an error message; the
// command already reported why.
type exitError struct {
	code int
}

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

// ExitCode maps an Execute error to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return 1
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		var ee *exitError
		if !errors.As(err, &ee) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		return err
	}
	return nil
}

func newPrinter() *output.Printer {
	p := output.NewPrinter()
	if noColor {
		p.Color = false
	}
	return p
}
