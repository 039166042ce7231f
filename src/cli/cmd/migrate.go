package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/TurboCoder13/py-lintro-sub001/src/config"
)

var (
	migrateWrite  bool
	migrateOutput string
	migrateForce  bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate [pyproject.toml]",
	Short: "Convert [tool.lintro] in pyproject.toml to .lintro-config.yaml",
	Long: `Convert the deprecated [tool.lintro] table in pyproject.toml into the
.lintro-config.yaml layout.

By default, prints the converted config to stdout. Use --write to create
.lintro-config.yaml next to the input, or --output to write elsewhere.
pyproject.toml itself is never modified.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMigrate,
}

func init() {
	migrateCmd.Flags().BoolVarP(&migrateWrite, "write", "w", false, "write "+config.ConfigFileNames[0])
	migrateCmd.Flags().StringVarP(&migrateOutput, "output", "o", "", "write the converted config to this path")
	migrateCmd.Flags().BoolVar(&migrateForce, "force", false, "overwrite an existing output file")

	configCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	inputPath := "pyproject.toml"
	if len(args) > 0 {
		inputPath = args[0]
	}

	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", inputPath, err)
	}

	migrated, err := config.MigrateLegacy(data)
	if err != nil {
		return fmt.Errorf("migrating %s: %w", inputPath, err)
	}

	dest := migrateOutput
	if dest == "" && migrateWrite {
		dest = config.ConfigFileNames[0]
	}
	if dest == "" {
		_, err := cmd.OutOrStdout().Write(migrated)
		return err
	}

	if !migrateForce {
		if _, err := os.Stat(dest); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", dest)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	if err := os.WriteFile(dest, migrated, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", dest, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "  migrated %s → %s\n", inputPath, dest)
	return nil
}
