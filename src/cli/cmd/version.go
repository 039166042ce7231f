package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/TurboCoder13/py-lintro-sub001/src/version"
)

var versionShort bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if versionShort {
			fmt.Fprintln(cmd.OutOrStdout(), version.Version)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), version.String())
		return nil
	},
}

func init() {
	versionCmd.Flags().BoolVarP(&versionShort, "short", "s", false, "print only the version number")
	rootCmd.AddCommand(versionCmd)
}
