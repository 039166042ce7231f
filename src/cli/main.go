package main

import (
	"os"

	"github.com/TurboCoder13/py-lintro-sub001/src/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(cmd.ExitCode(err))
	}
}
