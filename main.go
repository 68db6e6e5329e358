package main

import (
	"os"

	"github.com/mrcode/nightscout-report/internal/cli"
)

func main() {
	if err := cli.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
