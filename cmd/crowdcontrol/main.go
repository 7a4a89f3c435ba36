package main

import (
	"os"

	"github.com/crowdcontrol-sh/crowdcontrol/cmd/crowdcontrol/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
