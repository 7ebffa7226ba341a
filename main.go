package main

import (
	"os"

	"github.com/wsn-testbed/clusterhead/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
