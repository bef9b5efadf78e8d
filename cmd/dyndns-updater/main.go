package main

import (
	"os"

	"github.com/netguru/dyndns-updater/cmd/dyndns-updater/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
