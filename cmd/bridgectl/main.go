package main

import (
	"os"

	"github.com/relaybrook/msgbridge/cmd/bridgectl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
