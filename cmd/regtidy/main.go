// Package main is the entry point for the regtidy CLI.
package main

import (
	"os"

	"github.com/jmylchreest/regtidy/cmd/regtidy/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
