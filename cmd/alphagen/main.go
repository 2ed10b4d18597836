package main

import (
	"os"

	"github.com/alphagen/alphagen/cmd/alphagen/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
