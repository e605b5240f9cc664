package main

import (
	"fmt"
	"os"

	"github.com/jonathanvkeller/lease-analysis/cmd/lease-analyzer/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
