package main

import (
	"os"

	"hero-trivia-engine/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
