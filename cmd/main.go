package main

import (
	"os"

	"elsa-proficiency-test/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
