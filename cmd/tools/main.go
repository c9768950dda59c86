// Package main is the entry point of the tools CLI.
package main

import (
	"os"

	"github.com/ae-kit/tools/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
