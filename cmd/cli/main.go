// Package main is the entry point for the speechcraft CLI binary.
package main

import (
	"os"

	cli "speechcraft/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
