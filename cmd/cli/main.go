// Package main is the entry point for the parquet-meta CLI binary.
package main

import (
	"os"

	cli "parquet-meta/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
