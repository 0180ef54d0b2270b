// Command arcvalue deduplicates structured documents.
package main

import (
	"os"

	"github.com/roach88/arcvalue/internal/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
