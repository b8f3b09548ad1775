// Command docrag is the entry point for the DocRAG document question-answering
// service. It provides a CLI interface (via Cobra) and an HTTP server exposing
// the upload and query API.
package main

import (
	"fmt"
	"os"

	"github.com/docuquest/docrag-go/cmd/docrag/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
