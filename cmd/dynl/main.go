// Command dynl is the reference CLI for the language implemented by this
// module: lexer, parser, analyzer, and evaluator wired behind cobra
// subcommands, the same way the teacher's dwscript command wires its own
// pipeline stages.
package main

import (
	"os"

	"github.com/cwbudde/go-dynl/cmd/dynl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
