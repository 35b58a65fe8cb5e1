package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cwbudde/go-dynl/internal/evaluator"
	"github.com/cwbudde/go-dynl/internal/parser"
	"github.com/cwbudde/go-dynl/internal/runtime"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive read-eval-print loop",
	Long: `repl is a line-oriented read-eval-print loop sharing one
persistent top-level scope across lines, so a LET on one line stays
visible to lines typed afterward. It uses the same lexer/parser/evaluator
entry points as run, just re-lexing and re-parsing each line against the
carried-over scope instead of a fresh one.`,
	RunE: runRepl,
}

func init() {
	rootCmd.AddCommand(replCmd)
}

func runRepl(_ *cobra.Command, _ []string) error {
	topScope := runtime.NewBuiltinScope(func(s string) { fmt.Println(s) })

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println("dynl repl — Ctrl-D to exit")
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			return nil
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		p, err := parser.New(line)
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			continue
		}
		src, err := p.ParseSource()
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			continue
		}

		eval := evaluator.New(line, func(s string) { fmt.Println(s) }, evaluator.WithScope(topScope))
		if _, err := eval.Evaluate(src); err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
		}
	}
}
