package cmd

import (
	"fmt"
	"os"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/cwbudde/go-dynl/internal/analyzer"
	"github.com/cwbudde/go-dynl/internal/evaluator"
	"github.com/cwbudde/go-dynl/internal/parser"
	"github.com/spf13/cobra"
)

var (
	runEvalExpr  string
	dumpAST      bool
	typeCheck    bool
	traceQuery   string
	showTraceRaw bool
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run a dynl file or expression",
	Long: `Execute a dynl program from a file or inline expression.

Examples:
  # Run a script file
  dynl run script.dynl

  # Evaluate an inline expression
  dynl run -e "log(1 + 2);"

  # Run with AST dump (for debugging)
  dynl run --dump-ast script.dynl

  # Filter the execution trace with a gjson path expression
  dynl run --trace-query "#(kind==\"*Return\")#" script.dynl`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScript,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runEvalExpr, "eval", "e", "", "evaluate inline code instead of reading from file")
	runCmd.Flags().BoolVar(&dumpAST, "dump-ast", false, "dump the parsed AST (for debugging)")
	runCmd.Flags().BoolVar(&typeCheck, "type-check", true, "perform semantic analysis before execution")
	runCmd.Flags().StringVar(&traceQuery, "trace-query", "", "record a JSON-lines execution trace and filter it with this gjson path expression")
	runCmd.Flags().BoolVar(&showTraceRaw, "show-trace", false, "print the full (unfiltered) execution trace")
}

func runScript(_ *cobra.Command, args []string) error {
	input, _, err := readInput(runEvalExpr, args)
	if err != nil {
		return err
	}

	p, err := parser.New(input)
	if err != nil {
		return fmt.Errorf("%s", err.Error())
	}
	src, err := p.ParseSource()
	if err != nil {
		return fmt.Errorf("%s", err.Error())
	}

	if typeCheck {
		if _, err := analyzer.New(input).Analyze(src); err != nil {
			return fmt.Errorf("%s", err.Error())
		}
	}

	if dumpAST {
		fmt.Println("AST:")
		fmt.Println(src.String())
		fmt.Println()
	}

	var traceLines []string
	opts := []evaluator.Option{}
	if traceQuery != "" || showTraceRaw {
		opts = append(opts, evaluator.WithTrace(func(ev evaluator.TraceEvent) {
			line, err := sjson.Set("{}", "kind", ev.Kind)
			if err != nil {
				return
			}
			line, err = sjson.Set(line, "line", ev.Line)
			if err != nil {
				return
			}
			line, err = sjson.Set(line, "column", ev.Column)
			if err != nil {
				return
			}
			line, err = sjson.Set(line, "result", ev.Result)
			if err != nil {
				return
			}
			traceLines = append(traceLines, line)
		}))
	}

	eval := evaluator.New(input, func(s string) { fmt.Println(s) }, opts...)
	_, err = eval.Evaluate(src)

	if len(traceLines) > 0 {
		fmt.Fprintln(os.Stderr, "--- trace ---")
		for _, line := range traceLines {
			if traceQuery != "" {
				if match := gjson.Get(line, traceQuery); !match.Exists() {
					continue
				}
			}
			fmt.Fprintln(os.Stderr, line)
		}
	}

	if err != nil {
		return fmt.Errorf("%s", err.Error())
	}
	return nil
}
