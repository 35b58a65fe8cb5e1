package cmd

import (
	"fmt"

	"github.com/cwbudde/go-dynl/internal/analyzer"
	"github.com/cwbudde/go-dynl/internal/ir"
	"github.com/cwbudde/go-dynl/internal/parser"
	"github.com/spf13/cobra"
)

var analyzeEvalExpr string

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Type-check a dynl file or expression",
	Long: `Run the analyzer over a dynl program: name resolution and type
checking, without evaluating it. Prints the inferred type of every
top-level LET, and the return type of every top-level DEF, on success.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&analyzeEvalExpr, "eval", "e", "", "analyze inline code instead of reading from file")
}

func runAnalyze(_ *cobra.Command, args []string) error {
	input, _, err := readInput(analyzeEvalExpr, args)
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

	irSrc, err := analyzer.New(input).Analyze(src)
	if err != nil {
		return fmt.Errorf("%s", err.Error())
	}

	printIRTypes(irSrc)
	fmt.Println("OK")
	return nil
}

func printIRTypes(src *ir.Source) {
	for _, stmt := range src.Statements {
		switch s := stmt.(type) {
		case *ir.Let:
			fmt.Printf("LET %s: %s\n", s.Name, s.VariableType)
		case *ir.Def:
			fmt.Printf("DEF %s: %s\n", s.Name, s.ReturnType)
		}
	}
}
