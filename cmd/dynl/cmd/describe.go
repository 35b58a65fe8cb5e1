package cmd

import (
	"fmt"
	"sort"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/cwbudde/go-dynl/internal/analyzer"
	"github.com/cwbudde/go-dynl/internal/evaluator"
	"github.com/cwbudde/go-dynl/internal/ir"
	"github.com/cwbudde/go-dynl/internal/parser"
)

var describeEvalExpr string

var describeCmd = &cobra.Command{
	Use:   "describe [file]",
	Short: "Dump a scope/type-environment snapshot as YAML",
	Long: `describe renders the resolved type of every entry in a scope as
YAML. With no file or -e, it describes the built-in type environment
(§6). With a program, it analyzes and runs the program and lists its
top-level LET/DEF bindings (a LET's variable type, a DEF's return type),
letting a caller inspect them without re-deriving them from source reading.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDescribe,
}

func init() {
	rootCmd.AddCommand(describeCmd)
	describeCmd.Flags().StringVarP(&describeEvalExpr, "eval", "e", "", "describe the scope after running inline code")
}

type scopeEntry struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

func runDescribe(_ *cobra.Command, args []string) error {
	if describeEvalExpr == "" && len(args) == 0 {
		return describeTypeScope(analyzer.NewBuiltinTypeScope().Names())
	}

	input, _, err := readInput(describeEvalExpr, args)
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

	entries := make([]scopeEntry, 0, len(irSrc.Statements))
	for _, stmt := range irSrc.Statements {
		switch s := stmt.(type) {
		case *ir.Let:
			entries = append(entries, scopeEntry{Name: s.Name, Type: s.VariableType.String()})
		case *ir.Def:
			entries = append(entries, scopeEntry{Name: s.Name, Type: s.ReturnType.String()})
		}
	}

	eval := evaluator.New(input, func(string) {})
	if _, err := eval.Evaluate(src); err != nil {
		return fmt.Errorf("%s", err.Error())
	}

	out, err := yaml.Marshal(entries)
	if err != nil {
		return err
	}
	fmt.Print(string(out))
	return nil
}

func describeTypeScope(names []string) error {
	sort.Strings(names)
	scope := analyzer.NewBuiltinTypeScope()
	entries := make([]scopeEntry, 0, len(names))
	for _, name := range names {
		t, ok := scope.Resolve(name, true)
		if !ok {
			continue
		}
		entries = append(entries, scopeEntry{Name: name, Type: t.String()})
	}
	out, err := yaml.Marshal(entries)
	if err != nil {
		return err
	}
	fmt.Print(string(out))
	return nil
}
