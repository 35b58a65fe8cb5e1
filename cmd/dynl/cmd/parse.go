package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/cwbudde/go-dynl/internal/ast"
	"github.com/cwbudde/go-dynl/internal/parser"
	"github.com/spf13/cobra"
)

var (
	parseExpression bool
	parseDumpAST    bool
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse dynl source code and display the AST",
	Long: `Parse dynl source code and display the Abstract Syntax Tree (AST).

If no file is provided, reads from stdin.
Use -e to parse a single expression from the command line.
Use --dump-ast to show the full AST structure.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().BoolVarP(&parseExpression, "expression", "e", false, "parse an expression from the command line")
	parseCmd.Flags().BoolVar(&parseDumpAST, "dump-ast", false, "dump the full AST structure")
}

func runParse(cmd *cobra.Command, args []string) error {
	var input string

	switch {
	case parseExpression:
		if len(args) == 0 {
			return fmt.Errorf("no expression provided")
		}
		input = args[0]
	case len(args) > 0:
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("error reading file: %w", err)
		}
		input = string(data)
	default:
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("error reading stdin: %w", err)
		}
		input = string(data)
	}

	p, err := parser.New(input)
	if err != nil {
		return fmt.Errorf("%s", err.Error())
	}
	var node interface{ String() string }
	if parseExpression {
		node, err = p.ParseExpr()
	} else {
		node, err = p.ParseSource()
	}
	if err != nil {
		return fmt.Errorf("%s", err.Error())
	}

	if parseDumpAST {
		fmt.Println("Abstract Syntax Tree:")
		fmt.Println("=====================")
		dumpASTNode(node, 0)
	} else {
		fmt.Println(node.String())
	}

	return nil
}

func dumpASTNode(node any, indent int) {
	pad := ""
	for i := 0; i < indent; i++ {
		pad += "  "
	}

	switch n := node.(type) {
	case *ast.Source:
		fmt.Printf("%sSource (%d statements)\n", pad, len(n.Statements))
		for _, stmt := range n.Statements {
			dumpASTNode(stmt, indent+1)
		}
	case *ast.Let:
		fmt.Printf("%sLet %s\n", pad, n.Name)
		if n.Value != nil {
			dumpASTNode(n.Value, indent+1)
		}
	case *ast.Def:
		fmt.Printf("%sDef %s (%d params)\n", pad, n.Name, len(n.Params))
		for _, stmt := range n.Body {
			dumpASTNode(stmt, indent+1)
		}
	case *ast.If:
		fmt.Printf("%sIf\n", pad)
		dumpASTNode(n.Cond, indent+1)
		fmt.Printf("%s  Then:\n", pad)
		for _, stmt := range n.ThenBody {
			dumpASTNode(stmt, indent+2)
		}
		if n.ElseBody != nil {
			fmt.Printf("%s  Else:\n", pad)
			for _, stmt := range n.ElseBody {
				dumpASTNode(stmt, indent+2)
			}
		}
	case *ast.For:
		fmt.Printf("%sFor %s\n", pad, n.Name)
		dumpASTNode(n.Expr, indent+1)
		for _, stmt := range n.Body {
			dumpASTNode(stmt, indent+1)
		}
	case *ast.Return:
		fmt.Printf("%sReturn\n", pad)
		if n.Value != nil {
			dumpASTNode(n.Value, indent+1)
		}
	case *ast.ExpressionStmt:
		fmt.Printf("%sExpressionStmt\n", pad)
		dumpASTNode(n.Expr, indent+1)
	case *ast.Assignment:
		fmt.Printf("%sAssignment\n", pad)
		dumpASTNode(n.Target, indent+1)
		dumpASTNode(n.Value, indent+1)
	case *ast.Binary:
		fmt.Printf("%sBinary (%s)\n", pad, n.Operator)
		dumpASTNode(n.Left, indent+1)
		dumpASTNode(n.Right, indent+1)
	case *ast.Literal:
		fmt.Printf("%sLiteral (kind %d): %s\n", pad, n.Kind, n.Value)
	case *ast.Variable:
		fmt.Printf("%sVariable: %s\n", pad, n.Name)
	case *ast.Property:
		fmt.Printf("%sProperty: %s\n", pad, n.Name)
		dumpASTNode(n.Receiver, indent+1)
	case *ast.Function:
		fmt.Printf("%sFunction call: %s\n", pad, n.Name)
		for _, arg := range n.Args {
			dumpASTNode(arg, indent+1)
		}
	case *ast.Method:
		fmt.Printf("%sMethod call: %s\n", pad, n.Name)
		dumpASTNode(n.Receiver, indent+1)
		for _, arg := range n.Args {
			dumpASTNode(arg, indent+1)
		}
	case *ast.ObjectExpr:
		fmt.Printf("%sObjectExpr %s\n", pad, n.Name)
		for _, f := range n.Fields {
			dumpASTNode(f, indent+1)
		}
		for _, m := range n.Methods {
			dumpASTNode(m, indent+1)
		}
	default:
		fmt.Printf("%s%T: %v\n", pad, node, node)
	}
}
