package cmd

import (
	"fmt"

	"github.com/cwbudde/go-dynl/internal/lexer"
	"github.com/cwbudde/go-dynl/internal/token"
	"github.com/spf13/cobra"
)

var (
	lexEvalExpr string
	showPos     bool
	showKind    bool
)

var lexCmd = &cobra.Command{
	Use:   "lex [file]",
	Short: "Tokenize a dynl file or expression",
	Long: `Tokenize (lex) a dynl program and print the resulting tokens.

Examples:
  # Tokenize a script file
  dynl lex script.dynl

  # Tokenize an inline expression
  dynl lex -e "LET x = 42;"

  # Show token kinds and positions
  dynl lex --show-kind --show-pos script.dynl`,
	Args: cobra.MaximumNArgs(1),
	RunE: lexScript,
}

func init() {
	rootCmd.AddCommand(lexCmd)

	lexCmd.Flags().StringVarP(&lexEvalExpr, "eval", "e", "", "tokenize inline code instead of reading from file")
	lexCmd.Flags().BoolVar(&showPos, "show-pos", false, "show token positions (line:column)")
	lexCmd.Flags().BoolVar(&showKind, "show-kind", false, "show token kind names")
}

func lexScript(cmd *cobra.Command, args []string) error {
	input, filename, err := readInput(lexEvalExpr, args)
	if err != nil {
		return err
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	if verbose {
		fmt.Printf("Tokenizing: %s\n", filename)
		fmt.Printf("Input length: %d bytes\n", len(input))
		fmt.Println("---")
	}

	l := lexer.New(input)
	count := 0
	for {
		tok, err := l.Next()
		if err != nil {
			return fmt.Errorf("%s", err.Error())
		}
		count++
		printToken(tok)
		if tok.Kind == token.EOF {
			break
		}
	}

	if verbose {
		fmt.Println("---")
		fmt.Printf("Total tokens: %d\n", count)
	}

	return nil
}

func printToken(tok token.Token) {
	var output string

	if showKind {
		output = fmt.Sprintf("[%-10s]", tok.Kind)
	}

	if tok.Kind == token.EOF {
		output += " EOF"
	} else {
		output += fmt.Sprintf(" %q", tok.Literal)
	}

	if showPos {
		output += fmt.Sprintf(" @%d:%d", tok.Pos.Line, tok.Pos.Column)
	}

	fmt.Println(output)
}
