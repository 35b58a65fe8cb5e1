package lexer

import (
	"testing"

	"github.com/cwbudde/go-dynl/internal/token"
)

func TestKeywordsAndIdentifiers(t *testing.T) {
	input := `LET x DEF foo_bar my-ident`

	tests := []struct {
		literal string
		kind    token.Kind
	}{
		{"LET", token.OPERATOR},
		{"x", token.IDENTIFIER},
		{"DEF", token.OPERATOR},
		{"foo_bar", token.IDENTIFIER},
		{"my-ident", token.IDENTIFIER},
		{"", token.EOF},
	}

	l := New(input)
	for i, tt := range tests {
		tok, err := l.Next()
		if err != nil {
			t.Fatalf("tests[%d] - unexpected error: %v", i, err)
		}
		if tok.Kind != tt.kind {
			t.Fatalf("tests[%d] - kind wrong. expected=%v, got=%v", i, tt.kind, tok.Kind)
		}
		if tok.Literal != tt.literal {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q", i, tt.literal, tok.Literal)
		}
	}
}

func TestNumberLiterals(t *testing.T) {
	input := `123 -0 +7 3.14e-2 10 1e10`

	tests := []struct {
		literal string
		kind    token.Kind
	}{
		{"123", token.INTEGER},
		{"-0", token.INTEGER},
		{"+7", token.INTEGER},
		{"3.14e-2", token.DECIMAL},
		{"10", token.INTEGER},
		{"1e10", token.DECIMAL},
		{"", token.EOF},
	}

	l := New(input)
	for i, tt := range tests {
		tok, err := l.Next()
		if err != nil {
			t.Fatalf("tests[%d] - unexpected error: %v", i, err)
		}
		if tok.Kind != tt.kind || tok.Literal != tt.literal {
			t.Fatalf("tests[%d] - expected %v(%q), got %v(%q)", i, tt.kind, tt.literal, tok.Kind, tok.Literal)
		}
	}
}

func TestNumberRejectsNoExponentDigits(t *testing.T) {
	l := New(`10e;`)
	tok, err := l.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok.Kind != token.INTEGER || tok.Literal != "10" {
		t.Fatalf("expected '10e' to lex as INTEGER '10' followed by identifier 'e', got %v(%q)", tok.Kind, tok.Literal)
	}
}

func TestLoneSignLexesAsOperatorNotNumber(t *testing.T) {
	l := New(`+`)
	tok, err := l.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok.Kind != token.OPERATOR || tok.Literal != "+" {
		t.Fatalf("expected a lone '+' to lex as an operator, got %v(%q)", tok.Kind, tok.Literal)
	}
}

func TestStringAndCharLiterals(t *testing.T) {
	input := `"hi\n" 'a' '\''`

	tests := []struct {
		literal string
		kind    token.Kind
	}{
		{`"hi\n"`, token.STRING},
		{`'a'`, token.CHARACTER},
		{`'\''`, token.CHARACTER},
		{"", token.EOF},
	}

	l := New(input)
	for i, tt := range tests {
		tok, err := l.Next()
		if err != nil {
			t.Fatalf("tests[%d] - unexpected error: %v", i, err)
		}
		if tok.Kind != tt.kind || tok.Literal != tt.literal {
			t.Fatalf("tests[%d] - expected %v(%q), got %v(%q)", i, tt.kind, tt.literal, tok.Kind, tok.Literal)
		}
	}
}

func TestUnterminatedStringIsLexError(t *testing.T) {
	l := New(`"hi`)
	if _, err := l.Next(); err == nil {
		t.Fatal("expected unterminated string to be a lex error")
	}
}

func TestNewlineInsideStringIsLexError(t *testing.T) {
	l := New("\"hi\n\"")
	if _, err := l.Next(); err == nil {
		t.Fatal("expected newline inside string literal to be a lex error")
	}
}

func TestOperators(t *testing.T) {
	input := `+ - * / = == != < <= > >= . , : ; ( )`

	expected := []string{
		"+", "-", "*", "/", "=", "==", "!=", "<", "<=", ">", ">=",
		".", ",", ":", ";", "(", ")",
	}

	l := New(input)
	for i, lit := range expected {
		tok, err := l.Next()
		if err != nil {
			t.Fatalf("tests[%d] - unexpected error: %v", i, err)
		}
		if tok.Kind != token.OPERATOR || tok.Literal != lit {
			t.Fatalf("tests[%d] - expected OPERATOR(%q), got %v(%q)", i, lit, tok.Kind, tok.Literal)
		}
	}
}

func TestLineComment(t *testing.T) {
	input := "LET x = 1; // trailing comment\nLET y = 2;"

	l := New(input)
	var lits []string
	for {
		tok, err := l.Next()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if tok.Kind == token.EOF {
			break
		}
		lits = append(lits, tok.Literal)
	}

	want := []string{"LET", "x", "=", "1", ";", "LET", "y", "=", "2", ";"}
	if len(lits) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %v", len(want), len(lits), lits)
	}
	for i := range want {
		if lits[i] != want[i] {
			t.Fatalf("token[%d]: expected %q, got %q", i, want[i], lits[i])
		}
	}
}
