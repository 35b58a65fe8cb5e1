package lexer

import (
	"fmt"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"

	"github.com/cwbudde/go-dynl/internal/token"
)

// TestTokenStreamSnapshots lexes a handful of representative programs to
// EOF and snapshots the resulting token stream, the way the teacher's
// fixture_test.go snapshots interpreter output with go-snaps.
func TestTokenStreamSnapshots(t *testing.T) {
	programs := map[string]string{
		"arithmetic": `LET x = 1 + 2 * 3 - 4 / 5;`,
		"def_if_for": `
DEF fib(n: Integer): Integer DO
  IF n <= 1 DO
    RETURN n;
  END
  RETURN fib(n - 1) + fib(n - 2);
END
FOR i IN range(0, 3) DO
  log(i);
END
`,
		"object_literal": `
LET o = OBJECT Point DO
  LET x = 1;
  LET y = 2;
  DEF sum(): Integer DO
    RETURN this.x + this.y;
  END
END
`,
		"strings_and_chars": `LET s = "hi\n"; LET c = 'a'; // a comment
LET neg = -7;`,
	}

	for name, src := range programs {
		t.Run(name, func(t *testing.T) {
			var out string
			l := New(src)
			for {
				tok, err := l.Next()
				if err != nil {
					out += fmt.Sprintf("ERROR: %v\n", err)
					break
				}
				out += fmt.Sprintf("%-6s %-12q @%d:%d\n", tok.Kind, tok.Literal, tok.Pos.Line, tok.Pos.Column)
				if tok.Kind == token.EOF {
					break
				}
			}
			snaps.MatchSnapshot(t, out)
		})
	}
}
