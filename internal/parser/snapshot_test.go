package parser

import (
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
)

// TestSourceStringSnapshots parses a handful of representative programs and
// snapshots their round-tripped Source.String() form, the way the teacher's
// fixture_test.go snapshots interpreter output with go-snaps.
func TestSourceStringSnapshots(t *testing.T) {
	programs := map[string]string{
		"let_and_assignment": `LET x = 1; x = x + 1;`,
		"def_if_for": `
DEF fib(n: Integer): Integer DO
  IF n <= 1 DO
    RETURN n;
  ELSE
    RETURN fib(n - 1) + fib(n - 2);
  END
END
FOR i IN range(0, 3) DO
  log(i);
END
`,
		"object_literal_and_method_call": `
LET o = OBJECT Point DO
  LET x = 1;
  LET y = 2;
  DEF sum(): Integer DO
    RETURN this.x + this.y;
  END
END
log(o.sum());
`,
	}

	for name, src := range programs {
		t.Run(name, func(t *testing.T) {
			p, err := New(src)
			if err != nil {
				t.Fatalf("lex error: %v", err)
			}
			program, err := p.ParseSource()
			if err != nil {
				t.Fatalf("parse error: %v", err)
			}
			snaps.MatchSnapshot(t, program.String())
		})
	}
}
