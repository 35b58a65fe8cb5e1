package evaluator

import (
	"fmt"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"

	"github.com/cwbudde/go-dynl/internal/parser"
)

// TestExecutionTraceSnapshots runs a program with WithTrace and snapshots
// the resulting per-statement trace, the way the teacher's fixture_test.go
// snapshots interpreter output with go-snaps.
func TestExecutionTraceSnapshots(t *testing.T) {
	programs := map[string]string{
		"arithmetic_and_log": `LET x = 1 + 2; log(x);`,
		"fibonacci_top_level": `
DEF fib(n) DO
  IF n <= 1 DO
    RETURN n;
  END
  RETURN fib(n - 1) + fib(n - 2);
END
LET result = fib(5);
log(result);
`,
	}

	for name, src := range programs {
		t.Run(name, func(t *testing.T) {
			p, err := parser.New(src)
			if err != nil {
				t.Fatalf("lex error: %v", err)
			}
			astSrc, err := p.ParseSource()
			if err != nil {
				t.Fatalf("parse error: %v", err)
			}

			var trace string
			eval := New(src, func(string) {}, WithTrace(func(ev TraceEvent) {
				trace += fmt.Sprintf("%s @%d:%d -> %s\n", ev.Kind, ev.Line, ev.Column, ev.Result)
			}))
			if _, err := eval.Evaluate(astSrc); err != nil {
				t.Fatalf("evaluate error: %v", err)
			}
			snaps.MatchSnapshot(t, trace)
		})
	}
}
