package analyzer

import (
	"testing"

	"github.com/cwbudde/go-dynl/internal/ir"
	"github.com/cwbudde/go-dynl/internal/parser"
	"github.com/cwbudde/go-dynl/internal/types"
)

func mustAnalyze(t *testing.T, input string) *ir.Source {
	t.Helper()
	p, err := parser.New(input)
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	astSrc, err := p.ParseSource()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	irSrc, err := New(input).Analyze(astSrc)
	if err != nil {
		t.Fatalf("analyze error: %v", err)
	}
	return irSrc
}

func analyzeExpectError(t *testing.T, input string) error {
	t.Helper()
	p, err := parser.New(input)
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	astSrc, err := p.ParseSource()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	_, err = New(input).Analyze(astSrc)
	if err == nil {
		t.Fatalf("expected analyze error, got none")
	}
	return err
}

func TestLetInfersTypeFromValue(t *testing.T) {
	src := mustAnalyze(t, `LET x = 1;`)
	let := src.Statements[0].(*ir.Let)
	if let.VariableType != types.Integer {
		t.Fatalf("expected Integer, got %s", let.VariableType)
	}
}

func TestLetDeclaredTypeMismatchFails(t *testing.T) {
	analyzeExpectError(t, `LET x: Integer = 1.0;`)
}

func TestLetIntegerDecimalBidirectionalOk(t *testing.T) {
	mustAnalyze(t, `LET x: Decimal = 1;`)
}

func TestLetDuplicateNameFails(t *testing.T) {
	analyzeExpectError(t, `LET x = 1; LET x = 2;`)
}

func TestReturnOutsideFunctionFails(t *testing.T) {
	analyzeExpectError(t, `RETURN 1;`)
}

func TestDefRecursiveCallResolves(t *testing.T) {
	src := mustAnalyze(t, `
DEF fib(n: Integer): Integer DO
  RETURN n IF n < 2;
  RETURN fib(n - 1) + fib(n - 2);
END
`)
	def := src.Statements[0].(*ir.Def)
	if def.Name != "fib" {
		t.Fatalf("expected fib, got %s", def.Name)
	}
	if def.ReturnType != types.Integer {
		t.Fatalf("expected Integer return type, got %s", def.ReturnType)
	}
}

func TestDefReturnTypeMismatchFails(t *testing.T) {
	analyzeExpectError(t, `
DEF f(): Integer DO
  RETURN "not an integer";
END
`)
}

func TestIfConditionMustBeBoolean(t *testing.T) {
	analyzeExpectError(t, `IF 1 DO LET x = 1; END`)
}

func TestForLoopVariableIsInteger(t *testing.T) {
	src := mustAnalyze(t, `
LET xs = range(0, 3);
FOR i IN xs DO
  LET y = i + 1;
END
`)
	forStmt := src.Statements[1].(*ir.For)
	if forStmt.Name != "i" {
		t.Fatalf("expected loop var i, got %s", forStmt.Name)
	}
	sum := forStmt.Body[0].(*ir.Let).Value.(*ir.Binary)
	if loopVar := sum.Left.(*ir.Variable); loopVar.Typ != types.Integer {
		t.Fatalf("expected loop var i to be Integer, got %s", loopVar.Typ)
	}
}

func TestAssignmentToUnknownVariableFails(t *testing.T) {
	analyzeExpectError(t, `x = 1;`)
}

func TestAssignmentTypeMismatchFails(t *testing.T) {
	analyzeExpectError(t, `LET x: Integer = 1; x = "hello";`)
}

func TestObjectPropertyAccessWithoutPrototypeFails(t *testing.T) {
	analyzeExpectError(t, `
LET o = OBJECT DO
  LET x = 1;
END;
LET y = o.missing;
`)
}

func TestObjectFieldAndMethodResolve(t *testing.T) {
	src := mustAnalyze(t, `
LET o = OBJECT DO
  LET x = 1;
  DEF get(): Integer DO
    RETURN this.x;
  END
END;
LET y = o.x;
LET z = o.get();
`)
	let := src.Statements[0].(*ir.Let)
	obj := let.Value.(*ir.ObjectExpr)
	if obj.ObjectType.Kind != types.KindObject {
		t.Fatalf("expected object type")
	}
}

func TestStringConcatenationViaPlus(t *testing.T) {
	src := mustAnalyze(t, `LET x = "a" + "b";`)
	let := src.Statements[0].(*ir.Let)
	if let.VariableType != types.String {
		t.Fatalf("expected String, got %s", let.VariableType)
	}
}

func TestComparisonOperatorsProduceBoolean(t *testing.T) {
	src := mustAnalyze(t, `LET x = 1 < 2;`)
	let := src.Statements[0].(*ir.Let)
	if let.VariableType != types.Boolean {
		t.Fatalf("expected Boolean, got %s", let.VariableType)
	}
}

func TestMismatchedNumericOperandsFail(t *testing.T) {
	analyzeExpectError(t, `LET x = 1 + 1.0;`)
}

func TestAndOrRequireBoolean(t *testing.T) {
	analyzeExpectError(t, `LET x = 1 AND TRUE;`)
}

func TestUnknownIdentifierFails(t *testing.T) {
	analyzeExpectError(t, `LET x = y;`)
}

func TestUnknownTypeNameFails(t *testing.T) {
	analyzeExpectError(t, `LET x: Bogus = 1;`)
}
