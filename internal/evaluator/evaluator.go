// Package evaluator implements the tree-walk evaluator of spec §4.4. It
// consumes the AST directly — independent of the analyzer, which produces a
// separate typed IR — and executes it against a runtime scope of
// internal/runtime values.
package evaluator

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cwbudde/go-dynl/internal/ast"
	"github.com/cwbudde/go-dynl/internal/diag"
	"github.com/cwbudde/go-dynl/internal/runtime"
	"github.com/cwbudde/go-dynl/internal/scope"
)

// Error is an evaluate-stage failure carrying a message and the offending
// AST node's position.
type Error struct {
	*diag.Error
	Node ast.Node
}

func newError(node ast.Node, source, format string, args ...any) *Error {
	return &Error{diag.New(diag.Evaluate, fmt.Sprintf(format, args...), node.Pos(), source), node}
}

// Evaluator walks an AST, threading a current *scope.Scope[runtime.Value].
// Per §5 "Concurrency & resource model", this current-scope pointer is
// mutable state owned by the Evaluator; an Evaluator must not be shared
// across goroutines.
type Evaluator struct {
	source   string
	scope    *scope.Scope[runtime.Value]
	maxDepth int
	trace    func(TraceEvent)
}

// TraceEvent is one entry of an optional execution trace: the AST node kind,
// its source position, and a Result holding the rendered error when the
// statement failed, or the printed escaping value when a Return escaped from
// it. Result is empty for every other statement.
// The CLI's `run --trace-query` flag renders a stream of these as JSON lines
// via tidwall/sjson and filters them with tidwall/gjson path expressions.
type TraceEvent struct {
	Kind   string
	Line   int
	Column int
	Result string
}

// Option configures an Evaluator at construction time.
type Option func(*Evaluator)

// WithScope overrides the initial runtime scope (defaults to
// runtime.NewBuiltinScope(print)).
func WithScope(s *scope.Scope[runtime.Value]) Option {
	return func(e *Evaluator) { e.scope = s }
}

// WithMaxDepth overrides the prototype-chain depth cap passed to
// runtime.LookupMember (defaults to runtime.DefaultMaxPrototypeDepth).
func WithMaxDepth(n int) Option {
	return func(e *Evaluator) { e.maxDepth = n }
}

// WithTrace registers a callback invoked once per top-level statement
// executed, in source order. Nested statements (inside If/For/Def bodies)
// are not traced separately — only the statements run by Evaluate's own
// top-level loop.
func WithTrace(fn func(TraceEvent)) Option {
	return func(e *Evaluator) { e.trace = fn }
}

// New creates an Evaluator over source (used only for error rendering),
// with the built-in runtime scope (wired to print) unless overridden by a
// WithScope Option.
func New(source string, print runtime.Printer, opts ...Option) *Evaluator {
	e := &Evaluator{source: source, scope: runtime.NewBuiltinScope(print), maxDepth: runtime.DefaultMaxPrototypeDepth}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// signal carries a Return escape up through statement execution, per §9
// "Return as non-local escape": a dedicated sum threaded up each statement
// loop rather than a panic or an error used for control flow.
type signal struct {
	active bool
	value  runtime.Value
	node   ast.Node // the Return node, for the top-level "outside function" message
}

// Evaluate runs src's statements in the Evaluator's current scope. A Return
// that escapes past Source is reported as "return outside of function"
// (§4.4), matching end-to-end scenario 6 and the boundary behavior that
// duplicate LET in the same scope fails at evaluate time.
func (e *Evaluator) Evaluate(src *ast.Source) (runtime.Value, error) {
	for _, stmt := range src.Statements {
		sig, err := e.execStmt(stmt)
		if e.trace != nil {
			e.trace(newTraceEvent(stmt, sig, err))
		}
		if err != nil {
			return nil, err
		}
		if sig.active {
			return nil, newError(sig.node, e.source, "return outside of function")
		}
	}
	return runtime.Null(), nil
}

func newTraceEvent(stmt ast.Stmt, sig signal, err error) TraceEvent {
	pos := stmt.Pos()
	ev := TraceEvent{Kind: fmt.Sprintf("%T", stmt), Line: pos.Line, Column: pos.Column}
	switch {
	case err != nil:
		ev.Result = "<error: " + err.Error() + ">"
	case sig.active && sig.value != nil:
		ev.Result = sig.value.String()
	}
	return ev
}

func (e *Evaluator) execStmts(stmts []ast.Stmt) (signal, error) {
	for _, stmt := range stmts {
		sig, err := e.execStmt(stmt)
		if err != nil {
			return signal{}, err
		}
		if sig.active {
			return sig, nil
		}
	}
	return signal{}, nil
}

func (e *Evaluator) execStmt(stmt ast.Stmt) (signal, error) {
	switch s := stmt.(type) {
	case *ast.Let:
		return signal{}, e.execLet(s)
	case *ast.Def:
		return signal{}, e.execDef(s)
	case *ast.If:
		return e.execIf(s)
	case *ast.For:
		return e.execFor(s)
	case *ast.Return:
		return e.execReturn(s)
	case *ast.ExpressionStmt:
		_, err := e.evalExpr(s.Expr)
		return signal{}, err
	case *ast.Assignment:
		return signal{}, e.execAssignment(s)
	default:
		return signal{}, newError(stmt, e.source, "unknown statement node %T", stmt)
	}
}

// execLet implements §4.4 "Let": forbids redefinition in the current scope;
// evaluates the optional value, else binds Primitive(null).
func (e *Evaluator) execLet(l *ast.Let) error {
	value := runtime.Value(runtime.Null())
	if l.Value != nil {
		v, err := e.evalExpr(l.Value)
		if err != nil {
			return err
		}
		value = v
	}
	if err := e.scope.Define(l.Name, value); err != nil {
		return newError(l, e.source, "%v", err)
	}
	return nil
}

// execDef implements §4.4 "Def": binds a Function whose closure captures
// the defining scope.
func (e *Evaluator) execDef(d *ast.Def) error {
	capturedScope := e.scope
	fn := &runtime.Function{Name: d.Name, Invoke: func(args []runtime.Value) (runtime.Value, error) {
		return e.invokeDef(d, capturedScope, args)
	}}
	if err := e.scope.Define(d.Name, fn); err != nil {
		return newError(d, e.source, "%v", err)
	}
	return nil
}

// invokeDef runs a plain (non-method) function's body: verifies arity,
// opens a parameter scope as a child of capturedScope, binds each
// parameter (rejecting duplicates), opens a body scope, runs the body, and
// returns Primitive(null) if no explicit return escapes.
func (e *Evaluator) invokeDef(d *ast.Def, capturedScope *scope.Scope[runtime.Value], args []runtime.Value) (runtime.Value, error) {
	if len(args) != len(d.Params) {
		return nil, fmt.Errorf("%s expects %d argument(s), got %d", d.Name, len(d.Params), len(args))
	}

	paramScope := capturedScope.NewChild()
	for i, p := range d.Params {
		if err := paramScope.Define(p.Name, args[i]); err != nil {
			return nil, fmt.Errorf("%v", err)
		}
	}

	bodyScope := paramScope.NewChild()
	prevScope := e.scope
	e.scope = bodyScope
	sig, err := e.execStmts(d.Body)
	e.scope = prevScope
	if err != nil {
		return nil, err
	}
	if sig.active {
		return sig.value, nil
	}
	return runtime.Null(), nil
}

// execIf implements §4.4 "If": evaluates the condition, which must be a
// boolean-payload Primitive; selects a branch; evaluates it in a fresh
// scope, restored on every exit path including a Return escape.
func (e *Evaluator) execIf(i *ast.If) (signal, error) {
	condVal, err := e.evalExpr(i.Cond)
	if err != nil {
		return signal{}, err
	}
	cond, ok := condVal.(*runtime.Primitive)
	if !ok || cond.Kind != runtime.BoolPayload {
		return signal{}, newError(i.Cond, e.source, "condition must evaluate to a boolean")
	}

	body := i.ElseBody
	if cond.Bool {
		body = i.ThenBody
	}
	if !cond.Bool && i.ElseBody == nil {
		return signal{}, nil
	}

	outer := e.scope
	e.scope = outer.NewChild()
	defer func() { e.scope = outer }()

	return e.execStmts(body)
}

// execFor implements §4.4 "For": evaluates the iterable expression, which
// must be an Iterable-payload Primitive; for each element, a fresh
// iteration scope binds the loop variable, then a body scope executes the
// body.
func (e *Evaluator) execFor(f *ast.For) (signal, error) {
	iterVal, err := e.evalExpr(f.Expr)
	if err != nil {
		return signal{}, err
	}
	iter, ok := iterVal.(*runtime.Primitive)
	if !ok || iter.Kind != runtime.IterablePayload {
		return signal{}, newError(f.Expr, e.source, "for expression must be iterable")
	}

	outer := e.scope
	defer func() { e.scope = outer }()

	for _, elem := range iter.Iter {
		iterScope := outer.NewChild()
		if err := iterScope.Define(f.Name, elem); err != nil {
			return signal{}, newError(f, e.source, "%v", err)
		}
		e.scope = iterScope.NewChild()
		sig, err := e.execStmts(f.Body)
		if err != nil {
			return signal{}, err
		}
		if sig.active {
			return sig, nil
		}
	}
	return signal{}, nil
}

// execReturn implements §4.4 "Return": evaluates the optional value (else
// Primitive(null)) and escapes.
func (e *Evaluator) execReturn(r *ast.Return) (signal, error) {
	value := runtime.Value(runtime.Null())
	if r.Value != nil {
		v, err := e.evalExpr(r.Value)
		if err != nil {
			return signal{}, err
		}
		value = v
	}
	return signal{active: true, value: value, node: r}, nil
}

// execAssignment implements §4.4 "Assignment": Variable writes to the
// owning scope via assign; Property requires an ObjectValue receiver and
// writes via that scope's assign.
func (e *Evaluator) execAssignment(asg *ast.Assignment) error {
	value, err := e.evalExpr(asg.Value)
	if err != nil {
		return err
	}

	switch target := asg.Target.(type) {
	case *ast.Variable:
		if err := e.scope.Assign(target.Name, value); err != nil {
			return newError(target, e.source, "%v", err)
		}
		return nil

	case *ast.Property:
		receiverVal, err := e.evalExpr(target.Receiver)
		if err != nil {
			return err
		}
		obj, ok := receiverVal.(*runtime.ObjectValue)
		if !ok {
			return newError(target, e.source, "assignment receiver is not an object")
		}
		if err := obj.Scope.Assign(target.Name, value); err != nil {
			return newError(target, e.source, "%v", err)
		}
		return nil

	default:
		return newError(asg, e.source, "invalid assignment target")
	}
}

func (e *Evaluator) evalExpr(expr ast.Expr) (runtime.Value, error) {
	switch ex := expr.(type) {
	case *ast.Literal:
		return e.evalLiteral(ex)
	case *ast.Group:
		return e.evalExpr(ex.Expr)
	case *ast.Binary:
		return e.evalBinary(ex)
	case *ast.Variable:
		v, ok := e.scope.Resolve(ex.Name, false)
		if !ok {
			return nil, newError(ex, e.source, "unknown identifier %q", ex.Name)
		}
		return v, nil
	case *ast.Property:
		return e.evalProperty(ex)
	case *ast.Function:
		return e.evalFunctionCall(ex)
	case *ast.Method:
		return e.evalMethodCall(ex)
	case *ast.ObjectExpr:
		return e.evalObjectExpr(ex)
	default:
		return nil, newError(expr, e.source, "unknown expression node %T", expr)
	}
}

// evalLiteral decodes a Literal's source-spelling payload into a runtime
// value per its kind.
func (e *Evaluator) evalLiteral(l *ast.Literal) (runtime.Value, error) {
	switch l.Kind {
	case ast.NilLiteral:
		return runtime.Null(), nil
	case ast.BoolLiteral:
		return runtime.Bool(l.Value == "true"), nil
	case ast.IntegerLiteral:
		i, ok := new(big.Int).SetString(strings.TrimPrefix(l.Value, "+"), 10)
		if !ok {
			return nil, newError(l, e.source, "malformed integer literal %q", l.Value)
		}
		return runtime.Integer(i), nil
	case ast.DecimalLiteral:
		d, err := decimal.NewFromString(l.Value)
		if err != nil {
			return nil, newError(l, e.source, "malformed decimal literal %q", l.Value)
		}
		return runtime.Decimal(d), nil
	case ast.CharacterLiteral:
		r := []rune(l.Value)
		if len(r) != 1 {
			return nil, newError(l, e.source, "malformed character literal %q", l.Value)
		}
		return runtime.Character(r[0]), nil
	case ast.StringLiteral:
		return runtime.String(l.Value), nil
	default:
		return nil, newError(l, e.source, "unknown literal kind %d", l.Kind)
	}
}

func asPrimitive(v runtime.Value) (*runtime.Primitive, bool) {
	p, ok := v.(*runtime.Primitive)
	return p, ok
}

// evalBinary implements §4.4 "Binary operators".
func (e *Evaluator) evalBinary(b *ast.Binary) (runtime.Value, error) {
	switch b.Operator {
	case "AND":
		return e.evalShortCircuit(b, false)
	case "OR":
		return e.evalShortCircuit(b, true)
	}

	left, err := e.evalExpr(b.Left)
	if err != nil {
		return nil, err
	}
	right, err := e.evalExpr(b.Right)
	if err != nil {
		return nil, err
	}

	switch b.Operator {
	case "+":
		return e.evalAdd(b, left, right)
	case "-", "*":
		return e.evalArith(b, left, right)
	case "/":
		return e.evalDiv(b, left, right)
	case "==":
		return runtime.Bool(runtime.Equal(left, right)), nil
	case "!=":
		return runtime.Bool(!runtime.Equal(left, right)), nil
	case "<", "<=", ">", ">=":
		return e.evalOrder(b, left, right)
	default:
		return nil, newError(b, e.source, "unknown binary operator %q", b.Operator)
	}
}

// evalShortCircuit implements AND/OR: shortCircuitOn is the left-operand
// boolean value that, when observed, skips evaluating the right operand
// entirely (so its type errors are never raised).
func (e *Evaluator) evalShortCircuit(b *ast.Binary, shortCircuitOn bool) (runtime.Value, error) {
	leftVal, err := e.evalExpr(b.Left)
	if err != nil {
		return nil, err
	}
	left, ok := asPrimitive(leftVal)
	if !ok || left.Kind != runtime.BoolPayload {
		return nil, newError(b.Left, e.source, "%q requires boolean operands", b.Operator)
	}
	if left.Bool == shortCircuitOn {
		return runtime.Bool(shortCircuitOn), nil
	}

	rightVal, err := e.evalExpr(b.Right)
	if err != nil {
		return nil, err
	}
	right, ok := asPrimitive(rightVal)
	if !ok || right.Kind != runtime.BoolPayload {
		return nil, newError(b.Right, e.source, "%q requires boolean operands", b.Operator)
	}
	return runtime.Bool(right.Bool), nil
}

// evalAdd implements `+`: string concatenation (by printed form) if either
// operand is string-valued; else integer-integer or decimal-decimal add.
func (e *Evaluator) evalAdd(b *ast.Binary, leftVal, rightVal runtime.Value) (runtime.Value, error) {
	left, lok := asPrimitive(leftVal)
	right, rok := asPrimitive(rightVal)
	if lok && left.Kind == runtime.StringPayload || rok && right.Kind == runtime.StringPayload {
		return runtime.String(leftVal.String() + rightVal.String()), nil
	}
	if !lok || !rok {
		return nil, newError(b, e.source, "operands of %q must be primitives", b.Operator)
	}
	switch {
	case left.Kind == runtime.IntegerPayload && right.Kind == runtime.IntegerPayload:
		return runtime.Integer(runtime.AddInt(left.Int, right.Int)), nil
	case left.Kind == runtime.DecimalPayload && right.Kind == runtime.DecimalPayload:
		return runtime.Decimal(runtime.AddDec(left.Dec, right.Dec)), nil
	default:
		return nil, newError(b, e.source, "operands of %q must both be INTEGER or both be DECIMAL", b.Operator)
	}
}

// evalArith implements `-` and `*`: both operands must be the same numeric
// kind.
func (e *Evaluator) evalArith(b *ast.Binary, leftVal, rightVal runtime.Value) (runtime.Value, error) {
	left, lok := asPrimitive(leftVal)
	right, rok := asPrimitive(rightVal)
	if !lok || !rok {
		return nil, newError(b, e.source, "operands of %q must be primitives", b.Operator)
	}
	switch {
	case left.Kind == runtime.IntegerPayload && right.Kind == runtime.IntegerPayload:
		if b.Operator == "-" {
			return runtime.Integer(runtime.SubInt(left.Int, right.Int)), nil
		}
		return runtime.Integer(runtime.MulInt(left.Int, right.Int)), nil
	case left.Kind == runtime.DecimalPayload && right.Kind == runtime.DecimalPayload:
		if b.Operator == "-" {
			return runtime.Decimal(runtime.SubDec(left.Dec, right.Dec)), nil
		}
		return runtime.Decimal(runtime.MulDec(left.Dec, right.Dec)), nil
	default:
		return nil, newError(b, e.source, "operands of %q must both be INTEGER or both be DECIMAL", b.Operator)
	}
}

// evalDiv implements `/`: floor division for integers, banker's-rounding
// division for decimals; division by zero fails.
func (e *Evaluator) evalDiv(b *ast.Binary, leftVal, rightVal runtime.Value) (runtime.Value, error) {
	left, lok := asPrimitive(leftVal)
	right, rok := asPrimitive(rightVal)
	if !lok || !rok {
		return nil, newError(b, e.source, "operands of %q must be primitives", b.Operator)
	}
	switch {
	case left.Kind == runtime.IntegerPayload && right.Kind == runtime.IntegerPayload:
		q, err := runtime.DivInt(left.Int, right.Int)
		if err != nil {
			return nil, newError(b, e.source, "%v", err)
		}
		return runtime.Integer(q), nil
	case left.Kind == runtime.DecimalPayload && right.Kind == runtime.DecimalPayload:
		q, err := runtime.DivDec(left.Dec, right.Dec)
		if err != nil {
			return nil, newError(b, e.source, "%v", err)
		}
		return runtime.Decimal(q), nil
	default:
		return nil, newError(b, e.source, "operands of %q must both be INTEGER or both be DECIMAL", b.Operator)
	}
}

// evalOrder implements `< <= > >=`: both operands must be primitives of the
// same payload class and host-comparable.
func (e *Evaluator) evalOrder(b *ast.Binary, leftVal, rightVal runtime.Value) (runtime.Value, error) {
	cmp, err := runtime.Compare(leftVal, rightVal)
	if err != nil {
		return nil, newError(b, e.source, "%v", err)
	}
	switch b.Operator {
	case "<":
		return runtime.Bool(cmp < 0), nil
	case "<=":
		return runtime.Bool(cmp <= 0), nil
	case ">":
		return runtime.Bool(cmp > 0), nil
	default: // ">="
		return runtime.Bool(cmp >= 0), nil
	}
}

// evalProperty implements §4.4's non-call property read, walking the
// prototype chain via runtime.LookupMember.
func (e *Evaluator) evalProperty(p *ast.Property) (runtime.Value, error) {
	receiverVal, err := e.evalExpr(p.Receiver)
	if err != nil {
		return nil, err
	}
	obj, ok := receiverVal.(*runtime.ObjectValue)
	if !ok {
		return nil, newError(p, e.source, "property receiver is not an object")
	}
	v, found, err := runtime.LookupMember(obj, p.Name, e.maxDepth)
	if err != nil {
		return nil, newError(p, e.source, "%v", err)
	}
	if !found {
		return nil, newError(p, e.source, "unknown property %q", p.Name)
	}
	return v, nil
}

// evalFunctionCall implements §4.4 "Function call": evaluates arguments
// left-to-right, then invokes the resolved closure.
func (e *Evaluator) evalFunctionCall(f *ast.Function) (runtime.Value, error) {
	v, ok := e.scope.Resolve(f.Name, false)
	if !ok {
		return nil, newError(f, e.source, "unknown identifier or function %q", f.Name)
	}
	fn, ok := v.(*runtime.Function)
	if !ok {
		return nil, newError(f, e.source, "%q is not a function", f.Name)
	}

	args := make([]runtime.Value, len(f.Args))
	for i, argExpr := range f.Args {
		val, err := e.evalExpr(argExpr)
		if err != nil {
			return nil, err
		}
		args[i] = val
	}

	result, err := fn.Invoke(args)
	if err != nil {
		return nil, newError(f, e.source, "%v", err)
	}
	return result, nil
}

// evalMethodCall implements §4.4's "Property / Method lookup with
// prototype chain" for the call form: looks up the method starting at the
// receiver, then prepends the receiver as an implicit first argument.
func (e *Evaluator) evalMethodCall(m *ast.Method) (runtime.Value, error) {
	receiverVal, err := e.evalExpr(m.Receiver)
	if err != nil {
		return nil, err
	}
	obj, ok := receiverVal.(*runtime.ObjectValue)
	if !ok {
		return nil, newError(m, e.source, "method receiver is not an object")
	}

	member, found, err := runtime.LookupMember(obj, m.Name, e.maxDepth)
	if err != nil {
		return nil, newError(m, e.source, "%v", err)
	}
	if !found {
		return nil, newError(m, e.source, "unknown method %q", m.Name)
	}
	fn, ok := member.(*runtime.Function)
	if !ok {
		return nil, newError(m, e.source, "%q is not callable", m.Name)
	}

	args := make([]runtime.Value, 0, len(m.Args)+1)
	args = append(args, obj)
	for _, argExpr := range m.Args {
		val, err := e.evalExpr(argExpr)
		if err != nil {
			return nil, err
		}
		args = append(args, val)
	}

	result, err := fn.Invoke(args)
	if err != nil {
		return nil, newError(m, e.source, "%v", err)
	}
	return result, nil
}

// evalObjectExpr implements §4.4 "ObjectExpr": allocates an ObjectValue
// with a scope parented on the current scope, evaluates fields in the
// object's scope, then defines methods as functions whose closures capture
// the object's scope.
func (e *Evaluator) evalObjectExpr(o *ast.ObjectExpr) (runtime.Value, error) {
	obj := runtime.NewObjectValue(o.Name, e.scope)

	outer := e.scope
	e.scope = obj.Scope
	defer func() { e.scope = outer }()

	for _, field := range o.Fields {
		if err := e.execLet(field); err != nil {
			return nil, err
		}
	}

	for _, method := range o.Methods {
		for _, p := range method.Params {
			if p.Name == "this" {
				return nil, newError(method, e.source, "this is reserved and cannot be used as an explicit parameter name")
			}
		}
		fn := e.evalMethodDef(method, obj.Scope)
		if err := obj.Scope.Define(method.Name, fn); err != nil {
			return nil, newError(method, e.source, "%v", err)
		}
	}

	return obj, nil
}

// evalMethodDef builds the Function value for one ObjectExpr method. Its
// Invoke expects `receiver :: args…` (§4.4): args[0] is the receiver,
// bound to "this" in the parameter scope; the remainder are the method's
// declared parameters.
func (e *Evaluator) evalMethodDef(d *ast.Def, capturedScope *scope.Scope[runtime.Value]) *runtime.Function {
	return &runtime.Function{Name: d.Name, Invoke: func(args []runtime.Value) (runtime.Value, error) {
		if len(args) < 1 {
			return nil, fmt.Errorf("%s missing implicit receiver", d.Name)
		}
		receiver := args[0]
		callArgs := args[1:]
		if len(callArgs) != len(d.Params) {
			return nil, fmt.Errorf("%s expects %d argument(s), got %d", d.Name, len(d.Params), len(callArgs))
		}

		paramScope := capturedScope.NewChild()
		if err := paramScope.Define("this", receiver); err != nil {
			return nil, err
		}
		for i, p := range d.Params {
			if err := paramScope.Define(p.Name, callArgs[i]); err != nil {
				return nil, err
			}
		}

		bodyScope := paramScope.NewChild()
		prevScope := e.scope
		e.scope = bodyScope
		sig, err := e.execStmts(d.Body)
		e.scope = prevScope
		if err != nil {
			return nil, err
		}
		if sig.active {
			return sig.value, nil
		}
		return runtime.Null(), nil
	}}
}
