// Package analyzer implements the AST→IR pass of spec §4.3: name
// resolution and type checking, threading a current types.Type scope. The
// teacher calls its equivalent package "semantic"; this module uses
// "analyzer" since that is the noun spec.md itself uses throughout.
package analyzer

import (
	"fmt"

	"github.com/cwbudde/go-dynl/internal/ast"
	"github.com/cwbudde/go-dynl/internal/diag"
	"github.com/cwbudde/go-dynl/internal/ir"
	"github.com/cwbudde/go-dynl/internal/scope"
	"github.com/cwbudde/go-dynl/internal/types"
)

// Error is an analyze-stage failure carrying a message and the offending
// AST node's position.
type Error struct {
	*diag.Error
	Node ast.Node
}

func newError(node ast.Node, source, format string, args ...any) *Error {
	return &Error{diag.New(diag.Analyze, fmt.Sprintf(format, args...), node.Pos(), source), node}
}

// returnSlot is the synthetic "$RETURN" binding name the analyzer uses to
// track the enclosing function's declared return type (§4.3 "Def... binds
// a synthetic $RETURN entry to the return type").
const returnSlot = "$RETURN"

// Analyzer walks an AST, threading a current *scope.Scope[*types.Type].
type Analyzer struct {
	source string
	scope  *scope.Scope[*types.Type]

	// receiverType is non-nil while analyzing a Def that is one of the
	// methods of an ObjectExpr currently being analyzed; it is bound to
	// "this" in the method's parameter scope (§4.4 "binds the receiver
	// under this in the callee's parameter scope").
	receiverType *types.Type
}

// Option configures an Analyzer at construction time.
type Option func(*Analyzer)

// WithTypeScope overrides the initial type scope (defaults to
// NewBuiltinTypeScope()).
func WithTypeScope(s *scope.Scope[*types.Type]) Option {
	return func(a *Analyzer) { a.scope = s }
}

// New creates an Analyzer over source (used only for error rendering),
// with the built-in type scope unless overridden by an Option.
func New(source string, opts ...Option) *Analyzer {
	a := &Analyzer{source: source, scope: NewBuiltinTypeScope()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze runs the analyzer over src, producing an *ir.Source or the first
// *Error encountered.
func (a *Analyzer) Analyze(src *ast.Source) (*ir.Source, error) {
	out := &ir.Source{}
	for _, stmt := range src.Statements {
		irStmt, err := a.analyzeStmt(stmt)
		if err != nil {
			return nil, err
		}
		out.Statements = append(out.Statements, irStmt)
	}
	return out, nil
}

func (a *Analyzer) analyzeStmt(stmt ast.Stmt) (ir.Stmt, error) {
	switch s := stmt.(type) {
	case *ast.Let:
		return a.analyzeLet(s)
	case *ast.Def:
		return a.analyzeDef(s)
	case *ast.If:
		return a.analyzeIf(s)
	case *ast.For:
		return a.analyzeFor(s)
	case *ast.Return:
		return a.analyzeReturn(s)
	case *ast.ExpressionStmt:
		expr, err := a.analyzeExpr(s.Expr)
		if err != nil {
			return nil, err
		}
		return &ir.ExpressionStmt{Expr: expr}, nil
	case *ast.Assignment:
		return a.analyzeAssignment(s)
	default:
		return nil, newError(stmt, a.source, "unknown statement node %T", stmt)
	}
}

func (a *Analyzer) resolveTypeName(node ast.Node, name string) (*types.Type, error) {
	t, ok := types.Lookup(name)
	if !ok {
		return nil, newError(node, a.source, "unknown type name %q", name)
	}
	return t, nil
}

func (a *Analyzer) analyzeLet(l *ast.Let) (*ir.Let, error) {
	if _, ok := a.scope.Resolve(l.Name, true); ok {
		return nil, newError(l, a.source, "duplicate name %q in this scope", l.Name)
	}

	var declared *types.Type
	if l.HasDeclaredType {
		t, err := a.resolveTypeName(l, l.DeclaredType)
		if err != nil {
			return nil, err
		}
		declared = t
	}

	var value ir.Expr
	if l.Value != nil {
		v, err := a.analyzeExpr(l.Value)
		if err != nil {
			return nil, err
		}
		value = v
	}

	var varType *types.Type
	switch {
	case declared != nil:
		varType = declared
	case value != nil:
		varType = value.Type()
	default:
		varType = types.Dynamic
	}

	if declared != nil && value != nil && !types.LessEq(value.Type(), declared) {
		return nil, newError(l, a.source, "cannot assign %s to declared type %s", value.Type(), declared)
	}

	if err := a.scope.Define(l.Name, varType); err != nil {
		return nil, newError(l, a.source, "%v", err)
	}

	return &ir.Let{Name: l.Name, VariableType: varType, Value: value}, nil
}

func (a *Analyzer) analyzeDef(d *ast.Def) (*ir.Def, error) {
	if _, ok := a.scope.Resolve(d.Name, true); ok {
		return nil, newError(d, a.source, "duplicate name %q in this scope", d.Name)
	}

	paramTypes := make([]*types.Type, len(d.Params))
	irParams := make([]ir.Param, len(d.Params))
	for i, p := range d.Params {
		pt := types.Dynamic
		if p.HasDeclaredType {
			t, err := a.resolveTypeName(d, p.TypeName)
			if err != nil {
				return nil, err
			}
			pt = t
		}
		paramTypes[i] = pt
		irParams[i] = ir.Param{Name: p.Name, Type: pt}
	}

	returnType := types.Dynamic
	if d.HasReturn {
		t, err := a.resolveTypeName(d, d.ReturnType)
		if err != nil {
			return nil, err
		}
		returnType = t
	}

	funcType := types.NewFunction(paramTypes, returnType)

	// Bound in the outer scope before the body is visited, so recursive
	// calls to this Def resolve (§4.3).
	if err := a.scope.Define(d.Name, funcType); err != nil {
		return nil, newError(d, a.source, "%v", err)
	}

	for _, p := range d.Params {
		if p.Name == "this" {
			return nil, newError(d, a.source, "this is reserved and cannot be used as an explicit parameter name")
		}
	}

	outer := a.scope
	receiver := a.receiverType
	a.receiverType = nil
	a.scope = outer.NewChild()
	defer func() { a.scope = outer; a.receiverType = receiver }()

	if receiver != nil {
		if err := a.scope.Define("this", receiver); err != nil {
			return nil, newError(d, a.source, "%v", err)
		}
	}
	for i, p := range d.Params {
		if err := a.scope.Define(p.Name, paramTypes[i]); err != nil {
			return nil, newError(d, a.source, "%v", err)
		}
	}
	if err := a.scope.Define(returnSlot, returnType); err != nil {
		return nil, newError(d, a.source, "%v", err)
	}

	body, err := a.analyzeStmts(d.Body)
	if err != nil {
		return nil, err
	}

	return &ir.Def{Name: d.Name, Params: irParams, ReturnType: returnType, FuncType: funcType, Body: body}, nil
}

func (a *Analyzer) analyzeStmts(stmts []ast.Stmt) ([]ir.Stmt, error) {
	out := make([]ir.Stmt, 0, len(stmts))
	for _, s := range stmts {
		irStmt, err := a.analyzeStmt(s)
		if err != nil {
			return nil, err
		}
		out = append(out, irStmt)
	}
	return out, nil
}

func (a *Analyzer) analyzeIf(i *ast.If) (*ir.If, error) {
	cond, err := a.analyzeExpr(i.Cond)
	if err != nil {
		return nil, err
	}
	if !types.LessEq(cond.Type(), types.Boolean) {
		return nil, newError(i.Cond, a.source, "condition must be a subtype of BOOLEAN, got %s", cond.Type())
	}

	outer := a.scope
	a.scope = outer.NewChild()
	thenBody, err := a.analyzeStmts(i.ThenBody)
	a.scope = outer
	if err != nil {
		return nil, err
	}

	var elseBody []ir.Stmt
	if i.ElseBody != nil {
		a.scope = outer.NewChild()
		elseBody, err = a.analyzeStmts(i.ElseBody)
		a.scope = outer
		if err != nil {
			return nil, err
		}
	}

	return &ir.If{Cond: cond, ThenBody: thenBody, ElseBody: elseBody}, nil
}

func (a *Analyzer) analyzeFor(f *ast.For) (*ir.For, error) {
	iter, err := a.analyzeExpr(f.Expr)
	if err != nil {
		return nil, err
	}
	if iter.Type().Kind == types.KindPrimitive && iter.Type().Prim == types.NIL {
		return nil, newError(f.Expr, a.source, "iterable expression must not have type NIL")
	}

	outer := a.scope
	a.scope = outer.NewChild()
	defer func() { a.scope = outer }()

	// §9(a): the loop variable is bound to INTEGER unconditionally,
	// regardless of the iterable's element type. Kept as specified.
	if err := a.scope.Define(f.Name, types.Integer); err != nil {
		return nil, newError(f, a.source, "%v", err)
	}

	body, err := a.analyzeStmts(f.Body)
	if err != nil {
		return nil, err
	}

	return &ir.For{Name: f.Name, Expr: iter, Body: body}, nil
}

func (a *Analyzer) analyzeReturn(r *ast.Return) (*ir.Return, error) {
	expected, ok := a.scope.Resolve(returnSlot, false)
	if !ok {
		return nil, newError(r, a.source, "RETURN outside function")
	}

	var value ir.Expr
	valueType := types.Nil
	if r.Value != nil {
		v, err := a.analyzeExpr(r.Value)
		if err != nil {
			return nil, err
		}
		value = v
		valueType = v.Type()
	}

	if !types.LessEq(valueType, expected) {
		return nil, newError(r, a.source, "return value of type %s is not a subtype of declared return type %s", valueType, expected)
	}

	return &ir.Return{Value: value}, nil
}

func (a *Analyzer) analyzeAssignment(asg *ast.Assignment) (ir.Stmt, error) {
	value, err := a.analyzeExpr(asg.Value)
	if err != nil {
		return nil, err
	}

	switch target := asg.Target.(type) {
	case *ast.Variable:
		varType, ok := a.scope.Resolve(target.Name, false)
		if !ok {
			return nil, newError(target, a.source, "unknown identifier %q", target.Name)
		}
		if !types.LessEq(value.Type(), varType) {
			return nil, newError(asg, a.source, "cannot assign %s to variable of type %s", value.Type(), varType)
		}
		return &ir.AssignmentVariable{Name: target.Name, Value: value}, nil

	case *ast.Property:
		receiver, err := a.analyzeExpr(target.Receiver)
		if err != nil {
			return nil, err
		}
		memberType, err := a.resolveOwnScopeProperty(target, receiver.Type())
		if err != nil {
			return nil, err
		}
		if !types.LessEq(value.Type(), memberType) {
			return nil, newError(asg, a.source, "cannot assign %s to property of type %s", value.Type(), memberType)
		}
		return &ir.AssignmentProperty{Receiver: receiver, Name: target.Name, Value: value}, nil

	default:
		return nil, newError(asg, a.source, "invalid assignment target")
	}
}

// resolveOwnScopeProperty implements the analyzer's Property rule: the
// receiver must be an object type or DYNAMIC; for object types the name
// must resolve within the object's own scope (no prototype traversal at
// analyze time, §9(b)); for DYNAMIC the member type is DYNAMIC.
func (a *Analyzer) resolveOwnScopeProperty(node ast.Node, receiverType *types.Type) (*types.Type, error) {
	if receiverType.Kind == types.KindPrimitive && receiverType.Prim == types.DYNAMIC {
		return types.Dynamic, nil
	}
	if receiverType.Kind != types.KindObject {
		return nil, newError(node, a.source, "receiver must be an object type or DYNAMIC, got %s", receiverType)
	}
	memberType, ok := receiverType.Obj.Scope.Resolve(propertyName(node), true)
	if !ok {
		return nil, newError(node, a.source, "property %q not found on object type %s", propertyName(node), receiverType)
	}
	return memberType, nil
}

func propertyName(node ast.Node) string {
	switch n := node.(type) {
	case *ast.Property:
		return n.Name
	case *ast.Method:
		return n.Name
	default:
		return ""
	}
}

func (a *Analyzer) analyzeExpr(expr ast.Expr) (ir.Expr, error) {
	switch e := expr.(type) {
	case *ast.Literal:
		return a.analyzeLiteral(e)
	case *ast.Group:
		inner, err := a.analyzeExpr(e.Expr)
		if err != nil {
			return nil, err
		}
		return &ir.Group{Inner: inner}, nil
	case *ast.Binary:
		return a.analyzeBinary(e)
	case *ast.Variable:
		t, ok := a.scope.Resolve(e.Name, false)
		if !ok {
			return nil, newError(e, a.source, "unknown identifier %q", e.Name)
		}
		return &ir.Variable{Name: e.Name, Typ: t}, nil
	case *ast.Property:
		receiver, err := a.analyzeExpr(e.Receiver)
		if err != nil {
			return nil, err
		}
		memberType, err := a.resolveOwnScopeProperty(e, receiver.Type())
		if err != nil {
			return nil, err
		}
		return &ir.Property{Receiver: receiver, Name: e.Name, Typ: memberType}, nil
	case *ast.Function:
		return a.analyzeFunctionCall(e)
	case *ast.Method:
		return a.analyzeMethodCall(e)
	case *ast.ObjectExpr:
		return a.analyzeObjectExpr(e)
	default:
		return nil, newError(expr, a.source, "unknown expression node %T", expr)
	}
}

func (a *Analyzer) analyzeLiteral(l *ast.Literal) (*ir.Literal, error) {
	var kind ir.LiteralKind
	var t *types.Type
	switch l.Kind {
	case ast.NilLiteral:
		kind, t = ir.NilLiteral, types.Nil
	case ast.BoolLiteral:
		kind, t = ir.BoolLiteral, types.Boolean
	case ast.IntegerLiteral:
		kind, t = ir.IntegerLiteral, types.Integer
	case ast.DecimalLiteral:
		kind, t = ir.DecimalLiteral, types.Decimal
	case ast.CharacterLiteral:
		kind, t = ir.CharacterLiteral, types.Character
	case ast.StringLiteral:
		kind, t = ir.StringLiteral, types.String
	default:
		return nil, newError(l, a.source, "unknown literal kind %d", l.Kind)
	}
	return &ir.Literal{Kind: kind, Value: l.Value, Typ: t}, nil
}

func isDynamic(t *types.Type) bool {
	return t.Kind == types.KindPrimitive && t.Prim == types.DYNAMIC
}

func isNumeric(t *types.Type) bool {
	return t.Kind == types.KindPrimitive && (t.Prim == types.INTEGER || t.Prim == types.DECIMAL)
}

func isString(t *types.Type) bool {
	return t.Kind == types.KindPrimitive && t.Prim == types.STRING
}

func isBoolean(t *types.Type) bool {
	return t.Kind == types.KindPrimitive && t.Prim == types.BOOLEAN
}

func (a *Analyzer) analyzeBinary(b *ast.Binary) (*ir.Binary, error) {
	left, err := a.analyzeExpr(b.Left)
	if err != nil {
		return nil, err
	}
	right, err := a.analyzeExpr(b.Right)
	if err != nil {
		return nil, err
	}

	var resultType *types.Type

	switch b.Operator {
	case "+", "-", "*", "/":
		lt, rt := left.Type(), right.Type()
		switch {
		case isDynamic(lt) && isDynamic(rt):
			resultType = types.Dynamic
		case b.Operator == "+" && (isString(lt) || isString(rt)):
			resultType = types.String
		default:
			if isDynamic(lt) {
				lt = rt
			}
			if isDynamic(rt) {
				rt = lt
			}
			if !isNumeric(lt) || !isNumeric(rt) || lt != rt {
				return nil, newError(b, a.source, "operator %q requires matching INTEGER or DECIMAL operands, got %s and %s", b.Operator, left.Type(), right.Type())
			}
			resultType = lt
		}

	case "==", "!=":
		if !types.LessEq(left.Type(), right.Type()) && !types.LessEq(right.Type(), left.Type()) {
			return nil, newError(b, a.source, "operands of %q must be subtype-compatible, got %s and %s", b.Operator, left.Type(), right.Type())
		}
		resultType = types.Boolean

	case "<", "<=", ">", ">=":
		if !types.LessEq(left.Type(), types.Comparable) || !types.LessEq(right.Type(), types.Comparable) {
			return nil, newError(b, a.source, "operands of %q must be <= COMPARABLE, got %s and %s", b.Operator, left.Type(), right.Type())
		}
		if !types.LessEq(left.Type(), right.Type()) && !types.LessEq(right.Type(), left.Type()) {
			return nil, newError(b, a.source, "operands of %q must be mutually subtype-compatible, got %s and %s", b.Operator, left.Type(), right.Type())
		}
		resultType = types.Boolean

	case "AND", "OR":
		if !isBoolean(left.Type()) || !isBoolean(right.Type()) {
			return nil, newError(b, a.source, "operands of %q must be BOOLEAN, got %s and %s", b.Operator, left.Type(), right.Type())
		}
		resultType = types.Boolean

	default:
		return nil, newError(b, a.source, "unknown binary operator %q", b.Operator)
	}

	return &ir.Binary{Operator: b.Operator, Left: left, Right: right, Typ: resultType}, nil
}

func (a *Analyzer) analyzeFunctionCall(f *ast.Function) (*ir.Function, error) {
	t, ok := a.scope.Resolve(f.Name, false)
	if !ok {
		return nil, newError(f, a.source, "unknown identifier or function %q", f.Name)
	}
	if t.Kind != types.KindFunction {
		return nil, newError(f, a.source, "%q is not a function", f.Name)
	}

	args, err := a.analyzeCallArgs(f, t.Func, f.Args)
	if err != nil {
		return nil, err
	}

	return &ir.Function{Name: f.Name, Args: args, Typ: t.Func.Returns}, nil
}

func (a *Analyzer) analyzeCallArgs(node ast.Node, sig *types.Function, argExprs []ast.Expr) ([]ir.Expr, error) {
	if len(argExprs) != len(sig.Parameters) {
		return nil, newError(node, a.source, "expects %d argument(s), got %d", len(sig.Parameters), len(argExprs))
	}
	args := make([]ir.Expr, len(argExprs))
	for i, argExpr := range argExprs {
		arg, err := a.analyzeExpr(argExpr)
		if err != nil {
			return nil, err
		}
		if !types.LessEq(arg.Type(), sig.Parameters[i]) {
			return nil, newError(argExpr, a.source, "argument %d: cannot pass %s where %s expected", i+1, arg.Type(), sig.Parameters[i])
		}
		args[i] = arg
	}
	return args, nil
}

func (a *Analyzer) analyzeMethodCall(m *ast.Method) (*ir.Method, error) {
	receiver, err := a.analyzeExpr(m.Receiver)
	if err != nil {
		return nil, err
	}

	if isDynamic(receiver.Type()) {
		args := make([]ir.Expr, len(m.Args))
		for i, argExpr := range m.Args {
			arg, err := a.analyzeExpr(argExpr)
			if err != nil {
				return nil, err
			}
			args[i] = arg
		}
		return &ir.Method{Receiver: receiver, Name: m.Name, Args: args, Typ: types.Dynamic}, nil
	}

	memberType, err := a.resolveOwnScopeProperty(m, receiver.Type())
	if err != nil {
		return nil, err
	}
	if memberType.Kind != types.KindFunction {
		return nil, newError(m, a.source, "%q is not callable", m.Name)
	}

	args, err := a.analyzeCallArgs(m, memberType.Func, m.Args)
	if err != nil {
		return nil, err
	}

	return &ir.Method{Receiver: receiver, Name: m.Name, Args: args, Typ: memberType.Func.Returns}, nil
}

func (a *Analyzer) analyzeObjectExpr(o *ast.ObjectExpr) (*ir.ObjectExpr, error) {
	outer := a.scope
	outerReceiver := a.receiverType

	// §4.3 "Creates a fresh ObjectType with a scope whose parent is null" —
	// deliberately un-parented, unlike the evaluator's ObjectValue scope
	// (§4.4), which is parented on the current scope. Field initializers
	// cannot see outer bindings during analysis; this asymmetry with the
	// evaluator is intentional (see Open Question (b) in DESIGN.md).
	objType := types.NewObject(o.Name)

	a.scope = objType.Obj.Scope
	defer func() { a.scope = outer; a.receiverType = outerReceiver }()

	irFields := make([]*ir.Let, len(o.Fields))
	for i, field := range o.Fields {
		irField, err := a.analyzeLet(field)
		if err != nil {
			return nil, err
		}
		irFields[i] = irField
	}

	irMethods := make([]*ir.Def, len(o.Methods))
	for i, method := range o.Methods {
		a.receiverType = objType
		irMethod, err := a.analyzeDef(method)
		if err != nil {
			return nil, err
		}
		irMethods[i] = irMethod
	}

	return &ir.ObjectExpr{Name: o.Name, Fields: irFields, Methods: irMethods, ObjectType: objType}, nil
}
