package analyzer

import (
	"fmt"

	"github.com/cwbudde/go-dynl/internal/scope"
	"github.com/cwbudde/go-dynl/internal/types"
)

// NewBuiltinTypeScope builds the initial type scope of §6 "Built-in
// environment": log/print/debug/range, plus the testing helpers (a string variable, nullary/unary function* entries, and
// an example object with method* entries and a prototype). Named primitive
// types are not bound here; declared type names resolve through
// types.Lookup. This is the
// analyzer-side mirror of runtime.NewBuiltinScope — the two must agree on
// every name so a program that analyzes successfully also evaluates
// against a runtime scope shaped the same way.
func NewBuiltinTypeScope() *scope.Scope[*types.Type] {
	s := scope.New[*types.Type]()

	must := func(name string, t *types.Type) {
		if err := s.Define(name, t); err != nil {
			panic(fmt.Sprintf("builtin type scope: %v", err))
		}
	}

	must("log", types.NewFunction([]*types.Type{types.Any}, types.Dynamic))
	must("print", types.NewFunction([]*types.Type{types.Any}, types.Nil))
	must("debug", types.NewFunction([]*types.Type{types.Any}, types.Nil))
	must("range", types.NewFunction([]*types.Type{types.Integer, types.Integer}, types.Iterable))

	must("variable", types.String)
	must("function0", types.NewFunction(nil, types.Nil))
	must("function1", types.NewFunction([]*types.Type{types.Dynamic}, types.Dynamic))
	must("object", newBuiltinObjectType())

	return s
}

func newBuiltinObjectType() *types.Type {
	root := types.NewObject("BuiltinProto")
	if err := root.Obj.Scope.Define("inherited", types.Integer); err != nil {
		panic(err)
	}

	obj := types.NewObject("BuiltinObject")
	mustDefine := func(name string, t *types.Type) {
		if err := obj.Obj.Scope.Define(name, t); err != nil {
			panic(fmt.Sprintf("builtin object type: %v", err))
		}
	}
	mustDefine("value", types.Integer)
	mustDefine("method0", types.NewFunction(nil, types.Dynamic))
	mustDefine("prototype", root)

	return obj
}
