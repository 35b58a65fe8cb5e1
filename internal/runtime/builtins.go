package runtime

import (
	"fmt"
	"math/big"

	"github.com/cwbudde/go-dynl/internal/scope"
)

// Printer is how log/print/debug emit text; cmd/dynl wires this to
// os.Stdout, tests can capture it by supplying a different sink.
type Printer func(string)

// NewBuiltinScope builds the initial runtime scope of §6 "Built-in
// environment": log/print/debug/range, plus the testing helpers (a string
// variable, nullary/unary function* entries, and an example object with
// method* entries and a prototype).
func NewBuiltinScope(print Printer) *scope.Scope[Value] {
	s := scope.New[Value]()

	must := func(name string, v Value) {
		if err := s.Define(name, v); err != nil {
			panic(fmt.Sprintf("builtin scope: %v", err))
		}
	}

	must("log", &Function{Name: "log", Invoke: func(args []Value) (Value, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("log() expects exactly 1 argument, got %d", len(args))
		}
		print(args[0].String())
		return args[0], nil
	}})

	must("print", &Function{Name: "print", Invoke: func(args []Value) (Value, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("print() expects exactly 1 argument, got %d", len(args))
		}
		print(args[0].String())
		return Null(), nil
	}})

	must("debug", &Function{Name: "debug", Invoke: func(args []Value) (Value, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("debug() expects exactly 1 argument, got %d", len(args))
		}
		print(args[0].String())
		return Null(), nil
	}})

	must("range", &Function{Name: "range", Invoke: func(args []Value) (Value, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("range() expects exactly 2 arguments, got %d", len(args))
		}
		lo, ok := args[0].(*Primitive)
		if !ok || lo.Kind != IntegerPayload {
			return nil, fmt.Errorf("range() expects integer arguments")
		}
		hi, ok := args[1].(*Primitive)
		if !ok || hi.Kind != IntegerPayload {
			return nil, fmt.Errorf("range() expects integer arguments")
		}
		var elems []Value
		i := new(big.Int).Set(lo.Int)
		one := big.NewInt(1)
		for i.Cmp(hi.Int) < 0 {
			elems = append(elems, Integer(new(big.Int).Set(i)))
			i.Add(i, one)
		}
		return Iterable(elems), nil
	}})

	// Testing helpers (§6): a string-typed variable, nullary/unary
	// function* entries, and an example object with method* entries and a
	// prototype, so a caller can probe the built-in environment without
	// re-deriving it from source reading.
	must("variable", String("builtin"))

	must("function0", &Function{Name: "function0", Invoke: func(args []Value) (Value, error) {
		if len(args) != 0 {
			return nil, fmt.Errorf("function0() expects no arguments, got %d", len(args))
		}
		return Null(), nil
	}})

	must("function1", &Function{Name: "function1", Invoke: func(args []Value) (Value, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("function1() expects exactly 1 argument, got %d", len(args))
		}
		return args[0], nil
	}})

	must("object", newBuiltinObject())

	return s
}

// newBuiltinObject builds the example object of §6: a field, a method*
// entry, and a prototype pointing at a second object so the prototype
// chain itself is exercisable from the built-in environment.
func newBuiltinObject() *ObjectValue {
	root := NewObjectValue("BuiltinProto", nil)
	rootMust := func(name string, v Value) {
		if err := root.Scope.Define(name, v); err != nil {
			panic(fmt.Sprintf("builtin object: %v", err))
		}
	}
	rootMust("inherited", IntegerFromInt64(0))

	obj := NewObjectValue("BuiltinObject", nil)
	objMust := func(name string, v Value) {
		if err := obj.Scope.Define(name, v); err != nil {
			panic(fmt.Sprintf("builtin object: %v", err))
		}
	}
	objMust("value", IntegerFromInt64(1))
	objMust("method0", &Function{Name: "method0", Invoke: func(args []Value) (Value, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("method0() expects an implicit receiver only, got %d extra arguments", len(args)-1)
		}
		return args[0], nil
	}})
	objMust("prototype", root)

	return obj
}
