// Package runtime defines the runtime Value model of spec §3:
// Primitive(v), Function(name, invoke), and ObjectValue(name?, scope).
package runtime

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/cwbudde/go-dynl/internal/scope"
)

// PrimKind tags the payload carried by a Primitive value.
type PrimKind int

const (
	NullPayload PrimKind = iota
	BoolPayload
	IntegerPayload
	DecimalPayload
	CharacterPayload
	StringPayload
	IterablePayload
)

// Value is implemented by every runtime value variant.
type Value interface {
	isValue()
	String() string
}

// Primitive wraps null, boolean, arbitrary-precision integer/decimal,
// character, string, or a host-iterable payload.
type Primitive struct {
	Kind    PrimKind
	Bool    bool
	Int     *big.Int
	Dec     decimal.Decimal
	Char    rune
	Str     string
	Iter    []Value // host-iterable payload, e.g. range()'s elements
}

func (*Primitive) isValue() {}

func (p *Primitive) String() string {
	switch p.Kind {
	case NullPayload:
		return "nil"
	case BoolPayload:
		if p.Bool {
			return "true"
		}
		return "false"
	case IntegerPayload:
		return p.Int.String()
	case DecimalPayload:
		return p.Dec.String()
	case CharacterPayload:
		return string(p.Char)
	case StringPayload:
		return p.Str
	case IterablePayload:
		return fmt.Sprintf("<iterable len=%d>", len(p.Iter))
	default:
		return "?"
	}
}

func Null() *Primitive { return &Primitive{Kind: NullPayload} }

func Bool(b bool) *Primitive { return &Primitive{Kind: BoolPayload, Bool: b} }

func Integer(i *big.Int) *Primitive { return &Primitive{Kind: IntegerPayload, Int: i} }

func IntegerFromInt64(i int64) *Primitive {
	return &Primitive{Kind: IntegerPayload, Int: big.NewInt(i)}
}

func Decimal(d decimal.Decimal) *Primitive { return &Primitive{Kind: DecimalPayload, Dec: d} }

func Character(r rune) *Primitive { return &Primitive{Kind: CharacterPayload, Char: r} }

func String(s string) *Primitive { return &Primitive{Kind: StringPayload, Str: s} }

func Iterable(vs []Value) *Primitive { return &Primitive{Kind: IterablePayload, Iter: vs} }

// Function is a runtime function value: invoke is the closure taking the
// evaluated argument list and returning a result, or an error (spec §3
// "invoke is a closure taking a list of runtime values and returning a
// runtime value"; errors are this module's addition to thread evaluate
// failures back through calls uniformly).
type Function struct {
	Name   string
	Invoke func(args []Value) (Value, error)
}

func (*Function) isValue()        {}
func (f *Function) String() string { return fmt.Sprintf("<function %s>", f.Name) }

// ObjectValue is an object instance: its own scope of field/method
// bindings, parented on the scope active when it was created (spec §3,
// invariant I4 — member lookup only ever examines the object's own scope;
// inheritance is via an explicit "prototype" binding).
type ObjectValue struct {
	Name  string
	Scope *scope.Scope[Value]
}

func (*ObjectValue) isValue()        {}
func (o *ObjectValue) String() string {
	if o.Name != "" {
		return fmt.Sprintf("<object %s>", o.Name)
	}
	return "<object>"
}

func NewObjectValue(name string, parent *scope.Scope[Value]) *ObjectValue {
	var s *scope.Scope[Value]
	if parent != nil {
		s = parent.NewChild()
	} else {
		s = scope.New[Value]()
	}
	return &ObjectValue{Name: name, Scope: s}
}
