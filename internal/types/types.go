// Package types implements the Type tagged union and subtyping relation of
// spec §3: singleton primitives, Function types, and ObjectType, each
// carrying its own member scope.
package types

import (
	"fmt"
	"strings"

	"github.com/cwbudde/go-dynl/internal/scope"
)

// Primitive names a singleton built-in type identity.
type Primitive int

const (
	ANY Primitive = iota
	NIL
	DYNAMIC
	BOOLEAN
	INTEGER
	DECIMAL
	CHARACTER
	STRING
	EQUATABLE
	COMPARABLE
	ITERABLE
)

var primitiveNames = [...]string{
	ANY: "ANY", NIL: "NIL", DYNAMIC: "DYNAMIC", BOOLEAN: "BOOLEAN",
	INTEGER: "INTEGER", DECIMAL: "DECIMAL", CHARACTER: "CHARACTER",
	STRING: "STRING", EQUATABLE: "EQUATABLE", COMPARABLE: "COMPARABLE",
	ITERABLE: "ITERABLE",
}

func (p Primitive) String() string { return primitiveNames[p] }

// Type is the tagged union: exactly one of Prim, Func, or Obj is set,
// identified by Kind.
type Kind int

const (
	KindPrimitive Kind = iota
	KindFunction
	KindObject
)

type Type struct {
	Kind Kind
	Prim Primitive   // valid when Kind == KindPrimitive
	Func *Function   // valid when Kind == KindFunction
	Obj  *ObjectType // valid when Kind == KindObject
}

// Function is a function type: ordered parameter types plus a return type.
type Function struct {
	Parameters []*Type
	Returns    *Type
}

// ObjectType carries its own member scope (field/method name → Type),
// per spec §3 "ObjectType(name?, scope)".
type ObjectType struct {
	Name  string // "" for anonymous object literals
	Scope *scope.Scope[*Type]
}

// Singleton primitive instances, so identity comparison (`a == b`) works for
// the built-ins the way spec §3 requires ("Built-ins are singleton
// identities").
var (
	Any        = &Type{Kind: KindPrimitive, Prim: ANY}
	Nil        = &Type{Kind: KindPrimitive, Prim: NIL}
	Dynamic    = &Type{Kind: KindPrimitive, Prim: DYNAMIC}
	Boolean    = &Type{Kind: KindPrimitive, Prim: BOOLEAN}
	Integer    = &Type{Kind: KindPrimitive, Prim: INTEGER}
	Decimal    = &Type{Kind: KindPrimitive, Prim: DECIMAL}
	Character  = &Type{Kind: KindPrimitive, Prim: CHARACTER}
	String     = &Type{Kind: KindPrimitive, Prim: STRING}
	Equatable  = &Type{Kind: KindPrimitive, Prim: EQUATABLE}
	Comparable = &Type{Kind: KindPrimitive, Prim: COMPARABLE}
	Iterable   = &Type{Kind: KindPrimitive, Prim: ITERABLE}
)

// byName maps the primitive type-name spellings the parser/analyzer see in
// declared-type annotations to their singleton Type.
var byName = map[string]*Type{
	"Any": Any, "Nil": Nil, "Dynamic": Dynamic, "Boolean": Boolean,
	"Integer": Integer, "Decimal": Decimal, "Character": Character,
	"String": String, "Equatable": Equatable, "Comparable": Comparable,
	"Iterable": Iterable,
}

// Lookup resolves a declared type name to its Type; ok is false for unknown
// names (the analyzer's "unknown type name" failure, §4.3).
func Lookup(name string) (*Type, bool) {
	t, ok := byName[name]
	return t, ok
}

func NewFunction(params []*Type, returns *Type) *Type {
	return &Type{Kind: KindFunction, Func: &Function{Parameters: params, Returns: returns}}
}

func NewObject(name string) *Type {
	return &Type{Kind: KindObject, Obj: &ObjectType{Name: name, Scope: scope.New[*Type]()}}
}

func (t *Type) String() string {
	switch t.Kind {
	case KindPrimitive:
		return t.Prim.String()
	case KindFunction:
		params := make([]string, len(t.Func.Parameters))
		for i, p := range t.Func.Parameters {
			params[i] = p.String()
		}
		return fmt.Sprintf("(%s) -> %s", strings.Join(params, ", "), t.Func.Returns.String())
	case KindObject:
		if t.Obj.Name != "" {
			return "Object(" + t.Obj.Name + ")"
		}
		return "Object"
	default:
		return "?"
	}
}

// identical reports whether a and b are the same Type by identity (for
// primitives) or by the same allocated Function/ObjectType (for the
// compound kinds) — spec §3 rule 3, "a = b by identity".
func identical(a, b *Type) bool {
	if a == b {
		return true
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindPrimitive:
		return a.Prim == b.Prim
	case KindFunction:
		return a.Func == b.Func
	case KindObject:
		return a.Obj == b.Obj
	default:
		return false
	}
}

func isNumeric(t *Type) bool {
	return t.Kind == KindPrimitive && (t.Prim == INTEGER || t.Prim == DECIMAL)
}

func isComparablePayload(t *Type) bool {
	if t.Kind != KindPrimitive {
		return false
	}
	switch t.Prim {
	case BOOLEAN, INTEGER, DECIMAL, CHARACTER, STRING:
		return true
	default:
		return false
	}
}

// LessEq implements the subtyping relation of spec §3: a ≤ b.
func LessEq(a, b *Type) bool {
	// 1. b = ANY
	if b.Kind == KindPrimitive && b.Prim == ANY {
		return true
	}
	// 2. either side is DYNAMIC
	if (a.Kind == KindPrimitive && a.Prim == DYNAMIC) || (b.Kind == KindPrimitive && b.Prim == DYNAMIC) {
		return true
	}
	// 3. a = b by identity
	if identical(a, b) {
		return true
	}
	// 4. a,b in {INTEGER, DECIMAL} (bidirectional numeric compatibility)
	if isNumeric(a) && isNumeric(b) {
		return true
	}
	// 5. b = COMPARABLE and a in {BOOLEAN, INTEGER, DECIMAL, CHARACTER, STRING}
	if b.Kind == KindPrimitive && b.Prim == COMPARABLE && isComparablePayload(a) {
		return true
	}
	// 6. b = EQUATABLE and a = NIL, or a <= COMPARABLE, or a = ITERABLE
	if b.Kind == KindPrimitive && b.Prim == EQUATABLE {
		if a.Kind == KindPrimitive && a.Prim == NIL {
			return true
		}
		if LessEq(a, Comparable) {
			return true
		}
		if a.Kind == KindPrimitive && a.Prim == ITERABLE {
			return true
		}
	}
	return false
}
