package runtime

import (
	"fmt"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// collator backs STRING/CHARACTER ordering comparisons (§4.4 "< <= > >="),
// the same x/text/collate + language pairing the teacher's
// internal/interp/builtins/strings.go uses instead of raw byte comparison,
// so ordering respects locale collation rather than ASCII code points.
var collator = collate.New(language.English)

// Equal implements structural equality of runtime values (§4.4 "==, !=:
// structural equality of runtime values").
func Equal(a, b Value) bool {
	pa, aOk := a.(*Primitive)
	pb, bOk := b.(*Primitive)
	if aOk && bOk {
		if pa.Kind != pb.Kind {
			return false
		}
		switch pa.Kind {
		case NullPayload:
			return true
		case BoolPayload:
			return pa.Bool == pb.Bool
		case IntegerPayload:
			return pa.Int.Cmp(pb.Int) == 0
		case DecimalPayload:
			return pa.Dec.Equal(pb.Dec)
		case CharacterPayload:
			return pa.Char == pb.Char
		case StringPayload:
			return pa.Str == pb.Str
		default:
			return a == b
		}
	}
	return a == b
}

// Compare orders two primitives of the same payload class, per §4.4
// "< <= > >=: both operands must be primitives of the same payload class
// and host-comparable". It returns -1/0/1, or an error when the operands
// are not comparable.
func Compare(a, b Value) (int, error) {
	pa, aOk := a.(*Primitive)
	pb, bOk := b.(*Primitive)
	if !aOk || !bOk {
		return 0, fmt.Errorf("comparison requires primitive operands")
	}
	if pa.Kind != pb.Kind {
		return 0, fmt.Errorf("cannot compare values of different payload kinds")
	}

	switch pa.Kind {
	case IntegerPayload:
		return pa.Int.Cmp(pb.Int), nil
	case DecimalPayload:
		return pa.Dec.Cmp(pb.Dec), nil
	case CharacterPayload:
		return collator.CompareString(string(pa.Char), string(pb.Char)), nil
	case StringPayload:
		return collator.CompareString(pa.Str, pb.Str), nil
	case BoolPayload:
		if pa.Bool == pb.Bool {
			return 0, nil
		}
		if !pa.Bool && pb.Bool {
			return -1, nil
		}
		return 1, nil
	default:
		return 0, fmt.Errorf("values of this kind are not comparable")
	}
}

// DefaultMaxPrototypeDepth is the depth cap LookupMember falls back to when
// the caller does not supply one.
const DefaultMaxPrototypeDepth = 1000

// LookupMember walks the prototype chain of obj looking for name, per §4.4
// "Property / Method lookup with prototype chain": search the receiver's
// own scope; if absent, follow its "prototype" binding (which must itself
// be an ObjectValue) and continue there. Depth-capped defensively per §5 —
// construction never closes a cycle, but lookup must still tolerate one.
func LookupMember(obj *ObjectValue, name string, maxDepth int) (Value, bool, error) {
	current := obj
	for depth := 0; depth < maxDepth; depth++ {
		if v, ok := current.Scope.Resolve(name, true); ok {
			return v, true, nil
		}
		proto, ok := current.Scope.Resolve("prototype", true)
		if !ok {
			return nil, false, nil
		}
		next, ok := proto.(*ObjectValue)
		if !ok {
			return nil, false, fmt.Errorf("prototype must be an object")
		}
		current = next
	}
	return nil, false, fmt.Errorf("prototype chain exceeds maximum depth")
}
