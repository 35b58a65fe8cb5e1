package types

import "testing"

func TestReflexivity(t *testing.T) {
	for _, ty := range []*Type{Any, Nil, Dynamic, Boolean, Integer, Decimal, Character, String} {
		if !LessEq(ty, ty) {
			t.Errorf("expected %s <= %s", ty, ty)
		}
	}
}

func TestAnyIsTop(t *testing.T) {
	for _, ty := range []*Type{Nil, Boolean, Integer, Decimal, Character, String, Iterable} {
		if !LessEq(ty, Any) {
			t.Errorf("expected %s <= ANY", ty)
		}
	}
}

func TestDynamicIsWildcard(t *testing.T) {
	if !LessEq(Dynamic, String) {
		t.Error("expected DYNAMIC <= STRING")
	}
	if !LessEq(Boolean, Dynamic) {
		t.Error("expected BOOLEAN <= DYNAMIC")
	}
}

func TestIntegerDecimalBidirectional(t *testing.T) {
	if !LessEq(Integer, Decimal) {
		t.Error("expected INTEGER <= DECIMAL")
	}
	if !LessEq(Decimal, Integer) {
		t.Error("expected DECIMAL <= INTEGER")
	}
}

func TestComparableHierarchy(t *testing.T) {
	for _, ty := range []*Type{Boolean, Integer, Decimal, Character, String} {
		if !LessEq(ty, Comparable) {
			t.Errorf("expected %s <= COMPARABLE", ty)
		}
	}
	if LessEq(Iterable, Comparable) {
		t.Error("expected ITERABLE not<= COMPARABLE")
	}
}

func TestEquatableHierarchy(t *testing.T) {
	for _, ty := range []*Type{Nil, Boolean, Integer, Decimal, Character, String, Iterable} {
		if !LessEq(ty, Equatable) {
			t.Errorf("expected %s <= EQUATABLE", ty)
		}
	}
}

func TestNoOtherPairsAreSubtypes(t *testing.T) {
	if LessEq(String, Integer) {
		t.Error("expected STRING not<= INTEGER")
	}
	if LessEq(Boolean, String) {
		t.Error("expected BOOLEAN not<= STRING")
	}
	if LessEq(Comparable, Integer) {
		t.Error("expected COMPARABLE not<= INTEGER")
	}
}

func TestObjectTypesNotIdenticalByDefault(t *testing.T) {
	a := NewObject("Foo")
	b := NewObject("Foo")
	if LessEq(a, b) {
		t.Error("expected two distinct object types (same name) not to be subtypes of each other")
	}
	if !LessEq(a, a) {
		t.Error("expected an object type to be a subtype of itself")
	}
}
