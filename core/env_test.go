package core

import "testing"

func TestEnvLookupShadowing(t *testing.T) {
	root := NewEnv()
	outer := root.Bind("x", IntVal(1))
	inner := outer.Bind("x", IntVal(2))

	v, ok := inner.Lookup("x")
	if !ok || v.(IntVal) != 2 {
		t.Fatalf("inner lookup of x = %v, want 2", v)
	}
	v, ok = outer.Lookup("x")
	if !ok || v.(IntVal) != 1 {
		t.Fatalf("outer lookup of x = %v, want 1 (must be unaffected by inner.Bind)", v)
	}
}

func TestEnvLookupUnbound(t *testing.T) {
	env := NewEnv()
	if _, ok := env.Lookup("missing"); ok {
		t.Fatal("lookup of unbound name should report ok=false")
	}
}

func TestEnvBindAllVisibleToEachOther(t *testing.T) {
	env := NewEnv().BindAll([]string{"a", "b"}, []DVal{IntVal(1), IntVal(2)})
	a, _ := env.Lookup("a")
	b, _ := env.Lookup("b")
	if a.(IntVal) != 1 || b.(IntVal) != 2 {
		t.Fatalf("BindAll: a=%v b=%v", a, b)
	}
}

func TestDeclaredInInnermost(t *testing.T) {
	outer := NewEnv().Bind("x", IntVal(1))
	inner := outer.Bind("y", IntVal(2))

	if !inner.DeclaredInInnermost("y") {
		t.Error("y was bound in inner's own frame")
	}
	if inner.DeclaredInInnermost("x") {
		t.Error("x belongs to an ancestor frame, not inner's own")
	}
}
