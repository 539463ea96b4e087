package types

import (
	"strings"
	"testing"

	"github.com/you-not-fish/brisk/internal/syntax"
)

// ----------------------------------------------------------------------------
// Test helpers

func declareClass(t *testing.T, tab *Table, name string, parent *ClassSig) *ClassSig {
	t.Helper()
	c, err := tab.DeclareClass(name, syntax.Pos{})
	if err != nil {
		t.Fatalf("DeclareClass(%s): %v", name, err)
	}
	c.Parent = parent
	return c
}

func declareIface(t *testing.T, tab *Table, name string) *InterfaceSig {
	t.Helper()
	i, err := tab.DeclareInterface(name, syntax.Pos{})
	if err != nil {
		t.Fatalf("DeclareInterface(%s): %v", name, err)
	}
	return i
}

// annotation parses src as a parameter type and returns its annotation node.
func annotation(t *testing.T, src string) *syntax.Node {
	t.Helper()
	tree, err := syntax.Parse("test.bk", []byte("fn f(x: "+src+") {}"))
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	return tree.Root.Child(1).Child(2).Child(0).Child(0)
}

// ----------------------------------------------------------------------------
// Basic types and arrays

func TestPredeclared(t *testing.T) {
	tab := NewTable()
	for _, name := range []string{"int", "bool", "void"} {
		if tab.Lookup(name) == nil {
			t.Errorf("%s not predeclared", name)
		}
	}
	if !IsNumerical(Typ[Int]) || IsNumerical(Typ[Bool]) {
		t.Error("IsNumerical wrong")
	}
	if !IsBoolean(Typ[Bool]) || IsBoolean(Typ[Int]) {
		t.Error("IsBoolean wrong")
	}
}

func TestArrayInterning(t *testing.T) {
	tab := NewTable()
	a, err := tab.Resolve(annotation(t, "[int]"), nil, false)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := tab.Resolve(annotation(t, "[int]"), nil, false)
	if a != b {
		t.Error("[int] resolved to distinct types")
	}
	c, _ := tab.Resolve(annotation(t, "[bool]"), nil, false)
	if a == c {
		t.Error("[int] and [bool] are the same type")
	}
	if AssignableTo(a, c) || AssignableTo(c, a) {
		t.Error("[int] and [bool] are assignable")
	}
	nested, _ := tab.Resolve(annotation(t, "[[int]]"), nil, false)
	if nested.(*Array).Elem() != a {
		t.Error("[[int]] element is not the interned [int]")
	}
	if nested.Name() != "[[int]]" {
		t.Errorf("Name() = %q", nested.Name())
	}
}

func TestArrayOfVoidRejected(t *testing.T) {
	tab := NewTable()
	if _, err := tab.Resolve(annotation(t, "[void]"), nil, false); err == nil {
		t.Error("expected error for [void]")
	}
}

// ----------------------------------------------------------------------------
// Assignability

func TestAssignabilityOrder(t *testing.T) {
	tab := NewTable()
	c := declareClass(t, tab, "C", nil)
	b := declareClass(t, tab, "B", c)
	a := declareClass(t, tab, "A", b)

	tests := []struct {
		v, t Type
		want bool
	}{
		{a.Type, b.Type, true},
		{a.Type, c.Type, true},
		{b.Type, c.Type, true},
		{b.Type, a.Type, false},
		{c.Type, a.Type, false},
		{a.Type, a.Type, true},
		{Typ[Int], Typ[Int], true},
		{Typ[Int], Typ[Bool], false},
		{Typ[Bool], Typ[Int], false},
		{Typ[Void], a.Type, true},
		{Typ[Void], Typ[Int], true},
		{a.Type, Typ[Void], false},
		{Typ[Int], a.Type, false},
	}
	for _, tt := range tests {
		if got := AssignableTo(tt.v, tt.t); got != tt.want {
			t.Errorf("AssignableTo(%s, %s) = %v, want %v", tt.v, tt.t, got, tt.want)
		}
	}
}

func TestInterfaceSatisfactionIsTransitive(t *testing.T) {
	tab := NewTable()
	shape := declareIface(t, tab, "Shape")
	other := declareIface(t, tab, "Other")
	base := declareClass(t, tab, "Base", nil)
	base.Interfaces = []*InterfaceSig{shape}
	derived := declareClass(t, tab, "Derived", base)

	if !AssignableTo(derived.Type, shape.Type) {
		t.Error("Derived should satisfy Shape through Base")
	}
	if AssignableTo(derived.Type, other.Type) {
		t.Error("Derived should not satisfy Other")
	}
	if AssignableTo(shape.Type, base.Type) {
		t.Error("interface assignable to class")
	}
	if !Comparable(shape.Type, derived.Type) {
		t.Error("Shape and Derived should be comparable")
	}
}

func TestTypeParamAssignability(t *testing.T) {
	tab := NewTable()
	root := declareClass(t, tab, "Root", nil)
	mid := declareClass(t, tab, "Mid", root)
	leaf := declareClass(t, tab, "Leaf", mid)
	cmp := declareIface(t, tab, "Cmp")

	tp := NewTypeParam("T", 0)
	tp.SetBounds(mid.Type, []*Interface{cmp.Type})

	if !AssignableTo(tp, mid.Type) || !AssignableTo(tp, root.Type) {
		t.Error("T should be assignable to its bound and its ancestors")
	}
	if !AssignableTo(tp, cmp.Type) {
		t.Error("T should be assignable to its interface bound")
	}
	if AssignableTo(tp, leaf.Type) {
		t.Error("T assignable to a subclass of its bound")
	}
	if tab.Satisfies(tp, leaf.Type, nil) {
		t.Error("Leaf does not implement Cmp and must not satisfy T")
	}
	leaf.Interfaces = []*InterfaceSig{cmp}
	if !tab.Satisfies(tp, leaf.Type, nil) {
		t.Error("Leaf should satisfy T")
	}
	if tab.Satisfies(tp, root.Type, nil) {
		t.Error("Root is above the bound and must not satisfy T")
	}
	if got := tp.String(); got != "T extends Mid implements Cmp" {
		t.Errorf("String() = %q", got)
	}
}

// ----------------------------------------------------------------------------
// Resolution

func TestResolveNamespaces(t *testing.T) {
	tab := NewTable()
	tab.SetNamespace("app")
	local := declareClass(t, tab, tab.Qualify("Foo"), nil)
	lib := declareClass(t, tab, "lib.Bar", nil)
	tab.AddUsing("lib")

	tests := []struct {
		src  string
		want Type
	}{
		{"Foo", local.Type},
		{"app.Foo", local.Type},
		{"Bar", lib.Type},
		{"lib.Bar", lib.Type},
	}
	for _, tt := range tests {
		got, err := tab.Resolve(annotation(t, tt.src), nil, false)
		if err != nil {
			t.Errorf("%s: %v", tt.src, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%s resolved to %v, want %v", tt.src, got, tt.want)
		}
	}
	if local.Name != "app.Foo" {
		t.Errorf("qualified name = %q", local.Name)
	}
}

func TestResolveUnknown(t *testing.T) {
	tab := NewTable()
	_, err := tab.Resolve(annotation(t, "[Missing]"), nil, false)
	if err == nil || !strings.Contains(err.Error(), "unresolved type Missing") {
		t.Errorf("err = %v", err)
	}
	typ, err := tab.Resolve(annotation(t, "Missing"), nil, true)
	if typ != nil || err != nil {
		t.Errorf("silent resolve = %v, %v", typ, err)
	}
}

func TestResolveGenerics(t *testing.T) {
	tab := NewTable()
	tp := NewTypeParam("T", 0)
	got, err := tab.Resolve(annotation(t, "[T]"), Generics{"T": tp}, false)
	if err != nil {
		t.Fatal(err)
	}
	if got != tab.ArrayOf(tp) {
		t.Errorf("[T] = %v", got)
	}
	got, _ = tab.Resolve(annotation(t, "T"), Generics{"T": Typ[Int]}, false)
	if got != Typ[Int] {
		t.Errorf("T reified = %v, want int", got)
	}
}

func TestRedeclaration(t *testing.T) {
	tab := NewTable()
	declareClass(t, tab, "A", nil)
	if _, err := tab.DeclareInterface("A", syntax.Pos{}); err == nil {
		t.Error("expected redeclaration error")
	}
	if _, err := tab.DeclareClass("int", syntax.Pos{}); err == nil {
		t.Error("expected error redeclaring int")
	}
}

// ----------------------------------------------------------------------------
// Signatures

func TestMethodIDsAreMonotonic(t *testing.T) {
	tab := NewTable()
	prev := 0
	for i := 0; i < 5; i++ {
		m := tab.NewMethod("f", syntax.Pos{})
		if m.ID <= prev {
			t.Fatalf("id %d after %d", m.ID, prev)
		}
		prev = m.ID
	}
}

func TestQualifiedNames(t *testing.T) {
	tab := NewTable()
	tab.SetNamespace("ns")
	foo := declareClass(t, tab, tab.Qualify("Foo"), nil)

	fn := tab.NewMethod("f", syntax.Pos{})
	fn.Namespace = "ns"
	m := tab.NewMethod("m", syntax.Pos{})
	m.Class = foo
	ctor := tab.NewMethod("ctor", syntax.Pos{})
	ctor.Class, ctor.IsCtor = foo, true

	for _, tt := range []struct {
		m    *MethodSig
		want string
	}{
		{fn, "ns.f"},
		{m, "ns.Foo.m"},
		{ctor, "ns.Foo.ctor"},
	} {
		if got := tt.m.QualifiedName(); got != tt.want {
			t.Errorf("QualifiedName() = %q, want %q", got, tt.want)
		}
	}
	if got := fn.InstanceName([]Type{Typ[Int], tab.ArrayOf(Typ[Bool])}); got != "ns.f<int,[bool]>" {
		t.Errorf("InstanceName() = %q", got)
	}
}

func TestFieldSlots(t *testing.T) {
	tab := NewTable()
	base := declareClass(t, tab, "Base", nil)
	base.Fields = []*Field{{Name: "a", Type: Typ[Int]}, {Name: "b", Type: Typ[Bool]}}
	derived := declareClass(t, tab, "Derived", base)
	derived.Fields = []*Field{{Name: "c", Type: Typ[Int]}}

	for name, want := range map[string]int{"a": 0, "b": 1, "c": 2} {
		_, idx, ok := derived.LookupField(name)
		if !ok || idx != want {
			t.Errorf("LookupField(%s) = %d, %v, want %d", name, idx, ok, want)
		}
	}
	if _, _, ok := base.LookupField("c"); ok {
		t.Error("Base sees Derived's field")
	}
}

func TestCompatibleOverride(t *testing.T) {
	tab := NewTable()
	animal := declareClass(t, tab, "Animal", nil)
	dog := declareClass(t, tab, "Dog", animal)

	method := func(cls *ClassSig, ret Type, args ...Type) *MethodSig {
		m := tab.NewMethod("m", syntax.Pos{})
		m.Class = cls
		m.Args = append([]Type{cls.Type}, args...)
		m.ArgNames = make([]string, len(m.Args))
		m.Return = ret
		return m
	}

	base := method(animal, animal.Type, dog.Type)
	tests := []struct {
		name string
		m    *MethodSig
		want bool
	}{
		{"identical", method(dog, animal.Type, dog.Type), true},
		{"covariant_return", method(dog, dog.Type, dog.Type), true},
		{"contravariant_arg", method(dog, animal.Type, animal.Type), true},
		{"narrowed_arg", method(dog, animal.Type, tab.ArrayOf(Typ[Int])), false},
		{"widened_return", method(dog, Typ[Int], dog.Type), false},
		{"arity", method(dog, animal.Type), false},
		{"void_return", method(dog, Typ[Void], dog.Type), false},
	}
	for _, tt := range tests {
		if got := tt.m.CompatibleOverride(base); got != tt.want {
			t.Errorf("%s: CompatibleOverride = %v, want %v", tt.name, got, tt.want)
		}
	}

	vbase := method(animal, Typ[Void])
	if !method(dog, Typ[Void]).CompatibleOverride(vbase) {
		t.Error("void method cannot override a void method")
	}
	if method(dog, Typ[Int]).CompatibleOverride(vbase) {
		t.Error("int method overrides a void method")
	}
}

// ----------------------------------------------------------------------------
// Generics

func TestUnifyAndSubst(t *testing.T) {
	tab := NewTable()
	tp := NewTypeParam("T", 0)
	env := map[*TypeParam]Type{}

	if !Unify(tab.ArrayOf(tp), tab.ArrayOf(tab.ArrayOf(Typ[Int])), env) {
		t.Fatal("unify [T] with [[int]] failed")
	}
	if env[tp] != tab.ArrayOf(Typ[Int]) {
		t.Errorf("T bound to %v, want [int]", env[tp])
	}
	if Unify(tp, Typ[Bool], env) {
		t.Error("conflicting binding accepted")
	}
	if Unify(tab.ArrayOf(tp), Typ[Int], env) {
		t.Error("[T] unified with int")
	}
	if got := tab.Subst(tab.ArrayOf(tp), env); got != tab.ArrayOf(tab.ArrayOf(Typ[Int])) {
		t.Errorf("Subst([T]) = %v", got)
	}

	fresh := map[*TypeParam]Type{}
	if !Unify(tp, Typ[Void], fresh) || len(fresh) != 0 {
		t.Error("null argument should not bind T")
	}
}
