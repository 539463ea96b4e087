package syntax

import (
	"strings"
	"testing"
)

// ----------------------------------------------------------------------------
// Test helpers

func parseFile(t *testing.T, src string) *Tree {
	t.Helper()
	tree, err := Parse("test.bk", []byte(src))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return tree
}

func parseExpr(t *testing.T, src string) *Node {
	t.Helper()
	tree := parseFile(t, "fn f() { "+src+"; }")
	body := tree.Root.Child(1).Child(4)
	stmt := body.Child(0)
	if stmt.Kind != ExprStmt {
		t.Fatalf("statement kind = %v, want ExprStmt", stmt.Kind)
	}
	return stmt.Child(0)
}

// sexpr renders a subtree compactly for structural comparison.
func sexpr(n *Node) string {
	var b strings.Builder
	var walk func(n *Node)
	walk = func(n *Node) {
		if len(n.Children) == 0 {
			b.WriteString(n.String())
			return
		}
		b.WriteString("(" + n.String())
		for _, c := range n.Children {
			b.WriteString(" ")
			walk(c)
		}
		b.WriteString(")")
	}
	walk(n)
	return b.String()
}

func expectParseError(t *testing.T, src, want string) {
	t.Helper()
	_, err := Parse("test.bk", []byte(src))
	if err == nil {
		t.Fatalf("expected error containing %q", want)
	}
	if !strings.Contains(err.Error(), want) {
		t.Errorf("error = %q, want substring %q", err, want)
	}
}

// ----------------------------------------------------------------------------
// Declarations

func TestParseNamespaceAndUsing(t *testing.T) {
	tree := parseFile(t, "namespace a.b; using std.io; using util;; fn main() {}")
	root := tree.Root
	if root.Child(0).Kind != Namespace || root.Child(0).Data != "a.b" {
		t.Errorf("namespace = %v", root.Child(0))
	}
	if root.Child(1).Data != "std.io" || root.Child(2).Data != "util" {
		t.Errorf("usings = %v %v", root.Child(1), root.Child(2))
	}
	if root.Child(3).Kind != Method {
		t.Errorf("decl = %v, want Method", root.Child(3))
	}
}

func TestParseNoNamespace(t *testing.T) {
	tree := parseFile(t, "fn main(): int { return 0; }")
	if !tree.Root.Child(0).IsEmpty() {
		t.Errorf("namespace slot = %v, want Empty", tree.Root.Child(0))
	}
}

func TestParseClass(t *testing.T) {
	src := `
abstract class Shape extends Base implements Drawable, Named {
	x: int;
	tags: [[int]];
	ctor(x: int) { this.x = x; }
	override fn area(): int { return 0; }
	abstract fn name(): int;
}`
	tree := parseFile(t, src)
	c := tree.Root.Child(1)
	if c.Kind != Class || c.Data != "Shape" {
		t.Fatalf("decl = %v", c)
	}
	if !c.Child(0).HasModifier("abstract") {
		t.Error("missing abstract modifier")
	}
	if c.Child(1).Data != "Base" {
		t.Errorf("extends = %v", c.Child(1))
	}
	if c.Child(2).Len() != 2 || c.Child(2).Child(1).Data != "Named" {
		t.Errorf("implements = %v", sexpr(c.Child(2)))
	}

	members := c.Children[3:]
	kinds := []Kind{Field, Field, Ctor, Method, Method}
	if len(members) != len(kinds) {
		t.Fatalf("got %d members, want %d", len(members), len(kinds))
	}
	for i, k := range kinds {
		if members[i].Kind != k {
			t.Errorf("member %d = %v, want %v", i, members[i].Kind, k)
		}
	}
	if got := sexpr(members[1].Child(0)); got != "(TypeArray (TypeArray TypeName(int)))" {
		t.Errorf("field type = %s", got)
	}
	if !members[3].Child(0).HasModifier("override") {
		t.Error("missing override modifier")
	}
	if !members[4].Child(4).IsEmpty() {
		t.Error("abstract method has a body")
	}
}

func TestParseInterface(t *testing.T) {
	tree := parseFile(t, "interface Named { fn name(): [int]; fn rename(n: [int]); }")
	i := tree.Root.Child(1)
	if i.Kind != Interface || i.Len() != 3 {
		t.Fatalf("interface = %s", sexpr(i))
	}
	if !i.Child(2).Child(3).IsEmpty() {
		t.Error("rename should return void")
	}
}

func TestParseGenericMethod(t *testing.T) {
	tree := parseFile(t, "fn max<T extends Base implements Cmp, U>(a: T, b: U): T { return a; }")
	m := tree.Root.Child(1)
	tps := m.Child(1)
	if tps.Len() != 2 {
		t.Fatalf("type params = %s", sexpr(tps))
	}
	if tps.Child(0).Data != "T" || tps.Child(0).Child(0).Data != "Base" || tps.Child(0).Child(1).Len() != 1 {
		t.Errorf("T = %s", sexpr(tps.Child(0)))
	}
	if !tps.Child(1).Child(0).IsEmpty() {
		t.Errorf("U bound = %v", tps.Child(1).Child(0))
	}
	if m.Child(2).Len() != 2 {
		t.Errorf("params = %s", sexpr(m.Child(2)))
	}
}

// ----------------------------------------------------------------------------
// Statements

func TestParseStatements(t *testing.T) {
	src := `fn f() {
		let a: int = 1;
		let b = 2;;;
		let c: bool;
		a += 1;
		a++;
		b--;
		if (a < b) return; else { a = b; }
		while (true) { break; }
		for (let i = 0; i < 10; i++) continue;
		for (;;) {}
		x.y[0] = 3;
	}`
	tree := parseFile(t, src)
	body := tree.Root.Child(1).Child(4)
	kinds := []Kind{Let, Let, Let, Assign, Increment, Increment, If, While, For, For, Assign}
	if body.Len() != len(kinds) {
		t.Fatalf("got %d statements, want %d: %s", body.Len(), len(kinds), sexpr(body))
	}
	for i, k := range kinds {
		if body.Child(i).Kind != k {
			t.Errorf("stmt %d = %v, want %v", i, body.Child(i).Kind, k)
		}
	}
	if body.Child(3).Data != "+=" || body.Child(5).Data != "--" {
		t.Errorf("ops = %q %q", body.Child(3).Data, body.Child(5).Data)
	}
	if !body.Child(2).Child(1).IsEmpty() {
		t.Error("let c has an initializer")
	}
	loop := body.Child(9)
	for i := 0; i < 3; i++ {
		if !loop.Child(i).IsEmpty() {
			t.Errorf("for(;;) clause %d = %v", i, loop.Child(i))
		}
	}
	if got := sexpr(body.Child(10).Child(0)); got != "(Chain Ident(x) Property(y) (Index IntLit(0)))" {
		t.Errorf("assign target = %s", got)
	}
}

// ----------------------------------------------------------------------------
// Expressions

func TestParsePrecedence(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"1 + 2 * 3", "(Binary(+) IntLit(1) (Binary(*) IntLit(2) IntLit(3)))"},
		{"1 - 2 - 3", "(Binary(-) (Binary(-) IntLit(1) IntLit(2)) IntLit(3))"},
		{"a < b and c", "(Binary(and) (Binary(<) Ident(a) Ident(b)) Ident(c))"},
		{"a or b and c", "(Binary(and) (Binary(or) Ident(a) Ident(b)) Ident(c))"},
		{"a * b & c", "(Binary(*) Ident(a) (Binary(&) Ident(b) Ident(c)))"},
		{"a & b as int", "(Binary(&) Ident(a) (Cast Ident(b) TypeName(int)))"},
		{"x instanceof Foo == true", "(Binary(==) (InstanceOf Ident(x) TypeName(Foo)) BoolLit(true))"},
		{"-x", "(Unary(-) Ident(x))"},
		{"!~x", "(Unary(!) (Unary(~) Ident(x)))"},
		{"(1 + 2) * 3", "(Binary(*) (Binary(+) IntLit(1) IntLit(2)) IntLit(3))"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			if got := sexpr(parseExpr(t, tt.src)); got != tt.want {
				t.Errorf("got  %s\nwant %s", got, tt.want)
			}
		})
	}
}

func TestParseNegativeLiteralFolding(t *testing.T) {
	if got := sexpr(parseExpr(t, "-9223372036854775808")); got != "IntLit(-9223372036854775808)" {
		t.Errorf("got %s", got)
	}
	if got := sexpr(parseExpr(t, "1 - -2")); got != "(Binary(-) IntLit(1) IntLit(-2))" {
		t.Errorf("got %s", got)
	}
}

func TestParseLiterals(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"'A'", "IntLit(65)"},
		{`"hi"`, "StringLit(hi)"},
		{"null", "Null"},
		{"this", "This"},
		{"false", "BoolLit(false)"},
		{"0x10", "IntLit(0x10)"},
	}
	for _, tt := range tests {
		if got := sexpr(parseExpr(t, tt.src)); got != tt.want {
			t.Errorf("%s: got %s, want %s", tt.src, got, tt.want)
		}
	}
}

func TestParseGenericCallDisambiguation(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"f<int>(x)", "(Call(f) (List TypeName(int)) (List Ident(x)))"},
		{"f<[int], Foo>()", "(Call(f) (List (TypeArray TypeName(int)) TypeName(Foo)) List)"},
		{"f(x)", "(Call(f) List (List Ident(x)))"},
		{"a < b", "(Binary(<) Ident(a) Ident(b))"},
		{"a < b == c > d", "(Binary(>) (Binary(==) (Binary(<) Ident(a) Ident(b)) Ident(c)) Ident(d))"},
		{"a < b > c", "(Binary(>) (Binary(<) Ident(a) Ident(b)) Ident(c))"},
		{"o.m<int>(1)", "(Chain Ident(o) (MethodCall(m) (List TypeName(int)) (List IntLit(1))))"},
		{"o.n < 3", "(Binary(<) (Chain Ident(o) Property(n)) IntLit(3))"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			if got := sexpr(parseExpr(t, tt.src)); got != tt.want {
				t.Errorf("got  %s\nwant %s", got, tt.want)
			}
		})
	}
}

func TestParseArrays(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"[1, 2, 3]", "(ArrayLit IntLit(1) IntLit(2) IntLit(3))"},
		{"[]", "ArrayLit"},
		{"[int: 10]", "(ArrayNew TypeName(int) IntLit(10))"},
		{"[[bool]: n + 1]", "(ArrayNew (TypeArray TypeName(bool)) (Binary(+) Ident(n) IntLit(1)))"},
		{"[a, b]", "(ArrayLit Ident(a) Ident(b))"},
		{"[[1], [2]]", "(ArrayLit (ArrayLit IntLit(1)) (ArrayLit IntLit(2)))"},
		{"a[i].b.c()", "(Chain Ident(a) (Index Ident(i)) Property(b) (MethodCall(c) List List))"},
		{"new Foo(1, 2).x", "(Chain (New TypeName(Foo) (List IntLit(1) IntLit(2))) Property(x))"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			if got := sexpr(parseExpr(t, tt.src)); got != tt.want {
				t.Errorf("got  %s\nwant %s", got, tt.want)
			}
		})
	}
}

func TestParseSpeculationLeavesNoOrphans(t *testing.T) {
	tree := parseFile(t, "fn f() { [a, b]; x < y; }")
	for i, n := range tree.Nodes {
		if int(n.ID) != i {
			t.Fatalf("node %d has ID %d", i, n.ID)
		}
	}
	reachable := 0
	Inspect(tree.Root, func(*Node) bool { reachable++; return true })
	if reachable != len(tree.Nodes) {
		t.Errorf("%d reachable nodes, arena holds %d", reachable, len(tree.Nodes))
	}
}

// ----------------------------------------------------------------------------
// Errors

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"missing_semi", "fn f() { let a = 1 }", "expected ;"},
		{"bad_decl", "let x = 1;", "expected declaration"},
		{"dup_modifier", "override override fn f() {}", "duplicate modifier override"},
		{"let_without_type", "fn f() { let a; }", "let needs a type or an initializer"},
		{"bad_member", "class A { 3; }", "expected field, method or constructor"},
		{"bad_expr", "fn f() { return ); }", "expected expression"},
		{"bad_type", "fn f(a: 3) {}", "expected type"},
		{"eof", "class A {", "expected }"},
		{"lex_error", "fn f() { return 'ab'; }", "character literal not terminated"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectParseError(t, tt.src, tt.want)
		})
	}
}

func TestParseErrorPosition(t *testing.T) {
	var gotPos Pos
	p := NewParser("test.bk", []byte("fn f() {\n  let = 1;\n}"), func(pos Pos, msg string) {
		gotPos = pos
	})
	_, err := p.Parse()
	perr, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("error = %T %v, want *ParseError", err, err)
	}
	if perr.Pos.Line() != 2 || perr.Pos.Col() != 7 {
		t.Errorf("error at %v, want line 2 col 7", perr.Pos)
	}
	if perr.Tok != "=" {
		t.Errorf("Tok = %q, want =", perr.Tok)
	}
	if gotPos != perr.Pos {
		t.Errorf("errh pos = %v, want %v", gotPos, perr.Pos)
	}
}

func TestParseLexErrorType(t *testing.T) {
	_, err := Parse("test.bk", []byte("fn f() { # }"))
	if _, ok := err.(*LexError); !ok {
		t.Errorf("error = %T, want *LexError", err)
	}
}
