package types

// BasicKind describes the kind of basic type.
type BasicKind int

const (
	Invalid BasicKind = iota
	Int
	Bool
	Void
)

// Basic represents a predeclared type: int, bool or void.
//
// void is the type of null and of calls that return nothing; it is
// assignable to every type.
type Basic struct {
	typ
	kind BasicKind
	name string
}

// Kind returns the kind of the basic type.
func (b *Basic) Kind() BasicKind {
	return b.kind
}

// Name implements Type.
func (b *Basic) Name() string {
	return b.name
}

// String implements Type.
func (b *Basic) String() string {
	return b.name
}

// Typ holds the predeclared basic types, indexed by BasicKind.
// Typ[Invalid] is nil.
var Typ = []*Basic{
	Invalid: nil,
	Int:     {kind: Int, name: "int"},
	Bool:    {kind: Bool, name: "bool"},
	Void:    {kind: Void, name: "void"},
}
