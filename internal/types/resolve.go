package types

import "github.com/you-not-fish/brisk/internal/syntax"

// Generics maps the type parameter names in scope to the types they
// denote: the *TypeParam itself while a generic signature is being built,
// or the type argument while a reified body is being emitted.
type Generics map[string]Type

// Resolve returns the type denoted by the annotation n.
//
// A type name is looked up first among the generics, then in the current
// namespace, as written, and in each using namespace. Array annotations
// resolve their element type and return the interned array type.
// If nothing matches, Resolve reports an error unless silent is set, in
// which case it returns a nil Type and a nil error.
func (t *Table) Resolve(n *syntax.Node, generics Generics, silent bool) (Type, error) {
	switch n.Kind {
	case syntax.TypeName:
		if typ, ok := generics[n.Data]; ok {
			return typ, nil
		}
		if typ := t.Lookup(n.Data); typ != nil {
			return typ, nil
		}
		if silent {
			return nil, nil
		}
		return nil, Errorf(n.Pos, "unresolved type %s", n.Data)

	case syntax.TypeArray:
		elem, err := t.Resolve(n.Child(0), generics, silent)
		if elem == nil || err != nil {
			return nil, err
		}
		if elem == Typ[Void] {
			return nil, Errorf(n.Pos, "invalid array element type void")
		}
		return t.ArrayOf(elem), nil
	}
	return nil, Errorf(n.Pos, "%s is not a type annotation", n.Kind)
}
