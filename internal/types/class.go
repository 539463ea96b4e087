package types

import "github.com/you-not-fish/brisk/internal/syntax"

// ClassID is the stable handle of a class signature in its Table.
type ClassID int

// IfaceID is the stable handle of an interface signature in its Table.
type IfaceID int

// Class is the type of instances of a class.
type Class struct {
	typ
	table *Table
	id    ClassID
}

// Sig returns the class signature.
func (c *Class) Sig() *ClassSig { return c.table.classes[c.id] }

// Name implements Type.
func (c *Class) Name() string { return c.Sig().Name }

// String implements Type.
func (c *Class) String() string { return c.Sig().Name }

// Interface is the type of values of an interface.
type Interface struct {
	typ
	table *Table
	id    IfaceID
}

// Sig returns the interface signature.
func (i *Interface) Sig() *InterfaceSig { return i.table.ifaces[i.id] }

// Name implements Type.
func (i *Interface) Name() string { return i.Sig().Name }

// String implements Type.
func (i *Interface) String() string { return i.Sig().Name }

// Field is a declared class field.
type Field struct {
	Name string
	Type Type
}

// ClassSig describes a class independent of any method bodies.
//
// A ClassSig is allocated once, as a skeleton holding only its name, when
// the class is declared. Members and the parent link are filled in place
// later, so references taken at skeleton time remain valid.
type ClassSig struct {
	ID   ClassID
	Name string // qualified name
	Type *Class
	Pos  syntax.Pos

	Fields     []*Field
	Methods    []*MethodSig
	Ctors      []*MethodSig
	Parent     *ClassSig
	Interfaces []*InterfaceSig

	Abstract bool
	Imported bool // declared by an included header
}

// Chain returns c and its ancestors, nearest first.
// It stops at the first repeated class, so it terminates even on a
// malformed cyclic hierarchy.
func (c *ClassSig) Chain() []*ClassSig {
	var chain []*ClassSig
	seen := make(map[*ClassSig]bool)
	for s := c; s != nil && !seen[s]; s = s.Parent {
		seen[s] = true
		chain = append(chain, s)
	}
	return chain
}

// IsSubclassOf reports whether c is other or descends from it.
func (c *ClassSig) IsSubclassOf(other *ClassSig) bool {
	for _, s := range c.Chain() {
		if s == other {
			return true
		}
	}
	return false
}

// Implements reports whether c, or any of its ancestors, declares that it
// implements iface.
func (c *ClassSig) Implements(iface *InterfaceSig) bool {
	for _, s := range c.Chain() {
		for _, in := range s.Interfaces {
			if in == iface {
				return true
			}
		}
	}
	return false
}

// AllFields returns the fields of c including inherited ones, in slot
// order: the root ancestor's fields come first.
func (c *ClassSig) AllFields() []*Field {
	chain := c.Chain()
	var fields []*Field
	for i := len(chain) - 1; i >= 0; i-- {
		fields = append(fields, chain[i].Fields...)
	}
	return fields
}

// LookupField returns the field called name and its slot index within
// instances of c.
func (c *ClassSig) LookupField(name string) (*Field, int, bool) {
	for i, f := range c.AllFields() {
		if f.Name == name {
			return f, i, true
		}
	}
	return nil, -1, false
}

// OwnMethod returns the method called name declared directly in c.
func (c *ClassSig) OwnMethod(name string) *MethodSig {
	for _, m := range c.Methods {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// LookupMethod returns the nearest method called name in c's chain.
func (c *ClassSig) LookupMethod(name string) *MethodSig {
	for _, s := range c.Chain() {
		if m := s.OwnMethod(name); m != nil {
			return m
		}
	}
	return nil
}

// InterfaceSig describes an interface: a set of method signatures.
// Interface method signatures have no receiver argument.
type InterfaceSig struct {
	ID       IfaceID
	Name     string
	Type     *Interface
	Pos      syntax.Pos
	Methods  []*MethodSig
	Imported bool
}

// LookupMethod returns the interface method called name.
func (i *InterfaceSig) LookupMethod(name string) *MethodSig {
	for _, m := range i.Methods {
		if m.Name == name {
			return m
		}
	}
	return nil
}
