package types

import "github.com/you-not-fish/brisk/internal/syntax"

// Table is the registry of every type and signature known to a program:
// the predeclared types, local and imported classes and interfaces, the
// interned array types and the free functions.
//
// Class and interface signatures live in arenas indexed by ClassID and
// IfaceID. An arena slot is allocated once, when the declaration is first
// seen, and is then filled in place.
type Table struct {
	types   map[string]Type
	classes []*ClassSig
	ifaces  []*InterfaceSig
	arrays  map[Type]*Array

	funcs    map[string]*MethodSig
	funcList []*MethodSig

	namespace string
	usings    []string

	nextMethodID int
}

// NewTable returns a table holding the predeclared types.
func NewTable() *Table {
	t := &Table{
		types:  make(map[string]Type),
		arrays: make(map[Type]*Array),
		funcs:  make(map[string]*MethodSig),
	}
	for _, b := range Typ[1:] {
		t.types[b.name] = b
	}
	return t
}

// ----------------------------------------------------------------------------
// Namespaces

// SetNamespace sets the namespace of the unit being compiled.
func (t *Table) SetNamespace(ns string) { t.namespace = ns }

// Namespace returns the namespace of the unit being compiled.
func (t *Table) Namespace() string { return t.namespace }

// AddUsing adds a namespace to the search path.
func (t *Table) AddUsing(ns string) { t.usings = append(t.usings, ns) }

// Usings returns the namespaces imported with using.
func (t *Table) Usings() []string { return t.usings }

// Qualify prefixes name with the current namespace.
func (t *Table) Qualify(name string) string {
	if t.namespace == "" {
		return name
	}
	return t.namespace + "." + name
}

// candidates returns the qualified names name may refer to, in search
// order: the current namespace, the name as written, then each using.
func (t *Table) candidates(name string) []string {
	var c []string
	if t.namespace != "" {
		c = append(c, t.namespace+"."+name)
	}
	c = append(c, name)
	for _, u := range t.usings {
		c = append(c, u+"."+name)
	}
	return c
}

// ----------------------------------------------------------------------------
// Types

// Lookup returns the type name refers to from the current namespace, or
// nil.
func (t *Table) Lookup(name string) Type {
	for _, q := range t.candidates(name) {
		if typ, ok := t.types[q]; ok {
			return typ
		}
	}
	return nil
}

// LookupExact returns the type registered under the qualified name, or nil.
func (t *Table) LookupExact(qname string) Type {
	return t.types[qname]
}

// DeclareClass allocates the skeleton signature of a class called qname.
func (t *Table) DeclareClass(qname string, pos syntax.Pos) (*ClassSig, error) {
	if _, dup := t.types[qname]; dup {
		return nil, Errorf(pos, "%s redeclared", qname)
	}
	id := ClassID(len(t.classes))
	sig := &ClassSig{ID: id, Name: qname, Pos: pos}
	sig.Type = &Class{table: t, id: id}
	t.classes = append(t.classes, sig)
	t.types[qname] = sig.Type
	return sig, nil
}

// DeclareInterface allocates the skeleton signature of an interface.
func (t *Table) DeclareInterface(qname string, pos syntax.Pos) (*InterfaceSig, error) {
	if _, dup := t.types[qname]; dup {
		return nil, Errorf(pos, "%s redeclared", qname)
	}
	id := IfaceID(len(t.ifaces))
	sig := &InterfaceSig{ID: id, Name: qname, Pos: pos}
	sig.Type = &Interface{table: t, id: id}
	t.ifaces = append(t.ifaces, sig)
	t.types[qname] = sig.Type
	return sig, nil
}

// Class returns the class signature with the given handle.
func (t *Table) Class(id ClassID) *ClassSig { return t.classes[id] }

// Interface returns the interface signature with the given handle.
func (t *Table) Interface(id IfaceID) *InterfaceSig { return t.ifaces[id] }

// Classes returns every class signature in declaration order.
func (t *Table) Classes() []*ClassSig { return t.classes }

// Interfaces returns every interface signature in declaration order.
func (t *Table) Interfaces() []*InterfaceSig { return t.ifaces }

// ArrayOf returns the array type with the given element type.
// Repeated calls with the same element return the same *Array.
func (t *Table) ArrayOf(elem Type) *Array {
	if a, ok := t.arrays[elem]; ok {
		return a
	}
	a := &Array{elem: elem}
	t.arrays[elem] = a
	return a
}

// ----------------------------------------------------------------------------
// Methods

// NewMethod returns a fresh signature with the next method id.
func (t *Table) NewMethod(name string, pos syntax.Pos) *MethodSig {
	t.nextMethodID++
	return &MethodSig{ID: t.nextMethodID, Name: name, Pos: pos, Return: Typ[Void]}
}

// DeclareFunc registers a free function under its qualified name.
func (t *Table) DeclareFunc(m *MethodSig) error {
	q := m.QualifiedName()
	if _, dup := t.funcs[q]; dup {
		return Errorf(m.Pos, "function %s redeclared", q)
	}
	t.funcs[q] = m
	t.funcList = append(t.funcList, m)
	return nil
}

// LookupFunc returns the free function name refers to from the current
// namespace, or nil.
func (t *Table) LookupFunc(name string) *MethodSig {
	for _, q := range t.candidates(name) {
		if m, ok := t.funcs[q]; ok {
			return m
		}
	}
	return nil
}

// Funcs returns every free function in declaration order.
func (t *Table) Funcs() []*MethodSig { return t.funcList }
