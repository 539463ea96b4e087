package types

import "strings"

// Array represents an array type [Elem].
// Arrays are created only through Table.ArrayOf, which interns them.
type Array struct {
	typ
	elem Type
}

// Elem returns the array element type.
func (a *Array) Elem() Type {
	return a.elem
}

// Name implements Type.
func (a *Array) Name() string {
	return "[" + a.elem.Name() + "]"
}

// String implements Type.
func (a *Array) String() string {
	return a.Name()
}

// TypeParam represents a generic type parameter of a method.
//
// A parameter may be bounded by a class (extends) and by any number of
// interfaces (implements). A type argument must satisfy every bound.
type TypeParam struct {
	typ
	name   string
	bound  Type         // nil if unbounded
	ifaces []*Interface // interface bounds
	index  int          // position in the declaring method's parameter list
}

// NewTypeParam creates a type parameter. Bounds are set with SetBounds
// once they have been resolved, since they may mention other parameters.
func NewTypeParam(name string, index int) *TypeParam {
	return &TypeParam{name: name, index: index}
}

// SetBounds sets the class and interface bounds of p.
func (p *TypeParam) SetBounds(bound Type, ifaces []*Interface) {
	p.bound = bound
	p.ifaces = ifaces
}

// Bound returns the extends bound, or nil.
func (p *TypeParam) Bound() Type { return p.bound }

// Interfaces returns the interface bounds.
func (p *TypeParam) Interfaces() []*Interface { return p.ifaces }

// Index returns the position of p in its parameter list.
func (p *TypeParam) Index() int { return p.index }

// Name implements Type.
func (p *TypeParam) Name() string {
	return p.name
}

// String implements Type. It includes the bounds.
func (p *TypeParam) String() string {
	var b strings.Builder
	b.WriteString(p.name)
	if p.bound != nil {
		b.WriteString(" extends ")
		b.WriteString(p.bound.Name())
	}
	for i, in := range p.ifaces {
		if i == 0 {
			b.WriteString(" implements ")
		} else {
			b.WriteString(" & ")
		}
		b.WriteString(in.Name())
	}
	return b.String()
}

