package types

import (
	"strings"

	"github.com/you-not-fish/brisk/internal/syntax"
)

// MethodSig describes a free function, method, constructor or interface
// method independent of its body.
//
// Methods and constructors of a class take the instance as an invisible
// first argument named "this"; Args and ArgNames include it.
type MethodSig struct {
	ID       int // unique within a Table, in declaration order
	Name     string
	Args     []Type
	ArgNames []string
	Return   Type
	Pos      syntax.Pos

	IsCtor       bool
	IsOverride   bool
	IsEntrypoint bool
	IsAbstract   bool

	Class      *ClassSig     // containing class; nil for free functions
	Iface      *InterfaceSig // containing interface; nil otherwise
	Namespace  string        // namespace of a free function
	TypeParams []*TypeParam

	Imported bool
}

// HasReceiver reports whether Args[0] is the implicit "this".
func (m *MethodSig) HasReceiver() bool {
	return m.Class != nil
}

// Params returns the declared argument types, without the receiver.
func (m *MethodSig) Params() []Type {
	if m.HasReceiver() {
		return m.Args[1:]
	}
	return m.Args
}

// ParamNames returns the declared argument names, without the receiver.
func (m *MethodSig) ParamNames() []string {
	if m.HasReceiver() {
		return m.ArgNames[1:]
	}
	return m.ArgNames
}

// IsGeneric reports whether m declares type parameters.
func (m *MethodSig) IsGeneric() bool {
	return len(m.TypeParams) > 0
}

// QualifiedName returns the name of the segment holding m's body:
// "ns.f" for free functions, "ns.Foo.m" for methods and "ns.Foo.ctor" for
// constructors.
func (m *MethodSig) QualifiedName() string {
	switch {
	case m.Class != nil && m.IsCtor:
		return m.Class.Name + ".ctor"
	case m.Class != nil:
		return m.Class.Name + "." + m.Name
	case m.Iface != nil:
		return m.Iface.Name + "." + m.Name
	case m.Namespace != "":
		return m.Namespace + "." + m.Name
	}
	return m.Name
}

// InstanceName returns the segment name of m reified with targs,
// e.g. "ns.max<int>".
func (m *MethodSig) InstanceName(targs []Type) string {
	names := make([]string, len(targs))
	for i, t := range targs {
		names[i] = t.Name()
	}
	return m.QualifiedName() + "<" + strings.Join(names, ",") + ">"
}

// String renders the signature, e.g. "Foo.m(a: int): bool".
func (m *MethodSig) String() string {
	var b strings.Builder
	b.WriteString(m.QualifiedName())
	b.WriteByte('(')
	names := m.ParamNames()
	for i, t := range m.Params() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(names[i])
		b.WriteString(": ")
		b.WriteString(t.Name())
	}
	b.WriteString("): ")
	b.WriteString(m.Return.Name())
	return b.String()
}

// CompatibleOverride reports whether m may override base: the same number
// of declared arguments, each argument contravariant and the return type
// covariant. A void method only overrides a void method.
func (m *MethodSig) CompatibleOverride(base *MethodSig) bool {
	mp, bp := m.Params(), base.Params()
	if len(mp) != len(bp) || IsVoid(m.Return) != IsVoid(base.Return) {
		return false
	}
	for i := range mp {
		if !AssignableTo(bp[i], mp[i]) {
			return false
		}
	}
	return AssignableTo(m.Return, base.Return)
}
