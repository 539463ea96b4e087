package compiler

import (
	"github.com/you-not-fish/brisk/internal/bytecode"
	"github.com/you-not-fish/brisk/internal/logger"
	"github.com/you-not-fish/brisk/internal/syntax"
	"github.com/you-not-fish/brisk/internal/types"
)

// Prescan registers every signature the file declares so that bodies may
// refer to declarations in any order. It runs in five steps:
//
//  1. the namespace and the using directives;
//  2. a skeleton signature for every class and interface;
//  3. the members of every class and interface;
//  4. the superclass of every class;
//  5. the free functions.
func (p *Program) Prescan() (err error) {
	defer catch(&err)
	if p.prescanned {
		fatal("Prescan called twice")
	}
	p.prescanned = true
	defer logger.LogPhase(p.log, "prescan")()

	for _, h := range p.conf.Includes {
		p.include(h)
	}

	root := p.tree.Root
	var decls []*syntax.Node
	for i, n := range root.Children {
		switch {
		case i == 0 && n.Kind == syntax.Namespace:
			p.table.SetNamespace(n.Data)
		case n.Kind == syntax.Using:
			p.table.AddUsing(n.Data)
		case n.Kind == syntax.Class, n.Kind == syntax.Interface, n.Kind == syntax.Method:
			decls = append(decls, n)
		case n.Kind == syntax.Empty:
		default:
			fatal("unexpected %s in file", n.Kind)
		}
	}

	// 2.
	for _, n := range decls {
		switch n.Kind {
		case syntax.Class:
			sig, err := p.table.DeclareClass(p.table.Qualify(n.Data), n.Pos)
			check(err)
			mods := n.Child(0)
			for _, m := range mods.Children {
				if m.Data != "abstract" {
					errorf(m.Pos, "modifier %s not allowed on class %s", m.Data, n.Data)
				}
			}
			sig.Abstract = mods.HasModifier("abstract")
			p.classes[n.ID] = sig
			p.localClasses = append(p.localClasses, sig)
		case syntax.Interface:
			if mods := n.Child(0); mods.Len() > 0 {
				errorf(mods.Pos, "modifier %s not allowed on interface %s", mods.Child(0).Data, n.Data)
			}
			sig, err := p.table.DeclareInterface(p.table.Qualify(n.Data), n.Pos)
			check(err)
			p.ifaces[n.ID] = sig
			p.localIfaces = append(p.localIfaces, sig)
		}
	}

	// 3.
	for _, n := range decls {
		switch n.Kind {
		case syntax.Class:
			p.fillClass(n, p.classes[n.ID])
		case syntax.Interface:
			p.fillInterface(n, p.ifaces[n.ID])
		}
	}

	// 4.
	for _, n := range decls {
		if n.Kind != syntax.Class || n.Child(1).IsEmpty() {
			continue
		}
		sig := p.classes[n.ID]
		ext := n.Child(1)
		parent := p.resolve(ext, nil)
		c, ok := parent.(*types.Class)
		if !ok {
			errorf(ext.Pos, "class %s cannot extend non-class %s", sig.Name, parent)
		}
		sig.Parent = c.Sig()
	}
	for _, c := range p.localClasses {
		seen := map[*types.ClassSig]bool{}
		for s := c.Parent; s != nil && !seen[s]; s = s.Parent {
			if s == c {
				errorf(c.Pos, "inheritance cycle through %s", c.Name)
			}
			seen[s] = true
		}
	}

	// 5.
	for _, n := range decls {
		if n.Kind != syntax.Method {
			continue
		}
		m := p.methodSig(n, nil, nil)
		m.Namespace = p.table.Namespace()
		check(p.table.DeclareFunc(m))
		p.localFuncs = append(p.localFuncs, m)
	}
	return nil
}

// AddInclude links the file against the module whose header is h. It must
// be called before Prescan.
func (p *Program) AddInclude(h *bytecode.Header) error {
	if p.prescanned {
		return internalErrorf("AddInclude called after Prescan")
	}
	p.conf.Includes = append(p.conf.Includes, h)
	return nil
}

func (p *Program) resolve(n *syntax.Node, generics types.Generics) types.Type {
	t, err := p.table.Resolve(n, generics, false)
	check(err)
	return t
}

// fillClass fills in the fields, methods and constructor of sig.
func (p *Program) fillClass(n *syntax.Node, sig *types.ClassSig) {
	for _, in := range n.Child(2).Children {
		t := p.resolve(in, nil)
		iface, ok := t.(*types.Interface)
		if !ok {
			errorf(in.Pos, "%s is not an interface", t)
		}
		sig.Interfaces = append(sig.Interfaces, iface.Sig())
	}

	for _, m := range n.Children[3:] {
		switch m.Kind {
		case syntax.Field:
			for _, f := range sig.Fields {
				if f.Name == m.Data {
					errorf(m.Pos, "field %s redeclared in %s", m.Data, sig.Name)
				}
			}
			t := p.resolve(m.Child(0), nil)
			if types.IsVoid(t) {
				errorf(m.Pos, "field %s cannot have type void", m.Data)
			}
			sig.Fields = append(sig.Fields, &types.Field{Name: m.Data, Type: t})

		case syntax.Method:
			if sig.OwnMethod(m.Data) != nil {
				// Overloading is not supported.
				errorf(m.Pos, "method %s redeclared in %s", m.Data, sig.Name)
			}
			ms := p.methodSig(m, sig, nil)
			if ms.IsAbstract && !sig.Abstract {
				errorf(m.Pos, "abstract method %s in non-abstract class %s", m.Data, sig.Name)
			}
			sig.Methods = append(sig.Methods, ms)

		case syntax.Ctor:
			if len(sig.Ctors) > 0 {
				errorf(m.Pos, "class %s has more than one constructor", sig.Name)
			}
			sig.Ctors = append(sig.Ctors, p.ctorSig(m, sig))

		default:
			fatal("unexpected %s in class body", m.Kind)
		}
	}
}

func (p *Program) fillInterface(n *syntax.Node, sig *types.InterfaceSig) {
	for _, m := range n.Children[1:] {
		if sig.LookupMethod(m.Data) != nil {
			errorf(m.Pos, "method %s redeclared in %s", m.Data, sig.Name)
		}
		sig.Methods = append(sig.Methods, p.methodSig(m, nil, sig))
	}
}

// methodSig builds the signature of a Method node declared in class, in
// iface, or at top level when both are nil.
func (p *Program) methodSig(n *syntax.Node, class *types.ClassSig, iface *types.InterfaceSig) *types.MethodSig {
	mods, tparams, params, ret, body := n.Child(0), n.Child(1), n.Child(2), n.Child(3), n.Child(4)

	m := p.table.NewMethod(n.Data, n.Pos)
	m.Class = class
	m.Iface = iface
	m.IsOverride = mods.HasModifier("override")
	m.IsEntrypoint = mods.HasModifier("entrypoint")
	m.IsAbstract = mods.HasModifier("abstract")
	p.methods[n.ID] = m
	p.decls[m] = n

	what := "method"
	if class == nil && iface == nil {
		what = "function"
	}
	switch {
	case iface != nil && mods.Len() > 0:
		errorf(mods.Pos, "modifier %s not allowed on interface method %s", mods.Child(0).Data, n.Data)
	case class == nil && m.IsOverride:
		errorf(n.Pos, "function %s cannot be override", n.Data)
	case class == nil && m.IsAbstract:
		errorf(n.Pos, "function %s cannot be abstract", n.Data)
	case class != nil && m.IsEntrypoint:
		errorf(n.Pos, "entrypoint %s must be a free function", n.Data)
	}

	generics := types.Generics{}
	for i, tp := range tparams.Children {
		if _, dup := generics[tp.Data]; dup {
			errorf(tp.Pos, "type parameter %s redeclared", tp.Data)
		}
		param := types.NewTypeParam(tp.Data, i)
		generics[tp.Data] = param
		m.TypeParams = append(m.TypeParams, param)
	}
	for i, tp := range tparams.Children {
		var bound types.Type
		if !tp.Child(0).IsEmpty() {
			bound = p.resolve(tp.Child(0), generics)
			if !types.IsClass(bound) {
				errorf(tp.Child(0).Pos, "type parameter %s: bound %s is not a class", tp.Data, bound)
			}
		}
		var ifaces []*types.Interface
		for _, in := range tp.Child(1).Children {
			t := p.resolve(in, generics)
			it, ok := t.(*types.Interface)
			if !ok {
				errorf(in.Pos, "type parameter %s: %s is not an interface", tp.Data, t)
			}
			ifaces = append(ifaces, it)
		}
		m.TypeParams[i].SetBounds(bound, ifaces)
	}
	if m.IsGeneric() {
		switch {
		case iface != nil:
			errorf(n.Pos, "interface method %s cannot have type parameters", n.Data)
		case m.IsOverride || m.IsAbstract || m.IsEntrypoint:
			errorf(n.Pos, "generic %s %s cannot be %s", what, n.Data, mods.Child(0).Data)
		}
	}

	if class != nil {
		m.Args = append(m.Args, class.Type)
		m.ArgNames = append(m.ArgNames, "this")
	}
	p.addParams(m, params, generics)

	if !ret.IsEmpty() {
		m.Return = p.resolve(ret, generics)
	}

	hasBody := !body.IsEmpty()
	switch {
	case iface != nil && hasBody:
		errorf(n.Pos, "interface method %s cannot have a body", n.Data)
	case m.IsAbstract && hasBody:
		errorf(n.Pos, "abstract method %s cannot have a body", n.Data)
	case iface == nil && !m.IsAbstract && !hasBody:
		errorf(n.Pos, "%s %s has no body", what, n.Data)
	}
	return m
}

func (p *Program) ctorSig(n *syntax.Node, class *types.ClassSig) *types.MethodSig {
	if mods := n.Child(0); mods.Len() > 0 {
		errorf(mods.Pos, "modifier %s not allowed on a constructor", mods.Child(0).Data)
	}
	m := p.table.NewMethod("ctor", n.Pos)
	m.IsCtor = true
	m.Class = class
	m.Args = []types.Type{class.Type}
	m.ArgNames = []string{"this"}
	p.addParams(m, n.Child(1), nil)
	p.methods[n.ID] = m
	p.decls[m] = n
	return m
}

// maxArgs is the number of argument slots a call has, the receiver
// included.
const maxArgs = 1 << 8

func (p *Program) addParams(m *types.MethodSig, params *syntax.Node, generics types.Generics) {
	for _, prm := range params.Children {
		if len(m.Args) == maxArgs {
			errorf(prm.Pos, "too many arguments in declaration of %s", m.QualifiedName())
		}
		for _, name := range m.ArgNames {
			if name == prm.Data {
				errorf(prm.Pos, "duplicate argument %s", prm.Data)
			}
		}
		t := p.resolve(prm.Child(0), generics)
		if types.IsVoid(t) {
			errorf(prm.Pos, "argument %s cannot have type void", prm.Data)
		}
		m.Args = append(m.Args, t)
		m.ArgNames = append(m.ArgNames, prm.Data)
	}
}
