package compiler

import (
	"strings"

	"github.com/you-not-fish/brisk/internal/bytecode"
	"github.com/you-not-fish/brisk/internal/syntax"
	"github.com/you-not-fish/brisk/internal/types"
)

// include merges the signatures exported by another module into the
// program's tables. Imported classes get signatures but no segments, and
// imported methods get signatures without bodies.
//
// Type names in a header are fully qualified, and may only refer to the
// module's own declarations or to those of modules included before it.
func (p *Program) include(h *bytecode.Header) {
	if h.Hidden {
		errorf(syntax.Pos{}, "cannot link against a hidden header")
	}
	p.log.Debug("including header", "classes", len(h.Classes), "methods", len(h.Methods))

	ifaces := make([]*types.InterfaceSig, len(h.Interfaces))
	for i, hi := range h.Interfaces {
		sig, err := p.table.DeclareInterface(hi.Name, syntax.Pos{})
		check(err)
		sig.Imported = true
		ifaces[i] = sig
	}
	classes := make([]*types.ClassSig, len(h.Classes))
	for i, hc := range h.Classes {
		sig, err := p.table.DeclareClass(hc.Name, syntax.Pos{})
		check(err)
		sig.Imported = true
		sig.Abstract = hc.Abstract
		classes[i] = sig
	}

	for i, hi := range h.Interfaces {
		for j := range hi.Methods {
			ifaces[i].Methods = append(ifaces[i].Methods, p.importMethod(&hi.Methods[j], nil, ifaces[i]))
		}
	}

	for i, hc := range h.Classes {
		sig := classes[i]
		if hc.Parent != "" {
			c, ok := p.headerType(hc.Parent, nil).(*types.Class)
			if !ok {
				errorf(syntax.Pos{}, "header: class %s extends non-class %s", hc.Name, hc.Parent)
			}
			sig.Parent = c.Sig()
		}
		for _, name := range hc.Interfaces {
			it, ok := p.headerType(name, nil).(*types.Interface)
			if !ok {
				errorf(syntax.Pos{}, "header: class %s implements non-interface %s", hc.Name, name)
			}
			sig.Interfaces = append(sig.Interfaces, it.Sig())
		}
		for _, f := range hc.Fields {
			sig.Fields = append(sig.Fields, &types.Field{Name: f.Name, Type: p.headerType(f.FieldType, nil)})
		}
		for j := range hc.Ctors {
			ctor := p.importMethod(&hc.Ctors[j], sig, nil)
			ctor.IsCtor = true
			sig.Ctors = append(sig.Ctors, ctor)
		}
		for _, cm := range hc.Methods {
			hm := findMethod(h, hc.Name, cm.Name)
			if hm == nil {
				errorf(syntax.Pos{}, "header: class %s lists undefined method %s", hc.Name, cm.Name)
			}
			sig.Methods = append(sig.Methods, p.importMethod(hm, sig, nil))
		}
	}

	for i := range h.Methods {
		hm := &h.Methods[i]
		if hm.ContainingClass != "" {
			continue
		}
		check(p.table.DeclareFunc(p.importMethod(hm, nil, nil)))
	}
}

func findMethod(h *bytecode.Header, class, name string) *bytecode.HeaderMethod {
	for i := range h.Methods {
		if m := &h.Methods[i]; m.ContainingClass == class && m.Name == name {
			return m
		}
	}
	return nil
}

func (p *Program) importMethod(hm *bytecode.HeaderMethod, class *types.ClassSig, iface *types.InterfaceSig) *types.MethodSig {
	if hm.NumArgs != len(hm.Arguments) {
		errorf(syntax.Pos{}, "header: method %s has numargs %d but %d arguments", hm.Name, hm.NumArgs, len(hm.Arguments))
	}
	name := hm.Name
	m := p.table.NewMethod(name, syntax.Pos{})
	if class == nil && iface == nil {
		if i := strings.LastIndexByte(name, '.'); i >= 0 {
			m.Namespace, m.Name = name[:i], name[i+1:]
		}
	}
	m.Class = class
	m.Iface = iface
	m.Imported = true
	m.IsCtor = hm.Ctor
	m.IsOverride = hm.Override
	m.IsEntrypoint = hm.Entrypoint
	m.IsAbstract = hm.Abstract

	generics := types.Generics{}
	for i, tp := range hm.TypeParams {
		param := types.NewTypeParam(tp.Name, i)
		generics[tp.Name] = param
		m.TypeParams = append(m.TypeParams, param)
	}
	for i, tp := range hm.TypeParams {
		var bound types.Type
		if tp.Extends != "" {
			bound = p.headerType(tp.Extends, generics)
		}
		var ifaces []*types.Interface
		for _, name := range tp.Implements {
			if it, ok := p.headerType(name, generics).(*types.Interface); ok {
				ifaces = append(ifaces, it)
			}
		}
		m.TypeParams[i].SetBounds(bound, ifaces)
	}

	for _, a := range hm.Arguments {
		m.Args = append(m.Args, p.headerType(a.ArgType, generics))
		m.ArgNames = append(m.ArgNames, a.Name)
	}
	if class != nil && (len(m.Args) == 0 || m.Args[0] != types.Type(class.Type)) {
		errorf(syntax.Pos{}, "header: method %s.%s does not take the instance first", class.Name, name)
	}
	m.Return = p.headerType(hm.Returns, generics)
	return m
}

// headerType returns the type a header names, such as "geo.Point" or
// "[[int]]".
func (p *Program) headerType(name string, generics types.Generics) types.Type {
	if strings.HasPrefix(name, "[") && strings.HasSuffix(name, "]") {
		return p.table.ArrayOf(p.headerType(name[1:len(name)-1], generics))
	}
	if t, ok := generics[name]; ok {
		return t
	}
	t := p.table.LookupExact(name)
	if t == nil {
		errorf(syntax.Pos{}, "header: unresolved type %s", name)
	}
	return t
}

// Header returns the program's exported signatures.
func (p *Program) Header() *bytecode.Header {
	h := bytecode.NewHeader()
	for _, sig := range p.localIfaces {
		hi := bytecode.HeaderInterface{Type: "interface", Name: sig.Name, Methods: []bytecode.HeaderMethod{}}
		for _, m := range sig.Methods {
			hi.Methods = append(hi.Methods, exportMethod(m))
		}
		h.Interfaces = append(h.Interfaces, hi)
	}
	for _, sig := range p.localClasses {
		hc := bytecode.HeaderClass{
			Type:     "class",
			Name:     sig.Name,
			Fields:   []bytecode.HeaderField{},
			Methods:  []bytecode.HeaderClassMethod{},
			Ctors:    []bytecode.HeaderMethod{},
			Abstract: sig.Abstract,
		}
		if sig.Parent != nil {
			hc.Parent = sig.Parent.Name
		}
		for _, in := range sig.Interfaces {
			hc.Interfaces = append(hc.Interfaces, in.Name)
		}
		for _, f := range sig.Fields {
			hc.Fields = append(hc.Fields, bytecode.HeaderField{Type: "field", Name: f.Name, FieldType: f.Type.Name()})
		}
		for _, c := range sig.Ctors {
			hc.Ctors = append(hc.Ctors, exportMethod(c))
		}
		for _, m := range sig.Methods {
			hc.Methods = append(hc.Methods, bytecode.HeaderClassMethod{Type: "classmethod", Name: m.Name})
			h.Methods = append(h.Methods, exportMethod(m))
		}
		h.Classes = append(h.Classes, hc)
	}
	for _, f := range p.localFuncs {
		h.Methods = append(h.Methods, exportMethod(f))
	}
	return h
}

func exportMethod(m *types.MethodSig) bytecode.HeaderMethod {
	hm := bytecode.HeaderMethod{
		Type:       "method",
		Name:       m.Name,
		Arguments:  []bytecode.HeaderArg{},
		NumArgs:    len(m.Args),
		Returns:    m.Return.Name(),
		Entrypoint: m.IsEntrypoint,
		Ctor:       m.IsCtor,
		Override:   m.IsOverride,
		Abstract:   m.IsAbstract,
	}
	if m.Class != nil {
		hm.ContainingClass = m.Class.Name
	} else if m.Iface == nil {
		hm.Name = m.QualifiedName()
	}
	for i, t := range m.Args {
		hm.Arguments = append(hm.Arguments, bytecode.HeaderArg{Type: "argument", Name: m.ArgNames[i], ArgType: t.Name()})
	}
	for _, tp := range m.TypeParams {
		htp := bytecode.HeaderTypeParam{Name: tp.Name()}
		if tp.Bound() != nil {
			htp.Extends = tp.Bound().Name()
		}
		for _, in := range tp.Interfaces() {
			htp.Implements = append(htp.Implements, in.Name())
		}
		hm.TypeParams = append(hm.TypeParams, htp)
	}
	return hm
}
