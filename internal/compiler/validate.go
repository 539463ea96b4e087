package compiler

import (
	"github.com/you-not-fish/brisk/internal/logger"
	"github.com/you-not-fish/brisk/internal/types"
)

// validate checks the inheritance rules of every local class once all
// signatures, imported ones included, are known.
func (p *Program) validate() {
	defer logger.LogPhase(p.log, "validate")()
	for _, c := range p.localClasses {
		p.validateOverrides(c)
		p.validateFields(c)
		if !c.Abstract {
			p.validateComplete(c)
		}
	}
}

// validateOverrides checks that a method marked override has a compatible
// method of the same name in an ancestor, and that a method not marked
// override does not shadow one.
func (p *Program) validateOverrides(c *types.ClassSig) {
	for _, m := range c.Methods {
		var base *types.MethodSig
		if c.Parent != nil {
			base = c.Parent.LookupMethod(m.Name)
		}
		switch {
		case m.IsOverride && base == nil:
			errorf(m.Pos, "%s is marked override but overrides nothing", m.QualifiedName())
		case m.IsOverride && !m.CompatibleOverride(base):
			errorf(m.Pos, "%s does not match the signature of overridden %s", m, base)
		case !m.IsOverride && base != nil:
			errorf(m.Pos, "%s shadows %s; mark it override", m.QualifiedName(), base.QualifiedName())
		}
	}
}

// validateFields rejects a field whose name an ancestor already uses,
// whatever the types.
func (p *Program) validateFields(c *types.ClassSig) {
	if c.Parent == nil {
		return
	}
	for _, f := range c.Fields {
		for _, s := range c.Parent.Chain() {
			for _, pf := range s.Fields {
				if pf.Name == f.Name {
					errorf(c.Pos, "field %s of %s duplicates field %s of %s", f.Name, c.Name, pf.Name, s.Name)
				}
			}
		}
	}
}

// validateComplete checks that a concrete class implements every abstract
// method it inherits and every method of the interfaces it implements.
func (p *Program) validateComplete(c *types.ClassSig) {
	chain := c.Chain()
	for _, s := range chain {
		for _, m := range s.Methods {
			if impl := c.LookupMethod(m.Name); impl.IsAbstract {
				errorf(c.Pos, "class %s does not implement abstract method %s", c.Name, impl.QualifiedName())
			}
		}
	}
	for _, s := range chain {
		for _, in := range s.Interfaces {
			for _, im := range in.Methods {
				impl := c.LookupMethod(im.Name)
				if impl == nil {
					errorf(c.Pos, "class %s does not implement %s: missing method %s", c.Name, in.Name, im.Name)
				}
				if !impl.CompatibleOverride(im) {
					errorf(c.Pos, "class %s does not implement %s: %s does not match %s", c.Name, in.Name, impl, im)
				}
			}
		}
	}
}
