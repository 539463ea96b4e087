package types

// Subst returns typ with every type parameter replaced by its binding in
// env. Unbound parameters are left in place.
func (t *Table) Subst(typ Type, env map[*TypeParam]Type) Type {
	switch typ := typ.(type) {
	case *TypeParam:
		if b, ok := env[typ]; ok {
			return b
		}
	case *Array:
		if elem := t.Subst(typ.elem, env); elem != typ.elem {
			return t.ArrayOf(elem)
		}
	}
	return typ
}

// Unify binds the type parameters occurring in param so that arg fits it,
// recording bindings in env. It reports false if arg has a shape that cannot
// match param, or conflicts with an earlier binding.
//
// An argument of type void (null) binds nothing, so that a later argument
// can decide the parameter.
func Unify(param, arg Type, env map[*TypeParam]Type) bool {
	switch p := param.(type) {
	case *TypeParam:
		if IsVoid(arg) {
			return true
		}
		if prev, ok := env[p]; ok {
			return prev == arg || IsVoid(prev)
		}
		env[p] = arg
		return true
	case *Array:
		if IsVoid(arg) {
			return true
		}
		a, ok := arg.(*Array)
		if !ok {
			return false
		}
		return Unify(p.elem, a.elem, env)
	}
	return true
}

// Instantiate returns the declared argument types and return type of the
// generic m with its type parameters replaced by targs.
func (t *Table) Instantiate(m *MethodSig, targs []Type) (params []Type, ret Type) {
	env := make(map[*TypeParam]Type, len(targs))
	for i, tp := range m.TypeParams {
		env[tp] = targs[i]
	}
	for _, p := range m.Params() {
		params = append(params, t.Subst(p, env))
	}
	return params, t.Subst(m.Return, env)
}

// Satisfies reports whether arg may be substituted for p, with the type
// parameters in p's class bound replaced as env binds them.
func (t *Table) Satisfies(p *TypeParam, arg Type, env map[*TypeParam]Type) bool {
	if b := p.Bound(); b != nil && !AssignableTo(arg, t.Subst(b, env)) {
		return false
	}
	for _, in := range p.Interfaces() {
		if !AssignableTo(arg, in) {
			return false
		}
	}
	return true
}
