package compiler

import (
	"math"
	"strconv"
	"strings"

	"github.com/you-not-fish/brisk/internal/claims"
	"github.com/you-not-fish/brisk/internal/syntax"
	"github.com/you-not-fish/brisk/internal/types"
)

// call is a resolved call site.
type call struct {
	sig     *types.MethodSig
	name    string // callee segment name; the bare method name for virtual calls
	virtual bool   // dispatched on the receiver's class
	onThis  bool   // bare call of a method of the enclosing class
	params  []types.Type
	ret     types.Type
}

// typeOf returns the type of the expression n, checking it on first use.
// Results are recorded by node id, as are the resolved calls and the type
// annotations the expression mentions.
func (e *emitter) typeOf(n *syntax.Node) types.Type {
	if t, ok := e.types[n.ID]; ok {
		return t
	}
	t := e.decide(n)
	e.types[n.ID] = t
	return t
}

func (e *emitter) decide(n *syntax.Node) types.Type {
	switch n.Kind {
	case syntax.IntLit:
		intValue(n)
		return types.Typ[types.Int]
	case syntax.BoolLit:
		return types.Typ[types.Bool]
	case syntax.Null:
		return types.Typ[types.Void]
	case syntax.This:
		if e.this == nil {
			errorf(n.Pos, "this used outside of a method")
		}
		return e.this
	case syntax.StringLit:
		return e.p.table.ArrayOf(types.Typ[types.Int])
	case syntax.Ident:
		return e.use(n).reg.Type
	case syntax.Binary:
		return e.binaryType(n)
	case syntax.Unary:
		return e.unaryType(n)
	case syntax.Cast:
		x, t := e.typeOf(n.Child(0)), e.resolveType(n.Child(1))
		if !types.AssignableTo(x, t) && !(types.IsReference(t) && types.AssignableTo(t, x)) {
			errorf(n.Pos, "cannot convert %s to %s", x, t)
		}
		return t
	case syntax.InstanceOf:
		x, t := e.typeOf(n.Child(0)), e.resolveType(n.Child(1))
		if !types.IsReference(x) && !types.IsVoid(x) {
			errorf(n.Pos, "instanceof needs a reference operand, got %s", x)
		}
		if !types.IsReference(t) {
			errorf(n.Child(1).Pos, "instanceof %s: not a class, interface or array type", t)
		}
		return types.Typ[types.Bool]
	case syntax.New:
		return e.newType(n)
	case syntax.ArrayLit:
		return e.arrayLitType(n)
	case syntax.ArrayNew:
		elem := e.resolveType(n.Child(0))
		if types.IsVoid(elem) {
			errorf(n.Child(0).Pos, "invalid array element type void")
		}
		if l := e.typeOf(n.Child(1)); !types.IsNumerical(l) {
			errorf(n.Child(1).Pos, "array length must be int, got %s", l)
		}
		return e.p.table.ArrayOf(elem)
	case syntax.Call:
		return e.bareCall(n).ret
	case syntax.Chain:
		return e.chainType(n)
	}
	fatal("cannot decide the type of %s", n.Kind)
	return nil
}

// use returns the local an identifier refers to. A local declared without
// an initializer must be definitely initialized at this point.
func (e *emitter) use(n *syntax.Node) *local {
	l := e.scope.lookup(n.Data)
	if l == nil {
		errorf(n.Pos, "undefined: %s", n.Data)
	}
	if l.deferred && !e.claims.ContainsEquivalent(claims.Init(l.subject())) {
		errorf(n.Pos, "%s might not be initialized", n.Data)
	}
	return l
}

func (e *emitter) resolveType(n *syntax.Node) types.Type {
	t, err := e.p.table.Resolve(n, e.generics, false)
	check(err)
	e.types[n.ID] = t
	return t
}

// intValue returns the magnitude and sign of an integer literal.
func intValue(n *syntax.Node) (mag uint64, neg bool) {
	s := n.Data
	if strings.HasPrefix(s, "-") {
		s, neg = s[1:], true
	}
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s, base = s[2:], 16
	}
	mag, err := strconv.ParseUint(s, base, 64)
	limit := uint64(math.MaxInt64)
	if neg {
		limit++
	}
	if err != nil || mag > limit {
		errorf(n.Pos, "integer literal %s overflows int", n.Data)
	}
	return mag, neg
}

func (e *emitter) binaryType(n *syntax.Node) types.Type {
	x, y := e.typeOf(n.Child(0)), e.typeOf(n.Child(1))
	switch n.Data {
	case "+", "-", "*", "/", "%", "&", "|", "^":
		if !types.IsNumerical(x) || !types.IsNumerical(y) {
			errorf(n.Pos, "operator %s requires int operands, got %s and %s", n.Data, x, y)
		}
		return types.Typ[types.Int]
	case "<", "<=", ">", ">=":
		if !types.IsNumerical(x) || !types.IsNumerical(y) {
			errorf(n.Pos, "operator %s requires int operands, got %s and %s", n.Data, x, y)
		}
		return types.Typ[types.Bool]
	case "==", "!=":
		if !types.Comparable(x, y) {
			errorf(n.Pos, "mismatched types %s and %s in %s", x, y, n.Data)
		}
		return types.Typ[types.Bool]
	case "and", "or":
		if !types.IsBoolean(x) || !types.IsBoolean(y) {
			errorf(n.Pos, "operator %s requires bool operands, got %s and %s", n.Data, x, y)
		}
		return types.Typ[types.Bool]
	}
	fatal("unknown binary operator %s", n.Data)
	return nil
}

func (e *emitter) unaryType(n *syntax.Node) types.Type {
	x := e.typeOf(n.Child(0))
	switch n.Data {
	case "-", "~":
		if !types.IsNumerical(x) {
			errorf(n.Pos, "operator %s requires an int operand, got %s", n.Data, x)
		}
		return x
	case "!":
		if !types.IsBoolean(x) {
			errorf(n.Pos, "operator ! requires a bool operand, got %s", x)
		}
		return x
	}
	fatal("unknown unary operator %s", n.Data)
	return nil
}

// arrayLitType infers the element type of an array literal: the element
// types after the first non-null one must fit the running common type,
// which may widen along the first element's chain of ancestors.
func (e *emitter) arrayLitType(n *syntax.Node) types.Type {
	if n.Len() == 0 {
		errorf(n.Pos, "cannot infer the element type of an empty array literal")
	}
	var common types.Type
	for _, x := range n.Children {
		t := e.typeOf(x)
		if types.IsVoid(t) {
			continue
		}
		if common == nil {
			common = t
			continue
		}
		for !types.AssignableTo(t, common) {
			c, ok := common.(*types.Class)
			if !ok || c.Sig().Parent == nil {
				errorf(x.Pos, "incompatible types in array literal: %s and %s", common, t)
			}
			common = c.Sig().Parent.Type
		}
	}
	if common == nil {
		errorf(n.Pos, "cannot infer the element type of an array literal of nulls")
	}
	return e.p.table.ArrayOf(common)
}

func (e *emitter) newType(n *syntax.Node) types.Type {
	t := e.resolveType(n.Child(0))
	c, ok := t.(*types.Class)
	if !ok {
		errorf(n.Pos, "cannot instantiate %s", t)
	}
	sig := c.Sig()
	if sig.Abstract {
		errorf(n.Pos, "cannot instantiate abstract class %s", sig.Name)
	}
	args := n.Child(1)
	ctor := constructor(sig)
	if ctor == nil {
		if args.Len() > 0 {
			errorf(n.Pos, "%s has no constructor taking arguments", sig.Name)
		}
		return t
	}
	e.checkArgs(n.Pos, ctor, ctor.Params(), args)
	e.calls[n.ID] = &call{sig: ctor, name: ctor.QualifiedName(), params: ctor.Params(), ret: types.Typ[types.Void]}
	return t
}

// constructor returns the constructor new runs for instances of c: its
// own, or the nearest ancestor's.
func constructor(c *types.ClassSig) *types.MethodSig {
	for _, s := range c.Chain() {
		if len(s.Ctors) > 0 {
			return s.Ctors[0]
		}
	}
	return nil
}

// ----------------------------------------------------------------------------
// Calls

// bareCall resolves f(args): a free function visible from the current
// namespace, or else a method of the enclosing class.
func (e *emitter) bareCall(n *syntax.Node) *call {
	if f := e.p.table.LookupFunc(n.Data); f != nil {
		return e.bindCall(n, f, false)
	}
	if e.this != nil {
		if m := e.this.Sig().LookupMethod(n.Data); m != nil {
			c := e.bindCall(n, m, true)
			c.onThis = true
			return c
		}
	}
	errorf(n.Pos, "undefined function or method %s", n.Data)
	return nil
}

// memberCall resolves the MethodCall segment n on a receiver of type recv.
func (e *emitter) memberCall(n *syntax.Node, recv types.Type) *call {
	var m *types.MethodSig
	switch r := recv.(type) {
	case *types.Class:
		m = r.Sig().LookupMethod(n.Data)
	case *types.Interface:
		m = r.Sig().LookupMethod(n.Data)
	default:
		errorf(n.Pos, "%s has no methods", recv)
	}
	if m == nil {
		errorf(n.Pos, "%s has no method %s", recv, n.Data)
	}
	return e.bindCall(n, m, true)
}

// bindCall checks the Call or MethodCall n against m and records the
// resolved call. Generic methods are reified and called statically;
// other methods of a receiver are called virtually.
func (e *emitter) bindCall(n *syntax.Node, m *types.MethodSig, receiver bool) *call {
	targs, args := n.Child(0), n.Child(1)
	c := &call{sig: m, params: m.Params(), ret: m.Return}
	switch {
	case m.IsGeneric():
		ta := e.inferTypeArgs(n, m, targs, args)
		c.params, c.ret = e.p.table.Instantiate(m, ta)
		c.name = e.p.instantiate(n.Pos, m, ta)
	case targs.Len() > 0:
		errorf(n.Pos, "%s is not generic", m.QualifiedName())
	case receiver:
		c.virtual = true
		c.name = m.Name
	default:
		c.name = m.QualifiedName()
	}
	e.checkArgs(n.Pos, m, c.params, args)
	e.calls[n.ID] = c
	return c
}

func (e *emitter) checkArgs(pos syntax.Pos, m *types.MethodSig, params []types.Type, args *syntax.Node) {
	if args.Len() != len(params) {
		errorf(pos, "wrong number of arguments in call to %s: have %d, want %d", m.QualifiedName(), args.Len(), len(params))
	}
	if len(params) > math.MaxUint8 {
		errorf(pos, "too many arguments in call to %s", m.QualifiedName())
	}
	for i, a := range args.Children {
		if t := e.typeOf(a); !types.AssignableTo(t, params[i]) {
			errorf(a.Pos, "cannot use %s as %s in argument %d to %s", t, params[i], i+1, m.QualifiedName())
		}
	}
}

// inferTypeArgs returns the type arguments of a call to the generic m:
// the explicit ones, or those inferred by unifying the declared argument
// types with the types of the actual arguments. Each must satisfy its
// parameter's bounds.
func (e *emitter) inferTypeArgs(n *syntax.Node, m *types.MethodSig, targs, args *syntax.Node) []types.Type {
	env := make(map[*types.TypeParam]types.Type)
	if targs.Len() > 0 {
		if targs.Len() != len(m.TypeParams) {
			errorf(n.Pos, "wrong number of type arguments for %s: have %d, want %d", m.QualifiedName(), targs.Len(), len(m.TypeParams))
		}
		for i, tn := range targs.Children {
			t := e.resolveType(tn)
			if types.IsVoid(t) {
				errorf(tn.Pos, "void is not a valid type argument")
			}
			env[m.TypeParams[i]] = t
		}
	} else {
		params := m.Params()
		if args.Len() != len(params) {
			errorf(n.Pos, "wrong number of arguments in call to %s: have %d, want %d", m.QualifiedName(), args.Len(), len(params))
		}
		for i, a := range args.Children {
			if t := e.typeOf(a); !types.Unify(params[i], t, env) {
				errorf(a.Pos, "cannot use %s as %s in argument %d to %s", t, params[i], i+1, m.QualifiedName())
			}
		}
	}

	list := make([]types.Type, len(m.TypeParams))
	for i, tp := range m.TypeParams {
		t, ok := env[tp]
		if !ok {
			errorf(n.Pos, "cannot infer %s in call to %s", tp.Name(), m.QualifiedName())
		}
		if !e.p.table.Satisfies(tp, t, env) {
			errorf(n.Pos, "%s does not satisfy %s", t, tp)
		}
		list[i] = t
	}
	return list
}

// ----------------------------------------------------------------------------
// Chains

// chainType types each segment of a chain in turn; the chain has the type
// of its last segment.
func (e *emitter) chainType(n *syntax.Node) types.Type {
	start, t := e.chainBase(n)
	for _, seg := range n.Children[start:] {
		t = e.segmentType(seg, t)
		e.types[seg.ID] = t
	}
	return t
}

// chainBase types the start of a chain and returns the index of the first
// segment still to be typed. A base identifier that is not a local names a
// namespace: ns.sub.f(x) calls the free function ns.sub.f.
func (e *emitter) chainBase(n *syntax.Node) (int, types.Type) {
	base := n.Child(0)
	if base.Kind != syntax.Ident || e.scope.lookup(base.Data) != nil {
		return 1, e.typeOf(base)
	}
	qname := base.Data
	i := 1
	for i < n.Len() && n.Child(i).Kind == syntax.Property {
		qname += "." + n.Child(i).Data
		i++
	}
	if i < n.Len() && n.Child(i).Kind == syntax.MethodCall {
		if f := e.p.table.LookupFunc(qname + "." + n.Child(i).Data); f != nil {
			c := e.bindCall(n.Child(i), f, false)
			e.types[n.Child(i).ID] = c.ret
			e.quals[n.ID] = i
			return i + 1, c.ret
		}
	}
	errorf(base.Pos, "undefined: %s", base.Data)
	return 0, nil
}

func (e *emitter) segmentType(seg *syntax.Node, t types.Type) types.Type {
	switch seg.Kind {
	case syntax.Property:
		switch r := t.(type) {
		case *types.Array:
			if seg.Data == "length" {
				return types.Typ[types.Int]
			}
		case *types.Class:
			if f, _, ok := r.Sig().LookupField(seg.Data); ok {
				return f.Type
			}
		}
		errorf(seg.Pos, "%s has no field %s", t, seg.Data)
	case syntax.Index:
		a, ok := t.(*types.Array)
		if !ok {
			errorf(seg.Pos, "cannot index %s", t)
		}
		if it := e.typeOf(seg.Child(0)); !types.IsNumerical(it) {
			errorf(seg.Child(0).Pos, "array index must be int, got %s", it)
		}
		return a.Elem()
	case syntax.MethodCall:
		return e.memberCall(seg, t).ret
	}
	fatal("unexpected chain segment %s", seg.Kind)
	return nil
}
