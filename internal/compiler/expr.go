package compiler

import (
	"github.com/you-not-fish/brisk/internal/bytecode"
	"github.com/you-not-fish/brisk/internal/syntax"
	"github.com/you-not-fish/brisk/internal/types"
)

// maxLiteralArray is the largest length of a [T: n] with a literal n that
// compiles without a warning.
const maxLiteralArray = 1 << 16

var binaryOps = map[string]bytecode.Op{
	"+":   bytecode.OpAdd,
	"-":   bytecode.OpSub,
	"*":   bytecode.OpMul,
	"/":   bytecode.OpDiv,
	"%":   bytecode.OpMod,
	"&":   bytecode.OpAnd,
	"|":   bytecode.OpOr,
	"^":   bytecode.OpXor,
	"and": bytecode.OpAnd,
	"or":  bytecode.OpOr,
	"==":  bytecode.OpEquals,
	"!=":  bytecode.OpEquals,
	"<":   bytecode.OpLt,
	"<=":  bytecode.OpLe,
	">":   bytecode.OpGt,
	">=":  bytecode.OpGe,
}

// value lowers an expression whose result is used, warning when that
// result comes from a void call.
func (e *emitter) value(n *syntax.Node) *bytecode.Register {
	if t := e.typeOf(n); types.IsVoid(t) {
		if c := e.callOf(n); c != nil {
			e.warnf(n.Pos, "result of %s is void and is used as a value", c.sig.QualifiedName())
		}
	}
	return e.expr(n)
}

// callOf returns the call n ends in, or nil.
func (e *emitter) callOf(n *syntax.Node) *call {
	switch n.Kind {
	case syntax.Call:
		return e.calls[n.ID]
	case syntax.Chain:
		return e.calls[n.Child(n.Len()-1).ID]
	}
	return nil
}

func (e *emitter) values(list []*syntax.Node) []*bytecode.Register {
	regs := make([]*bytecode.Register, len(list))
	for i, x := range list {
		regs[i] = e.value(x)
	}
	return regs
}

// expr lowers n into a fresh register, or into the register of the local
// it names. Operands are evaluated left to right; and and or evaluate
// both operands.
func (e *emitter) expr(n *syntax.Node) *bytecode.Register {
	t := e.typeOf(n)
	switch n.Kind {
	case syntax.IntLit:
		mag, neg := intValue(n)
		r := e.loadInt(t, mag)
		if !neg {
			return r
		}
		d := e.newReg(t)
		e.emit(bytecode.OpNegate, d, r)
		return d

	case syntax.BoolLit:
		var v uint64
		if n.Data == "true" {
			v = 1
		}
		return e.loadInt(t, v)

	case syntax.Null:
		d := e.newReg(t)
		e.emit(bytecode.OpLoadNull, d)
		return d

	case syntax.This:
		return e.scope.lookup("this").reg

	case syntax.Ident:
		return e.use(n).reg

	case syntax.StringLit:
		units := []rune(n.Data)
		arr := e.newArray(t, len(units))
		for i, u := range units {
			e.emit(bytecode.OpArraySet, arr, e.loadInt(types.Typ[types.Int], uint64(i)), e.loadInt(types.Typ[types.Int], uint64(u)))
		}
		return arr

	case syntax.ArrayLit:
		arr := e.newArray(t, n.Len())
		for i, x := range n.Children {
			v := e.value(x)
			e.emit(bytecode.OpArraySet, arr, e.loadInt(types.Typ[types.Int], uint64(i)), v)
		}
		return arr

	case syntax.ArrayNew:
		ln := n.Child(1)
		if ln.Kind == syntax.IntLit {
			if mag, neg := intValue(ln); !neg && mag > maxLiteralArray {
				e.warnf(n.Pos, "statically allocating an array of %d elements", mag)
			}
		}
		l := e.value(ln)
		d := e.newReg(t)
		e.emit(bytecode.OpNewArray, d, l)
		return d

	case syntax.Binary:
		x, y := e.value(n.Child(0)), e.value(n.Child(1))
		d := e.newReg(t)
		e.emit(binaryOps[n.Data], d, x, y)
		if n.Data != "!=" {
			return d
		}
		ne := e.newReg(t)
		e.emit(bytecode.OpInvert, ne, d)
		return ne

	case syntax.Unary:
		x := e.value(n.Child(0))
		d := e.newReg(t)
		switch n.Data {
		case "-":
			e.emit(bytecode.OpNegate, d, x)
		case "!":
			e.emit(bytecode.OpInvert, d, x)
		case "~":
			e.emit(bytecode.OpXor, d, x, e.loadInt(t, ^uint64(0)))
		}
		return d

	case syntax.Cast:
		x := e.value(n.Child(0))
		d := e.newReg(t)
		if types.AssignableTo(x.Type, t) {
			e.emit(bytecode.OpCopy, d, x)
		} else {
			e.emit(bytecode.OpCast, d, x, bytecode.TypeRef{Type: t})
		}
		return d

	case syntax.InstanceOf:
		x := e.value(n.Child(0))
		d := e.newReg(t)
		e.emit(bytecode.OpInstanceOf, d, x, bytecode.TypeRef{Type: e.types[n.Child(1).ID]})
		return d

	case syntax.New:
		args := e.values(n.Child(1).Children)
		obj := e.newReg(t)
		e.emit(bytecode.OpNewObject, obj, bytecode.ClassRef{Sig: t.(*types.Class).Sig()})
		if c := e.calls[n.ID]; c != nil {
			e.emit(bytecode.OpSetArg, bytecode.ArgIndex(0), obj)
			for i, r := range args {
				e.emit(bytecode.OpSetArg, bytecode.ArgIndex(i+1), r)
			}
			e.emit(bytecode.OpCall, e.newReg(c.ret), bytecode.MethodRef{Sig: c.sig, Name: c.name})
		}
		return obj

	case syntax.Call:
		c := e.calls[n.ID]
		var recv *bytecode.Register
		if c.onThis {
			recv = e.scope.lookup("this").reg
		}
		return e.emitCall(n, c, recv)

	case syntax.Chain:
		return e.walk(n, n.Len())
	}
	fatal("cannot lower %s", n.Kind)
	return nil
}

func (e *emitter) newArray(t types.Type, n int) *bytecode.Register {
	arr := e.newReg(t)
	e.emit(bytecode.OpNewArray, arr, e.loadInt(types.Typ[types.Int], uint64(n)))
	return arr
}

// emitCall lowers the Call or MethodCall n. The receiver, if any, goes in
// argument slot 0 and the declared arguments follow it.
func (e *emitter) emitCall(n *syntax.Node, c *call, recv *bytecode.Register) *bytecode.Register {
	args := e.values(n.Child(1).Children)
	slot := 0
	if recv != nil {
		e.emit(bytecode.OpSetArg, bytecode.ArgIndex(0), recv)
		slot = 1
	}
	for i, r := range args {
		e.emit(bytecode.OpSetArg, bytecode.ArgIndex(slot+i), r)
	}
	op := bytecode.OpCall
	if c.virtual {
		op = bytecode.OpCallVirtual
	}
	d := e.newReg(c.ret)
	e.emit(op, d, bytecode.MethodRef{Sig: c.sig, Name: c.name})
	return d
}

// walk lowers the first upto children of the chain n, threading the
// current value through each segment. Reads walk the whole chain; stores
// walk all but the last segment.
func (e *emitter) walk(n *syntax.Node, upto int) *bytecode.Register {
	var cur *bytecode.Register
	start := 1
	if i, ok := e.quals[n.ID]; ok {
		mc := n.Child(i)
		cur = e.emitCall(mc, e.calls[mc.ID], nil)
		start = i + 1
	} else {
		cur = e.value(n.Child(0))
	}
	for _, seg := range n.Children[start:upto] {
		cur = e.segment(seg, cur)
	}
	return cur
}

func (e *emitter) segment(seg *syntax.Node, cur *bytecode.Register) *bytecode.Register {
	t := e.types[seg.ID]
	switch seg.Kind {
	case syntax.Property:
		d := e.newReg(t)
		if types.IsArray(cur.Type) {
			e.emit(bytecode.OpArrayLength, d, cur)
			return d
		}
		_, slot, _ := cur.Type.(*types.Class).Sig().LookupField(seg.Data)
		e.emit(bytecode.OpGetField, d, cur, bytecode.Imm(slot))
		return d
	case syntax.Index:
		idx := e.value(seg.Child(0))
		d := e.newReg(t)
		e.emit(bytecode.OpArrayGet, d, cur, idx)
		return d
	case syntax.MethodCall:
		return e.emitCall(seg, e.calls[seg.ID], cur)
	}
	fatal("unexpected chain segment %s", seg.Kind)
	return nil
}
