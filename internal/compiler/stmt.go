package compiler

import (
	"github.com/you-not-fish/brisk/internal/bytecode"
	"github.com/you-not-fish/brisk/internal/claims"
	"github.com/you-not-fish/brisk/internal/syntax"
	"github.com/you-not-fish/brisk/internal/types"
)

// Each statement lowering returns the claims that hold once the statement
// has run to completion, whichever path it took.

// block lowers a statement sequence in a new scope.
func (e *emitter) block(n *syntax.Node) *claims.Space {
	e.scope.open()
	defer e.scope.close()
	return e.sequence(n)
}

// sequence lowers the statements of a block in the current scope. A claim
// made by an earlier statement stands over an equivalent later one.
func (e *emitter) sequence(n *syntax.Node) *claims.Space {
	outer := e.claims
	cs := claims.New(outer)
	e.claims = cs
	for _, s := range n.Children {
		cs.MergeConservative(e.stmt(s))
	}
	e.claims = outer
	return cs
}

// nested lowers the arm of an if or the body of a loop in its own scope.
func (e *emitter) nested(n *syntax.Node) *claims.Space {
	if n.Kind == syntax.Block {
		return e.block(n)
	}
	e.scope.open()
	defer e.scope.close()
	return e.stmt(n)
}

func none() *claims.Space { return claims.New(nil) }

func (e *emitter) stmt(n *syntax.Node) *claims.Space {
	switch n.Kind {
	case syntax.Empty:
		return none()
	case syntax.Block:
		return e.block(n)
	case syntax.Let:
		e.let(n)
		return none()
	case syntax.Assign:
		return e.assign(n)
	case syntax.Increment:
		op := "+="
		if n.Data == "--" {
			op = "-="
		}
		return e.store(n.Child(0), op, n.Pos, types.Typ[types.Int], func() *bytecode.Register {
			return e.loadInt(types.Typ[types.Int], 1)
		})
	case syntax.If:
		return e.ifStmt(n)
	case syntax.While:
		e.whileStmt(n)
		return none()
	case syntax.For:
		return e.forStmt(n)
	case syntax.Return:
		e.returnStmt(n)
		return claims.New(nil, claims.Return)
	case syntax.Break:
		if e.breakTarget == nil {
			errorf(n.Pos, "break is not in a loop")
		}
		e.emit(bytecode.OpGoto, e.breakTarget)
		return none()
	case syntax.Continue:
		if e.continueTarget == nil {
			errorf(n.Pos, "continue is not in a loop")
		}
		e.emit(bytecode.OpGoto, e.continueTarget)
		return none()
	case syntax.ExprStmt:
		e.expr(n.Child(0))
		return none()
	}
	fatal("unexpected statement %s", n.Kind)
	return nil
}

func (e *emitter) let(n *syntax.Node) {
	typ, val := n.Child(0), n.Child(1)
	var t types.Type
	if !typ.IsEmpty() {
		t = e.resolveType(typ)
		if types.IsVoid(t) {
			errorf(typ.Pos, "%s cannot have type void", n.Data)
		}
	}

	var r *bytecode.Register
	if !val.IsEmpty() {
		vt := e.typeOf(val)
		switch {
		case t == nil && types.IsVoid(vt):
			errorf(val.Pos, "cannot infer the type of %s from a void value", n.Data)
		case t == nil:
			t = vt
		case !types.AssignableTo(vt, t):
			errorf(val.Pos, "cannot use %s as %s in declaration of %s", vt, t, n.Data)
		}
		r = e.value(val)
	} else if t == nil {
		errorf(n.Pos, "%s needs a type or an initial value", n.Data)
	}

	l := &local{name: n.Data, reg: e.newReg(t), deferred: r == nil}
	if r != nil {
		e.emit(bytecode.OpCopy, l.reg, r)
	}
	if !e.scope.declare(l) {
		errorf(n.Pos, "%s redeclared in this block", n.Data)
	}
}

func (e *emitter) assign(n *syntax.Node) *claims.Space {
	val := n.Child(1)
	vt := e.typeOf(val)
	return e.store(n.Child(0), n.Data, n.Pos, vt, func() *bytecode.Register {
		return e.value(val)
	})
}

var compoundOps = map[string]bytecode.Op{
	"+=": bytecode.OpAdd,
	"-=": bytecode.OpSub,
	"*=": bytecode.OpMul,
}

// store lowers target op= value, where rhs emits the value, of type vt.
// A plain assignment to a local declared without an initial value claims
// that the local is initialized.
func (e *emitter) store(target *syntax.Node, op string, pos syntax.Pos, vt types.Type, rhs func() *bytecode.Register) *claims.Space {
	switch target.Kind {
	case syntax.Ident:
		l := e.scope.lookup(target.Data)
		if l == nil {
			errorf(target.Pos, "undefined: %s", target.Data)
		}
		if op == "=" {
			if !types.AssignableTo(vt, l.reg.Type) {
				errorf(pos, "cannot use %s as %s in assignment", vt, l.reg.Type)
			}
			e.emit(bytecode.OpCopy, l.reg, rhs())
			if l.deferred {
				return claims.New(nil, claims.Init(l.subject()))
			}
			return none()
		}
		e.use(target)
		e.checkCompound(pos, op, l.reg.Type, vt)
		r := rhs()
		e.emit(compoundOps[op], l.reg, l.reg, r)
		return none()

	case syntax.Chain:
		tt := e.typeOf(target)
		last := target.Child(target.Len() - 1)
		if last.Kind == syntax.MethodCall {
			errorf(pos, "cannot assign to the result of a call")
		}
		obj := e.walk(target, target.Len()-1)
		if last.Kind == syntax.Property && types.IsArray(obj.Type) {
			errorf(pos, "cannot assign to array length")
		}
		var idx *bytecode.Register
		if last.Kind == syntax.Index {
			idx = e.value(last.Child(0))
		}
		var r *bytecode.Register
		if op == "=" {
			if !types.AssignableTo(vt, tt) {
				errorf(pos, "cannot use %s as %s in assignment", vt, tt)
			}
			r = rhs()
		} else {
			e.checkCompound(pos, op, tt, vt)
			old := e.walk(target, target.Len())
			r = e.newReg(tt)
			e.emit(compoundOps[op], r, old, rhs())
		}
		if idx != nil {
			e.emit(bytecode.OpArraySet, obj, idx, r)
		} else {
			_, slot, _ := obj.Type.(*types.Class).Sig().LookupField(last.Data)
			e.emit(bytecode.OpSetField, obj, bytecode.Imm(slot), r)
		}
		return none()

	case syntax.This:
		errorf(pos, "cannot assign to this")
	}
	errorf(pos, "cannot assign to %s", target.Kind)
	return nil
}

func (e *emitter) checkCompound(pos syntax.Pos, op string, t, vt types.Type) {
	if !types.IsNumerical(t) || !types.IsNumerical(vt) {
		errorf(pos, "operator %s requires int operands, got %s and %s", op, t, vt)
	}
}

// ifStmt claims only what both arms claim. Without an else arm it claims
// nothing.
func (e *emitter) ifStmt(n *syntax.Node) *claims.Space {
	els := e.label("if.else")
	e.emit(bytecode.OpJumpIfFalse, e.cond(n.Child(0), "if"), els)
	then := e.nested(n.Child(1))
	if n.Child(2).IsEmpty() {
		e.place(els)
		return none()
	}
	end := e.label("if.end")
	e.emit(bytecode.OpGoto, end)
	e.place(els)
	otherwise := e.nested(n.Child(2))
	e.place(end)
	return then.Intersect(otherwise)
}

func (e *emitter) cond(n *syntax.Node, what string) *bytecode.Register {
	if t := e.typeOf(n); !types.IsBoolean(t) {
		errorf(n.Pos, "non-bool %s used as %s condition", t, what)
	}
	return e.value(n)
}

// loop lowers a loop body with break and continue bound to the given
// targets. The body may run zero times, so its claims are dropped.
func (e *emitter) loop(body *syntax.Node, brk, cont *bytecode.Instr) {
	saveBrk, saveCont := e.breakTarget, e.continueTarget
	e.breakTarget, e.continueTarget = brk, cont
	e.nested(body)
	e.breakTarget, e.continueTarget = saveBrk, saveCont
}

func (e *emitter) whileStmt(n *syntax.Node) {
	top, end := e.label("while.top"), e.label("while.end")
	e.place(top)
	e.emit(bytecode.OpJumpIfFalse, e.cond(n.Child(0), "while"), end)
	e.loop(n.Child(1), end, top)
	e.emit(bytecode.OpGoto, top)
	e.place(end)
}

// forStmt lowers for (init; cond; post) body. The init statement runs
// exactly once, so its claims hold after the loop.
func (e *emitter) forStmt(n *syntax.Node) *claims.Space {
	init, cnd, post, body := n.Child(0), n.Child(1), n.Child(2), n.Child(3)
	e.scope.open()
	defer e.scope.close()

	outer := e.claims
	cs := claims.New(outer)
	e.claims = cs
	cs.MergePushy(e.stmt(init))

	top, next, end := e.label("for.top"), e.label("for.next"), e.label("for.end")
	e.place(top)
	if !cnd.IsEmpty() {
		e.emit(bytecode.OpJumpIfFalse, e.cond(cnd, "for"), end)
	}
	e.loop(body, end, next)
	e.place(next)
	e.stmt(post)
	e.emit(bytecode.OpGoto, top)
	e.place(end)

	e.claims = outer
	return cs
}

func (e *emitter) returnStmt(n *syntax.Node) {
	x := n.Child(0)
	if types.IsVoid(e.ret) {
		if !x.IsEmpty() {
			errorf(x.Pos, "void method cannot return a value")
		}
		e.returnVoid()
		return
	}
	if x.IsEmpty() {
		errorf(n.Pos, "missing return value")
	}
	if t := e.typeOf(x); !types.AssignableTo(t, e.ret) {
		errorf(x.Pos, "cannot use %s as %s in return statement", t, e.ret)
	}
	e.emit(bytecode.OpReturn, e.value(x))
}
