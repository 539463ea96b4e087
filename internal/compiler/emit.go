package compiler

import (
	"fmt"

	"github.com/you-not-fish/brisk/internal/bytecode"
	"github.com/you-not-fish/brisk/internal/claims"
	"github.com/you-not-fish/brisk/internal/logger"
	"github.com/you-not-fish/brisk/internal/syntax"
	"github.com/you-not-fish/brisk/internal/types"
)

// emitter lowers one method body into a segment.
//
// Registers are never reused: every subexpression gets a fresh register
// whose type is fixed when it is allocated.
type emitter struct {
	p   *Program
	seg *bytecode.MethodSegment
	sig *types.MethodSig

	generics types.Generics // type parameter names bound to type arguments
	ret      types.Type
	this     *types.Class // nil in free functions

	scope  scope
	claims *claims.Space // facts established so far in the innermost block
	nreg   uint32

	breakTarget    *bytecode.Instr
	continueTarget *bytecode.Instr

	types map[syntax.NodeID]types.Type
	calls map[syntax.NodeID]*call
	quals map[syntax.NodeID]int // chain -> index of its namespace-qualified call
}

// lower emits the body of seg. For a reified generic segment targs gives
// the type arguments; bodies of generic methods are checked only here.
func (p *Program) lower(seg *bytecode.MethodSegment, targs []types.Type) {
	decl := p.decls[seg.Sig]
	if decl == nil {
		fatal("no declaration for %s", seg.Name)
	}
	p.log.Debug("lowering method", "method", seg.Name)

	e := &emitter{
		p:        p,
		seg:      seg,
		sig:      seg.Sig,
		generics: types.Generics{},
		ret:      seg.Return,
		claims:   claims.New(nil),
		types:    make(map[syntax.NodeID]types.Type),
		calls:    make(map[syntax.NodeID]*call),
		quals:    make(map[syntax.NodeID]int),
	}
	for i, tp := range seg.Sig.TypeParams {
		e.generics[tp.Name()] = targs[i]
	}
	if c := seg.Sig.Class; c != nil {
		e.this = c.Type
	}

	e.scope.open()
	for i, t := range seg.ArgTypes {
		r := e.newReg(t)
		e.emit(bytecode.OpLoadParam, r, bytecode.ArgIndex(i))
		e.scope.declare(&local{name: seg.Sig.ArgNames[i], reg: r})
	}

	var body *syntax.Node
	switch decl.Kind {
	case syntax.Method:
		body = decl.Child(4)
	case syntax.Ctor:
		body = decl.Child(2)
	default:
		fatal("cannot lower %s", decl.Kind)
	}

	// Parameters share the body's block.
	cs := e.sequence(body)
	if !cs.ContainsEquivalent(claims.Return) {
		if !types.IsVoid(e.ret) {
			errorf(body.Pos, "method %s might not return", seg.Name)
		}
		e.returnVoid()
	}
	e.scope.close()
	seg.Registers = e.nreg
}

func (e *emitter) newReg(t types.Type) *bytecode.Register {
	r := &bytecode.Register{ID: e.nreg, Type: t}
	e.nreg++
	return r
}

// emit appends an instruction to the body.
func (e *emitter) emit(op bytecode.Op, params ...bytecode.Param) *bytecode.Instr {
	in := e.instr(op, params...)
	e.seg.Emit(in)
	return in
}

// label returns a NOP, tagged with note, to be placed later as a jump
// target.
func (e *emitter) label(note string) *bytecode.Instr {
	l := e.instr(bytecode.OpNop)
	l.Note(note)
	return l
}

func (e *emitter) place(l *bytecode.Instr) {
	e.seg.Emit(l)
}

func (e *emitter) instr(op bytecode.Op, params ...bytecode.Param) *bytecode.Instr {
	in, err := bytecode.NewInstr(op, params...)
	if err != nil {
		fatal("%s: %v", e.seg.Name, err)
	}
	return in
}

func (e *emitter) returnVoid() {
	e.emit(bytecode.OpReturn, e.loadInt(types.Typ[types.Void], 0))
}

func (e *emitter) loadInt(t types.Type, v uint64) *bytecode.Register {
	r := e.newReg(t)
	e.emit(bytecode.OpLoadInt, r, bytecode.Imm(v))
	return r
}

// warnf reports a warning at pos to the log and to the configured handler.
func (e *emitter) warnf(pos syntax.Pos, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.LogWarning(e.p.log, pos.Filename(), int(pos.Line()), msg)
	if e.p.conf.Warn != nil {
		e.p.conf.Warn(pos, msg)
	}
}
