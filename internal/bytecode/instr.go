package bytecode

import (
	"fmt"
	"strings"

	"github.com/you-not-fish/brisk/internal/types"
)

// Param is an instruction parameter. The set of implementations is closed:
// Imm, ArgIndex, *Register, *Instr, MethodRef, ClassRef and TypeRef.
type Param interface {
	kind() ParamKind
	String() string
}

// Imm is an immediate 64-bit value.
type Imm uint64

// ArgIndex is the index of a method parameter slot.
type ArgIndex uint8

// Register is a virtual register of a method. Register ids are allocated
// in increasing order and never reused within a method.
type Register struct {
	ID   uint32
	Type types.Type
}

// MethodRef names the method a call invokes. Name is the method's segment
// name for static calls and its bare name for virtual calls.
type MethodRef struct {
	Sig  *types.MethodSig
	Name string
}

// ClassRef names the class an object is created from.
type ClassRef struct {
	Sig *types.ClassSig
}

// TypeRef names the type of a runtime type test.
type TypeRef struct {
	Type types.Type
}

func (Imm) kind() ParamKind       { return KindImm64 }
func (ArgIndex) kind() ParamKind  { return KindArg8 }
func (*Register) kind() ParamKind { return KindReg32 }
func (*Instr) kind() ParamKind    { return KindInstr32 }
func (MethodRef) kind() ParamKind { return KindMethodName }
func (ClassRef) kind() ParamKind  { return KindClassName }
func (TypeRef) kind() ParamKind   { return KindTypeName }

func (i Imm) String() string      { return fmt.Sprintf("#%d", uint64(i)) }
func (a ArgIndex) String() string { return fmt.Sprintf("arg%d", uint8(a)) }
func (m MethodRef) String() string {
	return m.Name
}
func (c ClassRef) String() string { return c.Sig.Name }
func (t TypeRef) String() string  { return t.Type.Name() }

func (r *Register) String() string {
	return fmt.Sprintf("r%d", r.ID)
}

// Instr is one instruction of a method body.
type Instr struct {
	Op     Op
	Params []Param
	Index  int      // position in the method; -1 until the method is finalized
	Notes  []string // free-form annotations for diagnostics
}

// NewInstr returns an instruction, checking params against the opcode's
// schema.
func NewInstr(op Op, params ...Param) (*Instr, error) {
	if !op.IsValid() {
		return nil, fmt.Errorf("invalid opcode %d", op)
	}
	schema := op.Info().Params
	if len(params) != len(schema) {
		return nil, fmt.Errorf("%s takes %d parameters, got %d", op, len(schema), len(params))
	}
	for i, p := range params {
		if isNil(p) {
			return nil, fmt.Errorf("%s parameter %d is nil", op, i)
		}
		if p.kind() != schema[i] {
			return nil, fmt.Errorf("%s parameter %d: want %s, got %s %s", op, i, schema[i], p.kind(), p)
		}
	}
	return &Instr{Op: op, Params: params, Index: -1}, nil
}

func isNil(p Param) bool {
	switch p := p.(type) {
	case nil:
		return true
	case *Register:
		return p == nil
	case *Instr:
		return p == nil
	case MethodRef:
		return p.Name == ""
	case ClassRef:
		return p.Sig == nil
	case TypeRef:
		return p.Type == nil
	}
	return false
}

// Target returns the jump target of a GOTO or JUMP_IF_FALSE.
func (in *Instr) Target() *Instr {
	if !in.Op.IsJump() {
		return nil
	}
	return in.Params[len(in.Params)-1].(*Instr)
}

// Note appends an annotation.
func (in *Instr) Note(format string, args ...interface{}) {
	in.Notes = append(in.Notes, fmt.Sprintf(format, args...))
}

func (in *Instr) String() string {
	var b strings.Builder
	b.WriteString(in.Op.String())
	for i, p := range in.Params {
		if i == 0 {
			b.WriteByte(' ')
		} else {
			b.WriteString(", ")
		}
		if target, ok := p.(*Instr); ok {
			fmt.Fprintf(&b, "@%d", target.Index)
			continue
		}
		b.WriteString(p.String())
	}
	if len(in.Notes) > 0 {
		b.WriteString(" ; ")
		b.WriteString(strings.Join(in.Notes, "; "))
	}
	return b.String()
}
