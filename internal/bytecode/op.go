// Package bytecode defines the register-based instruction set emitted by
// the compiler, the segments a program is made of, and their binary
// encoding.
package bytecode

import "fmt"

// Op is an opcode. Its numeric value is the byte written to the output.
type Op uint8

const (
	OpNop Op = iota // jump target placeholder

	// Loads and moves
	OpLoadInt   // dst = imm
	OpLoadNull  // dst = null
	OpNegate    // dst = -src (two's complement)
	OpLoadParam // dst = param[arg]
	OpSetArg    // outgoing arg[arg] = src
	OpCopy      // dst = src

	// Arithmetic and bitwise, dst = a op b
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpAnd
	OpOr
	OpXor

	// Comparison, dst = a op b
	OpEquals
	OpLt
	OpLe
	OpGt
	OpGe

	OpInvert // dst = !src

	// Control flow
	OpGoto        // goto target
	OpJumpIfFalse // if !cond goto target
	OpCall        // dst = method(args...), statically bound
	OpCallVirtual // dst = receiver.method(args...), bound by the receiver's class
	OpReturn      // return src

	// Objects
	OpNewObject // dst = new class
	OpGetField  // dst = obj.field[slot]
	OpSetField  // obj.field[slot] = src

	// Arrays
	OpNewArray    // dst = new array of length len
	OpArrayGet    // dst = arr[idx]
	OpArraySet    // arr[idx] = src
	OpArrayLength // dst = len(arr)

	// Runtime type tests
	OpInstanceOf // dst = src instanceof type
	OpCast       // dst = src as type, faulting if it is not one

	opCount // sentinel; must be last
)

// ParamKind is the declared kind of an opcode parameter.
type ParamKind uint8

const (
	KindImm64      ParamKind = iota // unsigned 64-bit immediate
	KindArg8                        // unsigned 8-bit parameter slot index
	KindReg32                       // unsigned 32-bit register id
	KindMethodName                  // method name, length-prefixed UTF-8
	KindClassName                   // class name, length-prefixed UTF-8
	KindTypeName                    // type name, length-prefixed UTF-8
	KindInstr32                     // unsigned 32-bit instruction index
)

var paramKindNames = [...]string{
	KindImm64:      "imm64",
	KindArg8:       "arg8",
	KindReg32:      "reg32",
	KindMethodName: "method",
	KindClassName:  "class",
	KindTypeName:   "type",
	KindInstr32:    "instr32",
}

func (k ParamKind) String() string {
	if int(k) < len(paramKindNames) {
		return paramKindNames[k]
	}
	return fmt.Sprintf("ParamKind(%d)", k)
}

// OpInfo holds metadata about an opcode.
type OpInfo struct {
	Name   string
	Params []ParamKind // parameter schema, in encoding order
}

var (
	none    = []ParamKind{}
	dstImm  = []ParamKind{KindReg32, KindImm64}
	dst     = []ParamKind{KindReg32}
	dstSrc  = []ParamKind{KindReg32, KindReg32}
	dstAB   = []ParamKind{KindReg32, KindReg32, KindReg32}
	dstType = []ParamKind{KindReg32, KindReg32, KindTypeName}
)

// opInfoTable maps each Op to its OpInfo.
var opInfoTable = [opCount]OpInfo{
	OpNop: {Name: "NOP", Params: none},

	OpLoadInt:   {Name: "LOAD_INT", Params: dstImm},
	OpLoadNull:  {Name: "LOAD_NULL", Params: dst},
	OpNegate:    {Name: "NEGATE", Params: dstSrc},
	OpLoadParam: {Name: "LOAD_PARAM", Params: []ParamKind{KindReg32, KindArg8}},
	OpSetArg:    {Name: "SET_ARG", Params: []ParamKind{KindArg8, KindReg32}},
	OpCopy:      {Name: "COPY", Params: dstSrc},

	OpAdd: {Name: "ADD", Params: dstAB},
	OpSub: {Name: "SUB", Params: dstAB},
	OpMul: {Name: "MUL", Params: dstAB},
	OpDiv: {Name: "DIV", Params: dstAB},
	OpMod: {Name: "MOD", Params: dstAB},
	OpAnd: {Name: "AND", Params: dstAB},
	OpOr:  {Name: "OR", Params: dstAB},
	OpXor: {Name: "XOR", Params: dstAB},

	OpEquals: {Name: "EQUALS", Params: dstAB},
	OpLt:     {Name: "LT", Params: dstAB},
	OpLe:     {Name: "LE", Params: dstAB},
	OpGt:     {Name: "GT", Params: dstAB},
	OpGe:     {Name: "GE", Params: dstAB},

	OpInvert: {Name: "INVERT", Params: dstSrc},

	OpGoto:        {Name: "GOTO", Params: []ParamKind{KindInstr32}},
	OpJumpIfFalse: {Name: "JUMP_IF_FALSE", Params: []ParamKind{KindReg32, KindInstr32}},
	OpCall:        {Name: "CALL", Params: []ParamKind{KindReg32, KindMethodName}},
	OpCallVirtual: {Name: "CALL_VIRTUAL", Params: []ParamKind{KindReg32, KindMethodName}},
	OpReturn:      {Name: "RETURN", Params: []ParamKind{KindReg32}},

	OpNewObject: {Name: "NEW_OBJECT", Params: []ParamKind{KindReg32, KindClassName}},
	OpGetField:  {Name: "GET_FIELD", Params: []ParamKind{KindReg32, KindReg32, KindImm64}},
	OpSetField:  {Name: "SET_FIELD", Params: []ParamKind{KindReg32, KindImm64, KindReg32}},

	OpNewArray:    {Name: "NEW_ARRAY", Params: dstSrc},
	OpArrayGet:    {Name: "ARRAY_GET", Params: dstAB},
	OpArraySet:    {Name: "ARRAY_SET", Params: []ParamKind{KindReg32, KindReg32, KindReg32}},
	OpArrayLength: {Name: "ARRAY_LENGTH", Params: dstSrc},

	OpInstanceOf: {Name: "INSTANCEOF", Params: dstType},
	OpCast:       {Name: "CAST", Params: dstType},
}

// String returns the mnemonic of the op.
func (o Op) String() string {
	if o < opCount {
		return opInfoTable[o].Name
	}
	return fmt.Sprintf("Op(%d)", o)
}

// Info returns the OpInfo for this op.
func (o Op) Info() OpInfo {
	if o < opCount {
		return opInfoTable[o]
	}
	return OpInfo{Name: o.String()}
}

// IsValid reports whether o is a defined opcode.
func (o Op) IsValid() bool {
	return o < opCount
}

// IsJump reports whether o transfers control to an instruction parameter.
func (o Op) IsJump() bool {
	return o == OpGoto || o == OpJumpIfFalse
}
