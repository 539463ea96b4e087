package bytecode

import "github.com/you-not-fish/brisk/internal/types"

// SegmentCode is the type byte that starts every encoded segment.
type SegmentCode uint8

const (
	SegMethod   SegmentCode = 0x00
	SegMetadata SegmentCode = 0x01
	SegClass    SegmentCode = 0x02
)

func (c SegmentCode) String() string {
	switch c {
	case SegMethod:
		return "method"
	case SegMetadata:
		return "metadata"
	case SegClass:
		return "class"
	}
	return "unknown"
}

// Segment is a self-contained chunk of a compiled program: a method body,
// the metadata, or a class grouping method bodies. The implementations are
// *MethodSegment, *MetadataSegment and *ClassSegment.
type Segment interface {
	// Tag returns a human-readable label.
	Tag() string
	// TypeCode returns the segment's binary type code.
	TypeCode() SegmentCode
}

// MethodSegment holds the lowered body of one method.
type MethodSegment struct {
	Name      string // segment name, e.g. "ns.Foo.m"
	Sig       *types.MethodSig
	ArgTypes  []types.Type // including the receiver
	Return    types.Type
	Instrs    []*Instr
	Registers uint32 // number of registers used
}

// NewMethodSegment returns an empty body for a method called name.
func NewMethodSegment(name string, sig *types.MethodSig, args []types.Type, ret types.Type) *MethodSegment {
	return &MethodSegment{Name: name, Sig: sig, ArgTypes: args, Return: ret}
}

func (m *MethodSegment) Tag() string           { return "method " + m.Name }
func (m *MethodSegment) TypeCode() SegmentCode { return SegMethod }

// Emit appends instructions to the body.
func (m *MethodSegment) Emit(ins ...*Instr) {
	m.Instrs = append(m.Instrs, ins...)
}

// Finalize assigns every instruction its index, so that jump targets can
// be encoded. It must run after the last Emit and before encoding.
func (m *MethodSegment) Finalize() {
	for i, in := range m.Instrs {
		in.Index = i
	}
}

// MetadataSegment carries the program entrypoint and the JSON header.
type MetadataSegment struct {
	Entrypoint string // empty if the program has none
	Header     string
}

func (m *MetadataSegment) Tag() string           { return "metadata" }
func (m *MetadataSegment) TypeCode() SegmentCode { return SegMetadata }

// ClassSegment groups the bodies of a class's methods and constructor.
// It is not encoded itself: its method segments are written in its place.
type ClassSegment struct {
	Sig     *types.ClassSig
	Methods []*MethodSegment
}

func (c *ClassSegment) Tag() string           { return "class " + c.Sig.Name }
func (c *ClassSegment) TypeCode() SegmentCode { return SegClass }
