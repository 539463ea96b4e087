package bytecode

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Magic is written at the start of every compiled program.
var Magic = [4]byte{0xCF, 0x70, 0x2B, 0x56}

// Encode serializes segments, in order, into the binary program format.
// All integers are big-endian and strings are prefixed with their uint32
// byte length. Method segments must have been finalized.
func Encode(segs []Segment) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(Magic[:])
	for _, s := range segs {
		if err := encodeSegment(&buf, s); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func encodeSegment(buf *bytes.Buffer, s Segment) error {
	switch s := s.(type) {
	case *MethodSegment:
		body, err := encodeMethodBody(s)
		if err != nil {
			return err
		}
		buf.WriteByte(byte(SegMethod))
		putUint32(buf, uint32(len(body)))
		buf.Write(body)
	case *MetadataSegment:
		buf.WriteByte(byte(SegMetadata))
		putString(buf, s.Entrypoint)
		putString(buf, s.Header)
	case *ClassSegment:
		for _, m := range s.Methods {
			if err := encodeSegment(buf, m); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("cannot encode segment %T", s)
	}
	return nil
}

// encodeMethodBody encodes
//
//	{u32 registers}{u32 argc}{name}{return type}{arg types...}{instrs...}
func encodeMethodBody(m *MethodSegment) ([]byte, error) {
	var buf bytes.Buffer
	putUint32(&buf, m.Registers)
	putUint32(&buf, uint32(len(m.ArgTypes)))
	putString(&buf, m.Name)
	putString(&buf, m.Return.Name())
	for _, t := range m.ArgTypes {
		putString(&buf, t.Name())
	}
	for i, in := range m.Instrs {
		if in.Index != i {
			return nil, fmt.Errorf("method %s: instruction %d (%s) has index %d; method not finalized", m.Name, i, in.Op, in.Index)
		}
		if err := encodeInstr(&buf, in); err != nil {
			return nil, fmt.Errorf("method %s: instruction %d: %v", m.Name, i, err)
		}
	}
	return buf.Bytes(), nil
}

func encodeInstr(buf *bytes.Buffer, in *Instr) error {
	buf.WriteByte(byte(in.Op))
	for _, p := range in.Params {
		switch p := p.(type) {
		case Imm:
			putUint64(buf, uint64(p))
		case ArgIndex:
			buf.WriteByte(byte(p))
		case *Register:
			putUint32(buf, p.ID)
		case *Instr:
			if p.Index < 0 {
				return fmt.Errorf("%s: unresolved jump target", in.Op)
			}
			putUint32(buf, uint32(p.Index))
		case MethodRef:
			putString(buf, p.Name)
		case ClassRef:
			putString(buf, p.Sig.Name)
		case TypeRef:
			putString(buf, p.Type.Name())
		default:
			return fmt.Errorf("%s: unknown parameter %T", in.Op, p)
		}
	}
	return nil
}

func putUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func putUint64(buf *bytes.Buffer, v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	buf.Write(b[:])
}

func putString(buf *bytes.Buffer, s string) {
	putUint32(buf, uint32(len(s)))
	buf.WriteString(s)
}
