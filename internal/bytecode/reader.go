package bytecode

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// ExtractHeader locates the metadata segment of a compiled program and
// returns its entrypoint name and JSON header. Method bodies are skipped by
// their declared length without being decoded, and anything after the
// metadata segment is ignored.
func ExtractHeader(data []byte) (entrypoint, header string, err error) {
	r := &reader{data: data}
	magic, err := r.bytes(len(Magic))
	if err != nil || !bytes.Equal(magic, Magic[:]) {
		return "", "", fmt.Errorf("not a compiled program: bad magic number")
	}
	for {
		if r.off == len(r.data) {
			return "", "", fmt.Errorf("no metadata segment")
		}
		at := r.off
		code, _ := r.byte()
		switch SegmentCode(code) {
		case SegMethod:
			n, err := r.uint32()
			if err != nil {
				return "", "", err
			}
			if _, err := r.bytes(int(n)); err != nil {
				return "", "", err
			}
		case SegMetadata:
			if entrypoint, err = r.string(); err != nil {
				return "", "", err
			}
			if header, err = r.string(); err != nil {
				return "", "", err
			}
			return entrypoint, header, nil
		default:
			return "", "", fmt.Errorf("offset %d: unknown segment code 0x%02x", at, code)
		}
	}
}

type reader struct {
	data []byte
	off  int
}

func (r *reader) bytes(n int) ([]byte, error) {
	if n < 0 || len(r.data)-r.off < n {
		return nil, fmt.Errorf("offset %d: unexpected end of data", r.off)
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b, nil
}

func (r *reader) byte() (byte, error) {
	b, err := r.bytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *reader) uint32() (uint32, error) {
	b, err := r.bytes(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (r *reader) string() (string, error) {
	n, err := r.uint32()
	if err != nil {
		return "", err
	}
	b, err := r.bytes(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}
