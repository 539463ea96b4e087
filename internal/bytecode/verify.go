package bytecode

import (
	"fmt"
	"strings"
)

// Verify checks the structural integrity of a finalized method body.
// It returns an error describing all violations found, or nil if valid.
func Verify(m *MethodSegment) error {
	var errs []string

	add := func(format string, args ...interface{}) {
		errs = append(errs, fmt.Sprintf(format, args...))
	}

	if m.Return == nil {
		add("method %s: no return type", m.Name)
	}
	if len(m.ArgTypes) > 256 {
		add("method %s: %d arguments do not fit an arg8 slot", m.Name, len(m.ArgTypes))
	}

	member := make(map[*Instr]bool, len(m.Instrs))
	for _, in := range m.Instrs {
		member[in] = true
	}

	for i, in := range m.Instrs {
		// 1. Indices were assigned
		if in.Index != i {
			add("method %s, %d: %s has index %d", m.Name, i, in.Op, in.Index)
		}

		// 2. Schema
		schema := in.Op.Info().Params
		if !in.Op.IsValid() || len(schema) != len(in.Params) {
			add("method %s, %d: %s has %d parameters, want %d", m.Name, i, in.Op, len(in.Params), len(schema))
			continue
		}

		for j, p := range in.Params {
			if isNil(p) || p.kind() != schema[j] {
				add("method %s, %d: %s parameter %d does not match %s", m.Name, i, in.Op, j, schema[j])
				continue
			}
			switch p := p.(type) {
			case *Register:
				// 3. Registers are in range
				if p.ID >= m.Registers {
					add("method %s, %d: %s uses r%d, but only %d registers", m.Name, i, in.Op, p.ID, m.Registers)
				}
			case *Instr:
				// 4. Jumps stay inside the method
				if !member[p] {
					add("method %s, %d: %s jumps outside the method", m.Name, i, in.Op)
				}
			case ArgIndex:
				if int(p) >= len(m.ArgTypes) && in.Op == OpLoadParam {
					add("method %s, %d: %s reads arg%d of %d", m.Name, i, in.Op, p, len(m.ArgTypes))
				}
			}
		}
	}

	if len(m.Instrs) == 0 {
		add("method %s: empty body", m.Name)
	}

	return combineErrors(errs)
}

func combineErrors(errs []string) error {
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("bytecode verification failed:\n  %s", strings.Join(errs, "\n  "))
}
