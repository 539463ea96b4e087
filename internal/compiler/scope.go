package compiler

import (
	"fmt"

	"github.com/you-not-fish/brisk/internal/bytecode"
)

// local is a named variable of a method body.
type local struct {
	name string
	reg  *bytecode.Register

	// deferred is set for locals declared without an initializer; reads
	// then need an Initializes claim.
	deferred bool
}

// subject names the local in claims. It includes the register id, since
// a nested block may declare another local with the same name.
func (l *local) subject() string {
	return fmt.Sprintf("%s#%d", l.name, l.reg.ID)
}

// scope is the stack of blocks of a method body. Lookup walks from the
// innermost block outwards; declarations go to the innermost block.
type scope struct {
	blocks []map[string]*local
}

func (s *scope) open() {
	s.blocks = append(s.blocks, make(map[string]*local))
}

func (s *scope) close() {
	s.blocks = s.blocks[:len(s.blocks)-1]
}

func (s *scope) lookup(name string) *local {
	for i := len(s.blocks) - 1; i >= 0; i-- {
		if l, ok := s.blocks[i][name]; ok {
			return l
		}
	}
	return nil
}

// declare adds l to the innermost block. It reports false if the block
// already declares the name.
func (s *scope) declare(l *local) bool {
	b := s.blocks[len(s.blocks)-1]
	if _, dup := b[l.name]; dup {
		return false
	}
	b[l.name] = l
	return true
}
