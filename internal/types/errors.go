package types

import (
	"fmt"

	"github.com/you-not-fish/brisk/internal/syntax"
)

// Error reports a static-semantics violation in the program being
// compiled: an unresolvable type, a failed assignability check, a bad
// override and so on.
type Error struct {
	Pos syntax.Pos
	Msg string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if !e.Pos.IsValid() {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

// Errorf returns an *Error at pos.
func Errorf(pos syntax.Pos, format string, args ...interface{}) *Error {
	return &Error{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}
