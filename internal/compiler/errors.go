package compiler

import (
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/you-not-fish/brisk/internal/syntax"
	"github.com/you-not-fish/brisk/internal/types"
)

// InternalError reports a defect in the compiler rather than in the
// program being compiled. It records the stack where it was raised,
// printed with %+v.
type InternalError struct {
	err error
}

func internalErrorf(format string, args ...interface{}) *InternalError {
	return &InternalError{err: errors.Errorf(format, args...)}
}

func (e *InternalError) Error() string {
	return "internal compiler error: " + e.err.Error()
}

func (e *InternalError) Unwrap() error { return e.err }

func (e *InternalError) Format(s fmt.State, verb rune) {
	if verb == 'v' && s.Flag('+') {
		fmt.Fprintf(s, "internal compiler error: %+v", e.err)
		return
	}
	io.WriteString(s, e.Error())
}

// bailout carries the first fatal error up to the exported entry point
// that recovers it.
type bailout struct{ err error }

// errorf stops compilation with a *types.Error at pos.
func errorf(pos syntax.Pos, format string, args ...interface{}) {
	panic(bailout{types.Errorf(pos, format, args...)})
}

// fatal stops compilation with an *InternalError.
func fatal(format string, args ...interface{}) {
	panic(bailout{internalErrorf(format, args...)})
}

// check stops compilation with err, if it is not nil.
func check(err error) {
	if err != nil {
		panic(bailout{err})
	}
}

// catch recovers a bailout into *err.
func catch(err *error) {
	if r := recover(); r != nil {
		b, ok := r.(bailout)
		if !ok {
			panic(r)
		}
		*err = b.err
	}
}
