package syntax

import "fmt"

// LexError reports a malformed token.
type LexError struct {
	Pos Pos
	Msg string
}

func (e *LexError) Error() string {
	return e.Pos.String() + ": " + e.Msg
}

// ParseError reports a token that does not fit the grammar.
type ParseError struct {
	Pos Pos
	Tok string // offending token text, "EOF" at end of input
	Msg string
}

func (e *ParseError) Error() string {
	if e.Tok == "" {
		return e.Pos.String() + ": " + e.Msg
	}
	return fmt.Sprintf("%s: %s (found %q)", e.Pos, e.Msg, e.Tok)
}
