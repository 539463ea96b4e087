package syntax

import "unicode/utf8"

// source is a character reader with position tracking.
// The whole input is held in memory so that the reader state can be
// captured and rewound cheaply for speculative parsing.
type source struct {
	buf      []byte
	filename string

	cursor

	errh func(line, col uint32, msg string)
}

// cursor is the rewindable part of the reader state.
type cursor struct {
	line uint32 // line of ch (1-based)
	col  uint32 // column of ch (1-based)
	ch   rune   // current character, -1 at EOF
	offs int    // byte offset just past ch
}

func newSource(filename string, src []byte, errh func(line, col uint32, msg string)) source {
	s := source{
		buf:      src,
		filename: filename,
		cursor:   cursor{line: 1, col: 0, ch: -1},
		errh:     errh,
	}
	s.nextch()
	return s
}

// nextch reads the next character and updates position.
//
// (line, col) always refers to the position of s.ch after nextch returns.
// Initial state: line=1, col=0, s.ch=-1.
func (s *source) nextch() {
	if s.ch == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}

	if s.offs >= len(s.buf) {
		s.ch = -1
		return
	}

	r, width := utf8.DecodeRune(s.buf[s.offs:])
	if r == utf8.RuneError && width == 1 {
		s.error("invalid UTF-8 encoding")
	}
	s.ch = r
	s.offs += width
}

// peekch returns the character after s.ch without consuming anything.
func (s *source) peekch() rune {
	if s.offs >= len(s.buf) {
		return -1
	}
	r, _ := utf8.DecodeRune(s.buf[s.offs:])
	return r
}

func (s *source) pos() Pos {
	return NewPos(s.filename, s.line, s.col)
}

// error reports a lexical error at the current position.
func (s *source) error(msg string) {
	if s.errh != nil {
		s.errh(s.line, s.col, msg)
	}
}

func isLetter(r rune) bool {
	return 'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z' || r == '_'
}

func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}

func isHexDigit(r rune) bool {
	return isDigit(r) || 'a' <= lower(r) && lower(r) <= 'f'
}

// lower returns the lowercase version of r if r is an ASCII letter.
// ('a' - 'A') is 0x20; OR-ing it in folds upper case onto lower case.
func lower(r rune) rune {
	return ('a' - 'A') | r
}

// isWhitespace reports whether r is skipped between tokens.
// Newlines carry no meaning in brisk, so they are whitespace too.
func isWhitespace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r' || r == '\n'
}
