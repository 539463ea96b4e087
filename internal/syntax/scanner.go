package syntax

import (
	"fmt"
	"strings"
)

// Scanner performs lexical analysis on brisk source code.
//
// Tokens are produced on demand by Next. The first lexical error is fatal:
// it is reported through the error handler, recorded, and every later call
// to Next yields EOF.
type Scanner struct {
	source

	tok    Token
	lit    string // identifier name, literal text, or decoded string/char
	tokPos Pos

	err *LexError

	litBuf strings.Builder
}

// State is a snapshot of the scanner, taken with Save and reinstated with
// Restore. It holds only plain values, so a State can be kept and reused.
type State struct {
	cur    cursor
	tok    Token
	lit    string
	tokPos Pos
	err    *LexError
}

// NewScanner creates a Scanner for src.
// The errh function is called for the lexical error, if any; it may be nil.
func NewScanner(filename string, src []byte, errh func(line, col uint32, msg string)) *Scanner {
	s := &Scanner{}
	report := func(line, col uint32, msg string) {
		if s.err != nil {
			return
		}
		s.err = &LexError{Pos: NewPos(filename, line, col), Msg: msg}
		if errh != nil {
			errh(line, col, msg)
		}
	}
	s.source = newSource(filename, src, report)
	return s
}

// Next advances to the next token.
func (s *Scanner) Next() {
redo:
	for isWhitespace(s.ch) {
		s.nextch()
	}

	s.tokPos = s.pos()
	s.lit = ""

	if s.err != nil {
		s.tok = _EOF
		return
	}

	switch {
	case s.ch < 0:
		s.tok = _EOF

	case isLetter(s.ch):
		s.scanIdent()

	case isDigit(s.ch):
		s.scanNumber()

	case s.ch == '"':
		s.scanString()

	case s.ch == '\'':
		s.scanChar()

	case s.ch == '/' && s.peekch() == '/':
		s.skipLineComment()
		goto redo

	default:
		if !s.scanOperator() {
			s.error(fmt.Sprintf("unexpected character %q", s.ch))
			s.tok = _EOF
		}
	}

	if s.err != nil {
		s.tok = _EOF
	}
}

// Token returns the current token type.
func (s *Scanner) Token() Token { return s.tok }

// Literal returns the current token's literal value.
func (s *Scanner) Literal() string { return s.lit }

// Pos returns the current token's start position.
func (s *Scanner) Pos() Pos { return s.tokPos }

// Err returns the lexical error that stopped the scanner, or nil.
func (s *Scanner) Err() *LexError { return s.err }

// Save captures the scanner state.
func (s *Scanner) Save() State {
	return State{cur: s.cursor, tok: s.tok, lit: s.lit, tokPos: s.tokPos, err: s.err}
}

// Restore rewinds the scanner to a state returned by Save.
func (s *Scanner) Restore(st State) {
	s.cursor = st.cur
	s.tok = st.tok
	s.lit = st.lit
	s.tokPos = st.tokPos
	s.err = st.err
}

// Peek returns the token n positions ahead of the current one without
// consuming input. Peek(0) is the current token.
func (s *Scanner) Peek(n int) Token {
	st := s.Save()
	defer s.Restore(st)
	for i := 0; i < n; i++ {
		s.Next()
	}
	return s.tok
}

// PeekUntil returns the tokens following the current one, up to but not
// including the first stop token. It gives up after limit tokens or at EOF,
// in which case found is false. Input is not consumed.
func (s *Scanner) PeekUntil(stop Token, limit int) (toks []Token, found bool) {
	st := s.Save()
	defer s.Restore(st)
	for i := 0; i < limit; i++ {
		s.Next()
		switch s.tok {
		case stop:
			return toks, true
		case _EOF:
			return toks, false
		}
		toks = append(toks, s.tok)
	}
	return toks, false
}

func (s *Scanner) scanIdent() {
	s.litBuf.Reset()
	for isLetter(s.ch) || isDigit(s.ch) {
		s.litBuf.WriteRune(s.ch)
		s.nextch()
	}
	s.lit = s.litBuf.String()
	s.tok = LookupKeyword(s.lit)
}

// scanNumber scans a decimal or 0x-prefixed hexadecimal integer literal.
// Range checking is left to the compiler, which sees the sign.
func (s *Scanner) scanNumber() {
	s.litBuf.Reset()
	s.tok = _Int

	if s.ch == '0' && lower(s.peekch()) == 'x' {
		s.litBuf.WriteRune(s.ch)
		s.nextch()
		s.litBuf.WriteRune(s.ch)
		s.nextch()
		if !isHexDigit(s.ch) {
			s.error("invalid hex literal")
			return
		}
		for isHexDigit(s.ch) {
			s.litBuf.WriteRune(s.ch)
			s.nextch()
		}
	} else {
		for isDigit(s.ch) {
			s.litBuf.WriteRune(s.ch)
			s.nextch()
		}
	}

	if isLetter(s.ch) {
		s.error(fmt.Sprintf("invalid character %q in number literal", s.ch))
		return
	}
	s.lit = s.litBuf.String()
}

// scanString scans a string literal; lit is the decoded content.
func (s *Scanner) scanString() {
	s.nextch() // skip opening "
	s.litBuf.Reset()

	for {
		switch {
		case s.ch == '"':
			s.nextch()
			s.lit = s.litBuf.String()
			s.tok = _String
			return

		case s.ch == '\\':
			r, ok := s.scanEscape('"')
			if !ok {
				return
			}
			s.litBuf.WriteRune(r)

		case s.ch == '\n' || s.ch < 0:
			s.error("string literal not terminated")
			return

		default:
			s.litBuf.WriteRune(s.ch)
			s.nextch()
		}
	}
}

// scanChar scans a character literal; lit is the decoded character.
func (s *Scanner) scanChar() {
	s.nextch() // skip opening '

	var r rune
	switch {
	case s.ch == '\'':
		s.error("empty character literal")
		return
	case s.ch == '\n' || s.ch < 0:
		s.error("character literal not terminated")
		return
	case s.ch == '\\':
		var ok bool
		if r, ok = s.scanEscape('\''); !ok {
			return
		}
	default:
		r = s.ch
		s.nextch()
	}

	if s.ch != '\'' {
		s.error("character literal not terminated")
		return
	}
	s.nextch()
	s.lit = string(r)
	s.tok = _Char
}

// scanEscape scans an escape sequence and returns the decoded rune.
// quote is the delimiter of the enclosing literal.
func (s *Scanner) scanEscape(quote rune) (rune, bool) {
	s.nextch() // skip \

	var r rune
	switch s.ch {
	case 'n':
		r = '\n'
	case 't':
		r = '\t'
	case 'r':
		r = '\r'
	case '0':
		r = 0
	case '\\':
		r = '\\'
	case quote:
		r = quote
	case 'x':
		s.nextch()
		return s.scanHexEscape()
	default:
		if s.ch < 0 {
			s.error("escape sequence not terminated")
		} else {
			s.error(fmt.Sprintf("unknown escape sequence \\%c", s.ch))
		}
		return 0, false
	}
	s.nextch()
	return r, true
}

// scanHexEscape scans the two digits of a \xNN escape sequence.
func (s *Scanner) scanHexEscape() (rune, bool) {
	var val rune
	for i := 0; i < 2; i++ {
		if !isHexDigit(s.ch) {
			s.error("invalid hex escape")
			return 0, false
		}
		val = val*16 + hexValue(s.ch)
		s.nextch()
	}
	return val, true
}

func hexValue(r rune) rune {
	switch {
	case '0' <= r && r <= '9':
		return r - '0'
	case 'a' <= lower(r) && lower(r) <= 'f':
		return lower(r) - 'a' + 10
	}
	return 0
}

// twoCharOps maps an operator's first character and second character to
// the combined token. They are matched before single-character operators.
var twoCharOps = map[[2]rune]Token{
	{'<', '='}: _Leq,
	{'>', '='}: _Geq,
	{'=', '='}: _Eql,
	{'!', '='}: _Neq,
	{'+', '='}: _AddAssign,
	{'-', '='}: _SubAssign,
	{'*', '='}: _MulAssign,
	{'+', '+'}: _Inc,
	{'-', '-'}: _Dec,
}

var oneCharOps = map[rune]Token{
	'+': _Add, '-': _Sub, '*': _Mul, '/': _Div, '%': _Rem,
	'&': _And, '|': _Or, '^': _Xor, '~': _Tilde, '!': _Not,
	'<': _Lss, '>': _Gtr, '=': _Assign,
	'(': _Lparen, ')': _Rparen, '[': _Lbrack, ']': _Rbrack,
	'{': _Lbrace, '}': _Rbrace, ',': _Comma, ';': _Semi,
	':': _Colon, '.': _Dot,
}

// scanOperator scans an operator or delimiter. It reports false, without
// consuming anything, if s.ch does not start one.
func (s *Scanner) scanOperator() bool {
	if tok, ok := twoCharOps[[2]rune{s.ch, s.peekch()}]; ok {
		s.nextch()
		s.nextch()
		s.tok = tok
		s.lit = tok.String()
		return true
	}
	if tok, ok := oneCharOps[s.ch]; ok {
		s.nextch()
		s.tok = tok
		s.lit = tok.String()
		return true
	}
	return false
}

// skipLineComment skips from // to the end of the line.
func (s *Scanner) skipLineComment() {
	for s.ch != '\n' && s.ch >= 0 {
		s.nextch()
	}
}
