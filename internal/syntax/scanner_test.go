package syntax

import (
	"strings"
	"testing"
)

// ----------------------------------------------------------------------------
// Test helpers

type tokenInfo struct {
	tok Token
	lit string
}

func scanAll(t *testing.T, src string) ([]tokenInfo, *LexError) {
	t.Helper()
	s := NewScanner("test.bk", []byte(src), nil)
	var toks []tokenInfo
	for {
		s.Next()
		if s.Token() == _EOF {
			break
		}
		toks = append(toks, tokenInfo{s.Token(), s.Literal()})
		if len(toks) > 1000 {
			t.Fatal("scanner did not terminate")
		}
	}
	return toks, s.Err()
}

func expectTokens(t *testing.T, src string, want []Token) []tokenInfo {
	t.Helper()
	toks, err := scanAll(t, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens %v, want %d", len(toks), toks, len(want))
	}
	for i, w := range want {
		if toks[i].tok != w {
			t.Errorf("token %d = %v, want %v", i, toks[i].tok, w)
		}
	}
	return toks
}

// ----------------------------------------------------------------------------
// Tokens

func TestScanKeywords(t *testing.T) {
	for tok := _Abstract; tok < tokenCount; tok++ {
		t.Run(tok.String(), func(t *testing.T) {
			expectTokens(t, tok.String(), []Token{tok})
		})
	}
}

func TestScanPredeclaredTypesAreNames(t *testing.T) {
	toks := expectTokens(t, "int bool void", []Token{_Name, _Name, _Name})
	if toks[2].lit != "void" {
		t.Errorf("lit = %q, want void", toks[2].lit)
	}
}

func TestScanOperators(t *testing.T) {
	tests := []struct {
		src  string
		want []Token
	}{
		{"<=", []Token{_Leq}},
		{"<", []Token{_Lss}},
		{">=", []Token{_Geq}},
		{"==", []Token{_Eql}},
		{"=", []Token{_Assign}},
		{"!=", []Token{_Neq}},
		{"!", []Token{_Not}},
		{"+=", []Token{_AddAssign}},
		{"++", []Token{_Inc}},
		{"+++", []Token{_Inc, _Add}},
		{"--", []Token{_Dec}},
		{"-=", []Token{_SubAssign}},
		{"*=", []Token{_MulAssign}},
		{"~^&|%", []Token{_Tilde, _Xor, _And, _Or, _Rem}},
		{"()[]{},;:.", []Token{_Lparen, _Rparen, _Lbrack, _Rbrack, _Lbrace, _Rbrace, _Comma, _Semi, _Colon, _Dot}},
		{"a/b", []Token{_Name, _Div, _Name}},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			expectTokens(t, tt.src, tt.want)
		})
	}
}

func TestScanNumbers(t *testing.T) {
	tests := []struct {
		src, lit string
	}{
		{"0", "0"},
		{"42", "42"},
		{"9223372036854775808", "9223372036854775808"},
		{"0x1F", "0x1F"},
		{"0xff", "0xff"},
	}
	for _, tt := range tests {
		toks := expectTokens(t, tt.src, []Token{_Int})
		if toks[0].lit != tt.lit {
			t.Errorf("%s: lit = %q, want %q", tt.src, toks[0].lit, tt.lit)
		}
	}
}

func TestScanStringsAndChars(t *testing.T) {
	tests := []struct {
		src string
		tok Token
		lit string
	}{
		{`"hello"`, _String, "hello"},
		{`"a\nb"`, _String, "a\nb"},
		{`"q\"q"`, _String, `q"q`},
		{`"\x41"`, _String, "A"},
		{`""`, _String, ""},
		{`'a'`, _Char, "a"},
		{`'\n'`, _Char, "\n"},
		{`'\''`, _Char, "'"},
		{`'\0'`, _Char, "\x00"},
	}
	for _, tt := range tests {
		toks := expectTokens(t, tt.src, []Token{tt.tok})
		if toks[0].lit != tt.lit {
			t.Errorf("%s: lit = %q, want %q", tt.src, toks[0].lit, tt.lit)
		}
	}
}

func TestScanComments(t *testing.T) {
	expectTokens(t, "a // comment ; b\nc", []Token{_Name, _Name})
	expectTokens(t, "// only a comment", nil)
}

// ----------------------------------------------------------------------------
// Errors

func TestScanErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"bad_char", "a # b", "unexpected character"},
		{"unterminated_string", `"abc`, "string literal not terminated"},
		{"string_newline", "\"abc\ndef\"", "string literal not terminated"},
		{"bad_escape", `"\q"`, "unknown escape sequence"},
		{"bad_hex_escape", `"\xZZ"`, "invalid hex escape"},
		{"empty_char", "''", "empty character literal"},
		{"long_char", "'ab'", "character literal not terminated"},
		{"bad_hex", "0x", "invalid hex literal"},
		{"letter_in_number", "12ab", "in number literal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := scanAll(t, tt.src)
			if err == nil {
				t.Fatalf("expected error containing %q", tt.want)
			}
			if !strings.Contains(err.Msg, tt.want) {
				t.Errorf("error = %q, want substring %q", err.Msg, tt.want)
			}
		})
	}
}

func TestScanErrorIsFatal(t *testing.T) {
	var calls int
	s := NewScanner("test.bk", []byte("a # b c"), func(line, col uint32, msg string) {
		calls++
		if line != 1 || col != 3 {
			t.Errorf("error at %d:%d, want 1:3", line, col)
		}
	})
	for i := 0; i < 5; i++ {
		s.Next()
	}
	if s.Token() != _EOF {
		t.Errorf("token after error = %v, want EOF", s.Token())
	}
	if calls != 1 {
		t.Errorf("errh called %d times, want 1", calls)
	}
}

// ----------------------------------------------------------------------------
// Positions and lookahead

func TestScanPositions(t *testing.T) {
	s := NewScanner("test.bk", []byte("fn\n  main"), nil)
	s.Next()
	if p := s.Pos(); p.Line() != 1 || p.Col() != 1 {
		t.Errorf("fn at %v, want 1:1", p)
	}
	s.Next()
	if p := s.Pos(); p.Line() != 2 || p.Col() != 3 {
		t.Errorf("main at %v, want 2:3", p)
	}
	if got := s.Pos().String(); got != "test.bk:2:3" {
		t.Errorf("Pos.String() = %q", got)
	}
}

func TestScanSaveRestore(t *testing.T) {
	s := NewScanner("test.bk", []byte("a b c"), nil)
	s.Next()
	st := s.Save()
	s.Next()
	s.Next()
	if s.Literal() != "c" {
		t.Fatalf("lit = %q, want c", s.Literal())
	}
	s.Restore(st)
	if s.Literal() != "a" {
		t.Errorf("after restore lit = %q, want a", s.Literal())
	}
	s.Next()
	if s.Literal() != "b" {
		t.Errorf("after restore+next lit = %q, want b", s.Literal())
	}
}

func TestScanPeek(t *testing.T) {
	s := NewScanner("test.bk", []byte("f < int > ( x )"), nil)
	s.Next()
	if got := s.Peek(1); got != _Lss {
		t.Errorf("Peek(1) = %v, want <", got)
	}
	if got := s.Peek(4); got != _Lparen {
		t.Errorf("Peek(4) = %v, want (", got)
	}
	if s.Token() != _Name || s.Literal() != "f" {
		t.Errorf("Peek consumed input: at %v %q", s.Token(), s.Literal())
	}

	toks, found := s.PeekUntil(_Gtr, 10)
	if !found || len(toks) != 2 || toks[0] != _Lss || toks[1] != _Name {
		t.Errorf("PeekUntil = %v, %v", toks, found)
	}
	if _, found := s.PeekUntil(_Semi, 10); found {
		t.Error("PeekUntil found a missing token")
	}
}
