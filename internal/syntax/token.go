// Package syntax implements lexical and syntactic analysis for brisk
// source files.
package syntax

import "fmt"

// Token represents the type of a lexical token.
type Token uint

const (
	// Special tokens
	_EOF Token = iota

	// Names and literals
	_Name   // identifier: foo, Rectangle
	_Int    // 123, 0x1F
	_Char   // 'a', '\n'
	_String // "hello"

	// Arithmetic and bitwise operators
	_Add   // +
	_Sub   // -
	_Mul   // *
	_Div   // /
	_Rem   // %
	_And   // &
	_Or    // |
	_Xor   // ^
	_Tilde // ~
	_Not   // !

	// Comparison operators
	_Eql // ==
	_Neq // !=
	_Lss // <
	_Leq // <=
	_Gtr // >
	_Geq // >=

	// Assignment operators
	_Assign    // =
	_AddAssign // +=
	_SubAssign // -=
	_MulAssign // *=
	_Inc       // ++
	_Dec       // --

	// Delimiters
	_Lparen // (
	_Rparen // )
	_Lbrack // [
	_Rbrack // ]
	_Lbrace // {
	_Rbrace // }
	_Comma  // ,
	_Semi   // ;
	_Colon  // :
	_Dot    // .

	// Keywords
	_Abstract
	_AndAnd // and
	_As
	_Break
	_Class
	_Continue
	_Ctor
	_Else
	_Entrypoint
	_Extends
	_False
	_Fn
	_For
	_If
	_Implements
	_Instanceof
	_Interface
	_Let
	_Namespace
	_New
	_Null
	_OrOr // or
	_Override
	_Return
	_This
	_True
	_Using
	_While

	tokenCount
)

var tokenNames = [...]string{
	_EOF: "EOF",

	_Name:   "NAME",
	_Int:    "INT",
	_Char:   "CHAR",
	_String: "STRING",

	_Add:   "+",
	_Sub:   "-",
	_Mul:   "*",
	_Div:   "/",
	_Rem:   "%",
	_And:   "&",
	_Or:    "|",
	_Xor:   "^",
	_Tilde: "~",
	_Not:   "!",

	_Eql: "==",
	_Neq: "!=",
	_Lss: "<",
	_Leq: "<=",
	_Gtr: ">",
	_Geq: ">=",

	_Assign:    "=",
	_AddAssign: "+=",
	_SubAssign: "-=",
	_MulAssign: "*=",
	_Inc:       "++",
	_Dec:       "--",

	_Lparen: "(",
	_Rparen: ")",
	_Lbrack: "[",
	_Rbrack: "]",
	_Lbrace: "{",
	_Rbrace: "}",
	_Comma:  ",",
	_Semi:   ";",
	_Colon:  ":",
	_Dot:    ".",

	_Abstract:   "abstract",
	_AndAnd:     "and",
	_As:         "as",
	_Break:      "break",
	_Class:      "class",
	_Continue:   "continue",
	_Ctor:       "ctor",
	_Else:       "else",
	_Entrypoint: "entrypoint",
	_Extends:    "extends",
	_False:      "false",
	_Fn:         "fn",
	_For:        "for",
	_If:         "if",
	_Implements: "implements",
	_Instanceof: "instanceof",
	_Interface:  "interface",
	_Let:        "let",
	_Namespace:  "namespace",
	_New:        "new",
	_Null:       "null",
	_OrOr:       "or",
	_Override:   "override",
	_Return:     "return",
	_This:       "this",
	_True:       "true",
	_Using:      "using",
	_While:      "while",
}

// String returns the string representation of the token.
func (t Token) String() string {
	if t < tokenCount {
		return tokenNames[t]
	}
	return fmt.Sprintf("token(%d)", t)
}

// IsKeyword reports whether t is a keyword token.
func (t Token) IsKeyword() bool {
	return t >= _Abstract && t < tokenCount
}

// IsLiteral reports whether t carries a literal value.
func (t Token) IsLiteral() bool {
	return t == _Int || t == _Char || t == _String
}

// IsEOF reports whether t is the EOF token.
func (t Token) IsEOF() bool {
	return t == _EOF
}

// keywords maps keyword strings to their token type.
// The predeclared type names int, bool and void are not keywords; they
// are scanned as _Name and resolved by the type table.
var keywords = map[string]Token{}

func init() {
	for t := _Abstract; t < tokenCount; t++ {
		keywords[tokenNames[t]] = t
	}
}

// LookupKeyword returns the keyword token for ident, or _Name.
func LookupKeyword(ident string) Token {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return _Name
}
