package syntax

import (
	"strconv"
	"unicode/utf8"
)

// Parser performs syntax analysis on brisk source code.
//
// Errors are fatal: the first lexical or syntax error stops the parse.
// Internally the parser unwinds with a bailout panic, which Parse and the
// speculative helper try recover.
type Parser struct {
	scanner *Scanner
	tree    *Tree

	// Current token info (cached from scanner)
	tok Token
	lit string
	pos Pos

	errh func(pos Pos, msg string)
}

// bailout carries a fatal error up to the nearest recover.
type bailout struct{ err error }

// NewParser creates a Parser for src. The errh function, if not nil, is
// called with the error that stops the parse.
func NewParser(filename string, src []byte, errh func(pos Pos, msg string)) *Parser {
	return &Parser{
		scanner: NewScanner(filename, src, nil),
		tree:    &Tree{Filename: filename},
		errh:    errh,
	}
}

// Parse parses src as a complete file.
func Parse(filename string, src []byte) (*Tree, error) {
	return NewParser(filename, src, nil).Parse()
}

// Parse parses a complete source file. The error, if any, is a *LexError
// or a *ParseError.
func (p *Parser) Parse() (tree *Tree, err error) {
	defer func() {
		if r := recover(); r != nil {
			b, ok := r.(bailout)
			if !ok {
				panic(r)
			}
			tree, err = nil, b.err
			if p.errh != nil {
				switch e := b.err.(type) {
				case *LexError:
					p.errh(e.Pos, e.Msg)
				case *ParseError:
					p.errh(e.Pos, e.Msg)
				}
			}
		}
	}()

	p.next()
	p.tree.Root = p.file()
	return p.tree, nil
}

// ----------------------------------------------------------------------------
// Token navigation

func (p *Parser) next() {
	p.scanner.Next()
	if err := p.scanner.Err(); err != nil {
		panic(bailout{err})
	}
	p.sync()
}

// sync reloads the cached token from the scanner.
func (p *Parser) sync() {
	p.tok = p.scanner.Token()
	p.lit = p.scanner.Literal()
	p.pos = p.scanner.Pos()
}

// got reports whether the current token is tok.
// If so, it consumes the token.
func (p *Parser) got(tok Token) bool {
	if p.tok == tok {
		p.next()
		return true
	}
	return false
}

// want consumes the current token if it matches tok, and fails otherwise.
func (p *Parser) want(tok Token) {
	if !p.got(tok) {
		p.fail("expected " + tok.String())
	}
}

// semis consumes redundant semicolons.
func (p *Parser) semis() {
	for p.tok == _Semi {
		p.next()
	}
}

// fail aborts the parse with a syntax error at the current token.
func (p *Parser) fail(msg string) {
	tok := p.lit
	if p.tok == _EOF {
		tok = "EOF"
	} else if tok == "" {
		tok = p.tok.String()
	}
	panic(bailout{&ParseError{Pos: p.pos, Tok: tok, Msg: msg}})
}

// try runs f speculatively. If f fails, the scanner and the tree are
// rewound to where they were and try reports false.
func (p *Parser) try(f func()) (ok bool) {
	st := p.scanner.Save()
	mark := len(p.tree.Nodes)
	defer func() {
		if r := recover(); r != nil {
			if _, isBail := r.(bailout); !isBail {
				panic(r)
			}
			p.scanner.Restore(st)
			p.tree.Nodes = p.tree.Nodes[:mark]
			p.sync()
			ok = false
		}
	}()
	f()
	return true
}

func (p *Parser) node(kind Kind, data string, pos Pos, children ...*Node) *Node {
	return p.tree.newNode(kind, data, pos, children...)
}

func (p *Parser) empty() *Node {
	return p.node(Empty, "", p.pos)
}

// optional returns parse() if present holds, and an Empty node otherwise.
func (p *Parser) optional(present bool, parse func() *Node) *Node {
	if present {
		return parse()
	}
	return p.empty()
}

// ----------------------------------------------------------------------------
// Declarations

// file parses: [namespace] {using} {decl}
func (p *Parser) file() *Node {
	f := p.node(File, "", p.pos)

	if p.tok == _Namespace {
		pos := p.pos
		p.next()
		f.Children = append(f.Children, p.node(Namespace, p.qualifiedName(), pos))
		p.want(_Semi)
		p.semis()
	} else {
		f.Children = append(f.Children, p.empty())
	}

	for p.tok == _Using {
		pos := p.pos
		p.next()
		f.Children = append(f.Children, p.node(Using, p.qualifiedName(), pos))
		p.want(_Semi)
		p.semis()
	}

	for p.tok != _EOF {
		f.Children = append(f.Children, p.decl())
	}
	return f
}

// decl parses a class, interface or free function declaration.
func (p *Parser) decl() *Node {
	mods := p.modifiers()
	switch p.tok {
	case _Class:
		return p.classDecl(mods)
	case _Interface:
		return p.interfaceDecl(mods)
	case _Fn:
		return p.methodDecl(mods)
	}
	p.fail("expected declaration")
	return nil
}

// modifiers parses the modifier prefix of a class or member.
func (p *Parser) modifiers() *Node {
	m := p.node(Modifiers, "", p.pos)
	for p.tok == _Override || p.tok == _Entrypoint || p.tok == _Abstract {
		if m.HasModifier(p.lit) {
			p.fail("duplicate modifier " + p.lit)
		}
		m.Children = append(m.Children, p.node(Modifier, p.lit, p.pos))
		p.next()
	}
	return m
}

// classDecl parses: class Name [extends T] [implements T, ...] { members }
func (p *Parser) classDecl(mods *Node) *Node {
	pos := p.pos
	p.want(_Class)
	name := p.name()

	extends := p.optional(p.got(_Extends), p.typeName)
	impls := p.node(List, "", p.pos)
	if p.got(_Implements) {
		impls.Children = p.typeList()
	}

	c := p.node(Class, name, pos, mods, extends, impls)
	p.want(_Lbrace)
	for p.tok != _Rbrace && p.tok != _EOF {
		c.Children = append(c.Children, p.member())
	}
	p.want(_Rbrace)
	p.semis()
	return c
}

// member parses a field, method or constructor inside a class body.
func (p *Parser) member() *Node {
	if p.tok == _Name {
		pos := p.pos
		name := p.name()
		p.want(_Colon)
		typ := p.type_()
		p.want(_Semi)
		p.semis()
		return p.node(Field, name, pos, typ)
	}

	mods := p.modifiers()
	switch p.tok {
	case _Fn:
		return p.methodDecl(mods)
	case _Ctor:
		pos := p.pos
		p.next()
		params := p.params()
		if p.tok != _Lbrace {
			p.fail("expected constructor body")
		}
		body := p.block()
		p.semis()
		return p.node(Ctor, "", pos, mods, params, body)
	}
	p.fail("expected field, method or constructor")
	return nil
}

// interfaceDecl parses: interface Name { fn sig; ... }
func (p *Parser) interfaceDecl(mods *Node) *Node {
	pos := p.pos
	p.want(_Interface)
	i := p.node(Interface, p.name(), pos, mods)
	p.want(_Lbrace)
	for p.tok != _Rbrace && p.tok != _EOF {
		i.Children = append(i.Children, p.methodDecl(p.modifiers()))
	}
	p.want(_Rbrace)
	p.semis()
	return i
}

// methodDecl parses: fn name [<T, ...>] (params) [: type] (block | ;)
func (p *Parser) methodDecl(mods *Node) *Node {
	pos := p.pos
	p.want(_Fn)
	name := p.name()

	tparams := p.node(List, "", p.pos)
	if p.got(_Lss) {
		for {
			tparams.Children = append(tparams.Children, p.typeParam())
			if !p.got(_Comma) {
				break
			}
		}
		p.want(_Gtr)
	}

	params := p.params()

	ret := p.optional(p.got(_Colon), p.type_)

	var body *Node
	if p.tok == _Lbrace {
		body = p.block()
	} else {
		body = p.empty()
		p.want(_Semi)
	}
	p.semis()
	return p.node(Method, name, pos, mods, tparams, params, ret, body)
}

// typeParam parses: T [extends type] [implements type & ...]
func (p *Parser) typeParam() *Node {
	pos := p.pos
	name := p.name()
	bound := p.optional(p.got(_Extends), p.type_)
	impls := p.node(List, "", p.pos)
	if p.got(_Implements) {
		// Interface bounds are joined with & since commas separate
		// the type parameters themselves.
		for {
			impls.Children = append(impls.Children, p.type_())
			if !p.got(_And) {
				break
			}
		}
	}
	return p.node(TypeParam, name, pos, bound, impls)
}

// params parses: ( [name: type {, name: type}] )
func (p *Parser) params() *Node {
	l := p.node(List, "", p.pos)
	p.want(_Lparen)
	if p.tok != _Rparen {
		for {
			pos := p.pos
			name := p.name()
			p.want(_Colon)
			l.Children = append(l.Children, p.node(Param, name, pos, p.type_()))
			if !p.got(_Comma) {
				break
			}
		}
	}
	p.want(_Rparen)
	return l
}

// ----------------------------------------------------------------------------
// Names and types

func (p *Parser) name() string {
	if p.tok != _Name {
		p.fail("expected identifier")
	}
	s := p.lit
	p.next()
	return s
}

// qualifiedName parses: name {. name}
func (p *Parser) qualifiedName() string {
	s := p.name()
	for p.got(_Dot) {
		s += "." + p.name()
	}
	return s
}

// type_ parses a type annotation: qualified name or [elem].
func (p *Parser) type_() *Node {
	switch p.tok {
	case _Name:
		return p.typeName()
	case _Lbrack:
		pos := p.pos
		p.next()
		elem := p.type_()
		p.want(_Rbrack)
		return p.node(TypeArray, "", pos, elem)
	}
	p.fail("expected type")
	return nil
}

func (p *Parser) typeName() *Node {
	pos := p.pos
	return p.node(TypeName, p.qualifiedName(), pos)
}

func (p *Parser) typeList() []*Node {
	var list []*Node
	for {
		list = append(list, p.type_())
		if !p.got(_Comma) {
			return list
		}
	}
}

// ----------------------------------------------------------------------------
// Statements

// block parses: { {stmt} }
func (p *Parser) block() *Node {
	b := p.node(Block, "", p.pos)
	p.want(_Lbrace)
	for p.tok != _Rbrace && p.tok != _EOF {
		b.Children = append(b.Children, p.stmt())
	}
	p.want(_Rbrace)
	return b
}

func (p *Parser) stmt() *Node {
	var s *Node
	switch p.tok {
	case _Lbrace:
		s = p.block()
	case _If:
		s = p.ifStmt()
	case _While:
		pos := p.pos
		p.next()
		cond := p.condition()
		s = p.node(While, "", pos, cond, p.stmt())
	case _For:
		s = p.forStmt()
	case _Return:
		pos := p.pos
		p.next()
		x := p.optional(p.tok != _Semi, p.expr)
		p.want(_Semi)
		s = p.node(Return, "", pos, x)
	case _Break, _Continue:
		kind := Break
		if p.tok == _Continue {
			kind = Continue
		}
		s = p.node(kind, "", p.pos)
		p.next()
		p.want(_Semi)
	default:
		s = p.simpleStmt()
		p.want(_Semi)
	}
	p.semis()
	return s
}

// condition parses: ( expr )
func (p *Parser) condition() *Node {
	p.want(_Lparen)
	x := p.expr()
	p.want(_Rparen)
	return x
}

func (p *Parser) ifStmt() *Node {
	pos := p.pos
	p.want(_If)
	cond := p.condition()
	then := p.stmt()
	els := p.optional(p.got(_Else), p.stmt)
	return p.node(If, "", pos, cond, then, els)
}

// forStmt parses: for ( [simple] ; [expr] ; [simple] ) stmt
func (p *Parser) forStmt() *Node {
	pos := p.pos
	p.want(_For)
	p.want(_Lparen)

	init := p.optional(p.tok != _Semi, p.simpleStmt)
	p.want(_Semi)
	cond := p.optional(p.tok != _Semi, p.expr)
	p.want(_Semi)
	post := p.optional(p.tok != _Rparen, p.simpleStmt)
	p.want(_Rparen)

	return p.node(For, "", pos, init, cond, post, p.stmt())
}

// simpleStmt parses a let, an assignment, an increment or an expression
// statement, without the terminating semicolon.
func (p *Parser) simpleStmt() *Node {
	if p.tok == _Let {
		return p.letStmt()
	}

	pos := p.pos
	x := p.expr()
	switch p.tok {
	case _Assign, _AddAssign, _SubAssign, _MulAssign:
		op := p.tok.String()
		p.next()
		return p.node(Assign, op, pos, x, p.expr())
	case _Inc, _Dec:
		op := p.tok.String()
		p.next()
		return p.node(Increment, op, pos, x)
	}
	return p.node(ExprStmt, "", pos, x)
}

// letStmt parses: let name [: type] [= expr]
func (p *Parser) letStmt() *Node {
	pos := p.pos
	p.want(_Let)
	name := p.name()

	typ := p.optional(p.got(_Colon), p.type_)
	val := p.optional(p.got(_Assign), p.expr)
	if typ.IsEmpty() && val.IsEmpty() {
		p.fail("let needs a type or an initializer")
	}
	return p.node(Let, name, pos, typ, val)
}

// ----------------------------------------------------------------------------
// Expressions
//
// Precedence, lowest first:
//
//	and or
//	== != < <= > >= instanceof
//	+ -
//	* / %
//	& | ^
//	as
//	unary - ! ~, primary

func (p *Parser) expr() *Node {
	return p.logical()
}

// binaryLevel parses a left-associative level whose operators are ops.
func (p *Parser) binaryLevel(next func() *Node, ops ...Token) *Node {
	x := next()
	for {
		matched := false
		for _, op := range ops {
			if p.tok == op {
				matched = true
				break
			}
		}
		if !matched {
			return x
		}
		pos, op := p.pos, p.tok.String()
		p.next()
		x = p.node(Binary, op, pos, x, next())
	}
}

func (p *Parser) logical() *Node {
	return p.binaryLevel(p.comparison, _AndAnd, _OrOr)
}

func (p *Parser) comparison() *Node {
	x := p.additive()
	for {
		switch p.tok {
		case _Eql, _Neq, _Lss, _Leq, _Gtr, _Geq:
			pos, op := p.pos, p.tok.String()
			p.next()
			x = p.node(Binary, op, pos, x, p.additive())
		case _Instanceof:
			pos := p.pos
			p.next()
			x = p.node(InstanceOf, "", pos, x, p.type_())
		default:
			return x
		}
	}
}

func (p *Parser) additive() *Node {
	return p.binaryLevel(p.multiplicative, _Add, _Sub)
}

func (p *Parser) multiplicative() *Node {
	return p.binaryLevel(p.bitwise, _Mul, _Div, _Rem)
}

func (p *Parser) bitwise() *Node {
	return p.binaryLevel(p.cast, _And, _Or, _Xor)
}

func (p *Parser) cast() *Node {
	x := p.unary()
	for p.tok == _As {
		pos := p.pos
		p.next()
		x = p.node(Cast, "", pos, x, p.type_())
	}
	return x
}

func (p *Parser) unary() *Node {
	switch p.tok {
	case _Sub:
		pos := p.pos
		if p.scanner.Peek(1) == _Int {
			// Fold the sign into the literal so that the most negative
			// int is expressible.
			p.next()
			lit := p.lit
			p.next()
			return p.node(IntLit, "-"+lit, pos)
		}
		p.next()
		return p.node(Unary, "-", pos, p.unary())
	case _Not, _Tilde:
		pos, op := p.pos, p.tok.String()
		p.next()
		return p.node(Unary, op, pos, p.unary())
	}
	return p.postfix()
}

// postfix parses a primary followed by property, index and method call
// segments, collecting them into a Chain.
func (p *Parser) postfix() *Node {
	x := p.primary()
	if p.tok != _Dot && p.tok != _Lbrack {
		return x
	}

	chain := p.node(Chain, "", x.Pos, x)
	for {
		switch p.tok {
		case _Dot:
			p.next()
			pos := p.pos
			name := p.name()
			if targs, args, ok := p.callSuffix(); ok {
				chain.Children = append(chain.Children, p.node(MethodCall, name, pos, targs, args))
			} else {
				chain.Children = append(chain.Children, p.node(Property, name, pos))
			}
		case _Lbrack:
			pos := p.pos
			p.next()
			idx := p.expr()
			p.want(_Rbrack)
			chain.Children = append(chain.Children, p.node(Index, "", pos, idx))
		default:
			return chain
		}
	}
}

func (p *Parser) primary() *Node {
	pos := p.pos
	switch p.tok {
	case _Int:
		lit := p.lit
		p.next()
		return p.node(IntLit, lit, pos)
	case _Char:
		r, _ := utf8.DecodeRuneInString(p.lit)
		p.next()
		return p.node(IntLit, strconv.Itoa(int(r)), pos)
	case _String:
		lit := p.lit
		p.next()
		return p.node(StringLit, lit, pos)
	case _True, _False:
		lit := p.lit
		p.next()
		return p.node(BoolLit, lit, pos)
	case _Null:
		p.next()
		return p.node(Null, "", pos)
	case _This:
		p.next()
		return p.node(This, "", pos)
	case _Name:
		name := p.name()
		if targs, args, ok := p.callSuffix(); ok {
			return p.node(Call, name, pos, targs, args)
		}
		return p.node(Ident, name, pos)
	case _New:
		p.next()
		typ := p.typeName()
		if p.tok != _Lparen {
			p.fail("expected constructor arguments")
		}
		return p.node(New, "", pos, typ, p.args())
	case _Lbrack:
		return p.arrayExpr()
	case _Lparen:
		p.next()
		x := p.expr()
		p.want(_Rparen)
		return x
	}
	p.fail("expected expression")
	return nil
}

// callSuffix parses the optional type arguments and the argument list that
// turn a name into a call. It reports false, consuming nothing, if the
// tokens ahead are not a call.
//
// f<T>(x) and f < T > (x) are indistinguishable by grammar alone; the type
// argument reading is preferred whenever it parses.
func (p *Parser) callSuffix() (targs, args *Node, ok bool) {
	tpos := p.pos
	var tlist []*Node
	if p.tok == _Lss {
		if !p.typeArgsAhead() {
			return nil, nil, false
		}
		if !p.try(func() {
			p.next()
			tlist = p.typeList()
			p.want(_Gtr)
			if p.tok != _Lparen {
				p.fail("expected (")
			}
		}) {
			return nil, nil, false
		}
	}
	if p.tok != _Lparen {
		return nil, nil, false
	}
	targs = p.node(List, "", tpos, tlist...)
	return targs, p.args(), true
}

// typeArgsAhead is a quick filter run before speculating on a type
// argument list: everything up to the closing > must be type tokens.
func (p *Parser) typeArgsAhead() bool {
	toks, found := p.scanner.PeekUntil(_Gtr, 64)
	if !found || len(toks) == 0 {
		return false
	}
	for _, t := range toks {
		switch t {
		case _Name, _Dot, _Comma, _Lbrack, _Rbrack:
		default:
			return false
		}
	}
	return true
}

// args parses: ( [expr {, expr}] )
func (p *Parser) args() *Node {
	l := p.node(List, "", p.pos)
	p.want(_Lparen)
	if p.tok != _Rparen {
		for {
			l.Children = append(l.Children, p.expr())
			if !p.got(_Comma) {
				break
			}
		}
	}
	p.want(_Rparen)
	return l
}

// arrayExpr parses [type: n] or [a, b, ...].
// A type followed by a colon selects the sized form.
func (p *Parser) arrayExpr() *Node {
	pos := p.pos

	var elem *Node
	if p.try(func() {
		p.want(_Lbrack)
		elem = p.type_()
		p.want(_Colon)
	}) {
		n := p.expr()
		p.want(_Rbrack)
		return p.node(ArrayNew, "", pos, elem, n)
	}

	lit := p.node(ArrayLit, "", pos)
	p.want(_Lbrack)
	if p.tok != _Rbrack {
		for {
			lit.Children = append(lit.Children, p.expr())
			if !p.got(_Comma) {
				break
			}
		}
	}
	p.want(_Rbrack)
	return lit
}
