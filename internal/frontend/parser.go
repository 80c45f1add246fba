// Package frontend is mini-C's recursive-descent, precedence-climbing
// parser: it tokenizes with pkg/lexer and drives pkg/irbuild directly,
// emitting TAC as each construct is recognized instead of building an
// intermediate AST.
//
// Grounded in the teacher's (now-removed, see DESIGN.md) pkg/parser
// Pratt-parser idiom: named precedence constants, a precedence table
// keyed by token type (prefix/infix parsing dispatches through switch
// statements rather than a parse-function table), and an
// addError/peek-based error style — narrowed here to mini-C's grammar and wired straight
// into the builder rather than an ast.Node tree.
package frontend

import (
	"fmt"

	"github.com/mini-c/tacopt/pkg/ctypes"
	"github.com/mini-c/tacopt/pkg/irbuild"
	"github.com/mini-c/tacopt/pkg/lexer"
)

// Precedence levels, lowest to highest, matching the deleted parser's
// constant block (iota-numbered, compared with < instead of named
// per-operator checks).
const (
	_ int = iota
	LOWEST
	ASSIGN      // =
	EQUALS      // == !=
	LESSGREATER // < <= > >=
	SUM         // + -
	PRODUCT     // * /
	PREFIX      // -x &x *x
	CALLPREC    // foo(...)
	INDEXPREC   // a[i] a.b
)

var precedences = map[lexer.TokenType]int{
	lexer.TokenAssign:   ASSIGN,
	lexer.TokenEq:       EQUALS,
	lexer.TokenNe:       EQUALS,
	lexer.TokenLt:       LESSGREATER,
	lexer.TokenLe:       LESSGREATER,
	lexer.TokenGt:       LESSGREATER,
	lexer.TokenGe:       LESSGREATER,
	lexer.TokenPlus:     SUM,
	lexer.TokenMinus:    SUM,
	lexer.TokenStar:     PRODUCT,
	lexer.TokenSlash:    PRODUCT,
	lexer.TokenLParen:   CALLPREC,
	lexer.TokenLBracket: INDEXPREC,
	lexer.TokenDot:      INDEXPREC,
}

// ParseError is a single syntax or semantic error encountered while
// parsing, carrying the source position for the CLI's diagnostic
// printer (internal/errors.CompileError wraps these).
type ParseError struct {
	Line, Column int
	Message      string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
}

// Parser holds parsing state: the lexer, a 2-token lookahead window,
// the IR builder it emits into, and accumulated errors (parsing
// continues past an error where it safely can, matching the deleted
// parser's "collect, don't bail on first error" behavior).
type Parser struct {
	l *lexer.Lexer
	b *irbuild.Builder

	cur, peek lexer.Token
	errs      []*ParseError
}

// New returns a Parser over src, emitting into b.
func New(src string, b *irbuild.Builder) *Parser {
	p := &Parser{l: lexer.New(src), b: b}
	p.next()
	p.next()
	return p
}

func (p *Parser) next() {
	p.cur = p.peek
	p.peek = p.l.NextToken()
}

func (p *Parser) addError(format string, args ...interface{}) {
	p.errs = append(p.errs, &ParseError{Line: p.cur.Line, Column: p.cur.Column, Message: fmt.Sprintf(format, args...)})
}

// Errors returns every error collected during parsing.
func (p *Parser) Errors() []*ParseError { return p.errs }

func (p *Parser) curIs(t lexer.TokenType) bool  { return p.cur.Type == t }
func (p *Parser) peekIs(t lexer.TokenType) bool { return p.peek.Type == t }

func (p *Parser) expect(t lexer.TokenType) bool {
	if p.curIs(t) {
		p.next()
		return true
	}
	p.addError("expected %s, got %s (%q)", t, p.cur.Type, p.cur.Literal)
	return false
}

// ParseProgram parses an entire translation unit, declaring every
// struct/function/global it finds and emitting each function body's
// TAC directly into p.b.
func (p *Parser) ParseProgram() {
	for !p.curIs(lexer.TokenEOF) {
		switch {
		case p.curIs(lexer.TokenStruct) && p.peekIs(lexer.TokenIdent):
			p.parseStructDecl()
		default:
			p.parseTopLevelDecl()
		}
		if len(p.errs) > 0 && p.cur.Type == lexer.TokenEOF {
			break
		}
	}
}

// parseStructDecl parses "struct Name { Type field; ... };".
func (p *Parser) parseStructDecl() {
	p.next() // consume 'struct'
	name := p.cur.Literal
	p.next() // consume name
	sb := p.b.BeginStruct(name)

	if !p.expect(lexer.TokenLBrace) {
		return
	}
	for !p.curIs(lexer.TokenRBrace) && !p.curIs(lexer.TokenEOF) {
		t, ok := p.parseType()
		if !ok {
			return
		}
		fieldName := p.cur.Literal
		p.next()
		t = p.parseArraySuffix(t)
		sb.AddField(fieldName, t)
		p.expect(lexer.TokenSemicolon)
	}
	p.expect(lexer.TokenRBrace)
	p.expect(lexer.TokenSemicolon)
	p.b.FinishStruct(name)
}

// parseType parses a base type keyword (or struct tag) followed by any
// number of '*' pointer suffixes.
func (p *Parser) parseType() (ctypes.Type, bool) {
	var t ctypes.Type
	switch p.cur.Type {
	case lexer.TokenInt_:
		t = ctypes.Int()
	case lexer.TokenChar:
		t = ctypes.Char()
	case lexer.TokenVoid:
		t = nil
	case lexer.TokenStruct:
		p.next()
		name := p.cur.Literal
		if full, ok := p.b.LookupStruct(name); ok {
			t = full
		} else {
			t = ctypes.Tstruct{Name: name}
		}
	default:
		p.addError("expected a type, got %s", p.cur.Type)
		return nil, false
	}
	p.next()
	for p.curIs(lexer.TokenStar) {
		t = ctypes.Pointer(t)
		p.next()
	}
	return t, true
}

// parseArraySuffix parses zero or more "[N]" trailing array dimensions
// applied to elem, rightmost dimension innermost (matching C's
// declarator reading order: "int a[2][3]" is an array of 2 arrays of
// 3 ints).
func (p *Parser) parseArraySuffix(elem ctypes.Type) ctypes.Type {
	if !p.curIs(lexer.TokenLBracket) {
		return elem
	}
	p.next()
	n := int32(0)
	if p.curIs(lexer.TokenInt) {
		n = parseInt(p.cur.Literal)
		p.next()
	}
	p.expect(lexer.TokenRBracket)
	inner := p.parseArraySuffix(elem)
	return ctypes.NewArray(inner, n)
}

// parseTopLevelDecl parses a global variable or a function
// declaration/definition, both of which start with a type then a name.
func (p *Parser) parseTopLevelDecl() {
	t, ok := p.parseType()
	if !ok {
		p.next()
		return
	}
	name := p.cur.Literal
	if !p.expect(lexer.TokenIdent) {
		return
	}

	if p.curIs(lexer.TokenLParen) {
		p.parseFunction(name, t)
		return
	}

	t = p.parseArraySuffix(t)
	if _, err := p.b.DeclareGlobalVar(name, t); err != nil {
		p.addError("%s", err.Error())
	}
	p.expect(lexer.TokenSemicolon)
}

// parseFunction parses a parameter list and, if a body follows, the
// function's statements; a bare prototype ("f(int x);") declares the
// symbol without emitting a body.
func (p *Parser) parseFunction(name string, ret ctypes.Type) {
	p.next() // consume '('
	var paramNames []string
	var paramTypes []ctypes.Type
	for !p.curIs(lexer.TokenRParen) && !p.curIs(lexer.TokenEOF) {
		pt, ok := p.parseType()
		if !ok {
			return
		}
		pname := p.cur.Literal
		p.next()
		paramTypes = append(paramTypes, pt)
		paramNames = append(paramNames, pname)
		if p.curIs(lexer.TokenComma) {
			p.next()
		}
	}
	p.expect(lexer.TokenRParen)

	fn, err := p.b.DeclareFunc(name, len(paramTypes), ret)
	if err != nil {
		p.addError("%s", err.Error())
		return
	}

	if p.curIs(lexer.TokenSemicolon) {
		p.next()
		return
	}

	p.b.BeginFunction(fn)
	for i, pname := range paramNames {
		if _, err := p.b.DeclareFormal(pname, paramTypes[i]); err != nil {
			p.addError("%s", err.Error())
		}
	}
	p.parseBlockInto()
	p.b.EndFunction()
}

// parseBlockInto parses "{ stmt* }" directly into the current
// function body (no new scope — mini-C has only function scope,
// matching the original's single-level local chain).
func (p *Parser) parseBlockInto() {
	if !p.expect(lexer.TokenLBrace) {
		return
	}
	for !p.curIs(lexer.TokenRBrace) && !p.curIs(lexer.TokenEOF) {
		p.parseStatement()
	}
	p.expect(lexer.TokenRBrace)
}

func (p *Parser) isTypeStart() bool {
	switch p.cur.Type {
	case lexer.TokenInt_, lexer.TokenChar, lexer.TokenVoid, lexer.TokenStruct:
		return true
	default:
		return false
	}
}

func (p *Parser) parseStatement() {
	switch {
	case p.isTypeStart():
		p.parseVarDeclStmt()
	case p.curIs(lexer.TokenIf):
		p.parseIfStmt()
	case p.curIs(lexer.TokenWhile):
		p.parseWhileStmt()
	case p.curIs(lexer.TokenReturn):
		p.parseReturnStmt()
	case p.curIs(lexer.TokenLBrace):
		p.parseBlockInto()
	default:
		p.parseExprStmt()
	}
}

func (p *Parser) parseVarDeclStmt() {
	t, ok := p.parseType()
	if !ok {
		return
	}
	name := p.cur.Literal
	if !p.expect(lexer.TokenIdent) {
		return
	}
	t = p.parseArraySuffix(t)
	if _, err := p.b.DeclareVar(name, t); err != nil {
		p.addError("%s", err.Error())
	}
	p.expect(lexer.TokenSemicolon)
}

// parseIfStmt emits the standard two-label if/else shape directly
// (rather than through irbuild.Builder.If, whose then/else callbacks
// would need to know in advance whether an "else" follows — here the
// parser only discovers that after parsing the then-branch), matching
// do_if's label placement from original_source/Function/tac.c.
func (p *Parser) parseIfStmt() {
	p.next() // 'if'
	p.expect(lexer.TokenLParen)
	cond := p.parseExpression(LOWEST)
	p.expect(lexer.TokenRParen)
	condVal, _ := p.loadExpr(cond)

	elseL := p.b.NewLabel()
	end := p.b.NewLabel()
	p.b.EmitIfz(condVal, elseL)
	p.parseStatement()
	if p.curIs(lexer.TokenElse) {
		p.b.EmitGoto(end)
		p.b.EmitLabel(elseL)
		p.next() // consume 'else'
		p.parseStatement()
		p.b.EmitLabel(end)
	} else {
		p.b.EmitLabel(elseL)
	}
}

// parseWhileStmt emits the header/body/back-edge loop shape, matching
// do_while: the condition is parsed and re-emitted once per textual
// occurrence (there's only one — it's the loop header, executed once
// per iteration at runtime).
func (p *Parser) parseWhileStmt() {
	p.next() // 'while'
	header := p.b.NewLabel()
	end := p.b.NewLabel()
	p.b.EmitLabel(header)

	p.expect(lexer.TokenLParen)
	cond := p.parseExpression(LOWEST)
	p.expect(lexer.TokenRParen)
	condVal, _ := p.loadExpr(cond)
	p.b.EmitIfz(condVal, end)

	p.parseStatement()
	p.b.EmitGoto(header)
	p.b.EmitLabel(end)
}

func (p *Parser) parseReturnStmt() {
	p.next() // 'return'
	if p.curIs(lexer.TokenSemicolon) {
		p.b.Return(nil)
		p.next()
		return
	}
	e := p.parseExpression(LOWEST)
	v, _ := p.loadExpr(e)
	p.b.Return(v)
	p.expect(lexer.TokenSemicolon)
}

func (p *Parser) parseExprStmt() {
	e := p.parseExpression(LOWEST)
	p.loadExpr(e)
	p.expect(lexer.TokenSemicolon)
}

func parseInt(s string) int32 {
	var v int32
	for _, c := range s {
		if c < '0' || c > '9' {
			break
		}
		v = v*10 + int32(c-'0')
	}
	return v
}
