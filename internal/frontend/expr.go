package frontend

import (
	"github.com/mini-c/tacopt/pkg/ctypes"
	"github.com/mini-c/tacopt/pkg/irbuild"
	"github.com/mini-c/tacopt/pkg/lexer"
	"github.com/mini-c/tacopt/pkg/symtab"
	"github.com/mini-c/tacopt/pkg/tac"
)

// exprResult is what parsing one expression production yields: either
// an lvalue path (assignable, addressable, loadable), an
// already-computed rvalue, a bare function name awaiting a call's
// '(', or one of the two builtin pseudo-functions input/output (which
// have no declared symbol — mini-C reserves them as statement-level
// I/O forms, matching tac.c's dedicated INPUT/OUTPUT opcodes).
type exprResult struct {
	path    *irbuild.Path
	val     *symtab.Symbol
	typ     ctypes.Type
	fn      *symtab.Symbol
	builtin string
}

// loadExpr reduces any exprResult to a concrete rvalue symbol,
// emitting a LOAD if the result was an unread lvalue path.
func (p *Parser) loadExpr(e *exprResult) (*symtab.Symbol, ctypes.Type) {
	if e == nil {
		return nil, nil
	}
	if e.path != nil {
		v, t, err := p.b.Load(e.path)
		if err != nil {
			p.addError("%s", err.Error())
			return nil, nil
		}
		return v, t
	}
	return e.val, e.typ
}

func (p *Parser) parseExpression(precedence int) *exprResult {
	left := p.parsePrefix()
	if left == nil {
		return nil
	}
	for !p.curIs(lexer.TokenSemicolon) && precedence < p.curPrecedence() {
		left = p.parseInfix(left)
		if left == nil {
			return nil
		}
	}
	return left
}

func (p *Parser) curPrecedence() int {
	if pr, ok := precedences[p.cur.Type]; ok {
		return pr
	}
	return LOWEST
}

func (p *Parser) parsePrefix() *exprResult {
	switch p.cur.Type {
	case lexer.TokenInt:
		v := parseInt(p.cur.Literal)
		p.next()
		return &exprResult{val: p.b.Syms.MkIntConst(v), typ: ctypes.Int()}

	case lexer.TokenCharLit:
		v := decodeCharLiteral(p.cur.Literal)
		p.next()
		return &exprResult{val: p.b.Syms.MkCharConst(v), typ: ctypes.Char()}

	case lexer.TokenIdent:
		name := p.cur.Literal
		p.next()
		if name == "input" || name == "output" {
			return &exprResult{builtin: name}
		}
		sym, err := p.b.GetVar(name)
		if err != nil {
			p.addError("%s", err.Error())
			return nil
		}
		if sym.Kind == symtab.Func {
			return &exprResult{fn: sym, typ: sym.Type}
		}
		return &exprResult{path: irbuild.NewPath(sym), typ: sym.Type}

	case lexer.TokenLParen:
		p.next()
		e := p.parseExpression(LOWEST)
		p.expect(lexer.TokenRParen)
		return e

	case lexer.TokenMinus:
		p.next()
		operand := p.parseExpression(PREFIX)
		v, _ := p.loadExpr(operand)
		return &exprResult{val: p.b.UnOp(tac.NEG, v), typ: ctypes.Int()}

	case lexer.TokenAmpersand:
		p.next()
		operand := p.parseExpression(PREFIX)
		if operand == nil || operand.path == nil {
			p.addError("cannot take the address of this expression")
			return nil
		}
		addr, t, err := p.b.Address(operand.path)
		if err != nil {
			p.addError("%s", err.Error())
			return nil
		}
		return &exprResult{val: addr, typ: t}

	case lexer.TokenStar:
		p.next()
		operand := p.parseExpression(PREFIX)
		v, t := p.loadExpr(operand)
		if v == nil {
			return nil
		}
		elem := ctypes.ElemType(t)
		if elem == nil {
			p.addError("cannot dereference a non-pointer expression")
			return nil
		}
		return &exprResult{path: irbuild.FromAddress(v, elem), typ: elem}

	default:
		p.addError("unexpected token %s in expression", p.cur.Type)
		p.next()
		return nil
	}
}

func (p *Parser) parseInfix(left *exprResult) *exprResult {
	switch p.cur.Type {
	case lexer.TokenAssign:
		p.next()
		right := p.parseExpression(LOWEST) // right-associative: binds loosely
		rv, _ := p.loadExpr(right)
		if left.path == nil {
			p.addError("left-hand side of assignment is not assignable")
			return nil
		}
		if err := p.b.Store(left.path, rv); err != nil {
			p.addError("%s", err.Error())
			return nil
		}
		return &exprResult{val: rv, typ: left.typ}

	case lexer.TokenDot:
		p.next()
		field := p.cur.Literal
		p.next()
		if left.path == nil {
			p.addError("field access on a non-lvalue expression")
			return nil
		}
		ft, err := p.b.FieldType(left.typ, field)
		if err != nil {
			p.addError("%s", err.Error())
			return nil
		}
		left.path.Field(field)
		left.typ = ft
		return left

	case lexer.TokenLBracket:
		p.next()
		idxExpr := p.parseExpression(LOWEST)
		idx, _ := p.loadExpr(idxExpr)
		p.expect(lexer.TokenRBracket)
		basePath := left.path
		if basePath == nil {
			// Indexing a bare pointer rvalue (e.g. a call result):
			// root a fresh path at its address.
			v, t := p.loadExpr(left)
			elem := ctypes.ElemType(t)
			if elem == nil {
				p.addError("cannot index a non-array/pointer expression")
				return nil
			}
			basePath = irbuild.FromAddress(v, elem)
		}
		basePath.Index(idx)
		return &exprResult{path: basePath, typ: ctypes.ElemType(left.typ)}

	case lexer.TokenLParen:
		return p.parseCall(left)

	default:
		return p.parseBinary(left)
	}
}

func (p *Parser) parseBinary(left *exprResult) *exprResult {
	op := binOpFor(p.cur.Type)
	prec := p.curPrecedence()
	p.next()
	lv, _ := p.loadExpr(left)
	right := p.parseExpression(prec)
	rv, _ := p.loadExpr(right)
	return &exprResult{val: p.b.BinOp(op, lv, rv), typ: ctypes.Int()}
}

func binOpFor(t lexer.TokenType) tac.Op {
	switch t {
	case lexer.TokenPlus:
		return tac.ADD
	case lexer.TokenMinus:
		return tac.SUB
	case lexer.TokenStar:
		return tac.MUL
	case lexer.TokenSlash:
		return tac.DIV
	case lexer.TokenEq:
		return tac.EQ
	case lexer.TokenNe:
		return tac.NE
	case lexer.TokenLt:
		return tac.LT
	case lexer.TokenLe:
		return tac.LE
	case lexer.TokenGt:
		return tac.GT
	case lexer.TokenGe:
		return tac.GE
	default:
		return tac.UNDEF
	}
}

// parseCall handles both ordinary function calls and the input/output
// builtins, which the language surfaces with call syntax but which
// compile to the dedicated INPUT/OUTPUT opcodes rather than CALL.
func (p *Parser) parseCall(left *exprResult) *exprResult {
	p.next() // consume '('
	var args []*exprResult
	for !p.curIs(lexer.TokenRParen) && !p.curIs(lexer.TokenEOF) {
		args = append(args, p.parseExpression(LOWEST))
		if p.curIs(lexer.TokenComma) {
			p.next()
		}
	}
	p.expect(lexer.TokenRParen)

	if left.builtin == "output" {
		if len(args) != 1 {
			p.addError("output() takes exactly one argument")
			return nil
		}
		v, _ := p.loadExpr(args[0])
		p.b.Output(v)
		return &exprResult{val: v, typ: ctypes.Int()}
	}
	if left.builtin == "input" {
		dst := p.b.NewTemp(ctypes.Int())
		p.b.Input(dst)
		return &exprResult{val: dst, typ: ctypes.Int()}
	}

	if left.fn == nil {
		p.addError("call to a non-function expression")
		return nil
	}
	var argVals []*symtab.Symbol
	for _, a := range args {
		v, _ := p.loadExpr(a)
		argVals = append(argVals, v)
	}
	voidCall := left.fn.Type == nil
	result := p.b.Call(left.fn, argVals, voidCall)
	return &exprResult{val: result, typ: left.fn.Type}
}

func decodeCharLiteral(raw string) int32 {
	if len(raw) == 0 {
		return 0
	}
	if raw[0] == '\\' && len(raw) > 1 {
		switch raw[1] {
		case 'n':
			return '\n'
		case 't':
			return '\t'
		case '0':
			return 0
		case '\\':
			return '\\'
		case '\'':
			return '\''
		default:
			return int32(raw[1])
		}
	}
	return int32(raw[0])
}
