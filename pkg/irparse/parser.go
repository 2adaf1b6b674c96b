package irparse

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/obriematt/CS322/pkg/ir"
)

// Parser is a recursive descent parser for IR1 text.
// Every parse method consumes the tokens of its construct and leaves
// curToken on the first token that follows it.
type Parser struct {
	l         *Lexer
	prevToken Token
	curToken  Token
	peekToken Token
	errors    []string
}

// New creates a new Parser for the given lexer
func New(l *Lexer) *Parser {
	p := &Parser{l: l}
	// Read two tokens to initialize curToken and peekToken
	p.nextToken()
	p.nextToken()
	return p
}

// Parse parses a whole IR1 program from source text
func Parse(input string) (*ir.Program, error) {
	p := New(NewLexer(input))
	prog := p.ParseProgram()
	if len(p.Errors()) > 0 {
		return nil, errors.New(strings.Join(p.Errors(), "\n"))
	}
	return prog, nil
}

func (p *Parser) nextToken() {
	p.prevToken = p.curToken
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

// Errors returns the list of parsing errors
func (p *Parser) Errors() []string {
	return p.errors
}

func (p *Parser) addError(msg string) {
	p.errors = append(p.errors, fmt.Sprintf("line %d, col %d: %s",
		p.curToken.Line, p.curToken.Column, msg))
}

func (p *Parser) curTokenIs(t TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) expect(t TokenType) bool {
	if p.curTokenIs(t) {
		p.nextToken()
		return true
	}
	p.addError(fmt.Sprintf("expected %s, got %s", t, p.curToken.Type))
	return false
}

// onPrevLine reports whether the current token continues the line of the
// token consumed before it
func (p *Parser) onPrevLine() bool {
	return p.curToken.Line == p.prevToken.Line
}

// ParseProgram parses functions until EOF
func (p *Parser) ParseProgram() *ir.Program {
	prog := &ir.Program{}
	for !p.curTokenIs(TokenEOF) {
		fn := p.parseFunc()
		if fn == nil {
			// Unrecoverable at the function level
			break
		}
		prog.Funcs = append(prog.Funcs, fn)
	}
	return prog
}

func (p *Parser) parseFunc() *ir.Func {
	if !p.curTokenIs(TokenGlobal) {
		p.addError(fmt.Sprintf("expected function name, got %s", p.curToken.Type))
		return nil
	}
	name := p.curToken.Literal
	p.nextToken()

	params, ok := p.parseNameList()
	if !ok {
		return nil
	}
	locals, ok := p.parseNameList()
	if !ok {
		return nil
	}
	fn := ir.NewFunc(name, params, locals)

	if !p.expect(TokenLBrace) {
		return nil
	}
	for !p.curTokenIs(TokenRBrace) {
		if p.curTokenIs(TokenEOF) {
			p.addError(fmt.Sprintf("unexpected EOF in function %s", name))
			return nil
		}
		inst := p.parseInst()
		if inst == nil {
			p.synchronize()
			continue
		}
		fn.Append(inst)
	}
	p.nextToken() // consume }
	return fn
}

// synchronize skips the rest of a malformed instruction line
func (p *Parser) synchronize() {
	line := p.curToken.Line
	for p.curToken.Line == line && !p.curTokenIs(TokenRBrace) && !p.curTokenIs(TokenEOF) {
		p.nextToken()
	}
}

// parseNameList parses "(a, b, c)"
func (p *Parser) parseNameList() ([]string, bool) {
	if !p.expect(TokenLParen) {
		return nil, false
	}
	names := []string{}
	for !p.curTokenIs(TokenRParen) {
		if len(names) > 0 && !p.expect(TokenComma) {
			return nil, false
		}
		if !p.curTokenIs(TokenIdent) {
			p.addError(fmt.Sprintf("expected identifier, got %s", p.curToken.Type))
			return nil, false
		}
		names = append(names, p.curToken.Literal)
		p.nextToken()
	}
	p.nextToken() // consume )
	return names, true
}

func (p *Parser) parseInst() ir.Inst {
	switch p.curToken.Type {
	case TokenIdent:
		if p.peekToken.Type == TokenColon {
			lab := ir.Label(p.curToken.Literal)
			p.nextToken()
			p.nextToken()
			return ir.LabelDec{Lab: lab}
		}
		return p.parseAssign()
	case TokenTemp:
		return p.parseAssign()
	case TokenGoto:
		p.nextToken()
		lab, ok := p.parseLabel()
		if !ok {
			return nil
		}
		return ir.Jump{Lab: lab}
	case TokenIf:
		return p.parseCJump()
	case TokenCall:
		return p.parseCall(nil)
	case TokenReturn:
		p.nextToken()
		if p.onPrevLine() && p.startsSrc() {
			val := p.parseSrc()
			if val == nil {
				return nil
			}
			return ir.Return{Val: val}
		}
		return ir.Return{}
	case TokenInt, TokenMinus:
		return p.parseStore()
	default:
		p.addError(fmt.Sprintf("unexpected %s at start of instruction", p.curToken.Type))
		return nil
	}
}

func (p *Parser) parseLabel() (ir.Label, bool) {
	if !p.curTokenIs(TokenIdent) {
		p.addError(fmt.Sprintf("expected label, got %s", p.curToken.Type))
		return "", false
	}
	lab := ir.Label(p.curToken.Literal)
	p.nextToken()
	return lab, true
}

func (p *Parser) parseCJump() ir.Inst {
	p.nextToken() // consume if
	src1 := p.parseSrc()
	if src1 == nil {
		return nil
	}
	op, ok := binOps[p.curToken.Type]
	if !ok || !op.IsRelational() {
		p.addError(fmt.Sprintf("expected relational operator, got %s", p.curToken.Type))
		return nil
	}
	p.nextToken()
	src2 := p.parseSrc()
	if src2 == nil || !p.expect(TokenGoto) {
		return nil
	}
	lab, ok := p.parseLabel()
	if !ok {
		return nil
	}
	return ir.CJump{Op: op, Src1: src1, Src2: src2, Lab: lab}
}

func (p *Parser) parseCall(rdst ir.Dest) ir.Inst {
	if !p.expect(TokenCall) {
		return nil
	}
	if !p.curTokenIs(TokenGlobal) && !p.curTokenIs(TokenIdent) {
		p.addError(fmt.Sprintf("expected function name, got %s", p.curToken.Type))
		return nil
	}
	name := p.curToken.Literal
	p.nextToken()
	if !p.expect(TokenLParen) {
		return nil
	}
	args := []ir.Src{}
	for !p.curTokenIs(TokenRParen) {
		if len(args) > 0 && !p.expect(TokenComma) {
			return nil
		}
		arg := p.parseSrc()
		if arg == nil {
			return nil
		}
		args = append(args, arg)
	}
	p.nextToken() // consume )
	return ir.Call{Name: name, Args: args, Rdst: rdst}
}

func (p *Parser) parseStore() ir.Inst {
	addr, ok := p.parseAddr()
	if !ok || !p.expect(TokenAssign) {
		return nil
	}
	src := p.parseSrc()
	if src == nil {
		return nil
	}
	return ir.Store{Addr: addr, Src: src}
}

// parseAddr parses "offset[base]"
func (p *Parser) parseAddr() (ir.Addr, bool) {
	src := p.parseSrc()
	if src == nil {
		return ir.Addr{}, false
	}
	ofs, ok := src.(ir.IntLit)
	if !ok {
		p.addError(fmt.Sprintf("expected address offset, got %s", src))
		return ir.Addr{}, false
	}
	return p.parseAddrBase(ofs)
}

func (p *Parser) parseAddrBase(ofs ir.IntLit) (ir.Addr, bool) {
	if !p.expect(TokenLBracket) {
		return ir.Addr{}, false
	}
	base := p.parseSrc()
	if base == nil || !p.expect(TokenRBracket) {
		return ir.Addr{}, false
	}
	return ir.Addr{Base: base, Offset: int(ofs.Val)}, true
}

// parseAssign parses every instruction of the form "dst = ..."
func (p *Parser) parseAssign() ir.Inst {
	dst := p.parseDest()
	if dst == nil || !p.expect(TokenAssign) {
		return nil
	}

	switch p.curToken.Type {
	case TokenCall:
		return p.parseCall(dst)
	case TokenNot:
		p.nextToken()
		src := p.parseSrc()
		if src == nil {
			return nil
		}
		return ir.Unop{Op: ir.Not, Dst: dst, Src: src}
	case TokenMinus:
		if p.peekToken.Type != TokenInt {
			p.nextToken()
			src := p.parseSrc()
			if src == nil {
				return nil
			}
			return ir.Unop{Op: ir.Neg, Dst: dst, Src: src}
		}
	}

	src1 := p.parseSrc()
	if src1 == nil {
		return nil
	}
	if lit, ok := src1.(ir.IntLit); ok && p.curTokenIs(TokenLBracket) {
		addr, ok := p.parseAddrBase(lit)
		if !ok {
			return nil
		}
		return ir.Load{Dst: dst, Addr: addr}
	}

	op, ok := binOps[p.curToken.Type]
	if !ok || !p.onPrevLine() {
		return ir.Move{Dst: dst, Src: src1}
	}
	p.nextToken()
	src2 := p.parseSrc()
	if src2 == nil {
		return nil
	}
	return ir.Binop{Op: op, Dst: dst, Src1: src1, Src2: src2}
}

func (p *Parser) parseDest() ir.Dest {
	switch p.curToken.Type {
	case TokenIdent:
		d := ir.Id{Name: p.curToken.Literal}
		p.nextToken()
		return d
	case TokenTemp:
		d, ok := p.parseTemp()
		if !ok {
			return nil
		}
		return d
	}
	p.addError(fmt.Sprintf("expected destination, got %s", p.curToken.Type))
	return nil
}

func (p *Parser) parseTemp() (ir.Temp, bool) {
	n, err := strconv.Atoi(p.curToken.Literal[1:])
	if err != nil {
		p.addError(fmt.Sprintf("bad temp %q", p.curToken.Literal))
		return ir.Temp{}, false
	}
	p.nextToken()
	return ir.Temp{Num: n}, true
}

// startsSrc reports whether the current token can begin an operand
func (p *Parser) startsSrc() bool {
	switch p.curToken.Type {
	case TokenIdent, TokenTemp, TokenInt, TokenMinus, TokenTrue, TokenFalse, TokenString:
		return true
	}
	return false
}

func (p *Parser) parseSrc() ir.Src {
	switch p.curToken.Type {
	case TokenIdent:
		s := ir.Id{Name: p.curToken.Literal}
		p.nextToken()
		return s
	case TokenTemp:
		t, ok := p.parseTemp()
		if !ok {
			return nil
		}
		return t
	case TokenInt:
		return p.parseInt("")
	case TokenMinus:
		if p.peekToken.Type != TokenInt {
			p.addError(fmt.Sprintf("expected integer after -, got %s", p.peekToken.Type))
			return nil
		}
		p.nextToken()
		return p.parseInt("-")
	case TokenTrue:
		p.nextToken()
		return ir.True
	case TokenFalse:
		p.nextToken()
		return ir.False
	case TokenString:
		s := ir.StrLit{Val: p.curToken.Literal}
		p.nextToken()
		return s
	}
	p.addError(fmt.Sprintf("expected operand, got %s", p.curToken.Type))
	return nil
}

func (p *Parser) parseInt(sign string) ir.Src {
	v, err := strconv.ParseInt(sign+p.curToken.Literal, 10, 32)
	if err != nil {
		p.addError(fmt.Sprintf("integer literal %s%s out of range", sign, p.curToken.Literal))
		return nil
	}
	p.nextToken()
	return ir.IntLit{Val: int32(v)}
}

// binOps maps operator tokens to IR1 binary operators
var binOps = map[TokenType]ir.BinOp{
	TokenPlus:   ir.Add,
	TokenMinus:  ir.Sub,
	TokenStar:   ir.Mul,
	TokenSlash:  ir.Div,
	TokenAndAnd: ir.And,
	TokenOrOr:   ir.Or,
	TokenEq:     ir.Eq,
	TokenNe:     ir.Ne,
	TokenLt:     ir.Lt,
	TokenLe:     ir.Le,
	TokenGt:     ir.Gt,
	TokenGe:     ir.Ge,
}
