package expr

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/paf-go/paf/nparray"
)

// Parse parses s against ctx's bound variables and returns the resulting
// expression tree. A malformed expression returns ErrSyntax (or, for a
// variable name ctx never bound, ErrUnknownVariable). Operand type errors
// (mismatched binary operands, a truncation that does not narrow, an AES
// lookup on a non-u8 operand) are returned as the node constructors report
// them, not wrapped in ErrSyntax. Callers that want a diagnostic should
// wrap the returned error with the offending text.
func Parse[T nparray.Numeric](ctx *Context[T], s string) (Expr, error) {
	p := &parser[T]{ctx: ctx, s: s}
	p.skipWS()
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	p.skipWS()
	if !p.end() {
		return nil, fmt.Errorf("%w: trailing input %q", ErrSyntax, p.s[p.pos:])
	}
	return e, nil
}

type parser[T nparray.Numeric] struct {
	ctx *Context[T]
	s   string
	pos int
}

func (p *parser[T]) end() bool      { return p.pos >= len(p.s) }
func (p *parser[T]) peek() byte     { return p.s[p.pos] }
func (p *parser[T]) advance() byte  { c := p.s[p.pos]; p.pos++; return c }

func (p *parser[T]) skipWS() {
	for !p.end() && (p.peek() == ' ' || p.peek() == '\t' || p.peek() == '\n' || p.peek() == '\r') {
		p.pos++
	}
}

func (p *parser[T]) expect(c byte) error {
	if p.end() || p.peek() != c {
		return fmt.Errorf("%w: expected %q at %q", ErrSyntax, c, p.remainder())
	}
	p.pos++
	return nil
}

func (p *parser[T]) remainder() string {
	if p.pos >= len(p.s) {
		return ""
	}
	return p.s[p.pos:]
}

// parseExpr dispatches on the next character per the grammar's expr rule.
func (p *parser[T]) parseExpr() (Expr, error) {
	p.skipWS()
	if p.end() {
		return nil, fmt.Errorf("%w: unexpected end of input", ErrSyntax)
	}
	c := p.peek()
	switch {
	case c >= '0' && c <= '9':
		return p.parseLiteral()
	case c == '(':
		p.pos++
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		p.skipWS()
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		return e, nil
	case c == '$':
		return p.parseVariable()
	default:
		return p.parseOperator()
	}
}

func (p *parser[T]) parseIdent() (string, error) {
	start := p.pos
	for !p.end() && isIdentChar(p.peek()) {
		p.pos++
	}
	if p.pos == start {
		return "", fmt.Errorf("%w: expected identifier at %q", ErrSyntax, p.remainder())
	}
	return p.s[start:p.pos], nil
}

func isIdentChar(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func (p *parser[T]) parseUint() (uint64, error) {
	start := p.pos
	for !p.end() && p.peek() >= '0' && p.peek() <= '9' {
		p.pos++
	}
	if p.pos == start {
		return 0, fmt.Errorf("%w: expected digits at %q", ErrSyntax, p.remainder())
	}
	v, err := strconv.ParseUint(p.s[start:p.pos], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrSyntax, err)
	}
	return v, nil
}

// literal := digit+ '_' typespec
func (p *parser[T]) parseLiteral() (Expr, error) {
	val, err := p.parseUint()
	if err != nil {
		return nil, err
	}
	if err := p.expect('_'); err != nil {
		return nil, err
	}
	ty, err := p.parseTypeSpecifier()
	if err != nil {
		return nil, err
	}
	return NewConstant(val, ty), nil
}

func (p *parser[T]) parseTypeSpecifier() (ValueType, error) {
	if err := p.expect('u'); err != nil {
		return Undef, err
	}
	n, err := p.parseUint()
	if err != nil {
		return Undef, err
	}
	switch n {
	case 8:
		return U8, nil
	case 16:
		return U16, nil
	case 32:
		return U32, nil
	case 64:
		return U64, nil
	default:
		return Undef, fmt.Errorf("%w: unknown type specifier u%d", ErrSyntax, n)
	}
}

// variable := '$' ident '[' digit+ ']'
func (p *parser[T]) parseVariable() (Expr, error) {
	if err := p.expect('$'); err != nil {
		return nil, err
	}
	name, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	if err := p.expect('['); err != nil {
		return nil, err
	}
	idx, err := p.parseUint()
	if err != nil {
		return nil, err
	}
	if err := p.expect(']'); err != nil {
		return nil, err
	}
	return p.ctx.variable(name, int(idx))
}

// operator := opname '(' arglist ')'
func (p *parser[T]) parseOperator() (Expr, error) {
	ident, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	op := strings.ToLower(ident)
	p.skipWS()
	if err := p.expect('('); err != nil {
		return nil, err
	}
	args, err := p.parseArgList()
	if err != nil {
		return nil, err
	}
	if err := p.expect(')'); err != nil {
		return nil, err
	}
	return buildOp(op, args)
}

// arglist := expr (',' expr)*
func (p *parser[T]) parseArgList() ([]Expr, error) {
	var args []Expr
	p.skipWS()
	for {
		p.skipWS()
		if !p.end() && p.peek() == ')' {
			break
		}
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, e)
		p.skipWS()
		if !p.end() && p.peek() == ',' {
			p.pos++
			continue
		}
		break
	}
	return args, nil
}

func buildOp(name string, args []Expr) (Expr, error) {
	arity := func(n int) error {
		if len(args) != n {
			return fmt.Errorf("%w: %s expects %d argument(s), got %d", ErrSyntax, name, n, len(args))
		}
		return nil
	}
	switch name {
	case "not":
		if err := arity(1); err != nil {
			return nil, err
		}
		return NewNot(args[0]), nil
	case "trunc8":
		if err := arity(1); err != nil {
			return nil, err
		}
		return NewTruncate(U8, args[0])
	case "trunc16":
		if err := arity(1); err != nil {
			return nil, err
		}
		return NewTruncate(U16, args[0])
	case "trunc32":
		if err := arity(1); err != nil {
			return nil, err
		}
		return NewTruncate(U32, args[0])
	case "aes_sbox":
		if err := arity(1); err != nil {
			return nil, err
		}
		return NewAESSBox(args[0])
	case "aes_isbox":
		if err := arity(1); err != nil {
			return nil, err
		}
		return NewAESISBox(args[0])
	case "and":
		if err := arity(2); err != nil {
			return nil, err
		}
		return NewAnd(args[0], args[1])
	case "or":
		if err := arity(2); err != nil {
			return nil, err
		}
		return NewOr(args[0], args[1])
	case "xor":
		if err := arity(2); err != nil {
			return nil, err
		}
		return NewXor(args[0], args[1])
	case "lsl":
		if err := arity(2); err != nil {
			return nil, err
		}
		return NewLsl(args[0], args[1])
	case "lsr":
		if err := arity(2); err != nil {
			return nil, err
		}
		return NewLsr(args[0], args[1])
	case "asr":
		if err := arity(2); err != nil {
			return nil, err
		}
		return NewAsr(args[0], args[1])
	default:
		return nil, fmt.Errorf("%w: unknown operator %q", ErrSyntax, name)
	}
}
