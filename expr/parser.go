package expr

// parser builds an AST with one token of lookahead. Precedence, lowest
// first: ternary, coalesce, ||, &&, equality, comparison, additive,
// multiplicative, unary.
type parser struct {
	lex *lexer
	cur Token
}

// Compiled is a parsed expression ready for repeated evaluation.
type Compiled struct {
	src  string
	root node
}

// Source returns the original expression text.
func (c *Compiled) Source() string { return c.src }

// Compile parses an expression without evaluating it.
func Compile(src string) (*Compiled, error) {
	p := &parser{lex: newLexer(src)}
	if err := p.advance(); err != nil {
		return nil, err
	}
	root, err := p.parseTernary()
	if err != nil {
		return nil, err
	}
	if p.cur.Type != TokenEOF {
		return nil, syntaxErrorf(p.cur.Pos, "unexpected trailing input")
	}
	return &Compiled{src: src, root: root}, nil
}

func (p *parser) advance() error {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	p.cur = tok
	return nil
}

func (p *parser) expect(t TokenType, what string) error {
	if p.cur.Type != t {
		return syntaxErrorf(p.cur.Pos, "expected %s", what)
	}
	return p.advance()
}

func (p *parser) parseTernary() (node, error) {
	cond, err := p.parseCoalesce()
	if err != nil {
		return nil, err
	}
	if p.cur.Type != TokenQuestion {
		return cond, nil
	}
	at := p.cur.Pos
	if err := p.advance(); err != nil {
		return nil, err
	}
	then, err := p.parseTernary()
	if err != nil {
		return nil, err
	}
	if err := p.expect(TokenColon, "':' in ternary"); err != nil {
		return nil, err
	}
	els, err := p.parseTernary()
	if err != nil {
		return nil, err
	}
	return &conditional{cond: cond, then: then, els: els, at: at}, nil
}

func (p *parser) parseCoalesce() (node, error) {
	return p.parseBinary(p.parseOr, TokenCoalesce)
}

func (p *parser) parseOr() (node, error) {
	return p.parseBinary(p.parseAnd, TokenOr)
}

func (p *parser) parseAnd() (node, error) {
	return p.parseBinary(p.parseEquality, TokenAnd)
}

func (p *parser) parseEquality() (node, error) {
	return p.parseBinary(p.parseComparison, TokenEq, TokenNeq)
}

func (p *parser) parseComparison() (node, error) {
	return p.parseBinary(p.parseTerm, TokenLt, TokenLte, TokenGt, TokenGte)
}

func (p *parser) parseTerm() (node, error) {
	return p.parseBinary(p.parseFactor, TokenPlus, TokenMinus)
}

func (p *parser) parseFactor() (node, error) {
	return p.parseBinary(p.parseUnary, TokenStar, TokenSlash)
}

// parseBinary parses a left-associative chain of the given operators.
func (p *parser) parseBinary(next func() (node, error), ops ...TokenType) (node, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}
	for matches(p.cur.Type, ops) {
		op := p.cur.Type
		at := p.cur.Pos
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := next()
		if err != nil {
			return nil, err
		}
		left = &binaryOp{op: op, left: left, right: right, at: at}
	}
	return left, nil
}

func (p *parser) parseUnary() (node, error) {
	switch p.cur.Type {
	case TokenBang, TokenMinus:
		op := p.cur.Type
		at := p.cur.Pos
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &unaryOp{op: op, operand: operand, at: at}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (node, error) {
	tok := p.cur
	switch tok.Type {
	case TokenNumber:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &numberLit{value: tok.Number, at: tok.Pos}, nil
	case TokenString:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &stringLit{value: tok.Literal, at: tok.Pos}, nil
	case TokenTrue, TokenFalse:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &boolLit{value: tok.Type == TokenTrue, at: tok.Pos}, nil
	case TokenNull:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &nullLit{at: tok.Pos}, nil
	case TokenIdent:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &identifier{name: tok.Literal, at: tok.Pos}, nil
	case TokenLParen:
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.parseTernary()
		if err != nil {
			return nil, err
		}
		if err := p.expect(TokenRParen, "closing ')'"); err != nil {
			return nil, err
		}
		return inner, nil
	case TokenEOF:
		return nil, syntaxErrorf(tok.Pos, "unexpected end of expression")
	default:
		return nil, syntaxErrorf(tok.Pos, "unexpected token")
	}
}

func matches(t TokenType, ops []TokenType) bool {
	for _, op := range ops {
		if t == op {
			return true
		}
	}
	return false
}
