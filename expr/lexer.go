package expr

import (
	"fmt"
	"strconv"
	"strings"
)

// TokenType represents the type of a lexer token.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenIdent
	TokenNumber
	TokenString
	TokenTrue
	TokenFalse
	TokenNull
	TokenPlus     // +
	TokenMinus    // -
	TokenStar     // *
	TokenSlash    // /
	TokenLParen   // (
	TokenRParen   // )
	TokenBang     // !
	TokenEq       // ==
	TokenNeq      // !=
	TokenLt       // <
	TokenLte      // <=
	TokenGt       // >
	TokenGte      // >=
	TokenAnd      // &&
	TokenOr       // ||
	TokenQuestion // ?
	TokenColon    // :
	TokenCoalesce // ??
)

// Token is a single lexed token. Literal carries the identifier or string
// text; Number carries the parsed value for TokenNumber.
type Token struct {
	Type    TokenType
	Literal string
	Number  float64
	Pos     int
}

// lexer tokenizes expression input one byte at a time.
type lexer struct {
	input   string
	pos     int
	readPos int
	ch      byte
}

func newLexer(input string) *lexer {
	l := &lexer{input: input}
	l.readChar()
	return l
}

func (l *lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++
}

func (l *lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

func (l *lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

// next returns the next token, or an *Error wrapping ErrSyntax on an
// unexpected byte or unterminated string.
func (l *lexer) next() (Token, error) {
	l.skipWhitespace()

	tok := Token{Pos: l.pos}
	switch l.ch {
	case 0:
		tok.Type = TokenEOF
		return tok, nil
	case '+':
		tok.Type = TokenPlus
	case '-':
		tok.Type = TokenMinus
	case '*':
		tok.Type = TokenStar
	case '/':
		tok.Type = TokenSlash
	case '(':
		tok.Type = TokenLParen
	case ')':
		tok.Type = TokenRParen
	case ':':
		tok.Type = TokenColon
	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			tok.Type = TokenNeq
		} else {
			tok.Type = TokenBang
		}
	case '=':
		if l.peekChar() != '=' {
			return tok, syntaxErrorf(tok.Pos, "unexpected '='")
		}
		l.readChar()
		tok.Type = TokenEq
	case '<':
		if l.peekChar() == '=' {
			l.readChar()
			tok.Type = TokenLte
		} else {
			tok.Type = TokenLt
		}
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			tok.Type = TokenGte
		} else {
			tok.Type = TokenGt
		}
	case '&':
		if l.peekChar() != '&' {
			return tok, syntaxErrorf(tok.Pos, "unexpected '&'")
		}
		l.readChar()
		tok.Type = TokenAnd
	case '|':
		if l.peekChar() != '|' {
			return tok, syntaxErrorf(tok.Pos, "unexpected '|'")
		}
		l.readChar()
		tok.Type = TokenOr
	case '?':
		if l.peekChar() == '?' {
			l.readChar()
			tok.Type = TokenCoalesce
		} else {
			tok.Type = TokenQuestion
		}
	case '"', '\'':
		return l.readString(l.ch)
	default:
		if isIdentStart(l.ch) {
			return l.readIdent(), nil
		}
		if isDigit(l.ch) || (l.ch == '.' && isDigit(l.peekChar())) {
			return l.readNumber()
		}
		return tok, syntaxErrorf(tok.Pos, "unexpected character %q", string(l.ch))
	}

	l.readChar()
	return tok, nil
}

// readString consumes a quoted string literal, handling the escape
// sequences \n \t \r \\ \" \'.
func (l *lexer) readString(quote byte) (Token, error) {
	start := l.pos
	var b strings.Builder
	l.readChar() // opening quote
	for {
		switch l.ch {
		case 0:
			return Token{Pos: start}, syntaxErrorf(start, "unterminated string")
		case quote:
			l.readChar()
			return Token{Type: TokenString, Literal: b.String(), Pos: start}, nil
		case '\\':
			l.readChar()
			switch l.ch {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case 0:
				return Token{Pos: start}, syntaxErrorf(start, "unterminated string")
			default:
				b.WriteByte(l.ch)
			}
			l.readChar()
		default:
			b.WriteByte(l.ch)
			l.readChar()
		}
	}
}

// readIdent consumes an identifier or keyword. Identifiers may contain
// dots and hyphens after the first character so state keys like
// "sensor.temp" resolve as one symbol.
func (l *lexer) readIdent() Token {
	start := l.pos
	for isIdentStart(l.ch) || isDigit(l.ch) || l.ch == '.' || l.ch == '-' {
		l.readChar()
	}
	lit := l.input[start:l.pos]
	tok := Token{Literal: lit, Pos: start}
	switch strings.ToLower(lit) {
	case "true":
		tok.Type = TokenTrue
	case "false":
		tok.Type = TokenFalse
	case "null":
		tok.Type = TokenNull
	default:
		tok.Type = TokenIdent
	}
	return tok
}

func (l *lexer) readNumber() (Token, error) {
	start := l.pos
	sawDot := false
	for isDigit(l.ch) || (l.ch == '.' && !sawDot) {
		if l.ch == '.' {
			sawDot = true
		}
		l.readChar()
	}
	lit := l.input[start:l.pos]
	n, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return Token{Pos: start}, syntaxErrorf(start, "invalid number %q", lit)
	}
	return Token{Type: TokenNumber, Number: n, Pos: start}, nil
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func syntaxErrorf(pos int, format string, args ...any) error {
	return &Error{Pos: pos, Msg: fmt.Sprintf(format, args...), Err: ErrSyntax}
}
