// lexer.go: character-driven tokenizer
//
// The tokenizer is a hand-written state machine over the raw byte slice.
// It produces a flat token stream for the parser; every token carries the
// byte (offset, length) of its source text.
//
// Beyond the usual s-expression inventory of parens, quote prefixes, line
// comments, signed numbers and identifiers, two forms are special:
//
//   - placeholders ":name" lex as a single PLACEHOLDER token (the uniform
//     slots the code generator binds at shader time);
//   - vector literals "#<a b c>" are handled by re-tokenizing their
//     contents and splicing the result into the stream wrapped as
//     "( vec … )", so the parser never sees the literal syntax at all.
//
// Numbers take an optional sign, digits and an optional fraction; there
// is no exponent form. A sign not followed by a digit lexes as an
// identifier, so "-" and "+-*" remain ordinary operator names.
package sdflang

import (
	"strconv"
)

// TokenType represents the kind of token.
type TokenType int

const (
	LPAREN      TokenType = iota // "("
	RPAREN                       // ")"
	QUOTE                        // "'"
	QUASIQUOTE                   // "`"
	UNQUOTE                      // ","
	SPLICE                       // ",@"
	NUMBER                       // signed decimal, no exponent
	IDENT                        // identifier / operator name
	PLACEHOLDER                  // ":name"
)

func (tt TokenType) String() string {
	switch tt {
	case LPAREN:
		return "'('"
	case RPAREN:
		return "')'"
	case QUOTE:
		return "quote"
	case QUASIQUOTE:
		return "quasi-quote"
	case UNQUOTE:
		return "unquote"
	case SPLICE:
		return "unquote-splicing"
	case NUMBER:
		return "number"
	case IDENT:
		return "identifier"
	case PLACEHOLDER:
		return "placeholder"
	default:
		return "unknown"
	}
}

// Token is a lexical token. Num is populated for NUMBER tokens.
type Token struct {
	Type TokenType
	Text string
	Num  float64
	Off  int
	Len  int
}

// Lexer scans a source string into tokens.
type Lexer struct {
	src    string
	cur    int
	base   int // offset of src within the enclosing buffer
	tokens []Token
}

// NewLexer creates a lexer over src.
func NewLexer(src string) *Lexer {
	return &Lexer{src: src}
}

func (l *Lexer) isAtEnd() bool { return l.cur >= len(l.src) }

func (l *Lexer) peek() (byte, bool) {
	if l.isAtEnd() {
		return 0, false
	}
	return l.src[l.cur], true
}

func (l *Lexer) peekN(n int) (byte, bool) {
	idx := l.cur + n
	if idx >= len(l.src) {
		return 0, false
	}
	return l.src[idx], true
}

func (l *Lexer) advance() (byte, bool) {
	if l.isAtEnd() {
		return 0, false
	}
	ch := l.src[l.cur]
	l.cur++
	return ch, true
}

func (l *Lexer) addToken(tt TokenType, start int) Token {
	tok := Token{
		Type: tt,
		Text: l.src[start:l.cur],
		Off:  l.base + start,
		Len:  l.cur - start,
	}
	l.tokens = append(l.tokens, tok)
	return tok
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// isIdentByte covers the operator-flavored identifier alphabet. '!'
// carries set!, '.' carries the dot-prefixed comparison aliases.
func isIdentByte(b byte) bool {
	return (b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9') ||
		b == '_' || b == '+' || b == '-' || b == '*' || b == '/' ||
		b == '<' || b == '>' || b == '=' || b == '!' || b == '.'
}

func (l *Lexer) skipBlanks() {
	for !l.isAtEnd() {
		ch, _ := l.peek()
		switch {
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n':
			l.advance()
		case ch == ';':
			for !l.isAtEnd() {
				if c, _ := l.peek(); c == '\n' {
					break
				}
				l.advance()
			}
		default:
			return
		}
	}
}

// Tokenize scans the whole source, returning the token stream or a
// positioned error.
func (l *Lexer) Tokenize() ([]Token, error) {
	for {
		l.skipBlanks()
		if l.isAtEnd() {
			return l.tokens, nil
		}
		start := l.cur
		ch, _ := l.advance()
		switch {
		case ch == '(':
			l.addToken(LPAREN, start)
		case ch == ')':
			l.addToken(RPAREN, start)
		case ch == '\'':
			l.addToken(QUOTE, start)
		case ch == '`':
			l.addToken(QUASIQUOTE, start)
		case ch == ',':
			if c, ok := l.peek(); ok && c == '@' {
				l.advance()
				l.addToken(SPLICE, start)
			} else {
				l.addToken(UNQUOTE, start)
			}
		case ch == ':':
			if err := l.scanPlaceholder(start); err != nil {
				return nil, err
			}
		case ch == '#':
			if err := l.scanVectorLiteral(start); err != nil {
				return nil, err
			}
		case isDigit(ch):
			if err := l.scanNumber(start); err != nil {
				return nil, err
			}
		case ch == '+' || ch == '-':
			// A sign immediately followed by a digit starts a number;
			// anything else is an operator identifier.
			if c, ok := l.peek(); ok && isDigit(c) {
				if err := l.scanNumber(start); err != nil {
					return nil, err
				}
			} else {
				l.scanIdent(start)
			}
		case isIdentByte(ch):
			l.scanIdent(start)
		default:
			return nil, NewError(l.base+start, 1, "unexpected character %q", ch)
		}
	}
}

func (l *Lexer) scanIdent(start int) {
	for !l.isAtEnd() {
		ch, _ := l.peek()
		if !isIdentByte(ch) {
			break
		}
		l.advance()
	}
	l.addToken(IDENT, start)
}

func (l *Lexer) scanPlaceholder(start int) error {
	for !l.isAtEnd() {
		ch, _ := l.peek()
		if !isIdentByte(ch) {
			break
		}
		l.advance()
	}
	if l.cur-start < 2 {
		return NewError(l.base+start, l.cur-start, "':' must be followed by a placeholder name")
	}
	l.addToken(PLACEHOLDER, start)
	return nil
}

func (l *Lexer) scanNumber(start int) error {
	for !l.isAtEnd() {
		ch, _ := l.peek()
		if !isDigit(ch) {
			break
		}
		l.advance()
	}
	if ch, ok := l.peek(); ok && ch == '.' {
		if c, ok := l.peekN(1); ok && isDigit(c) {
			l.advance()
			for !l.isAtEnd() {
				ch, _ := l.peek()
				if !isDigit(ch) {
					break
				}
				l.advance()
			}
		}
	}
	text := l.src[start:l.cur]
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return NewError(l.base+start, l.cur-start, "malformed number %q", text)
	}
	l.tokens = append(l.tokens, Token{
		Type: NUMBER,
		Text: text,
		Num:  v,
		Off:  l.base + start,
		Len:  l.cur - start,
	})
	return nil
}

// scanVectorLiteral handles "#<a b c>". The raw contents up to the
// matching '>' are tokenized by a nested lexer (offsets shifted so
// diagnostics still point into the outer buffer) and spliced into the
// stream as "( vec … )".
func (l *Lexer) scanVectorLiteral(start int) error {
	if ch, ok := l.peek(); !ok || ch != '<' {
		return NewError(l.base+start, 1, "'#' must begin a vector literal '#<...>'")
	}
	l.advance()
	body := l.cur
	depth := 0 // paren nesting; '>' only closes at depth 0
	nested := 0
	for {
		ch, ok := l.peek()
		if !ok {
			return NewError(l.base+start, l.cur-start, "unterminated vector literal")
		}
		if ch == '(' {
			depth++
		} else if ch == ')' {
			depth--
		} else if ch == '#' {
			if c, ok := l.peekN(1); ok && c == '<' {
				nested++
			}
		} else if ch == '>' && depth == 0 {
			if nested > 0 {
				nested--
			} else {
				break
			}
		}
		l.advance()
	}
	end := l.cur
	l.advance() // consume '>'

	inner := NewLexer(l.src[body:end])
	inner.base = l.base + body
	toks, err := inner.Tokenize()
	if err != nil {
		return err
	}

	l.tokens = append(l.tokens,
		Token{Type: LPAREN, Text: "(", Off: l.base + start, Len: 1},
		Token{Type: IDENT, Text: "vec", Off: l.base + start, Len: 2})
	l.tokens = append(l.tokens, toks...)
	l.tokens = append(l.tokens,
		Token{Type: RPAREN, Text: ")", Off: l.base + end, Len: 1})
	return nil
}

// Tokenize is the package-level convenience over NewLexer.
func Tokenize(src string) ([]Token, error) {
	return NewLexer(src).Tokenize()
}
