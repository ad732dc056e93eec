// parser.go: token stream to term tree
//
// The parser is a single left-to-right pass over the token stream with
// two pieces of state: a stack of open lists and a stack of pending
// quote prefixes. An atom token becomes a leaf term immediately; "("
// pushes a fresh frame, ")" pops it into a list (or Null when empty) and
// hands it to whichever frame is now open. A quote prefix is recorded
// with the list depth it was seen at and wraps the next term completed
// at that depth, so "'(a b)" and "''x" both come out right without any
// lookahead.
package sdflang

import (
	"github.com/emirpasic/gods/stacks/arraystack"
)

// listFrame is one open "(" awaiting its ")".
type listFrame struct {
	off   int
	items []Term
}

// pendingPrefix is a quote-family token awaiting the next completed term
// at its depth.
type pendingPrefix struct {
	name  string
	off   int
	depth int
}

// Parser turns a token stream into top-level terms.
type Parser struct {
	open     *arraystack.Stack // of *listFrame
	prefixes []pendingPrefix
	out      []Term
}

// NewParser creates an empty parser.
func NewParser() *Parser {
	return &Parser{open: arraystack.New()}
}

func prefixName(tt TokenType) string {
	switch tt {
	case QUOTE:
		return "quote"
	case QUASIQUOTE:
		return "quasi-quote"
	case UNQUOTE:
		return "unquote"
	default:
		return "unquote-splicing"
	}
}

// emit finishes a term: applies any quote prefixes recorded at the
// current depth (innermost first), then appends to the open frame or the
// top-level results.
func (p *Parser) emit(t Term) {
	depth := p.open.Size()
	for len(p.prefixes) > 0 {
		pre := p.prefixes[len(p.prefixes)-1]
		if pre.depth != depth {
			break
		}
		p.prefixes = p.prefixes[:len(p.prefixes)-1]
		end := t.Off + t.Len
		t = ListTerm([]Term{Ident(pre.name, pre.off, 1), t}, pre.off, end-pre.off)
	}
	if top, ok := p.open.Peek(); ok {
		frame := top.(*listFrame)
		frame.items = append(frame.items, t)
		return
	}
	p.out = append(p.out, t)
}

// Parse consumes the whole token stream, returning the top-level terms
// or a positioned error.
func (p *Parser) Parse(tokens []Token) ([]Term, error) {
	for _, tok := range tokens {
		switch tok.Type {
		case LPAREN:
			p.open.Push(&listFrame{off: tok.Off})
		case RPAREN:
			if n := len(p.prefixes); n > 0 && p.prefixes[n-1].depth == p.open.Size() {
				pre := p.prefixes[n-1]
				return nil, NewError(pre.off, 1, "%s prefix must be followed by an expression", pre.name)
			}
			top, ok := p.open.Pop()
			if !ok {
				return nil, NewError(tok.Off, tok.Len, "unexpected ')'")
			}
			frame := top.(*listFrame)
			end := tok.Off + tok.Len
			if len(frame.items) == 0 {
				p.emit(NullTerm(frame.off, end-frame.off))
			} else {
				p.emit(ListTerm(frame.items, frame.off, end-frame.off))
			}
		case QUOTE, QUASIQUOTE, UNQUOTE, SPLICE:
			p.prefixes = append(p.prefixes, pendingPrefix{
				name:  prefixName(tok.Type),
				off:   tok.Off,
				depth: p.open.Size(),
			})
		case NUMBER:
			p.emit(NumberTerm(tok.Num, tok.Off, tok.Len))
		case IDENT:
			p.emit(Ident(tok.Text, tok.Off, tok.Len))
		case PLACEHOLDER:
			p.emit(PlaceholderTerm(tok.Text, tok.Off, tok.Len))
		}
	}
	if top, ok := p.open.Peek(); ok {
		frame := top.(*listFrame)
		return nil, NewError(frame.off, 1, "unterminated list")
	}
	if len(p.prefixes) > 0 {
		pre := p.prefixes[len(p.prefixes)-1]
		return nil, NewError(pre.off, 1, "%s prefix must be followed by an expression", pre.name)
	}
	return p.out, nil
}

// Read tokenizes and parses src into its top-level terms.
func Read(src string) ([]Term, error) {
	tokens, err := Tokenize(src)
	if err != nil {
		return nil, err
	}
	return NewParser().Parse(tokens)
}
