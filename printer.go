// printer.go: term re-serialization
//
// FormatTerm renders a term back into source syntax. For well-formed
// source, reading and printing round-trips structure: Read(FormatTerm(t))
// yields a tree equal to t up to source positions. Value kinds that have
// no reader syntax (lambdas, macros, internals, errors) print as angle
// tagged forms for diagnostics and the REPL.
package sdflang

import (
	"strings"
)

// prefixSugar maps quote-family head identifiers back to their reader
// prefixes.
var prefixSugar = map[string]string{
	"quote":            "'",
	"quasi-quote":      "`",
	"unquote":          ",",
	"unquote-splicing": ",@",
}

// FormatTerm renders t as source text.
func FormatTerm(t Term) string {
	var b strings.Builder
	writeTerm(&b, t)
	return b.String()
}

func writeTerm(b *strings.Builder, t Term) {
	switch t.Kind {
	case TKNull:
		b.WriteString("()")
	case TKList:
		items := t.List()
		if len(items) == 2 && items[0].Kind == TKIdentifier {
			if sugar, ok := prefixSugar[items[0].Text()]; ok {
				b.WriteString(sugar)
				writeTerm(b, items[1])
				return
			}
		}
		b.WriteByte('(')
		for i, c := range items {
			if i > 0 {
				b.WriteByte(' ')
			}
			writeTerm(b, c)
		}
		b.WriteByte(')')
	case TKIdentifier, TKPlaceholder:
		b.WriteString(t.Text())
	case TKNumber:
		b.WriteString(formatNumber(t.Num()))
	case TKVector:
		v := t.Vec()
		b.WriteString("#<")
		b.WriteString(formatNumber(v.X))
		b.WriteByte(' ')
		b.WriteString(formatNumber(v.Y))
		b.WriteByte(' ')
		b.WriteString(formatNumber(v.Z))
		b.WriteByte('>')
	case TKShape:
		s := t.Shape()
		b.WriteString("(shape ")
		b.WriteString(s.Kind)
		for _, a := range s.Args {
			b.WriteByte(' ')
			writeTerm(b, a)
		}
		b.WriteByte(')')
	case TKLambda:
		b.WriteString("<lambda>")
	case TKMacro:
		b.WriteString("<macro>")
	case TKInternal:
		b.WriteString("<builtin:")
		b.WriteString(t.Data.(*Internal).Name)
		b.WriteByte('>')
	case TKError:
		b.WriteString("<error: ")
		b.WriteString(t.Text())
		b.WriteByte('>')
	}
}
