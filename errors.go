// errors.go: positioned diagnostics and caret-snippet rendering
//
// Every diagnostic in this package carries a byte (offset, length) range
// into the source buffer it was produced from. The reader and the
// evaluator surface diagnostics as in-tree error terms; the generator
// panics with *Error and is recovered once per top-level expression.
// RenderSnippet turns a positioned message into a multi-line caret
// snippet:
//
//	error at 2:14: expected number, found vector
//
//	   2 | (sphere #<1 2 3> #<4 5 6>)
//	     |              ^
//
// Offsets are converted to 1-based line:column against the buffer; out of
// range positions are clamped so rendering never fails.
package sdflang

import (
	"fmt"
	"strings"
)

// Error is a positioned diagnostic. Off/Len index the source buffer the
// producing pass was run on.
type Error struct {
	Msg string
	Off int
	Len int
}

func (e *Error) Error() string { return e.Msg }

// NewError builds a diagnostic for the given source range.
func NewError(off, length int, format string, args ...interface{}) *Error {
	return &Error{Msg: fmt.Sprintf(format, args...), Off: off, Len: length}
}

// AsError converts an error term back into an *Error.
func AsError(t Term) *Error {
	return &Error{Msg: t.Text(), Off: t.Off, Len: t.Len}
}

// lineCol converts a byte offset into 1-based line and column numbers.
func lineCol(src string, off int) (line, col int) {
	if off < 0 {
		off = 0
	}
	if off > len(src) {
		off = len(src)
	}
	line, col = 1, 1
	for i := 0; i < off; i++ {
		if src[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}

// RenderSnippet formats a positioned error against its source buffer as a
// caret-annotated snippet with one line of context on each side.
func RenderSnippet(src string, e *Error) string {
	line, col := lineCol(src, e.Off)
	lines := strings.Split(src, "\n")
	if len(lines) == 0 {
		lines = []string{""}
	}
	if line > len(lines) {
		line = len(lines)
	}

	width := e.Len
	if width < 1 {
		width = 1
	}
	if col-1+width > len(lines[line-1]) {
		width = len(lines[line-1]) - (col - 1)
		if width < 1 {
			width = 1
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "error at %d:%d: %s\n\n", line, col, e.Msg)
	if line > 1 {
		fmt.Fprintf(&b, "%4d | %s\n", line-1, lines[line-2])
	}
	fmt.Fprintf(&b, "%4d | %s\n", line, lines[line-1])
	fmt.Fprintf(&b, "     | %s%s\n", strings.Repeat(" ", col-1), strings.Repeat("^", width))
	if line < len(lines) {
		fmt.Fprintf(&b, "%4d | %s\n", line+1, lines[line])
	}
	return b.String()
}

// fail panics with a positioned *Error. The code generator uses this for
// internal unwinding; CompileSource recovers at the top-level boundary.
func fail(off, length int, format string, args ...interface{}) {
	panic(NewError(off, length, format, args...))
}

// failAt positions a generator failure at an existing term.
func failAt(t Term, format string, args ...interface{}) {
	fail(t.Off, t.Len, format, args...)
}
