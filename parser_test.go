// parser_test.go
package sdflang

import (
	"testing"
)

func read1(t *testing.T, src string) Term {
	t.Helper()
	terms, err := Read(src)
	if err != nil {
		t.Fatalf("Read(%q) error: %v", src, err)
	}
	if len(terms) != 1 {
		t.Fatalf("Read(%q): want 1 term, got %d", src, len(terms))
	}
	return terms[0]
}

func wantFormat(t *testing.T, src, want string) Term {
	t.Helper()
	term := read1(t, src)
	if got := FormatTerm(term); got != want {
		t.Fatalf("Read(%q): want %q, got %q", src, want, got)
	}
	return term
}

func Test_Parser_Atoms(t *testing.T) {
	if term := read1(t, "42"); term.Kind != TKNumber || term.Num() != 42 {
		t.Fatalf("got %v", term)
	}
	if term := read1(t, "union"); term.Kind != TKIdentifier || term.Text() != "union" {
		t.Fatalf("got %v", term)
	}
	if term := read1(t, ":size"); term.Kind != TKPlaceholder || term.Text() != ":size" {
		t.Fatalf("got %v", term)
	}
}

func Test_Parser_EmptyListIsNull(t *testing.T) {
	term := read1(t, "()")
	if term.Kind != TKNull {
		t.Fatalf("want null, got %v", term.Kind)
	}
	if term.Off != 0 || term.Len != 2 {
		t.Fatalf("null position: (%d,%d)", term.Off, term.Len)
	}
}

func Test_Parser_Nesting(t *testing.T) {
	wantFormat(t, "(a (b (c)) d)", "(a (b (c)) d)")
}

func Test_Parser_QuoteSugar(t *testing.T) {
	term := wantFormat(t, "'x", "'x")
	items := term.List()
	if len(items) != 2 || items[0].Text() != "quote" {
		t.Fatalf("quote wrapping: %v", FormatTerm(term))
	}
}

func Test_Parser_QuasiUnquoteSplice(t *testing.T) {
	wantFormat(t, "`(a ,b ,@c)", "`(a ,b ,@c)")
}

func Test_Parser_StackedPrefixes(t *testing.T) {
	term := wantFormat(t, "''x", "''x")
	inner := term.List()[1]
	if inner.Kind != TKList || inner.List()[0].Text() != "quote" {
		t.Fatalf("inner: %v", FormatTerm(inner))
	}
}

func Test_Parser_PrefixOnList(t *testing.T) {
	term := wantFormat(t, "'(a b)", "'(a b)")
	if term.List()[1].Kind != TKList {
		t.Fatalf("quoted list: %v", FormatTerm(term))
	}
}

func Test_Parser_VectorLiteral(t *testing.T) {
	wantFormat(t, "#<1 2 3>", "(vec 1 2 3)")
}

func Test_Parser_MultipleTopLevel(t *testing.T) {
	terms, err := Read("(a) (b) 3")
	if err != nil {
		t.Fatal(err)
	}
	if len(terms) != 3 {
		t.Fatalf("want 3 terms, got %d", len(terms))
	}
}

func Test_Parser_StrayClose(t *testing.T) {
	_, err := Read("(a))")
	if err == nil {
		t.Fatal("expected error")
	}
	if e, ok := err.(*Error); !ok || e.Off != 3 {
		t.Fatalf("error position: %v", err)
	}
}

func Test_Parser_Unterminated(t *testing.T) {
	if _, err := Read("(a (b)"); err == nil {
		t.Fatal("expected error")
	}
}

func Test_Parser_DanglingPrefix(t *testing.T) {
	if _, err := Read("(a ')"); err == nil {
		t.Fatal("expected error for prefix before ')'")
	}
	if _, err := Read("'"); err == nil {
		t.Fatal("expected error for trailing prefix")
	}
}

func Test_Parser_Positions(t *testing.T) {
	term := read1(t, " (a b) ")
	if term.Off != 1 || term.Len != 5 {
		t.Fatalf("list position: (%d,%d)", term.Off, term.Len)
	}
	b := term.List()[1]
	if b.Off != 4 || b.Len != 1 {
		t.Fatalf("atom position: (%d,%d)", b.Off, b.Len)
	}
}
