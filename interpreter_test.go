// interpreter_test.go
package sdflang

import (
	"reflect"
	"strings"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func newIp(t *testing.T) *Interpreter {
	t.Helper()
	ip, err := NewInterpreter()
	if err != nil {
		t.Fatalf("NewInterpreter: %v", err)
	}
	return ip
}

func Test_Interp_CompileSingleExpression(t *testing.T) {
	ip := newIp(t)
	results := ip.CompileSource("(sphere #<1 2 3> 4)")
	if len(results) != 1 {
		t.Fatalf("want 1 result, got %d", len(results))
	}
	c := results[0]
	if len(c.Errors) != 0 {
		t.Fatalf("errors: %v", c.Errors)
	}
	if c.Code != "sdfSphere(p, t, k, vec3<f32>(1, 2, 3), 4)" {
		t.Fatalf("code: %q", c.Code)
	}
	if c.Type != FTSdf {
		t.Fatalf("type: %v", c.Type)
	}
	if !reflect.DeepEqual(ip.Dependencies(), []string{"sdfSphere"}) {
		t.Fatalf("deps: %v", ip.Dependencies())
	}
}

func Test_Interp_DefinesCarryAcrossExpressions(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "sdflang")
	defer teardown()

	ip := newIp(t)
	results := ip.CompileSource("(define r 2)\n(sphere #<0 0 0> r)")
	if len(results) != 2 {
		t.Fatalf("want 2 results, got %d", len(results))
	}
	if results[1].Code != "sdfSphere(p, t, k, vec3<f32>(0), 2)" {
		t.Fatalf("code: %q", results[1].Code)
	}
}

func Test_Interp_SiblingFailuresAreIndependent(t *testing.T) {
	ip := newIp(t)
	results := ip.CompileSource("(sphere #<0 0 0> nope)\n(sphere #<0 0 0> 1)")
	if len(results) != 2 {
		t.Fatalf("want 2 results, got %d", len(results))
	}
	if len(results[0].Errors) == 0 {
		t.Fatal("first expression should fail")
	}
	if len(results[1].Errors) != 0 || results[1].Code == "" {
		t.Fatalf("second expression should compile: %+v", results[1])
	}
}

func Test_Interp_UniformSlotsStableWithinPass(t *testing.T) {
	ip := newIp(t)
	results := ip.CompileSource("(sphere #<0 0 0> :radius)\n(+ :radius :shift)")
	if len(results) != 2 {
		t.Fatalf("want 2 results, got %d", len(results))
	}
	if !strings.Contains(results[0].Code, "uniforms.values[0]") {
		t.Fatalf("first use: %q", results[0].Code)
	}
	if results[1].Code != "uniforms.values[0] + uniforms.values[1]" {
		t.Fatalf("second use: %q", results[1].Code)
	}
	if !reflect.DeepEqual(ip.Uniforms(), []string{"radius", "shift"}) {
		t.Fatalf("uniforms: %v", ip.Uniforms())
	}
}

func Test_Interp_PassContextResets(t *testing.T) {
	ip := newIp(t)
	ip.CompileSource("(+ :a :b)")
	results := ip.CompileSource("(+ :c 1)")
	if results[0].Code != "uniforms.values[0] + 1" {
		t.Fatalf("slots did not reset: %q", results[0].Code)
	}
	if !reflect.DeepEqual(ip.Uniforms(), []string{"c"}) {
		t.Fatalf("uniforms: %v", ip.Uniforms())
	}
}

func Test_Interp_PreludePerExpression(t *testing.T) {
	ip := newIp(t)
	results := ip.CompileSource(
		"(smooth 0.5 (sphere #<0 0 0> 1))\n(sphere #<0 0 0> 2)")
	if len(results[0].Prelude) != 1 || !strings.HasPrefix(results[0].Prelude[0], "let k") {
		t.Fatalf("first prelude: %v", results[0].Prelude)
	}
	if len(results[1].Prelude) != 0 {
		t.Fatalf("second prelude: %v", results[1].Prelude)
	}
}

func Test_Interp_ReadErrorsReported(t *testing.T) {
	ip := newIp(t)
	results := ip.CompileSource("(union (sphere #<0 0 0> 1)")
	if len(results) != 1 || len(results[0].Errors) == 0 {
		t.Fatalf("want read error, got %+v", results)
	}
}

func Test_Interp_EvaluateAndGenerateStages(t *testing.T) {
	ip := newIp(t)
	terms, err := ip.Read("(+ 1 2)")
	if err != nil || len(terms) != 1 {
		t.Fatalf("read: %v %v", terms, err)
	}
	v := ip.Evaluate(terms[0])
	if v.Num() != 3 {
		t.Fatalf("evaluate: %s", FormatTerm(v))
	}
	frag, err := ip.Generate(v)
	if err != nil || frag.Code != "3" {
		t.Fatalf("generate: %+v %v", frag, err)
	}
}

func Test_Interp_GenerateReturnsPositionedError(t *testing.T) {
	ip := newIp(t)
	terms, _ := ip.Read("(vec #<1 2 3>)")
	_, err := ip.Generate(terms[0])
	if err == nil {
		t.Fatal("want error")
	}
	e, ok := err.(*Error)
	if !ok || e.Len == 0 {
		t.Fatalf("want positioned *Error, got %v", err)
	}
}

func Test_Interp_InstancesAreIndependent(t *testing.T) {
	a := newIp(t)
	b := newIp(t)
	a.CompileSource("(define r 9)\n(+ :u1 :u2)")
	if b.Root.Has("r", false) {
		t.Fatal("definition leaked between interpreters")
	}
	if len(b.Uniforms()) != 0 {
		t.Fatalf("uniform table leaked: %v", b.Uniforms())
	}
}

func Test_Interp_IsIncomplete(t *testing.T) {
	cases := map[string]bool{
		"(union (sphere":   true,
		"(a (b)":           true,
		"(a b)":            false,
		"42":               false,
		")":                false,
		"(vec #<1 2":       false, // lex error, not continuation
		"":                 false,
	}
	for src, want := range cases {
		if got := IsIncomplete(src); got != want {
			t.Fatalf("IsIncomplete(%q): want %v got %v", src, want, got)
		}
	}
}
