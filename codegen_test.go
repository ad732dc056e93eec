// codegen_test.go
package sdflang

import (
	"reflect"
	"strings"
	"testing"
)

func genEnv(t *testing.T) (*Env, *GenerateContext) {
	t.Helper()
	return testEnv(t), NewGenerateContext()
}

// wantCode generates the read term without an evaluation pass and
// compares the emitted expression.
func wantCode(t *testing.T, src, want string) {
	t.Helper()
	env, ctx := genEnv(t)
	frag := generate(read1(t, src), env, ctx)
	if frag.Code != want {
		t.Fatalf("generate(%q):\nwant %q\ngot  %q", src, want, frag.Code)
	}
}

// wantEvalCode runs the full evaluate-then-generate pipeline.
func wantEvalCode(t *testing.T, src, want string) (*GenerateContext, []string) {
	t.Helper()
	env, ctx := genEnv(t)
	evaluated := Evaluate(read1(t, src), env)
	if errs := CollectErrors(evaluated); len(errs) > 0 {
		t.Fatalf("evaluate(%q): %s", src, errs[0].Text())
	}
	frag := generate(evaluated, env, ctx)
	if frag.Code != want {
		t.Fatalf("compile(%q):\nwant %q\ngot  %q", src, want, frag.Code)
	}
	return ctx, ctx.Lines
}

func Test_Gen_ArithmeticIdentities(t *testing.T) {
	wantCode(t, "(+)", "0.0")
	wantCode(t, "(*)", "1.0")
	wantCode(t, "(/)", "1.0")
	wantCode(t, "(-)", "0.0")
}

func Test_Gen_UnaryArithmetic(t *testing.T) {
	wantCode(t, "(- 1)", "-1")
	wantCode(t, "(/ 3)", "1.0 / 3")
	wantCode(t, "(+ 7)", "7")
	wantCode(t, "(* 7)", "7")
}

func Test_Gen_InfixChains(t *testing.T) {
	wantCode(t, "(+ 1 2 3)", "1 + 2 + 3")
	wantCode(t, "(- 10 4)", "10 - 4")
	wantCode(t, "(* 2 (+ 1 3))", "2 * (1 + 3)")
}

func Test_Gen_MinMaxNesting(t *testing.T) {
	wantCode(t, "(min 4 3 2)", "min(4, min(3, 2))")
	wantCode(t, "(max 1 2)", "max(1, 2)")
	wantCode(t, "(min 5)", "5")
}

func Test_Gen_VectorLiterals(t *testing.T) {
	wantCode(t, "#<1 2 3>", "vec3<f32>(1, 2, 3)")
	// identical components collapse
	wantCode(t, "#<2 2 2>", "vec3<f32>(2)")
	wantCode(t, "(vec 4)", "vec3<f32>(4)")
}

func Test_Gen_ScalarPromotion(t *testing.T) {
	wantCode(t, "(+ 1 #<1 2 3>)", "vec3<f32>(1) + vec3<f32>(1, 2, 3)")
	env, ctx := genEnv(t)
	frag := generate(read1(t, "(+ 1 #<1 2 3>)"), env, ctx)
	if frag.Type != FTVec {
		t.Fatalf("result type: %v", frag.Type)
	}
}

func Test_Gen_ComparisonValuePosition(t *testing.T) {
	wantCode(t, "(< 1 2)", "f32(1 < 2)")
	wantCode(t, "(< 1 2 3)", "min(f32(1 < 2), f32(2 < 3))")
	wantCode(t, "(>= 5 4)", "f32(5 >= 4)")
	wantCode(t, "(eq 1 1)", "f32(1 == 1)")
}

func Test_Gen_ComparisonVectorMask(t *testing.T) {
	wantCode(t, "(< #<1 2 3> #<2 2 2>)",
		"vec3<f32>(vec3<f32>(1, 2, 3) < vec3<f32>(2))")
}

func Test_Gen_PlaceholderUniforms(t *testing.T) {
	env, ctx := genEnv(t)
	frag := generate(read1(t, "(+ :a :b :a)"), env, ctx)
	want := "uniforms.values[0] + uniforms.values[1] + uniforms.values[0]"
	if frag.Code != want {
		t.Fatalf("got %q", frag.Code)
	}
	if !reflect.DeepEqual(ctx.Uniforms(), []string{"a", "b"}) {
		t.Fatalf("uniforms: %v", ctx.Uniforms())
	}
	// a second use in the same pass keeps its slot
	frag = generate(read1(t, ":b"), env, ctx)
	if frag.Code != "uniforms.values[1]" {
		t.Fatalf("slot moved: %q", frag.Code)
	}
}

func Test_Gen_SpherePrimitive(t *testing.T) {
	ctx, _ := wantEvalCode(t, "(sphere #<1 2 3> 4)",
		"sdfSphere(p, t, k, vec3<f32>(1, 2, 3), 4)")
	deps := ctx.Dependencies()
	if !reflect.DeepEqual(deps, []string{"sdfSphere"}) {
		t.Fatalf("deps: %v", deps)
	}
}

func Test_Gen_UnionFold(t *testing.T) {
	wantEvalCode(t,
		"(union (sphere #<0 0 0> 1) (sphere #<0 0 0> 2) (sphere #<0 0 0> 3))",
		"min(sdfSphere(p, t, k, vec3<f32>(0), 1), "+
			"min(sdfSphere(p, t, k, vec3<f32>(0), 2), sdfSphere(p, t, k, vec3<f32>(0), 3)))")
}

func Test_Gen_IntersectAndDifference(t *testing.T) {
	wantEvalCode(t,
		"(intersect (sphere #<0 0 0> 1) (sphere #<0 0 0> 2))",
		"max(sdfSphere(p, t, k, vec3<f32>(0), 1), sdfSphere(p, t, k, vec3<f32>(0), 2))")
	wantEvalCode(t,
		"(difference (sphere #<0 0 0> 1) (sphere #<0 0 0> 2))",
		"max(sdfSphere(p, t, k, vec3<f32>(0), 1), -sdfSphere(p, t, k, vec3<f32>(0), 2))")
}

func Test_Gen_LerpUsesMix(t *testing.T) {
	wantEvalCode(t,
		"(lerp 0.5 (sphere #<0 0 0> 1) (sphere #<0 0 0> 2))",
		"mix(sdfSphere(p, t, k, vec3<f32>(0), 1), sdfSphere(p, t, k, vec3<f32>(0), 2), 0.5)")
}

func Test_Gen_TranslateRewritesPosition(t *testing.T) {
	wantEvalCode(t,
		"(translate #<1 0 0> (sphere #<0 0 0> 1))",
		"sdfSphere((p - vec3<f32>(1, 0, 0)), t, k, vec3<f32>(0), 1)")
}

func Test_Gen_TranslateRestoresPosition(t *testing.T) {
	wantEvalCode(t,
		"(union (translate #<1 0 0> (sphere #<0 0 0> 1)) (sphere #<0 0 0> 2))",
		"min(sdfSphere((p - vec3<f32>(1, 0, 0)), t, k, vec3<f32>(0), 1), "+
			"sdfSphere(p, t, k, vec3<f32>(0), 2))")
}

func Test_Gen_ScaleRewritesAndCompensates(t *testing.T) {
	wantEvalCode(t,
		"(scale 2 (sphere #<0 0 0> 1))",
		"sdfSphere((p / 2), t, k, vec3<f32>(0), 1) * 2")
}

func Test_Gen_SmoothBindsK(t *testing.T) {
	_, lines := wantEvalCode(t,
		"(smooth 0.5 (sphere #<0 0 0> 1))",
		"sdfSphere(p, t, k1, vec3<f32>(0), 1)")
	if len(lines) != 1 || lines[0] != "let k1: f32 = 0.5;" {
		t.Fatalf("lines: %v", lines)
	}
}

func Test_Gen_SmoothRestoresK(t *testing.T) {
	wantEvalCode(t,
		"(union (smooth 0.5 (sphere #<0 0 0> 1)) (sphere #<0 0 0> 2))",
		"min(sdfSphere(p, t, k1, vec3<f32>(0), 1), sdfSphere(p, t, k, vec3<f32>(0), 2))")
}

func Test_Gen_RotateHelpers(t *testing.T) {
	ctx, _ := wantEvalCode(t,
		"(rotate-y 0.5 (sphere #<0 0 0> 1))",
		"sdfSphere(sdfRotateY(p, 0.5), t, k, vec3<f32>(0), 1)")
	if !reflect.DeepEqual(ctx.Dependencies(), []string{"sdfRotateY", "sdfSphere"}) {
		t.Fatalf("deps: %v", ctx.Dependencies())
	}
}

func Test_Gen_ColorWrapsDistance(t *testing.T) {
	wantEvalCode(t,
		"(color #<1 0 0> (sphere #<0 0 0> 1))",
		"sdfColor(vec3<f32>(1, 0, 0), sdfSphere(p, t, k, vec3<f32>(0), 1))")
}

func Test_Gen_HideIsFarDistance(t *testing.T) {
	wantEvalCode(t, "(hide (sphere #<0 0 0> 1))", "1e6")
}

func Test_Gen_RoundedSubtracts(t *testing.T) {
	wantEvalCode(t,
		"(rounded 0.1 (sphere #<0 0 0> 1))",
		"sdfSphere(p, t, k, vec3<f32>(0), 1) - 0.1")
}

func Test_Gen_IfSelect(t *testing.T) {
	env, ctx := genEnv(t)
	evaluated := Evaluate(read1(t, "(if (< :a 1) 2 3)"), env)
	frag := generate(evaluated, env, ctx)
	if frag.Code != "select(3, 2, uniforms.values[0] < 1)" {
		t.Fatalf("got %q", frag.Code)
	}
	if len(ctx.Lines) != 0 {
		t.Fatalf("select form should emit no statements: %v", ctx.Lines)
	}
}

func Test_Gen_IfBlockKeepsSmoothInBranch(t *testing.T) {
	env, ctx := genEnv(t)
	src := "(if (< :a 1) (smooth 0.5 (sphere #<0 0 0> 1)) (sphere #<0 0 0> 2))"
	evaluated := Evaluate(read1(t, src), env)
	if errs := CollectErrors(evaluated); len(errs) > 0 {
		t.Fatalf("evaluate: %s", errs[0].Text())
	}
	frag := generate(evaluated, env, ctx)
	if !strings.HasPrefix(frag.Code, "res") {
		t.Fatalf("want result variable, got %q", frag.Code)
	}
	joined := strings.Join(ctx.Lines, "\n")
	if !strings.Contains(joined, "let k1: f32 = 0.5;") {
		t.Fatalf("smooth binding missing:\n%s", joined)
	}
	if !strings.Contains(joined, "k1,") {
		t.Fatalf("then-branch must use the bound k:\n%s", joined)
	}
	if !strings.Contains(joined, "sdfSphere(p, t, k, vec3<f32>(0), 2)") {
		t.Fatalf("else-branch must use the ambient k:\n%s", joined)
	}
}

func Test_Gen_ConditionPositionComparison(t *testing.T) {
	env, ctx := genEnv(t)
	cond := genCondition(read1(t, "(< 1 2 3)"), env, ctx)
	if cond != "1 < 2 && 2 < 3" {
		t.Fatalf("got %q", cond)
	}
	cond = genCondition(read1(t, "(< #<1 2 3> #<2 2 2>)"), env, ctx)
	if cond != "all(vec3<f32>(1, 2, 3) < vec3<f32>(2))" {
		t.Fatalf("got %q", cond)
	}
}

func Test_Gen_MathBuiltinsLowerDirectly(t *testing.T) {
	wantCode(t, "(abs (- 0 :a))", "abs(0 - uniforms.values[0])")
	wantCode(t, "(atan2 :y :x)", "atan2(uniforms.values[0], uniforms.values[1])")
	wantCode(t, "(clamp :x 0 1)", "clamp(uniforms.values[0], 0, 1)")
}

func Test_Gen_VectorBuiltins(t *testing.T) {
	wantCode(t, "(dot #<1 0 0> #<0 1 0>)",
		"dot(vec3<f32>(1, 0, 0), vec3<f32>(0, 1, 0))")
	wantCode(t, "(length #<3 4 0>)", "length(vec3<f32>(3, 4, 0))")
	wantCode(t, "(yzx #<1 2 3>)", "vec3<f32>(1, 2, 3).yzx")
}

func Test_Gen_PrimitiveArityChecked(t *testing.T) {
	env, ctx := genEnv(t)
	defer func() {
		r := recover()
		e, ok := r.(*Error)
		if !ok {
			t.Fatalf("want *Error panic, got %v", r)
		}
		if !strings.Contains(e.Msg, "sphere expects 2 arguments") {
			t.Fatalf("message: %q", e.Msg)
		}
	}()
	generate(read1(t, "(shape sphere)"), env, ctx)
	t.Fatal("expected panic")
}

func Test_Gen_ErrorsArePositioned(t *testing.T) {
	env, ctx := genEnv(t)
	defer func() {
		r := recover()
		e, ok := r.(*Error)
		if !ok {
			t.Fatalf("want *Error panic, got %v", r)
		}
		if e.Off == 0 && e.Len == 0 {
			t.Fatal("error carries no position")
		}
	}()
	generate(read1(t, "(vec #<1 2 3>)"), env, ctx)
	t.Fatal("expected panic")
}
