// codegen.go: WGSL code generation
//
// The generator lowers an evaluated term tree into a WGSL expression
// fragment plus the side tables the surrounding shader template needs:
// the set of sdf helper functions referenced and the uniform slot
// assigned to each placeholder. A GenerateContext threads the mutable
// state of one compilation pass:
//
//   - P, the current position expression ("p" at the top; translate and
//     scale rewrite it for their subtree);
//   - K, the current smoothing expression ("k" at the top; smooth binds
//     a fresh let-variable and rebinds it for its subtree);
//   - the statement buffer (Lines) that collects let-bindings and
//     if/else blocks the expression fragment depends on;
//   - the placeholder table (insertion ordered, so a placeholder keeps
//     its uniform slot across every use in a pass) and the dependency
//     set (sorted, so shader assembly is deterministic).
//
// Failures panic with a positioned *Error; CompileSource recovers once
// per top-level expression so sibling expressions still compile.
package sdflang

import (
	"strconv"
	"strings"

	"github.com/emirpasic/gods/maps/linkedhashmap"
	"github.com/emirpasic/gods/sets/treeset"
)

// FragmentType tags the WGSL type of a generated expression.
type FragmentType int

const (
	FTFloat FragmentType = iota // f32
	FTVec                       // vec3<f32>
	FTSdf                       // f32 distance value
)

func (ft FragmentType) String() string {
	switch ft {
	case FTFloat:
		return "float"
	case FTVec:
		return "vec"
	case FTSdf:
		return "sdf"
	default:
		return "unknown"
	}
}

// Fragment is one generated WGSL expression.
type Fragment struct {
	Code string
	Type FragmentType
}

// GenerateContext carries the mutable state of one compilation pass.
type GenerateContext struct {
	P string // position expression for the current subtree
	K string // smoothing expression for the current subtree

	Lines []string // statements the current fragment depends on

	uniforms *linkedhashmap.Map // placeholder name -> slot index
	deps     *treeset.Set       // sdf helper names, sorted
	nextVar  int
}

// NewGenerateContext creates a pass context with the ambient position
// "p" and smoothing "k" bindings.
func NewGenerateContext() *GenerateContext {
	return &GenerateContext{
		P:        "p",
		K:        "k",
		uniforms: linkedhashmap.New(),
		deps:     treeset.NewWithStringComparator(),
	}
}

// UniformIndex returns the slot for a placeholder name, assigning the
// next free slot on first sight.
func (ctx *GenerateContext) UniformIndex(name string) int {
	if idx, ok := ctx.uniforms.Get(name); ok {
		return idx.(int)
	}
	idx := ctx.uniforms.Size()
	ctx.uniforms.Put(name, idx)
	return idx
}

// Uniforms lists placeholder names in slot order.
func (ctx *GenerateContext) Uniforms() []string {
	out := make([]string, 0, ctx.uniforms.Size())
	it := ctx.uniforms.Iterator()
	for it.Next() {
		out = append(out, it.Key().(string))
	}
	return out
}

// AddDependency records a shader helper function the output requires.
func (ctx *GenerateContext) AddDependency(name string) {
	ctx.deps.Add(name)
}

// Dependencies lists required helper functions in sorted order.
func (ctx *GenerateContext) Dependencies() []string {
	out := make([]string, 0, ctx.deps.Size())
	for _, v := range ctx.deps.Values() {
		out = append(out, v.(string))
	}
	return out
}

func (ctx *GenerateContext) freshVar(prefix string) string {
	ctx.nextVar++
	return prefix + strconv.Itoa(ctx.nextVar)
}

func (ctx *GenerateContext) emit(line string) {
	ctx.Lines = append(ctx.Lines, line)
}

// generate lowers t to a WGSL fragment, panicking with *Error on terms
// that have no shader meaning.
func generate(t Term, env *Env, ctx *GenerateContext) Fragment {
	switch t.Kind {
	case TKNumber:
		return Fragment{Code: formatNumber(t.Num()), Type: FTFloat}
	case TKVector:
		return Fragment{Code: vecLiteral(t.Vec()), Type: FTVec}
	case TKPlaceholder:
		idx := ctx.UniformIndex(strings.TrimPrefix(t.Text(), ":"))
		return Fragment{Code: "uniforms.values[" + strconv.Itoa(idx) + "]", Type: FTFloat}
	case TKShape:
		return genShape(t.Shape(), t, env, ctx)
	case TKList:
		return genList(t, env, ctx)
	case TKIdentifier:
		v, ok := env.Get(t.Text())
		if !ok {
			failAt(t, "unresolved identifier '%s'", t.Text())
		}
		switch v.Kind {
		case TKInternal, TKLambda, TKMacro:
			failAt(t, "'%s' is not a value", t.Text())
		}
		return generate(v, env, ctx)
	case TKError:
		panic(AsError(t))
	default:
		failAt(t, "cannot generate code for %s", t.Kind)
	}
	return Fragment{}
}

func genList(t Term, env *Env, ctx *GenerateContext) Fragment {
	items := t.List()
	head := items[0]
	if head.Kind == TKIdentifier {
		switch head.Text() {
		case "if":
			return genIf(t, env, ctx)
		case "shape":
			// Raw (shape kind args…) lists reach the generator when
			// source is compiled without an evaluation pass.
			if len(items) < 2 || items[1].Kind != TKIdentifier {
				failAt(t, "shape expects a kind identifier")
			}
			return genShape(&Shape{Kind: items[1].Text(), Args: items[2:]}, t, env, ctx)
		}
		v, ok := env.Get(head.Text())
		if ok && v.Kind == TKInternal {
			in := v.Data.(*Internal)
			args := items[1:]
			if msg := in.checkArity(len(args)); msg != "" {
				failAt(t, "%s", msg)
			}
			return in.Generate(ctx, env, args, t)
		}
	}
	failAt(t, "cannot generate code for %s", FormatTerm(head))
	return Fragment{}
}

// vecLiteral renders a constant vector, collapsing identical components
// to the single-argument constructor.
func vecLiteral(v Vec3) string {
	if v.X == v.Y && v.Y == v.Z {
		return "vec3<f32>(" + formatNumber(v.X) + ")"
	}
	return "vec3<f32>(" + formatNumber(v.X) + ", " + formatNumber(v.Y) + ", " + formatNumber(v.Z) + ")"
}

// needsParens reports whether code contains an operator at paren depth
// zero, meaning it must be wrapped before being used as an operand.
// Function calls and plain literals pass through bare.
func needsParens(code string) bool {
	depth := 0
	for i := 0; i < len(code); i++ {
		switch code[i] {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case ' ':
			if depth == 0 {
				return true
			}
		}
	}
	return false
}

func maybeParen(code string) string {
	if needsParens(code) {
		return "(" + code + ")"
	}
	return code
}

// promote converts a fragment to the target type, wrapping scalars in
// the vector constructor. Sdf values behave as floats.
func promote(f Fragment, target FragmentType) Fragment {
	if target != FTVec || f.Type == FTVec {
		return Fragment{Code: f.Code, Type: target}
	}
	return Fragment{Code: "vec3<f32>(" + maybeParen(f.Code) + ")", Type: FTVec}
}

// unify picks the common type of a fragment list: vec wins over sdf,
// sdf wins over float.
func unify(frags []Fragment) FragmentType {
	t := FTFloat
	for _, f := range frags {
		switch f.Type {
		case FTVec:
			return FTVec
		case FTSdf:
			t = FTSdf
		}
	}
	return t
}

// genAll lowers an argument list.
func genAll(args []Term, env *Env, ctx *GenerateContext) []Fragment {
	out := make([]Fragment, len(args))
	for i, a := range args {
		out[i] = generate(a, env, ctx)
	}
	return out
}

// genCondition lowers a term for boolean position. Comparison calls emit
// their bare operator chain; anything else is generated as a value and
// tested against zero.
func genCondition(t Term, env *Env, ctx *GenerateContext) string {
	if t.Kind == TKList {
		items := t.List()
		head := items[0]
		if head.Kind == TKIdentifier {
			if v, ok := env.Get(head.Text()); ok && v.Kind == TKInternal {
				in := v.Data.(*Internal)
				if in.Compare != "" {
					if msg := in.checkArity(len(items) - 1); msg != "" {
						failAt(t, "%s", msg)
					}
					return compareChain(in.Compare, genAll(items[1:], env, ctx), true)
				}
			}
		}
	}
	f := generate(t, env, ctx)
	if f.Type == FTVec {
		return "any(" + maybeParen(f.Code) + " != vec3<f32>(0.0))"
	}
	return maybeParen(f.Code) + " != 0.0"
}

// compareChain lowers an n-ary comparison over adjacent pairs. In
// boolean position scalar pairs join with && and vector pairs wrap in
// all(). In value position pairs become f32()/vec3<f32>() masks folded
// with min.
func compareChain(op string, frags []Fragment, boolean bool) string {
	target := unify(frags)
	pairs := make([]string, 0, len(frags)-1)
	for i := 0; i+1 < len(frags); i++ {
		a := promote(frags[i], target)
		b := promote(frags[i+1], target)
		pairs = append(pairs, maybeParen(a.Code)+" "+op+" "+maybeParen(b.Code))
	}
	if boolean {
		if target == FTVec {
			for i, p := range pairs {
				pairs[i] = "all(" + p + ")"
			}
		}
		return strings.Join(pairs, " && ")
	}
	wrap := "f32"
	if target == FTVec {
		wrap = "vec3<f32>"
	}
	for i, p := range pairs {
		pairs[i] = wrap + "(" + p + ")"
	}
	return foldPairs("min", pairs)
}

// foldPairs right-nests a list of operand strings into pairwise calls:
// min(a, min(b, c)).
func foldPairs(fn string, operands []string) string {
	if len(operands) == 1 {
		return operands[0]
	}
	return fn + "(" + operands[0] + ", " + foldPairs(fn, operands[1:]) + ")"
}

// genIf lowers a deferred conditional. When neither branch emits
// statements the conditional becomes a select() expression; otherwise an
// if/else block assigns a fresh result variable. The smoothing
// expression is snapshotted around each branch so a smooth inside one
// branch does not leak into the other or past the conditional.
func genIf(t Term, env *Env, ctx *GenerateContext) Fragment {
	items := t.List()
	if len(items) < 3 || len(items) > 4 {
		failAt(t, "if expects a test, a then-branch and an optional else-branch")
	}
	if len(items) == 3 {
		failAt(t, "if needs an else-branch for code generation")
	}
	cond := genCondition(items[1], env, ctx)

	k0 := ctx.K
	mark := len(ctx.Lines)
	thenFrag := generate(items[2], env, ctx)
	thenLines := append([]string(nil), ctx.Lines[mark:]...)
	ctx.Lines = ctx.Lines[:mark]
	ctx.K = k0

	elseFrag := generate(items[3], env, ctx)
	elseLines := append([]string(nil), ctx.Lines[mark:]...)
	ctx.Lines = ctx.Lines[:mark]
	ctx.K = k0

	target := unify([]Fragment{thenFrag, elseFrag})
	thenFrag = promote(thenFrag, target)
	elseFrag = promote(elseFrag, target)

	if len(thenLines) == 0 && len(elseLines) == 0 {
		return Fragment{
			Code: "select(" + elseFrag.Code + ", " + thenFrag.Code + ", " + cond + ")",
			Type: target,
		}
	}

	wgslType := "f32"
	if target == FTVec {
		wgslType = "vec3<f32>"
	}
	res := ctx.freshVar("res")
	ctx.emit("var " + res + ": " + wgslType + ";")
	ctx.emit("if " + cond + " {")
	for _, l := range thenLines {
		ctx.emit("  " + l)
	}
	ctx.emit("  " + res + " = " + thenFrag.Code + ";")
	ctx.emit("} else {")
	for _, l := range elseLines {
		ctx.emit("  " + l)
	}
	ctx.emit("  " + res + " = " + elseFrag.Code + ";")
	ctx.emit("}")
	return Fragment{Code: res, Type: target}
}

// sdfHelper builds the canonical helper name for a shape kind:
// "sphere" -> "sdfSphere".
func sdfHelper(kind string) string {
	return "sdf" + strings.ToUpper(kind[:1]) + kind[1:]
}

// genShape lowers an evaluated shape node. Primitives call their sdf
// helper with the ambient position, time and smoothing arguments;
// combinators fold, rebind or rewrite the context.
func genShape(s *Shape, at Term, env *Env, ctx *GenerateContext) Fragment {
	switch s.Kind {
	case "union":
		return foldShapes("min", s, at, env, ctx)
	case "intersect":
		return foldShapes("max", s, at, env, ctx)
	case "difference":
		return genDifference(s, at, env, ctx)
	case "lerp":
		return genLerp(s, at, env, ctx)
	case "smooth":
		return genSmooth(s, at, env, ctx)
	case "rounded":
		return genRounded(s, at, env, ctx)
	case "translate":
		return genTranslate(s, at, env, ctx)
	case "scale":
		return genScale(s, at, env, ctx)
	case "rotate-x", "rotate-y", "rotate-z":
		return genAxisRotate(s, at, env, ctx)
	case "rotate":
		return genRotate(s, at, env, ctx)
	case "reflect":
		return genReflect(s, at, env, ctx)
	case "color":
		return genColor(s, at, env, ctx)
	case "hide":
		return Fragment{Code: "1e6", Type: FTSdf}
	case "sphere", "box", "torus", "plane", "cylinder":
		return genPrimitive(s, at, env, ctx)
	default:
		failAt(at, "unknown shape kind '%s'", s.Kind)
	}
	return Fragment{}
}

// primitiveArity fixes the argument count of each primitive shape kind.
// The stdlib macros enforce it at evaluation time; this check covers raw
// (shape kind ...) forms reaching the generator directly.
var primitiveArity = map[string]int{
	"sphere":   2,
	"box":      2,
	"torus":    3,
	"plane":    2,
	"cylinder": 3,
}

func genPrimitive(s *Shape, at Term, env *Env, ctx *GenerateContext) Fragment {
	if want := primitiveArity[s.Kind]; len(s.Args) != want {
		failAt(at, "%s expects %d arguments, found %d", s.Kind, want, len(s.Args))
	}
	helper := sdfHelper(s.Kind)
	ctx.AddDependency(helper)
	parts := []string{ctx.P, "t", ctx.K}
	for _, a := range s.Args {
		parts = append(parts, generate(a, env, ctx).Code)
	}
	return Fragment{Code: helper + "(" + strings.Join(parts, ", ") + ")", Type: FTSdf}
}

func shapeOperands(s *Shape, at Term, env *Env, ctx *GenerateContext, min int) []string {
	if len(s.Args) < min {
		failAt(at, "%s expects at least %d shapes", s.Kind, min)
	}
	out := make([]string, len(s.Args))
	for i, a := range s.Args {
		out[i] = generate(a, env, ctx).Code
	}
	return out
}

func foldShapes(fn string, s *Shape, at Term, env *Env, ctx *GenerateContext) Fragment {
	return Fragment{Code: foldPairs(fn, shapeOperands(s, at, env, ctx, 1)), Type: FTSdf}
}

func genDifference(s *Shape, at Term, env *Env, ctx *GenerateContext) Fragment {
	ops := shapeOperands(s, at, env, ctx, 2)
	code := ops[0]
	for _, o := range ops[1:] {
		code = "max(" + code + ", -" + maybeParen(o) + ")"
	}
	return Fragment{Code: code, Type: FTSdf}
}

func genLerp(s *Shape, at Term, env *Env, ctx *GenerateContext) Fragment {
	if len(s.Args) != 3 {
		failAt(at, "lerp expects a factor and two shapes")
	}
	factor := generate(s.Args[0], env, ctx)
	a := generate(s.Args[1], env, ctx)
	b := generate(s.Args[2], env, ctx)
	return Fragment{
		Code: "mix(" + a.Code + ", " + b.Code + ", " + factor.Code + ")",
		Type: FTSdf,
	}
}

func genSmooth(s *Shape, at Term, env *Env, ctx *GenerateContext) Fragment {
	if len(s.Args) != 2 {
		failAt(at, "smooth expects a factor and a shape")
	}
	factor := generate(s.Args[0], env, ctx)
	kvar := ctx.freshVar("k")
	ctx.emit("let " + kvar + ": f32 = " + factor.Code + ";")
	saved := ctx.K
	ctx.K = kvar
	inner := generate(s.Args[1], env, ctx)
	ctx.K = saved
	return inner
}

func genRounded(s *Shape, at Term, env *Env, ctx *GenerateContext) Fragment {
	if len(s.Args) != 2 {
		failAt(at, "rounded expects a radius and a shape")
	}
	radius := generate(s.Args[0], env, ctx)
	inner := generate(s.Args[1], env, ctx)
	return Fragment{
		Code: maybeParen(inner.Code) + " - " + maybeParen(radius.Code),
		Type: FTSdf,
	}
}

func genTranslate(s *Shape, at Term, env *Env, ctx *GenerateContext) Fragment {
	if len(s.Args) != 2 {
		failAt(at, "translate expects an offset and a shape")
	}
	offset := promote(generate(s.Args[0], env, ctx), FTVec)
	saved := ctx.P
	ctx.P = "(" + saved + " - " + offset.Code + ")"
	inner := generate(s.Args[1], env, ctx)
	ctx.P = saved
	return inner
}

func genScale(s *Shape, at Term, env *Env, ctx *GenerateContext) Fragment {
	if len(s.Args) != 2 {
		failAt(at, "scale expects a factor and a shape")
	}
	factor := generate(s.Args[0], env, ctx)
	if factor.Type == FTVec {
		failAt(s.Args[0], "scale factor must be a number")
	}
	saved := ctx.P
	ctx.P = "(" + saved + " / " + maybeParen(factor.Code) + ")"
	inner := generate(s.Args[1], env, ctx)
	ctx.P = saved
	return Fragment{
		Code: maybeParen(inner.Code) + " * " + maybeParen(factor.Code),
		Type: FTSdf,
	}
}

func genAxisRotate(s *Shape, at Term, env *Env, ctx *GenerateContext) Fragment {
	if len(s.Args) != 2 {
		failAt(at, "%s expects an angle and a shape", s.Kind)
	}
	// rotate-x -> sdfRotateX
	helper := "sdfRotate" + strings.ToUpper(s.Kind[len(s.Kind)-1:])
	ctx.AddDependency(helper)
	angle := generate(s.Args[0], env, ctx)
	saved := ctx.P
	ctx.P = helper + "(" + saved + ", " + angle.Code + ")"
	inner := generate(s.Args[1], env, ctx)
	ctx.P = saved
	return inner
}

func genRotate(s *Shape, at Term, env *Env, ctx *GenerateContext) Fragment {
	if len(s.Args) != 3 {
		failAt(at, "rotate expects an axis, an angle and a shape")
	}
	ctx.AddDependency("sdfRotate")
	axis := promote(generate(s.Args[0], env, ctx), FTVec)
	angle := generate(s.Args[1], env, ctx)
	saved := ctx.P
	ctx.P = "sdfRotate(" + saved + ", " + axis.Code + ", " + angle.Code + ")"
	inner := generate(s.Args[2], env, ctx)
	ctx.P = saved
	return inner
}

func genReflect(s *Shape, at Term, env *Env, ctx *GenerateContext) Fragment {
	if len(s.Args) != 2 {
		failAt(at, "reflect expects a normal and a shape")
	}
	ctx.AddDependency("sdfReflect")
	normal := promote(generate(s.Args[0], env, ctx), FTVec)
	saved := ctx.P
	ctx.P = "sdfReflect(" + saved + ", " + normal.Code + ")"
	inner := generate(s.Args[1], env, ctx)
	ctx.P = saved
	return inner
}

func genColor(s *Shape, at Term, env *Env, ctx *GenerateContext) Fragment {
	if len(s.Args) != 2 {
		failAt(at, "color expects an rgb vector and a shape")
	}
	ctx.AddDependency("sdfColor")
	rgb := promote(generate(s.Args[0], env, ctx), FTVec)
	inner := generate(s.Args[1], env, ctx)
	return Fragment{
		Code: "sdfColor(" + rgb.Code + ", " + inner.Code + ")",
		Type: FTSdf,
	}
}
