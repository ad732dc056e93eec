// builtin_math.go: arithmetic, comparison and scalar math builtins
//
// Arithmetic is n-ary with the usual fold identities (0 for + and -,
// 1 for * and /) and scalar-to-vector broadcast when operands mix.
// Comparisons are n-ary over adjacent pairs: scalar chains fold to the
// number 1 or the empty list, chains involving vectors fold to a 0/1
// mask vector. The generate halves emit the matching WGSL: infix chains
// for arithmetic, min-folded f32()/vec3<f32>() masks for comparisons in
// value position.
package sdflang

import (
	"math"
	"strings"
)

func registerMath(env *Env) {
	register(env, arithBuiltin("+", 0, "0.0",
		func(a, b float64) float64 { return a + b }, nil))
	register(env, arithBuiltin("-", 0, "0.0",
		func(a, b float64) float64 { return a - b },
		func(x float64) float64 { return -x }))
	register(env, arithBuiltin("*", 1, "1.0",
		func(a, b float64) float64 { return a * b }, nil))
	register(env, arithBuiltin("/", 1, "1.0",
		func(a, b float64) float64 { return a / b },
		func(x float64) float64 { return 1 / x }))

	register(env, extremumBuiltin("min", math.Min))
	register(env, extremumBuiltin("max", math.Max))

	compares := []struct {
		name string
		op   string
		cmp  func(a, b float64) bool
	}{
		{"<", "<", func(a, b float64) bool { return a < b }},
		{"<=", "<=", func(a, b float64) bool { return a <= b }},
		{">", ">", func(a, b float64) bool { return a > b }},
		{">=", ">=", func(a, b float64) bool { return a >= b }},
		{"eq", "==", func(a, b float64) bool { return a == b }},
		{"neq", "!=", func(a, b float64) bool { return a != b }},
	}
	for _, c := range compares {
		register(env, compareBuiltin(c.name, c.op, c.cmp))
		register(env, compareBuiltin("."+c.name, c.op, c.cmp))
	}

	unaries := []struct {
		name string
		fn   func(float64) float64
	}{
		{"abs", math.Abs},
		{"sqrt", math.Sqrt},
		{"floor", math.Floor},
		{"ceil", math.Ceil},
		{"round", math.Round},
		{"sin", math.Sin},
		{"cos", math.Cos},
		{"tan", math.Tan},
		{"asin", math.Asin},
		{"acos", math.Acos},
		{"atan", math.Atan},
		{"exp", math.Exp},
		{"log", math.Log},
	}
	for _, u := range unaries {
		register(env, unaryBuiltin(u.name, u.fn))
	}

	register(env, binaryBuiltin("pow", math.Pow))
	register(env, binaryBuiltin("atan2", math.Atan2))

	register(env, ternaryBuiltin("smoothstep", scalarSmoothstep))
	register(env, ternaryBuiltin("mix", scalarMix))
	register(env, ternaryBuiltin("clamp", scalarClamp))
	register(env, unaryBuiltin("saturate", func(x float64) float64 {
		return scalarClamp(x, 0, 1)
	}))
}

func scalarClamp(x, lo, hi float64) float64 {
	return math.Min(math.Max(x, lo), hi)
}

func scalarMix(a, b, t float64) float64 {
	return a + (b-a)*t
}

func scalarSmoothstep(e0, e1, x float64) float64 {
	t := scalarClamp((x-e0)/(e1-e0), 0, 1)
	return t * t * (3 - 2*t)
}

// --- arithmetic -------------------------------------------------------------

// arithBuiltin builds one of the four n-ary arithmetic operators.
// identity is the zero-argument WGSL result; unary, when non-nil, is the
// single-argument fold (negate for -, invert for /).
func arithBuiltin(name string, identity float64, wgslIdentity string,
	fold func(a, b float64) float64, unary func(x float64) float64) *Internal {

	return &Internal{
		Name:    name,
		MinArgs: 0,
		MaxArgs: -1,
		Interpret: func(args []Term, at Term) Term {
			if len(args) == 0 {
				return NumberTerm(identity, at.Off, at.Len)
			}
			if len(args) == 1 && unary != nil {
				switch args[0].Kind {
				case TKNumber:
					return NumberTerm(unary(args[0].Num()), at.Off, at.Len)
				case TKVector:
					return VectorTerm(args[0].Vec().Map(unary), at.Off, at.Len)
				}
			}
			if anyVector(args) {
				acc, errT := wantVector(args[0], name+" argument")
				if errT.Kind == TKError {
					return errT
				}
				for _, a := range args[1:] {
					v, errT := wantVector(a, name+" argument")
					if errT.Kind == TKError {
						return errT
					}
					acc = acc.Zip(v, fold)
				}
				return VectorTerm(acc, at.Off, at.Len)
			}
			acc := args[0].Num()
			for _, a := range args[1:] {
				acc = fold(acc, a.Num())
			}
			return NumberTerm(acc, at.Off, at.Len)
		},
		Generate: func(ctx *GenerateContext, env *Env, args []Term, at Term) Fragment {
			if len(args) == 0 {
				return Fragment{Code: wgslIdentity, Type: FTFloat}
			}
			frags := genAll(args, env, ctx)
			target := unify(frags)
			if len(frags) == 1 {
				code := maybeParen(frags[0].Code)
				switch name {
				case "-":
					return Fragment{Code: "-" + code, Type: target}
				case "/":
					return Fragment{Code: "1.0 / " + code, Type: target}
				}
				return Fragment{Code: frags[0].Code, Type: target}
			}
			parts := make([]string, len(frags))
			for i, f := range frags {
				parts[i] = maybeParen(promote(f, target).Code)
			}
			return Fragment{Code: strings.Join(parts, " "+name+" "), Type: target}
		},
	}
}

// extremumBuiltin builds min or max: component-wise folds at interpret
// time, right-nested pairwise calls at generate time.
func extremumBuiltin(name string, fold func(a, b float64) float64) *Internal {
	return &Internal{
		Name:    name,
		MinArgs: 1,
		MaxArgs: -1,
		Interpret: func(args []Term, at Term) Term {
			if anyVector(args) {
				acc, errT := wantVector(args[0], name+" argument")
				if errT.Kind == TKError {
					return errT
				}
				for _, a := range args[1:] {
					v, errT := wantVector(a, name+" argument")
					if errT.Kind == TKError {
						return errT
					}
					acc = acc.Zip(v, fold)
				}
				return VectorTerm(acc, at.Off, at.Len)
			}
			acc := args[0].Num()
			for _, a := range args[1:] {
				acc = fold(acc, a.Num())
			}
			return NumberTerm(acc, at.Off, at.Len)
		},
		Generate: func(ctx *GenerateContext, env *Env, args []Term, at Term) Fragment {
			frags := genAll(args, env, ctx)
			target := unify(frags)
			codes := make([]string, len(frags))
			for i, f := range frags {
				codes[i] = promote(f, target).Code
			}
			return Fragment{Code: foldPairs(name, codes), Type: target}
		},
	}
}

// --- comparisons ------------------------------------------------------------

// compareBuiltin builds an n-ary comparison over adjacent pairs. Scalar
// chains short-circuit to the empty list on the first failing pair and
// otherwise yield 1. Chains involving a vector yield a 0/1 mask vector,
// AND-ed component-wise across all pairs.
func compareBuiltin(name, op string, cmp func(a, b float64) bool) *Internal {
	return &Internal{
		Name:    name,
		MinArgs: 2,
		MaxArgs: -1,
		Compare: op,
		Interpret: func(args []Term, at Term) Term {
			if anyVector(args) {
				mask := Splat(1)
				for i := 0; i+1 < len(args); i++ {
					a, errT := wantVector(args[i], name+" argument")
					if errT.Kind == TKError {
						return errT
					}
					b, errT := wantVector(args[i+1], name+" argument")
					if errT.Kind == TKError {
						return errT
					}
					mask = mask.Zip(a.Zip(b, func(x, y float64) float64 {
						if cmp(x, y) {
							return 1
						}
						return 0
					}), func(m, p float64) float64 { return m * p })
					if mask == (Vec3{}) {
						break
					}
				}
				return VectorTerm(mask, at.Off, at.Len)
			}
			for i := 0; i+1 < len(args); i++ {
				a, errT := wantNumber(args[i], name+" argument")
				if errT.Kind == TKError {
					return errT
				}
				b, errT := wantNumber(args[i+1], name+" argument")
				if errT.Kind == TKError {
					return errT
				}
				if !cmp(a, b) {
					return NullTerm(at.Off, at.Len)
				}
			}
			return NumberTerm(1, at.Off, at.Len)
		},
		Generate: func(ctx *GenerateContext, env *Env, args []Term, at Term) Fragment {
			frags := genAll(args, env, ctx)
			target := unify(frags)
			resType := FTFloat
			if target == FTVec {
				resType = FTVec
			}
			return Fragment{Code: compareChain(op, frags, false), Type: resType}
		},
	}
}

// --- scalar math family -----------------------------------------------------

// unaryBuiltin maps a scalar function over numbers and, component-wise,
// over vectors. The WGSL builtin of the same name handles both.
func unaryBuiltin(name string, fn func(float64) float64) *Internal {
	return &Internal{
		Name:    name,
		MinArgs: 1,
		MaxArgs: 1,
		Interpret: func(args []Term, at Term) Term {
			switch args[0].Kind {
			case TKNumber:
				return NumberTerm(fn(args[0].Num()), at.Off, at.Len)
			default:
				return VectorTerm(args[0].Vec().Map(fn), at.Off, at.Len)
			}
		},
		Generate: func(ctx *GenerateContext, env *Env, args []Term, at Term) Fragment {
			f := generate(args[0], env, ctx)
			return Fragment{Code: name + "(" + f.Code + ")", Type: f.Type}
		},
	}
}

func binaryBuiltin(name string, fn func(a, b float64) float64) *Internal {
	return &Internal{
		Name:    name,
		MinArgs: 2,
		MaxArgs: 2,
		Interpret: func(args []Term, at Term) Term {
			if anyVector(args) {
				a, errT := wantVector(args[0], name+" argument")
				if errT.Kind == TKError {
					return errT
				}
				b, errT := wantVector(args[1], name+" argument")
				if errT.Kind == TKError {
					return errT
				}
				return VectorTerm(a.Zip(b, fn), at.Off, at.Len)
			}
			return NumberTerm(fn(args[0].Num(), args[1].Num()), at.Off, at.Len)
		},
		Generate: func(ctx *GenerateContext, env *Env, args []Term, at Term) Fragment {
			frags := genAll(args, env, ctx)
			target := unify(frags)
			a := promote(frags[0], target)
			b := promote(frags[1], target)
			return Fragment{Code: name + "(" + a.Code + ", " + b.Code + ")", Type: target}
		},
	}
}

func ternaryBuiltin(name string, fn func(a, b, c float64) float64) *Internal {
	return &Internal{
		Name:    name,
		MinArgs: 3,
		MaxArgs: 3,
		Interpret: func(args []Term, at Term) Term {
			if anyVector(args) {
				vs := make([]Vec3, 3)
				for i := 0; i < 3; i++ {
					v, errT := wantVector(args[i], name+" argument")
					if errT.Kind == TKError {
						return errT
					}
					vs[i] = v
				}
				return VectorTerm(Vec3{
					fn(vs[0].X, vs[1].X, vs[2].X),
					fn(vs[0].Y, vs[1].Y, vs[2].Y),
					fn(vs[0].Z, vs[1].Z, vs[2].Z),
				}, at.Off, at.Len)
			}
			return NumberTerm(fn(args[0].Num(), args[1].Num(), args[2].Num()), at.Off, at.Len)
		},
		Generate: func(ctx *GenerateContext, env *Env, args []Term, at Term) Fragment {
			frags := genAll(args, env, ctx)
			target := unify(frags[:2])
			a := promote(frags[0], target)
			b := promote(frags[1], target)
			// mix accepts a scalar factor on vector operands; clamp
			// and smoothstep need all operands at one type.
			c := frags[2]
			if name != "mix" {
				target = unify(frags)
				a = promote(frags[0], target)
				b = promote(frags[1], target)
				c = promote(frags[2], target)
			}
			code := name + "(" + a.Code + ", " + b.Code + ", " + c.Code + ")"
			rt := target
			if c.Type == FTVec {
				rt = FTVec
			}
			return Fragment{Code: code, Type: rt}
		},
	}
}
