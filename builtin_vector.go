// builtin_vector.go: vector construction, geometry and swizzles
//
// vec is the reader's target for "#<...>" literals as well as a normal
// builtin; one argument broadcasts, two zero-fill z. The three-letter
// x/y/z swizzles are generated programmatically, all 27 of them, so
// "(yzx v)" works the same folded at interpret time or lowered to a WGSL
// swizzle. Spherical conversion returns fresh vectors; nothing mutates a
// vector payload in place.
package sdflang

import (
	"math"
)

func registerVector(env *Env) {
	register(env, vecBuiltin())
	register(env, dotBuiltin())
	register(env, crossBuiltin())
	register(env, normalizeBuiltin())
	register(env, lengthBuiltin())
	register(env, cartesianSphericalBuiltin())
	register(env, sphericalCartesianBuiltin())

	axes := []string{"x", "y", "z"}
	for i, a := range axes {
		for j, b := range axes {
			for k, c := range axes {
				register(env, swizzleBuiltin(a+b+c, i, j, k))
			}
		}
	}
}

func vecBuiltin() *Internal {
	return &Internal{
		Name:    "vec",
		MinArgs: 1,
		MaxArgs: 3,
		Interpret: func(args []Term, at Term) Term {
			ns := make([]float64, len(args))
			for i, a := range args {
				n, errT := wantNumber(a, "vec component")
				if errT.Kind == TKError {
					return errT
				}
				ns[i] = n
			}
			switch len(ns) {
			case 1:
				return VectorTerm(Splat(ns[0]), at.Off, at.Len)
			case 2:
				return VectorTerm(Vec3{ns[0], ns[1], 0}, at.Off, at.Len)
			default:
				return VectorTerm(Vec3{ns[0], ns[1], ns[2]}, at.Off, at.Len)
			}
		},
		Generate: func(ctx *GenerateContext, env *Env, args []Term, at Term) Fragment {
			frags := genAll(args, env, ctx)
			for i, f := range frags {
				if f.Type == FTVec {
					failAt(args[i], "vec component must be a number")
				}
			}
			var code string
			switch len(frags) {
			case 1:
				code = "vec3<f32>(" + frags[0].Code + ")"
			case 2:
				code = "vec3<f32>(" + frags[0].Code + ", " + frags[1].Code + ", 0.0)"
			default:
				code = "vec3<f32>(" + frags[0].Code + ", " + frags[1].Code + ", " + frags[2].Code + ")"
			}
			return Fragment{Code: code, Type: FTVec}
		},
	}
}

func dotBuiltin() *Internal {
	return &Internal{
		Name:    "dot",
		MinArgs: 2,
		MaxArgs: 2,
		Interpret: func(args []Term, at Term) Term {
			a, errT := wantVector(args[0], "dot argument")
			if errT.Kind == TKError {
				return errT
			}
			b, errT := wantVector(args[1], "dot argument")
			if errT.Kind == TKError {
				return errT
			}
			return NumberTerm(a.Dot(b), at.Off, at.Len)
		},
		Generate: func(ctx *GenerateContext, env *Env, args []Term, at Term) Fragment {
			frags := genAll(args, env, ctx)
			a := promote(frags[0], FTVec)
			b := promote(frags[1], FTVec)
			return Fragment{Code: "dot(" + a.Code + ", " + b.Code + ")", Type: FTFloat}
		},
	}
}

func crossBuiltin() *Internal {
	return &Internal{
		Name:    "cross",
		MinArgs: 2,
		MaxArgs: 2,
		Interpret: func(args []Term, at Term) Term {
			a, errT := wantVector(args[0], "cross argument")
			if errT.Kind == TKError {
				return errT
			}
			b, errT := wantVector(args[1], "cross argument")
			if errT.Kind == TKError {
				return errT
			}
			return VectorTerm(a.Cross(b), at.Off, at.Len)
		},
		Generate: func(ctx *GenerateContext, env *Env, args []Term, at Term) Fragment {
			frags := genAll(args, env, ctx)
			a := promote(frags[0], FTVec)
			b := promote(frags[1], FTVec)
			return Fragment{Code: "cross(" + a.Code + ", " + b.Code + ")", Type: FTVec}
		},
	}
}

func normalizeBuiltin() *Internal {
	return &Internal{
		Name:    "normalize",
		MinArgs: 1,
		MaxArgs: 1,
		Interpret: func(args []Term, at Term) Term {
			v, errT := wantVector(args[0], "normalize argument")
			if errT.Kind == TKError {
				return errT
			}
			return VectorTerm(v.Normalize(), at.Off, at.Len)
		},
		Generate: func(ctx *GenerateContext, env *Env, args []Term, at Term) Fragment {
			f := promote(generate(args[0], env, ctx), FTVec)
			return Fragment{Code: "normalize(" + f.Code + ")", Type: FTVec}
		},
	}
}

func lengthBuiltin() *Internal {
	return &Internal{
		Name:    "length",
		MinArgs: 1,
		MaxArgs: 1,
		Interpret: func(args []Term, at Term) Term {
			v, errT := wantVector(args[0], "length argument")
			if errT.Kind == TKError {
				return errT
			}
			return NumberTerm(v.Length(), at.Off, at.Len)
		},
		Generate: func(ctx *GenerateContext, env *Env, args []Term, at Term) Fragment {
			f := promote(generate(args[0], env, ctx), FTVec)
			return Fragment{Code: "length(" + f.Code + ")", Type: FTFloat}
		},
	}
}

func swizzleBuiltin(name string, i, j, k int) *Internal {
	return &Internal{
		Name:    name,
		MinArgs: 1,
		MaxArgs: 1,
		Interpret: func(args []Term, at Term) Term {
			v, errT := wantVector(args[0], name+" argument")
			if errT.Kind == TKError {
				return errT
			}
			return VectorTerm(Vec3{v.Comp(i), v.Comp(j), v.Comp(k)}, at.Off, at.Len)
		},
		Generate: func(ctx *GenerateContext, env *Env, args []Term, at Term) Fragment {
			f := promote(generate(args[0], env, ctx), FTVec)
			return Fragment{Code: maybeParen(f.Code) + "." + name, Type: FTVec}
		},
	}
}

// cartesianSphericalBuiltin converts (x, y, z) to (r, theta, phi) with
// theta measured from the z axis.
func cartesianSphericalBuiltin() *Internal {
	return &Internal{
		Name:    "cartesian-spherical",
		MinArgs: 1,
		MaxArgs: 1,
		Interpret: func(args []Term, at Term) Term {
			v, errT := wantVector(args[0], "cartesian-spherical argument")
			if errT.Kind == TKError {
				return errT
			}
			r := v.Length()
			if r == 0 {
				return VectorTerm(Vec3{}, at.Off, at.Len)
			}
			return VectorTerm(Vec3{
				r,
				math.Acos(v.Z / r),
				math.Atan2(v.Y, v.X),
			}, at.Off, at.Len)
		},
		Generate: func(ctx *GenerateContext, env *Env, args []Term, at Term) Fragment {
			ctx.AddDependency("cartesianToSpherical")
			f := promote(generate(args[0], env, ctx), FTVec)
			return Fragment{Code: "cartesianToSpherical(" + f.Code + ")", Type: FTVec}
		},
	}
}

// sphericalCartesianBuiltin converts (r, theta, phi) back to cartesian
// coordinates.
func sphericalCartesianBuiltin() *Internal {
	return &Internal{
		Name:    "spherical-cartesian",
		MinArgs: 1,
		MaxArgs: 1,
		Interpret: func(args []Term, at Term) Term {
			v, errT := wantVector(args[0], "spherical-cartesian argument")
			if errT.Kind == TKError {
				return errT
			}
			r, theta, phi := v.X, v.Y, v.Z
			st := math.Sin(theta)
			return VectorTerm(Vec3{
				r * st * math.Cos(phi),
				r * st * math.Sin(phi),
				r * math.Cos(theta),
			}, at.Off, at.Len)
		},
		Generate: func(ctx *GenerateContext, env *Env, args []Term, at Term) Fragment {
			ctx.AddDependency("sphericalToCartesian")
			f := promote(generate(args[0], env, ctx), FTVec)
			return Fragment{Code: "sphericalToCartesian(" + f.Code + ")", Type: FTVec}
		},
	}
}
