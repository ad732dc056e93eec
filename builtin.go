// builtin.go: native builtin registry
//
// A builtin is one Internal record with two halves sharing a name and an
// arity contract: Interpret folds a call whose arguments are all
// concrete numbers or vectors, Generate lowers a deferred call to WGSL.
// The evaluator checks arity before dispatching either half, and the
// generator re-checks when it meets a call the evaluator never saw.
package sdflang

import "strconv"

// Internal is a native builtin.
type Internal struct {
	Name    string
	MinArgs int
	MaxArgs int    // -1 for unbounded
	Compare string // WGSL operator for comparison builtins, "" otherwise

	Interpret func(args []Term, at Term) Term
	Generate  func(ctx *GenerateContext, env *Env, args []Term, at Term) Fragment
}

// checkArity returns an error message for a bad argument count, or "".
func (in *Internal) checkArity(n int) string {
	if n < in.MinArgs {
		return in.Name + " expects at least " + strconv.Itoa(in.MinArgs) + " arguments, found " + strconv.Itoa(n)
	}
	if in.MaxArgs >= 0 && n > in.MaxArgs {
		return in.Name + " expects at most " + strconv.Itoa(in.MaxArgs) + " arguments, found " + strconv.Itoa(n)
	}
	return ""
}

// register binds an internal in env under its name.
func register(env *Env, in *Internal) {
	env.Set(in.Name, Term{Kind: TKInternal, Data: in}, false)
}

// InstallBuiltins installs every native builtin into env. Each
// interpreter instance gets its own registry; nothing is shared.
func InstallBuiltins(env *Env) {
	registerMath(env)
	registerVector(env)
}

// --- shared interpret-half helpers ------------------------------------------

// wantNumber extracts a scalar argument or reports a positioned error.
func wantNumber(t Term, what string) (float64, Term) {
	if t.Kind != TKNumber {
		return 0, ErrorAt(what+" must be a number, found "+t.Kind.String(), t)
	}
	return t.Num(), Term{}
}

// wantVector extracts a vector argument, broadcasting scalars.
func wantVector(t Term, what string) (Vec3, Term) {
	switch t.Kind {
	case TKVector:
		return t.Vec(), Term{}
	case TKNumber:
		return Splat(t.Num()), Term{}
	}
	return Vec3{}, ErrorAt(what+" must be a vector, found "+t.Kind.String(), t)
}

// anyVector reports whether an argument list contains a vector.
func anyVector(args []Term) bool {
	for _, a := range args {
		if a.Kind == TKVector {
			return true
		}
	}
	return false
}
