// eval.go: term evaluation
//
// Evaluation reduces a read term tree to a value tree: numbers, vectors
// and shapes where the inputs were concrete, rebuilt call lists where
// they were not (placeholders and deferred builtins survive evaluation
// and are lowered later by the code generator).
//
// Failures never abort a pass. Every failure (unresolved identifier,
// arity mismatch, malformed special form) becomes an
// in-tree error term positioned at the offending source range, and
// sibling expressions keep evaluating. CollectErrors over the result
// gathers every diagnostic of the pass.
package sdflang

import "strconv"

// Evaluate reduces t in env.
func Evaluate(t Term, env *Env) Term {
	switch t.Kind {
	case TKIdentifier:
		v, ok := env.Get(t.Text())
		if !ok {
			return ErrorAt("unresolved identifier '"+t.Text()+"'", t)
		}
		return v
	case TKList:
		return evalList(t, env)
	default:
		// Null, numbers, vectors, placeholders, shapes, closures and
		// errors are self-evaluating.
		return t
	}
}

func evalList(t Term, env *Env) Term {
	items := t.List()
	head := items[0]

	if head.Kind == TKIdentifier {
		switch head.Text() {
		case "if":
			return evalIf(t, env)
		case "define":
			return evalDefine(t, env)
		case "set!":
			return evalSet(t, env)
		case "lambda":
			return evalClosure(t, env, false)
		case "macro":
			return evalClosure(t, env, true)
		case "let":
			return evalLet(t, env)
		case "begin":
			// sequences in the current frame, so inner defines bind in
			// the enclosing scope
			return evalBody(items[1:], env)
		case "quote":
			if len(items) != 2 {
				return ErrorAt("quote expects exactly one argument", t)
			}
			return items[1]
		case "quasi-quote":
			if len(items) != 2 {
				return ErrorAt("quasi-quote expects exactly one argument", t)
			}
			return evalQuasi(items[1], env, 1)
		case "unquote", "unquote-splicing":
			return ErrorAt("'"+head.Text()+"' outside quasi-quote", t)
		case "shape":
			return evalShape(t, env)
		}
	}

	fn := Evaluate(head, env)
	switch fn.Kind {
	case TKError:
		return fn
	case TKMacro:
		return applyMacro(fn.Data.(*Macro), items[1:], t, env)
	}

	args := make([]Term, len(items)-1)
	for i, a := range items[1:] {
		args[i] = Evaluate(a, env)
	}

	switch fn.Kind {
	case TKInternal:
		return applyInternal(fn.Data.(*Internal), head, args, t)
	case TKLambda:
		return applyLambda(fn.Data.(*Lambda), args, t)
	default:
		return ErrorAt("'"+FormatTerm(head)+"' is not applicable", head)
	}
}

// applyInternal folds a builtin call when every argument is a concrete
// value. Otherwise the call is rebuilt as a list, with the evaluated
// arguments in place, for the code generator, which also keeps any
// in-tree argument errors visible to CollectErrors.
func applyInternal(in *Internal, head Term, args []Term, at Term) Term {
	if msg := in.checkArity(len(args)); msg != "" {
		return ErrorAt(msg, at)
	}
	for _, a := range args {
		if !a.IsValue() {
			rebuilt := make([]Term, 0, len(args)+1)
			rebuilt = append(rebuilt, head)
			rebuilt = append(rebuilt, args...)
			return ListTerm(rebuilt, at.Off, at.Len)
		}
	}
	return in.Interpret(args, at)
}

func applyLambda(fn *Lambda, args []Term, at Term) Term {
	for _, a := range args {
		if a.Kind == TKError {
			return a
		}
	}
	frame, errMsg := bindParams(fn.Params, fn.Rest, args, fn.Env, at)
	if errMsg != "" {
		return ErrorAt(errMsg, at)
	}
	return evalBody(fn.Body, frame)
}

// applyMacro expands in two phases: the body runs once in a fresh frame
// binding the unevaluated argument terms, then the expansion is
// evaluated in the caller's environment so argument expressions resolve
// against the scope they were written in.
func applyMacro(m *Macro, args []Term, at Term, caller *Env) Term {
	frame, errMsg := bindParams(m.Params, m.Rest, args, m.Env, at)
	if errMsg != "" {
		return ErrorAt(errMsg, at)
	}
	expansion := evalBody(m.Body, frame)
	if expansion.Kind == TKError {
		return expansion
	}
	return Evaluate(expansion, caller)
}

func bindParams(params []string, rest string, args []Term, parent *Env, at Term) (*Env, string) {
	frame := NewEnv(parent)
	if rest != "" && len(params) == 0 {
		frame.Set(rest, listOrNull(args, at), false)
		return frame, ""
	}
	if len(args) != len(params) {
		return nil, "expected " + strconv.Itoa(len(params)) + " arguments, found " + strconv.Itoa(len(args))
	}
	for i, p := range params {
		if !frame.Set(p, args[i], false) {
			return nil, "duplicate parameter '" + p + "'"
		}
	}
	return frame, ""
}

func listOrNull(items []Term, at Term) Term {
	if len(items) == 0 {
		return NullTerm(at.Off, at.Len)
	}
	return ListTerm(items, at.Off, at.Len)
}

// evalBody evaluates a sequence and returns the last result (Null for an
// empty body). Error results do not stop the sequence; the last value
// wins, matching the sibling policy for lists.
func evalBody(body []Term, env *Env) Term {
	result := NullTerm(0, 0)
	for _, b := range body {
		result = Evaluate(b, env)
	}
	return result
}

func evalIf(t Term, env *Env) Term {
	items := t.List()
	if len(items) < 3 || len(items) > 4 {
		return ErrorAt("if expects a test, a then-branch and an optional else-branch", t)
	}
	test := Evaluate(items[1], env)
	switch test.Kind {
	case TKError:
		return test
	case TKList, TKPlaceholder:
		// The test depends on generate-time values. Evaluate both
		// branches and rebuild the conditional for the generator.
		rebuilt := []Term{items[0], test, Evaluate(items[2], env)}
		if len(items) == 4 {
			rebuilt = append(rebuilt, Evaluate(items[3], env))
		}
		return ListTerm(rebuilt, t.Off, t.Len)
	}
	if test.Truthy() {
		return Evaluate(items[2], env)
	}
	if len(items) == 4 {
		return Evaluate(items[3], env)
	}
	return NullTerm(t.Off, t.Len)
}

func evalDefine(t Term, env *Env) Term {
	items := t.List()
	if len(items) < 3 {
		return ErrorAt("define expects a name and a value", t)
	}
	target := items[1]
	// (define (name params…) body…) sugars a lambda binding.
	if target.Kind == TKList {
		sig := target.List()
		if len(sig) == 0 || sig[0].Kind != TKIdentifier {
			return ErrorAt("define signature must start with a name", target)
		}
		params, rest, errMsg := paramNames(ListTerm(sig[1:], target.Off, target.Len))
		if errMsg != "" {
			return ErrorAt(errMsg, target)
		}
		fn := Term{Kind: TKLambda, Off: t.Off, Len: t.Len,
			Data: &Lambda{Params: params, Rest: rest, Body: items[2:], Env: env}}
		if !env.Set(sig[0].Text(), fn, false) {
			return ErrorAt("'"+sig[0].Text()+"' is already defined", target)
		}
		return fn
	}
	if target.Kind != TKIdentifier {
		return ErrorAt("define expects an identifier name", target)
	}
	if len(items) != 3 {
		return ErrorAt("define expects a name and a value", t)
	}
	v := Evaluate(items[2], env)
	if v.Kind == TKError {
		return v
	}
	if !env.Set(target.Text(), v, false) {
		return ErrorAt("'"+target.Text()+"' is already defined", target)
	}
	return v
}

func evalSet(t Term, env *Env) Term {
	items := t.List()
	if len(items) != 3 || items[1].Kind != TKIdentifier {
		return ErrorAt("set! expects an identifier and a value", t)
	}
	v := Evaluate(items[2], env)
	if v.Kind == TKError {
		return v
	}
	env.Set(items[1].Text(), v, true)
	return v
}

// evalClosure builds a lambda or macro value from a (lambda params body…)
// form. The parameter spec is a list of names, or a bare identifier that
// binds the whole argument list.
func evalClosure(t Term, env *Env, isMacro bool) Term {
	items := t.List()
	if len(items) < 3 {
		return ErrorAt(items[0].Text()+" expects a parameter list and a body", t)
	}
	params, rest, errMsg := paramNames(items[1])
	if errMsg != "" {
		return ErrorAt(errMsg, items[1])
	}
	if isMacro {
		return Term{Kind: TKMacro, Off: t.Off, Len: t.Len,
			Data: &Macro{Params: params, Rest: rest, Body: items[2:], Env: env}}
	}
	return Term{Kind: TKLambda, Off: t.Off, Len: t.Len,
		Data: &Lambda{Params: params, Rest: rest, Body: items[2:], Env: env}}
}

func paramNames(spec Term) (params []string, rest string, errMsg string) {
	switch spec.Kind {
	case TKIdentifier:
		return nil, spec.Text(), ""
	case TKNull:
		return nil, "", ""
	case TKList:
		for _, p := range spec.List() {
			if p.Kind != TKIdentifier {
				return nil, "", "parameter names must be identifiers"
			}
			params = append(params, p.Text())
		}
		return params, "", ""
	default:
		return nil, "", "parameter list must be a list of identifiers"
	}
}

func evalLet(t Term, env *Env) Term {
	items := t.List()
	if len(items) < 3 {
		return ErrorAt("let expects a binding list and a body", t)
	}
	bindings := items[1]
	if bindings.Kind != TKList && bindings.Kind != TKNull {
		return ErrorAt("let bindings must be a list", bindings)
	}
	// let desugars to an immediately-applied lambda: binding values
	// evaluate in the enclosing scope and cannot see their siblings.
	frame := NewEnv(env)
	for _, b := range bindings.List() {
		pair := b.List()
		if len(pair) != 2 || pair[0].Kind != TKIdentifier {
			return ErrorAt("let binding must be (name value)", b)
		}
		v := Evaluate(pair[1], env)
		if v.Kind == TKError {
			return v
		}
		frame.Set(pair[0].Text(), v, false)
	}
	return evalBody(items[2:], frame)
}

func evalShape(t Term, env *Env) Term {
	items := t.List()
	if len(items) < 2 || items[1].Kind != TKIdentifier {
		return ErrorAt("shape expects a kind identifier", t)
	}
	args := make([]Term, len(items)-2)
	for i, a := range items[2:] {
		args[i] = Evaluate(a, env)
	}
	return ShapeTerm(items[1].Text(), args, t.Off, t.Len)
}

// evalQuasi walks a quasi-quote template at the given nesting depth.
// unquote at depth 1 evaluates; deeper unquotes only unwind a level.
func evalQuasi(t Term, env *Env, depth int) Term {
	if t.Kind != TKList {
		return t
	}
	items := t.List()
	if t.HeadIs("unquote") {
		if len(items) != 2 {
			return ErrorAt("unquote expects exactly one argument", t)
		}
		if depth == 1 {
			return Evaluate(items[1], env)
		}
		return ListTerm([]Term{items[0], evalQuasi(items[1], env, depth-1)}, t.Off, t.Len)
	}
	if t.HeadIs("quasi-quote") && len(items) == 2 {
		return ListTerm([]Term{items[0], evalQuasi(items[1], env, depth+1)}, t.Off, t.Len)
	}

	var out []Term
	for _, c := range items {
		if c.HeadIs("unquote-splicing") {
			sub := c.List()
			if len(sub) != 2 {
				out = append(out, ErrorAt("unquote-splicing expects exactly one argument", c))
				continue
			}
			if depth > 1 {
				out = append(out, ListTerm([]Term{sub[0], evalQuasi(sub[1], env, depth-1)}, c.Off, c.Len))
				continue
			}
			spliced := Evaluate(sub[1], env)
			switch spliced.Kind {
			case TKList:
				out = append(out, spliced.List()...)
			case TKNull:
				// splices nothing
			case TKError:
				out = append(out, spliced)
			default:
				out = append(out, ErrorAt("unquote-splicing expects a list", c))
			}
			continue
		}
		out = append(out, evalQuasi(c, env, depth))
	}
	return listOrNull(out, t)
}
