// interpreter.go: the public pipeline
//
// An Interpreter owns a root environment with the native builtins and
// the self-hosted shape library installed, plus the GenerateContext of
// the current compilation pass. Read, Evaluate and Generate expose the
// three stages individually; CompileSource runs a whole buffer through
// all three, one result per top-level expression. Each call to
// CompileSource starts a fresh pass context, so uniform slots and the
// dependency set are stable within a pass and independent across
// passes.
package sdflang

// Compiled is the result of compiling one top-level expression. When
// Errors is non-empty the other fields are zero.
type Compiled struct {
	Code    string
	Type    FragmentType
	Prelude []string // statements the Code expression depends on
	Errors  []*Error
}

// Interpreter is one independent instance of the language. Instances
// share nothing; bootstrapping one never leaks into another.
type Interpreter struct {
	Root *Env
	ctx  *GenerateContext
}

// NewInterpreter creates an interpreter with natives and the shape
// library installed.
func NewInterpreter() (*Interpreter, error) {
	root := NewEnv(nil)
	InstallBuiltins(root)
	if err := Bootstrap(root); err != nil {
		return nil, err
	}
	return &Interpreter{Root: root, ctx: NewGenerateContext()}, nil
}

// Read parses src into its top-level terms.
func (ip *Interpreter) Read(src string) ([]Term, error) {
	return Read(src)
}

// Evaluate reduces a term in the root environment.
func (ip *Interpreter) Evaluate(t Term) Term {
	return Evaluate(t, ip.Root)
}

// Generate lowers a term with the interpreter's current pass context.
// The returned error is a positioned *Error.
func (ip *Interpreter) Generate(t Term) (frag Fragment, err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(*Error); ok {
				err = e
				return
			}
			panic(r)
		}
	}()
	ip.Root.SetGenerating(true)
	defer ip.Root.SetGenerating(false)
	frag = generate(t, ip.Root, ip.ctx)
	return frag, nil
}

// Uniforms lists placeholder names of the current pass in slot order.
func (ip *Interpreter) Uniforms() []string {
	return ip.ctx.Uniforms()
}

// Dependencies lists the shader helper functions the current pass
// requires, sorted.
func (ip *Interpreter) Dependencies() []string {
	return ip.ctx.Dependencies()
}

// CompileSource runs a whole buffer through the pipeline, producing one
// Compiled per top-level expression. A failing expression reports its
// diagnostics and does not stop its siblings. The pass context is
// reset, so placeholder slots restart at zero.
func (ip *Interpreter) CompileSource(src string) []Compiled {
	ip.ctx = NewGenerateContext()

	terms, err := Read(src)
	if err != nil {
		if e, ok := err.(*Error); ok {
			return []Compiled{{Errors: []*Error{e}}}
		}
		return []Compiled{{Errors: []*Error{{Msg: err.Error()}}}}
	}

	tracer().Debugf("compiling %d top-level expressions", len(terms))
	out := make([]Compiled, 0, len(terms))
	for _, t := range terms {
		evaluated := ip.Evaluate(t)
		if errs := CollectErrors(evaluated); len(errs) > 0 {
			c := Compiled{}
			for _, e := range errs {
				c.Errors = append(c.Errors, AsError(e))
			}
			out = append(out, c)
			continue
		}

		mark := len(ip.ctx.Lines)
		frag, err := ip.Generate(evaluated)
		if err != nil {
			ip.ctx.Lines = ip.ctx.Lines[:mark]
			out = append(out, Compiled{Errors: []*Error{err.(*Error)}})
			continue
		}
		prelude := append([]string(nil), ip.ctx.Lines[mark:]...)
		out = append(out, Compiled{Code: frag.Code, Type: frag.Type, Prelude: prelude})
	}
	return out
}

// IsIncomplete reports whether src fails to parse only because a list
// is still open. The REPL uses it to decide between continuing a
// multi-line form and reporting an error.
func IsIncomplete(src string) bool {
	tokens, err := Tokenize(src)
	if err != nil {
		return false
	}
	p := NewParser()
	_, err = p.Parse(tokens)
	if err == nil {
		return false
	}
	if e, ok := err.(*Error); ok {
		return e.Msg == "unterminated list"
	}
	return false
}
