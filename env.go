package sdflang

// Env is a lexical environment frame. Lookups walk the parent chain;
// bindings are created in the frame Set is called on unless force walks
// to an existing owner.
type Env struct {
	parent     *Env
	table      map[string]Term
	generating bool // meaningful on the root frame only
}

// NewEnv creates a frame chained to parent. A nil parent makes a root.
func NewEnv(parent *Env) *Env {
	return &Env{parent: parent, table: make(map[string]Term)}
}

// Has reports whether name is bound, either in this frame alone
// (localOnly) or anywhere up the chain.
func (e *Env) Has(name string, localOnly bool) bool {
	for f := e; f != nil; f = f.parent {
		if _, ok := f.table[name]; ok {
			return true
		}
		if localOnly {
			return false
		}
	}
	return false
}

// Get resolves name against this frame and its ancestors.
func (e *Env) Get(name string) (Term, bool) {
	for f := e; f != nil; f = f.parent {
		if t, ok := f.table[name]; ok {
			return t, true
		}
	}
	return Term{}, false
}

// Set binds name in this frame. Without force the binding must not
// already exist locally (define semantics). With force an existing
// binding anywhere up the chain is replaced in its owning frame, else a
// local binding is created (set! semantics).
func (e *Env) Set(name string, t Term, force bool) bool {
	if force {
		for f := e; f != nil; f = f.parent {
			if _, ok := f.table[name]; ok {
				f.table[name] = t
				return true
			}
		}
		e.table[name] = t
		return true
	}
	if _, ok := e.table[name]; ok {
		return false
	}
	e.table[name] = t
	return true
}

// Generating reports whether this environment chain is running under the
// code generator. The flag lives on the root frame.
func (e *Env) Generating() bool {
	f := e
	for f.parent != nil {
		f = f.parent
	}
	return f.generating
}

// SetGenerating flips the generator flag on the root frame.
func (e *Env) SetGenerating(on bool) {
	f := e
	for f.parent != nil {
		f = f.parent
	}
	f.generating = on
}
