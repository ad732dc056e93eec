// Package sdflang implements a small Lisp-like language for describing
// 3D signed-distance-field scenes, together with a compiler backend that
// turns evaluated scene descriptions into WGSL shader fragments.
//
// The pipeline has three stages:
//
//	source text --Read--> term tree --Evaluate--> evaluated term tree
//	            --Generate--> {shader code, type, dependencies, uniforms}
//
// Reading produces a tree of immutable Terms. Evaluation runs macro
// expansion, constant folding and shape construction in lexically scoped
// environments; failures are recorded as in-tree error terms so a single
// pass can report every independent diagnostic in a buffer. Generation
// compiles the evaluated tree into WGSL expression fragments, assigning
// uniform-buffer slots to placeholder identifiers and collecting the set
// of sdf helper functions the surrounding shader template must provide.
package sdflang

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'sdflang'.
func tracer() tracing.Trace {
	return tracing.Select("sdflang")
}
