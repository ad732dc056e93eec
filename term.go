// term.go
//
// The tagged term representation shared by the reader, the evaluator and
// the code generator. A Term is a closed sum: the Kind tag determines
// which Go value is stored in Data. Lists keep their children in a
// contiguous []Term slice. Every term carries a source (offset, length)
// pair for diagnostics; synthesized terms carry (0, 0).
//
// Term trees produced by the reader are never mutated. The evaluator and
// the generator always construct fresh terms.
package sdflang

import (
	"math"
	"strconv"
)

// TermKind enumerates the variants of the Term sum type.
type TermKind int

const (
	TKNull        TermKind = iota // empty list (no payload)
	TKList                        // []Term
	TKIdentifier                  // string
	TKNumber                      // float64
	TKVector                      // Vec3
	TKShape                       // *Shape
	TKLambda                      // *Lambda
	TKMacro                       // *Macro
	TKInternal                    // *Internal
	TKError                       // string (message)
	TKPlaceholder                 // string, including the leading ':'
)

func (k TermKind) String() string {
	switch k {
	case TKNull:
		return "null"
	case TKList:
		return "list"
	case TKIdentifier:
		return "identifier"
	case TKNumber:
		return "number"
	case TKVector:
		return "vector"
	case TKShape:
		return "shape"
	case TKLambda:
		return "lambda"
	case TKMacro:
		return "macro"
	case TKInternal:
		return "internal"
	case TKError:
		return "error"
	case TKPlaceholder:
		return "placeholder"
	default:
		return "unknown"
	}
}

// Term is the universal carrier for both syntax and values. The Kind tag
// determines which case of Data is active (see TermKind).
type Term struct {
	Kind TermKind
	Off  int // byte offset into the source, 0 for synthesized terms
	Len  int // byte length in the source, 0 for synthesized terms
	Data interface{}
}

// Vec3 is the immutable three-component vector value. All operations
// return new vectors; payloads are never mutated in place.
type Vec3 struct {
	X, Y, Z float64
}

// Shape is an evaluated shape node: a combinator or primitive kind plus
// its (already evaluated) argument terms.
type Shape struct {
	Kind string
	Args []Term
}

// Lambda is a user function: parameter names, an optional rest parameter
// binding surplus arguments as a list, a body sequence and the captured
// lexical environment.
type Lambda struct {
	Params []string
	Rest   string // "" when absent
	Body   []Term
	Env    *Env
}

// Macro expands before evaluation: arguments are bound unevaluated, the
// body is evaluated once to produce the expansion, and the expansion is
// evaluated again in the caller's environment.
type Macro struct {
	Params []string
	Rest   string
	Body   []Term
	Env    *Env
}

// --- constructors -----------------------------------------------------------

func NullTerm(off, length int) Term {
	return Term{Kind: TKNull, Off: off, Len: length}
}

func ListTerm(items []Term, off, length int) Term {
	return Term{Kind: TKList, Off: off, Len: length, Data: items}
}

func Ident(name string, off, length int) Term {
	return Term{Kind: TKIdentifier, Off: off, Len: length, Data: name}
}

func NumberTerm(v float64, off, length int) Term {
	return Term{Kind: TKNumber, Off: off, Len: length, Data: v}
}

func VectorTerm(v Vec3, off, length int) Term {
	return Term{Kind: TKVector, Off: off, Len: length, Data: v}
}

func ShapeTerm(kind string, args []Term, off, length int) Term {
	return Term{Kind: TKShape, Off: off, Len: length, Data: &Shape{Kind: kind, Args: args}}
}

func PlaceholderTerm(name string, off, length int) Term {
	return Term{Kind: TKPlaceholder, Off: off, Len: length, Data: name}
}

// ErrorTerm builds an in-tree diagnostic positioned at the offending
// source range.
func ErrorTerm(msg string, off, length int) Term {
	return Term{Kind: TKError, Off: off, Len: length, Data: msg}
}

// ErrorAt positions a diagnostic at an existing term.
func ErrorAt(msg string, at Term) Term {
	return ErrorTerm(msg, at.Off, at.Len)
}

// --- accessors --------------------------------------------------------------

// List returns the children of a list term (nil for any other kind).
func (t Term) List() []Term {
	if t.Kind != TKList {
		return nil
	}
	return t.Data.([]Term)
}

// Text returns the string payload of identifier, placeholder and error
// terms.
func (t Term) Text() string {
	switch t.Kind {
	case TKIdentifier, TKPlaceholder, TKError:
		return t.Data.(string)
	}
	return ""
}

func (t Term) Num() float64 {
	if t.Kind != TKNumber {
		return 0
	}
	return t.Data.(float64)
}

func (t Term) Vec() Vec3 {
	if t.Kind != TKVector {
		return Vec3{}
	}
	return t.Data.(Vec3)
}

func (t Term) Shape() *Shape {
	if t.Kind != TKShape {
		return nil
	}
	return t.Data.(*Shape)
}

// IsValue reports whether t is a concrete numeric value that builtins can
// fold at evaluation time.
func (t Term) IsValue() bool {
	return t.Kind == TKNumber || t.Kind == TKVector
}

// Truthy implements the conditional test: everything is true except the
// empty list and the number zero.
func (t Term) Truthy() bool {
	switch t.Kind {
	case TKNull:
		return false
	case TKNumber:
		return t.Num() != 0
	}
	return true
}

// HeadIs reports whether t is a list whose head is the named identifier.
func (t Term) HeadIs(name string) bool {
	items := t.List()
	return len(items) > 0 && items[0].Kind == TKIdentifier && items[0].Text() == name
}

// CollectErrors walks a term tree and gathers every error term in source
// order. Evaluation embeds diagnostics in its result tree rather than
// aborting, so one pass over a buffer reports all independent failures.
func CollectErrors(t Term) []Term {
	var out []Term
	var walk func(Term)
	walk = func(t Term) {
		switch t.Kind {
		case TKError:
			out = append(out, t)
		case TKList:
			for _, c := range t.List() {
				walk(c)
			}
		case TKShape:
			for _, c := range t.Shape().Args {
				walk(c)
			}
		}
	}
	walk(t)
	return out
}

// --- Vec3 operations --------------------------------------------------------

// Splat broadcasts a scalar to all three components.
func Splat(v float64) Vec3 { return Vec3{v, v, v} }

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Mul(o Vec3) Vec3 { return Vec3{v.X * o.X, v.Y * o.Y, v.Z * o.Z} }
func (v Vec3) Div(o Vec3) Vec3 { return Vec3{v.X / o.X, v.Y / o.Y, v.Z / o.Z} }

func (v Vec3) Dot(o Vec3) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

func (v Vec3) Length() float64 { return math.Sqrt(v.Dot(v)) }

func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l == 0 {
		return Vec3{}
	}
	return Vec3{v.X / l, v.Y / l, v.Z / l}
}

// Map applies f to each component, producing a new vector.
func (v Vec3) Map(f func(float64) float64) Vec3 {
	return Vec3{f(v.X), f(v.Y), f(v.Z)}
}

// Zip combines two vectors component-wise, producing a new vector.
func (v Vec3) Zip(o Vec3, f func(a, b float64) float64) Vec3 {
	return Vec3{f(v.X, o.X), f(v.Y, o.Y), f(v.Z, o.Z)}
}

// Comp returns component i (0=x, 1=y, 2=z).
func (v Vec3) Comp(i int) float64 {
	switch i {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// formatNumber renders a float the way the code generator and the printer
// emit numeric literals: shortest plain decimal form, no exponent.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
