// stdlib.go: the self-hosted shape library
//
// The shape vocabulary is written in the language itself: every surface
// form is a quasiquote-template macro expanding to the primitive (shape
// kind …) special form, which the code generator lowers. The sources
// run in order during bootstrap, so later entries may use earlier ones.
// Bootstrapping touches nothing outside the target environment; two
// interpreter instances share no state.
package sdflang

import "fmt"

var stdlibSources = []string{
	`(define pi 3.141592653589793)`,
	`(define splat (lambda (v) (vec v)))`,
	`(define deg-rad (lambda (d) (/ (* d pi) 180)))`,
	`(define rad-deg (lambda (r) (/ (* r 180) pi)))`,

	// combinators
	`(define union (macro shapes
	   (quasi-quote (shape union (unquote-splicing shapes)))))`,
	`(define intersect (macro shapes
	   (quasi-quote (shape intersect (unquote-splicing shapes)))))`,
	`(define difference (macro shapes
	   (quasi-quote (shape difference (unquote-splicing shapes)))))`,
	`(define lerp (macro (factor a b)
	   (quasi-quote (shape lerp (unquote factor) (unquote a) (unquote b)))))`,
	`(define smooth (macro (factor s)
	   (quasi-quote (shape smooth (unquote factor) (unquote s)))))`,
	`(define rounded (macro (radius s)
	   (quasi-quote (shape rounded (unquote radius) (unquote s)))))`,

	// transforms
	`(define translate (macro (offset s)
	   (quasi-quote (shape translate (unquote offset) (unquote s)))))`,
	`(define translate-x (macro (d s)
	   (quasi-quote (shape translate (vec (unquote d) 0 0) (unquote s)))))`,
	`(define translate-y (macro (d s)
	   (quasi-quote (shape translate (vec 0 (unquote d) 0) (unquote s)))))`,
	`(define translate-z (macro (d s)
	   (quasi-quote (shape translate (vec 0 0 (unquote d)) (unquote s)))))`,
	`(define scale (macro (factor s)
	   (quasi-quote (shape scale (unquote factor) (unquote s)))))`,
	`(define rotate (macro (axis angle s)
	   (quasi-quote (shape rotate (unquote axis) (unquote angle) (unquote s)))))`,
	`(define rotate-x (macro (angle s)
	   (quasi-quote (shape rotate-x (unquote angle) (unquote s)))))`,
	`(define rotate-y (macro (angle s)
	   (quasi-quote (shape rotate-y (unquote angle) (unquote s)))))`,
	`(define rotate-z (macro (angle s)
	   (quasi-quote (shape rotate-z (unquote angle) (unquote s)))))`,
	`(define reflect (macro (normal s)
	   (quasi-quote (shape reflect (unquote normal) (unquote s)))))`,

	// modifiers
	`(define color (macro (rgb s)
	   (quasi-quote (shape color (unquote rgb) (unquote s)))))`,
	`(define hide (macro (s)
	   (quasi-quote (shape hide (unquote s)))))`,

	// primitives
	`(define sphere (macro (center radius)
	   (quasi-quote (shape sphere (unquote center) (unquote radius)))))`,
	`(define box (macro (center size)
	   (quasi-quote (shape box (unquote center) (unquote size)))))`,
	`(define torus (macro (center major minor)
	   (quasi-quote (shape torus (unquote center) (unquote major) (unquote minor)))))`,
	`(define plane (macro (normal offset)
	   (quasi-quote (shape plane (unquote normal) (unquote offset)))))`,
	`(define cylinder (macro (center radius height)
	   (quasi-quote (shape cylinder (unquote center) (unquote radius) (unquote height)))))`,
}

// Bootstrap evaluates the shape library into env. It only fails if the
// library sources themselves are broken.
func Bootstrap(env *Env) error {
	for _, src := range stdlibSources {
		terms, err := Read(src)
		if err != nil {
			return fmt.Errorf("bootstrap: %w", err)
		}
		for _, t := range terms {
			if r := Evaluate(t, env); r.Kind == TKError {
				return fmt.Errorf("bootstrap: %s", r.Text())
			}
		}
	}
	return nil
}
