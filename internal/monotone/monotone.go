// Package monotone enumerates monotone sequences under per-position range
// constraints.
package monotone

import "iter"

// Range is the half-open interval [Start, End).
type Range struct {
	Start int
	End   int
}

// Sequences yields, in lexicographic order, every sequence s with
// s[i] in constraints[i] that is non-decreasing, or strictly increasing when
// strict is set. Each yielded slice is freshly allocated.
func Sequences(strict bool, constraints []Range) iter.Seq[[]int] {
	return func(yield func([]int) bool) {
		cur := make([]int, len(constraints))
		var walk func(i, floor int) bool
		walk = func(i, floor int) bool {
			if i == len(constraints) {
				out := make([]int, len(cur))
				copy(out, cur)
				return yield(out)
			}
			for v := max(floor, constraints[i].Start); v < constraints[i].End; v++ {
				cur[i] = v
				next := v
				if strict {
					next = v + 1
				}
				if !walk(i+1, next) {
					return false
				}
			}
			return true
		}
		walk(0, 0)
	}
}

// All collects Sequences into a slice.
func All(strict bool, constraints []Range) [][]int {
	var out [][]int
	for s := range Sequences(strict, constraints) {
		out = append(out, s)
	}
	return out
}
