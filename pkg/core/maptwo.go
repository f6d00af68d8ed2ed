package core

// MapTwo applies a dual-result function across xs, returning the two
// result sequences in input order. Empty input yields two empty, non-nil
// slices.
func MapTwo[T, A, B any](f func(T) (A, B), xs []T) ([]A, []B) {
	as := make([]A, len(xs))
	bs := make([]B, len(xs))
	for i, x := range xs {
		as[i], bs[i] = f(x)
	}
	return as, bs
}
