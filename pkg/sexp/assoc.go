package sexp

import "fmt"

// NotFoundError reports a key missing from an association list (or any
// fixed lookup table that borrows this error kind).
type NotFoundError struct {
	Key string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("sexp: no entry for key %q", e.Key)
}

// Assoc scans an association list — a list of two-element (key value)
// lists with symbol keys — and returns the value of the first pair whose
// key matches. Later pairs with the same key are shadowed. Returns
// *NotFoundError when no pair matches or the list is empty.
func Assoc(key string, alist *Value) (*Value, error) {
	if alist == nil || alist.Kind != KindList {
		return nil, fmt.Errorf("sexp: Assoc over non-list value %s", alist)
	}
	for _, pair := range alist.List {
		if pair.Kind != KindList || len(pair.List) != 2 {
			return nil, fmt.Errorf("sexp: malformed association pair %s", pair)
		}
		head := pair.List[0]
		if head.Kind == KindSymbol && head.Symbol == key {
			return pair.List[1], nil
		}
	}
	return nil, &NotFoundError{Key: key}
}
