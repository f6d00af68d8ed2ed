// Package sexp implements the S-expression values that compiler passes
// exchange: a recursively nested tagged tree of integers, symbols, flat
// text, and lists. It also provides the small utility operations the
// pipeline and interpreters rely on (association lookup, tag dispatch).
package sexp

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind discriminates the variants of a Value.
type Kind int

const (
	KindInt Kind = iota
	KindSymbol
	KindText
	KindList
)

// Value is one node of a program representation tree. Exactly one of the
// payload fields is meaningful, selected by Kind. A KindText value is the
// flat-text case produced by a final code-generation pass.
type Value struct {
	Kind    Kind
	Integer int64
	Symbol  string
	Text    string
	List    []*Value
}

// Int returns an integer value.
func Int(n int64) *Value { return &Value{Kind: KindInt, Integer: n} }

// Sym returns a symbol value.
func Sym(name string) *Value { return &Value{Kind: KindSymbol, Symbol: name} }

// Text returns a flat-text value.
func Text(s string) *Value { return &Value{Kind: KindText, Text: s} }

// NewList returns a list value with the given elements.
func NewList(elems ...*Value) *Value { return &Value{Kind: KindList, List: elems} }

// String renders the value back to S-expression syntax. Text values render
// as quoted strings so diagnostics stay unambiguous.
func (v *Value) String() string {
	if v == nil {
		return "#<nil>"
	}
	switch v.Kind {
	case KindInt:
		return strconv.FormatInt(v.Integer, 10)
	case KindSymbol:
		return v.Symbol
	case KindText:
		return strconv.Quote(v.Text)
	case KindList:
		var sb strings.Builder
		sb.WriteByte('(')
		for i, e := range v.List {
			if i > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(e.String())
		}
		sb.WriteByte(')')
		return sb.String()
	}
	return fmt.Sprintf("#<bad kind %d>", v.Kind)
}

// Equal reports deep structural equality of two values.
func Equal(a, b *Value) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindInt:
		return a.Integer == b.Integer
	case KindSymbol:
		return a.Symbol == b.Symbol
	case KindText:
		return a.Text == b.Text
	case KindList:
		if len(a.List) != len(b.List) {
			return false
		}
		for i := range a.List {
			if !Equal(a.List[i], b.List[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// Tagged decomposes a value in tagged-tuple shape: a non-empty list whose
// head is a symbol. ok is false for anything else.
func (v *Value) Tagged() (tag string, args []*Value, ok bool) {
	if v == nil || v.Kind != KindList || len(v.List) == 0 {
		return "", nil, false
	}
	head := v.List[0]
	if head.Kind != KindSymbol {
		return "", nil, false
	}
	return head.Symbol, v.List[1:], true
}
