package sexp

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Parse reads a single S-expression from data. Trailing input after the
// first complete expression is ignored, which lets source files carry
// comments or notes below the program.
func Parse(data string) (*Value, error) {
	p := &parser{input: []rune(data)}
	v, err := p.read()
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, fmt.Errorf("sexp: empty input")
	}
	return v, nil
}

type parser struct {
	input []rune
	pos   int
}

func (p *parser) read() (*Value, error) {
	p.skipSpace()
	if p.pos >= len(p.input) {
		return nil, nil
	}
	c := p.input[p.pos]
	switch {
	case c == '(':
		p.pos++
		list := &Value{Kind: KindList}
		for {
			p.skipSpace()
			if p.pos >= len(p.input) {
				return nil, fmt.Errorf("sexp: unterminated list")
			}
			if p.input[p.pos] == ')' {
				p.pos++
				return list, nil
			}
			elem, err := p.read()
			if err != nil {
				return nil, err
			}
			if elem == nil {
				return nil, fmt.Errorf("sexp: unterminated list")
			}
			list.List = append(list.List, elem)
		}
	case c == ')':
		return nil, fmt.Errorf("sexp: unexpected ')' at offset %d", p.pos)
	case c == '"':
		return p.readString()
	default:
		return p.readAtom()
	}
}

func (p *parser) readString() (*Value, error) {
	start := p.pos
	p.pos++ // opening quote
	var sb strings.Builder
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if c == '"' {
			p.pos++
			return Text(sb.String()), nil
		}
		if c == '\\' && p.pos+1 < len(p.input) {
			p.pos++
			c = p.input[p.pos]
			switch c {
			case 'n':
				c = '\n'
			case 't':
				c = '\t'
			}
		}
		sb.WriteRune(c)
		p.pos++
	}
	return nil, fmt.Errorf("sexp: unterminated string at offset %d", start)
}

func (p *parser) readAtom() (*Value, error) {
	start := p.pos
	for p.pos < len(p.input) && isAtomRune(p.input[p.pos]) {
		p.pos++
	}
	if p.pos == start {
		return nil, fmt.Errorf("sexp: unexpected character %q at offset %d",
			p.input[p.pos], p.pos)
	}
	text := string(p.input[start:p.pos])
	n, err := strconv.ParseInt(text, 10, 64)
	if err == nil {
		return Int(n), nil
	}
	// A numeric-looking atom that fails to parse (int64 overflow) is a
	// bad literal, not a symbol.
	if looksNumeric(text) {
		return nil, fmt.Errorf("sexp: invalid integer literal %q at offset %d: %w",
			text, start, err)
	}
	return Sym(text), nil
}

func looksNumeric(text string) bool {
	digits := strings.TrimLeft(text, "+-")
	if digits == "" || len(text)-len(digits) > 1 {
		return false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (p *parser) skipSpace() {
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if unicode.IsSpace(c) {
			p.pos++
			continue
		}
		// Line comments run to end of line.
		if c == ';' {
			for p.pos < len(p.input) && p.input[p.pos] != '\n' {
				p.pos++
			}
			continue
		}
		return
	}
}

func isAtomRune(r rune) bool {
	if unicode.IsSpace(r) || r == '(' || r == ')' || r == '"' || r == ';' {
		return false
	}
	return unicode.IsLetter(r) || unicode.IsDigit(r) ||
		strings.ContainsRune("+-*/<>=!?._:&%", r)
}
