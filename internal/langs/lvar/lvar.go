// Package lvar is the let/arithmetic example language shipped with the
// harness: integers, variables, read, negation, addition, and let
// bindings, wrapped as (program <exp>). It supplies the default pipeline
// the CLI registers — a reference interpreter, an alpha-renaming pass, and
// a naive stack-slot code generator — so the harness runs end to end out
// of the box. The core contracts do not depend on it.
package lvar

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/nanopass-labs/nanoc/pkg/core"
	"github.com/nanopass-labs/nanoc/pkg/sexp"
	"github.com/nanopass-labs/nanoc/pkg/x86"
)

// Passes returns the lvar pipeline in application order. The first two
// passes declare the reference interpreter, so uniquify is differentially
// checked against the source program; codegen ends the pipeline with flat
// assembly text.
func Passes() []core.Pass {
	return []core.Pass{
		{Name: "validate", Transform: validate, Interp: Interp},
		{Name: "uniquify", Transform: Uniquify, Interp: Interp},
		{Name: "codegen", Transform: Codegen},
	}
}

func programBody(prog *sexp.Value) (*sexp.Value, error) {
	tag, args, ok := prog.Tagged()
	if !ok || tag != "program" || len(args) != 1 {
		return nil, fmt.Errorf("lvar: expected (program <exp>), got %s", prog)
	}
	return args[0], nil
}

// validate checks the (program <exp>) wrapper and every operator's
// arity, so malformed programs fail in the first pass even on the
// transforms-only compile path.
func validate(prog *sexp.Value) (*sexp.Value, error) {
	body, err := programBody(prog)
	if err != nil {
		return nil, err
	}
	if err := checkExpr(body); err != nil {
		return nil, err
	}
	return prog, nil
}

func checkExpr(e *sexp.Value) error {
	switch e.Kind {
	case sexp.KindInt, sexp.KindSymbol:
		return nil
	}
	tag, args, ok := e.Tagged()
	if !ok {
		return fmt.Errorf("lvar: unsupported form %s", e)
	}
	switch tag {
	case "read":
		if len(args) != 0 {
			return fmt.Errorf("lvar: read takes no arguments")
		}
		return nil
	case "-":
		if len(args) != 1 {
			return fmt.Errorf("lvar: - takes one argument")
		}
		return checkExpr(args[0])
	case "+":
		if len(args) != 2 {
			return fmt.Errorf("lvar: + takes two arguments")
		}
		if err := checkExpr(args[0]); err != nil {
			return err
		}
		return checkExpr(args[1])
	case "let":
		_, init, letBody, err := letParts(args)
		if err != nil {
			return err
		}
		if err := checkExpr(init); err != nil {
			return err
		}
		return checkExpr(letBody)
	}
	return fmt.Errorf("lvar: unsupported form %s", e)
}

//----------------------------------------------------------------
// Reference interpreter

// Interp evaluates a program, reading integers from stdin for (read).
// The environment is itself an association list, so variable lookup is
// first-match and let bindings shadow by prepending.
func Interp(prog *sexp.Value, stdin io.Reader) (*sexp.Value, error) {
	body, err := programBody(prog)
	if err != nil {
		return nil, err
	}
	ev := newEvaluator(stdin)
	return ev.eval(body, sexp.NewList())
}

type evaluator struct {
	in       *bufio.Reader
	dispatch *sexp.Dispatcher
}

func newEvaluator(stdin io.Reader) *evaluator {
	ev := &evaluator{}
	if stdin != nil {
		ev.in = bufio.NewReader(stdin)
	}
	ev.dispatch = sexp.NewDispatcher(map[string]sexp.Handler{
		"read": ev.evalRead,
		"-":    ev.evalNeg,
		"+":    ev.evalAdd,
		"let":  ev.evalLet,
	})
	return ev
}

// eval reduces an expression to an integer value. Compound forms go
// through the dispatcher with the environment as the extra leading
// argument.
func (ev *evaluator) eval(e *sexp.Value, env *sexp.Value) (*sexp.Value, error) {
	switch e.Kind {
	case sexp.KindInt:
		return e, nil
	case sexp.KindSymbol:
		return sexp.Assoc(e.Symbol, env)
	default:
		return ev.dispatch.Dispatch(e, env)
	}
}

func (ev *evaluator) evalRead(args []*sexp.Value) (*sexp.Value, error) {
	if len(args) != 1 { // env only
		return nil, fmt.Errorf("lvar: read takes no arguments")
	}
	if ev.in == nil {
		return nil, fmt.Errorf("lvar: (read) with no input redirected")
	}
	var n int64
	if _, err := fmt.Fscan(ev.in, &n); err != nil {
		return nil, fmt.Errorf("lvar: reading input: %w", err)
	}
	return sexp.Int(n), nil
}

func (ev *evaluator) evalNeg(args []*sexp.Value) (*sexp.Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("lvar: - takes one argument")
	}
	v, err := ev.eval(args[1], args[0])
	if err != nil {
		return nil, err
	}
	return sexp.Int(-v.Integer), nil
}

func (ev *evaluator) evalAdd(args []*sexp.Value) (*sexp.Value, error) {
	if len(args) != 3 {
		return nil, fmt.Errorf("lvar: + takes two arguments")
	}
	env := args[0]
	a, err := ev.eval(args[1], env)
	if err != nil {
		return nil, err
	}
	b, err := ev.eval(args[2], env)
	if err != nil {
		return nil, err
	}
	return sexp.Int(a.Integer + b.Integer), nil
}

func (ev *evaluator) evalLet(args []*sexp.Value) (*sexp.Value, error) {
	env := args[0]
	name, init, body, err := letParts(args[1:])
	if err != nil {
		return nil, err
	}
	v, err := ev.eval(init, env)
	if err != nil {
		return nil, err
	}
	pair := sexp.NewList(sexp.Sym(name), v)
	extended := sexp.NewList(append([]*sexp.Value{pair}, env.List...)...)
	return ev.eval(body, extended)
}

// letParts decomposes (let ((x init)) body) argument lists.
func letParts(args []*sexp.Value) (name string, init, body *sexp.Value, err error) {
	if len(args) != 2 || args[0].Kind != sexp.KindList || len(args[0].List) != 1 {
		return "", nil, nil, fmt.Errorf("lvar: malformed let")
	}
	binding := args[0].List[0]
	if binding.Kind != sexp.KindList || len(binding.List) != 2 ||
		binding.List[0].Kind != sexp.KindSymbol {
		return "", nil, nil, fmt.Errorf("lvar: malformed let binding %s", binding)
	}
	return binding.List[0].Symbol, binding.List[1], args[1], nil
}

//----------------------------------------------------------------
// Uniquify pass

// Uniquify alpha-renames every let-bound variable to a fresh name so
// shadowing disappears and later passes can treat names as unique.
func Uniquify(prog *sexp.Value) (*sexp.Value, error) {
	body, err := programBody(prog)
	if err != nil {
		return nil, err
	}
	u := &uniquifier{}
	renamed, err := u.rename(body, map[string]string{})
	if err != nil {
		return nil, err
	}
	return sexp.NewList(sexp.Sym("program"), renamed), nil
}

type uniquifier struct {
	counter int
}

func (u *uniquifier) fresh(name string) string {
	u.counter++
	return fmt.Sprintf("%s.%d", name, u.counter)
}

func (u *uniquifier) rename(e *sexp.Value, scope map[string]string) (*sexp.Value, error) {
	switch e.Kind {
	case sexp.KindInt:
		return e, nil
	case sexp.KindSymbol:
		fresh, ok := scope[e.Symbol]
		if !ok {
			return nil, fmt.Errorf("lvar: unbound variable %s", e.Symbol)
		}
		return sexp.Sym(fresh), nil
	}
	tag, args, ok := e.Tagged()
	if !ok {
		return nil, fmt.Errorf("lvar: unsupported form %s", e)
	}
	switch tag {
	case "read":
		return e, nil
	case "-", "+":
		renamed := make([]*sexp.Value, 0, len(args)+1)
		renamed = append(renamed, sexp.Sym(tag))
		for _, arg := range args {
			r, err := u.rename(arg, scope)
			if err != nil {
				return nil, err
			}
			renamed = append(renamed, r)
		}
		return sexp.NewList(renamed...), nil
	case "let":
		name, init, body, err := letParts(args)
		if err != nil {
			return nil, err
		}
		renamedInit, err := u.rename(init, scope)
		if err != nil {
			return nil, err
		}
		fresh := u.fresh(name)
		inner := make(map[string]string, len(scope)+1)
		for k, v := range scope {
			inner[k] = v
		}
		inner[name] = fresh
		renamedBody, err := u.rename(body, inner)
		if err != nil {
			return nil, err
		}
		return sexp.NewList(sexp.Sym("let"),
			sexp.NewList(sexp.NewList(sexp.Sym(fresh), renamedInit)),
			renamedBody), nil
	}
	return nil, fmt.Errorf("lvar: unsupported form %s", e)
}

//----------------------------------------------------------------
// Code generation

// Codegen emits AT&T x86-64 for a uniquified program as a flat text
// value. Every let variable and addition temporary gets a stack slot; the
// frame is rounded up to the 16-byte call alignment. The program's value
// is left in %rax and handed to the runtime's print_int before main
// returns it as the exit code.
func Codegen(prog *sexp.Value) (*sexp.Value, error) {
	body, err := programBody(prog)
	if err != nil {
		return nil, err
	}
	g := &codegen{slots: map[string]int{}}
	if err := g.emitExpr(body); err != nil {
		return nil, err
	}

	frame := x86.Align(int64(len(g.slots))*8, 16)
	main := x86.SymbolName("main")
	var sb strings.Builder
	fmt.Fprintf(&sb, "\t.globl %s\n", main)
	fmt.Fprintf(&sb, "%s:\n", main)
	sb.WriteString("\tpushq %rbp\n")
	sb.WriteString("\tmovq %rsp, %rbp\n")
	if frame > 0 {
		fmt.Fprintf(&sb, "\tsubq $%d, %%rsp\n", frame)
	}
	for _, instr := range g.instrs {
		sb.WriteString("\t" + instr + "\n")
	}
	fmt.Fprintf(&sb, "\tmovq %%rax, %%%s\n", x86.ArgumentRegisters[0])
	// Double push keeps %rsp 16-byte aligned at the call while saving the
	// result, which becomes main's exit code.
	sb.WriteString("\tpushq %rax\n")
	sb.WriteString("\tpushq %rax\n")
	fmt.Fprintf(&sb, "\tcallq %s\n", x86.SymbolName("print_int"))
	sb.WriteString("\tpopq %rax\n")
	sb.WriteString("\tpopq %rax\n")
	sb.WriteString("\tmovq %rbp, %rsp\n")
	sb.WriteString("\tpopq %rbp\n")
	sb.WriteString("\tretq")
	return sexp.Text(sb.String()), nil
}

type codegen struct {
	instrs []string
	slots  map[string]int
	temps  int
}

func (g *codegen) emit(format string, args ...any) {
	g.instrs = append(g.instrs, fmt.Sprintf(format, args...))
}

func (g *codegen) slot(name string) int {
	off, ok := g.slots[name]
	if !ok {
		off = (len(g.slots) + 1) * 8
		g.slots[name] = off
	}
	return off
}

// emitExpr leaves the expression's value in %rax.
func (g *codegen) emitExpr(e *sexp.Value) error {
	switch e.Kind {
	case sexp.KindInt:
		g.emit("movq $%d, %%rax", e.Integer)
		return nil
	case sexp.KindSymbol:
		off, ok := g.slots[e.Symbol]
		if !ok {
			return fmt.Errorf("lvar: codegen saw unbound variable %s", e.Symbol)
		}
		g.emit("movq -%d(%%rbp), %%rax", off)
		return nil
	}
	tag, args, ok := e.Tagged()
	if !ok {
		return fmt.Errorf("lvar: codegen cannot handle %s", e)
	}
	switch tag {
	case "read":
		g.emit("callq %s", x86.SymbolName("read_int"))
		return nil
	case "-":
		if len(args) != 1 {
			return fmt.Errorf("lvar: - takes one argument")
		}
		if err := g.emitExpr(args[0]); err != nil {
			return err
		}
		g.emit("negq %%rax")
		return nil
	case "+":
		if len(args) != 2 {
			return fmt.Errorf("lvar: + takes two arguments")
		}
		if err := g.emitExpr(args[0]); err != nil {
			return err
		}
		g.temps++
		tmp := g.slot(fmt.Sprintf("tmp.%d", g.temps))
		g.emit("movq %%rax, -%d(%%rbp)", tmp)
		if err := g.emitExpr(args[1]); err != nil {
			return err
		}
		g.emit("addq -%d(%%rbp), %%rax", tmp)
		return nil
	case "let":
		name, init, body, err := letParts(args)
		if err != nil {
			return err
		}
		if err := g.emitExpr(init); err != nil {
			return err
		}
		g.emit("movq %%rax, -%d(%%rbp)", g.slot(name))
		return g.emitExpr(body)
	}
	return fmt.Errorf("lvar: codegen cannot handle %s", e)
}
