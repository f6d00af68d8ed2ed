// Package x86 describes the System V AMD64 calling convention as seen by
// the register allocator: argument-passing order, caller/callee-saved
// partitions, the allocatable general-register subset, and a stable color
// numbering used to seed graph coloring. The tables are fixed at compile
// time and never reconfigured.
package x86

import (
	"fmt"
	"runtime"

	"github.com/nanopass-labs/nanoc/pkg/sexp"
)

// Reg names a physical x86-64 general-purpose register.
type Reg string

const (
	RAX Reg = "rax"
	RBX Reg = "rbx"
	RCX Reg = "rcx"
	RDX Reg = "rdx"
	RSI Reg = "rsi"
	RDI Reg = "rdi"
	RBP Reg = "rbp"
	RSP Reg = "rsp"
	R8  Reg = "r8"
	R9  Reg = "r9"
	R10 Reg = "r10"
	R11 Reg = "r11"
	R12 Reg = "r12"
	R13 Reg = "r13"
	R14 Reg = "r14"
	R15 Reg = "r15"
)

// ArgumentRegisters receive the first six integer call arguments, in order.
var ArgumentRegisters = []Reg{RDI, RSI, RDX, RCX, R8, R9}

// CallerSaved registers may be clobbered by a call; the caller must save
// any it still needs.
var CallerSaved = map[Reg]bool{
	RAX: true, RCX: true, RDX: true, RSI: true, RDI: true,
	R8: true, R9: true, R10: true, R11: true,
}

// CalleeSaved registers must be preserved by any function that uses them.
var CalleeSaved = map[Reg]bool{
	RSP: true, RBP: true, RBX: true, R12: true, R13: true, R14: true, R15: true,
}

// Allocatable is the general-register subset the coloring allocator may
// hand out. rax and rsp are reserved (return / stack pointer), rbp anchors
// the frame, and r11 is kept free as patch-instruction scratch.
var Allocatable = []Reg{RBX, RCX, RDX, RSI, RDI, R8, R9, R10, R12, R13, R14}

// ReservedColor marks a register that exists in the color table but must
// never be produced by the allocator.
const ReservedColor = -1

// regColors is the fixed seed coloring: allocatable registers get
// 0..len(Allocatable)-1 in catalog order, reserved registers the sentinel.
var regColors = func() map[Reg]int {
	colors := map[Reg]int{
		RAX: ReservedColor,
		RSP: ReservedColor,
	}
	for i, reg := range Allocatable {
		colors[reg] = i
	}
	return colors
}()

// Color returns the fixed allocation color of a register. Reserved
// registers yield ReservedColor; registers outside the table yield an
// error wrapping *sexp.NotFoundError.
func Color(reg Reg) (int, error) {
	color, ok := regColors[reg]
	if !ok {
		return 0, fmt.Errorf("x86: no color for register: %w", &sexp.NotFoundError{Key: string(reg)})
	}
	return color, nil
}

// Align rounds n up to the next multiple of alignment; n is returned
// unchanged when it is already aligned. alignment must be positive.
func Align(n, alignment int64) int64 {
	if rem := n % alignment; rem != 0 {
		return n + alignment - rem
	}
	return n
}

// SymbolName adapts a linker symbol to the host platform's convention.
// Mach-O prefixes C symbols with an underscore; ELF uses them unchanged.
func SymbolName(name string) string {
	if runtime.GOOS == "darwin" {
		return "_" + name
	}
	return name
}
