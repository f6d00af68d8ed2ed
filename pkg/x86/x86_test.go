package x86

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nanopass-labs/nanoc/pkg/sexp"
)

func TestColor_InjectiveOverAllocatable(t *testing.T) {
	seen := make(map[int]Reg)
	for _, reg := range Allocatable {
		color, err := Color(reg)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, color, 0, "allocatable register %s must not get the reserved sentinel", reg)
		if prev, dup := seen[color]; dup {
			t.Errorf("registers %s and %s share color %d", prev, reg, color)
		}
		seen[color] = reg
	}
	assert.Len(t, seen, len(Allocatable))
}

func TestColor_ReservedSentinel(t *testing.T) {
	for _, reg := range []Reg{RAX, RSP} {
		color, err := Color(reg)
		require.NoError(t, err)
		assert.Equal(t, ReservedColor, color)
	}
}

func TestColor_UnknownRegister(t *testing.T) {
	_, err := Color("xmm0")
	require.Error(t, err)
	var notFound *sexp.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "xmm0", notFound.Key)

	// rbp and r11 are deliberately outside the color table.
	_, err = Color(RBP)
	assert.ErrorAs(t, err, &notFound)
	_, err = Color(R11)
	assert.ErrorAs(t, err, &notFound)
}

func TestColor_StableAcrossLookups(t *testing.T) {
	first, err := Color(RBX)
	require.NoError(t, err)
	second, err := Color(RBX)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 0, first, "rbx leads the allocatable catalog")
}

func TestCallingConvention(t *testing.T) {
	assert.Equal(t, []Reg{RDI, RSI, RDX, RCX, R8, R9}, ArgumentRegisters)

	// Caller-saved and callee-saved partition the 16 GPRs.
	assert.Len(t, CallerSaved, 9)
	assert.Len(t, CalleeSaved, 7)
	for reg := range CallerSaved {
		assert.False(t, CalleeSaved[reg], "%s cannot be both caller- and callee-saved", reg)
	}

	// Every allocatable register belongs to exactly one save class.
	for _, reg := range Allocatable {
		assert.True(t, CallerSaved[reg] || CalleeSaved[reg], "%s must have a save class", reg)
	}
}

func TestAlign(t *testing.T) {
	tests := []struct {
		n, alignment, want int64
	}{
		{10, 8, 16},
		{16, 8, 16},
		{0, 8, 0},
		{1, 16, 16},
		{17, 16, 32},
		{8, 1, 8},
	}
	for _, tt := range tests {
		got := Align(tt.n, tt.alignment)
		assert.Equal(t, tt.want, got, "Align(%d, %d)", tt.n, tt.alignment)
		assert.GreaterOrEqual(t, got, tt.n)
		assert.Zero(t, got%tt.alignment)
	}
}

func TestSymbolName(t *testing.T) {
	if runtime.GOOS == "darwin" {
		assert.Equal(t, "_main", SymbolName("main"))
	} else {
		assert.Equal(t, "main", SymbolName("main"))
	}
}
