// Package core holds the shared types of the compiler harness: pass
// descriptors, test identity, and the error taxonomy the pipeline and
// driver report.
package core

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/nanopass-labs/nanoc/pkg/sexp"
)

// TransformFunc is one compiler pass: a pure tree-to-tree function. A
// final code-generation pass instead yields a flat sexp.KindText value.
type TransformFunc func(prog *sexp.Value) (*sexp.Value, error)

// InterpFunc is a reference interpreter for the representation a pass
// produces. stdin carries the test's redirected input file, or is nil when
// the test has none.
type InterpFunc func(prog *sexp.Value, stdin io.Reader) (*sexp.Value, error)

// Pass describes one stage of a pipeline. Interp is nil for silent
// transformations that do not participate in differential checking.
type Pass struct {
	Name      string
	Transform TransformFunc
	Interp    InterpFunc
}

// TestRef identifies one test: a family name plus a numeric index.
type TestRef struct {
	Family string
	Index  int
}

// Name returns the canonical test name, family_index.
func (t TestRef) Name() string {
	return fmt.Sprintf("%s_%d", t.Family, t.Index)
}

// SourcePath returns the test's source program under testsDir.
func (t TestRef) SourcePath(testsDir string) string {
	return filepath.Join(testsDir, t.Name()+".rkt")
}

// InputPath returns the test's optional stdin file under testsDir.
func (t TestRef) InputPath(testsDir string) string {
	return filepath.Join(testsDir, t.Name()+".in")
}

// AsmPath returns the test's generated assembly file under testsDir.
func (t TestRef) AsmPath(testsDir string) string {
	return filepath.Join(testsDir, t.Name()+".s")
}

// ExpandFamily builds the TestRefs of a family for the given indices, in
// order.
func ExpandFamily(family string, indices []int) []TestRef {
	refs := make([]TestRef, len(indices))
	for i, n := range indices {
		refs[i] = TestRef{Family: family, Index: n}
	}
	return refs
}

// SuccessExitCode is the sentinel a compiled test binary must exit with to
// be counted as passing.
const SuccessExitCode = 42
