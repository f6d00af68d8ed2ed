package driver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
)

// Backend is the narrow native-build collaborator: it turns generated
// assembly plus the fixed runtime object into an executable, and runs
// executables to completion. Both operations block; there is no timeout.
type Backend interface {
	AssembleAndLink(ctx context.Context, asmPath, runtimeObj, outPath string) error
	Run(ctx context.Context, exePath string, stdin io.Reader) (int, error)
}

// CCBackend shells out to the system C compiler to assemble and link.
type CCBackend struct {
	// CC is the compiler binary, "cc" when empty.
	CC string
}

func (b *CCBackend) cc() string {
	if b.CC == "" {
		return "cc"
	}
	return b.CC
}

// AssembleAndLink invokes the C compiler on the runtime object and the
// generated assembly. Any failure here — including failure to launch the
// tool at all — is fatal to the whole batch.
func (b *CCBackend) AssembleAndLink(ctx context.Context, asmPath, runtimeObj, outPath string) error {
	cmd := exec.CommandContext(ctx, b.cc(), "-g", runtimeObj, asmPath, "-o", outPath)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s %s: %w\n%s", b.cc(), asmPath, err, out)
	}
	return nil
}

// Run executes a compiled test binary with the given stdin (nil for none)
// and reports its exit code. A non-zero exit is a result, not an error;
// err is non-nil only when the binary could not be run at all.
func (b *CCBackend) Run(ctx context.Context, exePath string, stdin io.Reader) (int, error) {
	cmd := exec.CommandContext(ctx, exePath)
	cmd.Stdin = stdin
	err := cmd.Run()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() >= 0 {
		return exitErr.ExitCode(), nil
	}
	return -1, fmt.Errorf("running %s: %w", exePath, err)
}
