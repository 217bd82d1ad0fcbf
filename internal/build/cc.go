package build

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// CCompiler returns the C compiler the go command would use for cgo.
func CCompiler(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, "go", "env", "CC").Output()
	if err != nil {
		return "", fmt.Errorf("build: go env CC failed: %w", err)
	}

	fields := strings.Fields(string(out))
	if len(fields) == 0 {
		return "", fmt.Errorf("build: no C compiler configured")
	}

	cc, err := exec.LookPath(fields[0])
	if err != nil {
		return "", fmt.Errorf("build: C compiler %q not found: %w", fields[0], err)
	}

	return cc, nil
}

// CSharedLibrary compiles C sources straight into a shared library with
// cc. includeDir may be empty.
func CSharedLibrary(ctx context.Context, cc, out, includeDir string, sources ...string) error {
	args := []string{"-shared", "-fPIC", "-o", out}
	if includeDir != "" {
		args = append(args, "-I", includeDir)
	}
	args = append(args, sources...)

	return runCC(ctx, cc, args)
}

// CProgram compiles and links a C program that may dlopen libraries.
func CProgram(ctx context.Context, cc, out, includeDir string, sources ...string) error {
	args := []string{"-o", out}
	if includeDir != "" {
		args = append(args, "-I", includeDir)
	}
	args = append(args, sources...)
	if runtime.GOOS == "linux" {
		args = append(args, "-ldl")
	}

	return runCC(ctx, cc, args)
}

func runCC(ctx context.Context, cc string, args []string) error {
	cmd := exec.CommandContext(ctx, cc, args...)

	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("build: %s failed: %w\n%s", cc, err, strings.TrimSpace(output.String()))
	}
	return nil
}
