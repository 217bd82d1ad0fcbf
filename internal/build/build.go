// Package build produces fixture shared libraries with the Go toolchain.
package build

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Options selects what to build and where to put it.
type Options struct {
	// Package is the import path or directory of a main package with
	// //export functions, e.g. "./cmd/foolib".
	Package string
	// Name is the library base name; "foo" becomes libfoo.so on linux.
	Name string
	// OutDir receives the library and its generated C header.
	OutDir string
	// Dir is the working directory for the go command. Empty means the
	// current directory.
	Dir string
	// GoBin defaults to "go".
	GoBin string
}

// SharedLibrary builds opts.Package with -buildmode=c-shared and returns
// the path of the produced library.
func SharedLibrary(ctx context.Context, opts Options) (string, error) {
	if opts.Package == "" {
		return "", fmt.Errorf("build: package is required")
	}
	if opts.Name == "" {
		return "", fmt.Errorf("build: library name is required")
	}

	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return "", fmt.Errorf("build: failed to create output dir: %w", err)
	}

	out, err := filepath.Abs(filepath.Join(opts.OutDir, LibraryFileName(opts.Name)))
	if err != nil {
		return "", fmt.Errorf("build: could not resolve output path: %w", err)
	}

	cmd := exec.CommandContext(ctx, goBin(opts), "build", "-buildmode=c-shared", "-o", out, opts.Package)
	cmd.Dir = opts.Dir
	cmd.Env = append(os.Environ(), "CGO_ENABLED=1")

	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("build: go build %s failed: %w\n%s", opts.Package, err, strings.TrimSpace(output.String()))
	}

	return out, nil
}

// CgoAvailable reports whether the go command can build cgo packages:
// CGO_ENABLED must resolve to 1 and the configured C compiler must exist.
func CgoAvailable(ctx context.Context) bool {
	out, err := exec.CommandContext(ctx, "go", "env", "CGO_ENABLED").Output()
	if err != nil || strings.TrimSpace(string(out)) != "1" {
		return false
	}

	_, err = CCompiler(ctx)
	return err == nil
}

func goBin(opts Options) string {
	if opts.GoBin != "" {
		return opts.GoBin
	}
	return "go"
}
