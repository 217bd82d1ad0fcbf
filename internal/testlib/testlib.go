// Package testlib builds fixture artifacts once per test binary so tests in
// several packages can load real libraries.
//
// Path builds the Go fixtures with -buildmode=c-shared. ReferencePath builds
// the same contract from plain C, which is what in-process loader tests
// open: a Go test binary cannot safely host a second Go runtime. RunDriver
// checks a library, Go-built or not, from a separate C process.
package testlib

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/statsig-io/ffi-fixtures/internal/build"
)

// Fixture names.
const (
	Message = "message"
	Foo     = "foo"
	// Empty is a C-only library exporting neither fixture symbol.
	Empty = "empty"
)

// InProcessEnv opts tests into loading the Go-built fixtures into the test
// process itself.
const InProcessEnv = "FIXTURE_TEST_INPROCESS_GO"

var packages = map[string]string{
	Message: "./cmd/messagelib",
	Foo:     "./cmd/foolib",
}

var references = map[string]string{
	Message: "reference_message.c",
	Foo:     "reference_foo.c",
	Empty:   "reference_empty.c",
}

var (
	mu     sync.Mutex
	built  = map[string]string{}
	outDir string
	cc     string
	ccErr  error
	ccDone bool
)

// Path returns the Go-built fixture library, building it on first use.
func Path(t testing.TB, name string) string {
	t.Helper()

	mu.Lock()
	defer mu.Unlock()

	key := "go:" + name
	if path, ok := built[key]; ok {
		return path
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if !build.CgoAvailable(ctx) {
		t.Skip("cgo toolchain not available")
	}

	pkg, ok := packages[name]
	if !ok {
		t.Fatalf("unknown fixture %q", name)
	}

	root := mustRoot(t)
	path, err := build.SharedLibrary(ctx, build.Options{
		Package: pkg,
		Name:    name,
		OutDir:  mustOutDir(t),
		Dir:     root,
	})
	if err != nil {
		t.Fatalf("error building fixture %s: %v", name, err)
	}

	built[key] = path
	return path
}

// ReferencePath returns the C-built fixture library, building it on first
// use.
func ReferencePath(t testing.TB, name string) string {
	t.Helper()

	mu.Lock()
	defer mu.Unlock()

	key := "c:" + name
	if path, ok := built[key]; ok {
		return path
	}

	compiler := mustCC(t)
	src, ok := references[name]
	if !ok {
		t.Fatalf("unknown fixture %q", name)
	}

	root := mustRoot(t)
	out := filepath.Join(mustOutDir(t), build.LibraryFileName("reference_"+name))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	err := build.CSharedLibrary(ctx, compiler, out,
		filepath.Join(root, "include"),
		filepath.Join(root, "internal", "testlib", "testdata", src))
	if err != nil {
		t.Fatalf("error building reference %s: %v", name, err)
	}

	built[key] = out
	return out
}

// RunDriver loads lib in a separate C process and returns the key=value
// pairs it printed.
func RunDriver(t testing.TB, lib string) map[string]string {
	t.Helper()

	driver := driverPath(t)

	out, err := exec.Command(driver, lib).CombinedOutput()
	if err != nil {
		t.Fatalf("driver failed on %s: %v\n%s", lib, err, out)
	}

	result := map[string]string{}
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), "=")
		if ok {
			result[key] = value
		}
	}

	return result
}

// SkipUnlessInProcess skips tests that dlopen a Go-built fixture into the
// test binary unless InProcessEnv is set.
func SkipUnlessInProcess(t testing.TB) {
	t.Helper()
	if os.Getenv(InProcessEnv) == "" {
		t.Skipf("set %s=1 to load Go-built fixtures in-process", InProcessEnv)
	}
}

func driverPath(t testing.TB) string {
	mu.Lock()
	defer mu.Unlock()

	if path, ok := built["driver"]; ok {
		return path
	}

	compiler := mustCC(t)
	root := mustRoot(t)
	out := filepath.Join(mustOutDir(t), "driver")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	err := build.CProgram(ctx, compiler, out,
		filepath.Join(root, "include"),
		filepath.Join(root, "internal", "testlib", "testdata", "driver.c"))
	if err != nil {
		t.Fatalf("error building driver: %v", err)
	}

	built["driver"] = out
	return out
}

func mustCC(t testing.TB) string {
	if runtime.GOOS == "windows" {
		t.Skip("C fixtures are built with a unix toolchain")
	}

	if !ccDone {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		cc, ccErr = build.CCompiler(ctx)
		cancel()
		ccDone = true
	}
	if ccErr != nil {
		t.Skipf("C compiler not available: %v", ccErr)
	}
	return cc
}

func mustOutDir(t testing.TB) string {
	if outDir != "" {
		return outDir
	}

	dir, err := os.MkdirTemp("", "ffi-fixtures")
	if err != nil {
		t.Fatalf("error creating build dir: %v", err)
	}
	outDir = dir
	return outDir
}

func mustRoot(t testing.TB) string {
	root, err := moduleRoot()
	if err != nil {
		t.Fatalf("error locating module root: %v", err)
	}
	return root
}

func moduleRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("go.mod not found")
		}
		dir = parent
	}
}
