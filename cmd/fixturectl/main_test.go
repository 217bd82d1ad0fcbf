package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	ffi_fixtures "github.com/statsig-io/ffi-fixtures"
	"github.com/statsig-io/ffi-fixtures/internal/config"
	"github.com/statsig-io/ffi-fixtures/internal/testlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv(config.EnvLibPath, "")
	t.Setenv(config.EnvExpectFoo, "")
	t.Setenv(config.EnvLogLevel, "error")

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T) string {
	t.Helper()

	body := "libraries:\n" +
		"  - name: message\n" +
		"    path: " + testlib.ReferencePath(t, testlib.Message) + "\n" +
		"  - name: foo\n" +
		"    path: " + testlib.ReferencePath(t, testlib.Foo) + "\n" +
		"    exports_foo: true\n" +
		"stress:\n" +
		"  goroutines: 4\n" +
		"  calls: 100\n" +
		"bench:\n" +
		"  iterations: 50\n"

	path := filepath.Join(t.TempDir(), "fixtures.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLayout(t *testing.T) {
	out, err := run(t, "layout")
	require.NoError(t, err)
	assert.Contains(t, out, "struct Foo size=")
	assert.Contains(t, out, "payload=20")
}

func TestNoLibraries(t *testing.T) {
	_, err := run(t, "verify")
	assert.ErrorContains(t, err, "no libraries configured")
}

func TestInspect(t *testing.T) {
	out, err := run(t, "inspect", "--config", writeConfig(t))
	require.NoError(t, err)

	assert.Contains(t, out, `get_library_message() = "IAMA C lib AMA"`)
	assert.Contains(t, out, "get_foo not exported")
	assert.Contains(t, out, "Foo: x=42, bar.a=10, bar.b=20, y=30")
	assert.Contains(t, out, "Foo has 3 fields")
	assert.Contains(t, out, "Bar has 2 fields")
	assert.Contains(t, out, "y uint32 offset=16 = 30")
}

func TestVerify(t *testing.T) {
	out, err := run(t, "verify", "--config", writeConfig(t))
	require.NoError(t, err)
	assert.Contains(t, out, "ok   message")
	assert.Contains(t, out, "ok   foo")
}

func TestVerifyExpectFooMismatch(t *testing.T) {
	out, err := run(t, "verify", "--lib", testlib.ReferencePath(t, testlib.Message), "--expect-foo")
	assert.ErrorContains(t, err, "1 of 1 libraries failed verification")
	assert.Contains(t, out, "FAIL cli")
	assert.Contains(t, out, "unexpected export set")
}

func TestLibFlagReplacesConfiguredLibraries(t *testing.T) {
	// The configured message library would fail: it is marked as exporting get_foo.
	body := "libraries:\n" +
		"  - name: configured\n" +
		"    path: " + testlib.ReferencePath(t, testlib.Message) + "\n" +
		"    exports_foo: true\n"
	path := filepath.Join(t.TempDir(), "fixtures.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	out, err := run(t, "verify", "--config", path, "--lib", testlib.ReferencePath(t, testlib.Foo), "--expect-foo")
	require.NoError(t, err)
	assert.Contains(t, out, "ok   cli")
	assert.NotContains(t, out, "configured")
}

func TestLibFlagReplacesEnvLibrary(t *testing.T) {
	t.Setenv(config.EnvLogLevel, "error")
	t.Setenv(config.EnvExpectFoo, "")
	t.Setenv(config.EnvLibPath, testlib.ReferencePath(t, testlib.Foo))

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"inspect", "--lib", testlib.ReferencePath(t, testlib.Message)})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "cli (")
	assert.NotContains(t, out.String(), "env (")
}

func TestEnvLibraryExpectFoo(t *testing.T) {
	t.Setenv(config.EnvLogLevel, "error")
	t.Setenv(config.EnvLibPath, testlib.ReferencePath(t, testlib.Foo))
	t.Setenv(config.EnvExpectFoo, "true")

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"verify"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "ok   env")
}

func TestStress(t *testing.T) {
	out, err := run(t, "stress", "--config", writeConfig(t), "--calls", "10")
	require.NoError(t, err)
	assert.Contains(t, out, "ok   message")
	assert.Contains(t, out, "ok   foo")
	assert.Contains(t, out, "calls=40")
}

func TestBenchJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.json")

	_, err := run(t, "bench", "--config", writeConfig(t), "--json", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var results []ffi_fixtures.BenchmarkResult
	require.NoError(t, json.Unmarshal(data, &results))
	require.Len(t, results, 3)
	for _, r := range results {
		assert.Equal(t, 50, r.Iterations)
	}
}

func TestBuild(t *testing.T) {
	testlib.Path(t, testlib.Message) // skips without cgo

	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(filepath.Join("..", "..")))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	out, err := run(t, "build", "--pkg", "./cmd/messagelib", "--name", "message", "--out", dir)
	require.NoError(t, err)

	out = string(bytes.TrimSpace([]byte(out)))
	_, err = os.Stat(out)
	assert.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(out))
}
