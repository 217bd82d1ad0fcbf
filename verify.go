package ffi_fixtures

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/statsig-io/ffi-fixtures/abi"
	"go.uber.org/multierr"
)

var (
	ErrMessageMismatch  = errors.New("message mismatch")
	ErrFooMismatch      = errors.New("foo mismatch")
	ErrFooUnstable      = errors.New("foo identity changed between calls")
	ErrUnexpectedExport = errors.New("unexpected export set")
)

// Expectation is what Verify checks a library against.
type Expectation struct {
	// ExportsFoo says whether get_foo must be present (Component B) or
	// absent (Component A).
	ExportsFoo bool
	// Calls is how many times each export is called. Defaults to 3.
	Calls int
}

// Verify checks lib against the fixture contract and returns every
// violation found, combined with multierr.
func Verify(lib *Library, expect Expectation) error {
	calls := expect.Calls
	if calls <= 0 {
		calls = 3
	}

	var err error
	err = multierr.Append(err, verifyMessage(lib, calls))

	switch {
	case expect.ExportsFoo && !lib.ExportsFoo():
		err = multierr.Append(err, fmt.Errorf("%w: %s missing", ErrUnexpectedExport, abi.SymbolFoo))
	case !expect.ExportsFoo && lib.ExportsFoo():
		err = multierr.Append(err, fmt.Errorf("%w: %s present", ErrUnexpectedExport, abi.SymbolFoo))
	case expect.ExportsFoo:
		err = multierr.Append(err, verifyFoo(lib, calls))
	}

	return err
}

func verifyMessage(lib *Library, calls int) error {
	want := append([]byte(abi.Message), 0)

	for i := 0; i < calls; i++ {
		msg, err := lib.Message()
		if err != nil {
			return err
		}
		if msg != abi.Message {
			return fmt.Errorf("%w: call %d returned %q, want %q", ErrMessageMismatch, i, msg, abi.Message)
		}

		raw, err := lib.MessageBytes()
		if err != nil {
			return err
		}
		if !bytes.Equal(raw, want) {
			return fmt.Errorf("%w: call %d raw bytes %q, want %q", ErrMessageMismatch, i, raw, want)
		}
	}

	return nil
}

func verifyFoo(lib *Library, calls int) error {
	first, err := lib.FooPointer()
	if err != nil {
		return err
	}

	var result error
	for i := 0; i < calls; i++ {
		ptr, err := lib.FooPointer()
		if err != nil {
			return multierr.Append(result, err)
		}
		if ptr != first {
			result = multierr.Append(result, fmt.Errorf("%w: call %d returned %p, first call %p", ErrFooUnstable, i, ptr, first))
			break
		}
	}

	foo, err := lib.Foo()
	if err != nil {
		return multierr.Append(result, err)
	}
	if foo != abi.SampleFoo {
		result = multierr.Append(result, fmt.Errorf("%w: overlay read %v, want %v", ErrFooMismatch, foo, abi.SampleFoo))
	}

	raw, err := lib.FooBytes()
	if err != nil {
		return multierr.Append(result, err)
	}
	decoded, err := abi.DecodeFoo(raw)
	if err != nil {
		return multierr.Append(result, err)
	}
	if decoded != abi.SampleFoo {
		result = multierr.Append(result, fmt.Errorf("%w: raw decode %v, want %v", ErrFooMismatch, decoded, abi.SampleFoo))
	}

	return result
}
