//go:build !darwin && !freebsd && !linux && !netbsd && !windows

package ffi_fixtures

import (
	"errors"
	"runtime"
)

var errUnsupported = errors.New("dynamic loading is not supported on " + runtime.GOOS)

func openLibrary(string) (uintptr, error) {
	return 0, errUnsupported
}

func lookup(uintptr, string) (uintptr, error) {
	return 0, errUnsupported
}

func closeLibrary(uintptr) error {
	return errUnsupported
}
