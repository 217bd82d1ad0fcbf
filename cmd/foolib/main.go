// Command foolib is a shared library that exports get_library_message and
// get_foo. Build it with:
//
//	go build -buildmode=c-shared -o libfoo.so ./cmd/foolib
package main

/*
#cgo CFLAGS: -I${SRCDIR}/../../include
#include "fixture.h"
*/
import "C"
import (
	"github.com/statsig-io/ffi-fixtures/internal/native"
)

//export get_library_message
func get_library_message() *C.char {
	return (*C.char)(native.Message())
}

// get_foo hands out the same Foo on every call. Callers must treat it as
// read-only.
//
//export get_foo
func get_foo() *C.Foo {
	return (*C.Foo)(native.Foo())
}

func main() {}
