// Package native owns the C memory the fixture libraries hand out. Values
// are allocated once, outside the Go heap, and never written or freed
// afterwards, so the pointers may be returned to foreign callers.
package native

/*
#cgo CFLAGS: -I${SRCDIR}/../../include
#include <stdlib.h>
#include "fixture.h"

enum { fixture_foo_align = _Alignof(Foo) };
*/
import "C"
import (
	"reflect"
	"sync"
	"unsafe"

	"github.com/statsig-io/ffi-fixtures/abi"
)

// The C compiler must agree with abi.FooSize.
var _ = [1]struct{}{}[unsafe.Sizeof(C.Foo{})-abi.FooSize]

var (
	once    sync.Once
	message unsafe.Pointer
	foo     unsafe.Pointer
)

func initialize() {
	message = unsafe.Pointer(C.CString(abi.Message))

	f := (*C.Foo)(C.calloc(1, C.sizeof_Foo))
	f.x = C.int64_t(abi.SampleFoo.X)
	f.bar.a = C.int32_t(abi.SampleFoo.Bar.A)
	f.bar.b = C.int32_t(abi.SampleFoo.Bar.B)
	f.y = C.uint32_t(abi.SampleFoo.Y)
	foo = unsafe.Pointer(f)
}

// Message returns the NUL-terminated library message.
func Message() unsafe.Pointer {
	once.Do(initialize)
	return message
}

// Foo returns the process-wide Foo. Every call returns the same pointer.
func Foo() unsafe.Pointer {
	once.Do(initialize)
	return foo
}

// Layout reports struct Foo as the C compiler laid it out.
func Layout() abi.Layout {
	var f C.Foo
	barOffset := unsafe.Offsetof(f.bar)

	return abi.Layout{
		Size:  uintptr(C.sizeof_Foo),
		Align: uintptr(C.fixture_foo_align),
		Fields: []abi.Field{
			{Name: "x", Kind: reflect.Int64, Offset: unsafe.Offsetof(f.x), Size: unsafe.Sizeof(f.x)},
			{Name: "bar.a", Kind: reflect.Int32, Offset: barOffset + unsafe.Offsetof(f.bar.a), Size: unsafe.Sizeof(f.bar.a)},
			{Name: "bar.b", Kind: reflect.Int32, Offset: barOffset + unsafe.Offsetof(f.bar.b), Size: unsafe.Sizeof(f.bar.b)},
			{Name: "y", Kind: reflect.Uint32, Offset: unsafe.Offsetof(f.y), Size: unsafe.Sizeof(f.y)},
		},
	}
}
