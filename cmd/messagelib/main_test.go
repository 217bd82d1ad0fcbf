package main

import (
	"testing"
	"unsafe"

	"github.com/statsig-io/ffi-fixtures/abi"
	"github.com/statsig-io/ffi-fixtures/internal/cstr"
)

func TestGetLibraryMessage(t *testing.T) {
	for i := 0; i < 3; i++ {
		ptr := unsafe.Pointer(get_library_message())
		if got := cstr.String(ptr); got != abi.Message {
			t.Errorf("get_library_message() = %q, want %q", got, abi.Message)
		}
		if n := cstr.Len(ptr); n != 14 {
			t.Errorf("message length %d, want 14", n)
		}
	}
}
