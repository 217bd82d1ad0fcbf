package main

import (
	"sync"
	"testing"
	"unsafe"

	"github.com/statsig-io/ffi-fixtures/abi"
	"github.com/statsig-io/ffi-fixtures/internal/cstr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLibraryMessage(t *testing.T) {
	ptr := unsafe.Pointer(get_library_message())
	assert.Equal(t, abi.Message, cstr.String(ptr))
}

func TestGetFoo(t *testing.T) {
	ptr := unsafe.Pointer(get_foo())
	require.NotNil(t, ptr)

	foo := abi.ReadFoo(ptr)
	assert.Equal(t, int64(42), foo.X)
	assert.Equal(t, int32(10), foo.Bar.A)
	assert.Equal(t, int32(20), foo.Bar.B)
	assert.Equal(t, uint32(30), foo.Y)
}

func TestGetFooIdentity(t *testing.T) {
	first := unsafe.Pointer(get_foo())
	second := unsafe.Pointer(get_foo())
	assert.Equal(t, first, second)
}

func TestGetFooConcurrent(t *testing.T) {
	want := unsafe.Pointer(get_foo())

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				if p := unsafe.Pointer(get_foo()); p != want {
					t.Errorf("get_foo returned %p, want %p", p, want)
					return
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, abi.SampleFoo, abi.ReadFoo(want))
}
