// Package abi describes the values exported by the fixture libraries and
// the binary layout a foreign caller must assume when reading them.
package abi

import (
	"encoding/binary"
	"errors"
	"fmt"
	"unsafe"
)

// Message is the string returned by get_library_message, without its
// terminating NUL.
const Message = "IAMA C lib AMA"

// MessageLen is the length of Message in bytes, not counting the terminator.
const MessageLen = len(Message)

// Exported symbol names.
const (
	SymbolMessage = "get_library_message"
	SymbolFoo     = "get_foo"
)

// Bar mirrors the C struct Bar.
type Bar struct {
	A int32
	B int32
}

// Foo mirrors the C struct Foo. Field order and widths must not change:
// callers overlay this type directly on the memory returned by get_foo.
type Foo struct {
	X   int64
	Bar Bar
	Y   uint32
}

// SampleFoo is the one value get_foo ever points at.
var SampleFoo = Foo{
	X: 42,
	Bar: Bar{
		A: 10,
		B: 20,
	},
	Y: 30,
}

// FooPayload is the number of meaningful bytes in a Foo. The struct itself
// may be larger because of trailing alignment padding.
const FooPayload = 8 + 4 + 4 + 4

var ErrShortBuffer = errors.New("abi: buffer shorter than Foo payload")

func (f Foo) String() string {
	return fmt.Sprintf("Foo: x=%d, bar.a=%d, bar.b=%d, y=%d", f.X, f.Bar.A, f.Bar.B, f.Y)
}

// DecodeFoo decodes a Foo from raw native-endian bytes laid out as the C
// compiler of the running platform would lay them out.
func DecodeFoo(b []byte) (Foo, error) {
	if len(b) < FooPayload {
		return Foo{}, fmt.Errorf("%w: got %d bytes, need %d", ErrShortBuffer, len(b), FooPayload)
	}

	var f Foo
	order := binary.NativeEndian
	f.X = int64(order.Uint64(b[offsetX:]))
	f.Bar.A = int32(order.Uint32(b[offsetBar+offsetA:]))
	f.Bar.B = int32(order.Uint32(b[offsetBar+offsetB:]))
	f.Y = order.Uint32(b[offsetY:])
	return f, nil
}

// EncodeFoo is the inverse of DecodeFoo. The returned slice is Size() bytes
// long with zeroed padding.
func EncodeFoo(f Foo) []byte {
	b := make([]byte, Size())
	order := binary.NativeEndian
	order.PutUint64(b[offsetX:], uint64(f.X))
	order.PutUint32(b[offsetBar+offsetA:], uint32(f.Bar.A))
	order.PutUint32(b[offsetBar+offsetB:], uint32(f.Bar.B))
	order.PutUint32(b[offsetY:], f.Y)
	return b
}

// ReadFoo copies the Foo found at ptr. ptr must point at memory holding a
// C struct Foo, such as the result of get_foo.
func ReadFoo(ptr unsafe.Pointer) Foo {
	return *(*Foo)(ptr)
}
