package abi

import (
	"reflect"
	"runtime"
	"testing"
	"unsafe"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestMessage(t *testing.T) {
	assert.Equal(t, "IAMA C lib AMA", Message)
	assert.Equal(t, 14, MessageLen)
}

func TestLayoutMatchesNaturalAlignment(t *testing.T) {
	l := GetLayout()

	offsets := map[string]uintptr{}
	for _, f := range l.Fields {
		offsets[f.Name] = f.Offset
	}

	assert.Equal(t, uintptr(0), offsets["x"])
	assert.Equal(t, uintptr(8), offsets["bar.a"])
	assert.Equal(t, uintptr(12), offsets["bar.b"])
	assert.Equal(t, uintptr(16), offsets["y"])

	// sizeof(struct Foo) as the platform C ABI lays it out.
	cSizes := map[string]uintptr{
		"386":    20,
		"amd64":  24,
		"arm":    24,
		"arm64":  24,
		"mips":   24,
		"mipsle": 24,
	}
	wantSize, ok := cSizes[runtime.GOARCH]
	if !ok {
		wantSize = 24
	}
	assert.Equal(t, wantSize, l.Size)
	assert.Equal(t, FooSize, Size())
	assert.Equal(t, l.Size-FooPayload, l.Padding())
	assert.Contains(t, l.String(), "struct Foo size=")
}

func TestSizeCoversGoStruct(t *testing.T) {
	// On arm Go packs Foo into 20 bytes while C pads it to 24.
	assert.GreaterOrEqual(t, uintptr(FooSize), unsafe.Sizeof(Foo{}))
	assert.Equal(t, uintptr(FooPayload), unsafe.Offsetof(Foo{}.Y)+unsafe.Sizeof(Foo{}.Y))
}

func TestEncodeDecodeSample(t *testing.T) {
	b := EncodeFoo(SampleFoo)
	require.Len(t, b, Size())

	got, err := DecodeFoo(b[:FooPayload])
	require.NoError(t, err)
	if diff := cmp.Diff(SampleFoo, got); diff != "" {
		t.Errorf("DecodeFoo mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeMatchesOverlay(t *testing.T) {
	f := SampleFoo
	raw := unsafe.Slice((*byte)(unsafe.Pointer(&f)), FooPayload)

	decoded, err := DecodeFoo(raw)
	require.NoError(t, err)
	assert.Equal(t, ReadFoo(unsafe.Pointer(&f)), decoded)
}

func TestDecodeShortBuffer(t *testing.T) {
	_, err := DecodeFoo(make([]byte, FooPayload-1))
	assert.ErrorIs(t, err, ErrShortBuffer)
}

func TestFooString(t *testing.T) {
	assert.Equal(t, "Foo: x=42, bar.a=10, bar.b=20, y=30", SampleFoo.String())
}

func TestCheckOverlayAcceptsMirror(t *testing.T) {
	type cBar struct {
		A int32
		B int32
	}
	type cFoo struct {
		X   int64
		Bar cBar
		Y   uint32
	}

	assert.NoError(t, CheckOverlay(reflect.TypeOf(cFoo{})))
	assert.NoError(t, CheckOverlay(reflect.TypeOf(&Foo{})))
}

func TestCheckOverlayWideY(t *testing.T) {
	type wideFoo struct {
		X   int64
		Bar Bar
		Y   int64
	}

	err := CheckOverlay(reflect.TypeOf(wideFoo{}))
	require.Error(t, err)
	assert.ErrorContains(t, err, "Foo.y: kind int64, want uint32")
}

func TestCheckOverlayReordered(t *testing.T) {
	type reordered struct {
		Bar Bar
		X   int64
		Y   uint32
	}

	err := CheckOverlay(reflect.TypeOf(reordered{}))
	require.Error(t, err)
	assert.GreaterOrEqual(t, len(multierr.Errors(err)), 2)
}

func TestCheckOverlayNotStruct(t *testing.T) {
	assert.ErrorContains(t, CheckOverlay(reflect.TypeOf(int64(0))), "want struct")
}
