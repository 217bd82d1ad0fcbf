package abi

import (
	"fmt"
	"reflect"
	"strings"
	"unsafe"

	"go.uber.org/multierr"
)

var (
	offsetX   = unsafe.Offsetof(Foo{}.X)
	offsetBar = unsafe.Offsetof(Foo{}.Bar)
	offsetA   = unsafe.Offsetof(Bar{}.A)
	offsetB   = unsafe.Offsetof(Bar{}.B)
	offsetY   = unsafe.Offsetof(Foo{}.Y)
)

// Field is one leaf field of the flattened Foo layout.
type Field struct {
	Name   string
	Kind   reflect.Kind
	Offset uintptr
	Size   uintptr
}

// Layout is the platform layout of struct Foo.
type Layout struct {
	Size   uintptr
	Align  uintptr
	Fields []Field
}

// FooSize is sizeof(struct Foo) under the C ABI of the target, padding
// included. It can exceed unsafe.Sizeof(Foo{}) where Go aligns int64 more
// loosely than C does.
const FooSize = (FooPayload + int64Align - 1) / int64Align * int64Align

// Size returns FooSize as an int.
func Size() int {
	return FooSize
}

func GetLayout() Layout {
	return Layout{
		Size:  FooSize,
		Align: int64Align,
		Fields: []Field{
			{Name: "x", Kind: reflect.Int64, Offset: offsetX, Size: 8},
			{Name: "bar.a", Kind: reflect.Int32, Offset: offsetBar + offsetA, Size: 4},
			{Name: "bar.b", Kind: reflect.Int32, Offset: offsetBar + offsetB, Size: 4},
			{Name: "y", Kind: reflect.Uint32, Offset: offsetY, Size: 4},
		},
	}
}

// Padding is the number of trailing bytes after the last field.
func (l Layout) Padding() uintptr {
	last := l.Fields[len(l.Fields)-1]
	return l.Size - (last.Offset + last.Size)
}

func (l Layout) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "struct Foo size=%d align=%d\n", l.Size, l.Align)
	for _, f := range l.Fields {
		fmt.Fprintf(&sb, "  %-6s %-7s offset=%-2d size=%d\n", f.Name, f.Kind, f.Offset, f.Size)
	}
	if p := l.Padding(); p > 0 {
		fmt.Fprintf(&sb, "  (%d bytes trailing padding)\n", p)
	}
	return sb.String()
}

// CheckOverlay reports every way in which t, a struct type a consumer wants
// to overlay on get_foo's result, disagrees with Foo. Field names are
// compared case-insensitively so both Go and C spellings pass.
func CheckOverlay(t reflect.Type) error {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return checkStruct("Foo", reflect.TypeOf(Foo{}), t)
}

func checkStruct(path string, want, got reflect.Type) error {
	if got.Kind() != reflect.Struct {
		return fmt.Errorf("%s: want struct, got %s", path, got.Kind())
	}

	var err error
	if want.Size() != got.Size() {
		err = multierr.Append(err, fmt.Errorf("%s: size %d, want %d", path, got.Size(), want.Size()))
	}
	if want.NumField() != got.NumField() {
		err = multierr.Append(err, fmt.Errorf("%s: %d fields, want %d", path, got.NumField(), want.NumField()))
	}

	n := min(want.NumField(), got.NumField())
	for i := 0; i < n; i++ {
		wf, gf := want.Field(i), got.Field(i)
		fieldPath := path + "." + strings.ToLower(wf.Name)

		if !strings.EqualFold(wf.Name, gf.Name) {
			err = multierr.Append(err, fmt.Errorf("%s: field %d named %q", fieldPath, i, gf.Name))
		}
		if wf.Offset != gf.Offset {
			err = multierr.Append(err, fmt.Errorf("%s: offset %d, want %d", fieldPath, gf.Offset, wf.Offset))
		}

		if wf.Type.Kind() == reflect.Struct {
			err = multierr.Append(err, checkStruct(fieldPath, wf.Type, gf.Type))
			continue
		}
		if wf.Type.Kind() != gf.Type.Kind() {
			err = multierr.Append(err, fmt.Errorf("%s: kind %s, want %s", fieldPath, gf.Type.Kind(), wf.Type.Kind()))
		}
	}

	return err
}
