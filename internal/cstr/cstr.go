package cstr

import "unsafe"

// StringN copies n bytes starting at ptr into a Go string.
func StringN(ptr unsafe.Pointer, n int) string {
	if ptr == nil || n <= 0 {
		return ""
	}

	return string(unsafe.Slice((*byte)(ptr), n))
}

// Len returns the number of bytes before the first NUL at ptr.
func Len(ptr unsafe.Pointer) int {
	if ptr == nil {
		return 0
	}

	var n uintptr
	for *(*byte)(unsafe.Add(ptr, n)) != 0 {
		n++
	}

	return int(n)
}

// String reads a NUL-terminated string. It walks the bytes one at a time,
// so prefer StringN when the length is already known.
func String(ptr unsafe.Pointer) string {
	return StringN(ptr, Len(ptr))
}

// Bytes copies n raw bytes starting at ptr.
func Bytes(ptr unsafe.Pointer, n int) []byte {
	if ptr == nil || n <= 0 {
		return nil
	}

	out := make([]byte, n)
	copy(out, unsafe.Slice((*byte)(ptr), n))
	return out
}
