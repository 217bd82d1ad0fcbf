// Command messagelib is a shared library that exports only
// get_library_message. Build it with:
//
//	go build -buildmode=c-shared -o libmessage.so ./cmd/messagelib
package main

import "C"
import (
	"github.com/statsig-io/ffi-fixtures/internal/native"
)

//export get_library_message
func get_library_message() *C.char {
	return (*C.char)(native.Message())
}

func main() {}
