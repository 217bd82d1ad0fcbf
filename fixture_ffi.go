package ffi_fixtures

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
	"github.com/statsig-io/ffi-fixtures/abi"
	"github.com/statsig-io/ffi-fixtures/internal/cstr"
	"go.uber.org/zap"
)

// LibPathEnv names the library OpenFromEnv loads.
const LibPathEnv = "FIXTURE_LIB_PATH"

var (
	ErrSymbolNotFound = errors.New("symbol not found")
	ErrClosed         = errors.New("library is closed")
	ErrNoLibraryPath  = errors.New(LibPathEnv + " is not set")
)

// Library is an open fixture library with its exports bound to Go funcs.
//
// char* <=> string (copied) or unsafe.Pointer (raw)
// Foo*  <=> unsafe.Pointer
type Library struct {
	path   string
	handle uintptr
	logger *zap.Logger

	// calls hold the read lock so Close never unloads under them
	mu     sync.RWMutex
	closed bool

	get_library_message     func() string
	get_library_message_ptr func() unsafe.Pointer
	get_foo                 func() unsafe.Pointer
}

type Option func(*Library)

func WithLogger(logger *zap.Logger) Option {
	return func(l *Library) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// Open loads the library at path and binds its exports. get_library_message
// is required, get_foo is optional.
func Open(path string, opts ...Option) (*Library, error) {
	lib := &Library{
		path:   path,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(lib)
	}

	handle, err := openLibrary(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open library %s: %w", path, err)
	}
	lib.handle = handle

	messageSym, err := lookup(handle, abi.SymbolMessage)
	if err != nil {
		_ = closeLibrary(handle)
		return nil, fmt.Errorf("%s: %w: %v", abi.SymbolMessage, ErrSymbolNotFound, err)
	}
	purego.RegisterFunc(&lib.get_library_message, messageSym)
	purego.RegisterFunc(&lib.get_library_message_ptr, messageSym)

	if fooSym, err := lookup(handle, abi.SymbolFoo); err == nil {
		purego.RegisterFunc(&lib.get_foo, fooSym)
	} else {
		lib.logger.Debug("optional export missing", zap.String("symbol", abi.SymbolFoo), zap.String("path", path))
	}

	lib.logger.Debug("library loaded",
		zap.String("path", path),
		zap.Bool("exports_foo", lib.get_foo != nil))

	return lib, nil
}

// OpenFromEnv opens the library named by FIXTURE_LIB_PATH.
func OpenFromEnv(opts ...Option) (*Library, error) {
	path := os.Getenv(LibPathEnv)
	if path == "" {
		return nil, ErrNoLibraryPath
	}

	lib, err := Open(path, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s is set but could not be loaded: %w", LibPathEnv, err)
	}
	return lib, nil
}

func (l *Library) Path() string {
	return l.path
}

func (l *Library) ExportsFoo() bool {
	return l.get_foo != nil
}

// Message calls get_library_message and copies the result.
func (l *Library) Message() (string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.closed {
		return "", ErrClosed
	}
	return l.get_library_message(), nil
}

// MessagePointer returns the raw address get_library_message returns.
func (l *Library) MessagePointer() (unsafe.Pointer, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.closed {
		return nil, ErrClosed
	}
	return l.get_library_message_ptr(), nil
}

// MessageBytes returns the message bytes including the terminating NUL.
func (l *Library) MessageBytes() ([]byte, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.closed {
		return nil, ErrClosed
	}

	ptr := l.get_library_message_ptr()
	return cstr.Bytes(ptr, cstr.Len(ptr)+1), nil
}

// FooPointer returns the address get_foo returns.
func (l *Library) FooPointer() (unsafe.Pointer, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.fooPointer()
}

// Foo calls get_foo and copies the struct it points at.
func (l *Library) Foo() (abi.Foo, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	ptr, err := l.fooPointer()
	if err != nil {
		return abi.Foo{}, err
	}
	return abi.ReadFoo(ptr), nil
}

// fooSnapshot returns the get_foo address and the value behind it, read
// under one lock so Close cannot unload the library in between.
func (l *Library) fooSnapshot() (unsafe.Pointer, abi.Foo, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	ptr, err := l.fooPointer()
	if err != nil {
		return nil, abi.Foo{}, err
	}
	return ptr, abi.ReadFoo(ptr), nil
}

// FooBytes returns the raw abi.FooPayload bytes behind get_foo.
func (l *Library) FooBytes() ([]byte, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	ptr, err := l.fooPointer()
	if err != nil {
		return nil, err
	}
	return cstr.Bytes(ptr, abi.FooPayload), nil
}

func (l *Library) fooPointer() (unsafe.Pointer, error) {
	if l.closed {
		return nil, ErrClosed
	}
	if l.get_foo == nil {
		return nil, fmt.Errorf("%s: %w", abi.SymbolFoo, ErrSymbolNotFound)
	}

	ptr := l.get_foo()
	if ptr == nil {
		return nil, fmt.Errorf("%s returned NULL", abi.SymbolFoo)
	}
	return ptr, nil
}

// Close unloads the library. Later calls fail with ErrClosed.
func (l *Library) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true

	l.logger.Debug("library closed", zap.String("path", l.path))

	if err := closeLibrary(l.handle); err != nil {
		return fmt.Errorf("failed to close library %s: %w", l.path, err)
	}
	return nil
}
