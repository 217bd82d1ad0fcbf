//go:build darwin

package build

// LibraryFileName returns the dynamic library file name for base.
func LibraryFileName(base string) string {
	return "lib" + base + ".dylib"
}
