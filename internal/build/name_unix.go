//go:build !darwin && !windows

package build

// LibraryFileName returns the shared object file name for base.
func LibraryFileName(base string) string {
	return "lib" + base + ".so"
}
