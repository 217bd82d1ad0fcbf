//go:build windows

package build

// LibraryFileName returns the DLL file name for base.
func LibraryFileName(base string) string {
	return base + ".dll"
}
