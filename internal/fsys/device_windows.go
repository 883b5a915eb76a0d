//go:build windows

package fsys

// deviceOf always reports unknown on Windows; drives are separate roots
// and mount detection is not needed.
func deviceOf(path string) (uint64, bool) {
	return 0, false
}
