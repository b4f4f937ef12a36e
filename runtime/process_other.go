//go:build !unix

package runtime

// setpgid is a no-op on platforms golang.org/x/sys/unix does not cover
// (SPEC_FULL §11).
func setpgid(int) {}
