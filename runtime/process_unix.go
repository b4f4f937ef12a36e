//go:build unix

package runtime

import "golang.org/x/sys/unix"

// setpgid puts pid into its own process group so a Ctrl-C delivered to the
// REPL's controlling terminal does not also signal the spawned subprocess,
// matching ordinary shell job-control behavior (SPEC_FULL §11).
func setpgid(pid int) {
	_ = unix.Setpgid(pid, pid)
}
