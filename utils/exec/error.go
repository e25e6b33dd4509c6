package exec

import (
	"errors"
	"os/exec"
	"syscall"
)

// ExitStatus digs the process exit code out of err. The second return is
// false when err carries no exit information, e.g. when the binary could
// not be started at all.
func ExitStatus(err error) (int, bool) {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if waitStatus, ok := exitErr.ProcessState.Sys().(syscall.WaitStatus); ok {
			return waitStatus.ExitStatus(), true
		}
	}
	return 0, false
}
