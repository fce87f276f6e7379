package procstat

import (
	"context"
	"os"

	"emperror.dev/errors"
	"github.com/shirou/gopsutil/process"
)

// HostProcEnv relocates the proc filesystem for gopsutil.
const HostProcEnv = "HOST_PROC"

// ErrProcessGone is returned when the target process no longer exists.
const ErrProcessGone = errors.Sentinel("process is gone")

// Alive reports whether pid exists and is neither a zombie nor dead. The
// status is read below HOST_PROC, or /proc when it is unset.
func Alive(ctx context.Context, pid int) (bool, error) {
	if pid <= 0 {
		return false, nil
	}

	p := &process.Process{Pid: int32(pid)}
	status, err := p.StatusWithContext(ctx)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, errors.WrapIfWithDetails(err, "failed to read process status", "pid", pid)
	}
	return status != "Z" && status != "X", nil
}
