package procstat

import (
	"context"
	"os"
	"path/filepath"
	"strconv"

	"emperror.dev/errors"
	"github.com/prometheus/procfs"
	log "github.com/sirupsen/logrus"
	"k8s.io/utils/ptr"

	"github.com/voluzi/epochstat/pkg/statscollector"
)

const delayAcctSysctl = "kernel.task_delayacct"

// ProcSource reads per-thread accounting of one process from the proc filesystem.
type ProcSource struct {
	pid          int
	taskPath     string
	tasks        procfs.FS
	ioAccounting bool
}

// NewProcSource opens the task directory of pid.
func NewProcSource(pid int, opts ...Option) (*ProcSource, error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	fs, err := procfs.NewFS(options.ProcPath)
	if err != nil {
		return nil, errors.WrapIfWithDetails(err, "failed to open proc filesystem", "path", options.ProcPath)
	}

	taskPath := filepath.Join(options.ProcPath, strconv.Itoa(pid), "task")
	if _, err := os.Stat(taskPath); errors.Is(err, os.ErrNotExist) {
		return nil, errors.WithDetails(ErrProcessGone, "pid", pid)
	}
	tasks, err := procfs.NewFS(taskPath)
	if err != nil {
		return nil, errors.WrapIfWithDetails(err, "failed to open task directory", "pid", pid)
	}

	s := &ProcSource{
		pid:          pid,
		taskPath:     taskPath,
		tasks:        tasks,
		ioAccounting: delayAccountingEnabled(fs),
	}
	if !s.ioAccounting {
		log.WithField("sysctl", delayAcctSysctl).Warn("task delay accounting is disabled, io wait ticks will read as zero")
	}
	return s, nil
}

// delayAccountingEnabled reports false only when the kernel exposes the
// sysctl and it is switched off. Kernels without the sysctl always account.
func delayAccountingEnabled(fs procfs.FS) bool {
	values, err := fs.SysctlInts(delayAcctSysctl)
	if err != nil || len(values) == 0 {
		return true
	}
	return values[0] != 0
}

// PID returns the process id this source reads from.
func (s *ProcSource) PID() int {
	return s.pid
}

// IOAccounting reports whether the kernel accumulates io wait ticks. When it
// does not, snapshots still carry the field but it stays at zero.
func (s *ProcSource) IOAccounting() bool {
	return s.ioAccounting
}

// Threads lists the thread ids of the process.
func (s *ProcSource) Threads(_ context.Context) ([]int, error) {
	procs, err := s.tasks.AllProcs()
	if err != nil {
		if _, statErr := os.Stat(s.taskPath); errors.Is(err, os.ErrNotExist) || errors.Is(statErr, os.ErrNotExist) {
			return nil, errors.WithDetails(ErrProcessGone, "pid", s.pid)
		}
		return nil, errors.WrapIfWithDetails(err, "failed to list threads", "pid", s.pid)
	}

	tids := make([]int, 0, len(procs))
	for _, p := range procs {
		tids = append(tids, p.PID)
	}
	return tids, nil
}

// Snapshot reads the stat file of a single thread.
func (s *ProcSource) Snapshot(_ context.Context, tid int) (statscollector.Snapshot, error) {
	p, err := s.tasks.Proc(tid)
	if err != nil {
		return statscollector.Snapshot{}, errors.WrapIfWithDetails(err, "failed to open thread", "pid", s.pid, "tid", tid)
	}
	stat, err := p.Stat()
	if err != nil {
		return statscollector.Snapshot{}, errors.WrapIfWithDetails(err, "failed to read thread stat", "pid", s.pid, "tid", tid)
	}

	return statscollector.Snapshot{
		TID:         tid,
		Name:        stat.Comm,
		UserTicks:   uint64(stat.UTime),
		SysTicks:    uint64(stat.STime),
		MajorFaults: uint64(stat.MajFlt),
		MinorFaults: uint64(stat.MinFlt),
		IOWaitTicks: ptr.To(uint64(stat.DelayAcctBlkIOTicks)),
	}, nil
}
