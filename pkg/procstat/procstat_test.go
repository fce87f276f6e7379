package procstat

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"emperror.dev/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voluzi/epochstat/pkg/statscollector"
)

type fakeThread struct {
	tid    int
	comm   string
	state  string
	minflt uint64
	majflt uint64
	utime  uint64
	stime  uint64
	blkio  uint64
}

func statLine(pid int, th fakeThread) string {
	state := th.state
	if state == "" {
		state = "S"
	}
	return fmt.Sprintf("%d (%s) %s 1 %d %d 0 -1 4194368 %d 0 %d 0 %d %d 0 0 20 0 12 0 100 1000000 500 18446744073709551615 1 1 0 0 0 0 0 4096 17663 0 0 0 -1 3 0 0 %d 0 0 0 0 0 0 0 0 0 0\n",
		th.tid, th.comm, state, pid, pid, th.minflt, th.majflt, th.utime, th.stime, th.blkio)
}

func statusFile(th fakeThread) string {
	state := th.state
	if state == "" {
		state = "S"
	}
	return fmt.Sprintf("Name:\t%s\nState:\t%s (%s)\nTgid:\t%d\nPid:\t%d\n", th.comm, state, th.comm, th.tid, th.tid)
}

// fakeProc lays out a minimal proc filesystem under a temporary directory.
func fakeProc(t *testing.T, pid int, delayAcct string, threads ...fakeThread) string {
	t.Helper()
	root := t.TempDir()

	if delayAcct != "" {
		dir := filepath.Join(root, "sys", "kernel")
		require.NoError(t, os.MkdirAll(dir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "task_delayacct"), []byte(delayAcct+"\n"), 0o644))
	}

	pidDir := filepath.Join(root, strconv.Itoa(pid))
	require.NoError(t, os.MkdirAll(pidDir, 0o755))
	main := fakeThread{tid: pid, comm: "main"}
	if len(threads) > 0 {
		main = threads[0]
	}
	require.NoError(t, os.WriteFile(filepath.Join(pidDir, "stat"), []byte(statLine(pid, main)), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(pidDir, "status"), []byte(statusFile(main)), 0o644))

	for _, th := range threads {
		dir := filepath.Join(pidDir, "task", strconv.Itoa(th.tid))
		require.NoError(t, os.MkdirAll(dir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "stat"), []byte(statLine(pid, th)), 0o644))
	}
	return root
}

func TestProcSource_Snapshot(t *testing.T) {
	root := fakeProc(t, 4242, "1",
		fakeThread{tid: 4242, comm: "agave-validator", utime: 250, stime: 75, blkio: 9, majflt: 3, minflt: 1500},
		fakeThread{tid: 4250, comm: "solRpcEl00", utime: 10, stime: 2, blkio: 0, majflt: 0, minflt: 20},
	)

	s, err := NewProcSource(4242, WithProcPath(root))
	require.NoError(t, err)
	assert.True(t, s.IOAccounting())
	assert.Equal(t, 4242, s.PID())

	tids, err := s.Threads(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{4242, 4250}, tids)

	snapshot, err := s.Snapshot(context.Background(), 4242)
	require.NoError(t, err)
	assert.Equal(t, 4242, snapshot.TID)
	assert.Equal(t, "agave-validator", snapshot.Name)
	assert.Equal(t, uint64(250), snapshot.UserTicks)
	assert.Equal(t, uint64(75), snapshot.SysTicks)
	assert.Equal(t, uint64(3), snapshot.MajorFaults)
	assert.Equal(t, uint64(1500), snapshot.MinorFaults)
	require.NotNil(t, snapshot.IOWaitTicks)
	assert.Equal(t, uint64(9), *snapshot.IOWaitTicks)
}

func TestProcSource_DelayAccountingDisabled(t *testing.T) {
	root := fakeProc(t, 100, "0", fakeThread{tid: 100, comm: "main", utime: 1, blkio: 0})

	s, err := NewProcSource(100, WithProcPath(root))
	require.NoError(t, err)
	assert.False(t, s.IOAccounting())

	snapshot, err := s.Snapshot(context.Background(), 100)
	require.NoError(t, err)
	require.NotNil(t, snapshot.IOWaitTicks)
	assert.Equal(t, uint64(0), *snapshot.IOWaitTicks)

	// the field is still usable by the collector
	c := statscollector.NewCollector()
	require.NoError(t, c.Observe(snapshot.Name, snapshot))
	stats, ok := c.Get("main")
	require.True(t, ok)
	assert.Equal(t, uint64(1), stats.IOTime.Samples())
}

func TestProcSource_DelayAccountingSysctlMissing(t *testing.T) {
	root := fakeProc(t, 100, "", fakeThread{tid: 100, comm: "main"})

	s, err := NewProcSource(100, WithProcPath(root))
	require.NoError(t, err)
	assert.True(t, s.IOAccounting())
}

func TestProcSource_ProcessGone(t *testing.T) {
	root := fakeProc(t, 100, "1", fakeThread{tid: 100, comm: "main"})

	_, err := NewProcSource(200, WithProcPath(root))
	assert.True(t, errors.Is(err, ErrProcessGone))

	s, err := NewProcSource(100, WithProcPath(root))
	require.NoError(t, err)
	require.NoError(t, os.RemoveAll(filepath.Join(root, "100")))

	_, err = s.Threads(context.Background())
	assert.True(t, errors.Is(err, ErrProcessGone))
}

func TestProcSource_ThreadVanished(t *testing.T) {
	root := fakeProc(t, 100, "1", fakeThread{tid: 100, comm: "main"}, fakeThread{tid: 101, comm: "worker"})

	s, err := NewProcSource(100, WithProcPath(root))
	require.NoError(t, err)
	require.NoError(t, os.RemoveAll(filepath.Join(root, "100", "task", "101")))

	_, err = s.Snapshot(context.Background(), 101)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestAlive(t *testing.T) {
	ctx := context.Background()
	t.Setenv(HostProcEnv, "/proc")

	alive, err := Alive(ctx, os.Getpid())
	require.NoError(t, err)
	assert.True(t, alive)

	alive, err = Alive(ctx, 99999999)
	require.NoError(t, err)
	assert.False(t, alive)

	alive, err = Alive(ctx, -1)
	require.NoError(t, err)
	assert.False(t, alive)
}

func TestAlive_FakeProc(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		state    string
		expected bool
	}{
		{name: "sleeping", state: "S", expected: true},
		{name: "running", state: "R", expected: true},
		{name: "zombie", state: "Z", expected: false},
		{name: "dead", state: "X", expected: false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			root := fakeProc(t, 300, "1", fakeThread{tid: 300, comm: "main", state: test.state})
			t.Setenv(HostProcEnv, root)

			alive, err := Alive(ctx, 300)
			require.NoError(t, err)
			assert.Equal(t, test.expected, alive)

			alive, err = Alive(ctx, 301)
			require.NoError(t, err)
			assert.False(t, alive)
		})
	}
}
