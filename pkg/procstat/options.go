package procstat

import "github.com/prometheus/procfs"

func defaultOptions() *Options {
	return &Options{
		ProcPath: procfs.DefaultMountPoint,
	}
}

type Options struct {
	ProcPath string
}

type Option func(*Options)

// WithProcPath sets where the proc filesystem is mounted.
func WithProcPath(path string) Option {
	return func(opts *Options) {
		opts.ProcPath = path
	}
}
