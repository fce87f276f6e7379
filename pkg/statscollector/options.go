package statscollector

import (
	"fmt"
)

// Mode selects what a counter samples on every snapshot.
type Mode string

const (
	// ModeCumulative samples the raw cumulative value reported by the kernel.
	ModeCumulative Mode = "cumulative"
	// ModeDelta samples the difference to the previous snapshot of the same thread.
	ModeDelta Mode = "delta"
)

// GroupBy selects the registry key.
type GroupBy string

const (
	// GroupByName merges every thread sharing a name into one entry.
	GroupByName GroupBy = "name"
	// GroupByThread keeps one entry per thread id.
	GroupByThread GroupBy = "thread"
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeCumulative, ModeDelta:
		return m, nil
	default:
		return "", fmt.Errorf("unsupported mode: %s", s)
	}
}

func ParseGroupBy(s string) (GroupBy, error) {
	switch g := GroupBy(s); g {
	case GroupByName, GroupByThread:
		return g, nil
	default:
		return "", fmt.Errorf("unsupported grouping: %s", s)
	}
}

func defaultOptions() *Options {
	return &Options{
		Mode:    ModeCumulative,
		GroupBy: GroupByName,
	}
}

type Options struct {
	Mode    Mode
	GroupBy GroupBy
}

type Option func(*Options)

func WithMode(m Mode) Option {
	return func(opts *Options) {
		opts.Mode = m
	}
}

func WithGroupBy(g GroupBy) Option {
	return func(opts *Options) {
		opts.GroupBy = g
	}
}
