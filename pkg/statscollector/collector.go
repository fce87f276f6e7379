package statscollector

import (
	"slices"
	"strconv"
)

// Entry is a registry key together with its stats.
type Entry struct {
	Key   string
	Stats *ThreadStats
}

// Collector maps thread names (or thread ids) to their stats. It is meant to be
// owned by a single sampling loop and is not safe for concurrent use.
type Collector struct {
	entries map[string]*ThreadStats
	opts    *Options
}

// NewCollector creates an empty Collector.
func NewCollector(opts ...Option) *Collector {
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}
	return &Collector{
		entries: make(map[string]*ThreadStats),
		opts:    options,
	}
}

// Observe routes a snapshot into the entry for name, creating it on first
// sight. Errors from the update are returned unchanged.
func (c *Collector) Observe(name string, s Snapshot) error {
	key := c.key(name, s)
	stats, ok := c.entries[key]
	if !ok {
		stats = newThreadStats(name, c.opts.Mode)
		c.entries[key] = stats
	}
	return stats.UpdateFromSnapshot(s)
}

func (c *Collector) key(name string, s Snapshot) string {
	if c.opts.GroupBy == GroupByThread {
		return strconv.Itoa(s.TID)
	}
	return name
}

// Options returns the options the collector was created with.
func (c *Collector) Options() Options {
	return *c.opts
}

func (c *Collector) Len() int {
	return len(c.entries)
}

func (c *Collector) Get(key string) (*ThreadStats, bool) {
	stats, ok := c.entries[key]
	return stats, ok
}

// Keys returns all registry keys in sorted order.
func (c *Collector) Keys() []string {
	var keys []string
	for k := range c.entries {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Entries returns all entries sorted by key.
func (c *Collector) Entries() []Entry {
	keys := c.Keys()
	result := make([]Entry, 0, len(keys))
	for _, k := range keys {
		result = append(result, Entry{Key: k, Stats: c.entries[k]})
	}
	return result
}
