package report

import (
	"fmt"
	"io"
	"math"

	"github.com/voluzi/epochstat/pkg/statscollector"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatProm Format = "prom"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatText, FormatJSON, FormatYAML, FormatTOML, FormatProm:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", s)
	}
}

// Write renders every entry of the collector to w.
func Write(w io.Writer, c *statscollector.Collector, format Format) error {
	switch format {
	case FormatText:
		return writeText(w, c)
	case FormatJSON:
		return writeJSON(w, c)
	case FormatYAML:
		return writeYAML(w, c)
	case FormatTOML:
		return writeTOML(w, c)
	case FormatProm:
		return writeProm(w, c)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

func writeText(w io.Writer, c *statscollector.Collector) error {
	for _, e := range c.Entries() {
		s := e.Stats
		label := e.Key
		if label != s.Name {
			label = fmt.Sprintf("%s[%s]", s.Name, e.Key)
		}
		_, err := fmt.Fprintf(w, "%s: user=%s sys=%s io=%s majflt=%s minflt=%s\n",
			label, s.UserTime, s.SysTime, s.IOTime, s.MajorFaults, s.MinorFaults)
		if err != nil {
			return err
		}
	}
	return nil
}

// CounterView is the encoded form of a counter. Mean and spread are nil
// while the counter has no samples.
type CounterView struct {
	Mean    *float64 `json:"mean" yaml:"mean" toml:"mean,omitempty"`
	Spread  *float64 `json:"spread" yaml:"spread" toml:"spread,omitempty"`
	Samples uint64   `json:"samples" yaml:"samples" toml:"samples"`
}

type ThreadView struct {
	Name        string      `json:"name" yaml:"name" toml:"name"`
	UserTime    CounterView `json:"user_time" yaml:"user_time" toml:"user_time"`
	SysTime     CounterView `json:"sys_time" yaml:"sys_time" toml:"sys_time"`
	IOTime      CounterView `json:"io_time" yaml:"io_time" toml:"io_time"`
	MajorFaults CounterView `json:"major_faults" yaml:"major_faults" toml:"major_faults"`
	MinorFaults CounterView `json:"minor_faults" yaml:"minor_faults" toml:"minor_faults"`
}

func counterView(c statscollector.Counter) CounterView {
	mean, spread := c.Get()
	v := CounterView{Samples: c.Samples()}
	if !math.IsNaN(mean) && !math.IsInf(spread, 0) {
		v.Mean = &mean
		v.Spread = &spread
	}
	return v
}

// Views converts the collector into encodable views keyed by registry key.
func Views(c *statscollector.Collector) map[string]ThreadView {
	views := make(map[string]ThreadView, c.Len())
	for _, e := range c.Entries() {
		views[e.Key] = ThreadView{
			Name:        e.Stats.Name,
			UserTime:    counterView(e.Stats.UserTime),
			SysTime:     counterView(e.Stats.SysTime),
			IOTime:      counterView(e.Stats.IOTime),
			MajorFaults: counterView(e.Stats.MajorFaults),
			MinorFaults: counterView(e.Stats.MinorFaults),
		}
	}
	return views
}
