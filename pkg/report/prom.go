package report

import (
	"io"

	prom "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"k8s.io/utils/ptr"

	"github.com/voluzi/epochstat/pkg/statscollector"
)

const metricPrefix = "epochstat_thread_"

type promCounter struct {
	name string
	help string
	get  func(*statscollector.ThreadStats) statscollector.Counter
}

var promCounters = []promCounter{
	{"user_ticks_mean", "Mean sampled user mode CPU ticks.", func(s *statscollector.ThreadStats) statscollector.Counter { return s.UserTime }},
	{"sys_ticks_mean", "Mean sampled kernel mode CPU ticks.", func(s *statscollector.ThreadStats) statscollector.Counter { return s.SysTime }},
	{"io_wait_ticks_mean", "Mean sampled block IO delay ticks.", func(s *statscollector.ThreadStats) statscollector.Counter { return s.IOTime }},
	{"major_faults_mean", "Mean sampled major page faults.", func(s *statscollector.ThreadStats) statscollector.Counter { return s.MajorFaults }},
	{"minor_faults_mean", "Mean sampled minor page faults.", func(s *statscollector.ThreadStats) statscollector.Counter { return s.MinorFaults }},
}

// metricFamilies builds one gauge family per counter with a sample per entry.
func metricFamilies(c *statscollector.Collector) []*prom.MetricFamily {
	entries := c.Entries()
	families := make([]*prom.MetricFamily, 0, len(promCounters)+1)

	samples := &prom.MetricFamily{
		Name: ptr.To(metricPrefix + "samples"),
		Help: ptr.To("Number of snapshots folded into the entry."),
		Type: prom.MetricType_GAUGE.Enum(),
	}

	for _, pc := range promCounters {
		mf := &prom.MetricFamily{
			Name: ptr.To(metricPrefix + pc.name),
			Help: ptr.To(pc.help),
			Type: prom.MetricType_GAUGE.Enum(),
		}
		for _, e := range entries {
			mean, _ := pc.get(e.Stats).Get()
			mf.Metric = append(mf.Metric, &prom.Metric{
				Label: labels(e),
				Gauge: &prom.Gauge{Value: ptr.To(mean)},
			})
		}
		families = append(families, mf)
	}

	for _, e := range entries {
		samples.Metric = append(samples.Metric, &prom.Metric{
			Label: labels(e),
			Gauge: &prom.Gauge{Value: ptr.To(float64(e.Stats.UserTime.Samples()))},
		})
	}
	return append(families, samples)
}

func labels(e statscollector.Entry) []*prom.LabelPair {
	pairs := []*prom.LabelPair{{Name: ptr.To("thread"), Value: ptr.To(e.Stats.Name)}}
	if e.Key != e.Stats.Name {
		pairs = append(pairs, &prom.LabelPair{Name: ptr.To("tid"), Value: ptr.To(e.Key)})
	}
	return pairs
}

func writeProm(w io.Writer, c *statscollector.Collector) error {
	for _, mf := range metricFamilies(c) {
		if len(mf.Metric) == 0 {
			continue
		}
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
