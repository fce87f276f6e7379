package report

import (
	"time"

	log "github.com/sirupsen/logrus"
)

// LogObserver logs the completion of a sampling run, at most once per period
// and only when the percentage changed.
type LogObserver struct {
	period  time.Duration
	last    time.Time
	percent int
	now     func() time.Time
}

func NewLogObserver(period time.Duration) *LogObserver {
	return &LogObserver{
		period:  period,
		percent: -1,
		now:     time.Now,
	}
}

func (o *LogObserver) ObserveProgress(fraction float64) {
	now := o.now()
	if !o.last.IsZero() && now.Sub(o.last) < o.period {
		return
	}

	percent := int(fraction * 100)
	if percent == o.percent {
		return
	}
	o.last, o.percent = now, percent

	log.WithField("progress", percent).Info("sampling threads")
}
