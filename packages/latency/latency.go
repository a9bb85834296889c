// Package latency summarizes check durations with an HDR histogram.
package latency

import (
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

const (
	minLatencyUs = 1
	maxLatencyUs = 60_000_000
)

// Summary holds the latency distribution of the recorded checks.
type Summary struct {
	Count int64
	Min   time.Duration
	Max   time.Duration
	Mean  time.Duration
	P50   time.Duration
	P95   time.Duration
	P99   time.Duration
}

// Recorder collects durations. It is not safe for concurrent use.
type Recorder struct {
	// Histogram: 1us to 60s range, 3 significant digits
	histogram *hdrhistogram.Histogram
}

func NewRecorder() *Recorder {
	return &Recorder{
		histogram: hdrhistogram.New(minLatencyUs, maxLatencyUs, 3),
	}
}

func (r *Recorder) Record(d time.Duration) {
	us := d.Microseconds()
	if us < minLatencyUs {
		us = minLatencyUs
	}
	if us > maxLatencyUs {
		us = maxLatencyUs
	}
	_ = r.histogram.RecordValue(us)
}

func (r *Recorder) Summary() Summary {
	if r.histogram.TotalCount() == 0 {
		return Summary{}
	}
	return Summary{
		Count: r.histogram.TotalCount(),
		Min:   usToDuration(r.histogram.Min()),
		Max:   usToDuration(r.histogram.Max()),
		Mean:  time.Duration(r.histogram.Mean() * float64(time.Microsecond)),
		P50:   usToDuration(r.histogram.ValueAtQuantile(50)),
		P95:   usToDuration(r.histogram.ValueAtQuantile(95)),
		P99:   usToDuration(r.histogram.ValueAtQuantile(99)),
	}
}

// Summarize builds a Summary from a set of durations.
func Summarize(durations []time.Duration) Summary {
	r := NewRecorder()
	for _, d := range durations {
		r.Record(d)
	}
	return r.Summary()
}

func usToDuration(us int64) time.Duration {
	return time.Duration(us) * time.Microsecond
}
