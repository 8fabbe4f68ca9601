package extract

import (
	"sort"
	"sync"
	"time"
)

type sample struct {
	timestamp  time.Time
	durationUs int64
	failed     bool
}

// StatsSnapshot is a point-in-time aggregate of query latency samples.
// Latencies are fractional milliseconds at microsecond resolution.
type StatsSnapshot struct {
	Count  int     `json:"count"`
	Errors int     `json:"errors"`
	MinMs  float64 `json:"min_ms"`
	MaxMs  float64 `json:"max_ms"`
	AvgMs  float64 `json:"avg_ms"`
	P50Ms  float64 `json:"p50_ms"`
	P95Ms  float64 `json:"p95_ms"`
	P99Ms  float64 `json:"p99_ms"`
}

// Stats tracks recent query latencies within a rolling window. Failed
// queries are counted separately and do not contribute a latency.
type Stats struct {
	mu      sync.Mutex
	samples []sample
	maxAge  time.Duration
}

func NewStats(maxAge time.Duration) *Stats {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &Stats{
		samples: make([]sample, 0, 256),
		maxAge:  maxAge,
	}
}

// Record adds a successful query that took d.
func (s *Stats) Record(d time.Duration) {
	s.record(d.Microseconds(), false)
}

// RecordError counts a failed query.
func (s *Stats) RecordError() {
	s.record(0, true)
}

// Observe records the outcome of a query that started at start.
func (s *Stats) Observe(start time.Time, err error) {
	if err != nil {
		s.RecordError()
		return
	}
	s.Record(time.Since(start))
}

func (s *Stats) record(durationUs int64, failed bool) {
	if durationUs < 0 {
		durationUs = 0
	}
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)
	s.samples = append(s.samples, sample{
		timestamp:  now,
		durationUs: durationUs,
		failed:     failed,
	})
}

func (s *Stats) Snapshot() StatsSnapshot {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)

	values := make([]int64, 0, len(s.samples))
	var sum int64
	errs := 0
	for _, sm := range s.samples {
		if sm.failed {
			errs++
			continue
		}
		values = append(values, sm.durationUs)
		sum += sm.durationUs
	}
	if len(values) == 0 {
		return StatsSnapshot{Errors: errs}
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })

	return StatsSnapshot{
		Count:  len(values),
		Errors: errs,
		MinMs:  usToMs(float64(values[0])),
		MaxMs:  usToMs(float64(values[len(values)-1])),
		AvgMs:  usToMs(float64(sum) / float64(len(values))),
		P50Ms:  usToMs(percentile(values, 50)),
		P95Ms:  usToMs(percentile(values, 95)),
		P99Ms:  usToMs(percentile(values, 99)),
	}
}

func (s *Stats) pruneLocked(now time.Time) {
	cutoff := now.Add(-s.maxAge)
	writeIdx := 0
	for _, sm := range s.samples {
		if !sm.timestamp.Before(cutoff) {
			s.samples[writeIdx] = sm
			writeIdx++
		}
	}
	s.samples = s.samples[:writeIdx]
}

func usToMs(us float64) float64 {
	return us / 1000
}

func percentile(sortedValues []int64, pct float64) float64 {
	if len(sortedValues) == 0 {
		return 0
	}
	if pct <= 0 {
		return float64(sortedValues[0])
	}
	if pct >= 100 {
		return float64(sortedValues[len(sortedValues)-1])
	}

	index := (float64(len(sortedValues)-1) * pct) / 100.0
	lower := int(index)
	upper := lower + 1
	if upper >= len(sortedValues) {
		return float64(sortedValues[lower])
	}
	if lower == upper {
		return float64(sortedValues[lower])
	}
	weight := index - float64(lower)
	lo := float64(sortedValues[lower])
	hi := float64(sortedValues[upper])
	return lo + ((hi - lo) * weight)
}
