package bench

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Latencies are recorded in microseconds, clamped to 1us..60s.
const (
	minLatencyUs = 1
	maxLatencyUs = 60_000_000
)

// Metrics aggregates parse latencies overall and per specifier.
type Metrics struct {
	mu sync.RWMutex

	total  atomic.Int64
	errors atomic.Int64

	histogram  *hdrhistogram.Histogram
	specifiers map[string]*specifierMetrics

	startTime time.Time
	endTime   time.Time
}

type specifierMetrics struct {
	mu        sync.Mutex
	total     int64
	errors    int64
	firstErr  error
	histogram *hdrhistogram.Histogram
}

func newHistogram() *hdrhistogram.Histogram {
	return hdrhistogram.New(minLatencyUs, maxLatencyUs, 3)
}

func NewMetrics() *Metrics {
	return &Metrics{
		histogram:  newHistogram(),
		specifiers: make(map[string]*specifierMetrics),
	}
}

func (m *Metrics) Start() {
	m.startTime = time.Now()
}

func (m *Metrics) Stop() {
	m.endTime = time.Now()
}

// Record adds one parse of specifier that took d and failed with err
// (nil on success).
func (m *Metrics) Record(specifier string, d time.Duration, err error) {
	m.total.Add(1)
	if err != nil {
		m.errors.Add(1)
	}

	us := clampLatency(d)

	m.mu.Lock()
	_ = m.histogram.RecordValue(us)
	sm, ok := m.specifiers[specifier]
	if !ok {
		sm = &specifierMetrics{histogram: newHistogram()}
		m.specifiers[specifier] = sm
	}
	m.mu.Unlock()

	sm.mu.Lock()
	sm.total++
	if err != nil {
		sm.errors++
		if sm.firstErr == nil {
			sm.firstErr = err
		}
	}
	_ = sm.histogram.RecordValue(us)
	sm.mu.Unlock()
}

func clampLatency(d time.Duration) int64 {
	us := d.Microseconds()
	if us < minLatencyUs {
		us = minLatencyUs
	}
	if us > maxLatencyUs {
		us = maxLatencyUs
	}
	return us
}

// Summary is the result of a bench run.
type Summary struct {
	Duration time.Duration `json:"duration" yaml:"duration"`
	Count    int64         `json:"count" yaml:"count"`
	Errors   int64         `json:"errors" yaml:"errors"`
	// Rate is parses per second over Duration.
	Rate float64 `json:"rate" yaml:"rate"`

	P50  time.Duration `json:"p50" yaml:"p50"`
	P95  time.Duration `json:"p95" yaml:"p95"`
	P99  time.Duration `json:"p99" yaml:"p99"`
	Min  time.Duration `json:"min" yaml:"min"`
	Max  time.Duration `json:"max" yaml:"max"`
	Mean time.Duration `json:"mean" yaml:"mean"`

	// Slowest is the specifier with the highest mean latency.
	Slowest string `json:"slowest" yaml:"slowest"`

	// Specifiers is sorted slowest first.
	Specifiers []SpecifierSummary `json:"specifiers" yaml:"specifiers"`
}

type SpecifierSummary struct {
	Specifier string        `json:"specifier" yaml:"specifier"`
	Count     int64         `json:"count" yaml:"count"`
	Errors    int64         `json:"errors" yaml:"errors"`
	Error     string        `json:"error,omitempty" yaml:"error,omitempty"`
	P50       time.Duration `json:"p50" yaml:"p50"`
	P99       time.Duration `json:"p99" yaml:"p99"`
	Max       time.Duration `json:"max" yaml:"max"`
	Mean      time.Duration `json:"mean" yaml:"mean"`
}

// ErrorRate returns the share of failed parses in [0, 1].
func (s *Summary) ErrorRate() float64 {
	if s.Count == 0 {
		return 0
	}
	return float64(s.Errors) / float64(s.Count)
}

func us(v int64) time.Duration {
	return time.Duration(v) * time.Microsecond
}

func (m *Metrics) Summary() *Summary {
	m.mu.RLock()
	defer m.mu.RUnlock()

	duration := m.endTime.Sub(m.startTime)
	if m.endTime.IsZero() {
		duration = time.Since(m.startTime)
	}

	summary := &Summary{
		Duration:   duration,
		Count:      m.total.Load(),
		Errors:     m.errors.Load(),
		P50:        us(m.histogram.ValueAtQuantile(50)),
		P95:        us(m.histogram.ValueAtQuantile(95)),
		P99:        us(m.histogram.ValueAtQuantile(99)),
		Min:        us(m.histogram.Min()),
		Max:        us(m.histogram.Max()),
		Mean:       time.Duration(m.histogram.Mean() * float64(time.Microsecond)),
		Specifiers: make([]SpecifierSummary, 0, len(m.specifiers)),
	}
	if duration > 0 {
		summary.Rate = float64(summary.Count) / duration.Seconds()
	}

	for spec, sm := range m.specifiers {
		sm.mu.Lock()
		ss := SpecifierSummary{
			Specifier: spec,
			Count:     sm.total,
			Errors:    sm.errors,
			P50:       us(sm.histogram.ValueAtQuantile(50)),
			P99:       us(sm.histogram.ValueAtQuantile(99)),
			Max:       us(sm.histogram.Max()),
			Mean:      time.Duration(sm.histogram.Mean() * float64(time.Microsecond)),
		}
		if sm.firstErr != nil {
			ss.Error = sm.firstErr.Error()
		}
		sm.mu.Unlock()
		summary.Specifiers = append(summary.Specifiers, ss)
	}

	sort.Slice(summary.Specifiers, func(i, j int) bool {
		a, b := summary.Specifiers[i], summary.Specifiers[j]
		if a.Mean != b.Mean {
			return a.Mean > b.Mean
		}
		return a.Specifier < b.Specifier
	})
	if len(summary.Specifiers) > 0 {
		summary.Slowest = summary.Specifiers[0].Specifier
	}

	return summary
}
