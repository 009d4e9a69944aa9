package bench

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdul-hamid-achik/reqspec/packages/core/parser"
)

func TestMetricsSummary(t *testing.T) {
	m := NewMetrics()
	m.Start()
	for i := 0; i < 100; i++ {
		m.Record("fast", time.Duration(i+1)*time.Microsecond, nil)
	}
	m.Record("slow", 50*time.Millisecond, errors.New("boom"))
	m.Record("slow", 30*time.Millisecond, errors.New("second"))
	m.Stop()

	s := m.Summary()
	assert.Equal(t, int64(102), s.Count)
	assert.Equal(t, int64(2), s.Errors)
	assert.Equal(t, time.Microsecond, s.Min)
	assert.InDelta(t, 50*time.Millisecond, s.Max, float64(100*time.Microsecond))
	assert.True(t, s.P50 <= s.P95)
	assert.True(t, s.P95 <= s.P99)
	assert.True(t, s.P99 <= s.Max)

	require.Len(t, s.Specifiers, 2)
	assert.Equal(t, "slow", s.Slowest)
	assert.Equal(t, "slow", s.Specifiers[0].Specifier)
	assert.Equal(t, int64(2), s.Specifiers[0].Count)
	assert.Equal(t, "boom", s.Specifiers[0].Error)
	assert.Equal(t, int64(100), s.Specifiers[1].Count)
	assert.Empty(t, s.Specifiers[1].Error)
}

func TestMetricsClamp(t *testing.T) {
	assert.Equal(t, int64(minLatencyUs), clampLatency(0))
	assert.Equal(t, int64(250), clampLatency(250*time.Microsecond))
	assert.Equal(t, int64(maxLatencyUs), clampLatency(2*time.Minute))
}

func TestSummaryErrorRate(t *testing.T) {
	assert.Zero(t, (&Summary{}).ErrorRate())
	assert.InDelta(t, 0.25, (&Summary{Count: 8, Errors: 2}).ErrorRate(), 0.0001)
}

func TestRun(t *testing.T) {
	specs := []string{
		"name>=1.0",
		"name[fred,bar] @ http://foo.com ; python_version=='2.7'",
		"pkg===1.0",
	}

	s, err := Run(context.Background(), specs, 10, WithWorkers(3))
	require.NoError(t, err)

	assert.Equal(t, int64(30), s.Count)
	assert.Equal(t, int64(10), s.Errors)
	require.Len(t, s.Specifiers, 3)
	assert.Contains(t, specs, s.Slowest)

	for _, ss := range s.Specifiers {
		assert.Equal(t, int64(10), ss.Count, ss.Specifier)
		if ss.Specifier == "pkg===1.0" {
			assert.Equal(t, int64(10), ss.Errors)
			assert.Contains(t, ss.Error, "arbitrary equality")
		} else {
			assert.Zero(t, ss.Errors, ss.Specifier)
		}
	}
}

func TestRun_WithParser(t *testing.T) {
	p := parser.NewParser(parser.WithVersionParser(rejectAll{}))

	s, err := Run(context.Background(), []string{"name>=1.0"}, 4, WithParser(p))
	require.NoError(t, err)
	assert.Equal(t, int64(4), s.Errors)
}

func TestRun_WithRate(t *testing.T) {
	s, err := Run(context.Background(), []string{"name"}, 5, WithRate(1000), WithWorkers(2))
	require.NoError(t, err)
	assert.Equal(t, int64(5), s.Count)
}

func TestRun_Invalid(t *testing.T) {
	_, err := Run(context.Background(), nil, 10)
	assert.ErrorIs(t, err, ErrNoSpecifiers)

	_, err = Run(context.Background(), []string{"name"}, 0)
	assert.Error(t, err)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s, err := Run(ctx, []string{"name"}, 1000)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, s)
	assert.Less(t, s.Count, int64(1000))
}

func TestReporter_Summary(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(WithWriter(&buf), WithNoColor(true), WithTop(1))

	r.Summary(&Summary{
		Duration: 120 * time.Millisecond,
		Count:    1200,
		Errors:   12,
		P50:      15 * time.Microsecond,
		Max:      2500 * time.Microsecond,
		Specifiers: []SpecifierSummary{
			{Specifier: "pkg===1.0", Count: 12, Errors: 12, Error: "arbitrary equality", Mean: 40 * time.Microsecond},
			{Specifier: "name", Count: 12},
		},
	})

	out := buf.String()
	assert.Contains(t, out, "BENCH SUMMARY")
	assert.Contains(t, out, "Parses:     1,200")
	assert.Contains(t, out, "Failed:     12 (1.0%)")
	assert.Contains(t, out, "p50: 15μs")
	assert.Contains(t, out, "max: 2.5ms")
	assert.Contains(t, out, "1. pkg===1.0")
	assert.Contains(t, out, "error: arbitrary equality")
	assert.NotContains(t, out, "2. name")
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{123456, "123,456"},
		{1234567, "1,234,567"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatNumber(tt.n))
	}
}

type rejectAll struct{}

func (rejectAll) ParseConstraint(text string) (*parser.Constraint, error) {
	return nil, errors.New("rejected")
}
