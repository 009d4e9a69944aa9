// Package bench measures how long requirement specifiers take to parse.
// It is meant for spotting pathological inputs, not for comparing machines.
package bench

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/abdul-hamid-achik/reqspec/packages/core/parser"
)

var ErrNoSpecifiers = errors.New("no specifiers to benchmark")

type config struct {
	parser  *parser.Parser
	workers int
	rate    float64
}

type Option func(*config)

// WithParser benchmarks p instead of a default parser.
func WithParser(p *parser.Parser) Option {
	return func(c *config) {
		c.parser = p
	}
}

// WithWorkers sets how many goroutines parse in parallel.
func WithWorkers(n int) Option {
	return func(c *config) {
		c.workers = n
	}
}

// WithRate caps throughput at perSecond parses per second. Zero means no cap.
func WithRate(perSecond float64) Option {
	return func(c *config) {
		c.rate = perSecond
	}
}

// Run parses every specifier iterations times and summarizes the latencies.
// Parse failures are counted, not returned. When ctx is cancelled Run stops
// early and returns the partial summary together with ctx.Err().
func Run(ctx context.Context, specifiers []string, iterations int, opts ...Option) (*Summary, error) {
	if len(specifiers) == 0 {
		return nil, ErrNoSpecifiers
	}
	if iterations < 1 {
		return nil, fmt.Errorf("iterations must be at least 1, got %d", iterations)
	}

	cfg := config{workers: 1}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.parser == nil {
		cfg.parser = parser.NewParser()
	}
	if cfg.workers < 1 {
		cfg.workers = 1
	}

	var limiter *rate.Limiter
	if cfg.rate > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.rate), 1)
	}

	metrics := NewMetrics()
	metrics.Start()

	jobs := make(chan string)
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < cfg.workers; i++ {
		g.Go(func() error {
			for spec := range jobs {
				if limiter != nil {
					if err := limiter.Wait(gctx); err != nil {
						return err
					}
				}
				start := time.Now()
				_, err := cfg.parser.Parse(spec)
				metrics.Record(spec, time.Since(start), err)
			}
			return nil
		})
	}

feed:
	for i := 0; i < iterations; i++ {
		for _, spec := range specifiers {
			select {
			case jobs <- spec:
			case <-gctx.Done():
				break feed
			}
		}
	}
	close(jobs)

	werr := g.Wait()
	metrics.Stop()
	summary := metrics.Summary()

	if err := ctx.Err(); err != nil {
		return summary, err
	}
	if werr != nil {
		return summary, werr
	}
	return summary, nil
}
