package monitoring

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultInterval  = 30 * time.Second
	defaultThreshold = 1000
	alertCooldown    = 5 * time.Minute
)

// Metrics is a snapshot of the process's goroutine and heap usage
type Metrics struct {
	Goroutines int       `json:"goroutines"`
	Baseline   int       `json:"baseline"`
	Peak       int       `json:"peak"`
	Growth     int       `json:"growth"`
	HeapAlloc  uint64    `json:"heap_alloc_bytes"`
	SampledAt  time.Time `json:"sampled_at"`
}

// RuntimeMonitor samples goroutine counts and warns when they pass a
// threshold. Each websocket client costs two goroutines, so a leak in the
// hub shows up here first.
type RuntimeMonitor struct {
	logger    zerolog.Logger
	interval  time.Duration
	threshold int

	mu        sync.RWMutex
	metrics   Metrics
	lastAlert time.Time
}

// NewRuntimeMonitor creates a monitor. Non-positive arguments select the defaults.
func NewRuntimeMonitor(logger zerolog.Logger, interval time.Duration, threshold int) *RuntimeMonitor {
	if interval <= 0 {
		interval = defaultInterval
	}
	if threshold <= 0 {
		threshold = defaultThreshold
	}
	baseline := runtime.NumGoroutine()
	return &RuntimeMonitor{
		logger:    logger.With().Str("component", "RuntimeMonitor").Logger(),
		interval:  interval,
		threshold: threshold,
		metrics: Metrics{
			Goroutines: baseline,
			Baseline:   baseline,
			Peak:       baseline,
			SampledAt:  time.Now(),
		},
	}
}

// Run samples every interval until ctx is cancelled
func (m *RuntimeMonitor) Run(ctx context.Context) {
	m.logger.Info().
		Int("baseline", m.Metrics().Baseline).
		Dur("interval", m.interval).
		Msg("Started runtime monitoring")

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.Sample()
		case <-ctx.Done():
			return
		}
	}
}

// Sample takes a measurement now and returns it
func (m *RuntimeMonitor) Sample() Metrics {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	current := runtime.NumGoroutine()

	m.mu.Lock()
	m.metrics.Goroutines = current
	if current > m.metrics.Peak {
		m.metrics.Peak = current
	}
	m.metrics.Growth = current - m.metrics.Baseline
	m.metrics.HeapAlloc = mem.HeapAlloc
	m.metrics.SampledAt = time.Now()
	alert := current > m.threshold && time.Since(m.lastAlert) > alertCooldown
	if alert {
		m.lastAlert = m.metrics.SampledAt
	}
	snapshot := m.metrics
	m.mu.Unlock()

	m.logger.Debug().
		Int("goroutines", current).
		Int("peak", snapshot.Peak).
		Uint64("heap_alloc", snapshot.HeapAlloc).
		Msg("Runtime metrics")

	if alert {
		m.logger.Warn().
			Int("goroutines", current).
			Int("threshold", m.threshold).
			Int("growth", snapshot.Growth).
			Msg("High goroutine count detected - possible leak")
	}
	return snapshot
}

// Metrics returns the most recent sample
func (m *RuntimeMonitor) Metrics() Metrics {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.metrics
}
