package infrastructure

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// RuntimeStats is one snapshot of the Go runtime
type RuntimeStats struct {
	Goroutines int64
	HeapBytes  int64
	SysBytes   int64
	GCCount    uint32
	Uptime     time.Duration
	Timestamp  time.Time
}

// RuntimeCollector periodically records runtime gauges next to the dashboard
// instruments so /metrics shows process health without a separate exporter.
type RuntimeCollector struct {
	goroutines metric.Int64Gauge
	heap       metric.Int64Gauge
	sys        metric.Int64Gauge
	uptime     metric.Float64Gauge

	startTime time.Time
	interval  time.Duration
	stopOnce  sync.Once
	stopCh    chan struct{}
}

// NewRuntimeCollector registers the runtime gauges on meter
func NewRuntimeCollector(meter metric.Meter, interval time.Duration) (*RuntimeCollector, error) {
	if interval <= 0 {
		interval = 15 * time.Second
	}

	goroutines, err := meter.Int64Gauge("runtime_goroutines",
		metric.WithDescription("Number of live goroutines"))
	if err != nil {
		return nil, fmt.Errorf("create goroutines gauge: %w", err)
	}
	heap, err := meter.Int64Gauge("runtime_heap_bytes",
		metric.WithDescription("Bytes of allocated heap objects"),
		metric.WithUnit("By"))
	if err != nil {
		return nil, fmt.Errorf("create heap gauge: %w", err)
	}
	sys, err := meter.Int64Gauge("runtime_sys_bytes",
		metric.WithDescription("Bytes obtained from the OS"),
		metric.WithUnit("By"))
	if err != nil {
		return nil, fmt.Errorf("create sys gauge: %w", err)
	}
	uptime, err := meter.Float64Gauge("process_uptime_seconds",
		metric.WithDescription("Seconds since the dashboard started"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, fmt.Errorf("create uptime gauge: %w", err)
	}

	return &RuntimeCollector{
		goroutines: goroutines,
		heap:       heap,
		sys:        sys,
		uptime:     uptime,
		startTime:  time.Now(),
		interval:   interval,
		stopCh:     make(chan struct{}),
	}, nil
}

// Collect records one snapshot and returns it
func (c *RuntimeCollector) Collect(ctx context.Context) RuntimeStats {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	stats := RuntimeStats{
		Goroutines: int64(runtime.NumGoroutine()),
		HeapBytes:  int64(mem.HeapAlloc),
		SysBytes:   int64(mem.Sys),
		GCCount:    mem.NumGC,
		Uptime:     time.Since(c.startTime),
		Timestamp:  time.Now(),
	}

	c.goroutines.Record(ctx, stats.Goroutines)
	c.heap.Record(ctx, stats.HeapBytes)
	c.sys.Record(ctx, stats.SysBytes)
	c.uptime.Record(ctx, stats.Uptime.Seconds())
	return stats
}

// Start collects on every tick until ctx is done or Stop is called
func (c *RuntimeCollector) Start(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.Collect(ctx)
	for {
		select {
		case <-ticker.C:
			c.Collect(ctx)
		case <-c.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Stop ends collection. It is safe to call more than once.
func (c *RuntimeCollector) Stop() {
	c.stopOnce.Do(func() { close(c.stopCh) })
}
