package telemetry

import (
	"context"
	"log/slog"
	"runtime"

	"github.com/shirou/gopsutil/v4/cpu"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var meter = otel.Meter("congressdata/perf_stats")
var cpuGauge, _ = meter.Float64Gauge("cpu_usage")
var memoryGauge, _ = meter.Int64Gauge("allocated_mb")
var liveObjectsGauge, _ = meter.Int64Gauge("live_objects")
var goroutineGauge, _ = meter.Int64Gauge("goroutine_count")

// PerfStats is one sample of process resource usage.
type PerfStats struct {
	CPUPercent  float64
	AllocatedMB int64
	LiveObjects int64
	Goroutines  int64
}

// SamplePerfStats reads the current resource usage. CPU usage is measured since the
// previous sample, so the first call of a process reports 0.
func SamplePerfStats() PerfStats {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	stats := PerfStats{
		AllocatedMB: int64(memStats.Alloc / 1_000_000),
		LiveObjects: int64(memStats.Mallocs) - int64(memStats.Frees),
		Goroutines:  int64(runtime.NumGoroutine()),
	}
	usage, err := cpu.Percent(0, false)
	if err == nil && len(usage) > 0 {
		stats.CPUPercent = usage[0]
	} else if err != nil {
		slog.Debug("failed to read cpu usage", "err", err)
	}
	return stats
}

// RecordPerfStats samples resource usage and records it against the gauges, tagged with
// the stage that just finished.
func RecordPerfStats(ctx context.Context, stage string) PerfStats {
	stats := SamplePerfStats()
	attrs := metric.WithAttributes(attribute.String("stage", stage))
	cpuGauge.Record(ctx, stats.CPUPercent, attrs)
	memoryGauge.Record(ctx, stats.AllocatedMB, attrs)
	liveObjectsGauge.Record(ctx, stats.LiveObjects, attrs)
	goroutineGauge.Record(ctx, stats.Goroutines, attrs)
	return stats
}
