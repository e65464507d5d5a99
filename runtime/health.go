package runtime

import (
	"context"
	"log/slog"
	"os"
	goruntime "runtime"
	"time"

	"github.com/shirou/gopsutil/process"
)

// HealthWorker samples the CPU and memory footprint of the running process
// and logs it at a fixed interval. It rides under the supervisor like any
// other worker.
type HealthWorker struct {
	log            *slog.Logger
	metricInterval time.Duration
}

func NewHealthWorker(log *slog.Logger, metricInterval time.Duration) *HealthWorker {
	return &HealthWorker{log: log, metricInterval: metricInterval}
}

func (w *HealthWorker) Run(ctx context.Context) error {
	self, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	ticker := time.NewTicker(w.metricInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("context done, stopping health sampling")
			return nil
		case <-ticker.C:
			cpu, err := self.CPUPercent()
			if err != nil {
				w.log.Error("cpu sampling failed", "error", err)
				continue
			}
			ram, err := self.MemoryPercent()
			if err != nil {
				w.log.Error("memory sampling failed", "error", err)
				continue
			}
			var stats goruntime.MemStats
			goruntime.ReadMemStats(&stats)
			w.log.Info("process health",
				"cpu_percent", cpu,
				"ram_percent", ram,
				"heap_alloc_mb", stats.HeapAlloc/1024/1024,
				"goroutines", goruntime.NumGoroutine())
		}
	}
}
