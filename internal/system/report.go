package system

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// Report summarizes one preview run
type Report struct {
	Build      string
	Frames     int
	Failed     int
	Steps      int
	Draws      int
	Load       time.Duration
	Sweep      time.Duration
	Total      time.Duration
	RSS        uint64
	SystemUsed float64
	Cores      int
}

// Collect fills in process and host figures. Missing figures stay zero.
func (r *Report) Collect() {
	r.Cores = runtime.NumCPU()
	if n, err := cpu.Counts(true); err == nil && n > 0 {
		r.Cores = n
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		r.SystemUsed = vm.UsedPercent
	}
	if p, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if mi, err := p.MemoryInfo(); err == nil {
			r.RSS = mi.RSS
		}
	}
}

// StepsPerSecond is the effective sweep rate
func (r *Report) StepsPerSecond() float64 {
	if r.Sweep <= 0 {
		return 0
	}
	return float64(r.Steps) / r.Sweep.Seconds()
}

func (r *Report) String() string {
	var b strings.Builder
	b.WriteString("--- [PERFORMANCE REPORT] ---\n")
	fmt.Fprintf(&b, "Build: %s\n", r.Build)
	fmt.Fprintf(&b, "Frames: %d (failed %d)\n", r.Frames, r.Failed)
	fmt.Fprintf(&b, "Loading: %.2fs\n", r.Load.Seconds())
	fmt.Fprintf(&b, "Sweep: %.2fs (%d steps, %d draws, %.2f steps/s)\n", r.Sweep.Seconds(), r.Steps, r.Draws, r.StepsPerSecond())
	fmt.Fprintf(&b, "Total Time: %.2fs\n", r.Total.Seconds())
	fmt.Fprintf(&b, "RSS: %.1f MiB | Host memory used: %.1f%% | Cores: %d\n", float64(r.RSS)/(1<<20), r.SystemUsed, r.Cores)
	b.WriteString("----------------------------\n")
	return b.String()
}
