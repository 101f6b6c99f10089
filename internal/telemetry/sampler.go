package telemetry

import (
	"context"
	"math"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"

	"stride/internal/models"
)

// minCPUSampleGap guards the delta division: back-to-back samples closer than
// this reuse the previous percentage instead of dividing a near-zero elapsed
// interval.
const minCPUSampleGap = 250 * time.Millisecond

// Sampler reads host CPU/load/memory/disk figures on demand. The only
// retained state is the previous CPU tick totals needed for the delta-based
// usage percentage; everything else is a point-in-time read.
type Sampler struct {
	mu            sync.Mutex
	lastCPUTotal  float64
	lastCPUIdle   float64
	lastSampledAt time.Time
	lastUsage     float64

	proc *process.Process
}

// NewSampler returns a sampler with no prior CPU measurement; the first
// sample reports a usage of 0.
func NewSampler() *Sampler {
	s := &Sampler{}
	if p, err := process.NewProcess(int32(os.Getpid())); err == nil {
		s.proc = p
	}
	return s
}

// Sample reads the host. Failures of individual probes zero the affected
// fields rather than returning an error, so the broadcast loop never stops
// on a sampling problem.
func (s *Sampler) Sample(ctx context.Context) models.HostSample {
	now := time.Now()
	sample := models.HostSample{Cores: runtime.NumCPU(), SampledAt: now}

	sample.CPUPercent = s.cpuPercent(ctx, now)

	if loadStats, err := load.AvgWithContext(ctx); err == nil && loadStats != nil {
		sample.Load1 = loadStats.Load1
		sample.Load5 = loadStats.Load5
		sample.Load15 = loadStats.Load15
	}

	if memStats, err := mem.VirtualMemoryWithContext(ctx); err == nil && memStats != nil {
		sample.MemUsedMB = memStats.Used / 1024 / 1024
		sample.MemTotalMB = memStats.Total / 1024 / 1024
	}

	if s.proc != nil {
		if memInfo, err := s.proc.MemoryInfoWithContext(ctx); err == nil && memInfo != nil {
			sample.MemoryRSSMB = memInfo.RSS / 1024 / 1024
		}
	}

	if diskStats, err := disk.UsageWithContext(ctx, rootPath()); err == nil && diskStats != nil {
		const gb = 1024 * 1024 * 1024
		sample.DiskTotalGB = roundGB(float64(diskStats.Total) / gb)
		sample.DiskUsedGB = roundGB(float64(diskStats.Used) / gb)
		sample.DiskFreeGB = roundGB(float64(diskStats.Free) / gb)
		sample.DiskPercent = clampPercent(diskStats.UsedPercent)
	}

	return sample
}

func (s *Sampler) cpuPercent(ctx context.Context, now time.Time) float64 {
	timesStats, err := cpu.TimesWithContext(ctx, false)
	if err != nil || len(timesStats) == 0 {
		return 0
	}
	total := cpuTotal(timesStats[0])
	idle := timesStats[0].Idle + timesStats[0].Iowait

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.lastSampledAt.IsZero() && now.Sub(s.lastSampledAt) < minCPUSampleGap {
		return s.lastUsage
	}

	var usage float64
	if s.lastCPUTotal > 0 {
		deltaTotal := total - s.lastCPUTotal
		deltaIdle := idle - s.lastCPUIdle
		if deltaTotal > 0 {
			used := deltaTotal - deltaIdle
			if used < 0 {
				used = 0
			}
			usage = clampPercent((used / deltaTotal) * 100)
		}
	}

	s.lastCPUTotal = total
	s.lastCPUIdle = idle
	s.lastSampledAt = now
	s.lastUsage = usage
	return usage
}

func rootPath() string {
	if runtime.GOOS == "windows" {
		return "C:\\"
	}
	return "/"
}

func cpuTotal(stat cpu.TimesStat) float64 {
	return stat.User + stat.System + stat.Nice + stat.Idle + stat.Iowait +
		stat.Irq + stat.Softirq + stat.Steal + stat.Guest + stat.GuestNice
}

func clampPercent(val float64) float64 {
	if math.IsNaN(val) || val < 0 {
		return 0
	}
	if val > 100 {
		return 100
	}
	return val
}

func roundGB(v float64) float64 {
	return math.Round(v*100) / 100
}
