package profiler

import (
	"log/slog"
	"runtime"
	"strconv"
	"time"

	"github.com/Carmen-Shannon/kopki-go/common"
)

// Stats is one profiler sample, covering the frames ticked since the previous sample.
type Stats struct {
	Frames      int
	Elapsed     time.Duration
	FPS         float64
	HeapMB      float64
	AllocRateMB float64
	SysMB       float64
	NumGC       uint32
	LastPause   time.Duration
	MaxPause    time.Duration
}

// LogValue groups the sample under a single slog attribute.
func (s Stats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("frames", s.Frames),
		slog.String("fps", formatFloat(s.FPS)),
		slog.String("heap_mb", formatFloat(s.HeapMB)),
		slog.String("alloc_rate_mb_s", formatFloat(s.AllocRateMB)),
		slog.String("sys_mb", formatFloat(s.SysMB)),
		slog.Any("gc", s.NumGC),
		slog.Duration("gc_last_pause", s.LastPause),
		slog.Duration("gc_max_pause", s.MaxPause),
	)
}

// Profiler tracks frame rate and memory statistics for performance monitoring.
// Logs a sample at Info every interval.
type Profiler struct {
	label          string
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	now            func() time.Time
	logger         func() *slog.Logger
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	last           Stats
}

// NewProfiler creates a new Profiler. The interval defaults to 1 second and samples
// go to the module logger.
//
// Parameters:
//   - opts: optional configuration for the profiler
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(opts ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		label:          "profiler",
		updateInterval: time.Second,
		now:            time.Now,
		logger:         common.Logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.lastTime = p.now()
	return p
}

// Interval returns how often a sample is taken.
func (p *Profiler) Interval() time.Duration {
	return p.updateInterval
}

// Last returns the most recent sample, or the zero Stats before the first one.
func (p *Profiler) Last() Stats {
	return p.last
}

// Tick should be called once per frame to track frame timing.
// Takes and logs a sample when the interval has elapsed.
//
// Returns:
//   - bool: true if a sample was taken this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.frameCount++
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	runtime.ReadMemStats(&p.memStats)
	s := Stats{
		Frames:  p.frameCount,
		Elapsed: elapsed,
		FPS:     float64(p.frameCount) / elapsed.Seconds(),
		// Alloc is live heap, Sys is the process footprint.
		HeapMB:      float64(p.memStats.Alloc) / 1024 / 1024,
		SysMB:       float64(p.memStats.Sys) / 1024 / 1024,
		AllocRateMB: float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / elapsed.Seconds(),
		NumGC:       p.memStats.NumGC,
	}

	gcCount := p.memStats.NumGC
	if gcCount > 0 {
		// PauseNs is a circular buffer of the last 256 pauses.
		s.LastPause = time.Duration(p.memStats.PauseNs[(gcCount-1)%256])
		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			if pause := time.Duration(p.memStats.PauseNs[i%256]); pause > s.MaxPause {
				s.MaxPause = pause
			}
		}
	}

	p.logger().Info("frame stats", slog.String("source", p.label), slog.Any("stats", s))

	p.last = s
	p.frameCount = 0
	p.lastTime = currentTime
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}

// Reset restarts the current interval without taking a sample. Useful after a stall
// such as a window resize that should not count against the frame rate.
func (p *Profiler) Reset() {
	p.frameCount = 0
	p.lastTime = p.now()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}
