package profiler

import (
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-soft/common"
)

// Report is one interval's worth of frame, raster and memory statistics.
type Report struct {
	FPS    float64
	Frames int

	// Triangles, Fragments and Culled are summed over the interval.
	Triangles int
	Fragments int
	Culled    int

	HeapMB      float64
	AllocRateMB float64
	SysMB       float64
	GCCount     uint32
	LastPauseUs uint64
	MaxPauseUs  uint64
}

// Profiler tracks frame rate, rasterizer workload and memory statistics for performance monitoring.
// Outputs stats to the shared logger at a configurable interval.
type Profiler struct {
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	triangles int
	fragments int
	culled    int

	now    func() time.Time
	report Report
}

// NewProfiler creates a new Profiler.
// Update interval defaults to 1 second.
//
// Parameters:
//   - options: functional options to configure the profiler
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		updateInterval: time.Second,
		memStats:       runtime.MemStats{},
		now:            time.Now,
	}
	for _, option := range options {
		option(p)
	}
	p.lastTime = p.now()
	return p
}

// Record adds one frame's rasterizer counters to the current interval.
//
// Parameters:
//   - triangles: triangles submitted this frame
//   - fragments: fragments shaded this frame
//   - culled: triangles removed by culling this frame
func (p *Profiler) Record(triangles, fragments, culled int) {
	p.triangles += triangles
	p.fragments += fragments
	p.culled += culled
}

// LastReport returns the statistics logged by the most recent interval.
func (p *Profiler) LastReport() Report {
	return p.report
}

// Tick should be called once per frame to track frame timing.
// Logs performance statistics when the update interval has elapsed.
// Statistics include: FPS, triangle and fragment throughput, heap usage, allocation rate, GC count/pause times, total memory.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.frameCount++
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)

	if elapsed < p.updateInterval {
		return false
	}

	runtime.ReadMemStats(&p.memStats)
	r := Report{
		FPS:       float64(p.frameCount) / elapsed.Seconds(),
		Frames:    p.frameCount,
		Triangles: p.triangles,
		Fragments: p.fragments,
		Culled:    p.culled,
		// Alloc is live heap, Sys is the process footprint obtained from the OS
		HeapMB: float64(p.memStats.Alloc) / 1024 / 1024,
		SysMB:  float64(p.memStats.Sys) / 1024 / 1024,
	}

	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	r.AllocRateMB = float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	gcCount := p.memStats.NumGC
	r.GCCount = gcCount
	if gcCount > 0 {
		// PauseNs is a circular buffer of last 256 GC pauses
		r.LastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000

		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			pause := p.memStats.PauseNs[i%256] / 1000
			if pause > r.MaxPauseUs {
				r.MaxPauseUs = pause
			}
		}
	}

	common.Logger().Info("profiler",
		"fps", r.FPS,
		"triangles", r.Triangles,
		"fragments", r.Fragments,
		"culled", r.Culled,
		"heap_mb", r.HeapMB,
		"alloc_rate_mb", r.AllocRateMB,
		"gc", r.GCCount,
		"gc_last_us", r.LastPauseUs,
		"gc_max_us", r.MaxPauseUs,
		"sys_mb", r.SysMB,
	)

	p.report = r
	p.frameCount = 0
	p.triangles = 0
	p.fragments = 0
	p.culled = 0
	p.lastTime = currentTime
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}
