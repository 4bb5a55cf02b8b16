package project

// CPUWindow is a bounded queue of raw cumulative-CPU-usage snapshots,
// one appended per healthy tick while idle detection is active. Its
// length never exceeds the project's idle minutes after a push; the
// smoothed per-minute rate over the window tells an idling service
// apart from one serving occasional requests, which an instantaneous
// sample cannot.
type CPUWindow struct {
	samples []uint64
	evicted bool
}

// NewCPUWindow returns an empty window.
func NewCPUWindow() *CPUWindow {
	return &CPUWindow{}
}

// Push appends a snapshot and evicts from the front until the window
// holds at most idleMinutes entries.
func (w *CPUWindow) Push(sample uint64, idleMinutes uint) {
	w.samples = append(w.samples, sample)
	for uint(len(w.samples)) > idleMinutes {
		w.samples = w.samples[1:]
		w.evicted = true
	}
}

// Len returns the number of held snapshots.
func (w *CPUWindow) Len() int {
	return len(w.samples)
}

// FullHistory reports whether the window has ever evicted a sample,
// meaning its oldest entry is a real idleMinutes-old baseline rather
// than the first sample after startup.
func (w *CPUWindow) FullHistory() bool {
	return w.evicted
}

// RatePerMinute returns (latest - oldest) / idleMinutes over the current
// window contents. A counter that went backwards (container restart)
// reads as zero.
func (w *CPUWindow) RatePerMinute(idleMinutes uint) uint64 {
	if len(w.samples) == 0 || idleMinutes == 0 {
		return 0
	}
	oldest := w.samples[0]
	latest := w.samples[len(w.samples)-1]
	if latest < oldest {
		return 0
	}
	return (latest - oldest) / uint64(idleMinutes)
}
