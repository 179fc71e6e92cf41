package sampler

import (
	"runtime"
	"sync"
	"time"
)

// Reader is the platform capability memory readings come from.
type Reader interface {
	// ReadUsage returns the current memory usage in bytes.
	ReadUsage() (uint64, error)
}

// RuntimeReader reads the Go heap via runtime.ReadMemStats.
type RuntimeReader struct{}

// ReadUsage returns the live heap allocation in bytes.
func (RuntimeReader) ReadUsage() (uint64, error) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return ms.HeapAlloc, nil
}

// SpikeFunc is invoked when a reading jumps past the spike threshold.
// Invoked outside the sampler's lock.
type SpikeFunc func(now time.Time, delta int64, current, threshold uint64)

// MemorySampler tracks best-effort point-in-time memory readings, the
// session's peak, and increases that exceed the spike threshold.
type MemorySampler struct {
	mu sync.Mutex

	reader     Reader
	spikeBytes uint64
	now        func() time.Time
	onSpike    SpikeFunc

	current uint64
	peak    uint64
}

// NewMemorySampler creates a sampler. reader may be nil, in which case all
// readings degrade to zero.
func NewMemorySampler(reader Reader, spikeBytes uint64, now func() time.Time, onSpike SpikeFunc) *MemorySampler {
	if now == nil {
		now = time.Now
	}
	return &MemorySampler{
		reader:     reader,
		spikeBytes: spikeBytes,
		now:        now,
		onSpike:    onSpike,
	}
}

// ReadCurrent reads memory usage from the platform capability. Returns 0 if
// the capability is unavailable; never fails.
func (m *MemorySampler) ReadCurrent() uint64 {
	m.mu.Lock()
	reader := m.reader
	m.mu.Unlock()

	if reader == nil {
		return 0
	}
	usage, err := reader.ReadUsage()
	if err != nil {
		return 0
	}
	return usage
}

// CheckSpike compares current against the previous reading and fires the
// spike callback when the increase exceeds the threshold. Peak and current
// are updated unconditionally.
func (m *MemorySampler) CheckSpike(current uint64) {
	m.mu.Lock()

	delta := int64(current) - int64(m.current)
	spiked := m.spikeBytes > 0 && delta > int64(m.spikeBytes)

	m.current = current
	if current > m.peak {
		m.peak = current
	}

	threshold := m.spikeBytes
	onSpike := m.onSpike
	now := m.now()
	m.mu.Unlock()

	if spiked && onSpike != nil {
		onSpike(now, delta, current, threshold)
	}
}

// Sample reads the capability and runs spike detection on the reading.
// Returns the reading.
func (m *MemorySampler) Sample() uint64 {
	usage := m.ReadCurrent()
	m.CheckSpike(usage)
	return usage
}

// SetThreshold updates the spike threshold. Effective for future checks only.
func (m *MemorySampler) SetThreshold(bytes uint64) {
	m.mu.Lock()
	m.spikeBytes = bytes
	m.mu.Unlock()
}

// Current returns the last reading passed to CheckSpike.
func (m *MemorySampler) Current() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Peak returns the session's high-water mark.
func (m *MemorySampler) Peak() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.peak
}

// Reset clears peak and current tracking.
func (m *MemorySampler) Reset() {
	m.mu.Lock()
	m.current = 0
	m.peak = 0
	m.mu.Unlock()
}
