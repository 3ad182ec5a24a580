package core

import (
	"sync"
	"time"
)

const AVG_COUNT uint8 = 30

// Metrics keeps a rolling average of extraction times.
type Metrics struct {
	mutex        sync.Mutex
	avgCounter   uint8
	msTimes      [AVG_COUNT]float64
	msAvg        float64
	extractions  uint64
	accumulated  float64
	corners      uint64
	bytesWritten uint64
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

// Update records one finished extraction.
func (m *Metrics) Update(elapsed time.Duration, corners int, bytes int) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	ms := float64(elapsed.Microseconds()) / 1000.0
	m.msTimes[m.avgCounter] = ms
	m.avgCounter++
	m.extractions++
	m.accumulated += ms
	m.corners += uint64(corners)
	m.bytesWritten += uint64(bytes)

	// Average over the filled part of the window until it wraps.
	n := uint64(AVG_COUNT)
	if m.extractions < n {
		n = m.extractions
	}
	sum := 0.0
	for i := uint64(0); i < n; i++ {
		sum += m.msTimes[i]
	}
	m.msAvg = sum / float64(n)
	m.avgCounter %= AVG_COUNT
}

// AverageMS returns the rolling average extraction time in milliseconds.
func (m *Metrics) AverageMS() float64 {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.msAvg
}

// Totals returns the number of extractions, corners processed and bytes packed.
func (m *Metrics) Totals() (uint64, uint64, uint64) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.extractions, m.corners, m.bytesWritten
}
