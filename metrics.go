package serial

import (
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/atomic"
)

// Metrics counts what happened on one Connection. All fields are safe for
// concurrent use, although a probe run only touches them from one goroutine.
type Metrics struct {
	Opens        atomic.Int64
	OpenFailures atomic.Int64
	Closes       atomic.Int64

	Writes       atomic.Int64
	WriteErrors  atomic.Int64
	BytesWritten atomic.Int64
	Flushes      atomic.Int64

	Reads        atomic.Int64 // ReceiveLine calls
	ReadTimeouts atomic.Int64 // calls that hit the deadline without a newline
	ReadErrors   atomic.Int64
	BytesRead    atomic.Int64
	MaxReadTime  atomic.Duration

	DecodeFailures atomic.Int64
}

// recordReadTime keeps the slowest ReceiveLine duration.
func (m *Metrics) recordReadTime(d time.Duration) {
	for {
		cur := m.MaxReadTime.Load()
		if d <= cur || m.MaxReadTime.CompareAndSwap(cur, d) {
			return
		}
	}
}

// MetricsSnapshot is a point-in-time copy of Metrics.
type MetricsSnapshot struct {
	Opens          int64
	OpenFailures   int64
	Closes         int64
	Writes         int64
	WriteErrors    int64
	BytesWritten   int64
	Flushes        int64
	Reads          int64
	ReadTimeouts   int64
	ReadErrors     int64
	BytesRead      int64
	MaxReadTime    time.Duration
	DecodeFailures int64
	ReadBuffers    PoolStats
}

// Snapshot copies the current counter values.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Opens:          m.Opens.Load(),
		OpenFailures:   m.OpenFailures.Load(),
		Closes:         m.Closes.Load(),
		Writes:         m.Writes.Load(),
		WriteErrors:    m.WriteErrors.Load(),
		BytesWritten:   m.BytesWritten.Load(),
		Flushes:        m.Flushes.Load(),
		Reads:          m.Reads.Load(),
		ReadTimeouts:   m.ReadTimeouts.Load(),
		ReadErrors:     m.ReadErrors.Load(),
		BytesRead:      m.BytesRead.Load(),
		MaxReadTime:    m.MaxReadTime.Load(),
		DecodeFailures: m.DecodeFailures.Load(),
		ReadBuffers:    readBufs.Stats(),
	}
}

// Balanced reports whether every successful open was matched by one close.
func (s MetricsSnapshot) Balanced() bool {
	return s.Opens == s.Closes
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler.
func (s MetricsSnapshot) MarshalZerologObject(e *zerolog.Event) {
	e.Int64("opens", s.Opens).
		Int64("open_failures", s.OpenFailures).
		Int64("closes", s.Closes).
		Int64("writes", s.Writes).
		Int64("write_errors", s.WriteErrors).
		Int64("bytes_written", s.BytesWritten).
		Int64("flushes", s.Flushes).
		Int64("reads", s.Reads).
		Int64("read_timeouts", s.ReadTimeouts).
		Int64("read_errors", s.ReadErrors).
		Int64("bytes_read", s.BytesRead).
		Dur("max_read_time", s.MaxReadTime).
		Int64("decode_failures", s.DecodeFailures).
		Float64("read_buffer_hit_ratio", s.ReadBuffers.HitRatio())
}
