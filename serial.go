package serial

import (
	"bytes"
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/atomic"
)

// MaxLineSize caps how much ReceiveLine buffers while waiting for a newline.
const MaxLineSize = 64 * 1024

// Connection is an open serial handle used for one write and one line read.
type Connection struct {
	port SerialPort
	cfg  Config
	log  zerolog.Logger

	// pending holds bytes that arrived after the last returned newline.
	pending []byte

	closed  atomic.Bool
	metrics *Metrics
}

// Option customises a Connection at open time.
type Option func(*Connection)

// WithLogger routes connection events to l.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Connection) { c.log = l }
}

// WithMetrics records connection counters into m instead of a private Metrics.
func WithMetrics(m *Metrics) Option {
	return func(c *Connection) { c.metrics = m }
}

// Open validates cfg and opens the serial port it names. Any failure,
// including an invalid configuration, is a KindPort error.
func Open(cfg Config, opts ...Option) (*Connection, error) {
	c := &Connection{
		cfg: cfg.withDefaults(),
		log: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.metrics == nil {
		c.metrics = &Metrics{}
	}

	if err := ValidateConfig(&c.cfg); err != nil {
		c.metrics.OpenFailures.Inc()
		return nil, newError(KindPort, "open", cfg.PortName, err)
	}

	p, err := openPort(c.cfg.PortName, c.cfg.mode())
	if err != nil {
		c.metrics.OpenFailures.Inc()
		c.log.Debug().Err(err).Str("port", c.cfg.PortName).Msg("open failed")
		return nil, newError(KindPort, "open", c.cfg.PortName, err)
	}

	if err = p.SetReadTimeout(c.cfg.ReadTimeout); err != nil {
		_ = p.Close()
		c.metrics.OpenFailures.Inc()
		return nil, newError(KindPort, "open", c.cfg.PortName, err)
	}

	c.port = p
	c.metrics.Opens.Inc()
	c.log.Debug().
		Str("port", c.cfg.PortName).
		Int("baud", c.cfg.BaudRate).
		Dur("read_timeout", c.cfg.ReadTimeout).
		Msg("port opened")
	return c, nil
}

// newConnection wraps an already open port. Used by tests.
func newConnection(sp SerialPort, cfg Config, opts ...Option) *Connection {
	c := &Connection{
		port: sp,
		cfg:  cfg.withDefaults(),
		log:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.metrics == nil {
		c.metrics = &Metrics{}
	}
	c.metrics.Opens.Inc()
	return c
}

// PortName returns the device the connection was opened on.
func (c *Connection) PortName() string { return c.cfg.PortName }

// BaudRate returns the configured baud rate.
func (c *Connection) BaudRate() int { return c.cfg.BaudRate }

// ReadTimeout returns the bound applied to ReceiveLine.
func (c *Connection) ReadTimeout() time.Duration { return c.cfg.ReadTimeout }

// Metrics returns the connection counters.
func (c *Connection) Metrics() *Metrics { return c.metrics }

// Send writes payload verbatim and then drains the transport so the bytes are
// on the wire when Send returns. No acknowledgment is awaited.
func (c *Connection) Send(ctx context.Context, payload []byte) error {
	if c.closed.Load() {
		return ErrClosed
	}
	if len(payload) == 0 {
		return nil
	}

	written := 0
	for written < len(payload) {
		select {
		case <-ctx.Done():
			return newError(KindUnclassified, "write", c.cfg.PortName, ctx.Err())
		default:
		}

		n, err := c.port.Write(payload[written:])
		if err != nil {
			c.metrics.WriteErrors.Inc()
			return newError(KindUnclassified, "write", c.cfg.PortName, err)
		}
		written += n
		c.metrics.BytesWritten.Add(int64(n))
	}
	c.metrics.Writes.Inc()

	if err := c.port.Drain(); err != nil {
		return newError(KindUnclassified, "flush", c.cfg.PortName, err)
	}
	c.metrics.Flushes.Inc()

	c.log.Debug().Int("bytes", written).Msg("payload written and drained")
	return nil
}

// ReceiveLine waits up to the read timeout for one '\n'-terminated line and
// returns it including the newline. If the deadline passes first it returns
// whatever arrived, possibly nothing, with a nil error. Failures of the
// underlying read are KindRead errors and carry no data.
func (c *Connection) ReceiveLine(ctx context.Context) ([]byte, error) {
	if c.closed.Load() {
		return nil, ErrClosed
	}

	c.metrics.Reads.Inc()
	start := time.Now()
	defer func() { c.metrics.recordReadTime(time.Since(start)) }()

	line := c.pending
	c.pending = nil
	if idx := bytes.IndexByte(line, '\n'); idx >= 0 {
		c.keepPending(line[idx+1:])
		return line[:idx+1], nil
	}

	buf := getReadBuf()
	defer putReadBuf(buf)

	deadline := start.Add(c.cfg.ReadTimeout)
	for {
		if err := ctx.Err(); err != nil {
			c.metrics.ReadErrors.Inc()
			return nil, newError(KindRead, "read", c.cfg.PortName, err)
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			c.metrics.ReadTimeouts.Inc()
			c.log.Debug().Int("bytes", len(line)).Msg("read timed out before newline")
			return line, nil
		}
		if err := c.port.SetReadTimeout(remaining); err != nil {
			c.metrics.ReadErrors.Inc()
			return nil, newError(KindRead, "read", c.cfg.PortName, err)
		}

		n, err := c.port.Read(buf)
		if err != nil {
			c.metrics.ReadErrors.Inc()
			c.log.Debug().Err(err).Msg("read failed")
			return nil, newError(KindRead, "read", c.cfg.PortName, err)
		}
		if n == 0 {
			continue
		}
		c.metrics.BytesRead.Add(int64(n))

		chunk := buf[:n]
		if idx := bytes.IndexByte(chunk, '\n'); idx >= 0 {
			line = append(line, chunk[:idx+1]...)
			c.keepPending(chunk[idx+1:])
			return line, nil
		}
		line = append(line, chunk...)
		if len(line) >= MaxLineSize {
			c.log.Debug().Int("bytes", len(line)).Msg("line exceeds max size, returning partial")
			return line, nil
		}
	}
}

func (c *Connection) keepPending(rest []byte) {
	if len(rest) == 0 {
		return
	}
	c.pending = append([]byte(nil), rest...)
}

// Close releases the port. It is safe to call multiple times; only the first
// call reaches the driver.
func (c *Connection) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	c.metrics.Closes.Inc()
	c.pending = nil

	if err := c.port.Close(); err != nil {
		return newError(KindUnclassified, "close", c.cfg.PortName, err)
	}
	c.log.Debug().Str("port", c.cfg.PortName).Msg("port closed")
	return nil
}
