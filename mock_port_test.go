package serial

import (
	"sync"
	"time"
)

// mockPort is a scripted SerialPort. Reads return queued chunks, or 0 bytes
// once the configured read timeout passes, as go.bug.st/serial does.
type mockPort struct {
	readCh chan []byte

	mu      sync.Mutex
	timeout time.Duration
	writes  [][]byte
	events  []string
	closes  int
	// errToReturn, if non-nil, will be returned on the next Read call
	// instead of data from readCh.
	errToReturn error
	writeErr    error
	drainErr    error
	panicOnRead bool
}

func newMockPort() *mockPort {
	return &mockPort{readCh: make(chan []byte, 16), timeout: time.Second}
}

func (m *mockPort) Read(p []byte) (int, error) {
	m.mu.Lock()
	if m.panicOnRead {
		m.mu.Unlock()
		panic("driver fault")
	}
	if m.errToReturn != nil {
		err := m.errToReturn
		m.errToReturn = nil
		m.mu.Unlock()
		return 0, err
	}
	timeout := m.timeout
	m.events = append(m.events, "read")
	m.mu.Unlock()

	select {
	case b := <-m.readCh:
		return copy(p, b), nil
	case <-time.After(timeout):
		return 0, nil
	}
}

func (m *mockPort) Write(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return 0, m.writeErr
	}
	cp := make([]byte, len(p))
	copy(cp, p)
	m.writes = append(m.writes, cp)
	m.events = append(m.events, "write")
	return len(p), nil
}

func (m *mockPort) Drain() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.drainErr != nil {
		return m.drainErr
	}
	m.events = append(m.events, "drain")
	return nil
}

func (m *mockPort) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closes++
	m.events = append(m.events, "close")
	return nil
}

func (m *mockPort) SetReadTimeout(d time.Duration) error {
	m.mu.Lock()
	m.timeout = d
	m.mu.Unlock()
	return nil
}

func (m *mockPort) closeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closes
}

func (m *mockPort) eventLog() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.events...)
}

// loopbackPort echoes everything written back to the reader, like the
// firmware's CDC echo task. Written bytes only become readable after Drain,
// so a sender that forgets to flush sees no reply.
type loopbackPort struct {
	mu      sync.Mutex
	timeout time.Duration
	staged  []byte
	wire    []byte
	drains  int
	closes  int
	// shortWrites caps each Write to exercise the partial write loop.
	shortWrites int
}

func newLoopbackPort() *loopbackPort {
	return &loopbackPort{timeout: time.Second}
}

func (l *loopbackPort) Read(p []byte) (int, error) {
	l.mu.Lock()
	if len(l.wire) > 0 {
		n := copy(p, l.wire)
		l.wire = l.wire[n:]
		l.mu.Unlock()
		return n, nil
	}
	timeout := l.timeout
	l.mu.Unlock()

	time.Sleep(timeout)
	return 0, nil
}

func (l *loopbackPort) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := len(p)
	if l.shortWrites > 0 && n > l.shortWrites {
		n = l.shortWrites
	}
	l.staged = append(l.staged, p[:n]...)
	return n, nil
}

func (l *loopbackPort) Drain() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.drains++
	l.wire = append(l.wire, l.staged...)
	l.staged = nil
	return nil
}

func (l *loopbackPort) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closes++
	return nil
}

func (l *loopbackPort) SetReadTimeout(d time.Duration) error {
	l.mu.Lock()
	l.timeout = d
	l.mu.Unlock()
	return nil
}
