package serial

import (
	"context"
	"errors"
	"sync"
)

// ErrMockClosed is returned by a closed MockPort.
var ErrMockClosed = errors.New("serial: mock port closed")

// MockPort is an in-memory Port for tests.
//
// Bytes queued with Reply are returned by Read; everything written is
// recorded in Written. OnWrite runs after each successful write and may queue
// a reply.
type MockPort struct {
	mu sync.Mutex

	readBuf []byte
	written []byte
	writes  int
	closed  bool

	// WriteLimit caps the bytes accepted by a single Write when positive.
	WriteLimit int
	// WriteErr is returned by every Write when set.
	WriteErr error
	// ReadErr is returned by Read once the queued bytes are drained.
	ReadErr error
	// ReadChunk caps the bytes returned by a single Read when positive.
	ReadChunk int
	// OnWrite is called with the bytes of each successful write.
	OnWrite func(m *MockPort, p []byte)
	// WaitFunc replaces the readiness wait when set.
	WaitFunc func(ctx context.Context) error
}

var _ Port = (*MockPort)(nil)

// NewMockPort returns a MockPort with reply queued for reading.
func NewMockPort(reply ...byte) *MockPort {
	return &MockPort{readBuf: append([]byte(nil), reply...)}
}

// Reply queues bytes for Read.
func (m *MockPort) Reply(b ...byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.readBuf = append(m.readBuf, b...)
}

// Written returns a copy of all bytes written so far.
func (m *MockPort) Written() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]byte(nil), m.written...)
}

// Writes returns the number of Write calls that reached the port.
func (m *MockPort) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.writes
}

// Pending returns the number of queued bytes not read yet.
func (m *MockPort) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.readBuf)
}

// Closed reports whether Close was called.
func (m *MockPort) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.closed
}

func (m *MockPort) Write(p []byte) (int, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return 0, ErrMockClosed
	}
	m.writes++
	if m.WriteErr != nil {
		m.mu.Unlock()
		return 0, m.WriteErr
	}

	n := len(p)
	if m.WriteLimit > 0 && n > m.WriteLimit {
		n = m.WriteLimit
	}
	m.written = append(m.written, p[:n]...)
	onWrite := m.OnWrite
	m.mu.Unlock()

	if onWrite != nil {
		onWrite(m, p[:n])
	}

	return n, nil
}

func (m *MockPort) Read(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, ErrMockClosed
	}
	if len(m.readBuf) == 0 {
		return 0, m.ReadErr
	}

	limit := len(p)
	if m.ReadChunk > 0 && limit > m.ReadChunk {
		limit = m.ReadChunk
	}
	n := copy(p[:limit], m.readBuf)
	m.readBuf = m.readBuf[n:]

	return n, nil
}

// WaitReady returns immediately when bytes are queued or ReadErr is set and
// otherwise blocks until ctx is done. A done ctx always wins.
func (m *MockPort) WaitReady(ctx context.Context) error {
	if m.WaitFunc != nil {
		return m.WaitFunc(ctx)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if m.Pending() > 0 {
		return nil
	}

	m.mu.Lock()
	readErr := m.ReadErr
	m.mu.Unlock()
	if readErr != nil {
		return nil
	}

	<-ctx.Done()

	return ctx.Err()
}

func (m *MockPort) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrMockClosed
	}
	m.closed = true

	return nil
}
