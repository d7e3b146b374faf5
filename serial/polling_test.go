package serial

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTimeoutPort hands out one queued chunk per Read and reports a timeout
// otherwise.
type fakeTimeoutPort struct {
	chunks   [][]byte
	eof      bool
	err      error
	timeouts []time.Duration
	written  []byte
	closed   bool
}

func (f *fakeTimeoutPort) SetReadTimeout(d time.Duration) error {
	f.timeouts = append(f.timeouts, d)
	return nil
}

func (f *fakeTimeoutPort) Read(b []byte) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	if len(f.chunks) == 0 {
		time.Sleep(time.Millisecond)
		if f.eof {
			return 0, io.EOF
		}
		return 0, nil
	}
	n := copy(b, f.chunks[0])
	f.chunks = f.chunks[1:]

	return n, nil
}

func (f *fakeTimeoutPort) Write(b []byte) (int, error) {
	f.written = append(f.written, b...)
	return len(b), nil
}

func (f *fakeTimeoutPort) Close() error {
	f.closed = true
	return nil
}

func TestPollingPort_WaitThenRead(t *testing.T) {
	fake := &fakeTimeoutPort{chunks: [][]byte{{0x70, 0x2E}}}
	p := newPollingPort(fake, 10*time.Millisecond)

	require.NoError(t, p.WaitReady(context.Background()))
	// A second wait does not consume more input.
	require.NoError(t, p.WaitReady(context.Background()))

	buf := make([]byte, 1)
	n, err := p.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, byte(0x70), buf[0])

	n, err = p.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, byte(0x2E), buf[0])
}

func TestPollingPort_WaitDeadline(t *testing.T) {
	for _, eof := range []bool{false, true} {
		fake := &fakeTimeoutPort{eof: eof}
		p := newPollingPort(fake, 5*time.Millisecond)

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		err := p.WaitReady(ctx)
		cancel()

		require.ErrorIs(t, err, context.DeadlineExceeded)
		for _, d := range fake.timeouts {
			assert.LessOrEqual(t, d, 5*time.Millisecond)
		}
	}
}

func TestPollingPort_WaitCanceled(t *testing.T) {
	p := newPollingPort(&fakeTimeoutPort{}, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	require.ErrorIs(t, p.WaitReady(ctx), context.Canceled)
}

func TestPollingPort_ReadError(t *testing.T) {
	boom := errors.New("unplugged")
	p := newPollingPort(&fakeTimeoutPort{err: boom}, 5*time.Millisecond)

	require.ErrorIs(t, p.WaitReady(context.Background()), boom)
}

func TestPollingPort_ReadTimeoutIsNoData(t *testing.T) {
	p := newPollingPort(&fakeTimeoutPort{eof: true}, 5*time.Millisecond)

	n, err := p.Read(make([]byte, 4))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPollingPort_WriteClose(t *testing.T) {
	fake := &fakeTimeoutPort{}
	p := newPollingPort(fake, 5*time.Millisecond)

	n, err := p.Write([]byte{0xA2})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []byte{0xA2}, fake.written)

	require.NoError(t, p.Close())
	assert.True(t, fake.closed)
}
