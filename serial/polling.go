package serial

import (
	"context"
	"errors"
	"io"
	"time"
)

// timeoutPort is a handle whose Read returns no data once its read timeout
// elapses, either as (0, nil) or as (0, io.EOF).
type timeoutPort interface {
	io.ReadWriteCloser
	SetReadTimeout(d time.Duration) error
}

// pollingPort implements WaitReady on top of a timeoutPort by reading ahead
// in slices of interval. Bytes read while waiting are returned by the next
// Read.
type pollingPort struct {
	port     timeoutPort
	interval time.Duration
	pending  []byte
	buf      [64]byte
}

var _ Port = (*pollingPort)(nil)

func newPollingPort(port timeoutPort, interval time.Duration) *pollingPort {
	return &pollingPort{port: port, interval: interval}
}

func (p *pollingPort) WaitReady(ctx context.Context) error {
	if len(p.pending) > 0 {
		return nil
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		slice := p.interval
		if deadline, ok := ctx.Deadline(); ok {
			remaining := time.Until(deadline)
			if remaining <= 0 {
				return context.DeadlineExceeded
			}
			slice = min(slice, remaining)
		}

		if err := p.port.SetReadTimeout(slice); err != nil {
			return err
		}

		n, err := p.port.Read(p.buf[:])
		if n > 0 {
			p.pending = append(p.pending, p.buf[:n]...)
			return nil
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
	}
}

func (p *pollingPort) Read(b []byte) (int, error) {
	if len(p.pending) > 0 {
		n := copy(b, p.pending)
		p.pending = p.pending[n:]

		return n, nil
	}

	if err := p.port.SetReadTimeout(p.interval); err != nil {
		return 0, err
	}

	n, err := p.port.Read(b)
	if n == 0 && errors.Is(err, io.EOF) {
		return 0, nil
	}

	return n, err
}

func (p *pollingPort) Write(b []byte) (int, error) {
	return p.port.Write(b)
}

func (p *pollingPort) Close() error {
	p.pending = nil
	return p.port.Close()
}
