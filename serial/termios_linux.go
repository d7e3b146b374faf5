//go:build linux

package serial

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

const defaultDriver = DriverTermios

// pollSlice bounds a single poll(2) call so that context cancellation is
// noticed even without a deadline.
const pollSlice = 100 * time.Millisecond

var baudRates = map[int]uint32{
	1200:   unix.B1200,
	2400:   unix.B2400,
	4800:   unix.B4800,
	9600:   unix.B9600,
	19200:  unix.B19200,
	38400:  unix.B38400,
	57600:  unix.B57600,
	115200: unix.B115200,
	230400: unix.B230400,
}

// termiosPort is a tty in raw mode accessed through its file descriptor.
type termiosPort struct {
	f  *os.File
	fd int
}

var _ Port = (*termiosPort)(nil)

func openTermios(cfg *Config) (Port, error) {
	f, err := os.OpenFile(cfg.path, unix.O_RDWR|unix.O_NOCTTY|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("serial: open %s: %w", cfg.path, err)
	}

	fd := int(f.Fd())
	if err := makeRaw(fd, cfg.baudRate); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("serial: configure %s: %w", cfg.path, err)
	}

	// Reads block in the kernel; readiness is observed with poll(2).
	if err := unix.SetNonblock(fd, false); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("serial: configure %s: %w", cfg.path, err)
	}

	return &termiosPort{f: f, fd: fd}, nil
}

func makeRaw(fd int, baudRate int) error {
	t, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return err
	}

	t.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.PARMRK | unix.ISTRIP | unix.INLCR | unix.IGNCR | unix.ICRNL | unix.IXON
	t.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.ISIG | unix.IEXTEN
	t.Oflag &^= unix.ONLCR | unix.OCRNL
	t.Cflag &^= unix.CSIZE | unix.PARENB
	t.Cflag |= unix.CS8
	t.Cc[unix.VMIN] = 1
	t.Cc[unix.VTIME] = 0

	if baudRate != 0 {
		speed, ok := baudRates[baudRate]
		if !ok {
			return fmt.Errorf("unsupported baud rate %d", baudRate)
		}
		t.Cflag &^= unix.CBAUD
		t.Cflag |= speed
		t.Ispeed = speed
		t.Ospeed = speed
	}

	return unix.IoctlSetTermios(fd, unix.TCSETS, t)
}

func (p *termiosPort) Read(b []byte) (int, error) {
	return p.f.Read(b)
}

func (p *termiosPort) Write(b []byte) (int, error) {
	return p.f.Write(b)
}

func (p *termiosPort) Close() error {
	return p.f.Close()
}

// WaitReady polls the descriptor for input.
func (p *termiosPort) WaitReady(ctx context.Context) error {
	fds := []unix.PollFd{{Fd: int32(p.fd), Events: unix.POLLIN}}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		timeout := -1
		if ctx.Done() != nil {
			timeout = int(pollSlice / time.Millisecond)
		}
		if deadline, ok := ctx.Deadline(); ok {
			remaining := time.Until(deadline)
			if remaining <= 0 {
				return context.DeadlineExceeded
			}
			// Round up so a sub-millisecond remainder still waits.
			ms := int((remaining + time.Millisecond - 1) / time.Millisecond)
			if timeout < 0 || ms < timeout {
				timeout = ms
			}
		}

		n, err := unix.Poll(fds, timeout)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return err
		}
		if n == 0 {
			continue
		}
		if fds[0].Revents&(unix.POLLERR|unix.POLLHUP|unix.POLLNVAL) != 0 && fds[0].Revents&unix.POLLIN == 0 {
			return fmt.Errorf("serial: device error (revents 0x%x)", fds[0].Revents)
		}

		return nil
	}
}
