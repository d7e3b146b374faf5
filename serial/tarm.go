package serial

import (
	"fmt"
	"time"

	tarm "github.com/tarm/serial"
)

// tarmMinTimeout is the read timeout granularity of tarm/serial on POSIX,
// which programs VTIME in tenths of a second.
const tarmMinTimeout = 100 * time.Millisecond

// tarmPort fixes the read timeout at open time; tarm/serial cannot change it
// afterwards.
type tarmPort struct {
	*tarm.Port
}

func (tarmPort) SetReadTimeout(time.Duration) error { return nil }

func openTarm(cfg *Config) (Port, error) {
	timeout := max(cfg.pollInterval, tarmMinTimeout)

	port, err := tarm.OpenPort(&tarm.Config{
		Name:        cfg.path,
		Baud:        cfg.effectiveBaudRate(),
		ReadTimeout: timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("serial: open %s: %w", cfg.path, err)
	}

	return newPollingPort(tarmPort{port}, timeout), nil
}
