package serial

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// Port is an open serial handle.
type Port interface {
	io.ReadWriteCloser

	// WaitReady blocks until input is available to Read. It returns the
	// context error when ctx is done first.
	WaitReady(ctx context.Context) error
}

// Driver selects the implementation used to open a port.
type Driver string

const (
	DriverTermios Driver = "termios"
	DriverBugst   Driver = "bugst"
	DriverTarm    Driver = "tarm"
)

// Defaults.
const (
	DefaultPollInterval = 20 * time.Millisecond

	MinPollInterval = time.Millisecond
	MaxPollInterval = time.Second

	// fallbackBaudRate is used by drivers that cannot leave the speed unset.
	fallbackBaudRate = 9600
)

// ErrUnsupportedDriver is returned when a driver is not available on this platform.
var ErrUnsupportedDriver = errors.New("serial: driver not supported on this platform")

// ParseDriver converts a driver name; the empty string selects the platform default.
func ParseDriver(name string) (Driver, error) {
	switch d := Driver(strings.ToLower(strings.TrimSpace(name))); d {
	case "":
		return defaultDriver, nil
	case DriverTermios, DriverBugst, DriverTarm:
		return d, nil
	default:
		return "", fmt.Errorf("serial: unknown driver %q", name)
	}
}

// Config describes how to open a port.
type Config struct {
	path         string
	driver       Driver
	baudRate     int
	pollInterval time.Duration
}

// NewConfig creates a configuration for the device at path.
func NewConfig(path string, opts ...Option) (*Config, error) {
	if path == "" {
		return nil, errors.New("serial: device path is required")
	}

	cfg := &Config{
		path:         path,
		driver:       defaultDriver,
		pollInterval: DefaultPollInterval,
	}

	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Path returns the device path.
func (cfg *Config) Path() string { return cfg.path }

// Driver returns the selected driver.
func (cfg *Config) Driver() Driver { return cfg.driver }

// BaudRate returns the configured line speed; zero means the device default.
func (cfg *Config) BaudRate() int { return cfg.baudRate }

// PollInterval returns the read-ahead slice used by the bugst and tarm drivers.
func (cfg *Config) PollInterval() time.Duration { return cfg.pollInterval }

// Option is a functional option for configuring a Config.
type Option interface {
	apply(*Config) error
}

type optFunc func(*Config) error

func (f optFunc) apply(cfg *Config) error { return f(cfg) }

// WithDriver selects the driver.
func WithDriver(d Driver) Option {
	return optFunc(func(cfg *Config) error {
		switch d {
		case DriverTermios, DriverBugst, DriverTarm:
			cfg.driver = d
			return nil
		case "":
			cfg.driver = defaultDriver
			return nil
		default:
			return fmt.Errorf("serial: unknown driver %q", d)
		}
	})
}

// WithBaudRate sets the line speed. Zero keeps the device default.
func WithBaudRate(rate int) Option {
	return optFunc(func(cfg *Config) error {
		if rate < 0 {
			return fmt.Errorf("serial: invalid baud rate %d", rate)
		}
		cfg.baudRate = rate

		return nil
	})
}

// WithPollInterval sets the read-ahead slice of the bugst and tarm drivers.
func WithPollInterval(d time.Duration) Option {
	return optFunc(func(cfg *Config) error {
		if d < MinPollInterval || d > MaxPollInterval {
			return fmt.Errorf("serial: poll interval %v out of range [%v, %v]", d, MinPollInterval, MaxPollInterval)
		}
		cfg.pollInterval = d

		return nil
	})
}

// Open opens the port described by cfg.
func Open(cfg *Config) (Port, error) {
	if cfg == nil {
		return nil, errors.New("serial: config is nil")
	}

	switch cfg.driver {
	case DriverTermios:
		return openTermios(cfg)
	case DriverBugst:
		return openBugst(cfg)
	case DriverTarm:
		return openTarm(cfg)
	default:
		return nil, fmt.Errorf("serial: unknown driver %q", cfg.driver)
	}
}

// effectiveBaudRate returns the configured rate or the fallback for drivers
// that must program one.
func (cfg *Config) effectiveBaudRate() int {
	if cfg.baudRate == 0 {
		return fallbackBaudRate
	}

	return cfg.baudRate
}
