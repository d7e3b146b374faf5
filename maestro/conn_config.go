package maestro

import (
	"errors"
	"fmt"
	"time"

	"github.com/arloliu/go-maestro/logger"
)

const (
	// DefaultInterByteTimeout bounds the wait for the rest of a reply once its
	// first byte has arrived.
	DefaultInterByteTimeout = 50 * time.Millisecond

	MinInterByteTimeout = time.Millisecond
	MaxInterByteTimeout = 5 * time.Second
)

// ConnConfig holds the settings of a Conn.
type ConnConfig struct {
	// replyTimeout bounds a whole request cycle; zero leaves the bound to the
	// caller's context.
	replyTimeout     time.Duration
	interByteTimeout time.Duration

	logger logger.Logger
}

// NewConnConfig creates a connection configuration.
func NewConnConfig(opts ...ConnOption) (*ConnConfig, error) {
	cfg := &ConnConfig{
		interByteTimeout: DefaultInterByteTimeout,
		logger:           logger.GetLogger(),
	}

	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// ReplyTimeout returns the per-cycle reply timeout; zero means none.
func (cfg *ConnConfig) ReplyTimeout() time.Duration { return cfg.replyTimeout }

// InterByteTimeout returns the wait allowed between pieces of a reply.
func (cfg *ConnConfig) InterByteTimeout() time.Duration { return cfg.interByteTimeout }

// GetLogger returns the configured logger.
func (cfg *ConnConfig) GetLogger() logger.Logger { return cfg.logger }

// ConnOption is a functional option for configuring a ConnConfig.
type ConnOption interface {
	apply(*ConnConfig) error
}

type connOptFunc func(*ConnConfig) error

func (f connOptFunc) apply(cfg *ConnConfig) error { return f(cfg) }

// WithReplyTimeout bounds every request cycle. The effective deadline is the
// earlier of this timeout and the context deadline. Zero disables it.
func WithReplyTimeout(d time.Duration) ConnOption {
	return connOptFunc(func(cfg *ConnConfig) error {
		if d < 0 {
			return fmt.Errorf("maestro: reply timeout %v must not be negative", d)
		}
		cfg.replyTimeout = d

		return nil
	})
}

// WithInterByteTimeout sets how long a partially received reply may stall
// before it is reported as short.
func WithInterByteTimeout(d time.Duration) ConnOption {
	return connOptFunc(func(cfg *ConnConfig) error {
		if d < MinInterByteTimeout || d > MaxInterByteTimeout {
			return fmt.Errorf("maestro: inter-byte timeout %v out of range [%v, %v]", d, MinInterByteTimeout, MaxInterByteTimeout)
		}
		cfg.interByteTimeout = d

		return nil
	})
}

// WithLogger sets the logger for the connection.
func WithLogger(l logger.Logger) ConnOption {
	return connOptFunc(func(cfg *ConnConfig) error {
		if l == nil {
			return errors.New("maestro: logger must not be nil")
		}
		cfg.logger = l

		return nil
	})
}
