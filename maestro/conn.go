package maestro

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/arloliu/go-maestro/logger"
	"github.com/arloliu/go-maestro/protocol"
	"github.com/arloliu/go-maestro/serial"
)

// Conn runs request cycles on one transport.
//
// A Conn is safe for concurrent use. Each Send or Query holds the connection
// for its whole write, wait and read cycle, so replies never interleave.
type Conn struct {
	cfg     *ConnConfig
	logger  logger.Logger
	metrics *ConnMetrics

	mu     sync.Mutex
	t      Transport
	closed bool
}

// NewConn wraps an open transport. The Conn takes ownership of t and closes
// it on Close.
func NewConn(t Transport, opts ...ConnOption) (*Conn, error) {
	if t == nil {
		return nil, errors.New("maestro: transport is nil")
	}

	cfg, err := NewConnConfig(opts...)
	if err != nil {
		return nil, err
	}

	return &Conn{
		cfg:     cfg,
		logger:  cfg.GetLogger(),
		metrics: newConnMetrics(),
		t:       t,
	}, nil
}

// Open opens the serial port described by portCfg and wraps it in a Conn.
func Open(portCfg *serial.Config, opts ...ConnOption) (*Conn, error) {
	cfg, err := NewConnConfig(opts...)
	if err != nil {
		return nil, err
	}

	port, err := serial.Open(portCfg)
	if err != nil {
		cfg.GetLogger().Error("maestro: failed to open port", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}

	cfg.GetLogger().Debug("maestro: port opened", "path", portCfg.Path(), "driver", portCfg.Driver())

	return &Conn{
		cfg:     cfg,
		logger:  cfg.GetLogger(),
		metrics: newConnMetrics(),
		t:       port,
	}, nil
}

// Config returns the connection configuration.
func (c *Conn) Config() *ConnConfig { return c.cfg }

// Metrics returns the live counters of the connection.
func (c *Conn) Metrics() *ConnMetrics { return c.metrics }

// Close closes the transport. Further calls fail with ErrConnClosed.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrConnClosed
	}
	c.closed = true

	if err := c.t.Close(); err != nil {
		c.logger.Error("maestro: failed to close transport", "error", err)
		return fmt.Errorf("%w: close: %w", ErrIO, err)
	}
	c.logger.Debug("maestro: connection closed")

	return nil
}

// Send writes a command the controller does not answer.
func (c *Conn) Send(ctx context.Context, cmd protocol.Command) error {
	if cmd.ReplyLen() != 0 {
		return fmt.Errorf("%w: %s expects a reply, use Query", ErrInvalidArgument, cmd.Op)
	}

	_, err := c.do(ctx, cmd)

	return err
}

// Query writes a command and returns the decoded reply.
func (c *Conn) Query(ctx context.Context, cmd protocol.Command) (int, error) {
	if cmd.ReplyLen() == 0 {
		return 0, fmt.Errorf("%w: %s has no reply, use Send", ErrInvalidArgument, cmd.Op)
	}

	reply, err := c.do(ctx, cmd)
	if err != nil {
		return 0, err
	}

	return protocol.JoinLE(reply), nil
}

func (c *Conn) do(ctx context.Context, cmd protocol.Command) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrConnClosed
	}

	// The reply timeout starts once the connection is ours.
	if c.cfg.replyTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.replyTimeout)
		defer cancel()
	}

	frame := cmd.Bytes()
	replyLen := cmd.ReplyLen()
	c.logger.Debug("maestro: write frame", "cmd", cmd.String())

	reply, err := exchange(ctx, c.t, frame, replyLen, c.cfg.interByteTimeout)
	c.record(cmd, frame, reply, err)
	if err != nil {
		return nil, err
	}

	if replyLen > 0 {
		c.logger.Debug("maestro: reply", "op", cmd.Op.String(), "bytes", fmt.Sprintf("% X", reply))
	}

	return reply, nil
}

// record updates metrics and logs the outcome of a cycle.
func (c *Conn) record(cmd protocol.Command, frame, reply []byte, err error) {
	c.metrics.BytesReceived.Add(int64(len(reply)))

	switch {
	case err == nil:
		c.metrics.BytesSent.Add(int64(len(frame)))
		if cmd.ReplyLen() > 0 {
			c.metrics.QueryCount.Inc()
		} else {
			c.metrics.CommandCount.Inc()
		}
	case errors.Is(err, ErrProtocol):
		c.metrics.BytesSent.Add(int64(len(frame)))
		c.metrics.ProtocolErrCount.Inc()
		c.logger.Warn("maestro: short reply",
			"op", cmd.Op.String(),
			"expected", cmd.ReplyLen(),
			"received", fmt.Sprintf("% X", reply),
		)
	case errors.Is(err, ErrTimeout):
		c.metrics.BytesSent.Add(int64(len(frame)))
		c.metrics.TimeoutCount.Inc()
		c.logger.Warn("maestro: reply timeout", "op", cmd.Op.String())
	case errors.Is(err, ErrIO):
		c.metrics.IOErrCount.Inc()
		c.logger.Error("maestro: transport failure", "op", cmd.Op.String(), "error", err)
	default:
		c.logger.Debug("maestro: request aborted", "op", cmd.Op.String(), "error", err)
	}
}
