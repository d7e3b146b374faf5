package maestro

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/arloliu/go-maestro/logger"
	"github.com/arloliu/go-maestro/protocol"
	"github.com/arloliu/go-maestro/serial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func compactEncoder(t *testing.T) *protocol.Encoder {
	t.Helper()

	enc, err := protocol.NewEncoder(protocol.Compact, 0)
	require.NoError(t, err)

	return enc
}

func TestConn_SendAndQuery(t *testing.T) {
	port := serial.NewMockPort()
	replyOn(port, 0x90, 0x70, 0x17)
	conn := newTestConn(t, port)
	enc := compactEncoder(t)

	cmd, err := enc.SetTarget(2, 6000)
	require.NoError(t, err)
	require.NoError(t, conn.Send(context.Background(), cmd))

	cmd, err = enc.GetPosition(2)
	require.NoError(t, err)
	pos, err := conn.Query(context.Background(), cmd)
	require.NoError(t, err)
	assert.Equal(t, 6000, pos)

	assert.Equal(t, []byte{0x84, 0x02, 0x70, 0x2E, 0x90, 0x02}, port.Written())

	m := conn.Metrics()
	assert.Equal(t, int64(1), m.CommandCount.Value())
	assert.Equal(t, int64(1), m.QueryCount.Value())
	assert.Equal(t, int64(6), m.BytesSent.Value())
	assert.Equal(t, int64(2), m.BytesReceived.Value())

	m.Reset()
	assert.Zero(t, m.QueryCount.Value())
}

func TestConn_WrongMethodForOp(t *testing.T) {
	port := serial.NewMockPort()
	conn := newTestConn(t, port)
	enc := compactEncoder(t)

	query, err := enc.GetErrors()
	require.NoError(t, err)
	require.ErrorIs(t, conn.Send(context.Background(), query), ErrInvalidArgument)

	cmd, err := enc.GoHome()
	require.NoError(t, err)
	_, err = conn.Query(context.Background(), cmd)
	require.ErrorIs(t, err, ErrInvalidArgument)

	assert.Zero(t, port.Writes())
}

func TestConn_ReplyTimeout(t *testing.T) {
	port := serial.NewMockPort()
	conn := newTestConn(t, port, WithReplyTimeout(20*time.Millisecond))

	cmd, err := compactEncoder(t).GetMovingState()
	require.NoError(t, err)

	start := time.Now()
	_, err = conn.Query(context.Background(), cmd)
	require.ErrorIs(t, err, ErrTimeout)
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, int64(1), conn.Metrics().TimeoutCount.Value())
}

func TestConn_ShortReplyIsLogged(t *testing.T) {
	l := logger.NewMockLogger().Allow("Debug")
	l.On("Warn", "maestro: short reply", mock.Anything).Once()

	port := serial.NewMockPort()
	replyOn(port, 0xA1, 0x09)
	conn := newTestConn(t, port, WithLogger(l))

	cmd, err := compactEncoder(t).GetErrors()
	require.NoError(t, err)
	_, err = conn.Query(context.Background(), cmd)
	require.ErrorIs(t, err, ErrProtocol)

	l.AssertExpectations(t)
	assert.Equal(t, int64(1), conn.Metrics().ProtocolErrCount.Value())
}

func TestConn_TransportFailure(t *testing.T) {
	port := serial.NewMockPort()
	port.WriteErr = errors.New("EIO")
	conn := newTestConn(t, port)

	cmd, err := compactEncoder(t).StopScript()
	require.NoError(t, err)
	require.ErrorIs(t, conn.Send(context.Background(), cmd), ErrIO)
	assert.Equal(t, int64(1), conn.Metrics().IOErrCount.Value())
}

func TestConn_Closed(t *testing.T) {
	port := serial.NewMockPort()
	conn, err := NewConn(port)
	require.NoError(t, err)

	require.NoError(t, conn.Close())
	assert.True(t, port.Closed())

	cmd, err := compactEncoder(t).GoHome()
	require.NoError(t, err)

	err = conn.Send(context.Background(), cmd)
	require.ErrorIs(t, err, ErrConnClosed)
	require.ErrorIs(t, err, ErrIO)

	require.ErrorIs(t, conn.Close(), ErrConnClosed)
}

func TestConn_NilTransport(t *testing.T) {
	_, err := NewConn(nil)
	require.Error(t, err)
}

func TestConn_SerializesCycles(t *testing.T) {
	port := serial.NewMockPort()
	replyOn(port, 0x90, 0x70, 0x17)
	conn := newTestConn(t, port)
	enc := compactEncoder(t)

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)

	for ch := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()

			cmd, err := enc.GetPosition(ch)
			if err != nil {
				errs <- err
				return
			}
			pos, err := conn.Query(context.Background(), cmd)
			if err == nil && pos != 6000 {
				err = errors.New("reply interleaved")
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, int64(workers), conn.Metrics().QueryCount.Value())
	assert.Zero(t, port.Pending())
}

func TestOpen_BadPort(t *testing.T) {
	cfg, err := serial.NewConfig("/nonexistent/ttyACM9", serial.WithDriver(serial.DriverBugst))
	require.NoError(t, err)

	_, err = Open(cfg)
	require.ErrorIs(t, err, ErrIO)

	_, err = Open(cfg, WithInterByteTimeout(0))
	require.Error(t, err)
}

func TestConn_ReplyTimeoutExcludesLockWait(t *testing.T) {
	const service = 100 * time.Millisecond

	port := serial.NewMockPort()
	replyOn(port, 0x90, 0x70, 0x17)

	entered := make(chan struct{}, 2)
	port.WaitFunc = func(ctx context.Context) error {
		entered <- struct{}{}
		select {
		case <-time.After(service):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	conn := newTestConn(t, port, WithReplyTimeout(service+service/2))

	cmd, err := compactEncoder(t).GetPosition(0)
	require.NoError(t, err)

	first := make(chan error, 1)
	go func() {
		_, err := conn.Query(context.Background(), cmd)
		first <- err
	}()
	<-entered

	// Queued behind the first cycle for most of its own reply timeout.
	pos, err := conn.Query(context.Background(), cmd)
	require.NoError(t, err)
	assert.Equal(t, 6000, pos)
	require.NoError(t, <-first)
}
