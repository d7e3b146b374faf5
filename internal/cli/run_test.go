package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/arloliu/go-maestro/maestro"
	"github.com/arloliu/go-maestro/serial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestConn returns a Conn on port answering every query from replies,
// keyed by the opcode byte of the written frame.
func newTestConn(t *testing.T, port *serial.MockPort, replies map[byte][]byte) *maestro.Conn {
	t.Helper()

	port.OnWrite = func(m *serial.MockPort, p []byte) {
		op := p[0]
		if op == 0xAA && len(p) >= 3 {
			op = p[2] | 0x80
		}
		if reply, ok := replies[op]; ok {
			m.Reply(reply...)
		}
	}

	conn, err := maestro.NewConn(port, maestro.WithInterByteTimeout(5*time.Millisecond))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func TestRun_DispatchOrder(t *testing.T) {
	cfg, err := parse(t, "-c", "1", "-t", "6000", "-s", "10", "-a", "3",
		"--pwm-ontime", "1000", "--pwm-period", "4800",
		"--get-position", "--is-moving", "--get-errors", "--is-stop",
		"--stop", "--restart", "2")
	require.NoError(t, err)

	port := serial.NewMockPort()
	conn := newTestConn(t, port, map[byte][]byte{
		0x90: {0x70, 0x17},
		0x93: {0x01},
		0xA1: {0x00, 0x00},
		0xAE: {0x01},
	})

	var out bytes.Buffer
	require.NoError(t, Run(context.Background(), cfg, conn, &out))

	assert.Equal(t, []byte{
		// queries
		0x90, 0x01,
		0x93,
		0xA1,
		0xAE,
		// script control
		0xA4,
		0xA7, 0x02,
		// limits
		0x87, 0x01, 0x0A, 0x00,
		0x89, 0x01, 0x03, 0x00,
		0x8A, 0x68, 0x07, 0x40, 0x25,
		// motion
		0x84, 0x01, 0x70, 0x2E,
	}, port.Written())

	assert.Equal(t, "position of channel 1: 6000\n"+
		"moving: true\n"+
		"errors: 0x0000\n"+
		"script stopped: true\n", out.String())
}

func TestRun_Pololu(t *testing.T) {
	cfg, err := parse(t, "-d", "12", "-c", "2", "-t", "6000")
	require.NoError(t, err)

	port := serial.NewMockPort()
	conn := newTestConn(t, port, nil)

	require.NoError(t, Run(context.Background(), cfg, conn, &bytes.Buffer{}))
	assert.Equal(t, []byte{0xAA, 0x0C, 0x04, 0x02, 0x70, 0x2E}, port.Written())
}

func TestRun_MiniSSCTargetWithPololuQueries(t *testing.T) {
	cfg, err := parse(t, "-d", "1", "--ssc", "-c", "5", "-t", "200", "--is-moving")
	require.NoError(t, err)

	port := serial.NewMockPort()
	conn := newTestConn(t, port, map[byte][]byte{0x93: {0x00}})

	var out bytes.Buffer
	require.NoError(t, Run(context.Background(), cfg, conn, &out))
	assert.Equal(t, []byte{0xAA, 0x01, 0x13, 0xFF, 0x05, 0xC8}, port.Written())
	assert.Equal(t, "moving: false\n", out.String())
}

func TestRun_RestartWithParameter(t *testing.T) {
	cfg, err := parse(t, "--restart", "3", "--parameter", "300")
	require.NoError(t, err)

	port := serial.NewMockPort()
	conn := newTestConn(t, port, nil)

	require.NoError(t, Run(context.Background(), cfg, conn, &bytes.Buffer{}))
	assert.Equal(t, []byte{0xA8, 0x03, 0x2C, 0x02}, port.Written())
}

func TestRun_MultipleTargets(t *testing.T) {
	cfg, err := parse(t, "--mult-num", "2", "--mult-first", "3", "-t", "4000")
	require.NoError(t, err)

	port := serial.NewMockPort()
	conn := newTestConn(t, port, nil)

	require.NoError(t, Run(context.Background(), cfg, conn, &bytes.Buffer{}))
	assert.Equal(t, []byte{0x9F, 0x02, 0x03, 0x20, 0x1F, 0x20, 0x1F}, port.Written())
}

func TestRun_Timeout(t *testing.T) {
	cfg, err := parse(t, "--get-errors", "--stop", "--timeout", "20ms")
	require.NoError(t, err)

	port := serial.NewMockPort()
	conn := newTestConn(t, port, nil)

	start := time.Now()
	err = Run(context.Background(), cfg, conn, &bytes.Buffer{})
	require.ErrorIs(t, err, maestro.ErrTimeout)
	assert.Contains(t, err.Error(), "get errors")
	assert.Less(t, time.Since(start), time.Second)

	// The failure stops the run before the stop command.
	assert.Equal(t, []byte{0xA1}, port.Written())
}

func TestRun_InvalidArgument(t *testing.T) {
	cfg, err := parse(t, "-t", "20000")
	require.NoError(t, err)

	port := serial.NewMockPort()
	conn := newTestConn(t, port, nil)

	err = Run(context.Background(), cfg, conn, &bytes.Buffer{})
	require.ErrorIs(t, err, maestro.ErrInvalidArgument)
	assert.Zero(t, port.Writes())

	cfg, err = parse(t, "-d", "200", "--stop")
	require.NoError(t, err)
	err = Run(context.Background(), cfg, conn, &bytes.Buffer{})
	require.ErrorIs(t, err, maestro.ErrInvalidArgument)
}
