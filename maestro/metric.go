package maestro

import "github.com/puzpuzpuz/xsync/v3"

// ConnMetrics counts the traffic of a Conn.
// Counters can be used as the value of a prometheus CounterFunc.
type ConnMetrics struct {
	// CommandCount is the number of commands written without a reply.
	CommandCount *xsync.Counter
	// QueryCount is the number of queries answered in full.
	QueryCount *xsync.Counter
	// TimeoutCount is the number of queries that got no reply in time.
	TimeoutCount *xsync.Counter
	// ProtocolErrCount is the number of short replies.
	ProtocolErrCount *xsync.Counter
	// IOErrCount is the number of transport failures.
	IOErrCount *xsync.Counter

	BytesSent     *xsync.Counter
	BytesReceived *xsync.Counter
}

func newConnMetrics() *ConnMetrics {
	return &ConnMetrics{
		CommandCount:     xsync.NewCounter(),
		QueryCount:       xsync.NewCounter(),
		TimeoutCount:     xsync.NewCounter(),
		ProtocolErrCount: xsync.NewCounter(),
		IOErrCount:       xsync.NewCounter(),
		BytesSent:        xsync.NewCounter(),
		BytesReceived:    xsync.NewCounter(),
	}
}

// Reset zeroes every counter.
func (m *ConnMetrics) Reset() {
	for _, c := range []*xsync.Counter{
		m.CommandCount, m.QueryCount, m.TimeoutCount, m.ProtocolErrCount,
		m.IOErrCount, m.BytesSent, m.BytesReceived,
	} {
		c.Reset()
	}
}
