package maestro

import (
	"slices"

	"github.com/arloliu/go-maestro/protocol"
	"github.com/puzpuzpuz/xsync/v3"
)

// Bus shares one Conn between controllers daisy-chained on the same line.
//
// Controllers returned by Device use the Pololu protocol and are cached per
// address; the Compact and MiniSSC controllers address every device at once.
type Bus struct {
	conn    *Conn
	devices *xsync.MapOf[int, *Controller]
}

// NewBus creates a bus on conn.
func NewBus(conn *Conn) *Bus {
	return &Bus{
		conn:    conn,
		devices: xsync.NewMapOf[int, *Controller](),
	}
}

// Conn returns the shared connection.
func (b *Bus) Conn() *Conn { return b.conn }

// Device returns the controller at the Pololu device number addr.
func (b *Bus) Device(addr int) (*Controller, error) {
	if ctrl, ok := b.devices.Load(addr); ok {
		return ctrl, nil
	}

	enc, err := protocol.NewEncoder(protocol.Pololu, addr)
	if err != nil {
		return nil, err
	}

	ctrl, _ := b.devices.LoadOrCompute(addr, func() *Controller {
		return &Controller{conn: b.conn, enc: enc}
	})

	return ctrl, nil
}

// Devices returns the addresses of the controllers created so far, in
// ascending order.
func (b *Bus) Devices() []int {
	addrs := make([]int, 0, b.devices.Size())
	b.devices.Range(func(addr int, _ *Controller) bool {
		addrs = append(addrs, addr)
		return true
	})
	slices.Sort(addrs)

	return addrs
}

// Compact returns a controller using the Compact protocol.
func (b *Bus) Compact() *Controller {
	enc, _ := protocol.NewEncoder(protocol.Compact, 0)
	return &Controller{conn: b.conn, enc: enc}
}

// MiniSSC returns a controller using the MiniSSC protocol. It only supports
// SetTarget.
func (b *Bus) MiniSSC() *Controller {
	enc, _ := protocol.NewEncoder(protocol.MiniSSC, 0)
	return &Controller{conn: b.conn, enc: enc}
}

// Close closes the shared connection.
func (b *Bus) Close() error {
	b.devices.Clear()
	return b.conn.Close()
}
