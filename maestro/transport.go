package maestro

import (
	"context"
	"io"

	"github.com/arloliu/go-maestro/serial"
)

// Transport is the byte stream a Conn talks over.
//
// WaitReady blocks until input is available to Read, returning the context
// error once ctx is done. [serial.Port] satisfies it.
type Transport interface {
	io.ReadWriteCloser
	WaitReady(ctx context.Context) error
}

var _ Transport = (serial.Port)(nil)
