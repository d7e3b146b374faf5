package maestro

import (
	"errors"
	"fmt"

	"github.com/arloliu/go-maestro/protocol"
)

var (
	// ErrInvalidArgument reports a value outside its protocol range or an
	// operation the selected protocol cannot express.
	ErrInvalidArgument = protocol.ErrInvalidArgument

	ErrIO       = errors.New("maestro: i/o error")
	ErrTimeout  = errors.New("maestro: reply timeout")
	ErrProtocol = errors.New("maestro: short reply")

	// ErrConnClosed is returned after Close; it matches ErrIO as well.
	ErrConnClosed = fmt.Errorf("%w: connection closed", ErrIO)
)
