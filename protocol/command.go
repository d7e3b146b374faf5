package protocol

import "fmt"

// Command is one encoded controller operation.
//
// A Command is a plain value: it is built by an [Encoder], turned into bytes,
// written and discarded. Device is only meaningful for the Pololu variant.
// Params holds the already encoded parameter bytes, channel first where the
// operation takes one.
type Command struct {
	Variant Variant
	Device  byte
	Op      Op
	Params  []byte
}

// Bytes returns the complete frame to transmit.
func (c Command) Bytes() []byte {
	switch c.Variant {
	case Pololu:
		buf := make([]byte, 0, 3+len(c.Params))
		buf = append(buf, PololuMarker, c.Device, c.Op.compact()&0x7F)

		return append(buf, c.Params...)
	case MiniSSC:
		buf := make([]byte, 0, 1+len(c.Params))
		buf = append(buf, MiniSSCMarker)

		return append(buf, c.Params...)
	default:
		buf := make([]byte, 0, 1+len(c.Params))
		buf = append(buf, c.Op.compact())

		return append(buf, c.Params...)
	}
}

// Len returns the frame length in bytes.
func (c Command) Len() int {
	switch c.Variant {
	case Pololu:
		return 3 + len(c.Params)
	default:
		return 1 + len(c.Params)
	}
}

// ReplyLen returns the size of the reply the controller sends for c.
func (c Command) ReplyLen() int {
	if c.Variant == MiniSSC {
		return 0
	}

	return c.Op.ReplyLen()
}

// String renders the command for logs, e.g. "compact set-target [84 02 70 2E]".
func (c Command) String() string {
	return fmt.Sprintf("%s %s [% X]", c.Variant, c.Op, c.Bytes())
}
