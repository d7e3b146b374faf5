// Package maestro drives Pololu Maestro servo controllers over a serial line.
//
// A [Conn] owns one transport and runs the request cycle of the controller:
// write an encoded [protocol.Command], and for queries wait for the reply,
// read it and decode it as a little-endian integer. Only one cycle is in
// flight per Conn; concurrent callers are serialized.
//
// A [Controller] binds a Conn to one protocol variant and device address and
// offers the operations with typed results:
//
//	portCfg, err := serial.NewConfig("/dev/ttyACM0")
//	...
//	conn, err := maestro.Open(portCfg, maestro.WithReplyTimeout(time.Second))
//	...
//	ctrl, err := maestro.NewController(conn, protocol.Compact, 0)
//	...
//	err = ctrl.SetTarget(ctx, 0, 6000)
//	pos, err := ctrl.GetPosition(ctx, 0)
//
// A [Bus] shares one Conn between several controllers daisy-chained on the
// same line and addressed with the Pololu protocol.
//
// # Errors
//
// Failures are reported with the sentinels [ErrInvalidArgument], [ErrIO],
// [ErrTimeout], [ErrProtocol] and [ErrConnClosed], matched with errors.Is.
// A cancelled context is returned as context.Canceled. A command that was
// written is executed by the device whatever the outcome of its reply.
package maestro
