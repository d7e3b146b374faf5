// Package protocol implements the command codec for Pololu Maestro style servo
// controllers.
//
// Three closely related wire protocols are supported and selected with a
// [Variant]:
//
//   - Pololu: addressed frames `0xAA, device, opcode&0x7F, params...`, allowing
//     several controllers to share one serial line.
//   - Compact: unaddressed frames `opcode, params...` for the single controller
//     bound to the line. The opcode carries the top bit and doubles as the
//     frame marker.
//   - MiniSSC: legacy `0xFF, channel, target` frames, set-target only.
//
// # Data bytes
//
// Every parameter byte has its top bit clear. 14-bit values (targets, speeds,
// accelerations, PWM times, script parameters) are transmitted as two 7-bit
// groups, low group first; see [Split14]. Replies from the controller are plain
// little-endian integers and are decoded with [JoinLE].
//
// Encoding performs no I/O: an [Encoder] turns a logical operation into a
// [Command] whose [Command.Bytes] is the exact frame to transmit. Sending the
// frame and awaiting a reply is the job of the maestro package.
//
// Values that do not fit their field are rejected with [ErrInvalidArgument]
// instead of being masked.
package protocol
