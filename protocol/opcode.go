package protocol

import "fmt"

// Variant selects one of the three wire protocols.
type Variant uint8

const (
	// Pololu addresses a device on a shared line.
	Pololu Variant = iota
	// Compact talks to the single device bound to the line.
	Compact
	// MiniSSC is the legacy set-target-only protocol.
	MiniSSC
)

// Frame marker bytes.
const (
	PololuMarker  byte = 0xAA
	MiniSSCMarker byte = 0xFF
)

func (v Variant) String() string {
	switch v {
	case Pololu:
		return "pololu"
	case Compact:
		return "compact"
	case MiniSSC:
		return "minissc"
	default:
		return fmt.Sprintf("variant(%d)", uint8(v))
	}
}

// Valid reports whether v is one of the known variants.
func (v Variant) Valid() bool {
	return v <= MiniSSC
}

// Op identifies a logical controller operation.
type Op uint8

const (
	OpSetTarget Op = iota
	OpSetMultipleTargets
	OpSetSpeed
	OpSetAcceleration
	OpSetPWM
	OpGetPosition
	OpGetMovingState
	OpGetErrors
	OpGoHome
	OpStopScript
	OpRestartScript
	OpRestartScriptWithParameter
	OpGetScriptStatus

	opCount
)

type opInfo struct {
	name     string
	compact  byte // Compact opcode; the Pololu opcode is the same with bit 7 cleared
	replyLen int
}

var ops = [opCount]opInfo{
	OpSetTarget:                  {"set-target", 0x84, 0},
	OpSetMultipleTargets:         {"set-multiple-targets", 0x9F, 0},
	OpSetSpeed:                   {"set-speed", 0x87, 0},
	OpSetAcceleration:            {"set-acceleration", 0x89, 0},
	OpSetPWM:                     {"set-pwm", 0x8A, 0},
	OpGetPosition:                {"get-position", 0x90, 2},
	OpGetMovingState:             {"get-moving-state", 0x93, 1},
	OpGetErrors:                  {"get-errors", 0xA1, 2},
	OpGoHome:                     {"go-home", 0xA2, 0},
	OpStopScript:                 {"stop-script", 0xA4, 0},
	OpRestartScript:              {"restart-script", 0xA7, 0},
	OpRestartScriptWithParameter: {"restart-script-with-parameter", 0xA8, 0},
	OpGetScriptStatus:            {"get-script-status", 0xAE, 1},
}

func (op Op) String() string {
	if op >= opCount {
		return fmt.Sprintf("op(%d)", uint8(op))
	}

	return ops[op].name
}

// Opcode returns the opcode byte of op for the given variant.
// MiniSSC has no opcodes and only supports [OpSetTarget].
func (op Op) Opcode(v Variant) (byte, error) {
	if op >= opCount {
		return 0, invalidArgf("unknown operation %d", uint8(op))
	}

	switch v {
	case Compact:
		return ops[op].compact, nil
	case Pololu:
		return ops[op].compact & 0x7F, nil
	case MiniSSC:
		return 0, invalidArgf("%s is not supported by the %s protocol", op, v)
	default:
		return 0, invalidArgf("unknown protocol %s", v)
	}
}

func (op Op) compact() byte {
	if op >= opCount {
		return 0
	}

	return ops[op].compact
}

// ReplyLen returns the size in bytes of the reply op produces, or 0 if the
// controller does not answer it.
func (op Op) ReplyLen() int {
	if op >= opCount {
		return 0
	}

	return ops[op].replyLen
}

// HasReply reports whether the controller answers op.
func (op Op) HasReply() bool {
	return op.ReplyLen() > 0
}
