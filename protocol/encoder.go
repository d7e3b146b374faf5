package protocol

// Encoder builds commands for one protocol variant and, for the Pololu
// variant, one device address.
//
// An Encoder holds no state besides its variant and address and is safe for
// concurrent use.
type Encoder struct {
	variant Variant
	device  byte
}

// NewEncoder returns an encoder for the given variant. device is the target
// controller address (0–127) and is ignored unless variant is [Pololu].
func NewEncoder(variant Variant, device int) (*Encoder, error) {
	if !variant.Valid() {
		return nil, invalidArgf("unknown protocol %s", variant)
	}

	e := &Encoder{variant: variant}
	if variant == Pololu {
		d, err := dataByte("device", device)
		if err != nil {
			return nil, err
		}
		e.device = d
	}

	return e, nil
}

// Variant returns the protocol variant of e.
func (e *Encoder) Variant() Variant { return e.variant }

// Device returns the device address e encodes into Pololu frames.
func (e *Encoder) Device() int { return int(e.device) }

// command validates op against the variant and wraps params.
func (e *Encoder) command(op Op, params []byte) (Command, error) {
	if _, err := op.Opcode(e.variant); err != nil {
		return Command{}, err
	}

	return Command{Variant: e.variant, Device: e.device, Op: op, Params: params}, nil
}

// channelValue encodes the common `channel, low, high` parameter layout.
func (e *Encoder) channelValue(op Op, channel int, name string, v int) (Command, error) {
	ch, err := dataByte("channel", channel)
	if err != nil {
		return Command{}, err
	}

	params, err := appendValue(make([]byte, 0, 3), name, v)
	if err != nil {
		return Command{}, err
	}

	return e.command(op, append([]byte{ch}, params...))
}

// SetTarget moves channel to target, in quarter-microseconds.
//
// For the MiniSSC variant target is a raw 0–255 value that the controller
// scales with the channel's stored neutral and range, and channel is the
// channel number plus the controller's MiniSSC offset (0–254).
func (e *Encoder) SetTarget(channel, target int) (Command, error) {
	if e.variant == MiniSSC {
		if err := checkRange("channel", channel, 0, MaxMiniSSCChannel); err != nil {
			return Command{}, err
		}
		if err := checkRange("target", target, 0, MaxMiniSSCTarget); err != nil {
			return Command{}, err
		}

		return Command{Variant: MiniSSC, Op: OpSetTarget, Params: []byte{byte(channel), byte(target)}}, nil
	}

	return e.channelValue(OpSetTarget, channel, "target", target)
}

// SetMultipleTargets sets count consecutive channels starting at firstChannel
// to targets[0:count].
//
// A zero count with no targets is valid and produces a header-only frame.
// targets may be longer than count; the excess is ignored.
func (e *Encoder) SetMultipleTargets(count, firstChannel int, targets []int) (Command, error) {
	n, err := dataByte("count", count)
	if err != nil {
		return Command{}, err
	}
	first, err := dataByte("first channel", firstChannel)
	if err != nil {
		return Command{}, err
	}
	if count > 0 && targets == nil {
		return Command{}, invalidArgf("%d targets requested but target list is nil", count)
	}
	if len(targets) < count {
		return Command{}, invalidArgf("%d targets requested but only %d supplied", count, len(targets))
	}

	params := make([]byte, 0, 2+2*count)
	params = append(params, n, first)
	for i := range count {
		params, err = appendValue(params, "target", targets[i])
		if err != nil {
			return Command{}, err
		}
	}

	return e.command(OpSetMultipleTargets, params)
}

// SetSpeed limits the speed of channel, in 0.25µs/10ms units. Zero removes the limit.
func (e *Encoder) SetSpeed(channel, speed int) (Command, error) {
	return e.channelValue(OpSetSpeed, channel, "speed", speed)
}

// SetAcceleration limits the acceleration of channel, in 0.25µs/10ms/80ms
// units. Zero removes the limit.
func (e *Encoder) SetAcceleration(channel, acceleration int) (Command, error) {
	return e.channelValue(OpSetAcceleration, channel, "acceleration", acceleration)
}

// SetPWM configures the PWM output; onTime and period are in 1/48µs units.
func (e *Encoder) SetPWM(onTime, period int) (Command, error) {
	params, err := appendValue(make([]byte, 0, 4), "pwm on-time", onTime)
	if err != nil {
		return Command{}, err
	}
	params, err = appendValue(params, "pwm period", period)
	if err != nil {
		return Command{}, err
	}

	return e.command(OpSetPWM, params)
}

// GetPosition queries the current position of channel. The reply is 2 bytes.
func (e *Encoder) GetPosition(channel int) (Command, error) {
	ch, err := dataByte("channel", channel)
	if err != nil {
		return Command{}, err
	}

	return e.command(OpGetPosition, []byte{ch})
}

// GetMovingState asks whether any servo is still moving. The reply is 1 byte.
func (e *Encoder) GetMovingState() (Command, error) {
	return e.command(OpGetMovingState, nil)
}

// GetErrors reads and clears the error register. The reply is 2 bytes.
func (e *Encoder) GetErrors() (Command, error) {
	return e.command(OpGetErrors, nil)
}

// GoHome sends every channel to its home position.
func (e *Encoder) GoHome() (Command, error) {
	return e.command(OpGoHome, nil)
}

// StopScript stops the running script.
func (e *Encoder) StopScript() (Command, error) {
	return e.command(OpStopScript, nil)
}

// RestartScript restarts the script at the given subroutine.
func (e *Encoder) RestartScript(subroutine int) (Command, error) {
	sub, err := dataByte("subroutine", subroutine)
	if err != nil {
		return Command{}, err
	}

	return e.command(OpRestartScript, []byte{sub})
}

// RestartScriptWithParameter restarts the script at the given subroutine with
// parameter (0–16383) pushed onto the script stack.
func (e *Encoder) RestartScriptWithParameter(subroutine, parameter int) (Command, error) {
	sub, err := dataByte("subroutine", subroutine)
	if err != nil {
		return Command{}, err
	}
	params, err := appendValue([]byte{sub}, "parameter", parameter)
	if err != nil {
		return Command{}, err
	}

	return e.command(OpRestartScriptWithParameter, params)
}

// GetScriptStatus asks whether the script has stopped. The reply is 1 byte.
func (e *Encoder) GetScriptStatus() (Command, error) {
	return e.command(OpGetScriptStatus, nil)
}
