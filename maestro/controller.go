package maestro

import (
	"context"
	"errors"

	"github.com/arloliu/go-maestro/protocol"
)

// Controller issues operations to one controller through a Conn.
type Controller struct {
	conn *Conn
	enc  *protocol.Encoder
}

// NewController binds conn to a protocol variant. device is the Pololu
// device number and is ignored by the other variants.
func NewController(conn *Conn, variant protocol.Variant, device int) (*Controller, error) {
	if conn == nil {
		return nil, errors.New("maestro: conn is nil")
	}

	enc, err := protocol.NewEncoder(variant, device)
	if err != nil {
		return nil, err
	}

	return &Controller{conn: conn, enc: enc}, nil
}

// Variant returns the protocol variant.
func (c *Controller) Variant() protocol.Variant { return c.enc.Variant() }

// Device returns the Pololu device number.
func (c *Controller) Device() int { return c.enc.Device() }

// Conn returns the underlying connection.
func (c *Controller) Conn() *Conn { return c.conn }

// SetTarget moves channel to target, in quarter-microseconds. Zero stops
// sending pulses on the channel.
func (c *Controller) SetTarget(ctx context.Context, channel, target int) error {
	return c.send(ctx)(c.enc.SetTarget(channel, target))
}

// SetMultipleTargets sets consecutive channels starting at firstChannel, one
// target per channel.
func (c *Controller) SetMultipleTargets(ctx context.Context, firstChannel int, targets []int) error {
	return c.send(ctx)(c.enc.SetMultipleTargets(len(targets), firstChannel, targets))
}

// SetSpeed limits the speed of channel.
func (c *Controller) SetSpeed(ctx context.Context, channel, speed int) error {
	return c.send(ctx)(c.enc.SetSpeed(channel, speed))
}

// SetAcceleration limits the acceleration of channel.
func (c *Controller) SetAcceleration(ctx context.Context, channel, accel int) error {
	return c.send(ctx)(c.enc.SetAcceleration(channel, accel))
}

// SetPWM configures the PWM output.
func (c *Controller) SetPWM(ctx context.Context, onTime, period int) error {
	return c.send(ctx)(c.enc.SetPWM(onTime, period))
}

// GoHome sends every channel to its home position.
func (c *Controller) GoHome(ctx context.Context) error {
	return c.send(ctx)(c.enc.GoHome())
}

// StopScript stops the running script.
func (c *Controller) StopScript(ctx context.Context) error {
	return c.send(ctx)(c.enc.StopScript())
}

// RestartScript runs the script from subroutine.
func (c *Controller) RestartScript(ctx context.Context, subroutine int) error {
	return c.send(ctx)(c.enc.RestartScript(subroutine))
}

// RestartScriptWithParameter runs the script from subroutine with param
// pushed on its stack.
func (c *Controller) RestartScriptWithParameter(ctx context.Context, subroutine, param int) error {
	return c.send(ctx)(c.enc.RestartScriptWithParameter(subroutine, param))
}

// GetPosition returns the current pulse width of channel in
// quarter-microseconds.
func (c *Controller) GetPosition(ctx context.Context, channel int) (int, error) {
	return c.query(ctx)(c.enc.GetPosition(channel))
}

// GetMovingState reports whether any servo is still moving toward its target.
func (c *Controller) GetMovingState(ctx context.Context) (bool, error) {
	v, err := c.query(ctx)(c.enc.GetMovingState())
	if err != nil {
		return false, err
	}

	return v != 0, nil
}

// GetErrors returns and clears the error register.
func (c *Controller) GetErrors(ctx context.Context) (protocol.ErrorRegister, error) {
	v, err := c.query(ctx)(c.enc.GetErrors())
	if err != nil {
		return 0, err
	}

	return protocol.ErrorRegister(v), nil
}

// GetScriptStatus reports whether the script is stopped.
func (c *Controller) GetScriptStatus(ctx context.Context) (stopped bool, err error) {
	v, err := c.query(ctx)(c.enc.GetScriptStatus())
	if err != nil {
		return false, err
	}

	return v != 0, nil
}

func (c *Controller) send(ctx context.Context) func(protocol.Command, error) error {
	return func(cmd protocol.Command, err error) error {
		if err != nil {
			return err
		}

		return c.conn.Send(ctx, cmd)
	}
}

func (c *Controller) query(ctx context.Context) func(protocol.Command, error) (int, error) {
	return func(cmd protocol.Command, err error) (int, error) {
		if err != nil {
			return 0, err
		}

		return c.conn.Query(ctx, cmd)
	}
}
