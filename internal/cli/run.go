package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/arloliu/go-maestro/maestro"
	"github.com/arloliu/go-maestro/protocol"
)

// action is one operation requested on the command line.
type action struct {
	name string
	run  func(ctx context.Context) error
}

// Run performs the operations requested by cfg on conn and prints query
// results to out. Queries run first, then script control, then limits and
// finally motion. Each operation gets its own cfg.Timeout deadline; the first
// failure stops the run.
func Run(ctx context.Context, cfg Config, conn *maestro.Conn, out io.Writer) error {
	variant, device := protocol.Compact, 0
	if cfg.Pololu() {
		variant, device = protocol.Pololu, cfg.Device
	}

	ctrl, err := maestro.NewController(conn, variant, device)
	if err != nil {
		return err
	}

	mover := ctrl
	if cfg.SSC {
		if mover, err = maestro.NewController(conn, protocol.MiniSSC, 0); err != nil {
			return err
		}
	}

	for _, a := range plan(cfg, ctrl, mover, out) {
		if err := runAction(ctx, cfg, a); err != nil {
			return fmt.Errorf("%s: %w", a.name, err)
		}
	}

	return nil
}

func runAction(ctx context.Context, cfg Config, a action) error {
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	return a.run(ctx)
}

// plan lists the requested operations in dispatch order.
func plan(cfg Config, ctrl, mover *maestro.Controller, out io.Writer) []action {
	var actions []action

	if cfg.GetPosition {
		actions = append(actions, action{"get position", func(ctx context.Context) error {
			pos, err := ctrl.GetPosition(ctx, cfg.Channel)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(out, "position of channel %d: %d\n", cfg.Channel, pos)

			return err
		}})
	}
	if cfg.IsMoving {
		actions = append(actions, action{"get moving state", func(ctx context.Context) error {
			moving, err := ctrl.GetMovingState(ctx)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(out, "moving: %t\n", moving)

			return err
		}})
	}
	if cfg.GetErrors {
		actions = append(actions, action{"get errors", func(ctx context.Context) error {
			reg, err := ctrl.GetErrors(ctx)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(out, "errors: %s\n", reg)

			return err
		}})
	}
	if cfg.IsStop {
		actions = append(actions, action{"get script status", func(ctx context.Context) error {
			stopped, err := ctrl.GetScriptStatus(ctx)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(out, "script stopped: %t\n", stopped)

			return err
		}})
	}

	if cfg.Stop {
		actions = append(actions, action{"stop script", ctrl.StopScript})
	}
	if cfg.Restart != unset {
		if cfg.Parameter != unset {
			actions = append(actions, action{"restart script", func(ctx context.Context) error {
				return ctrl.RestartScriptWithParameter(ctx, cfg.Restart, cfg.Parameter)
			}})
		} else {
			actions = append(actions, action{"restart script", func(ctx context.Context) error {
				return ctrl.RestartScript(ctx, cfg.Restart)
			}})
		}
	}

	if cfg.SetSpeed {
		actions = append(actions, action{"set speed", func(ctx context.Context) error {
			return ctrl.SetSpeed(ctx, cfg.Channel, cfg.Speed)
		}})
	}
	if cfg.SetAcceleration {
		actions = append(actions, action{"set acceleration", func(ctx context.Context) error {
			return ctrl.SetAcceleration(ctx, cfg.Channel, cfg.Acceleration)
		}})
	}
	if cfg.SetPWM {
		actions = append(actions, action{"set pwm", func(ctx context.Context) error {
			return ctrl.SetPWM(ctx, cfg.PWMOnTime, cfg.PWMPeriod)
		}})
	}

	switch {
	case cfg.MultNum != unset:
		actions = append(actions, action{"set multiple targets", func(ctx context.Context) error {
			return ctrl.SetMultipleTargets(ctx, cfg.MultFirst, cfg.Targets)
		}})
	case cfg.SetTarget:
		actions = append(actions, action{"set target", func(ctx context.Context) error {
			return mover.SetTarget(ctx, cfg.Channel, cfg.Target)
		}})
	}

	return actions
}
