// Package cli implements the maestroctl command line: option parsing into an
// immutable Config and dispatch of the requested operations.
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/arloliu/go-maestro/serial"
	"github.com/arloliu/go-maestro/targets"
)

// DefaultDevicePath is used when no serial device is given.
const DefaultDevicePath = "/dev/ttyACM0"

// DefaultTimeout bounds each operation unless --timeout says otherwise.
const DefaultTimeout = time.Second

// unset marks an integer option that was not given.
const unset = -1

// ErrUsage reports an invalid combination of options.
var ErrUsage = errors.New("maestroctl: invalid usage")

// Config is the parsed command line. It is built once by Parse and not
// modified afterwards.
type Config struct {
	Path   string
	Driver serial.Driver
	Baud   int

	// Device is the Pololu device number, or -1 to use the Compact protocol.
	Device  int
	Channel int
	SSC     bool

	Target    int
	SetTarget bool

	Speed           int
	SetSpeed        bool
	Acceleration    int
	SetAcceleration bool

	PWMOnTime int
	PWMPeriod int
	SetPWM    bool

	// MultNum is the number of channels for set-multiple-targets, or -1.
	MultNum   int
	MultFirst int
	File      string
	// Targets holds the MultNum targets to send, read from File or repeated
	// from Target.
	Targets []int

	GetPosition bool
	IsMoving    bool
	GetErrors   bool

	Stop bool
	// Restart is the subroutine to restart the script at, or -1.
	Restart int
	// Parameter is pushed on the script stack by a restart, or -1.
	Parameter int
	IsStop    bool

	Timeout time.Duration
	Verbose bool
}

// Pololu reports whether commands are addressed with the Pololu protocol.
func (c Config) Pololu() bool { return c.Device != unset }

// HasAction reports whether any operation was requested.
func (c Config) HasAction() bool {
	return c.GetPosition || c.IsMoving || c.GetErrors || c.IsStop ||
		c.Stop || c.Restart != unset ||
		c.SetSpeed || c.SetAcceleration || c.SetPWM ||
		c.SetTarget || c.MultNum != unset
}

// Parse parses args, the command line without the program name. Usage and
// parse errors are written to output. flag.ErrHelp is returned for --help.
func Parse(args []string, output io.Writer) (Config, error) {
	var (
		cfg    Config
		driver string
	)

	fs := flag.NewFlagSet("maestroctl", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() { usage(fs) }

	intVar2(fs, &cfg.Device, "device", "d", unset, "device `num`ber; selects the Pololu protocol (default: Compact protocol)")
	intVar2(fs, &cfg.Channel, "channel", "c", 0, "channel `num`ber")
	intVar2(fs, &cfg.Target, "target", "t", 0, "target `value` in quarter-microseconds (0 - 16383)")
	fs.BoolVar(&cfg.SSC, "ssc", false, "use the MiniSSC protocol for setting the target")

	intVar2(fs, &cfg.Speed, "speed", "s", 0, "speed limit `value` in 0.25us/10ms units, 0 = unlimited")
	intVar2(fs, &cfg.Acceleration, "acceleration", "a", 0, "acceleration limit `value` in 0.25us/10ms/80ms units, 0 = unlimited")
	fs.IntVar(&cfg.PWMOnTime, "pwm-ontime", 0, "PWM on time `value` in 1/48us units")
	fs.IntVar(&cfg.PWMPeriod, "pwm-period", 0, "PWM period `value` in 1/48us units")

	fs.IntVar(&cfg.MultNum, "mult-num", unset, "set `num` consecutive channels at once")
	fs.IntVar(&cfg.MultFirst, "mult-first", 0, "first `channel` for --mult-num")
	fs.StringVar(&cfg.File, "file", "", "read the --mult-num targets from `path`; without it --target is used for every channel")

	fs.BoolVar(&cfg.GetPosition, "get-position", false, "print the current position of --channel")
	fs.BoolVar(&cfg.IsMoving, "is-moving", false, "print whether any servo is moving")
	fs.BoolVar(&cfg.GetErrors, "get-errors", false, "print and clear the error register")

	fs.BoolVar(&cfg.Stop, "stop", false, "stop the script")
	fs.IntVar(&cfg.Restart, "restart", unset, "restart the script at `subroutine`")
	fs.IntVar(&cfg.Parameter, "parameter", unset, "`value` pushed on the script stack by --restart")
	fs.BoolVar(&cfg.IsStop, "is-stop", false, "print whether the script is stopped")

	fs.DurationVar(&cfg.Timeout, "timeout", DefaultTimeout, "deadline for each operation, 0 = wait forever")
	fs.StringVar(&driver, "driver", "", "serial `driver`: termios, bugst or tarm (default: platform default)")
	fs.IntVar(&cfg.Baud, "baud", 0, "line speed in `bps`, 0 = leave the device setting")
	fs.BoolVar(&cfg.Verbose, "v", false, "log every frame written")

	var help bool
	fs.BoolVar(&help, "h", false, "print this help and exit")
	fs.BoolVar(&help, "help", false, "print this help and exit")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if help {
		fs.Usage()
		return Config{}, flag.ErrHelp
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	cfg.SetTarget = set["target"] || set["t"] || cfg.SSC
	cfg.SetSpeed = set["speed"] || set["s"]
	cfg.SetAcceleration = set["acceleration"] || set["a"]
	cfg.SetPWM = set["pwm-ontime"] || set["pwm-period"]

	switch fs.NArg() {
	case 0:
		cfg.Path = DefaultDevicePath
	case 1:
		cfg.Path = fs.Arg(0)
	default:
		return Config{}, fmt.Errorf("%w: more than one serial device given: %v", ErrUsage, fs.Args())
	}

	d, err := serial.ParseDriver(driver)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrUsage, err)
	}
	cfg.Driver = d

	if err := cfg.validate(set); err != nil {
		return Config{}, err
	}

	if cfg.MultNum != unset {
		list := targets.Repeat(cfg.Target, cfg.MultNum)
		if cfg.File != "" {
			if list, err = targets.ReadFile(cfg.File); err != nil {
				return Config{}, err
			}
		}
		if cfg.Targets, err = targets.Take(list, cfg.MultNum); err != nil {
			return Config{}, err
		}
	}

	return cfg, nil
}

func (c Config) validate(set map[string]bool) error {
	switch {
	case set["parameter"] && !set["restart"]:
		return fmt.Errorf("%w: --parameter requires --restart", ErrUsage)
	case set["mult-first"] && !set["mult-num"]:
		return fmt.Errorf("%w: --mult-first requires --mult-num", ErrUsage)
	case set["file"] && !set["mult-num"]:
		return fmt.Errorf("%w: --file requires --mult-num", ErrUsage)
	case c.MultNum < unset:
		return fmt.Errorf("%w: --mult-num must not be negative", ErrUsage)
	case c.SSC && c.MultNum != unset:
		return fmt.Errorf("%w: --ssc cannot set multiple targets", ErrUsage)
	case c.Timeout < 0:
		return fmt.Errorf("%w: --timeout must not be negative", ErrUsage)
	case c.Baud < 0:
		return fmt.Errorf("%w: --baud must not be negative", ErrUsage)
	case !c.HasAction():
		return fmt.Errorf("%w: nothing to do, see --help", ErrUsage)
	}

	return nil
}

// intVar2 registers an integer option under a long and a short name.
func intVar2(fs *flag.FlagSet, p *int, name, short string, value int, usage string) {
	fs.IntVar(p, name, value, usage)
	fs.IntVar(p, short, value, "shorthand for --"+name)
}

func usage(fs *flag.FlagSet) {
	out := fs.Output()
	fmt.Fprintf(out, "usage: %s [OPTIONS] [DEVICE]\n\n", fs.Name())
	fmt.Fprintf(out, "DEVICE is the serial device of the controller (default %s).\n", DefaultDevicePath)
	fmt.Fprintln(out, "Queries run first, then script control, limits and finally motion.")
	fmt.Fprintln(out, "\nOptions:")
	fs.PrintDefaults()
}
