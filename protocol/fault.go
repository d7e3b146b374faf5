package protocol

import (
	"fmt"
	"strings"
)

// Fault is a single bit of the controller's error register.
type Fault uint16

const (
	FaultSignal         Fault = 1 << iota // serial signal error
	FaultOverrun                          // serial overrun error
	FaultRxBufferFull                     // serial receive buffer full
	FaultCRC                              // serial CRC error
	FaultProtocol                         // serial protocol error
	FaultTimeout                          // serial timeout error
	FaultStack                            // script stack error
	FaultCallStack                        // script call stack error
	FaultProgramCounter                   // script program counter error

	faultMask = FaultProgramCounter<<1 - 1
)

var faultNames = [...]string{
	"signal error",
	"overrun error",
	"receive buffer full error",
	"crc error",
	"protocol error",
	"timeout error",
	"stack error",
	"call stack error",
	"program counter error",
}

func (f Fault) String() string {
	for i, name := range faultNames {
		if f == 1<<i {
			return name
		}
	}

	return fmt.Sprintf("fault(0x%04X)", uint16(f))
}

// ErrorRegister is the raw 16-bit value returned by a get-errors query.
type ErrorRegister uint16

// DecodeFaults returns the faults set in v in ascending bit order.
// Bits without a known meaning are ignored.
func DecodeFaults(v uint16) []Fault {
	return ErrorRegister(v).Faults()
}

// Faults returns the set faults in ascending bit order.
func (r ErrorRegister) Faults() []Fault {
	var faults []Fault
	for f := FaultSignal; f <= FaultProgramCounter; f <<= 1 {
		if Fault(r)&f != 0 {
			faults = append(faults, f)
		}
	}

	return faults
}

// Has reports whether fault f is set.
func (r ErrorRegister) Has(f Fault) bool {
	return Fault(r)&f != 0
}

// Clear reports whether no known fault is set.
func (r ErrorRegister) Clear() bool {
	return Fault(r)&faultMask == 0
}

func (r ErrorRegister) String() string {
	faults := r.Faults()
	if len(faults) == 0 {
		return fmt.Sprintf("0x%04X", uint16(r))
	}

	names := make([]string, len(faults))
	for i, f := range faults {
		names[i] = f.String()
	}

	return fmt.Sprintf("0x%04X [%s]", uint16(r), strings.Join(names, ", "))
}

// Err returns the register as an error, or nil when no fault is set.
func (r ErrorRegister) Err() error {
	if r.Clear() {
		return nil
	}

	return &FaultError{Register: r}
}

// FaultError reports a non-empty error register.
type FaultError struct {
	Register ErrorRegister
}

func (e *FaultError) Error() string {
	return "maestro: controller reported " + e.Register.String()
}
