package protocol

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument is returned when a command cannot be encoded because an
// argument is missing or does not fit its wire field.
var ErrInvalidArgument = errors.New("maestro: invalid argument")

func invalidArgf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// checkRange validates that v lies in [minVal, maxVal].
func checkRange(name string, v, minVal, maxVal int) error {
	if v < minVal || v > maxVal {
		return invalidArgf("%s %d out of range [%d, %d]", name, v, minVal, maxVal)
	}

	return nil
}
