//go:build !linux

package serial

const defaultDriver = DriverBugst

func openTermios(*Config) (Port, error) {
	return nil, ErrUnsupportedDriver
}
