// Package serial opens the byte-stream handles go-maestro talks over.
//
// Every handle is a [Port]: an io.ReadWriteCloser with a readiness wait that
// blocks until input is available or the context ends. Three drivers are
// available:
//
//   - DriverTermios (Linux default): opens the tty directly, switches it to raw
//     mode (8 data bits, no echo, no canonical processing, no flow control and
//     no newline translation in either direction) and waits for input with
//     poll(2).
//   - DriverBugst: go.bug.st/serial, portable across Linux, macOS and Windows.
//   - DriverTarm: github.com/tarm/serial.
//
// The bugst and tarm drivers have no native readiness primitive; their wait
// reads ahead in slices of the configured poll interval and hands the bytes
// to the next Read.
//
// The line speed is left untouched by the termios driver unless a baud rate is
// configured. Maestro controllers on USB ignore it; TTL serial controllers
// detect it automatically.
package serial
