package serial

import (
	"fmt"

	bugst "go.bug.st/serial"
)

func openBugst(cfg *Config) (Port, error) {
	mode := &bugst.Mode{
		BaudRate: cfg.effectiveBaudRate(),
		DataBits: 8,
		Parity:   bugst.NoParity,
		StopBits: bugst.OneStopBit,
	}

	port, err := bugst.Open(cfg.path, mode)
	if err != nil {
		return nil, fmt.Errorf("serial: open %s: %w", cfg.path, err)
	}

	return newPollingPort(port, cfg.pollInterval), nil
}
