// Command maestroctl drives a Pololu Maestro servo controller from the
// command line.
//
//	maestroctl [OPTIONS] [DEVICE]
//
// Run maestroctl --help for the list of options.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/arloliu/go-maestro/internal/cli"
	"github.com/arloliu/go-maestro/logger"
	"github.com/arloliu/go-maestro/maestro"
	"github.com/arloliu/go-maestro/serial"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cfg, err := cli.Parse(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	level := logger.WarnLevel
	if cfg.Verbose {
		level = logger.DebugLevel
	}
	log := logger.NewSlogWriter(stderr, level, true)
	logger.SetLogger(log)

	portCfg, err := serial.NewConfig(cfg.Path, serial.WithDriver(cfg.Driver), serial.WithBaudRate(cfg.Baud))
	if err != nil {
		log.Error("invalid serial configuration", "error", err)
		return 2
	}

	conn, err := maestro.Open(portCfg, maestro.WithLogger(log))
	if err != nil {
		return 1
	}
	defer conn.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cli.Run(ctx, cfg, conn, stdout); err != nil {
		log.Error("maestroctl failed", "error", err)
		return 1
	}

	return 0
}
