package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	serial "github.com/Station-Manager/serialprobe"
)

func main() {
	os.Exit(run())
}

func run() int {
	device := flag.String("device", serial.DefaultPortName(), "serial device path")
	baud := flag.Int("baud", serial.DefaultBaudRate, "baud rate (ignored by USB CDC devices)")
	dataBits := flag.Int("databits", serial.DefaultDataBits, "data bits")
	parity := flag.String("parity", "N", "parity (N,O,E,M,S)")
	stopBits := flag.Int("stopbits", 1, "stop bits (1 or 2)")
	readTimeout := flag.Duration("read-timeout", serial.DefaultReadTimeout, "how long to wait for the response line")
	message := flag.String("message", serial.DefaultMessage, "message to send; a trailing newline is added if missing")
	list := flag.Bool("list", false, "list available serial ports and exit")
	logLevel := flag.String("log-level", "warn", "log level (trace,debug,info,warn,error,disabled)")
	logFile := flag.String("log-file", "", "also write JSON logs to this rotating file")

	flag.Parse()

	logger, closer, err := serial.NewLogger(serial.LogConfig{Level: *logLevel, File: *logFile}, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}
	defer closer.Close()

	if *list {
		return listPorts()
	}

	cfg := serial.Config{
		PortName:    *device,
		BaudRate:    *baud,
		DataBits:    *dataBits,
		ReadTimeout: *readTimeout,
	}
	if cfg.Parity, err = serial.ParseParity(*parity); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}
	if cfg.StopBits, err = serial.ParseStopBits(*stopBits); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	probe := serial.NewProbe(cfg, serial.Payload(*message))
	probe.Logger = logger

	start := time.Now()
	rep := probe.Run(ctx)
	logger.Info().
		Str("port", rep.Port).
		Str("outcome", rep.Outcome.String()).
		Dur("elapsed", time.Since(start)).
		Msg("probe complete")

	return rep.ExitCode()
}

func listPorts() int {
	ports, err := serial.AvailablePorts()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return 1
	}
	if len(ports) == 0 {
		fmt.Println("No serial ports found")
		return 0
	}
	fmt.Println("Available serial ports:")
	for i, p := range ports {
		fmt.Printf("%d. %s\n", i+1, p)
	}
	return 0
}
