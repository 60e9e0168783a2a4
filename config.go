package serial

import (
	"runtime"
	"time"
)

const (
	// DefaultBaudRate is configured on the link but has no effect on USB CDC
	// devices, which run at bus speed regardless.
	DefaultBaudRate = 115200

	DefaultDataBits    = 8
	DefaultReadTimeout = time.Second

	// DefaultMessage is the greeting written to the device. It must end in '\n'.
	DefaultMessage = "Hello STM32 this is Jonno26 yesshddddddddddddddd yayayayaya ahahahahanig\n"
)

// Config holds configuration for opening a serial port.
type Config struct {
	// PortName is the path to the serial device, e.g. /dev/ttyACM0 or COM3.
	PortName string `validate:"required,serialport"`

	BaudRate int      `validate:"oneof=1200 2400 4800 9600 19200 38400 57600 115200 230400 460800 921600"`
	DataBits int      `validate:"min=5,max=8"`
	Parity   Parity   `validate:"min=0,max=4"`
	StopBits StopBits `validate:"min=0,max=2"`

	// ReadTimeout bounds a single ReceiveLine call.
	ReadTimeout time.Duration `validate:"gt=0"`
}

// DefaultPortName returns the port the probe talks to when none is given.
func DefaultPortName() string {
	if runtime.GOOS == "windows" {
		return "COM3"
	}
	return "/dev/ttyACM0"
}

// DefaultConfig returns the hardcoded probe configuration: 8N1 at
// DefaultBaudRate on DefaultPortName with a one second read timeout.
func DefaultConfig() Config {
	return Config{
		PortName:    DefaultPortName(),
		BaudRate:    DefaultBaudRate,
		DataBits:    DefaultDataBits,
		Parity:      ParityNone,
		StopBits:    StopBits1,
		ReadTimeout: DefaultReadTimeout,
	}
}

// withDefaults fills zero-valued framing fields. Parity and stop bits zero
// values already mean none and one.
func (c Config) withDefaults() Config {
	if c.DataBits == 0 {
		c.DataBits = DefaultDataBits
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = DefaultReadTimeout
	}
	return c
}
