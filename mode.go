package serial

import (
	"fmt"
	"strings"

	gobug "go.bug.st/serial"
)

type BaudRate int

func (b BaudRate) Int() int {
	return int(b)
}

const (
	Baud9600   BaudRate = 9600
	Baud57600  BaudRate = 57600
	Baud115200 BaudRate = 115200
)

type DataBits int

func (d DataBits) Int() int {
	return int(d)
}

type Parity gobug.Parity

func (pa Parity) Get() gobug.Parity {
	return gobug.Parity(pa)
}

const (
	// ParityNone represents no parity bit
	ParityNone = Parity(gobug.NoParity)
	// ParityOdd represents odd parity bit
	ParityOdd = Parity(gobug.OddParity)
	// ParityEven represents even parity bit
	ParityEven = Parity(gobug.EvenParity)
	// ParityMark represents mark parity bit (always 1)
	ParityMark = Parity(gobug.MarkParity)
	// ParitySpace represents space parity bit (always 0)
	ParitySpace = Parity(gobug.SpaceParity)
)

// ParseParity maps the usual single letter notation (N, O, E, M, S) to a Parity.
func ParseParity(s string) (Parity, error) {
	switch strings.ToUpper(s) {
	case "N", "":
		return ParityNone, nil
	case "O":
		return ParityOdd, nil
	case "E":
		return ParityEven, nil
	case "M":
		return ParityMark, nil
	case "S":
		return ParitySpace, nil
	}
	return ParityNone, fmt.Errorf("unsupported parity %q (use N,O,E,M,S)", s)
}

type StopBits gobug.StopBits

func (sb StopBits) Get() gobug.StopBits {
	return gobug.StopBits(sb)
}

const (
	// StopBits1 represents 1 stop bit
	StopBits1 = StopBits(gobug.OneStopBit)
	// StopBits1Half represents 1.5 stop bits
	StopBits1Half = StopBits(gobug.OnePointFiveStopBits)
	// StopBits2 represents 2 stop bits
	StopBits2 = StopBits(gobug.TwoStopBits)
)

// ParseStopBits accepts 1 or 2, matching what most USB UART bridges support.
func ParseStopBits(n int) (StopBits, error) {
	switch n {
	case 1:
		return StopBits1, nil
	case 2:
		return StopBits2, nil
	}
	return StopBits1, fmt.Errorf("unsupported stopbits %d (use 1 or 2)", n)
}

// mode builds the driver mode for cfg.
func (c Config) mode() *gobug.Mode {
	return &gobug.Mode{
		BaudRate: BaudRate(c.BaudRate).Int(),
		DataBits: DataBits(c.DataBits).Int(),
		Parity:   c.Parity.Get(),
		StopBits: c.StopBits.Get(),
	}
}
