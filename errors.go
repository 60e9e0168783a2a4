package serial

import (
	"errors"
	"fmt"

	gobug "go.bug.st/serial"
)

var (
	ErrClosed      = errors.New("serial: port closed")
	ErrInvalidUTF8 = errors.New("invalid utf-8")
)

// Kind classifies a failure by how the probe recovers from it.
type Kind int

const (
	// KindUnclassified is anything not covered below. Reported, never retried.
	KindUnclassified Kind = iota
	// KindPort means the device could not be opened. Fatal for a run.
	KindPort
	// KindRead means the line read failed. Treated as no data.
	KindRead
	// KindDecode means the response is not UTF-8. Raw bytes are shown instead.
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindPort:
		return "port"
	case KindRead:
		return "read"
	case KindDecode:
		return "decode"
	default:
		return "unclassified"
	}
}

// Error is the error type returned by Connection and DecodeLine.
type Error struct {
	Kind Kind
	Op   string
	Port string
	Err  error
}

func (e *Error) Error() string {
	if e.Port == "" {
		return fmt.Sprintf("serial: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("serial: %s %s: %v", e.Op, e.Port, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, op, port string, err error) *Error {
	return &Error{Kind: kind, Op: op, Port: port, Err: err}
}

// KindOf reports the Kind of err. Errors not produced by this package are
// KindUnclassified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnclassified
}

// PortErrorCode extracts the driver error code from an open failure.
func PortErrorCode(err error) (gobug.PortErrorCode, bool) {
	var pe *gobug.PortError
	if errors.As(err, &pe) {
		return pe.Code(), true
	}
	return 0, false
}
