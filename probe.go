package serial

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Outcome tags how a probe run ended.
type Outcome int

const (
	// OutcomeText means a UTF-8 line came back and was printed.
	OutcomeText Outcome = iota
	// OutcomeRaw means bytes came back that were not UTF-8.
	OutcomeRaw
	// OutcomeNoResponse means nothing arrived, or the read failed.
	OutcomeNoResponse
	// OutcomePortError means the port could not be opened.
	OutcomePortError
	// OutcomeFailed means an unclassified error stopped the run.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeText:
		return "text"
	case OutcomeRaw:
		return "raw"
	case OutcomeNoResponse:
		return "no-response"
	case OutcomePortError:
		return "port-error"
	default:
		return "failed"
	}
}

// Report is the result of one probe run.
type Report struct {
	Outcome  Outcome
	Port     string
	Sent     int
	Response []byte
	Text     string
	Err      error
	Metrics  MetricsSnapshot
}

// ExitCode maps the outcome to a process exit status. A silent device is not
// a failure.
func (r Report) ExitCode() int {
	switch r.Outcome {
	case OutcomePortError, OutcomeFailed:
		return 1
	}
	return 0
}

// Payload returns msg as wire bytes, appending the '\n' terminator if missing.
func Payload(msg string) []byte {
	if len(msg) == 0 || msg[len(msg)-1] != '\n' {
		msg += "\n"
	}
	return []byte(msg)
}

// Probe sends one payload to a device and reports the single line it answers
// with. Status lines go to Out; structured events go to Logger.
type Probe struct {
	Config  Config
	Payload []byte
	Out     io.Writer
	Logger  zerolog.Logger

	open func(Config, ...Option) (*Connection, error)
}

// NewProbe returns a Probe for cfg that writes status to stdout and discards logs.
func NewProbe(cfg Config, payload []byte) *Probe {
	return &Probe{
		Config:  cfg,
		Payload: payload,
		Out:     os.Stdout,
		Logger:  zerolog.Nop(),
		open:    Open,
	}
}

func (p *Probe) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.Out, format+"\n", args...)
}

// Run performs open, send, receive, report and close, in that order. Only an
// open failure skips the remaining steps; every later failure is reported and
// the connection is still closed.
func (p *Probe) Run(ctx context.Context) (rep Report) {
	if p.Out == nil {
		p.Out = os.Stdout
	}
	if p.open == nil {
		p.open = Open
	}

	metrics := &Metrics{}
	rep.Port = p.Config.PortName

	defer func() {
		if r := recover(); r != nil {
			err := newError(KindUnclassified, "probe", p.Config.PortName, fmt.Errorf("panic: %v", r))
			p.printf("Error: %v", err)
			rep.Outcome = OutcomeFailed
			rep.Err = err
		}
		rep.Metrics = metrics.Snapshot()
		p.Logger.Debug().
			Str("outcome", rep.Outcome.String()).
			Object("metrics", rep.Metrics).
			Msg("probe finished")
	}()

	conn, err := p.open(p.Config, WithLogger(p.Logger), WithMetrics(metrics))
	if err != nil {
		if KindOf(err) == KindPort {
			p.printf("Serial Port Error: %v", err)
			rep.Outcome = OutcomePortError
		} else {
			p.printf("Error: %v", err)
			rep.Outcome = OutcomeFailed
		}
		rep.Err = err
		return rep
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			p.Logger.Warn().Err(cerr).Msg("closing port")
		}
	}()

	p.printf("Port %s opened successfully at %d baud", conn.PortName(), conn.BaudRate())

	if text, derr := DecodeLine(p.Payload); derr == nil {
		p.printf("Sending: %s", text)
	} else {
		p.printf("Sending: %s", FormatRaw(p.Payload))
	}
	if err = conn.Send(ctx, p.Payload); err != nil {
		p.printf("Error: %v", err)
		rep.Outcome = OutcomeFailed
		rep.Err = err
		return rep
	}
	rep.Sent = len(p.Payload)

	data, err := conn.ReceiveLine(ctx)
	switch {
	case err != nil:
		p.printf("Error reading: %v", err)
		p.Logger.Warn().Err(err).Msg("read failed, treating as no data")
		rep.Err = err
		data = nil
	case len(data) > 0:
		p.printf("Data received on first attempt: %d bytes", len(data))
	default:
		p.printf("Timeout waiting for response")
	}

	p.report(&rep, data, metrics)
	return rep
}

// report decodes data and prints it. Decode failures fall back to raw bytes.
func (p *Probe) report(rep *Report, data []byte, m *Metrics) {
	rep.Response = data
	if len(data) == 0 {
		p.printf("No response received from device")
		rep.Outcome = OutcomeNoResponse
		return
	}

	text, err := DecodeLine(data)
	if err != nil {
		m.DecodeFailures.Inc()
		p.Logger.Debug().Err(err).Msg("response is not utf-8")
		p.printf("Received (raw bytes): %s", FormatRaw(data))
		rep.Outcome = OutcomeRaw
		return
	}
	p.printf("Received: %s", text)
	rep.Text = text
	rep.Outcome = OutcomeText
}
