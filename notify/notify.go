// Package notify is MusicDSL's diagnostic stream (spec.md §6/§7): every
// error, warning or informational line the interpreter surfaces to a
// human passes through here, in the "<kind>: <message>" shape the
// teacher's own dsl package uses (notify.Print(notify.Error(err))).
// Debug-level tracing is backed by zerolog rather than the teacher's
// plain log.Printf, since zerolog is already this repo's structured
// logging dependency (see SPEC_FULL.md §A.1).
package notify

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Kind classifies a Message the way the teacher's notify package does.
type Kind int

const (
	KindInfo Kind = iota
	KindWarning
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindInfo:
		return "INFO"
	case KindWarning:
		return "WARNING"
	case KindError:
		return "ERROR"
	default:
		return "?"
	}
}

// Message is one diagnostic line.
type Message struct {
	Kind Kind
	Text string
}

func (m Message) String() string {
	return fmt.Sprintf("%s: %s", m.Kind, m.Text)
}

// Output is the diagnostic stream Print writes to; tests may redirect it.
var Output io.Writer = os.Stderr

var trace = zerolog.New(os.Stderr).With().Timestamp().Logger()

// SetDebug toggles whether Debugf lines are emitted, mirroring the
// teacher's verbose-flag-gated notify.Debugf calls in control/listen.go
// and midi/pedal.go.
func SetDebug(on bool) {
	if on {
		trace = trace.Level(zerolog.DebugLevel)
	} else {
		trace = trace.Level(zerolog.Disabled)
	}
}

// Print writes m to the diagnostic stream, one line.
func Print(m Message) {
	fmt.Fprintln(Output, m.String())
}

func Info(text string) Message    { return Message{Kind: KindInfo, Text: text} }
func Warning(text string) Message { return Message{Kind: KindWarning, Text: text} }

// Error wraps err's message as an ERROR-kind diagnostic.
func Error(err error) Message { return Message{Kind: KindError, Text: err.Error()} }

func Infof(format string, a ...interface{}) Message {
	return Info(fmt.Sprintf(format, a...))
}

func Warningf(format string, a ...interface{}) Message {
	return Warning(fmt.Sprintf(format, a...))
}

func Errorf(format string, a ...interface{}) Message {
	return Message{Kind: KindError, Text: fmt.Sprintf(format, a...)}
}

// Debugf traces internal decisions (transport connect/disconnect,
// dispatch choices) behind the debug level gate set by SetDebug.
func Debugf(format string, a ...interface{}) {
	trace.Debug().Msgf(format, a...)
}

// Panic prints err as an ERROR diagnostic and returns nil, matching the
// teacher's `return notify.Panic(err)` idiom for builtins whose Func
// field returns interface{} and must fail soft rather than crash the
// evaluator.
func Panic(err error) interface{} {
	Print(Error(err))
	return nil
}
