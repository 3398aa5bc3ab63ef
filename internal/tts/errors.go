package tts

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors. Each is wrapped in an *Error of the matching Kind.
var (
	// ErrEmptyText indicates the text to speak is blank.
	ErrEmptyText = errors.New("text is empty")

	// ErrMissingSample indicates voice clone without a recorded sample.
	ErrMissingSample = errors.New("reference sample is missing")

	// ErrMissingTranscript indicates voice clone without reference text.
	ErrMissingTranscript = errors.New("reference text is empty")

	// ErrMissingSpeaker indicates custom voice without a speaker.
	ErrMissingSpeaker = errors.New("no speaker selected")

	// ErrBusy indicates a generation is already in flight.
	ErrBusy = errors.New("generation already in progress")

	// ErrNotRecording indicates a stop without a running capture.
	ErrNotRecording = errors.New("not recording")

	// ErrAlreadyRecording indicates a start while capturing.
	ErrAlreadyRecording = errors.New("already recording")

	// ErrNoAudio indicates the model returned no audio.
	ErrNoAudio = errors.New("model returned no audio")

	// ErrClosed indicates use of a closed controller.
	ErrClosed = errors.New("controller is closed")
)

// Kind classifies errors by the way they are reported to the user.
type Kind int

const (
	// KindUnknown is any error not produced by this package.
	KindUnknown Kind = iota
	// KindValidation is a rejected request; nothing was started.
	KindValidation
	// KindDevice is an audio device failure.
	KindDevice
	// KindPersistence is a sample write failure.
	KindPersistence
	// KindModel is a model load or synthesis failure.
	KindModel
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindDevice:
		return "device"
	case KindPersistence:
		return "persistence"
	case KindModel:
		return "model"
	default:
		return "unknown"
	}
}

// Error is an error with a Kind and the operation that failed.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	switch {
	case e.Msg != "" && e.Err != nil:
		fmt.Fprintf(&b, "%s: %v", e.Msg, e.Err)
	case e.Msg != "":
		b.WriteString(e.Msg)
	case e.Err != nil:
		b.WriteString(e.Err.Error())
	default:
		b.WriteString(e.Kind.String() + " error")
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// ValidationError wraps err as a rejected request.
func ValidationError(op string, err error) *Error {
	return &Error{Kind: KindValidation, Op: op, Err: err}
}

// DeviceError wraps err as an audio device failure.
func DeviceError(op string, err error) *Error {
	return &Error{Kind: KindDevice, Op: op, Err: err}
}

// PersistenceError wraps err as a sample write failure.
func PersistenceError(op string, err error) *Error {
	return &Error{Kind: KindPersistence, Op: op, Err: err}
}

// ModelError wraps err as a model failure.
func ModelError(op string, err error) *Error {
	return &Error{Kind: KindModel, Op: op, Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Status converts err into a short line for the status bar.
func Status(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyText):
		return "Enter some text"
	case errors.Is(err, ErrMissingSample):
		return "Record a sample first"
	case errors.Is(err, ErrMissingTranscript):
		return "Enter reference text"
	case errors.Is(err, ErrMissingSpeaker):
		return "Select a voice"
	case errors.Is(err, ErrBusy):
		return "Still generating"
	case errors.Is(err, ErrAlreadyRecording):
		return "Already recording"
	case errors.Is(err, ErrNotRecording):
		return "Not recording"
	}

	msg := err.Error()
	var e *Error
	if errors.As(err, &e) && e.Err != nil {
		// the operation prefix is noise in a status line
		msg = e.Err.Error()
		if e.Msg != "" {
			msg = e.Msg + ": " + msg
		}
	}
	return "Error: " + msg
}
