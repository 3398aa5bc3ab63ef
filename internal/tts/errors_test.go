package tts

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorString(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"op and cause", ModelError("synthesize", errors.New("boom")), "synthesize: boom"},
		{"message and cause", &Error{Kind: KindDevice, Msg: "open stream", Err: errors.New("busy")}, "open stream: busy"},
		{"message only", &Error{Kind: KindPersistence, Op: "save", Msg: "disk full"}, "save: disk full"},
		{"bare", &Error{Kind: KindValidation}, "validation error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("record: %w", PersistenceError("write", errors.New("denied")))
	if KindOf(wrapped) != KindPersistence {
		t.Errorf("KindOf(wrapped) = %v", KindOf(wrapped))
	}
	if KindOf(errors.New("plain")) != KindUnknown {
		t.Error("plain error has a kind")
	}
	if !errors.Is(ValidationError("validate", ErrEmptyText), ErrEmptyText) {
		t.Error("validation error does not unwrap to its sentinel")
	}
}

func TestStatus(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{ValidationError("validate", ErrMissingSample), "Record a sample first"},
		{ValidationError("validate", ErrMissingTranscript), "Enter reference text"},
		{ValidationError("validate", ErrEmptyText), "Enter some text"},
		{ErrBusy, "Still generating"},
		{DeviceError("start", ErrAlreadyRecording), "Already recording"},
		{ModelError("load VoiceClone", errors.New("connection refused")), "Error: connection refused"},
		{&Error{Kind: KindDevice, Msg: "open stream", Err: errors.New("busy")}, "Error: open stream: busy"},
		{errors.New("other"), "Error: other"},
	}

	for _, tt := range tests {
		if got := Status(tt.err); got != tt.want {
			t.Errorf("Status(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
