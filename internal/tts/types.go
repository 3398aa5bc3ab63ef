package tts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dgnsrekt/voicebox/internal/audio"
)

// Mode selects one of the three model variants.
type Mode int

const (
	// ModeCustomVoice speaks with a built-in speaker.
	ModeCustomVoice Mode = iota
	// ModeVoiceDesign speaks with a voice described by an instruction.
	ModeVoiceDesign
	// ModeVoiceClone speaks with the voice of a reference sample.
	ModeVoiceClone
)

// Modes lists every mode in display order.
var Modes = []Mode{ModeCustomVoice, ModeVoiceDesign, ModeVoiceClone}

func (m Mode) String() string {
	switch m {
	case ModeCustomVoice:
		return "CustomVoice"
	case ModeVoiceDesign:
		return "VoiceDesign"
	case ModeVoiceClone:
		return "VoiceClone"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode accepts a mode name in any case, with or without dashes or
// underscores ("VoiceClone", "voice-clone", "voice_clone", "clone").
func ParseMode(s string) (Mode, error) {
	norm := strings.NewReplacer("-", "", "_", "", " ", "").Replace(strings.ToLower(strings.TrimSpace(s)))
	switch norm {
	case "customvoice", "custom":
		return ModeCustomVoice, nil
	case "voicedesign", "design":
		return ModeVoiceDesign, nil
	case "voiceclone", "clone":
		return ModeVoiceClone, nil
	}
	return 0, fmt.Errorf("unknown mode %q", s)
}

// Variant carries the mode-specific inputs of a request. It is one of
// CustomVoice, VoiceDesign or VoiceClone.
type Variant interface {
	Mode() Mode
	variant()
}

// CustomVoice speaks as a named built-in speaker with an optional style.
type CustomVoice struct {
	Speaker  string
	Instruct string
}

// VoiceDesign speaks in a voice described by Instruct.
type VoiceDesign struct {
	Instruct string
}

// VoiceClone speaks in the voice of the reference wave file RefAudio, whose
// spoken words are RefText.
type VoiceClone struct {
	RefAudio string
	RefText  string
}

func (CustomVoice) Mode() Mode { return ModeCustomVoice }
func (VoiceDesign) Mode() Mode { return ModeVoiceDesign }
func (VoiceClone) Mode() Mode  { return ModeVoiceClone }

func (CustomVoice) variant() {}
func (VoiceDesign) variant() {}
func (VoiceClone) variant()  {}

// Request is one generation job. Device is an output device index, or -1
// for the default output.
type Request struct {
	Text    string
	Variant Variant
	Device  int
}

// Model is a loaded model for one mode.
type Model interface {
	// Voices lists built-in speakers. Only custom voice models have any.
	Voices(ctx context.Context) ([]string, error)
	// Synthesize returns the speech for text as one or more segments.
	Synthesize(ctx context.Context, text string, v Variant) ([]audio.Buffer, error)
}

// Loader loads the model for a mode. Loading may take a long time.
type Loader interface {
	Load(ctx context.Context, mode Mode) (Model, error)
}

// Player plays a buffer on an output device and blocks until it is done.
type Player interface {
	Play(ctx context.Context, buf audio.Buffer, device int) error
}

// Event is a notification from the controller.
type Event interface {
	event()
}

// StateChanged reports a request entering a new state.
type StateChanged struct {
	ID    string
	State State
}

// Done is the terminal event of a successful request.
type Done struct {
	ID       string
	Duration time.Duration
	Cached   bool
}

// Failed is the terminal event of a failed request. Message is suitable for
// the status bar.
type Failed struct {
	ID      string
	Err     error
	Message string
}

// ModelLoading reports that a preload started.
type ModelLoading struct {
	Mode Mode
}

// ModelReady reports a loaded model. Voices is empty except for custom voice.
type ModelReady struct {
	Mode   Mode
	Voices []string
}

// ModelFailed reports a failed preload.
type ModelFailed struct {
	Mode    Mode
	Err     error
	Message string
}

func (StateChanged) event() {}
func (Done) event()         {}
func (Failed) event()       {}
func (ModelLoading) event() {}
func (ModelReady) event()   {}
func (ModelFailed) event()  {}
