package tts

import (
	"errors"
	"os"
	"strings"
)

// Normalize returns req with text, speaker, instruction and reference
// transcript trimmed.
func Normalize(req Request) Request {
	req.Text = strings.TrimSpace(req.Text)
	switch v := req.Variant.(type) {
	case CustomVoice:
		v.Speaker = strings.TrimSpace(v.Speaker)
		v.Instruct = strings.TrimSpace(v.Instruct)
		req.Variant = v
	case VoiceDesign:
		v.Instruct = strings.TrimSpace(v.Instruct)
		req.Variant = v
	case VoiceClone:
		v.RefText = strings.TrimSpace(v.RefText)
		req.Variant = v
	}
	return req
}

// Validate checks a normalized request. It touches the filesystem only to
// confirm a clone reference exists.
func Validate(req Request) error {
	if req.Text == "" {
		return ValidationError("validate", ErrEmptyText)
	}
	switch v := req.Variant.(type) {
	case CustomVoice:
		if v.Speaker == "" {
			return ValidationError("validate", ErrMissingSpeaker)
		}
	case VoiceDesign:
	case VoiceClone:
		if v.RefAudio == "" {
			return ValidationError("validate", ErrMissingSample)
		}
		st, err := os.Stat(v.RefAudio)
		if err != nil || !st.Mode().IsRegular() {
			return ValidationError("validate", ErrMissingSample)
		}
		if v.RefText == "" {
			return ValidationError("validate", ErrMissingTranscript)
		}
	default:
		return ValidationError("validate", errors.New("no mode selected"))
	}
	return nil
}
