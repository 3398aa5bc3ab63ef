//go:build nocgo

package device

import (
	"context"
	"errors"

	"github.com/dgnsrekt/voicebox/internal/audio"
)

// ErrNoAudioSupport is returned by every operation in builds without cgo.
var ErrNoAudioSupport = errors.New("audio devices not available in nocgo build")

// PortAudio is a stub for builds without cgo audio.
type PortAudio struct{}

// NewPortAudio always fails in nocgo builds.
func NewPortAudio() (*PortAudio, error) { return nil, ErrNoAudioSupport }

func (*PortAudio) Close() error { return nil }

func (*PortAudio) OutputDevices() ([]Device, error) { return nil, ErrNoAudioSupport }

func (*PortAudio) DefaultOutput() (Device, error) { return Device{}, ErrNoAudioSupport }

func (*PortAudio) OpenInput(InputConfig, func([]float32)) (InputStream, error) {
	return nil, ErrNoAudioSupport
}

func (*PortAudio) Play(context.Context, audio.Buffer, int) error { return ErrNoAudioSupport }
