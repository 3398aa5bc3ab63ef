// Package device enumerates audio devices and opens capture and playback
// streams on them.
package device

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgnsrekt/voicebox/internal/audio"
)

// Default selects the host's default device wherever an index is expected.
const Default = -1

var (
	// ErrNoDevice is returned when no suitable device exists.
	ErrNoDevice = errors.New("no audio device available")
	// ErrUnknownDevice is returned for an index the host does not know.
	ErrUnknownDevice = errors.New("unknown audio device")
)

// Device is an output device as listed to the user.
type Device struct {
	Index      int
	Name       string
	SampleRate float64
	Default    bool
}

func (d Device) String() string {
	return fmt.Sprintf("%d: %s", d.Index, d.Name)
}

// InputConfig describes a capture stream.
type InputConfig struct {
	Device          int
	SampleRate      int
	FramesPerBuffer int
}

// InputStream is an open capture stream.
type InputStream interface {
	// Close stops the stream and releases it. After Close returns no more
	// callbacks are delivered.
	Close() error
}

// Host is the device collaborator: enumeration, capture and blocking
// playback on an indexed output device.
type Host interface {
	OutputDevices() ([]Device, error)
	DefaultOutput() (Device, error)
	OpenInput(cfg InputConfig, onChunk func([]float32)) (InputStream, error)
	Play(ctx context.Context, buf audio.Buffer, device int) error
}

// Find returns the output device with the given index.
func Find(h Host, index int) (Device, error) {
	if index == Default {
		return h.DefaultOutput()
	}
	devices, err := h.OutputDevices()
	if err != nil {
		return Device{}, err
	}
	for _, d := range devices {
		if d.Index == index {
			return d, nil
		}
	}
	return Device{}, fmt.Errorf("%w: %d", ErrUnknownDevice, index)
}
