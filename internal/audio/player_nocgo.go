//go:build nocgo

package audio

import (
	"context"
	"errors"
)

// ErrNoAudioSupport is returned by players in builds without cgo audio.
var ErrNoAudioSupport = errors.New("audio playback not available in nocgo build")

// Player is a stub for builds without cgo audio.
type Player struct{}

// NewPlayer always fails in nocgo builds.
func NewPlayer(int) (*Player, error) {
	return nil, ErrNoAudioSupport
}

// Play always fails in nocgo builds.
func (*Player) Play(context.Context, Buffer, int) error {
	return ErrNoAudioSupport
}
