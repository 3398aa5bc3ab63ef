//go:build !nocgo

package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"runtime"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ebitengine/oto/v3"
)

const (
	contextReadyTimeout = 5 * time.Second
	drainPollInterval   = 10 * time.Millisecond
)

// oto permits a single context per process.
var (
	otoOnce    sync.Once
	otoContext *oto.Context
	otoRate    int
	otoErr     error
)

// Player plays buffers on the system default output device.
type Player struct {
	mu sync.Mutex
}

// NewPlayer initializes the shared audio context at sampleRate. Later calls
// reuse the first context regardless of rate; buffers are resampled to it.
func NewPlayer(sampleRate int) (*Player, error) {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	otoOnce.Do(func() {
		otoContext, otoErr = newOtoContext(sampleRate)
		otoRate = sampleRate
	})
	if otoErr != nil {
		return nil, otoErr
	}
	return &Player{}, nil
}

func newOtoContext(sampleRate int) (*oto.Context, error) {
	options := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: Channels,
		Format:       oto.FormatFloat32LE,
	}
	switch runtime.GOOS {
	case "darwin":
		options.BufferSize = 100 * time.Millisecond
	case "windows":
		options.BufferSize = 80 * time.Millisecond
	default:
		options.BufferSize = 50 * time.Millisecond
	}

	log.Debug("initializing audio context",
		"sample_rate", options.SampleRate,
		"buffer_size", options.BufferSize)

	c, ready, err := oto.NewContext(options)
	if err != nil {
		return nil, fmt.Errorf("failed to create audio context: %w", err)
	}
	select {
	case <-ready:
	case <-time.After(contextReadyTimeout):
		return nil, errors.New("audio context initialization timeout")
	}
	return c, nil
}

// Play blocks until buf has been played or ctx is done. Only the default
// device is reachable through this backend; a non-negative device index is
// logged and ignored.
func (p *Player) Play(ctx context.Context, buf Buffer, device int) error {
	if buf.IsEmpty() {
		return ErrEmptyBuffer
	}
	if device >= 0 {
		log.Warn("device selection unsupported by oto backend, using default output", "device", device)
	}

	out, err := Resample(buf, otoRate)
	if err != nil {
		return err
	}

	// One stream at a time.
	p.mu.Lock()
	defer p.mu.Unlock()

	data := float32LE(out.Samples)
	player := otoContext.NewPlayer(bytes.NewReader(data))
	defer player.Close() //nolint:errcheck
	player.Play()

	ticker := time.NewTicker(drainPollInterval)
	defer ticker.Stop()
	for player.IsPlaying() {
		select {
		case <-ctx.Done():
			player.Pause()
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return player.Err()
}

func float32LE(samples []float32) []byte {
	data := make([]byte, len(samples)*4)
	for i, s := range samples {
		binary.LittleEndian.PutUint32(data[i*4:], math.Float32bits(s))
	}
	return data
}
