package audio

import (
	"errors"
	"fmt"
	"math"
	"time"
)

const (
	// DefaultSampleRate is the capture and synthesis rate in Hz.
	DefaultSampleRate = 24000
	// Channels is the channel count of every buffer (mono).
	Channels = 1
	// BitDepth is the bit depth of persisted samples.
	BitDepth = 16
)

// ErrEmptyBuffer is returned when an operation needs at least one sample.
var ErrEmptyBuffer = errors.New("audio buffer is empty")

// Buffer is an ordered run of mono float samples in [-1, 1] at SampleRate.
type Buffer struct {
	Samples    []float32
	SampleRate int
}

// Len returns the number of samples.
func (b Buffer) Len() int {
	return len(b.Samples)
}

// IsEmpty reports whether the buffer holds no samples.
func (b Buffer) IsEmpty() bool {
	return len(b.Samples) == 0
}

// Duration returns the playback length of the buffer.
func (b Buffer) Duration() time.Duration {
	if b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(len(b.Samples)) * time.Second / time.Duration(b.SampleRate)
}

// Concat joins buffers in order. The first non-empty buffer decides the
// sample rate; any later buffer at a different rate is resampled to it.
func Concat(bufs ...Buffer) (Buffer, error) {
	rate := 0
	total := 0
	for _, b := range bufs {
		if b.IsEmpty() {
			continue
		}
		if b.SampleRate <= 0 {
			return Buffer{}, fmt.Errorf("invalid sample rate %d", b.SampleRate)
		}
		if rate == 0 {
			rate = b.SampleRate
		}
		total += b.Len()
	}
	if rate == 0 {
		return Buffer{}, ErrEmptyBuffer
	}

	out := Buffer{Samples: make([]float32, 0, total), SampleRate: rate}
	for _, b := range bufs {
		if b.IsEmpty() {
			continue
		}
		if b.SampleRate != rate {
			rs, err := Resample(b, rate)
			if err != nil {
				return Buffer{}, fmt.Errorf("resample %d Hz segment: %w", b.SampleRate, err)
			}
			b = rs
		}
		out.Samples = append(out.Samples, b.Samples...)
	}
	return out, nil
}

// ToPCM16 scales samples by 32767, rounds and clamps them to int16.
func (b Buffer) ToPCM16() []int16 {
	out := make([]int16, len(b.Samples))
	for i, s := range b.Samples {
		v := math.Round(float64(s) * math.MaxInt16)
		switch {
		case v > math.MaxInt16:
			v = math.MaxInt16
		case v < math.MinInt16:
			v = math.MinInt16
		}
		out[i] = int16(v)
	}
	return out
}

// FromPCM16 converts int16 samples back into a float buffer.
func FromPCM16(pcm []int16, sampleRate int) Buffer {
	out := Buffer{Samples: make([]float32, len(pcm)), SampleRate: sampleRate}
	for i, s := range pcm {
		out.Samples[i] = float32(s) / math.MaxInt16
	}
	return out
}

// RMS returns the root mean square level of the samples, 0 when empty.
func RMS(samples []float32) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += float64(s) * float64(s)
	}
	return math.Sqrt(sum / float64(len(samples)))
}
