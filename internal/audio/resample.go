package audio

import (
	"fmt"
	"math"

	resampling "github.com/tphakala/go-audio-resampling"
)

// Resample converts b to the target sample rate. A buffer already at the
// target rate is returned as is.
func Resample(b Buffer, rate int) (Buffer, error) {
	if rate <= 0 || b.SampleRate <= 0 {
		return Buffer{}, fmt.Errorf("invalid sample rate conversion %d -> %d", b.SampleRate, rate)
	}
	if b.SampleRate == rate || b.IsEmpty() {
		return Buffer{Samples: b.Samples, SampleRate: rate}, nil
	}

	r, err := resampling.New(&resampling.Config{
		InputRate:  float64(b.SampleRate),
		OutputRate: float64(rate),
		Channels:   Channels,
		Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
	})
	if err != nil {
		return Buffer{}, fmt.Errorf("failed to create resampler: %w", err)
	}

	input := make([]float64, len(b.Samples))
	for i, s := range b.Samples {
		input[i] = float64(s)
	}
	output, err := r.Process(input)
	if err != nil {
		return Buffer{}, fmt.Errorf("resample error: %w", err)
	}
	tail, err := r.Flush()
	if err != nil {
		return Buffer{}, fmt.Errorf("resample flush error: %w", err)
	}
	output = append(output, tail...)

	// the output covers the same duration as the input
	want := int(math.Round(float64(len(input)) * float64(rate) / float64(b.SampleRate)))
	if len(output) > want {
		output = output[:want]
	}
	for len(output) < want {
		output = append(output, 0)
	}

	out := Buffer{Samples: make([]float32, len(output)), SampleRate: rate}
	for i, s := range output {
		switch {
		case s > 1:
			s = 1
		case s < -1:
			s = -1
		}
		out.Samples[i] = float32(s)
	}
	return out, nil
}
