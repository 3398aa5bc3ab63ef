// Package capture records reference samples from an input device.
package capture

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/voicebox/internal/audio"
	"github.com/dgnsrekt/voicebox/internal/device"
	"github.com/dgnsrekt/voicebox/internal/samples"
	"github.com/dgnsrekt/voicebox/internal/tts"
)

// Input opens capture streams.
type Input interface {
	OpenInput(cfg device.InputConfig, onChunk func([]float32)) (device.InputStream, error)
}

// Store persists finished recordings.
type Store interface {
	Save(buf audio.Buffer, transcript string) (samples.Saved, error)
}

// Config configures a Recorder.
type Config struct {
	// Device is the input device index, device.Default for the default.
	Device          int
	SampleRate      int
	FramesPerBuffer int
}

// Result describes a stopped recording.
type Result struct {
	// Empty is set when no audio arrived; nothing was written.
	Empty  bool
	Sample samples.Sample
	Frames int
	// TranscriptErr is set when the audio was saved but its transcript
	// was not.
	TranscriptErr error
}

// Recorder captures one session at a time into memory and saves it on Stop.
type Recorder struct {
	input  Input
	store  Store
	config Config
	now    func() time.Time

	mu        sync.Mutex
	stream    device.InputStream
	chunks    [][]float32
	frames    int
	level     float64
	startedAt time.Time
}

// New creates a recorder reading from input and saving to store.
func New(input Input, store Store, config Config) *Recorder {
	if config.SampleRate <= 0 {
		config.SampleRate = audio.DefaultSampleRate
	}
	return &Recorder{input: input, store: store, config: config, now: time.Now}
}

// Start opens the input stream and begins buffering audio.
func (r *Recorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stream != nil {
		return tts.DeviceError("start recording", tts.ErrAlreadyRecording)
	}
	r.chunks = nil
	r.frames = 0
	r.level = 0

	stream, err := r.input.OpenInput(device.InputConfig{
		Device:          r.config.Device,
		SampleRate:      r.config.SampleRate,
		FramesPerBuffer: r.config.FramesPerBuffer,
	}, r.onChunk)
	if err != nil {
		return tts.DeviceError("start recording", err)
	}
	r.stream = stream
	r.startedAt = r.now()
	log.Debug("recording started", "sample_rate", r.config.SampleRate, "device", r.config.Device)
	return nil
}

// onChunk runs on the audio thread.
func (r *Recorder) onChunk(in []float32) {
	chunk := make([]float32, len(in))
	copy(chunk, in)
	level := audio.RMS(chunk)

	r.mu.Lock()
	r.chunks = append(r.chunks, chunk)
	r.frames += len(chunk)
	r.level = level
	r.mu.Unlock()
}

// Stop closes the stream and saves what was captured with transcript as its
// reference text. A session without audio saves nothing and returns a
// Result with Empty set.
func (r *Recorder) Stop(transcript string) (Result, error) {
	r.mu.Lock()
	stream := r.stream
	if stream == nil {
		r.mu.Unlock()
		return Result{}, tts.ErrNotRecording
	}
	r.mu.Unlock()

	// Close outside the lock: it waits for the callback thread, which takes
	// the lock.
	closeErr := stream.Close()

	r.mu.Lock()
	r.stream = nil
	r.startedAt = time.Time{}
	chunks, frames := r.chunks, r.frames
	r.chunks, r.frames, r.level = nil, 0, 0
	r.mu.Unlock()

	if closeErr != nil {
		log.Warn("closing input stream", "error", closeErr)
	}
	log.Debug("recording stopped", "frames", frames, "chunks", len(chunks))

	if frames == 0 {
		return Result{Empty: true}, nil
	}

	buf := audio.Buffer{Samples: make([]float32, 0, frames), SampleRate: r.config.SampleRate}
	for _, c := range chunks {
		buf.Samples = append(buf.Samples, c...)
	}

	saved, err := r.store.Save(buf, transcript)
	if err != nil {
		return Result{}, tts.PersistenceError("save recording", err)
	}
	res := Result{Sample: saved.Sample, Frames: frames}
	if saved.TranscriptErr != nil {
		res.TranscriptErr = tts.PersistenceError("save transcript", saved.TranscriptErr)
		log.Warn("sample saved without transcript", "sample", saved.Name, "error", saved.TranscriptErr)
	}
	return res, nil
}

// Recording reports whether a session is open.
func (r *Recorder) Recording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stream != nil
}

// Elapsed returns the length of the current session, 0 when idle.
func (r *Recorder) Elapsed() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stream == nil {
		return 0
	}
	return r.now().Sub(r.startedAt)
}

// Captured returns the duration of audio buffered so far.
func (r *Recorder) Captured() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return time.Duration(r.frames) * time.Second / time.Duration(r.config.SampleRate)
}

// Level returns the RMS level of the latest chunk.
func (r *Recorder) Level() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.level
}
