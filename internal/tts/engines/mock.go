package engines

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/dgnsrekt/voicebox/internal/audio"
	"github.com/dgnsrekt/voicebox/internal/tts"
)

// MockCall records one Synthesize invocation.
type MockCall struct {
	Text    string
	Variant tts.Variant
}

// MockEngine is an in-process model that answers every request with a short
// tone. It is used by tests and by the "mock" engine setting.
type MockEngine struct {
	mu sync.Mutex

	// Delay is applied to every load and synthesis.
	delay time.Duration
	// FailEvery makes every n-th synthesis fail; 0 never fails.
	failEvery int

	loadErr  error
	synthErr error
	voices   []string
	segments int

	sampleRate int
	loads      map[tts.Mode]int
	calls      []MockCall
}

// NewMockEngine creates a mock with the default voices.
func NewMockEngine() *MockEngine {
	return &MockEngine{
		voices:     append([]string(nil), DefaultVoices...),
		segments:   1,
		sampleRate: audio.DefaultSampleRate,
		loads:      make(map[tts.Mode]int),
	}
}

// SetDelay sets the simulated processing delay.
func (e *MockEngine) SetDelay(d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.delay = d
}

// SetFailureRate makes a fraction of syntheses fail, deterministically by
// call count. A rate of 0 disables failures.
func (e *MockEngine) SetFailureRate(r float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if r <= 0 {
		e.failEvery = 0
		return
	}
	e.failEvery = int(math.Max(1, math.Round(1/r)))
}

// SetLoadError makes Load fail with err; nil restores normal operation.
func (e *MockEngine) SetLoadError(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.loadErr = err
}

// SetSynthesisError makes every synthesis fail with err.
func (e *MockEngine) SetSynthesisError(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.synthErr = err
}

// SetVoices replaces the speaker list.
func (e *MockEngine) SetVoices(v []string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.voices = v
}

// SetSegments sets how many segments each synthesis returns.
func (e *MockEngine) SetSegments(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.segments = max(n, 0)
}

// Calls returns the recorded Synthesize calls.
func (e *MockEngine) Calls() []MockCall {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]MockCall(nil), e.calls...)
}

// Loads returns how many successful loads happened for mode.
func (e *MockEngine) Loads(mode tts.Mode) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loads[mode]
}

func (e *MockEngine) sleep(ctx context.Context) error {
	e.mu.Lock()
	d := e.delay
	e.mu.Unlock()
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Load returns the mock model for mode.
func (e *MockEngine) Load(ctx context.Context, mode tts.Mode) (tts.Model, error) {
	if err := e.sleep(ctx); err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.loadErr != nil {
		return nil, e.loadErr
	}
	e.loads[mode]++
	return &mockModel{engine: e, mode: mode}, nil
}

type mockModel struct {
	engine *MockEngine
	mode   tts.Mode
}

func (m *mockModel) Voices(context.Context) ([]string, error) {
	if m.mode != tts.ModeCustomVoice {
		return nil, nil
	}
	m.engine.mu.Lock()
	defer m.engine.mu.Unlock()
	return append([]string(nil), m.engine.voices...), nil
}

func (m *mockModel) Synthesize(ctx context.Context, text string, v tts.Variant) ([]audio.Buffer, error) {
	e := m.engine
	e.mu.Lock()
	e.calls = append(e.calls, MockCall{Text: text, Variant: v})
	n := len(e.calls)
	synthErr, failEvery, segments, rate := e.synthErr, e.failEvery, e.segments, e.sampleRate
	e.mu.Unlock()

	if err := e.sleep(ctx); err != nil {
		return nil, err
	}
	if synthErr != nil {
		return nil, synthErr
	}
	if failEvery > 0 && n%failEvery == 0 {
		return nil, errors.New("simulated synthesis failure")
	}

	// about 60ms of tone per character, split evenly across segments
	total := len([]rune(text)) * rate * 60 / 1000
	out := make([]audio.Buffer, 0, segments)
	for i := 0; i < segments; i++ {
		out = append(out, tone(total/segments, rate, 220*float64(i+1)))
	}
	return out, nil
}

func tone(n, rate int, freq float64) audio.Buffer {
	b := audio.Buffer{Samples: make([]float32, n), SampleRate: rate}
	for i := range b.Samples {
		b.Samples[i] = float32(0.3 * math.Sin(2*math.Pi*freq*float64(i)/float64(rate)))
	}
	return b
}
