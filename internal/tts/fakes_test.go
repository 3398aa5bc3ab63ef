package tts

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgnsrekt/voicebox/internal/audio"
)

type synthCall struct {
	text    string
	variant Variant
}

type fakeModel struct {
	mu       sync.Mutex
	calls    []synthCall
	segments []audio.Buffer
	err      error
	panicMsg string
	voices   []string
}

func (m *fakeModel) Voices(context.Context) ([]string, error) {
	return m.voices, nil
}

func (m *fakeModel) Synthesize(_ context.Context, text string, v Variant) ([]audio.Buffer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, synthCall{text, v})
	if m.panicMsg != "" {
		panic(m.panicMsg)
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.segments, nil
}

func (m *fakeModel) Calls() []synthCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]synthCall(nil), m.calls...)
}

type fakeLoader struct {
	model *fakeModel
	err   error
	delay time.Duration
	loads atomic.Int32
}

func (l *fakeLoader) Load(ctx context.Context, mode Mode) (Model, error) {
	l.loads.Add(1)
	if l.delay > 0 {
		select {
		case <-time.After(l.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if l.err != nil {
		return nil, l.err
	}
	return l.model, nil
}

type playCall struct {
	buf    audio.Buffer
	device int
}

type fakePlayer struct {
	mu    sync.Mutex
	calls []playCall
	err   error
	block chan struct{}
}

func (p *fakePlayer) Play(ctx context.Context, buf audio.Buffer, device int) error {
	p.mu.Lock()
	p.calls = append(p.calls, playCall{buf, device})
	block := p.block
	p.mu.Unlock()
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return p.err
}

func (p *fakePlayer) Calls() []playCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]playCall(nil), p.calls...)
}

func tone(n int) audio.Buffer {
	return audio.Buffer{Samples: make([]float32, n), SampleRate: audio.DefaultSampleRate}
}
