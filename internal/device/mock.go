package device

import (
	"context"
	"errors"
	"sync"

	"github.com/dgnsrekt/voicebox/internal/audio"
)

// PlayCall records one MockHost.Play invocation.
type PlayCall struct {
	Buffer audio.Buffer
	Device int
}

// MockHost is an in-memory Host for tests. Captured chunks are pushed with
// Feed; playback calls are recorded and return immediately.
type MockHost struct {
	mu sync.Mutex

	Devices []Device
	// OpenErr and PlayErr are returned by OpenInput and Play when set.
	OpenErr error
	PlayErr error

	onChunk func([]float32)
	open    bool
	plays   []PlayCall
}

// NewMockHost returns a host with two output devices, the first default.
func NewMockHost() *MockHost {
	return &MockHost{
		Devices: []Device{
			{Index: 0, Name: "Built-in Output", SampleRate: 48000, Default: true},
			{Index: 3, Name: "USB Headset", SampleRate: 44100},
		},
	}
}

func (m *MockHost) OutputDevices() ([]Device, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Device(nil), m.Devices...), nil
}

func (m *MockHost) DefaultOutput() (Device, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.Devices {
		if d.Default {
			return d, nil
		}
	}
	return Device{}, ErrNoDevice
}

func (m *MockHost) OpenInput(_ InputConfig, onChunk func([]float32)) (InputStream, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.OpenErr != nil {
		return nil, m.OpenErr
	}
	if m.open {
		return nil, errors.New("input device busy")
	}
	m.open = true
	m.onChunk = onChunk
	return mockStream{m}, nil
}

// Feed delivers a chunk to the open input stream, as the audio thread would.
// It reports false when no stream is open.
func (m *MockHost) Feed(chunk []float32) bool {
	m.mu.Lock()
	cb := m.onChunk
	m.mu.Unlock()
	if cb == nil {
		return false
	}
	cb(chunk)
	return true
}

// InputOpen reports whether a capture stream is open.
func (m *MockHost) InputOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open
}

func (m *MockHost) Play(ctx context.Context, buf audio.Buffer, device int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plays = append(m.plays, PlayCall{Buffer: buf, Device: device})
	if m.PlayErr != nil {
		return m.PlayErr
	}
	return ctx.Err()
}

// Plays returns the recorded playback calls.
func (m *MockHost) Plays() []PlayCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]PlayCall(nil), m.plays...)
}

type mockStream struct{ m *MockHost }

func (s mockStream) Close() error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.m.open = false
	s.m.onChunk = nil
	return nil
}
