package device

import (
	"context"
	"errors"
	"testing"

	"github.com/dgnsrekt/voicebox/internal/audio"
)

func TestFind(t *testing.T) {
	h := NewMockHost()

	tests := []struct {
		name    string
		index   int
		want    string
		wantErr error
	}{
		{"default", Default, "Built-in Output", nil},
		{"by index", 3, "USB Headset", nil},
		{"unknown", 7, "", ErrUnknownDevice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Find(h, tt.index)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Find(%d) error = %v, want %v", tt.index, err, tt.wantErr)
			}
			if d.Name != tt.want {
				t.Errorf("Find(%d) = %q, want %q", tt.index, d.Name, tt.want)
			}
		})
	}
}

func TestMockHostNoDefault(t *testing.T) {
	h := &MockHost{Devices: []Device{{Index: 1, Name: "Line Out"}}}
	if _, err := h.DefaultOutput(); !errors.Is(err, ErrNoDevice) {
		t.Errorf("DefaultOutput error = %v, want ErrNoDevice", err)
	}
}

func TestMockHostInput(t *testing.T) {
	h := NewMockHost()

	var got int
	s, err := h.OpenInput(InputConfig{Device: Default, SampleRate: 24000}, func(c []float32) {
		got += len(c)
	})
	if err != nil {
		t.Fatalf("OpenInput failed: %v", err)
	}
	if _, err := h.OpenInput(InputConfig{}, func([]float32) {}); err == nil {
		t.Error("second OpenInput succeeded while a stream is open")
	}

	h.Feed(make([]float32, 10))
	h.Feed(make([]float32, 5))
	if got != 15 {
		t.Errorf("callback saw %d samples, want 15", got)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if h.Feed(make([]float32, 1)) {
		t.Error("Feed delivered after Close")
	}
}

func TestMockHostPlay(t *testing.T) {
	h := NewMockHost()
	buf := audio.Buffer{Samples: []float32{0.1}, SampleRate: 24000}

	if err := h.Play(context.Background(), buf, 3); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	plays := h.Plays()
	if len(plays) != 1 || plays[0].Device != 3 || plays[0].Buffer.Len() != 1 {
		t.Errorf("recorded plays = %+v", plays)
	}
}
