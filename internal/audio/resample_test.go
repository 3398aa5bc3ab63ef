package audio

import "testing"

func TestResampleSameRate(t *testing.T) {
	in := Buffer{Samples: []float32{0.1, 0.2}, SampleRate: 24000}
	out, err := Resample(in, 24000)
	if err != nil {
		t.Fatalf("Resample failed: %v", err)
	}
	if out.Len() != 2 || out.SampleRate != 24000 {
		t.Errorf("Resample changed a same-rate buffer: %+v", out)
	}
}

func TestResampleInvalidRate(t *testing.T) {
	if _, err := Resample(Buffer{Samples: []float32{0}, SampleRate: 24000}, 0); err == nil {
		t.Error("expected error for zero target rate")
	}
	if _, err := Resample(Buffer{Samples: []float32{0}}, 24000); err == nil {
		t.Error("expected error for zero source rate")
	}
}

func TestResampleChangesRate(t *testing.T) {
	in := Buffer{Samples: make([]float32, 4800), SampleRate: 48000}
	out, err := Resample(in, 24000)
	if err != nil {
		t.Fatalf("Resample failed: %v", err)
	}
	if out.SampleRate != 24000 {
		t.Errorf("sample rate = %d, want 24000", out.SampleRate)
	}
	if out.Len() != 2400 {
		t.Errorf("downsampled length = %d, want 2400", out.Len())
	}
	for i, s := range out.Samples {
		if s < -1 || s > 1 {
			t.Fatalf("sample %d out of range: %v", i, s)
		}
	}
}

func TestResampleKeepsDuration(t *testing.T) {
	tests := []struct {
		name    string
		in, out int
		samples int
		wantLen int
	}{
		{"upsample", 16000, 24000, 16000, 24000},
		{"downsample", 48000, 24000, 4800, 2400},
		{"odd ratio", 44100, 24000, 4410, 2400},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := Buffer{Samples: make([]float32, tt.samples), SampleRate: tt.in}
			for i := range in.Samples {
				in.Samples[i] = 0.5
			}
			got, err := Resample(in, tt.out)
			if err != nil {
				t.Fatalf("Resample failed: %v", err)
			}
			if got.Len() != tt.wantLen {
				t.Errorf("length = %d, want %d", got.Len(), tt.wantLen)
			}
			if got.Duration() != in.Duration() {
				t.Errorf("duration = %v, want %v", got.Duration(), in.Duration())
			}
		})
	}
}
