package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/dgnsrekt/voicebox/internal/audio"
	"github.com/dgnsrekt/voicebox/internal/capture"
	"github.com/dgnsrekt/voicebox/internal/config"
	"github.com/dgnsrekt/voicebox/internal/device"
	"github.com/dgnsrekt/voicebox/internal/samples"
	"github.com/dgnsrekt/voicebox/internal/tts"
	"github.com/dgnsrekt/voicebox/internal/tts/engines"
)

func TestResolveName(t *testing.T) {
	voices := []string{"Vivian", "Serena", "Uncle_Fu", "Ryan"}
	tests := []struct {
		query   string
		want    string
		wantErr bool
	}{
		{"", "Vivian", false},
		{"ryan", "Ryan", false},
		{"SERENA", "Serena", false},
		{"unc", "Uncle_Fu", false},
		{"zzz", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, err := resolveName("voice", voices, tt.query)
			if (err != nil) != tt.wantErr {
				t.Fatalf("resolveName(%q) error = %v, wantErr %v", tt.query, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("resolveName(%q) = %q, want %q", tt.query, got, tt.want)
			}
		})
	}

	if _, err := resolveName("voice", nil, "x"); err == nil {
		t.Error("resolveName with no candidates succeeded")
	}
}

func saveSamples(t *testing.T, lib *samples.Library, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if _, err := lib.Save(audio.Buffer{Samples: make([]float32, 2400), SampleRate: 24000}, "hello there"); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}
}

func newLibrary(t *testing.T) *samples.Library {
	t.Helper()
	ts := []time.Time{
		time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 2, 11, 30, 0, 0, time.UTC),
	}
	i := 0
	return samples.New(t.TempDir(), samples.WithClock(func() time.Time {
		now := ts[i%len(ts)]
		i++
		return now
	}))
}

func TestResolveSample(t *testing.T) {
	lib := newLibrary(t)

	name, err := resolveSample(lib, "latest")
	if err != nil || name != "" {
		t.Fatalf("resolveSample(empty library) = %q, %v, want \"\", nil", name, err)
	}

	saveSamples(t, lib, 2)

	tests := []struct {
		query string
		want  string
	}{
		{"", "20260102_113000.wav"},
		{"latest", "20260102_113000.wav"},
		{"20260102_100000.wav", "20260102_100000.wav"},
		{"20260102_100000", "20260102_100000.wav"},
		{"13", "20260102_113000.wav"},
	}
	for _, tt := range tests {
		got, err := resolveSample(lib, tt.query)
		if err != nil {
			t.Errorf("resolveSample(%q) error = %v", tt.query, err)
			continue
		}
		if got != tt.want {
			t.Errorf("resolveSample(%q) = %q, want %q", tt.query, got, tt.want)
		}
	}
}

func TestFilterSamples(t *testing.T) {
	names := []string{"20260101_090000.wav", "20260612_120000.wav"}
	if got := filterSamples(names, ""); len(got) != 2 {
		t.Errorf("filterSamples(\"\") = %v, want all", got)
	}
	got := filterSamples(names, "0612")
	if len(got) != 1 || got[0] != "20260612_120000.wav" {
		t.Errorf("filterSamples(0612) = %v", got)
	}
}

func TestResolveInstruct(t *testing.T) {
	cfg := config.DefaultConfig()

	tests := []struct {
		name     string
		instruct string
		preset   string
		want     string
		wantErr  bool
	}{
		{"instruct only", "Slowly.", "", "Slowly.", false},
		{"preset exact", "", "Whisper", "Soft whispering voice.", false},
		{"preset any case", "", "happy", "Happy and cheerful.", false},
		{"preset fuzzy", "", "excit", "Very excited and energetic.", false},
		{"both", "Slowly.", "Calm", "", true},
		{"unknown preset", "", "qqq", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveInstruct(cfg, tt.instruct, tt.preset)
			if (err != nil) != tt.wantErr {
				t.Fatalf("resolveInstruct() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("resolveInstruct() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReadText(t *testing.T) {
	got, err := readText([]string{"Hello", "world"}, strings.NewReader("ignored"), true)
	if err != nil || got != "Hello world" {
		t.Errorf("readText(args) = %q, %v", got, err)
	}
	got, err = readText(nil, strings.NewReader("from stdin\n"), true)
	if err != nil || got != "from stdin\n" {
		t.Errorf("readText(pipe) = %q, %v", got, err)
	}
	got, err = readText(nil, strings.NewReader("ignored"), false)
	if err != nil || got != "" {
		t.Errorf("readText(tty) = %q, %v", got, err)
	}
}

func TestWaitForResult(t *testing.T) {
	events := make(chan tts.Event, 8)
	events <- tts.ModelReady{Mode: tts.ModeCustomVoice}
	events <- tts.StateChanged{ID: "other", State: tts.StatePlaying}
	events <- tts.StateChanged{ID: "req", State: tts.StateSynthesizing}
	events <- tts.StateChanged{ID: "req", State: tts.StatePlaying}
	events <- tts.Done{ID: "req", Duration: 1500 * time.Millisecond}

	var out bytes.Buffer
	if err := waitForResult(context.Background(), events, "req", &out); err != nil {
		t.Fatalf("waitForResult() error = %v", err)
	}
	s := out.String()
	for _, want := range []string{"Generating...", "Playing...", "Done in 1.5s"} {
		if !strings.Contains(s, want) {
			t.Errorf("output %q missing %q", s, want)
		}
	}
	if strings.Count(s, "Playing...") != 1 {
		t.Errorf("output %q reports another request", s)
	}
}

func TestWaitForResultFailed(t *testing.T) {
	events := make(chan tts.Event, 2)
	cause := tts.ModelError("synthesize", errors.New("server exploded"))
	events <- tts.Failed{ID: "req", Err: cause, Message: tts.Status(cause)}

	err := waitForResult(context.Background(), events, "req", &bytes.Buffer{})
	if !errors.Is(err, cause) {
		t.Errorf("waitForResult() = %v, want %v", err, cause)
	}
}

func TestWaitForResultCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := waitForResult(ctx, make(chan tts.Event), "req", &bytes.Buffer{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("waitForResult() = %v, want context.Canceled", err)
	}
}

func TestRecord(t *testing.T) {
	host := device.NewMockHost()
	lib := newLibrary(t)
	rec := capture.New(host, lib, capture.Config{Device: device.Default, SampleRate: 24000})

	// Enter arrives only after the chunks are fed
	pr, pw := io.Pipe()
	defer pw.Close()
	done := make(chan error, 1)
	var out bytes.Buffer
	go func() { done <- record(context.Background(), rec, "The quick brown fox.", 24000, pr, &out) }()

	deadline := time.Now().Add(2 * time.Second)
	for !host.InputOpen() {
		if time.Now().After(deadline) {
			t.Fatal("input stream never opened")
		}
		time.Sleep(5 * time.Millisecond)
	}
	host.Feed(make([]float32, 12000))
	host.Feed(make([]float32, 12000))
	if _, err := pw.Write([]byte("\n")); err != nil {
		t.Fatalf("write newline: %v", err)
	}

	if err := <-done; err != nil {
		t.Fatalf("record() error = %v", err)
	}
	if !strings.Contains(out.String(), "Saved 20260102_100000.wav (1.0s)") {
		t.Errorf("output = %q", out.String())
	}
	if got, _ := lib.ReadTranscript("20260102_100000.wav"); got != "The quick brown fox." {
		t.Errorf("transcript = %q", got)
	}
}

func TestRecordNothing(t *testing.T) {
	host := device.NewMockHost()
	lib := newLibrary(t)
	rec := capture.New(host, lib, capture.Config{SampleRate: 24000})

	var out bytes.Buffer
	if err := record(context.Background(), rec, "", 24000, strings.NewReader("\n"), &out); err != nil {
		t.Fatalf("record() error = %v", err)
	}
	if !strings.Contains(out.String(), "Nothing was recorded.") {
		t.Errorf("output = %q", out.String())
	}
	if names := lib.Names(); len(names) != 0 {
		t.Errorf("library has %v, want nothing", names)
	}
}

func TestListSamples(t *testing.T) {
	lib := newLibrary(t)
	var out bytes.Buffer
	if err := listSamples(lib, "", &out); err != nil {
		t.Fatalf("listSamples() error = %v", err)
	}
	if !strings.Contains(out.String(), "No samples") {
		t.Errorf("output = %q", out.String())
	}

	saveSamples(t, lib, 2)
	out.Reset()
	if err := listSamples(lib, "1130", &out); err != nil {
		t.Fatalf("listSamples() error = %v", err)
	}
	s := out.String()
	if !strings.Contains(s, "20260102_113000.wav") || strings.Contains(s, "20260102_100000.wav") {
		t.Errorf("filtered output = %q", s)
	}
	if !strings.Contains(s, "hello there") || !strings.Contains(s, "0.1s") {
		t.Errorf("output %q missing transcript or duration", s)
	}
}

func TestListDevices(t *testing.T) {
	var out bytes.Buffer
	if err := listDevices(device.NewMockHost(), &out); err != nil {
		t.Fatalf("listDevices() error = %v", err)
	}
	s := out.String()
	if !strings.Contains(s, "Built-in Output") || !strings.Contains(s, "USB Headset") {
		t.Errorf("output = %q", s)
	}

	empty := device.NewMockHost()
	empty.Devices = nil
	if err := listDevices(empty, &out); !errors.Is(err, device.ErrNoDevice) {
		t.Errorf("listDevices(no devices) = %v, want ErrNoDevice", err)
	}
}

func TestListVoices(t *testing.T) {
	e := engines.NewMockEngine()
	e.SetVoices([]string{"Ryan", "Aiden"})

	var out bytes.Buffer
	if err := listVoices(context.Background(), e, &out); err != nil {
		t.Fatalf("listVoices() error = %v", err)
	}
	if out.String() != "Ryan\nAiden\n" {
		t.Errorf("output = %q", out.String())
	}

	e.SetLoadError(errors.New("offline"))
	err := listVoices(context.Background(), e, &out)
	if tts.KindOf(err) != tts.KindModel {
		t.Errorf("listVoices() kind = %v, want model", tts.KindOf(err))
	}
}

func TestNewLoader(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Engine = "mock"
	loader, err := newLoader(cfg)
	if err != nil {
		t.Fatalf("newLoader(mock) error = %v", err)
	}
	if _, ok := loader.(*engines.MockEngine); !ok {
		t.Errorf("newLoader(mock) = %T", loader)
	}

	cfg.Engine = "mlx"
	loader, err = newLoader(cfg)
	if err != nil {
		t.Fatalf("newLoader(mlx) error = %v", err)
	}
	if _, ok := loader.(*engines.MLXEngine); !ok {
		t.Errorf("newLoader(mlx) = %T", loader)
	}

	cfg.MLX.Models["Karaoke"] = "x"
	if _, err := newLoader(cfg); err == nil {
		t.Error("newLoader with unknown mode succeeded")
	}
}
