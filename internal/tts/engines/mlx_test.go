package engines

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/dgnsrekt/voicebox/internal/audio"
	"github.com/dgnsrekt/voicebox/internal/tts"
)

type speechServer struct {
	mu       sync.Mutex
	requests []map[string]any
	status   int
}

func (s *speechServer) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/models", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[{"id":"custom-model","object":"model","created":0,"owned_by":"mlx"}]}`))
	})
	mux.HandleFunc("/v1/audio/speech", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		s.mu.Lock()
		s.requests = append(s.requests, body)
		status := s.status
		s.mu.Unlock()

		if status != 0 {
			http.Error(w, `{"error":{"message":"boom"}}`, status)
			return
		}
		var out bytes.Buffer
		_ = audio.WriteWAV(&out, audio.Buffer{Samples: make([]float32, 2400), SampleRate: 24000})
		w.Header().Set("Content-Type", "audio/wav")
		_, _ = w.Write(out.Bytes())
	})
	return mux
}

func (s *speechServer) last() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return nil
	}
	return s.requests[len(s.requests)-1]
}

func newTestEngine(t *testing.T, s *speechServer, warmup bool) *MLXEngine {
	t.Helper()
	srv := httptest.NewServer(s.handler(t))
	t.Cleanup(srv.Close)

	e, err := NewMLXEngine(MLXConfig{
		BaseURL:           srv.URL + "/v1",
		Models:            map[tts.Mode]string{tts.ModeCustomVoice: "custom-model"},
		RequestsPerMinute: 6000,
		Warmup:            warmup,
	})
	if err != nil {
		t.Fatalf("NewMLXEngine failed: %v", err)
	}
	return e
}

func TestNewMLXEngineRequiresURL(t *testing.T) {
	if _, err := NewMLXEngine(MLXConfig{}); err == nil {
		t.Error("expected error without base url")
	}
}

func TestMLXCustomVoice(t *testing.T) {
	s := &speechServer{}
	e := newTestEngine(t, s, false)
	ctx := context.Background()

	m, err := e.Load(ctx, tts.ModeCustomVoice)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	voices, err := m.Voices(ctx)
	if err != nil || len(voices) != len(DefaultVoices) {
		t.Fatalf("Voices = %v, %v", voices, err)
	}

	segs, err := m.Synthesize(ctx, "Hello world", tts.CustomVoice{Speaker: "Ryan", Instruct: "Calm and soothing."})
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if len(segs) != 1 || segs[0].Len() != 2400 || segs[0].SampleRate != 24000 {
		t.Errorf("unexpected segments %d", len(segs))
	}

	req := s.last()
	want := map[string]any{
		"model":           "custom-model",
		"input":           "Hello world",
		"voice":           "Ryan",
		"instructions":    "Calm and soothing.",
		"response_format": "wav",
		"lang_code":       "auto",
	}
	for k, v := range want {
		if req[k] != v {
			t.Errorf("request[%q] = %v, want %v", k, req[k], v)
		}
	}
}

func TestMLXVoiceClone(t *testing.T) {
	s := &speechServer{}
	e := newTestEngine(t, s, false)
	ctx := context.Background()

	m, err := e.Load(ctx, tts.ModeVoiceClone)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if voices, _ := m.Voices(ctx); len(voices) != 0 {
		t.Errorf("clone model listed voices %v", voices)
	}

	if _, err := m.Synthesize(ctx, "Hi", tts.VoiceClone{RefAudio: "/tmp/a.wav", RefText: "ref words"}); err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	req := s.last()
	if req["ref_audio"] != "/tmp/a.wav" || req["ref_text"] != "ref words" {
		t.Errorf("clone fields missing from request: %v", req)
	}
	if req["model"] != DefaultModels[tts.ModeVoiceClone] {
		t.Errorf("model = %v", req["model"])
	}
	if _, ok := req["instructions"]; ok {
		t.Error("clone request carried instructions")
	}
}

func TestMLXWrongMode(t *testing.T) {
	e := newTestEngine(t, &speechServer{}, false)
	m, err := e.Load(context.Background(), tts.ModeVoiceDesign)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.Synthesize(context.Background(), "x", tts.CustomVoice{Speaker: "A"}); err == nil {
		t.Error("design model accepted a custom voice request")
	}
}

func TestMLXWarmup(t *testing.T) {
	s := &speechServer{}
	e := newTestEngine(t, s, true)

	if _, err := e.Load(context.Background(), tts.ModeCustomVoice); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	req := s.last()
	if req == nil || req["input"] != warmupText {
		t.Errorf("warmup request = %v", req)
	}
}

func TestMLXServerError(t *testing.T) {
	s := &speechServer{status: http.StatusInternalServerError}
	e := newTestEngine(t, s, false)
	m, err := e.Load(context.Background(), tts.ModeCustomVoice)
	if err != nil {
		t.Fatal(err)
	}
	_, err = m.Synthesize(context.Background(), "x", tts.CustomVoice{Speaker: "A"})
	if err == nil || !strings.Contains(err.Error(), "speech request failed") {
		t.Errorf("Synthesize error = %v", err)
	}
}

func TestMLXUnreachable(t *testing.T) {
	e, err := NewMLXEngine(MLXConfig{BaseURL: "http://127.0.0.1:1/v1", RequestsPerMinute: 6000})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.Load(context.Background(), tts.ModeCustomVoice); err == nil {
		t.Error("Load succeeded against an unreachable server")
	}
}
