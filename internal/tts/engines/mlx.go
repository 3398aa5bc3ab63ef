package engines

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"golang.org/x/time/rate"

	"github.com/dgnsrekt/voicebox/internal/audio"
	"github.com/dgnsrekt/voicebox/internal/tts"
)

// DefaultVoices are the built-in speakers of the custom voice models.
var DefaultVoices = []string{"Vivian", "Serena", "Uncle_Fu", "Dylan", "Eric", "Ryan", "Aiden", "Ono_Anna", "Sohee"}

// DefaultModels maps each mode to its model id on the server.
var DefaultModels = map[tts.Mode]string{
	tts.ModeCustomVoice: "mlx-community/Qwen3-TTS-12Hz-1.7B-CustomVoice-8bit",
	tts.ModeVoiceDesign: "mlx-community/Qwen3-TTS-12Hz-1.7B-VoiceDesign-8bit",
	tts.ModeVoiceClone:  "mlx-community/Qwen3-TTS-12Hz-1.7B-Base-8bit",
}

const warmupText = "Hello."

// MLXConfig holds configuration for the mlx-audio engine.
type MLXConfig struct {
	// BaseURL of the OpenAI-compatible API, e.g. http://127.0.0.1:8000/v1.
	BaseURL string
	APIKey  string

	// Language passed to custom voice and voice design; "auto" detects it.
	Language string

	Models map[tts.Mode]string
	Voices []string

	// Rate limit requests per minute (defaults to 30)
	RequestsPerMinute int

	// Timeout bounds a single request; model loading on first use is slow.
	Timeout time.Duration

	// Warmup synthesizes a short phrase on Load so the server loads the
	// model before the first real request.
	Warmup bool

	HTTPClient *http.Client
}

// MLXEngine loads models served by mlx-audio.
type MLXEngine struct {
	client      openai.Client
	config      MLXConfig
	rateLimiter *rate.Limiter
}

// NewMLXEngine creates an engine for the server at config.BaseURL.
func NewMLXEngine(config MLXConfig) (*MLXEngine, error) {
	if config.BaseURL == "" {
		return nil, errors.New("mlx: base url is required")
	}
	if config.APIKey == "" {
		// the server ignores the key but the client requires one
		config.APIKey = "local"
	}
	if config.Language == "" {
		config.Language = "auto"
	}
	if len(config.Voices) == 0 {
		config.Voices = DefaultVoices
	}
	models := make(map[tts.Mode]string, len(DefaultModels))
	for m, id := range DefaultModels {
		models[m] = id
	}
	for m, id := range config.Models {
		if id != "" {
			models[m] = id
		}
	}
	config.Models = models
	if config.RequestsPerMinute <= 0 {
		config.RequestsPerMinute = 30
	}
	if config.Timeout <= 0 {
		config.Timeout = 5 * time.Minute
	}

	opts := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
		option.WithBaseURL(config.BaseURL),
		option.WithRequestTimeout(config.Timeout),
		option.WithMaxRetries(1),
	}
	if config.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(config.HTTPClient))
	}

	return &MLXEngine{
		client:      openai.NewClient(opts...),
		config:      config,
		rateLimiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(config.RequestsPerMinute)), 1),
	}, nil
}

// Load checks that the server answers and, with Warmup, makes it load the
// model for mode.
func (e *MLXEngine) Load(ctx context.Context, mode tts.Mode) (tts.Model, error) {
	id, ok := e.config.Models[mode]
	if !ok {
		return nil, fmt.Errorf("no model configured for %s", mode)
	}
	m := &mlxModel{engine: e, mode: mode, id: id}

	page, err := e.client.Models.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("model server unreachable at %s: %w", e.config.BaseURL, err)
	}
	listed := false
	for _, sm := range page.Data {
		if sm.ID == id {
			listed = true
			break
		}
	}
	log.Debug("mlx model resolved", "mode", mode, "model", id, "listed", listed)

	// clone needs a reference sample, so it loads on first use
	if e.config.Warmup && mode != tts.ModeVoiceClone {
		var v tts.Variant = tts.VoiceDesign{Instruct: "A neutral voice."}
		if mode == tts.ModeCustomVoice {
			v = tts.CustomVoice{Speaker: e.config.Voices[0]}
		}
		if _, err := m.Synthesize(ctx, warmupText, v); err != nil {
			return nil, fmt.Errorf("warmup: %w", err)
		}
	}
	return m, nil
}

type mlxModel struct {
	engine *MLXEngine
	mode   tts.Mode
	id     string
}

func (m *mlxModel) Voices(context.Context) ([]string, error) {
	if m.mode != tts.ModeCustomVoice {
		return nil, nil
	}
	return append([]string(nil), m.engine.config.Voices...), nil
}

func (m *mlxModel) Synthesize(ctx context.Context, text string, v tts.Variant) ([]audio.Buffer, error) {
	if v.Mode() != m.mode {
		return nil, fmt.Errorf("%s model cannot synthesize %s", m.mode, v.Mode())
	}

	params := openai.AudioSpeechNewParams{
		Input:          text,
		Model:          m.id,
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatWAV,
	}
	var opts []option.RequestOption

	switch v := v.(type) {
	case tts.CustomVoice:
		params.Voice = openai.AudioSpeechNewParamsVoice(v.Speaker)
		if v.Instruct != "" {
			params.Instructions = openai.String(v.Instruct)
		}
		opts = append(opts, option.WithJSONSet("lang_code", m.engine.config.Language))
	case tts.VoiceDesign:
		params.Instructions = openai.String(v.Instruct)
		opts = append(opts, option.WithJSONSet("lang_code", m.engine.config.Language))
	case tts.VoiceClone:
		opts = append(opts,
			option.WithJSONSet("ref_audio", v.RefAudio),
			option.WithJSONSet("ref_text", v.RefText),
		)
	}

	if err := m.engine.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait cancelled: %w", err)
	}

	start := time.Now()
	resp, err := m.engine.client.Audio.Speech.New(ctx, params, opts...)
	if err != nil {
		return nil, fmt.Errorf("speech request failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read speech response: %w", err)
	}
	buf, err := audio.DecodeWAV(data)
	if err != nil {
		return nil, fmt.Errorf("decode speech response: %w", err)
	}

	log.Debug("mlx synthesis complete",
		"mode", m.mode,
		"chars", len(text),
		"audio", buf.Duration(),
		"took", time.Since(start))
	return []audio.Buffer{buf}, nil
}
