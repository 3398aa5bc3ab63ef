// Package config holds the voicebox configuration and loads it from viper.
package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
)

// Config contains all voicebox options.
type Config struct {
	// SamplesDir holds reference samples; empty means the user data dir.
	SamplesDir string `yaml:"samples_dir"`
	SampleRate int    `yaml:"sample_rate"`

	// Engine is the model collaborator: mlx or mock.
	Engine string `yaml:"engine"`
	// Playback is the output backend: portaudio or oto.
	Playback string `yaml:"playback"`
	// Device is the default output device index, -1 for the system default.
	Device int `yaml:"device"`

	MLX   MLXConfig   `yaml:"mlx"`
	Mock  MockConfig  `yaml:"mock"`
	Cache CacheConfig `yaml:"cache"`

	Presets map[string]string `yaml:"presets"`
}

// MLXConfig configures the mlx-audio server client.
type MLXConfig struct {
	BaseURL           string            `yaml:"base_url"`
	APIKey            string            `yaml:"api_key"`
	Language          string            `yaml:"language"`
	RequestsPerMinute int               `yaml:"requests_per_minute"`
	Timeout           time.Duration     `yaml:"timeout"`
	Warmup            bool              `yaml:"warmup"`
	Models            map[string]string `yaml:"models"`
	Voices            []string          `yaml:"voices"`
}

// MockConfig configures the in-process mock engine.
type MockConfig struct {
	GenerationDelay time.Duration `yaml:"generation_delay"`
	FailureRate     float64       `yaml:"failure_rate"`
}

// CacheConfig configures the synthesis cache.
type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	// MaxSize in megabytes.
	MaxSize int `yaml:"max_size"`
}

// PresetOrder is the display order of the built-in instruct presets.
var PresetOrder = []string{"Happy", "Sad", "Angry", "Excited", "Calm", "Whisper"}

// DefaultPresets returns the built-in instruct presets.
func DefaultPresets() map[string]string {
	return map[string]string{
		"Happy":   "Happy and cheerful.",
		"Sad":     "Sad and melancholic.",
		"Angry":   "Angry and intense.",
		"Excited": "Very excited and energetic.",
		"Calm":    "Calm and soothing.",
		"Whisper": "Soft whispering voice.",
	}
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		SampleRate: 24000,
		Engine:     "mlx",
		Playback:   "portaudio",
		Device:     -1,
		MLX: MLXConfig{
			BaseURL:           "http://127.0.0.1:8000/v1",
			APIKey:            "local",
			Language:          "auto",
			RequestsPerMinute: 30,
			Timeout:           5 * time.Minute,
			Warmup:            true,
			Models: map[string]string{
				"CustomVoice": "mlx-community/Qwen3-TTS-12Hz-1.7B-CustomVoice-8bit",
				"VoiceDesign": "mlx-community/Qwen3-TTS-12Hz-1.7B-VoiceDesign-8bit",
				"VoiceClone":  "mlx-community/Qwen3-TTS-12Hz-1.7B-Base-8bit",
			},
			Voices: []string{"Vivian", "Serena", "Uncle_Fu", "Dylan", "Eric", "Ryan", "Aiden", "Ono_Anna", "Sohee"},
		},
		Mock: MockConfig{
			GenerationDelay: 200 * time.Millisecond,
		},
		Cache: CacheConfig{
			Enabled: true,
			MaxSize: 64,
		},
		Presets: DefaultPresets(),
	}
}

// Validate checks the configuration and normalizes enum values and paths.
func (c *Config) Validate() error {
	validEngines := []string{"mlx", "mock"}
	c.Engine = strings.ToLower(c.Engine)
	if !slices.Contains(validEngines, c.Engine) {
		return fmt.Errorf("invalid engine '%s': must be one of %v", c.Engine, validEngines)
	}

	validPlayback := []string{"portaudio", "oto"}
	c.Playback = strings.ToLower(c.Playback)
	if !slices.Contains(validPlayback, c.Playback) {
		return fmt.Errorf("invalid playback '%s': must be one of %v", c.Playback, validPlayback)
	}

	validSampleRates := []int{16000, 22050, 24000, 44100, 48000}
	if !slices.Contains(validSampleRates, c.SampleRate) {
		return fmt.Errorf("invalid sample rate %d: must be one of %v", c.SampleRate, validSampleRates)
	}

	if c.Device < -1 {
		return fmt.Errorf("invalid device index %d", c.Device)
	}

	if c.SamplesDir != "" {
		dir, err := homedir.Expand(c.SamplesDir)
		if err != nil {
			return fmt.Errorf("samples dir: %w", err)
		}
		c.SamplesDir = dir
	}

	if c.Cache.Enabled && (c.Cache.MaxSize < 1 || c.Cache.MaxSize > 4096) {
		return fmt.Errorf("cache max_size must be between 1 and 4096 MB, got %d", c.Cache.MaxSize)
	}

	switch c.Engine {
	case "mlx":
		if err := c.MLX.Validate(); err != nil {
			return fmt.Errorf("mlx config: %w", err)
		}
	case "mock":
		if err := c.Mock.Validate(); err != nil {
			return fmt.Errorf("mock config: %w", err)
		}
	}
	return nil
}

// Validate checks the mlx configuration.
func (c *MLXConfig) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base_url cannot be empty")
	}
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return fmt.Errorf("base_url must be an http(s) URL, got %q", c.BaseURL)
	}
	if c.RequestsPerMinute < 1 {
		return fmt.Errorf("requests_per_minute must be positive, got %d", c.RequestsPerMinute)
	}
	if c.Timeout < time.Second {
		return fmt.Errorf("timeout must be at least 1s, got %v", c.Timeout)
	}
	for mode := range c.Models {
		switch mode {
		case "CustomVoice", "VoiceDesign", "VoiceClone":
		default:
			return fmt.Errorf("unknown mode %q in models", mode)
		}
	}
	return nil
}

// Validate checks the mock configuration.
func (c *MockConfig) Validate() error {
	if c.GenerationDelay < 0 {
		return fmt.Errorf("generation_delay cannot be negative")
	}
	if c.FailureRate < 0 || c.FailureRate > 1 {
		return fmt.Errorf("failure_rate must be between 0.0 and 1.0, got %f", c.FailureRate)
	}
	return nil
}

// PresetNames returns preset names, built-ins first in their fixed order and
// user additions after them alphabetically.
func (c *Config) PresetNames() []string {
	var names []string
	for _, n := range PresetOrder {
		if _, ok := c.Presets[n]; ok {
			names = append(names, n)
		}
	}
	var extra []string
	for n := range c.Presets {
		if !slices.Contains(PresetOrder, n) {
			extra = append(extra, n)
		}
	}
	slices.Sort(extra)
	return append(names, extra...)
}

// Preset looks a preset up by name, ignoring case.
func (c *Config) Preset(name string) (string, bool) {
	for n, p := range c.Presets {
		if strings.EqualFold(n, name) {
			return p, true
		}
	}
	return "", false
}
