package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() = %v, want nil", err)
	}
	if cfg.SampleRate != 24000 {
		t.Errorf("SampleRate = %d, want 24000", cfg.SampleRate)
	}
	if cfg.Device != -1 {
		t.Errorf("Device = %d, want -1", cfg.Device)
	}
	if len(cfg.Presets) != 6 {
		t.Errorf("len(Presets) = %d, want 6", len(cfg.Presets))
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"uppercase engine", func(c *Config) { c.Engine = "MOCK" }, ""},
		{"unknown engine", func(c *Config) { c.Engine = "piper" }, "invalid engine"},
		{"unknown playback", func(c *Config) { c.Playback = "alsa" }, "invalid playback"},
		{"bad sample rate", func(c *Config) { c.SampleRate = 12345 }, "invalid sample rate"},
		{"bad device", func(c *Config) { c.Device = -2 }, "invalid device"},
		{"cache too small", func(c *Config) { c.Cache.MaxSize = 0 }, "max_size"},
		{"cache disabled ignores size", func(c *Config) { c.Cache.Enabled = false; c.Cache.MaxSize = 0 }, ""},
		{"empty base url", func(c *Config) { c.MLX.BaseURL = "" }, "base_url cannot be empty"},
		{"non-http base url", func(c *Config) { c.MLX.BaseURL = "localhost:8000" }, "http(s)"},
		{"zero rpm", func(c *Config) { c.MLX.RequestsPerMinute = 0 }, "requests_per_minute"},
		{"short timeout", func(c *Config) { c.MLX.Timeout = time.Millisecond }, "timeout"},
		{"unknown model mode", func(c *Config) { c.MLX.Models["Karaoke"] = "x" }, "unknown mode"},
		{"mock bad failure rate", func(c *Config) { c.Engine = "mock"; c.Mock.FailureRate = 2 }, "failure_rate"},
		{"mock negative delay", func(c *Config) { c.Engine = "mock"; c.Mock.GenerationDelay = -time.Second }, "generation_delay"},
		{"mock skips mlx checks", func(c *Config) { c.Engine = "mock"; c.MLX.BaseURL = "" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateExpandsHome(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SamplesDir = "~/voices"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	if strings.HasPrefix(cfg.SamplesDir, "~") {
		t.Errorf("SamplesDir = %q, want expanded path", cfg.SamplesDir)
	}
}

func TestPresetNames(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Presets["Robot"] = "Flat robotic monotone."
	cfg.Presets["Pirate"] = "Gravelly pirate voice."

	got := cfg.PresetNames()
	want := []string{"Happy", "Sad", "Angry", "Excited", "Calm", "Whisper", "Pirate", "Robot"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("PresetNames() = %v, want %v", got, want)
	}

	if p, ok := cfg.Preset("whisper"); !ok || p != "Soft whispering voice." {
		t.Errorf("Preset(whisper) = %q, %v", p, ok)
	}
	if _, ok := cfg.Preset("nope"); ok {
		t.Error("Preset(nope) found, want missing")
	}
}

func TestLoad(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("engine", "mock")
	v.Set("device", 3)
	v.Set("mlx.timeout", "90s")
	v.Set("mlx.models", map[string]string{"VoiceClone": "local/base"})
	v.Set("mock.generation_delay", "1s")
	v.Set("mock.failure_rate", 0.5)
	v.Set("cache.max_size", 8)
	v.Set("presets", map[string]string{"Robot": "Flat robotic monotone.", "happy": "Ecstatic."})

	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load() = %v", err)
	}
	if cfg.Engine != "mock" {
		t.Errorf("Engine = %q, want mock", cfg.Engine)
	}
	if cfg.Device != 3 {
		t.Errorf("Device = %d, want 3", cfg.Device)
	}
	if cfg.MLX.Timeout != 90*time.Second {
		t.Errorf("MLX.Timeout = %v, want 90s", cfg.MLX.Timeout)
	}
	if cfg.MLX.Models["VoiceClone"] != "local/base" {
		t.Errorf("MLX.Models[VoiceClone] = %q, want local/base", cfg.MLX.Models["VoiceClone"])
	}
	if cfg.MLX.Models["CustomVoice"] == "" {
		t.Error("MLX.Models[CustomVoice] lost its default")
	}
	if cfg.Mock.GenerationDelay != time.Second {
		t.Errorf("Mock.GenerationDelay = %v, want 1s", cfg.Mock.GenerationDelay)
	}
	if cfg.Mock.FailureRate != 0.5 {
		t.Errorf("Mock.FailureRate = %v, want 0.5", cfg.Mock.FailureRate)
	}
	if cfg.Cache.MaxSize != 8 {
		t.Errorf("Cache.MaxSize = %d, want 8", cfg.Cache.MaxSize)
	}
	if _, ok := cfg.Preset("robot"); !ok {
		t.Error("user preset robot missing")
	}
	if got := cfg.Presets["Happy"]; got != "Ecstatic." {
		t.Errorf("Presets[Happy] = %q, want user override", got)
	}
	if len(cfg.Presets) != 7 {
		t.Errorf("len(Presets) = %d, want 7", len(cfg.Presets))
	}
}

func TestLoadInvalid(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("playback", "speaker")

	if _, err := Load(v); err == nil {
		t.Fatal("Load() = nil, want error")
	}
}
