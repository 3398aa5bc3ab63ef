package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// SetDefaults registers the defaults with v so that unset keys resolve.
func SetDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("samples_dir", d.SamplesDir)
	v.SetDefault("sample_rate", d.SampleRate)
	v.SetDefault("engine", d.Engine)
	v.SetDefault("playback", d.Playback)
	v.SetDefault("device", d.Device)

	v.SetDefault("mlx.base_url", d.MLX.BaseURL)
	v.SetDefault("mlx.api_key", d.MLX.APIKey)
	v.SetDefault("mlx.language", d.MLX.Language)
	v.SetDefault("mlx.requests_per_minute", d.MLX.RequestsPerMinute)
	v.SetDefault("mlx.timeout", d.MLX.Timeout.String())
	v.SetDefault("mlx.warmup", d.MLX.Warmup)

	v.SetDefault("mock.generation_delay", d.Mock.GenerationDelay.String())
	v.SetDefault("mock.failure_rate", d.Mock.FailureRate)

	v.SetDefault("cache.enabled", d.Cache.Enabled)
	v.SetDefault("cache.max_size", d.Cache.MaxSize)
}

// Load reads the configuration from v and validates it.
func Load(v *viper.Viper) (Config, error) {
	cfg := DefaultConfig()

	if v.IsSet("samples_dir") {
		cfg.SamplesDir = v.GetString("samples_dir")
	}
	if v.IsSet("sample_rate") {
		cfg.SampleRate = v.GetInt("sample_rate")
	}
	if v.IsSet("engine") {
		cfg.Engine = v.GetString("engine")
	}
	if v.IsSet("playback") {
		cfg.Playback = v.GetString("playback")
	}
	if v.IsSet("device") {
		cfg.Device = v.GetInt("device")
	}

	cfg.MLX = loadMLXConfig(v, cfg.MLX)
	cfg.Mock = loadMockConfig(v, cfg.Mock)

	if v.IsSet("cache.enabled") {
		cfg.Cache.Enabled = v.GetBool("cache.enabled")
	}
	if v.IsSet("cache.max_size") {
		cfg.Cache.MaxSize = v.GetInt("cache.max_size")
	}

	// user presets extend the built-ins and may override them
	for name, prompt := range v.GetStringMapString("presets") {
		cfg.Presets[presetKey(cfg.Presets, name)] = prompt
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func loadMLXConfig(v *viper.Viper, cfg MLXConfig) MLXConfig {
	if v.IsSet("mlx.base_url") {
		cfg.BaseURL = v.GetString("mlx.base_url")
	}
	if v.IsSet("mlx.api_key") {
		cfg.APIKey = v.GetString("mlx.api_key")
	}
	if v.IsSet("mlx.language") {
		cfg.Language = v.GetString("mlx.language")
	}
	if v.IsSet("mlx.requests_per_minute") {
		cfg.RequestsPerMinute = v.GetInt("mlx.requests_per_minute")
	}
	if v.IsSet("mlx.timeout") {
		if d, err := time.ParseDuration(v.GetString("mlx.timeout")); err == nil {
			cfg.Timeout = d
		}
	}
	if v.IsSet("mlx.warmup") {
		cfg.Warmup = v.GetBool("mlx.warmup")
	}
	if v.IsSet("mlx.models") {
		// viper lowercases map keys
		for key, id := range v.GetStringMapString("mlx.models") {
			if name, ok := modeKeys[key]; ok {
				cfg.Models[name] = id
			} else {
				cfg.Models[key] = id
			}
		}
	}
	if v.IsSet("mlx.voices") {
		cfg.Voices = v.GetStringSlice("mlx.voices")
	}
	return cfg
}

// presetKey maps a viper-lowercased name back onto an existing preset.
func presetKey(presets map[string]string, name string) string {
	for n := range presets {
		if strings.EqualFold(n, name) {
			return n
		}
	}
	return name
}

var modeKeys = map[string]string{
	"customvoice": "CustomVoice",
	"voicedesign": "VoiceDesign",
	"voiceclone":  "VoiceClone",
}

func loadMockConfig(v *viper.Viper, cfg MockConfig) MockConfig {
	if v.IsSet("mock.generation_delay") {
		if d, err := time.ParseDuration(v.GetString("mock.generation_delay")); err == nil {
			cfg.GenerationDelay = d
		}
	}
	if v.IsSet("mock.failure_rate") {
		cfg.FailureRate = v.GetFloat64("mock.failure_rate")
	}
	return cfg
}
