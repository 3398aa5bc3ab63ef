package main

import (
	"errors"
	"fmt"
	"slices"

	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"

	"github.com/dgnsrekt/voicebox/internal/audio"
	"github.com/dgnsrekt/voicebox/internal/cache"
	"github.com/dgnsrekt/voicebox/internal/capture"
	"github.com/dgnsrekt/voicebox/internal/config"
	"github.com/dgnsrekt/voicebox/internal/device"
	"github.com/dgnsrekt/voicebox/internal/samples"
	"github.com/dgnsrekt/voicebox/internal/tts"
	"github.com/dgnsrekt/voicebox/internal/tts/engines"
)

// runtime is the set of collaborators shared by the TUI and the headless
// commands.
type runtime struct {
	cfg        config.Config
	host       device.Host
	library    *samples.Library
	recorder   *capture.Recorder
	controller *tts.Controller

	closers []func() error
}

// newRuntime opens the audio host and builds the controller. With needInput
// a missing audio host is an error even when playback does not need it.
func newRuntime(cfg config.Config, needInput bool) (*runtime, error) {
	rt := &runtime{cfg: cfg}

	dir, err := samplesDir(cfg)
	if err != nil {
		return nil, err
	}
	rt.library = samples.New(dir)

	pa, err := device.NewPortAudio()
	switch {
	case err == nil:
		rt.host = pa
		rt.closers = append(rt.closers, pa.Close)
		rt.recorder = capture.New(pa, rt.library, capture.Config{
			Device:     device.Default,
			SampleRate: cfg.SampleRate,
		})
	case needInput || cfg.Playback == "portaudio":
		return nil, fmt.Errorf("unable to open audio devices: %w", err)
	default:
		log.Warn("Audio devices unavailable, recording disabled", "error", err)
	}

	player, err := newPlayer(cfg, rt.host)
	if err != nil {
		_ = rt.Close()
		return nil, err
	}

	loader, err := newLoader(cfg)
	if err != nil {
		_ = rt.Close()
		return nil, err
	}

	var opts []tts.Option
	if cfg.Cache.Enabled {
		opts = append(opts, tts.WithCache(cache.NewMemoryCache(int64(cfg.Cache.MaxSize)<<20)))
	}
	rt.controller = tts.NewController(loader, player, opts...)
	return rt, nil
}

// Close shuts the controller down and releases the audio host.
func (rt *runtime) Close() error {
	var errs []error
	if rt.controller != nil {
		errs = append(errs, rt.controller.Close())
	}
	for _, c := range slices.Backward(rt.closers) {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

func samplesDir(cfg config.Config) (string, error) {
	if cfg.SamplesDir != "" {
		return cfg.SamplesDir, nil
	}
	dir, err := gap.NewScope(gap.User, "voicebox").DataPath("samples")
	if err != nil {
		return "", fmt.Errorf("unable to find data directory: %w", err)
	}
	return dir, nil
}

func newPlayer(cfg config.Config, host device.Host) (tts.Player, error) {
	switch cfg.Playback {
	case "oto":
		p, err := audio.NewPlayer(cfg.SampleRate)
		if err != nil {
			return nil, fmt.Errorf("unable to open audio output: %w", err)
		}
		return p, nil
	default:
		if host == nil {
			return nil, device.ErrNoDevice
		}
		return host, nil
	}
}

func newLoader(cfg config.Config) (tts.Loader, error) {
	switch cfg.Engine {
	case "mock":
		e := engines.NewMockEngine()
		e.SetDelay(cfg.Mock.GenerationDelay)
		e.SetFailureRate(cfg.Mock.FailureRate)
		if len(cfg.MLX.Voices) > 0 {
			e.SetVoices(cfg.MLX.Voices)
		}
		return e, nil
	default:
		models := make(map[tts.Mode]string, len(cfg.MLX.Models))
		for name, id := range cfg.MLX.Models {
			mode, err := tts.ParseMode(name)
			if err != nil {
				return nil, fmt.Errorf("mlx.models: %w", err)
			}
			models[mode] = id
		}
		e, err := engines.NewMLXEngine(engines.MLXConfig{
			BaseURL:           cfg.MLX.BaseURL,
			APIKey:            cfg.MLX.APIKey,
			Language:          cfg.MLX.Language,
			Models:            models,
			Voices:            cfg.MLX.Voices,
			RequestsPerMinute: cfg.MLX.RequestsPerMinute,
			Timeout:           cfg.MLX.Timeout,
			Warmup:            cfg.MLX.Warmup,
		})
		if err != nil {
			return nil, fmt.Errorf("unable to create mlx engine: %w", err)
		}
		return e, nil
	}
}
