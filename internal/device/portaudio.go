//go:build !nocgo

package device

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gordonklaus/portaudio"

	"github.com/dgnsrekt/voicebox/internal/audio"
)

const defaultFramesPerBuffer = 1024

// PortAudio is a Host backed by the PortAudio library.
type PortAudio struct {
	// serializes playback; one stream per output at a time
	playMu sync.Mutex
}

// NewPortAudio initializes PortAudio. Call Close when done.
func NewPortAudio() (*PortAudio, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize portaudio: %w", err)
	}
	return &PortAudio{}, nil
}

// Close terminates PortAudio.
func (p *PortAudio) Close() error {
	return portaudio.Terminate()
}

// OutputDevices lists devices with at least one output channel. Indices are
// the host's device indices.
func (p *PortAudio) OutputDevices() ([]Device, error) {
	infos, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}
	def, _ := portaudio.DefaultOutputDevice()

	var out []Device
	for i, info := range infos {
		if info.MaxOutputChannels < 1 {
			continue
		}
		out = append(out, Device{
			Index:      i,
			Name:       info.Name,
			SampleRate: info.DefaultSampleRate,
			Default:    def != nil && info.Name == def.Name,
		})
	}
	return out, nil
}

// DefaultOutput returns the host's default output device.
func (p *PortAudio) DefaultOutput() (Device, error) {
	devices, err := p.OutputDevices()
	if err != nil {
		return Device{}, err
	}
	for _, d := range devices {
		if d.Default {
			return d, nil
		}
	}
	return Device{}, ErrNoDevice
}

func (p *PortAudio) info(index int, input bool) (*portaudio.DeviceInfo, error) {
	if index == Default {
		var (
			info *portaudio.DeviceInfo
			err  error
		)
		if input {
			info, err = portaudio.DefaultInputDevice()
		} else {
			info, err = portaudio.DefaultOutputDevice()
		}
		if err != nil || info == nil {
			return nil, errors.Join(ErrNoDevice, err)
		}
		return info, nil
	}
	infos, err := portaudio.Devices()
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(infos) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownDevice, index)
	}
	return infos[index], nil
}

type inputStream struct {
	stream *portaudio.Stream
	once   sync.Once
	err    error
}

func (s *inputStream) Close() error {
	s.once.Do(func() {
		s.err = errors.Join(s.stream.Stop(), s.stream.Close())
	})
	return s.err
}

// OpenInput opens and starts a mono float capture stream. onChunk runs on
// the PortAudio callback thread and must not retain its argument.
func (p *PortAudio) OpenInput(cfg InputConfig, onChunk func([]float32)) (InputStream, error) {
	info, err := p.info(cfg.Device, true)
	if err != nil {
		return nil, err
	}
	if info.MaxInputChannels < 1 {
		return nil, fmt.Errorf("%w: %q has no input channels", ErrNoDevice, info.Name)
	}

	params := portaudio.LowLatencyParameters(info, nil)
	params.Input.Channels = audio.Channels
	params.SampleRate = float64(cfg.SampleRate)
	params.FramesPerBuffer = cfg.FramesPerBuffer
	if params.FramesPerBuffer <= 0 {
		params.FramesPerBuffer = portaudio.FramesPerBufferUnspecified
	}

	stream, err := portaudio.OpenStream(params, func(in []float32) {
		onChunk(in)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open input stream on %q: %w", info.Name, err)
	}
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		return nil, fmt.Errorf("failed to start input stream: %w", err)
	}

	log.Debug("input stream started", "device", info.Name, "sample_rate", cfg.SampleRate)
	return &inputStream{stream: stream}, nil
}

// Play writes buf to the output device and blocks until it has been queued
// in full or ctx is done. The stream is opened at the buffer's rate; when
// the device refuses it, the buffer is resampled to the device rate.
func (p *PortAudio) Play(ctx context.Context, buf audio.Buffer, device int) error {
	if buf.IsEmpty() {
		return audio.ErrEmptyBuffer
	}
	info, err := p.info(device, false)
	if err != nil {
		return err
	}

	p.playMu.Lock()
	defer p.playMu.Unlock()

	frames := make([]float32, defaultFramesPerBuffer)
	stream, err := openOutput(info, buf.SampleRate, frames)
	if err != nil {
		rate := int(info.DefaultSampleRate)
		log.Debug("output rate refused, resampling", "device", info.Name, "from", buf.SampleRate, "to", rate, "error", err)
		if buf, err = audio.Resample(buf, rate); err != nil {
			return err
		}
		if stream, err = openOutput(info, rate, frames); err != nil {
			return fmt.Errorf("failed to open output stream on %q: %w", info.Name, err)
		}
	}
	defer stream.Close() //nolint:errcheck

	if err := stream.Start(); err != nil {
		return fmt.Errorf("failed to start output stream: %w", err)
	}

	for off := 0; off < buf.Len(); off += len(frames) {
		if err := ctx.Err(); err != nil {
			_ = stream.Abort()
			return err
		}
		n := copy(frames, buf.Samples[off:])
		clear(frames[n:])
		if err := stream.Write(); err != nil && !errors.Is(err, portaudio.OutputUnderflowed) {
			_ = stream.Abort()
			return fmt.Errorf("output write failed: %w", err)
		}
	}
	// Stop drains pending buffers before returning.
	return stream.Stop()
}

func openOutput(info *portaudio.DeviceInfo, rate int, frames []float32) (*portaudio.Stream, error) {
	params := portaudio.HighLatencyParameters(nil, info)
	params.Output.Channels = audio.Channels
	params.SampleRate = float64(rate)
	params.FramesPerBuffer = len(frames)
	return portaudio.OpenStream(params, frames)
}
