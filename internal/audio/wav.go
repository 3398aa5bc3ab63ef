package audio

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
)

const (
	wavFormatPCM   = 1
	wavFormatFloat = 3
	// streamed responses may carry a placeholder data length
	wavUnknownSize = 0xFFFFFFFF
	// WAVE_FORMAT_EXTENSIBLE is the largest fmt chunk in use
	wavMaxFmtSize = 64
)

// ErrInvalidWAV is returned for input that is not a supported wave stream.
var ErrInvalidWAV = errors.New("invalid WAV data")

// WAVInfo describes a decoded wave header.
type WAVInfo struct {
	SampleRate    int
	Channels      int
	BitsPerSample int
	Frames        int
}

// WriteWAVFile writes b as a 16-bit mono PCM wave file at path. The file
// only appears at path once it is complete.
func WriteWAVFile(path string, b Buffer) error {
	tempPath := path + ".tmp"
	f, err := os.Create(tempPath)
	if err != nil {
		return err
	}

	err = WriteWAV(f, b)
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tempPath)
		return err
	}
	return os.Rename(tempPath, path)
}

// WriteWAV writes b to out as a canonical 44-byte-header 16-bit mono PCM
// wave stream.
func WriteWAV(out io.Writer, b Buffer) error {
	if b.SampleRate <= 0 {
		return fmt.Errorf("invalid sample rate %d", b.SampleRate)
	}
	pcm := b.ToPCM16()

	dataSize := uint32(len(pcm) * BitDepth / 8)
	byteRate := uint32(b.SampleRate * Channels * BitDepth / 8)
	blockAlign := uint16(Channels * BitDepth / 8)

	w := bufio.NewWriter(out)

	// RIFF header.
	if _, err := w.WriteString("RIFF"); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(36)+dataSize); err != nil {
		return err
	}
	if _, err := w.WriteString("WAVE"); err != nil {
		return err
	}

	// fmt chunk.
	if _, err := w.WriteString("fmt "); err != nil {
		return err
	}
	fmtChunk := []any{
		uint32(16),
		uint16(wavFormatPCM),
		uint16(Channels),
		uint32(b.SampleRate),
		byteRate,
		blockAlign,
		uint16(BitDepth),
	}
	for _, v := range fmtChunk {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return err
		}
	}

	// data chunk.
	if _, err := w.WriteString("data"); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, dataSize); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, pcm); err != nil {
		return err
	}
	return w.Flush()
}

// ReadWAVFile decodes the wave file at path into a mono buffer.
func ReadWAVFile(path string) (Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return Buffer{}, err
	}
	defer f.Close() //nolint:errcheck
	return ReadWAV(bufio.NewReader(f))
}

// DecodeWAV decodes an in-memory wave stream.
func DecodeWAV(data []byte) (Buffer, error) {
	return ReadWAV(bytes.NewReader(data))
}

// ReadWAV decodes 16-bit PCM or 32-bit float wave data. Multi-channel input
// is downmixed to mono.
func ReadWAV(r io.Reader) (Buffer, error) {
	info, data, err := readWAV(r, true)
	if err != nil {
		return Buffer{}, err
	}

	frameBytes := info.Channels * info.BitsPerSample / 8
	frames := len(data) / frameBytes
	out := Buffer{Samples: make([]float32, frames), SampleRate: info.SampleRate}
	for i := 0; i < frames; i++ {
		var sum float32
		for ch := 0; ch < info.Channels; ch++ {
			off := i*frameBytes + ch*info.BitsPerSample/8
			switch info.BitsPerSample {
			case 16:
				sum += float32(int16(binary.LittleEndian.Uint16(data[off:]))) / math.MaxInt16
			case 32:
				sum += math.Float32frombits(binary.LittleEndian.Uint32(data[off:]))
			}
		}
		out.Samples[i] = sum / float32(info.Channels)
	}
	return out, nil
}

// ReadWAVInfo reads only the header of the wave file at path.
func ReadWAVInfo(path string) (WAVInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return WAVInfo{}, err
	}
	defer f.Close() //nolint:errcheck
	info, _, err := readWAV(bufio.NewReader(f), false)
	return info, err
}

func readWAV(r io.Reader, withData bool) (WAVInfo, []byte, error) {
	var riff [12]byte
	if _, err := io.ReadFull(r, riff[:]); err != nil {
		return WAVInfo{}, nil, fmt.Errorf("%w: %v", ErrInvalidWAV, err)
	}
	if string(riff[0:4]) != "RIFF" || string(riff[8:12]) != "WAVE" {
		return WAVInfo{}, nil, fmt.Errorf("%w: missing RIFF/WAVE header", ErrInvalidWAV)
	}

	var (
		info   WAVInfo
		format uint16
		gotFmt bool
	)
	for {
		var hdr [8]byte
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			return WAVInfo{}, nil, fmt.Errorf("%w: no data chunk", ErrInvalidWAV)
		}
		id := string(hdr[0:4])
		size := binary.LittleEndian.Uint32(hdr[4:8])

		switch id {
		case "fmt ":
			if size < 16 {
				return WAVInfo{}, nil, fmt.Errorf("%w: short fmt chunk", ErrInvalidWAV)
			}
			if size > wavMaxFmtSize {
				return WAVInfo{}, nil, fmt.Errorf("%w: fmt chunk of %d bytes", ErrInvalidWAV, size)
			}
			buf := make([]byte, int64(size)+int64(size%2))
			if _, err := io.ReadFull(r, buf); err != nil {
				return WAVInfo{}, nil, fmt.Errorf("%w: %v", ErrInvalidWAV, err)
			}
			format = binary.LittleEndian.Uint16(buf[0:2])
			info.Channels = int(binary.LittleEndian.Uint16(buf[2:4]))
			info.SampleRate = int(binary.LittleEndian.Uint32(buf[4:8]))
			info.BitsPerSample = int(binary.LittleEndian.Uint16(buf[14:16]))
			gotFmt = true

		case "data":
			if !gotFmt {
				return WAVInfo{}, nil, fmt.Errorf("%w: data before fmt", ErrInvalidWAV)
			}
			if err := validateFormat(format, info); err != nil {
				return WAVInfo{}, nil, err
			}
			frameBytes := info.Channels * info.BitsPerSample / 8
			if size != wavUnknownSize {
				info.Frames = int(size) / frameBytes
			}
			if !withData {
				return info, nil, nil
			}
			// truncated files keep what was written
			src := r
			if size != wavUnknownSize {
				src = io.LimitReader(r, int64(size))
			}
			data, err := io.ReadAll(src)
			if err != nil {
				return WAVInfo{}, nil, fmt.Errorf("%w: %v", ErrInvalidWAV, err)
			}
			data = data[:len(data)/frameBytes*frameBytes]
			info.Frames = len(data) / frameBytes
			return info, data, nil

		default:
			if _, err := io.CopyN(io.Discard, r, int64(size)+int64(size%2)); err != nil {
				return WAVInfo{}, nil, fmt.Errorf("%w: %v", ErrInvalidWAV, err)
			}
		}
	}
}

func validateFormat(format uint16, info WAVInfo) error {
	if info.Channels < 1 || info.SampleRate <= 0 {
		return fmt.Errorf("%w: %d channels at %d Hz", ErrInvalidWAV, info.Channels, info.SampleRate)
	}
	switch {
	case format == wavFormatPCM && info.BitsPerSample == 16:
	case format == wavFormatFloat && info.BitsPerSample == 32:
	default:
		return fmt.Errorf("%w: unsupported format %d with %d bits", ErrInvalidWAV, format, info.BitsPerSample)
	}
	return nil
}
