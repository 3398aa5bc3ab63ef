// Package samples manages reference voice samples: wave files named after
// their recording time, each with an optional sibling transcript.
package samples

import (
	"errors"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/dgnsrekt/voicebox/internal/audio"
)

const (
	// NameLayout is the time layout of a sample's base name.
	NameLayout = "20060102_150405"

	audioExt      = ".wav"
	transcriptExt = ".txt"
)

// Sample identifies one reference sample on disk.
type Sample struct {
	Name           string
	Path           string
	TranscriptPath string
}

// Saved is the outcome of Library.Save. TranscriptErr is set when the audio
// was written but the transcript was not.
type Saved struct {
	Sample
	TranscriptErr error
}

// Info describes a stored sample for listings.
type Info struct {
	Sample
	Size       int64
	Duration   time.Duration
	ModTime    time.Time
	Transcript string
}

// Library is a directory of samples. It holds no state beyond its location;
// every query reads the directory again.
type Library struct {
	dir string
	now func() time.Time
}

// Option configures a Library.
type Option func(*Library)

// WithClock replaces the clock used to name new samples.
func WithClock(now func() time.Time) Option {
	return func(l *Library) { l.now = now }
}

// New returns a library rooted at dir. The directory is created lazily on the
// first save.
func New(dir string, opts ...Option) *Library {
	l := &Library{dir: dir, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Dir returns the library directory.
func (l *Library) Dir() string {
	return l.dir
}

// List yields sample file names in lexicographic order, which is also
// chronological. Each iteration re-reads the directory; a missing directory
// yields nothing.
func (l *Library) List() iter.Seq[string] {
	return func(yield func(string) bool) {
		entries, err := os.ReadDir(l.dir)
		if err != nil {
			return
		}
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			if e.Type().IsRegular() && strings.EqualFold(filepath.Ext(e.Name()), audioExt) {
				names = append(names, e.Name())
			}
		}
		slices.Sort(names)
		for _, n := range names {
			if !yield(n) {
				return
			}
		}
	}
}

// Names collects List.
func (l *Library) Names() []string {
	return slices.Collect(l.List())
}

// Latest returns the newest sample name.
func (l *Library) Latest() (string, bool) {
	var last string
	for n := range l.List() {
		last = n
	}
	return last, last != ""
}

// Path returns the wave file path of the named sample.
func (l *Library) Path(name string) string {
	return filepath.Join(l.dir, name)
}

// TranscriptPath returns the transcript path of the named sample.
func (l *Library) TranscriptPath(name string) string {
	return filepath.Join(l.dir, strings.TrimSuffix(name, filepath.Ext(name))+transcriptExt)
}

// Exists reports whether the named sample's wave file exists.
func (l *Library) Exists(name string) bool {
	if name == "" {
		return false
	}
	st, err := os.Stat(l.Path(name))
	return err == nil && st.Mode().IsRegular()
}

// Get returns the Sample for name without touching the disk.
func (l *Library) Get(name string) Sample {
	return Sample{Name: name, Path: l.Path(name), TranscriptPath: l.TranscriptPath(name)}
}

// ReadTranscript returns the trimmed transcript of the named sample, or ""
// when it has none.
func (l *Library) ReadTranscript(name string) (string, error) {
	data, err := os.ReadFile(l.TranscriptPath(name))
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read transcript: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// WriteTranscript replaces the named sample's transcript with the trimmed
// text. Empty text is ignored and existing transcripts are left alone.
func (l *Library) WriteTranscript(name, text string) error {
	text = strings.TrimSpace(text)
	if text == "" || name == "" {
		return nil
	}
	if err := os.WriteFile(l.TranscriptPath(name), []byte(text), 0o644); err != nil {
		return fmt.Errorf("write transcript: %w", err)
	}
	return nil
}

// Save writes buf as a new sample named after the current time, then the
// transcript if it is not blank.
func (l *Library) Save(buf audio.Buffer, transcript string) (Saved, error) {
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return Saved{}, fmt.Errorf("create samples dir: %w", err)
	}

	name := l.now().Format(NameLayout) + audioExt
	s := Saved{Sample: l.Get(name)}
	if err := audio.WriteWAVFile(s.Path, buf); err != nil {
		return Saved{}, fmt.Errorf("write sample: %w", err)
	}
	s.TranscriptErr = l.WriteTranscript(name, transcript)
	return s, nil
}

// Info reads size, duration and transcript of the named sample.
func (l *Library) Info(name string) (Info, error) {
	s := l.Get(name)
	st, err := os.Stat(s.Path)
	if err != nil {
		return Info{}, err
	}
	info := Info{Sample: s, Size: st.Size(), ModTime: st.ModTime()}
	if h, err := audio.ReadWAVInfo(s.Path); err == nil && h.SampleRate > 0 {
		info.Duration = time.Duration(h.Frames) * time.Second / time.Duration(h.SampleRate)
	}
	info.Transcript, err = l.ReadTranscript(name)
	return info, err
}
