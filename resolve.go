package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/dgnsrekt/voicebox/internal/config"
	"github.com/dgnsrekt/voicebox/internal/samples"
)

// resolveName picks the candidate matching query: an exact match ignoring
// case wins, otherwise the best fuzzy match. An empty query picks the first
// candidate.
func resolveName(kind string, candidates []string, query string) (string, error) {
	if len(candidates) == 0 {
		return "", fmt.Errorf("no %ss available", kind)
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return candidates[0], nil
	}
	for _, c := range candidates {
		if strings.EqualFold(c, query) {
			return c, nil
		}
	}
	matches := fuzzy.Find(query, candidates)
	if len(matches) == 0 {
		return "", fmt.Errorf("unknown %s %q: one of %s", kind, query, strings.Join(candidates, ", "))
	}
	return matches[0].Str, nil
}

// resolveSample finds a sample by name, fuzzy name or "latest". An empty
// query means the latest sample; no samples at all yields "".
func resolveSample(lib *samples.Library, query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" || strings.EqualFold(query, "latest") {
		name, _ := lib.Latest()
		return name, nil
	}
	if lib.Exists(query) {
		return query, nil
	}
	if !strings.HasSuffix(query, ".wav") && lib.Exists(query+".wav") {
		return query + ".wav", nil
	}
	return resolveName("sample", lib.Names(), query)
}

// filterSamples keeps the names fuzzy matching query, best match first.
func filterSamples(names []string, query string) []string {
	if query == "" {
		return names
	}
	matches := fuzzy.Find(query, names)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Str)
	}
	return out
}

// resolveInstruct returns the style instruction from an explicit text or a
// preset name.
func resolveInstruct(cfg config.Config, instruct, preset string) (string, error) {
	if preset == "" {
		return instruct, nil
	}
	if instruct != "" {
		return "", errors.New("use either --instruct or --preset, not both")
	}
	if p, ok := cfg.Preset(preset); ok {
		return p, nil
	}
	name, err := resolveName("preset", cfg.PresetNames(), preset)
	if err != nil {
		return "", err
	}
	p, _ := cfg.Preset(name)
	return p, nil
}

// readText joins args, or reads r when there are none and r is a pipe.
func readText(args []string, r io.Reader, piped bool) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	if !piped {
		return "", nil
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("unable to read from stdin: %w", err)
	}
	return string(b), nil
}

func stdinIsPipe() (bool, error) {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false, fmt.Errorf("unable to open file: %w", err)
	}
	if stat.Mode()&os.ModeCharDevice == 0 || stat.Size() > 0 {
		return true, nil
	}
	return false, nil
}
