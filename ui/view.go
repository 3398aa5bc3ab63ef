package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
)

func (m model) View() string {
	var b strings.Builder

	b.WriteString(m.styles.title.Render("voicebox"))
	b.WriteString("\n\n")

	for f := field(0); f < fieldCount; f++ {
		if !m.visible(f) {
			continue
		}
		b.WriteString(m.row(f))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.statusView())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m model) row(f field) string {
	label := labelStyle.Render(f.String())
	if f == m.focus {
		label = m.styles.focused.Render(f.String())
	}

	var value string
	switch f {
	case fieldDevice:
		value = m.selectorView(f, m.devices[m.deviceIdx].Name)
	case fieldMode:
		value = m.selectorView(f, m.mode.String())
	case fieldVoice:
		name := faintStyle.Render("(loading voices)")
		if m.voiceIdx < len(m.voices) {
			name = m.voices[m.voiceIdx]
		}
		value = m.selectorView(f, name)
	case fieldSample:
		name := m.selectedSample()
		if name == "" {
			name = faintStyle.Render(noSamples)
		}
		value = m.selectorView(f, name) + " " + m.recordView()
	case fieldPreset:
		name := faintStyle.Render("(none)")
		if m.presetIdx >= 0 {
			name = m.cfg.PresetNames[m.presetIdx]
		}
		value = m.selectorView(f, name)
	case fieldRefText:
		value = m.refText.View()
	case fieldInstruct:
		value = m.instruct.View()
	case fieldText:
		value = m.text.View()
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, label, " ", value)
}

func (m model) selectorView(f field, value string) string {
	if f != m.focus {
		return value
	}
	return m.styles.selector.Render("‹ ") + value + m.styles.selector.Render(" ›")
}

func (m model) recordView() string {
	if !m.recording || m.deps.Recorder == nil {
		return faintStyle.Render("ctrl+r to record")
	}
	elapsed := m.deps.Recorder.Elapsed()
	return fmt.Sprintf("%s %4.1fs %s", recordingDot, elapsed.Seconds(), levelMeter(m.deps.Recorder.Level(), 10))
}

// levelMeter renders an RMS level as a bar of width cells on a dB scale.
func levelMeter(rms float64, width int) string {
	n := 0
	if rms > 0 {
		db := 20 * math.Log10(rms)
		n = int(math.Round((db + 60) / 60 * float64(width)))
	}
	n = min(max(n, 0), width)
	return strings.Repeat("▮", n) + faintStyle.Render(strings.Repeat("▯", width-n))
}

func (m model) statusView() string {
	status := m.status
	if m.busy() {
		status = m.spinner.View() + " " + status
	}
	w := m.formWidth()
	status = truncate.StringWithTail(status, uint(max(w-2, 1)), "…") //nolint:gosec

	switch m.statusKind {
	case statusError:
		return statusErr.Render(status)
	case statusOK:
		return statusOKStyle.Render(status)
	default:
		return statusStyle.Render(status)
	}
}

// busy reports whether a spinner should be shown.
func (m model) busy() bool {
	return m.pending != "" || m.loading[m.mode] || m.stopping
}
