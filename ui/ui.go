// Package ui provides the voicebox terminal interface.
package ui

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/voicebox/internal/capture"
	"github.com/dgnsrekt/voicebox/internal/device"
	"github.com/dgnsrekt/voicebox/internal/samples"
	"github.com/dgnsrekt/voicebox/internal/tts"
)

const (
	recordTick = 100 * time.Millisecond

	noSamples = "(no samples, record one)"

	customPlaceholder = "e.g. Very happy and excited."
	designPlaceholder = "e.g. A cheerful young female voice with high pitch and energetic tone."
)

// Deps are the collaborators the interface drives. Recorder and Devices may
// be nil when no audio host is available.
type Deps struct {
	Controller *tts.Controller
	Library    *samples.Library
	Recorder   *capture.Recorder
	Devices    interface {
		OutputDevices() ([]device.Device, error)
	}
}

// NewProgram returns a new Tea program.
func NewProgram(cfg Config, deps Deps) *tea.Program {
	log.Debug("Starting voicebox", "alt_screen", cfg.AltScreen, "recorder", deps.Recorder != nil)

	var opts []tea.ProgramOption
	if cfg.AltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	return tea.NewProgram(newModel(cfg, deps), opts...)
}

type (
	// eventMsg carries a controller notification onto the Bubble Tea loop.
	eventMsg struct{ event tts.Event }

	watchStartedMsg   struct{ ch <-chan struct{} }
	samplesChangedMsg struct{ ch <-chan struct{} }
	recordTickMsg     time.Time
	recordStoppedMsg  struct {
		result capture.Result
		err    error
	}
	errMsg struct{ err error }
)

// field is one row of the form.
type field int

const (
	fieldDevice field = iota
	fieldMode
	fieldVoice
	fieldSample
	fieldRefText
	fieldPreset
	fieldInstruct
	fieldText
	fieldCount
)

func (f field) String() string {
	return [...]string{"Output", "Mode", "Voice", "Sample", "Ref text", "Preset", "Instruct", "Text"}[f]
}

type model struct {
	cfg    Config
	deps   Deps
	keys   keyMap
	styles styles

	ctx    context.Context
	cancel context.CancelFunc

	width  int
	height int

	focus field
	mode  tts.Mode

	devices   []device.Device
	deviceIdx int

	voices   []string
	voiceIdx int

	samples   []string
	sampleIdx int

	presetIdx int // -1 when the instruct text is not a preset

	refText  textinput.Model
	instruct textinput.Model
	text     textarea.Model
	spinner  spinner.Model
	help     help.Model

	ready      map[tts.Mode]bool
	loading    map[tts.Mode]bool
	pending    string // id of the request in flight
	recording  bool
	stopping   bool
	status     string
	statusKind statusKind
}

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusError
)

func newModel(cfg Config, deps Deps) model {
	ctx, cancel := context.WithCancel(context.Background())

	ref := textinput.New()
	ref.Placeholder = "Words spoken in the sample"
	ref.Prompt = ""

	instruct := textinput.New()
	instruct.Placeholder = customPlaceholder
	instruct.Prompt = ""

	text := textarea.New()
	text.Placeholder = "Type something to say..."
	text.ShowLineNumbers = false
	text.SetHeight(4)
	text.CharLimit = 0

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := model{
		cfg:       cfg,
		deps:      deps,
		keys:      newKeyMap(),
		styles:    newStyles(cfg.Accent),
		ctx:       ctx,
		cancel:    cancel,
		mode:      tts.ModeCustomVoice,
		presetIdx: -1,
		refText:   ref,
		instruct:  instruct,
		text:      text,
		spinner:   sp,
		help:      help.New(),
		ready:     make(map[tts.Mode]bool),
		loading:   make(map[tts.Mode]bool),
		status:    "Ready",
	}
	m.spinner.Style = m.styles.cursor

	m.loadDevices()
	m.refreshSamples(true)
	m.focus = fieldText
	m.text.Focus()
	return m
}

func (m model) Init() tea.Cmd {
	m.deps.Controller.Preload(m.mode)
	return tea.Batch(
		m.spinner.Tick,
		textarea.Blink,
		waitForEvent(m.deps.Controller.Events()),
		watchSamples(m.ctx, m.deps.Library),
	)
}

// waitForEvent turns the next controller notification into a message.
func waitForEvent(events <-chan tts.Event) tea.Cmd {
	return func() tea.Msg {
		return eventMsg{<-events}
	}
}

func watchSamples(ctx context.Context, lib *samples.Library) tea.Cmd {
	return func() tea.Msg {
		ch, err := lib.Watch(ctx)
		if err != nil {
			log.Warn("Could not watch samples directory", "dir", lib.Dir(), "error", err)
			return nil
		}
		return watchStartedMsg{ch}
	}
}

func waitForSamples(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return samplesChangedMsg{ch}
	}
}

func tickRecording() tea.Cmd {
	return tea.Tick(recordTick, func(t time.Time) tea.Msg {
		return recordTickMsg(t)
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case eventMsg:
		m.handleEvent(msg.event)
		return m, waitForEvent(m.deps.Controller.Events())

	case watchStartedMsg:
		return m, waitForSamples(msg.ch)

	case samplesChangedMsg:
		m.refreshSamples(false)
		return m, waitForSamples(msg.ch)

	case recordTickMsg:
		if m.recording && !m.stopping {
			return m, tickRecording()
		}
		return m, nil

	case recordStoppedMsg:
		m.recording, m.stopping = false, false
		m.handleRecorded(msg.result, msg.err)
		return m, nil

	case errMsg:
		m.setStatus(tts.Status(msg.err), statusError)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	cmds = append(cmds, m.updateFocused(msg))
	return m, tea.Batch(cmds...)
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, m.quit()

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.Next):
		return m, m.moveFocus(1)

	case key.Matches(msg, m.keys.Prev):
		return m, m.moveFocus(-1)

	case key.Matches(msg, m.keys.Say):
		m.say()
		return m, nil

	case key.Matches(msg, m.keys.Record):
		return m, m.toggleRecording()

	case key.Matches(msg, m.keys.Copy):
		return m, m.copySamplePath()

	case m.isSelector(m.focus) && key.Matches(msg, m.keys.Left):
		m.cycle(-1)
		return m, nil

	case m.isSelector(m.focus) && key.Matches(msg, m.keys.Right):
		m.cycle(1)
		return m, nil
	}

	return m, m.updateFocused(msg)
}

// updateFocused forwards msg to the focused text component.
func (m *model) updateFocused(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.focus {
	case fieldRefText:
		m.refText, cmd = m.refText.Update(msg)
	case fieldInstruct:
		m.instruct, cmd = m.instruct.Update(msg)
		m.syncPreset()
	case fieldText:
		m.text, cmd = m.text.Update(msg)
	}
	return cmd
}

func (m *model) quit() tea.Cmd {
	if m.recording && m.deps.Recorder != nil {
		if _, err := m.deps.Recorder.Stop(m.refText.Value()); err != nil {
			log.Warn("Stopping recording on quit", "error", err)
		}
	}
	m.cancel()
	return tea.Quit
}

// visible reports whether f is shown in the current mode.
func (m model) visible(f field) bool {
	switch f {
	case fieldVoice:
		return m.mode == tts.ModeCustomVoice
	case fieldSample, fieldRefText:
		return m.mode == tts.ModeVoiceClone
	case fieldPreset, fieldInstruct:
		return m.mode != tts.ModeVoiceClone
	}
	return f < fieldCount
}

func (m model) isSelector(f field) bool {
	switch f {
	case fieldDevice, fieldMode, fieldVoice, fieldSample, fieldPreset:
		return true
	}
	return false
}

func (m *model) moveFocus(dir int) tea.Cmd {
	next := m.focus
	for {
		next = (next + field(dir) + fieldCount) % fieldCount
		if m.visible(next) {
			break
		}
	}
	return m.setFocus(next)
}

func (m *model) setFocus(f field) tea.Cmd {
	if m.focus == fieldRefText && f != fieldRefText {
		m.saveRefText()
	}
	m.refText.Blur()
	m.instruct.Blur()
	m.text.Blur()

	m.focus = f
	switch f {
	case fieldRefText:
		return m.refText.Focus()
	case fieldInstruct:
		return m.instruct.Focus()
	case fieldText:
		return m.text.Focus()
	}
	return nil
}

func (m *model) cycle(dir int) {
	switch m.focus {
	case fieldDevice:
		m.deviceIdx = wrap(m.deviceIdx+dir, len(m.devices))
	case fieldMode:
		i := slices.Index(tts.Modes, m.mode)
		m.setMode(tts.Modes[wrap(i+dir, len(tts.Modes))])
	case fieldVoice:
		m.voiceIdx = wrap(m.voiceIdx+dir, len(m.voices))
	case fieldSample:
		m.sampleIdx = wrap(m.sampleIdx+dir, len(m.samples))
		m.loadRefText()
	case fieldPreset:
		// -1 is "no preset"
		n := len(m.cfg.PresetNames)
		m.presetIdx = wrap(m.presetIdx+1+dir, n+1) - 1
		if m.presetIdx >= 0 {
			m.instruct.SetValue(m.cfg.Presets[m.cfg.PresetNames[m.presetIdx]])
		} else {
			m.instruct.Reset()
		}
	}
}

func wrap(i, n int) int {
	if n == 0 {
		return 0
	}
	return ((i % n) + n) % n
}

func (m *model) setMode(mode tts.Mode) {
	m.mode = mode
	switch mode {
	case tts.ModeVoiceDesign:
		m.instruct.Placeholder = designPlaceholder
	default:
		m.instruct.Placeholder = customPlaceholder
	}
	if m.ready[mode] {
		if m.pending == "" && !m.recording {
			m.setStatus("Ready", statusInfo)
		}
		return
	}
	m.deps.Controller.Preload(mode)
}

// syncPreset drops the preset selection once the instruct text is edited
// away from it.
func (m *model) syncPreset() {
	if m.presetIdx < 0 {
		return
	}
	if m.instruct.Value() != m.cfg.Presets[m.cfg.PresetNames[m.presetIdx]] {
		m.presetIdx = -1
	}
}

func (m *model) loadDevices() {
	m.devices = []device.Device{{Index: device.Default, Name: "Default output", Default: true}}
	if m.deps.Devices == nil {
		return
	}
	devs, err := m.deps.Devices.OutputDevices()
	if err != nil || len(devs) == 0 {
		log.Warn("Could not list output devices", "error", err)
		return
	}
	m.devices = devs
	for i, d := range devs {
		if d.Index == m.cfg.Device || (m.cfg.Device == device.Default && d.Default) {
			m.deviceIdx = i
			if d.Index == m.cfg.Device {
				break
			}
		}
	}
}

// refreshSamples re-reads the sample list. It keeps the current selection
// when it still exists, otherwise selects the newest sample.
func (m *model) refreshSamples(selectLatest bool) {
	current := m.selectedSample()
	m.samples = m.deps.Library.Names()

	i := slices.Index(m.samples, current)
	if selectLatest || i < 0 {
		i = len(m.samples) - 1
	}
	m.sampleIdx = max(i, 0)
	if m.selectedSample() != current {
		m.loadRefText()
	}
}

func (m model) selectedSample() string {
	if m.sampleIdx < 0 || m.sampleIdx >= len(m.samples) {
		return ""
	}
	return m.samples[m.sampleIdx]
}

func (m *model) loadRefText() {
	name := m.selectedSample()
	if name == "" {
		m.refText.SetValue("")
		return
	}
	text, err := m.deps.Library.ReadTranscript(name)
	if err != nil {
		m.setStatus(tts.Status(tts.PersistenceError("read transcript", err)), statusError)
		return
	}
	m.refText.SetValue(text)
}

// saveRefText writes the reference text next to the selected sample. Blank
// text and a missing samples directory are ignored.
func (m *model) saveRefText() {
	name := m.selectedSample()
	if name == "" || !m.deps.Library.Exists(name) {
		return
	}
	if err := m.deps.Library.WriteTranscript(name, m.refText.Value()); err != nil {
		m.setStatus(tts.Status(tts.PersistenceError("save transcript", err)), statusError)
	}
}

func (m *model) request() tts.Request {
	req := tts.Request{
		Text:   m.text.Value(),
		Device: m.devices[m.deviceIdx].Index,
	}
	switch m.mode {
	case tts.ModeCustomVoice:
		var speaker string
		if m.voiceIdx < len(m.voices) {
			speaker = m.voices[m.voiceIdx]
		}
		req.Variant = tts.CustomVoice{Speaker: speaker, Instruct: m.instruct.Value()}
	case tts.ModeVoiceDesign:
		req.Variant = tts.VoiceDesign{Instruct: m.instruct.Value()}
	case tts.ModeVoiceClone:
		clone := tts.VoiceClone{RefText: m.refText.Value()}
		if name := m.selectedSample(); name != "" {
			clone.RefAudio = m.deps.Library.Path(name)
		}
		req.Variant = clone
	}
	return req
}

// canSay reports whether Say is enabled.
func (m model) canSay() bool {
	return m.ready[m.mode] && m.pending == ""
}

func (m *model) say() {
	if !m.ready[m.mode] && !m.loading[m.mode] {
		// a failed load is retried
		m.deps.Controller.Preload(m.mode)
		return
	}
	if !m.canSay() {
		return
	}
	if m.focus == fieldRefText {
		m.saveRefText()
	}
	id, err := m.deps.Controller.Submit(m.request())
	if err != nil {
		m.setStatus(tts.Status(err), statusError)
		return
	}
	m.pending = id
	m.setStatus("Generating...", statusInfo)
}

func (m *model) toggleRecording() tea.Cmd {
	rec := m.deps.Recorder
	if rec == nil {
		m.setStatus("Recording unavailable: no audio input", statusError)
		return nil
	}
	if m.stopping {
		return nil
	}
	if m.recording {
		m.stopping = true
		transcript := m.refText.Value()
		return func() tea.Msg {
			res, err := rec.Stop(transcript)
			return recordStoppedMsg{result: res, err: err}
		}
	}
	if err := rec.Start(); err != nil {
		m.setStatus(tts.Status(err), statusError)
		return nil
	}
	m.recording = true
	m.setStatus("Recording...", statusInfo)
	return tickRecording()
}

func (m *model) handleRecorded(res capture.Result, err error) {
	switch {
	case err != nil:
		m.setStatus(tts.Status(err), statusError)
	case res.Empty:
		m.setStatus("Nothing recorded", statusInfo)
	default:
		m.refreshSamples(true)
		if res.TranscriptErr != nil {
			m.setStatus(tts.Status(res.TranscriptErr), statusError)
			return
		}
		m.setStatus("Saved "+res.Sample.Name, statusOK)
	}
}

func (m *model) copySamplePath() tea.Cmd {
	name := m.selectedSample()
	if name == "" {
		m.setStatus(tts.Status(tts.ErrMissingSample), statusInfo)
		return nil
	}
	path := m.deps.Library.Path(name)
	return func() tea.Msg {
		if err := clipboard.WriteAll(path); err != nil {
			return errMsg{fmt.Errorf("copy to clipboard: %w", err)}
		}
		return nil
	}
}

func (m *model) handleEvent(ev tts.Event) {
	switch ev := ev.(type) {
	case tts.ModelLoading:
		m.loading[ev.Mode] = true
		if ev.Mode == m.mode {
			m.setStatus(fmt.Sprintf("Loading %s model...", ev.Mode), statusInfo)
		}

	case tts.ModelReady:
		m.loading[ev.Mode] = false
		m.ready[ev.Mode] = true
		if len(ev.Voices) > 0 {
			current := ""
			if m.voiceIdx < len(m.voices) {
				current = m.voices[m.voiceIdx]
			}
			m.voices = ev.Voices
			m.voiceIdx = max(slices.Index(m.voices, current), 0)
		}
		if ev.Mode == m.mode && m.pending == "" && !m.recording {
			m.setStatus("Ready", statusInfo)
		}

	case tts.ModelFailed:
		m.loading[ev.Mode] = false
		if ev.Mode == m.mode {
			m.setStatus(ev.Message, statusError)
		}

	case tts.StateChanged:
		if ev.ID != m.pending {
			return
		}
		switch ev.State {
		case tts.StateSynthesizing:
			m.setStatus("Generating...", statusInfo)
		case tts.StatePlaying:
			m.setStatus("Playing...", statusInfo)
		}

	case tts.Done:
		if ev.ID != m.pending {
			return
		}
		m.pending = ""
		m.setStatus("Ready", statusInfo)

	case tts.Failed:
		if ev.ID != m.pending {
			return
		}
		m.pending = ""
		m.setStatus(ev.Message, statusError)
	}
}

func (m *model) setStatus(s string, kind statusKind) {
	m.status = s
	m.statusKind = kind
}

func (m *model) resize() {
	w := m.formWidth() - 13
	m.refText.Width = w
	m.instruct.Width = w
	m.text.SetWidth(w)
	m.help.Width = m.width
}

func (m model) formWidth() int {
	w := m.width
	if m.cfg.MaxWidth > 0 && (w == 0 || w > m.cfg.MaxWidth) {
		w = m.cfg.MaxWidth
	}
	return max(w, 40)
}
