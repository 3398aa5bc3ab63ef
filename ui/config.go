package ui

// Config contains TUI-specific configuration.
type Config struct {
	// Presets maps preset names to instruct texts; PresetNames orders them.
	Presets     map[string]string
	PresetNames []string

	// Device is the preselected output device index, -1 for the default.
	Device     int
	SampleRate int

	AltScreen bool   `env:"VOICEBOX_ALT_SCREEN" envDefault:"true"`
	Accent    string `env:"VOICEBOX_ACCENT"     envDefault:"#04B575"`
	// Width caps the form width; 0 uses the terminal width.
	MaxWidth int `env:"VOICEBOX_MAX_WIDTH" envDefault:"100"`
}
