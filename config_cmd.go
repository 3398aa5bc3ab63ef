package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/charmbracelet/x/editor"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultConfig = `# directory of reference samples (default: user data dir)
# samples_dir: "~/voicebox/samples"
# capture and synthesis sample rate
sample_rate: 24000
# model engine: mlx or mock
engine: "mlx"
# playback backend: portaudio (any output device) or oto (default output)
playback: "portaudio"
# output device index, -1 for the system default
device: -1

# mlx-audio server (OpenAI-compatible speech endpoint)
mlx:
  base_url: "http://127.0.0.1:8000/v1"
  api_key: "local"
  # language passed to custom voice and voice design
  language: "auto"
  requests_per_minute: 30
  # first requests load the model on the server and can be slow
  timeout: "5m"
  # synthesize a short phrase when a model is preloaded
  warmup: true
  models:
    CustomVoice: "mlx-community/Qwen3-TTS-12Hz-1.7B-CustomVoice-8bit"
    VoiceDesign: "mlx-community/Qwen3-TTS-12Hz-1.7B-VoiceDesign-8bit"
    VoiceClone: "mlx-community/Qwen3-TTS-12Hz-1.7B-Base-8bit"
  voices: [Vivian, Serena, Uncle_Fu, Dylan, Eric, Ryan, Aiden, Ono_Anna, Sohee]

# mock engine (for trying the UI without a model server)
mock:
  generation_delay: "200ms"
  failure_rate: 0.0

# replay identical requests from memory
cache:
  enabled: true
  # megabytes
  max_size: 64

# extra instruct presets; built-ins are Happy, Sad, Angry, Excited, Calm and Whisper
# presets:
#   Robot: "Flat robotic monotone."
`

var configCmd = &cobra.Command{
	Use:     "config",
	Hidden:  false,
	Short:   "Edit the voicebox config file",
	Long:    paragraph(fmt.Sprintf("\n%s the voicebox config file. We’ll use EDITOR to determine which editor to use. If the config file doesn't exist, it will be created.", keyword("Edit"))),
	Example: paragraph("voicebox config\nvoicebox config --config path/to/config.yml"),
	Args:    cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		if err := ensureConfigFile(); err != nil {
			return err
		}

		c, err := editor.Cmd("voicebox", configFile)
		if err != nil {
			return fmt.Errorf("unable to set config file: %w", err)
		}
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		if err := c.Run(); err != nil {
			return fmt.Errorf("unable to run command: %w", err)
		}

		fmt.Println("Wrote config file to:", configFile)
		return nil
	},
}

func ensureConfigFile() error {
	if configFile == "" {
		configFile = viper.GetViper().ConfigFileUsed()
		if err := os.MkdirAll(filepath.Dir(configFile), 0o755); err != nil { //nolint:gosec
			return fmt.Errorf("could not write configuration file: %w", err)
		}
	}

	if ext := path.Ext(configFile); ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("'%s' is not a supported configuration type: use '%s' or '%s'", ext, ".yaml", ".yml")
	}

	if _, err := os.Stat(configFile); errors.Is(err, fs.ErrNotExist) {
		if err := os.MkdirAll(filepath.Dir(configFile), 0o700); err != nil {
			return fmt.Errorf("unable create directory: %w", err)
		}

		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("unable to create config file: %w", err)
		}
		defer func() { _ = f.Close() }()

		if _, err := f.WriteString(defaultConfig); err != nil {
			return fmt.Errorf("unable to write config file: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("unable to stat config file: %w", err)
	}
	return nil
}
