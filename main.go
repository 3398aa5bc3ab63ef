// Package main provides the entry point for the voicebox CLI application.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/dgnsrekt/voicebox/internal/config"
	"github.com/dgnsrekt/voicebox/ui"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile string
	debug      bool
	engineName string
	mock       bool

	rootCmd = &cobra.Command{
		Use:   "voicebox",
		Short: "Speak, clone and design voices from the terminal",
		Long: paragraph(
			fmt.Sprintf("\nA terminal control surface for Qwen3 text-to-speech. %s a voice, record a reference sample and %s.",
				keyword("Pick"), keyword("hear it speak")),
		),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return validateOptions(cmd)
		},
		RunE: func(*cobra.Command, []string) error {
			return runTUI()
		},
	}
)

func validateOptions(cmd *cobra.Command) error {
	// a missing file is created by the config command
	if _, err := os.Stat(configFile); err == nil && cmd.Flags().Changed("config") {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("unable to read config file: %w", err)
		}
		log.Debug("Using configuration file", "path", configFile)
	}
	if debug || viper.GetBool("debug") {
		log.SetLevel(log.DebugLevel)
	}
	if mock {
		viper.Set("engine", "mock")
	}
	if engineName != "" {
		viper.Set("engine", engineName)
	}
	return nil
}

// loadConfig reads the validated configuration from the global viper.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return cfg, err
	}
	log.Debug("Loaded configuration", "engine", cfg.Engine, "playback", cfg.Playback, "samples", cfg.SamplesDir)
	return cfg, nil
}

func runTUI() error {
	if !term.IsTerminal(int(os.Stdout.Fd())) || !term.IsTerminal(int(os.Stdin.Fd())) {
		return errors.New("voicebox needs an interactive terminal; see 'voicebox say --help' for headless use")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Read environment to get UI overrides
	uiCfg, err := env.ParseAs[ui.Config]()
	if err != nil {
		return fmt.Errorf("error parsing config: %v", err)
	}

	rt, err := newRuntime(cfg, true)
	if err != nil {
		return err
	}
	defer rt.Close() //nolint:errcheck

	uiCfg.Presets = cfg.Presets
	uiCfg.PresetNames = cfg.PresetNames()
	uiCfg.Device = cfg.Device
	uiCfg.SampleRate = cfg.SampleRate

	p := ui.NewProgram(uiCfg, ui.Deps{
		Controller: rt.controller,
		Library:    rt.library,
		Recorder:   rt.recorder,
		Devices:    rt.host,
	})
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("unable to run tui program: %w", err)
	}
	return nil
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "log debug output to the log file")
	rootCmd.PersistentFlags().StringVarP(&engineName, "engine", "e", "", "model engine (mlx or mock)")
	rootCmd.PersistentFlags().BoolVar(&mock, "mock", false, "use the mock engine (same as --engine mock)")
	_ = rootCmd.PersistentFlags().MarkHidden("mock")
	rootCmd.PersistentFlags().String("samples-dir", "", "reference sample directory")
	rootCmd.PersistentFlags().String("playback", "", "playback backend (portaudio or oto)")
	rootCmd.PersistentFlags().String("server", "", "mlx-audio server base URL")

	// Config bindings
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("samples_dir", rootCmd.PersistentFlags().Lookup("samples-dir"))
	_ = viper.BindPFlag("playback", rootCmd.PersistentFlags().Lookup("playback"))
	_ = viper.BindPFlag("mlx.base_url", rootCmd.PersistentFlags().Lookup("server"))

	config.SetDefaults(viper.GetViper())

	rootCmd.AddCommand(configCmd, manCmd, sayCmd, recordCmd, samplesCmd, devicesCmd, voicesCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "voicebox")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not load find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "voicebox")}, dirs...)
	}

	if c := os.Getenv("VOICEBOX_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("voicebox")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("voicebox")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", viper.ConfigFileUsed())
		return
	}

	if viper.ConfigFileUsed() == "" {
		configFile = filepath.Join(dirs[0], "voicebox.yml")
	}
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}
