package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/dgnsrekt/voicebox/internal/device"
	"github.com/dgnsrekt/voicebox/internal/tts"
)

var (
	sayMode     string
	sayVoice    string
	sayInstruct string
	sayPreset   string
	saySample   string
	sayRefText  string
	sayDevice   int

	sayCmd = &cobra.Command{
		Use:   "say [TEXT]",
		Short: "Speak text without the TUI",
		Long: paragraph(fmt.Sprintf("\n%s text with the selected mode and play it. Without arguments the text is read from stdin.",
			keyword("Speak"))),
		Example: paragraph("voicebox say \"Hello world\"\n" +
			"voicebox say --voice ryan --preset happy \"Good morning\"\n" +
			"voicebox say --mode design --instruct \"A deep calm narrator\" \"Once upon a time\"\n" +
			"echo \"Hi there\" | voicebox say --mode clone --sample latest"),
		Args: cobra.ArbitraryArgs,
		RunE: runSay,
	}
)

func runSay(cmd *cobra.Command, args []string) error {
	piped, err := stdinIsPipe()
	if err != nil {
		return err
	}
	text, err := readText(args, os.Stdin, piped)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	mode, err := tts.ParseMode(sayMode)
	if err != nil {
		return err
	}
	instruct, err := resolveInstruct(cfg, sayInstruct, sayPreset)
	if err != nil {
		return err
	}

	rt, err := newRuntime(cfg, false)
	if err != nil {
		return err
	}
	defer rt.Close() //nolint:errcheck

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer cancel()

	variant, err := buildVariant(ctx, rt, mode, instruct)
	if err != nil {
		return err
	}

	dev := cfg.Device
	if cmd.Flags().Changed("device") {
		dev = sayDevice
	}
	if dev != device.Default && rt.host != nil && cfg.Playback == "portaudio" {
		if _, err := device.Find(rt.host, dev); err != nil {
			return err
		}
	}

	id, err := rt.controller.Submit(tts.Request{Text: text, Variant: variant, Device: dev})
	if err != nil {
		if tts.KindOf(err) == tts.KindValidation {
			return errors.New(tts.Status(err))
		}
		return err
	}
	return waitForResult(ctx, rt.controller.Events(), id, cmd.ErrOrStderr())
}

func buildVariant(ctx context.Context, rt *runtime, mode tts.Mode, instruct string) (tts.Variant, error) {
	switch mode {
	case tts.ModeVoiceDesign:
		return tts.VoiceDesign{Instruct: instruct}, nil

	case tts.ModeVoiceClone:
		name, err := resolveSample(rt.library, saySample)
		if err != nil {
			return nil, err
		}
		if name == "" {
			return tts.VoiceClone{}, nil
		}
		refText := sayRefText
		if refText == "" {
			if refText, err = rt.library.ReadTranscript(name); err != nil {
				return nil, err
			}
		} else if err := rt.library.WriteTranscript(name, refText); err != nil {
			return nil, err
		}
		return tts.VoiceClone{RefAudio: rt.library.Path(name), RefText: refText}, nil

	default:
		voices, err := rt.controller.Voices(ctx)
		if err != nil {
			return nil, err
		}
		speaker, err := resolveName("voice", voices, sayVoice)
		if err != nil {
			return nil, err
		}
		return tts.CustomVoice{Speaker: speaker, Instruct: instruct}, nil
	}
}

// waitForResult reports progress of request id to w until its terminal
// event arrives.
func waitForResult(ctx context.Context, events <-chan tts.Event, id string, w io.Writer) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-events:
			switch ev := ev.(type) {
			case tts.StateChanged:
				if ev.ID != id {
					continue
				}
				switch ev.State {
				case tts.StateSynthesizing:
					fmt.Fprintln(w, faint("Generating..."))
				case tts.StatePlaying:
					fmt.Fprintln(w, faint("Playing..."))
				}
			case tts.Done:
				if ev.ID != id {
					continue
				}
				note := ""
				if ev.Cached {
					note = ", cached"
				}
				fmt.Fprintln(w, faint(fmt.Sprintf("Done in %.1fs%s", ev.Duration.Seconds(), note)))
				return nil
			case tts.Failed:
				if ev.ID != id {
					continue
				}
				return ev.Err
			}
		}
	}
}

func init() {
	sayCmd.Flags().StringVarP(&sayMode, "mode", "m", "custom", "voice mode: custom, design or clone")
	sayCmd.Flags().StringVarP(&sayVoice, "voice", "v", "", "speaker for custom mode (fuzzy matched)")
	sayCmd.Flags().StringVarP(&sayInstruct, "instruct", "i", "", "style instruction (custom and design modes)")
	sayCmd.Flags().StringVarP(&sayPreset, "preset", "p", "", "instruct preset, e.g. happy or whisper")
	sayCmd.Flags().StringVarP(&saySample, "sample", "s", "latest", "reference sample for clone mode")
	sayCmd.Flags().StringVar(&sayRefText, "ref-text", "", "transcript of the reference sample (saved next to it)")
	sayCmd.Flags().IntVarP(&sayDevice, "device", "d", device.Default, "output device index, -1 for the default")
}
