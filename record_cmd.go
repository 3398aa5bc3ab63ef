package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgnsrekt/voicebox/internal/capture"
	"github.com/dgnsrekt/voicebox/internal/device"
)

var (
	recordTranscript string
	recordDevice     int

	recordCmd = &cobra.Command{
		Use:   "record",
		Short: "Record a reference sample without the TUI",
		Long: paragraph(fmt.Sprintf("\n%s a reference voice sample from the microphone until Enter is pressed. "+
			"Speak the words given with --transcript so the sample can be used for voice cloning.", keyword("Record"))),
		Example: paragraph("voicebox record --transcript \"The quick brown fox jumps over the lazy dog.\""),
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			rt, err := newRuntime(cfg, true)
			if err != nil {
				return err
			}
			defer rt.Close() //nolint:errcheck

			rec := capture.New(rt.host, rt.library, capture.Config{
				Device:     recordDevice,
				SampleRate: cfg.SampleRate,
			})

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer cancel()
			return record(ctx, rec, recordTranscript, cfg.SampleRate, os.Stdin, cmd.ErrOrStderr())
		},
	}
)

// recorder is the part of capture.Recorder the record command drives.
type recorder interface {
	Start() error
	Stop(transcript string) (capture.Result, error)
}

// record captures until a line arrives on in or ctx is done, then saves.
func record(ctx context.Context, rec recorder, transcript string, rate int, in io.Reader, w io.Writer) error {
	if err := rec.Start(); err != nil {
		return err
	}
	fmt.Fprintln(w, "Recording... press Enter to stop.")

	lines := make(chan struct{})
	go func() {
		_, _ = bufio.NewReader(in).ReadString('\n')
		close(lines)
	}()

	select {
	case <-lines:
	case <-ctx.Done():
	}

	res, err := rec.Stop(transcript)
	if err != nil {
		return err
	}
	if res.Empty {
		fmt.Fprintln(w, "Nothing was recorded.")
		return nil
	}
	length := time.Duration(res.Frames) * time.Second / time.Duration(rate)
	fmt.Fprintf(w, "Saved %s (%.1fs)\n", res.Sample.Name, length.Seconds())
	if res.TranscriptErr != nil {
		return res.TranscriptErr
	}
	if transcript == "" {
		fmt.Fprintln(w, faint("No transcript given; add one with 'voicebox say --mode clone --ref-text'."))
	}
	return nil
}

func init() {
	recordCmd.Flags().StringVarP(&recordTranscript, "transcript", "t", "", "words spoken in the sample")
	recordCmd.Flags().IntVarP(&recordDevice, "device", "d", device.Default, "input device index, -1 for the default")
}
