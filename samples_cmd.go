package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/muesli/reflow/truncate"
	"github.com/spf13/cobra"

	"github.com/dgnsrekt/voicebox/internal/samples"
)

var (
	samplesFilter string

	samplesCmd = &cobra.Command{
		Use:     "samples",
		Aliases: []string{"ls"},
		Short:   "List reference samples",
		Example: paragraph("voicebox samples\nvoicebox samples --filter 0612"),
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			dir, err := samplesDir(cfg)
			if err != nil {
				return err
			}
			return listSamples(samples.New(dir), samplesFilter, cmd.OutOrStdout())
		},
	}
)

func listSamples(lib *samples.Library, filter string, w io.Writer) error {
	names := filterSamples(lib.Names(), filter)
	if len(names) == 0 {
		fmt.Fprintln(w, faint("No samples in "+lib.Dir()))
		return nil
	}
	for _, name := range names {
		info, err := lib.Info(name)
		if err != nil {
			return err
		}
		transcript := info.Transcript
		if transcript == "" {
			transcript = faint("(no transcript)")
		} else {
			transcript = truncate.StringWithTail(strings.ReplaceAll(transcript, "\n", " "), 48, "…")
		}
		fmt.Fprintf(w, "%s  %5.1fs  %8s  %-14s  %s\n",
			keyword(name),
			info.Duration.Seconds(),
			humanize.Bytes(uint64(info.Size)), //nolint:gosec
			humanize.Time(info.ModTime),
			transcript,
		)
	}
	return nil
}

func init() {
	samplesCmd.Flags().StringVarP(&samplesFilter, "filter", "f", "", "fuzzy filter on sample names")
}
