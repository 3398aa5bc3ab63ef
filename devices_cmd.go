package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dgnsrekt/voicebox/internal/device"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List audio output devices",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		pa, err := device.NewPortAudio()
		if err != nil {
			return fmt.Errorf("unable to open audio devices: %w", err)
		}
		defer pa.Close() //nolint:errcheck
		return listDevices(pa, cmd.OutOrStdout())
	},
}

func listDevices(h device.Host, w io.Writer) error {
	devs, err := h.OutputDevices()
	if err != nil {
		return err
	}
	if len(devs) == 0 {
		return device.ErrNoDevice
	}
	for _, d := range devs {
		mark := " "
		if d.Default {
			mark = keyword("*")
		}
		fmt.Fprintf(w, "%s %3d  %s %s\n", mark, d.Index, d.Name, faint(fmt.Sprintf("(%.0f Hz)", d.SampleRate)))
	}
	return nil
}
