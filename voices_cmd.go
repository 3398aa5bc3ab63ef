package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dgnsrekt/voicebox/internal/tts"
)

var voicesCmd = &cobra.Command{
	Use:   "voices",
	Short: "List the speakers of the custom voice model",
	Long:  paragraph(fmt.Sprintf("\n%s the custom voice model and list its built-in speakers.", keyword("Load"))),
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		loader, err := newLoader(cfg)
		if err != nil {
			return err
		}
		return listVoices(cmd.Context(), loader, cmd.OutOrStdout())
	},
}

func listVoices(ctx context.Context, loader tts.Loader, w io.Writer) error {
	model, err := loader.Load(ctx, tts.ModeCustomVoice)
	if err != nil {
		return tts.ModelError("load "+tts.ModeCustomVoice.String(), err)
	}
	voices, err := model.Voices(ctx)
	if err != nil {
		return tts.ModelError("voices", err)
	}
	for _, v := range voices {
		fmt.Fprintln(w, v)
	}
	return nil
}
