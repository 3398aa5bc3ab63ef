package main

import (
	"fmt"

	mcobra "github.com/muesli/mango-cobra"
	"github.com/muesli/roff"
	"github.com/spf13/cobra"
)

var manCmd = &cobra.Command{
	Use:                   "man",
	Short:                 "Generates manpages",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Hidden:                true,
	Args:                  cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		page, err := mcobra.NewManPage(1, rootCmd)
		if err != nil {
			return err
		}

		page = page.WithSection("Files", "Configuration is read from voicebox.yml in the user config directory, "+
			"or from $VOICEBOX_CONFIG_HOME. Reference samples are stored as YYYYMMDD_HHMMSS.wav "+
			"with a sibling .txt transcript.")
		fmt.Println(page.Build(roff.NewDocument()))
		return nil
	},
}
