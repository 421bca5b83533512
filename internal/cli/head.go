package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var headCmd = &cobra.Command{
	Use:   "head URL",
	Short: "Make a HEAD request to the specified URL",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		settings := settingsFromFlags(cmd)
		if code := executeCall("HEAD", args[0], nil, settings); code != 0 {
			os.Exit(code)
		}
	},
}

func init() {
	addCallFlags(headCmd)
}
