package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var putCmd = &cobra.Command{
	Use:   "put URL",
	Short: "Make a PUT request to the specified URL",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		settings := settingsFromFlags(cmd)
		if code := executeCall("PUT", args[0], bodyFromFlags(cmd), settings); code != 0 {
			os.Exit(code)
		}
	},
}

func init() {
	addCallFlags(putCmd)
	addBodyFlags(putCmd)
}
