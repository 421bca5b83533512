package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete URL",
	Short: "Make a DELETE request to the specified URL",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		settings := settingsFromFlags(cmd)
		if code := executeCall("DELETE", args[0], nil, settings); code != 0 {
			os.Exit(code)
		}
	},
}

func init() {
	addCallFlags(deleteCmd)
}
