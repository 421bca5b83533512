package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var postCmd = &cobra.Command{
	Use:   "post URL",
	Short: "Make a POST request to the specified URL",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		settings := settingsFromFlags(cmd)
		if code := executeCall("POST", args[0], bodyFromFlags(cmd), settings); code != 0 {
			os.Exit(code)
		}
	},
}

// bodyFromFlags returns the request body from the --data or --json flag.
// --data wins when both are given; nil means the call sends no body.
func bodyFromFlags(cmd *cobra.Command) interface{} {
	data, _ := cmd.Flags().GetString("data")
	jsonData, _ := cmd.Flags().GetString("json")

	if data != "" {
		return data
	}
	if jsonData != "" {
		return jsonData
	}
	return nil
}

// addBodyFlags registers the body flags for verbs that send one.
func addBodyFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("data", "d", "", "Data to send in the request body")
	cmd.Flags().StringP("json", "j", "", "JSON data to send in the request body")
}

func init() {
	addCallFlags(postCmd)
	addBodyFlags(postCmd)
}
