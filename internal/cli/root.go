package cli

import (
	"github.com/spf13/cobra"

	"github.com/wesleyorama2/riposte/internal/logging"
)

var version = "0.1.0"

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:     "riposte",
	Short:   "A terminal-based HTTP client that captures every call the same way",
	Version: version,
	Long: `Riposte is a terminal-based HTTP client written in Go. Every call
produces the same record regardless of outcome: the request as actually
transmitted, the response when one arrived, a classified failure when
something went wrong, and per-phase timing either way.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if debug, _ := cmd.Flags().GetBool("debug"); debug {
			logging.EnableDebug()
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		// If no subcommand is provided, print help
		cmd.Help()
	},
}

// Execute runs the root command. It is called once, by main.
func Execute() error {
	return RootCmd.Execute()
}

func init() {
	RootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")

	// Add subcommands to root command
	RootCmd.AddCommand(getCmd)
	RootCmd.AddCommand(postCmd)
	RootCmd.AddCommand(putCmd)
	RootCmd.AddCommand(deleteCmd)
	RootCmd.AddCommand(headCmd)
	RootCmd.AddCommand(runCmd)
	RootCmd.AddCommand(testCmd)
	RootCmd.AddCommand(historyCmd)
}
