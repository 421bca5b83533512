package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/riposte/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded calls",
	Long:  "Show the most recent recorded calls, newest first. Calls are recorded automatically unless --no-history is given.",
	Run: func(cmd *cobra.Command, args []string) {
		limit, _ := cmd.Flags().GetInt("limit")
		clear, _ := cmd.Flags().GetBool("clear")
		dbPath, _ := cmd.Flags().GetString("db")

		if dbPath == "" {
			var err error
			dbPath, err = history.DefaultPath()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error resolving history path: %v\n", err)
				os.Exit(1)
			}
		}

		store, err := history.NewManager(dbPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening history: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()

		if clear {
			if err := store.Clear(); err != nil {
				fmt.Fprintf(os.Stderr, "Error clearing history: %v\n", err)
				os.Exit(1)
			}
			fmt.Println("History cleared")
			return
		}

		entries, err := store.Recent(limit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading history: %v\n", err)
			os.Exit(1)
		}

		if len(entries) == 0 {
			fmt.Println("No recorded calls")
			return
		}

		for _, entry := range entries {
			fmt.Println(formatEntry(entry))
		}
	},
}

// formatEntry renders one history row. Calls that never produced a response
// show their failure kind where the status would be.
func formatEntry(entry history.Entry) string {
	outcome := entry.Status
	if entry.StatusCode == 0 {
		outcome = entry.FailureKind
	}
	return fmt.Sprintf("%4d  %s  %-7s %-40s %-20s %dms",
		entry.ID,
		entry.StartedAt.Local().Format("2006-01-02 15:04:05"),
		entry.Method,
		entry.URL,
		outcome,
		entry.DurationMs)
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "Maximum number of calls to show")
	historyCmd.Flags().Bool("clear", false, "Delete all recorded calls")
	historyCmd.Flags().String("db", "", "History database path (default ~/.riposte/history.db)")
}
