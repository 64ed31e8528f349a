package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/naoko-ai/naoko/internal/config"
	"github.com/naoko-ai/naoko/internal/session"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List persisted sessions",
	Long: `List all persisted sessions with their creation time, planning
document, and whether they last aborted mid-run.`,
	RunE: runSessions,
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
}

func runSessions(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	store, err := session.NewStore(filepath.Join(cfg.Paths.StateDir, "sessions"))
	if err != nil {
		return err
	}

	infos, err := store.List()
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	fmt.Println(strings.Repeat("─", 70))
	fmt.Println("Naoko Sessions")
	fmt.Println(strings.Repeat("─", 70))

	if len(infos) == 0 {
		fmt.Println("\nNo sessions found.")
		fmt.Println("Run 'naoko start <document>' to create one.")
		return nil
	}

	fmt.Printf("\nFound %d session(s):\n\n", len(infos))
	for _, info := range infos {
		fmt.Printf("  Session: %s\n", info.ID)
		if info.CreatedAt != "" {
			fmt.Printf("    Created:  %s\n", info.CreatedAt)
		}
		if info.Document != "" {
			fmt.Printf("    Document: %s\n", info.Document)
		}
		if info.LastFailedPhase != "" {
			fmt.Printf("    Status:   failed during %s\n", info.LastFailedPhase)
		} else {
			fmt.Printf("    Status:   ok\n")
		}
		fmt.Println()
	}

	fmt.Println("To resume a session: naoko start <document> --resume <session-id>")
	return nil
}
