// Package cli implements the StudyLoop command-line interface using Cobra.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "studyloop",
	Short: "StudyLoop — gamified study tracking",
	Long: `StudyLoop turns studying into a game: focus sessions and completed
tasks earn XP, levels, streaks, and badges. This binary runs the API
server and ships a few operator commands for inspecting state.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
