package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/studyloop/studyloop/internal/app/leaderboard"
	"github.com/studyloop/studyloop/internal/daemon"
)

func init() {
	leaderboardCmd.Flags().StringVar(&leaderboardPeriod, "period", "all", "Ranking period: all or week")
	leaderboardCmd.Flags().IntVar(&leaderboardLimit, "limit", 0, "Maximum entries to show")
	rootCmd.AddCommand(leaderboardCmd)
}

var (
	leaderboardPeriod string
	leaderboardLimit  int
)

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show the XP leaderboard",
	RunE:  runLeaderboard,
}

func runLeaderboard(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	entries, err := d.Boards.Top(leaderboard.Period(leaderboardPeriod), leaderboardLimit)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Println("No activity yet.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tNAME\tXP\tLEVEL\tSTREAK")
	for _, e := range entries {
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%d\n", e.Rank, e.DisplayName, e.XP, e.Level, e.Streak)
	}
	return w.Flush()
}
