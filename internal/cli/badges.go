package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/studyloop/studyloop/internal/app/rules"
)

func init() {
	rootCmd.AddCommand(badgesCmd)
}

var badgesCmd = &cobra.Command{
	Use:   "badges",
	Short: "List the badge catalog",
	RunE:  runBadges,
}

func runBadges(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tDESCRIPTION")
	for _, def := range rules.Catalog() {
		fmt.Fprintf(w, "%s\t%s\t%s\n", def.ID, def.Name, def.Description)
	}
	return w.Flush()
}
