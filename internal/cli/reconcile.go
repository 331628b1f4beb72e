package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/studyloop/studyloop/internal/daemon"
)

func init() {
	rootCmd.AddCommand(reconcileCmd)
}

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Replay pending offline sync entries once",
	RunE:  runReconcile,
}

func runReconcile(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	applied, rejected, err := d.Sync.Reconcile()
	if err != nil {
		return err
	}
	fmt.Printf("Reconciled: %d applied, %d rejected\n", applied, rejected)
	return nil
}
