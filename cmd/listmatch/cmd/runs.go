package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"listing-matcher/internal/runstore"
)

var runsStore string

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List stored runs",
	Args:  cobra.NoArgs,
	RunE:  runRuns,
}

func init() {
	runsCmd.Flags().StringVar(&runsStore, "store", "", "run store (default RUN_STORE)")
}

func runRuns(cmd *cobra.Command, args []string) error {
	store, err := runstore.Open(storePath(runsStore))
	if err != nil {
		return err
	}
	defer store.Close()

	list, err := store.List()
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no runs")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tCREATED\tLISTINGS\tMATCHED\tNO MANUFACTURER\tNO MODEL")
	for _, s := range list {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\n",
			s.ID, s.CreatedAt.Format(time.RFC3339), s.Stats.Listings, s.Stats.Matched,
			s.Stats.UnknownManufacturer, s.Stats.UnknownModel)
	}
	return tw.Flush()
}
