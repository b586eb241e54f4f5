package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/edgard/intillasense/internal/database"
)

func newExchangesCmd(c *cli) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "exchanges",
		Short: "Show the most recent logged requests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, store, err := c.openStore()
			if err != nil {
				return err
			}
			defer database.CloseDB(db, c.log)

			exchanges, err := store.RecentExchanges(cmd.Context(), limit)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TIME\tREQUEST\tCHANNEL\tFARM\tMODE\tIMAGE\tSTATUS\tLATENCY")
			for _, ex := range exchanges {
				status := ex.Status
				if ex.ErrorClass != "" {
					status += " (" + ex.ErrorClass + ")"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%t\t%s\t%s\n",
					ex.CreatedAt().Format(time.RFC3339), ex.RequestID, ex.Channel, ex.FarmID,
					ex.Mode, ex.HasImage, status, time.Duration(ex.LatencyMS)*time.Millisecond)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", database.DefaultRecentLimit, "number of exchanges to show")
	return cmd
}
