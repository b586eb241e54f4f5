package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/edgard/intillasense/internal/farm"
	"github.com/edgard/intillasense/internal/telegram/handlers"
)

func newFarmsCmd(_ *cli) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "farms",
		Short: "List the farm profiles with derived equipment totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			catalog, err := farm.DefaultCatalog()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(catalog.Profiles())
			}
			_, err = fmt.Fprintln(out, handlers.RenderFarms(catalog.Profiles()))
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the profiles as JSON")
	return cmd
}
