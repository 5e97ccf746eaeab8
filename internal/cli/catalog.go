package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"hero-trivia-engine/internal/achievements"
)

// NewCatalogCmd prints the achievement catalog.
func NewCatalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List achievements",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tRARITY\tPOINTS\tDESCRIPTION")
			for _, a := range achievements.Definitions() {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", a.ID, a.Name, a.Rarity, a.Points, a.Description)
			}
			return w.Flush()
		},
	}
}
