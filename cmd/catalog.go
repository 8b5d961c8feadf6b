package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/datnt-sec/webcomply/internal/catalog"
	"github.com/datnt-sec/webcomply/internal/compliance"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List the compliance parameters the scanner checks",
	RunE: func(cmd *cobra.Command, args []string) error {
		showRecommendations, _ := cmd.Flags().GetBool("recommendations")

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tPARAMETER")
		for _, item := range catalog.Items() {
			fmt.Fprintf(w, "%d\t%s\n", item.ID, item.Title)
		}
		w.Flush()

		if showRecommendations {
			fmt.Println()
			for _, item := range catalog.Items() {
				fmt.Printf("[%d] %s\n    %s\n", item.ID, item.Title, compliance.Recommendation(item.ID))
			}
		}
		return nil
	},
}

func init() {
	catalogCmd.Flags().Bool("recommendations", false, "include remediation guidance per parameter")
}
