package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/datnt-sec/webcomply/internal/infrastructure/persistence/json"
)

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Inspect persisted scan results",
}

var resultsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all persisted scans",
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := json.NewScanRepository(scansDir)
		if err != nil {
			return err
		}

		scans, err := repo.FindAll(cmd.Context())
		if err != nil {
			return err
		}
		if len(scans) == 0 {
			fmt.Println("No scans recorded.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTARGET\tSTATUS\tFINDINGS\tCREATED")
		for _, s := range scans {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
				s.ID(), s.Target(), string(s.Status()), len(s.Findings()),
				s.CreatedAt().Format(time.RFC3339))
		}
		return w.Flush()
	},
}

var resultsShowCmd = &cobra.Command{
	Use:   "show <scan-id>",
	Short: "Show one scan's compliance matrix and findings",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := json.NewScanRepository(scansDir)
		if err != nil {
			return err
		}

		s, err := repo.FindByID(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printScanJSON(s)
		}
		printScanReport(s)
		return nil
	},
}

var resultsDeleteCmd = &cobra.Command{
	Use:   "delete <scan-id>",
	Short: "Delete a persisted scan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := json.NewScanRepository(scansDir)
		if err != nil {
			return err
		}

		if err := repo.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("%s %s\n", colorSuccess("Deleted:"), args[0])
		return nil
	},
}

func init() {
	resultsShowCmd.Flags().Bool("json", false, "emit the scan as JSON")

	resultsCmd.AddCommand(resultsListCmd)
	resultsCmd.AddCommand(resultsShowCmd)
	resultsCmd.AddCommand(resultsDeleteCmd)
}
