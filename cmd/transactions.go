package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/inovacc/bidmatch/internal/export"
	"github.com/spf13/cobra"
)

var transactionsCmd = &cobra.Command{
	Use:     "transactions",
	Aliases: []string{"tx"},
	Short:   "Show payment history",
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

var transactionsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List transactions one page at a time",
	Args:    cobra.NoArgs,
	RunE:    runTransactionsList,
}

var transactionsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export every transaction to a spreadsheet",
	Long: `Fetch every page of the transaction history and write it to an .xlsx
workbook.

Examples:
  bidmatch transactions export --output payments.xlsx`,
	Args: cobra.NoArgs,
	RunE: runTransactionsExport,
}

var (
	transactionsPage   int
	transactionsJSON   bool
	transactionsOutput string
	transactionsForce  bool
)

func init() {
	rootCmd.AddCommand(transactionsCmd)
	transactionsCmd.AddCommand(transactionsListCmd, transactionsExportCmd)

	transactionsListCmd.Flags().IntVar(&transactionsPage, "page", 1, "Page number")
	transactionsListCmd.Flags().BoolVar(&transactionsJSON, "json", false, "Output as JSON")
	transactionsExportCmd.Flags().StringVarP(&transactionsOutput, "output", "o", "transactions.xlsx", "Output file")
	transactionsExportCmd.Flags().BoolVarP(&transactionsForce, "force", "f", false, "Overwrite an existing file")
}

func formatAmount(amount float64, currency string) string {
	s := fmt.Sprintf("%.2f", amount)
	if currency != "" {
		s += " " + strings.ToUpper(currency)
	}

	return s
}

func runTransactionsList(cmd *cobra.Command, _ []string) error {
	if transactionsPage < 1 {
		return errors.New("--page must be 1 or greater")
	}

	page, err := rt.client.ListTransactions(cmd.Context(), transactionsPage)
	if err != nil {
		return commandError(err)
	}

	out := cmd.OutOrStdout()

	if transactionsJSON {
		return printJSON(out, page.Items)
	}

	if len(page.Items) == 0 {
		printEmptyResult(out, "transactions", "")
		return nil
	}

	w := newTabWriter(out)
	_, _ = fmt.Fprintln(w, "DATE\tREF\tDESCRIPTION\tAMOUNT\tSTATUS")

	for _, t := range page.Items {
		_, _ = fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n",
			t.CreatedAt.Format("2006-01-02"), t.ID, truncateString(t.Description, 40), formatAmount(t.Amount, t.Currency), t.Status)
	}

	_ = w.Flush()

	_, _ = fmt.Fprintf(out, "\nPage %d of %d (%d total)\n", page.CurrentPage, page.LastPage, page.Total)

	return nil
}

func runTransactionsExport(cmd *cobra.Command, _ []string) error {
	path, err := expandPath(transactionsOutput)
	if err != nil {
		return err
	}

	if !strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return fmt.Errorf("output must be an .xlsx file: %s", path)
	}

	if _, err := os.Stat(path); err == nil && !transactionsForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	txs, err := rt.client.AllTransactions(cmd.Context())
	if err != nil {
		return commandError(err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := export.TransactionsXLSX(f, txs, rt.logger); err != nil {
		_ = f.Close()
		_ = os.Remove(path)

		return err
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	rt.logger.Info("transactions exported", slog.String("path", path), slog.Int("count", len(txs)))
	rt.notifier.Success(fmt.Sprintf("Exported %d transactions to %s", len(txs), path))

	return nil
}
