package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pagestream/pagestream-cli/internal/core/domain"
)

var (
	listPage     int
	listPerPage  int
	listFromDate string
	listToDate   string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List previously submitted documents",
	Long: `Lists documents previously submitted to the conversion service,
newest first. Dates are given as YYYY-MM-DD.`,
	RunE: runList,
}

func init() {
	listCmd.Flags().IntVar(&listPage, "page", 1, "result page to fetch")
	listCmd.Flags().IntVar(&listPerPage, "per-page", 20, "documents per page")
	listCmd.Flags().StringVar(&listFromDate, "from-date", "", "only documents submitted on or after this date")
	listCmd.Flags().StringVar(&listToDate, "to-date", "", "only documents submitted on or before this date")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	lister := documentLister
	if lister == nil {
		client, err := newConverter()
		if err != nil {
			return err
		}
		lister = client
	}

	from, err := dayBound(listFromDate, "T00:00:00.000Z")
	if err != nil {
		return fmt.Errorf("--from-date: %w", err)
	}
	to, err := dayBound(listToDate, "T23:59:59.999Z")
	if err != nil {
		return fmt.Errorf("--to-date: %w", err)
	}

	page, err := lister.ListDocuments(cmd.Context(), domain.ListQuery{
		Page:     listPage,
		PerPage:  listPerPage,
		FromDate: from,
		ToDate:   to,
	})
	if err != nil {
		return fmt.Errorf("list documents: %w", err)
	}

	if len(page.Documents) == 0 {
		cmd.Println("No documents found.")
		return nil
	}

	cmd.Printf("%-26s %-30s %-12s %-26s %s\n", "ID", "FILE", "STATUS", "CREATED", "PAGES")
	for _, doc := range page.Documents {
		cmd.Printf("%-26s %-30s %-12s %-26s %s\n",
			doc.ID, truncate(doc.InputFile, 30), doc.Status, truncate(doc.CreatedAt, 26), pagesColumn(doc))
	}

	if len(page.Documents) == listPerPage {
		cmd.Println()
		cmd.Printf("More results may be available: --page %d\n", listPage+1)
	}
	return nil
}

// dayBound expands a YYYY-MM-DD flag value into the full timestamp the
// service expects. Empty stays empty; a value already carrying a time
// passes through.
func dayBound(day, boundary string) (string, error) {
	if day == "" {
		return "", nil
	}
	if strings.Contains(day, "T") {
		return day, nil
	}
	if _, err := time.Parse("2006-01-02", day); err != nil {
		return "", fmt.Errorf("want YYYY-MM-DD, got %q", day)
	}
	return day + boundary, nil
}

// truncate shortens s to fit a fixed-width column.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}

// pagesColumn renders the remote page counters.
func pagesColumn(doc domain.RemoteDocument) string {
	if doc.PagesTotal <= 0 {
		return "-"
	}
	if doc.PagesDone < doc.PagesTotal {
		return fmt.Sprintf("%d/%d", doc.PagesDone, doc.PagesTotal)
	}
	return strconv.Itoa(doc.PagesTotal)
}
