package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pagestream/pagestream-cli/internal/core/domain"
	"github.com/pagestream/pagestream-cli/internal/core/ports/driving"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past conversion runs",
	Long: `Shows conversion runs recorded on this machine, newest first.
Use "history show <run-id>" for the per-document detail of one run.`,
	RunE: runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show [run-id]",
	Short: "Show one conversion run in detail",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of runs to show")
	historyCmd.AddCommand(historyShowCmd)
	rootCmd.AddCommand(historyCmd)
}

// historyView returns the run-history read view and a release func.
func historyView() (driving.RunHistory, func(), error) {
	if runHistory != nil {
		return runHistory, func() {}, nil
	}
	store, release, err := openHistory()
	if err != nil {
		return nil, nil, err
	}
	return store, release, nil
}

func runHistoryList(cmd *cobra.Command, _ []string) error {
	store, release, err := historyView()
	if err != nil {
		return err
	}
	defer release()

	runs, err := store.ListRuns(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	if len(runs) == 0 {
		cmd.Println("No conversion runs recorded yet.")
		return nil
	}

	cmd.Printf("%-38s %-21s %-11s %-7s %s\n", "RUN", "STARTED", "DOCUMENTS", "PAGES", "DURATION")
	for _, run := range runs {
		cmd.Printf("%-38s %-21s %-11s %-7d %s\n",
			run.RunID,
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			fmt.Sprintf("%d/%d", run.Succeeded(), run.Jobs()),
			run.PagesReceived(),
			run.FinishedAt.Sub(run.StartedAt).Round(time.Second),
		)
	}
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	store, release, err := historyView()
	if err != nil {
		return err
	}
	defer release()

	run, err := store.GetRun(cmd.Context(), args[0])
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("no run with ID %s", args[0])
	}
	if err != nil {
		return fmt.Errorf("load run: %w", err)
	}

	cmd.Printf("Run %s\n", run.RunID)
	cmd.Printf("Started:   %s\n", run.StartedAt.Local().Format("2006-01-02 15:04:05"))
	cmd.Printf("Finished:  %s (%s)\n",
		run.FinishedAt.Local().Format("2006-01-02 15:04:05"),
		run.FinishedAt.Sub(run.StartedAt).Round(time.Second))
	cmd.Printf("Documents: %d/%d converted, %d pages\n", run.Succeeded(), run.Jobs(), run.PagesReceived())
	cmd.Println()
	for _, r := range run.Results {
		cmd.Println(resultLine(r))
		if r.RemoteID != "" {
			cmd.Printf("   job %s, %d/%d pages via %s\n", r.RemoteID, r.PagesReceived, r.PagesTotal, r.Via)
		}
	}
	return nil
}
