package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	progressterm "github.com/pagestream/pagestream-cli/internal/adapters/driven/progress/term"
	progresstui "github.com/pagestream/pagestream-cli/internal/adapters/driven/progress/tui"
	"github.com/pagestream/pagestream-cli/internal/core/domain"
	"github.com/pagestream/pagestream-cli/internal/core/ports/driven"
	"github.com/pagestream/pagestream-cli/internal/core/ports/driving"
	"github.com/pagestream/pagestream-cli/internal/logger"
)

var (
	convertOutDir          string
	convertSkipStatusCheck bool
	convertNoProbe         bool
)

var convertCmd = &cobra.Command{
	Use:   "convert [paths...]",
	Short: "Convert PDF documents to Markdown",
	Long: `Converts PDF documents through the conversion service.
Each argument is a PDF file or a directory of PDF files. Documents are
converted one at a time; output lands next to each source unless
--out-dir is given.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringVarP(&convertOutDir, "out-dir", "o", "", "directory for converted output (default: next to each source)")
	convertCmd.Flags().BoolVar(&convertSkipStatusCheck, "skip-status-check", false, "skip the final remote status verification")
	convertCmd.Flags().BoolVar(&convertNoProbe, "no-probe", false, "skip the local page count pre-pass")
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	sources, err := collectSources(args)
	if err != nil {
		return err
	}

	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	outDir := convertOutDir
	if outDir == "" {
		outDir = cfg.OutDir
	}
	opts := driving.RunOptions{
		OutDir:          outDir,
		Options:         cfg.ConversionOptions(),
		SkipStatusCheck: convertSkipStatusCheck,
		ProbePages:      !convertNoProbe,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if useProgressView() {
		return runWithProgressView(ctx, cmd, sources, opts)
	}

	var reporter driven.ProgressReporter = driven.NopReporter{}
	if !flagSilent {
		reporter = progressterm.NewReporter(cmd.ErrOrStderr())
	}
	runner, release, err := newBatchRunner(reporter)
	if err != nil {
		return err
	}
	defer release()

	summary, runErr := runner.Run(ctx, sources, opts)
	return finishRun(cmd, summary, runErr, false)
}

// useProgressView reports whether the fullscreen progress view should
// drive this run. Verbose mode keeps line-oriented logs instead.
func useProgressView() bool {
	return !flagSilent && !flagVerbose && term.IsTerminal(int(os.Stdout.Fd()))
}

// runWithProgressView runs the batch in a goroutine while the progress
// view owns the terminal. Quitting the view aborts the run.
func runWithProgressView(ctx context.Context, cmd *cobra.Command, sources []string, opts driving.RunOptions) error {
	reporter := progresstui.NewReporter()
	runner, release, err := newBatchRunner(reporter)
	if err != nil {
		return err
	}
	defer release()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		summary *domain.BatchSummary
		runErr  error
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		summary, runErr = runner.Run(ctx, sources, opts)
		reporter.Finish()
	}()

	viewErr := reporter.Run()

	select {
	case <-done:
	default:
		// The view exited before the batch finished: user abort.
		cancel()
		<-done
	}

	if viewErr != nil {
		logger.Warn("progress view: %v", viewErr)
	}
	return finishRun(cmd, summary, runErr, true)
}

// finishRun prints the batch outcome and converts it to an exit status.
func finishRun(cmd *cobra.Command, summary *domain.BatchSummary, runErr error, viewCleared bool) error {
	if summary != nil {
		printSummary(cmd, summary, viewCleared)
	}
	if runErr != nil {
		if errors.Is(runErr, context.Canceled) || errors.Is(runErr, domain.ErrInterrupted) {
			return domain.ErrInterrupted
		}
		return runErr
	}
	if summary != nil && summary.Succeeded() < summary.Jobs() {
		return fmt.Errorf("%d of %d conversions failed", summary.Jobs()-summary.Succeeded(), summary.Jobs())
	}
	return nil
}

// printSummary renders the end-of-run report. During a plain-terminal
// run the reporter already printed per-document outcome lines; after
// the progress view (which clears itself) they are printed here.
func printSummary(cmd *cobra.Command, summary *domain.BatchSummary, viewCleared bool) {
	if flagSilent {
		return
	}
	if summary.Jobs() <= 1 {
		if viewCleared && len(summary.Results) == 1 {
			cmd.Println(resultLine(summary.Results[0]))
		}
		return
	}

	cmd.Println()
	cmd.Printf("Conversion complete: %d/%d documents converted\n", summary.Succeeded(), summary.Jobs())
	if summary.PagesExpected > 0 {
		cmd.Printf("Processed %d/%d pages\n", summary.PagesReceived(), summary.PagesExpected)
	} else {
		cmd.Printf("Processed %d pages\n", summary.PagesReceived())
	}
	cmd.Println()
	cmd.Println("Conversion Summary:")
	for _, r := range summary.Results {
		cmd.Println(resultLine(r))
	}
}

// resultLine renders one document outcome.
func resultLine(r domain.JobResult) string {
	name := filepath.Base(r.Source)
	if !r.Success {
		return fmt.Sprintf("❌ %s: %s", name, r.Error)
	}
	line := fmt.Sprintf("✅ %s → %s", name, r.OutputPath)
	if r.Via == domain.ViaDownload {
		line += " (fallback method)"
	}
	return line
}

// collectSources expands the arguments into an ordered list of PDF
// paths. A directory argument contributes its PDF files sorted by name.
func collectSources(args []string) ([]string, error) {
	var sources []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", arg, err)
		}
		if !info.IsDir() {
			sources = append(sources, arg)
			continue
		}

		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", arg, err)
		}
		found := 0
		for _, e := range entries {
			if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
				continue
			}
			sources = append(sources, filepath.Join(arg, e.Name()))
			found++
		}
		if found == 0 {
			return nil, fmt.Errorf("no PDF files in %s", arg)
		}
	}
	if len(sources) == 0 {
		return nil, domain.ErrNoDocuments
	}
	return sources, nil
}
