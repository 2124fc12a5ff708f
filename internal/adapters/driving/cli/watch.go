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
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	progressterm "github.com/pagestream/pagestream-cli/internal/adapters/driven/progress/term"
	"github.com/pagestream/pagestream-cli/internal/core/ports/driven"
	"github.com/pagestream/pagestream-cli/internal/core/ports/driving"
	"github.com/pagestream/pagestream-cli/internal/logger"
)

var (
	watchOutDir string
	watchSettle time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch [directory]",
	Short: "Watch a directory and convert new PDFs",
	Long: `Watches a directory and converts each PDF created in it as it
appears. Conversion starts after a short settle delay so documents that
are still being copied in are picked up whole. Stop with Ctrl-C.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchOutDir, "out-dir", "o", "", "directory for converted output (default: next to each source)")
	watchCmd.Flags().DurationVar(&watchSettle, "settle", 2*time.Second, "delay between file creation and conversion")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	dir := args[0]
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	outDir := watchOutDir
	if outDir == "" {
		outDir = cfg.OutDir
	}
	opts := driving.RunOptions{
		OutDir:  outDir,
		Options: cfg.ConversionOptions(),
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

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close() //nolint:errcheck

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd.Printf("Watching %s for new PDF files...\n", dir)

	for {
		select {
		case <-ctx.Done():
			cmd.Println("\nStopped.")
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) || !strings.EqualFold(filepath.Ext(event.Name), ".pdf") {
				continue
			}
			if err := convertArrival(ctx, runner, event.Name, opts); err != nil {
				if errors.Is(err, context.Canceled) {
					cmd.Println("\nStopped.")
					return nil
				}
				logger.Error("convert %s: %v", event.Name, err)
			}
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch: %v", werr)
		}
	}
}

// convertArrival waits for the new file to settle, then converts it as
// a single-document batch.
func convertArrival(ctx context.Context, runner driving.BatchRunner, path string, opts driving.RunOptions) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(watchSettle):
	}

	// The create event may have been a transient file.
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	_, err := runner.Run(ctx, []string{path}, opts)
	return err
}
