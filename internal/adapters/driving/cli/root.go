// Package cli wires the terminal commands to the core services.
// Commands reach the core through package-level service variables so
// tests can substitute mocks; real services are assembled on first use.
package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	configfile "github.com/pagestream/pagestream-cli/internal/adapters/driven/config/file"
	outputfile "github.com/pagestream/pagestream-cli/internal/adapters/driven/output/file"
	"github.com/pagestream/pagestream-cli/internal/adapters/driven/pagecount"
	"github.com/pagestream/pagestream-cli/internal/adapters/driven/storage/sqlite"
	"github.com/pagestream/pagestream-cli/internal/connectors/mathpix"
	"github.com/pagestream/pagestream-cli/internal/core/ports/driven"
	"github.com/pagestream/pagestream-cli/internal/core/ports/driving"
	"github.com/pagestream/pagestream-cli/internal/core/services"
	"github.com/pagestream/pagestream-cli/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// Services used by the commands. Nil means the command builds the real
// one from configuration; tests substitute mocks.
var (
	batchRunner    driving.BatchRunner
	documentLister driving.RemoteLister
	runHistory     driving.RunHistory
)

// settings caches the loaded configuration for the process lifetime.
var settings *configfile.Config

var (
	flagVerbose   bool
	flagSilent    bool
	flagConfigDir string
)

var rootCmd = &cobra.Command{
	Use:   "pagestream",
	Short: "Convert PDF documents to Markdown",
	Long: `Pagestream converts PDF documents to Markdown through the Mathpix
OCR API. Pages are reconstructed live from the result stream, with a
poll-and-download fallback when streaming is interrupted.

Credentials are read from MATHPIX_APP_ID and MATHPIX_APP_KEY (a .env
file in the working directory is honoured). Settings live in
~/.pagestream/config.toml.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(flagVerbose && !flagSilent)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&flagSilent, "silent", false, "suppress progress output")
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "configuration directory (default ~/.pagestream)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadSettings loads the configuration once per process.
func loadSettings() (configfile.Config, error) {
	if settings != nil {
		return *settings, nil
	}
	cfg, err := configfile.Load(flagConfigDir)
	if err != nil {
		return configfile.Config{}, err
	}
	settings = &cfg
	return cfg, nil
}

// newConverter builds an authenticated API client.
func newConverter() (*mathpix.Client, error) {
	cfg, err := loadSettings()
	if err != nil {
		return nil, err
	}
	mcfg := mathpix.Config{
		AppID:            cfg.AppID,
		AppKey:           cfg.AppKey,
		AnonymiseUploads: cfg.AnonymiseUploads,
	}
	if err := mcfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: set MATHPIX_APP_ID and MATHPIX_APP_KEY", err)
	}
	return mathpix.NewClient(mcfg), nil
}

// newBatchRunner assembles the conversion pipeline around reporter. The
// returned release func closes whatever the pipeline opened.
func newBatchRunner(reporter driven.ProgressReporter) (driving.BatchRunner, func(), error) {
	if batchRunner != nil {
		return batchRunner, func() {}, nil
	}

	converter, err := newConverter()
	if err != nil {
		return nil, nil, err
	}
	cfg, err := loadSettings()
	if err != nil {
		return nil, nil, err
	}

	engine := services.NewReconstructor(reporter)
	fallback := services.NewFallbackController(converter, engine, reporter, services.FallbackConfig{
		PollInterval: cfg.PollInterval(),
		PollCeiling:  cfg.PollCeiling(),
	})
	runner := services.NewJobRunner(converter, outputfile.NewFactory(), fallback, reporter)

	// A broken history store degrades to an unrecorded run, not a
	// failed conversion.
	history, release, err := openHistory()
	if err != nil {
		logger.Warn("run history unavailable: %v", err)
		history, release = nil, func() {}
	}

	return services.NewBatchOrchestrator(runner, pagecount.NewCounter(), history, reporter), release, nil
}

// openHistory returns the run history store and a release func. The
// database lives under the configuration directory's data subdirectory.
func openHistory() (driven.HistoryStore, func(), error) {
	dataDir := ""
	if flagConfigDir != "" {
		dataDir = filepath.Join(flagConfigDir, "data")
	}
	store, err := sqlite.NewStore(dataDir)
	if err != nil {
		return nil, nil, err
	}
	hs := store.HistoryStore()
	return hs, func() {
		if err := hs.Close(); err != nil {
			logger.Warn("close history store: %v", err)
		}
	}, nil
}
