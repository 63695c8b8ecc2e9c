package cmd

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/jdlms/fpa-forecast/internal/app"
	"github.com/jdlms/fpa-forecast/internal/cache"
	"github.com/jdlms/fpa-forecast/internal/config"
	"github.com/jdlms/fpa-forecast/internal/logging"
	"github.com/jdlms/fpa-forecast/internal/source"

	"github.com/spf13/cobra"
)

var flags struct {
	configPath    string
	datasets      []string
	recordsPath   string
	tab           string
	sortKey       string
	sortDirection string
	grouped       bool
	variant       string
	logFile       string
	logLevel      string
}

var rootCmd = &cobra.Command{
	Use:   "fpa-forecast",
	Short: "FP&A vendor and forecast lookup TUI",
	Long:  "A terminal user interface for searching, filtering, sorting and grouping vendor lookup and monthly forecast records",
	RunE: func(cmd *cobra.Command, args []string) error {
		// This is the default behavior - start the TUI
		return startTUI(cmd)
	},
	SilenceUsage: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/fpa-forecast/config.yaml)")
	pf.StringSliceVarP(&flags.datasets, "dataset", "d", nil, "dataset URI: path, file://, http(s)://, s3://bucket/key or aws-ce://<tab> (repeatable)")
	pf.StringVar(&flags.recordsPath, "records-path", "", "JSONPath of the item array inside each dataset document")
	pf.StringVarP(&flags.tab, "tab", "t", "", "initial tab: tooling, ps or sm")
	pf.StringVarP(&flags.sortKey, "sort", "s", "", "initial sort key")
	pf.StringVar(&flags.sortDirection, "direction", "", "initial sort direction: asc or desc")
	pf.BoolVarP(&flags.grouped, "group", "g", false, "group by department")
	pf.StringVar(&flags.variant, "variant", "", "record variant: auto, vendor or forecast")
	pf.StringVar(&flags.logFile, "log-file", "", "log file path")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn or error")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

// loadConfig resolves the configuration with flags taking precedence over
// the environment and the config file
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}

	changed := cmd.Flags().Changed
	if changed("dataset") {
		cfg.Datasets = flags.datasets
	}
	if changed("records-path") {
		cfg.RecordsPath = flags.recordsPath
	}
	if changed("tab") {
		cfg.Tab = flags.tab
	}
	if changed("sort") {
		cfg.SortKey = flags.sortKey
	}
	if changed("direction") {
		cfg.SortDirection = flags.sortDirection
	}
	if changed("group") {
		cfg.GroupByDepartment = flags.grouped
	}
	if changed("variant") {
		cfg.Variant = flags.variant
	}
	if changed("log-file") {
		cfg.LogFile = flags.logFile
	}
	if changed("log-level") {
		cfg.LogLevel = flags.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openLoaders builds one loader per configured dataset
func openLoaders(ctx context.Context, cfg *config.Config) ([]source.Loader, error) {
	opts := cfg.SourceOptions()
	loaders := make([]source.Loader, 0, len(cfg.Datasets))
	for _, uri := range cfg.Datasets {
		loader, err := source.Open(ctx, uri, opts)
		if err != nil {
			return nil, fmt.Errorf("dataset %s: %w", uri, err)
		}
		loaders = append(loaders, loader)
	}
	return loaders, nil
}

// setup loads the configuration and sends logs to its log file
func setup(cmd *cobra.Command) (*config.Config, io.Closer, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	// Setup logging to file to avoid interfering with the terminal output
	closer, err := logging.Setup(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	return cfg, closer, nil
}

func startTUI(cmd *cobra.Command) error {
	cfg, logFile, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logFile.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	loaders, err := openLoaders(ctx, cfg)
	if err != nil {
		return err
	}

	// Create and run the application
	appState := app.CreateApp(ctx, cache.NewStore(), cfg.ViewState(), loaders)
	return appState.App.Run()
}
