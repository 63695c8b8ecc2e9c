package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jdlms/fpa-forecast/internal/cache"
	"github.com/jdlms/fpa-forecast/internal/pipeline"
	"github.com/jdlms/fpa-forecast/internal/report"

	"github.com/spf13/cobra"
)

var listFlags struct {
	search        string
	department    string
	account       string
	subdepartment string
	style         string
	width         int
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the filtered view without starting the TUI",
	Long:  "Load the datasets once, apply the tab, filters, sort and grouping, and print the result as a Markdown report",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runList(cmd)
	},
	SilenceUsage: true,
}

func init() {
	f := listCmd.Flags()
	f.StringVar(&listFlags.search, "search", "", "case-insensitive text search")
	f.StringVar(&listFlags.department, "department", "", "exact department")
	f.StringVar(&listFlags.account, "account", "", "exact account")
	f.StringVar(&listFlags.subdepartment, "subdepartment", "", "exact subdepartment")
	f.StringVar(&listFlags.style, "style", report.StyleAuto, "glamour style (dark, light, notty, ...), auto, or raw for plain Markdown")
	f.IntVar(&listFlags.width, "width", 120, "word wrap width")
	rootCmd.AddCommand(listCmd)
}

// logPopulator reports preload progress to the log only
type logPopulator struct{}

func (logPopulator) Progress(done, total int) {
	slog.Debug("preload progress", "done", done, "total", total)
}

func (logPopulator) Loaded(count int, err error) {}

func runList(cmd *cobra.Command) error {
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

	store := cache.NewStore()
	if err := cache.PreloadAllData(ctx, store, loaders, logPopulator{}); err != nil {
		// Same as the TUI: a failed load shows an empty view
		slog.Warn("continuing with empty records", "error", err)
		fmt.Fprintf(cmd.ErrOrStderr(), "failed to load data: %v\n", err)
	}

	state := cfg.ViewState().
		WithSearch(listFlags.search).
		WithFacet(pipeline.FacetDepartment, listFlags.department).
		WithFacet(pipeline.FacetAccount, listFlags.account).
		WithFacet(pipeline.FacetSubdepartment, listFlags.subdepartment)

	out, err := report.Render(pipeline.Derive(store.Items(), state), listFlags.style, listFlags.width, time.Now())
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}
