package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/riskworks/stability/dataset"
	"github.com/riskworks/stability/internal/risk/config"
	"github.com/riskworks/stability/internal/risk/pipeline"
	"github.com/riskworks/stability/internal/risk/report"
	"github.com/riskworks/stability/internal/risk/scheduler"
	"github.com/riskworks/stability/internal/risk/server"
	"github.com/riskworks/stability/internal/risk/summary"
)

const version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "stability",
	Short: "Hardware stability risk scoring",
	Long: `Stability scores hardware assets for operational risk.

Four domain signals (usage, incident history, patch compliance, and
vulnerability exposure) are scored per asset, merged against the asset
master list, combined into a weighted composite score, and bucketed into
risk tiers by population z-score. Each run is a full batch recomputation
over one snapshot of the six input tables.`,
	Version:      version,
	SilenceUsage: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Score one snapshot and write the report tables",
	Long: `Loads the six input CSVs from the snapshot directory, runs the full
scoring pipeline, and writes the per-domain score tables, the final scored
asset table, and the summary views into the report directory.`,
	RunE: runRun,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP trigger and the cron schedule",
	Long: `Starts the trigger server (POST /run, GET /health, GET /status) and the
cron schedule. Every trigger executes a full batch over the current
snapshot directory and overwrites the report directory.`,
	RunE: runServe,
}

var summarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Re-derive summaries from an existing scored table",
	Long: `Reads a previously written scored asset table and re-derives the
risk-category counts, the top-10 company expiry summary, and the expiry
detail view. Use --as-of to anchor the expiry buckets at a fixed date.`,
	RunE: runSummarize,
}

var (
	flagConfig   string
	flagSnapshot string
	flagReports  string
	flagJSON     bool

	serveAddr     string
	serveSchedule string

	summarizeInput string
	summarizeAsOf  string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (YAML)")

	runCmd.Flags().StringVar(&flagSnapshot, "snapshot", "", "Snapshot directory with the six input CSVs")
	runCmd.Flags().StringVar(&flagReports, "reports", "", "Report output directory")
	runCmd.Flags().BoolVar(&flagJSON, "json", false, "Output the run record as JSON")

	serveCmd.Flags().StringVar(&flagSnapshot, "snapshot", "", "Snapshot directory with the six input CSVs")
	serveCmd.Flags().StringVar(&flagReports, "reports", "", "Report output directory")
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address")
	serveCmd.Flags().StringVar(&serveSchedule, "schedule", "", "Cron expression for scheduled runs")

	summarizeCmd.Flags().StringVarP(&summarizeInput, "input", "i", "", "Scored asset table CSV (required)")
	summarizeCmd.Flags().StringVar(&summarizeAsOf, "as-of", "", "Reference date for expiry buckets (YYYY-MM-DD, default today)")
	summarizeCmd.Flags().BoolVar(&flagJSON, "json", false, "Output as JSON")
	summarizeCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(summarizeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

// loadConfig applies command-line overrides on top of the config file.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	if flagSnapshot != "" {
		cfg.SnapshotDir = flagSnapshot
	}
	if flagReports != "" {
		cfg.ReportDir = flagReports
	}
	if serveAddr != "" {
		cfg.ListenAddr = serveAddr
	}
	if serveSchedule != "" {
		cfg.Schedule = serveSchedule
	}
	return cfg, nil
}

// newRunner builds the batch closure shared by run, serve, and the cron
// schedule: load snapshot, score, write reports.
func newRunner(cfg *config.Config, logger *slog.Logger) pipeline.Runner {
	return func(ctx context.Context) (*pipeline.Result, error) {
		snap, err := dataset.LoadSnapshot(cfg.SnapshotDir)
		if err != nil {
			return nil, fmt.Errorf("loading snapshot: %w", err)
		}
		res := pipeline.Run(snap, cfg, logger)
		if err := report.WriteAll(cfg.ReportDir, res, summary.Options{}); err != nil {
			return nil, fmt.Errorf("writing reports: %w", err)
		}
		return res, nil
	}
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger()

	res, err := newRunner(cfg, logger)(cmd.Context())
	if err != nil {
		return err
	}

	if flagJSON {
		out, _ := json.MarshalIndent(res, "", "  ")
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run %s: %d assets scored in %s\n\n", res.RunID, res.AssetCount, res.Duration.Round(time.Millisecond))

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "RISK CATEGORY\tASSETS\n")
	for _, c := range res.CategoryCounts {
		fmt.Fprintf(w, "%s\t%d\n", c.Category, c.Count)
	}
	w.Flush()

	fmt.Fprintf(out, "\nReports written to %s\n", cfg.ReportDir)
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(server.Config{Addr: cfg.ListenAddr}, newRunner(cfg, logger), logger)

	sched, err := scheduler.New(cfg.Schedule, srv.Trigger, logger)
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", cfg.Schedule, err)
	}
	sched.Start()
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		sched.Stop(stopCtx)
	}()

	logger.Info("serving", "addr", cfg.ListenAddr, "schedule", cfg.Schedule, "snapshot_dir", cfg.SnapshotDir)
	return srv.Start(ctx)
}

func runSummarize(cmd *cobra.Command, args []string) error {
	rows, err := report.ReadScoredAssets(summarizeInput)
	if err != nil {
		return err
	}

	opts := summary.Options{}
	if summarizeAsOf != "" {
		t, err := time.Parse("2006-01-02", summarizeAsOf)
		if err != nil {
			return fmt.Errorf("invalid --as-of date %q: %w", summarizeAsOf, err)
		}
		opts.Now = t
	}

	counts := summary.CategoryCounts(rows)
	top := summary.TopCompanies(rows, opts)
	detail := summary.ExpiryDetail(rows, opts)

	if flagJSON {
		out, _ := json.MarshalIndent(map[string]any{
			"category_counts": counts,
			"top_companies":   top,
			"expiry_detail":   detail,
			"source":          filepath.Base(summarizeInput),
		}, "", "  ")
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	}

	out := cmd.OutOrStdout()

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "RISK CATEGORY\tASSETS\n")
	for _, c := range counts {
		fmt.Fprintf(w, "%s\t%d\n", c.Category, c.Count)
	}
	w.Flush()

	fmt.Fprintln(out)
	w = tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "COMPANY\tTOTAL\tEXPIRED\tEXPIRING SOON\tEXPIRING LATER\n")
	for _, c := range top {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\n", c.Company, c.Total, c.Expired, c.ExpiringSoon, c.ExpiringLater)
	}
	w.Flush()

	fmt.Fprintln(out)
	w = tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "COMPANY\tEND OF LIFE\tCATEGORY\tASSETS\n")
	for _, g := range detail {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", g.Company, g.EndOfLifeDate.Format("2006-01-02"), g.Label, len(g.AssetIDs))
	}
	w.Flush()

	return nil
}
